package service

import (
	"errors"
	"regexp"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/groundworkcms/internal/db"
)

var (
	ErrProjectNotFound     = errors.New("project not found")
	ErrProjectTitleMissing = errors.New("project title is required")
	ErrProjectSlugTaken    = errors.New("project slug already in use")
)

const (
	StatusPublished = "published"
	StatusDraft     = "draft"
)

// ProjectService handles portfolio project CRUD.
type ProjectService struct {
	db *gorm.DB
}

// ProjectFilter describes filters for listing projects.
type ProjectFilter struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// ProjectListResult aggregates paginated project results.
type ProjectListResult struct {
	Items      []db.Project
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// ProjectInput represents fields accepted when creating or updating a project.
type ProjectInput struct {
	Title       string
	Slug        string
	Summary     string
	Body        string
	Location    string
	Client      string
	Status      string
	CompletedAt *time.Time
	SortOrder   int
}

// NewProjectService creates a ProjectService instance.
func NewProjectService(gdb *gorm.DB) *ProjectService {
	return &ProjectService{db: gdb}
}

// List returns projects matching the filter.
func (s *ProjectService) List(filter ProjectFilter) (ProjectListResult, error) {
	result := ProjectListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 12),
	}

	query := s.db.Model(&db.Project{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR summary LIKE ? OR location LIKE ?", like, like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("sort_order desc").Order("created_at desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// ListPublished returns published projects with pagination.
func (s *ProjectService) ListPublished(page, perPage int) (ProjectListResult, error) {
	return s.List(ProjectFilter{Status: StatusPublished, Page: page, PerPage: perPage})
}

// Get fetches a project by id.
func (s *ProjectService) Get(id uint) (*db.Project, error) {
	var project db.Project
	if err := s.db.First(&project, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// GetBySlug fetches a project by slug.
func (s *ProjectService) GetBySlug(slug string) (*db.Project, error) {
	var project db.Project
	if err := s.db.Where("slug = ?", slug).First(&project).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProjectNotFound
		}
		return nil, err
	}
	return &project, nil
}

// Create inserts a new project.
func (s *ProjectService) Create(input ProjectInput) (*db.Project, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProjectTitleMissing
	}

	slug, err := s.resolveSlug(input.Slug, title, 0)
	if err != nil {
		return nil, err
	}

	project := db.Project{
		Slug:        slug,
		Title:       title,
		Summary:     strings.TrimSpace(input.Summary),
		Body:        input.Body,
		Location:    strings.TrimSpace(input.Location),
		Client:      strings.TrimSpace(input.Client),
		Status:      normalizeStatus(input.Status),
		CompletedAt: input.CompletedAt,
		SortOrder:   input.SortOrder,
	}

	if err := s.db.Create(&project).Error; err != nil {
		return nil, err
	}
	return &project, nil
}

// Update modifies an existing project.
func (s *ProjectService) Update(id uint, input ProjectInput) (*db.Project, error) {
	project, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrProjectTitleMissing
	}

	slug, err := s.resolveSlug(input.Slug, title, project.ID)
	if err != nil {
		return nil, err
	}

	project.Slug = slug
	project.Title = title
	project.Summary = strings.TrimSpace(input.Summary)
	project.Body = input.Body
	project.Location = strings.TrimSpace(input.Location)
	project.Client = strings.TrimSpace(input.Client)
	project.Status = normalizeStatus(input.Status)
	project.CompletedAt = input.CompletedAt
	project.SortOrder = input.SortOrder

	if err := s.db.Save(project).Error; err != nil {
		return nil, err
	}
	return project, nil
}

// Delete removes a project.
func (s *ProjectService) Delete(id uint) error {
	project, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(project).Error
}

func (s *ProjectService) resolveSlug(raw, title string, selfID uint) (string, error) {
	slug := Slugify(raw)
	if slug == "" {
		slug = Slugify(title)
	}

	var count int64
	query := s.db.Model(&db.Project{}).Where("slug = ?", slug)
	if selfID != 0 {
		query = query.Where("id <> ?", selfID)
	}
	if err := query.Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrProjectSlugTaken
	}
	return slug, nil
}

var slugPattern = regexp.MustCompile(`[^a-z0-9]+`)

// Slugify lowercases text and collapses non-alphanumeric runs to hyphens.
func Slugify(text string) string {
	slug := strings.ToLower(strings.TrimSpace(text))
	slug = slugPattern.ReplaceAllString(slug, "-")
	return strings.Trim(slug, "-")
}

func normalizeStatus(status string) string {
	status = strings.ToLower(strings.TrimSpace(status))
	if status != StatusPublished && status != StatusDraft {
		return StatusDraft
	}
	return status
}
