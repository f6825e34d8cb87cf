package service

import (
	"bytes"
	"errors"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
	"github.com/yuin/goldmark/renderer/html"
	"gorm.io/gorm"

	"github.com/groundworkcms/internal/db"
)

var (
	ErrPostNotFound     = errors.New("post not found")
	ErrPostTitleMissing = errors.New("post title is required")
	ErrPostSlugTaken    = errors.New("post slug already in use")
)

var (
	markdownEngine = goldmark.New(
		goldmark.WithExtensions(extension.GFM, extension.Linkify, extension.Table),
		goldmark.WithRendererOptions(html.WithHardWraps(), html.WithXHTML()),
	)
	sanitizer = bluemonday.UGCPolicy()
)

// PostService handles blog post CRUD and rendering.
type PostService struct {
	db *gorm.DB
}

// PostFilter describes filters for listing posts.
type PostFilter struct {
	Search  string
	Status  string
	Page    int
	PerPage int
}

// PostListResult aggregates paginated post results.
type PostListResult struct {
	Items      []db.Post
	Total      int64
	TotalPages int
	Page       int
	PerPage    int
}

// PostInput represents fields accepted when creating or updating a post.
type PostInput struct {
	Title   string
	Slug    string
	Summary string
	Body    string
	Status  string
}

// NewPostService creates a PostService instance.
func NewPostService(gdb *gorm.DB) *PostService {
	return &PostService{db: gdb}
}

// List returns posts matching the filter.
func (s *PostService) List(filter PostFilter) (PostListResult, error) {
	result := PostListResult{
		Page:    normalizePage(filter.Page),
		PerPage: normalizePerPage(filter.PerPage, 10),
	}

	query := s.db.Model(&db.Post{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		query = query.Where("status = ?", status)
	}
	if search := strings.TrimSpace(filter.Search); search != "" {
		like := "%" + search + "%"
		query = query.Where("title LIKE ? OR summary LIKE ?", like, like)
	}

	if err := query.Count(&result.Total).Error; err != nil {
		return result, err
	}

	result.TotalPages = calculateTotalPages(result.Total, result.PerPage)
	offset := (result.Page - 1) * result.PerPage

	if err := query.Order("created_at desc").
		Limit(result.PerPage).
		Offset(offset).
		Find(&result.Items).Error; err != nil {
		return result, err
	}

	return result, nil
}

// ListPublished returns published posts with pagination.
func (s *PostService) ListPublished(page, perPage int) (PostListResult, error) {
	return s.List(PostFilter{Status: StatusPublished, Page: page, PerPage: perPage})
}

// Get fetches a post by id.
func (s *PostService) Get(id uint) (*db.Post, error) {
	var post db.Post
	if err := s.db.First(&post, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// GetBySlug fetches a post by slug.
func (s *PostService) GetBySlug(slug string) (*db.Post, error) {
	var post db.Post
	if err := s.db.Where("slug = ?", slug).First(&post).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrPostNotFound
		}
		return nil, err
	}
	return &post, nil
}

// Create inserts a new post.
func (s *PostService) Create(input PostInput) (*db.Post, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrPostTitleMissing
	}

	slug, err := s.resolveSlug(input.Slug, title, 0)
	if err != nil {
		return nil, err
	}

	post := db.Post{
		Slug:    slug,
		Title:   title,
		Summary: strings.TrimSpace(input.Summary),
		Body:    input.Body,
		Status:  normalizeStatus(input.Status),
	}
	if post.Status == StatusPublished {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.Create(&post).Error; err != nil {
		return nil, err
	}
	return &post, nil
}

// Update modifies an existing post. Publishing for the first time stamps
// PublishedAt; re-saving a published post keeps the original stamp.
func (s *PostService) Update(id uint, input PostInput) (*db.Post, error) {
	post, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrPostTitleMissing
	}

	slug, err := s.resolveSlug(input.Slug, title, post.ID)
	if err != nil {
		return nil, err
	}

	post.Slug = slug
	post.Title = title
	post.Summary = strings.TrimSpace(input.Summary)
	post.Body = input.Body
	post.Status = normalizeStatus(input.Status)
	if post.Status == StatusPublished && post.PublishedAt == nil {
		now := time.Now()
		post.PublishedAt = &now
	}

	if err := s.db.Save(post).Error; err != nil {
		return nil, err
	}
	return post, nil
}

// Delete removes a post.
func (s *PostService) Delete(id uint) error {
	post, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(post).Error
}

// RenderBody converts a post's markdown body to sanitized HTML.
func (s *PostService) RenderBody(post *db.Post) (string, error) {
	var buf bytes.Buffer
	if err := markdownEngine.Convert([]byte(post.Body), &buf); err != nil {
		return "", err
	}
	return string(sanitizer.SanitizeBytes(buf.Bytes())), nil
}

func (s *PostService) resolveSlug(raw, title string, selfID uint) (string, error) {
	slug := Slugify(raw)
	if slug == "" {
		slug = Slugify(title)
	}

	var count int64
	query := s.db.Model(&db.Post{}).Where("slug = ?", slug)
	if selfID != 0 {
		query = query.Where("id <> ?", selfID)
	}
	if err := query.Count(&count).Error; err != nil {
		return "", err
	}
	if count > 0 {
		return "", ErrPostSlugTaken
	}
	return slug, nil
}
