package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/groundworkcms/internal/db"
)

var (
	ErrJobNotFound     = errors.New("job posting not found")
	ErrJobTitleMissing = errors.New("job title is required")
)

// JobService handles career postings.
type JobService struct {
	db *gorm.DB
}

// JobInput represents fields accepted when creating or updating a posting.
type JobInput struct {
	Title          string
	Location       string
	EmploymentType string
	Description    string
	Open           bool
}

// NewJobService creates a JobService instance.
func NewJobService(gdb *gorm.DB) *JobService {
	return &JobService{db: gdb}
}

// ListAll returns every posting, newest first.
func (s *JobService) ListAll() ([]db.JobPosting, error) {
	var items []db.JobPosting
	if err := s.db.Order("created_at desc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListOpen returns postings shown on the public careers page.
func (s *JobService) ListOpen() ([]db.JobPosting, error) {
	var items []db.JobPosting
	if err := s.db.Where("open = ?", true).
		Order("created_at desc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches a posting by id.
func (s *JobService) Get(id uint) (*db.JobPosting, error) {
	var item db.JobPosting
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrJobNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new posting.
func (s *JobService) Create(input JobInput) (*db.JobPosting, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrJobTitleMissing
	}

	item := db.JobPosting{
		Title:          title,
		Location:       strings.TrimSpace(input.Location),
		EmploymentType: strings.TrimSpace(input.EmploymentType),
		Description:    input.Description,
		Open:           input.Open,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing posting.
func (s *JobService) Update(id uint, input JobInput) (*db.JobPosting, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrJobTitleMissing
	}

	item.Title = title
	item.Location = strings.TrimSpace(input.Location)
	item.EmploymentType = strings.TrimSpace(input.EmploymentType)
	item.Description = input.Description
	item.Open = input.Open

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes a posting.
func (s *JobService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}
