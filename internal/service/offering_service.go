package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/groundworkcms/internal/db"
)

var (
	ErrOfferingNotFound     = errors.New("service offering not found")
	ErrOfferingTitleMissing = errors.New("service offering title is required")
)

// OfferingService handles the company's service offerings.
type OfferingService struct {
	db *gorm.DB
}

// OfferingInput represents fields accepted when creating or updating an offering.
type OfferingInput struct {
	Title     string
	Summary   string
	Body      string
	Icon      string
	Published bool
	SortOrder int
}

// NewOfferingService creates an OfferingService instance.
func NewOfferingService(gdb *gorm.DB) *OfferingService {
	return &OfferingService{db: gdb}
}

// ListAll returns every offering ordered by priority.
func (s *OfferingService) ListAll() ([]db.Offering, error) {
	var items []db.Offering
	if err := s.db.Order("sort_order desc").Order("created_at asc").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// ListPublished returns offerings shown on the public services page.
func (s *OfferingService) ListPublished() ([]db.Offering, error) {
	var items []db.Offering
	if err := s.db.Where("published = ?", true).
		Order("sort_order desc").Order("created_at asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Get fetches an offering by id.
func (s *OfferingService) Get(id uint) (*db.Offering, error) {
	var item db.Offering
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOfferingNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new offering.
func (s *OfferingService) Create(input OfferingInput) (*db.Offering, error) {
	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrOfferingTitleMissing
	}

	item := db.Offering{
		Title:     title,
		Summary:   strings.TrimSpace(input.Summary),
		Body:      input.Body,
		Icon:      strings.TrimSpace(input.Icon),
		Published: input.Published,
		SortOrder: input.SortOrder,
	}
	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// Update modifies an existing offering.
func (s *OfferingService) Update(id uint, input OfferingInput) (*db.Offering, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	title := strings.TrimSpace(input.Title)
	if title == "" {
		return nil, ErrOfferingTitleMissing
	}

	item.Title = title
	item.Summary = strings.TrimSpace(input.Summary)
	item.Body = input.Body
	item.Icon = strings.TrimSpace(input.Icon)
	item.Published = input.Published
	item.SortOrder = input.SortOrder

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an offering.
func (s *OfferingService) Delete(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}
