package service

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/groundworkcms/internal/db"
)

var (
	ErrGalleryNotFound     = errors.New("gallery image not found")
	ErrGalleryImageMissing = errors.New("gallery image url is required")
	ErrGalleryQuotaReached = errors.New("gallery image quota reached")
)

// MaxImagesPerOwner caps the combined count of persisted and pending
// gallery entries for one owner.
const MaxImagesPerOwner = 10

// GalleryService handles the persisted side of owner galleries: CRUD plus
// display ordering and the exclusive feature flag.
type GalleryService struct {
	db *gorm.DB
}

// GalleryEntryInput represents fields accepted when creating an entry.
type GalleryEntryInput struct {
	ImageURL     string
	Caption      string
	DisplayOrder *int
}

// GalleryEntryPatch is a partial update; nil fields are left untouched.
type GalleryEntryPatch struct {
	Caption      *string
	DisplayOrder *int
}

// NewGalleryService creates a GalleryService instance.
func NewGalleryService(gdb *gorm.DB) *GalleryService {
	return &GalleryService{db: gdb}
}

// ListByOwner returns an owner's gallery ordered by display order. Entries
// without an order sort last so legacy rows stay visible.
func (s *GalleryService) ListByOwner(owner OwnerRef) ([]db.GalleryImage, error) {
	if owner.Draft() {
		return nil, nil
	}

	var items []db.GalleryImage
	if err := s.ownerScope(owner).
		Order("display_order IS NULL").
		Order("display_order asc").
		Order("id asc").
		Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// CountByOwner returns the number of persisted entries for an owner.
func (s *GalleryService) CountByOwner(owner OwnerRef) (int64, error) {
	if owner.Draft() {
		return 0, nil
	}
	var count int64
	if err := s.ownerScope(owner).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

// Get fetches one entry by id.
func (s *GalleryService) Get(id uint) (*db.GalleryImage, error) {
	var item db.GalleryImage
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrGalleryNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Create inserts a new entry for the owner. Without an explicit display
// order it is appended after the current maximum.
func (s *GalleryService) Create(owner OwnerRef, input GalleryEntryInput) (*db.GalleryImage, error) {
	imageURL := strings.TrimSpace(input.ImageURL)
	if imageURL == "" {
		return nil, ErrGalleryImageMissing
	}

	count, err := s.CountByOwner(owner)
	if err != nil {
		return nil, err
	}
	if count >= MaxImagesPerOwner {
		return nil, ErrGalleryQuotaReached
	}

	displayOrder := input.DisplayOrder
	if displayOrder == nil {
		next, err := s.NextDisplayOrder(owner)
		if err != nil {
			return nil, err
		}
		displayOrder = &next
	}

	item := db.GalleryImage{
		OwnerKind:    owner.Kind,
		OwnerID:      owner.ID,
		ImageURL:     imageURL,
		Caption:      strings.TrimSpace(input.Caption),
		DisplayOrder: displayOrder,
	}

	if err := s.db.Create(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

// UpdateEntry applies a partial update to caption and/or display order.
func (s *GalleryService) UpdateEntry(id uint, patch GalleryEntryPatch) (*db.GalleryImage, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	updates := map[string]interface{}{}
	if patch.Caption != nil {
		updates["caption"] = strings.TrimSpace(*patch.Caption)
	}
	if patch.DisplayOrder != nil {
		updates["display_order"] = *patch.DisplayOrder
	}
	if len(updates) == 0 {
		return item, nil
	}

	if err := s.db.Model(item).Updates(updates).Error; err != nil {
		return nil, err
	}
	return item, nil
}

// DeleteEntry removes an entry.
func (s *GalleryService) DeleteEntry(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	return s.db.Delete(item).Error
}

// SetFeature marks exactly one entry as the owner's feature image.
func (s *GalleryService) SetFeature(id uint) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.GalleryImage{}).
			Where("owner_kind = ? AND owner_id = ? AND is_feature = ?", item.OwnerKind, item.OwnerID, true).
			Update("is_feature", false).Error; err != nil {
			return err
		}
		return tx.Model(&db.GalleryImage{}).
			Where("id = ?", item.ID).
			Update("is_feature", true).Error
	})
}

// MoveUp swaps the entry's display order with its nearest lower neighbor.
// Without a neighbor the call is a no-op.
func (s *GalleryService) MoveUp(id uint) error {
	return s.swapWithNeighbor(id, true)
}

// MoveDown swaps the entry's display order with its nearest higher neighbor.
func (s *GalleryService) MoveDown(id uint) error {
	return s.swapWithNeighbor(id, false)
}

func (s *GalleryService) swapWithNeighbor(id uint, up bool) error {
	item, err := s.Get(id)
	if err != nil {
		return err
	}
	if item.DisplayOrder == nil {
		return nil
	}

	owner := OwnerRef{Kind: item.OwnerKind, ID: item.OwnerID}
	query := s.ownerScope(owner).Where("id <> ?", item.ID)
	if up {
		query = query.Where("display_order < ?", *item.DisplayOrder).Order("display_order desc")
	} else {
		query = query.Where("display_order > ?", *item.DisplayOrder).Order("display_order asc")
	}

	var neighbor db.GalleryImage
	if err := query.First(&neighbor).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return err
	}

	// Two independent updates in the original design; a transaction is free
	// here and a crash between them can no longer duplicate an order value.
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&db.GalleryImage{}).
			Where("id = ?", item.ID).
			Update("display_order", neighbor.DisplayOrder).Error; err != nil {
			return err
		}
		return tx.Model(&db.GalleryImage{}).
			Where("id = ?", neighbor.ID).
			Update("display_order", item.DisplayOrder).Error
	})
}

// Reorder applies a full new sequence, updating only entries whose position
// changed. Unknown ids are ignored, which also heals duplicate-order states
// left by older data.
func (s *GalleryService) Reorder(owner OwnerRef, ids []uint) error {
	items, err := s.ListByOwner(owner)
	if err != nil {
		return err
	}

	byID := make(map[uint]db.GalleryImage, len(items))
	for _, item := range items {
		byID[item.ID] = item
	}

	return s.db.Transaction(func(tx *gorm.DB) error {
		for position, id := range ids {
			item, ok := byID[id]
			if !ok {
				continue
			}
			order := position + 1
			if item.DisplayOrder != nil && *item.DisplayOrder == order {
				continue
			}
			if err := tx.Model(&db.GalleryImage{}).
				Where("id = ?", id).
				Update("display_order", order).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

// NextDisplayOrder returns max(display_order)+1 for the owner.
func (s *GalleryService) NextDisplayOrder(owner OwnerRef) (int, error) {
	if owner.Draft() {
		return 1, nil
	}
	var maxOrder int
	if err := s.ownerScope(owner).
		Select("COALESCE(MAX(display_order), 0)").
		Scan(&maxOrder).Error; err != nil {
		return 0, err
	}
	return maxOrder + 1, nil
}

func (s *GalleryService) ownerScope(owner OwnerRef) *gorm.DB {
	return s.db.Model(&db.GalleryImage{}).
		Where("owner_kind = ? AND owner_id = ?", owner.Kind, owner.ID)
}
