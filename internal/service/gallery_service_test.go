package service

import (
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/groundworkcms/internal/db"
)

func setupGalleryTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	gdb, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.GalleryImage{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func createEntry(t *testing.T, svc *GalleryService, owner OwnerRef, url string, order int) *db.GalleryImage {
	t.Helper()
	item, err := svc.Create(owner, GalleryEntryInput{ImageURL: url, DisplayOrder: &order})
	if err != nil {
		t.Fatalf("failed to create gallery entry: %v", err)
	}
	return item
}

func TestGalleryCreateAssignsNextOrder(t *testing.T) {
	gdb, cleanup := setupGalleryTestDB(t)
	defer cleanup()

	svc := NewGalleryService(gdb)
	owner := OwnerRef{Kind: OwnerKindProject, ID: 1}

	if _, err := svc.Create(owner, GalleryEntryInput{}); err == nil {
		t.Fatalf("expected error for missing image url")
	}

	createEntry(t, svc, owner, "https://cdn.example.com/a.jpg", 4)
	item, err := svc.Create(owner, GalleryEntryInput{ImageURL: "https://cdn.example.com/b.jpg"})
	if err != nil {
		t.Fatalf("failed to create gallery entry: %v", err)
	}
	if item.DisplayOrder == nil || *item.DisplayOrder != 5 {
		t.Fatalf("expected display order 5, got %v", item.DisplayOrder)
	}
}

func TestGalleryQuota(t *testing.T) {
	gdb, cleanup := setupGalleryTestDB(t)
	defer cleanup()

	svc := NewGalleryService(gdb)
	owner := OwnerRef{Kind: OwnerKindProject, ID: 2}

	for i := 0; i < MaxImagesPerOwner; i++ {
		if _, err := svc.Create(owner, GalleryEntryInput{ImageURL: "https://cdn.example.com/img.jpg"}); err != nil {
			t.Fatalf("failed to create entry %d: %v", i, err)
		}
	}

	if _, err := svc.Create(owner, GalleryEntryInput{ImageURL: "https://cdn.example.com/over.jpg"}); err != ErrGalleryQuotaReached {
		t.Fatalf("expected quota error, got %v", err)
	}
}

func TestGalleryMoveUpSwapsNeighborOrders(t *testing.T) {
	gdb, cleanup := setupGalleryTestDB(t)
	defer cleanup()

	svc := NewGalleryService(gdb)
	owner := OwnerRef{Kind: OwnerKindProject, ID: 3}

	a := createEntry(t, svc, owner, "https://cdn.example.com/a.jpg", 2)
	b := createEntry(t, svc, owner, "https://cdn.example.com/b.jpg", 5)

	if err := svc.MoveUp(b.ID); err != nil {
		t.Fatalf("failed to move entry up: %v", err)
	}

	reloadedA, err := svc.Get(a.ID)
	if err != nil {
		t.Fatalf("failed to reload entry: %v", err)
	}
	reloadedB, err := svc.Get(b.ID)
	if err != nil {
		t.Fatalf("failed to reload entry: %v", err)
	}
	if *reloadedA.DisplayOrder != 5 || *reloadedB.DisplayOrder != 2 {
		t.Fatalf("expected orders swapped to a=5 b=2, got a=%d b=%d",
			*reloadedA.DisplayOrder, *reloadedB.DisplayOrder)
	}
}

func TestGalleryMoveUpWithoutNeighborIsNoop(t *testing.T) {
	gdb, cleanup := setupGalleryTestDB(t)
	defer cleanup()

	svc := NewGalleryService(gdb)
	owner := OwnerRef{Kind: OwnerKindProject, ID: 4}

	top := createEntry(t, svc, owner, "https://cdn.example.com/top.jpg", 1)
	if err := svc.MoveUp(top.ID); err != nil {
		t.Fatalf("expected no-op, got %v", err)
	}

	reloaded, err := svc.Get(top.ID)
	if err != nil {
		t.Fatalf("failed to reload entry: %v", err)
	}
	if *reloaded.DisplayOrder != 1 {
		t.Fatalf("expected order unchanged, got %d", *reloaded.DisplayOrder)
	}
}

func TestGallerySetFeatureIsExclusive(t *testing.T) {
	gdb, cleanup := setupGalleryTestDB(t)
	defer cleanup()

	svc := NewGalleryService(gdb)
	owner := OwnerRef{Kind: OwnerKindPost, ID: 5}

	a := createEntry(t, svc, owner, "https://cdn.example.com/a.jpg", 1)
	b := createEntry(t, svc, owner, "https://cdn.example.com/b.jpg", 2)

	if err := svc.SetFeature(a.ID); err != nil {
		t.Fatalf("failed to set feature: %v", err)
	}
	if err := svc.SetFeature(b.ID); err != nil {
		t.Fatalf("failed to move feature: %v", err)
	}

	items, err := svc.ListByOwner(owner)
	if err != nil {
		t.Fatalf("failed to list gallery: %v", err)
	}
	features := 0
	for _, item := range items {
		if item.IsFeature {
			features++
			if item.ID != b.ID {
				t.Fatalf("expected feature on entry %d, found on %d", b.ID, item.ID)
			}
		}
	}
	if features != 1 {
		t.Fatalf("expected exactly one feature image, got %d", features)
	}
}

func TestGalleryReorderUpdatesChangedPositions(t *testing.T) {
	gdb, cleanup := setupGalleryTestDB(t)
	defer cleanup()

	svc := NewGalleryService(gdb)
	owner := OwnerRef{Kind: OwnerKindProject, ID: 6}

	a := createEntry(t, svc, owner, "https://cdn.example.com/a.jpg", 1)
	b := createEntry(t, svc, owner, "https://cdn.example.com/b.jpg", 2)
	c := createEntry(t, svc, owner, "https://cdn.example.com/c.jpg", 3)

	if err := svc.Reorder(owner, []uint{c.ID, a.ID, b.ID}); err != nil {
		t.Fatalf("failed to reorder: %v", err)
	}

	items, err := svc.ListByOwner(owner)
	if err != nil {
		t.Fatalf("failed to list gallery: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	want := []uint{c.ID, a.ID, b.ID}
	for i, item := range items {
		if item.ID != want[i] {
			t.Fatalf("expected item %d at position %d, got %d", want[i], i, item.ID)
		}
		if *item.DisplayOrder != i+1 {
			t.Fatalf("expected order %d at position %d, got %d", i+1, i, *item.DisplayOrder)
		}
	}
}

func TestGalleryUpdateEntryPatch(t *testing.T) {
	gdb, cleanup := setupGalleryTestDB(t)
	defer cleanup()

	svc := NewGalleryService(gdb)
	owner := OwnerRef{Kind: OwnerKindProject, ID: 7}

	item := createEntry(t, svc, owner, "https://cdn.example.com/a.jpg", 1)

	caption := "steel framing"
	updated, err := svc.UpdateEntry(item.ID, GalleryEntryPatch{Caption: &caption})
	if err != nil {
		t.Fatalf("failed to patch caption: %v", err)
	}
	if updated.Caption != "steel framing" {
		t.Fatalf("expected caption updated, got %q", updated.Caption)
	}

	reloaded, err := svc.Get(item.ID)
	if err != nil {
		t.Fatalf("failed to reload entry: %v", err)
	}
	if *reloaded.DisplayOrder != 1 {
		t.Fatalf("expected display order untouched by caption patch, got %d", *reloaded.DisplayOrder)
	}
}
