package service

import (
	"testing"

	"github.com/groundworkcms/internal/mirror"
)

func TestPendingStoreMirrorRoundTrip(t *testing.T) {
	store := mirror.NewMemoryStore()
	owner := OwnerRef{Kind: OwnerKindProject, ID: 7}

	pending := NewPendingStore(store, owner)
	admitted, rejected := pending.Add([]string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
		"https://cdn.example.com/c.jpg",
	}, "site progress", 0, 0, "sess-1")
	if admitted != 3 || rejected != 0 {
		t.Fatalf("expected 3 admitted, got admitted=%d rejected=%d", admitted, rejected)
	}
	if err := pending.UpdateCaption(1, "foundation pour"); err != nil {
		t.Fatalf("failed to update caption: %v", err)
	}

	// Simulate a remount with lost memory: only the mirror survives.
	rehydrated := NewPendingStore(store, owner)
	items := rehydrated.Items()
	if len(items) != 3 {
		t.Fatalf("expected 3 rehydrated items, got %d", len(items))
	}
	if items[1].Caption != "foundation pour" {
		t.Fatalf("expected caption to survive rehydration, got %q", items[1].Caption)
	}
	for i, item := range items {
		if item.DisplayOrder != i+1 {
			t.Fatalf("expected display order %d, got %d", i+1, item.DisplayOrder)
		}
	}
	if items[0].SessionID != "sess-1" {
		t.Fatalf("expected session id to survive rehydration, got %q", items[0].SessionID)
	}
}

func TestPendingStoreQuotaPartialAdmission(t *testing.T) {
	pending := NewPendingStore(mirror.NewMemoryStore(), OwnerRef{Kind: OwnerKindProject, ID: 1})

	urls := []string{"u1", "u2", "u3", "u4", "u5"}
	admitted, rejected := pending.Add(urls, "", 8, 8, "sess-1")
	if admitted != 2 || rejected != 3 {
		t.Fatalf("expected 2 admitted and 3 rejected, got admitted=%d rejected=%d", admitted, rejected)
	}
	if pending.Len() != 2 {
		t.Fatalf("expected 2 pending entries, got %d", pending.Len())
	}

	// Quota full: nothing further is admitted.
	admitted, rejected = pending.Add([]string{"u6"}, "", 8, 10, "sess-2")
	if admitted != 0 || rejected != 1 {
		t.Fatalf("expected full rejection, got admitted=%d rejected=%d", admitted, rejected)
	}
}

func TestPendingStoreOrderContinuesFromMax(t *testing.T) {
	pending := NewPendingStore(mirror.NewMemoryStore(), OwnerRef{Kind: OwnerKindPost, ID: 3})

	pending.Add([]string{"a"}, "", 2, 5, "s1")
	items := pending.Items()
	if items[0].DisplayOrder != 6 {
		t.Fatalf("expected order to continue after persisted max, got %d", items[0].DisplayOrder)
	}

	if err := pending.UpdateOrder(0, 9); err != nil {
		t.Fatalf("failed to update order: %v", err)
	}
	pending.Add([]string{"b"}, "", 2, 5, "s1")
	items = pending.Items()
	if items[1].DisplayOrder != 10 {
		t.Fatalf("expected order to continue after pending max, got %d", items[1].DisplayOrder)
	}
}

func TestPendingStoreCorruptMirrorFallsBackEmpty(t *testing.T) {
	store := mirror.NewMemoryStore()
	owner := OwnerRef{Kind: OwnerKindProject, ID: 9}
	if err := store.Set(pendingKey(owner), "{not json"); err != nil {
		t.Fatalf("failed to seed corrupt mirror: %v", err)
	}

	pending := NewPendingStore(store, owner)
	if pending.Len() != 0 {
		t.Fatalf("expected empty pending list, got %d entries", pending.Len())
	}

	if _, ok, _ := store.Get(pendingKey(owner)); ok {
		t.Fatalf("expected corrupt mirror key to be removed")
	}
}

func TestPendingStoreEmptyListRemovesMirrorKey(t *testing.T) {
	store := mirror.NewMemoryStore()
	owner := OwnerRef{Kind: OwnerKindProject, ID: 4}

	pending := NewPendingStore(store, owner)
	pending.Add([]string{"only"}, "", 0, 0, "s1")
	if _, ok, _ := store.Get(pendingKey(owner)); !ok {
		t.Fatalf("expected mirror key after add")
	}

	if _, err := pending.Remove(0); err != nil {
		t.Fatalf("failed to remove pending entry: %v", err)
	}
	if _, ok, _ := store.Get(pendingKey(owner)); ok {
		t.Fatalf("expected mirror key removed once list is empty")
	}

	if _, err := pending.Remove(0); err == nil {
		t.Fatalf("expected out-of-range error")
	}
}
