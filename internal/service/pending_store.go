package service

import (
	"encoding/json"
	"errors"
	"log"
	"sync"
	"time"

	"github.com/groundworkcms/internal/mirror"
)

var ErrPendingIndex = errors.New("pending entry index out of range")

const pendingKeyPrefix = "gallery:pending:"

// PendingImage is an uploaded file not yet recorded in the database. It
// exists only in memory and in the mirror, keyed by the owner.
type PendingImage struct {
	URL          string `json:"url"`
	Caption      string `json:"caption"`
	DisplayOrder int    `json:"display_order"`
	SessionID    string `json:"session_id,omitempty"`
	// EditedAt flags an in-flight edit for the admin UI; it carries no
	// correctness weight.
	EditedAt int64 `json:"edited_at,omitempty"`
}

// PendingStore keeps an owner's ordered pending entries and mirrors every
// mutation into the durable store, so the list survives remounts and
// process restarts. In-memory state is never trusted across constructions:
// a new store rehydrates from the mirror unconditionally. The store carries
// its own lock: caption and order edits arrive on request goroutines that
// do not hold the owning manager's mutex.
type PendingStore struct {
	mu     sync.Mutex
	mirror mirror.Store
	key    string
	items  []PendingImage
}

// NewPendingStore builds the store for one owner and rehydrates it.
func NewPendingStore(m mirror.Store, owner OwnerRef) *PendingStore {
	s := &PendingStore{mirror: m, key: pendingKey(owner)}
	s.items = s.MirrorItems()
	return s
}

func pendingKey(owner OwnerRef) string {
	return pendingKeyPrefix + owner.Key()
}

// MirrorItems reads the mirrored list without touching in-memory state.
// Corrupt payloads are dropped along with their key and read as empty.
func (s *PendingStore) MirrorItems() []PendingImage {
	raw, ok, err := s.mirror.Get(s.key)
	if err != nil {
		log.Printf("pending mirror read failed for %s: %v", s.key, err)
		return nil
	}
	if !ok || raw == "" {
		return nil
	}

	var items []PendingImage
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		log.Printf("dropping corrupt pending mirror for %s: %v", s.key, err)
		if removeErr := s.mirror.Remove(s.key); removeErr != nil {
			log.Printf("failed to remove corrupt mirror key %s: %v", s.key, removeErr)
		}
		return nil
	}
	return items
}

// Add appends entries for the given URLs, capping the combined persisted
// plus pending count at MaxImagesPerOwner. Display orders continue from
// the highest order already taken on either side. It returns how many URLs
// were admitted and how many were rejected by the quota.
func (s *PendingStore) Add(urls []string, caption string, persistedCount, maxPersistedOrder int, sessionID string) (admitted, rejected int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := MaxImagesPerOwner - persistedCount - len(s.items)
	if remaining < 0 {
		remaining = 0
	}

	admitted = len(urls)
	if admitted > remaining {
		admitted = remaining
	}
	rejected = len(urls) - admitted
	if admitted == 0 {
		return admitted, rejected
	}

	order := maxPersistedOrder
	for _, item := range s.items {
		if item.DisplayOrder > order {
			order = item.DisplayOrder
		}
	}

	for _, url := range urls[:admitted] {
		order++
		s.items = append(s.items, PendingImage{
			URL:          url,
			Caption:      caption,
			DisplayOrder: order,
			SessionID:    sessionID,
		})
	}
	s.persist()
	return admitted, rejected
}

// Remove deletes one pending entry and returns it.
func (s *PendingStore) Remove(index int) (PendingImage, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return PendingImage{}, ErrPendingIndex
	}
	removed := s.items[index]
	s.items = append(s.items[:index], s.items[index+1:]...)
	s.persist()
	return removed, nil
}

// UpdateCaption mutates one entry's caption and stamps it recently edited.
func (s *PendingStore) UpdateCaption(index int, caption string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrPendingIndex
	}
	s.items[index].Caption = caption
	s.items[index].EditedAt = time.Now().UnixMilli()
	s.persist()
	return nil
}

// UpdateOrder mutates one entry's display order and stamps it recently edited.
func (s *PendingStore) UpdateOrder(index, order int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if index < 0 || index >= len(s.items) {
		return ErrPendingIndex
	}
	s.items[index].DisplayOrder = order
	s.items[index].EditedAt = time.Now().UnixMilli()
	s.persist()
	return nil
}

// Items returns a copy of the pending list.
func (s *PendingStore) Items() []PendingImage {
	s.mu.Lock()
	defer s.mu.Unlock()

	items := make([]PendingImage, len(s.items))
	copy(items, s.items)
	return items
}

// URLs returns the pending URLs in list order.
func (s *PendingStore) URLs() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	urls := make([]string, 0, len(s.items))
	for _, item := range s.items {
		urls = append(urls, item.URL)
	}
	return urls
}

// Len returns the number of pending entries.
func (s *PendingStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

// Replace swaps in a reconciled list and re-mirrors it.
func (s *PendingStore) Replace(items []PendingImage) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
	s.persist()
}

// Clear empties the list and removes the mirror key.
func (s *PendingStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = nil
	s.persist()
}

// persist serializes the full list into the mirror; an empty list removes
// the key entirely. Callers hold s.mu.
func (s *PendingStore) persist() {
	if len(s.items) == 0 {
		if err := s.mirror.Remove(s.key); err != nil {
			log.Printf("failed to clear pending mirror %s: %v", s.key, err)
		}
		return
	}

	payload, err := json.Marshal(s.items)
	if err != nil {
		log.Printf("failed to serialize pending mirror %s: %v", s.key, err)
		return
	}
	if err := s.mirror.Set(s.key, string(payload)); err != nil {
		log.Printf("failed to write pending mirror %s: %v", s.key, err)
	}
}
