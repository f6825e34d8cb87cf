package service

import (
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/groundworkcms/internal/db"
	"github.com/groundworkcms/internal/mirror"
	"github.com/groundworkcms/internal/storage"
)

// galleryPersister is the slice of the persistence layer the upload
// lifecycle needs. *GalleryService satisfies it.
type galleryPersister interface {
	ListByOwner(owner OwnerRef) ([]db.GalleryImage, error)
	Create(owner OwnerRef, input GalleryEntryInput) (*db.GalleryImage, error)
	SetFeature(id uint) error
}

// AdmitResult reports how a batch of uploads fared against the quota.
type AdmitResult struct {
	Admitted int `json:"admitted"`
	Rejected int `json:"rejected"`
}

// SaveResult reports the outcome of reconciling pending entries.
type SaveResult struct {
	// Persisted counts entries created before success or the first failure.
	Persisted int `json:"persisted"`
	// Deferred is set for draft owners: sessions were committed so the
	// files survive, but nothing could be persisted yet.
	Deferred bool `json:"deferred"`
}

// GalleryManager drives the upload lifecycle for one owner: tracking upload
// sessions, holding pending entries, reconciling them into the database on
// save, and reclaiming provider files on cancel. One manager exists per
// owner at a time; the registry enforces that.
type GalleryManager struct {
	mu       sync.Mutex
	owner    OwnerRef
	gallery  galleryPersister
	objects  storage.ObjectStorage
	pending  *PendingStore
	sessions map[string]bool // session id -> committed
}

// NewGalleryManager builds a manager for the owner and rehydrates its
// pending state from the mirror.
func NewGalleryManager(owner OwnerRef, gallery galleryPersister, objects storage.ObjectStorage, m mirror.Store) *GalleryManager {
	return &GalleryManager{
		owner:    owner,
		gallery:  gallery,
		objects:  objects,
		pending:  NewPendingStore(m, owner),
		sessions: make(map[string]bool),
	}
}

// Owner returns the owner this manager serves.
func (m *GalleryManager) Owner() OwnerRef {
	return m.owner
}

// NewSessionID issues an opaque, time-plus-random session identifier and
// tracks it as uncommitted.
func (m *GalleryManager) NewSessionID() string {
	id := fmt.Sprintf("%d-%s", time.Now().UnixMilli(), uuid.New().String()[:8])
	m.mu.Lock()
	m.sessions[id] = false
	m.mu.Unlock()
	return id
}

// TrackSession registers a caller-generated session id as uncommitted.
func (m *GalleryManager) TrackSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, known := m.sessions[sessionID]; !known {
		m.sessions[sessionID] = false
	}
}

// AdmitUploads appends freshly uploaded URLs to the pending list, capped by
// the quota, then commits the session so admitted files cannot be reclaimed
// before save. Rejected URLs stay out of the preserve set and the provider
// reclaims them with the session.
func (m *GalleryManager) AdmitUploads(sessionID string, urls []string, caption string) (AdmitResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, known := m.sessions[sessionID]; !known {
		m.sessions[sessionID] = false
	}

	persisted, err := m.gallery.ListByOwner(m.owner)
	if err != nil {
		return AdmitResult{}, err
	}

	admitted, rejected := m.pending.Add(urls, caption, len(persisted), maxDisplayOrder(persisted), sessionID)
	result := AdmitResult{Admitted: admitted, Rejected: rejected}
	if admitted == 0 {
		return result, nil
	}

	preserve := append(imageURLs(persisted), m.pending.URLs()...)
	if err := m.objects.Commit(sessionID, preserve); err != nil {
		return result, fmt.Errorf("failed to commit upload session %s: %w", sessionID, err)
	}
	m.sessions[sessionID] = true

	return result, nil
}

// Save reconciles pending entries into the persisted gallery.
func (m *GalleryManager) Save() (SaveResult, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	// Step 1: merge memory with the mirror. An empty memory list adopts the
	// mirror wholesale; otherwise the mirror contributes only URLs memory
	// does not already hold.
	merged := mergePending(m.pending.Items(), m.pending.MirrorItems())

	// Step 2: nothing to do.
	if len(merged) == 0 {
		return SaveResult{}, nil
	}

	// Step 3: draft owners cannot hold entries yet. Commit the sessions so
	// the files survive until the owner exists, keep the list.
	if m.owner.Draft() {
		m.pending.Replace(merged)
		urls := pendingURLs(merged)
		for sessionID := range m.sessions {
			if err := m.objects.Commit(sessionID, urls); err != nil {
				return SaveResult{Deferred: true}, fmt.Errorf("failed to commit upload session %s: %w", sessionID, err)
			}
			m.sessions[sessionID] = true
		}
		return SaveResult{Deferred: true}, nil
	}

	// Step 4: fetch the persisted gallery as ground truth.
	persisted, err := m.gallery.ListByOwner(m.owner)
	if err != nil {
		return SaveResult{}, err
	}

	// Step 5: keep only entries whose normalized URL is genuinely new.
	persistedSet := normalizedSet(imageURLs(persisted))
	fresh := make([]PendingImage, 0, len(merged))
	for _, item := range merged {
		normalized := storage.NormalizeURL(item.URL)
		if full, dup := persistedSet[normalized]; dup {
			if full != item.URL {
				log.Printf("gallery de-dup collision for %s: %q vs %q", m.owner.Key(), item.URL, full)
			}
			continue
		}
		fresh = append(fresh, item)
	}

	// Step 6: persist sequentially, aborting on the first failure with the
	// pending list left intact for retry.
	created := 0
	for _, item := range fresh {
		order := item.DisplayOrder
		if _, err := m.gallery.Create(m.owner, GalleryEntryInput{
			ImageURL:     item.URL,
			Caption:      item.Caption,
			DisplayOrder: &order,
		}); err != nil {
			m.pending.Replace(merged)
			return SaveResult{Persisted: created},
				fmt.Errorf("persisted %d of %d new gallery entries: %w", created, len(fresh), err)
		}
		created++
	}

	// Step 7: re-commit every tracked session with the union of pending and
	// persisted URLs, so nothing in use can be reclaimed. Failures here are
	// a recoverable leak risk, not a save failure.
	preserve := append(pendingURLs(merged), imageURLs(persisted)...)
	for sessionID := range m.sessions {
		if err := m.objects.Commit(sessionID, preserve); err != nil {
			log.Printf("failed to re-commit upload session %s: %v", sessionID, err)
			continue
		}
		m.sessions[sessionID] = true
	}

	// Step 8: only now clear the pending list and its mirror.
	m.pending.Clear()
	m.sessions = make(map[string]bool)

	return SaveResult{Persisted: created}, nil
}

// RemovePending discards one pending entry. If the same normalized URL is
// already persisted the provider file is in active use and no remote delete
// is attempted; otherwise its session is cleaned with a preserve set of
// everything except the discarded URL. Provider failures are logged and
// swallowed.
func (m *GalleryManager) RemovePending(index int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	items := m.pending.Items()
	if index < 0 || index >= len(items) {
		return ErrPendingIndex
	}
	target := items[index]

	persisted, err := m.gallery.ListByOwner(m.owner)
	if err != nil {
		// Without ground truth we cannot prove the file is unused; keep it
		// and only drop the local entry. An orphan is recoverable.
		log.Printf("skipping provider delete for %s: %v", target.URL, err)
		_, removeErr := m.pending.Remove(index)
		return removeErr
	}

	persistedSet := normalizedSet(imageURLs(persisted))
	if _, inUse := persistedSet[storage.NormalizeURL(target.URL)]; !inUse && target.SessionID != "" {
		preserve := imageURLs(persisted)
		targetNormalized := storage.NormalizeURL(target.URL)
		for i, item := range items {
			if i == index {
				continue
			}
			if storage.NormalizeURL(item.URL) == targetNormalized {
				continue
			}
			preserve = append(preserve, item.URL)
		}
		if ok, err := m.objects.Cleanup(target.SessionID, preserve); err != nil || !ok {
			log.Printf("best-effort cleanup of %s failed: ok=%v err=%v", target.URL, ok, err)
		}
	}

	_, err = m.pending.Remove(index)
	return err
}

// CancelSession reclaims an uncommitted session's files, e.g. when an
// upload dialog is dismissed. Everything persisted or still pending is
// preserved; the preserve set is never empty while images are in use.
func (m *GalleryManager) CancelSession(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.cancelSessionLocked(sessionID)
}

func (m *GalleryManager) cancelSessionLocked(sessionID string) {
	if committed, known := m.sessions[sessionID]; known && committed {
		delete(m.sessions, sessionID)
		return
	}

	preserve := m.pending.URLs()
	if persisted, err := m.gallery.ListByOwner(m.owner); err != nil {
		log.Printf("cancel of session %s proceeding without persisted gallery: %v", sessionID, err)
	} else {
		preserve = append(preserve, imageURLs(persisted)...)
	}

	if ok, err := m.objects.Cleanup(sessionID, preserve); err != nil || !ok {
		log.Printf("best-effort cleanup of session %s failed: ok=%v err=%v", sessionID, ok, err)
	}
	delete(m.sessions, sessionID)
}

// Shutdown reclaims every uncommitted session. Called when the editing
// surface for this owner goes away.
func (m *GalleryManager) Shutdown() {
	m.mu.Lock()
	defer m.mu.Unlock()

	for sessionID, committed := range m.sessions {
		if committed {
			delete(m.sessions, sessionID)
			continue
		}
		m.cancelSessionLocked(sessionID)
	}
}

// Pending exposes the owner's pending store for caption and order edits.
func (m *GalleryManager) Pending() *PendingStore {
	return m.pending
}

// SetFeature flips the feature flag optimistically on the caller's view of
// the gallery, then confirms it remotely, reverting the view on failure.
func (m *GalleryManager) SetFeature(view []db.GalleryImage, id uint) ([]db.GalleryImage, error) {
	previous := make([]bool, len(view))
	apply := func() {
		for i := range view {
			previous[i] = view[i].IsFeature
			view[i].IsFeature = view[i].ID == id
		}
	}
	revert := func() {
		for i := range view {
			view[i].IsFeature = previous[i]
		}
	}

	err := optimistic(apply, revert, func() error {
		return m.gallery.SetFeature(id)
	})
	return view, err
}

// optimistic applies a speculative local transition, issues the remote
// call, and applies the inverse transition when the call fails.
func optimistic(apply, revert func(), remote func() error) error {
	apply()
	if err := remote(); err != nil {
		revert()
		return err
	}
	return nil
}

// mergePending unions memory and mirror entries, preferring memory, keyed
// by normalized URL.
func mergePending(memory, mirrored []PendingImage) []PendingImage {
	if len(memory) == 0 {
		return mirrored
	}

	seen := make(map[string]struct{}, len(memory))
	for _, item := range memory {
		seen[storage.NormalizeURL(item.URL)] = struct{}{}
	}

	merged := memory
	for _, item := range mirrored {
		if _, dup := seen[storage.NormalizeURL(item.URL)]; dup {
			continue
		}
		merged = append(merged, item)
	}
	return merged
}

// normalizedSet maps normalized URLs to the first full URL seen for them.
func normalizedSet(urls []string) map[string]string {
	set := make(map[string]string, len(urls))
	for _, raw := range urls {
		normalized := storage.NormalizeURL(raw)
		if _, ok := set[normalized]; !ok {
			set[normalized] = raw
		}
	}
	return set
}

func imageURLs(items []db.GalleryImage) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.ImageURL)
	}
	return urls
}

func pendingURLs(items []PendingImage) []string {
	urls := make([]string, 0, len(items))
	for _, item := range items {
		urls = append(urls, item.URL)
	}
	return urls
}

func maxDisplayOrder(items []db.GalleryImage) int {
	max := 0
	for _, item := range items {
		if item.DisplayOrder != nil && *item.DisplayOrder > max {
			max = *item.DisplayOrder
		}
	}
	return max
}
