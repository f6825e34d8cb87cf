package storage

import (
	"encoding/json"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/groundworkcms/internal/db"
)

// Sweeper reclaims files of upload sessions that were started but never
// committed, e.g. an admin who uploaded images and closed the tab. Orphaned
// files are a recoverable leak, so every failure here is logged and skipped.
type Sweeper struct {
	objects ObjectStorage
	db      *gorm.DB
	maxAge  time.Duration
}

// NewSweeper returns a sweeper reclaiming uncommitted sessions older than maxAge.
func NewSweeper(objects ObjectStorage, gdb *gorm.DB, maxAge time.Duration) *Sweeper {
	return &Sweeper{objects: objects, db: gdb, maxAge: maxAge}
}

// Start runs the sweep loop in the background.
func (s *Sweeper) Start(interval time.Duration) {
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		// initial run shortly after boot
		time.Sleep(10 * time.Second)
		if err := s.SweepOnce(); err != nil {
			log.Printf("storage sweep error: %v", err)
		}
		for range ticker.C {
			if err := s.SweepOnce(); err != nil {
				log.Printf("storage sweep error: %v", err)
			}
		}
	}()
}

// SweepOnce reclaims all stale uncommitted sessions. The preserve set is the
// union of every persisted gallery URL and every retained URL, so a file in
// use anywhere is never a deletable target.
func (s *Sweeper) SweepOnce() error {
	cutoff := time.Now().Add(-s.maxAge)

	var stale []db.UploadSession
	if err := s.db.Where("committed = ? AND created_at < ?", false, cutoff).
		Find(&stale).Error; err != nil {
		return err
	}
	if len(stale) == 0 {
		return nil
	}

	preserve, err := s.preserveSet()
	if err != nil {
		return err
	}

	for _, session := range stale {
		if _, err := s.objects.Cleanup(session.SessionID, preserve); err != nil {
			log.Printf("failed to reclaim upload session %s: %v", session.SessionID, err)
		}
	}
	return nil
}

func (s *Sweeper) preserveSet() ([]string, error) {
	var persisted []string
	if err := s.db.Model(&db.GalleryImage{}).
		Pluck("image_url", &persisted).Error; err != nil {
		return nil, err
	}

	var committed []db.UploadSession
	if err := s.db.Where("committed = ?", true).Find(&committed).Error; err != nil {
		return nil, err
	}

	for _, session := range committed {
		if len(session.RetainedURLs) == 0 {
			continue
		}
		var urls []string
		if err := json.Unmarshal(session.RetainedURLs, &urls); err != nil {
			continue
		}
		persisted = append(persisted, urls...)
	}
	return persisted, nil
}
