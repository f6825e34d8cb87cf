package storage

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	storagego "github.com/supabase-community/storage-go"
	"gorm.io/gorm"

	"github.com/groundworkcms/internal/db"
)

const sessionPrefix = "sessions"

// SupabaseStorage implements ObjectStorage on Supabase Storage. Files live
// under sessions/{id}/ prefixes; commit state and retained URLs are kept in
// the upload_sessions ledger so reclaiming is driven by the database, not
// by provider metadata.
type SupabaseStorage struct {
	client  *storagego.Client
	bucket  string
	baseURL string
	db      *gorm.DB
}

// NewSupabaseStorage builds a client for the given Supabase project.
func NewSupabaseStorage(supabaseURL, serviceKey, bucket string, gdb *gorm.DB) *SupabaseStorage {
	baseURL := strings.TrimRight(supabaseURL, "/")
	client := storagego.NewClient(baseURL+"/storage/v1", serviceKey, nil)

	return &SupabaseStorage{
		client:  client,
		bucket:  bucket,
		baseURL: baseURL,
		db:      gdb,
	}
}

func (s *SupabaseStorage) Upload(sessionID, filename, contentType string, data []byte) (string, error) {
	ext := filepath.Ext(filename)
	objectPath := fmt.Sprintf("%s/%s/%s-%s%s",
		sessionPrefix, sessionID, time.Now().Format("20060102"), uuid.New().String(), ext)

	upsert := true
	_, err := s.client.UploadFile(s.bucket, objectPath, bytes.NewReader(data), storagego.FileOptions{
		ContentType: &contentType,
		Upsert:      &upsert,
	})
	if err != nil {
		return "", fmt.Errorf("failed to upload file: %w", err)
	}

	if err := s.ensureSession(sessionID); err != nil {
		return "", err
	}

	return s.publicURL(objectPath), nil
}

func (s *SupabaseStorage) Commit(sessionID string, urls []string) error {
	payload, err := json.Marshal(urls)
	if err != nil {
		return err
	}

	var session db.UploadSession
	if err := s.db.Where("session_id = ?", sessionID).First(&session).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		session = db.UploadSession{SessionID: sessionID}
	}

	session.Committed = true
	session.RetainedURLs = payload
	return s.db.Save(&session).Error
}

func (s *SupabaseStorage) Cleanup(sessionID string, preserveURLs []string) (bool, error) {
	preserve := make(map[string]struct{}, len(preserveURLs))
	for _, raw := range preserveURLs {
		preserve[NormalizeURL(raw)] = struct{}{}
	}

	// Retained URLs outrank session state: a committed file is never a
	// deletable target even when its session is being cleaned up.
	retained, err := s.retainedURLs()
	if err != nil {
		return false, err
	}
	for normalized := range retained {
		preserve[normalized] = struct{}{}
	}

	prefix := fmt.Sprintf("%s/%s", sessionPrefix, sessionID)
	files, err := s.client.ListFiles(s.bucket, prefix, storagego.FileSearchOptions{Limit: 1000})
	if err != nil {
		return false, fmt.Errorf("failed to list session files: %w", err)
	}

	deletable := make([]string, 0, len(files))
	for _, file := range files {
		objectPath := prefix + "/" + file.Name
		if _, keep := preserve[NormalizeURL(s.publicURL(objectPath))]; keep {
			continue
		}
		deletable = append(deletable, objectPath)
	}

	if len(deletable) > 0 {
		if _, err := s.client.RemoveFile(s.bucket, deletable); err != nil {
			return false, fmt.Errorf("failed to delete session files: %w", err)
		}
	}

	// Drop the ledger row for sessions that were never committed.
	if err := s.db.Where("session_id = ? AND committed = ?", sessionID, false).
		Delete(&db.UploadSession{}).Error; err != nil {
		return false, err
	}

	return true, nil
}

func (s *SupabaseStorage) publicURL(objectPath string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", s.baseURL, s.bucket, objectPath)
}

func (s *SupabaseStorage) ensureSession(sessionID string) error {
	var session db.UploadSession
	err := s.db.Where("session_id = ?", sessionID).First(&session).Error
	if err == nil {
		return nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return err
	}
	return s.db.Create(&db.UploadSession{SessionID: sessionID}).Error
}

// retainedURLs collects every URL committed by any session, normalized.
func (s *SupabaseStorage) retainedURLs() (map[string]struct{}, error) {
	var sessions []db.UploadSession
	if err := s.db.Where("committed = ?", true).Find(&sessions).Error; err != nil {
		return nil, err
	}

	retained := make(map[string]struct{})
	for _, session := range sessions {
		if len(session.RetainedURLs) == 0 {
			continue
		}
		var urls []string
		if err := json.Unmarshal(session.RetainedURLs, &urls); err != nil {
			continue
		}
		for _, raw := range urls {
			retained[NormalizeURL(raw)] = struct{}{}
		}
	}
	return retained, nil
}
