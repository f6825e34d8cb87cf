package handler

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/groundworkcms/internal/db"
	"github.com/groundworkcms/internal/mirror"
	"github.com/groundworkcms/internal/service"
)

type fakeObjects struct {
	commits  map[string][]string
	cleanups []string
}

func (f *fakeObjects) Upload(sessionID, filename, contentType string, data []byte) (string, error) {
	return fmt.Sprintf("https://cdn.example.com/%s/%s", sessionID, filename), nil
}

func (f *fakeObjects) Commit(sessionID string, urls []string) error {
	if f.commits == nil {
		f.commits = make(map[string][]string)
	}
	f.commits[sessionID] = append([]string(nil), urls...)
	return nil
}

func (f *fakeObjects) Cleanup(sessionID string, preserveURLs []string) (bool, error) {
	f.cleanups = append(f.cleanups, sessionID)
	return true, nil
}

func setupGalleryHandlerAPI(t *testing.T) (*API, *fakeObjects, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:gallery-handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := gdb.AutoMigrate(&db.GalleryImage{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	objects := &fakeObjects{}
	galleries := service.NewGalleryService(gdb)
	api := &API{
		db:        gdb,
		galleries: galleries,
		managers:  service.NewManagerRegistry(galleries, objects, mirror.NewMemoryStore()),
		objects:   objects,
	}

	return api, objects, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func newGalleryTestRouter(api *API) *gin.Engine {
	router := gin.New()
	router.GET("/gallery", api.GetGallery)
	router.POST("/gallery/save", api.SaveGallery)
	router.DELETE("/gallery/pending", api.DeletePendingEntry)
	return router
}

type galleryResponse struct {
	Persisted []db.GalleryImage      `json:"persisted"`
	Pending   []service.PendingImage `json:"pending"`
	Max       int                    `json:"max"`
}

func fetchGallery(t *testing.T, router *gin.Engine, owner string) galleryResponse {
	t.Helper()

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/gallery?"+owner, nil)
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	var response galleryResponse
	if err := json.Unmarshal(recorder.Body.Bytes(), &response); err != nil {
		t.Fatalf("failed to decode gallery response: %v", err)
	}
	return response
}

func TestSaveGalleryPersistsPendingEntries(t *testing.T) {
	gin.SetMode(gin.TestMode)

	api, _, cleanup := setupGalleryHandlerAPI(t)
	t.Cleanup(cleanup)
	router := newGalleryTestRouter(api)

	owner := service.OwnerRef{Kind: service.OwnerKindProject, ID: 1}
	manager := api.managers.For(owner)
	session := manager.NewSessionID()
	if _, err := manager.AdmitUploads(session, []string{
		"https://cdn.example.com/a.jpg",
		"https://cdn.example.com/b.jpg",
	}, "site progress"); err != nil {
		t.Fatalf("failed to admit uploads: %v", err)
	}

	query := "owner_kind=project&owner_id=1"
	response := fetchGallery(t, router, query)
	if len(response.Persisted) != 0 || len(response.Pending) != 2 {
		t.Fatalf("expected 2 pending entries before save, got persisted=%d pending=%d",
			len(response.Persisted), len(response.Pending))
	}
	if response.Max != service.MaxImagesPerOwner {
		t.Fatalf("expected max %d, got %d", service.MaxImagesPerOwner, response.Max)
	}

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodPost, "/gallery/save?"+query, nil)
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	response = fetchGallery(t, router, query)
	if len(response.Persisted) != 2 || len(response.Pending) != 0 {
		t.Fatalf("expected pending entries persisted, got persisted=%d pending=%d",
			len(response.Persisted), len(response.Pending))
	}
}

func TestGetGalleryRejectsUnknownOwnerKind(t *testing.T) {
	gin.SetMode(gin.TestMode)

	api, _, cleanup := setupGalleryHandlerAPI(t)
	t.Cleanup(cleanup)
	router := newGalleryTestRouter(api)

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/gallery?owner_kind=banner&owner_id=1", nil)
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d, got %d", http.StatusBadRequest, recorder.Code)
	}
}

func TestDeletePendingEntryRequiresIndex(t *testing.T) {
	gin.SetMode(gin.TestMode)

	api, objects, cleanup := setupGalleryHandlerAPI(t)
	t.Cleanup(cleanup)
	router := newGalleryTestRouter(api)

	owner := service.OwnerRef{Kind: service.OwnerKindProject, ID: 2}
	manager := api.managers.For(owner)
	session := manager.NewSessionID()
	if _, err := manager.AdmitUploads(session, []string{"https://cdn.example.com/a.jpg"}, ""); err != nil {
		t.Fatalf("failed to admit uploads: %v", err)
	}

	query := "owner_kind=project&owner_id=2"

	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodDelete, "/gallery/pending?"+query, nil)
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusBadRequest {
		t.Fatalf("expected status %d without index, got %d", http.StatusBadRequest, recorder.Code)
	}

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodDelete, "/gallery/pending?"+query+"&index=0", nil)
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}
	if len(objects.cleanups) != 1 {
		t.Fatalf("expected provider cleanup for the discarded upload, got %d calls", len(objects.cleanups))
	}

	response := fetchGallery(t, router, query)
	if len(response.Pending) != 0 {
		t.Fatalf("expected pending list empty after delete, got %d entries", len(response.Pending))
	}
}
