package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/groundworkcms/internal/mirror"
	"github.com/groundworkcms/internal/service"
	"github.com/groundworkcms/internal/storage"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	db        *gorm.DB
	projects  *service.ProjectService
	offerings *service.OfferingService
	posts     *service.PostService
	jobs      *service.JobService
	galleries *service.GalleryService
	managers  *service.ManagerRegistry
	objects   storage.ObjectStorage
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, objects storage.ObjectStorage, m mirror.Store) *API {
	galleries := service.NewGalleryService(gdb)

	return &API{
		db:        gdb,
		projects:  service.NewProjectService(gdb),
		offerings: service.NewOfferingService(gdb),
		posts:     service.NewPostService(gdb),
		jobs:      service.NewJobService(gdb),
		galleries: galleries,
		managers:  service.NewManagerRegistry(galleries, objects, m),
		objects:   objects,
	}
}

// DB exposes the underlying gorm instance.
func (a *API) DB() *gorm.DB {
	return a.db
}

// ownerFromQuery reads and validates the owner_kind/owner_id query pair.
// owner_id may be absent for draft owners.
func (a *API) ownerFromQuery(c *gin.Context) (service.OwnerRef, bool) {
	kind := c.Query("owner_kind")
	id := parseUintQuery(c, "owner_id")

	owner, err := service.ParseOwner(kind, id)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid owner")
		return service.OwnerRef{}, false
	}
	return owner, true
}
