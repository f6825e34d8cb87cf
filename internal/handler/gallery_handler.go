package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/service"
)

type galleryEntryPayload struct {
	OwnerKind    string `json:"owner_kind"`
	OwnerID      uint   `json:"owner_id"`
	ImageURL     string `json:"image_url"`
	Caption      string `json:"caption"`
	DisplayOrder *int   `json:"display_order"`
}

type galleryPatchPayload struct {
	Caption      *string `json:"caption"`
	DisplayOrder *int    `json:"display_order"`
}

type reorderPayload struct {
	OwnerKind string `json:"owner_kind"`
	OwnerID   uint   `json:"owner_id"`
	IDs       []uint `json:"ids"`
}

type cancelPayload struct {
	OwnerKind string `json:"owner_kind"`
	OwnerID   uint   `json:"owner_id"`
	SessionID string `json:"session_id"`
}

// GetGallery returns an owner's persisted entries together with the
// pending, not-yet-saved ones.
func (a *API) GetGallery(c *gin.Context) {
	owner, ok := a.ownerFromQuery(c)
	if !ok {
		return
	}

	persisted, err := a.galleries.ListByOwner(owner)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load gallery")
		return
	}

	manager := a.managers.For(owner)
	c.JSON(http.StatusOK, gin.H{
		"persisted": persisted,
		"pending":   manager.Pending().Items(),
		"max":       service.MaxImagesPerOwner,
	})
}

// CreateGalleryEntry persists one entry directly, bypassing the pending flow.
func (a *API) CreateGalleryEntry(c *gin.Context) {
	var payload galleryEntryPayload
	if !bindJSON(c, &payload, "invalid gallery payload") {
		return
	}

	owner, err := service.ParseOwner(payload.OwnerKind, payload.OwnerID)
	if err != nil || owner.Draft() {
		respondError(c, http.StatusBadRequest, "invalid owner")
		return
	}

	item, err := a.galleries.Create(owner, service.GalleryEntryInput{
		ImageURL:     payload.ImageURL,
		Caption:      payload.Caption,
		DisplayOrder: payload.DisplayOrder,
	})
	if err != nil {
		switch {
		case errors.Is(err, service.ErrGalleryImageMissing):
			respondError(c, http.StatusBadRequest, "image url is required")
		case errors.Is(err, service.ErrGalleryQuotaReached):
			respondError(c, http.StatusConflict, "gallery image limit reached")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create gallery entry")
		}
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateGalleryEntry applies a partial caption/order update.
func (a *API) UpdateGalleryEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid gallery entry id")
		return
	}

	var payload galleryPatchPayload
	if !bindJSON(c, &payload, "invalid gallery payload") {
		return
	}

	item, err := a.galleries.UpdateEntry(id, service.GalleryEntryPatch{
		Caption:      payload.Caption,
		DisplayOrder: payload.DisplayOrder,
	})
	if err != nil {
		if errors.Is(err, service.ErrGalleryNotFound) {
			respondError(c, http.StatusNotFound, "gallery entry not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to update gallery entry")
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteGalleryEntry removes a persisted entry.
func (a *API) DeleteGalleryEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid gallery entry id")
		return
	}

	if err := a.galleries.DeleteEntry(id); err != nil {
		if errors.Is(err, service.ErrGalleryNotFound) {
			respondError(c, http.StatusNotFound, "gallery entry not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete gallery entry")
		return
	}

	c.Status(http.StatusNoContent)
}

// SetFeatureImage marks one entry as the owner's feature image.
func (a *API) SetFeatureImage(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid gallery entry id")
		return
	}

	item, err := a.galleries.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrGalleryNotFound) {
			respondError(c, http.StatusNotFound, "gallery entry not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load gallery entry")
		return
	}

	owner := service.OwnerRef{Kind: item.OwnerKind, ID: item.OwnerID}
	view, err := a.galleries.ListByOwner(owner)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load gallery")
		return
	}

	manager := a.managers.For(owner)
	view, err = manager.SetFeature(view, id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to set feature image")
		return
	}

	c.JSON(http.StatusOK, gin.H{"persisted": view})
}

// MoveGalleryEntryUp swaps the entry with its nearest lower neighbor.
func (a *API) MoveGalleryEntryUp(c *gin.Context) {
	a.moveGalleryEntry(c, true)
}

// MoveGalleryEntryDown swaps the entry with its nearest higher neighbor.
func (a *API) MoveGalleryEntryDown(c *gin.Context) {
	a.moveGalleryEntry(c, false)
}

func (a *API) moveGalleryEntry(c *gin.Context, up bool) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid gallery entry id")
		return
	}

	if up {
		err = a.galleries.MoveUp(id)
	} else {
		err = a.galleries.MoveDown(id)
	}
	if err != nil {
		if errors.Is(err, service.ErrGalleryNotFound) {
			respondError(c, http.StatusNotFound, "gallery entry not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to move gallery entry")
		return
	}

	item, err := a.galleries.Get(id)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to reload gallery entry")
		return
	}

	persisted, err := a.galleries.ListByOwner(service.OwnerRef{Kind: item.OwnerKind, ID: item.OwnerID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to reload gallery")
		return
	}
	c.JSON(http.StatusOK, gin.H{"persisted": persisted})
}

// ReorderGallery applies a full new display sequence.
func (a *API) ReorderGallery(c *gin.Context) {
	var payload reorderPayload
	if !bindJSON(c, &payload, "invalid reorder payload") {
		return
	}

	owner, err := service.ParseOwner(payload.OwnerKind, payload.OwnerID)
	if err != nil || owner.Draft() {
		respondError(c, http.StatusBadRequest, "invalid owner")
		return
	}

	if err := a.galleries.Reorder(owner, payload.IDs); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to reorder gallery")
		return
	}

	persisted, err := a.galleries.ListByOwner(owner)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to reload gallery")
		return
	}
	c.JSON(http.StatusOK, gin.H{"persisted": persisted})
}

// SaveGallery reconciles the owner's pending entries into the database.
func (a *API) SaveGallery(c *gin.Context) {
	owner, ok := a.ownerFromQuery(c)
	if !ok {
		return
	}

	result, err := a.managers.For(owner).Save()
	if err != nil {
		if errors.Is(err, service.ErrGalleryQuotaReached) {
			respondError(c, http.StatusConflict, "gallery image limit reached")
			return
		}
		c.JSON(http.StatusBadGateway, gin.H{
			"error":     "failed to save gallery",
			"persisted": result.Persisted,
		})
		return
	}

	c.JSON(http.StatusOK, result)
}

// CancelUploadSession reclaims an uncommitted session's files after an
// upload dialog is dismissed.
func (a *API) CancelUploadSession(c *gin.Context) {
	var payload cancelPayload
	if !bindJSON(c, &payload, "invalid cancel payload") {
		return
	}

	owner, err := service.ParseOwner(payload.OwnerKind, payload.OwnerID)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid owner")
		return
	}
	if payload.SessionID == "" {
		respondError(c, http.StatusBadRequest, "session id is required")
		return
	}

	a.managers.For(owner).CancelSession(payload.SessionID)
	c.Status(http.StatusNoContent)
}

// CloseGallery releases the owner's manager, reclaiming anything
// uncommitted. Called when the editing surface goes away.
func (a *API) CloseGallery(c *gin.Context) {
	owner, ok := a.ownerFromQuery(c)
	if !ok {
		return
	}

	a.managers.Release(owner)
	c.Status(http.StatusNoContent)
}

// UpdatePendingEntry edits the caption or order of one pending entry.
func (a *API) UpdatePendingEntry(c *gin.Context) {
	owner, ok := a.ownerFromQuery(c)
	if !ok {
		return
	}

	index := parseIntQuery(c, "index")
	if c.Query("index") == "" {
		respondError(c, http.StatusBadRequest, "pending entry index is required")
		return
	}

	var payload galleryPatchPayload
	if !bindJSON(c, &payload, "invalid pending payload") {
		return
	}

	pending := a.managers.For(owner).Pending()
	var err error
	if payload.Caption != nil {
		err = pending.UpdateCaption(index, *payload.Caption)
	}
	if err == nil && payload.DisplayOrder != nil {
		err = pending.UpdateOrder(index, *payload.DisplayOrder)
	}
	if err != nil {
		respondError(c, http.StatusNotFound, "pending entry not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": pending.Items()})
}

// DeletePendingEntry discards one pending entry, reclaiming its file when
// it is not in use anywhere else.
func (a *API) DeletePendingEntry(c *gin.Context) {
	owner, ok := a.ownerFromQuery(c)
	if !ok {
		return
	}

	if c.Query("index") == "" {
		respondError(c, http.StatusBadRequest, "pending entry index is required")
		return
	}
	index := parseIntQuery(c, "index")

	manager := a.managers.For(owner)
	if err := manager.RemovePending(index); err != nil {
		respondError(c, http.StatusNotFound, "pending entry not found")
		return
	}

	c.JSON(http.StatusOK, gin.H{"pending": manager.Pending().Items()})
}
