package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/service"
)

type offeringPayload struct {
	Title     string `json:"title"`
	Summary   string `json:"summary"`
	Body      string `json:"body"`
	Icon      string `json:"icon"`
	Published bool   `json:"published"`
	SortOrder int    `json:"sort_order"`
}

func (p offeringPayload) toInput() service.OfferingInput {
	return service.OfferingInput{
		Title:     p.Title,
		Summary:   p.Summary,
		Body:      p.Body,
		Icon:      p.Icon,
		Published: p.Published,
		SortOrder: p.SortOrder,
	}
}

// GetOfferings returns every offering for the admin list view.
func (a *API) GetOfferings(c *gin.Context) {
	items, err := a.offerings.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load offerings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateOffering creates an offering.
func (a *API) CreateOffering(c *gin.Context) {
	var payload offeringPayload
	if !bindJSON(c, &payload, "invalid offering payload") {
		return
	}

	item, err := a.offerings.Create(payload.toInput())
	if err != nil {
		if errors.Is(err, service.ErrOfferingTitleMissing) {
			respondError(c, http.StatusBadRequest, "offering title is required")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create offering")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateOffering modifies an offering.
func (a *API) UpdateOffering(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offering id")
		return
	}

	var payload offeringPayload
	if !bindJSON(c, &payload, "invalid offering payload") {
		return
	}

	item, err := a.offerings.Update(id, payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrOfferingNotFound):
			respondError(c, http.StatusNotFound, "offering not found")
		case errors.Is(err, service.ErrOfferingTitleMissing):
			respondError(c, http.StatusBadRequest, "offering title is required")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update offering")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteOffering removes an offering.
func (a *API) DeleteOffering(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid offering id")
		return
	}

	if err := a.offerings.Delete(id); err != nil {
		if errors.Is(err, service.ErrOfferingNotFound) {
			respondError(c, http.StatusNotFound, "offering not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete offering")
		return
	}

	c.Status(http.StatusNoContent)
}
