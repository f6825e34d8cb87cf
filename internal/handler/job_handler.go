package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/service"
)

type jobPayload struct {
	Title          string `json:"title"`
	Location       string `json:"location"`
	EmploymentType string `json:"employment_type"`
	Description    string `json:"description"`
	Open           bool   `json:"open"`
}

func (p jobPayload) toInput() service.JobInput {
	return service.JobInput{
		Title:          p.Title,
		Location:       p.Location,
		EmploymentType: p.EmploymentType,
		Description:    p.Description,
		Open:           p.Open,
	}
}

// GetJobs returns every posting for the admin list view.
func (a *API) GetJobs(c *gin.Context) {
	items, err := a.jobs.ListAll()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load job postings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// CreateJob creates a posting.
func (a *API) CreateJob(c *gin.Context) {
	var payload jobPayload
	if !bindJSON(c, &payload, "invalid job payload") {
		return
	}

	item, err := a.jobs.Create(payload.toInput())
	if err != nil {
		if errors.Is(err, service.ErrJobTitleMissing) {
			respondError(c, http.StatusBadRequest, "job title is required")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to create job posting")
		return
	}

	c.JSON(http.StatusCreated, item)
}

// UpdateJob modifies a posting.
func (a *API) UpdateJob(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid job id")
		return
	}

	var payload jobPayload
	if !bindJSON(c, &payload, "invalid job payload") {
		return
	}

	item, err := a.jobs.Update(id, payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrJobNotFound):
			respondError(c, http.StatusNotFound, "job posting not found")
		case errors.Is(err, service.ErrJobTitleMissing):
			respondError(c, http.StatusBadRequest, "job title is required")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update job posting")
		}
		return
	}

	c.JSON(http.StatusOK, item)
}

// DeleteJob removes a posting.
func (a *API) DeleteJob(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid job id")
		return
	}

	if err := a.jobs.Delete(id); err != nil {
		if errors.Is(err, service.ErrJobNotFound) {
			respondError(c, http.StatusNotFound, "job posting not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete job posting")
		return
	}

	c.Status(http.StatusNoContent)
}
