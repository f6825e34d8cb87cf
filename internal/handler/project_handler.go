package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/service"
)

type projectPayload struct {
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	Summary     string     `json:"summary"`
	Body        string     `json:"body"`
	Location    string     `json:"location"`
	Client      string     `json:"client"`
	Status      string     `json:"status"`
	CompletedAt *time.Time `json:"completed_at"`
	SortOrder   int        `json:"sort_order"`
}

func (p projectPayload) toInput() service.ProjectInput {
	return service.ProjectInput{
		Title:       p.Title,
		Slug:        p.Slug,
		Summary:     p.Summary,
		Body:        p.Body,
		Location:    p.Location,
		Client:      p.Client,
		Status:      p.Status,
		CompletedAt: p.CompletedAt,
		SortOrder:   p.SortOrder,
	}
}

// GetProjects returns projects for the admin list view.
func (a *API) GetProjects(c *gin.Context) {
	result, err := a.projects.List(service.ProjectFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    parseIntQuery(c, "page"),
		PerPage: parseIntQuery(c, "per_page"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load projects")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
	})
}

// GetProject returns one project with its gallery.
func (a *API) GetProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid project id")
		return
	}

	project, err := a.projects.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "project not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load project")
		return
	}

	gallery, err := a.galleries.ListByOwner(service.OwnerRef{Kind: service.OwnerKindProject, ID: project.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load project gallery")
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project, "gallery": gallery})
}

// CreateProject creates a project. Pending gallery state mirrored under the
// project draft key is adopted by the new id, so a following save persists
// the deferred entries.
func (a *API) CreateProject(c *gin.Context) {
	var payload projectPayload
	if !bindJSON(c, &payload, "invalid project payload") {
		return
	}

	project, err := a.projects.Create(payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectTitleMissing):
			respondError(c, http.StatusBadRequest, "project title is required")
		case errors.Is(err, service.ErrProjectSlugTaken):
			respondError(c, http.StatusConflict, "project slug already in use")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create project")
		}
		return
	}

	if err := a.managers.AdoptDraft(service.OwnerKindProject, project.ID); err != nil {
		log.Printf("failed to adopt draft gallery for project %d: %v", project.ID, err)
	}

	c.JSON(http.StatusCreated, project)
}

// UpdateProject modifies a project.
func (a *API) UpdateProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid project id")
		return
	}

	var payload projectPayload
	if !bindJSON(c, &payload, "invalid project payload") {
		return
	}

	project, err := a.projects.Update(id, payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrProjectNotFound):
			respondError(c, http.StatusNotFound, "project not found")
		case errors.Is(err, service.ErrProjectTitleMissing):
			respondError(c, http.StatusBadRequest, "project title is required")
		case errors.Is(err, service.ErrProjectSlugTaken):
			respondError(c, http.StatusConflict, "project slug already in use")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update project")
		}
		return
	}

	c.JSON(http.StatusOK, project)
}

// DeleteProject removes a project.
func (a *API) DeleteProject(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid project id")
		return
	}

	if err := a.projects.Delete(id); err != nil {
		if errors.Is(err, service.ErrProjectNotFound) {
			respondError(c, http.StatusNotFound, "project not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete project")
		return
	}

	c.Status(http.StatusNoContent)
}
