package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/service"
)

type postPayload struct {
	Title   string `json:"title"`
	Slug    string `json:"slug"`
	Summary string `json:"summary"`
	Body    string `json:"body"`
	Status  string `json:"status"`
}

func (p postPayload) toInput() service.PostInput {
	return service.PostInput{
		Title:   p.Title,
		Slug:    p.Slug,
		Summary: p.Summary,
		Body:    p.Body,
		Status:  p.Status,
	}
}

// GetPosts returns posts for the admin list view.
func (a *API) GetPosts(c *gin.Context) {
	result, err := a.posts.List(service.PostFilter{
		Search:  c.Query("search"),
		Status:  c.Query("status"),
		Page:    parseIntQuery(c, "page"),
		PerPage: parseIntQuery(c, "per_page"),
	})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       result.Items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
	})
}

// GetPost returns one post with its gallery.
func (a *API) GetPost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := a.posts.Get(id)
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load post")
		return
	}

	gallery, err := a.galleries.ListByOwner(service.OwnerRef{Kind: service.OwnerKindPost, ID: post.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load post gallery")
		return
	}

	c.JSON(http.StatusOK, gin.H{"post": post, "gallery": gallery})
}

// CreatePost creates a post and adopts any draft gallery state.
func (a *API) CreatePost(c *gin.Context) {
	var payload postPayload
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	post, err := a.posts.Create(payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostTitleMissing):
			respondError(c, http.StatusBadRequest, "post title is required")
		case errors.Is(err, service.ErrPostSlugTaken):
			respondError(c, http.StatusConflict, "post slug already in use")
		default:
			respondError(c, http.StatusInternalServerError, "failed to create post")
		}
		return
	}

	if err := a.managers.AdoptDraft(service.OwnerKindPost, post.ID); err != nil {
		log.Printf("failed to adopt draft gallery for post %d: %v", post.ID, err)
	}

	c.JSON(http.StatusCreated, post)
}

// UpdatePost modifies a post.
func (a *API) UpdatePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	var payload postPayload
	if !bindJSON(c, &payload, "invalid post payload") {
		return
	}

	post, err := a.posts.Update(id, payload.toInput())
	if err != nil {
		switch {
		case errors.Is(err, service.ErrPostNotFound):
			respondError(c, http.StatusNotFound, "post not found")
		case errors.Is(err, service.ErrPostTitleMissing):
			respondError(c, http.StatusBadRequest, "post title is required")
		case errors.Is(err, service.ErrPostSlugTaken):
			respondError(c, http.StatusConflict, "post slug already in use")
		default:
			respondError(c, http.StatusInternalServerError, "failed to update post")
		}
		return
	}

	c.JSON(http.StatusOK, post)
}

// DeletePost removes a post.
func (a *API) DeletePost(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := a.posts.Delete(id); err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to delete post")
		return
	}

	c.Status(http.StatusNoContent)
}
