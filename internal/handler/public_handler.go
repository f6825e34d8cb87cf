package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/db"
	"github.com/groundworkcms/internal/service"
)

// PublicProjects lists published projects with their feature images.
func (a *API) PublicProjects(c *gin.Context) {
	result, err := a.projects.ListPublished(parseIntQuery(c, "page"), parseIntQuery(c, "per_page"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load projects")
		return
	}

	items := make([]gin.H, 0, len(result.Items))
	for _, project := range result.Items {
		item := gin.H{
			"slug":         project.Slug,
			"title":        project.Title,
			"summary":      project.Summary,
			"location":     project.Location,
			"completed_at": project.CompletedAt,
		}
		if feature := a.featureImage(service.OwnerRef{Kind: service.OwnerKindProject, ID: project.ID}); feature != nil {
			item["feature_image"] = feature.ImageURL
		}
		items = append(items, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
	})
}

// PublicProject returns one published project with its full gallery.
func (a *API) PublicProject(c *gin.Context) {
	project, err := a.projects.GetBySlug(c.Param("slug"))
	if err != nil || project.Status != service.StatusPublished {
		respondError(c, http.StatusNotFound, "project not found")
		return
	}

	gallery, err := a.galleries.ListByOwner(service.OwnerRef{Kind: service.OwnerKindProject, ID: project.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load project gallery")
		return
	}

	c.JSON(http.StatusOK, gin.H{"project": project, "gallery": gallery})
}

// PublicOfferings lists published service offerings.
func (a *API) PublicOfferings(c *gin.Context) {
	items, err := a.offerings.ListPublished()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load services")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

// PublicPosts lists published blog posts.
func (a *API) PublicPosts(c *gin.Context) {
	result, err := a.posts.ListPublished(parseIntQuery(c, "page"), parseIntQuery(c, "per_page"))
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load posts")
		return
	}

	items := make([]gin.H, 0, len(result.Items))
	for _, post := range result.Items {
		items = append(items, gin.H{
			"slug":         post.Slug,
			"title":        post.Title,
			"summary":      post.Summary,
			"published_at": post.PublishedAt,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total":       result.Total,
		"total_pages": result.TotalPages,
		"page":        result.Page,
	})
}

// PublicPost returns one published post with rendered HTML and gallery.
func (a *API) PublicPost(c *gin.Context) {
	post, err := a.posts.GetBySlug(c.Param("slug"))
	if err != nil {
		if errors.Is(err, service.ErrPostNotFound) {
			respondError(c, http.StatusNotFound, "post not found")
			return
		}
		respondError(c, http.StatusInternalServerError, "failed to load post")
		return
	}
	if post.Status != service.StatusPublished {
		respondError(c, http.StatusNotFound, "post not found")
		return
	}

	rendered, err := a.posts.RenderBody(post)
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to render post")
		return
	}

	gallery, err := a.galleries.ListByOwner(service.OwnerRef{Kind: service.OwnerKindPost, ID: post.ID})
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load post gallery")
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"post":    post,
		"html":    rendered,
		"gallery": gallery,
	})
}

// PublicJobs lists open positions.
func (a *API) PublicJobs(c *gin.Context) {
	items, err := a.jobs.ListOpen()
	if err != nil {
		respondError(c, http.StatusInternalServerError, "failed to load job postings")
		return
	}
	c.JSON(http.StatusOK, gin.H{"items": items})
}

func (a *API) featureImage(owner service.OwnerRef) *db.GalleryImage {
	gallery, err := a.galleries.ListByOwner(owner)
	if err != nil {
		return nil
	}
	for i := range gallery {
		if gallery[i].IsFeature {
			return &gallery[i]
		}
	}
	if len(gallery) > 0 {
		return &gallery[0]
	}
	return nil
}
