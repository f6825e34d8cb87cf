package router

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/groundworkcms/internal/handler"
)

// Setup configures the gin engine and all routes.
func Setup(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	store := cookie.NewStore([]byte(sessionSecret))
	r.Use(sessions.Sessions("groundwork_session", store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"message": "pong"})
	})

	// Public site endpoints.
	public := r.Group("/api")
	{
		public.GET("/projects", api.PublicProjects)
		public.GET("/projects/:slug", api.PublicProject)
		public.GET("/services", api.PublicOfferings)
		public.GET("/posts", api.PublicPosts)
		public.GET("/posts/:slug", api.PublicPost)
		public.GET("/jobs", api.PublicJobs)
	}

	// Admin back office.
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.POST("/logout", api.Logout)

		auth := admin.Group("")
		auth.Use(handler.AuthRequired())
		{
			auth.GET("/dashboard", api.Dashboard)

			adminAPI := auth.Group("/api")
			{
				adminAPI.GET("/projects", api.GetProjects)
				adminAPI.GET("/projects/:id", api.GetProject)
				adminAPI.POST("/projects", api.CreateProject)
				adminAPI.PUT("/projects/:id", api.UpdateProject)
				adminAPI.DELETE("/projects/:id", api.DeleteProject)

				adminAPI.GET("/services", api.GetOfferings)
				adminAPI.POST("/services", api.CreateOffering)
				adminAPI.PUT("/services/:id", api.UpdateOffering)
				adminAPI.DELETE("/services/:id", api.DeleteOffering)

				adminAPI.GET("/posts", api.GetPosts)
				adminAPI.GET("/posts/:id", api.GetPost)
				adminAPI.POST("/posts", api.CreatePost)
				adminAPI.PUT("/posts/:id", api.UpdatePost)
				adminAPI.DELETE("/posts/:id", api.DeletePost)

				adminAPI.GET("/jobs", api.GetJobs)
				adminAPI.POST("/jobs", api.CreateJob)
				adminAPI.PUT("/jobs/:id", api.UpdateJob)
				adminAPI.DELETE("/jobs/:id", api.DeleteJob)

				adminAPI.POST("/uploads", api.UploadImages)

				adminAPI.GET("/gallery", api.GetGallery)
				adminAPI.POST("/gallery", api.CreateGalleryEntry)
				adminAPI.PATCH("/gallery/:id", api.UpdateGalleryEntry)
				adminAPI.DELETE("/gallery/:id", api.DeleteGalleryEntry)
				adminAPI.PUT("/gallery/:id/feature", api.SetFeatureImage)
				adminAPI.POST("/gallery/:id/move-up", api.MoveGalleryEntryUp)
				adminAPI.POST("/gallery/:id/move-down", api.MoveGalleryEntryDown)
				adminAPI.POST("/gallery/reorder", api.ReorderGallery)
				adminAPI.POST("/gallery/save", api.SaveGallery)
				adminAPI.POST("/gallery/cancel", api.CancelUploadSession)
				adminAPI.POST("/gallery/close", api.CloseGallery)
				adminAPI.PATCH("/gallery/pending", api.UpdatePendingEntry)
				adminAPI.DELETE("/gallery/pending", api.DeletePendingEntry)
			}
		}
	}

	return r
}
