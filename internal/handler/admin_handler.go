package handler

import (
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"

	"github.com/groundworkcms/internal/db"
)

type loginPayload struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login authenticates an admin and opens a cookie session.
func (a *API) Login(c *gin.Context) {
	var payload loginPayload
	if !bindJSON(c, &payload, "invalid login payload") {
		return
	}

	var user db.User
	if err := a.db.Where("username = ?", payload.Username).First(&user).Error; err != nil {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(payload.Password)); err != nil {
		respondError(c, http.StatusUnauthorized, "invalid username or password")
		return
	}

	session := sessions.Default(c)
	session.Set("user_id", user.ID)
	session.Set("username", user.Username)
	if err := session.Save(); err != nil {
		respondError(c, http.StatusInternalServerError, "failed to save session")
		return
	}

	c.JSON(http.StatusOK, gin.H{"username": user.Username})
}

// Logout clears the admin session.
func (a *API) Logout(c *gin.Context) {
	session := sessions.Default(c)
	session.Clear()
	session.Save()
	c.Status(http.StatusNoContent)
}

// Dashboard returns content counts for the admin landing view.
func (a *API) Dashboard(c *gin.Context) {
	session := sessions.Default(c)

	var projectCount, postCount, jobCount int64
	a.db.Model(&db.Project{}).Count(&projectCount)
	a.db.Model(&db.Post{}).Count(&postCount)
	a.db.Model(&db.JobPosting{}).Count(&jobCount)

	c.JSON(http.StatusOK, gin.H{
		"username": session.Get("username"),
		"projects": projectCount,
		"posts":    postCount,
		"jobs":     jobCount,
	})
}

// AuthRequired rejects requests without an authenticated admin session.
func AuthRequired() gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		if session.Get("user_id") == nil {
			respondError(c, http.StatusUnauthorized, "authentication required")
			c.Abort()
			return
		}
		c.Next()
	}
}
