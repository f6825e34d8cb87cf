package handler

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/groundworkcms/internal/db"
)

func setupAdminHandlerTestDB(t *testing.T) (*gorm.DB, func()) {
	t.Helper()

	dsn := fmt.Sprintf("file:admin-handler-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}

	if err := gdb.AutoMigrate(&db.User{}, &db.Project{}, &db.Post{}, &db.JobPosting{}); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}

	return gdb, func() {
		sqlDB, err := gdb.DB()
		if err == nil {
			sqlDB.Close()
		}
	}
}

func seedAdmin(t *testing.T, gdb *gorm.DB, username, password string) {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		t.Fatalf("failed to hash password: %v", err)
	}
	if err := gdb.Create(&db.User{Username: username, Password: string(hash)}).Error; err != nil {
		t.Fatalf("failed to seed admin user: %v", err)
	}
}

func newAdminTestRouter(api *API) *gin.Engine {
	router := gin.New()
	router.Use(sessions.Sessions("groundwork_session", cookie.NewStore([]byte("test-secret"))))
	router.POST("/admin/login", api.Login)
	router.POST("/admin/logout", api.Logout)

	auth := router.Group("")
	auth.Use(AuthRequired())
	auth.GET("/admin/dashboard", api.Dashboard)
	return router
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gdb, cleanup := setupAdminHandlerTestDB(t)
	t.Cleanup(cleanup)
	seedAdmin(t, gdb, "admin", "correct-horse")

	router := newAdminTestRouter(&API{db: gdb})

	recorder := httptest.NewRecorder()
	body := strings.NewReader(`{"username":"admin","password":"wrong"}`)
	request := httptest.NewRequest(http.MethodPost, "/admin/login", body)
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)

	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, recorder.Code)
	}
}

func TestLoginOpensSessionForDashboard(t *testing.T) {
	gin.SetMode(gin.TestMode)

	gdb, cleanup := setupAdminHandlerTestDB(t)
	t.Cleanup(cleanup)
	seedAdmin(t, gdb, "admin", "correct-horse")

	router := newAdminTestRouter(&API{db: gdb})

	// Without a session the dashboard is off limits.
	recorder := httptest.NewRecorder()
	request := httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d without session, got %d", http.StatusUnauthorized, recorder.Code)
	}

	recorder = httptest.NewRecorder()
	body := strings.NewReader(`{"username":"admin","password":"correct-horse"}`)
	request = httptest.NewRequest(http.MethodPost, "/admin/login", body)
	request.Header.Set("Content-Type", "application/json")
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, recorder.Code, recorder.Body.String())
	}

	cookies := recorder.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("expected a session cookie after login")
	}

	recorder = httptest.NewRecorder()
	request = httptest.NewRequest(http.MethodGet, "/admin/dashboard", nil)
	for _, c := range cookies {
		request.AddCookie(c)
	}
	router.ServeHTTP(recorder, request)
	if recorder.Code != http.StatusOK {
		t.Fatalf("expected status %d with session, got %d", http.StatusOK, recorder.Code)
	}
	if !strings.Contains(recorder.Body.String(), `"username":"admin"`) {
		t.Fatalf("expected dashboard to report the session user, got %s", recorder.Body.String())
	}
}
