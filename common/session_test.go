package common

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"presslog/database/databasetest"
	"presslog/models"
)

func setupSessionRouter(t *testing.T) (*gin.Engine, *models.User, *models.User) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	db := databasetest.Open(t)

	active := &models.User{Username: "active", Email: "active@example.com", PasswordHash: "x"}
	blocked := &models.User{Username: "blocked", Email: "blocked@example.com", PasswordHash: "x", Block: true}
	require.NoError(t, db.Create(active).Error)
	require.NoError(t, db.Create(blocked).Error)

	router := gin.New()
	router.Use(sessions.Sessions(SessionName, NewSessionStore("secret", false)))
	router.Use(RequestID(), LoadActor(db, zap.NewNop()))

	users := map[string]*models.User{"active": active, "blocked": blocked}
	router.POST("/login/:name", func(c *gin.Context) {
		require.NoError(t, Login(c, users[c.Param("name")]))
		c.Status(http.StatusNoContent)
	})
	router.GET("/me", RequireAuth, func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"username": Actor(c).Username})
	})
	return router, active, blocked
}

func loginCookie(t *testing.T, router *gin.Engine, name string) string {
	t.Helper()
	req, _ := http.NewRequest("POST", "/login/"+name, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	return w.Header().Get("Set-Cookie")
}

func TestRequireAuth_Anonymous(t *testing.T) {
	router, _, _ := setupSessionRouter(t)

	req, _ := http.NewRequest("GET", "/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.JSONEq(t, `{"error":"login required"}`, w.Body.String())
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}

func TestLoadActor(t *testing.T) {
	router, _, _ := setupSessionRouter(t)

	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", loginCookie(t, router, "active"))
	req.Header.Set("X-Request-ID", "abc")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"username":"active"}`, w.Body.String())
	assert.Equal(t, "abc", w.Header().Get("X-Request-ID"))
}

func TestLoadActor_BlockedUserIsAnonymous(t *testing.T) {
	router, _, _ := setupSessionRouter(t)

	req, _ := http.NewRequest("GET", "/me", nil)
	req.Header.Set("Cookie", loginCookie(t, router, "blocked"))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestWriteError(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name   string
		err    error
		status int
		body   string
	}{
		{"validation", NewValidationError("slug", "This slug is taken"), http.StatusBadRequest,
			`{"error":"validation failed","fields":{"slug":"This slug is taken"}}`},
		{"not found", ErrNotFound, http.StatusNotFound, `{"error":"not found"}`},
		{"forbidden", ErrForbidden, http.StatusForbidden, `{"error":"not allowed"}`},
		{"internal", errors.New("database is locked"), http.StatusInternalServerError, `{"error":"internal error"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(w)
			c.Request = httptest.NewRequest("GET", "/x", nil)

			WriteError(c, zap.NewNop(), tt.err)

			assert.Equal(t, tt.status, w.Code)
			assert.JSONEq(t, tt.body, w.Body.String())
		})
	}
}
