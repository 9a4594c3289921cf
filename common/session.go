package common

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"presslog/models"
)

const (
	SessionName    = "presslog-session"
	SessionUserKey = "user_id"

	actorKey     = "actor"
	requestIDKey = "request_id"
)

// NewSessionStore returns the cookie store used for login sessions.
func NewSessionStore(secret string, secure bool) sessions.Store {
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   86400 * 7,
		HttpOnly: true,
		Secure:   secure,
		SameSite: http.SameSiteLaxMode,
	})
	return store
}

func sessionUserID(session sessions.Session) (uint, bool) {
	switch v := session.Get(SessionUserKey).(type) {
	case uint:
		return v, true
	case int:
		return uint(v), v > 0
	case int64:
		return uint(v), v > 0
	}
	return 0, false
}

// LoadActor puts the logged in user, if any, in the request context. Sessions
// pointing at a missing or blocked account are cleared.
func LoadActor(db *gorm.DB, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		id, ok := sessionUserID(session)
		if !ok {
			c.Next()
			return
		}

		var user models.User
		err := db.WithContext(c.Request.Context()).First(&user, id).Error
		if err != nil || user.Block {
			if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
				log.Warn("load session user", zap.Uint("user_id", id), zap.Error(err))
			}
			session.Clear()
			session.Save()
			c.Next()
			return
		}

		c.Set(actorKey, &user)
		c.Next()
	}
}

// Actor returns the logged in user or nil for anonymous visitors.
func Actor(c *gin.Context) *models.User {
	if v, ok := c.Get(actorKey); ok {
		if user, ok := v.(*models.User); ok {
			return user
		}
	}
	return nil
}

// RequireAuth rejects anonymous requests with 401.
func RequireAuth(c *gin.Context) {
	if Actor(c) == nil {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": ErrUnauthenticated.Error()})
		return
	}
	c.Next()
}

func Login(c *gin.Context, user *models.User) error {
	session := sessions.Default(c)
	session.Set(SessionUserKey, user.ID)
	c.Set(actorKey, user)
	return session.Save()
}

func Logout(c *gin.Context) error {
	session := sessions.Default(c)
	session.Clear()
	return session.Save()
}

// RequestID tags every request with an X-Request-ID, keeping one sent by a proxy.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set(requestIDKey, id)
		c.Header("X-Request-ID", id)
		c.Next()
	}
}

func RequestIDFrom(c *gin.Context) string {
	return c.GetString(requestIDKey)
}
