package cache

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const jsonContentType = "application/json; charset=utf-8"

type responseWriter struct {
	gin.ResponseWriter
	body *bytes.Buffer
}

func (w *responseWriter) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

func (w *responseWriter) WriteString(s string) (int, error) {
	w.body.WriteString(s)
	return w.ResponseWriter.WriteString(s)
}

// PageMiddleware caches post pages for anonymous visitors. Requests for which
// skip returns true, such as logged-in users seeing edit controls, bypass the cache.
func PageMiddleware(store Store, skip func(c *gin.Context) bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		if c.Request.Method != http.MethodGet || !IsPostPath(c.Request.URL.Path) {
			c.Next()
			return
		}

		if skip != nil && skip(c) {
			c.Next()
			return
		}

		key := PageKey(c.Request.URL.Path)
		if cached, found := store.Get(key); found {
			c.Header("X-Cache", "HIT")
			c.Data(http.StatusOK, jsonContentType, cached)
			c.Abort()
			return
		}

		c.Header("X-Cache", "MISS")

		writer := &responseWriter{
			ResponseWriter: c.Writer,
			body:           bytes.NewBuffer(nil),
		}
		c.Writer = writer

		c.Next()

		// Only cache successful JSON responses
		if c.Writer.Status() == http.StatusOK &&
			c.Writer.Header().Get("Content-Type") == jsonContentType {
			store.Set(key, writer.body.Bytes())
		}
	}
}

// IsPostPath reports whether path is a canonical post URL, /p/year/month/day/slug.
func IsPostPath(path string) bool {
	parts := splitPath(path)
	return len(parts) == 5 && parts[0] == "p"
}

func splitPath(path string) []string {
	return strings.FieldsFunc(path, func(r rune) bool { return r == '/' })
}
