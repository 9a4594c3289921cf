package common

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// WriteError answers with the status StatusFor maps err to. Validation errors
// carry their fields; unexpected errors are logged and hidden from the client.
func WriteError(c *gin.Context, log *zap.Logger, err error) {
	status := StatusFor(err)

	var ve *ValidationError
	switch {
	case errors.As(err, &ve):
		c.JSON(status, gin.H{"error": "validation failed", "fields": ve.Fields})
	case errors.Is(err, ErrNotFound):
		c.JSON(status, gin.H{"error": ErrNotFound.Error()})
	case errors.Is(err, ErrUnauthenticated):
		c.JSON(status, gin.H{"error": ErrUnauthenticated.Error()})
	case errors.Is(err, ErrForbidden):
		c.JSON(status, gin.H{"error": ErrForbidden.Error()})
	default:
		log.Error("request failed",
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.String("request_id", RequestIDFrom(c)),
			zap.Error(err))
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
