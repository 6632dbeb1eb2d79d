package apperr

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/docschema/docschema/pkg/logger"
)

// Respond maps err onto the HTTP error contract. Internal failures are logged
// with full detail and reported generically.
func Respond(c *gin.Context, err error) {
	switch {
	case err == nil:
		return
	case errors.Is(err, ErrUnauthorized):
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Unauthorized"})
	case errors.Is(err, ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": capitalize(err.Error())})
	default:
		if ve, ok := AsValidation(err); ok {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "details": ve.Issues})
			return
		}
		logger.Errorf("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal Server Error"})
	}
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	b := []byte(s)
	if b[0] >= 'a' && b[0] <= 'z' {
		b[0] -= 'a' - 'A'
	}
	return string(b)
}
