package handler

import (
	"log"
	"net/http"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/gin-gonic/gin"
)

// StatusFor maps an error kind to its HTTP status.
func StatusFor(kind errs.Kind) int {
	switch kind {
	case errs.Unauthorized:
		return http.StatusUnauthorized
	case errs.PermissionDenied, errs.Forbidden:
		return http.StatusForbidden
	case errs.RateLimitExceeded:
		return http.StatusTooManyRequests
	case errs.Validation:
		return http.StatusBadRequest
	case errs.Conflict:
		return http.StatusConflict
	case errs.NotFound:
		return http.StatusNotFound
	case errs.Gone:
		return http.StatusGone
	default:
		return http.StatusInternalServerError
	}
}

// writeError renders a typed error. Internal causes are logged but never
// leaked to the client.
func writeError(c *gin.Context, err error) {
	kind := errs.KindOf(err)
	status := StatusFor(kind)

	message := errs.Message(err)
	if status == http.StatusInternalServerError {
		requestID := c.GetString("request_id")
		log.Printf("[%s] internal error: %v", requestID, err)
		message = "internal server error"
	}

	c.JSON(status, gin.H{
		"error": message,
		"code":  kind.String(),
	})
}
