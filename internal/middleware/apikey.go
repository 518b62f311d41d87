package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

const APIKeyContext = "raw_api_key"

// RequireAPIKey guards metered routes. It only extracts the raw key; the
// handler performs admission, since the required permission and quota cost
// vary per operation.
func RequireAPIKey() gin.HandlerFunc {
	return func(c *gin.Context) {
		rawKey := strings.TrimSpace(c.GetHeader("X-API-Key"))

		if rawKey == "" {
			c.JSON(http.StatusUnauthorized, gin.H{
				"error": "X-API-Key header required",
			})
			c.Abort()
			return
		}

		c.Set(APIKeyContext, rawKey)
		c.Next()
	}
}
