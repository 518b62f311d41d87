package handler

import (
	"net/http"

	"github.com/aman-churiwal/shortlink/internal/ratelimit"
	"github.com/aman-churiwal/shortlink/internal/service"
	"github.com/gin-gonic/gin"
)

type RedirectHandler struct {
	redirects *service.RedirectService
	// Throttles password guessing per code+IP. Nil disables the guard.
	passwordLimiter ratelimit.Limiter
}

func NewRedirectHandler(redirects *service.RedirectService, passwordLimiter ratelimit.Limiter) *RedirectHandler {
	return &RedirectHandler{
		redirects:       redirects,
		passwordLimiter: passwordLimiter,
	}
}

func (h *RedirectHandler) Resolve(c *gin.Context) {
	code := c.Param("code")

	password := c.Query("password")
	if password == "" {
		password = c.GetHeader("X-Link-Password")
	}

	if password != "" && h.passwordLimiter != nil {
		limiterKey := "pw:" + code + ":" + c.ClientIP()
		allowed, err := h.passwordLimiter.Allow(c.Request.Context(), limiterKey)
		if err == nil && !allowed {
			c.JSON(http.StatusTooManyRequests, gin.H{
				"error": "too many password attempts, try again later",
				"code":  "RateLimitExceeded",
			})
			return
		}
	}

	visit := service.Visit{
		UserAgent: c.Request.UserAgent(),
		Referrer:  c.Request.Referer(),
		IPAddress: c.ClientIP(),
	}

	destination, err := h.redirects.Resolve(c.Request.Context(), code, password, visit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.Redirect(http.StatusMovedPermanently, destination)
}
