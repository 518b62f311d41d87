package handler

import (
	"net/http"

	"github.com/aman-churiwal/shortlink/internal/access"
	"github.com/aman-churiwal/shortlink/internal/middleware"
	"github.com/aman-churiwal/shortlink/internal/service"
	"github.com/gin-gonic/gin"
)

type AnalyticsHandler struct {
	access    *access.Controller
	links     *service.LinkService
	analytics *service.AnalyticsService
}

func NewAnalyticsHandler(controller *access.Controller, links *service.LinkService, analytics *service.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{
		access:    controller,
		links:     links,
		analytics: analytics,
	}
}

func (h *AnalyticsHandler) admit(c *gin.Context) (*access.AuthContext, bool) {
	rawKey := c.GetString(middleware.APIKeyContext)

	auth, err := h.access.Admit(c.Request.Context(), rawKey, "", 1)
	if err != nil {
		writeError(c, err)
		return nil, false
	}
	return auth, true
}

// Stats returns the owner-facing summary and breakdown for one link. The
// total comes from the event log; the cached counter is display-only.
func (h *AnalyticsHandler) Stats(c *gin.Context) {
	auth, ok := h.admit(c)
	if !ok {
		return
	}

	ctx := c.Request.Context()

	link, err := h.links.Get(ctx, auth, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	total, err := h.analytics.TotalClicks(ctx, link.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	breakdown, err := h.analytics.BreakdownFor(ctx, link.ID)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":         link.Code,
		"original_url": link.OriginalURL,
		"clicks":       total,
		"created_at":   link.CreatedAt,
		"breakdown":    breakdown,
	})
}

func (h *AnalyticsHandler) BatchStats(c *gin.Context) {
	var req struct {
		Codes []string `json:"codes" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if len(req.Codes) == 0 || len(req.Codes) > service.MaxBulkSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "batch stats accepts between 1 and 100 codes",
			"code":  "ValidationError",
		})
		return
	}

	if _, ok := h.admit(c); !ok {
		return
	}

	stats, err := h.analytics.BatchStats(c.Request.Context(), req.Codes)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"requested": len(req.Codes),
		"found":     len(stats),
		"stats":     stats,
	})
}

func (h *AnalyticsHandler) Trending(c *gin.Context) {
	if _, ok := h.admit(c); !ok {
		return
	}

	period := c.DefaultQuery("period", service.PeriodDay)
	limit := intQuery(c, "limit", 10)

	rows, err := h.analytics.Trending(c.Request.Context(), period, limit)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"period":  period,
		"results": rows,
	})
}
