package handler

import (
	"net/http"

	"github.com/aman-churiwal/shortlink/internal/access"
	"github.com/aman-churiwal/shortlink/internal/middleware"
	"github.com/aman-churiwal/shortlink/internal/models"
	"github.com/aman-churiwal/shortlink/internal/service"
	"github.com/gin-gonic/gin"
)

type LinkHandler struct {
	access  *access.Controller
	links   *service.LinkService
	baseURL string
}

func NewLinkHandler(controller *access.Controller, links *service.LinkService, baseURL string) *LinkHandler {
	return &LinkHandler{
		access:  controller,
		links:   links,
		baseURL: baseURL,
	}
}

func (h *LinkHandler) admit(c *gin.Context, perm models.Permission, cost int64) (*access.AuthContext, bool) {
	rawKey := c.GetString(middleware.APIKeyContext)

	auth, err := h.access.Admit(c.Request.Context(), rawKey, perm, cost)
	if err != nil {
		writeError(c, err)
		return nil, false
	}

	c.Header("X-RateLimit-Remaining-Daily", formatRemaining(auth.Remaining.Daily))
	c.Header("X-RateLimit-Remaining-Monthly", formatRemaining(auth.Remaining.Monthly))

	return auth, true
}

func (h *LinkHandler) Create(c *gin.Context) {
	var req service.CreateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	perm := models.Permission("")
	if req.CustomCode != "" {
		perm = models.PermCustomCode
	}

	auth, ok := h.admit(c, perm, 1)
	if !ok {
		return
	}

	link, err := h.links.Create(c.Request.Context(), auth, req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.linkResponse(link))
}

func (h *LinkHandler) BulkCreate(c *gin.Context) {
	var req struct {
		Links []service.CreateLinkRequest `json:"links" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	// Size check comes first so an oversized batch neither spends quota nor
	// persists anything.
	if len(req.Links) == 0 || len(req.Links) > service.MaxBulkSize {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": "bulk create accepts between 1 and 100 links",
			"code":  "ValidationError",
		})
		return
	}

	auth, ok := h.admit(c, models.PermBulkCreate, int64(len(req.Links)))
	if !ok {
		return
	}

	results := h.links.BulkCreate(c.Request.Context(), auth, req.Links)

	succeeded := 0
	out := make([]gin.H, 0, len(results))
	for _, r := range results {
		item := gin.H{"index": r.Index}
		if r.Error != "" {
			item["error"] = r.Error
		} else {
			succeeded++
			item["code"] = r.Link.Code
			item["short_url"] = h.shortURL(r.Link.Code)
		}
		out = append(out, item)
	}

	c.JSON(http.StatusOK, gin.H{
		"total":     len(results),
		"succeeded": succeeded,
		"results":   out,
	})
}

func (h *LinkHandler) List(c *gin.Context) {
	auth, ok := h.admit(c, "", 1)
	if !ok {
		return
	}

	limit := intQuery(c, "limit", 50)
	offset := intQuery(c, "offset", 0)

	links, err := h.links.List(c.Request.Context(), auth, limit, offset)
	if err != nil {
		writeError(c, err)
		return
	}

	out := make([]gin.H, 0, len(links))
	for i := range links {
		out = append(out, h.linkResponse(&links[i]))
	}

	c.JSON(http.StatusOK, gin.H{"links": out, "count": len(out)})
}

func (h *LinkHandler) Update(c *gin.Context) {
	var req service.UpdateLinkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	auth, ok := h.admit(c, "", 1)
	if !ok {
		return
	}

	link, err := h.links.Update(c.Request.Context(), auth, c.Param("code"), req)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, h.linkResponse(link))
}

func (h *LinkHandler) Toggle(c *gin.Context) {
	auth, ok := h.admit(c, "", 1)
	if !ok {
		return
	}

	link, err := h.links.Toggle(c.Request.Context(), auth, c.Param("code"))
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"code":      link.Code,
		"is_active": link.IsActive,
	})
}

func (h *LinkHandler) Clone(c *gin.Context) {
	var req struct {
		CustomCode string `json:"custom_code,omitempty"`
	}
	// Body is optional for clones.
	c.ShouldBindJSON(&req)

	perm := models.Permission("")
	if req.CustomCode != "" {
		perm = models.PermCustomCode
	}

	auth, ok := h.admit(c, perm, 1)
	if !ok {
		return
	}

	link, err := h.links.Clone(c.Request.Context(), auth, c.Param("code"), req.CustomCode)
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, h.linkResponse(link))
}

func (h *LinkHandler) Delete(c *gin.Context) {
	auth, ok := h.admit(c, "", 1)
	if !ok {
		return
	}

	if err := h.links.Delete(c.Request.Context(), auth, c.Param("code")); err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"deleted": c.Param("code")})
}

func (h *LinkHandler) linkResponse(link *models.ShortLink) gin.H {
	resp := gin.H{
		"code":         link.Code,
		"short_url":    h.shortURL(link.Code),
		"original_url": link.OriginalURL,
		"is_active":    link.IsActive,
		"click_count":  link.ClickCount,
		"created_at":   link.CreatedAt,
	}
	if link.Title != "" {
		resp["title"] = link.Title
	}
	if link.Description != "" {
		resp["description"] = link.Description
	}
	if link.Tags != "" {
		resp["tags"] = link.Tags
	}
	if link.ExpiresAt != nil {
		resp["expires_at"] = link.ExpiresAt
	}
	if link.PasswordProtected() {
		resp["password_protected"] = true
	}
	return resp
}

func (h *LinkHandler) shortURL(code string) string {
	return h.baseURL + "/" + code
}
