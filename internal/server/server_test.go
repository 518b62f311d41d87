package server

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aman-churiwal/shortlink/internal/config"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

// Routing only; no storage behind the handlers.
func newTestServer() *Server {
	gin.SetMode(gin.TestMode)
	return New(&config.Config{}, nil, nil)
}

func TestRouteTableRegisters(t *testing.T) {
	srv := newTestServer()

	registered := make(map[string]bool)
	for _, route := range srv.GetRouter().Routes() {
		registered[route.Method+" "+route.Path] = true
	}

	// Static routes coexist with the redirect wildcard; gin dispatches
	// statics first, and shortcode reserves the matching names.
	for _, want := range []string{
		"GET /health",
		"POST /auth/register",
		"POST /auth/login",
		"POST /admin/keys",
		"GET /admin/keys",
		"GET /admin/keys/:id",
		"PATCH /admin/keys/:id",
		"DELETE /admin/keys/:id",
		"POST /api/links",
		"POST /api/links/bulk",
		"GET /api/links",
		"GET /api/links/:code/stats",
		"POST /api/links/stats/batch",
		"PATCH /api/links/:code",
		"POST /api/links/:code/toggle",
		"POST /api/links/:code/clone",
		"DELETE /api/links/:code",
		"GET /api/trending",
		"GET /:code",
	} {
		assert.True(t, registered[want], "missing route %s", want)
	}
}

func TestMeteredRoutesRequireAPIKey(t *testing.T) {
	srv := newTestServer()

	for _, tt := range []struct {
		method string
		path   string
	}{
		{http.MethodPost, "/api/links"},
		{http.MethodGet, "/api/links"},
		{http.MethodGet, "/api/trending"},
	} {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		w := httptest.NewRecorder()

		srv.GetRouter().ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code, "%s %s", tt.method, tt.path)
	}
}
