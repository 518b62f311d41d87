package handler

import (
	"net/http"
	"testing"

	"github.com/aman-churiwal/shortlink/internal/errs"
	"github.com/stretchr/testify/assert"
)

func TestStatusFor(t *testing.T) {
	tests := map[errs.Kind]int{
		errs.Unauthorized:      http.StatusUnauthorized,
		errs.PermissionDenied:  http.StatusForbidden,
		errs.Forbidden:         http.StatusForbidden,
		errs.RateLimitExceeded: http.StatusTooManyRequests,
		errs.Validation:        http.StatusBadRequest,
		errs.Conflict:          http.StatusConflict,
		errs.NotFound:          http.StatusNotFound,
		errs.Gone:              http.StatusGone,
		errs.Internal:          http.StatusInternalServerError,
		errs.Unknown:           http.StatusInternalServerError,
	}

	for kind, want := range tests {
		assert.Equal(t, want, StatusFor(kind), "kind %s", kind)
	}
}
