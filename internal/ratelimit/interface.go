package ratelimit

import (
	"context"
	"time"
)

// Limiter throttles a caller-supplied key, typically "pw:<code>:<ip>" for
// password attempts against a protected link. Allow reports whether the
// attempt may proceed; it is never consulted for quota spending, which the
// quota tracker handles on its own.
type Limiter interface {
	// Allow counts an attempt and reports whether it is within the limit.
	Allow(ctx context.Context, key string) (bool, error)

	// Remaining reports how many attempts are left in the current window.
	Remaining(ctx context.Context, key string) (int, error)

	// Limit is the maximum number of attempts per window.
	Limit() int

	// Window is the span over which attempts are counted.
	Window() time.Duration

	// Reset reports when the current window for key rolls over.
	Reset(ctx context.Context, key string) (time.Time, error)
}
