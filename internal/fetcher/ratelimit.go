package fetcher

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces polite host-visit spacing: Wait blocks until at least
// the configured interval has elapsed since the previous permitted start.
// Only request starts are serialized — slow responses may overlap.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a single-slot limiter with the given interval
// between permitted request starts. A non-positive interval permits
// everything immediately.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks the caller until the limiter permits the next request start,
// or returns the context error on cancellation.
func (r *RateLimiter) Wait(ctx context.Context) error {
	return r.limiter.Wait(ctx)
}
