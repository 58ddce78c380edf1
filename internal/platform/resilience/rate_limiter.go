package resilience

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// RateLimiter enforces a process-wide minimum delay between upstream
// requests. One instance is shared by every caller of a dependency.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter allows one request per interval. A non-positive interval
// disables limiting.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	if interval <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 1)}
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Every(interval), 1)}
}

// Wait blocks until the next request may start or ctx is done.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l == nil || l.limiter == nil {
		return nil
	}
	return l.limiter.Wait(ctx)
}
