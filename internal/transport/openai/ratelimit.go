package openai

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

const defaultBackoff = 5 * time.Second

// RateLimiter is a token bucket with a backoff window armed by provider 429s.
// Safe for concurrent use.
type RateLimiter struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
	backoff time.Duration
}

// NewRateLimiter allows rps requests per second with the given burst.
// rps <= 0 disables the bucket; the backoff window still applies.
func NewRateLimiter(rps float64, burst int, backoff time.Duration) *RateLimiter {
	limit := rate.Limit(rps)
	if rps <= 0 {
		limit = rate.Inf
	}
	if burst <= 0 {
		burst = 1
	}
	if backoff <= 0 {
		backoff = defaultBackoff
	}
	return &RateLimiter{
		limiter: rate.NewLimiter(limit, burst),
		backoff: backoff,
	}
}

// Wait blocks until a request may be sent, honouring any backoff window first.
func (r *RateLimiter) Wait(ctx context.Context) error {
	r.mu.Lock()
	retryAt := r.retryAt
	r.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		t := time.NewTimer(d)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}

	return r.limiter.Wait(ctx) //nolint:wrapcheck // ctx errors pass through
}

// RecordRateLimit opens a backoff window of d, or the configured default when d <= 0.
func (r *RateLimiter) RecordRateLimit(d time.Duration) {
	if d <= 0 {
		d = r.backoff
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if at := time.Now().Add(d); at.After(r.retryAt) {
		r.retryAt = at
	}
}

// BackingOff reports whether a backoff window is open.
func (r *RateLimiter) BackingOff() bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return time.Now().Before(r.retryAt)
}
