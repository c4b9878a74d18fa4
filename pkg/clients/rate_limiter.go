package clients

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// RateLimiter limits the rate of outgoing calls.
type RateLimiter struct {
	limiter *rate.Limiter
}

// NewRateLimiter creates a token bucket limiter allowing perSecond calls with
// bursts of burst. A non-positive rate means unlimited.
func NewRateLimiter(perSecond float64, burst int) *RateLimiter {
	if perSecond <= 0 {
		return &RateLimiter{limiter: rate.NewLimiter(rate.Inf, 0)}
	}
	if burst < 1 {
		burst = 1
	}
	return &RateLimiter{limiter: rate.NewLimiter(rate.Limit(perSecond), burst)}
}

// Wait blocks until a call is allowed or ctx is done.
func (r *RateLimiter) Wait(ctx context.Context) error {
	if err := r.limiter.Wait(ctx); err != nil {
		return ocferrors.Wrap(err, ocferrors.ErrorTypeRateLimit, "rate limit wait aborted")
	}
	return nil
}

// Allow reports whether a call may happen now.
func (r *RateLimiter) Allow() bool {
	return r.limiter.Allow()
}
