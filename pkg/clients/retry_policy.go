package clients

import (
	"context"
	"math"
	"math/rand"
	"time"

	"github.com/ajitpratap0/ocf/pkg/config"
	"github.com/ajitpratap0/ocf/pkg/ocferrors"
)

// RetryPolicy defines retry behavior
type RetryPolicy struct {
	MaxAttempts     int
	InitialDelay    time.Duration
	MaxDelay        time.Duration
	Multiplier      float64
	RandomizeFactor float64
}

// NewRetryPolicy creates a retry policy from the reliability settings.
func NewRetryPolicy(cfg config.ReliabilityConfig) *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:     cfg.RetryAttempts,
		InitialDelay:    cfg.RetryDelay,
		MaxDelay:        cfg.MaxRetryDelay,
		Multiplier:      cfg.RetryMultiplier,
		RandomizeFactor: 0.25,
	}
}

// DefaultRetryPolicy returns a sensible default retry policy
func DefaultRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts:     3,
		InitialDelay:    200 * time.Millisecond,
		MaxDelay:        5 * time.Second,
		Multiplier:      2.0,
		RandomizeFactor: 0.25,
	}
}

// NoRetryPolicy returns a policy that doesn't retry
func NoRetryPolicy() *RetryPolicy {
	return &RetryPolicy{
		MaxAttempts: 1,
	}
}

// Execute runs fn until it succeeds, returns an error that is not retryable, or
// the attempts are used up. The last error is returned unchanged.
func (rp *RetryPolicy) Execute(ctx context.Context, fn func(context.Context) error) error {
	return rp.ExecuteWithCondition(ctx, fn, ocferrors.IsRetryable)
}

// ExecuteWithCondition runs fn with retry only if shouldRetry accepts the error.
func (rp *RetryPolicy) ExecuteWithCondition(ctx context.Context, fn func(context.Context) error, shouldRetry func(error) bool) error {
	attempts := rp.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if !shouldRetry(err) || attempt == attempts-1 {
			break
		}

		timer := time.NewTimer(rp.calculateDelay(attempt))
		select {
		case <-ctx.Done():
			timer.Stop()
			return ocferrors.Wrap(ctx.Err(), ocferrors.ErrorTypeTimeout, "retry cancelled").
				WithDetail("attempt", attempt+1).
				WithDetail("last_error", lastErr.Error())
		case <-timer.C:
		}
	}
	return lastErr
}

// calculateDelay calculates the delay for a given attempt
func (rp *RetryPolicy) calculateDelay(attempt int) time.Duration {
	multiplier := rp.Multiplier
	if multiplier < 1 {
		multiplier = 1
	}
	delay := float64(rp.InitialDelay) * math.Pow(multiplier, float64(attempt))

	if rp.MaxDelay > 0 && delay > float64(rp.MaxDelay) {
		delay = float64(rp.MaxDelay)
	}

	// jitter
	if rp.RandomizeFactor > 0 {
		delta := delay * rp.RandomizeFactor
		delay = delay - delta + rand.Float64()*2*delta //nolint:gosec // jitter does not need crypto randomness
	}

	return time.Duration(delay)
}

// GetDelay returns the delay for a specific attempt (for testing/preview)
func (rp *RetryPolicy) GetDelay(attempt int) time.Duration {
	return rp.calculateDelay(attempt)
}
