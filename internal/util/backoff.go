package util

import (
	"context"
	"math/rand/v2"
	"time"
)

// BackoffPolicy retries an operation with exponential, jittered delays.
// Unlike Retry, which hammers the callee immediately, a BackoffPolicy is
// meant for remote services that need breathing room between attempts.
type BackoffPolicy struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration
}

// DefaultBackoff matches the embedding service retry schedule:
// five attempts, 1s base, capped at 60s.
func DefaultBackoff() BackoffPolicy {
	return BackoffPolicy{
		MaxAttempts: 5,
		BaseDelay:   time.Second,
		MaxDelay:    60 * time.Second,
	}
}

// Delay returns the sleep duration before the given attempt (0-based).
// Full jitter: a uniform draw from [0, min(MaxDelay, BaseDelay*2^attempt)].
func (p BackoffPolicy) Delay(attempt int) time.Duration {
	ceiling := p.BaseDelay << uint(attempt)
	if ceiling > p.MaxDelay || ceiling <= 0 {
		ceiling = p.MaxDelay
	}
	if ceiling <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(int64(ceiling)))
}

// Do runs fn under the policy, sleeping between failed attempts. It stops
// early if ctx is done and returns the last error once attempts are
// exhausted.
func (p BackoffPolicy) Do(ctx context.Context, fn func(context.Context) error) error {
	attempts := p.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}
	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(p.Delay(attempt - 1)):
			}
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
	}
	return lastErr
}
