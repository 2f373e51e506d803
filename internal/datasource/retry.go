package datasource

import (
	"context"
	"time"

	"github.com/yourusername/hoopslines/internal/config"
	"github.com/yourusername/hoopslines/internal/models"
)

// RetryPolicy bounds the attempts made for one fetch.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     time.Duration
}

// PolicyFromConfig converts the configured retry settings.
func PolicyFromConfig(cfg config.RetryConfig) RetryPolicy {
	return RetryPolicy{MaxAttempts: cfg.MaxAttempts, Backoff: cfg.Backoff()}
}

// Retry calls fn until it succeeds, returns a permanent error, or the policy
// runs out of attempts. Attempts are separated by a fixed backoff. Exhaustion
// is reported as a *models.TransientFetchError wrapping the last error.
func Retry[T any](ctx context.Context, policy RetryPolicy, source string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	attempts := policy.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		v, err := fn(ctx)
		if err == nil {
			return v, nil
		}
		if !IsRetryable(err) {
			return zero, err
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		timer := time.NewTimer(policy.Backoff)
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, &models.TransientFetchError{Source: source, Attempts: attempt, Err: ctx.Err()}
		case <-timer.C:
		}
	}
	return zero, &models.TransientFetchError{Source: source, Attempts: attempts, Err: lastErr}
}
