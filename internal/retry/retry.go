package retry

import (
	"context"
	"time"

	"github.com/rotisserie/eris"
)

type RetryConfig struct {
	MaxAttempts int
	Delay       time.Duration
	Backoff     bool // linear backoff: attempt * Delay
}

// WithRetry runs fn until it succeeds, attempts run out or ctx is done.
// A MaxAttempts below 1 is treated as a single attempt.
func WithRetry(ctx context.Context, config RetryConfig, fn func(ctx context.Context) error) error {
	attempts := config.MaxAttempts
	if attempts < 1 {
		attempts = 1
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		if err := ctx.Err(); err != nil {
			if lastErr != nil {
				return eris.Wrapf(lastErr, "cancelled after %d attempts", attempt-1)
			}
			return err
		}

		err := fn(ctx)
		if err == nil {
			return nil
		}
		lastErr = err

		if attempt == attempts {
			break
		}

		delay := config.Delay
		if config.Backoff {
			delay = time.Duration(attempt) * config.Delay
		}

		select {
		case <-ctx.Done():
			return eris.Wrapf(lastErr, "cancelled after %d attempts", attempt)
		case <-time.After(delay):
		}
	}

	return eris.Wrapf(lastErr, "failed after %d attempts", attempts)
}
