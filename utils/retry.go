package utils

import (
	"fmt"
	"time"
)

// RetryConfig holds the parameters for the retry strategy.
// The same config is shared by the search fetch and every detail fetch.
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
	MaxDelay    time.Duration // per-attempt delay cap; 0 means uncapped
	Logger      *Logger
	Sleep       func(time.Duration) // injectable for tests; nil means time.Sleep
}

// Do executes fn with exponential back-off retry logic. The delay starts at
// BaseDelay, doubles each attempt, and never exceeds MaxDelay.
func (r *RetryConfig) Do(operationName string, fn func() error) error {
	sleep := r.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}

	var lastErr error
	delay := r.BaseDelay

	for attempt := 1; attempt <= r.MaxAttempts; attempt++ {
		lastErr = fn()
		if lastErr == nil {
			return nil
		}

		if attempt < r.MaxAttempts {
			r.Logger.Warn("[retry] %s failed (attempt %d/%d): %v — retrying in %v",
				operationName, attempt, r.MaxAttempts, lastErr, delay)
			sleep(delay)
			delay *= 2
			if r.MaxDelay > 0 && delay > r.MaxDelay {
				delay = r.MaxDelay
			}
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, r.MaxAttempts, lastErr)
}
