// Package resilience retries transient failures of the Anthropic API with
// exponential backoff.
package resilience

import (
	"context"
	"math/rand/v2"
	"time"

	"go.uber.org/zap"
)

// RetryConfig controls how DoVal retries a failed call.
type RetryConfig struct {
	// Attempts is the total number of tries including the first. Default: 4.
	Attempts int

	// BaseDelay is the backoff before the first retry; it doubles after
	// each failed attempt. Default: 400ms.
	BaseDelay time.Duration

	// MaxDelay caps the backoff. Default: 10s.
	MaxDelay time.Duration

	// ShouldRetry decides whether an error is worth another attempt.
	// Nil means IsTransient.
	ShouldRetry func(err error) bool

	// OnRetry is called with the attempt number and error before each sleep.
	OnRetry func(attempt int, err error)
}

// DefaultRetryConfig is tuned for chat completions: the calls themselves are
// slow and rate limits clear within seconds, so a few widely spaced tries
// are enough.
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{
		Attempts:  4,
		BaseDelay: 400 * time.Millisecond,
		MaxDelay:  10 * time.Second,
	}
}

// DoVal calls fn until it succeeds, the error is not retryable, the attempts
// run out, or ctx is done. On failure the zero value and the last error are
// returned.
func DoVal[T any](ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) (T, error)) (T, error) {
	if cfg.Attempts <= 0 {
		cfg.Attempts = 4
	}
	if cfg.BaseDelay <= 0 {
		cfg.BaseDelay = 400 * time.Millisecond
	}
	if cfg.MaxDelay <= 0 {
		cfg.MaxDelay = 10 * time.Second
	}
	shouldRetry := cfg.ShouldRetry
	if shouldRetry == nil {
		shouldRetry = IsTransient
	}

	var zero T
	var lastErr error
	for attempt := 0; attempt < cfg.Attempts; attempt++ {
		val, err := fn(ctx)
		if err == nil {
			return val, nil
		}
		lastErr = err

		if ctx.Err() != nil || !shouldRetry(lastErr) {
			return zero, lastErr
		}
		if attempt == cfg.Attempts-1 {
			break
		}

		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt+1, lastErr)
		}

		timer := time.NewTimer(backoff(attempt, cfg))
		select {
		case <-ctx.Done():
			timer.Stop()
			return zero, lastErr
		case <-timer.C:
		}
	}
	return zero, lastErr
}

// backoff doubles BaseDelay per prior attempt, capped at MaxDelay, and
// randomizes the upper half of the result so simultaneous clients spread out.
func backoff(attempt int, cfg RetryConfig) time.Duration {
	d := cfg.BaseDelay << attempt
	if d <= 0 || d > cfg.MaxDelay {
		d = cfg.MaxDelay
	}
	half := d / 2
	return half + time.Duration(rand.Int64N(int64(half)+1))
}

// RetryLogger returns an OnRetry callback that logs each retry attempt.
func RetryLogger(service, operation string) func(int, error) {
	return func(attempt int, err error) {
		zap.L().Warn("retrying operation",
			zap.String("service", service),
			zap.String("operation", operation),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
}
