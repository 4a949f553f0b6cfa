package errors

import (
	"context"
	"fmt"
	"time"
)

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

// RetryConfig configures a fixed-delay retry loop.
type RetryConfig struct {
	// MaxRetries is the maximum number of retry attempts (not including initial attempt).
	MaxRetries int

	// Delay is the wait between attempts.
	Delay time.Duration

	// Sleep replaces the real wait between attempts. Nil uses ContextSleep.
	Sleep SleepFunc

	// OnRetry is called after a failed attempt when another attempt will follow.
	// remaining is the number of retries left after this one.
	OnRetry func(remaining int, err error)

	// ShouldRetry decides whether an error is worth another attempt.
	// Nil retries every error.
	ShouldRetry func(err error) bool
}

// FixedRetryConfig returns a config that waits the same delay between every attempt.
func FixedRetryConfig(retries int, delay time.Duration) RetryConfig {
	return RetryConfig{
		MaxRetries: retries,
		Delay:      delay,
	}
}

// ContextSleep waits for d, returning early with ctx.Err() if ctx is cancelled.
func ContextSleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// RetryWithResult executes fn, retrying up to MaxRetries times while it returns
// an error. If the context is cancelled, it returns the context error immediately.
// On failure it returns the zero value of T.
func RetryWithResult[T any](ctx context.Context, cfg RetryConfig, fn func() (T, error)) (T, error) {
	var zero T
	sleep := cfg.Sleep
	if sleep == nil {
		sleep = ContextSleep
	}
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		if err := ctx.Err(); err != nil {
			return zero, err
		}

		result, err := fn()
		if err == nil {
			return result, nil
		}
		lastErr = err

		if cfg.ShouldRetry != nil && !cfg.ShouldRetry(err) {
			return zero, err
		}
		if attempt >= cfg.MaxRetries {
			break
		}
		if cfg.OnRetry != nil {
			cfg.OnRetry(cfg.MaxRetries-attempt-1, err)
		}
		if err := sleep(ctx, cfg.Delay); err != nil {
			return zero, err
		}
	}

	return zero, fmt.Errorf("failed after %d retries: %w", cfg.MaxRetries, lastErr)
}
