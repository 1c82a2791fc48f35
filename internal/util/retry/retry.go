package retry

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Config holds retry configuration.
type Config struct {
	MaxRetries   int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64

	// RetryIf reports whether an error is worth another attempt.
	// A nil RetryIf retries every error that is not marked Fatal.
	RetryIf func(error) bool
}

// Option is a functional option for retry configuration.
type Option func(*Config)

// Do executes the operation and retries it on failure.
// It runs at most MaxRetries+1 times, sleeping between attempts with a delay
// that grows by Multiplier up to MaxDelay. Context cancellation is respected
// while waiting.
//
// Errors wrapped with Fatal() and errors rejected by RetryIf are returned
// immediately.
func Do(ctx context.Context, operation func(context.Context) error, opts ...Option) error {
	cfg := &Config{
		MaxRetries:   3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}

	for _, opt := range opts {
		opt(cfg)
	}

	delay := cfg.InitialDelay
	var lastErr error

	for attempt := 0; attempt <= cfg.MaxRetries; attempt++ {
		err := operation(ctx)
		if err == nil {
			return nil
		}

		lastErr = err

		if IsFatal(err) {
			return fmt.Errorf("fatal error (not retrying): %w", err)
		}
		if cfg.RetryIf != nil && !cfg.RetryIf(err) {
			return err
		}

		if attempt < cfg.MaxRetries {
			select {
			case <-ctx.Done():
				return fmt.Errorf("context cancelled after %d attempts: %w", attempt+1, ctx.Err())
			case <-time.After(delay):
				delay = time.Duration(float64(delay) * cfg.Multiplier)
				if cfg.MaxDelay > 0 && delay > cfg.MaxDelay {
					delay = cfg.MaxDelay
				}
			}
		}
	}

	if cfg.MaxRetries == 0 {
		return lastErr
	}
	return fmt.Errorf("operation failed after %d attempts: %w", cfg.MaxRetries+1, lastErr)
}

// Once configures a single retry after a fixed delay.
func Once(delay time.Duration) Option {
	return func(c *Config) {
		c.MaxRetries = 1
		c.InitialDelay = delay
		c.Multiplier = 1
	}
}

// WithMaxRetries sets the maximum number of retries.
func WithMaxRetries(n int) Option {
	return func(c *Config) {
		c.MaxRetries = n
	}
}

// WithInitialDelay sets the initial delay between retries.
func WithInitialDelay(d time.Duration) Option {
	return func(c *Config) {
		c.InitialDelay = d
	}
}

// WithMaxDelay sets the maximum delay between retries.
func WithMaxDelay(d time.Duration) Option {
	return func(c *Config) {
		c.MaxDelay = d
	}
}

// WithMultiplier sets the backoff multiplier.
func WithMultiplier(m float64) Option {
	return func(c *Config) {
		c.Multiplier = m
	}
}

// WithRetryIf restricts retries to errors accepted by fn.
func WithRetryIf(fn func(error) bool) Option {
	return func(c *Config) {
		c.RetryIf = fn
	}
}

// FatalError wraps an error to mark it as fatal (non-retryable).
type FatalError struct {
	Err error
}

func (e *FatalError) Error() string {
	return e.Err.Error()
}

func (e *FatalError) Unwrap() error {
	return e.Err
}

// Fatal marks an error as fatal (non-retryable).
func Fatal(err error) error {
	if err == nil {
		return nil
	}
	return &FatalError{Err: err}
}

// IsFatal checks if an error is fatal (non-retryable).
func IsFatal(err error) bool {
	var fatalErr *FatalError
	return errors.As(err, &fatalErr)
}
