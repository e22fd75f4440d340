package retry

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"time"
)

// Config defines retry configuration.
type Config struct {
	// MaxAttempts is the maximum number of attempts including the first one (0 = until ctx is done)
	MaxAttempts int
	// InitialDelay is the delay before the second attempt
	InitialDelay time.Duration
	// MaxDelay caps the exponential growth
	MaxDelay time.Duration
	// Multiplier is the exponential backoff multiplier
	Multiplier float64
	// Jitter spreads each delay by up to ±25%
	Jitter bool
	// OnRetry is called before each wait
	OnRetry func(attempt int, err error, nextDelay time.Duration)
}

// DefaultConfig returns a sensible default configuration.
func DefaultConfig() Config {
	return Config{
		MaxAttempts:  3,
		InitialDelay: 100 * time.Millisecond,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
		Jitter:       true,
	}
}

func (c Config) normalize() (Config, error) {
	if c.MaxAttempts < 0 {
		return c, errors.New("retry: MaxAttempts cannot be negative")
	}
	if c.InitialDelay <= 0 {
		return c, errors.New("retry: InitialDelay must be positive")
	}
	if c.MaxDelay <= 0 {
		c.MaxDelay = 30 * time.Second
	}
	if c.MaxDelay < c.InitialDelay {
		return c, errors.New("retry: MaxDelay cannot be less than InitialDelay")
	}
	if c.Multiplier == 0 {
		c.Multiplier = 2.0
	}
	if c.Multiplier < 1.0 {
		return c, errors.New("retry: Multiplier must be >= 1.0")
	}
	return c, nil
}

// RetryableFunc is a function that can be retried.
type RetryableFunc func(ctx context.Context) error

type permanentError struct{ err error }

func (e permanentError) Error() string { return e.err.Error() }
func (e permanentError) Unwrap() error { return e.err }

// Permanent marks err so that Do stops retrying and returns it.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return permanentError{err: err}
}

// RetriesExceededError is returned when attempts are exhausted.
type RetriesExceededError struct {
	LastError error
	Attempts  int
}

func (e *RetriesExceededError) Error() string {
	return fmt.Sprintf("retry: gave up after %d attempts: %v", e.Attempts, e.LastError)
}

func (e *RetriesExceededError) Unwrap() error {
	return e.LastError
}

// Do calls fn until it succeeds, returns a Permanent error, the attempts run
// out or ctx is done. Delays grow exponentially from InitialDelay to MaxDelay.
func Do(ctx context.Context, config Config, fn RetryableFunc) error {
	cfg, err := config.normalize()
	if err != nil {
		return err
	}

	delay := cfg.InitialDelay
	for attempt := 1; ; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		lastErr := fn(ctx)
		if lastErr == nil {
			return nil
		}
		var perm permanentError
		if errors.As(lastErr, &perm) {
			return perm.err
		}
		if errors.Is(lastErr, context.Canceled) {
			return lastErr
		}
		if cfg.MaxAttempts > 0 && attempt >= cfg.MaxAttempts {
			return &RetriesExceededError{LastError: lastErr, Attempts: attempt}
		}

		wait := cfg.jitter(delay)
		if cfg.OnRetry != nil {
			cfg.OnRetry(attempt, lastErr, wait)
		}

		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
		case <-timer.C:
		}

		delay = min(time.Duration(float64(delay)*cfg.Multiplier), cfg.MaxDelay)
	}
}

func (c Config) jitter(d time.Duration) time.Duration {
	if !c.Jitter || d < 4 {
		return d
	}
	spread := d / 4
	return d - spread + time.Duration(rand.Int64N(int64(2*spread)))
}
