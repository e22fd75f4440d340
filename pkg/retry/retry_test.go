package retry

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastConfig(attempts int) Config {
	return Config{MaxAttempts: attempts, InitialDelay: time.Millisecond, MaxDelay: 5 * time.Millisecond}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	assert.Equal(t, 3, cfg.MaxAttempts)
	assert.Equal(t, 100*time.Millisecond, cfg.InitialDelay)
	assert.Equal(t, 30*time.Second, cfg.MaxDelay)
	assert.Equal(t, 2.0, cfg.Multiplier)
	assert.True(t, cfg.Jitter)
}

func TestDoSuccessFirstTry(t *testing.T) {
	var attempts int32
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(1), attempts)
}

func TestDoSucceedsAfterFailures(t *testing.T) {
	var attempts int32
	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		if atomic.AddInt32(&attempts, 1) < 3 {
			return errors.New("connection refused")
		}
		return nil
	})

	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts)
}

func TestDoMaxAttemptsReached(t *testing.T) {
	boom := errors.New("boom")
	var attempts int32
	err := Do(context.Background(), fastConfig(3), func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return boom
	})

	var exceeded *RetriesExceededError
	require.ErrorAs(t, err, &exceeded)
	assert.Equal(t, 3, exceeded.Attempts)
	assert.ErrorIs(t, err, boom)
	assert.Equal(t, int32(3), attempts)
}

func TestDoPermanentStops(t *testing.T) {
	bad := errors.New("bad dsn")
	var attempts int32
	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return Permanent(bad)
	})

	assert.Same(t, bad, err)
	assert.Equal(t, int32(1), attempts)
	assert.NoError(t, Permanent(nil))
}

func TestDoUnlimitedUntilContextDone(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()

	var attempts int32
	err := Do(ctx, fastConfig(0), func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return errors.New("db not ready")
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, atomic.LoadInt32(&attempts), int32(1))
}

func TestDoCanceledErrorIsNotRetried(t *testing.T) {
	var attempts int32
	err := Do(context.Background(), fastConfig(5), func(ctx context.Context) error {
		atomic.AddInt32(&attempts, 1)
		return context.Canceled
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, int32(1), attempts)
}

func TestDoOnRetryAndBackoffGrowth(t *testing.T) {
	var delays []time.Duration
	cfg := Config{
		MaxAttempts:  5,
		InitialDelay: time.Millisecond,
		MaxDelay:     4 * time.Millisecond,
		Multiplier:   2,
		OnRetry: func(attempt int, err error, next time.Duration) {
			delays = append(delays, next)
		},
	}

	_ = Do(context.Background(), cfg, func(ctx context.Context) error { return errors.New("x") })

	assert.Equal(t, []time.Duration{
		time.Millisecond,
		2 * time.Millisecond,
		4 * time.Millisecond,
		4 * time.Millisecond,
	}, delays)
}

func TestDoInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		cfg  Config
	}{
		{"negative attempts", Config{MaxAttempts: -1, InitialDelay: time.Millisecond}},
		{"zero delay", Config{MaxAttempts: 1}},
		{"max below initial", Config{MaxAttempts: 1, InitialDelay: time.Second, MaxDelay: time.Millisecond}},
		{"shrinking multiplier", Config{MaxAttempts: 1, InitialDelay: time.Millisecond, Multiplier: 0.5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			called := false
			err := Do(context.Background(), tt.cfg, func(ctx context.Context) error { called = true; return nil })
			assert.Error(t, err)
			assert.False(t, called)
		})
	}
}

func TestJitterStaysInRange(t *testing.T) {
	cfg := Config{Jitter: true}
	base := 100 * time.Millisecond
	for range 100 {
		d := cfg.jitter(base)
		assert.GreaterOrEqual(t, d, 75*time.Millisecond)
		assert.Less(t, d, 125*time.Millisecond)
	}
	assert.Equal(t, base, Config{}.jitter(base))
}
