package pg

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultPoolOptions(t *testing.T) {
	t.Parallel()

	opts := DefaultPoolOptions()
	assert.Equal(t, int32(20), opts.MaxConns)
	assert.Equal(t, int32(2), opts.MinConns)
	assert.Equal(t, 30*time.Second, opts.HealthCheckPeriod)
	assert.Equal(t, time.Hour, opts.MaxConnLifetime)
	assert.Equal(t, 10*time.Minute, opts.MaxConnIdleTime)
	assert.Equal(t, 5*time.Second, opts.PingTimeout)
}

func TestPoolConfigAppliesOptions(t *testing.T) {
	t.Parallel()

	cfg, err := poolConfig("postgres://blog@localhost:5432/posts", PoolOptions{MaxConns: 7, MaxConnIdleTime: time.Minute})
	require.NoError(t, err)
	assert.Equal(t, int32(7), cfg.MaxConns)
	assert.Equal(t, time.Minute, cfg.MaxConnIdleTime)
}

func TestNewPoolInvalidDSN(t *testing.T) {
	t.Parallel()

	_, err := NewPool(context.Background(), "postgres://localhost:notaport/db", DefaultPoolOptions())
	assert.Error(t, err)
}
