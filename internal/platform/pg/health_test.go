package pg

import (
	"context"
	"os"
	"testing"
	"testing/fstest"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"blog-go-template/pkg/retry"
)

// testDSN returns PG_TEST_DSN or skips the test.
func testDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv("PG_TEST_DSN")
	if dsn == "" {
		t.Skip("PG_TEST_DSN not set")
	}
	return dsn
}

func TestWaitForDBInvalidDSNFailsFast(t *testing.T) {
	t.Parallel()

	calls := 0
	err := WaitForDB(context.Background(), "postgres://localhost:notaport/db", retry.Config{
		InitialDelay: time.Millisecond,
		OnRetry:      func(int, error, time.Duration) { calls++ },
	})
	assert.Error(t, err)
	assert.Zero(t, calls)
}

func TestWaitForDBGivesUp(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	err := WaitForDB(ctx, "postgres://blog@127.0.0.1:1/posts?connect_timeout=1", retry.Config{
		MaxAttempts:  2,
		InitialDelay: time.Millisecond,
	})
	var exceeded *retry.RetriesExceededError
	assert.ErrorAs(t, err, &exceeded)
}

func TestHealthCheckPoolNil(t *testing.T) {
	t.Parallel()
	assert.Error(t, HealthCheckPool(context.Background(), nil))
}

func TestPostgresIntegration(t *testing.T) {
	dsn := testDSN(t)
	ctx := context.Background()

	fsys := fstest.MapFS{
		"m/000001_pg_health_check.up.sql":   {Data: []byte("CREATE TABLE IF NOT EXISTS pg_health_check (id INT PRIMARY KEY);")},
		"m/000001_pg_health_check.down.sql": {Data: []byte("DROP TABLE IF EXISTS pg_health_check;")},
	}
	_, err := ApplyMigrations(dsn, fsys, "m")
	require.NoError(t, err)

	again, err := ApplyMigrations(dsn, fsys, "m")
	require.NoError(t, err)
	assert.False(t, again.Applied)

	pool, err := NewPool(ctx, dsn, DefaultPoolOptions())
	require.NoError(t, err)
	t.Cleanup(pool.Close)
	require.NoError(t, HealthCheckPool(ctx, pool))

	runner := NewTxRunner(pool)
	_, err = pool.Exec(ctx, "DELETE FROM pg_health_check")
	require.NoError(t, err)

	err = runner.WithinTx(ctx, func(ctx context.Context) error {
		_, err := runner.GetQuerier(ctx).Exec(ctx, "INSERT INTO pg_health_check (id) VALUES (1)")
		require.NoError(t, err)
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)

	var n int
	require.NoError(t, pool.QueryRow(ctx, "SELECT count(*) FROM pg_health_check").Scan(&n))
	assert.Zero(t, n)
}
