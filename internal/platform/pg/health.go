package pg

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"blog-go-template/pkg/retry"
)

// WaitForDB blocks until a connection to dsn succeeds, retrying with the
// backoff in cfg. Malformed DSNs fail immediately.
func WaitForDB(ctx context.Context, dsn string, cfg retry.Config) error {
	if _, err := pgx.ParseConfig(dsn); err != nil {
		return fmt.Errorf("parse dsn: %w", err)
	}
	return retry.Do(ctx, cfg, func(ctx context.Context) error {
		return HealthCheck(ctx, dsn)
	})
}

// HealthCheck opens a single connection to dsn and pings it.
func HealthCheck(ctx context.Context, dsn string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer conn.Close(context.Background())

	return conn.Ping(ctx)
}

// HealthCheckPool pings an existing pool.
func HealthCheckPool(ctx context.Context, pool *pgxpool.Pool) error {
	if pool == nil {
		return fmt.Errorf("pool is nil")
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := pool.Ping(ctx); err != nil {
		return fmt.Errorf("pool ping: %w", err)
	}
	return nil
}
