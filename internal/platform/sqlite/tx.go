package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"blog-go-template/pkg/retry"
)

type txKey struct{}

// Querier is the query surface shared by *sql.DB and *sql.Tx.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)

// TxRunner runs functions inside a transaction carried by the context.
type TxRunner struct {
	DB    *sql.DB
	Retry retry.Config
}

// NewTxRunner creates a TxRunner that retries busy transactions three times.
func NewTxRunner(db *sql.DB) *TxRunner {
	return &TxRunner{
		DB: db,
		Retry: retry.Config{
			MaxAttempts:  3,
			InitialDelay: 10 * time.Millisecond,
			MaxDelay:     500 * time.Millisecond,
			Multiplier:   2,
			Jitter:       true,
		},
	}
}

// WithinTx commits when fn returns nil and rolls back otherwise. A
// transaction that fails because the database is busy is retried from the
// start, so fn must not have side effects outside the transaction.
// Nested calls join the outer transaction.
func (r *TxRunner) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	if _, ok := txFrom(ctx); ok {
		return fn(ctx)
	}
	return retry.Do(ctx, r.Retry, func(ctx context.Context) error {
		err := r.run(ctx, fn)
		if err != nil && !isBusy(err) {
			return retry.Permanent(err)
		}
		return err
	})
}

func (r *TxRunner) run(ctx context.Context, fn func(ctx context.Context) error) (err error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(context.WithValue(ctx, txKey{}, tx)); err != nil {
		_ = tx.Rollback()
		return err
	}
	return tx.Commit()
}

// GetQuerier returns the transaction in ctx, or the database.
func (r *TxRunner) GetQuerier(ctx context.Context) Querier {
	if tx, ok := txFrom(ctx); ok {
		return tx
	}
	return r.DB
}

func txFrom(ctx context.Context) (*sql.Tx, bool) {
	tx, ok := ctx.Value(txKey{}).(*sql.Tx)
	return tx, ok
}

func isBusy(err error) bool {
	msg := err.Error()
	return strings.Contains(msg, "SQLITE_BUSY") ||
		strings.Contains(msg, "database is locked") ||
		strings.Contains(msg, "database table is locked")
}
