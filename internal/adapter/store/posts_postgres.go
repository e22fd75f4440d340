package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"blog-go-template/internal/platform/pg"
	"blog-go-template/internal/posts"
)

// PostgresPosts is a posts.Repository on PostgreSQL.
type PostgresPosts struct {
	tx *pg.TxRunner
}

var _ posts.Repository = (*PostgresPosts)(nil)

// NewPostgresPosts returns a repository whose writes run through tx.
func NewPostgresPosts(tx *pg.TxRunner) *PostgresPosts {
	return &PostgresPosts{tx: tx}
}

// List returns every post in insertion order.
func (r *PostgresPosts) List(ctx context.Context) ([]posts.Post, error) {
	rows, err := r.tx.GetQuerier(ctx).Query(ctx, `SELECT guid, title, text, visible FROM posts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (posts.Post, error) {
		var p posts.Post
		err := row.Scan(&p.Guid, &p.Title, &p.Text, &p.Visible)
		return p, err
	})
}

// GetByGuid returns nil without an error when no row matches.
func (r *PostgresPosts) GetByGuid(ctx context.Context, guid uuid.UUID) (*posts.Post, error) {
	var p posts.Post
	err := r.tx.GetQuerier(ctx).QueryRow(ctx,
		`SELECT guid, title, text, visible FROM posts WHERE guid = $1`, guid).
		Scan(&p.Guid, &p.Title, &p.Text, &p.Visible)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Create fails on a duplicate guid.
func (r *PostgresPosts) Create(ctx context.Context, p *posts.Post) (bool, error) {
	return execPostgres(ctx, r.tx,
		`INSERT INTO posts (guid, title, text, visible) VALUES ($1, $2, $3, $4)`,
		p.Guid, p.Title, p.Text, p.Visible)
}

func (r *PostgresPosts) Update(ctx context.Context, p *posts.Post) (bool, error) {
	return execPostgres(ctx, r.tx,
		`UPDATE posts SET title = $2, text = $3, visible = $4 WHERE guid = $1`,
		p.Guid, p.Title, p.Text, p.Visible)
}

func (r *PostgresPosts) Delete(ctx context.Context, p *posts.Post) (bool, error) {
	return execPostgres(ctx, r.tx, `DELETE FROM posts WHERE guid = $1`, p.Guid)
}

// execPostgres runs a write in its own transaction, or joins the one in ctx,
// and reports whether it changed at least one row.
func execPostgres(ctx context.Context, tx *pg.TxRunner, query string, args ...any) (bool, error) {
	var changed bool
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		tag, err := tx.GetQuerier(ctx).Exec(ctx, query, args...)
		if err != nil {
			return err
		}
		changed = tag.RowsAffected() > 0
		return nil
	})
	return changed, err
}
