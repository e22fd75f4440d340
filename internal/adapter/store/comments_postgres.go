package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"blog-go-template/internal/comments"
	"blog-go-template/internal/platform/pg"
)

// PostgresComments is a comments.Repository on PostgreSQL.
type PostgresComments struct {
	tx *pg.TxRunner
}

var _ comments.Repository = (*PostgresComments)(nil)

// NewPostgresComments returns a repository whose writes run through tx.
func NewPostgresComments(tx *pg.TxRunner) *PostgresComments {
	return &PostgresComments{tx: tx}
}

// GetByGuid returns nil without an error when no row matches.
func (r *PostgresComments) GetByGuid(ctx context.Context, guid uuid.UUID) (*comments.Comment, error) {
	var c comments.Comment
	err := r.tx.GetQuerier(ctx).QueryRow(ctx,
		`SELECT guid, post_guid, text, visible FROM comments WHERE guid = $1`, guid).
		Scan(&c.Guid, &c.PostGuid, &c.Text, &c.Visible)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetByPostGuid returns the comments of a post in insertion order.
func (r *PostgresComments) GetByPostGuid(ctx context.Context, postGuid uuid.UUID) ([]comments.Comment, error) {
	rows, err := r.tx.GetQuerier(ctx).Query(ctx,
		`SELECT guid, post_guid, text, visible FROM comments WHERE post_guid = $1 ORDER BY seq`, postGuid)
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (comments.Comment, error) {
		var c comments.Comment
		err := row.Scan(&c.Guid, &c.PostGuid, &c.Text, &c.Visible)
		return c, err
	})
}

// Create fails on a duplicate guid.
func (r *PostgresComments) Create(ctx context.Context, c *comments.Comment) (bool, error) {
	return execPostgres(ctx, r.tx,
		`INSERT INTO comments (guid, post_guid, text, visible) VALUES ($1, $2, $3, $4)`,
		c.Guid, c.PostGuid, c.Text, c.Visible)
}

func (r *PostgresComments) Update(ctx context.Context, c *comments.Comment) (bool, error) {
	return execPostgres(ctx, r.tx,
		`UPDATE comments SET post_guid = $2, text = $3, visible = $4 WHERE guid = $1`,
		c.Guid, c.PostGuid, c.Text, c.Visible)
}

func (r *PostgresComments) Delete(ctx context.Context, c *comments.Comment) (bool, error) {
	return execPostgres(ctx, r.tx, `DELETE FROM comments WHERE guid = $1`, c.Guid)
}
