package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blog-go-template/internal/platform/sqlite"
	"blog-go-template/internal/posts"
)

// SQLitePosts is a posts.Repository on SQLite.
type SQLitePosts struct {
	tx *sqlite.TxRunner
}

var _ posts.Repository = (*SQLitePosts)(nil)

// NewSQLitePosts returns a repository whose writes run through tx.
func NewSQLitePosts(tx *sqlite.TxRunner) *SQLitePosts {
	return &SQLitePosts{tx: tx}
}

// List returns every post in insertion order.
func (r *SQLitePosts) List(ctx context.Context) ([]posts.Post, error) {
	rows, err := r.tx.GetQuerier(ctx).QueryContext(ctx,
		`SELECT guid, title, text, visible FROM posts ORDER BY seq`)
	if err != nil {
		return nil, fmt.Errorf("query posts: %w", err)
	}
	defer rows.Close()

	var out []posts.Post
	for rows.Next() {
		var p posts.Post
		if err := scanPost(rows, &p); err != nil {
			return nil, err
		}
		out = append(out, p)
	}
	return out, rows.Err()
}

// GetByGuid returns nil without an error when no row matches.
func (r *SQLitePosts) GetByGuid(ctx context.Context, guid uuid.UUID) (*posts.Post, error) {
	row := r.tx.GetQuerier(ctx).QueryRowContext(ctx,
		`SELECT guid, title, text, visible FROM posts WHERE guid = ?`, guid.String())

	var p posts.Post
	if err := scanPost(row, &p); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &p, nil
}

// Create fails on a duplicate guid.
func (r *SQLitePosts) Create(ctx context.Context, p *posts.Post) (bool, error) {
	return execSQLite(ctx, r.tx,
		`INSERT INTO posts (guid, title, text, visible) VALUES (?, ?, ?, ?)`,
		p.Guid.String(), p.Title, p.Text, p.Visible)
}

func (r *SQLitePosts) Update(ctx context.Context, p *posts.Post) (bool, error) {
	return execSQLite(ctx, r.tx,
		`UPDATE posts SET title = ?, text = ?, visible = ? WHERE guid = ?`,
		p.Title, p.Text, p.Visible, p.Guid.String())
}

func (r *SQLitePosts) Delete(ctx context.Context, p *posts.Post) (bool, error) {
	return execSQLite(ctx, r.tx, `DELETE FROM posts WHERE guid = ?`, p.Guid.String())
}

type scanner interface {
	Scan(dest ...any) error
}

func scanPost(s scanner, p *posts.Post) error {
	var guid string
	if err := s.Scan(&guid, &p.Title, &p.Text, &p.Visible); err != nil {
		return err
	}
	return parseGuid(guid, &p.Guid)
}

func parseGuid(s string, dst *uuid.UUID) error {
	g, err := uuid.Parse(s)
	if err != nil {
		return fmt.Errorf("parse guid %q: %w", s, err)
	}
	*dst = g
	return nil
}

// execSQLite runs a write in its own transaction, or joins the one in ctx,
// and reports whether it changed at least one row.
func execSQLite(ctx context.Context, tx *sqlite.TxRunner, query string, args ...any) (bool, error) {
	var changed bool
	err := tx.WithinTx(ctx, func(ctx context.Context) error {
		res, err := tx.GetQuerier(ctx).ExecContext(ctx, query, args...)
		if err != nil {
			return err
		}
		n, err := res.RowsAffected()
		if err != nil {
			return err
		}
		changed = n > 0
		return nil
	})
	return changed, err
}
