package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"blog-go-template/internal/comments"
	"blog-go-template/internal/platform/sqlite"
)

// SQLiteComments is a comments.Repository on SQLite.
type SQLiteComments struct {
	tx *sqlite.TxRunner
}

var _ comments.Repository = (*SQLiteComments)(nil)

// NewSQLiteComments returns a repository whose writes run through tx.
func NewSQLiteComments(tx *sqlite.TxRunner) *SQLiteComments {
	return &SQLiteComments{tx: tx}
}

// GetByGuid returns nil without an error when no row matches.
func (r *SQLiteComments) GetByGuid(ctx context.Context, guid uuid.UUID) (*comments.Comment, error) {
	row := r.tx.GetQuerier(ctx).QueryRowContext(ctx,
		`SELECT guid, post_guid, text, visible FROM comments WHERE guid = ?`, guid.String())

	var c comments.Comment
	if err := scanComment(row, &c); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &c, nil
}

// GetByPostGuid returns the comments of a post in insertion order.
func (r *SQLiteComments) GetByPostGuid(ctx context.Context, postGuid uuid.UUID) ([]comments.Comment, error) {
	rows, err := r.tx.GetQuerier(ctx).QueryContext(ctx,
		`SELECT guid, post_guid, text, visible FROM comments WHERE post_guid = ? ORDER BY seq`, postGuid.String())
	if err != nil {
		return nil, fmt.Errorf("query comments: %w", err)
	}
	defer rows.Close()

	var out []comments.Comment
	for rows.Next() {
		var c comments.Comment
		if err := scanComment(rows, &c); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Create fails on a duplicate guid.
func (r *SQLiteComments) Create(ctx context.Context, c *comments.Comment) (bool, error) {
	return execSQLite(ctx, r.tx,
		`INSERT INTO comments (guid, post_guid, text, visible) VALUES (?, ?, ?, ?)`,
		c.Guid.String(), c.PostGuid.String(), c.Text, c.Visible)
}

func (r *SQLiteComments) Update(ctx context.Context, c *comments.Comment) (bool, error) {
	return execSQLite(ctx, r.tx,
		`UPDATE comments SET post_guid = ?, text = ?, visible = ? WHERE guid = ?`,
		c.PostGuid.String(), c.Text, c.Visible, c.Guid.String())
}

func (r *SQLiteComments) Delete(ctx context.Context, c *comments.Comment) (bool, error) {
	return execSQLite(ctx, r.tx, `DELETE FROM comments WHERE guid = ?`, c.Guid.String())
}

func scanComment(s scanner, c *comments.Comment) error {
	var guid, postGuid string
	if err := s.Scan(&guid, &postGuid, &c.Text, &c.Visible); err != nil {
		return err
	}
	if err := parseGuid(guid, &c.Guid); err != nil {
		return err
	}
	return parseGuid(postGuid, &c.PostGuid)
}
