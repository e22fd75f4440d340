package sqlite

import (
	"context"
	"database/sql"
	"io/fs"
	"path/filepath"
	"testing"
)

// NewTestDB opens an in-memory database for t, applies the migrations in dir
// of fsys and closes it when the test ends.
func NewTestDB(t testing.TB, fsys fs.FS, dir string) *sql.DB {
	t.Helper()

	db, err := OpenInMemory(context.Background())
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := ApplyMigrations(db, fsys, dir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}

// NewTestDBFile is NewTestDB backed by a file in t.TempDir.
func NewTestDBFile(t testing.TB, fsys fs.FS, dir string) *sql.DB {
	t.Helper()

	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "test.db"), DefaultOptions())
	if err != nil {
		t.Fatalf("open file db: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	if _, err := ApplyMigrations(db, fsys, dir); err != nil {
		t.Fatalf("apply migrations: %v", err)
	}
	return db
}
