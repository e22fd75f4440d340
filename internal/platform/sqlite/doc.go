// Package sqlite holds the embedded database plumbing used when a service
// runs with DB_DRIVER=sqlite, which is the default.
//
// Open a database, apply the service's embedded migrations and hand a
// TxRunner to the repositories:
//
//	db, err := sqlite.Open(ctx, cfg.DBPath, sqlite.DefaultOptions())
//	if err != nil {
//	    return err
//	}
//	if _, err := sqlite.ApplyMigrations(db, migrations.FS, "posts/sqlite"); err != nil {
//	    return err
//	}
//	repo := posts.NewSQLiteRepository(sqlite.NewTxRunner(db))
//
// A path of ":memory:" yields a private in-memory database restricted to a
// single connection so every query sees the same schema.
//
// Repositories call GetQuerier(ctx) and work the same way inside and outside
// WithinTx. Transactions that fail with SQLITE_BUSY are retried with backoff.
package sqlite
