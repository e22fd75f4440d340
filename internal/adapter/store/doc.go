// Package store implements the posts and comments repositories on SQLite and
// PostgreSQL. Every repository takes its querier from a TxRunner, so calls
// made inside WithinTx join the transaction.
package store
