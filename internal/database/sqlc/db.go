// Package sqldb holds the sqlc-style query layer for the items table.
package sqldb

import (
	"context"
	"database/sql"
)

// DBTX is satisfied by both *sql.DB and *sql.Tx.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	PrepareContext(ctx context.Context, query string) (*sql.Stmt, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Queries runs the item statements against a DBTX.
type Queries struct {
	db DBTX
}

// New wraps a DBTX.
func New(db DBTX) *Queries {
	return &Queries{db: db}
}

// WithTx returns a copy of the Queries helper bound to tx.
func (q *Queries) WithTx(tx *sql.Tx) *Queries {
	return &Queries{db: tx}
}
