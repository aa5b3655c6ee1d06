package postgres

import (
	"context"
	"database/sql"
)

// Querier is the subset of database/sql the repositories use. Both
// *sql.DB and *sql.Tx satisfy it, so a repository can run standalone
// or inside a transaction.
type Querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ Querier = (*sql.DB)(nil)
	_ Querier = (*sql.Tx)(nil)
)
