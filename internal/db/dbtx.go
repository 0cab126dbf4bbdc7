package db

import (
	"context"
	"database/sql"
)

// DBTX is what the planner repositories run their statements against. Both
// the shared *sql.DB and a *sql.Tx from UnitOfWork satisfy it, so a record
// header and its task rows can be written either standalone or atomically.
type DBTX interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

var (
	_ DBTX = (*sql.DB)(nil)
	_ DBTX = (*sql.Tx)(nil)
)
