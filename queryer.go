package relsql

import (
	"context"
	"database/sql"
)

// Queryer is the Connection/Cursor contract the query orchestrator needs,
// satisfied directly by *sql.DB, *sql.Conn, and *sql.Tx: a pool, a single
// connection, and a transaction all expose the same execute/fetch surface,
// so Query never needs to know which one it was handed.
type Queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

var (
	_ Queryer = (*sql.DB)(nil)
	_ Queryer = (*sql.Conn)(nil)
	_ Queryer = (*sql.Tx)(nil)
)
