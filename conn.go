package relsql

import (
	"context"
	"database/sql"
)

// Conn is a single pooled connection acquired from a DB, the realization of
// the Pool contract's acquire()/release(): release happens on Close.
type Conn struct {
	db  *DB
	raw *sql.Conn
}

// Close releases the connection back to the pool.
func (c *Conn) Close() error { return c.raw.Close() }

// PingContext verifies this specific connection is alive.
func (c *Conn) PingContext(ctx context.Context) error { return c.raw.PingContext(ctx) }

// Query starts building a templated query against this connection.
func (c *Conn) Query(fragment Fragment) *Query {
	return newQuery(c.db, c.raw, fragment)
}

// Begin starts a transaction scoped to this connection.
func (c *Conn) Begin(ctx context.Context) (*Tx, error) {
	raw, err := c.raw.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{db: c.db, raw: raw}, nil
}
