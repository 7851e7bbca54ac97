package relsql

import "context"

type scopeKey struct{}

// scopeState is the per-thread scoped connection spec §5 describes,
// realized here as a context.Context value rather than thread-local
// storage: a goroutine's "thread" is whatever context it carries. Nested
// WithScope entries on a context that already carries one reuse the outer
// connection rather than acquiring a second.
type scopeState struct {
	conn *Conn
}

// WithScope borrows one connection from db's pool and binds it into the
// returned context, the realization of "the scoped connection borrows one
// connection from the pool on scope entry". If ctx already carries a scope
// (a nested entry on the same logical thread), it is returned unchanged and
// release is a no-op — the inner scope reuses the outer connection.
//
// Callers must call release exactly once, typically in a defer, to return
// the connection to the pool on every exit path.
func WithScope(ctx context.Context, db *DB) (context.Context, func(), error) {
	if _, ok := ctx.Value(scopeKey{}).(*scopeState); ok {
		return ctx, func() {}, nil
	}
	conn, err := db.Conn(ctx)
	if err != nil {
		return ctx, func() {}, err
	}
	scoped := context.WithValue(ctx, scopeKey{}, &scopeState{conn: conn})
	return scoped, func() { conn.Close() }, nil
}

// ScopedQueryer returns the connection bound to ctx by WithScope, or reports
// false if ctx carries none.
func ScopedQueryer(ctx context.Context) (*Conn, bool) {
	s, ok := ctx.Value(scopeKey{}).(*scopeState)
	if !ok {
		return nil, false
	}
	return s.conn, true
}

// ScopedQuery builds a templated query against ctx's scoped connection if one is
// bound, falling back to the pool directly (acquiring and releasing a
// connection per execution, the pool's own default behavior) when no scope
// is active.
func (db *DB) ScopedQuery(ctx context.Context, fragment Fragment) *Query {
	if conn, ok := ScopedQueryer(ctx); ok {
		return conn.Query(fragment)
	}
	return db.Query(fragment)
}
