package relsql

import (
	"context"
	"database/sql"

	"github.com/oarkflow/relsql/identifier"
	"github.com/oarkflow/relsql/mapping"
	"github.com/oarkflow/relsql/paramstyle"
	"github.com/oarkflow/relsql/querycache"
	"github.com/oarkflow/relsql/template"
)

// DB wraps a *sql.DB with the toolkit's ambient stack: the placeholder
// dialect its driver speaks, an identifier quoter, a template engine, a
// query cache, and a process-wide mapping plan cache — grounded on the
// teacher's sqlx.DB, generalized from "struct-scanning helper" to
// "templated query orchestrator".
type DB struct {
	raw        *sql.DB
	driverName string
	dialect    paramstyle.Style
	quoter     *identifier.Quoter
	engine     *template.Engine
	queries    *querycache.Cache
	plans      *mapping.Cache
	loader     *querycache.FileLoader
	hooks      []Hooks
}

// Open opens a new *sql.DB for driverName/dataSourceName and wraps it, using
// cfg to resolve the placeholder dialect, identifier quote character, and
// template search roots. Open does not verify connectivity; use Connect for
// that.
func Open(driverName, dataSourceName string, cfg Config) (*DB, error) {
	raw, err := sql.Open(driverName, dataSourceName)
	if err != nil {
		return nil, err
	}
	return wrap(raw, driverName, cfg), nil
}

// Connect opens a database and verifies it with a ping.
func Connect(driverName, dataSourceName string, cfg Config) (*DB, error) {
	db, err := Open(driverName, dataSourceName, cfg)
	if err != nil {
		return nil, err
	}
	if err := db.raw.Ping(); err != nil {
		db.raw.Close()
		return nil, err
	}
	return db, nil
}

// MustConnect is Connect, panicking on error.
func MustConnect(driverName, dataSourceName string, cfg Config) *DB {
	db, err := Connect(driverName, dataSourceName, cfg)
	if err != nil {
		panic(err)
	}
	return db
}

// WrapExisting adapts an already-open *sql.DB, e.g. one a driver
// subpackage's Open helper created.
func WrapExisting(raw *sql.DB, driverName string, cfg Config) *DB {
	return wrap(raw, driverName, cfg)
}

// processPlans is the mapping plan cache shared by every DB in the process.
var processPlans = mapping.NewCache()

func wrap(raw *sql.DB, driverName string, cfg Config) *DB {
	cfg.applyDefaults()
	quoter, err := identifier.NewQuoter(cfg.QuoteChar)
	if err != nil {
		quoter, _ = identifier.NewQuoter('"')
	}
	db := &DB{
		raw:        raw,
		driverName: driverName,
		dialect:    cfg.ParamStyle,
		quoter:     quoter,
		engine:     template.NewEngine(quoter),
		queries:    querycache.NewCache(),
		plans:      processPlans,
		loader:     querycache.NewFileLoader(cfg.TemplateRoots...),
	}
	return db
}

// Raw returns the underlying *sql.DB for escape-hatch access (pool tuning,
// Stats, direct use with another library).
func (db *DB) Raw() *sql.DB { return db.raw }

// DriverName returns the database/sql driver name this DB was opened with.
func (db *DB) DriverName() string { return db.driverName }

// Dialect returns the placeholder dialect queries render against.
func (db *DB) Dialect() paramstyle.Style { return db.dialect }

// AddHook registers a query-lifecycle hook, invoked around every rendered
// execution, per the teacher's before/after/error hook design. A Hooks
// value that also implements OnErrorer is consulted on execution errors
// too.
func (db *DB) AddHook(h Hooks) { db.hooks = append(db.hooks, h) }

// Ping verifies the connection is alive.
func (db *DB) Ping() error { return db.raw.Ping() }

// PingContext verifies the connection is alive, honoring ctx.
func (db *DB) PingContext(ctx context.Context) error { return db.raw.PingContext(ctx) }

// Close releases the underlying pool.
func (db *DB) Close() error { return db.raw.Close() }

// Conn acquires a single connection from the pool, the realization of the
// Pool contract's acquire(); release happens via the returned Conn's Close.
func (db *DB) Conn(ctx context.Context) (*Conn, error) {
	c, err := db.raw.Conn(ctx)
	if err != nil {
		return nil, err
	}
	return &Conn{db: db, raw: c}, nil
}

// Query starts building a templated query against the pool.
func (db *DB) Query(fragment Fragment) *Query {
	return newQuery(db, db.raw, fragment)
}

// Begin starts a transaction against the pool, the realization of
// Connection.cursor()-under-autocommit-false.
func (db *DB) Begin(ctx context.Context) (*Tx, error) {
	raw, err := db.raw.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	return &Tx{db: db, raw: raw}, nil
}

// WithTransaction runs fn inside a transaction scope: commits on a nil
// return, rolls back and propagates the error otherwise, and also rolls
// back (re-panicking) if fn panics — the transaction-boundary guarantee of
// property 9.
func (db *DB) WithTransaction(ctx context.Context, fn func(tx *Tx) error) (err error) {
	tx, err := db.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if p := recover(); p != nil {
			tx.raw.Rollback()
			panic(p)
		}
	}()
	if err = fn(tx); err != nil {
		tx.raw.Rollback()
		return err
	}
	return tx.raw.Commit()
}
