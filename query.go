package relsql

import (
	"context"
	"database/sql"

	"github.com/oarkflow/relsql/mapping"
	"github.com/oarkflow/relsql/paramstyle"
	"github.com/oarkflow/relsql/querycache"
	"github.com/oarkflow/relsql/render"
)

// RawRow is one unmapped row: values in column order, as returned by the
// driver.
type RawRow []any

// Query is the orchestrator bound to one SQL fragment and one connection
// scope (pool, single connection, or transaction). Every public operation
// accepts the params this execution binds: nil, a map[string]any for a
// dynamic template's variables, or a []any of positional values for a
// static query whose literal SQL already contains driver-native
// placeholders.
type Query struct {
	db       *DB
	q        Queryer
	fragment Fragment
}

func newQuery(db *DB, q Queryer, fragment Fragment) *Query {
	return &Query{db: db, q: q, fragment: fragment}
}

// queryOptions holds the per-call overrides QueryOption functions set: a
// substitute cursor/connection for this one execution, and whether an empty
// One should raise instead of returning a nil row.
type queryOptions struct {
	conn    Queryer
	raising bool
}

// QueryOption adjusts a single Execute/One call without changing the
// Query's bound connection scope.
type QueryOption func(*queryOptions)

// WithConn runs this one execution against q instead of the Query's own
// bound connection/pool, the realization of the original's custom-cursor
// support: callers that already hold a *sql.Conn or *sql.Tx elsewhere can
// reuse it for a single call.
func WithConn(q Queryer) QueryOption {
	return func(o *queryOptions) { o.conn = q }
}

// Raising makes One return a UsageError instead of a nil row when the
// result set is empty.
func Raising(raise bool) QueryOption {
	return func(o *queryOptions) { o.raising = raise }
}

func resolveOptions(opts []QueryOption) queryOptions {
	var o queryOptions
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// ReturnAs produces a mapped-query variant whose All/Iter/One route the row
// stream through a compiled hydrator for result/relationships instead of
// returning raw rows.
func (qr *Query) ReturnAs(result mapping.Result, relationships ...mapping.Relationship) *MappedQuery {
	return &MappedQuery{query: qr, result: result, relationships: relationships}
}

func (qr *Query) render(params any) (string, []any, error) {
	entry, err := qr.fragment.resolve(qr.db)
	if err != nil {
		return "", nil, err
	}
	if entry.Kind != querycache.Dynamic {
		args, err := positionalArgs(params)
		if err != nil {
			return "", nil, err
		}
		return entry.Source, args, nil
	}

	vars, err := namedArgs(params)
	if err != nil {
		return "", nil, err
	}
	r := render.New(qr.db.dialect)
	sqlText, err := qr.db.engine.Render(entry.Source, vars, r)
	if err != nil {
		return "", nil, err
	}
	return sqlText, execArgs(qr.db.dialect, r), nil
}

func positionalArgs(params any) ([]any, error) {
	switch p := params.(type) {
	case nil:
		return nil, nil
	case []any:
		return p, nil
	default:
		return nil, &UsageError{Msg: "static query requires positional []any params (or nil)"}
	}
}

func namedArgs(params any) (map[string]any, error) {
	switch p := params.(type) {
	case nil:
		return map[string]any{}, nil
	case map[string]any:
		return p, nil
	default:
		return nil, &UsageError{Msg: "dynamic query requires map[string]any params"}
	}
}

func execArgs(dialect paramstyle.Style, r *render.Renderer) []any {
	if !dialect.Named() {
		return r.PositionalParams()
	}
	pairs := r.OrderedPairs()
	args := make([]any, len(pairs))
	for i, p := range pairs {
		args[i] = sql.Named(p.Name, p.Value)
	}
	return args
}

// Execute renders (or reuses) the SQL, binds params, executes on the
// current scope's cursor, and returns the cursor for downstream
// consumption.
func (qr *Query) Execute(ctx context.Context, params any, opts ...QueryOption) (*sql.Rows, error) {
	o := resolveOptions(opts)
	q := qr.q
	if o.conn != nil {
		q = o.conn
	}
	sqlText, args, err := qr.render(params)
	if err != nil {
		return nil, err
	}
	ctx, err = qr.db.runBefore(ctx, sqlText, args...)
	if err != nil {
		return nil, err
	}
	rows, err := q.QueryContext(ctx, sqlText, args...)
	if err != nil {
		return nil, qr.db.runOnError(ctx, err, sqlText, args...)
	}
	qr.db.runAfter(ctx, sqlText, args...)
	return rows, nil
}

// ExecuteMany renders the fragment for each entry in paramSets and executes
// it once per entry with ExecContext, returning the total affected row
// count. Each entry is a separate driver call; no driver batch API is used.
func (qr *Query) ExecuteMany(ctx context.Context, paramSets []any, opts ...QueryOption) (int64, error) {
	o := resolveOptions(opts)
	q := qr.q
	if o.conn != nil {
		q = o.conn
	}
	var total int64
	for _, params := range paramSets {
		sqlText, args, err := qr.render(params)
		if err != nil {
			return total, err
		}
		callCtx, err := qr.db.runBefore(ctx, sqlText, args...)
		if err != nil {
			return total, err
		}
		res, err := q.ExecContext(callCtx, sqlText, args...)
		if err != nil {
			return total, qr.db.runOnError(callCtx, err, sqlText, args...)
		}
		qr.db.runAfter(callCtx, sqlText, args...)
		n, err := res.RowsAffected()
		if err != nil {
			return total, err
		}
		total += n
	}
	return total, nil
}

// RowCount executes params as a statement and returns the driver-reported
// affected row count, for DML fragments. For a SELECT fragment, drivers
// generally report zero; use All or Iter to count rows instead.
func (qr *Query) RowCount(ctx context.Context, params any, opts ...QueryOption) (int64, error) {
	o := resolveOptions(opts)
	q := qr.q
	if o.conn != nil {
		q = o.conn
	}
	sqlText, args, err := qr.render(params)
	if err != nil {
		return 0, err
	}
	ctx, err = qr.db.runBefore(ctx, sqlText, args...)
	if err != nil {
		return 0, err
	}
	res, err := q.ExecContext(ctx, sqlText, args...)
	if err != nil {
		return 0, qr.db.runOnError(ctx, err, sqlText, args...)
	}
	qr.db.runAfter(ctx, sqlText, args...)
	return res.RowsAffected()
}

// All executes then fetches every raw row, along with the column names.
func (qr *Query) All(ctx context.Context, params any, opts ...QueryOption) ([]RawRow, []string, error) {
	rows, err := qr.Execute(ctx, params, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, nil, err
	}
	var out []RawRow
	for rows.Next() {
		row, err := scanRaw(rows, len(cols))
		if err != nil {
			return nil, nil, err
		}
		out = append(out, row)
	}
	return out, cols, rows.Err()
}

// Iter executes then returns a RowIter that yields raw rows lazily, one per
// Next call, rather than buffering the whole result set up front. batchSize
// (500 when not positive) is stored on the RowIter; it does not change how
// many rows are read from the cursor at a time.
func (qr *Query) Iter(ctx context.Context, params any, batchSize int, opts ...QueryOption) (*RowIter, error) {
	rows, err := qr.Execute(ctx, params, opts...)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	if batchSize <= 0 {
		batchSize = 500
	}
	return &RowIter{rows: rows, cols: cols, batchSize: batchSize}, nil
}

// One executes then fetches a single row, or nil if the result is empty
// (or, with Raising(true), a UsageError instead of a nil row).
func (qr *Query) One(ctx context.Context, params any, opts ...QueryOption) (RawRow, []string, error) {
	o := resolveOptions(opts)
	it, err := qr.Iter(ctx, params, 1, opts...)
	if err != nil {
		return nil, nil, err
	}
	defer it.Close()
	if !it.Next() {
		if err := it.Err(); err != nil {
			return nil, it.Columns(), err
		}
		if o.raising {
			return nil, it.Columns(), &UsageError{Msg: "One: result set is empty"}
		}
		return nil, it.Columns(), nil
	}
	return it.Row(), it.Columns(), nil
}

// Scalar fetches one row and returns its first column, or nil if the
// result is empty.
func (qr *Query) Scalar(ctx context.Context, params any, opts ...QueryOption) (any, error) {
	row, _, err := qr.One(ctx, params, opts...)
	if err != nil {
		return nil, err
	}
	if row == nil {
		return nil, nil
	}
	return row[0], nil
}

func scanRaw(rows *sql.Rows, n int) (RawRow, error) {
	row := make(RawRow, n)
	ptrs := make([]any, n)
	for i := range row {
		ptrs[i] = &row[i]
	}
	if err := rows.Scan(ptrs...); err != nil {
		return nil, err
	}
	return row, nil
}
