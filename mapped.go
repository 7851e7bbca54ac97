package relsql

import (
	"context"
	"database/sql"

	"github.com/oarkflow/relsql/mapping"
)

// MappedQuery is the result of Query.ReturnAs: a query whose All/Iter/One
// route the row stream through a compiled hydrator instead of returning
// raw rows.
type MappedQuery struct {
	query         *Query
	result        mapping.Result
	relationships []mapping.Relationship
}

func (mq *MappedQuery) plan(columns []string) (*mapping.Plan, error) {
	return mq.query.db.plans.GetOrCompile(mq.result, mq.relationships, columns)
}

// All executes then hydrates every row, returning one object per unary
// streaming root, or one []any tuple per row for an n-ary result (with
// possibly-repeated left objects; tuples are never deduplicated).
func (mq *MappedQuery) All(ctx context.Context, params any) ([]any, error) {
	rows, err := mq.query.Execute(ctx, params)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	plan, err := mq.plan(cols)
	if err != nil {
		return nil, err
	}
	h := mapping.NewHydrator(plan)

	var out []any
	if plan.Result().IsUnary() {
		for rows.Next() {
			row, err := scanRaw(rows, len(cols))
			if err != nil {
				return nil, err
			}
			if err := h.Feed([]any(row)); err != nil {
				return nil, err
			}
			out = append(out, h.Emit()...)
		}
		if err := rows.Err(); err != nil {
			return nil, err
		}
		out = append(out, h.Finish()...)
		return out, nil
	}

	for rows.Next() {
		row, err := scanRaw(rows, len(cols))
		if err != nil {
			return nil, err
		}
		tuple, err := h.HydrateTuple([]any(row))
		if err != nil {
			return nil, err
		}
		out = append(out, tuple)
	}
	return out, rows.Err()
}

// One hydrates and returns the first object the stream produces, or nil if
// the result is empty.
func (mq *MappedQuery) One(ctx context.Context, params any) (any, error) {
	all, err := mq.All(ctx, params)
	if err != nil {
		return nil, err
	}
	if len(all) == 0 {
		return nil, nil
	}
	return all[0], nil
}

// Iter executes then returns a MappedIter that hydrates and yields objects
// lazily as rows are pulled from the cursor, per the streaming-unary-root
// guarantee: the i-th root is yielded before any row whose root identity
// differs from the i-th and (i+1)-th is read.
func (mq *MappedQuery) Iter(ctx context.Context, params any) (*MappedIter, error) {
	rows, err := mq.query.Execute(ctx, params)
	if err != nil {
		return nil, err
	}
	cols, err := rows.Columns()
	if err != nil {
		rows.Close()
		return nil, err
	}
	plan, err := mq.plan(cols)
	if err != nil {
		rows.Close()
		return nil, err
	}
	return &MappedIter{rows: rows, cols: cols, plan: plan, hydrator: mapping.NewHydrator(plan)}, nil
}

// MappedIter pulls rows from the cursor only as far as needed to produce
// the next hydrated object, closing the cursor and flushing the trailing
// root once the stream is exhausted.
type MappedIter struct {
	rows     *sql.Rows
	cols     []string
	plan     *mapping.Plan
	hydrator *mapping.Hydrator
	pending  []any
	current  any
	err      error
	closed   bool
}

// Next advances to the next hydrated object.
func (it *MappedIter) Next() bool {
	if it.err != nil {
		return false
	}
	for {
		if len(it.pending) > 0 {
			it.current, it.pending = it.pending[0], it.pending[1:]
			return true
		}
		if it.closed {
			return false
		}
		if !it.rows.Next() {
			if it.err = it.rows.Err(); it.err != nil {
				it.Close()
				return false
			}
			it.pending = it.hydrator.Finish()
			it.Close()
			if len(it.pending) == 0 {
				return false
			}
			continue
		}
		row, err := scanRaw(it.rows, len(it.cols))
		if err != nil {
			it.err = err
			it.Close()
			return false
		}
		if it.plan.Result().IsUnary() {
			if err := it.hydrator.Feed([]any(row)); err != nil {
				it.err = err
				it.Close()
				return false
			}
			it.pending = it.hydrator.Emit()
			continue
		}
		tuple, err := it.hydrator.HydrateTuple([]any(row))
		if err != nil {
			it.err = err
			it.Close()
			return false
		}
		it.pending = []any{tuple}
	}
}

// Value returns the object Next just advanced to.
func (it *MappedIter) Value() any { return it.current }

// Err returns the first error Next encountered, if any.
func (it *MappedIter) Err() error { return it.err }

// Close releases the underlying cursor. Safe to call multiple times.
func (it *MappedIter) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.rows.Close()
}
