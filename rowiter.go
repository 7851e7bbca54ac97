package relsql

import "database/sql"

// RowIter lazily pulls raw rows from an open cursor. batchSize is recorded
// but not read: Next always reads exactly one row from the sql.Rows, and any
// read-ahead is left to the driver's own buffering.
type RowIter struct {
	rows      *sql.Rows
	cols      []string
	batchSize int
	current   RawRow
	err       error
	closed    bool
}

// Columns returns the result's column names.
func (it *RowIter) Columns() []string { return it.cols }

// Next advances to the next row, returning false at end of stream or on
// error (check Err to distinguish).
func (it *RowIter) Next() bool {
	if it.closed || it.err != nil {
		return false
	}
	if !it.rows.Next() {
		it.err = it.rows.Err()
		it.Close()
		return false
	}
	row, err := scanRaw(it.rows, len(it.cols))
	if err != nil {
		it.err = err
		it.Close()
		return false
	}
	it.current = row
	return true
}

// Row returns the row Next just advanced to.
func (it *RowIter) Row() RawRow { return it.current }

// Err returns the first error Next encountered, if any.
func (it *RowIter) Err() error { return it.err }

// Close releases the cursor. Safe to call multiple times.
func (it *RowIter) Close() error {
	if it.closed {
		return nil
	}
	it.closed = true
	return it.rows.Close()
}
