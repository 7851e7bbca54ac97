package relsql

import "database/sql"

// Tx is an in-flight transaction, the realization of Connection with
// autocommit false.
type Tx struct {
	db  *DB
	raw *sql.Tx
}

// Query starts building a templated query against this transaction.
func (tx *Tx) Query(fragment Fragment) *Query {
	return newQuery(tx.db, tx.raw, fragment)
}

// Commit commits the transaction.
func (tx *Tx) Commit() error { return tx.raw.Commit() }

// Rollback rolls back the transaction.
func (tx *Tx) Rollback() error { return tx.raw.Rollback() }
