package sqlite

import (
	_ "modernc.org/sqlite"

	"github.com/oarkflow/relsql"
)

// Open - sqlite.db
func Open(dsn string) (*relsql.DB, error) {
	return relsql.Connect("sqlite", dsn, relsql.Config{Driver: "sqlite"})
}

func MustOpen(dsn string) *relsql.DB {
	db, err := Open(dsn)
	if err != nil {
		panic(err)
	}
	return db
}
