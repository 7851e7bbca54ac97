package postgres

import (
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/oarkflow/relsql"
)

// Open - "host=localhost user=postgres password=postgres dbname=sujit sslmode=disable"
func Open(dsn string) (*relsql.DB, error) {
	return relsql.Connect("pgx", dsn, relsql.Config{Driver: "postgres"})
}

func MustOpen(dsn string) *relsql.DB {
	db, err := Open(dsn)
	if err != nil {
		panic(err)
	}
	return db
}
