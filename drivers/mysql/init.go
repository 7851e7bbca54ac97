package mysql

import (
	_ "github.com/go-sql-driver/mysql"

	"github.com/oarkflow/relsql"
)

// Open
/*
root:T#sT1234@tcp(localhost:3306)/datav
*/
func Open(dsn string) (*relsql.DB, error) {
	return relsql.Connect("mysql", dsn, relsql.Config{Driver: "mysql"})
}

func MustOpen(dsn string) *relsql.DB {
	db, err := Open(dsn)
	if err != nil {
		panic(err)
	}
	return db
}
