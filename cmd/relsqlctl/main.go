// Command relsqlctl renders a SQL fragment against a live connection and
// pretty-prints the resulting rows, a small driving harness for the
// template/render/query orchestrator layers.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/oarkflow/relsql"
	_ "github.com/oarkflow/relsql/drivers/mssql"
	_ "github.com/oarkflow/relsql/drivers/mysql"
	_ "github.com/oarkflow/relsql/drivers/postgres"
	_ "github.com/oarkflow/relsql/drivers/sqlite"
)

type paramFlags map[string]any

func (p paramFlags) String() string { return "" }

func (p paramFlags) Set(value string) error {
	name, val, ok := strings.Cut(value, "=")
	if !ok {
		return fmt.Errorf("-param wants name=value, got %q", value)
	}
	p[name] = val
	return nil
}

func main() {
	driver := flag.String("driver", "sqlite", "database/sql driver name (sqlite, postgres, mysql, mssql)")
	dsn := flag.String("dsn", ":memory:", "data source name")
	query := flag.String("query", "", "inline SQL or template text to render and run")
	file := flag.String("file", "", "path to a .sql/.sql.tmpl fragment instead of -query")
	params := make(paramFlags)
	flag.Var(params, "param", "name=value, repeatable, bound into the template's variables")
	flag.Parse()

	if *query == "" && *file == "" {
		fmt.Fprintln(os.Stderr, "relsqlctl: one of -query or -file is required")
		os.Exit(2)
	}

	sqlDriver := *driver
	if sqlDriver == "postgres" {
		sqlDriver = "pgx" // the name the pgx stdlib driver registers under
	}
	db, err := relsql.Connect(sqlDriver, *dsn, relsql.Config{Driver: *driver})
	if err != nil {
		fmt.Fprintln(os.Stderr, "relsqlctl: connect:", err)
		os.Exit(1)
	}
	defer db.Close()

	var fragment relsql.Fragment
	if *file != "" {
		fragment = relsql.File(*file)
	} else {
		fragment = relsql.Template(*query)
	}

	var bound any
	if len(params) > 0 {
		bound = map[string]any(params)
	}

	rows, cols, err := db.Query(fragment).All(context.Background(), bound)
	if err != nil {
		fmt.Fprintln(os.Stderr, "relsqlctl: query:", err)
		os.Exit(1)
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleLight)

	header := make(table.Row, len(cols))
	for i, c := range cols {
		header[i] = c
	}
	t.AppendHeader(header)
	for _, row := range rows {
		r := make(table.Row, len(row))
		for i, v := range row {
			r[i] = v
		}
		t.AppendRow(r)
	}
	t.Render()
	fmt.Fprintf(os.Stderr, "%d row(s)\n", len(rows))
}
