package relsql

import (
	"context"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/oarkflow/relsql/mapping"
)

type testTask struct {
	ID       int
	Name     string
	Statuses []*testStatus
}

type testStatus struct {
	ID    int
	Title string
}

func newTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Connect("sqlite", ":memory:", Config{Driver: "sqlite"})
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { db.Close() })

	ctx := context.Background()
	ddl := []string{
		`CREATE TABLE tasks (id INTEGER PRIMARY KEY, name TEXT)`,
		`CREATE TABLE statuses (id INTEGER PRIMARY KEY, task_id INTEGER, title TEXT)`,
	}
	for _, stmt := range ddl {
		res, err := db.Query(SQL(stmt)).Execute(ctx, nil)
		if err != nil {
			t.Fatal(err)
		}
		res.Close()
	}
	rows := []struct {
		task   [2]any
		status [3]any
	}{
		{task: [2]any{1, "First"}, status: [3]any{1, 1, "CREATED"}},
		{task: [2]any{1, "First"}, status: [3]any{4, 1, "STARTED"}},
		{task: [2]any{1, "First"}, status: [3]any{5, 1, "FINISHED"}},
		{task: [2]any{2, "Second"}, status: [3]any{2, 2, "CREATED"}},
		{task: [2]any{3, "Third"}, status: [3]any{3, 3, "CREATED"}},
	}
	inserted := map[int]bool{}
	for _, r := range rows {
		id := r.task[0].(int)
		if !inserted[id] {
			res, err := db.Query(SQL(`INSERT INTO tasks (id, name) VALUES (?, ?)`)).Execute(ctx, []any{r.task[0], r.task[1]})
			if err != nil {
				t.Fatal(err)
			}
			res.Close()
			inserted[id] = true
		}
		res, err := db.Query(SQL(`INSERT INTO statuses (id, task_id, title) VALUES (?, ?, ?)`)).Execute(ctx, []any{r.status[0], r.status[1], r.status[2]})
		if err != nil {
			t.Fatal(err)
		}
		res.Close()
	}
	return db
}

func TestScalarRenderedLiteral(t *testing.T) {
	db := newTestDB(t)
	v, err := db.Query(Template(`SELECT 'rendered'`)).Scalar(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if v != "rendered" {
		t.Fatalf("got %v", v)
	}
}

func TestNamedBindAgainstRealDB(t *testing.T) {
	db := newTestDB(t)
	rows, _, err := db.Query(Template(`SELECT name FROM tasks WHERE name = {{ name }}`)).
		All(context.Background(), map[string]any{"name": "Second"})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 1 || rows[0][0] != "Second" {
		t.Fatalf("got %v", rows)
	}
}

func TestInclauseAgainstRealDB(t *testing.T) {
	db := newTestDB(t)
	rows, _, err := db.Query(Template(`SELECT id FROM tasks WHERE id IN {{ ids | inclause }} ORDER BY id`)).
		All(context.Background(), map[string]any{"ids": []any{1, 3}})
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 2 || rows[0][0] != int64(1) || rows[1][0] != int64(3) {
		t.Fatalf("got %v", rows)
	}
}

func TestJoinHydrationAgainstRealDB(t *testing.T) {
	db := newTestDB(t)
	task := mapping.NewSpec(testTask{})
	status := mapping.NewSpec(testStatus{})
	result := mapping.Unary(task)
	rel := mapping.Relationship{Kind: mapping.OneToMany, Left: task, Field: "Statuses", Right: status}

	q := db.Query(Template(`
		SELECT t.id AS task__id, t.name AS task__name, s.id AS status__id, s.title AS status__title
		FROM tasks t JOIN statuses s ON s.task_id = t.id
		ORDER BY t.id, s.id
	`)).ReturnAs(result, rel)

	got, err := q.All(context.Background(), nil)
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(got))
	}
	first := got[0].(*testTask)
	if len(first.Statuses) != 3 || first.Statuses[0].ID != 1 || first.Statuses[2].ID != 5 {
		t.Fatalf("unexpected statuses for first task: %+v", first.Statuses)
	}
}

func TestTransactionRollsBackOnError(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTransaction(ctx, func(tx *Tx) error {
		if _, err := tx.Query(SQL(`INSERT INTO tasks (id, name) VALUES (?, ?)`)).Execute(ctx, []any{99, "Temp"}); err != nil {
			return err
		}
		return &UsageError{Msg: "forced rollback"}
	})
	if err == nil {
		t.Fatal("expected an error")
	}

	v, err := db.Query(SQL(`SELECT COUNT(*) FROM tasks WHERE id = ?`)).Scalar(ctx, []any{99})
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(0) {
		t.Fatalf("expected the insert to be rolled back, got count %v", v)
	}
}

func TestTransactionCommitsOnSuccess(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	err := db.WithTransaction(ctx, func(tx *Tx) error {
		_, err := tx.Query(SQL(`INSERT INTO tasks (id, name) VALUES (?, ?)`)).Execute(ctx, []any{100, "Committed"})
		return err
	})
	if err != nil {
		t.Fatal(err)
	}

	v, err := db.Query(SQL(`SELECT COUNT(*) FROM tasks WHERE id = ?`)).Scalar(ctx, []any{100})
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(1) {
		t.Fatalf("expected the insert to survive commit, got count %v", v)
	}
}

func TestOneRaisesOnEmptyWhenRequested(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	_, _, err := db.Query(SQL(`SELECT id FROM tasks WHERE id = ?`)).One(ctx, []any{999}, Raising(true))
	if err == nil {
		t.Fatal("expected a UsageError")
	}
	if _, ok := err.(*UsageError); !ok {
		t.Fatalf("expected *UsageError, got %T: %v", err, err)
	}

	row, _, err := db.Query(SQL(`SELECT id FROM tasks WHERE id = ?`)).One(ctx, []any{999})
	if err != nil {
		t.Fatal(err)
	}
	if row != nil {
		t.Fatalf("expected a nil row without Raising, got %v", row)
	}
}

func TestExecuteWithConnUsesSuppliedConnection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	conn, err := db.Conn(ctx)
	if err != nil {
		t.Fatal(err)
	}
	defer conn.Close()

	v, err := db.Query(SQL(`SELECT COUNT(*) FROM tasks`)).Scalar(ctx, nil, WithConn(conn.raw))
	if err != nil {
		t.Fatal(err)
	}
	if v != int64(3) {
		t.Fatalf("got %v", v)
	}
}

func TestScopeNestingReusesConnection(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	ctx1, release1, err := WithScope(ctx, db)
	if err != nil {
		t.Fatal(err)
	}
	defer release1()

	outer, _ := ScopedQueryer(ctx1)

	ctx2, release2, err := WithScope(ctx1, db)
	if err != nil {
		t.Fatal(err)
	}
	defer release2()

	inner, _ := ScopedQueryer(ctx2)
	if outer != inner {
		t.Fatal("expected a nested scope entry to reuse the outer connection")
	}
}
