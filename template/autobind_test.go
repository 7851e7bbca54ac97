package template

import "testing"

func TestAutoBindWrapsBareExpression(t *testing.T) {
	got := autoBind(`SELECT * FROM t WHERE name = {{ name }}`)
	want := `SELECT * FROM t WHERE name = {{ (name) | bind("name") }}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAutoBindLeavesExplicitBindAlone(t *testing.T) {
	src := `SELECT {{ name | bind("n") }}`
	if got := autoBind(src); got != src {
		t.Fatalf("got %q, want unchanged %q", got, src)
	}
}

func TestAutoBindLeavesInclauseAlone(t *testing.T) {
	src := `SELECT * FROM t WHERE id IN {{ ids | inclause }}`
	if got := autoBind(src); got != src {
		t.Fatalf("got %q, want unchanged %q", got, src)
	}
}

func TestAutoBindFallsBackToSyntheticName(t *testing.T) {
	got := autoBind(`SELECT {{ 1 + 2 }}`)
	want := `SELECT {{ (1 + 2) | bind("bind#0") }}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestAutoBindMultipleExpressions(t *testing.T) {
	got := autoBind(`SELECT {{ x }}, {{ y }}`)
	want := `SELECT {{ (x) | bind("x") }}, {{ (y) | bind("y") }}`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}
