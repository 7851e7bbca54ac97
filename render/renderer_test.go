package render

import (
	"reflect"
	"testing"

	"github.com/oarkflow/relsql/paramstyle"
)

func TestBindPositionalDialects(t *testing.T) {
	r := New(paramstyle.Qmark)
	p1, err := r.Bind("x", 1)
	if err != nil {
		t.Fatal(err)
	}
	p2, err := r.Bind("y", 2)
	if err != nil {
		t.Fatal(err)
	}
	if p1 != "?" || p2 != "?" {
		t.Fatalf("got %q, %q", p1, p2)
	}
	got := r.Params()
	want := []any{1, 2}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestBindNamedDialect(t *testing.T) {
	r := New(paramstyle.Pyformat)
	ph, err := r.Bind("name", "a")
	if err != nil {
		t.Fatal(err)
	}
	if ph != "%(name)s" {
		t.Fatalf("got %q", ph)
	}
	got := r.Params()
	want := map[string]any{"name": "a"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %#v, want %#v", got, want)
	}
}

func TestNumericAndDollarIncrement(t *testing.T) {
	r := New(paramstyle.Dollar)
	p1, _ := r.Bind("a", 1)
	p2, _ := r.Bind("b", 2)
	p3, _ := r.Bind("c", 3)
	if p1 != "$1" || p2 != "$2" || p3 != "$3" {
		t.Fatalf("got %q %q %q", p1, p2, p3)
	}

	n := New(paramstyle.Numeric)
	n1, _ := n.Bind("a", 1)
	n2, _ := n.Bind("b", 2)
	if n1 != ":1" || n2 != ":2" {
		t.Fatalf("got %q %q", n1, n2)
	}
}

func TestNextSyntheticNameIsUnique(t *testing.T) {
	r := New(paramstyle.Qmark)
	names := map[string]bool{}
	for i := 0; i < 5; i++ {
		n := r.NextSyntheticName()
		if names[n] {
			t.Fatalf("duplicate synthetic name %q", n)
		}
		names[n] = true
	}
}

func TestOrderedPairsPreservesDuplicateNames(t *testing.T) {
	r := New(paramstyle.Named)
	r.Bind("id", 1)
	r.Bind("id", 2)
	pairs := r.OrderedPairs()
	if len(pairs) != 2 {
		t.Fatalf("expected 2 pairs, got %d", len(pairs))
	}
	if pairs[0].Name != "id" || pairs[0].Value != 1 || pairs[1].Name != "id" || pairs[1].Value != 2 {
		t.Fatalf("got %#v", pairs)
	}
}
