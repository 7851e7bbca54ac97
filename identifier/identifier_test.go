package identifier

import "testing"

func TestQuoteSegmentDoublesEmbeddedQuote(t *testing.T) {
	q, err := NewQuoter('"')
	if err != nil {
		t.Fatal(err)
	}
	got := q.QuoteSegment(`weird"name`)
	want := `"weird""name"`
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestQuotePathDotJoins(t *testing.T) {
	q, err := NewQuoter('`')
	if err != nil {
		t.Fatal(err)
	}
	got := q.QuotePath("schema", "table")
	want := Safe("`schema`.`table`")
	if got != want {
		t.Fatalf("got %q, want %q", got, want)
	}
}

func TestQuoteSplitsOnDot(t *testing.T) {
	q, _ := NewQuoter('"')
	got := q.Quote("public.users")
	if got != `"public"."users"` {
		t.Fatalf("got %q", got)
	}
}

func TestNewQuoterRejectsUnsupportedChar(t *testing.T) {
	if _, err := NewQuoter('$'); err == nil {
		t.Fatal("expected error for unsupported quote char")
	}
}

func TestQuoteSegmentBracketPair(t *testing.T) {
	q, err := NewQuoter('[')
	if err != nil {
		t.Fatal(err)
	}
	got := q.QuoteSegment("users")
	if got != "[users]" {
		t.Fatalf("got %q", got)
	}
	got = q.QuoteSegment("weird]name")
	if got != "[weird]]name]" {
		t.Fatalf("got %q", got)
	}
}

func TestQuotePathBracketPair(t *testing.T) {
	q, _ := NewQuoter('[')
	got := q.QuotePath("dbo", "users")
	if got != Safe("[dbo].[users]") {
		t.Fatalf("got %q", got)
	}
}
