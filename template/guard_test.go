package template

import "testing"

func TestGuardScanDetectsTautology(t *testing.T) {
	g := NewGuard()
	hits := g.Scan("id = 1 OR 1=1")
	if len(hits) == 0 {
		t.Fatal("expected a hit for boolean tautology")
	}
}

func TestGuardScanDetectsUnionSelect(t *testing.T) {
	g := NewGuard()
	hits := g.Scan("SELECT * FROM t UNION SELECT password FROM users")
	found := false
	for _, h := range hits {
		if h == "union_select" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected union_select hit, got %v", hits)
	}
}

func TestGuardScanCleanFragment(t *testing.T) {
	g := NewGuard()
	if hits := g.Scan("status.title"); hits != nil {
		t.Fatalf("expected no hits, got %v", hits)
	}
}
