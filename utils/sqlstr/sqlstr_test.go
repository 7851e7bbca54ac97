package sqlstr

import "testing"

func TestClean(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"select  1  from  t -- trailing comment", "select 1 from t"},
		{"select /* inline */ 1 from t", "select 1 from t"},
	}
	for _, c := range cases {
		if got := Clean(c.in); got != c.want {
			t.Errorf("Clean(%q) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestObscure(t *testing.T) {
	got := Obscure("select * from users where name = 'bob' and age = 42")
	if got == "select * from users where name = 'bob' and age = 42" {
		t.Fatal("expected literals to be replaced")
	}
}

func TestTableNames(t *testing.T) {
	cases := []struct {
		query string
		want  []string
	}{
		{"select * from users", []string{"users"}},
		{"select * from users join statuses on statuses.user_id = users.id", []string{"users", "statuses"}},
		{"update users set name = 'x' where id = 1", []string{"users"}},
		{"delete from users where id = 1", []string{"users"}},
	}
	for _, c := range cases {
		got := TableNames(c.query)
		if len(got) != len(c.want) {
			t.Fatalf("TableNames(%q) = %v, want %v", c.query, got, c.want)
		}
		for i := range got {
			if got[i] != c.want[i] {
				t.Fatalf("TableNames(%q) = %v, want %v", c.query, got, c.want)
			}
		}
	}
}
