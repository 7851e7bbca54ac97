package mapping

import "testing"

type Task struct {
	ID       int
	Name     string
	Statuses []*Status
}

type Status struct {
	ID    int
	Title string
}

type Obj struct {
	A, B, C int
	Nesteds []*Nested
}

type Nested struct {
	D int
}

func taskSpec() *Spec   { return NewSpec(Task{}) }
func statusSpec() *Spec { return NewSpec(Status{}) }

// TestJoinHydrationStreaming exercises the join-hydration scenario: a
// unary Task root with a ONE_TO_MANY(statuses) relationship to Status.
func TestJoinHydrationStreaming(t *testing.T) {
	task, status := taskSpec(), statusSpec()
	result := Unary(task)
	rels := []Relationship{{Kind: OneToMany, Left: task, Field: "Statuses", Right: status}}
	columns := []string{"task__id", "task__name", "status__id", "status__title"}

	plan, err := Compile(result, rels, columns)
	if err != nil {
		t.Fatal(err)
	}

	rows := [][]any{
		{1, "First", 1, "CREATED"},
		{1, "First", 4, "STARTED"},
		{1, "First", 5, "FINISHED"},
		{2, "Second", 2, "CREATED"},
		{3, "Third", 3, "CREATED"},
	}

	h := NewHydrator(plan)
	var emitted []*Task
	for _, row := range rows {
		if err := h.Feed(row); err != nil {
			t.Fatal(err)
		}
		for _, obj := range h.Emit() {
			emitted = append(emitted, obj.(*Task))
		}
	}
	for _, obj := range h.Finish() {
		emitted = append(emitted, obj.(*Task))
	}

	if len(emitted) != 3 {
		t.Fatalf("expected 3 tasks, got %d", len(emitted))
	}
	checkIDs := func(task *Task, want []int) {
		t.Helper()
		if len(task.Statuses) != len(want) {
			t.Fatalf("task %d: expected %d statuses, got %d", task.ID, len(want), len(task.Statuses))
		}
		for i, s := range task.Statuses {
			if s.ID != want[i] {
				t.Fatalf("task %d: status[%d] = %d, want %d", task.ID, i, s.ID, want[i])
			}
		}
	}
	checkIDs(emitted[0], []int{1, 4, 5})
	checkIDs(emitted[1], []int{2})
	checkIDs(emitted[2], []int{3})
}

// TestNAryTupleNoDedup exercises the tuple(Task, Status) scenario: five
// tuples in row order, Task identity-shared across rows 1-3, Status
// distinct per id, with no cross-row deduplication of the tuple stream
// itself.
func TestNAryTupleNoDedup(t *testing.T) {
	task, status := taskSpec(), statusSpec()
	result := Tuple(task, status)
	columns := []string{"task__id", "task__name", "status__id", "status__title"}

	plan, err := Compile(result, nil, columns)
	if err != nil {
		t.Fatal(err)
	}

	rows := [][]any{
		{1, "First", 1, "CREATED"},
		{1, "First", 4, "STARTED"},
		{1, "First", 5, "FINISHED"},
		{2, "Second", 2, "CREATED"},
		{3, "Third", 3, "CREATED"},
	}

	h := NewHydrator(plan)
	var tuples [][]any
	for _, row := range rows {
		tup, err := h.HydrateTuple(row)
		if err != nil {
			t.Fatal(err)
		}
		tuples = append(tuples, tup)
	}

	if len(tuples) != 5 {
		t.Fatalf("expected 5 tuples, got %d", len(tuples))
	}
	t1 := tuples[0][0].(*Task)
	if tuples[1][0].(*Task) != t1 || tuples[2][0].(*Task) != t1 {
		t.Fatal("expected rows 1-3 to share the same Task identity")
	}
	if tuples[3][0].(*Task) == t1 {
		t.Fatal("expected row 4's Task to be a distinct identity")
	}
	wantStatusIDs := []int{1, 4, 5, 2, 3}
	for i, tup := range tuples {
		if got := tup[1].(*Status).ID; got != wantStatusIDs[i] {
			t.Fatalf("tuple %d: status id = %d, want %d", i, got, wantStatusIDs[i])
		}
	}
}

// TestCompositeKeyIdentity exercises composite id fields: Obj keyed by
// (a, b), with a nested ONE_TO_MANY relationship whose child's id field is
// overridden to "d".
func TestCompositeKeyIdentity(t *testing.T) {
	obj := NewSpec(Obj{}, WithID("a", "b"))
	nested := NewSpec(Nested{}, WithID("d"))
	result := Unary(obj)
	rels := []Relationship{{Kind: OneToMany, Left: obj, Field: "Nesteds", Right: nested}}
	columns := []string{"obj__a", "obj__b", "obj__c", "nested__d"}

	plan, err := Compile(result, rels, columns)
	if err != nil {
		t.Fatal(err)
	}

	rows := [][]any{
		{1, 1, 1, 1},
		{1, 1, 2, 2},
		{1, 2, 3, 3},
		{1, 3, 4, 4},
	}

	h := NewHydrator(plan)
	var emitted []*Obj
	for _, row := range rows {
		if err := h.Feed(row); err != nil {
			t.Fatal(err)
		}
		for _, o := range h.Emit() {
			emitted = append(emitted, o.(*Obj))
		}
	}
	for _, o := range h.Finish() {
		emitted = append(emitted, o.(*Obj))
	}

	if len(emitted) != 3 {
		t.Fatalf("expected 3 distinct Obj identities, got %d", len(emitted))
	}
	wantAB := [][2]int{{1, 1}, {1, 2}, {1, 3}}
	for i, o := range emitted {
		if o.A != wantAB[i][0] || o.B != wantAB[i][1] {
			t.Fatalf("obj[%d] = (%d,%d), want (%d,%d)", i, o.A, o.B, wantAB[i][0], wantAB[i][1])
		}
	}
	if len(emitted[0].Nesteds) != 2 {
		t.Fatalf("expected obj(1,1) to have 2 nested children, got %d", len(emitted[0].Nesteds))
	}
}

func TestCompileMissingIDColumnFails(t *testing.T) {
	task := taskSpec()
	_, err := Compile(Unary(task), nil, []string{"task__name"})
	if err == nil {
		t.Fatal("expected an error for a missing id column")
	}
}

func TestCompileCycleFails(t *testing.T) {
	a := NewSpec(Task{}, WithName("a"))
	b := NewSpec(Status{}, WithName("b"))
	rels := []Relationship{
		{Kind: OneToOne, Left: a, Field: "X", Right: b},
		{Kind: OneToOne, Left: b, Field: "Y", Right: a},
	}
	_, err := Compile(Tuple(a, b), rels, []string{"a__id", "b__id"})
	if err == nil {
		t.Fatal("expected an error for a cyclic relationship graph")
	}
}

func TestSpecEquality(t *testing.T) {
	s1 := NewSpec(Task{})
	s2 := NewSpec(Task{})
	if !s1.Equal(s2) {
		t.Fatal("expected structurally identical specs to be equal")
	}
	s3 := NewSpec(Task{}, WithName("custom"))
	if s1.Equal(s3) {
		t.Fatal("expected specs with different names to differ")
	}
}

func TestCacheReusesCompiledPlan(t *testing.T) {
	c := NewCache()
	task := taskSpec()
	p1, err := c.GetOrCompile(Unary(task), nil, []string{"task__id", "task__name"})
	if err != nil {
		t.Fatal(err)
	}
	p2, err := c.GetOrCompile(Unary(task), nil, []string{"task__id", "task__name"})
	if err != nil {
		t.Fatal(err)
	}
	if p1 != p2 {
		t.Fatal("expected repeated compiles of the same key to return the identical cached plan")
	}
	if c.Len() != 1 {
		t.Fatalf("expected 1 cached plan, got %d", c.Len())
	}
}
