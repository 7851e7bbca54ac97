package mapping

import (
	"fmt"
	"strings"
)

// Compile pre-processes a result shape, its relationships, and the column
// list a query actually returned into a Plan, per the mapping compiler's
// four-step pre-processing pass. Compile is normally not called directly by
// application code — call the process-wide Cache instead, which memoizes
// Plans by structural (result, relationships, columns) equality so that
// repeated executions of the same query reuse the same compiled routine.
func Compile(result Result, relationships []Relationship, columns []string) (*Plan, error) {
	specs, order, err := collectSpecs(result, relationships)
	if err != nil {
		return nil, err
	}

	colsByShape := make([]map[string]int, len(specs))
	for i := range colsByShape {
		colsByShape[i] = map[string]int{}
	}
	for col, name := range columns {
		shapeName, field, ok := splitColumn(name)
		if !ok {
			continue
		}
		idx, ok := order[strings.ToLower(shapeName)]
		if !ok {
			continue
		}
		colsByShape[idx][strings.ToLower(field)] = col
	}

	for i, spec := range specs {
		for _, idField := range spec.IDFields() {
			if _, ok := colsByShape[i][strings.ToLower(idField)]; !ok {
				return nil, &SpecError{Msg: fmt.Sprintf(
					"shape %q: id field %q has no mapped column among %v", spec.Name(), idField, columns,
				)}
			}
		}
	}

	topoOrder, err := topoSort(specs, order, relationships)
	if err != nil {
		return nil, err
	}

	shapes := make([]shapePlan, len(specs))
	newIndex := make([]int, len(specs)) // old index -> position in topoOrder
	for pos, oldIdx := range topoOrder {
		newIndex[oldIdx] = pos
	}

	for oldIdx, spec := range specs {
		pos := newIndex[oldIdx]
		cols := colsByShape[oldIdx]
		sp := shapePlan{spec: spec}
		for _, idField := range spec.IDFields() {
			sp.idCols = append(sp.idCols, cols[strings.ToLower(idField)])
		}
		idSet := map[string]bool{}
		for _, f := range spec.IDFields() {
			idSet[strings.ToLower(f)] = true
		}
		for field, col := range cols {
			if idSet[field] {
				continue
			}
			sp.fields = append(sp.fields, fieldPlan{field: field, col: col})
		}
		shapes[pos] = sp
	}

	for _, rel := range relationships {
		leftPos := newIndex[order[strings.ToLower(rel.Left.Name())]]
		rightPos := newIndex[order[strings.ToLower(rel.Right.Name())]]
		if leftPos >= rightPos {
			return nil, &SpecError{Msg: fmt.Sprintf(
				"relationship %s->%s.%s violates hydration order: left must be resolved before right",
				rel.Left.Name(), rel.Right.Name(), rel.Field,
			)}
		}
		shapes[rightPos].attaches = append(shapes[rightPos].attaches, attachPlan{
			kind:      rel.Kind,
			field:     rel.Field,
			right:     rightPos,
			leftShape: leftPos,
		})
	}

	root := -1
	if result.IsUnary() {
		rootSpecIdx := order[strings.ToLower(result.Specs()[0].Name())]
		root = newIndex[rootSpecIdx]
		if !isSourceInGraph(specs, relationships, order, rootSpecIdx) {
			// declared root must actually be a graph source (in-degree zero)
			return nil, &SpecError{Msg: fmt.Sprintf(
				"declared result shape %q is not a root of the relationship graph", result.Specs()[0].Name(),
			)}
		}
		sources := 0
		for i := range specs {
			if isSourceInGraph(specs, relationships, order, i) {
				sources++
			}
		}
		if sources != 1 {
			return nil, &SpecError{Msg: fmt.Sprintf(
				"unary result needs a unique root, but the relationship graph has %d in-degree-zero shapes", sources,
			)}
		}
	}

	return &Plan{result: result, shapes: shapes, root: root}, nil
}

// collectSpecs gathers every Spec appearing in result (in declaration order)
// followed by every Spec referenced by a relationship's left or right that
// was not already present, per pre-processing step 1. It returns the
// deduplicated specs and a name->index lookup (keyed by lowercase shape
// name).
func collectSpecs(result Result, relationships []Relationship) ([]*Spec, map[string]int, error) {
	var specs []*Spec
	order := map[string]int{}
	add := func(s *Spec) error {
		key := strings.ToLower(s.Name())
		if existingIdx, ok := order[key]; ok {
			if !specs[existingIdx].Equal(s) {
				return &SpecError{Msg: fmt.Sprintf(
					"shape name %q declared with two different mapper specs", s.Name(),
				)}
			}
			return nil
		}
		order[key] = len(specs)
		specs = append(specs, s)
		return nil
	}
	for _, s := range result.Specs() {
		if err := add(s); err != nil {
			return nil, nil, err
		}
	}
	for _, rel := range relationships {
		if rel.Left == nil || rel.Right == nil {
			return nil, nil, &SpecError{Msg: "relationship declared with a nil left or right shape"}
		}
		if err := add(rel.Left); err != nil {
			return nil, nil, err
		}
		if err := add(rel.Right); err != nil {
			return nil, nil, err
		}
	}
	return specs, order, nil
}

// splitColumn implements the ColumnRef protocol: split on the first "__".
func splitColumn(name string) (shape, field string, ok bool) {
	idx := strings.Index(name, "__")
	if idx < 0 {
		return "", "", false
	}
	return name[:idx], name[idx+2:], true
}

// topoSort orders specs so that for every relationship, left precedes
// right, breaking ties by first-seen (declaration) order, via Kahn's
// algorithm — the same technique find_root_in_dag uses to detect a unique
// in-degree-zero node, generalized here to a full stable ordering.
func topoSort(specs []*Spec, order map[string]int, relationships []Relationship) ([]int, error) {
	n := len(specs)
	adj := make([][]int, n)
	indeg := make([]int, n)
	seenEdge := map[[2]int]bool{}
	for _, rel := range relationships {
		l := order[strings.ToLower(rel.Left.Name())]
		r := order[strings.ToLower(rel.Right.Name())]
		if l == r {
			return nil, &SpecError{Msg: fmt.Sprintf("relationship on shape %q cannot reference itself as both left and right", rel.Left.Name())}
		}
		if seenEdge[[2]int{l, r}] {
			continue
		}
		seenEdge[[2]int{l, r}] = true
		adj[l] = append(adj[l], r)
		indeg[r]++
	}

	ready := make([]bool, n)
	var queue []int
	for i := 0; i < n; i++ {
		if indeg[i] == 0 {
			queue = append(queue, i)
			ready[i] = true
		}
	}
	var result []int
	for len(queue) > 0 {
		// stable: always take the lowest-declared-index ready node
		minPos := 0
		for i, idx := range queue {
			if idx < queue[minPos] {
				minPos = i
			}
		}
		cur := queue[minPos]
		queue = append(queue[:minPos], queue[minPos+1:]...)
		result = append(result, cur)
		for _, next := range adj[cur] {
			indeg[next]--
			if indeg[next] == 0 {
				queue = append(queue, next)
				ready[next] = true
			}
		}
	}
	if len(result) != n {
		return nil, &SpecError{Msg: "relationship graph contains a cycle; hydration order cannot be determined"}
	}
	return result, nil
}

// isSourceInGraph reports whether specIdx has in-degree zero across all
// relationships, i.e. nothing attaches to it as a right — the definition of
// a DAG root used by find_root_in_dag.
func isSourceInGraph(specs []*Spec, relationships []Relationship, order map[string]int, specIdx int) bool {
	for _, rel := range relationships {
		if order[strings.ToLower(rel.Right.Name())] == specIdx {
			return false
		}
	}
	return true
}
