package mapping

// fieldPlan records where one target field's value comes from in the row.
type fieldPlan struct {
	field string // struct field name or map key, matching the ColumnRef <field>
	col   int    // index into the row's column slice
}

// attachPlan records one relationship to enact once both sides of a row are
// resolved: attach the right shape's current-row instance onto the left
// shape's current-row instance.
type attachPlan struct {
	kind      RelationshipKind
	field     string
	right     int // index into Plan.shapes of the right-hand shape (this shape)
	leftShape int // index into Plan.shapes of the left-hand shape to attach onto
}

// shapePlan is the compiled, precomputed hydration plan for one MapperSpec:
// which columns feed its identity tuple and its remaining fields, and which
// relationships attach it, as the right-hand child, onto a parent once it is
// resolved for a row.
type shapePlan struct {
	spec     *Spec
	idCols   []int       // column indices for each id field, in id-field order
	fields   []fieldPlan // non-id fields to assign
	attaches []attachPlan
}

// Plan is the precomputed output of Compile: a plan of column indices and
// per-shape assignment/attachment actions, used by the Hydrator to turn a
// row stream into objects without any per-row reflection-based dispatch
// beyond the field writes a Spec's Accessor requires.
type Plan struct {
	result Result
	shapes []shapePlan // in a topological order: every left precedes its right
	root   int         // index into shapes of the unique in-degree-zero shape, which is the declared shape of a unary result; -1 if result is n-ary
}

// Result returns the declared result shape this plan hydrates.
func (p *Plan) Result() Result { return p.result }
