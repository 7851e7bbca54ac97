package mapping

import (
	"fmt"
	"reflect"
	"strings"
)

// identity is a row's id-tuple for one shape, joined into a single
// comparable key. Using a string key (rather than an array type keyed by
// field count) lets one Hydrator serve both simple and composite keys
// without per-shape generated key types.
type identity string

func identityOf(row []any, cols []int) identity {
	var b strings.Builder
	for i, c := range cols {
		if i > 0 {
			b.WriteByte('\x1f')
		}
		fmt.Fprintf(&b, "%v", row[c])
	}
	return identity(b.String())
}

// shapeState is the per-shape working memory of one hydration pass: the
// identity map. The root's streaming-emission tracker lives on Hydrator.
type shapeState struct {
	objects map[identity]reflect.Value
}

// Hydrator runs one hydration pass over a plan: Feed consumes rows in
// order, Emit drains objects that are ready to stream (unary root, on
// identity change), and Finish flushes whatever remains at end of stream.
// A Hydrator is not safe for concurrent use; callers run one Hydrator per
// in-flight query result, matching the "created on hydration start,
// destroyed on completion" lifetime of the identity maps it owns.
type Hydrator struct {
	plan     *Plan
	states   []shapeState
	lastRoot reflect.Value
	haveLast bool
	pending  []any
}

// NewHydrator starts a hydration pass for plan.
func NewHydrator(plan *Plan) *Hydrator {
	h := &Hydrator{plan: plan, states: make([]shapeState, len(plan.shapes))}
	for i := range h.states {
		h.states[i].objects = map[identity]reflect.Value{}
	}
	return h
}

// Feed processes one row, per the per-row hydration steps. Any object that
// becomes ready to stream as a result of this row (the unary root changing
// identity) is appended to the pending queue, drained by Emit.
func (h *Hydrator) Feed(row []any) error {
	resolved := make([]reflect.Value, len(h.plan.shapes))
	newlyBuilt := make([]bool, len(h.plan.shapes))

	for i := range h.plan.shapes {
		sp := &h.plan.shapes[i]
		id := identityOf(row, sp.idCols)
		state := &h.states[i]
		if existing, ok := state.objects[id]; ok {
			resolved[i] = existing
		} else {
			obj, err := construct(sp, row)
			if err != nil {
				return fmt.Errorf("mapping: shape %q: %w", sp.spec.Name(), err)
			}
			state.objects[id] = obj
			resolved[i] = obj
			newlyBuilt[i] = true
		}

		if h.plan.root == i {
			if h.haveLast && !sameValue(h.lastRoot, resolved[i]) {
				h.pending = append(h.pending, h.lastRoot.Interface())
			}
			h.lastRoot = resolved[i]
			h.haveLast = true
		}

		for _, at := range sp.attaches {
			if !newlyBuilt[i] {
				continue
			}
			if err := attach(at, resolved[at.leftShape], resolved[i]); err != nil {
				return fmt.Errorf("mapping: attaching %q.%s: %w", h.plan.shapes[at.leftShape].spec.Name(), at.field, err)
			}
		}
	}
	return nil
}

// Emit drains objects that became ready to stream since the last call.
func (h *Hydrator) Emit() []any {
	out := h.pending
	h.pending = nil
	return out
}

// Finish signals end of the row stream, returning the final object for a
// unary result if one is still pending (the last root object built, which
// streaming emission never flushed because no later row changed its
// identity).
func (h *Hydrator) Finish() []any {
	if h.plan.result.IsUnary() && h.haveLast {
		out := []any{h.lastRoot.Interface()}
		h.haveLast = false
		return out
	}
	return nil
}

// HydrateTuple builds one tuple for a non-streaming (n-ary) result from a
// single row, per the n-ary semantics: a tuple is emitted per row with
// possibly repeated left objects; no deduplication.
func (h *Hydrator) HydrateTuple(row []any) ([]any, error) {
	if err := h.Feed(row); err != nil {
		return nil, err
	}
	h.Emit() // n-ary results never stream a root; discard any pending signal
	specs := h.plan.result.Specs()
	out := make([]any, len(specs))
	for i, spec := range specs {
		for j := range h.plan.shapes {
			if h.plan.shapes[j].spec.Equal(spec) {
				// the shape's object for the just-fed row is whatever Feed
				// last resolved; re-derive identity to fetch it.
				sp := &h.plan.shapes[j]
				id := identityOf(row, sp.idCols)
				out[i] = h.states[j].objects[id].Interface()
			}
		}
	}
	return out, nil
}

func sameValue(a, b reflect.Value) bool {
	if !a.IsValid() || !b.IsValid() {
		return a.IsValid() == b.IsValid()
	}
	if a.Kind() == reflect.Ptr && b.Kind() == reflect.Ptr {
		return a.Pointer() == b.Pointer()
	}
	return a.Interface() == b.Interface()
}

// construct builds a new instance of sp's target type and populates its
// mapped fields from row, per accessor-appropriate write semantics. Id
// fields are written like any other mapped field; they are not special at
// construction time, only at identity-lookup time.
func construct(sp *shapePlan, row []any) (reflect.Value, error) {
	target := sp.spec.Target()
	switch sp.spec.Accessor() {
	case Item:
		m := reflect.MakeMap(target)
		for i, idField := range sp.spec.IDFields() {
			setMapField(m, idField, row[sp.idCols[i]])
		}
		for _, f := range sp.fields {
			setMapField(m, f.field, row[f.col])
		}
		return m, nil
	default:
		ptr := reflect.New(target)
		elem := ptr.Elem()
		for i, idField := range sp.spec.IDFields() {
			if err := setStructField(elem, idField, row[sp.idCols[i]]); err != nil {
				return reflect.Value{}, err
			}
		}
		for _, f := range sp.fields {
			if err := setStructField(elem, f.field, row[f.col]); err != nil {
				return reflect.Value{}, err
			}
		}
		return ptr, nil
	}
}

func setMapField(m reflect.Value, key string, value any) {
	keyType := m.Type().Key()
	valueType := m.Type().Elem()
	kv := reflect.ValueOf(key)
	if kv.Type() != keyType {
		kv = kv.Convert(keyType)
	}
	vv := reflect.ValueOf(value)
	if value == nil {
		vv = reflect.Zero(valueType)
	} else if vv.Type() != valueType && vv.Type().ConvertibleTo(valueType) {
		vv = vv.Convert(valueType)
	}
	m.SetMapIndex(kv, vv)
}

func setStructField(elem reflect.Value, name string, value any) error {
	f := findField(elem, name)
	if !f.IsValid() {
		return fmt.Errorf("field %q not found on %s", name, elem.Type())
	}
	if !f.CanSet() {
		return fmt.Errorf("field %q on %s is not settable", name, elem.Type())
	}
	if value == nil {
		f.Set(reflect.Zero(f.Type()))
		return nil
	}
	vv := reflect.ValueOf(value)
	if vv.Type() == f.Type() {
		f.Set(vv)
		return nil
	}
	if vv.Type().ConvertibleTo(f.Type()) {
		f.Set(vv.Convert(f.Type()))
		return nil
	}
	return fmt.Errorf("field %q on %s: cannot assign %T", name, elem.Type(), value)
}

func findField(elem reflect.Value, name string) reflect.Value {
	t := elem.Type()
	for i := 0; i < t.NumField(); i++ {
		if strings.EqualFold(t.Field(i).Name, name) {
			return elem.Field(i)
		}
	}
	return reflect.Value{}
}

// attach implements step 5's relationship attachment, for the newly built
// right-hand object only — duplicate-append suppression is the caller's
// "only attach when newly constructed" check in Feed.
func attach(at attachPlan, left, right reflect.Value) error {
	target := left
	if target.Kind() == reflect.Ptr {
		target = target.Elem()
	}
	if target.Kind() == reflect.Map {
		return attachMapField(target, at, right)
	}
	f := findField(target, at.field)
	if !f.IsValid() {
		return fmt.Errorf("field %q not found on %s", at.field, target.Type())
	}
	switch at.kind {
	case OneToOne:
		f.Set(right)
	case OneToMany:
		f.Set(reflect.Append(f, right))
	}
	return nil
}

func attachMapField(m reflect.Value, at attachPlan, right reflect.Value) error {
	keyType := m.Type().Key()
	kv := reflect.ValueOf(at.field)
	if kv.Type() != keyType {
		kv = kv.Convert(keyType)
	}
	switch at.kind {
	case OneToOne:
		m.SetMapIndex(kv, right)
	case OneToMany:
		existing := m.MapIndex(kv)
		var seq reflect.Value
		if existing.IsValid() {
			if existing.Kind() == reflect.Interface {
				existing = existing.Elem()
			}
			seq = reflect.Append(existing, right)
		} else {
			sliceType := reflect.SliceOf(right.Type())
			seq = reflect.Append(reflect.MakeSlice(sliceType, 0, 1), right)
		}
		m.SetMapIndex(kv, seq)
	}
	return nil
}
