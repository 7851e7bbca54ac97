// Package render holds the per-render state that the template engine's
// filters mutate while a single SQL template is being rendered: the
// placeholder dialect, the running parameter index, and the accumulated
// bound-parameter collection.
package render

import (
	"fmt"

	"github.com/oarkflow/relsql/paramstyle"
)

// boundParam is one (emitted-placeholder-name, value) pair, recorded in
// insertion order.
type boundParam struct {
	name  string
	value any
}

// Renderer accumulates bound parameters for exactly one in-flight render. A
// Renderer must never be shared between concurrent renders: callers allocate
// a fresh Renderer per Render call, matching the "per-thread single active
// render" contract.
type Renderer struct {
	dialect    paramstyle.Style
	paramIndex int
	params     []boundParam
	synthSeq   int
}

// New returns a Renderer for a single render pass using the given dialect.
func New(dialect paramstyle.Style) *Renderer {
	return &Renderer{dialect: dialect}
}

// Dialect returns the placeholder dialect this renderer is bound to.
func (r *Renderer) Dialect() paramstyle.Style {
	return r.dialect
}

// Bind records value under name, advances the running parameter index, and
// returns the driver-native placeholder token to splice into the rendered
// SQL. Repeated binds reuse neither name nor index: every call emits exactly
// one fresh placeholder, even if name repeats (named dialects are expected to
// tolerate/overwrite repeated keys at execution time, matching the spec's
// "ordered insertion" semantics for BoundParams).
func (r *Renderer) Bind(name string, value any) (string, error) {
	r.paramIndex++
	placeholder, err := r.dialect.Placeholder(r.paramIndex, name)
	if err != nil {
		return "", err
	}
	r.params = append(r.params, boundParam{name: name, value: value})
	return placeholder, nil
}

// NextSyntheticName returns a fresh, renderer-local synthetic bind name
// ("p1", "p2", ...), used by the inclause filter to name each expanded
// element without colliding with user-chosen names.
func (r *Renderer) NextSyntheticName() string {
	r.synthSeq++
	return fmt.Sprintf("p%d", r.synthSeq)
}

// Params returns the final bound-parameter collection in the shape the
// renderer's dialect demands: a positional slice for qmark/numeric/format/
// dollar, or a named map for named/pyformat.
func (r *Renderer) Params() any {
	if r.dialect.Named() {
		m := make(map[string]any, len(r.params))
		for _, p := range r.params {
			m[p.name] = p.value
		}
		return m
	}
	values := make([]any, len(r.params))
	for i, p := range r.params {
		values[i] = p.value
	}
	return values
}

// PositionalParams returns the bound values as a slice regardless of
// dialect, preserving insertion order. Useful for callers (tests, the
// orchestrator's execution path for positional dialects) that need ordered
// access independent of the final named/positional shape.
func (r *Renderer) PositionalParams() []any {
	values := make([]any, len(r.params))
	for i, p := range r.params {
		values[i] = p.value
	}
	return values
}

// Len reports how many values have been bound so far.
func (r *Renderer) Len() int {
	return len(r.params)
}

// NamedPair is one (emitted-placeholder-name, value) entry in insertion
// order, undeduplicated — unlike Params()'s named-dialect map, repeated
// names are preserved, matching the driver's own sql.Named args contract.
type NamedPair struct {
	Name  string
	Value any
}

// OrderedPairs returns every bound (name, value) pair in insertion order,
// regardless of dialect.
func (r *Renderer) OrderedPairs() []NamedPair {
	pairs := make([]NamedPair, len(r.params))
	for i, p := range r.params {
		pairs[i] = NamedPair{Name: p.name, Value: p.value}
	}
	return pairs
}
