package mapping

import (
	"fmt"
	"reflect"
	"strings"
)

// Accessor selects how a compiled plan constructs and populates instances of
// a shape: ATTR writes named struct fields, ITEM writes keyed entries into a
// map.
type Accessor int

const (
	// Attr writes fields by named attribute (struct field) assignment.
	Attr Accessor = iota
	// Item writes fields by keyed assignment into a mapping container.
	Item
)

func (a Accessor) String() string {
	if a == Item {
		return "item"
	}
	return "attr"
}

// Spec is a MapperSpec: the declared shape of one hydration target. Two
// Specs are structurally equal iff their target type, name and id fields all
// match; this is the equality the process-wide plan cache relies on.
type Spec struct {
	name     string
	target   reflect.Type
	idFields []string
	accessor Accessor
}

// SpecOption customizes a Spec built by NewSpec.
type SpecOption func(*Spec)

// WithName overrides the default lowercase-type-name shape name.
func WithName(name string) SpecOption {
	return func(s *Spec) { s.name = strings.ToLower(name) }
}

// WithID overrides the default single "id" key field with an ordered,
// possibly composite, tuple of field names.
func WithID(fields ...string) SpecOption {
	return func(s *Spec) {
		if len(fields) > 0 {
			s.idFields = append([]string(nil), fields...)
		}
	}
}

// WithAccessor overrides the derived accessor kind.
func WithAccessor(a Accessor) SpecOption {
	return func(s *Spec) { s.accessor = a }
}

// NewSpec declares a MapperSpec for target, a zero value or pointer of the
// Go type that rows of this shape should be hydrated into. Name defaults to
// the lowercase simple name of target's type; id fields default to a single
// "id" field; the accessor defaults to Item when target is a map type and
// Attr otherwise, mirroring the derivation rules.
func NewSpec(target any, opts ...SpecOption) *Spec {
	t := reflect.TypeOf(target)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}
	s := &Spec{
		name:     strings.ToLower(t.Name()),
		target:   t,
		idFields: []string{"id"},
		accessor: Attr,
	}
	if t.Kind() == reflect.Map {
		s.accessor = Item
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the shape_name used to match `<shape>__<field>` columns.
func (s *Spec) Name() string { return s.name }

// Target returns the underlying Go type this shape hydrates into.
func (s *Spec) Target() reflect.Type { return s.target }

// IDFields returns the ordered identity field tuple.
func (s *Spec) IDFields() []string { return s.idFields }

// Accessor returns how fields are written on instances of this shape.
func (s *Spec) Accessor() Accessor { return s.accessor }

// key returns a string uniquely determined by (target type, name, id
// fields), used both for cache-key structural comparison and for ordered
// deduplication during compilation.
func (s *Spec) key() string {
	return fmt.Sprintf("%s\x00%s\x00%s", s.target.String(), s.name, strings.Join(s.idFields, ","))
}

// Equal reports structural equality over (target_type, shape_name,
// id_fields), per the mapper equality rule.
func (s *Spec) Equal(other *Spec) bool {
	if s == nil || other == nil {
		return s == other
	}
	return s.key() == other.key()
}

// RelationshipKind distinguishes a singular attachment from an
// ordered-sequence one.
type RelationshipKind int

const (
	// OneToOne attaches right directly to left.Field.
	OneToOne RelationshipKind = iota
	// OneToMany appends right to the ordered sequence at left.Field.
	OneToMany
)

func (k RelationshipKind) String() string {
	if k == OneToMany {
		return "one_to_many"
	}
	return "one_to_one"
}

// Relationship declares that, for every row, once both the left and right
// objects for that row are resolved, right is attached to left at Field:
// assigned directly for OneToOne, appended to an ordered sequence for
// OneToMany. Left and Right must be Specs the caller has already declared —
// either because they appear in the Result, or because they are named here
// and nowhere else, in which case this is their sole point of declaration.
type Relationship struct {
	Kind  RelationshipKind
	Left  *Spec
	Field string
	Right *Spec
}

func (r Relationship) key() string {
	return fmt.Sprintf("%s\x00%s\x00%s\x00%s", r.Kind, r.Left.key(), r.Field, r.Right.key())
}

// Result is the declared shape of a query's hydrated output: either a single
// Spec (unary) or an ordered tuple of Specs (n-ary).
type Result struct {
	specs []*Spec
}

// Unary declares a single-shape result.
func Unary(s *Spec) Result { return Result{specs: []*Spec{s}} }

// Tuple declares an ordered n-ary result.
func Tuple(specs ...*Spec) Result { return Result{specs: append([]*Spec(nil), specs...)} }

// IsUnary reports whether this result carries exactly one shape.
func (r Result) IsUnary() bool { return len(r.specs) == 1 }

// Specs returns the declared result shapes in declaration order.
func (r Result) Specs() []*Spec { return r.specs }
