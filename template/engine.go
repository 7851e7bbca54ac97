// Package template adapts github.com/oarkflow/jet into the SQL-templating
// engine described by spec §4.3: expression placeholders, a filter pipeline,
// and an auto-bind lexical extension that guarantees every expression value
// reaches the rendered SQL only through a driver-native placeholder.
package template

import (
	"fmt"
	"reflect"

	"github.com/oarkflow/jet"

	"github.com/oarkflow/relsql/identifier"
	"github.com/oarkflow/relsql/render"
)

// Engine parses and executes SQL templates, registering the bind, inclause,
// identifier, and sqlsafe filters against whichever Renderer is active for
// the current call.
type Engine struct {
	quoter *identifier.Quoter
	guard  *Guard
}

// NewEngine returns an Engine that quotes identifiers with quoter and guards
// sqlsafe literals against obviously-injected SQL.
func NewEngine(quoter *identifier.Quoter) *Engine {
	return &Engine{quoter: quoter, guard: NewGuard()}
}

// Render rewrites source with the auto-bind pass, parses it with jet, and
// executes it against vars, routing every expression value through r. It
// returns the rendered SQL; the bound parameters are read back from r after
// Render returns.
func (e *Engine) Render(source string, vars map[string]any, r *render.Renderer) (string, error) {
	rewritten := autoBind(source)

	set := jet.NewWithMemory(
		jet.WithDelims("{{", "}}"),
		jet.WithGlobalFunc("bind", e.bindFunc(r)),
		jet.WithGlobalFunc("inclause", e.inclauseFunc(r)),
		jet.WithGlobalFunc("identifier", e.identifierFunc()),
		jet.WithGlobalFunc("sqlsafe", e.sqlsafeFunc()),
	)

	data := make(jet.VarMap, len(vars))
	for k, v := range vars {
		data[k] = reflect.ValueOf(v)
	}

	out, err := set.ParseTemplate(rewritten, data)
	if err != nil {
		return "", &TemplateError{Msg: "render failed", Err: err}
	}
	return out, nil
}

// bindFunc implements the bind(name) filter: emit a driver-appropriate
// placeholder, record (name, value) on r, and advance the running index. A
// value already marked identifier.Safe (produced by the identifier or
// sqlsafe filters) is emitted verbatim instead of being bound again.
func (e *Engine) bindFunc(r *render.Renderer) func(jet.Arguments) reflect.Value {
	return func(a jet.Arguments) reflect.Value {
		a.RequireNumOfArguments("bind", 2, 2)
		value := argInterface(a.Get(0))
		name := fmt.Sprint(argInterface(a.Get(1)))

		if safe, ok := value.(identifier.Safe); ok {
			return reflect.ValueOf(string(safe))
		}

		placeholder, err := r.Bind(name, value)
		if err != nil {
			a.Panicf("bind: %s", err)
		}
		return reflect.ValueOf(placeholder)
	}
}

// inclauseFunc implements the inclause filter: bind every element of a
// finite iterable positionally under a synthetic name and emit
// "(p1,p2,...,pn)". An empty iterable still emits syntactically valid SQL:
// "()".
func (e *Engine) inclauseFunc(r *render.Renderer) func(jet.Arguments) reflect.Value {
	return func(a jet.Arguments) reflect.Value {
		a.RequireNumOfArguments("inclause", 1, 1)
		v := a.Get(0)
		for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
			v = v.Elem()
		}
		if v.Kind() != reflect.Slice && v.Kind() != reflect.Array {
			a.Panicf("inclause: %s", &TemplateError{Msg: fmt.Sprintf("expected an iterable, got %s", v.Kind())})
		}

		n := v.Len()
		out := "("
		for i := 0; i < n; i++ {
			if i > 0 {
				out += ","
			}
			name := r.NextSyntheticName()
			placeholder, err := r.Bind(name, v.Index(i).Interface())
			if err != nil {
				a.Panicf("inclause: %s", err)
			}
			out += placeholder
		}
		out += ")"
		return reflect.ValueOf(out)
	}
}

// identifierFunc implements the identifier filter: quote a single string or
// a sequence of strings representing a dotted identifier path, marking the
// result Safe so auto-bind leaves it alone.
func (e *Engine) identifierFunc() func(jet.Arguments) reflect.Value {
	return func(a jet.Arguments) reflect.Value {
		a.RequireNumOfArguments("identifier", 1, 1)
		v := a.Get(0)
		for v.Kind() == reflect.Interface || v.Kind() == reflect.Ptr {
			v = v.Elem()
		}

		var parts []string
		switch v.Kind() {
		case reflect.String:
			parts = []string{v.String()}
		case reflect.Slice, reflect.Array:
			parts = make([]string, v.Len())
			for i := range parts {
				elem := v.Index(i)
				for elem.Kind() == reflect.Interface {
					elem = elem.Elem()
				}
				if elem.Kind() != reflect.String {
					a.Panicf("identifier: %s", &TemplateError{Msg: "sequence element is not a string"})
				}
				parts[i] = elem.String()
			}
		default:
			a.Panicf("identifier: %s", &TemplateError{Msg: fmt.Sprintf("expected a string or sequence of strings, got %s", v.Kind())})
		}

		safe := e.quoter.QuotePath(parts...)
		return reflect.ValueOf(safe)
	}
}

// sqlsafeFunc implements the sqlsafe filter: mark a value as a literal SQL
// fragment that bypasses binding, after scanning it for suspicious patterns.
func (e *Engine) sqlsafeFunc() func(jet.Arguments) reflect.Value {
	return func(a jet.Arguments) reflect.Value {
		a.RequireNumOfArguments("sqlsafe", 1, 1)
		v := argInterface(a.Get(0))
		s, ok := v.(string)
		if !ok {
			if safe, ok := v.(identifier.Safe); ok {
				return reflect.ValueOf(safe)
			}
			a.Panicf("sqlsafe: %s", &TemplateError{Msg: "expected a string literal"})
		}
		if hits := e.guard.Scan(s); len(hits) > 0 {
			a.Panicf("sqlsafe: %s", &TemplateError{Msg: fmt.Sprintf("suspicious SQL fragment: %v", hits)})
		}
		return reflect.ValueOf(identifier.Safe(s))
	}
}

func argInterface(v reflect.Value) any {
	for v.Kind() == reflect.Interface {
		v = v.Elem()
	}
	if !v.IsValid() {
		return nil
	}
	return v.Interface()
}
