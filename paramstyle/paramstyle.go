// Package paramstyle catalogs the placeholder dialects a SQL driver may speak
// and the shape of the bound-parameter collection each dialect produces.
package paramstyle

import (
	"fmt"
	"reflect"
	"strconv"
	"strings"
	"sync"
)

// Style names a driver's placeholder dialect.
type Style string

const (
	// Qmark renders "?" placeholders and yields a positional parameter sequence.
	Qmark Style = "qmark"
	// Numeric renders ":1", ":2", ... placeholders (1-based) positionally.
	Numeric Style = "numeric"
	// Format renders "%s" placeholders positionally.
	Format Style = "format"
	// Named renders ":name" placeholders and yields a named parameter map.
	Named Style = "named"
	// Pyformat renders "%(name)s" placeholders and yields a named parameter map.
	Pyformat Style = "pyformat"
	// Dollar renders "$1", "$2", ... placeholders (1-based) positionally.
	Dollar Style = "dollar"
)

// ConfigError reports an invalid or unresolvable placeholder-dialect
// configuration: an unknown style requested, or discovery failing to find
// one at all.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return "paramstyle: " + e.Msg }

// Named reports whether the style binds parameters into a named map rather
// than a positional sequence.
func (s Style) Named() bool {
	switch s {
	case Named, Pyformat:
		return true
	default:
		return false
	}
}

// Valid reports whether s is one of the six recognized dialects.
func (s Style) Valid() bool {
	switch s {
	case Qmark, Numeric, Format, Named, Pyformat, Dollar:
		return true
	default:
		return false
	}
}

// Placeholder renders the driver-native placeholder token for the i-th bound
// value (1-based index) with the given bind name, for positional and named
// dialects alike. name is ignored by positional dialects.
func (s Style) Placeholder(index int, name string) (string, error) {
	switch s {
	case Qmark:
		return "?", nil
	case Numeric:
		return ":" + strconv.Itoa(index), nil
	case Format:
		return "%s", nil
	case Dollar:
		return "$" + strconv.Itoa(index), nil
	case Named:
		return ":" + name, nil
	case Pyformat:
		return "%(" + name + ")s", nil
	default:
		return "", &ConfigError{Msg: fmt.Sprintf("unknown placeholder dialect %q", s)}
	}
}

// ParamStyler is implemented by a driver/connection package that declares its
// own dialect, mirroring Python DB-API's module-level paramstyle attribute.
type ParamStyler interface {
	ParamStyle() Style
}

var (
	discoveryMu    sync.Mutex
	discoveryCache = map[reflect.Type]Style{}
)

// Discover resolves the placeholder dialect for v, the cursor or connection
// value a caller is about to render SQL for. It first checks whether v
// implements ParamStyler directly, then walks v's declaring package path
// upward (splitting on '/' and '.') looking for a registered package-level
// style via Register. The result is cached per concrete type so repeated
// discovery for the same driver is free.
func Discover(v any) (Style, error) {
	if v == nil {
		return "", &ConfigError{Msg: "cannot discover placeholder dialect of a nil value"}
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Ptr {
		t = t.Elem()
	}

	discoveryMu.Lock()
	if style, ok := discoveryCache[t]; ok {
		discoveryMu.Unlock()
		return style, nil
	}
	discoveryMu.Unlock()

	if styler, ok := v.(ParamStyler); ok {
		style := styler.ParamStyle()
		discoveryMu.Lock()
		discoveryCache[t] = style
		discoveryMu.Unlock()
		return style, nil
	}

	pkgPath := t.PkgPath()
	if pkgPath == "" {
		return "", &ConfigError{Msg: fmt.Sprintf("cannot discover placeholder dialect: %s has no package path", t)}
	}
	for end := len(pkgPath); end > 0; end = strings.LastIndexAny(pkgPath[:end], "/.") {
		if style, ok := lookupPackageStyle(pkgPath[:end]); ok {
			discoveryMu.Lock()
			discoveryCache[t] = style
			discoveryMu.Unlock()
			return style, nil
		}
	}
	return "", &ConfigError{Msg: fmt.Sprintf("could not discover placeholder dialect for %s", pkgPath)}
}

var (
	registryMu sync.Mutex
	registry   = map[string]Style{}
)

// Register associates a dotted/sloshed package-name prefix with a dialect, so
// Discover can find it while walking a value's package path upward. Drivers
// register themselves in an init func.
func Register(packagePrefix string, style Style) {
	registryMu.Lock()
	defer registryMu.Unlock()
	registry[packagePrefix] = style
}

func lookupPackageStyle(prefix string) (Style, bool) {
	registryMu.Lock()
	defer registryMu.Unlock()
	style, ok := registry[prefix]
	return style, ok
}
