package relsql

import "fmt"

// UsageError reports a caller mistake: params of the wrong shape for the
// fragment's kind (a static query takes nil or []any, a dynamic one nil or
// map[string]any), or an empty result from One called with Raising(true). No
// operation requires an active scope: ScopedQuery falls back to the pool.
// UsageErrors are never wrapped driver errors — those pass through from
// database/sql unwrapped, per the error-handling design.
type UsageError struct {
	Msg string
}

func (e *UsageError) Error() string { return fmt.Sprintf("relsql: %s", e.Msg) }

// ConfigError reports a malformed Config: an unknown driver name, a DSN
// that could not be built from the supplied fields.
type ConfigError struct {
	Msg string
}

func (e *ConfigError) Error() string { return fmt.Sprintf("relsql: config: %s", e.Msg) }
