package relsql

import "context"

// Hook is the hook callback signature, kept identical to the teacher's
// bare function type.
type Hook func(ctx context.Context, query string, args ...any) (context.Context, error)

// ErrorHook is the error-handling callback signature.
type ErrorHook func(ctx context.Context, err error, query string, args ...any) error

// Hooks instances may be registered with AddHook to wrap every rendered
// execution with paired Before/After callbacks, exactly the teacher's
// Hooks interface (hooks.go), retargeted to fire once per orchestrator
// call instead of once per driver.Conn method since every execution
// already passes through Query.
type Hooks interface {
	Before(ctx context.Context, query string, args ...any) (context.Context, error)
	After(ctx context.Context, query string, args ...any) (context.Context, error)
}

// OnErrorer is implemented by a Hooks value that also wants to observe or
// translate execution errors, matching the teacher's OnErrorer interface.
type OnErrorer interface {
	OnError(ctx context.Context, err error, query string, args ...any) error
}

func (db *DB) runBefore(ctx context.Context, query string, args ...any) (context.Context, error) {
	var err error
	for _, h := range db.hooks {
		if ctx, err = h.Before(ctx, query, args...); err != nil {
			return ctx, err
		}
	}
	return ctx, nil
}

func (db *DB) runAfter(ctx context.Context, query string, args ...any) {
	for _, h := range db.hooks {
		_, _ = h.After(ctx, query, args...)
	}
}

func (db *DB) runOnError(ctx context.Context, err error, query string, args ...any) error {
	for _, h := range db.hooks {
		if oe, ok := h.(OnErrorer); ok {
			if wrapped := oe.OnError(ctx, err, query, args...); wrapped != nil {
				err = wrapped
			}
		}
	}
	return err
}
