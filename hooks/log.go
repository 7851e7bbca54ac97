// Package hooks provides structured query logging built on relsql's
// Hooks/OnErrorer contract: Before stashes a start time, After logs
// latency (or flags a slow query), OnError logs the failure.
package hooks

import (
	"context"
	"time"

	"github.com/oarkflow/log"

	"github.com/oarkflow/relsql/utils/sqlstr"
)

// Notifier is called with every logged query, in addition to the logger
// itself, useful for wiring metrics or tracing off the same hook.
type Notifier func(query string, args []any, latency string)

// Logger is a relsql.Hooks/relsql.OnErrorer implementation that logs every
// rendered execution through a *log.Logger.
type Logger struct {
	logger       *log.Logger
	started      int
	logSlowQuery bool
	duration     time.Duration
	notify       Notifier
	obscure      bool
}

// NewLogger builds a Logger. When logSlowQuery is true, only executions
// slower than dur are logged (at Warn level); otherwise every execution is
// logged at Info level.
func NewLogger(logger *log.Logger, logSlowQuery bool, dur time.Duration, notify ...Notifier) *Logger {
	h := &Logger{
		logger:       logger,
		logSlowQuery: logSlowQuery,
		duration:     dur,
	}
	if len(notify) > 0 {
		h.notify = notify[0]
	}
	return h
}

// ObscureLiterals makes the logger replace string/number/boolean literals
// in the logged query text with `?`, so logs never carry inline values
// that happened to bypass binding inside a sqlsafe-guarded fragment.
func (h *Logger) ObscureLiterals(obscure bool) *Logger {
	h.obscure = obscure
	return h
}

func (h *Logger) Before(ctx context.Context, query string, args ...any) (context.Context, error) {
	return context.WithValue(ctx, &h.started, time.Now()), nil
}

func (h *Logger) After(ctx context.Context, query string, args ...any) (context.Context, error) {
	since := time.Since(ctx.Value(&h.started).(time.Time))
	text := h.render(query)
	if h.logger == nil {
		if h.notify != nil {
			h.notify(text, args, since.String())
		}
		return ctx, nil
	}
	if h.logSlowQuery {
		if since > h.duration {
			h.logger.Warn().
				Str("query", text).
				Any("arguments", args).
				Str("latency", since.String()).
				Msg("slow query")
			if h.notify != nil {
				h.notify(text, args, since.String())
			}
		}
		return ctx, nil
	}
	h.logger.Info().
		Str("query", text).
		Any("arguments", args).
		Str("latency", since.String()).
		Msg("query")
	if h.notify != nil {
		h.notify(text, args, since.String())
	}
	return ctx, nil
}

func (h *Logger) OnError(ctx context.Context, err error, query string, args ...any) error {
	if h.logger != nil {
		h.logger.Error().
			Err(err).
			Str("query", h.render(query)).
			Any("arguments", args).
			Msg("query error")
	}
	return err
}

func (h *Logger) render(query string) string {
	text := sqlstr.Clean(query)
	if h.obscure {
		text = sqlstr.Obscure(text)
	}
	return text
}
