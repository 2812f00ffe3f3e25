// Package debug carries the per-invocation debug logger through
// context.Context.
//
// The logger is built once from the --debug flag at the start of a command
// and stored in the context handed to every collaborator (spec parser,
// template loader, generator). Nothing is process-wide: stages that run
// before the logger is attached see a discarding logger.
package debug

import (
	"context"
	"io"
	"log/slog"
)

// key is an unexported type to prevent collisions with context keys from other packages.
type key struct{}

var loggerKey = key{}

var discard = slog.New(slog.NewTextHandler(io.Discard, nil))

// New returns the logger for one invocation. When enabled is false the
// logger drops every record.
func New(w io.Writer, enabled bool) *slog.Logger {
	if !enabled || w == nil {
		return discard
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level: slog.LevelDebug,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Timestamps only add noise to interactive CLI output.
			if len(groups) == 0 && a.Key == slog.TimeKey {
				return slog.Attr{}
			}
			return a
		},
	}))
}

// WithLogger returns a new context with the provided logger embedded.
func WithLogger(ctx context.Context, logger *slog.Logger) context.Context {
	return context.WithValue(ctx, loggerKey, logger)
}

// FromContext extracts the logger from a context. If no logger is
// attached, it returns a logger that discards everything.
func FromContext(ctx context.Context) *slog.Logger {
	if ctx != nil {
		if logger, ok := ctx.Value(loggerKey).(*slog.Logger); ok {
			return logger
		}
	}
	return discard
}
