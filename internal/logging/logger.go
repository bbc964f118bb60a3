// Package logging defines the structured-logging interface used across the
// service. Implementations wrap slog and zerolog.
package logging

import (
	"context"
	"io"
	"strings"
)

// Logger is a context-aware, structured logger.
//
// The variadic args are interpreted as key–value pairs, e.g.:
//
//	log.Info(ctx, "credentials registered", "email", email)
type Logger interface {
	// Debug logs diagnostic detail that is off by default.
	Debug(ctx context.Context, msg string, args ...any)

	// Info logs an informational message.
	Info(ctx context.Context, msg string, args ...any)

	// Warn logs a warning message for unusual but non-fatal conditions.
	Warn(ctx context.Context, msg string, args ...any)

	// Error logs an error message for failures.
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key–value pairs.
	With(args ...any) Logger
}

// New builds a Logger for the named backend ("slog" or "zerolog") writing
// JSON lines to w at the given level ("debug", "info", "warn", "error").
// Unknown backends fall back to slog.
func New(backend, level string, w io.Writer) Logger {
	switch strings.ToLower(backend) {
	case "zerolog":
		return NewZerologLoggerFor(w, level)
	default:
		return NewSlogLoggerFor(w, level)
	}
}

type nopLogger struct{}

// Nop returns a Logger that discards everything.
func Nop() Logger { return nopLogger{} }

func (nopLogger) Debug(context.Context, string, ...any) {}
func (nopLogger) Info(context.Context, string, ...any)  {}
func (nopLogger) Warn(context.Context, string, ...any)  {}
func (nopLogger) Error(context.Context, string, ...any) {}
func (n nopLogger) With(...any) Logger                  { return n }
