// Package logging defines the structured logger used across the console.
// Store failures and refresh errors are reported here; the terminal console
// points it at a file so log lines never land on the screen.
package logging

import "context"

// Logger is a context-aware, structured logger.
//
// The variadic args are key/value pairs:
//
//	log.Error(ctx, "refresh failed", "err", err, "collection", "users")
type Logger interface {
	Debug(ctx context.Context, msg string, args ...any)
	Info(ctx context.Context, msg string, args ...any)
	Warn(ctx context.Context, msg string, args ...any)
	Error(ctx context.Context, msg string, args ...any)

	// With returns a child logger that always includes the given key/value pairs.
	With(args ...any) Logger
}
