// Package observability bundles the logging, metrics, and tracing setup
// shared by every module.
package observability

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger: JSON handler in production
// environments, text handler elsewhere.
func NewLogger(environment string) *slog.Logger {
	var handler slog.Handler
	switch environment {
	case "production", "prod":
		handler = slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo})
	default:
		handler = slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug})
	}
	return slog.New(handler).With(slog.String("service", "songquiz"))
}
