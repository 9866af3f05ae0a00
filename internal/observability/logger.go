package observability

import (
	"io"
	"log/slog"
	"os"
)

// ServiceName tags logs, traces and spans.
const ServiceName = "expense-tracker"

// NewLogger returns the JSON logger used across the API. dev logs at debug.
func NewLogger(env string) *slog.Logger {
	return newLogger(os.Stdout, env)
}

func newLogger(w io.Writer, env string) *slog.Logger {
	opts := &slog.HandlerOptions{Level: slog.LevelInfo}
	if env == "dev" {
		opts.Level = slog.LevelDebug
		opts.AddSource = true
	}

	handler := NewContextHandler(slog.NewJSONHandler(w, opts))

	return slog.New(handler).With(
		slog.String("service", ServiceName),
		slog.String("env", env),
	)
}
