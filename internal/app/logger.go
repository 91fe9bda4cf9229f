package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process-wide logger. JSON output is for production
// log shipping; the text handler is for local runs. Every record carries the
// service attribute so quotes lines are filterable in aggregated logs.
func NewLogger(cfg *Config) *slog.Logger {
	opts := &slog.HandlerOptions{AddSource: true}
	var handler slog.Handler
	if cfg != nil && cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "quotes"))
}
