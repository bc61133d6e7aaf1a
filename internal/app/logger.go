package app

import (
	"log/slog"
	"os"
)

// NewLogger builds the process logger. Production deployments emit JSON at
// info level; everything else gets human-readable text at debug level with
// source locations for quick tracing of denial decisions.
func NewLogger(cfg *Config) *slog.Logger {
	level := slog.LevelDebug
	if cfg.IsProduction() {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: !cfg.IsProduction()}

	var handler slog.Handler
	if cfg.IsProduction() || (cfg != nil && cfg.LogFormat == "json") {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	return slog.New(handler).With(slog.String("service", "campus-authz"))
}
