package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/association-ledger/internal/config"
)

// NewLogger builds the process-wide slog.Logger writing JSON to stdout.
// Every record carries the service name and environment so log lines from
// the API server and the audit archiver can be told apart downstream.
func NewLogger(cfg *config.Config) *slog.Logger {
	return New(cfg, os.Stdout)
}

// New is NewLogger with an explicit sink.
func New(cfg *config.Config, w io.Writer) *slog.Logger {
	level := parseLevel(cfg.Logging.Level)

	handler := slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
		// Source locations only at debug, they are noise in production
		AddSource: level == slog.LevelDebug,
	})

	log := slog.New(handler).With(
		slog.String("service", cfg.Application.Name),
		slog.String("env", cfg.Application.Env),
	)
	log.Info("logger initialized", "level", level)
	return log
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
