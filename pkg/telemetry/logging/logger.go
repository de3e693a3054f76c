package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Format is the log output format.
type Format string

const (
	// FormatJSON outputs logs as JSON objects, one per line.
	FormatJSON Format = "json"
	// FormatText outputs logs as logfmt-style key=value lines.
	FormatText Format = "text"
)

// Config controls logger construction.
type Config struct {
	// Level is the minimum log level ("debug", "info", "warn", "error").
	Level string

	// Format is the output format ("json" or "text").
	Format string

	// AddSource includes file and line number in log records.
	AddSource bool

	// RedactAnswers masks answer values and respondent identifiers in
	// log attributes. Enabled in production configurations so respondent
	// data never reaches log storage.
	RedactAnswers bool

	// Writer is the output writer. Defaults to os.Stderr.
	Writer io.Writer
}

// New builds a *slog.Logger from the configuration.
func New(cfg Config) (*slog.Logger, error) {
	level, err := ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}

	w := cfg.Writer
	if w == nil {
		w = os.Stderr
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: cfg.AddSource,
	}
	if cfg.RedactAnswers {
		opts.ReplaceAttr = redactAttr
	}

	var handler slog.Handler
	switch Format(cfg.Format) {
	case FormatText:
		handler = slog.NewTextHandler(w, opts)
	case FormatJSON, "":
		handler = slog.NewJSONHandler(w, opts)
	default:
		return nil, fmt.Errorf("invalid log format %q (expected json or text)", cfg.Format)
	}

	return slog.New(handler), nil
}

// ParseLevel converts a level name to a slog.Level. The empty string
// maps to info.
func ParseLevel(name string) (slog.Level, error) {
	switch name {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("invalid log level %q (expected debug, info, warn, or error)", name)
	}
}
