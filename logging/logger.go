// Package logging provides a tiny abstraction over slog so the library can
// depend on a minimal Logger interface while callers plug in any structured
// logger. A NoOpLogger is the default everywhere logging is optional.
package logging

import (
	"io"
	"log/slog"
	"os"
)

// Level is a thin enum for user friendly level configuration decoupled from slog.
type Level int

const (
	// LevelDebug is the debug logging level.
	LevelDebug Level = iota
	// LevelInfo is the informational logging level.
	LevelInfo
	// LevelWarn is the warning logging level.
	LevelWarn
	// LevelError is the error logging level.
	LevelError
)

// String returns the string representation of the level.
func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "DEBUG"
	case LevelInfo:
		return "INFO"
	case LevelWarn:
		return "WARN"
	case LevelError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

func (l Level) slogLevel() slog.Level {
	switch l {
	case LevelDebug:
		return slog.LevelDebug
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Logger is the minimal structured logging interface used across the module.
// Args follow the slog key/value convention.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// SlogAdapter wraps *slog.Logger to implement Logger.
type SlogAdapter struct {
	*slog.Logger
}

// NewSlogAdapter creates a Logger from an existing *slog.Logger.
func NewSlogAdapter(logger *slog.Logger) Logger {
	return &SlogAdapter{Logger: logger}
}

// NewDefaultLogger creates a Logger backed by slog.Default().
func NewDefaultLogger() Logger {
	return NewSlogAdapter(slog.Default())
}

// Config controls handler construction for NewLogger.
type Config struct {
	Level     Level
	Format    string // "json" (default) or "text"
	Output    io.Writer
	AddSource bool
}

// NewLogger builds a Logger with a JSON or text slog handler. A nil config
// yields an info-level JSON logger on stdout.
func NewLogger(cfg *Config) Logger {
	if cfg == nil {
		cfg = &Config{Level: LevelInfo, Format: "json"}
	}
	out := cfg.Output
	if out == nil {
		out = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: cfg.Level.slogLevel(), AddSource: cfg.AddSource}
	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(out, opts)
	} else {
		handler = slog.NewJSONHandler(out, opts)
	}
	return NewSlogAdapter(slog.New(handler))
}

// NoOpLogger discards all log messages. It is the default when no logger is
// supplied.
type NoOpLogger struct{}

// Debug implements Logger.
func (NoOpLogger) Debug(string, ...any) {}

// Info implements Logger.
func (NoOpLogger) Info(string, ...any) {}

// Warn implements Logger.
func (NoOpLogger) Warn(string, ...any) {}

// Error implements Logger.
func (NoOpLogger) Error(string, ...any) {}

// OrNoOp returns l, or a NoOpLogger when l is nil, so call sites never need
// nil checks.
func OrNoOp(l Logger) Logger {
	if l == nil {
		return NoOpLogger{}
	}
	return l
}
