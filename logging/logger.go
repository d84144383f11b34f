// Package logging provides the server's structured logger, optional Sentry
// forwarding, and gin request logging.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
)

// Logger wraps slog.Logger so the backend and Sentry hook live in one place.
type Logger struct {
	slog *slog.Logger
}

// Config holds logger configuration.
type Config struct {
	Level  string // debug, info, warn, error
	Format string // json, text
	Output io.Writer
}

var (
	defaultLogger *Logger
	sentryEnabled bool
)

// SentryConfig holds Sentry configuration.
type SentryConfig struct {
	DSN         string
	Environment string
}

// InitSentry enables error forwarding when a DSN is set. The returned
// function flushes pending events and should be deferred.
func InitSentry(cfg SentryConfig) (func(), error) {
	if cfg.DSN == "" {
		return func() {}, nil
	}
	err := sentry.Init(sentry.ClientOptions{
		Dsn:         cfg.DSN,
		Environment: cfg.Environment,
		EnableLogs:  true,
	})
	if err != nil {
		return nil, err
	}
	sentryEnabled = true
	return func() { sentry.Flush(2 * time.Second) }, nil
}

// Init builds the default logger from LOG_LEVEL and LOG_FORMAT. The format
// defaults to text under gin's debug mode and json otherwise.
func Init() *Logger {
	format := os.Getenv("LOG_FORMAT")
	if format == "" {
		if os.Getenv("GIN_MODE") == "release" {
			format = "json"
		} else {
			format = "text"
		}
	}
	defaultLogger = New(Config{
		Level:  os.Getenv("LOG_LEVEL"),
		Format: format,
		Output: os.Stdout,
	})
	return defaultLogger
}

// New creates a logger with the given configuration.
func New(cfg Config) *Logger {
	output := cfg.Output
	if output == nil {
		output = os.Stdout
	}
	opts := &slog.HandlerOptions{Level: parseLevel(cfg.Level)}

	var handler slog.Handler
	if cfg.Format == "text" {
		handler = slog.NewTextHandler(output, opts)
	} else {
		handler = slog.NewJSONHandler(output, opts)
	}
	return &Logger{slog: slog.New(handler)}
}

// Default returns the default logger, initialising it if necessary.
func Default() *Logger {
	if defaultLogger == nil {
		return Init()
	}
	return defaultLogger
}

// With returns a logger that adds the key-value pairs to every entry.
func (l *Logger) With(args ...any) *Logger {
	return &Logger{slog: l.slog.With(args...)}
}

func (l *Logger) Debug(msg string, args ...any) {
	l.slog.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.slog.Info(msg, args...)
}

// Warn logs at warn level and forwards to Sentry when enabled.
func (l *Logger) Warn(msg string, args ...any) {
	l.slog.Warn(msg, args...)
	if sentryEnabled {
		logToSentry(sentry.NewLogger(context.Background()).Warn(), msg, args)
	}
}

// Error logs at error level and forwards to Sentry when enabled.
func (l *Logger) Error(msg string, args ...any) {
	l.slog.Error(msg, args...)
	if sentryEnabled {
		logToSentry(sentry.NewLogger(context.Background()).Error(), msg, args)
	}
}

func logToSentry(entry sentry.LogEntry, msg string, args []any) {
	for i := 0; i+1 < len(args); i += 2 {
		if key, ok := args[i].(string); ok {
			entry = entry.String(key, formatValue(args[i+1]))
		}
	}
	entry.Emit(msg)
}

func formatValue(v any) string {
	switch val := v.(type) {
	case string:
		return val
	case error:
		return val.Error()
	default:
		return fmt.Sprintf("%v", val)
	}
}

func parseLevel(s string) slog.Level {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
