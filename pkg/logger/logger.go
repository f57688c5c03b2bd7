package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"

	"catalog-annotations/internal/domain"
)

// AppLogger implements the domain.Logger interface
type AppLogger struct {
	logger *slog.Logger
}

// NewLogger creates a new logger instance writing to stdout
func NewLogger(levelStr string) domain.Logger {
	return NewLoggerTo(os.Stdout, levelStr)
}

// NewLoggerTo creates a logger writing key/value lines to w
func NewLoggerTo(w io.Writer, levelStr string) domain.Logger {
	handler := slog.NewTextHandler(w, &slog.HandlerOptions{Level: parseLogLevel(levelStr)})
	return &AppLogger{logger: slog.New(handler)}
}

// Info logs an info message
func (l *AppLogger) Info(msg string, fields ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelInfo, msg, fields...)
}

// Error logs an error message
func (l *AppLogger) Error(msg string, err error, fields ...interface{}) {
	allFields := append([]interface{}{"error", err}, fields...)
	l.logger.Log(context.Background(), slog.LevelError, msg, allFields...)
}

// Debug logs a debug message
func (l *AppLogger) Debug(msg string, fields ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelDebug, msg, fields...)
}

// Warn logs a warning message
func (l *AppLogger) Warn(msg string, fields ...interface{}) {
	l.logger.Log(context.Background(), slog.LevelWarn, msg, fields...)
}

// parseLogLevel converts string log level to a slog level
func parseLogLevel(levelStr string) slog.Level {
	switch strings.ToLower(levelStr) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
