package logger

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

var (
	mu           sync.RWMutex
	globalLogger = slog.Default()
	output       io.Closer
)

// LogLevel represents different log levels
type LogLevel int

const (
	LevelDebug LogLevel = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l LogLevel) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// ParseLevel maps a LOG_LEVEL value to a LogLevel, defaulting to info.
func ParseLevel(level string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	default:
		return LevelInfo
	}
}

// Config holds logger configuration
type Config struct {
	Level      LogLevel
	OutputPath string
	Format     string // "json" or "text"
}

// InitWithConfig initializes the global structured logger
func InitWithConfig(config Config) error {
	var w io.Writer = os.Stdout
	var closer io.Closer

	if config.OutputPath != "" && config.OutputPath != "stdout" {
		if config.OutputPath == "stderr" {
			w = os.Stderr
		} else {
			if err := os.MkdirAll(filepath.Dir(config.OutputPath), 0755); err != nil {
				return fmt.Errorf("create log directory: %w", err)
			}
			f, err := os.OpenFile(config.OutputPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
			if err != nil {
				return fmt.Errorf("open log file: %w", err)
			}
			w, closer = f, f
		}
	}

	l := New(w, config)

	mu.Lock()
	defer mu.Unlock()
	if output != nil {
		output.Close()
	}
	output = closer
	globalLogger = l
	slog.SetDefault(l)
	return nil
}

// New builds a logger writing to w without touching the global one.
func New(w io.Writer, config Config) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     toSlogLevel(config.Level),
		AddSource: config.Level == LevelDebug,
	}

	var handler slog.Handler
	if config.Format == "text" {
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}
	return slog.New(handler)
}

func toSlogLevel(level LogLevel) slog.Level {
	switch level {
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

// Close closes the log file, if any
func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if output == nil {
		return nil
	}
	err := output.Close()
	output = nil
	return err
}

// GetLogger returns the global logger instance
func GetLogger() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// WithFields returns a logger with additional fields
func WithFields(fields ...any) *slog.Logger {
	return GetLogger().With(fields...)
}

// Debug logs a debug message
func Debug(msg string, args ...any) {
	GetLogger().Debug(msg, args...)
}

// Info logs an info message
func Info(msg string, args ...any) {
	GetLogger().Info(msg, args...)
}

// Warn logs a warning message
func Warn(msg string, args ...any) {
	GetLogger().Warn(msg, args...)
}

// Error logs an error message
func Error(msg string, args ...any) {
	GetLogger().Error(msg, args...)
}

// Infof logs an info message with formatting
func Infof(format string, args ...any) {
	GetLogger().Info(fmt.Sprintf(format, args...))
}

// Warningf logs a warning message with formatting
func Warningf(format string, args ...any) {
	GetLogger().Warn(fmt.Sprintf(format, args...))
}

// Errorf logs an error message with formatting
func Errorf(format string, args ...any) {
	GetLogger().Error(fmt.Sprintf(format, args...))
}

// Fatalf logs a fatal message with formatting and exits
func Fatalf(format string, args ...any) {
	GetLogger().Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}
