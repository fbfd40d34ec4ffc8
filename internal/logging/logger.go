// Package logging wraps log/slog for the bridge client. Records go to stderr
// as text by default, or to an append-only JSON log file when one is configured.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

const (
	LevelDebug = "DEBUG"
	LevelInfo  = "INFO"
	LevelWarn  = "WARN"
	LevelError = "ERROR"
)

// Logger is safe for concurrent use. Child loggers created with With share
// the parent's output.
type Logger struct {
	logger *slog.Logger
	out    *sharedFile
}

type sharedFile struct {
	mu   sync.Mutex
	file *os.File
}

type Options struct {
	Level string
	// File, when set, receives JSON records instead of stderr.
	File string
	// Writer overrides the destination; used by tests.
	Writer io.Writer
}

func New(opts Options) (*Logger, error) {
	handlerOpts := &slog.HandlerOptions{Level: parseLevel(opts.Level)}

	if opts.Writer != nil {
		return &Logger{logger: slog.New(slog.NewTextHandler(opts.Writer, handlerOpts))}, nil
	}

	if opts.File == "" {
		return &Logger{logger: slog.New(slog.NewTextHandler(os.Stderr, handlerOpts))}, nil
	}

	if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
		return nil, fmt.Errorf("create log directory: %w", err)
	}

	file, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}

	return &Logger{
		logger: slog.New(slog.NewJSONHandler(file, handlerOpts)),
		out:    &sharedFile{file: file},
	}, nil
}

func Nop() *Logger {
	return &Logger{logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func parseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
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

// ValidLevel reports whether level names one of the supported levels.
func ValidLevel(level string) bool {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case LevelDebug, LevelInfo, LevelWarn, LevelError:
		return true
	default:
		return false
	}
}

func (l *Logger) With(args ...any) *Logger {
	if len(args) == 0 {
		return l
	}

	return &Logger{logger: l.logger.With(args...), out: l.out}
}

// WithComponent tags every record with the emitting component.
func (l *Logger) WithComponent(name string) *Logger {
	return l.With("component", name)
}

func (l *Logger) Enabled(level slog.Level) bool {
	return l.logger.Enabled(context.Background(), level)
}

func (l *Logger) Debug(msg string, args ...any) {
	l.logger.Debug(msg, args...)
}

func (l *Logger) Info(msg string, args ...any) {
	l.logger.Info(msg, args...)
}

func (l *Logger) Warn(msg string, args ...any) {
	l.logger.Warn(msg, args...)
}

func (l *Logger) Error(msg string, args ...any) {
	l.logger.Error(msg, args...)
}

// Close syncs and closes the log file. Loggers writing to stderr or a
// caller-supplied writer have nothing to close.
func (l *Logger) Close() error {
	if l.out == nil {
		return nil
	}

	l.out.mu.Lock()
	defer l.out.mu.Unlock()

	if l.out.file == nil {
		return nil
	}
	if err := l.out.file.Sync(); err != nil {
		return fmt.Errorf("sync log file: %w", err)
	}
	if err := l.out.file.Close(); err != nil {
		return fmt.Errorf("close log file: %w", err)
	}
	l.out.file = nil

	return nil
}
