// Package logging configures the process logger and the diagnostic error log.
package logging

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/cognicore/lemmareport/pkg/lemmareport/internalerr"
)

// New builds a logger writing to w. Format "json" selects the JSON handler;
// anything else is human-readable text.
func New(w io.Writer, format string, level slog.Level) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	return slog.New(handler)
}

// Init creates a stderr logger and makes it the slog default.
func Init(format string, level slog.Level) *slog.Logger {
	logger := New(os.Stderr, format, level)
	slog.SetDefault(logger)
	return logger
}

// ParseLevel converts a string ("debug", "info", "warn", "error") to slog.Level.
// Unknown strings default to LevelInfo.
func ParseLevel(s string) slog.Level {
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

// ErrorLog appends one JSON line per failed run. A nil *ErrorLog discards.
type ErrorLog struct {
	mu     sync.Mutex
	f      *os.File
	logger *slog.Logger
}

// OpenErrorLog opens path for appending. An empty path returns nil.
func OpenErrorLog(path string) (*ErrorLog, error) {
	if path == "" {
		return nil, nil
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open error log: %w", err)
	}
	return &ErrorLog{f: f, logger: slog.New(slog.NewJSONHandler(f, nil))}, nil
}

// Record writes a diagnostic for err, tagged with its kind.
func (l *ErrorLog) Record(ctx context.Context, runID string, err error) {
	if l == nil || err == nil {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.logger.LogAttrs(ctx, slog.LevelError, "report run failed",
		slog.String("run_id", runID),
		slog.String("kind", internalerr.Kind(err)),
		slog.String("err", err.Error()),
	)
}

// Close closes the underlying file.
func (l *ErrorLog) Close() error {
	if l == nil {
		return nil
	}
	return l.f.Close()
}
