package logger

import (
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
)

// Logger wraps charm/log for structured logging
type Logger struct {
	*log.Logger
}

// New creates a new logger with the given output
func New(w io.Writer) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})
	return &Logger{Logger: l}
}

// NewWithLevel creates a logger with a specific level
func NewWithLevel(w io.Writer, level log.Level) *Logger {
	l := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           level,
	})
	return &Logger{Logger: l}
}

// NewFileLogger creates a logger that writes to a file
func NewFileLogger(path string) (*Logger, func(), error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return nil, nil, err
	}

	l := log.NewWithOptions(f, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
	})

	cleanup := func() {
		f.Close()
	}

	return &Logger{Logger: l}, cleanup, nil
}

// Discard returns a logger that discards all output
func Discard() *Logger {
	return New(io.Discard)
}

// CycleCompleted logs one parse/reconcile/render pass
func (l *Logger) CycleCompleted(lines, blocks int, duration time.Duration) {
	l.Debug("cycle completed",
		"lines", lines,
		"blocks", blocks,
		"duration", duration.Round(time.Microsecond))
}

// EditApplied logs an accepted structural edit
func (l *Logger) EditApplied(kind string, line int) {
	l.Info("structural edit applied",
		"kind", kind,
		"line", line)
}

// EditRejected logs a structural edit that resolved to a no-op
func (l *Logger) EditRejected(kind string, reason string) {
	l.Debug("structural edit rejected",
		"kind", kind,
		"reason", reason)
}

// ReconcileSummary logs the registry diff for one cycle
func (l *Logger) ReconcileSummary(created, refreshed, preserved, dropped int) {
	l.Debug("registry reconciled",
		"created", created,
		"refreshed", refreshed,
		"preserved", preserved,
		"dropped", dropped)
}

// CommitError logs a failed inline-edit commit
func (l *Logger) CommitError(line int, err error) {
	l.Error("commit failed",
		"line", line,
		"error", err)
}

// SessionError logs a session persistence error
func (l *Logger) SessionError(operation string, err error) {
	l.Error("session error",
		"operation", operation,
		"error", err)
}

// FileError logs an error for a specific file
func (l *Logger) FileError(file string, err error) {
	l.Error("file error",
		"file", file,
		"error", err)
}

// ConfigLoaded logs successful config loading
func (l *Logger) ConfigLoaded(theme string, indentWidth int, autosave time.Duration) {
	l.Debug("config loaded",
		"theme", theme,
		"indent_width", indentWidth,
		"autosave", autosave)
}
