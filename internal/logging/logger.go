// Package logging builds the run logger: one slog.Logger writing every
// record at Debug and above to a log file and records at Info and above to
// the console, both as "2006-01-02 15:04:05,000 - message key=value".
//
// Each call to New returns an independent logger owning its file; call
// Close when the run ends.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// Logger is a slog.Logger that owns its file sink.
type Logger struct {
	*slog.Logger
	path string
	file *os.File
}

type options struct {
	console      io.Writer
	fileLevel    slog.Level
	consoleLevel slog.Level
}

// Option configures New.
type Option func(*options)

// WithConsole sets the console sink (default os.Stderr).
func WithConsole(w io.Writer) Option {
	return func(o *options) { o.console = w }
}

// WithFileLevel sets the minimum level written to the file (default Debug).
func WithFileLevel(level slog.Level) Option {
	return func(o *options) { o.fileLevel = level }
}

// WithConsoleLevel sets the minimum level written to the console (default Info).
func WithConsoleLevel(level slog.Level) Option {
	return func(o *options) { o.consoleLevel = level }
}

// New opens path for appending (creating it if needed) and returns a
// logger writing to both the file and the console.
func New(path string, opts ...Option) (*Logger, error) {
	o := options{
		console:      os.Stderr,
		fileLevel:    slog.LevelDebug,
		consoleLevel: slog.LevelInfo,
	}
	for _, opt := range opts {
		opt(&o)
	}

	//nolint:gosec // G302/G304: log file path and mode chosen by the caller's run layout
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}

	h := fanout{
		newLineHandler(f, o.fileLevel),
		newLineHandler(o.console, o.consoleLevel),
	}
	return &Logger{Logger: slog.New(h), path: path, file: f}, nil
}

// Path returns the log file path.
func (l *Logger) Path() string {
	return l.path
}

// Close closes the file sink. Records logged after Close still reach the
// console; file writes fail silently. Close is safe to call twice.
func (l *Logger) Close() error {
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	if err != nil {
		return fmt.Errorf("failed to close log file: %w", err)
	}
	return nil
}
