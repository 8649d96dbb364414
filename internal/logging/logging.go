// Package logging builds the zerolog loggers used across embark.
//
// The TUI owns stdout/stderr while it runs, so the default sink is an
// append-only file. Debug runs switch to the console format, on stderr only
// for commands that do not start the TUI.
package logging

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"
)

// Config selects level, encoding and destination.
type Config struct {
	Level  string // trace, debug, info, warn, error
	Format string // json or console
	File   string // empty means stderr
}

// Logger wraps the configured zerolog.Logger and the file it writes to, if any.
type Logger struct {
	zerolog.Logger
	file *os.File
}

// New returns a logger for cfg. When the log file cannot be opened it falls
// back to stderr and reports why.
func New(cfg Config) (*Logger, error) {
	lvl, err := zerolog.ParseLevel(cfg.Level)
	if err != nil || cfg.Level == "" {
		lvl = zerolog.InfoLevel
	}

	var (
		out  io.Writer = os.Stderr
		file *os.File
	)
	var openErr error
	if cfg.File != "" {
		file, openErr = openLogFile(cfg.File)
		if openErr == nil {
			out = file
		}
	}
	if cfg.Format == "console" {
		out = zerolog.ConsoleWriter{Out: out, TimeFormat: time.RFC3339, NoColor: file != nil}
	}

	l := &Logger{
		Logger: zerolog.New(out).Level(lvl).With().Timestamp().Logger(),
		file:   file,
	}
	if openErr != nil {
		return l, fmt.Errorf("open log file: %w", openErr)
	}
	return l, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}
	return os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
}

// Close releases the log file.
func (l *Logger) Close() error {
	if l == nil || l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	return err
}

// Component returns a child logger tagged with the component name.
func Component(l zerolog.Logger, name string) zerolog.Logger {
	return l.With().Str("component", name).Logger()
}

// FromContext returns the logger stored in ctx, or a disabled logger.
func FromContext(ctx context.Context) *zerolog.Logger {
	if ctx == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return zerolog.Ctx(ctx)
}

// WithContext stores l in ctx.
func WithContext(ctx context.Context, l zerolog.Logger) context.Context {
	return l.WithContext(ctx)
}

// NewRunID returns a sortable id that tags every log line of one CLI run.
func NewRunID() string {
	return ulid.Make().String()
}
