package utils

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// Logger provides leveled logging throughout the application. It keeps the
// printf-style call sites of the CLI and exposes the structured zerolog
// logger for the HTTP layer.
type Logger struct {
	zl zerolog.Logger
}

// NewLogger creates a Logger writing human-readable lines to stdout.
func NewLogger() *Logger {
	output := zerolog.ConsoleWriter{
		Out:        os.Stdout,
		TimeFormat: "2006-01-02 15:04:05",
	}
	return &Logger{zl: zerolog.New(output).With().Timestamp().Logger()}
}

// NewLoggerWithWriter creates a Logger emitting JSON lines to w.
func NewLoggerWithWriter(w io.Writer) *Logger {
	return &Logger{zl: zerolog.New(w).With().Timestamp().Logger()}
}

// SetLevel sets the minimum level by name ("debug", "info", "warn",
// "error"). Unknown names leave the level unchanged.
func (l *Logger) SetLevel(name string) {
	lvl, err := zerolog.ParseLevel(strings.ToLower(strings.TrimSpace(name)))
	if err != nil || name == "" {
		return
	}
	l.zl = l.zl.Level(lvl)
}

// Zerolog returns the underlying structured logger.
func (l *Logger) Zerolog() zerolog.Logger {
	return l.zl
}

func (l *Logger) Info(format string, args ...any) {
	l.zl.Info().Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Warn(format string, args ...any) {
	l.zl.Warn().Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Error(format string, args ...any) {
	l.zl.Error().Msg(fmt.Sprintf(format, args...))
}

func (l *Logger) Debug(format string, args ...any) {
	l.zl.Debug().Msg(fmt.Sprintf(format, args...))
}

// Timed logs how long fn took at debug level and returns its error.
func (l *Logger) Timed(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	l.zl.Debug().Str("op", operation).Dur("took", time.Since(start)).Err(err).Msg("timed")
	return err
}
