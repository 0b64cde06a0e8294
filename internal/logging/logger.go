package logging

import (
	"fmt"
	"io"
	"os"
	"strings"
)

// Logger writes human-oriented progress messages to stderr so they show up
// as engine diagnostics without polluting stack outputs.
type Logger struct {
	out     io.Writer
	debug   bool
	noColor bool
}

// New creates a logger. Debug messages are suppressed unless debug is set.
func New(debug, noColor bool) *Logger {
	return &Logger{
		out:     os.Stderr,
		debug:   debug,
		noColor: noColor,
	}
}

// NewWithWriter is like New but writes to the given writer. Used by tests.
func NewWithWriter(w io.Writer, debug, noColor bool) *Logger {
	return &Logger{out: w, debug: debug, noColor: noColor}
}

type level struct {
	glyph string
	color string
}

var (
	levelInfo  = level{glyph: "✓", color: "\033[32m"}
	levelWarn  = level{glyph: "⚠", color: "\033[33m"}
	levelError = level{glyph: "✗", color: "\033[31m"}
	levelDebug = level{glyph: "[DEBUG]", color: "\033[36m"}
)

func (l *Logger) logf(lv level, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if l.noColor {
		fmt.Fprintf(l.out, "%s %s\n", lv.glyph, msg)
		return
	}
	fmt.Fprintf(l.out, "%s%s\033[0m %s\n", lv.color, lv.glyph, msg)
}

// Info logs an informational message.
func (l *Logger) Info(format string, args ...interface{}) {
	l.logf(levelInfo, format, args...)
}

// Warn logs a warning message.
func (l *Logger) Warn(format string, args ...interface{}) {
	l.logf(levelWarn, format, args...)
}

// Error logs an error message.
func (l *Logger) Error(format string, args ...interface{}) {
	l.logf(levelError, format, args...)
}

// Debug logs a debug message when debug mode is enabled.
func (l *Logger) Debug(format string, args ...interface{}) {
	if !l.debug {
		return
	}
	l.logf(levelDebug, format, args...)
}

// Secret is a value that must never appear in log output.
type Secret string

// String always returns a redacted placeholder.
func (s Secret) String() string {
	return "[REDACTED]"
}

// GoString always returns a redacted placeholder, covering %#v formatting.
func (s Secret) GoString() string {
	return "[REDACTED]"
}

// Redact scrubs known secret values from free-form text, e.g. driver error
// messages that echo the connection string back.
func Redact(s string, secrets []string) string {
	result := s
	for _, secret := range secrets {
		// Single characters would shred the whole message.
		if len(secret) > 3 {
			result = strings.ReplaceAll(result, secret, "[REDACTED]")
		}
	}
	return result
}
