// ABOUTME: Level-gated printf logging for the editor; writes to stderr so it never mixes with the TUI
// ABOUTME: Component loggers via For(name) prefix every line with the subsystem that emitted it

package log

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
)

// Level constants matching slog levels.
const (
	LevelDebug = slog.LevelDebug
	LevelInfo  = slog.LevelInfo
	LevelWarn  = slog.LevelWarn
	LevelError = slog.LevelError
)

var (
	level atomic.Int64

	outMu sync.Mutex
	out   io.Writer = os.Stderr
)

func init() {
	level.Store(int64(LevelInfo))
}

// SetLevel sets the global log level.
func SetLevel(l slog.Level) {
	level.Store(int64(l))
}

// GetLevel returns the current log level.
func GetLevel() slog.Level {
	return slog.Level(level.Load())
}

// ParseLevel maps "debug", "info", "warn" and "error" to a level.
// Unknown names yield LevelInfo.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return LevelDebug
	case "warn", "warning":
		return LevelWarn
	case "error":
		return LevelError
	}
	return LevelInfo
}

// SetOutput redirects log lines and returns the previous writer.
func SetOutput(w io.Writer) io.Writer {
	outMu.Lock()
	defer outMu.Unlock()
	prev := out
	out = w
	return prev
}

func emit(l slog.Level, tag, prefix, format string, args []any) {
	if l < LevelError && slog.Level(level.Load()) > l {
		return
	}
	msg := fmt.Sprintf(format, args...)
	outMu.Lock()
	defer outMu.Unlock()
	if prefix != "" {
		fmt.Fprintf(out, "[%s] %s: %s\n", tag, prefix, msg)
		return
	}
	fmt.Fprintf(out, "[%s] %s\n", tag, msg)
}

// Debug logs a debug message if the level allows it.
func Debug(format string, args ...any) { emit(LevelDebug, "DEBUG", "", format, args) }

// Info logs an info message if the level allows it.
func Info(format string, args ...any) { emit(LevelInfo, "INFO", "", format, args) }

// Warn logs a warning message if the level allows it.
func Warn(format string, args ...any) { emit(LevelWarn, "WARN", "", format, args) }

// Error logs an error message (always emitted).
func Error(format string, args ...any) { emit(LevelError, "ERROR", "", format, args) }

// Logger prefixes every line with a component name.
type Logger struct {
	component string
}

// For returns a logger for the named component.
func For(component string) Logger {
	return Logger{component: component}
}

func (l Logger) Debug(format string, args ...any) { emit(LevelDebug, "DEBUG", l.component, format, args) }
func (l Logger) Info(format string, args ...any)  { emit(LevelInfo, "INFO", l.component, format, args) }
func (l Logger) Warn(format string, args ...any)  { emit(LevelWarn, "WARN", l.component, format, args) }
func (l Logger) Error(format string, args ...any) { emit(LevelError, "ERROR", l.component, format, args) }
