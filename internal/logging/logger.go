package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"golang.org/x/term"
)

// New creates the application logger writing to stderr.
// Format "auto" picks text on a terminal and JSON otherwise.
func New(level, format string) *slog.Logger {
	return newLogger(os.Stderr, ParseLevel(level), resolveFormat(format, isTerminal(os.Stderr)))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a config level name to a slog.Level; unknown names mean info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
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

func newLogger(w io.Writer, level slog.Level, format string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: level,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			// Standardize 'error' key to 'err'
			if a.Key == "error" {
				a.Key = "err"
			}
			return a
		},
	}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func resolveFormat(format string, tty bool) string {
	switch format {
	case "text", "json":
		return format
	}
	if tty {
		return "text"
	}
	return "json"
}

func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
