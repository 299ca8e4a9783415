package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	slogctx "github.com/veqryn/slog-context"
)

// Format is a log output format.
type Format string

const (
	FormatText    Format = "text"
	FormatJSON    Format = "json"
	FormatCompact Format = "compact"
)

// ParseFormat maps a case-insensitive name to a Format. Unknown names fall
// back to FormatText.
func ParseFormat(s string) Format {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case FormatJSON:
		return FormatJSON
	case FormatCompact:
		return FormatCompact
	default:
		return FormatText
	}
}

// ParseLevel parses DEBUG, INFO, WARN (or WARNING) and ERROR,
// case-insensitively. Unknown values return INFO.
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(strings.TrimSpace(level)) {
	case "DEBUG":
		return slog.LevelDebug
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New returns a logger writing to w (stderr when nil) at the given level
// and format.
func New(w io.Writer, level, format string) *slog.Logger {
	if w == nil {
		w = os.Stderr
	}
	lvl := ParseLevel(level)

	var handler slog.Handler
	switch ParseFormat(format) {
	case FormatJSON:
		handler = slog.NewJSONHandler(w, &slog.HandlerOptions{Level: lvl})
	case FormatCompact:
		handler = NewCompactHandler(w, lvl)
	default:
		handler = slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl})
	}

	return slog.New(slogctx.NewHandler(handler, nil))
}

// Setup builds a logger with [New] and installs it as the slog default.
func Setup(level, format string) *slog.Logger {
	logger := New(os.Stderr, level, format)
	slog.SetDefault(logger)
	return logger
}
