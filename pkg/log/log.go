// Package log configures the process-wide slog logger.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

// ParseLevel maps a flag value to a slog level. Unknown values mean info.
func ParseLevel(logLevel string) slog.Level {
	switch strings.ToLower(logLevel) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// New builds a logger writing to w. format is "text" or "json".
func New(w io.Writer, logLevel, format string) *slog.Logger {
	options := &slog.HandlerOptions{Level: ParseLevel(logLevel)}

	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, options)
	} else {
		handler = slog.NewTextHandler(w, options)
	}

	return slog.New(handler)
}

// Setup installs the default logger on stderr.
func Setup(logLevel, format string) {
	slog.SetDefault(New(os.Stderr, logLevel, format))
}

func WithModule(module string) *slog.Logger {
	return slog.With("module", module)
}
