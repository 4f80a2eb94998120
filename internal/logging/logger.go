package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	slogmulti "github.com/samber/slog-multi"
)

// Options selects the handlers of the application logger.
type Options struct {
	Level slog.Level
	// JSON switches the stderr handler from text to JSON lines.
	JSON bool
	// File, when set, receives a debug-level JSON copy of every record.
	File io.Writer
}

// New creates a configured application logger.
// It writes to Stderr (to separate from the Stdout trace output).
// It standardizes common keys (e.g., "error" -> "err").
func New(level slog.Level) *slog.Logger {
	return NewWithOptions(Options{Level: level})
}

// NewWithOptions builds the logger, fanning out to an optional file handler.
func NewWithOptions(opts Options) *slog.Logger {
	handlerOpts := &slog.HandlerOptions{
		Level:       opts.Level,
		ReplaceAttr: replaceAttr,
	}

	var console slog.Handler
	if opts.JSON {
		console = slog.NewJSONHandler(os.Stderr, handlerOpts)
	} else {
		console = slog.NewTextHandler(os.Stderr, handlerOpts)
	}

	if opts.File == nil {
		return slog.New(console)
	}

	file := slog.NewJSONHandler(opts.File, &slog.HandlerOptions{
		Level:       slog.LevelDebug,
		ReplaceAttr: replaceAttr,
	})
	return slog.New(slogmulti.Fanout(console, file))
}

// NewNop returns a no-op logger.
func NewNop() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// ParseLevel maps a flag value ("debug", "info", "warn", "error") to a level.
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

func replaceAttr(groups []string, a slog.Attr) slog.Attr {
	if a.Key == "error" {
		a.Key = "err"
	}
	return a
}
