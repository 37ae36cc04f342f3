// Package logging builds the slog loggers used across subocr: colourised
// console output through tint, or JSON lines for machine consumption.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/google/uuid"
	"github.com/lmittmann/tint"
	"github.com/mattn/go-isatty"
)

const consoleTimeFormat = "15:04:05"

// Options controls logger construction
type Options struct {
	Level   string // debug, info, warn, error
	Format  string // console or json
	NoColor bool
}

// ParseLevel maps a level name onto a slog level, defaulting to info
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

// New creates a logger writing to w
func New(w io.Writer, opts Options) *slog.Logger {
	lvl := ParseLevel(opts.Level)

	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level:     lvl,
			AddSource: lvl == slog.LevelDebug,
		}))
	}

	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      lvl,
		TimeFormat: consoleTimeFormat,
		NoColor:    opts.NoColor || !isTerminal(w),
	}))
}

// WithComponent returns a logger with component attribute
func WithComponent(logger *slog.Logger, component string) *slog.Logger {
	return logger.With("component", component)
}

// WithRun tags a logger with a fresh run id and returns both
func WithRun(logger *slog.Logger) (*slog.Logger, string) {
	id := uuid.NewString()
	return logger.With("run_id", id), id
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	fd := f.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
