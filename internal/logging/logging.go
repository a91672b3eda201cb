// Package logging configures the process-wide slog logger for shard.
//
// Interactive runs (a TTY on stderr, or --no-background) get tinted
// human-readable output and default to debug level; service runs get JSON
// and default to info.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/pwntr/tinter"
)

// Options describes the desired logger. Format is "auto", "text" or "json";
// an empty Level means the interactive-mode default.
type Options struct {
	Format      string
	Level       string
	Interactive bool
}

// Init installs the global slog logger. Call once, after flag parsing.
func Init(o Options) {
	w := os.Stderr

	useTint := false
	switch strings.ToLower(o.Format) {
	case "text", "tint", "human":
		useTint = true
	case "json":
	default: // auto
		useTint = o.Interactive || IsTTY(w)
	}

	level := parseLevel(o.Level, o.Interactive)

	var h slog.Handler
	if useTint {
		h = tinter.NewHandler(w, &tinter.Options{
			Level:      level,
			TimeFormat: "15:04:05.000",
		})
	} else {
		h = slog.NewJSONHandler(w, &slog.HandlerOptions{
			Level: level,
		})
	}
	slog.SetDefault(slog.New(h))
}

func parseLevel(s string, interactive bool) slog.Level {
	if s == "" {
		if interactive {
			return slog.LevelDebug
		}
		return slog.LevelInfo
	}
	var l slog.Level
	if err := l.UnmarshalText([]byte(s)); err != nil {
		return slog.LevelInfo
	}
	return l
}

// IsTTY reports whether w is a terminal.
func IsTTY(w io.Writer) bool {
	if f, ok := w.(*os.File); ok {
		return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
	}
	return false
}
