package logger

import (
	"io"
	"log/slog"
	"os"
)

// Init installs the default logger. Development and debug runs get
// human-readable text output, everything else gets JSON.
func Init(env string, debug bool) {
	slog.SetDefault(New(os.Stdout, env, debug))
}

// New builds a logger writing to w with the same rules as Init.
func New(w io.Writer, env string, debug bool) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}

	var handler slog.Handler
	if debug || env == "development" {
		if debug {
			opts.Level = slog.LevelDebug
		}
		handler = slog.NewTextHandler(w, opts)
	} else {
		handler = slog.NewJSONHandler(w, opts)
	}

	return slog.New(handler)
}
