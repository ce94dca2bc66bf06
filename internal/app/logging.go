package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
)

// SetupLogging installs a tint handler on stderr as the default slog
// logger. Colors are only used on a terminal. When errorLog is set,
// records at warn and above are also appended to that file; the returned
// func closes it.
func SetupLogging(level, errorLog string) (*slog.Logger, func() error, error) {
	logger := NewLogger(colorable.NewColorable(os.Stderr), level, !isatty.IsTerminal(os.Stderr.Fd()))
	closeFn := func() error { return nil }
	if errorLog != "" {
		if err := os.MkdirAll(filepath.Dir(errorLog), 0o755); err != nil {
			return nil, nil, fmt.Errorf("create error log dir: %w", err)
		}
		f, err := os.OpenFile(errorLog, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, nil, fmt.Errorf("open error log: %w", err)
		}
		logger = slog.New(fanout{logger.Handler(), NewErrorFileHandler(f)})
		closeFn = f.Close
	}
	slog.SetDefault(logger)
	return logger, closeFn, nil
}

// NewErrorFileHandler writes warn and above to w without colors, with
// full timestamps and source locations.
func NewErrorFileHandler(w io.Writer) slog.Handler {
	return tint.NewHandler(w, &tint.Options{
		Level:      slog.LevelWarn,
		TimeFormat: time.RFC3339,
		NoColor:    true,
		AddSource:  true,
	})
}

// fanout sends each record to every handler that accepts its level.
type fanout []slog.Handler

func (f fanout) Enabled(ctx context.Context, l slog.Level) bool {
	for _, h := range f {
		if h.Enabled(ctx, l) {
			return true
		}
	}
	return false
}

func (f fanout) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range f {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (f fanout) WithAttrs(attrs []slog.Attr) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithAttrs(attrs)
	}
	return out
}

func (f fanout) WithGroup(name string) slog.Handler {
	out := make(fanout, len(f))
	for i, h := range f {
		out[i] = h.WithGroup(name)
	}
	return out
}

// NewLogger builds the tint logger used by both binaries.
func NewLogger(w io.Writer, level string, noColor bool) *slog.Logger {
	// Skip timestamps when running under systemd (it adds its own).
	underSystemd := os.Getenv("JOURNAL_STREAM") != ""
	return slog.New(tint.NewHandler(w, &tint.Options{
		Level:      ParseLevel(level),
		TimeFormat: "15:04:05.000",
		NoColor:    noColor,
		ReplaceAttr: func(groups []string, a slog.Attr) slog.Attr {
			if underSystemd && a.Key == slog.TimeKey && len(groups) == 0 {
				return slog.Attr{}
			}
			if a.Key == "ip" {
				if v := a.Value.String(); v == "127.0.0.1" || v == "::1" {
					return slog.Attr{}
				}
			}
			switch t := a.Value.Any().(type) {
			case string:
				if t == "" {
					return slog.Attr{}
				}
			case time.Duration:
				if t == 0 {
					return slog.Attr{}
				}
			case nil:
				return slog.Attr{}
			}
			return a
		},
	}))
}

// ParseLevel maps debug, info, warn and error to slog levels; anything
// else is info.
func ParseLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	}
	return slog.LevelInfo
}
