package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"

	"dbglog/internal/config"
)

// Options describes logger construction parameters.
type Options struct {
	Level       string
	Format      string
	OutputPaths []string
	// Writer, when set, replaces OutputPaths.
	Writer      io.Writer
	Development bool
	// SessionID and Instance, when set, are stamped on every record.
	SessionID string
	Instance  int
}

// New constructs a slog logger using the provided options.
func New(opts Options) (*slog.Logger, error) {
	level := parseLevel(opts.Level)
	levelVar := new(slog.LevelVar)
	levelVar.Set(level)

	outputWriter := opts.Writer
	if outputWriter == nil {
		var err error
		outputWriter, err = openWriters(defaultSlice(opts.OutputPaths, []string{"stderr"}))
		if err != nil {
			return nil, err
		}
	}

	addSource := opts.Development || level <= slog.LevelDebug
	handler, err := NewHandler(outputWriter, HandlerOptions{Format: opts.Format, Level: levelVar, AddSource: addSource})
	if err != nil {
		return nil, err
	}
	return slog.New(newStampHandler(handler, sessionStamp(opts.SessionID, opts.Instance)...)), nil
}

// HandlerOptions configures NewHandler.
type HandlerOptions struct {
	// Format is "console" (the default) or "json".
	Format    string
	Level     slog.Leveler
	AddSource bool
	// Color styles console level labels. Ignored for JSON.
	Color bool
}

// NewHandler builds the console or JSON handler writing to w.
func NewHandler(w io.Writer, opts HandlerOptions) (slog.Handler, error) {
	level := opts.Level
	if level == nil {
		level = slog.LevelInfo
	}
	switch strings.ToLower(strings.TrimSpace(opts.Format)) {
	case "", "console", "pretty":
		return newPrettyHandler(w, level, opts.AddSource, opts.Color), nil
	case "json":
		return newJSONHandler(w, level, opts.AddSource), nil
	default:
		return nil, fmt.Errorf("log format: unsupported value %q", opts.Format)
	}
}

// NewFromConfig creates a logger using application config defaults. Stderr
// gets the configured format; when a log directory is configured,
// <dir>/dbglog.log additionally receives every record as JSON so it stays
// machine-readable regardless of the terminal format.
func NewFromConfig(cfg *config.Config, sessionID string) (*slog.Logger, error) {
	if cfg == nil {
		return New(Options{Level: "info", Format: "console", SessionID: sessionID})
	}

	level := new(slog.LevelVar)
	level.Set(parseLevel(cfg.Logging.Level))
	addSource := level.Level() <= slog.LevelDebug

	stderr, err := NewHandler(os.Stderr, HandlerOptions{
		Format:    cfg.Logging.Format,
		Level:     level,
		AddSource: addSource,
		Color:     isatty.IsTerminal(os.Stderr.Fd()),
	})
	if err != nil {
		return nil, err
	}
	handlers := []slog.Handler{stderr}

	if cfg.Logging.Dir != "" {
		path := filepath.Join(cfg.Logging.Dir, "dbglog.log")
		if err := ensureLogDir(path); err != nil {
			return nil, fmt.Errorf("ensure log directory: %w", err)
		}
		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
		if err != nil {
			return nil, fmt.Errorf("open log file %s: %w", path, err)
		}
		handlers = append(handlers, newJSONHandler(file, level, addSource))
	}

	handler := TeeHandler(handlers...)
	return slog.New(newStampHandler(handler, sessionStamp(sessionID, cfg.Session.Instance)...)), nil
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug", "verbose":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error", "fatal":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func defaultSlice(value []string, fallback []string) []string {
	if len(value) == 0 {
		return append([]string(nil), fallback...)
	}
	return append([]string(nil), value...)
}

func openWriters(outputPaths []string) (io.Writer, error) {
	seen := map[string]struct{}{}
	var writers []io.Writer

	for _, path := range outputPaths {
		trimmed := strings.TrimSpace(path)
		if trimmed == "" {
			continue
		}
		if _, ok := seen[trimmed]; ok {
			continue
		}
		seen[trimmed] = struct{}{}

		switch trimmed {
		case "stdout":
			writers = append(writers, os.Stdout)
		case "stderr":
			writers = append(writers, os.Stderr)
		default:
			if err := ensureLogDir(trimmed); err != nil {
				return nil, err
			}
			file, err := os.OpenFile(trimmed, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o664)
			if err != nil {
				return nil, fmt.Errorf("open log file %s: %w", trimmed, err)
			}
			writers = append(writers, file)
		}
	}

	switch len(writers) {
	case 0:
		return os.Stderr, nil
	case 1:
		return writers[0], nil
	default:
		return io.MultiWriter(writers...), nil
	}
}

func ensureLogDir(path string) error {
	dir := filepath.Dir(path)
	if dir == "." || dir == "" {
		return nil
	}
	return os.MkdirAll(dir, 0o755)
}
