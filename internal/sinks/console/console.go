// Package console writes dispatched events to a terminal or file.
//
// Three backends are available: the pretty slog handler shared with dbglog's
// own diagnostics, the JSON slog handler, and zap's console encoder.
// A Fatal event terminates the process once the dispatcher calls Terminate.
package console

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/mattn/go-isatty"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"dbglog/internal/event"
	"dbglog/internal/logging"
	"dbglog/internal/severity"
)

// osExit is replaced in tests.
var osExit = os.Exit

// ExitCode is the status a Fatal event exits with.
const ExitCode = 1

// Options configures the console sink.
type Options struct {
	// Backend is pretty (default), json or zap.
	Backend string
	// Writer defaults to os.Stderr.
	Writer io.Writer
	// Color is auto (default), always or never.
	Color string
	// Source adds the call site as a source field.
	Source bool
}

// Sink is the console sink.
type Sink struct {
	handler slog.Handler
	zap     *zap.Logger
	source  bool
	clock   func() time.Time

	exitOnce sync.Once
}

// New builds a console sink.
func New(opts Options) (*Sink, error) {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}
	s := &Sink{source: opts.Source, clock: time.Now}
	switch backend := strings.ToLower(strings.TrimSpace(opts.Backend)); backend {
	case "", "pretty", "console", "json":
		h, err := logging.NewHandler(w, logging.HandlerOptions{
			Format: backend,
			Level:  slog.LevelDebug,
			Color:  useColor(opts.Color, w),
		})
		if err != nil {
			return nil, err
		}
		s.handler = h
	case "zap":
		s.zap = newZap(w)
	default:
		return nil, fmt.Errorf("console backend: unsupported value %q", opts.Backend)
	}
	return s, nil
}

// Write renders one event.
func (s *Sink) Write(category string, sev severity.Severity, loc event.Location, message string) error {
	if s.zap != nil {
		return s.writeZap(category, sev, loc, message)
	}
	record := slog.NewRecord(s.clock(), sev.Level(), message, 0)
	record.AddAttrs(slog.String(logging.FieldCategory, category))
	if s.source && !loc.IsZero() {
		record.AddAttrs(slog.String("source", sourceString(loc)))
	}
	return s.handler.Handle(context.Background(), record)
}

func (s *Sink) writeZap(category string, sev severity.Severity, loc event.Location, message string) error {
	fields := []zap.Field{zap.String(logging.FieldCategory, category)}
	if s.source && !loc.IsZero() {
		fields = append(fields, zap.String("source", sourceString(loc)))
	}
	if ce := s.zap.Check(zapLevel(sev), message); ce != nil {
		ce.Write(fields...)
	}
	return nil
}

// Terminate ends the process after a Fatal event. Only the first call has
// an effect.
func (s *Sink) Terminate(category, message string) {
	s.exitOnce.Do(func() {
		_ = s.Sync()
		osExit(ExitCode)
	})
}

// Sync flushes buffered zap output.
func (s *Sink) Sync() error {
	if s.zap == nil {
		return nil
	}
	return s.zap.Sync()
}

func sourceString(loc event.Location) string {
	return filepath.Base(loc.File) + ":" + strconv.Itoa(loc.Line)
}

func useColor(mode string, w io.Writer) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// deferredExit keeps zap from exiting on its own; the dispatcher decides
// when a Fatal event terminates the process.
type deferredExit struct{}

func (deferredExit) OnWrite(*zapcore.CheckedEntry, []zapcore.Field) {}

func newZap(w io.Writer) *zap.Logger {
	encoderCfg := zap.NewDevelopmentEncoderConfig()
	encoderCfg.EncodeTime = zapcore.TimeEncoderOfLayout("2006-01-02 15:04:05.000")
	encoderCfg.CallerKey = ""
	core := zapcore.NewCore(
		zapcore.NewConsoleEncoder(encoderCfg),
		zapcore.AddSync(w),
		zapcore.DebugLevel,
	)
	return zap.New(core, zap.WithFatalHook(deferredExit{}))
}

func zapLevel(sev severity.Severity) zapcore.Level {
	switch sev {
	case severity.Verbose:
		return zapcore.DebugLevel
	case severity.Warning:
		return zapcore.WarnLevel
	case severity.Error:
		return zapcore.ErrorLevel
	case severity.Fatal:
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}
