// Package host assembles a long-running dbglog process: one category
// registry, one dispatcher and the sinks enabled in config, guarded by a
// single-instance lock and reachable over the IPC socket.
package host

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"dbglog/internal/category"
	"dbglog/internal/config"
	"dbglog/internal/control"
	"dbglog/internal/dispatch"
	"dbglog/internal/event"
	"dbglog/internal/ipc"
	"dbglog/internal/logging"
	"dbglog/internal/severity"
	"dbglog/internal/sinks/console"
	"dbglog/internal/sinks/dialog"
	"dbglog/internal/sinks/msglog"
	"dbglog/internal/sinks/notify"
	"dbglog/internal/sinks/overlay"
	"dbglog/internal/sinks/spatial"
)

// ErrAlreadyRunning is returned by Run when another host holds the lock.
var ErrAlreadyRunning = errors.New("dbglog host is already running")

// ErrRemoteFatal rejects Fatal events arriving from outside the process.
var ErrRemoteFatal = errors.New("fatal events cannot be emitted remotely")

// ErrSpatialDisabled is returned by recording calls when the recorder is off.
var ErrSpatialDisabled = errors.New("spatial recorder is disabled in config")

// Remote and piped events share one call site each; pass a key to keep
// several overlay lines apart.
var (
	emitSite  = dispatch.NewSite()
	stdinSite = dispatch.NewSite()
)

// Options configures a Host.
type Options struct {
	Logger *slog.Logger
	// ConfigPath is watched for category changes when enabled in config.
	ConfigPath string
	// Out receives console, overlay and notification output. Defaults to
	// os.Stderr.
	Out io.Writer
	// In answers dialogs. A host without it has no dialog sink: a server
	// cannot prompt on behalf of its clients.
	In io.Reader
	// Stdin, when set, is read line by line and each line dispatched.
	Stdin io.Reader
	// SessionID defaults to a random UUID.
	SessionID string
}

// Host owns the engine and its sinks.
type Host struct {
	cfg        *config.Config
	configPath string
	logger     *slog.Logger
	sessionID  string
	startedAt  time.Time
	process    event.Process
	stdin      io.Reader

	registry   *category.Registry
	control    *control.Surface
	dispatcher *dispatch.Dispatcher

	console  *console.Sink
	board    *overlay.Board
	toaster  *notify.Toaster
	prompter *dialog.Prompter
	messages *msglog.Store
	recorder *spatial.Recorder

	lock *flock.Flock
}

// New builds the engine from cfg. It creates directories and opens the
// message log but takes no lock; Run does that.
func New(cfg *config.Config, opts Options) (*Host, error) {
	if cfg == nil {
		return nil, errors.New("host requires config")
	}
	if err := cfg.EnsureDirectories(); err != nil {
		return nil, err
	}

	sessionID := opts.SessionID
	if sessionID == "" {
		sessionID = uuid.NewString()
	}
	out := opts.Out
	if out == nil {
		out = os.Stderr
	}

	h := &Host{
		cfg:        cfg,
		configPath: opts.ConfigPath,
		logger:     logging.NewComponentLogger(opts.Logger, "host"),
		sessionID:  sessionID,
		startedAt:  time.Now().UTC(),
		process:    event.Process{Mode: cfg.Session.Mode, Instance: cfg.Session.Instance},
		stdin:      opts.Stdin,
		registry:   category.NewRegistry(),
		lock:       flock.New(cfg.Control.Lock),
	}
	h.control = control.New(h.registry, opts.Logger)
	h.control.Apply(cfg.Categories)

	var err error
	h.console, err = console.New(console.Options{
		Backend: cfg.Console.Backend,
		Writer:  out,
		Color:   cfg.Console.Color,
		Source:  cfg.Console.Source,
	})
	if err != nil {
		return nil, fmt.Errorf("console sink: %w", err)
	}
	sinks := dispatch.Sinks{Console: h.console}

	if cfg.Overlay.Enabled {
		h.board = overlay.New(overlay.Options{MaxEntries: cfg.Overlay.MaxEntries, Out: out})
		sinks.Overlay = h.board
	}
	if cfg.Notify.Enabled {
		h.toaster = notify.New(notify.Options{Out: out, MaxVisible: cfg.Notify.MaxVisible})
		sinks.Notify = h.toaster
	}
	if cfg.Dialog.Enabled && opts.In != nil {
		h.prompter = dialog.New(dialog.Options{In: opts.In, Out: out, Interactive: cfg.Dialog.Interactive})
		sinks.Dialog = h.prompter
	}
	if cfg.MessageLog.Enabled {
		h.messages, err = msglog.Open(msglog.Options{
			Path:        cfg.MessageLog.Path,
			SessionID:   sessionID,
			Window:      out,
			WindowLimit: cfg.MessageLog.WindowLimit,
			Echo:        h.console,
		})
		if err != nil {
			return nil, fmt.Errorf("message log: %w", err)
		}
		sinks.MessageLog = h.messages
	}
	if cfg.Spatial.Enabled {
		h.recorder = spatial.New(spatial.Options{Dir: cfg.Spatial.Dir, SessionID: sessionID})
		sinks.Spatial = h.recorder
		sinks.Drawer = h.recorder
	}

	h.dispatcher = dispatch.New(dispatch.Options{
		Registry:        h.registry,
		Sinks:           sinks,
		Logger:          opts.Logger,
		Instance:        cfg.Session.Instance,
		TimestampLayout: cfg.Console.TimestampFormat,
	})
	return h, nil
}

// Dispatcher returns the host's dispatcher.
func (h *Host) Dispatcher() *dispatch.Dispatcher { return h.dispatcher }

// Process describes this host as an event context.
func (h *Host) Process() event.Process { return h.process }

// SessionID returns the id stamped on persisted records.
func (h *Host) SessionID() string { return h.sessionID }

// Categories implements ipc.Backend.
func (h *Host) Categories() *control.Surface { return h.control }

// StartRecording arms the spatial recorder.
func (h *Host) StartRecording(name string) (string, error) {
	if h.recorder == nil {
		return "", ErrSpatialDisabled
	}
	return h.recorder.Start(name)
}

// StopRecording disarms the spatial recorder.
func (h *Host) StopRecording() (string, int, error) {
	if h.recorder == nil {
		return "", 0, ErrSpatialDisabled
	}
	return h.recorder.Stop()
}

// Emit dispatches a remote event. Fatal is refused so a client cannot
// terminate the host.
func (h *Host) Emit(ctx context.Context, req ipc.EmitRequest) error {
	b, err := req.Builder()
	if err != nil {
		logging.WithContext(ctx, h.logger).Debug("rejected remote event",
			logging.String(logging.FieldEventType, "emit_rejected"),
			logging.Error(err))
		return err
	}
	if req.Context {
		b.Context(h.process)
	}
	cfg := b.Build()
	if cfg.Severity == severity.Fatal {
		logging.WithContext(ctx, h.logger).Debug("rejected remote event",
			logging.String(logging.FieldEventType, "emit_rejected"),
			logging.Error(ErrRemoteFatal))
		return ErrRemoteFatal
	}
	h.dispatcher.LogAt(emitSite, cfg, req.Template, req.BoxedArgs()...)
	return nil
}

// Status implements ipc.Backend.
func (h *Host) Status() ipc.StatusResponse {
	report := h.control.List()
	resp := ipc.StatusResponse{
		PID:        os.Getpid(),
		SessionID:  h.sessionID,
		Instance:   h.cfg.Session.Instance,
		StartedAt:  h.startedAt,
		Socket:     h.cfg.Control.Socket,
		ConfigPath: h.configPath,
		Categories: len(report.Categories),
		Disabled:   report.Disabled,
		Sinks:      h.sinkNames(),
	}
	if h.recorder != nil {
		resp.Recording = h.recorder.Recording()
		resp.RecordingPath = h.recorder.Path()
	}
	if h.messages != nil {
		resp.MessageLogPath = h.messages.Path()
	}
	return resp
}

func (h *Host) sinkNames() []string {
	names := []string{"console"}
	if h.board != nil {
		names = append(names, "overlay")
	}
	if h.toaster != nil {
		names = append(names, "notify")
	}
	if h.prompter != nil {
		names = append(names, "dialog")
	}
	if h.messages != nil {
		names = append(names, "message_log")
	}
	if h.recorder != nil {
		names = append(names, "spatial")
	}
	return names
}

// Overlay implements ipc.Backend.
func (h *Host) Overlay() []ipc.OverlayEntry {
	if h.board == nil {
		return nil
	}
	entries := h.board.Entries()
	out := make([]ipc.OverlayEntry, 0, len(entries))
	for _, e := range entries {
		out = append(out, ipc.OverlayEntry{
			Key:       e.Key,
			Message:   e.Message,
			Color:     e.Color.Hex(),
			ExpiresAt: e.ExpiresAt,
		})
	}
	return out
}

// Reload applies the category states of a freshly loaded config.
func (h *Host) Reload(cfg *config.Config) {
	if cfg == nil {
		return
	}
	n := h.control.Apply(cfg.Categories)
	h.logger.Info("config reloaded",
		logging.String(logging.FieldEventType, "config_reloaded"),
		logging.Int("categories", n),
	)
}

// Close releases sink resources. An active recording is finalized.
func (h *Host) Close() error {
	var errs []error
	if h.recorder != nil && h.recorder.Recording() {
		if _, _, err := h.recorder.Stop(); err != nil {
			errs = append(errs, err)
		}
	}
	if h.messages != nil {
		if err := h.messages.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close message log: %w", err))
		}
	}
	_ = h.console.Sync()
	return errors.Join(errs...)
}
