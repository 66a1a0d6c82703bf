package dispatch

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"dbglog/internal/category"
	"dbglog/internal/event"
	"dbglog/internal/format"
	"dbglog/internal/logging"
	"dbglog/internal/severity"
)

// Formatter substitutes positional arguments into a message template.
type Formatter interface {
	Format(template string, args []any) string
}

// Options configures a Dispatcher.
type Options struct {
	// Registry gates events by category. Defaults to category.Default().
	Registry *category.Registry
	// Formatter defaults to format.New().
	Formatter Formatter
	Sinks     Sinks
	// Logger receives sink failures at debug level.
	Logger *slog.Logger
	// Instance identifies this process among cooperating ones; it is mixed
	// into overlay keys.
	Instance int
	// TimestampLayout is the strftime layout for events that request a
	// timestamp without a format. Defaults to DefaultTimestampLayout.
	TimestampLayout string
	// Clock overrides time.Now for timestamps.
	Clock func() time.Time
}

// Dispatcher runs the log pipeline. It is safe for concurrent use; the
// registry is the only state shared between calls.
type Dispatcher struct {
	registry        *category.Registry
	formatter       Formatter
	sinks           Sinks
	logger          *slog.Logger
	instance        int
	timestampLayout string
	clock           func() time.Time
}

// New constructs a Dispatcher.
func New(opts Options) *Dispatcher {
	d := &Dispatcher{
		registry:        opts.Registry,
		formatter:       opts.Formatter,
		sinks:           opts.Sinks,
		logger:          logging.NewComponentLogger(opts.Logger, "dispatch"),
		instance:        opts.Instance,
		timestampLayout: opts.TimestampLayout,
		clock:           opts.Clock,
	}
	if d.registry == nil {
		d.registry = category.Default()
	}
	if d.formatter == nil {
		d.formatter = format.New()
	}
	if d.timestampLayout == "" {
		d.timestampLayout = DefaultTimestampLayout
	}
	return d
}

// Registry returns the category registry the dispatcher consults.
func (d *Dispatcher) Registry() *category.Registry { return d.registry }

// Log dispatches one event. The call site is derived from the caller.
func (d *Dispatcher) Log(cfg event.Config, template string, args ...any) {
	d.draw(context.Background(), &cfg)
	if cfg.Dropped() {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	d.dispatch(context.Background(), siteForPC(pcs[0]), cfg, template, args)
}

// LogContext is Log with a context, which bounds a blocking dialog.
func (d *Dispatcher) LogContext(ctx context.Context, cfg event.Config, template string, args ...any) {
	d.draw(ctx, &cfg)
	if cfg.Dropped() {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	d.dispatch(ctx, siteForPC(pcs[0]), cfg, template, args)
}

// LogAt dispatches one event from a declared call site.
func (d *Dispatcher) LogAt(site *Site, cfg event.Config, template string, args ...any) {
	d.draw(context.Background(), &cfg)
	if cfg.Dropped() {
		return
	}
	d.dispatch(context.Background(), site, cfg, template, args)
}

// draw emits the immediate shapes of cfg. It runs ahead of every gate.
func (d *Dispatcher) draw(ctx context.Context, cfg *event.Config) {
	if len(cfg.Draws) == 0 || d.sinks.Drawer == nil {
		return
	}
	name := cfg.ResolveCategory()
	for _, dr := range cfg.Draws {
		d.call(ctx, "draw", name, func() error {
			return d.sinks.Drawer.Draw(dr, name)
		})
	}
}

func (d *Dispatcher) dispatch(ctx context.Context, site *Site, cfg event.Config, template string, args []any) {
	if cfg.Dropped() {
		return
	}

	name := cfg.ResolveCategory()
	if d.registry.IsDisabled(name) {
		return
	}

	var loc event.Location
	if site != nil {
		loc = site.Location()
	}
	message := d.decorate(&cfg, loc, d.format(template, args))
	cfg.ApplyDefaults()

	sinks := d.sinks
	if cfg.Spatial.Present() {
		if sinks.Spatial != nil {
			d.call(ctx, "spatial", name, func() error {
				if !sinks.Spatial.Recording() {
					return nil
				}
				return sinks.Spatial.Emit(cfg.Spatial, name, cfg.Severity, message)
			})
		}
		if cfg.Spatial.OnlyVisual {
			return
		}
	}

	if cfg.ToNotify && sinks.Notify != nil {
		d.call(ctx, "notify", name, func() error {
			return sinks.Notify.Show(message, cfg.NotifyDuration)
		})
	}
	// Only a stored entry has been echoed; a failed append falls through to
	// the console.
	logged := false
	if cfg.ToMessageLog && sinks.MessageLog != nil {
		logged = d.call(ctx, "message_log", name, func() error {
			return sinks.MessageLog.Append(name, cfg.Severity, message)
		})
		if logged && cfg.ShowLogNow {
			d.call(ctx, "message_log_open", name, func() error {
				return sinks.MessageLog.Open(cfg.Severity)
			})
		}
	}

	wroteConsole := false
	if !(cfg.ToNotify && cfg.OnlyNotify) && !(cfg.ToDialog && cfg.OnlyDialog) {
		// The message log already echoes to the console.
		if cfg.Destination.IncludesConsole() && !logged && sinks.Console != nil {
			wroteConsole = true
			d.call(ctx, "console", name, func() error {
				return sinks.Console.Write(name, cfg.Severity, loc, message)
			})
		}
		if cfg.Destination.IncludesScreen() && sinks.Overlay != nil {
			var siteID uint64
			if site != nil {
				siteID = site.ID()
			}
			key := OverlayKey(loc.Line, d.instance, siteID, cfg.ScreenKey)
			d.call(ctx, "overlay", name, func() error {
				return sinks.Overlay.Upsert(key, cfg.ScreenDuration, cfg.ScreenColor, message)
			})
		}
	}

	if cfg.ToDialog && sinks.Dialog != nil {
		d.ask(ctx, &cfg, name, message)
	}

	if cfg.Severity == severity.Fatal && wroteConsole {
		if t, ok := sinks.Console.(Terminator); ok {
			t.Terminate(name, message)
		}
	}
}

func (d *Dispatcher) ask(ctx context.Context, cfg *event.Config, name, message string) {
	response := cfg.DialogKind.DefaultResponse()
	d.call(ctx, "dialog", name, func() error {
		r, err := d.sinks.Dialog.Ask(ctx, message, name, cfg.DialogKind)
		if err != nil {
			return err
		}
		response = r
		return nil
	})
	if cfg.OnResponse == nil {
		return
	}
	d.call(ctx, "dialog_callback", name, func() error {
		cfg.OnResponse(response)
		return nil
	})
}

func (d *Dispatcher) format(template string, args []any) (out string) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Debug("formatter panicked",
				logging.String(logging.FieldEventType, "format_failed"),
				logging.Any("panic", r),
			)
			out = template
		}
	}()
	return d.formatter.Format(template, args)
}

// call runs one sink step and reports whether it succeeded. Errors and
// panics are logged and never reach the caller or the remaining sinks.
func (d *Dispatcher) call(ctx context.Context, sink, name string, fn func() error) bool {
	var err error
	func() {
		defer func() {
			if r := recover(); r != nil {
				err = fmt.Errorf("sink panic: %v", r)
			}
		}()
		err = fn()
	}()
	if err == nil {
		return true
	}
	d.logger.LogAttrs(ctx, slog.LevelDebug, "sink failed",
		logging.String(logging.FieldEventType, "sink_failed"),
		logging.String(logging.FieldSink, sink),
		logging.Category(name),
		logging.Error(err),
	)
	return false
}
