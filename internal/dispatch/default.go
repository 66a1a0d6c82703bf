package dispatch

import (
	"context"
	"os"
	"runtime"
	"sync"
	"sync/atomic"

	"dbglog/internal/category"
	"dbglog/internal/event"
	"dbglog/internal/sinks/console"
)

var (
	defaultDispatcher atomic.Pointer[Dispatcher]
	defaultOnce       sync.Once
)

// Default returns the process-wide dispatcher. Until SetDefault is called it
// uses category.Default() and writes pretty console output to stderr.
func Default() *Dispatcher {
	defaultOnce.Do(func() {
		if defaultDispatcher.Load() != nil {
			return
		}
		sink, _ := console.New(console.Options{Writer: os.Stderr})
		d := New(Options{Registry: category.Default()})
		if sink != nil {
			d.sinks.Console = sink
		}
		defaultDispatcher.CompareAndSwap(nil, d)
	})
	return defaultDispatcher.Load()
}

// SetDefault replaces the process-wide dispatcher and returns the previous
// one (nil if Default was never used).
func SetDefault(d *Dispatcher) *Dispatcher {
	if d == nil {
		panic("dispatch: SetDefault with nil dispatcher")
	}
	return defaultDispatcher.Swap(d)
}

// Log dispatches template with default options through the process-wide
// dispatcher.
func Log(template string, args ...any) {
	cfg := event.Default()
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	Default().dispatch(context.Background(), siteForPC(pcs[0]), cfg, template, args)
}

// LogV dispatches template with the options accumulated by b. A nil builder
// means default options.
func LogV(b *event.Builder, template string, args ...any) {
	cfg := event.Default()
	if b != nil {
		cfg = b.Build()
	}
	d := Default()
	d.draw(context.Background(), &cfg)
	if cfg.Dropped() {
		return
	}
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	d.dispatch(context.Background(), siteForPC(pcs[0]), cfg, template, args)
}
