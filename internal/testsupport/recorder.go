package testsupport

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"dbglog/internal/event"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
)

// Sink names used in recorded calls.
const (
	SinkConsole    = "console"
	SinkOverlay    = "overlay"
	SinkNotify     = "notify"
	SinkMessageLog = "message_log"
	SinkLogOpen    = "message_log_open"
	SinkDialog     = "dialog"
	SinkSpatial    = "spatial"
	SinkDraw       = "draw"
	SinkTerminate  = "terminate"
)

// Call is one recorded sink invocation.
type Call struct {
	Sink     string
	Category string
	Severity severity.Severity
	Message  string
	Location event.Location
	Key      uint64
	Duration time.Duration
	Color    geom.Color
	Kind     event.DialogKind
	Spatial  event.Spatial
	Draw     event.Draw
}

// Recorder implements every dispatch sink interface and records calls.
// Failures and panics can be injected per sink name.
type Recorder struct {
	mu    sync.Mutex
	calls []Call

	// Armed is reported by Recording.
	Armed atomic.Bool
	// Answer is returned by Ask.
	Answer event.Response

	fail   map[string]error
	panics map[string]bool
}

// NewRecorder returns an empty recorder with the spatial sink armed.
func NewRecorder() *Recorder {
	r := &Recorder{Answer: event.ResponseOk}
	r.Armed.Store(true)
	return r
}

// FailWith makes the named sink return err.
func (r *Recorder) FailWith(sink string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.fail == nil {
		r.fail = make(map[string]error)
	}
	r.fail[sink] = err
}

// PanicOn makes the named sink panic.
func (r *Recorder) PanicOn(sink string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.panics == nil {
		r.panics = make(map[string]bool)
	}
	r.panics[sink] = true
}

func (r *Recorder) record(c Call) error {
	r.mu.Lock()
	r.calls = append(r.calls, c)
	shouldPanic := r.panics[c.Sink]
	err := r.fail[c.Sink]
	r.mu.Unlock()
	if shouldPanic {
		panic(c.Sink + " sink exploded")
	}
	return err
}

// Calls returns a copy of every recorded call in order.
func (r *Recorder) Calls() []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Call(nil), r.calls...)
}

// CallsTo returns the recorded calls for one sink.
func (r *Recorder) CallsTo(sink string) []Call {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []Call
	for _, c := range r.calls {
		if c.Sink == sink {
			out = append(out, c)
		}
	}
	return out
}

// Count returns the number of recorded calls.
func (r *Recorder) Count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.calls)
}

func (r *Recorder) Write(category string, sev severity.Severity, loc event.Location, message string) error {
	return r.record(Call{Sink: SinkConsole, Category: category, Severity: sev, Location: loc, Message: message})
}

func (r *Recorder) Terminate(category, message string) {
	_ = r.record(Call{Sink: SinkTerminate, Category: category, Message: message})
}

func (r *Recorder) Upsert(key uint64, duration time.Duration, color geom.Color, message string) error {
	return r.record(Call{Sink: SinkOverlay, Key: key, Duration: duration, Color: color, Message: message})
}

func (r *Recorder) Show(message string, expire time.Duration) error {
	return r.record(Call{Sink: SinkNotify, Message: message, Duration: expire})
}

func (r *Recorder) Append(category string, sev severity.Severity, message string) error {
	return r.record(Call{Sink: SinkMessageLog, Category: category, Severity: sev, Message: message})
}

func (r *Recorder) Open(sev severity.Severity) error {
	return r.record(Call{Sink: SinkLogOpen, Severity: sev})
}

func (r *Recorder) Ask(_ context.Context, message, title string, kind event.DialogKind) (event.Response, error) {
	if err := r.record(Call{Sink: SinkDialog, Category: title, Message: message, Kind: kind}); err != nil {
		return event.ResponseNo, err
	}
	return r.Answer, nil
}

func (r *Recorder) Recording() bool { return r.Armed.Load() }

func (r *Recorder) Emit(annotation event.Spatial, category string, sev severity.Severity, message string) error {
	return r.record(Call{Sink: SinkSpatial, Spatial: annotation, Category: category, Severity: sev, Message: message})
}

func (r *Recorder) Draw(d event.Draw, category string) error {
	return r.record(Call{Sink: SinkDraw, Draw: d, Category: category})
}

// CountingFormatter wraps a formatter and counts invocations.
type CountingFormatter struct {
	Next interface {
		Format(template string, args []any) string
	}
	calls atomic.Int64
}

// Format delegates to Next, or returns template unchanged without one.
func (f *CountingFormatter) Format(template string, args []any) string {
	f.calls.Add(1)
	if f.Next == nil {
		return template
	}
	return f.Next.Format(template, args)
}

// Calls returns how many times Format ran.
func (f *CountingFormatter) Calls() int64 { return f.calls.Load() }
