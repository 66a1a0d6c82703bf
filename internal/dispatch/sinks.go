package dispatch

import (
	"context"
	"time"

	"dbglog/internal/event"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
)

// Console writes an event to the process log.
type Console interface {
	Write(category string, sev severity.Severity, loc event.Location, message string) error
}

// Terminator is implemented by console sinks that end the process after a
// Fatal event. It runs after every other sink has seen the event.
type Terminator interface {
	Terminate(category, message string)
}

// Overlay shows a message on screen. Entries with the same key replace each
// other; key 0 always adds a new entry.
type Overlay interface {
	Upsert(key uint64, duration time.Duration, color geom.Color, message string) error
}

// Notifier shows a transient toast.
type Notifier interface {
	Show(message string, expire time.Duration) error
}

// MessageLog is a persistent, browsable message log.
type MessageLog interface {
	Append(category string, sev severity.Severity, message string) error
	// Open brings the log window forward, filtered to sev.
	Open(sev severity.Severity) error
}

// Dialog asks the user a question and blocks until it is answered.
type Dialog interface {
	Ask(ctx context.Context, message, title string, kind event.DialogKind) (event.Response, error)
}

// Spatial records geometric annotations. Emit is only called while
// Recording reports true.
type Spatial interface {
	Recording() bool
	Emit(annotation event.Spatial, category string, sev severity.Severity, message string) error
}

// Drawer renders immediate debug shapes. Unlike Spatial it is not bound to
// a recording state; the sink decides what to do with a draw.
type Drawer interface {
	Draw(d event.Draw, category string) error
}

// Sinks is the set of outputs a Dispatcher fans out to. Any member may be
// nil; the matching pipeline step is then skipped.
type Sinks struct {
	Console    Console
	Overlay    Overlay
	Notify     Notifier
	MessageLog MessageLog
	Dialog     Dialog
	Spatial    Spatial
	Drawer     Drawer
}
