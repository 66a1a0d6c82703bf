package dispatch

import (
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"dbglog/internal/event"
)

var (
	siteCounter atomic.Uint64
	implicit    sync.Map // uintptr -> *Site
)

// Site identifies one logging call site. Its id is assigned once and never
// changes, so repeated calls from the same site produce the same overlay key.
type Site struct {
	id   uint64
	pc   uintptr
	loc  event.Location
	once sync.Once
}

// NewSite declares a call site at the caller's position. Declare it once,
// typically as a package-level variable, and pass it to LogAt.
func NewSite() *Site {
	var pcs [1]uintptr
	runtime.Callers(2, pcs[:])
	s := &Site{id: siteCounter.Add(1), pc: pcs[0]}
	s.resolve()
	return s
}

// ID returns the site identifier.
func (s *Site) ID() uint64 { return s.id }

// Location returns the source position of the site.
func (s *Site) Location() event.Location {
	s.resolve()
	return s.loc
}

func (s *Site) resolve() {
	s.once.Do(func() {
		if s.pc == 0 {
			return
		}
		frame, _ := runtime.CallersFrames([]uintptr{s.pc}).Next()
		s.loc = event.Location{
			File:     frame.File,
			Line:     frame.Line,
			Function: shortFunction(frame.Function),
		}
	})
}

// siteForPC returns the implicit site for a program counter, creating it on
// first use.
func siteForPC(pc uintptr) *Site {
	if v, ok := implicit.Load(pc); ok {
		return v.(*Site)
	}
	// A racing goroutine may burn an id here; the stored site keeps its own.
	actual, _ := implicit.LoadOrStore(pc, &Site{id: siteCounter.Add(1), pc: pc})
	return actual.(*Site)
}

// shortFunction trims the import path from a fully qualified function name.
func shortFunction(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
