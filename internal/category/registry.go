// Package category tracks which named logging channels are enabled.
//
// The Registry is shared by every goroutine that logs and by the control
// surface that toggles categories. Unknown names are treated as enabled and
// recorded on first sight, so filtering can only ever hide output somebody
// explicitly switched off. Names compare case-insensitively; the spelling
// seen first is the one reported by List.
package category

import (
	"sort"
	"sync"
	"sync/atomic"

	"golang.org/x/text/cases"
)

const (
	// DefaultName is the category used when an event names none.
	DefaultName = "dbg"
	// RuntimePrefix is prepended to runtime-supplied category names so they
	// cannot collide with predefined categories.
	RuntimePrefix = "dbg"
)

// Category is a reference to a predefined category. Its name is used verbatim.
type Category struct {
	name string
}

// New declares a predefined category.
func New(name string) Category {
	return Category{name: name}
}

// Name returns the category name.
func (c Category) Name() string { return c.name }

// IsZero reports whether c was never declared.
func (c Category) IsZero() bool { return c.name == "" }

func (c Category) String() string { return c.name }

// Log is the default category.
var Log = New(DefaultName)

// State is a snapshot of one registered category.
type State struct {
	Name    string `json:"name"`
	Enabled bool   `json:"enabled"`
}

type entry struct {
	name    string
	enabled atomic.Bool
}

// Registry maps category names to their enabled state. The zero value is not
// usable; construct with NewRegistry.
type Registry struct {
	mu     sync.RWMutex
	exact  map[string]*entry
	folded map[string]*entry
}

// NewRegistry returns a registry seeded with the default category (enabled)
// and any additional names, also enabled.
func NewRegistry(seed ...string) *Registry {
	r := &Registry{
		exact:  make(map[string]*entry),
		folded: make(map[string]*entry),
	}
	r.insertLocked(DefaultName, true)
	for _, name := range seed {
		r.findOrInsertLocked(name, true)
	}
	return r
}

var defaultRegistry = NewRegistry()

// Default returns the process-wide registry.
func Default() *Registry {
	return defaultRegistry
}

func fold(name string) string {
	return cases.Fold().String(name)
}

// SameName reports whether a and b name the same category.
func SameName(a, b string) bool {
	return fold(a) == fold(b)
}

// IsDisabled reports whether name is registered and switched off. A name
// seen for the first time is registered as enabled and reported as enabled.
func (r *Registry) IsDisabled(name string) bool {
	r.mu.RLock()
	e, ok := r.exact[name]
	r.mu.RUnlock()
	if ok {
		return !e.enabled.Load()
	}

	r.mu.Lock()
	e, _ = r.findOrInsertLocked(name, true)
	r.mu.Unlock()
	return !e.enabled.Load()
}

// Lookup reports the state of name without registering it.
func (r *Registry) Lookup(name string) (enabled bool, registered bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.exact[name]
	if !ok {
		e, ok = r.folded[fold(name)]
	}
	if !ok {
		return true, false
	}
	return e.enabled.Load(), true
}

// SetState overwrites the state of name, registering it when absent.
// created reports whether the entry was new.
func (r *Registry) SetState(name string, enabled bool) (created bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, created := r.findOrInsertLocked(name, enabled)
	e.enabled.Store(enabled)
	return created
}

// SetAllStates overwrites every registered category and returns how many
// were touched. It never registers new names.
func (r *Registry) SetAllStates(enabled bool) int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, e := range r.folded {
		e.enabled.Store(enabled)
	}
	return len(r.folded)
}

// List returns every registered category ordered by name.
func (r *Registry) List() []State {
	r.mu.RLock()
	out := make([]State, 0, len(r.folded))
	for _, e := range r.folded {
		out = append(out, State{Name: e.name, Enabled: e.enabled.Load()})
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered categories.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.folded)
}

func (r *Registry) findOrInsertLocked(name string, enabled bool) (*entry, bool) {
	if e, ok := r.exact[name]; ok {
		return e, false
	}
	key := fold(name)
	if e, ok := r.folded[key]; ok {
		r.exact[name] = e
		return e, false
	}
	return r.insertLocked(name, enabled), true
}

func (r *Registry) insertLocked(name string, enabled bool) *entry {
	e := &entry{name: name}
	e.enabled.Store(enabled)
	r.exact[name] = e
	r.folded[fold(name)] = e
	return e
}
