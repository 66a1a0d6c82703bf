// Package event describes a single log call: the options accumulated by the
// fluent Builder and the immutable Config the dispatcher consumes.
package event

import (
	"fmt"
	"time"

	"dbglog/internal/category"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
)

// Destination selects the primary sinks of an event.
type Destination uint8

const (
	// Console writes to the console sink only.
	Console Destination = iota
	// Screen writes to the on-screen overlay only.
	Screen
	// Both writes to console and overlay.
	Both
)

func (d Destination) String() string {
	switch d {
	case Screen:
		return "screen"
	case Both:
		return "both"
	default:
		return "console"
	}
}

// IncludesScreen reports whether the overlay receives the event.
func (d Destination) IncludesScreen() bool { return d == Screen || d == Both }

// IncludesConsole reports whether the console receives the event.
func (d Destination) IncludesConsole() bool { return d == Console || d == Both }

// Unset is the duration sentinel for "no explicit duration".
const Unset time.Duration = -1

// Location is the source position of a call site.
type Location struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// IsZero reports whether no location was captured.
func (l Location) IsZero() bool { return l.File == "" && l.Line == 0 }

// Process describes the execution context that emitted an event.
type Process struct {
	Mode     string
	Instance int
}

func (p Process) String() string {
	mode := p.Mode
	if mode == "" {
		mode = "Standalone"
	}
	return fmt.Sprintf("%s | Instance: %d", mode, p.Instance)
}

// Config is the snapshot of every option set for one log call.
type Config struct {
	Severity    severity.Severity
	Condition   bool
	Destination Destination

	Category     category.Category
	CategoryName string

	Prefix          string
	Timestamp       bool
	TimestampFormat string
	SourceLocation  bool
	Context         fmt.Stringer

	ScreenColor    geom.Color
	ScreenDuration time.Duration
	ScreenKey      int32
	HasScreenKey   bool

	ToNotify       bool
	OnlyNotify     bool
	NotifyDuration time.Duration

	ToDialog   bool
	OnlyDialog bool
	DialogKind DialogKind
	OnResponse func(Response)

	ToMessageLog bool
	ShowLogNow   bool

	Spatial Spatial
	Draws   []Draw
}

// Default returns the options of a call with no builder arguments.
func Default() Config {
	return Config{
		Severity:       severity.Display,
		Condition:      true,
		Destination:    Console,
		ScreenDuration: Unset,
		NotifyDuration: Unset,
		DialogKind:     DialogOk,
		Spatial:        defaultSpatial(),
	}
}

// Dropped reports whether the cheap gate rejects the event.
func (c *Config) Dropped() bool {
	return c.Severity == severity.NoLogging || !c.Condition
}

// ApplyDefaults fills screen color, screen duration and notification expiry
// from the severity policy when they are still unset.
func (c *Config) ApplyDefaults() {
	d := severity.Policy(c.Severity)
	if c.ScreenColor.IsTransparent() {
		c.ScreenColor = d.ScreenColor
	}
	if c.ScreenDuration < 0 {
		c.ScreenDuration = d.ScreenDuration
	}
	if c.NotifyDuration < 0 {
		c.NotifyDuration = d.NotifyExpire
	}
}

// ResolveCategory picks the category name in precedence order: an explicit
// predefined category, then a runtime name (prefixed), then the default.
func (c *Config) ResolveCategory() string {
	if !c.Category.IsZero() {
		return c.Category.Name()
	}
	if c.CategoryName != "" && !category.SameName(c.CategoryName, category.DefaultName) {
		return category.RuntimePrefix + c.CategoryName
	}
	return category.DefaultName
}
