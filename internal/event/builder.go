package event

import (
	"fmt"
	"slices"
	"time"

	"dbglog/internal/category"
	"dbglog/internal/geom"
	"dbglog/internal/severity"
)

// Builder accumulates the options of one log call. Every setter returns the
// same builder so options can be chained in any order:
//
//	event.New().Warn().Screen().Prefix("AI").Build()
//
// A Builder is not safe for concurrent use and is meant to live for a single
// call.
type Builder struct {
	cfg Config
}

// New returns a builder holding the default options.
func New() *Builder {
	return &Builder{cfg: Default()}
}

// Build returns the accumulated options. The builder may keep being used;
// later setters do not affect configs already built.
func (b *Builder) Build() Config {
	cfg := b.cfg
	cfg.Draws = slices.Clone(b.cfg.Draws)
	return cfg
}

// Category selects a predefined category, used verbatim.
func (b *Builder) Category(c category.Category) *Builder {
	b.cfg.Category = c
	return b
}

// CategoryName selects a runtime category. The name is namespaced with the
// runtime prefix when the event is dispatched.
func (b *Builder) CategoryName(name string) *Builder {
	b.cfg.CategoryName = name
	return b
}

// Severity sets the event severity.
func (b *Builder) Severity(s severity.Severity) *Builder {
	b.cfg.Severity = s
	return b
}

// Verbose, Warn and Error are shorthands for Severity.
func (b *Builder) Verbose() *Builder { return b.Severity(severity.Verbose) }
func (b *Builder) Warn() *Builder    { return b.Severity(severity.Warning) }
func (b *Builder) Error() *Builder   { return b.Severity(severity.Error) }

// Fatal marks the event as process terminating. The console sink exits
// after writing it.
func (b *Builder) Fatal() *Builder { return b.Severity(severity.Fatal) }

// NoLogging disables the event entirely.
func (b *Builder) NoLogging() *Builder { return b.Severity(severity.NoLogging) }

// Condition drops the event when ok is false.
func (b *Builder) Condition(ok bool) *Builder {
	b.cfg.Condition = ok
	return b
}

// Console sends the event to the console only. This is the default.
func (b *Builder) Console() *Builder {
	b.cfg.Destination = Console
	return b
}

// Screen sends the event to the overlay only.
func (b *Builder) Screen() *Builder {
	b.cfg.Destination = Screen
	return b
}

// ScreenAndConsole sends the event to the overlay and the console.
func (b *Builder) ScreenAndConsole() *Builder {
	b.cfg.Destination = Both
	return b
}

// Destination sets the primary sinks directly.
func (b *Builder) Destination(d Destination) *Builder {
	b.cfg.Destination = d
	return b
}

// Prefix adds a "[tag] " segment in front of the message.
func (b *Builder) Prefix(tag string) *Builder {
	b.cfg.Prefix = tag
	return b
}

// LogDateAndTime prefixes the message with the current time in the default
// layout.
func (b *Builder) LogDateAndTime() *Builder {
	b.cfg.Timestamp = true
	return b
}

// LogDateAndTimeFormat prefixes the message with the current time rendered
// by a strftime layout such as "%H:%M:%S.%L".
func (b *Builder) LogDateAndTimeFormat(layout string) *Builder {
	b.cfg.Timestamp = true
	b.cfg.TimestampFormat = layout
	return b
}

// LogSourceLoc adds the call site file, line and function.
func (b *Builder) LogSourceLoc() *Builder {
	b.cfg.SourceLocation = true
	return b
}

// Context attaches an execution context descriptor, rendered as "[desc] ".
func (b *Builder) Context(desc fmt.Stringer) *Builder {
	b.cfg.Context = desc
	return b
}

// ScrnColor sets the overlay color.
func (b *Builder) ScrnColor(c geom.Color) *Builder {
	b.cfg.ScreenColor = c
	return b
}

// ScrnDuration sets how long the overlay entry stays visible.
func (b *Builder) ScrnDuration(d time.Duration) *Builder {
	b.cfg.ScreenDuration = d
	return b
}

// ScrnKey mixes an explicit key into the overlay identity, so one call site
// can own several overlay lines.
func (b *Builder) ScrnKey(key int32) *Builder {
	b.cfg.ScreenKey = key
	b.cfg.HasScreenKey = true
	return b
}

// NotifyDuration sets how long a toast stays up.
func (b *Builder) NotifyDuration(d time.Duration) *Builder {
	b.cfg.NotifyDuration = d
	return b
}

// LogToSlateNotify sends the event to the notification sink. With only set,
// console and overlay output is skipped.
func (b *Builder) LogToSlateNotify(only bool) *Builder {
	b.cfg.ToNotify = true
	b.cfg.OnlyNotify = only
	return b
}

// LogToMessageDialog shows the event in a blocking dialog of the given kind.
// onResponse may be nil. With only set, console and overlay output is skipped.
func (b *Builder) LogToMessageDialog(kind DialogKind, onResponse func(Response), only bool) *Builder {
	b.cfg.ToDialog = true
	b.cfg.DialogKind = kind
	b.cfg.OnResponse = onResponse
	b.cfg.OnlyDialog = only
	return b
}

// LogToMessageLog appends the event to the persistent message log and, with
// showNow, asks the log to open its window.
func (b *Builder) LogToMessageLog(showNow bool) *Builder {
	b.cfg.ToMessageLog = true
	b.cfg.ShowLogNow = showNow
	return b
}

// visual claims the annotation slot. Only the first VisualLog call on a
// builder has any effect.
func (b *Builder) visual(owner Owner, shape Shape, text bool, fill func(*Spatial), opts []SpatialOption) *Builder {
	if b.cfg.Spatial.Present() {
		return b
	}
	s := defaultSpatial()
	s.Owner = owner
	s.Shape = shape
	s.Text = text
	s.OnlyVisual = true
	if fill != nil {
		fill(&s)
	}
	for _, opt := range opts {
		opt(&s)
	}
	b.cfg.Spatial = s
	return b
}

// VisualLogText records the message against owner without any geometry.
func (b *Builder) VisualLogText(owner Owner, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeNone, true, nil, opts)
}

// VisualLogSphere draws a sphere of radius around center.
func (b *Builder) VisualLogSphere(owner Owner, center geom.Vector, radius float64, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeSphere, false, func(s *Spatial) {
		s.Location = center
		s.Params1 = geom.Vec(radius, 0, 0)
	}, opts)
}

// VisualLogBox draws a box spanning lo..hi, offset by location.
func (b *Builder) VisualLogBox(owner Owner, lo, hi, location geom.Vector, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeBox, false, func(s *Spatial) {
		s.Location = location
		s.Params1 = lo
		s.Params2 = hi
	}, opts)
}

// VisualLogBounds draws the local bounds of actor at its current transform.
// It does nothing when actor is nil or reports itself invalid.
func (b *Builder) VisualLogBounds(owner Owner, actor Actor, opts ...SpatialOption) *Builder {
	if actor == nil || !actor.Valid() {
		return b
	}
	bounds := actor.LocalBounds()
	opts = append([]SpatialOption{WithRotation(actor.Rotation())}, opts...)
	return b.VisualLogBox(owner, bounds.Min, bounds.Max, actor.Location(), opts...)
}

// VisualLogCone draws a cone from origin along direction. angle is in degrees.
func (b *Builder) VisualLogCone(owner Owner, origin, direction geom.Vector, length, angle float64, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeCone, false, func(s *Spatial) {
		s.Location = origin
		s.Params1 = direction
		s.Params2 = geom.Vec(length, angle, 0)
	}, opts)
}

// VisualLogLine draws a segment from start to end.
func (b *Builder) VisualLogLine(owner Owner, start, end geom.Vector, thickness float64, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeLine, false, func(s *Spatial) {
		s.Location = start
		s.Params1 = end
		s.Params2 = geom.Vec(thickness, 0, 0)
	}, opts)
}

// VisualLogArrow draws an arrow pointing from start to end.
func (b *Builder) VisualLogArrow(owner Owner, start, end geom.Vector, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeArrow, false, func(s *Spatial) {
		s.Location = start
		s.Params1 = end
	}, opts)
}

// VisualLogDisk draws a flat disk around center facing up.
func (b *Builder) VisualLogDisk(owner Owner, center, up geom.Vector, radius, thickness float64, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeDisk, false, func(s *Spatial) {
		s.Location = center
		s.Params1 = up
		s.Params2 = geom.Vec(radius, thickness, 0)
	}, opts)
}

// VisualLogCapsule draws a capsule standing on base.
func (b *Builder) VisualLogCapsule(owner Owner, base geom.Vector, rotation geom.Rotator, halfHeight, radius float64, opts ...SpatialOption) *Builder {
	return b.visual(owner, ShapeCapsule, false, func(s *Spatial) {
		s.Location = base
		s.Rotation = rotation
		s.Params1 = geom.Vec(halfHeight, radius, 0)
	}, opts)
}
