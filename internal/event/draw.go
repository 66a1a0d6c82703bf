package event

import (
	"time"

	"dbglog/internal/geom"
)

// Draw is an immediate debug shape. Unlike the VisualLog annotation, a call
// may carry any number of draws, and they are emitted before the event is
// gated: a filtered-out message still draws.
//
// Params1 and Params2 carry shape-specific values:
//
//	capsule   Params1.X half height, Params1.Y radius
//	cone      Params1 direction, Params2 (length, angle width, angle height)
//	cylinder  Params1 end, Params2.X radius
//	arrow     Params1 end, Params2.X arrow head size
//	line      Params1 end
//	point     Params1.X size
//	sphere    Params1.X radius
//	box       Params1 extent
//	string    Text at Location
type Draw struct {
	Shape      Shape
	Location   geom.Vector
	Rotation   geom.Rotator
	Params1    geom.Vector
	Params2    geom.Vector
	Segments   int
	Text       string
	Color      geom.Color
	Persistent bool
	// LifeTime below zero means a single frame.
	LifeTime  time.Duration
	Thickness float64
}

// DrawOption adjusts a draw after its positional values are filled.
type DrawOption func(*Draw)

// DrawColor overrides the draw color (orange by default).
func DrawColor(c geom.Color) DrawOption {
	return func(d *Draw) { d.Color = c }
}

// Persistent keeps the shape until it is cleared.
func Persistent() DrawOption {
	return func(d *Draw) { d.Persistent = true }
}

// LifeTime keeps the shape for d.
func LifeTime(d time.Duration) DrawOption {
	return func(dr *Draw) { dr.LifeTime = d }
}

// Thickness sets the line thickness.
func Thickness(t float64) DrawOption {
	return func(d *Draw) { d.Thickness = t }
}

func (b *Builder) draw(shape Shape, fill func(*Draw), opts []DrawOption) *Builder {
	d := Draw{Shape: shape, Color: geom.Orange, LifeTime: Unset}
	fill(&d)
	for _, opt := range opts {
		opt(&d)
	}
	b.cfg.Draws = append(b.cfg.Draws, d)
	return b
}

// DrawCapsule draws a capsule centered on center.
func (b *Builder) DrawCapsule(center geom.Vector, halfHeight, radius float64, rotation geom.Rotator, opts ...DrawOption) *Builder {
	return b.draw(ShapeCapsule, func(d *Draw) {
		d.Location = center
		d.Rotation = rotation
		d.Params1 = geom.Vec(halfHeight, radius, 0)
	}, opts)
}

// DrawCone draws a cone from origin along direction. Angles are in degrees.
func (b *Builder) DrawCone(origin, direction geom.Vector, length, angleWidth, angleHeight float64, sides int, opts ...DrawOption) *Builder {
	return b.draw(ShapeCone, func(d *Draw) {
		d.Location = origin
		d.Params1 = direction
		d.Params2 = geom.Vec(length, angleWidth, angleHeight)
		d.Segments = sides
	}, opts)
}

// DrawCylinder draws a cylinder between start and end.
func (b *Builder) DrawCylinder(start, end geom.Vector, radius float64, segments int, opts ...DrawOption) *Builder {
	return b.draw(ShapeCylinder, func(d *Draw) {
		d.Location = start
		d.Params1 = end
		d.Params2 = geom.Vec(radius, 0, 0)
		d.Segments = segments
	}, opts)
}

// DrawArrow draws a directional arrow from start to end.
func (b *Builder) DrawArrow(start, end geom.Vector, arrowSize float64, opts ...DrawOption) *Builder {
	return b.draw(ShapeArrow, func(d *Draw) {
		d.Location = start
		d.Params1 = end
		d.Params2 = geom.Vec(arrowSize, 0, 0)
	}, opts)
}

// DrawLine draws a segment from start to end.
func (b *Builder) DrawLine(start, end geom.Vector, opts ...DrawOption) *Builder {
	return b.draw(ShapeLine, func(d *Draw) {
		d.Location = start
		d.Params1 = end
	}, opts)
}

func (b *Builder) DrawPoint(position geom.Vector, size float64, opts ...DrawOption) *Builder {
	return b.draw(ShapePoint, func(d *Draw) {
		d.Location = position
		d.Params1 = geom.Vec(size, 0, 0)
	}, opts)
}

// DrawSphere draws a wire sphere.
func (b *Builder) DrawSphere(center geom.Vector, radius float64, segments int, opts ...DrawOption) *Builder {
	return b.draw(ShapeSphere, func(d *Draw) {
		d.Location = center
		d.Params1 = geom.Vec(radius, 0, 0)
		d.Segments = segments
	}, opts)
}

// DrawString places text in the world at location.
func (b *Builder) DrawString(location geom.Vector, text string, opts ...DrawOption) *Builder {
	return b.draw(ShapeString, func(d *Draw) {
		d.Location = location
		d.Text = text
	}, opts)
}

// DrawBox draws an axis-aligned box of half size extent around center.
func (b *Builder) DrawBox(center, extent geom.Vector, opts ...DrawOption) *Builder {
	return b.draw(ShapeBox, func(d *Draw) {
		d.Location = center
		d.Params1 = extent
	}, opts)
}
