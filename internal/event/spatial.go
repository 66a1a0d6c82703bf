package event

import (
	"fmt"

	"dbglog/internal/geom"
)

// Shape is the geometry attached to a spatial annotation.
type Shape uint8

const (
	ShapeNone Shape = iota
	ShapeSphere
	ShapeBox
	ShapeCone
	ShapeLine
	ShapeArrow
	ShapeDisk
	ShapeCapsule
	ShapeCylinder
	ShapePoint
	ShapeString
)

var shapeNames = [...]string{
	ShapeNone:     "none",
	ShapeSphere:   "sphere",
	ShapeBox:      "box",
	ShapeCone:     "cone",
	ShapeLine:     "line",
	ShapeArrow:    "arrow",
	ShapeDisk:     "disk",
	ShapeCapsule:  "capsule",
	ShapeCylinder: "cylinder",
	ShapePoint:    "point",
	ShapeString:   "string",
}

func (s Shape) String() string {
	if int(s) < len(shapeNames) {
		return shapeNames[s]
	}
	return fmt.Sprintf("shape(%d)", uint8(s))
}

// MarshalText renders the shape name for JSON recordings.
func (s Shape) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText parses a shape name.
func (s *Shape) UnmarshalText(b []byte) error {
	for i, name := range shapeNames {
		if name == string(b) {
			*s = Shape(i)
			return nil
		}
	}
	return fmt.Errorf("unknown shape %q", string(b))
}

// Owner identifies the object a spatial annotation is recorded against.
type Owner interface {
	OwnerName() string
}

// Actor is an Owner placed in the world with local-space bounds.
type Actor interface {
	Owner
	Valid() bool
	LocalBounds() geom.Box
	Location() geom.Vector
	Rotation() geom.Rotator
}

// Spatial is the geometric annotation emitted alongside a message.
//
// Params1 and Params2 carry shape-specific values:
//
//	sphere   Params1.X radius
//	box      Params1 min extent, Params2 max extent
//	cone     Params1 direction, Params2.X length, Params2.Y angle
//	line     Params1 end, Params2.X thickness
//	arrow    Params1 end
//	disk     Params1 up direction, Params2.X radius, Params2.Y thickness
//	capsule  Params1.X half height, Params1.Y radius
type Spatial struct {
	Owner      Owner
	Shape      Shape
	Text       bool
	Location   geom.Vector
	Rotation   geom.Rotator
	Scale      geom.Vector
	Params1    geom.Vector
	Params2    geom.Vector
	Color      geom.Color
	Wireframe  bool
	OnlyVisual bool
}

func defaultSpatial() Spatial {
	return Spatial{Scale: geom.One, Color: geom.Orange}
}

// Present reports whether an annotation was requested.
func (s Spatial) Present() bool {
	return s.Shape != ShapeNone || s.Text
}

// OwnerName returns the owner's name, or "" without an owner.
func (s Spatial) OwnerName() string {
	if s.Owner == nil {
		return ""
	}
	return s.Owner.OwnerName()
}

// SpatialOption adjusts an annotation after a VisualLog setter filled its
// positional values.
type SpatialOption func(*Spatial)

// WithColor overrides the shape color (orange by default).
func WithColor(c geom.Color) SpatialOption {
	return func(s *Spatial) { s.Color = c }
}

// WithRotation sets the shape rotation.
func WithRotation(r geom.Rotator) SpatialOption {
	return func(s *Spatial) { s.Rotation = r }
}

// Wireframe draws the shape as wireframe.
func Wireframe() SpatialOption {
	return func(s *Spatial) { s.Wireframe = true }
}

// AlsoToLog keeps the event flowing to the regular sinks after the spatial
// sink. Without it, an annotated event stops at the spatial sink.
func AlsoToLog() SpatialOption {
	return func(s *Spatial) { s.OnlyVisual = false }
}
