// Package geom holds the small value types shared by log events and the
// spatial annotation sink: vectors, rotators, boxes and RGBA colors.
package geom

import (
	"fmt"
	"strings"
)

// Vector is a point or direction in world space.
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Zero and One are the common identity vectors.
var (
	Zero = Vector{}
	One  = Vector{X: 1, Y: 1, Z: 1}
)

// Vec is shorthand for Vector{x, y, z}.
func Vec(x, y, z float64) Vector {
	return Vector{X: x, Y: y, Z: z}
}

// Add returns v+o.
func (v Vector) Add(o Vector) Vector {
	return Vector{X: v.X + o.X, Y: v.Y + o.Y, Z: v.Z + o.Z}
}

// Sub returns v-o.
func (v Vector) Sub(o Vector) Vector {
	return Vector{X: v.X - o.X, Y: v.Y - o.Y, Z: v.Z - o.Z}
}

// Scale multiplies every component by s.
func (v Vector) Scale(s float64) Vector {
	return Vector{X: v.X * s, Y: v.Y * s, Z: v.Z * s}
}

func (v Vector) String() string {
	return fmt.Sprintf("X=%.3f Y=%.3f Z=%.3f", v.X, v.Y, v.Z)
}

// Rotator is an orientation in degrees.
type Rotator struct {
	Pitch float64 `json:"pitch"`
	Yaw   float64 `json:"yaw"`
	Roll  float64 `json:"roll"`
}

func (r Rotator) String() string {
	return fmt.Sprintf("P=%.3f Y=%.3f R=%.3f", r.Pitch, r.Yaw, r.Roll)
}

// Box is an axis aligned bounding box.
type Box struct {
	Min Vector `json:"min"`
	Max Vector `json:"max"`
}

// Center returns the midpoint of the box.
func (b Box) Center() Vector {
	return b.Min.Add(b.Max).Scale(0.5)
}

// Extent returns the half size of the box along each axis.
func (b Box) Extent() Vector {
	return b.Max.Sub(b.Min).Scale(0.5)
}

// Color is an 8-bit RGBA color. The zero value is Transparent, which log
// events use to mean "no color chosen".
type Color struct {
	R uint8 `json:"r"`
	G uint8 `json:"g"`
	B uint8 `json:"b"`
	A uint8 `json:"a"`
}

// Named colors used by severity defaults and spatial shapes.
var (
	Transparent = Color{}
	White       = Color{R: 255, G: 255, B: 255, A: 255}
	Black       = Color{A: 255}
	Red         = Color{R: 255, A: 255}
	Green       = Color{G: 255, A: 255}
	Blue        = Color{B: 255, A: 255}
	Yellow      = Color{R: 255, G: 255, A: 255}
	Orange      = Color{R: 243, G: 156, B: 18, A: 255}
)

// RGB returns an opaque color.
func RGB(r, g, b uint8) Color {
	return Color{R: r, G: g, B: b, A: 255}
}

// IsTransparent reports whether c is the unset sentinel.
func (c Color) IsTransparent() bool {
	return c == Transparent
}

// Hex renders the color as #rrggbb, dropping alpha.
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func (c Color) String() string {
	if name, ok := colorNames[c]; ok {
		return name
	}
	return c.Hex()
}

var colorNames = map[Color]string{
	Transparent: "transparent",
	White:       "white",
	Black:       "black",
	Red:         "red",
	Green:       "green",
	Blue:        "blue",
	Yellow:      "yellow",
	Orange:      "orange",
}

// ParseColor accepts a color name or a #rrggbb hex string.
func ParseColor(value string) (Color, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	for c, name := range colorNames {
		if name == v {
			return c, nil
		}
	}
	if strings.HasPrefix(v, "#") && len(v) == 7 {
		var r, g, b uint8
		if _, err := fmt.Sscanf(v, "#%02x%02x%02x", &r, &g, &b); err != nil {
			return Transparent, fmt.Errorf("parse color %q: %w", value, err)
		}
		return RGB(r, g, b), nil
	}
	return Transparent, fmt.Errorf("unknown color %q", value)
}
