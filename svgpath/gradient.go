package svgpath

import (
	"image/color"

	"github.com/srwiley/rasterx"
)

// GradientUnits is the type for gradient units
type GradientUnits byte

// SVG bounds paremater constants
const (
	ObjectBoundingBox GradientUnits = iota
	UserSpaceOnUse
)

// SpreadMethod is the type for spread parameters
type SpreadMethod byte

// SVG spread parameter constants
const (
	PadSpread SpreadMethod = iota
	ReflectSpread
	RepeatSpread
)

// GradStop represents a stop in the SVG 2.0 gradient specification
type GradStop struct {
	StopColor color.Color
	Offset    float64
	Opacity   float64
}

// Bounds defines a bounding box, such as a viewport
// or a path extent.
type Bounds struct{ X, Y, W, H float64 }

// Gradient holds a description of an SVG 2.0 gradient
type Gradient struct {
	Direction GradientDirection
	Stops     []GradStop
	Bounds    Bounds
	Matrix    rasterx.Matrix2D
	Spread    SpreadMethod
	Units     GradientUnits
}

// GradientDirection is either Linear or Radial
type GradientDirection interface {
	isRadial() bool
}

// Linear stores x1, y1, x2, y2
type Linear [4]float64

func (Linear) isRadial() bool { return false }

// Radial stores cx, cy, fx, fy, r, fr
type Radial [6]float64

func (Radial) isRadial() bool { return true }

// IsRadial returns true for radial gradients.
func (g Gradient) IsRadial() bool { return g.Direction != nil && g.Direction.isRadial() }

// LastStopColor returns the color of the last stop,
// or transparent black if there is none.
// It is used for degenerate gradients, and by
// backends not supporting gradients.
func (g Gradient) LastStopColor() color.NRGBA {
	if len(g.Stops) == 0 {
		return color.NRGBA{}
	}
	s := g.Stops[len(g.Stops)-1]
	if s.StopColor == nil {
		return color.NRGBA{A: uint8(255 * s.Opacity)}
	}
	c := color.NRGBAModel.Convert(s.StopColor).(color.NRGBA)
	c.A = uint8(float64(c.A) * s.Opacity)
	return c
}
