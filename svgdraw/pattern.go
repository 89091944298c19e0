package svgdraw

import (
	"image/color"

	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/okrender/svgpath"
)

// Pattern groups the different ways of painting
// a shape: PlainColor or Gradient
type Pattern interface {
	isPattern()
}

// PlainColor is a uniform color
type PlainColor struct {
	color.RGBA
}

// Gradient is a linear or radial gradient
type Gradient struct {
	svgpath.Gradient
}

func (PlainColor) isPattern() {}
func (Gradient) isPattern()   {}

// NewPlainColor returns a PlainColor from its RGBA components.
func NewPlainColor(r, g, b, a uint8) PlainColor {
	return PlainColor{color.RGBA{R: r, G: g, B: b, A: a}}
}

// inDeviceSpace returns the pattern to use with
// device space geometry drawn with the transform `m`.
func inDeviceSpace(p Pattern, m rasterx.Matrix2D) Pattern {
	g, ok := p.(Gradient)
	if !ok || g.Units != svgpath.UserSpaceOnUse {
		// object bounding box gradients are resolved by
		// the backend against the device space extent
		return p
	}
	g.Matrix = m.Mult(g.Matrix)
	return g
}

// Paint describes how to fill shapes.
// A nil Pattern disables filling.
type Paint struct {
	Pattern           Pattern
	Opacity           float64
	UseNonZeroWinding bool
}

// StrokeStyle describes how to stroke shapes.
// A nil Pattern disables stroking.
type StrokeStyle struct {
	Pattern Pattern
	Opacity float64
	Options StrokeOptions
}

// DefaultPaint fills black with the non-zero winding rule.
var DefaultPaint = Paint{
	Pattern:           NewPlainColor(0x00, 0x00, 0x00, 0xff),
	Opacity:           1,
	UseNonZeroWinding: true,
}

// DefaultStroke does not stroke, but holds the default
// values of a stroke: width 1, ButtCap line end and Bevel line connect.
var DefaultStroke = StrokeStyle{
	Opacity: 1,
	Options: StrokeOptions{
		LineWidth: 1,
		Join: JoinOptions{
			MiterLimit:   4 * 64,
			LineJoin:     Bevel,
			TrailLineCap: ButtCap,
		},
	},
}
