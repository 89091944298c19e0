// Given a parsed document, implements how to
// draw it on screen.
// This requires a backend implementing the actual draw operations,
// such as a rasterizer to output .png images or a pdf writer.
//
// The central type is Surface, which tracks the drawing state
// (transform, paint, stroke, opacity and clip stack) and forwards
// device space geometry to a Backend.
package svgdraw

import (
	"math"

	"github.com/npillmayer/schuko/tracing"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/okrender/svgpath"
)

// tracer traces with key 'okrender.draw'
func tracer() tracing.Trace {
	return tracing.Select("okrender.draw")
}

// Backend knows how to do the actual draw operations
// but doesn't need any document kwowledge.
// In particular, tranformations matrix are already applied to the points
// before sending them to the Backend.
type Backend interface {
	// Save pushes the current clip region on a stack.
	Save()

	// RestoreToCount pops saved states until exactly `count`
	// saves remain, restoring the clip region saved at that level.
	RestoreToCount(count int)

	// Clip intersects the current clip region with the given shape.
	Clip(p svgpath.Path, useNonZeroWinding bool)

	// Fill paints the interior of the shape.
	Fill(p svgpath.Path, pattern Pattern, opacity float64, useNonZeroWinding bool)

	// Stroke paints the outline of the shape.
	Stroke(p svgpath.Path, options StrokeOptions, pattern Pattern, opacity float64)
}

type DashOptions struct {
	Dash       []float64 // values for the dash pattern (nil or an empty slice for no dashes)
	DashOffset float64   // starting offset into the dash array
}

// JoinMode type to specify how segments join.
type JoinMode uint8

// JoinMode constants determine how stroke segments bridge the gap at a join
// ArcClip mode is like MiterClip applied to arcs, and is not part of the SVG2.0
// standard.
const (
	Arc JoinMode = iota // New in SVG2
	Round
	Bevel
	Miter
	MiterClip // New in SVG2
	ArcClip   // Like MiterClip applied to arcs, and is not part of the SVG2.0 standard.
)

func (s JoinMode) String() string {
	switch s {
	case Round:
		return "Round"
	case Bevel:
		return "Bevel"
	case Miter:
		return "Miter"
	case MiterClip:
		return "MiterClip"
	case Arc:
		return "Arc"
	case ArcClip:
		return "ArcClip"
	default:
		return "<unknown JoinMode>"
	}
}

// CapMode defines how to draw caps on the ends of lines
type CapMode uint8

const (
	NilCap CapMode = iota // default value
	ButtCap
	SquareCap
	RoundCap
	CubicCap     // Not part of the SVG2.0 standard.
	QuadraticCap // Not part of the SVG2.0 standard.
)

func (c CapMode) String() string {
	switch c {
	case NilCap:
		return "NilCap"
	case ButtCap:
		return "ButtCap"
	case SquareCap:
		return "SquareCap"
	case RoundCap:
		return "RoundCap"
	case CubicCap:
		return "CubicCap"
	case QuadraticCap:
		return "QuadraticCap"
	default:
		return "<unknown CapMode>"
	}
}

// GapMode defines how to bridge gaps when the miter limit is exceeded,
// and is not part of the SVG2.0 standard.
type GapMode uint8

const (
	NilGap GapMode = iota
	FlatGap
	RoundGap
	CubicGap
	QuadraticGap
)

func (g GapMode) String() string {
	switch g {
	case NilGap:
		return "NilGap"
	case FlatGap:
		return "FlatGap"
	case RoundGap:
		return "RoundGap"
	case CubicGap:
		return "CubicGap"
	case QuadraticGap:
		return "QuadraticGap"
	default:
		return "<unknown GapMode>"
	}
}

type JoinOptions struct {
	MiterLimit   fixed.Int26_6 // the miter cutoff value for miter, arc, miterclip and arcClip joinModes
	LineJoin     JoinMode      // JoinMode for curve segments
	TrailLineCap CapMode       // capping functions for leading and trailing line ends. If one is nil, the other function is used at both ends.

	LeadLineCap CapMode // not part of the standard specification
	LineGap     GapMode // not part of the standard specification. determines how a gap on the convex side of two lines joining is filled
}

type StrokeOptions struct {
	LineWidth float64 // width of the line
	Join      JoinOptions
	Dash      DashOptions
}

// resolved returns a copy where the nil caps and gaps
// are replaced by their default values.
func (opts StrokeOptions) resolved() StrokeOptions {
	if opts.Join.LineGap == NilGap {
		opts.Join.LineGap = FlatGap
	}
	if opts.Join.TrailLineCap == NilCap {
		opts.Join.TrailLineCap = ButtCap
	}
	if opts.Join.LeadLineCap == NilCap {
		opts.Join.LeadLineCap = opts.Join.TrailLineCap
	}
	return opts
}

// scaled applies the uniform scale factor of a transform
// to the lengths of the options.
func (opts StrokeOptions) scaled(m rasterx.Matrix2D) StrokeOptions {
	det := m.A*m.D - m.B*m.C
	if det < 0 {
		det = -det
	}
	scale := math.Sqrt(det)
	opts.LineWidth *= scale
	if len(opts.Dash.Dash) != 0 {
		dash := make([]float64, len(opts.Dash.Dash))
		for i, d := range opts.Dash.Dash {
			dash[i] = d * scale
		}
		opts.Dash.Dash = dash
		opts.Dash.DashOffset *= scale
	}
	return opts
}
