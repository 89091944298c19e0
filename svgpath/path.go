// Implements an abstract representation of
// vector paths, which can then be consumed
// by the render surface and its backends.
package svgpath

import (
	"fmt"
	"math"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/vec"
)

type pathCommand uint8

// Human readable path constants
const (
	pathMoveTo pathCommand = iota
	pathLineTo
	pathQuadTo
	pathCubicTo
	pathClose
)

// Operation groups the different SVG commands
type Operation interface {
	command() pathCommand
}

type MoveTo vec.Vec2

type LineTo vec.Vec2

type QuadTo [2]vec.Vec2

type CubicTo [3]vec.Vec2

type Close struct{}

func (MoveTo) command() pathCommand  { return pathMoveTo }
func (LineTo) command() pathCommand  { return pathLineTo }
func (QuadTo) command() pathCommand  { return pathQuadTo }
func (CubicTo) command() pathCommand { return pathCubicTo }
func (Close) command() pathCommand   { return pathClose }

// Path describes a sequence of basic SVG operations.
// Higher-level shapes may be reduced to a path.
type Path []Operation

// ToSVGPath returns a string representation of the path
func (p Path) ToSVGPath() string {
	chunks := make([]string, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			chunks[i] = fmt.Sprintf("M%4.3f,%4.3f", op.X, op.Y)
		case LineTo:
			chunks[i] = fmt.Sprintf("L%4.3f,%4.3f", op.X, op.Y)
		case QuadTo:
			chunks[i] = fmt.Sprintf("Q%4.3f,%4.3f,%4.3f,%4.3f", op[0].X, op[0].Y, op[1].X, op[1].Y)
		case CubicTo:
			chunks[i] = fmt.Sprintf("C%4.3f,%4.3f,%4.3f,%4.3f,%4.3f,%4.3f", op[0].X, op[0].Y,
				op[1].X, op[1].Y, op[2].X, op[2].Y)
		case Close:
			chunks[i] = "Z"
		}
	}
	return strings.Join(chunks, " ")
}

// String returns a readable representation of a Path.
func (p Path) String() string {
	return p.ToSVGPath()
}

// Clear zeros the path slice
func (p *Path) Clear() {
	*p = (*p)[:0]
}

// Start starts a new curve at the given point.
func (p *Path) Start(a vec.Vec2) {
	*p = append(*p, MoveTo(a))
}

// Line adds a linear segment to the current curve.
func (p *Path) Line(b vec.Vec2) {
	*p = append(*p, LineTo(b))
}

// QuadBezier adds a quadratic segment to the current curve.
func (p *Path) QuadBezier(b, c vec.Vec2) {
	*p = append(*p, QuadTo{b, c})
}

// CubeBezier adds a cubic segment to the current curve.
func (p *Path) CubeBezier(b, c, d vec.Vec2) {
	*p = append(*p, CubicTo{b, c, d})
}

// Stop joins the ends of the path
func (p *Path) Stop(closeLoop bool) {
	if closeLoop {
		*p = append(*p, Close{})
	}
}

// Append adds the operations of q at the end of p.
func (p *Path) Append(q Path) {
	*p = append(*p, q...)
}

// Copy returns a deep copy of p, safe to modify.
func (p Path) Copy() Path {
	return append(Path(nil), p...)
}

func transformPoint(m rasterx.Matrix2D, a vec.Vec2) vec.Vec2 {
	x, y := m.Transform(a.X, a.Y)
	return vec.Vec2{X: x, Y: y}
}

// Transform returns a new path, with every point mapped by `m`.
func (p Path) Transform(m rasterx.Matrix2D) Path {
	out := make(Path, len(p))
	for i, op := range p {
		switch op := op.(type) {
		case MoveTo:
			out[i] = MoveTo(transformPoint(m, vec.Vec2(op)))
		case LineTo:
			out[i] = LineTo(transformPoint(m, vec.Vec2(op)))
		case QuadTo:
			out[i] = QuadTo{transformPoint(m, op[0]), transformPoint(m, op[1])}
		case CubicTo:
			out[i] = CubicTo{transformPoint(m, op[0]), transformPoint(m, op[1]), transformPoint(m, op[2])}
		case Close:
			out[i] = op
		}
	}
	return out
}

// Equal returns true if both paths have the exact same operations.
func (p Path) Equal(q Path) bool {
	if len(p) != len(q) {
		return false
	}
	for i := range p {
		if p[i] != q[i] {
			return false
		}
	}
	return true
}

// Iter returns an iterator over the path commands, using
// the conventions of the geom package.
func (p Path) Iter() path.Path {
	return func(yield func(path.Command, []vec.Vec2) bool) {
		var buf [3]vec.Vec2
		for _, op := range p {
			var ok bool
			switch op := op.(type) {
			case MoveTo:
				buf[0] = vec.Vec2(op)
				ok = yield(path.CmdMoveTo, buf[:1])
			case LineTo:
				buf[0] = vec.Vec2(op)
				ok = yield(path.CmdLineTo, buf[:1])
			case QuadTo:
				buf[0], buf[1] = op[0], op[1]
				ok = yield(path.CmdQuadTo, buf[:2])
			case CubicTo:
				buf[0], buf[1], buf[2] = op[0], op[1], op[2]
				ok = yield(path.CmdCubeTo, buf[:3])
			case Close:
				ok = yield(path.CmdClose, nil)
			}
			if !ok {
				return
			}
		}
	}
}

// ToFixedP converts two floats to a fixed point.
func ToFixedP(x, y float64) (p fixed.Point26_6) {
	p.X = fixed.Int26_6(math.Round(x * 64))
	p.Y = fixed.Int26_6(math.Round(y * 64))
	return
}

func toFixed(a vec.Vec2) fixed.Point26_6 { return ToFixedP(a.X, a.Y) }

// AddTo adds the Path p to q, which is typically
// a rasterx Filler or Dasher.
func (p Path) AddTo(q rasterx.Adder) {
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			q.Stop(false) // implicit close if currently in path.
			q.Start(toFixed(vec.Vec2(op)))
		case LineTo:
			q.Line(toFixed(vec.Vec2(op)))
		case QuadTo:
			q.QuadBezier(toFixed(op[0]), toFixed(op[1]))
		case CubicTo:
			q.CubeBezier(toFixed(op[0]), toFixed(op[1]), toFixed(op[2]))
		case Close:
			q.Stop(true)
		}
	}
	q.Stop(false)
}

// Reverse returns the path with the direction of each subpath reversed.
// The enclosed area is unchanged, but its winding number is negated.
func (p Path) Reverse() Path {
	out := make(Path, 0, len(p))
	for _, sub := range p.Subpaths() {
		out = append(out, reverseSubpath(sub)...)
	}
	return out
}

// reverseSubpath expects `sub` to start with a MoveTo.
func reverseSubpath(sub Path) Path {
	type segment struct {
		from vec.Vec2
		op   Operation
	}
	var (
		segments []segment
		closed   bool
		last     = vec.Vec2(sub[0].(MoveTo))
	)
	for _, op := range sub[1:] {
		switch op := op.(type) {
		case LineTo:
			segments = append(segments, segment{last, op})
			last = vec.Vec2(op)
		case QuadTo:
			segments = append(segments, segment{last, op})
			last = op[1]
		case CubicTo:
			segments = append(segments, segment{last, op})
			last = op[2]
		case Close:
			closed = true
		}
	}
	out := Path{MoveTo(last)}
	for i := len(segments) - 1; i >= 0; i-- {
		seg := segments[i]
		switch op := seg.op.(type) {
		case LineTo:
			out = append(out, LineTo(seg.from))
		case QuadTo:
			out = append(out, QuadTo{op[0], seg.from})
		case CubicTo:
			out = append(out, CubicTo{op[1], op[0], seg.from})
		}
	}
	if closed {
		out = append(out, Close{})
	}
	return out
}

// Subpaths splits the path on each MoveTo.
func (p Path) Subpaths() []Path {
	var out []Path
	start := -1
	for i, op := range p {
		if _, isMove := op.(MoveTo); isMove {
			if start != -1 && i > start {
				out = append(out, p[start:i])
			}
			start = i
		}
	}
	if start != -1 && start < len(p) {
		out = append(out, p[start:])
	}
	return out
}
