package svgpath

import (
	"math"

	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"
)

// compute the bouding box of a path, needed when using gradient with objectBoudingBox,
// and to report the extent of text runs

type line [2]vec.Vec2

func (l line) criticalPoints() (tX, tY []float64) {
	return nil, nil
}

func (l line) evaluateCurve(t float64) vec.Vec2 {
	return vec.Vec2{X: bezierLine(l[0].X, l[1].X, t), Y: bezierLine(l[0].Y, l[1].Y, t)}
}

func bezierLine(p0, p1, t float64) float64 {
	return (p1-p0)*t + p0
}

type quadBezier [3]vec.Vec2

// quadratic polinomial
// x = At^2 + Bt + C
// where
// A = p0 + p2 - 2p1
// B = 2(p1 - p0)
// C = p0
func bezierQuad(p0, p1, p2, t float64) float64 {
	return (p0+p2-2*p1)*t*t + 2*(p1-p0)*t + p0
}

// derivative as at + b where a,b :
func quadraticDerivative(p0, p1, p2 float64) (a, b float64) {
	return 2 * (p2 - p1 - (p1 - p0)), 2 * (p1 - p0)
}

// handle the case where a = 0
func linearRoots(a, b float64) []float64 {
	if a == 0 {
		return nil
	}
	return []float64{-b / a}
}

func (cu quadBezier) criticalPoints() (tX, tY []float64) {
	aX, bX := quadraticDerivative(cu[0].X, cu[1].X, cu[2].X)
	aY, bY := quadraticDerivative(cu[0].Y, cu[1].Y, cu[2].Y)
	return linearRoots(aX, bX), linearRoots(aY, bY)
}

func (cu quadBezier) evaluateCurve(t float64) vec.Vec2 {
	return vec.Vec2{
		X: bezierQuad(cu[0].X, cu[1].X, cu[2].X, t),
		Y: bezierQuad(cu[0].Y, cu[1].Y, cu[2].Y, t),
	}
}

type cubicBezier [4]vec.Vec2

func (cu cubicBezier) criticalPoints() (tX, tY []float64) {
	aX, bX, cX := cubicDerivative(cu[0].X, cu[1].X, cu[2].X, cu[3].X)
	aY, bY, cY := cubicDerivative(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y)
	return quadraticRoots(aX, bX, cX), quadraticRoots(aY, bY, cY)
}

func (cu cubicBezier) evaluateCurve(t float64) vec.Vec2 {
	return vec.Vec2{
		X: bezierSpline(cu[0].X, cu[1].X, cu[2].X, cu[3].X, t),
		Y: bezierSpline(cu[0].Y, cu[1].Y, cu[2].Y, cu[3].Y, t),
	}
}

// cubic polinomial
// x = At^3 + Bt^2 + Ct + D
// where A,B,C,D:
// A = p3 -3 * p2 + 3 * p1 - p0
// B = 3 * p2 - 6 * p1 +3 * p0
// C = 3 * p1 - 3 * p0
// D = p0
func bezierSpline(p0, p1, p2, p3, t float64) float64 {
	return (p3-3*p2+3*p1-p0)*t*t*t +
		(3*p2-6*p1+3*p0)*t*t +
		(3*p1-3*p0)*t +
		(p0)
}

// X' = (3*p3-9*p2+9*p1-3*p0)t^2 + (6*p2-12*p1+6*p0)t + (3*p1-3*p0)
// taken as aX^2 + bX + c
func cubicDerivative(p0, p1, p2, p3 float64) (a, b, c float64) {
	return 3*p3 - 9*p2 + 9*p1 - 3*p0, 6*p2 - 12*p1 + 6*p0, 3*p1 - 3*p0
}

func quadraticRoots(a, b, c float64) []float64 {
	if a == 0 {
		// this is a simple line: x = -c / b
		return linearRoots(b, c)
	}
	d := b*b - 4*a*c
	if d < 0 {
		return nil
	}
	if d == 0 {
		return []float64{-b / (2 * a)}
	}
	sq := math.Sqrt(d)
	return []float64{(-b + sq) / (2 * a), (-b - sq) / (2 * a)}
}

type bezier interface {
	// compute the t zeroing the derivative
	criticalPoints() (tX, tY []float64)
	// compute the point a time t
	evaluateCurve(t float64) vec.Vec2
}

// emptyRect is the neutral element for union
var emptyRect = rect.Rect{LLx: math.Inf(1), LLy: math.Inf(1), URx: math.Inf(-1), URy: math.Inf(-1)}

// Extend returns the smallest rectangle containing `r` and `pt`.
func Extend(r rect.Rect, pt vec.Vec2) rect.Rect {
	r.LLx = math.Min(r.LLx, pt.X)
	r.LLy = math.Min(r.LLy, pt.Y)
	r.URx = math.Max(r.URx, pt.X)
	r.URy = math.Max(r.URy, pt.Y)
	return r
}

// Union returns the smallest rectangle containing `r` and `s`.
func Union(r, s rect.Rect) rect.Rect {
	return rect.Rect{
		LLx: math.Min(r.LLx, s.LLx), LLy: math.Min(r.LLy, s.LLy),
		URx: math.Max(r.URx, s.URx), URy: math.Max(r.URy, s.URy),
	}
}

// EmptyRect returns a rectangle which is neutral for `Union` and `Extend`.
func EmptyRect() rect.Rect { return emptyRect }

// IsEmptyRect returns true if `r` contains no point at all.
func IsEmptyRect(r rect.Rect) bool { return r.LLx > r.URx || r.LLy > r.URy }

func computeBoundingBox(box rect.Rect, curve bezier) rect.Rect {
	resX, resY := curve.criticalPoints()
	// add begin and end point
	for _, t := range append(append(resX, 0, 1), resY...) {
		// filter invalid value
		if !(0 <= t && t <= 1) {
			continue
		}
		box = Extend(box, curve.evaluateCurve(t))
	}
	return box
}

// Bounds returns the exact bounding box of the path, using the
// extrema of its curves rather than their control points.
// The boolean is false for an empty path.
func (p Path) Bounds() (rect.Rect, bool) {
	box := emptyRect
	var last, origin vec.Vec2
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			last = vec.Vec2(op)
			origin = last
			box = Extend(box, last)
		case LineTo:
			box = computeBoundingBox(box, line{last, vec.Vec2(op)})
			last = vec.Vec2(op)
		case QuadTo:
			box = computeBoundingBox(box, quadBezier{last, op[0], op[1]})
			last = op[1]
		case CubicTo:
			box = computeBoundingBox(box, cubicBezier{last, op[0], op[1], op[2]})
			last = op[2]
		case Close:
			last = origin
		}
	}
	if IsEmptyRect(box) {
		return rect.Rect{}, false
	}
	return box, true
}
