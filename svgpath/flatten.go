package svgpath

import (
	"math"

	"seehuhn.de/go/geom/vec"
)

// DefaultTolerance is the maximal distance, in user units, between
// a curve and its flattened approximation.
const DefaultTolerance = 0.1

// Polyline is a flattened subpath. A closed subpath
// ends with its starting point.
type Polyline []vec.Vec2

// Length returns the euclidean length of the polyline.
func (pl Polyline) Length() float64 {
	var l float64
	for i := 1; i < len(pl); i++ {
		l += pl[i].Sub(pl[i-1]).Length()
	}
	return l
}

// Flatten approximates the path with straight segments,
// returning one polyline per subpath.
// Segment counts follow Wang's formula, so that
// the distance to the curve is at most `tolerance`.
func (p Path) Flatten(tolerance float64) []Polyline {
	if tolerance <= 0 {
		tolerance = DefaultTolerance
	}
	var (
		out          []Polyline
		current      Polyline
		last, origin vec.Vec2
	)
	flush := func() {
		if len(current) > 0 {
			out = append(out, current)
		}
		current = nil
	}
	emit := func(to vec.Vec2) {
		if len(current) == 0 {
			current = append(current, last)
		}
		current = append(current, to)
		last = to
	}
	for _, op := range p {
		switch op := op.(type) {
		case MoveTo:
			flush()
			last = vec.Vec2(op)
			origin = last
		case LineTo:
			emit(vec.Vec2(op))
		case QuadTo:
			flattenQuadratic(last, op[0], op[1], tolerance, emit)
		case CubicTo:
			flattenCubic(last, op[0], op[1], op[2], tolerance, emit)
		case Close:
			if len(current) > 0 && last != origin {
				emit(origin)
			}
			flush()
			last = origin
		}
	}
	flush()
	return out
}

// Length returns the approximate arc length of the path.
func (p Path) Length(tolerance float64) float64 {
	var l float64
	for _, pl := range p.Flatten(tolerance) {
		l += pl.Length()
	}
	return l
}

// SignedArea returns the area enclosed by the path, counted with the
// orientation of its subpaths: positive when they turn from the x axis
// towards the y axis. Open subpaths are implicitly closed.
func (p Path) SignedArea(tolerance float64) float64 {
	var a float64
	for _, pl := range p.Flatten(tolerance) {
		for i, u := range pl {
			v := pl[(i+1)%len(pl)]
			a += u.X*v.Y - v.X*u.Y
		}
	}
	return a / 2
}

func flattenQuadratic(p0, p1, p2 vec.Vec2, tolerance float64, emit func(to vec.Vec2)) {
	// error vector: (P0 - 2*P1 + P2) / 4
	e := p0.Sub(p1.Mul(2)).Add(p2).Mul(0.25)
	n := 1
	if errLen := e.Length(); errLen > tolerance {
		n = int(math.Ceil(math.Sqrt(errLen / tolerance)))
	}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		omt := 1 - t
		emit(p0.Mul(omt * omt).Add(p1.Mul(2 * omt * t)).Add(p2.Mul(t * t)))
	}
}

func flattenCubic(p0, p1, p2, p3 vec.Vec2, tolerance float64, emit func(to vec.Vec2)) {
	d1 := p0.Sub(p1.Mul(2)).Add(p2)
	d2 := p1.Sub(p2.Mul(2)).Add(p3)
	n := 1
	if m := math.Max(d1.Length(), d2.Length()); m > 0 {
		// Wang's formula
		if nf := math.Sqrt(3 * m / (4 * tolerance)); nf > 1 {
			n = int(math.Ceil(nf))
		}
	}
	for i := 1; i <= n; i++ {
		t := float64(i) / float64(n)
		omt := 1 - t
		omt2 := omt * omt
		t2 := t * t
		emit(p0.Mul(omt2 * omt).Add(p1.Mul(3 * omt2 * t)).Add(p2.Mul(3 * omt * t2)).Add(p3.Mul(t2 * t)))
	}
}
