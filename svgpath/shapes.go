package svgpath

import (
	"math"

	"github.com/srwiley/rasterx"
	"seehuhn.de/go/geom/vec"
)

// maxDx is the maximum angle, in radians, spanned by one cubic
// of an elliptical arc.
const maxDx float64 = math.Pi / 8

// quarter circle approximation constant
const kappa = 0.5522847498307936

// appendRotated appends q, rotated by rot degrees around (cx, cy).
func (p *Path) appendRotated(q Path, rot, cx, cy float64) {
	if rot != 0 {
		q = q.Transform(rasterx.Identity.Translate(cx, cy).Rotate(rot*math.Pi/180).Translate(-cx, -cy))
	}
	p.Append(q)
}

// AddRect adds a closed rectangle, rotated by rot degrees around its center.
func (p *Path) AddRect(minX, minY, maxX, maxY, rot float64) {
	var r Path
	r.Start(pt(minX, minY))
	r.Line(pt(maxX, minY))
	r.Line(pt(maxX, maxY))
	r.Line(pt(minX, maxY))
	r.Stop(true)
	p.appendRotated(r, rot, (minX+maxX)/2, (minY+maxY)/2)
}

// AddRoundRect adds a closed rectangle with corners of radii rx and ry,
// rotated by rot degrees around its center.
// A non positive radius defaults to the other one, and radii are
// clamped to half the size of the rectangle.
func (p *Path) AddRoundRect(minX, minY, maxX, maxY, rx, ry, rot float64) {
	if rx <= 0 && ry <= 0 {
		p.AddRect(minX, minY, maxX, maxY, rot)
		return
	}
	if rx <= 0 {
		rx = ry
	} else if ry <= 0 {
		ry = rx
	}
	rx = min(rx, (maxX-minX)/2)
	ry = min(ry, (maxY-minY)/2)

	// corners are quarter ellipses, going clockwise from the top left
	kx, ky := rx*kappa, ry*kappa
	var r Path
	r.Start(pt(minX+rx, minY))
	r.Line(pt(maxX-rx, minY))
	r.CubeBezier(pt(maxX-rx+kx, minY), pt(maxX, minY+ry-ky), pt(maxX, minY+ry))
	r.Line(pt(maxX, maxY-ry))
	r.CubeBezier(pt(maxX, maxY-ry+ky), pt(maxX-rx+kx, maxY), pt(maxX-rx, maxY))
	r.Line(pt(minX+rx, maxY))
	r.CubeBezier(pt(minX+rx-kx, maxY), pt(minX, maxY-ry+ky), pt(minX, maxY-ry))
	r.Line(pt(minX, minY+ry))
	r.CubeBezier(pt(minX, minY+ry-ky), pt(minX+rx-kx, minY), pt(minX+rx, minY))
	r.Stop(true)
	p.appendRotated(r, rot, (minX+maxX)/2, (minY+maxY)/2)
}

// AddEllipse adds a closed ellipse centered at (cx, cy), with radii rx and ry.
func (p *Path) AddEllipse(cx, cy, rx, ry float64) {
	center := vec.Vec2{X: cx, Y: cy}
	right, left := vec.Vec2{X: cx + rx, Y: cy}, vec.Vec2{X: cx - rx, Y: cy}
	p.Start(right)
	// two half arcs; a single one would have identical end points
	arc{rx: rx, ry: ry, largeArc: true, from: right, to: left}.appendTo(p, center)
	arc{rx: rx, ry: ry, largeArc: true, from: left, to: right}.appendTo(p, center)
	p.Stop(true)
}

// arc is an elliptical arc, as described by the A command of path data.
type arc struct {
	rx, ry   float64
	rotation float64 // of the x axis, in radians
	largeArc bool
	sweep    bool
	from, to vec.Vec2
}

// center locates the center of the ellipse. If no ellipse with the requested
// radii joins the end points, the radii are increased minimally,
// preserving their ratio.
// The problem is reduced to finding the center of a circle going through
// the origin and an arbitrary point.
func (a *arc) center() vec.Vec2 {
	sin, cos := math.Sincos(a.rotation)
	d := a.to.Sub(a.from)
	// align the ellipse axes, then scale to a circle of radius ry
	n := vec.Vec2{X: (d.X*cos + d.Y*sin) * a.ry / a.rx, Y: -d.X*sin + d.Y*cos}
	mid := n.Mul(0.5)
	midLenSq := mid.X*mid.X + mid.Y*mid.Y

	var h float64
	if a.ry*a.ry < midLenSq {
		r := math.Sqrt(midLenSq)
		if a.rx == a.ry {
			a.rx = r // avoid roundoff
		} else {
			a.rx *= r / a.ry
		}
		a.ry = r
	} else {
		h = math.Sqrt(a.ry*a.ry-midLenSq) / math.Sqrt(midLenSq)
	}
	// both solutions are the same when h is zero
	var c vec.Vec2
	if a.sweep != a.largeArc {
		c = vec.Vec2{X: mid.X + mid.Y*h, Y: mid.Y - mid.X*h}
	} else {
		c = vec.Vec2{X: mid.X - mid.Y*h, Y: mid.Y + mid.X*h}
	}
	c.X *= a.rx / a.ry
	return vec.Vec2{X: c.X*cos - c.Y*sin, Y: c.X*sin + c.Y*cos}.Add(a.from)
}

// point returns the point of parameter eta of the ellipse centered at c.
func (a arc) point(c vec.Vec2, eta float64) vec.Vec2 {
	sin, cos := math.Sincos(a.rotation)
	x, y := a.rx*math.Cos(eta), a.ry*math.Sin(eta)
	return vec.Vec2{X: c.X + x*cos - y*sin, Y: c.Y + x*sin + y*cos}
}

// tangent returns the derivative of point at eta.
func (a arc) tangent(eta float64) vec.Vec2 {
	sin, cos := math.Sincos(a.rotation)
	x, y := -a.rx*math.Sin(eta), a.ry*math.Cos(eta)
	return vec.Vec2{X: x*cos - y*sin, Y: x*sin + y*cos}
}

// appendTo approximates the arc, whose ellipse is centered at c,
// with cubic Béziers, following L. Maisonobe, "Drawing an elliptical arc
// using polylines, quadratic or cubic Bezier curves", 2003.
// The current point of p must be a.from.
func (a arc) appendTo(p *Path, c vec.Vec2) {
	start := math.Atan2(a.from.Y-c.Y, a.from.X-c.X) - a.rotation
	end := math.Atan2(a.to.Y-c.Y, a.to.X-c.X) - a.rotation
	isBig := math.Abs(end-start) > math.Pi

	etaStart := math.Atan2(math.Sin(start)/a.ry, math.Cos(start)/a.rx)
	etaEnd := math.Atan2(math.Sin(end)/a.ry, math.Cos(end)/a.rx)
	delta := etaEnd - etaStart
	if isBig != a.largeArc {
		if delta < 0 {
			delta += 2 * math.Pi
		} else {
			delta -= 2 * math.Pi
		}
	}
	// needed when the center is the midpoint of the end points
	if delta < 0 && a.sweep {
		delta += 2 * math.Pi
	} else if delta >= 0 && !a.sweep {
		delta -= 2 * math.Pi
	}

	segments := int(math.Abs(delta)/maxDx) + 1
	step := delta / float64(segments)
	t := math.Tan(step / 2)
	alpha := math.Sin(step) * (math.Sqrt(4+3*t*t) - 1) / 3

	last, lastTangent := a.from, a.tangent(etaStart)
	for i := 1; i <= segments; i++ {
		eta := etaStart + step*float64(i)
		next := a.to // exact end point
		if i < segments {
			next = a.point(c, eta)
		}
		tangent := a.tangent(eta)
		p.CubeBezier(last.Add(lastTangent.Mul(alpha)), next.Sub(tangent.Mul(alpha)), next)
		last, lastTangent = next, tangent
	}
}
