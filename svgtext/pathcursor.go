package svgtext

import (
	"errors"
	"fmt"
	"sort"

	"github.com/srwiley/rasterx"
	"seehuhn.de/go/geom/vec"

	"github.com/benoitkugler/okrender/svgpath"
)

// ErrDegeneratePath is returned when building a path cursor
// from a path without any length.
var ErrDegeneratePath = errors.New("empty or zero-length path")

// PathOptions configures a path cursor.
// The zero value starts at the beginning of the path, follows its direction,
// and flattens it with svgpath.DefaultTolerance.
type PathOptions struct {
	// StartOffset is the arc length where the text begins.
	// Negative values start before the path: the first glyphs are hidden.
	StartOffset float64
	// Reversed lays out the text from the end of the path
	// to its beginning (right side).
	Reversed bool
	// Tolerance is the flatness used to approximate curves.
	Tolerance float64
}

// segment is one straight piece of the flattened path
type segment struct {
	from, to vec.Vec2
	start    float64 // arc length at 'from'
	length   float64
}

func (s segment) end() float64 { return s.start + s.length }

// pathState is the variant specific state of a Path cursor.
type pathState struct {
	segments []segment
	total    float64

	startOffset float64
	position    float64 // in [0, total]
	// retained is the arc length requested before the start
	// of the path, to be paid down by forward moves; always >= 0
	retained float64
	// overshoot is the arc length requested past the end,
	// to be paid down by backward moves; always >= 0
	overshoot float64

	crossTrack float64 // offset along the normal
}

// NewPathCursor returns a cursor following `p`.
// Zero-length segments are ignored; a path with no remaining segment
// is rejected with ErrDegeneratePath.
func NewPathCursor(p svgpath.Path, opts PathOptions) (*Cursor, error) {
	tolerance := opts.Tolerance
	if tolerance <= 0 {
		tolerance = svgpath.DefaultTolerance
	}
	polylines := p.Flatten(tolerance)
	if opts.Reversed {
		polylines = reversePolylines(polylines)
	}

	ps := &pathState{startOffset: opts.StartOffset}
	for _, poly := range polylines {
		for i := 1; i < len(poly); i++ {
			l := poly[i].Sub(poly[i-1]).Length()
			if l == 0 {
				continue
			}
			ps.segments = append(ps.segments, segment{from: poly[i-1], to: poly[i], start: ps.total, length: l})
			ps.total += l
		}
	}
	if len(ps.segments) == 0 {
		return nil, fmt.Errorf("svgtext: invalid path cursor: %w", ErrDegeneratePath)
	}
	ps.seek(opts.StartOffset)

	return &Cursor{kind: Path, base: rasterx.Identity, visible: true, path: ps}, nil
}

func reversePolylines(polylines []svgpath.Polyline) []svgpath.Polyline {
	out := make([]svgpath.Polyline, len(polylines))
	for i, poly := range polylines {
		rev := make(svgpath.Polyline, len(poly))
		for j, pt := range poly {
			rev[len(poly)-1-j] = pt
		}
		out[len(polylines)-1-i] = rev
	}
	return out
}

// PathLength returns the total length of the flattened path,
// or 0 for Linear cursors.
func (c *Cursor) PathLength() float64 {
	if c.kind != Path {
		return 0
	}
	return c.path.total
}

// PathPosition returns the arc length of the cursor and the length
// retained before the start of the path.
func (c *Cursor) PathPosition() (position, retained float64) {
	if c.kind != Path {
		return 0, 0
	}
	return c.path.position, c.path.retained
}

// seek places the cursor at the absolute arc length `s`
func (ps *pathState) seek(s float64) {
	ps.retained, ps.overshoot = 0, 0
	switch {
	case s < 0:
		ps.retained = -s
		ps.position = 0
	case s > ps.total:
		ps.overshoot = s - ps.total
		ps.position = ps.total
	default:
		ps.position = s
	}
}

// exhausted returns true if a move went past the end
func (ps *pathState) exhausted() bool { return ps.overshoot > 0 }

// move walks along the path by `d`, which may be negative
func (ps *pathState) move(d float64) {
	if d >= 0 {
		if ps.retained > 0 {
			paid := min(ps.retained, d)
			ps.retained -= paid
			d -= paid
		}
		ps.position += d
		if ps.position > ps.total {
			ps.overshoot += ps.position - ps.total
			ps.position = ps.total
		}
		return
	}

	if ps.overshoot > 0 {
		paid := min(ps.overshoot, -d)
		ps.overshoot -= paid
		d += paid
	}
	ps.position += d
	if ps.position < 0 {
		ps.retained += -ps.position
		ps.position = 0
	}
}

// segmentAt returns the segment containing the current position,
// preferring the following one at segment boundaries.
func (ps *pathState) segmentAt() segment {
	i := sort.Search(len(ps.segments), func(i int) bool { return ps.segments[i].end() > ps.position })
	if i == len(ps.segments) {
		i--
	}
	return ps.segments[i]
}

// pointAndTangent returns the current point and the (non normalized)
// direction of the path there
func (ps *pathState) pointAndTangent() (vec.Vec2, vec.Vec2) {
	seg := ps.segmentAt()
	dir := seg.to.Sub(seg.from)
	t := (ps.position - seg.start) / seg.length
	t = max(0, min(1, t))
	return seg.from.Add(dir.Mul(t)), dir
}
