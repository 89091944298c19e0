package svgtext

import (
	"math"

	"github.com/srwiley/rasterx"
	"seehuhn.de/go/geom/vec"
)

// Kind selects the layout behavior of a Cursor.
type Kind uint8

const (
	// Linear cursors advance along a straight baseline.
	Linear Kind = iota
	// Path cursors advance along the arc length of a path.
	Path
)

func (k Kind) String() string {
	switch k {
	case Linear:
		return "Linear"
	case Path:
		return "Path"
	default:
		return "<unknown Kind>"
	}
}

// Overrides are the per-glyph positioning lists of one text element.
// Absolute positions (X, Y), deltas (DX, DY) and rotations (in degrees)
// are consumed one value per glyph.
type Overrides struct {
	X, Y, DX, DY, Rotate []float64
}

type overrideKind uint8

const (
	overrideX overrideKind = iota
	overrideY
	overrideDX
	overrideDY
	overrideRotate
	nbOverrideKinds
)

// overrideList borrows the values of a text element,
// with its own read offset, which never exceeds len(values)
type overrideList struct {
	values []float64
	offset int
}

func (l overrideList) remaining() bool { return l.offset < len(l.values) }

// overrideLayer holds the lists of one nesting level
type overrideLayer [nbOverrideKinds]overrideList

func (ov Overrides) layer() overrideLayer {
	return overrideLayer{
		overrideX:      {values: ov.X},
		overrideY:      {values: ov.Y},
		overrideDX:     {values: ov.DX},
		overrideDY:     {values: ov.DY},
		overrideRotate: {values: ov.Rotate},
	}
}

// Cursor tracks the position of the next glyph during the layout
// of a text element. The Linear and Path kinds share the same
// override handling; the path state is only used by Path cursors.
type Cursor struct {
	kind Kind

	x, y       float64
	glyphIndex int
	base       rasterx.Matrix2D // orientation transform

	layers   []overrideLayer // innermost last
	rotation float64         // sticky, in degrees
	visible  bool

	path *pathState
}

// NewLinearCursor returns a cursor starting at (x, y).
func NewLinearCursor(x, y float64) *Cursor {
	return &Cursor{kind: Linear, x: x, y: y, base: rasterx.Identity, visible: true}
}

// Kind returns the variant of the cursor.
func (c *Cursor) Kind() Kind { return c.kind }

// GlyphIndex returns the number of glyphs advanced so far.
func (c *Cursor) GlyphIndex() int { return c.glyphIndex }

// SetBase sets the orientation transform, applied after
// the glyph placement.
func (c *Cursor) SetBase(m rasterx.Matrix2D) { c.base = m }

// PushOverrides adds the lists of a nested text element.
// The slices are referenced, not copied, and must not be modified
// before the matching PopOverrides call.
func (c *Cursor) PushOverrides(ov Overrides) {
	c.layers = append(c.layers, ov.layer())
}

// PopOverrides removes the lists added by the last PushOverrides.
func (c *Cursor) PopOverrides() {
	if len(c.layers) == 0 {
		return
	}
	c.layers = c.layers[:len(c.layers)-1]
}

// peek returns the value to use for the next glyph, which comes
// from the innermost element still having values.
func (c *Cursor) peek(kind overrideKind) (float64, bool) {
	for i := len(c.layers) - 1; i >= 0; i-- {
		if l := c.layers[i][kind]; l.remaining() {
			return l.values[l.offset], true
		}
	}
	return 0, false
}

// next consumes the value for the next glyph: the offsets
// of every element still having values are advanced, since
// the glyph belongs to all of them.
func (c *Cursor) next(kind overrideKind) (float64, bool) {
	v, ok := c.peek(kind)
	for i := range c.layers {
		if l := &c.layers[i][kind]; l.remaining() {
			l.offset++
		}
	}
	return v, ok
}

// resolved overrides for one glyph
type glyphOverrides struct {
	x, y, dx, dy      float64
	hasX, hasY        bool
	hasDX, hasDY      bool
	rotation          float64
	hasExplicitRotate bool
}

func (c *Cursor) consumeOverrides() (g glyphOverrides) {
	g.x, g.hasX = c.next(overrideX)
	g.y, g.hasY = c.next(overrideY)
	g.dx, g.hasDX = c.next(overrideDX)
	g.dy, g.hasDY = c.next(overrideDY)
	var rot float64
	if rot, g.hasExplicitRotate = c.next(overrideRotate); g.hasExplicitRotate {
		c.rotation = rot
	}
	g.rotation = c.rotation
	return g
}

// IsAutoLayout returns true if the next glyph directly follows
// the previous one, with no override applied.
// On a path, such a glyph still gets its own rotation from the
// path direction.
func (c *Cursor) IsAutoLayout() bool {
	for k := overrideKind(0); k < nbOverrideKinds; k++ {
		if _, ok := c.peek(k); ok {
			return false
		}
	}
	return c.rotation == 0
}

// ShouldRenderGlyph returns false if the glyph placed by the last
// Advance call must not be painted, because it falls before
// the start of the path.
func (c *Cursor) ShouldRenderGlyph() bool { return c.visible }

// Location returns the current position of the cursor.
func (c *Cursor) Location() vec.Vec2 {
	if c.kind == Path {
		pt, _ := c.path.pointAndTangent()
		return pt
	}
	return vec.Vec2{X: c.x, Y: c.y}
}

// Advance places the next glyph, of advance `width`, and moves
// after it. The returned transform maps the glyph origin
// and baseline. A false return value means the layout must stop:
// the end of the path has been reached.
func (c *Cursor) Advance(width float64) (rasterx.Matrix2D, bool) {
	switch c.kind {
	case Path:
		return c.advancePath(width)
	default:
		return c.advanceLinear(width), true
	}
}

// AdvanceSpacing moves the cursor by `amount`, without placing a glyph.
func (c *Cursor) AdvanceSpacing(amount float64) {
	switch c.kind {
	case Path:
		c.path.move(amount)
	default:
		c.x += amount
	}
}

func (c *Cursor) advanceLinear(width float64) rasterx.Matrix2D {
	ov := c.consumeOverrides()
	if ov.hasX {
		c.x = ov.x
	}
	if ov.hasY {
		c.y = ov.y
	}
	if ov.hasDX {
		c.x += ov.dx
	}
	if ov.hasDY {
		c.y += ov.dy
	}
	m := c.base.Translate(c.x, c.y)
	if ov.rotation != 0 {
		m = m.Rotate(ov.rotation * math.Pi / 180)
	}
	c.x += width
	c.glyphIndex++
	c.visible = true
	return m
}

func (c *Cursor) advancePath(width float64) (rasterx.Matrix2D, bool) {
	ps := c.path
	ov := c.consumeOverrides()
	if ov.hasX {
		ps.seek(ps.startOffset + ov.x)
	}
	if ov.hasDX {
		ps.move(ov.dx)
	}
	if ov.hasY {
		ps.crossTrack = ov.y
	}
	if ov.hasDY {
		ps.crossTrack += ov.dy
	}

	ps.move(width / 2)
	if ps.exhausted() && ps.retained == 0 {
		tracer().Debugf("path exhausted after %d glyphs", c.glyphIndex)
		return rasterx.Identity, false
	}
	// visibility is decided at the anchor
	c.visible = ps.retained == 0

	anchor, tangent := ps.pointAndTangent()
	angle := 0.
	if tangent.Length() > 0 {
		angle = math.Atan2(tangent.Y, tangent.X)
	}
	if ps.crossTrack != 0 {
		normal := vec.Vec2{X: -math.Sin(angle), Y: math.Cos(angle)}
		anchor = anchor.Add(normal.Mul(ps.crossTrack))
	}
	m := c.base.Translate(anchor.X, anchor.Y).
		Rotate(angle+ov.rotation*math.Pi/180).
		Translate(-width/2, 0)

	ps.move(width / 2)
	c.glyphIndex++
	return m, true
}
