package svgicon

import (
	"github.com/srwiley/rasterx"
	"seehuhn.de/go/geom/rect"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgfont"
	"github.com/benoitkugler/okrender/svgpath"
	"github.com/benoitkugler/okrender/svgtext"
)

// RenderOptions configures how an icon is drawn.
type RenderOptions struct {
	// Provider selects the glyphs of text elements.
	// If nil, the Go regular font is used.
	Provider svgtext.GlyphProvider
	// Tolerance is the flatness used to follow text paths.
	// Zero means svgpath.DefaultTolerance.
	Tolerance float64
}

func (opts *RenderOptions) withDefaults() RenderOptions {
	var out RenderOptions
	if opts != nil {
		out = *opts
	}
	if out.Provider == nil {
		out.Provider = svgfont.Default()
	}
	if out.Tolerance <= 0 {
		out.Tolerance = svgpath.DefaultTolerance
	}
	return out
}

// maxGradientRefs bounds the chain of gradients inheriting stops
const maxGradientRefs = 8

// renderer walks the document tree
type renderer struct {
	icon *SvgIcon
	opts RenderOptions

	// elements being drawn through use elements,
	// to detect circular references
	active map[*node]bool
}

// Draw paints the icon on `surface`, transformed by the icon Transform.
// The state of `surface` is left untouched.
// `opts` may be nil to use default values.
func (s *SvgIcon) Draw(surface *svgdraw.Surface, opts *RenderOptions) {
	r := renderer{icon: s, opts: opts.withDefaults(), active: make(map[*node]bool)}
	sub := surface.Derive()
	defer sub.ClearClip()
	sub.Concat(s.Transform)
	r.drawChildren(sub, s.root)
}

func (r *renderer) drawChildren(s *svgdraw.Surface, n *node) {
	for _, child := range n.children {
		r.drawNode(s, child)
	}
}

// isShape returns true for the elements with a geometry
func isShape(tag string) bool {
	switch tag {
	case "path", "rect", "circle", "ellipse", "line", "polyline", "polygon":
		return true
	}
	return false
}

// drawNode paints `n` and its children, restoring the state
// of `s` afterwards.
func (r *renderer) drawNode(s *svgdraw.Surface, n *node) {
	switch n.tag {
	case "", "defs", "clipPath", "symbol", "linearGradient", "radialGradient",
		"stop", "title", "desc", "tspan", "textPath":
		// not rendered, or only as part of another element
		return
	}

	state := s.SafeState()
	defer s.Restore(state)
	s.Concat(n.transform)
	s.SetOpacity(s.Opacity() * n.opacity)
	if n.clipPath != "" && !r.pushClip(s, n) {
		return
	}

	switch {
	case n.tag == "use":
		r.drawUse(s, n)
	case n.tag == "text":
		r.drawText(s, n)
	case isShape(n.tag):
		r.drawShape(s, n)
	default:
		r.drawChildren(s, n)
	}
}

func (r *renderer) drawShape(s *svgdraw.Surface, n *node) {
	if len(n.path) == 0 {
		return
	}
	r.applyStyle(s, n.style)
	if n.style.PaintOrder == svgtext.StrokeFill {
		s.Stroke(n.path)
		s.Fill(n.path)
	} else {
		s.Fill(n.path)
		s.Stroke(n.path)
	}
}

// applyStyle sets the paint and stroke of `s`
func (r *renderer) applyStyle(s *svgdraw.Surface, st PathStyle) {
	s.SetPaint(svgdraw.Paint{
		Pattern:           r.resolvePaint(st.fill),
		Opacity:           st.FillOpacity,
		UseNonZeroWinding: st.UseNonZeroWinding,
	})
	s.SetStroke(svgdraw.StrokeStyle{
		Pattern: r.resolvePaint(st.stroke),
		Opacity: st.StrokeOpacity,
		Options: st.Stroke,
	})
}

// resolvePaint returns the pattern to use for `p`, nil meaning none.
// Unknown gradients use the fallback color.
func (r *renderer) resolvePaint(p paint) svgdraw.Pattern {
	if p.url == "" {
		return p.pattern
	}
	grad, ok := r.icon.grads[p.url]
	if !ok {
		tracer().Debugf("unknown paint server %q", p.url)
		return p.pattern
	}
	out := grad.Gradient
	// stops may be inherited
	for i, ref := 0, grad; len(out.Stops) == 0 && ref.href != "" && i < maxGradientRefs; i++ {
		next, ok := r.icon.grads[ref.href]
		if !ok {
			break
		}
		out.Stops, ref = next.Stops, next
	}
	return svgdraw.Gradient{Gradient: out}
}

func (r *renderer) drawUse(s *svgdraw.Surface, n *node) {
	ref, ok := r.icon.ids[readHref(n)]
	if !ok {
		tracer().Debugf("use: unknown element %q", readHref(n))
		return
	}
	if r.active[ref] {
		tracer().Errorf("use: circular reference to %q", ref.id)
		return
	}
	r.active[ref] = true
	defer delete(r.active, ref)

	sub := s.Derive()
	defer sub.ClearClip()
	sub.Concat(rasterx.Identity.Translate(n.origin.X, n.origin.Y))
	if ref.tag == "symbol" {
		sub.Concat(ref.transform)
		r.drawChildren(sub, ref)
		return
	}
	r.drawNode(sub, ref)
}

// pushClip resolves the clip-path of `n`, and returns false if
// nothing is visible.
func (r *renderer) pushClip(s *svgdraw.Surface, n *node) bool {
	cp, ok := r.icon.ids[n.clipPath]
	if !ok || cp.tag != "clipPath" {
		tracer().Debugf("clip-path: unknown clipPath %q", n.clipPath)
		return true
	}
	var (
		clip        svgpath.Path
		shapes      int
		orientation float64
	)
	useNonZero := cp.style.ClipNonZeroWinding
	for _, child := range cp.children {
		shape := r.clipGeometry(child)
		if len(shape) == 0 {
			continue
		}
		// the children are united: orient them alike so that
		// overlapping areas add up under the non-zero rule
		area := shape.SignedArea(svgpath.DefaultTolerance)
		if orientation == 0 {
			orientation = area
		} else if area*orientation < 0 {
			shape = shape.Reverse()
		}
		clip.Append(shape)
		useNonZero = child.style.ClipNonZeroWinding
		shapes++
	}
	if shapes > 1 && !useNonZero {
		tracer().Debugf("clip-path: %d shapes in %q united with the non-zero rule", shapes, n.clipPath)
		useNonZero = true
	}

	m := cp.transform
	if cp.attrs["clipPathUnits"] == "objectBoundingBox" {
		box := r.geometryBounds(n, rasterx.Identity)
		if svgpath.IsEmptyRect(box) {
			return false
		}
		m = rasterx.Identity.Translate(box.LLx, box.LLy).Scale(box.URx-box.LLx, box.URy-box.LLy).Mult(m)
	}
	s.PushClip(clip.Transform(m), useNonZero)
	return true
}

// clipGeometry returns the shape contributed by a child of a clipPath element
func (r *renderer) clipGeometry(n *node) svgpath.Path {
	switch {
	case isShape(n.tag):
		return n.path.Transform(n.transform)
	case n.tag == "use":
		ref, ok := r.icon.ids[readHref(n)]
		if !ok || !isShape(ref.tag) {
			return nil
		}
		m := n.transform.Translate(n.origin.X, n.origin.Y).Mult(ref.transform)
		return ref.path.Transform(m)
	case n.tag == "text":
		tracer().Infof("text in clip paths is not supported")
	}
	return nil
}

// geometryBounds returns the extent of the shapes of `n`,
// in the coordinates mapped by `m`.
func (r *renderer) geometryBounds(n *node, m rasterx.Matrix2D) rect.Rect {
	box := svgpath.EmptyRect()
	if isShape(n.tag) {
		if b, ok := n.path.Transform(m).Bounds(); ok {
			box = svgpath.Union(box, b)
		}
		return box
	}
	for _, child := range n.children {
		if child.tag == "" || child.tag == "defs" || child.tag == "clipPath" {
			continue
		}
		box = svgpath.Union(box, r.geometryBounds(child, m.Mult(child.transform)))
	}
	return box
}
