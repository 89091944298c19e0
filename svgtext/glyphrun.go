package svgtext

import (
	"github.com/srwiley/rasterx"
	"seehuhn.de/go/geom/rect"
	"seehuhn.de/go/geom/vec"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgpath"
)

// PaintOrder selects whether the fill or the stroke of text is painted first.
type PaintOrder uint8

const (
	FillStroke PaintOrder = iota
	StrokeFill
)

// PlacedGlyph is a color glyph, which can't be merged in the
// outline of the run, with its transform mapping the em square
// to user space.
type PlacedGlyph struct {
	Cluster   string
	Index     int // index of the cluster in the run
	Transform rasterx.Matrix2D
}

// GlyphRun is the result of the layout of a TextRun.
type GlyphRun struct {
	// Outline is the union of the visible outline glyphs, in user space.
	Outline svgpath.Path
	// ColorGlyphs are painted by the font service.
	ColorGlyphs []PlacedGlyph

	// PaintBounds is the ink extent of the visible glyphs.
	PaintBounds rect.Rect
	// LayoutBounds spans the cursor positions, from before the first
	// advance to after the last one.
	LayoutBounds rect.Rect

	// Breaks are the indices of the clusters starting a new sub-run,
	// because they are not directly following the previous one.
	Breaks []int
	// Count is the number of clusters laid out, which is less than
	// the length of the run when the cursor stopped early.
	Count int
}

// IsEmpty returns true if nothing is visible.
func (gr GlyphRun) IsEmpty() bool { return len(gr.Outline) == 0 && len(gr.ColorGlyphs) == 0 }

// Builder lays out runs of text sharing one font and style.
type Builder struct {
	Provider GlyphProvider
	// FontSize is the size of the em square, in user units.
	// Zero means 16.
	FontSize float64
	// LetterSpacing is added after each glyph, in user units.
	LetterSpacing float64
}

func (b Builder) fontSize() float64 {
	if b.FontSize == 0 {
		return 16
	}
	return b.FontSize
}

// Measure returns the natural metrics of `run`. The letter spacing
// of the last glyph is not included.
func (b Builder) Measure(run TextRun) Metrics {
	fs := b.fontSize()
	var m Metrics
	for _, cluster := range run.Clusters() {
		m.Natural += b.Provider.CodepointGlyph(cluster).Advance * fs
	}
	m.Glyphs = run.Len()
	if m.Glyphs > 1 {
		m.Natural += b.LetterSpacing * float64(m.Glyphs-1)
	}
	return m
}

// Layout places the clusters of `run` with `cursor`, fitted with `adv`.
// The cursor is updated and may be used for a following run.
// Layout stops early when the cursor signals the end of its path.
func (b Builder) Layout(run TextRun, cursor *Cursor, adv Advancement) GlyphRun {
	out := GlyphRun{PaintBounds: svgpath.EmptyRect(), LayoutBounds: svgpath.EmptyRect()}
	fs := b.fontSize()
	scale := adv.Scale()
	n := run.Len()
	for i, cluster := range run.Clusters() {
		// overrides are consumed by Advance
		isBreak := i > 0 && !cursor.IsAutoLayout()

		glyph := b.Provider.CodepointGlyph(cluster)
		width := glyph.Advance * fs * scale
		m, ok := cursor.Advance(width)
		if !ok {
			break
		}
		if isBreak {
			out.Breaks = append(out.Breaks, i)
		}
		out.Count++
		out.LayoutBounds = svgpath.Extend(out.LayoutBounds, pointOf(m, 0, 0))
		out.LayoutBounds = svgpath.Extend(out.LayoutBounds, pointOf(m, width, 0))

		if cursor.ShouldRenderGlyph() {
			// the outline is stretched before being placed
			gm := m.Scale(scale, 1).Scale(fs, fs)
			if glyph.IsColor {
				out.ColorGlyphs = append(out.ColorGlyphs, PlacedGlyph{Cluster: cluster, Index: i, Transform: gm})
				for _, pt := range [4][2]float64{{0, 0}, {glyph.Advance, 0}, {0, -1}, {glyph.Advance, -1}} {
					out.PaintBounds = svgpath.Extend(out.PaintBounds, pointOf(gm, pt[0], pt[1]))
				}
			} else if len(glyph.Outline) != 0 {
				outline := glyph.Outline.Transform(gm)
				if box, ok := outline.Bounds(); ok {
					out.PaintBounds = svgpath.Union(out.PaintBounds, box)
				}
				out.Outline.Append(outline)
			}
		}

		if i == n-1 && !adv.IsIdentity() {
			// a fitted run ends with its last glyph
			continue
		}
		if gap := b.LetterSpacing*scale + adv.ExtraPerGap(); gap != 0 {
			cursor.AdvanceSpacing(gap)
		}
	}
	if out.Count < n {
		tracer().Debugf("layout of %q stopped after %d clusters", run.String(), out.Count)
	}
	return out
}

func pointOf(m rasterx.Matrix2D, x, y float64) vec.Vec2 {
	x, y = m.Transform(x, y)
	return vec.Vec2{X: x, Y: y}
}

// Render paints `run` on `s`, using its current paint and stroke,
// in the given order. Color glyphs are painted last, by the glyph provider
// if it implements ColorGlyphPainter, and skipped otherwise.
func (b Builder) Render(s *svgdraw.Surface, order PaintOrder, run GlyphRun) {
	if len(run.Outline) != 0 {
		switch order {
		case StrokeFill:
			s.Stroke(run.Outline)
			s.Fill(run.Outline)
		default:
			s.Fill(run.Outline)
			s.Stroke(run.Outline)
		}
	}

	if len(run.ColorGlyphs) == 0 {
		return
	}
	painter, ok := b.Provider.(ColorGlyphPainter)
	if !ok {
		tracer().Infof("no painter for %d color glyph(s): skipping", len(run.ColorGlyphs))
		return
	}
	for _, glyph := range run.ColorGlyphs {
		paintColorGlyph(s, painter, glyph)
	}
}

func paintColorGlyph(s *svgdraw.Surface, painter ColorGlyphPainter, glyph PlacedGlyph) {
	state := s.SafeState()
	defer s.Restore(state)
	s.Concat(glyph.Transform)
	painter.PaintColorGlyph(s, glyph.Cluster)
}
