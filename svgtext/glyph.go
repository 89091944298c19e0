package svgtext

import (
	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgpath"
)

// Glyph is the shape of one cluster, for a font size of 1
// (that is, in em units), with y pointing downward.
type Glyph struct {
	Advance float64
	Outline svgpath.Path
	// IsColor is true for glyphs which are not described
	// by an outline, such as bitmap or layered emojis.
	IsColor bool
}

// GlyphProvider is the font service selecting glyphs.
type GlyphProvider interface {
	CodepointGlyph(cluster string) Glyph
}

// ColorGlyphPainter may be implemented by a GlyphProvider
// to paint color glyphs. The surface transform maps the em square
// of the glyph, and is restored by the caller.
type ColorGlyphPainter interface {
	PaintColorGlyph(s *svgdraw.Surface, cluster string)
}
