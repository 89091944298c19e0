// Package svgfont provides glyph outlines from TrueType and OpenType
// fonts, for the text layout of package svgtext.
//
// Glyph selection is a direct lookup of the character map: there is
// no shaping, and a cluster made of several runes is represented
// by the glyph of its first rune.
package svgfont

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/npillmayer/schuko/tracing"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
	"golang.org/x/image/font/sfnt"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"

	"github.com/benoitkugler/okrender/svgpath"
	"github.com/benoitkugler/okrender/svgtext"
)

// tracer traces with key 'okrender.font'
func tracer() tracing.Trace {
	return tracing.Select("okrender.font")
}

var _ svgtext.GlyphProvider = (*Font)(nil)

// Font is a parsed font file, caching the glyphs
// already requested.
// A Font is not safe for concurrent use.
type Font struct {
	sfnt *sfnt.Font
	name string
	upem float64
	ppem fixed.Int26_6 // one font unit per pixel

	buf   sfnt.Buffer
	cache map[string]svgtext.Glyph
}

// Parse parses a TrueType or OpenType font file.
func Parse(data []byte) (*Font, error) {
	f, err := sfnt.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("svgfont: invalid font file: %w", err)
	}
	out := &Font{sfnt: f, cache: make(map[string]svgtext.Glyph)}
	upem := f.UnitsPerEm()
	if upem == 0 {
		return nil, errors.New("svgfont: invalid font file: zero units per em")
	}
	out.upem = float64(upem)
	out.ppem = fixed.Int26_6(upem) << 6
	if out.name, err = f.Name(&out.buf, sfnt.NameIDFull); err != nil {
		out.name = ""
	}
	return out, nil
}

// Default returns the Go Regular font.
func Default() *Font {
	f, err := Parse(goregular.TTF)
	if err != nil {
		panic("svgfont: embedded font is invalid: " + err.Error())
	}
	return f
}

// Name returns the full name of the font, if any.
func (f *Font) Name() string { return f.name }

// toEm converts font units, as returned with ppem = upem
func (f *Font) toEm(v fixed.Int26_6) float64 { return float64(v) / 64 / f.upem }

func (f *Font) toEmPoint(p fixed.Point26_6) vec.Vec2 {
	return vec.Vec2{X: f.toEm(p.X), Y: f.toEm(p.Y)}
}

// CodepointGlyph implements svgtext.GlyphProvider.
// Unsupported characters are mapped to the .notdef glyph.
func (f *Font) CodepointGlyph(cluster string) svgtext.Glyph {
	if g, ok := f.cache[cluster]; ok {
		return g
	}
	g := f.loadGlyph(cluster)
	f.cache[cluster] = g
	return g
}

func (f *Font) loadGlyph(cluster string) svgtext.Glyph {
	r, _ := utf8.DecodeRuneInString(cluster)
	index, err := f.sfnt.GlyphIndex(&f.buf, r)
	if err != nil {
		tracer().Errorf("glyph index for %q: %s", r, err)
		return svgtext.Glyph{}
	}
	if index == 0 {
		tracer().Debugf("no glyph for %q in %s", r, f.name)
	}

	var out svgtext.Glyph
	advance, err := f.sfnt.GlyphAdvance(&f.buf, index, f.ppem, font.HintingNone)
	if err != nil {
		tracer().Errorf("glyph advance for %q: %s", r, err)
	}
	out.Advance = f.toEm(advance)

	segments, err := f.sfnt.LoadGlyph(&f.buf, index, f.ppem, nil)
	if errors.Is(err, sfnt.ErrColoredGlyph) {
		out.IsColor = true
		return out
	} else if err != nil {
		tracer().Errorf("glyph outline for %q: %s", r, err)
		return out
	}
	out.Outline = f.outline(segments)
	return out
}

// outline converts the segments, which are already y-down,
// closing every contour
func (f *Font) outline(segments sfnt.Segments) svgpath.Path {
	var p svgpath.Path
	started := false
	for _, seg := range segments {
		switch seg.Op {
		case sfnt.SegmentOpMoveTo:
			if started {
				p.Stop(true)
			}
			p.Start(f.toEmPoint(seg.Args[0]))
			started = true
		case sfnt.SegmentOpLineTo:
			p.Line(f.toEmPoint(seg.Args[0]))
		case sfnt.SegmentOpQuadTo:
			p.QuadBezier(f.toEmPoint(seg.Args[0]), f.toEmPoint(seg.Args[1]))
		case sfnt.SegmentOpCubeTo:
			p.CubeBezier(f.toEmPoint(seg.Args[0]), f.toEmPoint(seg.Args[1]), f.toEmPoint(seg.Args[2]))
		}
	}
	if started {
		p.Stop(true)
	}
	return p
}
