/*
Package svgtext implements the layout of text content: whitespace
normalization of character data, cursors placing glyphs along a straight
baseline or along a path, fitting of text to a target length, and the
construction of glyph runs painted on a svgdraw.Surface.

The pipeline, for one run of text sharing a style, is:
  - character data is collapsed by a [Normalizer],
  - the result is split in grapheme clusters to form a [TextRun],
  - a [Builder] asks a [GlyphProvider] for each cluster outline,
    advances a [Cursor] and applies an [Advancement] policy,
  - the resulting [GlyphRun] is painted with [Builder.Render].

Glyph selection (shaping) is out of scope: glyphs are provided
per cluster by the font service.
*/
package svgtext

import (
	"github.com/npillmayer/schuko/tracing"
)

// tracer traces with key 'okrender.text'
func tracer() tracing.Trace {
	return tracing.Select("okrender.text")
}
