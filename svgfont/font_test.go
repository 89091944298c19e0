package svgfont

import (
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/okrender/svgpath"
	"github.com/benoitkugler/okrender/svgtext"
)

func TestParse(t *testing.T) {
	_, err := Parse([]byte("not a font"))
	assert.Error(t, err)

	f := Default()
	assert.Contains(t, f.Name(), "Go")
}

func TestGlyphs(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "okrender.font")
	defer teardown()

	f := Default()
	a := f.CodepointGlyph("A")
	assert.False(t, a.IsColor)
	assert.Greater(t, a.Advance, 0.3)
	assert.Less(t, a.Advance, 1.)
	require.NotEmpty(t, a.Outline)
	_, isClosed := a.Outline[len(a.Outline)-1].(svgpath.Close)
	assert.True(t, isClosed)

	box, ok := a.Outline.Bounds()
	require.True(t, ok)
	// y points downward: the glyph is above the baseline
	assert.Less(t, box.LLy, -0.5)
	assert.InDelta(t, 0, box.URy, 0.02)

	space := f.CodepointGlyph(" ")
	assert.Empty(t, space.Outline)
	assert.Greater(t, space.Advance, 0.)

	// cached
	assert.Equal(t, a, f.CodepointGlyph("A"))
	assert.Len(t, f.cache, 2)

	// combining marks use the glyph of the base character
	assert.Equal(t, f.CodepointGlyph("e").Advance, f.CodepointGlyph("é").Advance)
}

func TestLayoutWithFont(t *testing.T) {
	f := Default()
	b := svgtext.Builder{Provider: f, FontSize: 20}
	run := svgtext.NewTextRun("Hello")
	m := b.Measure(run)
	cursor := svgtext.NewLinearCursor(0, 50)
	gr := b.Layout(run, cursor, svgtext.Advancement{})
	assert.Equal(t, 5, gr.Count)
	assert.InDelta(t, m.Natural, cursor.Location().X, 1e-9)
	assert.Less(t, gr.PaintBounds.LLy, 50.)
	assert.Greater(t, gr.PaintBounds.URx, 0.)
}
