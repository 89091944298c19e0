package svgicon

import (
	"image/color"
	"math"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/rect"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgpath"
)

// record draws the document on a Recorder
func record(t *testing.T, doc string, opts *RenderOptions) *svgdraw.Recorder {
	icon := parseIcon(t, doc)
	var rec svgdraw.Recorder
	surface := svgdraw.NewSurface(&rec)
	icon.Draw(surface, opts)
	assert.Equal(t, 0, surface.SaveCount())
	assert.Equal(t, 0, rec.SaveCount())
	return &rec
}

// commands returns the recorded commands of type `ty`
func commands(rec *svgdraw.Recorder, ty svgdraw.CommandType) []svgdraw.Command {
	var out []svgdraw.Command
	for _, c := range rec.Commands {
		if c.Type == ty {
			out = append(out, c)
		}
	}
	return out
}

func bounds(t *testing.T, p svgpath.Path) rect.Rect {
	box, ok := p.Bounds()
	require.True(t, ok)
	return box
}

func assertRect(t *testing.T, expected, got rect.Rect) {
	t.Helper()
	assert.InDelta(t, expected.LLx, got.LLx, 1e-6)
	assert.InDelta(t, expected.LLy, got.LLy, 1e-6)
	assert.InDelta(t, expected.URx, got.URx, 1e-6)
	assert.InDelta(t, expected.URy, got.URy, 1e-6)
}

func TestDrawTransformsAndOpacity(t *testing.T) {
	rec := record(t, `<svg viewBox="10 10 100 100">
		<g transform="translate(20 0)" opacity="0.5">
			<rect id="r" x="10" y="10" width="10" height="10" fill="#ff0000" fill-opacity="0.5"/>
		</g>
		<use href="#r" x="30"/>
	</svg>`, nil)
	fills := commands(rec, svgdraw.CmdFill)
	require.Len(t, fills, 2)

	assertRect(t, rect.Rect{LLx: 20, LLy: 0, URx: 30, URy: 10}, bounds(t, fills[0].Path))
	assert.Equal(t, 0.25, fills[0].Opacity)
	assert.Equal(t, svgdraw.NewPlainColor(0xff, 0, 0, 0xff), fills[0].Pattern)

	// the group does not apply to the use element
	assertRect(t, rect.Rect{LLx: 30, LLy: 0, URx: 40, URy: 10}, bounds(t, fills[1].Path))
	assert.Equal(t, 0.5, fills[1].Opacity)
	assert.Empty(t, commands(rec, svgdraw.CmdStroke))
}

func TestDrawStroke(t *testing.T) {
	rec := record(t, `<svg viewBox="0 0 100 100">
		<g transform="scale(2)">
			<line x1="0" y1="0" x2="10" y2="0" stroke="blue" stroke-width="3" stroke-dasharray="2 1"/>
		</g>
		<rect width="10" height="10" stroke="black" paint-order="stroke"/>
	</svg>`, nil)
	require.Len(t, rec.Commands, 4)

	// a line has no interior, but is filled with the default paint
	assert.Equal(t, svgdraw.CmdFill, rec.Commands[0].Type)
	line := rec.Commands[1]
	assert.Equal(t, svgdraw.CmdStroke, line.Type)
	assert.Equal(t, 6., line.Stroke.LineWidth)
	assert.Equal(t, []float64{4, 2}, line.Stroke.Dash.Dash)
	assertRect(t, rect.Rect{URx: 20}, bounds(t, line.Path))

	assert.Equal(t, svgdraw.CmdStroke, rec.Commands[2].Type)
	assert.Equal(t, svgdraw.CmdFill, rec.Commands[3].Type)
}

func TestDrawClipPath(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "okrender.icon")
	defer teardown()

	rec := record(t, `<svg viewBox="0 0 40 20">
		<defs>
			<clipPath id="left"><rect width="20" height="20"/></clipPath>
			<clipPath id="half" clipPathUnits="objectBoundingBox"><rect width="0.5" height="1" clip-rule="evenodd"/></clipPath>
		</defs>
		<rect width="40" height="20" fill="red" clip-path="url(#left)"/>
		<g clip-path="url(#left)">
			<rect width="10" height="10" fill="blue"/>
			<rect x="10" width="10" height="10" fill="green"/>
		</g>
		<rect x="10" width="20" height="10" clip-path="url(#half)"/>
		<rect width="5" height="5" clip-path="url(#missing)"/>
	</svg>`, nil)

	clips := commands(rec, svgdraw.CmdClip)
	require.Len(t, clips, 3) // the group clip is pushed once
	assertRect(t, rect.Rect{URx: 20, URy: 20}, bounds(t, clips[0].Path))
	assertRect(t, rect.Rect{URx: 20, URy: 20}, bounds(t, clips[1].Path))
	assertRect(t, rect.Rect{LLx: 10, URx: 20, URy: 10}, bounds(t, clips[2].Path))

	assert.Len(t, commands(rec, svgdraw.CmdFill), 5)
	assert.Equal(t, 3, rec.Count(svgdraw.CmdSave))
	assert.Equal(t, 3, rec.Count(svgdraw.CmdRestore))
	assert.Equal(t, svgdraw.CmdRestore, rec.Commands[len(rec.Commands)-2].Type)
}

func TestDrawClipPathUnion(t *testing.T) {
	rec := record(t, `<svg viewBox="0 0 20 10">
		<defs>
			<clipPath id="both">
				<path d="M0 0 H10 V10 H0 Z"/>
				<path d="M5 0 V10 H15 V0 Z" clip-rule="evenodd"/>
			</clipPath>
			<clipPath id="single"><path d="M0 0 H10 V10 H0 Z" clip-rule="evenodd"/></clipPath>
		</defs>
		<rect width="20" height="10" clip-path="url(#both)"/>
		<rect width="20" height="10" clip-path="url(#single)"/>
	</svg>`, nil)

	clips := commands(rec, svgdraw.CmdClip)
	require.Len(t, clips, 2)

	union := clips[0]
	assert.True(t, union.NonZero)
	subpaths := union.Path.Subpaths()
	require.Len(t, subpaths, 2)
	// the second square is reversed to match the first one,
	// so that the overlap does not cancel out
	first, second := subpaths[0].SignedArea(0), subpaths[1].SignedArea(0)
	assert.InDelta(t, 100, math.Abs(first), 1e-6)
	assert.Greater(t, first*second, 0.)
	assertRect(t, rect.Rect{URx: 15, URy: 10}, bounds(t, union.Path))

	assert.False(t, clips[1].NonZero)
}

func TestDrawGradientReferences(t *testing.T) {
	rec := record(t, `<svg viewBox="0 0 10 10">
		<rect width="10" height="10" fill="url(#derived)"/>
		<rect width="10" height="10" fill="url(#missing) green"/>
		<rect width="10" height="10" fill="url(#missing)"/>
		<defs>
			<linearGradient id="base"><stop offset="0" stop-color="red"/><stop offset="1" stop-color="blue"/></linearGradient>
			<linearGradient id="derived" href="#base" x2="0" y2="1"/>
			<linearGradient id="loop1" href="#loop2"/>
			<linearGradient id="loop2" href="#loop1"/>
		</defs>
		<rect width="10" height="10" fill="url(#loop1)"/>
	</svg>`, nil)
	fills := commands(rec, svgdraw.CmdFill)
	require.Len(t, fills, 3)

	grad, ok := fills[0].Pattern.(svgdraw.Gradient)
	require.True(t, ok)
	assert.Equal(t, svgpath.Linear{0, 0, 0, 1}, grad.Direction)
	require.Len(t, grad.Stops, 2)
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, grad.Stops[1].StopColor)

	assert.Equal(t, svgdraw.PlainColor{RGBA: color.RGBA{G: 0x80, A: 0xff}}, fills[1].Pattern)

	grad, ok = fills[2].Pattern.(svgdraw.Gradient)
	require.True(t, ok)
	assert.Empty(t, grad.Stops)
}

func TestDrawUse(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "okrender.icon")
	defer teardown()

	rec := record(t, `<svg viewBox="0 0 100 100">
		<defs>
			<symbol id="sym"><rect width="10" height="10"/></symbol>
			<g id="loop"><use href="#loop"/><rect width="1" height="1"/></g>
		</defs>
		<use href="#sym" x="5" y="5"/>
		<use href="#sym" x="50" transform="translate(0 10)"/>
		<use href="#loop"/>
		<use href="#nothing"/>
	</svg>`, nil)
	fills := commands(rec, svgdraw.CmdFill)
	require.Len(t, fills, 3)
	assertRect(t, rect.Rect{LLx: 5, LLy: 5, URx: 15, URy: 15}, bounds(t, fills[0].Path))
	assertRect(t, rect.Rect{LLx: 50, LLy: 10, URx: 60, URy: 20}, bounds(t, fills[1].Path))
	assertRect(t, rect.Rect{URx: 1, URy: 1}, bounds(t, fills[2].Path))
}

func TestDrawKeepsSurfaceState(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 10 10">
		<defs><clipPath id="c"><rect width="5" height="5"/></clipPath></defs>
		<g clip-path="url(#c)" opacity="0.3" transform="scale(3)"><rect width="2" height="2" fill="blue"/></g>
	</svg>`)
	var rec svgdraw.Recorder
	surface := svgdraw.NewSurface(&rec)
	var outer svgpath.Path
	outer.AddRect(0, 0, 8, 8, 0)
	surface.PushClip(outer, true)
	before := surface.SafeState()

	icon.Draw(surface, nil)
	assert.Equal(t, 1, surface.SaveCount())
	assert.Len(t, surface.ClipStack(), 1)
	assert.Equal(t, 1., surface.Opacity())
	assert.Equal(t, svgdraw.DefaultPaint, surface.Paint())

	rec.Reset()
	surface.Restore(before)
	assert.Empty(t, rec.Commands) // nothing to reconcile
}
