package svgicon

import (
	"image/color"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgpath"
	"github.com/benoitkugler/okrender/svgtext"
)

func parseIcon(t *testing.T, doc string) *SvgIcon {
	icon, err := ReadIconStream(strings.NewReader(doc), WarnErrorMode)
	require.NoError(t, err)
	return icon
}

// element returns the descendant of the root at the given child indices
func element(icon *SvgIcon, indices ...int) *node {
	n := icon.root
	for _, i := range indices {
		n = n.children[i]
	}
	return n
}

func TestReadIconStream(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "okrender.icon")
	defer teardown()

	icon := parseIcon(t, `<?xml version="1.0" encoding="ISO-8859-1"?>
	<svg xmlns="http://www.w3.org/2000/svg" viewBox="5 10 200 100" width="400" height="200px">
		<title>Sample</title>
		<desc>Two shapes</desc>
		<rect x="10" y="10" width="20" height="20"/>
		<g><circle cx="50" cy="50" r="10"/></g>
	</svg>`)
	assert.Equal(t, svgpath.Bounds{X: 5, Y: 10, W: 200, H: 100}, icon.ViewBox)
	assert.Equal(t, "400", icon.Width)
	assert.Equal(t, "200px", icon.Height)
	assert.Equal(t, []string{"Sample"}, icon.Titles)
	assert.Equal(t, []string{"Two shapes"}, icon.Descriptions)
	assert.Equal(t, 6, icon.ElementCount())
	x, y := icon.Transform.Transform(5, 10)
	assert.Equal(t, [2]float64{0, 0}, [2]float64{x, y})

	icon.SetTarget(10, 0, 400, 200)
	x, y = icon.Transform.Transform(205, 110)
	assert.InDelta(t, 410, x, 1e-9)
	assert.InDelta(t, 200, y, 1e-9)

	// size without view box
	icon = parseIcon(t, `<svg width="30" height="1in"></svg>`)
	assert.Equal(t, svgpath.Bounds{W: 30, H: 96}, icon.ViewBox)

	_, err := ReadIconStream(strings.NewReader("<svg"), IgnoreErrorMode)
	assert.Error(t, err)
	_, err = ReadIconStream(strings.NewReader(""), IgnoreErrorMode)
	assert.Error(t, err)
}

func TestErrorModes(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "okrender.icon")
	defer teardown()

	const doc = `<svg viewBox="0 0 10 10"><blink/><rect width="5" height="5" fill="#12"/></svg>`
	for _, mode := range []ErrorMode{IgnoreErrorMode, WarnErrorMode} {
		icon, err := ReadIconStream(strings.NewReader(doc), mode)
		assert.NoError(t, err)
		assert.Equal(t, 3, icon.ElementCount())
	}
	_, err := ReadIconStream(strings.NewReader(doc), StrictErrorMode)
	assert.Error(t, err)
}

func TestParseSVGColor(t *testing.T) {
	current := color.RGBA{R: 1, G: 2, B: 3, A: 0xff}
	for _, test := range []struct {
		in   string
		want color.RGBA
		ok   bool
	}{
		{"#f00", color.RGBA{R: 0xff, A: 0xff}, true},
		{"#00FF00", color.RGBA{G: 0xff, A: 0xff}, true},
		{"rgb(0, 0, 255)", color.RGBA{B: 0xff, A: 0xff}, true},
		{"rgb(100%,0%,0%)", color.RGBA{R: 0xff, A: 0xff}, true},
		{"rgba(255,0,0,0.5)", color.RGBA{R: 0x80, A: 0x80}, true},
		{"Red", color.RGBA{R: 0xff, A: 0xff}, true},
		{"currentColor", current, true},
		{"none", color.RGBA{}, false},
	} {
		got, ok, err := parseSVGColor(test.in, current)
		assert.NoError(t, err, test.in)
		assert.Equal(t, test.ok, ok, test.in)
		assert.Equal(t, test.want, got, test.in)
	}

	for _, invalid := range []string{"#12", "#gggggg", "rgb(1,2)", "bogus"} {
		_, _, err := parseSVGColor(invalid, current)
		assert.Error(t, err, invalid)
	}
}

func TestParseTransform(t *testing.T) {
	m, err := parseTransform("translate(10 20) scale(2)")
	require.NoError(t, err)
	x, y := m.Transform(1, 1)
	assert.Equal(t, [2]float64{12, 22}, [2]float64{x, y})

	m, err = parseTransform("rotate(90, 10, 10)")
	require.NoError(t, err)
	x, y = m.Transform(20, 10)
	assert.InDelta(t, 10, x, 1e-9)
	assert.InDelta(t, 20, y, 1e-9)

	for _, invalid := range []string{"foo(1)", "translate(1,2,3)", "scale()", "matrix(1 0 0 1)"} {
		_, err = parseTransform(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestParseUnit(t *testing.T) {
	c := &iconCursor{
		icon:  &SvgIcon{ViewBox: svgpath.Bounds{W: 200, H: 50}},
		stack: []*node{{style: DefaultStyle}},
	}
	for _, test := range []struct {
		in   string
		ref  percentageReference
		want float64
	}{
		{"12", widthPercentage, 12},
		{" 1in", widthPercentage, 96},
		{"3pt", widthPercentage, 4},
		{"2em", widthPercentage, 32},
		{"50%", widthPercentage, 100},
		{"50%", heightPercentage, 25},
	} {
		got, err := c.parseUnit(test.in, test.ref)
		assert.NoError(t, err)
		assert.InDelta(t, test.want, got, 1e-9, test.in)
	}
	_, err := c.parseUnit("1xx", widthPercentage)
	assert.Error(t, err)
}

func TestStyleInheritance(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 10 10">
		<g fill="red" stroke="green" stroke-width="3" font-size="20" style="fill: blue; stroke-dasharray: 1 2 3">
			<rect width="5" height="5" fill-rule="evenodd" opacity="0.5" stroke-linecap="round" stroke-linejoin="miter"/>
		</g>
	</svg>`)
	g := element(icon, 0, 0)
	rect := element(icon, 0, 0, 0)
	assert.Equal(t, 1., g.opacity)
	assert.Equal(t, 0.5, rect.opacity)

	st := rect.style
	assert.Equal(t, svgdraw.PlainColor{RGBA: color.RGBA{B: 0xff, A: 0xff}}, st.fill.pattern)
	assert.Equal(t, svgdraw.PlainColor{RGBA: color.RGBA{G: 0x80, A: 0xff}}, st.stroke.pattern)
	assert.False(t, st.UseNonZeroWinding)
	assert.Equal(t, 3., st.Stroke.LineWidth)
	assert.Equal(t, []float64{1, 2, 3, 1, 2, 3}, st.Stroke.Dash.Dash)
	assert.Equal(t, svgdraw.RoundCap, st.Stroke.Join.TrailLineCap)
	assert.Equal(t, svgdraw.Miter, st.Stroke.Join.LineJoin)
	assert.Equal(t, 20., st.FontSize)

	// the parent is not modified
	assert.True(t, g.style.UseNonZeroWinding)
	assert.Equal(t, svgdraw.ButtCap, g.style.Stroke.Join.TrailLineCap)
}

func TestShapes(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 100 100">
		<rect x="10" y="20" width="30" height="40" rx="5"/>
		<rect width="0" height="10"/>
		<circle cx="50" cy="50" r="10"/>
		<ellipse cx="50" cy="50" rx="20" ry="10"/>
		<line x1="0" y1="0" x2="10" y2="10"/>
		<polyline points="0,0 10,0 10,10"/>
		<polygon points="0,0 10,0 10,10"/>
		<path d="M 0 0 L 10 10 Z"/>
	</svg>`)
	svg := element(icon, 0)
	require.Len(t, svg.children, 8)

	box, ok := svg.children[0].path.Bounds()
	require.True(t, ok)
	assert.InDelta(t, 10, box.LLx, 1e-6)
	assert.InDelta(t, 20, box.LLy, 1e-6)
	assert.InDelta(t, 40, box.URx, 1e-6)
	assert.InDelta(t, 60, box.URy, 1e-6)

	assert.Empty(t, svg.children[1].path)

	box, _ = svg.children[3].path.Bounds()
	assert.InDelta(t, 30, box.LLx, 1e-6)
	assert.InDelta(t, 60, box.URy, 1e-6)

	_, isClose := svg.children[5].path[len(svg.children[5].path)-1].(svgpath.Close)
	assert.False(t, isClose)
	_, isClose = svg.children[6].path[len(svg.children[6].path)-1].(svgpath.Close)
	assert.True(t, isClose)
	assert.NotEmpty(t, svg.children[7].path)
}

func TestGradientDefinitions(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 100 100">
		<defs>
			<linearGradient id="lin" x1="10%" x2="90%" gradientUnits="userSpaceOnUse" spreadMethod="reflect">
				<stop offset="0" stop-color="red"/>
				<stop offset="50%" style="stop-color: blue; stop-opacity: 0.5"/>
				<stop offset="0.2" stop-color="green"/>
			</linearGradient>
			<radialGradient id="rad" cx="0.3" r="0.4" href="#lin"/>
		</defs>
	</svg>`)
	lin := icon.grads["lin"]
	require.NotNil(t, lin)
	assert.Equal(t, svgpath.Linear{0.1, 0, 0.9, 0}, lin.Direction)
	assert.Equal(t, svgpath.UserSpaceOnUse, lin.Units)
	assert.Equal(t, svgpath.ReflectSpread, lin.Spread)
	require.Len(t, lin.Stops, 3)
	assert.Equal(t, color.RGBA{B: 0xff, A: 0xff}, lin.Stops[1].StopColor)
	assert.Equal(t, 0.5, lin.Stops[1].Opacity)
	assert.Equal(t, 0.5, lin.Stops[2].Offset) // offsets are monotonic

	rad := icon.grads["rad"]
	require.NotNil(t, rad)
	assert.Equal(t, svgpath.Radial{0.3, 0.5, 0.3, 0.5, 0.4, 0}, rad.Direction)
	assert.Equal(t, "lin", rad.href)
	assert.Empty(t, rad.Stops)
}

func TestTextAttributes(t *testing.T) {
	icon := parseIcon(t, `<svg viewBox="0 0 100 100" xmlns:xlink="http://www.w3.org/1999/xlink">
		<path id="p" d="M0 0 H 100"/>
		<text x="1 2,3" dy="1em" font-size="10" rotate="10 20" textLength="50" lengthAdjust="spacingAndGlyphs">A<tspan dx="4">B</tspan>C</text>
		<text><textPath xlink:href="#p" startOffset="25%" side="right">D</textPath></text>
	</svg>`)
	text := element(icon, 0, 1)
	require.NotNil(t, text.textAttrs)
	assert.Equal(t, svgtext.Overrides{X: []float64{1, 2, 3}, DY: []float64{10}, Rotate: []float64{10, 20}}, text.textAttrs.overrides)
	assert.Equal(t, 50., text.textAttrs.textLength)
	assert.Equal(t, svgtext.SpacingAndGlyphs, text.textAttrs.lengthAdjust)

	require.Len(t, text.children, 3)
	assert.Equal(t, "A", text.children[0].text)
	assert.Equal(t, "tspan", text.children[1].tag)
	assert.Equal(t, []float64{4}, text.children[1].textAttrs.overrides.DX)
	assert.Equal(t, "C", text.children[2].text)
	assert.Equal(t, 10., text.children[2].style.FontSize)

	textPath := element(icon, 0, 2, 0)
	assert.Equal(t, "p", readHref(textPath))
	assert.True(t, textPath.textAttrs.offsetIsFraction)
	assert.Equal(t, 0.25, textPath.textAttrs.startOffset)
	assert.True(t, textPath.textAttrs.reversed)
}
