package svgpdf

import (
	"bytes"
	"image/color"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgpath"
)

func rectPath(minX, minY, maxX, maxY float64) svgpath.Path {
	var p svgpath.Path
	p.AddRect(minX, minY, maxX, maxY, 0)
	return p
}

func output(t *testing.T, r *Renderer) string {
	var buf bytes.Buffer
	require.NoError(t, r.pdf.Output(&buf))
	out := buf.String()
	require.True(t, strings.HasPrefix(out, "%PDF-"))
	return out
}

func TestClipBalance(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "okrender.pdf")
	defer teardown()

	pdf := NewDocument(100, 100)
	pdf.SetCompression(false)
	r := NewRenderer(pdf)
	s := svgdraw.NewSurface(r)

	s.PushClip(rectPath(10, 10, 90, 90), true)
	two := rectPath(0, 0, 10, 10)
	two.Append(rectPath(20, 20, 30, 30))
	s.PushClip(two, false)
	assert.Equal(t, 2, r.SaveCount())
	assert.Equal(t, []int{0, 1, 1}, r.clips)

	s.Fill(rectPath(0, 0, 100, 100))
	s.PopClip()
	assert.Equal(t, 1, r.SaveCount())
	s.ClearClip()
	assert.Equal(t, 0, r.SaveCount())

	out := output(t, r)
	assert.Contains(t, out, "W n")

	assert.Panics(t, func() { r.RestoreToCount(3) })
}

func TestFillAndStroke(t *testing.T) {
	pdf := NewDocument(100, 100)
	r := NewRenderer(pdf)
	s := svgdraw.NewSurface(r)
	s.SetPaint(svgdraw.Paint{Pattern: svgdraw.NewPlainColor(0xff, 0, 0, 0x80), Opacity: 1})
	st := svgdraw.DefaultStroke
	st.Pattern = svgdraw.NewPlainColor(0, 0, 0xff, 0xff)
	st.Options.Join.LineJoin = svgdraw.Round
	st.Options.Dash.Dash = []float64{4, 2}
	s.SetStroke(st)

	var p svgpath.Path
	p.AddRoundRect(10, 10, 90, 60, 5, 5, 0)
	s.Fill(p)
	s.Stroke(p)
	assert.False(t, pdf.Err())
	output(t, r)
}

func TestGradientFill(t *testing.T) {
	pdf := NewDocument(100, 100)
	r := NewRenderer(pdf)
	s := svgdraw.NewSurface(r)
	grad := svgdraw.Gradient{Gradient: svgpath.Gradient{
		Direction: svgpath.Linear{0, 0, 1, 0},
		Stops: []svgpath.GradStop{
			{StopColor: color.RGBA{R: 0xff, A: 0xff}, Offset: 0, Opacity: 1},
			{StopColor: color.RGBA{B: 0xff, A: 0xff}, Offset: 1, Opacity: 1},
		},
		Matrix: rasterx.Identity,
	}}
	s.SetPaint(svgdraw.Paint{Pattern: grad, Opacity: 1})
	var p svgpath.Path
	p.AddEllipse(50, 50, 40, 20)
	s.Fill(p)

	box, _ := p.Bounds()
	x, y := gradientPoint(grad, box, 1, 0)
	assert.Equal(t, [2]float64{1, 1}, [2]float64{x, y})
	assert.False(t, pdf.Err())
	output(t, r)
}

func TestRenderSVGIconToPDF(t *testing.T) {
	const icon = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 120 40">
	<path id="curve" d="M10 30 Q60 0 110 30" fill="none" stroke="black"/>
	<text font-size="10"><textPath href="#curve">On a curve</textPath></text>
	</svg>`
	var buf bytes.Buffer
	err := RenderSVGIconToPDF(strings.NewReader(icon), &buf, nil)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(buf.String(), "%PDF-"))

	err = RenderSVGIconToPDF(strings.NewReader(`<svg></svg>`), &buf, nil)
	assert.Error(t, err)
}
