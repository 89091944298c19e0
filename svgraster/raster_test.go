package svgraster

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/npillmayer/schuko/tracing/gotestingadapter"
	"github.com/srwiley/rasterx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"seehuhn.de/go/geom/vec"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgpath"
)

var red = svgdraw.NewPlainColor(0xff, 0, 0, 0xff)

func rect(minX, minY, maxX, maxY float64) svgpath.Path {
	var p svgpath.Path
	p.AddRect(minX, minY, maxX, maxY, 0)
	return p
}

func pt(x, y float64) vec.Vec2 { return vec.Vec2{X: x, Y: y} }

func isRed(c color.Color) bool {
	r, g, b, a := c.RGBA()
	return r > 0xf000 && g == 0 && b == 0 && a > 0xf000
}

func isTransparent(c color.Color) bool {
	_, _, _, a := c.RGBA()
	return a == 0
}

func saveToPngFile(t *testing.T, m image.Image) {
	var b bytes.Buffer
	require.NoError(t, png.Encode(&b, m))
	name := strings.ReplaceAll(t.Name(), "/", "_")
	err := os.WriteFile(filepath.Join(t.TempDir(), name+".png"), b.Bytes(), os.ModePerm)
	require.NoError(t, err)
}

func TestFill(t *testing.T) {
	rd := NewRenderer(20, 20, nil)
	s := svgdraw.NewSurface(rd)
	s.SetPaint(svgdraw.Paint{Pattern: red, Opacity: 1, UseNonZeroWinding: true})
	s.Fill(rect(5, 5, 15, 15))

	img := rd.Image()
	assert.True(t, isRed(img.At(10, 10)))
	assert.True(t, isTransparent(img.At(2, 2)))
	assert.True(t, isTransparent(img.At(17, 17)))
	assert.Equal(t, 0, rd.Layers().Available()) // no clip, no layer
	saveToPngFile(t, img)
}

func TestClip(t *testing.T) {
	teardown := gotestingadapter.QuickConfig(t, "okrender.raster")
	defer teardown()

	rd := NewRenderer(20, 20, nil)
	s := svgdraw.NewSurface(rd)
	s.SetPaint(svgdraw.Paint{Pattern: red, Opacity: 1, UseNonZeroWinding: true})

	s.PushClip(rect(0, 0, 10, 20), true)
	s.PushClip(rect(0, 0, 20, 10), true)
	assert.Equal(t, 2, rd.SaveCount())
	s.Fill(rect(0, 0, 20, 20))

	img := rd.Image()
	assert.True(t, isRed(img.At(5, 5)))
	assert.True(t, isTransparent(img.At(15, 5)))
	assert.True(t, isTransparent(img.At(5, 15)))
	assert.True(t, isTransparent(img.At(15, 15)))
	assert.Equal(t, 0, rd.Layers().InUse())
	assert.Equal(t, 1, rd.Layers().Available())

	s.ClearClip()
	assert.Equal(t, 0, rd.SaveCount())
	s.Fill(rect(10, 10, 20, 20))
	assert.True(t, isRed(img.At(15, 15)))
	assert.True(t, isTransparent(img.At(15, 5)))
	saveToPngFile(t, img)
}

func TestClipTransformed(t *testing.T) {
	rd := NewRenderer(20, 20, nil)
	s := svgdraw.NewSurface(rd)
	s.SetTransform(rasterx.Identity.Scale(2, 2))
	s.SetPaint(svgdraw.Paint{Pattern: red, Opacity: 1, UseNonZeroWinding: true})
	s.PushClip(rect(0, 0, 5, 5), true)
	s.Fill(rect(0, 0, 10, 10))

	img := rd.Image()
	assert.True(t, isRed(img.At(8, 8)))
	assert.True(t, isTransparent(img.At(12, 12)))

	assert.Panics(t, func() { rd.RestoreToCount(5) })
}

func TestClipOpenSubpath(t *testing.T) {
	rd := NewRenderer(20, 20, nil)
	s := svgdraw.NewSurface(rd)
	s.SetPaint(svgdraw.Paint{Pattern: red, Opacity: 1, UseNonZeroWinding: true})

	// M0 0 L10 0 L10 10, without Z
	var triangle svgpath.Path
	triangle.Start(pt(0, 0))
	triangle.Line(pt(10, 0))
	triangle.Line(pt(10, 10))
	s.PushClip(triangle, true)
	s.Fill(rect(0, 0, 20, 20))

	img := rd.Image()
	assert.True(t, isRed(img.At(8, 2)))
	assert.True(t, isTransparent(img.At(2, 8)))  // below the diagonal
	assert.True(t, isTransparent(img.At(15, 2))) // right of the triangle
	assert.True(t, isTransparent(img.At(15, 8)))
	assert.True(t, isTransparent(img.At(15, 15)))
	saveToPngFile(t, img)
}

func TestStroke(t *testing.T) {
	rd := NewRenderer(20, 20, nil)
	s := svgdraw.NewSurface(rd)
	st := svgdraw.DefaultStroke
	st.Pattern = red
	st.Options.LineWidth = 4
	s.SetStroke(st)

	var p svgpath.Path
	p.Start(pt(2, 10))
	p.Line(pt(18, 10))
	s.Stroke(p)

	img := rd.Image()
	assert.True(t, isRed(img.At(10, 10)))
	assert.True(t, isRed(img.At(10, 8)))
	assert.True(t, isTransparent(img.At(10, 14)))
	assert.True(t, isTransparent(img.At(0, 10)))
}

func TestGradient(t *testing.T) {
	rd := NewRenderer(100, 10, nil)
	s := svgdraw.NewSurface(rd)
	grad := svgdraw.Gradient{Gradient: svgpath.Gradient{
		Direction: svgpath.Linear{0, 0, 1, 0},
		Stops: []svgpath.GradStop{
			{StopColor: color.RGBA{R: 0xff, A: 0xff}, Offset: 0, Opacity: 1},
			{StopColor: color.RGBA{B: 0xff, A: 0xff}, Offset: 1, Opacity: 1},
		},
		Matrix: rasterx.Identity,
		Units:  svgpath.ObjectBoundingBox,
	}}
	s.SetPaint(svgdraw.Paint{Pattern: grad, Opacity: 1, UseNonZeroWinding: true})
	s.Fill(rect(0, 0, 100, 10))

	img := rd.Image()
	r, _, b, _ := img.At(2, 5).RGBA()
	assert.Greater(t, r, b)
	r, _, b, _ = img.At(97, 5).RGBA()
	assert.Greater(t, b, r)

	// a single stop is drawn as a plain color
	grad.Stops = grad.Stops[:1]
	s.SetPaint(svgdraw.Paint{Pattern: grad, Opacity: 1, UseNonZeroWinding: true})
	s.Fill(rect(0, 0, 100, 10))
	assert.True(t, isRed(img.At(97, 5)))
}

func TestLayerPool(t *testing.T) {
	var pool LayerPool
	a, releaseA := pool.Checkout(4, 4)
	b, releaseB := pool.Checkout(4, 4)
	assert.NotSame(t, a, b)
	assert.Equal(t, 2, pool.InUse())

	a.Set(1, 1, color.RGBA{R: 0xff, A: 0xff})
	releaseA()
	releaseA() // no-op
	assert.Equal(t, 1, pool.InUse())
	assert.Equal(t, 1, pool.Available())

	c, releaseC := pool.Checkout(4, 4)
	assert.Same(t, a, c)
	assert.True(t, isTransparent(c.At(1, 1)))

	d, releaseD := pool.Checkout(8, 8)
	assert.Equal(t, 8, d.Bounds().Dx())

	releaseB()
	releaseC()
	releaseD()
	assert.Equal(t, 0, pool.InUse())
	assert.Equal(t, 3, pool.Available())
}

const sampleIcon = `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 40 20" width="40" height="20">
	<defs>
		<clipPath id="left"><rect x="0" y="0" width="20" height="20"/></clipPath>
	</defs>
	<rect x="0" y="0" width="40" height="20" fill="red" clip-path="url(#left)"/>
</svg>`

func TestRasterSVGIconToImage(t *testing.T) {
	img, err := RasterSVGIconToImage(strings.NewReader(sampleIcon), nil)
	require.NoError(t, err)
	assert.Equal(t, image.Rect(0, 0, 40, 20), img.Bounds())
	assert.True(t, isRed(img.At(10, 10)))
	assert.True(t, isTransparent(img.At(30, 10)))

	_, err = RasterSVGIconToImage(strings.NewReader("<svg"), nil)
	assert.Error(t, err)
}
