// Implements a raster backend to render SVG images,
// by wrapping rasterx.
package svgraster

import (
	"fmt"
	"image"
	"image/color"
	"io"

	"github.com/npillmayer/schuko/tracing"
	"github.com/srwiley/rasterx"
	"golang.org/x/image/draw"
	"golang.org/x/image/math/fixed"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgicon"
	"github.com/benoitkugler/okrender/svgpath"
)

// tracer traces with key 'okrender.raster'
func tracer() tracing.Trace {
	return tracing.Select("okrender.raster")
}

var _ svgdraw.Backend = (*Renderer)(nil) // assert interface conformance

// Renderer draws on an RGBA image.
// Clipping is implemented with alpha masks: when a clip is active,
// shapes are drawn on an offscreen layer, then composited
// through the mask.
type Renderer struct {
	width, height int
	dst           *image.RGBA

	dasher *rasterx.Dasher // to avoid shared state
	filler *rasterx.Filler // we use separated instance

	clip  *image.Alpha   // nil when nothing is clipped
	saved []*image.Alpha // clip at each pending save

	layers LayerPool
}

// NewRenderer returns a renderer drawing on `dst`, which is allocated
// when nil.
func NewRenderer(width, height int, dst *image.RGBA) *Renderer {
	if dst == nil {
		dst = image.NewRGBA(image.Rect(0, 0, width, height))
	}
	scanner := rasterx.NewScannerGV(width, height, dst, dst.Bounds())
	return &Renderer{
		width:  width,
		height: height,
		dst:    dst,
		dasher: rasterx.NewDasher(width, height, scanner),
		filler: rasterx.NewFiller(width, height, scanner),
	}
}

// RasterSVGIconToImage renders the icon into an image
// of the size of its view box, and returns it.
// `opts` may be nil to use default values.
func RasterSVGIconToImage(icon io.Reader, opts *svgicon.RenderOptions) (*image.RGBA, error) {
	parsedIcon, err := svgicon.ReadIconStream(icon, svgicon.IgnoreErrorMode)
	if err != nil {
		return nil, err
	}
	w, h := int(parsedIcon.ViewBox.W), int(parsedIcon.ViewBox.H)
	if w <= 0 || h <= 0 {
		return nil, fmt.Errorf("svgraster: invalid image size %dx%d", w, h)
	}
	renderer := NewRenderer(w, h, nil)
	parsedIcon.Draw(svgdraw.NewSurface(renderer), opts)
	return renderer.Image(), nil
}

// Image returns the image drawn on.
func (rd *Renderer) Image() *image.RGBA { return rd.dst }

// Layers returns the pool of offscreen layers.
func (rd *Renderer) Layers() *LayerPool { return &rd.layers }

// SaveCount returns the number of pending saves.
func (rd *Renderer) SaveCount() int { return len(rd.saved) }

func (rd *Renderer) Save() { rd.saved = append(rd.saved, rd.clip) }

func (rd *Renderer) RestoreToCount(count int) {
	if count < 0 || count > len(rd.saved) {
		panic(fmt.Sprintf("svgraster: invalid restore count %d (pending saves: %d)", count, len(rd.saved)))
	}
	if count == len(rd.saved) {
		return
	}
	rd.clip = rd.saved[count]
	rd.saved = rd.saved[:count]
}

// Clip intersects the clip mask with the interior of `p`.
// Open subpaths are implicitly closed. The mask is computed with
// the non-zero rule, since the rasterx GV scanner has no support
// for the even-odd rule.
func (rd *Renderer) Clip(p svgpath.Path, useNonZeroWinding bool) {
	if !useNonZeroWinding {
		tracer().Debugf("even-odd clip rule approximated by non-zero")
	}
	mask := image.NewAlpha(image.Rect(0, 0, rd.width, rd.height))
	scanner := rasterx.NewScannerGV(rd.width, rd.height, mask, mask.Bounds())
	filler := rasterx.NewFiller(rd.width, rd.height, scanner)
	filler.SetWinding(useNonZeroWinding)
	p.AddTo(filler)
	filler.SetColor(color.Opaque)
	filler.Draw()

	if rd.clip != nil {
		for i, a := range rd.clip.Pix {
			mask.Pix[i] = uint8(uint16(mask.Pix[i]) * uint16(a) / 0xff)
		}
	}
	rd.clip = mask
}

// target returns the image where to draw, and the function to call
// after drawing
func (rd *Renderer) target() (*rasterx.Filler, *rasterx.Dasher, func()) {
	if rd.clip == nil {
		rd.filler.Clear()
		rd.dasher.Clear()
		return rd.filler, rd.dasher, func() {}
	}
	layer, release := rd.layers.Checkout(rd.width, rd.height)
	scanner := rasterx.NewScannerGV(rd.width, rd.height, layer, layer.Bounds())
	filler := rasterx.NewFiller(rd.width, rd.height, scanner)
	dasher := rasterx.NewDasher(rd.width, rd.height, scanner)
	return filler, dasher, func() {
		draw.DrawMask(rd.dst, rd.dst.Bounds(), layer, image.Point{}, rd.clip, image.Point{}, draw.Over)
		release()
	}
}

func (rd *Renderer) Fill(p svgpath.Path, pattern svgdraw.Pattern, opacity float64, useNonZeroWinding bool) {
	filler, _, done := rd.target()
	defer done()
	filler.SetWinding(useNonZeroWinding)
	p.AddTo(filler)
	setColorFromPattern(pattern, opacity, filler.Scanner)
	filler.Draw()
}

func (rd *Renderer) Stroke(p svgpath.Path, options svgdraw.StrokeOptions, pattern svgdraw.Pattern, opacity float64) {
	_, dasher, done := rd.target()
	defer done()
	dasher.SetStroke(
		fixed.Int26_6(options.LineWidth*64), options.Join.MiterLimit, capToFunc[options.Join.LeadLineCap],
		capToFunc[options.Join.TrailLineCap], gapToFunc[options.Join.LineGap],
		joinToJoin[options.Join.LineJoin], options.Dash.Dash, options.Dash.DashOffset,
	)
	p.AddTo(dasher)
	setColorFromPattern(pattern, opacity, dasher.Scanner)
	dasher.Draw()
}

func toRasterxGradient(grad svgpath.Gradient) rasterx.Gradient {
	var points [5]float64
	switch dir := grad.Direction.(type) {
	case svgpath.Linear:
		points[0], points[1], points[2], points[3] = dir[0], dir[1], dir[2], dir[3]
	case svgpath.Radial:
		points[0], points[1], points[2], points[3], points[4] = dir[0], dir[1], dir[2], dir[3], dir[4] // in rasterx fr is ignored
	}
	stops := make([]rasterx.GradStop, len(grad.Stops))
	for i := range grad.Stops {
		stops[i] = rasterx.GradStop(grad.Stops[i])
	}
	return rasterx.Gradient{
		Points:   points,
		Stops:    stops,
		Bounds:   grad.Bounds,
		Matrix:   grad.Matrix,
		Spread:   rasterx.SpreadMethod(grad.Spread),
		Units:    rasterx.GradientUnits(grad.Units),
		IsRadial: grad.IsRadial(),
	}
}

// resolve gradient color
func setColorFromPattern(color svgdraw.Pattern, opacity float64, scanner rasterx.Scanner) {
	switch fillerColor := color.(type) {
	case svgdraw.PlainColor:
		scanner.SetColor(rasterx.ApplyOpacity(fillerColor.RGBA, opacity))
	case svgdraw.Gradient:
		if len(fillerColor.Stops) < 2 {
			// degenerate gradient
			scanner.SetColor(rasterx.ApplyOpacity(fillerColor.LastStopColor(), opacity))
			return
		}
		if fillerColor.Units == svgpath.ObjectBoundingBox {
			fRect := scanner.GetPathExtent()
			mnx, mny := float64(fRect.Min.X)/64, float64(fRect.Min.Y)/64
			mxx, mxy := float64(fRect.Max.X)/64, float64(fRect.Max.Y)/64
			fillerColor.Bounds.X, fillerColor.Bounds.Y = mnx, mny
			fillerColor.Bounds.W, fillerColor.Bounds.H = mxx-mnx, mxy-mny
		}
		rasterxGradient := toRasterxGradient(fillerColor.Gradient)
		scanner.SetColor(rasterxGradient.GetColorFunction(opacity))
	}
}

var (
	joinToJoin = [...]rasterx.JoinMode{
		svgdraw.Round:     rasterx.Round,
		svgdraw.Bevel:     rasterx.Bevel,
		svgdraw.Miter:     rasterx.Miter,
		svgdraw.MiterClip: rasterx.MiterClip,
		svgdraw.Arc:       rasterx.Arc,
		svgdraw.ArcClip:   rasterx.ArcClip,
	}

	capToFunc = [...]rasterx.CapFunc{
		svgdraw.ButtCap:      rasterx.ButtCap,
		svgdraw.SquareCap:    rasterx.SquareCap,
		svgdraw.RoundCap:     rasterx.RoundCap,
		svgdraw.CubicCap:     rasterx.CubicCap,
		svgdraw.QuadraticCap: rasterx.QuadraticCap,
	}

	gapToFunc = [...]rasterx.GapFunc{
		svgdraw.FlatGap:      rasterx.FlatGap,
		svgdraw.RoundGap:     rasterx.RoundGap,
		svgdraw.CubicGap:     rasterx.CubicGap,
		svgdraw.QuadraticGap: rasterx.QuadraticGap,
	}
)
