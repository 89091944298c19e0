// Implements a PDF backend to render SVG images,
// by wrapping github.com/jung-kurt/gofpdf.
package svgpdf

import (
	"fmt"
	"image/color"
	"io"

	"github.com/jung-kurt/gofpdf"
	"github.com/npillmayer/schuko/tracing"
	"seehuhn.de/go/geom/path"
	"seehuhn.de/go/geom/rect"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgicon"
	"github.com/benoitkugler/okrender/svgpath"
)

// tracer traces with key 'okrender.pdf'
func tracer() tracing.Trace {
	return tracing.Select("okrender.pdf")
}

var _ svgdraw.Backend = (*Renderer)(nil) // assert interface conformance

// Renderer writes the drawing operations to the current page of a PDF
// document. Device space coordinates are used as page units,
// with the origin at the top left corner.
type Renderer struct {
	pdf *gofpdf.Fpdf

	// clips[d] is the number of clipping operations
	// emitted at save depth d
	clips []int
	// Tolerance is the flatness used to approximate clip paths.
	Tolerance float64
}

// NewRenderer return a renderer which will
// write to the current page of the given `pdf`.
func NewRenderer(pdf *gofpdf.Fpdf) *Renderer {
	return &Renderer{pdf: pdf, clips: []int{0}, Tolerance: svgpath.DefaultTolerance}
}

// NewDocument returns a document with one page of size (width, height),
// in points.
func NewDocument(width, height float64) *gofpdf.Fpdf {
	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: width, Ht: height},
	})
	pdf.AddPage()
	return pdf
}

// RenderSVGIconToPDF renders the icon in a one page document,
// whose page has the size of the icon view box, and writes it to `out`.
// `opts` may be nil to use default values.
func RenderSVGIconToPDF(icon io.Reader, out io.Writer, opts *svgicon.RenderOptions) error {
	parsedIcon, err := svgicon.ReadIconStream(icon, svgicon.IgnoreErrorMode)
	if err != nil {
		return err
	}
	w, h := parsedIcon.ViewBox.W, parsedIcon.ViewBox.H
	if w <= 0 || h <= 0 {
		return fmt.Errorf("svgpdf: invalid page size %gx%g", w, h)
	}
	pdf := NewDocument(w, h)
	renderer := NewRenderer(pdf)
	surface := svgdraw.NewSurface(renderer)
	parsedIcon.Draw(surface, opts)
	surface.ClearClip()
	return pdf.Output(out)
}

// SaveCount returns the number of pending saves.
func (r *Renderer) SaveCount() int { return len(r.clips) - 1 }

func (r *Renderer) Save() { r.clips = append(r.clips, 0) }

func (r *Renderer) RestoreToCount(count int) {
	if count < 0 || count > r.SaveCount() {
		panic(fmt.Sprintf("svgpdf: invalid restore count %d (pending saves: %d)", count, r.SaveCount()))
	}
	for d := len(r.clips) - 1; d > count; d-- {
		for i := 0; i < r.clips[d]; i++ {
			r.pdf.ClipEnd()
		}
	}
	r.clips = r.clips[:count+1]
}

// Clip uses the path outline when it has only one subpath, and its
// bounding box otherwise. Curves are flattened.
func (r *Renderer) Clip(p svgpath.Path, _ bool) {
	r.clipPath(p)
	r.clips[len(r.clips)-1]++
}

// clipPath starts a clipping operation, to be ended with ClipEnd
func (r *Renderer) clipPath(p svgpath.Path) {
	polylines := p.Flatten(r.Tolerance)
	switch len(polylines) {
	case 0:
		// empty clip: nothing is visible
		r.pdf.ClipRect(0, 0, 0, 0, false)
	case 1:
		points := make([]gofpdf.PointType, len(polylines[0]))
		for i, pt := range polylines[0] {
			points[i] = gofpdf.PointType{X: pt.X, Y: pt.Y}
		}
		r.pdf.ClipPolygon(points, false)
	default:
		box, _ := p.Bounds()
		tracer().Infof("clip path with %d subpaths approximated by its bounding box", len(polylines))
		r.pdf.ClipRect(box.LLx, box.LLy, box.URx-box.LLx, box.URy-box.LLy, false)
	}
}

// writePath writes the path operations
func (r *Renderer) writePath(p svgpath.Path) {
	for cmd, pts := range p.Iter() {
		switch cmd {
		case path.CmdMoveTo:
			r.pdf.MoveTo(pts[0].X, pts[0].Y)
		case path.CmdLineTo:
			r.pdf.LineTo(pts[0].X, pts[0].Y)
		case path.CmdQuadTo:
			r.pdf.CurveTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y)
		case path.CmdCubeTo:
			r.pdf.CurveBezierCubicTo(pts[0].X, pts[0].Y, pts[1].X, pts[1].Y, pts[2].X, pts[2].Y)
		case path.CmdClose:
			r.pdf.ClosePath()
		}
	}
}

// solidColor returns the color used for `pattern`, and true if it
// is a gradient which may be drawn with drawGradient
func solidColor(pattern svgdraw.Pattern) (color.NRGBA, bool) {
	switch pattern := pattern.(type) {
	case svgdraw.PlainColor:
		return color.NRGBAModel.Convert(pattern.RGBA).(color.NRGBA), false
	case svgdraw.Gradient:
		return pattern.LastStopColor(), len(pattern.Stops) >= 2
	default:
		return color.NRGBA{}, false
	}
}

func (r *Renderer) Fill(p svgpath.Path, pattern svgdraw.Pattern, opacity float64, useNonZeroWinding bool) {
	c, isGradient := solidColor(pattern)
	if isGradient && r.drawGradient(p, pattern.(svgdraw.Gradient), opacity) {
		return
	}
	r.pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
	r.pdf.SetAlpha(opacity*float64(c.A)/0xff, "")
	r.writePath(p)
	styleStr := "f*"
	if useNonZeroWinding {
		styleStr = "f"
	}
	r.pdf.DrawPath(styleStr)
}

// drawGradient paints the path bounding box with the gradient, through
// a clip, using the first and last stops only. It returns false if the
// path can't be used as a clip.
func (r *Renderer) drawGradient(p svgpath.Path, grad svgdraw.Gradient, opacity float64) bool {
	box, ok := p.Bounds()
	if !ok || len(p.Subpaths()) != 1 {
		return false
	}
	w, h := box.URx-box.LLx, box.URy-box.LLy
	if w <= 0 || h <= 0 {
		return false
	}
	first, last := grad.Stops[0], grad.Stops[len(grad.Stops)-1]
	c1 := stopColor(first)
	c2 := stopColor(last)

	r.clipPath(p)
	defer r.pdf.ClipEnd()
	r.pdf.SetAlpha(opacity, "")
	switch dir := grad.Direction.(type) {
	case svgpath.Radial:
		cx, cy := gradientPoint(grad, box, dir[0], dir[1])
		fx, fy := gradientPoint(grad, box, dir[2], dir[3])
		radius := dir[4]
		if grad.Units == svgpath.UserSpaceOnUse {
			radius /= w
		}
		r.pdf.RadialGradient(box.LLx, box.LLy, w, h, int(c1.R), int(c1.G), int(c1.B),
			int(c2.R), int(c2.G), int(c2.B), fx, fy, cx, cy, radius)
	case svgpath.Linear:
		x1, y1 := gradientPoint(grad, box, dir[0], dir[1])
		x2, y2 := gradientPoint(grad, box, dir[2], dir[3])
		r.pdf.LinearGradient(box.LLx, box.LLy, w, h, int(c1.R), int(c1.G), int(c1.B),
			int(c2.R), int(c2.G), int(c2.B), x1, y1, x2, y2)
	default:
		return false
	}
	return true
}

func stopColor(stop svgpath.GradStop) color.NRGBA {
	if stop.StopColor == nil {
		return color.NRGBA{A: 0xff}
	}
	return color.NRGBAModel.Convert(stop.StopColor).(color.NRGBA)
}

// gradientPoint returns the position of (x, y), relative to `box`,
// with the origin at the lower left corner
func gradientPoint(grad svgdraw.Gradient, box rect.Rect, x, y float64) (float64, float64) {
	x, y = grad.Matrix.Transform(x, y)
	if grad.Units == svgpath.UserSpaceOnUse {
		x = (x - box.LLx) / (box.URx - box.LLx)
		y = (y - box.LLy) / (box.URy - box.LLy)
	}
	return x, 1 - y
}

var (
	capToStyle = [...]string{
		svgdraw.NilCap:       "butt",
		svgdraw.ButtCap:      "butt",
		svgdraw.SquareCap:    "square",
		svgdraw.RoundCap:     "round",
		svgdraw.CubicCap:     "round",
		svgdraw.QuadraticCap: "round",
	}

	joinToStyle = [...]string{
		svgdraw.Arc:       "round",
		svgdraw.Round:     "round",
		svgdraw.Bevel:     "bevel",
		svgdraw.Miter:     "miter",
		svgdraw.MiterClip: "miter",
		svgdraw.ArcClip:   "round",
	}
)

func (r *Renderer) Stroke(p svgpath.Path, options svgdraw.StrokeOptions, pattern svgdraw.Pattern, opacity float64) {
	c, _ := solidColor(pattern) // gradients are not supported for strokes
	r.pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
	r.pdf.SetAlpha(opacity*float64(c.A)/0xff, "")
	r.pdf.SetLineWidth(options.LineWidth)
	r.pdf.SetLineCapStyle(capToStyle[options.Join.TrailLineCap])
	r.pdf.SetLineJoinStyle(joinToStyle[options.Join.LineJoin])
	r.pdf.SetDashPattern(options.Dash.Dash, options.Dash.DashOffset)
	r.writePath(p)
	r.pdf.DrawPath("D")
}
