package svgicon

import (
	"encoding/xml"
	"errors"
	"fmt"
	"image/color"
	"math"
	"strconv"
	"strings"

	"github.com/srwiley/rasterx"
	"golang.org/x/image/colornames"
	"golang.org/x/image/math/fixed"
	"seehuhn.de/go/geom/vec"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgpath"
	"github.com/benoitkugler/okrender/svgtext"
)

type (
	// paint is a fill or stroke value: either a plain pattern
	// (nil for none) or a reference to a gradient, resolved when drawing
	paint struct {
		pattern svgdraw.Pattern
		url     string
	}

	// PathStyle holds the inherited presentation attributes.
	PathStyle struct {
		fill, stroke               paint
		FillOpacity, StrokeOpacity float64
		UseNonZeroWinding          bool
		ClipNonZeroWinding         bool
		Stroke                     svgdraw.StrokeOptions

		FontSize      float64
		LetterSpacing float64
		PaintOrder    svgtext.PaintOrder

		// currentColor
		color color.RGBA
	}

	// node is one element of the document tree, or a chunk of
	// character data when tag is empty.
	node struct {
		tag   string
		id    string
		attrs map[string]string // raw attributes read at draw time

		style     PathStyle
		transform rasterx.Matrix2D // local transform
		opacity   float64          // not inherited
		clipPath  string           // id of the clipPath element

		path      svgpath.Path    // geometry of basic shapes
		text      string          // character data
		textAttrs *textAttributes // for text, tspan and textPath
		origin    vec.Vec2        // position of use elements

		children []*node
	}

	// iconCursor is used while parsing SVG files
	iconCursor struct {
		icon      *SvgIcon
		stack     []*node // open elements, the root first
		grad      *gradient
		errorMode ErrorMode

		inTitleText, inDescText bool
	}
)

// DefaultStyle sets the default PathStyle to fill black, winding rule,
// full opacity, no stroke, ButtCap line end and Bevel line connect.
var DefaultStyle = PathStyle{
	fill:               paint{pattern: svgdraw.NewPlainColor(0x00, 0x00, 0x00, 0xff)},
	FillOpacity:        1.0,
	StrokeOpacity:      1.0,
	UseNonZeroWinding:  true,
	ClipNonZeroWinding: true,
	Stroke:             svgdraw.DefaultStroke.Options,
	FontSize:           16,
	color:              color.RGBA{A: 0xff},
}

func (c *iconCursor) top() *node { return c.stack[len(c.stack)-1] }

func (c *iconCursor) handleError(errStr string) error {
	switch c.errorMode {
	case StrictErrorMode:
		return errors.New(errStr)
	case WarnErrorMode:
		tracer().Infof("%s", errStr)
	}
	return nil
}

func parseBasicFloat(s string) (float64, error) {
	return strconv.ParseFloat(strings.TrimSpace(s), 64)
}

type percentageReference uint8

const (
	widthPercentage percentageReference = iota
	heightPercentage
	diagPercentage
)

// absolute length of one unit
var unitLengths = map[string]float64{
	"px": 1,
	"pt": 4. / 3,
	"pc": 16,
	"mm": 96 / 25.4,
	"cm": 96 / 2.54,
	"in": 96,
}

// parseUnit converts a length to user units. Percentages are
// resolved against the view box, and em against the current font size.
func (c *iconCursor) parseUnit(s string, asPerc percentageReference) (float64, error) {
	s = strings.TrimSpace(s)
	switch {
	case strings.HasSuffix(s, "%"):
		value, err := parseBasicFloat(strings.TrimSuffix(s, "%"))
		if err != nil {
			return 0, err
		}
		vb := c.icon.ViewBox
		var ref float64
		switch asPerc {
		case widthPercentage:
			ref = vb.W
		case heightPercentage:
			ref = vb.H
		default:
			ref = math.Sqrt(vb.W*vb.W+vb.H*vb.H) / math.Sqrt2
		}
		return value / 100 * ref, nil
	case strings.HasSuffix(s, "em"):
		value, err := parseBasicFloat(strings.TrimSuffix(s, "em"))
		return value * c.top().style.FontSize, err
	case len(s) > 2:
		if factor, ok := unitLengths[s[len(s)-2:]]; ok {
			value, err := parseBasicFloat(s[:len(s)-2])
			return value * factor, err
		}
	}
	return parseBasicFloat(s)
}

// parseUnitList parses a list of lengths separated by commas or spaces
func (c *iconCursor) parseUnitList(s string, asPerc percentageReference) ([]float64, error) {
	fields := splitOnCommaOrSpace(s)
	out := make([]float64, len(fields))
	for i, f := range fields {
		var err error
		out[i], err = c.parseUnit(f, asPerc)
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func readTransformAttr(m1 rasterx.Matrix2D, k string, points []float64) (rasterx.Matrix2D, error) {
	ln := len(points)
	switch k {
	case "rotate":
		if ln == 1 {
			m1 = m1.Rotate(points[0] * math.Pi / 180)
		} else if ln == 3 {
			m1 = m1.Translate(points[1], points[2]).
				Rotate(points[0]*math.Pi/180).
				Translate(-points[1], -points[2])
		} else {
			return m1, errParamMismatch
		}
	case "translate":
		if ln == 1 {
			m1 = m1.Translate(points[0], 0)
		} else if ln == 2 {
			m1 = m1.Translate(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "skewx":
		if ln == 1 {
			m1 = m1.SkewX(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "skewy":
		if ln == 1 {
			m1 = m1.SkewY(points[0] * math.Pi / 180)
		} else {
			return m1, errParamMismatch
		}
	case "scale":
		if ln == 1 {
			m1 = m1.Scale(points[0], points[0])
		} else if ln == 2 {
			m1 = m1.Scale(points[0], points[1])
		} else {
			return m1, errParamMismatch
		}
	case "matrix":
		if ln == 6 {
			m1 = m1.Mult(rasterx.Matrix2D{
				A: points[0],
				B: points[1],
				C: points[2],
				D: points[3],
				E: points[4],
				F: points[5]})
		} else {
			return m1, errParamMismatch
		}
	default:
		return m1, errParamMismatch
	}
	return m1, nil
}

// parseTransform returns the matrix described by a transform attribute
func parseTransform(v string) (rasterx.Matrix2D, error) {
	ts := strings.Split(v, ")")
	m1 := rasterx.Identity
	for _, t := range ts {
		t = strings.TrimSpace(t)
		if len(t) == 0 {
			continue
		}
		d := strings.Split(t, "(")
		if len(d) != 2 || len(d[1]) < 1 {
			return m1, errParamMismatch // badly formed transformation
		}
		points, err := svgpath.ParseNumbers(d[1])
		if err != nil {
			return m1, err
		}
		m1, err = readTransformAttr(m1, strings.ToLower(strings.TrimSpace(d[0])), points)
		if err != nil {
			return m1, err
		}
	}
	return m1, nil
}

// parseSVGColor returns the color described by `colorStr`,
// and false for "none"
func parseSVGColor(colorStr string, current color.RGBA) (color.RGBA, bool, error) {
	v := strings.ToLower(strings.TrimSpace(colorStr))
	switch v {
	case "none", "transparent":
		return color.RGBA{}, false, nil
	case "currentcolor":
		return current, true, nil
	}
	if named, ok := colornames.Map[v]; ok {
		return named, true, nil
	}
	if strings.HasPrefix(v, "#") {
		hex := v[1:]
		if len(hex) == 3 {
			hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
		}
		if len(hex) != 6 {
			return color.RGBA{}, false, fmt.Errorf("invalid hex color %q", colorStr)
		}
		n, err := strconv.ParseUint(hex, 16, 32)
		if err != nil {
			return color.RGBA{}, false, fmt.Errorf("invalid hex color %q: %w", colorStr, err)
		}
		return color.RGBA{R: uint8(n >> 16), G: uint8(n >> 8), B: uint8(n), A: 0xff}, true, nil
	}
	if strings.HasPrefix(v, "rgb(") || strings.HasPrefix(v, "rgba(") {
		args := v[strings.IndexByte(v, '(')+1:]
		args = strings.TrimSuffix(args, ")")
		fields := splitOnCommaOrSpace(args)
		if len(fields) != 3 && len(fields) != 4 {
			return color.RGBA{}, false, fmt.Errorf("invalid rgb color %q", colorStr)
		}
		var comps [4]uint8
		comps[3] = 0xff
		for i, f := range fields {
			frac, err := readFraction(f)
			if err != nil {
				return color.RGBA{}, false, err
			}
			if i < 3 && !strings.HasSuffix(f, "%") {
				frac /= 255
			}
			comps[i] = uint8(math.Round(math.Max(0, math.Min(1, frac)) * 0xff))
		}
		// premultiplied, as expected by color.RGBA
		a := uint16(comps[3])
		return color.RGBA{
			R: uint8(uint16(comps[0]) * a / 0xff),
			G: uint8(uint16(comps[1]) * a / 0xff),
			B: uint8(uint16(comps[2]) * a / 0xff),
			A: comps[3],
		}, true, nil
	}
	return color.RGBA{}, false, fmt.Errorf("unsupported color %q", colorStr)
}

// readPaint parses a fill or stroke value.
// `url(#id)` may be followed by a fallback color.
func readPaint(v string, current color.RGBA) (paint, error) {
	if strings.HasPrefix(v, "url(") {
		end := strings.IndexByte(v, ')')
		if end == -1 {
			return paint{}, fmt.Errorf("invalid paint %q", v)
		}
		id := strings.TrimPrefix(strings.TrimSpace(v[4:end]), "#")
		if id == "" {
			return paint{}, errZeroLengthID
		}
		out := paint{url: id}
		if fallback := strings.TrimSpace(v[end+1:]); fallback != "" {
			col, ok, err := parseSVGColor(fallback, current)
			if err != nil {
				return paint{}, err
			}
			if ok {
				out.pattern = svgdraw.PlainColor{RGBA: col}
			}
		}
		return out, nil
	}
	col, ok, err := parseSVGColor(v, current)
	if err != nil || !ok {
		return paint{}, err
	}
	return paint{pattern: svgdraw.PlainColor{RGBA: col}}, nil
}

// readURL returns the id of a `url(#id)` reference
func readURL(v string) (string, bool) {
	v = strings.TrimSpace(v)
	if !strings.HasPrefix(v, "url(") || !strings.HasSuffix(v, ")") {
		return "", false
	}
	id := strings.TrimPrefix(strings.TrimSpace(v[4:len(v)-1]), "#")
	return id, id != ""
}

func readFraction(v string) (f float64, err error) {
	v = strings.TrimSpace(v)
	d := 1.0
	if strings.HasSuffix(v, "%") {
		d = 100
		v = strings.TrimSuffix(v, "%")
	}
	f, err = parseBasicFloat(v)
	f /= d
	return
}

func (c *iconCursor) readStyleAttr(n *node, k, v string) error {
	curStyle := &n.style
	switch k {
	case "color":
		col, ok, err := parseSVGColor(v, curStyle.color)
		if err != nil {
			return err
		}
		if ok {
			curStyle.color = col
		}
	case "fill":
		p, err := readPaint(v, curStyle.color)
		if err != nil {
			return err
		}
		curStyle.fill = p
	case "stroke":
		p, err := readPaint(v, curStyle.color)
		if err != nil {
			return err
		}
		curStyle.stroke = p
	case "fill-rule":
		curStyle.UseNonZeroWinding = v != "evenodd"
	case "clip-rule":
		curStyle.ClipNonZeroWinding = v != "evenodd"
	case "stroke-linegap":
		switch v {
		case "flat":
			curStyle.Stroke.Join.LineGap = svgdraw.FlatGap
		case "round":
			curStyle.Stroke.Join.LineGap = svgdraw.RoundGap
		case "cubic":
			curStyle.Stroke.Join.LineGap = svgdraw.CubicGap
		case "quadratic":
			curStyle.Stroke.Join.LineGap = svgdraw.QuadraticGap
		}
	case "stroke-leadlinecap":
		curStyle.Stroke.Join.LeadLineCap = readCap(v, curStyle.Stroke.Join.LeadLineCap)
	case "stroke-linecap":
		curStyle.Stroke.Join.TrailLineCap = readCap(v, curStyle.Stroke.Join.TrailLineCap)
	case "stroke-linejoin":
		switch v {
		case "miter":
			curStyle.Stroke.Join.LineJoin = svgdraw.Miter
		case "miter-clip":
			curStyle.Stroke.Join.LineJoin = svgdraw.MiterClip
		case "arc-clip":
			curStyle.Stroke.Join.LineJoin = svgdraw.ArcClip
		case "round":
			curStyle.Stroke.Join.LineJoin = svgdraw.Round
		case "arc":
			curStyle.Stroke.Join.LineJoin = svgdraw.Arc
		case "bevel":
			curStyle.Stroke.Join.LineJoin = svgdraw.Bevel
		}
	case "stroke-miterlimit":
		mLimit, err := parseBasicFloat(v)
		if err != nil {
			return err
		}
		curStyle.Stroke.Join.MiterLimit = fixed.Int26_6(mLimit * 64)
	case "stroke-width":
		width, err := c.parseUnit(v, diagPercentage)
		if err != nil {
			return err
		}
		curStyle.Stroke.LineWidth = width
	case "stroke-dashoffset":
		dashOffset, err := c.parseUnit(v, diagPercentage)
		if err != nil {
			return err
		}
		curStyle.Stroke.Dash.DashOffset = dashOffset
	case "stroke-dasharray":
		if v == "none" {
			curStyle.Stroke.Dash.Dash = nil
			break
		}
		dList, err := c.parseUnitList(v, diagPercentage)
		if err != nil {
			return err
		}
		if len(dList)%2 == 1 { // an odd list is repeated
			dList = append(dList, dList...)
		}
		curStyle.Stroke.Dash.Dash = dList
	case "fill-opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		curStyle.FillOpacity = op
	case "stroke-opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		curStyle.StrokeOpacity = op
	case "opacity":
		op, err := readFraction(v)
		if err != nil {
			return err
		}
		n.opacity = op
	case "transform":
		m, err := parseTransform(v)
		if err != nil {
			return err
		}
		n.transform = m
	case "clip-path":
		if id, ok := readURL(v); ok {
			n.clipPath = id
		}
	case "font-size":
		size, err := c.parseUnit(v, heightPercentage)
		if err != nil {
			return err
		}
		curStyle.FontSize = size
	case "letter-spacing":
		if v == "normal" {
			curStyle.LetterSpacing = 0
			break
		}
		spacing, err := c.parseUnit(v, widthPercentage)
		if err != nil {
			return err
		}
		curStyle.LetterSpacing = spacing
	case "paint-order":
		fields := strings.Fields(v)
		curStyle.PaintOrder = svgtext.FillStroke
		for _, f := range fields {
			if f == "fill" {
				break
			}
			if f == "stroke" {
				curStyle.PaintOrder = svgtext.StrokeFill
				break
			}
		}
	}
	return nil
}

func readCap(v string, current svgdraw.CapMode) svgdraw.CapMode {
	switch v {
	case "butt":
		return svgdraw.ButtCap
	case "round":
		return svgdraw.RoundCap
	case "square":
		return svgdraw.SquareCap
	case "cubic":
		return svgdraw.CubicCap
	case "quadratic":
		return svgdraw.QuadraticCap
	}
	return current
}

// orderedStyleKeys are read first, since other attributes depend on them
var orderedStyleKeys = [...]string{"font-size", "color"}

// readStyle parses the presentation attributes of an element,
// both direct ones and the content of a style attribute, which
// takes precedence.
func (c *iconCursor) readStyle(n *node, attrs []xml.Attr) error {
	var pairs [][2]string
	var stylePairs [][2]string
	for _, attr := range attrs {
		switch k := strings.ToLower(attr.Name.Local); k {
		case "style":
			for _, decl := range strings.Split(attr.Value, ";") {
				kv := strings.SplitN(decl, ":", 2)
				if len(kv) == 2 {
					stylePairs = append(stylePairs, [2]string{
						strings.ToLower(strings.TrimSpace(kv[0])), strings.TrimSpace(kv[1])})
				}
			}
		default:
			pairs = append(pairs, [2]string{k, strings.TrimSpace(attr.Value)})
		}
	}
	pairs = append(pairs, stylePairs...)

	// font-size and color may be used by the other attributes
	for _, key := range orderedStyleKeys {
		for _, kv := range pairs {
			if kv[0] == key {
				if err := c.readStyleAttr(n, kv[0], kv[1]); err != nil {
					return err
				}
			}
		}
	}
	for _, kv := range pairs {
		if kv[0] == "font-size" || kv[0] == "color" {
			continue
		}
		if err := c.readStyleAttr(n, kv[0], kv[1]); err != nil {
			return fmt.Errorf("invalid attribute %s=%q: %w", kv[0], kv[1], err)
		}
	}
	return nil
}

// splitOnCommaOrSpace returns a list of strings after splitting the input on comma and space delimiters
func splitOnCommaOrSpace(s string) []string {
	return strings.FieldsFunc(s,
		func(r rune) bool {
			return r == ',' || r == ' ' || r == '\t' || r == '\n' || r == '\r'
		})
}

// isTextContainer returns true for the elements whose
// character data is rendered
func isTextContainer(tag string) bool {
	return tag == "text" || tag == "tspan" || tag == "textPath"
}

func (c *iconCursor) readStartElement(se xml.StartElement) error {
	parent := c.top()
	n := &node{
		tag:       se.Name.Local,
		attrs:     make(map[string]string, len(se.Attr)),
		style:     parent.style,
		transform: rasterx.Identity,
		opacity:   1,
	}
	for _, attr := range se.Attr {
		n.attrs[attr.Name.Local] = attr.Value
	}
	if err := c.readStyle(n, se.Attr); err != nil {
		if hErr := c.handleError(fmt.Sprintf("element %s: %s", n.tag, err)); hErr != nil {
			return hErr
		}
	}
	c.stack = append(c.stack, n)
	parent.children = append(parent.children, n)

	if id := n.attrs["id"]; id != "" {
		n.id = id
		c.icon.ids[id] = n
	}

	df, ok := drawFuncs[n.tag]
	if !ok {
		return c.handleError("Cannot process svg element " + n.tag)
	}
	if err := df(c, n); err != nil {
		return c.handleError(fmt.Sprintf("element %s: %s", n.tag, err))
	}
	return nil
}

func (c *iconCursor) readEndElement(se xml.EndElement) {
	if len(c.stack) > 1 {
		c.stack = c.stack[:len(c.stack)-1]
	}
	switch se.Name.Local {
	case "title":
		c.inTitleText = false
	case "desc":
		c.inDescText = false
	case "radialGradient", "linearGradient":
		c.grad = nil
	}
}

func (c *iconCursor) readCharData(data string) {
	if c.inTitleText {
		c.icon.Titles[len(c.icon.Titles)-1] += data
	}
	if c.inDescText {
		c.icon.Descriptions[len(c.icon.Descriptions)-1] += data
	}
	parent := c.top()
	if !isTextContainer(parent.tag) {
		return
	}
	// the decoder may split character data
	if last := len(parent.children) - 1; last >= 0 && parent.children[last].tag == "" {
		parent.children[last].text += data
		return
	}
	parent.children = append(parent.children, &node{text: data, style: parent.style})
}
