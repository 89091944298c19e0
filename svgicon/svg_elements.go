package svgicon

import (
	"errors"
	"math"
	"strings"

	"github.com/srwiley/rasterx"
	"seehuhn.de/go/geom/vec"

	"github.com/benoitkugler/okrender/svgpath"
	"github.com/benoitkugler/okrender/svgtext"
)

// gradient is a gradient definition, which may inherit
// its stops from another one
type gradient struct {
	svgpath.Gradient
	href string
}

type svgFunc func(c *iconCursor, n *node) error

var drawFuncs = map[string]svgFunc{
	"svg":            svgF,
	"g":              gF,
	"symbol":         gF,
	"defs":           gF,
	"clipPath":       gF,
	"use":            useF,
	"line":           lineF,
	"stop":           stopF,
	"rect":           rectF,
	"circle":         circleF,
	"ellipse":        circleF, // circleF handles ellipse also
	"polyline":       polylineF,
	"polygon":        polygonF,
	"path":           pathF,
	"desc":           descF,
	"title":          titleF,
	"linearGradient": linearGradientF,
	"radialGradient": radialGradientF,
	"text":           textF,
	"tspan":          textF,
	"textPath":       textF,
}

func pt(x, y float64) vec.Vec2 { return vec.Vec2{X: x, Y: y} }

func svgF(c *iconCursor, n *node) error {
	if len(c.stack) > 2 { // nested svg elements are groups
		return nil
	}
	vb := &c.icon.ViewBox
	*vb = svgpath.Bounds{}
	var width, height float64
	var err error
	for k, v := range n.attrs {
		switch k {
		case "viewBox":
			var points []float64
			points, err = svgpath.ParseNumbers(v)
			if err == nil && len(points) != 4 {
				return errParamMismatch
			}
			if err == nil {
				vb.X, vb.Y, vb.W, vb.H = points[0], points[1], points[2], points[3]
			}
		case "width":
			c.icon.Width = v
			width, err = c.parseUnit(v, widthPercentage)
		case "height":
			c.icon.Height = v
			height, err = c.parseUnit(v, heightPercentage)
		}
		if err != nil {
			return err
		}
	}
	if vb.W == 0 {
		vb.W = width
	}
	if vb.H == 0 {
		vb.H = height
	}
	c.icon.Transform = rasterx.Identity.Translate(-vb.X, -vb.Y)
	return nil
}

func gF(*iconCursor, *node) error { return nil } // g does nothing but push the style

// readLengths parses the given attributes as lengths, with
// a default value of zero
func (c *iconCursor) readLengths(n *node, names []string, refs []percentageReference) ([]float64, error) {
	out := make([]float64, len(names))
	for i, name := range names {
		v, ok := n.attrs[name]
		if !ok {
			continue
		}
		var err error
		out[i], err = c.parseUnit(v, refs[i])
		if err != nil {
			return nil, err
		}
	}
	return out, nil
}

func rectF(c *iconCursor, n *node) error {
	vals, err := c.readLengths(n, []string{"x", "y", "width", "height", "rx", "ry"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return err
	}
	x, y, w, h, rx, ry := vals[0], vals[1], vals[2], vals[3], vals[4], vals[5]
	if w <= 0 || h <= 0 {
		return nil
	}
	// a missing radius defaults to the other one
	if _, ok := n.attrs["rx"]; !ok {
		rx = ry
	}
	if _, ok := n.attrs["ry"]; !ok {
		ry = rx
	}
	rx, ry = math.Min(rx, w/2), math.Min(ry, h/2)
	if rx <= 0 || ry <= 0 {
		n.path.AddRect(x, y, x+w, y+h, 0)
	} else {
		n.path.AddRoundRect(x, y, x+w, y+h, rx, ry, 0)
	}
	return nil
}

func circleF(c *iconCursor, n *node) error {
	vals, err := c.readLengths(n, []string{"cx", "cy", "r", "rx", "ry"},
		[]percentageReference{widthPercentage, heightPercentage, diagPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return err
	}
	cx, cy, rx, ry := vals[0], vals[1], vals[3], vals[4]
	if n.tag == "circle" {
		rx, ry = vals[2], vals[2]
	}
	if rx <= 0 || ry <= 0 { // not drawn, but not an error
		return nil
	}
	n.path.AddEllipse(cx, cy, rx, ry)
	return nil
}

func lineF(c *iconCursor, n *node) error {
	vals, err := c.readLengths(n, []string{"x1", "y1", "x2", "y2"},
		[]percentageReference{widthPercentage, heightPercentage, widthPercentage, heightPercentage})
	if err != nil {
		return err
	}
	n.path.Start(pt(vals[0], vals[1]))
	n.path.Line(pt(vals[2], vals[3]))
	n.path.Stop(false)
	return nil
}

func polylineF(c *iconCursor, n *node) error {
	points, err := svgpath.ParseNumbers(n.attrs["points"])
	if err != nil {
		return err
	}
	if len(points)%2 != 0 {
		return errors.New("polygon has odd number of points")
	}
	if len(points) >= 4 {
		n.path.Start(pt(points[0], points[1]))
		for i := 2; i < len(points)-1; i += 2 {
			n.path.Line(pt(points[i], points[i+1]))
		}
		n.path.Stop(n.tag == "polygon")
	}
	return nil
}

func polygonF(c *iconCursor, n *node) error { return polylineF(c, n) }

func pathF(c *iconCursor, n *node) error {
	p, err := svgpath.ParsePathData(n.attrs["d"])
	n.path = p // keep what was parsed before an error
	return err
}

func descF(c *iconCursor, _ *node) error {
	c.inDescText = true
	c.icon.Descriptions = append(c.icon.Descriptions, "")
	return nil
}

func titleF(c *iconCursor, _ *node) error {
	c.inTitleText = true
	c.icon.Titles = append(c.icon.Titles, "")
	return nil
}

// readHref returns the target id of an href or xlink:href attribute
func readHref(n *node) string {
	href := n.attrs["href"] // xlink:href has the same local name
	return strings.TrimPrefix(strings.TrimSpace(href), "#")
}

func (c *iconCursor) newGradient(n *node, direction svgpath.GradientDirection) error {
	if n.id == "" {
		return errZeroLengthID
	}
	c.grad = &gradient{
		Gradient: svgpath.Gradient{Direction: direction, Bounds: c.icon.ViewBox, Matrix: rasterx.Identity},
		href:     readHref(n),
	}
	c.icon.grads[n.id] = c.grad
	return c.readGradAttr(n)
}

func (c *iconCursor) readGradAttr(n *node) error {
	for k, v := range n.attrs {
		switch k {
		case "gradientTransform":
			m, err := parseTransform(v)
			if err != nil {
				return err
			}
			c.grad.Matrix = m
		case "gradientUnits":
			switch strings.TrimSpace(v) {
			case "userSpaceOnUse":
				c.grad.Units = svgpath.UserSpaceOnUse
			case "objectBoundingBox":
				c.grad.Units = svgpath.ObjectBoundingBox
			}
		case "spreadMethod":
			switch strings.TrimSpace(v) {
			case "pad":
				c.grad.Spread = svgpath.PadSpread
			case "reflect":
				c.grad.Spread = svgpath.ReflectSpread
			case "repeat":
				c.grad.Spread = svgpath.RepeatSpread
			}
		}
	}
	return nil
}

// readDirection fills `direction` with the fraction attributes in `names`,
// and returns the names found
func readDirection(n *node, names []string, direction []float64) (map[string]bool, error) {
	found := make(map[string]bool)
	for i, name := range names {
		v, ok := n.attrs[name]
		if !ok {
			continue
		}
		var err error
		direction[i], err = readFraction(v)
		if err != nil {
			return nil, err
		}
		found[name] = true
	}
	return found, nil
}

func linearGradientF(c *iconCursor, n *node) error {
	direction := svgpath.Linear{0, 0, 1, 0}
	if _, err := readDirection(n, []string{"x1", "y1", "x2", "y2"}, direction[:]); err != nil {
		return err
	}
	return c.newGradient(n, direction)
}

func radialGradientF(c *iconCursor, n *node) error {
	direction := svgpath.Radial{0.5, 0.5, 0.5, 0.5, 0.5, 0}
	found, err := readDirection(n, []string{"cx", "cy", "fx", "fy", "r", "fr"}, direction[:])
	if err != nil {
		return err
	}
	if !found["fx"] { // set fx to cx by default
		direction[2] = direction[0]
	}
	if !found["fy"] { // set fy to cy by default
		direction[3] = direction[1]
	}
	return c.newGradient(n, direction)
}

func stopF(c *iconCursor, n *node) error {
	if c.grad == nil {
		return nil
	}
	stop := svgpath.GradStop{Opacity: 1.0}
	values := make(map[string]string, len(n.attrs))
	for k, v := range n.attrs {
		values[k] = v
	}
	// the style attribute takes precedence
	for _, decl := range strings.Split(n.attrs["style"], ";") {
		if kv := strings.SplitN(decl, ":", 2); len(kv) == 2 {
			values[strings.TrimSpace(kv[0])] = strings.TrimSpace(kv[1])
		}
	}
	var err error
	for k, v := range values {
		switch k {
		case "offset":
			stop.Offset, err = readFraction(v)
			stop.Offset = math.Max(0, math.Min(1, stop.Offset))
		case "stop-color":
			col, ok, errC := parseSVGColor(v, n.style.color)
			if ok {
				stop.StopColor = col
			}
			err = errC
		case "stop-opacity":
			stop.Opacity, err = readFraction(v)
		}
		if err != nil {
			return err
		}
	}
	if stop.StopColor == nil {
		stop.StopColor = n.style.color
	}
	// offsets are monotonic
	if l := len(c.grad.Stops); l > 0 && stop.Offset < c.grad.Stops[l-1].Offset {
		stop.Offset = c.grad.Stops[l-1].Offset
	}
	c.grad.Stops = append(c.grad.Stops, stop)
	return nil
}

func useF(c *iconCursor, n *node) error {
	vals, err := c.readLengths(n, []string{"x", "y"}, []percentageReference{widthPercentage, heightPercentage})
	if err != nil {
		return err
	}
	n.origin = pt(vals[0], vals[1])
	if readHref(n) == "" {
		return errors.New("only use tags with href is supported")
	}
	return nil
}

// textAttributes are the positioning attributes of text elements
type textAttributes struct {
	overrides svgtext.Overrides

	textLength   float64 // zero when not set
	lengthAdjust svgtext.LengthAdjust

	// for textPath elements
	startOffset      float64
	offsetIsFraction bool // startOffset is relative to the path length
	reversed         bool
}

func textF(c *iconCursor, n *node) error {
	ta := &textAttributes{lengthAdjust: svgtext.Spacing}
	n.textAttrs = ta
	lists := [...]struct {
		name string
		dst  *[]float64
		ref  percentageReference
	}{
		{"x", &ta.overrides.X, widthPercentage},
		{"y", &ta.overrides.Y, heightPercentage},
		{"dx", &ta.overrides.DX, widthPercentage},
		{"dy", &ta.overrides.DY, heightPercentage},
	}
	var err error
	for _, l := range lists {
		if v, ok := n.attrs[l.name]; ok {
			if *l.dst, err = c.parseUnitList(v, l.ref); err != nil {
				return err
			}
		}
	}
	if v, ok := n.attrs["rotate"]; ok {
		if ta.overrides.Rotate, err = svgpath.ParseNumbers(v); err != nil {
			return err
		}
	}
	if v, ok := n.attrs["textLength"]; ok {
		if ta.textLength, err = c.parseUnit(v, widthPercentage); err != nil {
			return err
		}
	}
	if n.attrs["lengthAdjust"] == "spacingAndGlyphs" {
		ta.lengthAdjust = svgtext.SpacingAndGlyphs
	}

	if n.tag != "textPath" {
		return nil
	}
	if readHref(n) == "" {
		return errors.New("textPath without href")
	}
	ta.reversed = n.attrs["side"] == "right"
	if v, ok := n.attrs["startOffset"]; ok {
		v = strings.TrimSpace(v)
		if strings.HasSuffix(v, "%") {
			ta.offsetIsFraction = true
			ta.startOffset, err = readFraction(v)
		} else {
			ta.startOffset, err = c.parseUnit(v, widthPercentage)
		}
	}
	return err
}
