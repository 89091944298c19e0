package svgpath

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"unicode"

	"seehuhn.de/go/geom/vec"
)

var (
	errParamMismatch  = errors.New("svgpath: param mismatch")
	errCommandUnknown = errors.New("svgpath: unknown command")
)

// pathCursor is used to parse SVG path data
type pathCursor struct {
	path                   Path
	placeX, placeY         float64
	cntlPtX, cntlPtY       float64
	pathStartX, pathStartY float64
	points                 []float64
	lastKey                byte
	inPath                 bool
}

// ParsePathData compiles the content of a `d` attribute.
func ParsePathData(d string) (Path, error) {
	var c pathCursor
	err := c.compilePath(d)
	return c.path, err
}

// ParseNumbers reads a list of numbers separated by spaces and/or commas,
// accepting the compact forms "1-2" or "1.5.5".
func ParseNumbers(s string) ([]float64, error) {
	return readNumbers(s, nil)
}

func isSeparator(c byte) bool {
	return c == ' ' || c == ',' || c == '\t' || c == '\n' || c == '\r'
}

func isDigit(c byte) bool { return '0' <= c && c <= '9' }

func readNumbers(s string, dst []float64) ([]float64, error) {
	dst = dst[:0]
	i := 0
	for i < len(s) {
		if isSeparator(s[i]) {
			i++
			continue
		}
		start := i
		if s[i] == '+' || s[i] == '-' {
			i++
		}
		seenDot, seenDigit := false, false
		for ; i < len(s); i++ {
			if isDigit(s[i]) {
				seenDigit = true
			} else if s[i] == '.' && !seenDot {
				seenDot = true
			} else {
				break
			}
		}
		if !seenDigit {
			return dst, fmt.Errorf("svgpath: invalid number in %q", s[start:])
		}
		if i < len(s) && (s[i] == 'e' || s[i] == 'E') {
			j := i + 1
			if j < len(s) && (s[j] == '+' || s[j] == '-') {
				j++
			}
			k := j
			for k < len(s) && isDigit(s[k]) {
				k++
			}
			if k > j {
				i = k
			}
		}
		f, err := strconv.ParseFloat(s[start:i], 64)
		if err != nil {
			return dst, err
		}
		dst = append(dst, f)
	}
	return dst, nil
}

func (c *pathCursor) init() {
	c.placeX, c.placeY = 0, 0
	c.points = c.points[:0]
	c.lastKey = ' '
	c.path.Clear()
	c.inPath = false
}

// compilePath translates the svgPath description string into a path.
func (c *pathCursor) compilePath(svgPath string) error {
	c.init()
	lastIndex := -1
	for i, v := range svgPath {
		if unicode.IsLetter(v) && v != 'e' && v != 'E' {
			if lastIndex != -1 {
				if err := c.addSeg(svgPath[lastIndex:i]); err != nil {
					return err
				}
			}
			lastIndex = i
		}
	}
	if lastIndex != -1 {
		if err := c.addSeg(svgPath[lastIndex:]); err != nil {
			return err
		}
	}
	return nil
}

func (c *pathCursor) valsToAbs(last float64) {
	for i := 0; i < len(c.points); i++ {
		last += c.points[i]
		c.points[i] = last
	}
}

func (c *pathCursor) pointsToAbs(sz int) {
	lastX := c.placeX
	lastY := c.placeY
	for j := 0; j < len(c.points); j += sz {
		for i := 0; i < sz; i += 2 {
			c.points[i+j] += lastX
			c.points[i+1+j] += lastY
		}
		lastX = c.points[(j+sz)-2]
		lastY = c.points[(j+sz)-1]
	}
}

func (c *pathCursor) hasSetsOrMore(sz int, rel bool) bool {
	if !(len(c.points) >= sz && len(c.points)%sz == 0) {
		return false
	}
	if rel {
		c.pointsToAbs(sz)
	}
	return true
}

// reflectControlQuad updates the control point of a quadratic
// smooth curve, using the previous command.
func (c *pathCursor) reflectControlQuad() {
	switch c.lastKey {
	case 'q', 'Q', 'T', 't':
		c.cntlPtX, c.cntlPtY = 2*c.placeX-c.cntlPtX, 2*c.placeY-c.cntlPtY
	default:
		c.cntlPtX, c.cntlPtY = c.placeX, c.placeY
	}
}

// reflectControlCube does the same for cubic curves.
func (c *pathCursor) reflectControlCube() {
	switch c.lastKey {
	case 'c', 'C', 's', 'S':
		c.cntlPtX, c.cntlPtY = 2*c.placeX-c.cntlPtX, 2*c.placeY-c.cntlPtY
	default:
		c.cntlPtX, c.cntlPtY = c.placeX, c.placeY
	}
}

func pt(x, y float64) vec.Vec2 { return vec.Vec2{X: x, Y: y} }

// addSeg decodes an SVG seqment string into equivalent path commands
func (c *pathCursor) addSeg(segString string) error {
	// Parse the string describing the numeric points in SVG format
	var err error
	c.points, err = readNumbers(segString[1:], c.points)
	if err != nil {
		return err
	}
	l := len(c.points)
	k := segString[0]
	rel := false
	switch k {
	case 'z', 'Z':
		if len(c.points) != 0 {
			return errParamMismatch
		}
		if c.inPath {
			c.path.Stop(true)
			c.placeX = c.pathStartX
			c.placeY = c.pathStartY
			c.inPath = false
		}
	case 'm':
		rel = true
		fallthrough
	case 'M':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		c.pathStartX, c.pathStartY = c.points[0], c.points[1]
		c.inPath = true
		c.path.Start(pt(c.pathStartX, c.pathStartY))
		for i := 2; i < l-1; i += 2 {
			c.path.Line(pt(c.points[i], c.points[i+1]))
		}
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 'l':
		rel = true
		fallthrough
	case 'L':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-1; i += 2 {
			c.path.Line(pt(c.points[i], c.points[i+1]))
		}
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 'v':
		c.valsToAbs(c.placeY)
		fallthrough
	case 'V':
		if !c.hasSetsOrMore(1, false) {
			return errParamMismatch
		}
		for _, p := range c.points {
			c.path.Line(pt(c.placeX, p))
		}
		c.placeY = c.points[l-1]
	case 'h':
		c.valsToAbs(c.placeX)
		fallthrough
	case 'H':
		if !c.hasSetsOrMore(1, false) {
			return errParamMismatch
		}
		for _, p := range c.points {
			c.path.Line(pt(p, c.placeY))
		}
		c.placeX = c.points[l-1]
	case 'q':
		rel = true
		fallthrough
	case 'Q':
		if !c.hasSetsOrMore(4, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-3; i += 4 {
			c.path.QuadBezier(pt(c.points[i], c.points[i+1]), pt(c.points[i+2], c.points[i+3]))
		}
		c.cntlPtX, c.cntlPtY = c.points[l-4], c.points[l-3]
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 't':
		rel = true
		fallthrough
	case 'T':
		if !c.hasSetsOrMore(2, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-1; i += 2 {
			c.reflectControlQuad()
			c.path.QuadBezier(pt(c.cntlPtX, c.cntlPtY), pt(c.points[i], c.points[i+1]))
			c.lastKey = k
			c.placeX = c.points[i]
			c.placeY = c.points[i+1]
		}
	case 'c':
		rel = true
		fallthrough
	case 'C':
		if !c.hasSetsOrMore(6, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-5; i += 6 {
			c.path.CubeBezier(pt(c.points[i], c.points[i+1]),
				pt(c.points[i+2], c.points[i+3]), pt(c.points[i+4], c.points[i+5]))
		}
		c.cntlPtX, c.cntlPtY = c.points[l-4], c.points[l-3]
		c.placeX = c.points[l-2]
		c.placeY = c.points[l-1]
	case 's':
		rel = true
		fallthrough
	case 'S':
		if !c.hasSetsOrMore(4, rel) {
			return errParamMismatch
		}
		for i := 0; i < l-3; i += 4 {
			c.reflectControlCube()
			c.path.CubeBezier(pt(c.cntlPtX, c.cntlPtY),
				pt(c.points[i], c.points[i+1]), pt(c.points[i+2], c.points[i+3]))
			c.lastKey = k
			c.cntlPtX, c.cntlPtY = c.points[i], c.points[i+1]
			c.placeX = c.points[i+2]
			c.placeY = c.points[i+3]
		}
	case 'a', 'A':
		if !c.hasSetsOrMore(7, false) {
			return errParamMismatch
		}
		for i := 0; i < l-6; i += 7 {
			if k == 'a' {
				c.points[i+5] += c.placeX
				c.points[i+6] += c.placeY
			}
			c.addArcFromA(c.points[i : i+7])
		}
	default:
		return fmt.Errorf("%w: %c", errCommandUnknown, k)
	}
	c.lastKey = k
	return nil
}

// addArcFromA adds a path of an arc element to the cursor path
func (c *pathCursor) addArcFromA(points []float64) {
	a := arc{
		rx:       math.Abs(points[0]),
		ry:       math.Abs(points[1]),
		rotation: points[2] * math.Pi / 180,
		largeArc: points[3] != 0,
		sweep:    points[4] != 0,
		from:     pt(c.placeX, c.placeY),
		to:       pt(points[5], points[6]),
	}
	switch {
	case a.from == a.to:
		// the arc is omitted
	case a.rx == 0 || a.ry == 0:
		// degenerated arcs are straight lines
		c.path.Line(a.to)
	default:
		center := a.center()
		a.appendTo(&c.path, center)
	}
	c.placeX, c.placeY = a.to.X, a.to.Y
}
