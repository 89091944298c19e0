// Provides parsing and rendering of SVG images.
// SVG files are parsed into a tree of nodes, whose inherited
// attributes are resolved while parsing. The tree is then
// painted on a svgdraw.Surface, by a depth-first walker.
// See for example okrender/svgraster or okrender/svgpdf .
package svgicon

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/npillmayer/schuko/tracing"
	"github.com/srwiley/rasterx"
	"golang.org/x/net/html/charset"

	"github.com/benoitkugler/okrender/svgpath"
)

// tracer traces with key 'okrender.icon'
func tracer() tracing.Trace {
	return tracing.Select("okrender.icon")
}

// ErrorMode is the for setting how the parser reacts to unparsed elements
type ErrorMode uint8

const (
	// IgnoreErrorMode skips unparsed SVG elements
	IgnoreErrorMode ErrorMode = iota
	// WarnErrorMode traces a warning when an unparsed SVG element is found
	WarnErrorMode
	// StrictErrorMode causes an error when an unparsed SVG element is found
	StrictErrorMode
)

var (
	errParamMismatch = errors.New("param mismatch")
	errZeroLengthID  = errors.New("zero length id")
	errInvalidIcon   = errors.New("invalid svg xml icon")
)

// SvgIcon holds data from parsed SVGs.
// See the `Draw` method to use it.
type SvgIcon struct {
	ViewBox      svgpath.Bounds
	Titles       []string // Title elements collect here
	Descriptions []string // Description elements collect here
	Transform    rasterx.Matrix2D

	Width, Height string // top level width and height attributes

	root  *node
	ids   map[string]*node
	grads map[string]*gradient
}

// ReadIconStream reads the Icon from the given io.Reader
// This only supports a sub-set of SVG, but
// is enough to draw many icons. errMode determines if the icon ignores, errors out, or logs a warning
// if it does not handle an element found in the icon file.
func ReadIconStream(stream io.Reader, errMode ErrorMode) (*SvgIcon, error) {
	icon := &SvgIcon{
		ids:       make(map[string]*node),
		grads:     make(map[string]*gradient),
		Transform: rasterx.Identity,
		root:      &node{tag: "#root", style: DefaultStyle, transform: rasterx.Identity, opacity: 1},
	}
	cursor := &iconCursor{icon: icon, stack: []*node{icon.root}, errorMode: errMode}
	decoder := xml.NewDecoder(stream)
	decoder.CharsetReader = charset.NewReaderLabel
	seenTag := false
	for {
		t, err := decoder.Token()
		if err != nil {
			if err == io.EOF {
				if !seenTag {
					return nil, errInvalidIcon
				}
				break
			}
			return icon, fmt.Errorf("svgicon: %w", err)
		}
		// Inspect the type of the XML token
		switch se := t.(type) {
		case xml.StartElement:
			seenTag = true
			if err = cursor.readStartElement(se); err != nil {
				return icon, err
			}
		case xml.EndElement:
			cursor.readEndElement(se)
		case xml.CharData:
			cursor.readCharData(string(se))
		}
	}
	return icon, nil
}

// ReadIcon reads the Icon from the named file
// This only supports a sub-set of SVG, but
// is enough to draw many icons. errMode determines if the icon ignores, errors out, or logs a warning
// if it does not handle an element found in the icon file.
func ReadIcon(iconFile string, errMode ErrorMode) (*SvgIcon, error) {
	fin, errf := os.Open(iconFile)
	if errf != nil {
		return nil, errf
	}
	defer fin.Close()
	return ReadIconStream(fin, errMode)
}

// SetTarget sets the Transform matrix to draw within the bounds of the rectangle arguments
func (s *SvgIcon) SetTarget(x, y, w, h float64) {
	scaleW := w / s.ViewBox.W
	scaleH := h / s.ViewBox.H
	s.Transform = rasterx.Identity.Translate(x, y).Scale(scaleW, scaleH).Translate(-s.ViewBox.X, -s.ViewBox.Y)
}

// ElementCount returns the number of elements of the document,
// the root svg element included.
func (s *SvgIcon) ElementCount() int {
	count := 0
	var walk func(n *node)
	walk = func(n *node) {
		for _, child := range n.children {
			if child.tag != "" {
				count++
				walk(child)
			}
		}
	}
	walk(s.root)
	return count
}
