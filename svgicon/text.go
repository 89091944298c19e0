package svgicon

import (
	"strings"

	"github.com/benoitkugler/okrender/svgdraw"
	"github.com/benoitkugler/okrender/svgtext"
)

// textChunks returns the character data of a text element, in
// document order. The content of nested text elements is included.
func textChunks(n *node) []*node {
	var out []*node
	for _, child := range n.children {
		switch {
		case child.tag == "":
			out = append(out, child)
		case isTextContainer(child.tag):
			out = append(out, textChunks(child)...)
		}
	}
	return out
}

// normalizeText collapses the whitespace of the chunks of a text element.
// The chunks are normalized one after the other, so that a separator between
// two chunks is emitted only once, and the text is trimmed.
// Chunks with no visible text are omitted from the returned map.
func normalizeText(chunks []*node) map[*node]svgtext.TextRun {
	texts := make(map[*node]string, len(chunks))
	var (
		norm          svgtext.Normalizer
		started       bool
		trailingSpace bool
		last          *node
	)
	for i, chunk := range chunks {
		more := i < len(chunks)-1
		norm.Append(chunk.text)
		if !norm.CanFlush(more) {
			continue
		}
		text := norm.Flush(more)
		if !started || trailingSpace {
			text = strings.TrimLeft(text, " ")
		}
		if text == "" {
			continue
		}
		started = true
		trailingSpace = strings.HasSuffix(text, " ")
		texts[chunk] = text
		last = chunk
	}
	if last != nil {
		if text := strings.TrimRight(texts[last], " "); text == "" {
			delete(texts, last)
		} else {
			texts[last] = text
		}
	}

	out := make(map[*node]svgtext.TextRun, len(texts))
	for chunk, text := range texts {
		out[chunk] = svgtext.NewTextRun(text)
	}
	return out
}

// fitting is the length adjustment of the innermost
// text element with a textLength attribute
type fitting struct {
	adv     svgtext.Advancement
	lastRun *node // no gap is added after it
}

// textLayout lays out one text element
type textLayout struct {
	*renderer
	runs map[*node]svgtext.TextRun
}

func (r *renderer) drawText(s *svgdraw.Surface, n *node) {
	runs := normalizeText(textChunks(n))
	if len(runs) == 0 {
		return
	}
	tl := textLayout{renderer: r, runs: runs}
	tl.layoutElement(s, n, svgtext.NewLinearCursor(0, 0), fitting{})
}

func (tl textLayout) builder(st PathStyle) svgtext.Builder {
	return svgtext.Builder{Provider: tl.opts.Provider, FontSize: st.FontSize, LetterSpacing: st.LetterSpacing}
}

// measure returns the natural metrics of the content of `n`,
// and its last visible chunk
func (tl textLayout) measure(n *node) (svgtext.Metrics, *node) {
	var (
		total   svgtext.Metrics
		last    *node
		spacing float64
	)
	for _, chunk := range textChunks(n) {
		run, ok := tl.runs[chunk]
		if !ok {
			continue
		}
		if last != nil { // spacing after the previous run
			total.Natural += spacing
		}
		m := tl.builder(chunk.style).Measure(run)
		total.Natural += m.Natural
		total.Glyphs += m.Glyphs
		spacing = chunk.style.LetterSpacing
		last = chunk
	}
	return total, last
}

// layoutElement lays out and paints the content of a text, tspan or textPath element,
// starting at `cursor`.
func (tl textLayout) layoutElement(s *svgdraw.Surface, n *node, cursor *svgtext.Cursor, fit fitting) {
	if ta := n.textAttrs; ta != nil {
		cursor.PushOverrides(ta.overrides)
		defer cursor.PopOverrides()
		if ta.textLength > 0 {
			var m svgtext.Metrics
			m, fit.lastRun = tl.measure(n)
			fit.adv = svgtext.NewAdvancement(ta.lengthAdjust, ta.textLength, m)
			tracer().Debugf("text fitted to %g: %s", ta.textLength, fit.adv)
		}
	}

	for _, child := range n.children {
		switch child.tag {
		case "":
			tl.layoutRun(s, child, cursor, fit)
		case "tspan":
			tl.layoutNested(s, child, func(s *svgdraw.Surface) { tl.layoutElement(s, child, cursor, fit) })
		case "textPath":
			tl.layoutNested(s, child, func(s *svgdraw.Surface) { tl.layoutOnPath(s, child, fit) })
		}
	}
}

// layoutNested scopes the opacity and clip of a nested text element
func (tl textLayout) layoutNested(s *svgdraw.Surface, n *node, layout func(s *svgdraw.Surface)) {
	state := s.SafeState()
	defer s.Restore(state)
	s.SetOpacity(s.Opacity() * n.opacity)
	if n.clipPath != "" && !tl.pushClip(s, n) {
		return
	}
	layout(s)
}

func (tl textLayout) layoutRun(s *svgdraw.Surface, chunk *node, cursor *svgtext.Cursor, fit fitting) {
	run, ok := tl.runs[chunk]
	if !ok {
		return
	}
	b := tl.builder(chunk.style)
	glyphs := b.Layout(run, cursor, fit.adv)
	if len(glyphs.Breaks) != 0 {
		tracer().Debugf("run %q split in %d parts", run.String(), len(glyphs.Breaks)+1)
	}
	if !fit.adv.IsIdentity() && chunk != fit.lastRun && glyphs.Count == run.Len() {
		// the gap between two runs of a fitted element
		cursor.AdvanceSpacing(b.LetterSpacing*fit.adv.Scale() + fit.adv.ExtraPerGap())
	}
	if glyphs.IsEmpty() {
		return
	}

	state := s.SafeState()
	defer s.Restore(state)
	tl.applyStyle(s, chunk.style)
	b.Render(s, chunk.style.PaintOrder, glyphs)
}

// layoutOnPath lays out the content of a textPath element
// with its own path cursor.
func (tl textLayout) layoutOnPath(s *svgdraw.Surface, n *node, fit fitting) {
	ref, ok := tl.icon.ids[readHref(n)]
	if !ok || len(ref.path) == 0 {
		tracer().Debugf("textPath: %q is not a shape", readHref(n))
		return
	}
	p := ref.path.Transform(ref.transform)
	ta := n.textAttrs
	offset := ta.startOffset
	if ta.offsetIsFraction {
		offset *= p.Length(tl.opts.Tolerance)
	}
	cursor, err := svgtext.NewPathCursor(p, svgtext.PathOptions{
		StartOffset: offset,
		Reversed:    ta.reversed,
		Tolerance:   tl.opts.Tolerance,
	})
	if err != nil {
		tracer().Errorf("textPath %q: %s", readHref(n), err)
		return
	}
	tl.layoutElement(s, n, cursor, fit)
}
