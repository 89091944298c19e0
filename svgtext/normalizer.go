package svgtext

import "strings"

// NormalizerState is the state of the whitespace collapsing automaton.
type NormalizerState uint8

const (
	// SegmentStart: nothing has been appended since the last flush
	SegmentStart NormalizerState = iota
	// SegmentBreak: a line break was seen after content or whitespace
	SegmentBreak
	// WhitespaceAfterChar: whitespace follows a content character
	WhitespaceAfterChar
	// WhitespaceAfterSegmentBreak: whitespace follows a line break
	// or starts the segment
	WhitespaceAfterSegmentBreak
	// Character: the last character appended was a content character
	Character
)

func (s NormalizerState) String() string {
	switch s {
	case SegmentStart:
		return "SegmentStart"
	case SegmentBreak:
		return "SegmentBreak"
	case WhitespaceAfterChar:
		return "WhitespaceAfterChar"
	case WhitespaceAfterSegmentBreak:
		return "WhitespaceAfterSegmentBreak"
	case Character:
		return "Character"
	default:
		return "<unknown NormalizerState>"
	}
}

// visualSpace returns true if a separator is pending,
// to be emitted before the next content character.
func (s NormalizerState) visualSpace() bool {
	return s == SegmentBreak || s == WhitespaceAfterChar || s == WhitespaceAfterSegmentBreak
}

func isSegmentBreak(r rune) bool { return r == '\n' || r == '\r' }

func isWhitespace(r rune) bool { return r == ' ' || r == '\t' }

// Normalizer collapses the whitespace of character data, which
// may be received in several chunks: runs of spaces, tabs
// and line breaks become one space between content characters.
// The output does not depend on how the input is split in chunks.
//
// The zero value is ready to use.
type Normalizer struct {
	buf   strings.Builder
	state NormalizerState
}

// State returns the current state of the automaton.
func (n *Normalizer) State() NormalizerState { return n.state }

// Append ingests a chunk of raw character data.
func (n *Normalizer) Append(chunk string) {
	for _, r := range chunk {
		switch {
		case isSegmentBreak(r):
			n.state = SegmentBreak
		case isWhitespace(r):
			switch n.state {
			case SegmentStart, SegmentBreak:
				n.state = WhitespaceAfterSegmentBreak
			case Character:
				n.state = WhitespaceAfterChar
			}
		default:
			if n.state.visualSpace() {
				n.buf.WriteByte(' ')
			}
			n.buf.WriteRune(r)
			n.state = Character
		}
	}
}

// CanFlush returns false if nothing has been appended since the last
// flush, and the flush is not forced by a following segment.
func (n *Normalizer) CanFlush(dueToSegmentBreak bool) bool {
	return n.state != SegmentStart || dueToSegmentBreak
}

// Flush returns the normalized text and resets the automaton.
// When `dueToSegmentBreak` is true, the text continues in
// a following segment, and a pending separator is kept as one
// trailing space. Otherwise, trailing whitespace is dropped.
func (n *Normalizer) Flush(dueToSegmentBreak bool) string {
	if dueToSegmentBreak && n.state.visualSpace() {
		n.buf.WriteByte(' ')
	}
	out := n.buf.String()
	n.buf.Reset()
	n.state = SegmentStart
	return out
}
