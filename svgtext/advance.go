package svgtext

import "fmt"

// LengthAdjust selects how a text is fitted to a target length.
type LengthAdjust uint8

const (
	// Spacing only changes the space between glyphs.
	Spacing LengthAdjust = iota
	// SpacingAndGlyphs stretches the glyphs and their spacing.
	SpacingAndGlyphs
)

func (l LengthAdjust) String() string {
	switch l {
	case Spacing:
		return "spacing"
	case SpacingAndGlyphs:
		return "spacingAndGlyphs"
	default:
		return "<unknown LengthAdjust>"
	}
}

// Metrics are the natural dimensions of a run, before any fitting.
type Metrics struct {
	// Natural is the total advance, including letter spacing.
	Natural float64
	// Glyphs is the number of glyphs in the run.
	Glyphs int
}

// Advancement is a resolved fitting policy. The zero value is
// the identity policy, leaving advances untouched.
type Advancement struct {
	policy      LengthAdjust
	active      bool
	extraPerGap float64
	scale       float64
}

// NewAdvancement resolves the policy fitting a run with metrics `m` to `target`.
// A non positive target disables fitting.
func NewAdvancement(adjust LengthAdjust, target float64, m Metrics) Advancement {
	if target <= 0 {
		return Advancement{}
	}
	out := Advancement{policy: adjust, active: true, scale: 1}
	switch adjust {
	case SpacingAndGlyphs:
		if m.Natural != 0 {
			out.scale = target / m.Natural
		}
	default:
		if m.Glyphs > 1 {
			out.extraPerGap = (target - m.Natural) / float64(m.Glyphs-1)
		}
	}
	return out
}

// IsIdentity returns true if no fitting is applied.
func (a Advancement) IsIdentity() bool { return !a.active }

// ExtraPerGap returns the space added between two glyphs.
func (a Advancement) ExtraPerGap() float64 { return a.extraPerGap }

// Scale returns the horizontal factor applied to glyphs and spacing.
func (a Advancement) Scale() float64 {
	if !a.active {
		return 1
	}
	return a.scale
}

func (a Advancement) String() string {
	if !a.active {
		return "identity"
	}
	if a.policy == SpacingAndGlyphs {
		return fmt.Sprintf("spacingAndGlyphs(%g)", a.scale)
	}
	return fmt.Sprintf("spacing(%g)", a.extraPerGap)
}
