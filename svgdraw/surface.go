package svgdraw

import (
	"github.com/srwiley/rasterx"

	"github.com/benoitkugler/okrender/svgpath"
)

// ClipEntry is one level of the clip stack.
type ClipEntry struct {
	// Shape is the clip path, in device space
	Shape             svgpath.Path
	UseNonZeroWinding bool

	// backend save count to restore to remove this clip
	savePoint int
}

// SavePoint returns the backend save count which
// removes this clip when restored.
func (ce ClipEntry) SavePoint() int { return ce.savePoint }

// sameShape ignores the save point, which depends on
// the history of the stack and not on its content.
func (ce ClipEntry) sameShape(other ClipEntry) bool {
	return ce.UseNonZeroWinding == other.UseNonZeroWinding && ce.Shape.Equal(other.Shape)
}

// sharedState is shared by a root surface and all the
// surfaces derived from it.
type sharedState struct {
	backend   Backend
	saveCount int
	clips     []ClipEntry
}

// Surface tracks the drawing state and forwards
// device space geometry to its backend.
// Surfaces derived with `Derive` have their own transform, paint,
// stroke and opacity, but share the clip stack and the save counter.
//
// A Surface is not safe for concurrent use.
type Surface struct {
	shared *sharedState

	transform rasterx.Matrix2D
	paint     Paint
	stroke    StrokeStyle
	opacity   float64

	// clip stack depth when the surface was created;
	// clips below are owned by an ancestor
	baseDepth int
}

// NewSurface returns a root surface drawing on `backend`,
// with an identity transform, the default paint, no stroke,
// full opacity and an empty clip stack.
func NewSurface(backend Backend) *Surface {
	return &Surface{
		shared:    &sharedState{backend: backend},
		transform: rasterx.Identity,
		paint:     DefaultPaint,
		stroke:    DefaultStroke,
		opacity:   1,
	}
}

// Derive returns a child surface, starting with a copy of the current
// state of `s` and sharing its clip stack and save counter.
func (s *Surface) Derive() *Surface {
	child := *s
	child.baseDepth = len(s.shared.clips)
	return &child
}

// Backend returns the backend drawn on.
func (s *Surface) Backend() Backend { return s.shared.backend }

// SaveCount returns the number of pending backend saves.
func (s *Surface) SaveCount() int { return s.shared.saveCount }

func (s *Surface) Transform() rasterx.Matrix2D     { return s.transform }
func (s *Surface) SetTransform(m rasterx.Matrix2D) { s.transform = m }

// Concat applies `m` before the current transform.
func (s *Surface) Concat(m rasterx.Matrix2D) { s.transform = s.transform.Mult(m) }

func (s *Surface) Paint() Paint             { return s.paint }
func (s *Surface) SetPaint(p Paint)         { s.paint = p }
func (s *Surface) StrokeStyle() StrokeStyle { return s.stroke }
func (s *Surface) SetStroke(st StrokeStyle) { s.stroke = st }
func (s *Surface) Opacity() float64         { return s.opacity }
func (s *Surface) SetOpacity(o float64)     { s.opacity = o }

// Fill paints the interior of `p`, given in user space,
// with the current paint.
func (s *Surface) Fill(p svgpath.Path) {
	if s.paint.Pattern == nil || len(p) == 0 {
		return
	}
	s.shared.backend.Fill(p.Transform(s.transform), inDeviceSpace(s.paint.Pattern, s.transform),
		s.paint.Opacity*s.opacity, s.paint.UseNonZeroWinding)
}

// Stroke paints the outline of `p`, given in user space,
// with the current stroke style.
func (s *Surface) Stroke(p svgpath.Path) {
	if s.stroke.Pattern == nil || s.stroke.Options.LineWidth <= 0 || len(p) == 0 {
		return
	}
	opts := s.stroke.Options.resolved().scaled(s.transform)
	s.shared.backend.Stroke(p.Transform(s.transform), opts, inDeviceSpace(s.stroke.Pattern, s.transform),
		s.stroke.Opacity*s.opacity)
}

// PushClip intersects the clip region with `p`, given in user space.
func (s *Surface) PushClip(p svgpath.Path, useNonZeroWinding bool) {
	s.pushEntry(ClipEntry{Shape: p.Transform(s.transform), UseNonZeroWinding: useNonZeroWinding})
}

func (s *Surface) pushEntry(entry ClipEntry) {
	sh := s.shared
	entry.savePoint = sh.saveCount
	sh.backend.Save()
	sh.saveCount++
	sh.backend.Clip(entry.Shape, entry.UseNonZeroWinding)
	sh.clips = append(sh.clips, entry)
}

// restoreTo removes every clip from index `depth`, with one backend restore.
func (s *Surface) restoreTo(depth int) {
	sh := s.shared
	if depth >= len(sh.clips) {
		return
	}
	savePoint := sh.clips[depth].savePoint
	sh.backend.RestoreToCount(savePoint)
	sh.saveCount = savePoint
	sh.clips = sh.clips[:depth]
}

// PopClip removes the last clip pushed by `s`.
// It is a no-op if there is none.
func (s *Surface) PopClip() {
	if len(s.shared.clips) <= s.baseDepth {
		return
	}
	s.restoreTo(len(s.shared.clips) - 1)
}

// ClearClip removes all the clips pushed by `s`
// (or by surfaces derived from it), with one backend restore.
func (s *Surface) ClearClip() {
	if len(s.shared.clips) <= s.baseDepth {
		return
	}
	s.restoreTo(s.baseDepth)
}

// ClipStack returns a copy of the live clip stack.
func (s *Surface) ClipStack() []ClipEntry {
	return append([]ClipEntry(nil), s.shared.clips...)
}

// RestoreClipStack reconciles the live clip stack with `target`:
// the longest common prefix (compared by shape) is kept, the rest of the live
// stack is dropped with one backend restore, and the remaining target
// entries are pushed again.
func (s *Surface) RestoreClipStack(target []ClipEntry) {
	live := s.shared.clips
	common := 0
	for common < len(live) && common < len(target) && live[common].sameShape(target[common]) {
		common++
	}
	if common == len(live) && common == len(target) {
		return
	}
	tracer().Debugf("reconciling clip stack: keeping %d of %d, pushing %d", common, len(live), len(target)-common)
	s.restoreTo(common)
	for _, entry := range target[common:] {
		s.pushEntry(entry)
	}
}

// Snapshot is an opaque copy of the state of a surface,
// which may only be restored on the surface which created it.
type Snapshot struct {
	owner     *Surface
	clips     []ClipEntry
	transform rasterx.Matrix2D
	paint     Paint
	stroke    StrokeStyle
	opacity   float64
}

// SafeState captures the current state of `s`.
// The snapshot is not applied automatically: callers
// must pair it with `Restore`, typically with a defer statement.
func (s *Surface) SafeState() Snapshot {
	return Snapshot{
		owner:     s,
		clips:     s.ClipStack(),
		transform: s.transform,
		paint:     s.paint,
		stroke:    s.stroke,
		opacity:   s.opacity,
	}
}

// Restore applies back a snapshot taken with `SafeState` on the same surface:
// the clip stack is reconciled first, then opacity, transform, paint
// and stroke are restored.
// It panics if `snap` was created by another surface.
func (s *Surface) Restore(snap Snapshot) {
	if snap.owner != s {
		panic("svgdraw: snapshot restored on a foreign surface")
	}
	s.RestoreClipStack(snap.clips)
	s.opacity = snap.opacity
	s.transform = snap.transform
	s.paint = snap.paint
	s.stroke = snap.stroke
}
