package svgraster

import (
	"image"

	"golang.org/x/image/draw"
)

// LayerPool recycles the offscreen images used to composite
// clipped drawings.
// A layer is taken with Checkout and only goes back to the pool
// when the returned release function is called.
//
// A pool is owned by one Renderer, and is not safe for concurrent use.
type LayerPool struct {
	free  []*image.RGBA
	inUse int
}

// Checkout returns a transparent layer of size (width, height),
// and the function releasing it.
func (lp *LayerPool) Checkout(width, height int) (*image.RGBA, func()) {
	var layer *image.RGBA
	for i, candidate := range lp.free {
		if b := candidate.Bounds(); b.Dx() == width && b.Dy() == height {
			layer = candidate
			lp.free = append(lp.free[:i], lp.free[i+1:]...)
			draw.Draw(layer, b, image.Transparent, image.Point{}, draw.Src)
			break
		}
	}
	if layer == nil {
		layer = image.NewRGBA(image.Rect(0, 0, width, height))
		tracer().Debugf("new %dx%d layer", width, height)
	}
	lp.inUse++

	released := false
	return layer, func() {
		if released {
			tracer().Errorf("layer released twice")
			return
		}
		released = true
		lp.inUse--
		lp.free = append(lp.free, layer)
	}
}

// InUse returns the number of layers checked out and not released.
func (lp *LayerPool) InUse() int { return lp.inUse }

// Available returns the number of layers ready to be reused.
func (lp *LayerPool) Available() int { return len(lp.free) }
