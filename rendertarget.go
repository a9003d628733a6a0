package arix

import (
	"image"

	"github.com/hajimehoshi/ebiten/v2"
)

// --- Render texture pool ---

// renderTexturePool manages reusable offscreen ebiten.Images keyed by their
// exact dimensions. Post processing always works on frame-sized images, so
// after warmup Acquire/Release are zero-alloc.
type renderTexturePool struct {
	buckets map[uint64][]*ebiten.Image
}

// poolKey packs width and height into a single uint64.
func poolKey(w, h int) uint64 {
	return uint64(w)<<32 | uint64(h)
}

// Acquire returns a cleared offscreen image of exactly (w, h) pixels.
func (p *renderTexturePool) Acquire(w, h int) *ebiten.Image {
	w, h = max(w, 1), max(h, 1)
	key := poolKey(w, h)

	if p.buckets != nil {
		if stack := p.buckets[key]; len(stack) > 0 {
			img := stack[len(stack)-1]
			p.buckets[key] = stack[:len(stack)-1]
			img.Clear()
			return img
		}
	}

	return ebiten.NewImageWithOptions(
		image.Rect(0, 0, w, h),
		&ebiten.NewImageOptions{Unmanaged: true},
	)
}

// Release returns an image to the pool for reuse. The image is cleared on
// next Acquire, not here (avoids redundant GPU work if released then
// immediately re-acquired).
func (p *renderTexturePool) Release(img *ebiten.Image) {
	if img == nil {
		return
	}
	b := img.Bounds()
	key := poolKey(b.Dx(), b.Dy())

	if p.buckets == nil {
		p.buckets = make(map[uint64][]*ebiten.Image)
	}
	p.buckets[key] = append(p.buckets[key], img)
}

// pooled returns the number of idle images held for (w, h).
func (p *renderTexturePool) pooled(w, h int) int {
	return len(p.buckets[poolKey(w, h)])
}

// --- Filter application helper ---

// applyFilters runs a filter chain on src, ping-ponging between two pooled
// images. It returns src when the chain is empty; otherwise the returned
// image is pooled and the caller must Release it. src itself is never
// written.
func applyFilters(filters []Filter, src *ebiten.Image, pool *renderTexturePool) *ebiten.Image {
	if len(filters) == 0 {
		return src
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()

	current := src
	var spare *ebiten.Image
	for _, f := range filters {
		dst := spare
		if dst == nil {
			dst = pool.Acquire(w, h)
		} else {
			dst.Clear()
		}
		f.Apply(current, dst)
		if current != src {
			spare = current
		} else {
			spare = nil
		}
		current = dst
	}
	if spare != nil {
		pool.Release(spare)
	}
	return current
}
