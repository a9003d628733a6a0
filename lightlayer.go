package arix

import (
	"github.com/hajimehoshi/ebiten/v2"
)

// glowSpriteRadius is the pixel radius of the generated halo texture; halos
// are scaled from it to their projected size.
const glowSpriteRadius = 64

// GlowSource is a soft additive halo anchored in world space, used to make
// point lights visible.
type GlowSource struct {
	// Position is the halo center in world space, or an offset from Follow's
	// origin when Follow is set.
	Position Vec3
	// Follow, if set, makes the halo track this node's world origin. The
	// halo radius is also multiplied by the node's world scale.
	Follow *Node
	// Radius is the halo radius in world units.
	Radius float64
	// Intensity scales the halo opacity, in [0, 1].
	Intensity float64
	// Color tints the halo. Zero value means white.
	Color Color
	// Enabled determines whether this halo is drawn.
	Enabled bool

	// Computed by update.
	screenX, screenY float64
	screenRadius     float64
	visible          bool
}

// GlowLayer renders GlowSources into an offscreen texture that is added over
// the 3D view before post processing, so bloom picks the halos up.
type GlowLayer struct {
	camera  *Camera
	rt      *RenderTexture
	sources []*GlowSource
	sprite  *ebiten.Image
	imgOp   ebiten.DrawImageOptions
}

func newGlowLayer(cam *Camera) *GlowLayer {
	return &GlowLayer{camera: cam}
}

// AddSource adds a halo to the layer.
func (gl *GlowLayer) AddSource(src *GlowSource) {
	gl.sources = append(gl.sources, src)
}

// RemoveSource removes a halo from the layer.
func (gl *GlowLayer) RemoveSource(src *GlowSource) {
	for i, existing := range gl.sources {
		if existing == src {
			gl.sources = append(gl.sources[:i], gl.sources[i+1:]...)
			return
		}
	}
}

// Sources returns the current halo list. The returned slice MUST NOT be mutated.
func (gl *GlowLayer) Sources() []*GlowSource {
	return gl.sources
}

// update projects every enabled source into screen space.
func (gl *GlowLayer) update() {
	for _, src := range gl.sources {
		src.visible = false
		if !src.Enabled || src.Radius <= 0 || src.Intensity <= 0 {
			continue
		}
		world := src.Position
		radius := src.Radius
		if src.Follow != nil {
			if src.Follow.IsDisposed() {
				continue
			}
			m := src.Follow.worldMatrix
			world = m.TransformPoint(src.Position)
			radius *= maxAxisScale(m)
		}
		sx, sy, depth, ok := gl.camera.WorldToScreen(world)
		if !ok {
			continue
		}
		src.screenX, src.screenY = sx, sy
		src.screenRadius = radius * gl.camera.PixelsPerUnit(depth)
		src.visible = src.screenRadius >= 0.5
	}
}

// Redraw clears the texture and draws every visible halo additively.
func (gl *GlowLayer) Redraw(w, h int) {
	if gl.rt == nil {
		gl.rt = NewRenderTexture(w, h)
	} else {
		gl.rt.Resize(w, h)
	}
	gl.rt.Clear()
	if gl.sprite == nil {
		gl.sprite = generateCircle(glowSpriteRadius)
	}
	for _, src := range gl.sources {
		if !src.visible {
			continue
		}
		k := src.screenRadius / glowSpriteRadius
		gl.rt.DrawImageColored(gl.sprite, RenderTextureDrawOpts{
			X:         src.screenX,
			Y:         src.screenY,
			ScaleX:    k,
			ScaleY:    k,
			PivotX:    glowSpriteRadius,
			PivotY:    glowSpriteRadius,
			Color:     src.Color,
			Alpha:     clamp01(src.Intensity),
			BlendMode: BlendAdd,
		})
	}
}

// Draw redraws the halos and adds them onto dst.
func (gl *GlowLayer) Draw(dst *ebiten.Image) {
	if len(gl.sources) == 0 {
		return
	}
	b := dst.Bounds()
	gl.Redraw(b.Dx(), b.Dy())
	op := &gl.imgOp
	op.GeoM.Reset()
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	op.Blend = BlendAdd.EbitenBlend()
	dst.DrawImage(gl.rt.Image(), op)
}

// Dispose releases all resources owned by the glow layer.
func (gl *GlowLayer) Dispose() {
	if gl.rt != nil {
		gl.rt.Dispose()
		gl.rt = nil
	}
	if gl.sprite != nil {
		gl.sprite.Deallocate()
		gl.sprite = nil
	}
	gl.sources = nil
}
