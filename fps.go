package arix

import (
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
)

// FPSWidget is a Layer in the top-left corner showing the current FPS, TPS
// and the previous frame's render counts. The text refreshes every half
// second.
type FPSWidget struct {
	Visible bool

	scene *Scene
	img   *ebiten.Image
	since float64
	text  string
}

// NewFPSWidget creates a visible widget reading stats from s (which may be nil).
func NewFPSWidget(s *Scene) *FPSWidget {
	return &FPSWidget{Visible: true, scene: s, since: 0.5}
}

// Update refreshes the text twice a second.
func (w *FPSWidget) Update(dt float64) {
	w.since += dt
	if w.since < 0.5 {
		return
	}
	w.since = 0
	w.text = fmt.Sprintf("FPS: %.1f\nTPS: %.1f", ebiten.ActualFPS(), ebiten.ActualTPS())
	if w.scene != nil {
		tris, pts, calls := w.scene.Stats()
		w.text += fmt.Sprintf("\nTRI: %d\nPTS: %d\nDC:  %d", tris, pts, calls)
	}
}

// Draw paints the widget onto dst when Visible.
func (w *FPSWidget) Draw(dst *ebiten.Image) {
	if !w.Visible || w.text == "" {
		return
	}
	if w.img == nil {
		// Enough for five short lines of debug text.
		w.img = ebiten.NewImage(110, 80)
	}
	w.img.Fill(color.RGBA{0, 0, 0, 128})
	ebitenutil.DebugPrint(w.img, w.text)

	var op ebiten.DrawImageOptions
	op.GeoM.Translate(8, 8)
	dst.DrawImage(w.img, &op)
}

// HitTest never captures the pointer.
func (w *FPSWidget) HitTest(x, y float64) uint32 { return 0 }

// SetHover is a no-op.
func (w *FPSWidget) SetHover(id uint32) {}

// Toggle flips visibility.
func (w *FPSWidget) Toggle() {
	w.Visible = !w.Visible
}
