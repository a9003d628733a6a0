package arix

import (
	"image"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// OverlayButtonID is the hit-test id of the assemble/scatter button.
const OverlayButtonID uint32 = 1

const (
	overlayStatusFade = 1.0 // seconds
	overlayIntro      = 1.0
	overlaySweep      = 1.0
	overlayHoverRate  = 10.0
)

// OverlayPalette holds the overlay colors.
type OverlayPalette struct {
	Gold      Color
	GoldLight Color
	Panel     Color
	Text      Color
}

// DefaultOverlayPalette returns the gold-on-emerald palette.
func DefaultOverlayPalette() OverlayPalette {
	return OverlayPalette{
		Gold:      MustHex("#D4AF37"),
		GoldLight: MustHex("#F3E5AB"),
		Panel:     MustHex("#011A11"),
		Text:      ColorWhite,
	}
}

// Overlay is the screen-space layer with the title, the status caption, the
// footer captions and the assemble/scatter button.
type Overlay struct {
	palette OverlayPalette

	title       *Label
	subtitle    *Label
	status      *Label
	footerTitle *Label
	footerSub   *Label
	button      *Label

	assembled   bool
	statusAlpha float64
	statusFade  *TweenGroup

	intro      float64
	introTween *TweenGroup

	hover    bool
	hoverMix float64
	sweep    *gween.Tween
	sweepPos float64

	width, height int
	buttonRect    Rect
}

// NewOverlay builds the overlay in the scattered state.
func NewOverlay(tf *Typeface, palette OverlayPalette) *Overlay {
	o := &Overlay{palette: palette, statusAlpha: 1}

	o.title = NewLabel("ARIX", tf.Bold.Face(56), palette.Gold)
	o.title.SetLetterSpacing(12)
	o.title.SetOutline(&Outline{Color: Color{0, 0, 0, 0.35}, Thickness: 2})

	o.subtitle = NewLabel("Signature Collection", tf.Italic.Face(22), withAlpha(palette.Text, 0.8))
	o.subtitle.SetLetterSpacing(0.5)

	o.status = NewLabel("AWAITING ASSEMBLY", tf.Bold.Face(12), withAlpha(palette.Gold, 0.5))
	o.status.SetLetterSpacing(6)
	o.status.Align = TextAlignCenter

	o.footerTitle = NewLabel("The Golden Holiday", tf.Italic.Face(18), withAlpha(palette.GoldLight, 0.9))
	o.footerSub = NewLabel("INTERACTIVE 3D EXPERIENCE", tf.Regular.Face(12), withAlpha(palette.Text, 0.5))
	o.footerSub.SetLetterSpacing(1.2)

	o.button = NewLabel("", tf.Bold.Face(14), palette.Gold)
	o.button.SetLetterSpacing(2.8)
	o.button.Align = TextAlignCenter
	o.SetAssembled(false)

	o.introTween = TweenValue(&o.intro, 1, overlayIntro, ease.OutCubic)
	return o
}

func withAlpha(c Color, a float64) Color {
	c.A = a
	return c
}

// ButtonText returns the current button caption.
func (o *Overlay) ButtonText() string {
	return o.button.Content()
}

// StatusAlpha returns the opacity of the "awaiting assembly" caption.
func (o *Overlay) StatusAlpha() float64 {
	return o.statusAlpha
}

// ButtonRect returns the button's screen rectangle from the last layout.
func (o *Overlay) ButtonRect() Rect {
	return o.buttonRect
}

// SetAssembled switches the button caption and fades the status caption out
// when assembled, back in when scattered.
func (o *Overlay) SetAssembled(assembled bool) {
	if assembled {
		o.button.SetContent("SCATTER ELEMENTS")
	} else {
		o.button.SetContent("ASSEMBLE TREE")
	}
	o.width = 0 // caption width changed; relayout on next Draw
	if assembled == o.assembled && o.statusFade == nil {
		return
	}
	o.assembled = assembled
	target := 1.0
	if assembled {
		target = 0
	}
	o.statusFade = TweenValue(&o.statusAlpha, target, overlayStatusFade, ease.InOutQuad)
}

// Update advances the fades and the hover animation.
func (o *Overlay) Update(dt float64) {
	if o.statusFade != nil {
		o.statusFade.Update(float32(dt))
		if o.statusFade.Done {
			o.statusFade = nil
		}
	}
	if o.introTween != nil {
		o.introTween.Update(float32(dt))
		if o.introTween.Done {
			o.introTween = nil
		}
	}
	target := 0.0
	if o.hover {
		target = 1
	}
	o.hoverMix = Damp(o.hoverMix, target, overlayHoverRate, dt)
	if math.Abs(o.hoverMix-target) < 1e-3 {
		o.hoverMix = target
	}
	if o.sweep != nil {
		v, done := o.sweep.Update(float32(dt))
		o.sweepPos = float64(v)
		if done {
			o.sweep = nil
		}
	}
}

// layout positions every element for a w x h screen.
func (o *Overlay) layout(w, h int) {
	if w == o.width && h == o.height {
		return
	}
	o.width, o.height = w, h
	fw, fh := float64(w), float64(h)
	pad := 48.0
	if fw < 768 {
		pad = 32
	}

	o.title.X, o.title.Y = pad, pad
	_, th := o.title.Measure()
	o.subtitle.X, o.subtitle.Y = pad, pad+th+8

	o.status.X = fw / 2
	_, sh := o.status.Measure()
	o.status.Y = fh/2 - sh/2

	bw, bh := o.button.Measure()
	bw += 80
	bh += 32
	o.buttonRect = Rect{X: fw - pad - bw, Y: fh - pad - bh, Width: bw, Height: bh}
	o.button.X = o.buttonRect.X + bw/2
	o.button.Y = o.buttonRect.Y + 16

	_, fsh := o.footerSub.Measure()
	o.footerSub.X, o.footerSub.Y = pad, fh-pad-fsh
	_, fth := o.footerTitle.Measure()
	o.footerTitle.X, o.footerTitle.Y = pad, o.footerSub.Y-fth-4
}

// Draw paints the overlay onto dst.
func (o *Overlay) Draw(dst *ebiten.Image) {
	b := dst.Bounds()
	o.layout(b.Dx(), b.Dy())

	// Header slides down as it fades in.
	slide := (1 - o.intro) * -20
	o.title.Alpha, o.subtitle.Alpha = o.intro, o.intro
	o.title.Y += slide
	o.subtitle.Y += slide
	o.title.Draw(dst)
	o.subtitle.Draw(dst)
	o.title.Y -= slide
	o.subtitle.Y -= slide

	o.status.Alpha = o.statusAlpha
	o.status.Draw(dst)

	o.footerTitle.Draw(dst)
	o.footerSub.Draw(dst)

	o.drawButton(dst)
}

func (o *Overlay) drawButton(dst *ebiten.Image) {
	r := o.buttonRect
	x, y, w, h := float32(r.X), float32(r.Y), float32(r.Width), float32(r.Height)
	m := o.hoverMix
	gold := o.palette.Gold

	// Hover glow: a few widening translucent frames.
	if m > 0.01 {
		for i := 1; i <= 4; i++ {
			g := float32(i * 4)
			vector.StrokeRect(dst, x-g, y-g, w+2*g, h+2*g, 4, withAlpha(gold, 0.3*m/float64(i+1)).toRGBA(), false)
		}
	}

	panel := withAlpha(o.palette.Panel, lerp(0.8, 1, m))
	vector.DrawFilledRect(dst, x, y, w, h, panel.toRGBA(), false)

	if o.sweep != nil {
		band := r.Width * 0.4
		bx := r.X + (o.sweepPos+1)/2*(r.Width+band) - band
		clip := dst.SubImage(image.Rect(int(r.X), int(r.Y), int(r.X+r.Width), int(r.Y+r.Height))).(*ebiten.Image)
		for i := 0; i < 8; i++ {
			// Gradient band: brightest in the middle.
			f := 1 - math.Abs(float64(i)-3.5)/4
			sx := float32(bx + band*float64(i)/8)
			vector.DrawFilledRect(clip, sx, y, float32(band/8)+1, h, withAlpha(gold, 0.2*f).toRGBA(), false)
		}
	}

	border := withAlpha(gold, lerp(0.3, 1, m))
	vector.StrokeRect(dst, x, y, w, h, 1, border.toRGBA(), false)

	o.button.SetColor(Color{
		lerp(gold.R, 1, m), lerp(gold.G, 1, m), lerp(gold.B, 1, m), 1,
	})
	o.button.Draw(dst)
}

// HitTest returns OverlayButtonID when (x, y) is on the button.
func (o *Overlay) HitTest(x, y float64) uint32 {
	if o.buttonRect.Width > 0 && o.buttonRect.Contains(x, y) {
		return OverlayButtonID
	}
	return 0
}

// SetHover starts the hover animation when the pointer enters the button.
func (o *Overlay) SetHover(id uint32) {
	hover := id == OverlayButtonID
	if hover && !o.hover {
		o.sweep = gween.New(-1, 1, overlaySweep, ease.InOutSine)
		o.sweepPos = -1
	}
	o.hover = hover
}

// Hovered reports whether the pointer rests on the button.
func (o *Overlay) Hovered() bool {
	return o.hover
}
