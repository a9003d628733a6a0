package arix

import (
	"bytes"
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goitalic"
	"golang.org/x/image/font/gofont/goregular"
)

// --- Fonts ---

// FontFamily is a parsed TrueType source that hands out faces at any size.
type FontFamily struct {
	source *text.GoTextFaceSource
}

// LoadFontFamily parses raw TTF/OTF data.
func LoadFontFamily(ttfData []byte) (*FontFamily, error) {
	source, err := text.NewGoTextFaceSource(bytes.NewReader(ttfData))
	if err != nil {
		return nil, fmt.Errorf("arix: failed to parse TTF data: %w", err)
	}
	return &FontFamily{source: source}, nil
}

// Face returns a font of the family at the given pixel size.
func (ff *FontFamily) Face(size float64) *TTFFont {
	face := &text.GoTextFace{Source: ff.source, Size: size}
	m := face.Metrics()
	return &TTFFont{face: face, size: size, lh: m.HAscent + m.HDescent + m.HLineGap}
}

// Typeface groups the styles the overlay uses.
type Typeface struct {
	Regular *FontFamily
	Bold    *FontFamily
	Italic  *FontFamily
}

// LoadGoFonts returns the Go font family bundled with x/image.
func LoadGoFonts() (*Typeface, error) {
	var tf Typeface
	var err error
	if tf.Regular, err = LoadFontFamily(goregular.TTF); err != nil {
		return nil, err
	}
	if tf.Bold, err = LoadFontFamily(gobold.TTF); err != nil {
		return nil, err
	}
	if tf.Italic, err = LoadFontFamily(goitalic.TTF); err != nil {
		return nil, err
	}
	return &tf, nil
}

// TTFFont wraps Ebitengine's text/v2 for TrueType font rendering.
type TTFFont struct {
	face *text.GoTextFace
	size float64
	lh   float64 // cached line height
}

// LoadTTFFont loads a TrueType font from raw TTF/OTF data at the given size.
func LoadTTFFont(ttfData []byte, size float64) (*TTFFont, error) {
	ff, err := LoadFontFamily(ttfData)
	if err != nil {
		return nil, err
	}
	return ff.Face(size), nil
}

// MeasureString returns the width and height of the rendered text.
func (f *TTFFont) MeasureString(s string) (width, height float64) {
	return text.Measure(s, f.face, f.lh)
}

// LineHeight returns the vertical distance between baselines.
func (f *TTFFont) LineHeight() float64 {
	return f.lh
}

// Size returns the font size in pixels.
func (f *TTFFont) Size() float64 {
	return f.size
}

// Face returns the underlying GoTextFace for direct Ebitengine text/v2 rendering.
func (f *TTFFont) Face() *text.GoTextFace {
	return f.face
}

// --- Outline ---

// Outline defines a text stroke rendered behind the fill.
type Outline struct {
	Color     Color
	Thickness float64
}

// --- Label ---

// Label is a single line of screen-space text. It renders to a cached image
// that is rebuilt only when content or styling changes; Alpha is applied at
// draw time so fades cost nothing.
type Label struct {
	// X is the left edge, center or right edge depending on Align; Y is the
	// top of the line box.
	X, Y  float64
	Align TextAlign
	Alpha float64

	content       string
	font          *TTFFont
	color         Color
	outline       *Outline
	letterSpacing float64

	img   *ebiten.Image
	w, h  float64
	dirty bool
}

// NewLabel creates an opaque left-aligned label.
func NewLabel(content string, font *TTFFont, c Color) *Label {
	return &Label{content: content, font: font, color: c, Alpha: 1, dirty: true}
}

// Content returns the label text.
func (l *Label) Content() string { return l.content }

// SetContent replaces the label text.
func (l *Label) SetContent(s string) {
	if s != l.content {
		l.content = s
		l.dirty = true
	}
}

// SetColor changes the fill color.
func (l *Label) SetColor(c Color) {
	if c != l.color {
		l.color = c
		l.dirty = true
	}
}

// SetOutline sets the stroke drawn behind the fill. nil removes it.
func (l *Label) SetOutline(o *Outline) {
	l.outline = o
	l.dirty = true
}

// SetLetterSpacing adds px between glyphs.
func (l *Label) SetLetterSpacing(px float64) {
	if px != l.letterSpacing {
		l.letterSpacing = px
		l.dirty = true
	}
}

// Measure returns the size of the rendered text, letter spacing included.
func (l *Label) Measure() (w, h float64) {
	if l.font == nil || l.content == "" {
		return 0, 0
	}
	if l.letterSpacing == 0 {
		return l.font.MeasureString(l.content)
	}
	n := 0
	for _, r := range l.content {
		w += text.Advance(string(r), l.font.face)
		n++
	}
	w += l.letterSpacing * float64(n-1)
	return w, l.font.lh
}

// Bounds returns the screen rectangle the text covers.
func (l *Label) Bounds() Rect {
	w, h := l.Measure()
	x := l.X
	switch l.Align {
	case TextAlignCenter:
		x -= w / 2
	case TextAlignRight:
		x -= w
	}
	return Rect{X: x, Y: l.Y, Width: w, Height: h}
}

func (l *Label) pad() float64 {
	if l.outline == nil {
		return 0
	}
	return math.Ceil(l.outline.Thickness)
}

// render rebuilds the cached image.
func (l *Label) render() {
	l.dirty = false
	l.w, l.h = l.Measure()
	if l.w == 0 || l.h == 0 {
		if l.img != nil {
			l.img.Deallocate()
			l.img = nil
		}
		return
	}
	pad := l.pad()
	w := int(math.Ceil(l.w+2*pad)) + 1
	h := int(math.Ceil(l.h+2*pad)) + 1

	if l.img != nil {
		b := l.img.Bounds()
		if b.Dx() != w || b.Dy() != h {
			l.img.Deallocate()
			l.img = ebiten.NewImage(w, h)
		} else {
			l.img.Clear()
		}
	} else {
		l.img = ebiten.NewImage(w, h)
	}

	if o := l.outline; o != nil && o.Thickness > 0 {
		// Eight offset copies approximate a stroke.
		for i := 0; i < 8; i++ {
			a := float64(i) * math.Pi / 4
			l.drawText(pad+math.Cos(a)*o.Thickness, pad+math.Sin(a)*o.Thickness, o.Color)
		}
	}
	l.drawText(pad, pad, l.color)
}

func (l *Label) drawText(x, y float64, c Color) {
	op := &text.DrawOptions{}
	op.ColorScale.Scale(float32(c.R), float32(c.G), float32(c.B), float32(c.A))
	op.LineSpacing = l.font.lh
	if l.letterSpacing == 0 {
		op.GeoM.Translate(x, y)
		text.Draw(l.img, l.content, l.font.face, op)
		return
	}
	for _, r := range l.content {
		g := string(r)
		op.GeoM.Reset()
		op.GeoM.Translate(x, y)
		text.Draw(l.img, g, l.font.face, op)
		x += text.Advance(g, l.font.face) + l.letterSpacing
	}
}

// Draw paints the label onto dst.
func (l *Label) Draw(dst *ebiten.Image) {
	if l.font == nil || l.Alpha <= 0 {
		return
	}
	if l.dirty || l.img == nil {
		l.render()
	}
	if l.img == nil {
		return
	}
	b := l.Bounds()
	pad := l.pad()
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(math.Round(b.X-pad), math.Round(b.Y-pad))
	op.ColorScale.ScaleAlpha(float32(clamp01(l.Alpha)))
	dst.DrawImage(l.img, &op)
}

// Dispose releases the cached image.
func (l *Label) Dispose() {
	if l.img != nil {
		l.img.Deallocate()
		l.img = nil
	}
	l.dirty = true
}
