package arix

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
)

// Filter is a full-frame effect applied to the rendered 3D view.
type Filter interface {
	// Apply renders src into dst with the filter effect. dst has the same
	// size as src and starts cleared.
	Apply(src, dst *ebiten.Image)
}

// --- Kage shader sources ---
// All shaders use //kage:unit pixels as required by Ebitengine.
// Ebitengine uses premultiplied alpha; shaders un-premultiply before processing
// and re-premultiply output where needed.

const colorMatrixShaderSrc = `//kage:unit pixels
package main

var Matrix [20]float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	// Un-premultiply alpha.
	if c.a > 0 {
		c.rgb /= c.a
	}
	// Apply 4x5 color matrix (row-major, offset in elements 4,9,14,19).
	r := Matrix[0]*c.r + Matrix[1]*c.g + Matrix[2]*c.b + Matrix[3]*c.a + Matrix[4]
	g := Matrix[5]*c.r + Matrix[6]*c.g + Matrix[7]*c.b + Matrix[8]*c.a + Matrix[9]
	b := Matrix[10]*c.r + Matrix[11]*c.g + Matrix[12]*c.b + Matrix[13]*c.a + Matrix[14]
	a := Matrix[15]*c.r + Matrix[16]*c.g + Matrix[17]*c.b + Matrix[18]*c.a + Matrix[19]
	// Clamp and re-premultiply.
	r = clamp(r, 0, 1)
	g = clamp(g, 0, 1)
	b = clamp(b, 0, 1)
	a = clamp(a, 0, 1)
	return vec4(r*a, g*a, b*a, a)
}
`

const brightPassShaderSrc = `//kage:unit pixels
package main

var Threshold float
var Knee float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	if c.a > 0 {
		c.rgb /= c.a
	}
	lum := dot(c.rgb, vec3(0.2126, 0.7152, 0.0722))
	w := smoothstep(Threshold, Threshold+Knee, lum)
	return vec4(c.rgb*w*c.a, c.a*w)
}
`

const noiseShaderSrc = `//kage:unit pixels
package main

var Seed float
var Opacity float

func hash(p vec2) float {
	return fract(sin(dot(p, vec2(12.9898, 78.233))) * 43758.5453)
}

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	n := hash(src + vec2(Seed, Seed*1.7))
	// Screen blend of the grain over the frame.
	s := c.rgb + vec3(n)*(vec3(c.a)-c.rgb)
	return vec4(mix(c.rgb, s, Opacity), c.a)
}
`

const vignetteShaderSrc = `//kage:unit pixels
package main

var Size vec2
var Offset float
var Darkness float

func Fragment(dst vec4, src vec2, color vec4) vec4 {
	c := imageSrc0At(src)
	uv := src / Size
	d := distance(uv, vec2(0.5))
	v := 1 - smoothstep(Offset*0.799, 0.8, d*(Darkness+Offset))
	return vec4(c.rgb*v, c.a)
}
`

// --- Lazy shader compilation (no sync.Once; arix is single-threaded) ---

var (
	colorMatrixShader *ebiten.Shader
	brightPassShader  *ebiten.Shader
	noiseShader       *ebiten.Shader
	vignetteShader    *ebiten.Shader
)

func ensureShader(dst **ebiten.Shader, name, src string) *ebiten.Shader {
	if *dst == nil {
		s, err := ebiten.NewShader([]byte(src))
		if err != nil {
			panic("arix: failed to compile " + name + " shader: " + err.Error())
		}
		*dst = s
	}
	return *dst
}

func ensureColorMatrixShader() *ebiten.Shader {
	return ensureShader(&colorMatrixShader, "color matrix", colorMatrixShaderSrc)
}

func ensureBrightPassShader() *ebiten.Shader {
	return ensureShader(&brightPassShader, "bright pass", brightPassShaderSrc)
}

func ensureNoiseShader() *ebiten.Shader {
	return ensureShader(&noiseShader, "noise", noiseShaderSrc)
}

func ensureVignetteShader() *ebiten.Shader {
	return ensureShader(&vignetteShader, "vignette", vignetteShaderSrc)
}

// --- ColorMatrixFilter ---

// ColorMatrixFilter applies a 4x5 color matrix transformation using a Kage shader.
// The matrix is stored in row-major order: [R_r, R_g, R_b, R_a, R_offset, G_r, ...].
type ColorMatrixFilter struct {
	Matrix      [20]float64
	uniforms    map[string]any
	matrixF32   [20]float32 // persistent buffer to avoid per-frame slice escape
	matrixSlice []float32   // persistent slice header pointing into matrixF32
	shaderOp    ebiten.DrawRectShaderOptions
}

// NewColorMatrixFilter creates a color matrix filter initialized to the identity.
func NewColorMatrixFilter() *ColorMatrixFilter {
	f := &ColorMatrixFilter{
		uniforms: make(map[string]any, 1),
	}
	f.matrixSlice = f.matrixF32[:]
	f.uniforms["Matrix"] = f.matrixSlice
	f.Matrix = identityColorMatrix()
	return f
}

func identityColorMatrix() [20]float64 {
	return [20]float64{
		1, 0, 0, 0, 0,
		0, 1, 0, 0, 0,
		0, 0, 1, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// SetBrightness sets the matrix to adjust brightness by the given offset [-1, 1].
func (f *ColorMatrixFilter) SetBrightness(b float64) {
	f.Matrix = [20]float64{
		1, 0, 0, 0, b,
		0, 1, 0, 0, b,
		0, 0, 1, 0, b,
		0, 0, 0, 1, 0,
	}
}

// SetContrast sets the matrix to adjust contrast. c=1 is normal, 0=gray, >1 is higher.
func (f *ColorMatrixFilter) SetContrast(c float64) {
	t := (1.0 - c) / 2.0
	f.Matrix = [20]float64{
		c, 0, 0, 0, t,
		0, c, 0, 0, t,
		0, 0, c, 0, t,
		0, 0, 0, 1, 0,
	}
}

// SetSaturation sets the matrix to adjust saturation. s=1 is normal, 0=grayscale.
func (f *ColorMatrixFilter) SetSaturation(s float64) {
	sr := (1 - s) * 0.299
	sg := (1 - s) * 0.587
	sb := (1 - s) * 0.114
	f.Matrix = [20]float64{
		sr + s, sg, sb, 0, 0,
		sr, sg + s, sb, 0, 0,
		sr, sg, sb + s, 0, 0,
		0, 0, 0, 1, 0,
	}
}

// Apply renders the color matrix transformation from src into dst.
func (f *ColorMatrixFilter) Apply(src, dst *ebiten.Image) {
	shader := ensureColorMatrixShader()
	for i, v := range f.Matrix {
		f.matrixF32[i] = float32(v)
	}
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), shader, &f.shaderOp)
}

// --- BlurFilter ---

// BlurFilter applies a Kawase iterative blur using downscale/upscale passes.
// No Kage shader needed; bilinear filtering during DrawImage does the work.
type BlurFilter struct {
	Radius int
	temps  []*ebiten.Image
	imgOp  ebiten.DrawImageOptions
}

// NewBlurFilter creates a blur filter with the given radius (in pixels).
func NewBlurFilter(radius int) *BlurFilter {
	if radius < 0 {
		radius = 0
	}
	return &BlurFilter{Radius: radius}
}

// blurPasses returns the number of halvings for a radius: log2(radius), minimum 1.
func blurPasses(radius int) int {
	if radius <= 1 {
		return 1
	}
	return int(math.Ceil(math.Log2(float64(radius))))
}

// Apply renders a Kawase blur from src into dst using iterative downscale/upscale.
func (f *BlurFilter) Apply(src, dst *ebiten.Image) {
	op := &f.imgOp
	if f.Radius <= 0 {
		op.GeoM.Reset()
		op.ColorScale.Reset()
		op.Filter = ebiten.FilterNearest
		op.Blend = ebiten.BlendSourceOver
		dst.DrawImage(src, op)
		return
	}

	passes := blurPasses(f.Radius)
	srcBounds := src.Bounds()
	w, h := srcBounds.Dx(), srcBounds.Dy()

	for len(f.temps) < passes {
		f.temps = append(f.temps, nil)
	}
	// Deallocate excess temp images from previous larger radius.
	for i := passes; i < len(f.temps); i++ {
		if f.temps[i] != nil {
			f.temps[i].Deallocate()
			f.temps[i] = nil
		}
	}
	f.temps = f.temps[:passes]

	op.Blend = ebiten.BlendSourceOver
	op.Filter = ebiten.FilterLinear

	// Downscale passes: each half-size
	current := src
	for i := 0; i < passes; i++ {
		w = max(w/2, 1)
		h = max(h/2, 1)
		if f.temps[i] == nil || f.temps[i].Bounds().Dx() != w || f.temps[i].Bounds().Dy() != h {
			if f.temps[i] != nil {
				f.temps[i].Deallocate()
			}
			f.temps[i] = ebiten.NewImage(w, h)
		} else {
			f.temps[i].Clear()
		}
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	// Upscale passes: draw each back up
	for i := passes - 2; i >= 0; i-- {
		f.temps[i].Clear()
		drawScaled(f.temps[i], current, op)
		current = f.temps[i]
	}

	drawScaled(dst, current, op)
}

// drawScaled draws src stretched over the whole of dst.
func drawScaled(dst, src *ebiten.Image, op *ebiten.DrawImageOptions) {
	op.GeoM.Reset()
	op.ColorScale.Reset()
	sb, db := src.Bounds(), dst.Bounds()
	op.GeoM.Scale(float64(db.Dx())/float64(sb.Dx()), float64(db.Dy())/float64(sb.Dy()))
	op.GeoM.Translate(float64(db.Min.X), float64(db.Min.Y))
	dst.DrawImage(src, op)
}

// --- BloomFilter ---

// BloomFilter extracts pixels brighter than Threshold, blurs them, and adds
// them back over the frame scaled by Intensity.
type BloomFilter struct {
	Threshold float64 // luminance in [0, 1] where the glow starts
	Knee      float64 // width of the soft ramp above Threshold
	Intensity float64
	blur      *BlurFilter
	bright    *ebiten.Image
	glow      *ebiten.Image
	uniforms  map[string]any
	shaderOp  ebiten.DrawRectShaderOptions
	imgOp     ebiten.DrawImageOptions
}

// NewBloomFilter creates a bloom filter blurring with the given pixel radius.
func NewBloomFilter(threshold, intensity float64, radius int) *BloomFilter {
	return &BloomFilter{
		Threshold: threshold,
		Knee:      0.1,
		Intensity: intensity,
		blur:      NewBlurFilter(radius),
		uniforms:  make(map[string]any, 2),
	}
}

// Radius returns the blur radius in pixels.
func (f *BloomFilter) Radius() int {
	return f.blur.Radius
}

// ensureScratch (re)allocates a scratch image matching the source size.
func ensureScratch(img *ebiten.Image, w, h int) *ebiten.Image {
	if img != nil && img.Bounds().Dx() == w && img.Bounds().Dy() == h {
		img.Clear()
		return img
	}
	if img != nil {
		img.Deallocate()
	}
	return ebiten.NewImage(w, h)
}

// Apply copies src into dst and adds the blurred bright pass on top.
func (f *BloomFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	w, h := b.Dx(), b.Dy()
	f.bright = ensureScratch(f.bright, w, h)
	f.glow = ensureScratch(f.glow, w, h)

	f.uniforms["Threshold"] = float32(f.Threshold)
	f.uniforms["Knee"] = float32(max(f.Knee, 1e-3))
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	f.bright.DrawRectShader(w, h, ensureBrightPassShader(), &f.shaderOp)
	f.blur.Apply(f.bright, f.glow)

	op := &f.imgOp
	op.GeoM.Reset()
	op.ColorScale.Reset()
	op.Blend = ebiten.BlendSourceOver
	dst.DrawImage(src, op)

	k := float32(f.Intensity)
	op.ColorScale.Scale(k, k, k, k)
	op.Blend = BlendAdd.EbitenBlend()
	dst.DrawImage(f.glow, op)
}

// --- NoiseFilter ---

// NoiseFilter overlays per-pixel film grain that changes every frame.
type NoiseFilter struct {
	Opacity  float64
	frame    int
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewNoiseFilter creates a grain filter with the given opacity.
func NewNoiseFilter(opacity float64) *NoiseFilter {
	return &NoiseFilter{Opacity: opacity, uniforms: make(map[string]any, 2)}
}

// Apply renders src with grain into dst.
func (f *NoiseFilter) Apply(src, dst *ebiten.Image) {
	f.frame++
	f.uniforms["Seed"] = float32(f.frame%977) * 0.37
	f.uniforms["Opacity"] = float32(clamp01(f.Opacity))
	b := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), ensureNoiseShader(), &f.shaderOp)
}

// --- VignetteFilter ---

// VignetteFilter darkens the frame toward its corners.
type VignetteFilter struct {
	Offset   float64
	Darkness float64
	size     [2]float32
	uniforms map[string]any
	shaderOp ebiten.DrawRectShaderOptions
}

// NewVignetteFilter creates a vignette filter.
func NewVignetteFilter(offset, darkness float64) *VignetteFilter {
	f := &VignetteFilter{Offset: offset, Darkness: darkness, uniforms: make(map[string]any, 3)}
	f.uniforms["Size"] = f.size[:]
	return f
}

// Apply renders the vignetted frame into dst.
func (f *VignetteFilter) Apply(src, dst *ebiten.Image) {
	b := src.Bounds()
	f.size[0], f.size[1] = float32(b.Dx()), float32(b.Dy())
	f.uniforms["Offset"] = float32(f.Offset)
	f.uniforms["Darkness"] = float32(f.Darkness)
	f.shaderOp.Images[0] = src
	f.shaderOp.Uniforms = f.uniforms
	dst.DrawRectShader(b.Dx(), b.Dy(), ensureVignetteShader(), &f.shaderOp)
}

// vignetteFactor mirrors the vignette shader on the CPU for a pixel at
// normalized coordinates (u, v).
func vignetteFactor(u, v, offset, darkness float64) float64 {
	d := math.Hypot(u-0.5, v-0.5)
	return 1 - smoothstep(offset*0.799, 0.8, d*(darkness+offset))
}

// --- CustomShaderFilter ---

// CustomShaderFilter wraps a user-provided Kage shader, exposing Ebitengine's
// shader system directly. Images[0] is auto-filled with the source texture;
// the user may set Images[1] and Images[2] for additional textures.
type CustomShaderFilter struct {
	Shader   *ebiten.Shader
	Uniforms map[string]any
	Images   [3]*ebiten.Image
	shaderOp ebiten.DrawRectShaderOptions
}

// NewCustomShaderFilter creates a custom shader filter with the given shader.
func NewCustomShaderFilter(shader *ebiten.Shader) *CustomShaderFilter {
	return &CustomShaderFilter{
		Shader:   shader,
		Uniforms: make(map[string]any),
	}
}

// Apply runs the user-provided Kage shader with src as Images[0].
func (f *CustomShaderFilter) Apply(src, dst *ebiten.Image) {
	bounds := src.Bounds()
	f.shaderOp.Images[0] = src
	f.shaderOp.Images[1] = f.Images[1]
	f.shaderOp.Images[2] = f.Images[2]
	f.shaderOp.Uniforms = f.Uniforms
	dst.DrawRectShader(bounds.Dx(), bounds.Dy(), f.Shader, &f.shaderOp)
}

// --- Post FX configuration ---

// BloomConfig is one bloom pass.
type BloomConfig struct {
	Threshold float64 `yaml:"threshold"`
	Intensity float64 `yaml:"intensity"`
	Radius    int     `yaml:"radius"`
}

// PostFXConfig describes the full-frame filter chain.
type PostFXConfig struct {
	Enabled          bool          `yaml:"enabled"`
	Exposure         float64       `yaml:"exposure"`
	Blooms           []BloomConfig `yaml:"bloom"`
	Saturation       float64       `yaml:"saturation"`
	NoiseOpacity     float64       `yaml:"noise_opacity"`
	VignetteOffset   float64       `yaml:"vignette_offset"`
	VignetteDarkness float64       `yaml:"vignette_darkness"`
}

// DefaultPostFXConfig returns a wide soft bloom for the star plus a tighter
// faint one for the ornaments, light grain and a dark vignette.
func DefaultPostFXConfig() PostFXConfig {
	return PostFXConfig{
		Enabled:  true,
		Exposure: 1.2,
		Blooms: []BloomConfig{
			{Threshold: 0.85, Intensity: 1.2, Radius: 16},
			{Threshold: 0.6, Intensity: 0.3, Radius: 8},
		},
		Saturation:       1,
		NoiseOpacity:     0.03,
		VignetteOffset:   0.1,
		VignetteDarkness: 0.7,
	}
}

// NewPostFX builds the filter chain described by cfg. Exposure is applied
// during shading, not here. A disabled config yields an empty chain.
func NewPostFX(cfg PostFXConfig) []Filter {
	if !cfg.Enabled {
		return nil
	}
	var chain []Filter
	for _, b := range cfg.Blooms {
		if b.Intensity <= 0 {
			continue
		}
		chain = append(chain, NewBloomFilter(b.Threshold, b.Intensity, b.Radius))
	}
	if cfg.Saturation > 0 && cfg.Saturation != 1 {
		grade := NewColorMatrixFilter()
		grade.SetSaturation(cfg.Saturation)
		chain = append(chain, grade)
	}
	if cfg.NoiseOpacity > 0 {
		chain = append(chain, NewNoiseFilter(cfg.NoiseOpacity))
	}
	if cfg.VignetteDarkness > 0 {
		chain = append(chain, NewVignetteFilter(cfg.VignetteOffset, cfg.VignetteDarkness))
	}
	return chain
}
