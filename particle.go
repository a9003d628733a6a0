package arix

import (
	"math"

	"github.com/tanema/gween/ease"
)

// PointShape selects how a PointField scatters its points.
type PointShape uint8

const (
	PointShapeBox   PointShape = iota // uniform inside an axis-aligned box
	PointShapeShell                   // on a spherical shell of given radius and depth
)

// PointFieldConfig controls how a PointField is laid out and animated.
type PointFieldConfig struct {
	// Count is the number of points; fixed for the field's lifetime.
	Count int `yaml:"count"`
	// Shape selects box or shell placement.
	Shape PointShape `yaml:"shape"`
	// Extent is the box size (PointShapeBox).
	Extent Vec3 `yaml:"extent"`
	// Radius and Depth describe the shell (PointShapeShell): points lie at
	// distance Radius + U(0, Depth) from the origin.
	Radius float64 `yaml:"radius"`
	Depth  float64 `yaml:"depth"`
	// Size is the point diameter in pixels at unit view depth; with
	// SizeAttenuation false it is in pixels at any depth.
	Size            Range `yaml:"size"`
	SizeAttenuation bool  `yaml:"size_attenuation"`
	// Speed scales the drift and twinkle clock.
	Speed float64 `yaml:"speed"`
	// Drift is the amplitude of the per-point wandering in world units.
	Drift float64 `yaml:"drift"`
	// Twinkle in [0, 1] is how much per-point brightness oscillates.
	Twinkle float64 `yaml:"twinkle"`
	// Opacity is the starting field opacity.
	Opacity float64 `yaml:"opacity"`
	// Color is the point tint in hex.
	Color string `yaml:"color"`
	// DepthSorted emits one render command per point so points interleave
	// with meshes. Unsorted fields draw in a single command.
	DepthSorted bool `yaml:"depth_sorted"`
}

// point holds per-point state. Unexported; managed by PointField.
type point struct {
	base  Vec3
	pos   Vec3
	phase float64
	size  float64
	alpha float64
}

// PointField is a fixed pool of billboarded points that drift around their
// home positions and twinkle. Sparkles around the tree and the background
// star field are both point fields.
type PointField struct {
	config PointFieldConfig
	points []point
	color  Color
	clock  float64

	// Opacity multiplies every point's alpha. Tween it with FadeTo.
	Opacity float64
	fade    *TweenGroup
}

// NewPointField lays out cfg.Count points using rng. A nil rng uses the
// default source.
func NewPointField(cfg PointFieldConfig, rng RandomSource) *PointField {
	rng = sourceOrDefault(rng)
	col, err := Hex(cfg.Color)
	if err != nil {
		col = ColorWhite
	}
	count := cfg.Count
	if count < 0 {
		count = 0
	}
	f := &PointField{
		config:  cfg,
		points:  make([]point, count),
		color:   col,
		Opacity: cfg.Opacity,
	}
	for i := range f.points {
		p := &f.points[i]
		switch cfg.Shape {
		case PointShapeShell:
			r := cfg.Radius + rng.Float64()*cfg.Depth
			theta := rng.Float64() * 2 * math.Pi
			phi := math.Acos(2*rng.Float64() - 1)
			p.base = Vec3{
				r * math.Sin(phi) * math.Cos(theta),
				r * math.Sin(phi) * math.Sin(theta),
				r * math.Cos(phi),
			}
		default:
			p.base = Vec3{
				(rng.Float64() - 0.5) * cfg.Extent.X,
				(rng.Float64() - 0.5) * cfg.Extent.Y,
				(rng.Float64() - 0.5) * cfg.Extent.Z,
			}
		}
		p.pos = p.base
		p.phase = rng.Float64() * 2 * math.Pi
		p.size = cfg.Size.RandomFrom(rng)
		p.alpha = 1
	}
	return f
}

// Len returns the number of points.
func (f *PointField) Len() int {
	return len(f.points)
}

// Config returns a pointer to the field's config for live tuning.
func (f *PointField) Config() *PointFieldConfig {
	return &f.config
}

// Color returns the point tint.
func (f *PointField) Color() Color {
	return f.color
}

// PointAt returns the current position, diameter and alpha of point i.
func (f *PointField) PointAt(i int) (pos Vec3, size, alpha float64) {
	p := &f.points[i]
	return p.pos, p.size, p.alpha * f.Opacity
}

// FadeTo animates Opacity to target over duration seconds.
func (f *PointField) FadeTo(target float64, duration float32) {
	f.fade = TweenValue(&f.Opacity, target, duration, ease.InOutQuad)
}

// update advances the drift and twinkle clock by dt seconds.
func (f *PointField) update(dt float64) {
	if f.fade != nil {
		f.fade.Update(float32(dt))
		if f.fade.Done {
			f.fade = nil
		}
	}
	f.clock += dt * f.config.Speed
	amp := f.config.Drift
	tw := clamp01(f.config.Twinkle)
	for i := range f.points {
		p := &f.points[i]
		if amp != 0 {
			s := f.clock + p.phase
			p.pos = Vec3{
				p.base.X + math.Cos(s*0.7)*amp,
				p.base.Y + math.Sin(s)*amp,
				p.base.Z + math.Cos(s*1.3)*amp,
			}
		}
		if tw > 0 {
			p.alpha = 1 - tw*0.5*(1+math.Sin(f.clock*3+p.phase*5))
		}
	}
}
