package arix

import (
	"fmt"
	"math"
)

// LightType selects a light's falloff model.
type LightType uint8

const (
	LightPoint LightType = iota // omnidirectional, inverse-square with a range cutoff
	LightSpot                   // point light restricted to a cone aimed at Target
)

// Light is a punctual light source in world space.
type Light struct {
	Type      LightType
	Position  Vec3
	Target    Vec3
	Color     Color
	Intensity float64
	Distance  float64 // 0 means unlimited range
	Decay     float64
	Angle     float64 // spot cone half-angle in radians
	Penumbra  float64 // fraction of the cone that fades, in [0, 1]

	// Follow, when set, overrides Position with the node's world origin.
	Follow *Node

	linear Color
}

// LightConfig is the YAML form of a Light.
type LightConfig struct {
	Type      string  `yaml:"type"`
	Position  Vec3    `yaml:"position"`
	Target    Vec3    `yaml:"target"`
	Color     string  `yaml:"color"`
	Intensity float64 `yaml:"intensity"`
	Distance  float64 `yaml:"distance"`
	Decay     float64 `yaml:"decay"`
	Angle     float64 `yaml:"angle"`
	Penumbra  float64 `yaml:"penumbra"`
}

// Lighting is the light rig shared by every shaded mesh in a scene.
type Lighting struct {
	Ambient          Color
	AmbientIntensity float64
	Environment      Color // stand-in for reflected surroundings on metals
	Exposure         float64
	Lights           []*Light

	ambientLinear Color
	envLinear     Color
	dirty         bool
}

// NewLighting returns an empty rig with unit exposure.
func NewLighting() *Lighting {
	return &Lighting{Exposure: 1, Environment: Color{0.5, 0.5, 0.5, 1}, dirty: true}
}

// AddLight appends l to the rig.
func (lg *Lighting) AddLight(l *Light) {
	lg.Lights = append(lg.Lights, l)
	lg.dirty = true
}

// Invalidate forces linear colors to be recomputed after direct field edits.
func (lg *Lighting) Invalidate() {
	lg.dirty = true
}

func (lg *Lighting) prepare() {
	if !lg.dirty {
		return
	}
	lg.ambientLinear = toLinear(lg.Ambient).Scale(lg.AmbientIntensity)
	lg.envLinear = toLinear(lg.Environment)
	for _, l := range lg.Lights {
		l.linear = toLinear(l.Color).Scale(l.Intensity)
	}
	lg.dirty = false
}

// position returns the light's world position this frame.
func (l *Light) position() Vec3 {
	if l.Follow != nil {
		return l.Follow.worldMatrix.Translation()
	}
	return l.Position
}

// attenuation returns the scalar falloff of l at point p along with the unit
// direction from p toward the light.
func (l *Light) attenuation(p Vec3) (float64, Vec3) {
	lp := l.position()
	d := lp.Sub(p)
	dist := d.Len()
	if dist < 1e-6 {
		return 0, Vec3{}
	}
	dir := d.Scale(1 / dist)

	decay := l.Decay
	if decay == 0 {
		decay = 2
	}
	att := 1 / math.Max(math.Pow(dist, decay), 0.01)
	if l.Distance > 0 {
		r := dist / l.Distance
		f := clamp01(1 - r*r*r*r)
		att *= f * f
	}

	if l.Type == LightSpot {
		axis := l.Target.Sub(lp).Normalize()
		cosAngle := -dir.Dot(axis)
		outer := math.Cos(l.Angle)
		inner := math.Cos(l.Angle * (1 - l.Penumbra))
		att *= smoothstep(outer, inner, cosAngle)
	}
	return att, dir
}

// Shade returns the display color of a flat face with world-space normal n and
// centroid p, viewed from eye, tinted by tint.
func (lg *Lighting) Shade(m *Material, n, p, eye Vec3, tint Color) Color {
	m.prepare()
	lg.prepare()

	if m.Unlit {
		c := m.linear.Add(m.linearEmiss).Mul(tint)
		c.A = m.Opacity * tint.A
		return toDisplay(c, 1, false)
	}

	view := eye.Sub(p).Normalize()
	if n.Dot(view) < 0 {
		n = n.Scale(-1)
	}
	base := m.linear.Mul(tint)
	metal := m.Metalness
	diffuseK := 1 - 0.5*metal
	specColor := Color{lerp(0.04, base.R, metal), lerp(0.04, base.G, metal), lerp(0.04, base.B, metal), 1}
	shin := m.shininess()
	specNorm := (shin + 8) / (8 * math.Pi)

	var diffuse, spec Color
	for _, l := range lg.Lights {
		att, dir := l.attenuation(p)
		if att == 0 {
			continue
		}
		ndl := n.Dot(dir)
		if ndl <= 0 {
			continue
		}
		radiance := l.linear.Scale(att * ndl)
		diffuse = diffuse.Add(radiance)
		h := dir.Add(view).Normalize()
		if nh := n.Dot(h); nh > 0 {
			spec = spec.Add(radiance.Scale(specNorm * math.Pow(nh, shin)))
		}
	}

	ndv := math.Max(n.Dot(view), 0)
	fresnel := math.Pow(1-ndv, 5)
	env := lg.envLinear.Scale(m.EnvIntensity * (metal + (1-metal)*fresnel) * (1 - 0.5*m.Roughness))

	c := base.Mul(lg.ambientLinear.Add(diffuse)).Scale(diffuseK)
	c = c.Add(spec.Mul(specColor))
	c = c.Add(env.Mul(specColor))
	c = c.Add(m.linearEmiss)
	c.A = m.Opacity * tint.A
	return toDisplay(c, lg.Exposure, true)
}

// toDisplay applies exposure, optional ACES tone mapping, and gamma 2
// encoding. Without tone mapping components may exceed 1.
func toDisplay(c Color, exposure float64, toneMap bool) Color {
	if toneMap {
		c.R = acesFilm(c.R * exposure)
		c.G = acesFilm(c.G * exposure)
		c.B = acesFilm(c.B * exposure)
	}
	return Color{math.Sqrt(math.Max(c.R, 0)), math.Sqrt(math.Max(c.G, 0)), math.Sqrt(math.Max(c.B, 0)), c.A}
}

// acesFilm is Narkowicz's fit of the ACES filmic curve.
func acesFilm(x float64) float64 {
	const a, b, c, d, e = 2.51, 0.03, 2.43, 0.59, 0.14
	return clamp01((x * (a*x + b)) / (x*(c*x+d) + e))
}

func smoothstep(edge0, edge1, x float64) float64 {
	if edge1 == edge0 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := clamp01((x - edge0) / (edge1 - edge0))
	return t * t * (3 - 2*t)
}

// NewLight builds a Light from its config form. Type is "point" or "spot".
func NewLight(cfg LightConfig) (*Light, error) {
	col, err := Hex(cfg.Color)
	if err != nil {
		return nil, err
	}
	l := &Light{
		Position:  cfg.Position,
		Target:    cfg.Target,
		Color:     col,
		Intensity: cfg.Intensity,
		Distance:  cfg.Distance,
		Decay:     cfg.Decay,
		Angle:     cfg.Angle,
		Penumbra:  clamp01(cfg.Penumbra),
	}
	switch cfg.Type {
	case "", "point":
		l.Type = LightPoint
	case "spot":
		l.Type = LightSpot
		if cfg.Angle <= 0 || cfg.Angle >= math.Pi/2 {
			return nil, fmt.Errorf("spot angle %v must be in (0, pi/2)", cfg.Angle)
		}
	default:
		return nil, fmt.Errorf("unknown light type %q", cfg.Type)
	}
	if cfg.Intensity < 0 || cfg.Distance < 0 {
		return nil, fmt.Errorf("negative intensity or distance")
	}
	return l, nil
}
