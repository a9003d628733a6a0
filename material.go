package arix

// Material describes how a mesh surface responds to light. Colors are sRGB
// as authored; shading converts them to linear space.
type Material struct {
	Name              string
	Color             Color
	Emissive          Color
	EmissiveIntensity float64
	Metalness         float64
	Roughness         float64
	EnvIntensity      float64
	Opacity           float64

	// Unlit materials skip tone mapping so their emissive term can exceed 1
	// and feed the bloom passes.
	Unlit bool

	linear      Color
	linearEmiss Color
	prepared    bool
}

// MaterialConfig is the YAML form of a Material.
type MaterialConfig struct {
	Color             string  `yaml:"color"`
	Emissive          string  `yaml:"emissive"`
	EmissiveIntensity float64 `yaml:"emissive_intensity"`
	Metalness         float64 `yaml:"metalness"`
	Roughness         float64 `yaml:"roughness"`
	EnvIntensity      float64 `yaml:"env_intensity"`
	Opacity           float64 `yaml:"opacity"`
	Unlit             bool    `yaml:"unlit"`
}

// NewMaterial builds a Material from its config form.
func NewMaterial(name string, cfg MaterialConfig) (*Material, error) {
	m := &Material{
		Name:              name,
		EmissiveIntensity: cfg.EmissiveIntensity,
		Metalness:         clamp01(cfg.Metalness),
		Roughness:         clamp01(cfg.Roughness),
		EnvIntensity:      cfg.EnvIntensity,
		Opacity:           cfg.Opacity,
		Unlit:             cfg.Unlit,
	}
	var err error
	if m.Color, err = Hex(cfg.Color); err != nil {
		return nil, err
	}
	if cfg.Emissive != "" {
		if m.Emissive, err = Hex(cfg.Emissive); err != nil {
			return nil, err
		}
	}
	if m.Opacity == 0 {
		m.Opacity = 1
	}
	return m, nil
}

// DefaultMaterials returns the palette of the holiday scene keyed by name.
func DefaultMaterials() map[string]MaterialConfig {
	return map[string]MaterialConfig{
		"emerald": {
			Color: "#002b1c", Emissive: "#001a11", EmissiveIntensity: 0.1,
			Metalness: 0.2, Roughness: 0.7, EnvIntensity: 0.5,
		},
		"ornament_gold": {
			Color: "#FFDF00", Metalness: 1, Roughness: 0.1, EnvIntensity: 2,
		},
		"ornament_red": {
			Color: "#8a0303", Metalness: 0.6, Roughness: 0.2, EnvIntensity: 1.2,
		},
		"ornament_pearl": {
			Color: "#F8F8FF", Emissive: "#222222", EmissiveIntensity: 1,
			Metalness: 0.9, Roughness: 0.1, EnvIntensity: 1.5,
		},
		"star": {
			Color: "#FFFFE0", Emissive: "#FFFACD", EmissiveIntensity: 2,
			Unlit: true,
		},
		"platform": {
			Color: "#00150f", Metalness: 0.9, Roughness: 0.1, EnvIntensity: 1,
			Opacity: 0.8,
		},
	}
}

func (m *Material) prepare() {
	if m.prepared {
		return
	}
	m.linear = toLinear(m.Color)
	m.linearEmiss = toLinear(m.Emissive).Scale(m.EmissiveIntensity)
	m.prepared = true
}

// shininess maps roughness to a Blinn-Phong exponent.
func (m *Material) shininess() float64 {
	r := m.Roughness
	if r < 0.05 {
		r = 0.05
	}
	return 2/(r*r*r*r) - 2
}

// toLinear approximates the sRGB transfer curve with gamma 2.
func toLinear(c Color) Color {
	return Color{c.R * c.R, c.G * c.G, c.B * c.B, c.A}
}
