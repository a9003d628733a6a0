package arix

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is wrapped by every Validate error.
var ErrInvalidConfig = errors.New("invalid config")

// maxInstanceCount bounds a group; every instance is a render command.
const maxInstanceCount = 50000

// WindowConfig controls the desktop window.
type WindowConfig struct {
	Title     string `yaml:"title"`
	Width     int    `yaml:"width"`
	Height    int    `yaml:"height"`
	Resizable bool   `yaml:"resizable"`
	TPS       int    `yaml:"tps"`
}

// LightingConfig is the YAML form of the light rig.
type LightingConfig struct {
	Ambient          string        `yaml:"ambient"`
	AmbientIntensity float64       `yaml:"ambient_intensity"`
	Environment      string        `yaml:"environment"`
	Lights           []LightConfig `yaml:"lights"`
}

// GeometryConfig names a mesh builder and its parameters.
type GeometryConfig struct {
	Type     string  `yaml:"type"` // cone, dodecahedron, sphere or disc
	Radius   float64 `yaml:"radius"`
	Height   float64 `yaml:"height"`
	Segments int     `yaml:"segments"`
	Rings    int     `yaml:"rings"`
}

// SparklesConfig is the gold dust around the tree. Its opacity follows the
// assembled state.
type SparklesConfig struct {
	Field            PointFieldConfig `yaml:",inline"`
	ScatteredOpacity float64          `yaml:"scattered_opacity"`
	AssembledOpacity float64          `yaml:"assembled_opacity"`
	FadeDuration     float64          `yaml:"fade_duration"`
}

// PlatformConfig is the disc under the tree that grows in when assembled.
type PlatformConfig struct {
	Enabled      bool    `yaml:"enabled"`
	Geometry     string  `yaml:"geometry"`
	Material     string  `yaml:"material"`
	Y            float64 `yaml:"y"`
	GrowDuration float64 `yaml:"grow_duration"`
}

// Config is everything needed to build and run the holiday scene.
type Config struct {
	Window    WindowConfig              `yaml:"window"`
	Scene     SceneConfig               `yaml:"scene"`
	Camera    CameraConfig              `yaml:"camera"`
	Lighting  LightingConfig            `yaml:"lighting"`
	Generator GeneratorParams           `yaml:"generator"`
	GroupRate float64                   `yaml:"group_rate"`
	Offset    Vec3                      `yaml:"offset"`
	Groups    []GroupConfig             `yaml:"groups"`
	Geometry  map[string]GeometryConfig `yaml:"geometry"`
	Materials map[string]MaterialConfig `yaml:"materials"`
	Topper    TopperConfig              `yaml:"topper"`
	Sparkles  SparklesConfig            `yaml:"sparkles"`
	Stars     PointFieldConfig          `yaml:"stars"`
	Platform  PlatformConfig            `yaml:"platform"`
	PostFX    PostFXConfig              `yaml:"postfx"`
	// Seed fixes every random source; 0 draws from the global source.
	Seed uint64 `yaml:"seed"`
	// SettleEpsilon is how close every progress must be to its target
	// before EventMorphSettled fires.
	SettleEpsilon float64 `yaml:"settle_epsilon"`
}

// DefaultConfig reproduces the holiday scene.
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:     "Arix Signature Collection",
			Width:     1280,
			Height:    720,
			Resizable: true,
			TPS:       60,
		},
		Scene:  DefaultSceneConfig(),
		Camera: DefaultCameraConfig(),
		// Intensities are physical values divided by pi; Shade folds the
		// Lambert 1/pi into the light.
		Lighting: LightingConfig{
			Ambient:          "#004225",
			AmbientIntensity: 0.4 / math.Pi,
			Environment:      "#8c8c80",
			Lights: []LightConfig{
				{Type: "spot", Position: Vec3{10, 15, 10}, Color: "#FFD700", Intensity: 1200 / math.Pi, Angle: 0.2, Penumbra: 1},
				{Type: "spot", Position: Vec3{-10, 5, -10}, Color: "#4ade80", Intensity: 600 / math.Pi, Angle: 0.3, Penumbra: 1},
				{Type: "point", Position: Vec3{0, -2, 2}, Color: "#FEDC56", Intensity: 40 / math.Pi, Distance: 8},
			},
		},
		Generator: DefaultGeneratorParams(),
		GroupRate: DefaultGroupRate,
		Offset:    Vec3{0, -0.5, 0},
		Groups: []GroupConfig{
			{Name: "needles", Count: 2500, Kind: "structural", SeedOffset: 0, BaseScale: 0.35, Geometry: "needle", Material: "emerald"},
			{Name: "gold", Count: 150, Kind: "decorative", SeedOffset: 123, BaseScale: 0.25, Geometry: "gem", Material: "ornament_gold"},
			{Name: "red", Count: 80, Kind: "decorative", SeedOffset: 456, BaseScale: 0.25, Geometry: "bauble", Material: "ornament_red"},
			{Name: "pearl", Count: 60, Kind: "decorative", SeedOffset: 789, BaseScale: 0.22, Geometry: "bauble", Material: "ornament_pearl"},
		},
		Geometry: map[string]GeometryConfig{
			"needle":   {Type: "cone", Radius: 0.3, Height: 1.2, Segments: 5},
			"gem":      {Type: "dodecahedron", Radius: 1},
			"bauble":   {Type: "sphere", Radius: 0.8, Segments: 16, Rings: 16},
			"star":     {Type: "dodecahedron", Radius: 0.5},
			"platform": {Type: "disc", Radius: 4, Segments: 64},
		},
		Materials: DefaultMaterials(),
		Topper:    DefaultTopperConfig(),
		Sparkles: SparklesConfig{
			Field: PointFieldConfig{
				Count:           300,
				Shape:           PointShapeBox,
				Extent:          Vec3{10, 10, 10},
				Size:            Range{Min: 60, Max: 90},
				SizeAttenuation: true,
				Speed:           0.4,
				Drift:           0.25,
				Twinkle:         0.5,
				Opacity:         0.3,
				Color:           "#FFD700",
				DepthSorted:     true,
			},
			ScatteredOpacity: 0.3,
			AssembledOpacity: 0.8,
			FadeDuration:     1,
		},
		Stars: PointFieldConfig{
			Count:           5000,
			Shape:           PointShapeShell,
			Radius:          100,
			Depth:           50,
			Size:            Range{Min: 180, Max: 360},
			SizeAttenuation: true,
			Speed:           1,
			Twinkle:         0.5,
			Opacity:         1,
			Color:           "#FFFFFF",
		},
		Platform: PlatformConfig{
			Enabled:      true,
			Geometry:     "platform",
			Material:     "platform",
			Y:            -2.5,
			GrowDuration: 0.8,
		},
		PostFX:        DefaultPostFXConfig(),
		SettleEpsilon: 1e-3,
	}
}

// LoadConfig reads a YAML file over DefaultConfig and validates the result.
// Keys missing from the file keep their defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return ParseConfig(data)
}

// ParseConfig decodes YAML over DefaultConfig and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Marshal encodes the config as YAML.
func (c *Config) Marshal() ([]byte, error) {
	data, err := yaml.Marshal(c)
	if err != nil {
		return nil, fmt.Errorf("marshal config: %w", err)
	}
	return data, nil
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks ranges and cross references. The first problem found is
// returned wrapped around ErrInvalidConfig.
func (c *Config) Validate() error {
	if c.Window.Width <= 0 || c.Window.Height <= 0 {
		return invalid("window size %dx%d must be positive", c.Window.Width, c.Window.Height)
	}
	if c.Window.TPS < 0 {
		return invalid("window.tps %d must not be negative", c.Window.TPS)
	}
	if _, err := Hex(c.Scene.Background); err != nil {
		return invalid("scene.background: %v", err)
	}

	cam := c.Camera
	if cam.FOV <= 0 || cam.FOV >= 180 {
		return invalid("camera.fov %v must be in (0, 180)", cam.FOV)
	}
	if cam.Near <= 0 || cam.Far <= cam.Near {
		return invalid("camera near %v / far %v", cam.Near, cam.Far)
	}
	if cam.MinDistance <= 0 || cam.MinDistance > cam.MaxDistance {
		return invalid("camera distance range [%v, %v]", cam.MinDistance, cam.MaxDistance)
	}
	if cam.MinPolar < 0 || cam.MinPolar > cam.MaxPolar || cam.MaxPolar > math.Pi {
		return invalid("camera polar range [%v, %v]", cam.MinPolar, cam.MaxPolar)
	}

	if err := c.Lighting.validate(); err != nil {
		return err
	}

	if c.GroupRate <= 0 {
		return invalid("group_rate %v must be positive", c.GroupRate)
	}
	if c.Topper.Rate <= 0 {
		return invalid("topper.rate %v must be positive", c.Topper.Rate)
	}
	if _, err := Hex(c.Topper.GlowColor); err != nil {
		return invalid("topper.glow_color: %v", err)
	}
	if c.SettleEpsilon <= 0 {
		return invalid("settle_epsilon %v must be positive", c.SettleEpsilon)
	}

	for name, g := range c.Geometry {
		if _, err := g.Build(); err != nil {
			return invalid("geometry %q: %v", name, err)
		}
	}
	for name, m := range c.Materials {
		if _, err := NewMaterial(name, m); err != nil {
			return invalid("material %q: %v", name, err)
		}
	}

	seen := make(map[string]bool, len(c.Groups))
	for i, g := range c.Groups {
		if g.Name == "" {
			return invalid("groups[%d]: missing name", i)
		}
		if seen[g.Name] {
			return invalid("groups[%d]: duplicate name %q", i, g.Name)
		}
		seen[g.Name] = true
		if g.Count < 0 {
			return invalid("group %q: count %d must not be negative", g.Name, g.Count)
		}
		if g.Count > maxInstanceCount {
			return invalid("group %q: count %d exceeds %d", g.Name, g.Count, maxInstanceCount)
		}
		if _, err := ParseKind(g.Kind); err != nil {
			return invalid("group %q: %v", g.Name, err)
		}
		if g.BaseScale <= 0 {
			return invalid("group %q: base_scale %v must be positive", g.Name, g.BaseScale)
		}
		if _, ok := c.Geometry[g.Geometry]; !ok {
			return invalid("group %q: unknown geometry %q", g.Name, g.Geometry)
		}
		if _, ok := c.Materials[g.Material]; !ok {
			return invalid("group %q: unknown material %q", g.Name, g.Material)
		}
	}
	if _, ok := c.Geometry["star"]; !ok {
		return invalid("geometry \"star\" is required for the topper")
	}
	if _, ok := c.Materials["star"]; !ok {
		return invalid("material \"star\" is required for the topper")
	}

	if c.Platform.Enabled {
		if _, ok := c.Geometry[c.Platform.Geometry]; !ok {
			return invalid("platform: unknown geometry %q", c.Platform.Geometry)
		}
		if _, ok := c.Materials[c.Platform.Material]; !ok {
			return invalid("platform: unknown material %q", c.Platform.Material)
		}
	}

	if err := validateField("sparkles", c.Sparkles.Field); err != nil {
		return err
	}
	if err := validateField("stars", c.Stars); err != nil {
		return err
	}

	for i, b := range c.PostFX.Blooms {
		if b.Threshold < 0 || b.Intensity < 0 || b.Radius < 0 {
			return invalid("postfx.bloom[%d]: negative value", i)
		}
	}
	if c.PostFX.Exposure <= 0 {
		return invalid("postfx.exposure %v must be positive", c.PostFX.Exposure)
	}
	return nil
}

func (lc LightingConfig) validate() error {
	if _, err := Hex(lc.Ambient); err != nil {
		return invalid("lighting.ambient: %v", err)
	}
	if _, err := Hex(lc.Environment); err != nil {
		return invalid("lighting.environment: %v", err)
	}
	for i, l := range lc.Lights {
		if _, err := NewLight(l); err != nil {
			return invalid("lighting.lights[%d]: %v", i, err)
		}
	}
	return nil
}

func validateField(name string, f PointFieldConfig) error {
	if f.Count < 0 {
		return invalid("%s.count %d must not be negative", name, f.Count)
	}
	if f.Size.Min < 0 || f.Size.Min > f.Size.Max {
		return invalid("%s.size [%v, %v]", name, f.Size.Min, f.Size.Max)
	}
	if _, err := Hex(f.Color); err != nil {
		return invalid("%s.color: %v", name, err)
	}
	return nil
}

// Build constructs the mesh the config describes.
func (gc GeometryConfig) Build() (*Mesh, error) {
	if gc.Radius <= 0 {
		return nil, fmt.Errorf("radius %v must be positive", gc.Radius)
	}
	switch strings.ToLower(gc.Type) {
	case "cone":
		if gc.Height <= 0 {
			return nil, fmt.Errorf("cone height %v must be positive", gc.Height)
		}
		return NewCone(gc.Radius, gc.Height, gc.Segments), nil
	case "dodecahedron":
		return NewDodecahedron(gc.Radius), nil
	case "sphere":
		return NewSphere(gc.Radius, gc.Segments, gc.Rings), nil
	case "disc":
		return NewDisc(gc.Radius, gc.Segments), nil
	}
	return nil, fmt.Errorf("unknown geometry type %q", gc.Type)
}

// Apply configures lg from the config, replacing its lights.
func (lc LightingConfig) Apply(lg *Lighting) error {
	amb, err := Hex(lc.Ambient)
	if err != nil {
		return fmt.Errorf("ambient: %w", err)
	}
	env, err := Hex(lc.Environment)
	if err != nil {
		return fmt.Errorf("environment: %w", err)
	}
	lg.Ambient = amb
	lg.AmbientIntensity = lc.AmbientIntensity
	lg.Environment = env
	lg.Lights = lg.Lights[:0]
	for i, cfg := range lc.Lights {
		l, err := NewLight(cfg)
		if err != nil {
			return fmt.Errorf("light %d: %w", i, err)
		}
		lg.AddLight(l)
	}
	lg.Invalidate()
	return nil
}

// --- YAML forms ---

// UnmarshalYAML accepts [x, y, z] or {x:, y:, z:}.
func (v *Vec3) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 3 {
			return fmt.Errorf("line %d: vector needs 3 components, got %d", node.Line, len(xs))
		}
		*v = Vec3{xs[0], xs[1], xs[2]}
		return nil
	case yaml.MappingNode:
		var m struct{ X, Y, Z float64 }
		if err := node.Decode(&m); err != nil {
			return err
		}
		*v = Vec3{m.X, m.Y, m.Z}
		return nil
	}
	return fmt.Errorf("line %d: expected a vector", node.Line)
}

// MarshalYAML writes a vector as [x, y, z].
func (v Vec3) MarshalYAML() (any, error) {
	return []float64{v.X, v.Y, v.Z}, nil
}

// UnmarshalYAML accepts [min, max] or a single number for a fixed value.
func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var x float64
		if err := node.Decode(&x); err != nil {
			return err
		}
		*r = Range{Min: x, Max: x}
		return nil
	case yaml.SequenceNode:
		var xs []float64
		if err := node.Decode(&xs); err != nil {
			return err
		}
		if len(xs) != 2 {
			return fmt.Errorf("line %d: range needs 2 values, got %d", node.Line, len(xs))
		}
		*r = Range{Min: xs[0], Max: xs[1]}
		return nil
	}
	return fmt.Errorf("line %d: expected a range", node.Line)
}

// MarshalYAML writes a range as [min, max].
func (r Range) MarshalYAML() (any, error) {
	return []float64{r.Min, r.Max}, nil
}

// UnmarshalYAML accepts "box" or "shell".
func (s *PointShape) UnmarshalYAML(node *yaml.Node) error {
	var name string
	if err := node.Decode(&name); err != nil {
		return err
	}
	switch strings.ToLower(name) {
	case "box":
		*s = PointShapeBox
	case "shell":
		*s = PointShapeShell
	default:
		return fmt.Errorf("line %d: unknown point shape %q", node.Line, name)
	}
	return nil
}

// MarshalYAML writes the shape name.
func (s PointShape) MarshalYAML() (any, error) {
	if s == PointShapeShell {
		return "shell", nil
	}
	return "box", nil
}
