package arix

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfigValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("DefaultConfig invalid: %v", err)
	}
	if len(cfg.Groups) != 4 {
		t.Errorf("groups = %d, want 4", len(cfg.Groups))
	}
	want := map[string]int{"needles": 2500, "gold": 150, "red": 80, "pearl": 60}
	for _, g := range cfg.Groups {
		if g.Count != want[g.Name] {
			t.Errorf("group %q count = %d, want %d", g.Name, g.Count, want[g.Name])
		}
	}
}

func TestParseConfigKeepsDefaults(t *testing.T) {
	cfg, err := ParseConfig([]byte("seed: 42\ncamera:\n  fov: 50\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	def := DefaultConfig()
	if cfg.Seed != 42 {
		t.Errorf("Seed = %d, want 42", cfg.Seed)
	}
	if cfg.Camera.FOV != 50 {
		t.Errorf("FOV = %f, want 50", cfg.Camera.FOV)
	}
	if cfg.Camera.Near != def.Camera.Near || cfg.Camera.MaxDistance != def.Camera.MaxDistance {
		t.Error("unspecified camera fields should keep their defaults")
	}
	if len(cfg.Groups) != len(def.Groups) || cfg.Window.Title != def.Window.Title {
		t.Error("unspecified sections should keep their defaults")
	}
}

func TestParseConfigInvalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
	}{
		{"window size", "window: {width: 0}"},
		{"negative tps", "window: {tps: -1}"},
		{"background", "scene: {background: nope}"},
		{"fov", "camera: {fov: 200}"},
		{"near far", "camera: {near: 10, far: 5}"},
		{"distance range", "camera: {min_distance: 30, max_distance: 5}"},
		{"polar range", "camera: {max_polar: 4}"},
		{"ambient", "lighting: {ambient: '#12'}"},
		{"light type", "lighting: {lights: [{type: area, color: '#ffffff'}]}"},
		{"spot angle", "lighting: {lights: [{type: spot, color: '#ffffff', angle: 2}]}"},
		{"group rate", "group_rate: 0"},
		{"topper rate", "topper: {rate: 0}"},
		{"glow color", "topper: {glow_color: x}"},
		{"settle epsilon", "settle_epsilon: -1"},
		{"geometry type", "geometry: {cube: {type: cube, radius: 1}}"},
		{"material color", "materials: {bad: {color: '#zzzzzz'}}"},
		{"group name", "groups: [{count: 1, kind: structural, base_scale: 1, geometry: needle, material: emerald}]"},
		{"group duplicate", "groups: [{name: a, kind: structural, base_scale: 1, geometry: needle, material: emerald}, {name: a, kind: structural, base_scale: 1, geometry: needle, material: emerald}]"},
		{"group count", "groups: [{name: a, count: -1, kind: structural, base_scale: 1, geometry: needle, material: emerald}]"},
		{"group too large", "groups: [{name: a, count: 50001, kind: structural, base_scale: 1, geometry: needle, material: emerald}]"},
		{"group kind", "groups: [{name: a, kind: bogus, base_scale: 1, geometry: needle, material: emerald}]"},
		{"group scale", "groups: [{name: a, kind: structural, base_scale: 0, geometry: needle, material: emerald}]"},
		{"group geometry", "groups: [{name: a, kind: structural, base_scale: 1, geometry: missing, material: emerald}]"},
		{"group material", "groups: [{name: a, kind: structural, base_scale: 1, geometry: needle, material: missing}]"},
		{"platform geometry", "platform: {enabled: true, geometry: missing}"},
		{"sparkle size", "sparkles: {size: [5, 1]}"},
		{"sparkle count", "sparkles: {count: -1}"},
		{"star color", "stars: {color: nope}"},
		{"bloom", "postfx: {bloom: [{threshold: -1}]}"},
		{"exposure", "postfx: {exposure: 0}"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseConfig([]byte(tt.yaml))
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("error %v does not wrap ErrInvalidConfig", err)
			}
		})
	}
}

func TestParseConfigSyntaxError(t *testing.T) {
	_, err := ParseConfig([]byte("window: ["))
	if err == nil {
		t.Fatal("expected error")
	}
	if errors.Is(err, ErrInvalidConfig) {
		t.Error("syntax errors should not wrap ErrInvalidConfig")
	}
}

func TestConfigVectorForms(t *testing.T) {
	cfg, err := ParseConfig([]byte("offset: [1, 2, 3]\ntopper: {to: {x: 4, y: 5, z: 6}}\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	assertVec(t, "offset", cfg.Offset, Vec3{1, 2, 3}, 1e-9)
	assertVec(t, "topper.to", cfg.Topper.To, Vec3{4, 5, 6}, 1e-9)

	if _, err := ParseConfig([]byte("offset: [1, 2]")); err == nil {
		t.Error("two-component vector should fail")
	}
	if _, err := ParseConfig([]byte("offset: 3")); err == nil {
		t.Error("scalar vector should fail")
	}
}

func TestConfigRangeAndShapeForms(t *testing.T) {
	cfg, err := ParseConfig([]byte("sparkles: {size: 70}\nstars: {shape: box, size: [1, 2]}\n"))
	if err != nil {
		t.Fatalf("ParseConfig: %v", err)
	}
	if cfg.Sparkles.Field.Size != (Range{70, 70}) {
		t.Errorf("scalar range = %+v, want {70 70}", cfg.Sparkles.Field.Size)
	}
	if cfg.Stars.Size != (Range{1, 2}) {
		t.Errorf("pair range = %+v, want {1 2}", cfg.Stars.Size)
	}
	if cfg.Stars.Shape != PointShapeBox {
		t.Errorf("shape = %v, want box", cfg.Stars.Shape)
	}

	if _, err := ParseConfig([]byte("stars: {shape: cube}")); err == nil {
		t.Error("unknown shape should fail")
	}
	if _, err := ParseConfig([]byte("stars: {size: [1, 2, 3]}")); err == nil {
		t.Error("three-value range should fail")
	}
}

func TestConfigMarshalRoundTrip(t *testing.T) {
	def := DefaultConfig()
	def.Seed = 7
	data, err := def.Marshal()
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	cfg, err := ParseConfig(data)
	if err != nil {
		t.Fatalf("ParseConfig(Marshal()): %v", err)
	}
	if cfg.Seed != 7 {
		t.Errorf("Seed = %d, want 7", cfg.Seed)
	}
	assertVec(t, "offset", cfg.Offset, def.Offset, 1e-9)
	if cfg.Stars.Shape != PointShapeShell || cfg.Sparkles.Field.Shape != PointShapeBox {
		t.Error("point shapes did not survive the round trip")
	}
	if cfg.Sparkles.Field.Size != def.Sparkles.Field.Size {
		t.Errorf("sparkle size = %+v, want %+v", cfg.Sparkles.Field.Size, def.Sparkles.Field.Size)
	}
	if len(cfg.Lighting.Lights) != 3 || cfg.Lighting.Lights[0].Intensity != def.Lighting.Lights[0].Intensity {
		t.Error("lights did not survive the round trip")
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "arix.yaml")
	if err := os.WriteFile(path, []byte("window:\n  title: Test\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Window.Title != "Test" || cfg.Window.Width != 1280 {
		t.Errorf("window = %+v", cfg.Window)
	}

	if _, err := LoadConfig(filepath.Join(dir, "missing.yaml")); err == nil {
		t.Error("missing file should fail")
	}
}

func TestGeometryConfigBuild(t *testing.T) {
	tests := []struct {
		cfg  GeometryConfig
		name string
		tris int
	}{
		{GeometryConfig{Type: "cone", Radius: 0.3, Height: 1.2, Segments: 5}, "cone", 10},
		{GeometryConfig{Type: "Dodecahedron", Radius: 1}, "dodecahedron", 36},
		{GeometryConfig{Type: "sphere", Radius: 1, Segments: 8, Rings: 4}, "sphere", 48},
		{GeometryConfig{Type: "disc", Radius: 4, Segments: 64}, "disc", 64},
	}
	for _, tt := range tests {
		m, err := tt.cfg.Build()
		if err != nil {
			t.Errorf("%s: %v", tt.name, err)
			continue
		}
		if m.Name != tt.name || m.NumTriangles() != tt.tris {
			t.Errorf("%s: got %s with %d triangles, want %d", tt.name, m.Name, m.NumTriangles(), tt.tris)
		}
	}

	bad := []GeometryConfig{
		{Type: "cone", Radius: 1},
		{Type: "sphere"},
		{Type: "torus", Radius: 1},
	}
	for _, gc := range bad {
		if _, err := gc.Build(); err == nil {
			t.Errorf("%+v: expected error", gc)
		}
	}
}

func TestLightingConfigApply(t *testing.T) {
	lg := NewLighting()
	lg.AddLight(&Light{})
	if err := DefaultConfig().Lighting.Apply(lg); err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(lg.Lights) != 3 {
		t.Fatalf("lights = %d, want 3 (existing lights replaced)", len(lg.Lights))
	}
	types := []LightType{LightSpot, LightSpot, LightPoint}
	for i, l := range lg.Lights {
		if l.Type != types[i] {
			t.Errorf("light %d type = %v, want %v", i, l.Type, types[i])
		}
	}
	if lg.Ambient != MustHex("#004225") {
		t.Errorf("ambient = %+v", lg.Ambient)
	}
	if lg.Exposure != 1 {
		t.Errorf("Exposure = %f, want untouched 1", lg.Exposure)
	}

	bad := LightingConfig{Ambient: "#000000", Environment: "nope"}
	if err := bad.Apply(lg); err == nil {
		t.Error("bad environment should fail")
	}
}
