package arix

import (
	"math"
	"testing"
)

func TestNewLight(t *testing.T) {
	l, err := NewLight(LightConfig{Color: "#FFD700", Intensity: 2, Penumbra: 3})
	if err != nil {
		t.Fatalf("NewLight: %v", err)
	}
	if l.Type != LightPoint {
		t.Errorf("default type = %v, want point", l.Type)
	}
	if l.Penumbra != 1 {
		t.Errorf("Penumbra = %f, want clamped 1", l.Penumbra)
	}

	bad := []LightConfig{
		{Type: "spot", Color: "#ffffff", Angle: 0},
		{Type: "spot", Color: "#ffffff", Angle: math.Pi / 2},
		{Type: "area", Color: "#ffffff"},
		{Color: "#ffffff", Intensity: -1},
		{Color: "#ffffff", Distance: -1},
		{Color: "white"},
	}
	for _, cfg := range bad {
		if _, err := NewLight(cfg); err == nil {
			t.Errorf("%+v: expected error", cfg)
		}
	}
}

func TestPointLightAttenuation(t *testing.T) {
	l := &Light{Type: LightPoint, Position: Vec3{0, 2, 0}}
	att, dir := l.attenuation(Vec3{})
	if !approxEqual(att, 0.25, 1e-12) {
		t.Errorf("inverse square att = %f, want 0.25", att)
	}
	assertVec(t, "dir", dir, Vec3{0, 1, 0}, 1e-12)

	l.Distance = 1
	if att, _ := l.attenuation(Vec3{}); att != 0 {
		t.Errorf("out of range att = %f, want 0", att)
	}

	l.Distance = 0
	if att, _ := l.attenuation(Vec3{0, 2, 0}); att != 0 {
		t.Errorf("coincident att = %f, want 0", att)
	}
}

func TestSpotLightCone(t *testing.T) {
	l := &Light{Type: LightSpot, Position: Vec3{0, 10, 0}, Target: Vec3{}, Angle: 0.2, Decay: 2}
	on, _ := l.attenuation(Vec3{})
	if !approxEqual(on, 0.01, 1e-12) {
		t.Errorf("on-axis att = %f, want 0.01", on)
	}
	if off, _ := l.attenuation(Vec3{10, 0, 0}); off != 0 {
		t.Errorf("outside cone att = %f, want 0", off)
	}
}

func TestLightFollowsNode(t *testing.T) {
	s := testScene()
	n := NewContainer("star")
	n.SetPosition(1, 2, 3)
	s.Root().AddChild(n)
	s.step(0)

	l := &Light{Position: Vec3{9, 9, 9}, Follow: n}
	assertVec(t, "position", l.position(), Vec3{1, 2, 3}, 1e-12)
}

func testLitMaterial(t *testing.T) *Material {
	t.Helper()
	m, err := NewMaterial("matte", MaterialConfig{Color: "#ffffff", Roughness: 1})
	if err != nil {
		t.Fatal(err)
	}
	return m
}

func TestShadeLitBrighterThanAmbient(t *testing.T) {
	m := testLitMaterial(t)
	n, p, eye := Vec3{0, 1, 0}, Vec3{}, Vec3{0, 5, 5}

	dark := NewLighting()
	dark.Ambient = MustHex("#ffffff")
	dark.AmbientIntensity = 0.05
	base := dark.Shade(m, n, p, eye, ColorWhite)

	lit := NewLighting()
	lit.Ambient = MustHex("#ffffff")
	lit.AmbientIntensity = 0.05
	lit.AddLight(&Light{Type: LightPoint, Position: Vec3{0, 2, 0}, Color: ColorWhite, Intensity: 2})
	c := lit.Shade(m, n, p, eye, ColorWhite)

	if c.R <= base.R {
		t.Errorf("lit R = %f, ambient-only R = %f", c.R, base.R)
	}
	if c.R > 1 || c.G > 1 || c.B > 1 {
		t.Errorf("tone mapped color exceeds 1: %+v", c)
	}
	if c.A != 1 {
		t.Errorf("alpha = %f, want 1", c.A)
	}
}

func TestShadeBackFacingNormalFlips(t *testing.T) {
	m := testLitMaterial(t)
	lg := NewLighting()
	lg.AddLight(&Light{Type: LightPoint, Position: Vec3{0, 2, 0}, Color: ColorWhite, Intensity: 2})
	eye := Vec3{0, 5, 0}
	up := lg.Shade(m, Vec3{0, 1, 0}, Vec3{}, eye, ColorWhite)
	down := lg.Shade(m, Vec3{0, -1, 0}, Vec3{}, eye, ColorWhite)
	if !approxEqual(up.R, down.R, 1e-12) {
		t.Errorf("flipped normal shades differently: %f vs %f", up.R, down.R)
	}
}

func TestShadeExposure(t *testing.T) {
	m := testLitMaterial(t)
	lg := NewLighting()
	lg.Ambient = ColorWhite
	lg.AmbientIntensity = 0.1
	low := lg.Shade(m, Vec3{0, 1, 0}, Vec3{}, Vec3{0, 1, 0}, ColorWhite)
	lg.Exposure = 3
	high := lg.Shade(m, Vec3{0, 1, 0}, Vec3{}, Vec3{0, 1, 0}, ColorWhite)
	if high.R <= low.R {
		t.Errorf("exposure 3 R = %f, exposure 1 R = %f", high.R, low.R)
	}
}

func TestShadeUnlit(t *testing.T) {
	m, err := NewMaterial("star", MaterialConfig{Color: "#ffffff", Emissive: "#ffffff", EmissiveIntensity: 3, Unlit: true, Opacity: 0.5})
	if err != nil {
		t.Fatal(err)
	}
	c := NewLighting().Shade(m, Vec3{0, 1, 0}, Vec3{}, Vec3{0, 1, 0}, Color{1, 1, 1, 0.5})
	if !approxEqual(c.R, 2, 1e-12) {
		t.Errorf("unlit R = %f, want 2 (no tone mapping)", c.R)
	}
	if !approxEqual(c.A, 0.25, 1e-12) {
		t.Errorf("unlit A = %f, want 0.25", c.A)
	}
}

func TestLightingInvalidate(t *testing.T) {
	m := testLitMaterial(t)
	lg := NewLighting()
	lg.Ambient = ColorWhite
	lg.AmbientIntensity = 0.1
	before := lg.Shade(m, Vec3{0, 1, 0}, Vec3{}, Vec3{0, 1, 0}, ColorWhite)

	lg.AmbientIntensity = 0.5
	stale := lg.Shade(m, Vec3{0, 1, 0}, Vec3{}, Vec3{0, 1, 0}, ColorWhite)
	if stale.R != before.R {
		t.Error("field edits should not apply before Invalidate")
	}
	lg.Invalidate()
	after := lg.Shade(m, Vec3{0, 1, 0}, Vec3{}, Vec3{0, 1, 0}, ColorWhite)
	if after.R <= before.R {
		t.Errorf("after Invalidate R = %f, want > %f", after.R, before.R)
	}
}

func TestToneMapHelpers(t *testing.T) {
	if acesFilm(0) != 0 {
		t.Errorf("acesFilm(0) = %f", acesFilm(0))
	}
	if acesFilm(100) != 1 {
		t.Errorf("acesFilm(100) = %f, want clamped 1", acesFilm(100))
	}
	if smoothstep(0, 1, -1) != 0 || smoothstep(0, 1, 2) != 1 || smoothstep(0, 1, 0.5) != 0.5 {
		t.Error("smoothstep endpoints")
	}
	if smoothstep(1, 1, 0.5) != 0 || smoothstep(1, 1, 1) != 1 {
		t.Error("degenerate smoothstep should step")
	}
}

func TestNewMaterial(t *testing.T) {
	m, err := NewMaterial("gold", MaterialConfig{Color: "#FFDF00", Metalness: 2, Roughness: -1})
	if err != nil {
		t.Fatalf("NewMaterial: %v", err)
	}
	if m.Opacity != 1 {
		t.Errorf("Opacity = %f, want default 1", m.Opacity)
	}
	if m.Metalness != 1 || m.Roughness != 0 {
		t.Errorf("metal/rough = %f/%f, want clamped 1/0", m.Metalness, m.Roughness)
	}
	if s := m.shininess(); !approxEqual(s, 2/math.Pow(0.05, 4)-2, 1e-6) {
		t.Errorf("shininess = %f", s)
	}

	if _, err := NewMaterial("x", MaterialConfig{Color: "gold"}); err == nil {
		t.Error("bad color should fail")
	}
	if _, err := NewMaterial("x", MaterialConfig{Color: "#ffffff", Emissive: "#1"}); err == nil {
		t.Error("bad emissive should fail")
	}

	for name, cfg := range DefaultMaterials() {
		if _, err := NewMaterial(name, cfg); err != nil {
			t.Errorf("default material %q: %v", name, err)
		}
	}
}
