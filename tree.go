package arix

import (
	"fmt"
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/tanema/gween/ease"
)

const (
	// starLightIntensity is the topper's point light, physical value over pi.
	starLightIntensity = 10 / math.Pi
	// haloScale sizes the topper halo relative to the star radius.
	haloScale = 2.5
)

// Tree is the holiday scene: four morphing instance groups, the star topper
// with its light and halo, sparkles, the star field and the base platform,
// all driven by one assembled flag.
type Tree struct {
	cfg   *Config
	scene *Scene

	container *Node
	groups    []*InstanceGroup
	topper    *Topper
	starLight *Light
	halo      *GlowSource

	sparkles     *PointField
	sparkleNode  *Node
	stars        *PointField
	starsNode    *Node
	platform     *Node
	platformGrow *TweenGroup

	overlay *Overlay

	assembled bool
	settled   bool

	// OnToggle, if set, runs after every change of the assembled flag.
	OnToggle func(assembled bool)
}

// NewTree builds the scene content described by cfg into s and installs the
// tree as the scene's update function. rng may be nil, in which case cfg.Seed
// selects a fixed source or the global one.
func NewTree(s *Scene, cfg *Config, rng RandomSource) (*Tree, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if rng == nil {
		if cfg.Seed != 0 {
			rng = NewRandomSource(cfg.Seed)
		} else {
			rng = DefaultRandomSource
		}
	}

	meshes := make(map[string]*Mesh, len(cfg.Geometry))
	meshFor := func(name string) (*Mesh, error) {
		if m, ok := meshes[name]; ok {
			return m, nil
		}
		gc, ok := cfg.Geometry[name]
		if !ok {
			return nil, fmt.Errorf("unknown geometry %q", name)
		}
		m, err := gc.Build()
		if err != nil {
			return nil, fmt.Errorf("geometry %q: %w", name, err)
		}
		meshes[name] = m
		return m, nil
	}
	materials := make(map[string]*Material, len(cfg.Materials))
	materialFor := func(name string) (*Material, error) {
		if m, ok := materials[name]; ok {
			return m, nil
		}
		mc, ok := cfg.Materials[name]
		if !ok {
			return nil, fmt.Errorf("unknown material %q", name)
		}
		m, err := NewMaterial(name, mc)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", name, err)
		}
		materials[name] = m
		return m, nil
	}

	lg := s.Lighting()
	if err := cfg.Lighting.Apply(lg); err != nil {
		return nil, fmt.Errorf("lighting: %w", err)
	}
	if cfg.PostFX.Exposure > 0 {
		lg.Exposure = cfg.PostFX.Exposure
	}
	s.SetFilters(NewPostFX(cfg.PostFX)...)

	t := &Tree{cfg: cfg, scene: s}

	// Star field sits outside the tree group, in its own layer behind it.
	t.stars = NewPointField(cfg.Stars, rng)
	t.starsNode = NewPoints("stars", t.stars)
	t.starsNode.RenderLayer = 0
	s.Root().AddChild(t.starsNode)

	t.container = NewContainer("tree")
	t.container.Position = cfg.Offset
	t.container.RenderLayer = 1
	s.Root().AddChild(t.container)

	for _, gc := range cfg.Groups {
		kind, err := ParseKind(gc.Kind)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", gc.Name, err)
		}
		mesh, err := meshFor(gc.Geometry)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", gc.Name, err)
		}
		mat, err := materialFor(gc.Material)
		if err != nil {
			return nil, fmt.Errorf("group %q: %w", gc.Name, err)
		}
		g := cfg.Generator.NewInstanceGroup(gc.Name, gc.Count, kind, gc.SeedOffset, gc.BaseScale, mesh, mat, rng)
		g.State.Rate = cfg.GroupRate
		// Write scattered matrices so the first frame is not a pile at the origin.
		DriveInstances(Frame{}, 0, &g.State, g.Poses, g.BaseScale, g.Buffer())
		g.Node().RenderLayer = 1
		t.container.AddChild(g.Node())
		t.groups = append(t.groups, g)
	}

	starMesh, err := meshFor("star")
	if err != nil {
		return nil, fmt.Errorf("topper: %w", err)
	}
	starMat, err := materialFor("star")
	if err != nil {
		return nil, fmt.Errorf("topper: %w", err)
	}
	starNode := NewMeshNode("topper", starMesh, starMat)
	starNode.RenderLayer = 1
	t.container.AddChild(starNode)
	t.topper = NewTopper(cfg.Topper, starNode)

	glowColor, err := Hex(cfg.Topper.GlowColor)
	if err != nil {
		return nil, fmt.Errorf("topper glow: %w", err)
	}
	t.starLight = &Light{
		Type:      LightPoint,
		Color:     glowColor,
		Intensity: starLightIntensity,
		Distance:  cfg.Topper.GlowRadius,
		Decay:     2,
		Follow:    starNode,
	}
	lg.AddLight(t.starLight)
	t.halo = &GlowSource{
		Follow:    starNode,
		Radius:    cfg.Topper.Radius * haloScale,
		Intensity: 0.6,
		Color:     glowColor,
		Enabled:   true,
	}
	s.Glow().AddSource(t.halo)

	t.sparkles = NewPointField(cfg.Sparkles.Field, rng)
	t.sparkles.Opacity = cfg.Sparkles.ScatteredOpacity
	t.sparkleNode = NewPoints("sparkles", t.sparkles)
	t.sparkleNode.RenderLayer = 1
	t.container.AddChild(t.sparkleNode)

	if cfg.Platform.Enabled {
		mesh, err := meshFor(cfg.Platform.Geometry)
		if err != nil {
			return nil, fmt.Errorf("platform: %w", err)
		}
		mat, err := materialFor(cfg.Platform.Material)
		if err != nil {
			return nil, fmt.Errorf("platform: %w", err)
		}
		t.platform = NewMeshNode("platform", mesh, mat)
		t.platform.RenderLayer = 1
		t.platform.Position = Vec3{0, cfg.Platform.Y, 0}
		t.platform.SetScale(0)
		t.platform.Visible = false
		t.container.AddChild(t.platform)
	}

	s.SetUpdateFunc(t.Update)
	s.BindKey(ebiten.KeySpace, t.Toggle)
	s.BindKey(ebiten.KeyEnter, t.Toggle)
	s.RegisterAction("toggle", t.Toggle)
	s.RegisterAction("assemble", func() { t.SetAssembled(true) })
	s.RegisterAction("scatter", func() { t.SetAssembled(false) })
	s.OnClick(func(ctx PointerContext) {
		if ctx.Target == OverlayButtonID {
			t.Toggle()
		}
	})
	return t, nil
}

// AttachOverlay adds o as a scene layer and keeps its captions in step with
// the assembled flag.
func (t *Tree) AttachOverlay(o *Overlay) {
	t.overlay = o
	o.SetAssembled(t.assembled)
	t.scene.AddLayer(o)
}

// Assembled reports the current target state.
func (t *Tree) Assembled() bool {
	return t.assembled
}

// Toggle flips between assembled and scattered.
func (t *Tree) Toggle() {
	t.SetAssembled(!t.assembled)
}

// SetAssembled sets the target state. The groups and the topper damp toward
// it from wherever they are; sparkles, platform, auto-rotation and the
// overlay switch with it.
func (t *Tree) SetAssembled(assembled bool) {
	if assembled == t.assembled {
		return
	}
	t.assembled = assembled
	t.settled = false

	t.scene.Camera().AutoRotate = assembled

	sp := t.cfg.Sparkles
	opacity := sp.ScatteredOpacity
	if assembled {
		opacity = sp.AssembledOpacity
	}
	if sp.FadeDuration > 0 {
		t.sparkles.FadeTo(opacity, float32(sp.FadeDuration))
	} else {
		t.sparkles.Opacity = opacity
	}

	if t.platform != nil {
		scale, fn := 0.0, ease.InCubic
		if assembled {
			scale, fn = 1, ease.OutBack
			t.platform.Visible = true
		}
		if d := t.cfg.Platform.GrowDuration; d > 0 {
			t.platformGrow = TweenScale(t.platform, scale, float32(d), fn)
		} else {
			t.platform.SetScale(scale)
			t.platform.Visible = assembled
		}
	}

	if t.overlay != nil {
		t.overlay.SetAssembled(assembled)
	}
	t.scene.Emit(InteractionEvent{Type: EventToggle, Assembled: assembled})
	if t.OnToggle != nil {
		t.OnToggle(assembled)
	}
}

func (t *Tree) target() float64 {
	if t.assembled {
		return 1
	}
	return 0
}

// Update drives every morphing element for one frame. It is installed as the
// scene's update function by NewTree.
func (t *Tree) Update(frame Frame) {
	target := t.target()
	for _, g := range t.groups {
		g.Update(frame, target)
	}
	t.topper.Update(frame, target)

	if t.platformGrow != nil {
		t.platformGrow.Update(float32(frame.Delta))
		if t.platformGrow.Done {
			t.platformGrow = nil
			if !t.assembled {
				t.platform.Visible = false
			}
		}
	}

	if !t.settled && t.Settled() {
		t.settled = true
		t.scene.Emit(InteractionEvent{Type: EventMorphSettled, Assembled: t.assembled})
	}
}

// Settled reports whether every group and the topper are within the
// configured epsilon of the target.
func (t *Tree) Settled() bool {
	target, eps := t.target(), t.cfg.SettleEpsilon
	for _, g := range t.groups {
		if !g.State.Settled(target, eps) {
			return false
		}
	}
	return t.topper.State.Settled(target, eps)
}

// Groups returns the instance groups in config order.
func (t *Tree) Groups() []*InstanceGroup {
	return t.groups
}

// Group returns the group called name, or nil.
func (t *Tree) Group(name string) *InstanceGroup {
	for _, g := range t.groups {
		if g.Name == name {
			return g
		}
	}
	return nil
}

// Topper returns the star.
func (t *Tree) Topper() *Topper {
	return t.topper
}

// Sparkles returns the gold dust field.
func (t *Tree) Sparkles() *PointField {
	return t.sparkles
}

// Stars returns the background star field.
func (t *Tree) Stars() *PointField {
	return t.stars
}

// Platform returns the base disc node, or nil when disabled.
func (t *Tree) Platform() *Node {
	return t.platform
}

// Halo returns the topper's glow source.
func (t *Tree) Halo() *GlowSource {
	return t.halo
}
