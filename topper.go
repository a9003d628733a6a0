package arix

import "math"

// DefaultTopperRate is the topper's damping rate, a little faster than the
// groups so the star lands as the needles settle.
const DefaultTopperRate = 3.0

// TopperConfig places the star relative to the tree group.
type TopperConfig struct {
	Rate       float64 `yaml:"rate"`
	From       Vec3    `yaml:"from"`
	To         Vec3    `yaml:"to"`
	FromScale  float64 `yaml:"from_scale"`
	ToScale    float64 `yaml:"to_scale"`
	Spin       float64 `yaml:"spin"`
	Radius     float64 `yaml:"radius"`
	GlowColor  string  `yaml:"glow_color"`
	GlowRadius float64 `yaml:"glow_radius"`
}

// DefaultTopperConfig returns the star path of the holiday scene.
func DefaultTopperConfig() TopperConfig {
	return TopperConfig{
		Rate:       DefaultTopperRate,
		From:       Vec3{3, 4, 0},
		To:         Vec3{0, 2.6, 0},
		FromScale:  0.1,
		ToScale:    1,
		Spin:       0.5,
		Radius:     0.5,
		GlowColor:  "#fffacd",
		GlowRadius: 4,
	}
}

// Topper is the single star that flies from a loose high point to the tree
// tip. It damps its own progress and spins at a constant rate regardless of
// progress.
type Topper struct {
	State MorphState
	cfg   TopperConfig

	position Vec3
	scale    float64
	yaw      float64

	node *Node
}

// NewTopper creates a topper in the scattered state. node may be nil; when
// set, its transform follows the topper each frame.
func NewTopper(cfg TopperConfig, node *Node) *Topper {
	if cfg.Rate <= 0 {
		cfg.Rate = DefaultTopperRate
	}
	t := &Topper{State: MorphState{Rate: cfg.Rate}, cfg: cfg, node: node}
	t.apply()
	return t
}

// Update damps progress toward target, advances the spin, and moves the node.
func (t *Topper) Update(frame Frame, target float64) {
	t.State.Step(frame, target)
	t.yaw = math.Mod(t.yaw+frame.Delta*t.cfg.Spin, 2*math.Pi)
	t.apply()
}

func (t *Topper) apply() {
	p := t.State.Progress
	t.position = LerpVec3(t.cfg.From, t.cfg.To, p)
	t.scale = lerp(t.cfg.FromScale, t.cfg.ToScale, p)
	if t.node != nil {
		t.node.Position = t.position
		t.node.Rotation = Vec3{0, t.yaw, 0}
		t.node.Scale = Vec3{t.scale, t.scale, t.scale}
		t.node.MarkDirty()
	}
}

// Position returns the topper's local position.
func (t *Topper) Position() Vec3 { return t.position }

// Scale returns the topper's uniform scale.
func (t *Topper) Scale() float64 { return t.scale }

// Yaw returns the accumulated spin in radians, wrapped to [0, 2pi).
func (t *Topper) Yaw() float64 { return t.yaw }

// Progress returns the topper's current progress.
func (t *Topper) Progress() float64 { return t.State.Progress }

// Node returns the node driven by the topper, if any.
func (t *Topper) Node() *Node { return t.node }
