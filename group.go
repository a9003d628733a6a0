package arix

import "math"

const (
	// DefaultGroupRate is the damping rate of instance groups.
	DefaultGroupRate = 2.5
	// IdleThreshold is the progress above which idle motion stops.
	IdleThreshold = 0.95

	idleBobAmplitude = 0.05
	idleBobFrequency = 0.5
	idleYawSpeed     = 0.2
	// idleSpinWrap is the progress below which the accumulated spin may
	// drop whole turns without a visible jump.
	idleSpinWrap = 1e-4
)

// Frame is the per-frame clock handed to update callbacks. Delta is the time
// since the previous frame and Elapsed the time since the scene started, both
// in seconds.
type Frame struct {
	Delta   float64
	Elapsed float64
}

// MorphState is the mutable part of a morphing group: its progress in [0, 1]
// (0 scattered, 1 assembled), the damping rate that moves it, and the idle
// yaw accumulated while the group is in flight.
type MorphState struct {
	Progress float64
	Rate     float64
	Spin     float64
}

// Step damps the progress toward target for one frame and returns it.
func (s *MorphState) Step(frame Frame, target float64) float64 {
	s.Progress = dampProgress(s.Progress, target, s.Rate, frame.Delta)
	return s.Progress
}

// advanceSpin accumulates the idle yaw at a speed that falls with progress.
// Whole turns are dropped only near p = 0, where the idle fade is 1.
func (s *MorphState) advanceSpin(dt float64) {
	p := s.Progress
	if dt <= 0 || p >= IdleThreshold {
		return
	}
	s.Spin += dt * idleYawSpeed * (1 - p)
	if p < idleSpinWrap && s.Spin >= 2*math.Pi {
		s.Spin = math.Mod(s.Spin, 2*math.Pi)
	}
}

// Settled reports whether the progress is within eps of target.
func (s *MorphState) Settled(target, eps float64) bool {
	return math.Abs(s.Progress-target) <= eps
}

// IdleMotion returns the vertical bob and extra yaw applied to instance i at
// progress p, given the group's accumulated spin. Both are zero once p
// reaches IdleThreshold. The yaw fades linearly to zero at the threshold so
// the spin unwinds without a jump.
func IdleMotion(frame Frame, i int, p, spin float64) (bob, yaw float64) {
	if p >= IdleThreshold {
		return 0, 0
	}
	bob = math.Sin(frame.Elapsed*idleBobFrequency+float64(i)) * idleBobAmplitude * (1 - p)
	yaw = spin * clamp01((IdleThreshold-p)/IdleThreshold)
	return bob, yaw
}

// PoseMatrix blends pose toward its assembled transform by p and returns the
// instance's model matrix, idle motion for the given spin included.
func PoseMatrix(frame Frame, i int, pose *EntityPose, p, spin, baseScale float64) Mat4 {
	pos := LerpVec3(pose.Scattered, pose.Assembled, p)
	rot := LerpVec3(pose.ScatteredRot, pose.AssembledRot, p)
	bob, yaw := IdleMotion(frame, i, p, spin)
	pos.Y += bob
	rot.Y += yaw
	s := pose.Scale * baseScale * (0.5 + 0.5*p)
	return ComposeMatrix(pos, rot, Vec3{s, s, s})
}

// DriveInstances advances state toward target and writes one matrix per pose
// into out. A nil out leaves everything untouched, state included.
func DriveInstances(frame Frame, target float64, state *MorphState, poses []EntityPose, baseScale float64, out *InstanceBuffer) {
	if out == nil || state == nil {
		return
	}
	p := state.Step(frame, target)
	state.advanceSpin(frame.Delta)
	for i := range poses {
		out.SetMatrixAt(i, PoseMatrix(frame, i, &poses[i], p, state.Spin, baseScale))
	}
	out.MarkDirty()
}

// InstanceGroup is one instanced mesh whose entities morph together.
type InstanceGroup struct {
	Name      string
	Kind      Kind
	Poses     []EntityPose
	State     MorphState
	BaseScale float64
	Mesh      *Mesh
	Material  *Material

	node *Node
}

// GroupConfig describes one InstanceGroup.
type GroupConfig struct {
	Name       string  `yaml:"name"`
	Count      int     `yaml:"count"`
	Kind       string  `yaml:"kind"`
	SeedOffset float64 `yaml:"seed_offset"`
	BaseScale  float64 `yaml:"base_scale"`
	Geometry   string  `yaml:"geometry"`
	Material   string  `yaml:"material"`
}

// NewInstanceGroup generates the group's poses and builds an instanced node
// for it. The node is not attached to any parent.
func NewInstanceGroup(name string, count int, kind Kind, seedOffset, baseScale float64, mesh *Mesh, mat *Material, rng RandomSource) *InstanceGroup {
	return DefaultGeneratorParams().NewInstanceGroup(name, count, kind, seedOffset, baseScale, mesh, mat, rng)
}

// NewInstanceGroup is the package-level NewInstanceGroup with poses shaped
// by gp.
func (gp GeneratorParams) NewInstanceGroup(name string, count int, kind Kind, seedOffset, baseScale float64, mesh *Mesh, mat *Material, rng RandomSource) *InstanceGroup {
	g := &InstanceGroup{
		Name:      name,
		Kind:      kind,
		Poses:     gp.Generate(count, kind, seedOffset, rng),
		State:     MorphState{Rate: DefaultGroupRate},
		BaseScale: baseScale,
		Mesh:      mesh,
		Material:  mat,
	}
	g.node = NewInstanced(name, mesh, mat, NewInstanceBuffer(len(g.Poses)))
	return g
}

// Node returns the instanced node that renders the group.
func (g *InstanceGroup) Node() *Node {
	return g.node
}

// Buffer returns the group's instance buffer, or nil when the group has no
// node.
func (g *InstanceGroup) Buffer() *InstanceBuffer {
	if g.node == nil {
		return nil
	}
	return g.node.Instances
}

// Update drives the group for one frame.
func (g *InstanceGroup) Update(frame Frame, target float64) {
	DriveInstances(frame, target, &g.State, g.Poses, g.BaseScale, g.Buffer())
}

// Progress returns the group's current progress.
func (g *InstanceGroup) Progress() float64 {
	return g.State.Progress
}
