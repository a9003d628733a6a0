package arix

import (
	"math"

	"github.com/charmbracelet/harmonica"
	"github.com/tanema/gween"
	"github.com/tanema/gween/ease"
)

// CameraConfig configures the orbit camera.
type CameraConfig struct {
	Position        Vec3    `yaml:"position"`
	Target          Vec3    `yaml:"target"`
	FOV             float64 `yaml:"fov"` // vertical, degrees
	Near            float64 `yaml:"near"`
	Far             float64 `yaml:"far"`
	MinPolar        float64 `yaml:"min_polar"` // radians from +Y
	MaxPolar        float64 `yaml:"max_polar"`
	MinDistance     float64 `yaml:"min_distance"`
	MaxDistance     float64 `yaml:"max_distance"`
	AutoRotateSpeed float64 `yaml:"auto_rotate_speed"` // 1.0 is one turn per minute
	SpringFrequency float64 `yaml:"spring_frequency"`
	SpringDamping   float64 `yaml:"spring_damping"`
	RotateSpeed     float64 `yaml:"rotate_speed"` // radians per pixel of drag
	ZoomStep        float64 `yaml:"zoom_step"`    // distance factor per wheel notch
	IntroDistance   float64 `yaml:"intro_distance"`
	IntroDuration   float64 `yaml:"intro_duration"`
}

// DefaultCameraConfig returns the framing of the holiday scene.
func DefaultCameraConfig() CameraConfig {
	return CameraConfig{
		Position:        Vec3{0, 1, 10},
		FOV:             45,
		Near:            0.1,
		Far:             400,
		MinPolar:        math.Pi / 2.5,
		MaxPolar:        math.Pi / 1.8,
		MinDistance:     6,
		MaxDistance:     14,
		AutoRotateSpeed: 0.5,
		SpringFrequency: 6,
		SpringDamping:   1,
		RotateSpeed:     2 * math.Pi / 800,
		ZoomStep:        0.95,
		IntroDistance:   14,
		IntroDuration:   2.5,
	}
}

// dollyAnim holds an active distance tween.
type dollyAnim struct {
	tween *gween.Tween
	done  bool
}

// Camera orbits Target on a sphere. Input moves goal angles; spring
// smoothing eases the current angles toward them each tick.
type Camera struct {
	Target   Vec3
	FOV      float64
	Near     float64
	Far      float64
	Viewport Rect

	// AutoRotate spins the goal azimuth at AutoRotateSpeed.
	AutoRotate bool

	cfg CameraConfig

	azimuth, polar, distance             float64
	azimuthVel, polarVel, distanceVel    float64
	goalAzimuth, goalPolar, goalDistance float64
	spring                               harmonica.Spring
	springDt                             float64

	dolly *dollyAnim

	view     Mat4
	proj     Mat4
	viewProj Mat4
	eye      Vec3
	dirty    bool
}

// newCamera creates a camera from cfg rendering into viewport. tps sets the
// initial spring step; update retunes it whenever the frame delta differs.
func newCamera(cfg CameraConfig, viewport Rect, tps int) *Camera {
	if tps <= 0 {
		tps = 60
	}
	c := &Camera{
		Target:   cfg.Target,
		FOV:      cfg.FOV,
		Near:     cfg.Near,
		Far:      cfg.Far,
		Viewport: viewport,
		cfg:      cfg,
		spring:   harmonica.NewSpring(harmonica.FPS(tps), cfg.SpringFrequency, cfg.SpringDamping),
		springDt: harmonica.FPS(tps),
		dirty:    true,
	}
	off := cfg.Position.Sub(cfg.Target)
	c.distance = off.Len()
	if c.distance > 0 {
		c.polar = math.Acos(clampRange(off.Y/c.distance, -1, 1))
	}
	c.azimuth = math.Atan2(off.X, off.Z)
	c.goalAzimuth, c.goalPolar, c.goalDistance = c.azimuth, c.polar, c.distance
	c.clampGoals()
	c.azimuth, c.polar, c.distance = c.goalAzimuth, c.goalPolar, c.goalDistance
	return c
}

// Orbit rotates the goal by the given azimuth and polar deltas in radians.
func (c *Camera) Orbit(dAzimuth, dPolar float64) {
	c.goalAzimuth += dAzimuth
	c.goalPolar += dPolar
	c.clampGoals()
}

// OrbitPixels rotates the goal from a pointer drag measured in pixels.
func (c *Camera) OrbitPixels(dx, dy float64) {
	c.Orbit(-dx*c.cfg.RotateSpeed, -dy*c.cfg.RotateSpeed)
}

// Zoom scales the goal distance by factor and clamps it to the configured range.
// Cancels a running dolly.
func (c *Camera) Zoom(factor float64) {
	if factor <= 0 {
		return
	}
	c.dolly = nil
	c.goalDistance *= factor
	c.clampGoals()
}

// ZoomSteps zooms by wheel notches; positive steps move closer.
func (c *Camera) ZoomSteps(steps float64) {
	c.Zoom(math.Pow(c.cfg.ZoomStep, steps))
}

// DollyTo animates the goal distance to d over duration seconds.
func (c *Camera) DollyTo(d float64, duration float32, easeFn ease.TweenFunc) {
	if easeFn == nil {
		easeFn = ease.OutCubic
	}
	d = clampRange(d, c.cfg.MinDistance, c.cfg.MaxDistance)
	c.dolly = &dollyAnim{tween: gween.New(float32(c.goalDistance), float32(d), duration, easeFn)}
}

// SetDistance jumps both the current and goal distance to d.
func (c *Camera) SetDistance(d float64) {
	c.goalDistance = d
	c.clampGoals()
	c.distance = c.goalDistance
	c.distanceVel = 0
	c.dirty = true
}

// Distance returns the current (smoothed) distance from the target.
func (c *Camera) Distance() float64 { return c.distance }

// GoalDistance returns the distance the camera is easing toward.
func (c *Camera) GoalDistance() float64 { return c.goalDistance }

// Azimuth returns the current azimuth in radians.
func (c *Camera) Azimuth() float64 { return c.azimuth }

// Polar returns the current polar angle from +Y in radians.
func (c *Camera) Polar() float64 { return c.polar }

// Dollying reports whether a DollyTo animation is running.
func (c *Camera) Dollying() bool { return c.dolly != nil }

func (c *Camera) clampGoals() {
	c.goalPolar = clampRange(c.goalPolar, c.cfg.MinPolar, c.cfg.MaxPolar)
	c.goalDistance = clampRange(c.goalDistance, c.cfg.MinDistance, c.cfg.MaxDistance)
}

// update advances auto-rotation, the dolly tween, and the springs. Called
// from Scene.Update.
func (c *Camera) update(dt float32) {
	if c.AutoRotate {
		c.goalAzimuth -= 2 * math.Pi / 60 * c.cfg.AutoRotateSpeed * float64(dt)
	}

	if c.dolly != nil {
		val, done := c.dolly.tween.Update(dt)
		c.goalDistance = float64(val)
		c.dolly.done = done
		if done {
			c.dolly = nil
		}
	}

	if dt <= 0 {
		return
	}
	// harmonica bakes the step into its coefficients.
	if step := float64(dt); step != c.springDt {
		c.spring = harmonica.NewSpring(step, c.cfg.SpringFrequency, c.cfg.SpringDamping)
		c.springDt = step
	}

	prevA, prevP, prevD := c.azimuth, c.polar, c.distance
	c.azimuth, c.azimuthVel = c.spring.Update(c.azimuth, c.azimuthVel, c.goalAzimuth)
	c.polar, c.polarVel = c.spring.Update(c.polar, c.polarVel, c.goalPolar)
	c.distance, c.distanceVel = c.spring.Update(c.distance, c.distanceVel, c.goalDistance)

	// Springs may overshoot slightly; the hard limits still hold.
	c.polar = clampRange(c.polar, c.cfg.MinPolar, c.cfg.MaxPolar)
	c.distance = clampRange(c.distance, c.cfg.MinDistance, c.cfg.MaxDistance)

	if c.azimuth != prevA || c.polar != prevP || c.distance != prevD {
		c.dirty = true
	}
}

// Eye returns the camera's world position.
func (c *Camera) Eye() Vec3 {
	c.computeMatrices()
	return c.eye
}

func (c *Camera) computeMatrices() {
	if !c.dirty {
		return
	}
	c.dirty = false
	sp, cp := math.Sincos(c.polar)
	sa, ca := math.Sincos(c.azimuth)
	c.eye = c.Target.Add(Vec3{c.distance * sp * sa, c.distance * cp, c.distance * sp * ca})
	c.view = LookAtView(c.eye, c.Target, Vec3{0, 1, 0})
	aspect := 1.0
	if c.Viewport.Height > 0 {
		aspect = c.Viewport.Width / c.Viewport.Height
	}
	c.proj = Perspective(c.FOV*math.Pi/180, aspect, c.Near, c.Far)
	c.viewProj = c.proj.Mul(c.view)
}

// ViewMatrix returns the world-to-view matrix.
func (c *Camera) ViewMatrix() Mat4 {
	c.computeMatrices()
	return c.view
}

// ViewProjection returns projection * view.
func (c *Camera) ViewProjection() Mat4 {
	c.computeMatrices()
	return c.viewProj
}

// MarkDirty forces a recomputation of the view matrices.
func (c *Camera) MarkDirty() {
	c.dirty = true
}

// WorldToScreen projects a world point into viewport pixels. ok is false
// for points behind the near plane. depth is the view-space distance along
// the viewing direction.
func (c *Camera) WorldToScreen(p Vec3) (sx, sy, depth float64, ok bool) {
	c.computeMatrices()
	ndc, w := c.viewProj.Project(p)
	if w < c.Near {
		return 0, 0, w, false
	}
	sx, sy = c.ndcToScreen(ndc.X, ndc.Y)
	return sx, sy, w, true
}

func (c *Camera) ndcToScreen(x, y float64) (float64, float64) {
	return c.Viewport.X + (x+1)/2*c.Viewport.Width,
		c.Viewport.Y + (1-y)/2*c.Viewport.Height
}

// PixelsPerUnit returns how many viewport pixels one world unit spans at the
// given view depth.
func (c *Camera) PixelsPerUnit(depth float64) float64 {
	if depth <= 0 {
		return 0
	}
	return c.Viewport.Height / (2 * math.Tan(c.FOV*math.Pi/360) * depth)
}

func clampRange(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// PlayIntro jumps to the configured intro distance and dollies back to the
// current goal. Does nothing when no intro is configured.
func (c *Camera) PlayIntro() {
	if c.cfg.IntroDuration <= 0 || c.cfg.IntroDistance <= 0 {
		return
	}
	goal := c.goalDistance
	c.SetDistance(c.cfg.IntroDistance)
	c.DollyTo(goal, float32(c.cfg.IntroDuration), ease.OutCubic)
}
