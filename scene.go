package arix

import (
	"image"
	"log"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
)

// EntityStore is the interface for optional ECS integration.
// When set on a Scene, interaction events are forwarded to the ECS.
type EntityStore interface {
	EmitEvent(event InteractionEvent)
}

// InteractionEvent carries interaction data for the ECS bridge.
type InteractionEvent struct {
	Type   EventType
	Target uint32 // overlay element under the pointer, 0 for the 3D view
	X      float64
	Y      float64
	Button MouseButton
	// Drag fields (valid for EventDragStart, EventDragEnd)
	StartX float64
	StartY float64
	DeltaX float64
	DeltaY float64
	// Assembled is the target state after an EventToggle or EventMorphSettled.
	Assembled bool
	// Label names the screenshot for EventScreenshot.
	Label string
}

// Layer is a screen-space surface drawn over the 3D view after post
// processing. The overlay and the FPS widget are layers.
type Layer interface {
	Update(dt float64)
	Draw(dst *ebiten.Image)
	// HitTest returns the id of the interactive element at (x, y), or 0.
	HitTest(x, y float64) uint32
	// SetHover tells the layer which element the pointer rests on.
	SetHover(id uint32)
}

// SceneConfig controls the render surface.
type SceneConfig struct {
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	Background string `yaml:"background"`
	AntiAlias  bool   `yaml:"anti_alias"`
}

// DefaultSceneConfig returns a 1280x720 deep green surface without anti-aliasing.
func DefaultSceneConfig() SceneConfig {
	return SceneConfig{Width: 1280, Height: 720, Background: "#011A11"}
}

const defaultCommandCap = 4096

// Scene is the top-level object that owns the node tree, the camera, the
// light rig, input state, and render buffers.
type Scene struct {
	root     *Node
	store    EntityStore
	debug    bool
	camera   *Camera
	lighting *Lighting
	glow     *GlowLayer
	layers   []Layer

	background Color
	antiAlias  bool
	elapsed    float64
	updateFn   func(Frame)

	// Render state
	commands   []RenderCommand
	sortBuf    []RenderCommand
	batchVerts []ebiten.Vertex
	batchInds  []uint32
	projBuf    []projected
	stats      frameStats

	// Offscreen frame and post processing
	frame   *RenderTexture
	filters []Filter
	rtPool  renderTexturePool

	// Input state
	handlers     handlerRegistry
	pointer      pointerState
	dragDeadZone float64
	touchID      ebiten.TouchID
	touchActive  bool
	prevTouchIDs []ebiten.TouchID
	pinch        pinchState
	keys         []KeyBinding

	injectQueue     []syntheticPointerEvent
	testRunner      *TestRunner
	actions         map[string]func()
	screenshotQueue []string

	// ScreenshotDir is the directory PNG screenshots are written to.
	ScreenshotDir string
}

// NewScene creates a scene with a pre-created root container, an orbit camera
// built from camCfg, and an empty light rig.
func NewScene(cfg SceneConfig, camCfg CameraConfig) *Scene {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultSceneConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	bg, err := Hex(cfg.Background)
	if err != nil {
		bg = Color{0, 0, 0, 1}
	}
	viewport := Rect{Width: float64(cfg.Width), Height: float64(cfg.Height)}
	s := &Scene{
		root:          NewContainer("root"),
		camera:        newCamera(camCfg, viewport, ebiten.DefaultTPS),
		lighting:      NewLighting(),
		background:    bg,
		antiAlias:     cfg.AntiAlias,
		commands:      make([]RenderCommand, 0, defaultCommandCap),
		sortBuf:       make([]RenderCommand, 0, defaultCommandCap),
		dragDeadZone:  defaultDragDeadZone,
		ScreenshotDir: "screenshots",
	}
	s.glow = newGlowLayer(s.camera)
	return s
}

// Root returns the scene's root container node.
func (s *Scene) Root() *Node {
	return s.root
}

// Camera returns the scene's orbit camera.
func (s *Scene) Camera() *Camera {
	return s.camera
}

// Lighting returns the scene's light rig.
func (s *Scene) Lighting() *Lighting {
	return s.lighting
}

// Glow returns the additive halo layer drawn before post processing.
func (s *Scene) Glow() *GlowLayer {
	return s.glow
}

// Elapsed returns the scene clock in seconds.
func (s *Scene) Elapsed() float64 {
	return s.elapsed
}

// SetUpdateFunc registers fn to run once per Update with the frame's delta
// and the scene clock. Passing nil removes it.
func (s *Scene) SetUpdateFunc(fn func(Frame)) {
	s.updateFn = fn
}

// AddLayer appends a screen-space layer. Later layers draw on top and
// receive hit tests first.
func (s *Scene) AddLayer(l Layer) {
	s.layers = append(s.layers, l)
}

// RemoveLayer removes l if present.
func (s *Scene) RemoveLayer(l Layer) {
	for i, x := range s.layers {
		if x == l {
			s.layers = append(s.layers[:i], s.layers[i+1:]...)
			return
		}
	}
}

// SetFilters replaces the full-frame post processing chain.
func (s *Scene) SetFilters(filters ...Filter) {
	s.filters = filters
}

// Filters returns the post processing chain. The returned slice MUST NOT be mutated.
func (s *Scene) Filters() []Filter {
	return s.filters
}

// Resize changes the render surface and the camera viewport.
func (s *Scene) Resize(w, h int) {
	if w <= 0 || h <= 0 {
		return
	}
	vp := Rect{Width: float64(w), Height: float64(h)}
	if s.camera.Viewport == vp {
		return
	}
	s.camera.Viewport = vp
	s.camera.MarkDirty()
	if s.frame != nil {
		s.frame.Resize(w, h)
	}
}

// Update processes input, runs the update function, advances node callbacks
// and the camera, and refreshes world transforms.
func (s *Scene) Update() {
	s.step(1.0 / float64(ebiten.TPS()))
}

// step advances the scene by dt seconds.
func (s *Scene) step(dt float64) {
	s.elapsed += dt
	frame := Frame{Delta: dt, Elapsed: s.elapsed}

	if s.testRunner != nil {
		s.testRunner.step(s)
	}
	s.processInput()

	if s.updateFn != nil {
		s.updateFn(frame)
	}
	updateNodes(s.root, dt)
	s.camera.update(float32(dt))
	updateWorldTransform(s.root, Identity(), 1.0, false)
	s.glow.update()
	for _, l := range s.layers {
		l.Update(dt)
	}
}

// Draw renders the 3D view into an offscreen frame, applies the post
// processing chain, composites it onto screen, then draws the layers.
func (s *Scene) Draw(screen *ebiten.Image) {
	b := screen.Bounds()
	s.Resize(b.Dx(), b.Dy())
	if s.frame == nil {
		s.frame = NewRenderTexture(b.Dx(), b.Dy())
	}

	s.frame.Fill(s.background)
	target := s.frame.Image()
	s.render(target)
	s.glow.Draw(target)

	result := applyFilters(s.filters, target, &s.rtPool)
	var op ebiten.DrawImageOptions
	op.GeoM.Translate(float64(b.Min.X), float64(b.Min.Y))
	screen.DrawImage(result, &op)
	if result != target {
		s.rtPool.Release(result)
	}

	for _, l := range s.layers {
		l.Draw(screen)
	}
	s.flushScreenshots(screen)
}

// render draws the node tree from the camera into target.
func (s *Scene) render(target *ebiten.Image) {
	s.commands = s.commands[:0]
	s.stats = frameStats{}

	var t0 time.Time
	if s.debug {
		t0 = time.Now()
	}

	// Transforms are normally refreshed in Update; this covers edits made
	// between Update and Draw.
	updateWorldTransform(s.root, Identity(), 1.0, false)
	treeOrder := 0
	s.traverse(s.root, s.camera.ViewMatrix(), &treeOrder)

	if s.debug {
		s.stats.traverseTime = time.Since(t0)
		t0 = time.Now()
	}

	s.mergeSort()

	if s.debug {
		s.stats.sortTime = time.Since(t0)
		s.stats.commandCount = len(s.commands)
		t0 = time.Now()
	}

	vp := s.camera.Viewport
	sub := target.SubImage(image.Rect(int(vp.X), int(vp.Y), int(vp.X+vp.Width), int(vp.Y+vp.Height))).(*ebiten.Image)
	s.submitBatches(sub)

	if s.debug {
		s.stats.submitTime = time.Since(t0)
		s.debugLog(s.stats)
	}
}

// SetEntityStore sets the optional ECS bridge.
func (s *Scene) SetEntityStore(store EntityStore) {
	s.store = store
}

// Emit forwards evt to the entity store, if one is set.
func (s *Scene) Emit(evt InteractionEvent) {
	if s.store != nil {
		s.store.EmitEvent(evt)
	}
}

// SetDebugMode enables or disables debug mode. When enabled, disposed-node
// access panics, tree depth and child count warnings are logged, and per-frame
// timing stats are logged.
func (s *Scene) SetDebugMode(enabled bool) {
	s.debug = enabled
	globalDebug = enabled
}

// SetLogger replaces the package-wide diagnostics logger. It is shared by
// every Scene, so the last call wins regardless of which Scene made it.
// Passing nil restores the default stderr logger.
func (s *Scene) SetLogger(l *log.Logger) {
	if l == nil {
		l = defaultLogger()
	}
	logger = l
}

// globalDebug mirrors the most recently set Scene debug flag so that node
// operations (which lack a Scene pointer) can check it cheaply. Only valid
// with a single Scene; multiple Scenes with differing debug modes will
// reflect whichever called SetDebugMode last.
var globalDebug bool
