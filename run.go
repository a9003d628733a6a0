package arix

import (
	"errors"

	"github.com/hajimehoshi/ebiten/v2"
)

// RunConfig configures the window opened by Run.
type RunConfig struct {
	Title     string
	Width     int
	Height    int
	Resizable bool
	TPS       int
	// ShowFPS adds an FPSWidget layer on top of the scene's layers.
	ShowFPS bool
	// Hotkeys binds F12 to a screenshot and F3 to the FPS widget.
	Hotkeys bool
	// OnExit runs once after the loop ends.
	OnExit func()
}

// game adapts a Scene to ebiten.Game.
type game struct {
	scene *Scene
}

func (g *game) Update() error {
	g.scene.Update()
	if r := g.scene.testRunner; r != nil && r.Done() && len(g.scene.screenshotQueue) == 0 {
		return ebiten.Termination
	}
	return nil
}

func (g *game) Draw(screen *ebiten.Image) {
	g.scene.Draw(screen)
}

func (g *game) Layout(outsideWidth, outsideHeight int) (int, int) {
	g.scene.Resize(outsideWidth, outsideHeight)
	return outsideWidth, outsideHeight
}

// Run opens a window and runs s until the window closes or an attached test
// runner finishes. ebiten.Termination is not reported as an error.
func Run(s *Scene, cfg RunConfig) error {
	if cfg.Width <= 0 || cfg.Height <= 0 {
		def := DefaultSceneConfig()
		cfg.Width, cfg.Height = def.Width, def.Height
	}
	ebiten.SetWindowTitle(cfg.Title)
	ebiten.SetWindowSize(cfg.Width, cfg.Height)
	if cfg.Resizable {
		ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	}
	if cfg.TPS > 0 {
		ebiten.SetTPS(cfg.TPS)
	}

	fps := NewFPSWidget(s)
	fps.Visible = cfg.ShowFPS
	s.AddLayer(fps)
	if cfg.Hotkeys {
		s.BindKey(ebiten.KeyF3, fps.Toggle)
		s.BindKey(ebiten.KeyF12, func() { s.Screenshot("manual") })
	}

	s.Resize(cfg.Width, cfg.Height)
	err := ebiten.RunGame(&game{scene: s})
	if cfg.OnExit != nil {
		cfg.OnExit()
	}
	if errors.Is(err, ebiten.Termination) {
		return nil
	}
	return err
}
