// Command arix opens the holiday tree viewer.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/phanxgames/arix"
	"github.com/phanxgames/arix/ecs"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

const appName = "arix"

var (
	configPath     = flag.String("config", "", "YAML scene config (defaults built in)")
	scriptPath     = flag.String("script", "", "YAML or JSON test script; the viewer exits when it finishes")
	seedFlag       = flag.Uint64("seed", 0, "random seed, overrides the config seed when non-zero")
	showFPS        = flag.Bool("fps", false, "show the FPS widget")
	debugFlag      = flag.Bool("debug", false, "log per-frame render stats")
	screenshotDir  = flag.String("screenshots", "screenshots", "directory screenshots are written to")
	noPrefs        = flag.Bool("no-prefs", false, "do not read or write saved preferences")
	printConfig    = flag.Bool("print-config", false, "print the effective config as YAML and exit")
	assembledStart = flag.Bool("assembled", false, "start with the tree assembled")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "arix: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg := arix.DefaultConfig()
	if *configPath != "" {
		var err error
		if cfg, err = arix.LoadConfig(*configPath); err != nil {
			return err
		}
	}
	if *seedFlag != 0 {
		cfg.Seed = *seedFlag
	}
	if *printConfig {
		data, err := cfg.Marshal()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(data)
		return err
	}

	scene := arix.NewScene(cfg.Scene, cfg.Camera)
	scene.SetDebugMode(*debugFlag)
	scene.ScreenshotDir = *screenshotDir

	tree, err := arix.NewTree(scene, cfg, nil)
	if err != nil {
		return fmt.Errorf("build tree: %w", err)
	}

	tf, err := arix.LoadGoFonts()
	if err != nil {
		return fmt.Errorf("load fonts: %w", err)
	}
	tree.AttachOverlay(arix.NewOverlay(tf, arix.DefaultOverlayPalette()))

	var prefs *arix.PreferenceStore
	if *noPrefs || *scriptPath != "" {
		prefs = arix.NewPreferenceStore(nil)
	} else {
		prefs = arix.OpenPreferenceStore(appName)
	}
	p := prefs.Get()
	if p.CameraDistance > 0 {
		scene.Camera().SetDistance(p.CameraDistance)
	}
	if p.StartAssembled || *assembledStart {
		tree.SetAssembled(true)
	}

	world := donburi.NewWorld()
	scene.SetEntityStore(ecs.NewDonburiStore(world))
	tracker := ecs.NewStatusTracker(world)
	ecs.InteractionEventType.Subscribe(world, func(_ donburi.World, e arix.InteractionEvent) {
		switch e.Type {
		case arix.EventMorphSettled:
			if *debugFlag {
				fmt.Printf("settled %s\n", statusSummary(tracker.Status()))
			}
		case arix.EventScreenshot:
			fmt.Printf("screenshot %s\n", e.Label)
		}
	})
	scene.SetUpdateFunc(func(frame arix.Frame) {
		tree.Update(frame)
		events.ProcessAllEvents(world)
	})

	if *scriptPath != "" {
		runner, err := arix.LoadTestScriptFile(*scriptPath)
		if err != nil {
			return err
		}
		scene.SetTestRunner(runner)
	} else {
		scene.Camera().PlayIntro()
	}

	return arix.Run(scene, arix.RunConfig{
		Title:     cfg.Window.Title,
		Width:     cfg.Window.Width,
		Height:    cfg.Window.Height,
		Resizable: cfg.Window.Resizable,
		TPS:       cfg.Window.TPS,
		ShowFPS:   *showFPS || p.ShowFPS,
		Hotkeys:   true,
		OnExit: func() {
			if *debugFlag {
				fmt.Printf("exit %s\n", statusSummary(tracker.Status()))
			}
			prefs.Update(func(p *arix.Preferences) {
				p.StartAssembled = tree.Assembled()
				p.CameraDistance = scene.Camera().GoalDistance()
			})
		},
	})
}

// statusSummary formats the tracked morph status for debug output.
func statusSummary(st ecs.MorphStatusData) string {
	return fmt.Sprintf("assembled=%v settled=%v toggles=%d clicks=%d screenshots=%d",
		st.Assembled, st.Settled, st.Toggles, st.Clicks, len(st.Screenshots))
}
