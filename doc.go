// Package arix renders a morphing holiday tree with [Ebitengine].
//
// Thousands of needles and ornaments drift between a scattered cloud and an
// assembled cone. Each instance carries two poses; a damped progress value
// per group blends between them every frame, and the resulting matrices are
// drawn as shaded, depth-sorted triangles.
//
// # Quick start
//
// [DefaultConfig] reproduces the full scene. [NewTree] builds it into a
// [Scene] and [Run] opens the window:
//
//	cfg := arix.DefaultConfig()
//	scene := arix.NewScene(cfg.Scene, cfg.Camera)
//	tree, err := arix.NewTree(scene, cfg, nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	tf, _ := arix.LoadGoFonts()
//	tree.AttachOverlay(arix.NewOverlay(tf, arix.DefaultOverlayPalette()))
//	arix.Run(scene, arix.RunConfig{Title: cfg.Window.Title, Hotkeys: true})
//
// For full control, implement [ebiten.Game] yourself and call
// [Scene.Update] and [Scene.Draw] directly.
//
// # Morphing
//
// [GeneratorParams.Generate] produces the paired poses of one group.
// [MorphState] damps progress toward 0 or 1 with [Damp], and
// [DriveInstances] writes one matrix per instance into an [InstanceBuffer].
// The [Topper] follows the same rule with its own rate.
//
// # Scene graph
//
// Nodes form a tree rooted at [Scene.Root]. [NewContainer] groups,
// [NewMeshNode] draws a single mesh, [NewInstanced] draws one mesh per
// buffer matrix and [NewPoints] draws a [PointField].
//
// # Interaction
//
// The [Camera] orbits on drag, zooms on the wheel or a pinch and eases on
// harmonica springs. Screen layers such as the [Overlay] receive hit tests
// before the 3D view. Events reach an optional [EntityStore]; the ecs
// subpackage forwards them into a [Donburi] world.
//
// [Ebitengine]: https://ebitengine.org
// [Donburi]: https://github.com/yohamta/donburi
package arix
