// Package ecs bridges arix scene events into a [Donburi] world.
//
// [NewDonburiStore] publishes every [arix.InteractionEvent] (toggles, clicks,
// orbit drags, screenshots, settled morphs) as a typed Donburi event.
// Subscribe to [InteractionEventType] in your ECS systems to receive them, or
// use [NewStatusTracker] to mirror the tree state into a component.
//
// Usage:
//
//	world := donburi.NewWorld()
//	scene.SetEntityStore(ecs.NewDonburiStore(world))
//	status := ecs.NewStatusTracker(world)
//	// once per frame:
//	events.ProcessAllEvents(world)
//
// [Donburi]: https://github.com/yohamta/donburi
package ecs
