package ecs

import (
	"github.com/phanxgames/arix"

	"github.com/yohamta/donburi"
	"github.com/yohamta/donburi/features/events"
)

// InteractionEventType is the Donburi event type for arix scene events.
var InteractionEventType = events.NewEventType[arix.InteractionEvent]()

type donburiStore struct {
	world donburi.World
}

// NewDonburiStore creates an EntityStore backed by a Donburi world.
// Events are queued on InteractionEventType and delivered by
// ProcessEvents or events.ProcessAllEvents.
func NewDonburiStore(world donburi.World) arix.EntityStore {
	return &donburiStore{world: world}
}

func (s *donburiStore) EmitEvent(event arix.InteractionEvent) {
	InteractionEventType.Publish(s.world, event)
}
