package ecs

import (
	"github.com/phanxgames/arix"

	"github.com/yohamta/donburi"
)

// MorphStatusData mirrors the tree state as seen through scene events.
type MorphStatusData struct {
	Assembled   bool
	Settled     bool
	Toggles     int
	Clicks      int
	Screenshots []string
}

// MorphStatus is the component holding MorphStatusData.
var MorphStatus = donburi.NewComponentType[MorphStatusData]()

// StatusTracker owns one entity carrying MorphStatus and keeps it current
// from InteractionEventType.
type StatusTracker struct {
	world  donburi.World
	entity donburi.Entity
}

// NewStatusTracker creates the status entity in world and subscribes to
// scene events.
func NewStatusTracker(world donburi.World) *StatusTracker {
	st := &StatusTracker{world: world, entity: world.Create(MorphStatus)}
	InteractionEventType.Subscribe(world, st.handle)
	return st
}

func (st *StatusTracker) handle(w donburi.World, e arix.InteractionEvent) {
	if !w.Valid(st.entity) {
		return
	}
	s := MorphStatus.Get(w.Entry(st.entity))
	switch e.Type {
	case arix.EventToggle:
		s.Assembled = e.Assembled
		s.Settled = false
		s.Toggles++
	case arix.EventMorphSettled:
		s.Assembled = e.Assembled
		s.Settled = true
	case arix.EventClick:
		s.Clicks++
	case arix.EventScreenshot:
		s.Screenshots = append(s.Screenshots, e.Label)
	}
}

// Status returns a copy of the current status.
func (st *StatusTracker) Status() MorphStatusData {
	if !st.world.Valid(st.entity) {
		return MorphStatusData{}
	}
	return *MorphStatus.Get(st.world.Entry(st.entity))
}

// Entity returns the status entity.
func (st *StatusTracker) Entity() donburi.Entity {
	return st.entity
}
