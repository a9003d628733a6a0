package main

import (
	"testing"

	"github.com/phanxgames/arix"
	"github.com/phanxgames/arix/ecs"

	"github.com/yohamta/donburi"
)

func TestStatusSummaryFollowsEvents(t *testing.T) {
	world := donburi.NewWorld()
	tracker := ecs.NewStatusTracker(world)
	store := ecs.NewDonburiStore(world)

	store.EmitEvent(arix.InteractionEvent{Type: arix.EventClick, Target: arix.OverlayButtonID})
	store.EmitEvent(arix.InteractionEvent{Type: arix.EventToggle, Assembled: true})
	store.EmitEvent(arix.InteractionEvent{Type: arix.EventMorphSettled, Assembled: true})
	store.EmitEvent(arix.InteractionEvent{Type: arix.EventScreenshot, Label: "shot.png"})
	ecs.InteractionEventType.ProcessEvents(world)

	got := statusSummary(tracker.Status())
	want := "assembled=true settled=true toggles=1 clicks=1 screenshots=1"
	if got != want {
		t.Errorf("statusSummary = %q, want %q", got, want)
	}
}

func TestStatusSummaryZero(t *testing.T) {
	got := statusSummary(ecs.MorphStatusData{})
	want := "assembled=false settled=false toggles=0 clicks=0 screenshots=0"
	if got != want {
		t.Errorf("statusSummary = %q, want %q", got, want)
	}
}
