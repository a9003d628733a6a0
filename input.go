package arix

import (
	"math"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
)

// --- Constants ---

const defaultDragDeadZone = 4.0 // pixels

// --- Pointer state ---

type pointerState struct {
	down     bool
	startX   float64
	startY   float64
	lastX    float64
	lastY    float64
	hitID    uint32 // layer element under the pointer at press time
	hoverID  uint32 // element the pointer currently rests on
	dragging bool
	button   MouseButton // button captured at press time
}

// --- Pinch state ---

type pinchState struct {
	active   bool
	prevDist float64
}

// --- Callback contexts ---

// PointerContext describes a click.
type PointerContext struct {
	Target uint32 // layer element id, 0 for the 3D view
	X, Y   float64
	Button MouseButton
}

// DragContext describes a drag in progress. Drags that start on the 3D
// view orbit the camera.
type DragContext struct {
	X, Y           float64
	StartX, StartY float64
	DeltaX, DeltaY float64 // movement since the previous drag callback
	Button         MouseButton
}

// KeyBinding runs Action on the frame Key is first pressed.
type KeyBinding struct {
	Key    ebiten.Key
	Action func()
}

// --- Handler registry ---

type clickHandler struct {
	id uint32
	fn func(PointerContext)
}

type dragHandler struct {
	id uint32
	fn func(DragContext)
}

type handlerRegistry struct {
	click     []clickHandler
	dragStart []dragHandler
	drag      []dragHandler
	dragEnd   []dragHandler
	nextID    uint32
	noOrbit   bool
}

type handlerKind uint8

const (
	handlerClick handlerKind = iota
	handlerDragStart
	handlerDrag
	handlerDragEnd
)

// CallbackHandle identifies a registered callback so it can be removed.
type CallbackHandle struct {
	id   uint32
	reg  *handlerRegistry
	kind handlerKind
}

// Remove unregisters the callback. Safe to call more than once.
func (h CallbackHandle) Remove() {
	if h.reg == nil {
		return
	}
	switch h.kind {
	case handlerClick:
		h.reg.click = removeHandler(h.reg.click, func(c clickHandler) bool { return c.id == h.id })
	case handlerDragStart:
		h.reg.dragStart = removeHandler(h.reg.dragStart, func(d dragHandler) bool { return d.id == h.id })
	case handlerDragEnd:
		h.reg.dragEnd = removeHandler(h.reg.dragEnd, func(d dragHandler) bool { return d.id == h.id })
	case handlerDrag:
		h.reg.drag = removeHandler(h.reg.drag, func(d dragHandler) bool { return d.id == h.id })
	}
}

// removeHandler removes the first element matching match.
// Uses copy+zero to avoid retaining a dangling closure in the backing array.
func removeHandler[T any](s []T, match func(T) bool) []T {
	for i := range s {
		if match(s[i]) {
			copy(s[i:], s[i+1:])
			var zero T
			s[len(s)-1] = zero
			return s[:len(s)-1]
		}
	}
	return s
}

// OnClick registers fn for clicks on layer elements.
func (s *Scene) OnClick(fn func(PointerContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.click = append(s.handlers.click, clickHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, kind: handlerClick}
}

// OnDragStart registers fn for the start of a drag on the 3D view.
func (s *Scene) OnDragStart(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.dragStart = append(s.handlers.dragStart, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, kind: handlerDragStart}
}

// OnDrag registers fn for every movement of a drag on the 3D view.
func (s *Scene) OnDrag(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.drag = append(s.handlers.drag, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, kind: handlerDrag}
}

// OnDragEnd registers fn for the end of a drag on the 3D view.
func (s *Scene) OnDragEnd(fn func(DragContext)) CallbackHandle {
	s.handlers.nextID++
	id := s.handlers.nextID
	s.handlers.dragEnd = append(s.handlers.dragEnd, dragHandler{id: id, fn: fn})
	return CallbackHandle{id: id, reg: &s.handlers, kind: handlerDragEnd}
}

// BindKey runs action on the frame key is first pressed.
func (s *Scene) BindKey(key ebiten.Key, action func()) {
	s.keys = append(s.keys, KeyBinding{Key: key, Action: action})
}

// SetOrbitControls enables or disables drag-to-orbit, wheel and pinch zoom.
// Enabled by default.
func (s *Scene) SetOrbitControls(enabled bool) {
	s.handlers.noOrbit = !enabled
}

// SetDragDeadZone sets the distance in pixels a press must travel before it
// becomes a drag.
func (s *Scene) SetDragDeadZone(pixels float64) {
	s.dragDeadZone = pixels
}

// --- Hit testing ---

// hitTest returns the topmost layer element at (x, y), or 0.
func (s *Scene) hitTest(x, y float64) uint32 {
	for i := len(s.layers) - 1; i >= 0; i-- {
		if id := s.layers[i].HitTest(x, y); id != 0 {
			return id
		}
	}
	return 0
}

// --- Input processing ---

// processInput reads keys, the wheel, the mouse and touches (or one queued
// synthetic event) and dispatches them. Called once per Update.
func (s *Scene) processInput() {
	for _, kb := range s.keys {
		if inpututil.IsKeyJustPressed(kb.Key) && kb.Action != nil {
			kb.Action()
		}
	}

	if s.processInjectedInput() {
		return
	}

	if !s.handlers.noOrbit {
		if _, wy := ebiten.Wheel(); wy != 0 {
			s.camera.ZoomSteps(wy)
		}
	}

	touchIDs := ebiten.AppendTouchIDs(s.prevTouchIDs[:0])
	s.prevTouchIDs = touchIDs
	if len(touchIDs) > 0 || s.touchActive {
		s.processTouches(touchIDs)
		return
	}
	s.processMousePointer()
}

// processMousePointer feeds the cursor and mouse buttons through processPointer.
func (s *Scene) processMousePointer() {
	mx, my := ebiten.CursorPosition()

	var pressed bool
	var button MouseButton
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)
	middle := ebiten.IsMouseButtonPressed(ebiten.MouseButtonMiddle)

	if left || right || middle {
		pressed = true
		if left {
			button = MouseButtonLeft
		} else if right {
			button = MouseButtonRight
		} else {
			button = MouseButtonMiddle
		}
	}

	s.processPointer(float64(mx), float64(my), pressed, button)
}

// processTouches maps the first touch to the pointer and two touches to a
// pinch zoom.
func (s *Scene) processTouches(touchIDs []ebiten.TouchID) {
	switch {
	case len(touchIDs) >= 2:
		// A second finger turns any drag into a pinch without a click.
		s.pointer.down = false
		s.pointer.dragging = false
		ax, ay := ebiten.TouchPosition(touchIDs[0])
		bx, by := ebiten.TouchPosition(touchIDs[1])
		s.processPinch(math.Hypot(float64(bx-ax), float64(by-ay)))
		s.touchActive = true
	case len(touchIDs) == 1:
		s.pinch.active = false
		if !s.touchActive || s.touchID != touchIDs[0] {
			s.touchID = touchIDs[0]
		}
		s.touchActive = true
		tx, ty := ebiten.TouchPosition(s.touchID)
		s.processPointer(float64(tx), float64(ty), true, MouseButtonLeft)
	default:
		s.pinch.active = false
		s.touchActive = false
		if s.pointer.down {
			s.processPointer(s.pointer.lastX, s.pointer.lastY, false, MouseButtonLeft)
		}
	}
}

// processPinch zooms by the ratio of finger distances between frames.
func (s *Scene) processPinch(dist float64) {
	if !s.pinch.active {
		s.pinch.active = true
		s.pinch.prevDist = dist
		return
	}
	if dist > 0 && s.pinch.prevDist > 0 && !s.handlers.noOrbit {
		s.camera.Zoom(s.pinch.prevDist / dist)
	}
	s.pinch.prevDist = dist
}

// processPointer runs the press/drag/release state machine for one pointer
// sample in screen coordinates.
func (s *Scene) processPointer(x, y float64, pressed bool, button MouseButton) {
	ps := &s.pointer

	target := s.hitTest(x, y)
	if ps.dragging {
		target = 0
	}
	if target != ps.hoverID {
		ps.hoverID = target
		for _, l := range s.layers {
			l.SetHover(target)
		}
	}

	switch {
	case pressed && !ps.down:
		ps.down = true
		ps.button = button
		ps.startX, ps.startY = x, y
		ps.lastX, ps.lastY = x, y
		ps.hitID = target
		ps.dragging = false

	case !pressed && ps.down:
		if ps.dragging {
			s.fireDragEnd(x, y, ps)
		} else if ps.hitID != 0 && ps.hitID == target {
			s.fireClick(target, x, y, ps.button)
		}
		ps.down = false
		ps.hitID = 0
		ps.dragging = false
		ps.lastX, ps.lastY = x, y

	case pressed && ps.down:
		if x != ps.lastX || y != ps.lastY {
			// Presses on layer elements never orbit.
			if !ps.dragging && ps.hitID == 0 {
				if math.Hypot(x-ps.startX, y-ps.startY) > s.dragDeadZone {
					ps.dragging = true
					s.fireDragStart(x, y, ps)
				}
			}
			if ps.dragging {
				s.fireDrag(x, y, ps)
			}
		}
		ps.lastX, ps.lastY = x, y

	default:
		ps.lastX, ps.lastY = x, y
	}
}

// --- Event dispatch ---

func (s *Scene) fireClick(target uint32, x, y float64, button MouseButton) {
	ctx := PointerContext{Target: target, X: x, Y: y, Button: button}
	for _, h := range s.handlers.click {
		h.fn(ctx)
	}
	s.Emit(InteractionEvent{Type: EventClick, Target: target, X: x, Y: y, Button: button})
}

func (s *Scene) fireDragStart(x, y float64, ps *pointerState) {
	ctx := DragContext{
		X: x, Y: y, StartX: ps.startX, StartY: ps.startY,
		DeltaX: x - ps.startX, DeltaY: y - ps.startY, Button: ps.button,
	}
	for _, h := range s.handlers.dragStart {
		h.fn(ctx)
	}
	s.Emit(InteractionEvent{
		Type: EventDragStart, X: x, Y: y, Button: ps.button,
		StartX: ps.startX, StartY: ps.startY, DeltaX: ctx.DeltaX, DeltaY: ctx.DeltaY,
	})
}

func (s *Scene) fireDrag(x, y float64, ps *pointerState) {
	ctx := DragContext{
		X: x, Y: y, StartX: ps.startX, StartY: ps.startY,
		DeltaX: x - ps.lastX, DeltaY: y - ps.lastY, Button: ps.button,
	}
	if !s.handlers.noOrbit {
		s.camera.OrbitPixels(ctx.DeltaX, ctx.DeltaY)
	}
	for _, h := range s.handlers.drag {
		h.fn(ctx)
	}
}

func (s *Scene) fireDragEnd(x, y float64, ps *pointerState) {
	ctx := DragContext{
		X: x, Y: y, StartX: ps.startX, StartY: ps.startY,
		DeltaX: x - ps.lastX, DeltaY: y - ps.lastY, Button: ps.button,
	}
	for _, h := range s.handlers.dragEnd {
		h.fn(ctx)
	}
	s.Emit(InteractionEvent{
		Type: EventDragEnd, X: x, Y: y, Button: ps.button,
		StartX: ps.startX, StartY: ps.startY, DeltaX: x - ps.startX, DeltaY: y - ps.startY,
	})
}
