package game

import (
	"github.com/hajimehoshi/ebiten/v2"

	"github.com/phanxgames/zammi"
)

// Action is a logical input bound to one or more keys.
type Action uint8

const (
	ActionLeft Action = iota
	ActionRight
	ActionUp
	ActionDown
	ActionAdvance    // page a dialogue
	ActionRestart    // replay a lost minigame
	ActionBack       // leave a challenge or cutscene
	ActionDebug      // toggle the debug overlay
	ActionScreenshot // capture the next frame
	actionCount
)

var actionNames = [actionCount]string{
	"left", "right", "up", "down", "advance", "restart", "back", "debug", "screenshot",
}

func (a Action) String() string {
	if a < actionCount {
		return actionNames[a]
	}
	return "unknown"
}

// ParseAction looks up an action by name.
func ParseAction(name string) (Action, bool) {
	for i, n := range actionNames {
		if n == name {
			return Action(i), true
		}
	}
	return 0, false
}

var keyBindings = [actionCount][]ebiten.Key{
	ActionLeft:       {ebiten.KeyA, ebiten.KeyArrowLeft},
	ActionRight:      {ebiten.KeyD, ebiten.KeyArrowRight},
	ActionUp:         {ebiten.KeyW, ebiten.KeyArrowUp},
	ActionDown:       {ebiten.KeyS, ebiten.KeyArrowDown},
	ActionAdvance:    {ebiten.KeySpace},
	ActionRestart:    {ebiten.KeyR},
	ActionBack:       {ebiten.KeyEscape},
	ActionDebug:      {ebiten.KeyF3},
	ActionScreenshot: {ebiten.KeyF12},
}

// MouseButton identifies a mouse button.
type MouseButton uint8

const (
	MouseButtonLeft  MouseButton = iota // primary (left) mouse button
	MouseButtonRight                    // secondary (right) mouse button
)

// Click is a completed press and release.
type Click struct {
	Pos    zammi.Vec2
	Button MouseButton
}

// InputState is one frame's input.
type InputState struct {
	held    [actionCount]bool
	pressed [actionCount]bool

	Cursor zammi.Vec2
	// Click is set on the frame a pointer button is released.
	Click *Click
}

// Held reports whether a is down this frame.
func (s InputState) Held(a Action) bool { return s.held[a] }

// Pressed reports whether a went down this frame.
func (s InputState) Pressed(a Action) bool { return s.pressed[a] }

// syntheticPointerEvent represents a single injected pointer event in
// screen coordinates.
type syntheticPointerEvent struct {
	x, y    float64
	pressed bool
	button  MouseButton
}

// syntheticKeyEvent sets the injected state of one action for one frame.
type syntheticKeyEvent struct {
	action Action
	down   bool
}

// Input merges device input with injected events. Injected events are
// consumed one per frame; while a pointer event is queued real mouse input
// is skipped.
type Input struct {
	// Live enables reading the keyboard and mouse through ebiten.
	Live bool

	pointerQueue []syntheticPointerEvent
	keyQueue     []syntheticKeyEvent
	injected     [actionCount]bool
	prevHeld     [actionCount]bool

	down   bool
	button MouseButton
}

// NewInput returns an input reader. Live input is disabled for headless use.
func NewInput(live bool) *Input {
	return &Input{Live: live}
}

// Pending reports whether injected events are still queued.
func (in *Input) Pending() bool {
	return len(in.pointerQueue) > 0 || len(in.keyQueue) > 0
}

// InjectPress queues a pointer press at the given screen coordinates.
func (in *Input) InjectPress(x, y float64, button MouseButton) {
	in.pointerQueue = append(in.pointerQueue, syntheticPointerEvent{x: x, y: y, pressed: true, button: button})
}

// InjectRelease queues a pointer release at the given screen coordinates.
func (in *Input) InjectRelease(x, y float64, button MouseButton) {
	in.pointerQueue = append(in.pointerQueue, syntheticPointerEvent{x: x, y: y, button: button})
}

// InjectClick queues a press followed by a release at the same screen
// coordinates. Consumes two frames.
func (in *Input) InjectClick(x, y float64, button MouseButton) {
	in.InjectPress(x, y, button)
	in.InjectRelease(x, y, button)
}

// InjectKeyHold holds a for the given number of frames, then releases it.
// Consumes frames+1 frames; frames below one tap the key.
func (in *Input) InjectKeyHold(a Action, frames int) {
	frames = max(frames, 1)
	for i := 0; i < frames; i++ {
		in.keyQueue = append(in.keyQueue, syntheticKeyEvent{action: a, down: true})
	}
	in.keyQueue = append(in.keyQueue, syntheticKeyEvent{action: a})
}

// InjectKeyTap presses and releases a. Consumes two frames.
func (in *Input) InjectKeyTap(a Action) {
	in.InjectKeyHold(a, 1)
}

// Poll builds this frame's input state.
func (in *Input) Poll() InputState {
	var st InputState

	if len(in.keyQueue) > 0 {
		ev := in.keyQueue[0]
		copy(in.keyQueue, in.keyQueue[1:])
		in.keyQueue = in.keyQueue[:len(in.keyQueue)-1]
		in.injected[ev.action] = ev.down
	}
	for a := Action(0); a < actionCount; a++ {
		held := in.injected[a]
		if !held && in.Live {
			for _, k := range keyBindings[a] {
				if ebiten.IsKeyPressed(k) {
					held = true
					break
				}
			}
		}
		st.held[a] = held
		st.pressed[a] = held && !in.prevHeld[a]
	}
	in.prevHeld = st.held

	if !in.processInjectedPointer(&st) && in.Live {
		in.processMousePointer(&st)
	}
	return st
}

// processInjectedPointer pops one queued pointer event. Returns true if an
// event was consumed.
func (in *Input) processInjectedPointer(st *InputState) bool {
	if len(in.pointerQueue) == 0 {
		return false
	}
	ev := in.pointerQueue[0]
	copy(in.pointerQueue, in.pointerQueue[1:])
	in.pointerQueue = in.pointerQueue[:len(in.pointerQueue)-1]
	in.processPointer(st, ev.x, ev.y, ev.pressed, ev.button)
	return true
}

func (in *Input) processMousePointer(st *InputState) {
	mx, my := ebiten.CursorPosition()
	left := ebiten.IsMouseButtonPressed(ebiten.MouseButtonLeft)
	right := ebiten.IsMouseButtonPressed(ebiten.MouseButtonRight)

	// Keep the button captured at press time until release.
	button := in.button
	if !in.down {
		button = MouseButtonLeft
		if !left && right {
			button = MouseButtonRight
		}
	}
	in.processPointer(st, float64(mx), float64(my), left || right, button)
}

// processPointer runs the press/release state machine for the pointer.
func (in *Input) processPointer(st *InputState, x, y float64, pressed bool, button MouseButton) {
	st.Cursor = zammi.Vec2{X: x, Y: y}
	switch {
	case pressed && !in.down:
		in.down = true
		in.button = button
	case !pressed && in.down:
		in.down = false
		st.Click = &Click{Pos: st.Cursor, Button: in.button}
	}
}
