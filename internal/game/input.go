package game

import "sync"

// Action identifies a player intent bound to a key.
type Action uint8

const (
	ActionForward Action = iota
	ActionBackward
	ActionLeft
	ActionRight
	ActionJump
	ActionSprint
	ActionShoot
	ActionReload
	ActionInteract
)

// InputSnapshot is a per-tick copy of aggregated player intent.
//
// MouseDX/MouseDY accumulate across device events and are only
// meaningful while pointer capture is active. They are NOT cleared
// automatically each tick: the consumer must call ClearMouseDelta after
// reading them. PointerX/PointerY hold absolute cursor coordinates and
// are only meaningful while pointer capture is inactive.
type InputSnapshot struct {
	Forward  bool
	Backward bool
	Left     bool
	Right    bool
	Jump     bool
	Sprint   bool
	Shoot    bool
	Reload   bool
	Interact bool

	MouseDX float64
	MouseDY float64

	PointerX float64
	PointerY float64

	PointerCaptured bool
}

// InputAggregator converts raw device events into tick snapshots.
// Event handlers may be called from the platform's input goroutine;
// Snapshot is called from the simulation tick.
type InputAggregator struct {
	mu   sync.Mutex
	snap InputSnapshot
}

// NewInputAggregator returns an aggregator with no intents set.
func NewInputAggregator() *InputAggregator {
	return &InputAggregator{}
}

// SetAction records a key press or release for the given action.
func (a *InputAggregator) SetAction(action Action, down bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	switch action {
	case ActionForward:
		a.snap.Forward = down
	case ActionBackward:
		a.snap.Backward = down
	case ActionLeft:
		a.snap.Left = down
	case ActionRight:
		a.snap.Right = down
	case ActionJump:
		a.snap.Jump = down
	case ActionSprint:
		a.snap.Sprint = down
	case ActionShoot:
		a.snap.Shoot = down
	case ActionReload:
		a.snap.Reload = down
	case ActionInteract:
		a.snap.Interact = down
	}
}

// HandleMouseMove records a pointer event. While captured, dx/dy
// accumulate into the pending delta; otherwise only the absolute
// position is tracked.
func (a *InputAggregator) HandleMouseMove(dx, dy, absX, absY float64) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.snap.PointerCaptured {
		a.snap.MouseDX += dx
		a.snap.MouseDY += dy
		return
	}
	a.snap.PointerX = absX
	a.snap.PointerY = absY
}

// SetPointerCapture switches between relative-delta and absolute
// coordinate mode. Entering capture discards any stale delta.
func (a *InputAggregator) SetPointerCapture(captured bool) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if captured && !a.snap.PointerCaptured {
		a.snap.MouseDX = 0
		a.snap.MouseDY = 0
	}
	a.snap.PointerCaptured = captured
}

// Snapshot returns an immutable copy of the current intent state.
func (a *InputAggregator) Snapshot() InputSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.snap
}

// ClearMouseDelta zeroes the accumulated mouse delta. Callers invoke
// this after consuming a snapshot's delta; deltas never reset on their
// own.
func (a *InputAggregator) ClearMouseDelta() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.snap.MouseDX = 0
	a.snap.MouseDY = 0
}

// Reset releases all held intents, e.g. when the window loses focus.
func (a *InputAggregator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	captured := a.snap.PointerCaptured
	a.snap = InputSnapshot{PointerCaptured: captured}
}
