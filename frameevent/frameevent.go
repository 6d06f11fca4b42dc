// Package frameevent carries per-frame input state changes from the
// main thread to the script worker.
//
// The channel replaces any synchronous "read input state" API: the main
// thread pushes key, mouse button, and cursor events as they happen,
// and the script side drains them once per update and maintains its own
// input state. No cross-thread reads remain.
package frameevent

import "github.com/lixenwraith/helix/ring"

// Type discriminates the event variants.
type Type uint8

const (
	KeyDown Type = iota
	KeyUp
	MouseButtonDown
	MouseButtonUp
	CursorUpdate
)

// String returns the wire name used in the script-facing JSON drain.
func (t Type) String() string {
	switch t {
	case KeyDown:
		return "keyDown"
	case KeyUp:
		return "keyUp"
	case MouseButtonDown:
		return "mouseButtonDown"
	case MouseButtonUp:
		return "mouseButtonUp"
	case CursorUpdate:
		return "cursorUpdate"
	default:
		return "unknown"
	}
}

// Event is a compact input record. KeyCode is meaningful for key and
// mouse button variants; the cursor fields for CursorUpdate.
type Event struct {
	Type    Type
	KeyCode int32
	X, Y    float32 // Cursor position
	DX, DY  float32 // Cursor delta since last frame
}

// Key builds a key or mouse button event.
func Key(t Type, code int32) Event {
	return Event{Type: t, KeyCode: code}
}

// Cursor builds the per-frame cursor update.
func Cursor(x, y, dx, dy float32) Event {
	return Event{Type: CursorUpdate, X: x, Y: y, DX: dx, DY: dy}
}

// DefaultQueueCapacity is generous for typical input rates.
const DefaultQueueCapacity = 256

// Queue is the SPSC frame-event channel.
//
// Producer: main thread (OS input handlers and the per-frame input
// tick). Consumer: script worker.
type Queue struct {
	*ring.Ring[Event]
}

// NewQueue creates a frame-event queue with the given capacity.
func NewQueue(capacity int) (*Queue, error) {
	r, err := ring.New[Event](capacity, ring.WarnHooks[Event]{Name: "FrameEventQueue"})
	if err != nil {
		return nil, err
	}
	return &Queue{Ring: r}, nil
}
