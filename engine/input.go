package engine

import (
	"github.com/gdamore/tcell/v2"

	"github.com/lixenwraith/helix/frameevent"
)

// inputState tracks cursor position and button state between frames so
// the main thread can emit deltas and button transitions.
type inputState struct {
	cursorX, cursorY float32
	lastX, lastY     float32
	buttons          tcell.ButtonMask
	haveCursor       bool
}

// mouseButtons maps tcell buttons to wire codes in emission order.
var mouseButtons = []struct {
	mask tcell.ButtonMask
	code int32
}{
	{tcell.Button1, 0},
	{tcell.Button2, 1},
	{tcell.Button3, 2},
}

// HandleEvent translates one OS input event into frame events (main
// thread only). Key events produce a down/up pair: terminals report key
// presses, not releases, so a release follows each press immediately.
func (e *Engine) HandleEvent(ev tcell.Event) {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		code := keyCode(ev)
		e.pushFrameEvent(frameevent.Key(frameevent.KeyDown, code))
		e.pushFrameEvent(frameevent.Key(frameevent.KeyUp, code))

	case *tcell.EventMouse:
		x, y := ev.Position()
		e.input.cursorX, e.input.cursorY = float32(x), float32(y)
		if !e.input.haveCursor {
			// First sighting reports a zero delta
			e.input.lastX, e.input.lastY = e.input.cursorX, e.input.cursorY
			e.input.haveCursor = true
		}

		next := ev.Buttons()
		for _, b := range mouseButtons {
			was := e.input.buttons&b.mask != 0
			is := next&b.mask != 0
			if is && !was {
				e.pushFrameEvent(frameevent.Key(frameevent.MouseButtonDown, b.code))
			}
			if !is && was {
				e.pushFrameEvent(frameevent.Key(frameevent.MouseButtonUp, b.code))
			}
		}
		e.input.buttons = next
	}
}

// TickInput emits the per-frame cursor update (main thread, once per
// frame). Nothing is emitted until a cursor position has been seen.
func (e *Engine) TickInput() {
	if !e.input.haveCursor {
		return
	}

	dx := e.input.cursorX - e.input.lastX
	dy := e.input.cursorY - e.input.lastY
	e.input.lastX, e.input.lastY = e.input.cursorX, e.input.cursorY

	e.pushFrameEvent(frameevent.Cursor(e.input.cursorX, e.input.cursorY, dx, dy))
}

// pushFrameEvent drops on overflow: input is lossy under saturation,
// and the queue's own hook logs the rejection.
func (e *Engine) pushFrameEvent(ev frameevent.Event) {
	_ = e.FrameEvents.Push(ev)
}

// keyCode maps a tcell key event to the wire key code: printable keys
// use their rune, special keys their tcell code offset above the rune
// space.
func keyCode(ev *tcell.EventKey) int32 {
	if ev.Key() == tcell.KeyRune {
		return int32(ev.Rune())
	}
	return int32(ev.Key()) + 0x110000
}
