// Package bridge is the script-facing surface of the command plane.
//
// Every method runs on the script worker. The bridge converts host
// values to engine payload types at this boundary — JSON strings in,
// JSON strings out — so nothing script-shaped leaks past it. Callables
// are stored by callback id before submission and moved out at
// delivery; the engine never invokes one.
package bridge

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lixenwraith/helix/callback"
	"github.com/lixenwraith/helix/command"
	"github.com/lixenwraith/helix/engine"
	"github.com/lixenwraith/helix/frameevent"
	"github.com/lixenwraith/helix/ring"
)

// ScriptCallable is an owned handle to a script-side function. It is
// pinned to the script worker: stored at submit time, invoked only
// during the worker's callback drain, and released afterward.
type ScriptCallable func(Record)

// Record is the script-visible form of a callback record.
type Record struct {
	CallbackID   uint64 `json:"callbackId"`
	ResultID     uint64 `json:"resultId"`
	ErrorMessage string `json:"errorMessage"`
	Type         string `json:"type"`
	ResultJSON   string `json:"resultJson,omitempty"`
}

// Bridge binds the script worker to the engine's queues.
type Bridge struct {
	engine *engine.Engine
}

// New creates the bridge for an engine.
func New(e *engine.Engine) *Bridge {
	return &Bridge{engine: e}
}

// Submit pushes a generic command. The payload travels as its JSON
// string; handlers parse it. Returns the allocated callback id (0 when
// cb is nil) or an error when the queue rejects the command — in that
// case the stored callable is released again and nothing was submitted.
func (b *Bridge) Submit(cmdType, payloadJSON, agentID string, cb ScriptCallable) (uint64, error) {
	var callbackID uint64
	if cb != nil {
		callbackID = b.engine.IDs.Next()
		b.engine.Executor.StoreCallback(callbackID, cb)
	}

	cmd := command.New(cmdType, payloadJSON, agentID, callbackID)
	if err := b.engine.GenericQueue.Push(cmd); err != nil {
		if callbackID != 0 {
			b.engine.Executor.TakeCallback(callbackID)
		}
		return 0, fmt.Errorf("submit %q: %w", cmdType, err)
	}
	return callbackID, nil
}

// RegisterHandler installs a handler for a command type. The
// production path registers engine-side handlers during initialization;
// script-side handlers route through the same registry.
func (b *Bridge) RegisterHandler(cmdType string, h command.Handler) bool {
	return b.engine.Executor.RegisterHandler(cmdType, h)
}

// UnregisterHandler removes a handler.
func (b *Bridge) UnregisterHandler(cmdType string) bool {
	return b.engine.Executor.UnregisterHandler(cmdType)
}

// RegisteredTypes returns the registered command types as a JSON array.
func (b *Bridge) RegisteredTypes() string {
	types := b.engine.Executor.RegisteredTypes()
	data, err := json.Marshal(types)
	if err != nil {
		log.Printf("Bridge: types marshal: %v", err)
		return "[]"
	}
	return string(data)
}

// DrainCallbacks drains the callback queue, invokes stored callables,
// and returns every record as a JSON array (script worker, once per
// update).
func (b *Bridge) DrainCallbacks() (string, error) {
	records := make([]Record, 0)

	b.engine.CallbackQueue.Drain(func(d callback.Data) {
		rec := Record{
			CallbackID:   d.CallbackID,
			ResultID:     d.ResultID,
			ErrorMessage: d.ErrorMessage,
			Type:         d.Type.String(),
			ResultJSON:   d.ResultJSON,
		}
		records = append(records, rec)

		// Move the handle out and invoke it; the handle is released
		// when the invocation returns
		if stored, ok := b.engine.Executor.TakeCallback(d.CallbackID); ok {
			if cb, ok := stored.(ScriptCallable); ok {
				cb(rec)
			} else {
				log.Printf("Bridge: stored callback %d has unexpected type %T", d.CallbackID, stored)
			}
		}
	})

	data, err := json.Marshal(records)
	if err != nil {
		return "[]", fmt.Errorf("callback marshal: %w", err)
	}
	return string(data), nil
}

// frameEventJSON is the wire shape of one frame event.
type frameEventJSON struct {
	Type    string   `json:"type"`
	KeyCode *int32   `json:"keyCode,omitempty"`
	X       *float32 `json:"x,omitempty"`
	Y       *float32 `json:"y,omitempty"`
	DX      *float32 `json:"dx,omitempty"`
	DY      *float32 `json:"dy,omitempty"`
}

// DrainFrameEvents drains the frame-event queue and returns the events
// as a JSON array (script worker, once per update).
func (b *Bridge) DrainFrameEvents() (string, error) {
	events := make([]frameEventJSON, 0)

	b.engine.FrameEvents.Drain(func(ev frameevent.Event) {
		out := frameEventJSON{Type: ev.Type.String()}
		switch ev.Type {
		case frameevent.CursorUpdate:
			x, y, dx, dy := ev.X, ev.Y, ev.DX, ev.DY
			out.X, out.Y, out.DX, out.DY = &x, &y, &dx, &dy
		default:
			code := ev.KeyCode
			out.KeyCode = &code
		}
		events = append(events, out)
	})

	data, err := json.Marshal(events)
	if err != nil {
		return "[]", fmt.Errorf("frame event marshal: %w", err)
	}
	return string(data), nil
}

// IsQueueFull reports whether err is the backpressure signal, letting
// script code distinguish saturation from real failures.
func IsQueueFull(err error) bool {
	return ring.IsFull(err)
}
