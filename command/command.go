// Package command implements the generic script→main command flow: the
// type-erased command payload, the SPSC command queue, and the executor
// that dispatches commands to named handlers with per-agent rate
// limiting, error isolation, and statistics.
package command

import (
	"errors"
	"fmt"
	"time"

	"github.com/lixenwraith/helix/ring"
)

// Command is a type-erased script→main command.
//
// The script bridge submits a JSON string payload; engine-registered
// handlers may also receive typed Go payloads when commands are built
// in-process. Immutable after submission.
type Command struct {
	Type       string // Handler lookup key (e.g. "entity.create")
	Payload    any    // Interpreted by the handler; PayloadAs gives a typed view
	AgentID    string // Submitting agent, for rate limiting and audit
	CallbackID uint64 // 0 = fire-and-forget
	Timestamp  uint64 // Submission time, milliseconds
}

// New builds a command stamped with the current wall-clock time in
// milliseconds.
func New(cmdType string, payload any, agentID string, callbackID uint64) Command {
	return Command{
		Type:       cmdType,
		Payload:    payload,
		AgentID:    agentID,
		CallbackID: callbackID,
		Timestamp:  uint64(time.Now().UnixMilli()),
	}
}

// HasCallback reports whether the command expects a result record.
func (c Command) HasCallback() bool { return c.CallbackID != 0 }

// ErrPayloadCast indicates a handler received a payload whose dynamic
// type does not match its expected shape — a bug in the
// producer/handler contract, not a runtime condition.
var ErrPayloadCast = errors.New("payload cast mismatch")

// PayloadAs returns the payload as T, or ErrPayloadCast describing the
// actual type. Handlers use it to express their expected payload shape.
func PayloadAs[T any](payload any) (T, error) {
	v, ok := payload.(T)
	if !ok {
		var zero T
		return zero, fmt.Errorf("%w: want %T, have %T", ErrPayloadCast, zero, payload)
	}
	return v, nil
}

// DefaultQueueCapacity reflects the expected generic-command burst.
const DefaultQueueCapacity = 500

// Queue is the SPSC generic-command channel.
//
// Producer: script worker. Consumer: main thread.
type Queue struct {
	*ring.Ring[Command]
}

// NewQueue creates a generic-command queue with the given capacity.
func NewQueue(capacity int) (*Queue, error) {
	r, err := ring.New[Command](capacity, ring.WarnHooks[Command]{Name: "GenericCommandQueue"})
	if err != nil {
		return nil, err
	}
	return &Queue{Ring: r}, nil
}
