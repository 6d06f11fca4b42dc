// Package callback carries async results from the main thread back to
// the script worker.
//
// Flow: a subsystem on the main thread finishes work tied to a callback
// id, builds a Data record, and pushes it onto the Queue. The script
// worker drains the queue once per update, looks up the stored script
// callable by id, and invokes it.
package callback

import "github.com/lixenwraith/helix/ring"

// Type identifies the flow a callback record originated from.
type Type uint8

const (
	EntityCreated Type = iota
	CameraCreated
	ResourceLoaded
	Generic
)

// String returns the wire name used in the script-facing JSON drain.
func (t Type) String() string {
	switch t {
	case EntityCreated:
		return "ENTITY_CREATED"
	case CameraCreated:
		return "CAMERA_CREATED"
	case ResourceLoaded:
		return "RESOURCE_LOADED"
	case Generic:
		return "GENERIC"
	default:
		return "UNKNOWN"
	}
}

// Data is a single main→script callback record.
type Data struct {
	CallbackID   uint64 // Links the record to the submitted command (never 0)
	ResultID     uint64 // Entity/camera/resource id, 0 when not applicable
	ErrorMessage string // Empty = success
	Type         Type

	// ResultJSON carries a JSON value chosen by a generic handler.
	// Empty unless Type == Generic and the handler returned one.
	ResultJSON string
}

// Succeeded reports whether the record carries a success result.
func (d Data) Succeeded() bool { return d.ErrorMessage == "" }

// DefaultQueueCapacity reflects the expected per-frame callback burst.
const DefaultQueueCapacity = 100

// Queue is the SPSC callback channel.
//
// Producer: main thread. Consumer: script worker.
type Queue struct {
	*ring.Ring[Data]
}

// NewQueue creates a callback queue with the given capacity.
func NewQueue(capacity int) (*Queue, error) {
	r, err := ring.New[Data](capacity, ring.WarnHooks[Data]{Name: "CallbackQueue"})
	if err != nil {
		return nil, err
	}
	return &Queue{Ring: r}, nil
}
