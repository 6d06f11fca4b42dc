// Package resource implements the script→main resource command flow and
// the main-thread subsystem that executes loads — synchronously or on
// the I/O job pool — caches results by path, and reports completion as
// RESOURCE_LOADED callback records.
package resource

import "github.com/lixenwraith/helix/ring"

// CommandType discriminates the resource command variants.
type CommandType uint8

const (
	LoadTexture CommandType = iota
	LoadModel
	LoadShader
	LoadAudio
	LoadFont
	Unload
)

// String names the command type for logs.
func (t CommandType) String() string {
	switch t {
	case LoadTexture:
		return "LoadTexture"
	case LoadModel:
		return "LoadModel"
	case LoadShader:
		return "LoadShader"
	case LoadAudio:
		return "LoadAudio"
	case LoadFont:
		return "LoadFont"
	case Unload:
		return "Unload"
	default:
		return "Unknown"
	}
}

// Command is one resource operation. Path/Priority/Async apply to the
// load variants; Handle addresses the resource for Unload.
type Command struct {
	Type       CommandType
	Path       string
	Priority   int8 // [-100, 100], higher dispatches first within a frame
	Async      bool
	CallbackID uint64
	Handle     uint64
}

// DefaultQueueCapacity reflects the expected resource-command burst.
const DefaultQueueCapacity = 200

// Queue is the SPSC resource-command channel.
//
// Producer: script worker. Consumer: main thread.
type Queue struct {
	*ring.Ring[Command]
}

// NewQueue creates a resource-command queue with the given capacity.
func NewQueue(capacity int) (*Queue, error) {
	r, err := ring.New[Command](capacity, ring.WarnHooks[Command]{Name: "ResourceCommandQueue"})
	if err != nil {
		return nil, err
	}
	return &Queue{Ring: r}, nil
}
