// Package render defines the script→main render command flow: entity
// and camera mutations carried as a fixed-size discriminated record
// through an SPSC queue, applied by the scene on the main thread.
package render

import "github.com/lixenwraith/helix/ring"

// CommandType discriminates the render command variants.
type CommandType uint8

const (
	CreateMesh CommandType = iota
	DestroyEntity
	UpdateEntity
	CreateCamera
	DestroyCamera
	UpdateCamera
	SetActiveCamera
	UpdateCameraType
)

// MeshShape selects the primitive created by CreateMesh.
type MeshShape uint8

const (
	ShapeCube MeshShape = iota
	ShapeSphere
	ShapePlane
)

// CameraKind selects projection behavior.
type CameraKind uint8

const (
	CameraWorld CameraKind = iota
	CameraScreen
)

// UpdateMode distinguishes absolute position updates from relative
// deltas. Relative movement is a first-class mode; it is never encoded
// as a precomputed absolute position.
type UpdateMode uint8

const (
	UpdateAbsolute UpdateMode = iota
	UpdateRelative
)

// Vec3 is a position or delta in world units.
type Vec3 struct {
	X, Y, Z float32
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// MeshParams is the CreateMesh payload.
type MeshParams struct {
	Shape    MeshShape
	Position Vec3
	Scale    float32
	Color    uint32 // Packed RGBA
}

// UpdateParams is the UpdateEntity / UpdateCamera payload. Position is
// the target position for UpdateAbsolute, the delta for UpdateRelative.
type UpdateParams struct {
	Mode        UpdateMode
	Position    Vec3
	Orientation Vec3 // Euler degrees, applied absolutely to entities; UpdateCamera ignores it
}

// CameraParams is the CreateCamera / UpdateCameraType payload.
type CameraParams struct {
	Kind     CameraKind
	Position Vec3
	FOV      float32
}

// Command is one render mutation. TargetID addresses an existing entity
// or camera (0 for create variants); CallbackID, when non-zero, asks
// for an ENTITY_CREATED / CAMERA_CREATED record once the main thread
// has processed the command.
type Command struct {
	Type       CommandType
	TargetID   uint64
	CallbackID uint64
	Mesh       MeshParams
	Update     UpdateParams
	Camera     CameraParams
}

// DefaultQueueCapacity reflects the expected render-command burst.
const DefaultQueueCapacity = 1000

// Queue is the SPSC render-command channel.
//
// Producer: script worker. Consumer: main thread.
type Queue struct {
	*ring.Ring[Command]
}

// NewQueue creates a render-command queue with the given capacity.
func NewQueue(capacity int) (*Queue, error) {
	r, err := ring.New[Command](capacity, ring.WarnHooks[Command]{Name: "RenderCommandQueue"})
	if err != nil {
		return nil, err
	}
	return &Queue{Ring: r}, nil
}
