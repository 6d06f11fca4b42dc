// Package scene is the main-thread consumer of render commands: entity
// and camera stores, id allocation, and the pending callback records
// for creation acknowledgements.
//
// Every method runs on the main thread. Callback records are marked
// ready only after the command has been processed here, never at
// submission time — creation flows use the same readiness rule as
// generic commands.
package scene

import (
	"fmt"
	"log"

	"github.com/lixenwraith/helix/callback"
	"github.com/lixenwraith/helix/render"
)

// Entity is a renderable object owned by the scene.
type Entity struct {
	ID          uint64
	Shape       render.MeshShape
	Position    render.Vec3
	Orientation render.Vec3
	Scale       float32
	Color       uint32
}

// Camera is a viewpoint owned by the scene.
type Camera struct {
	ID       uint64
	Kind     render.CameraKind
	Position render.Vec3
	FOV      float32
}

// Scene applies render commands and stages creation callbacks.
type Scene struct {
	entities map[uint64]*Entity
	cameras  map[uint64]*Camera

	activeCamera uint64
	nextEntityID uint64
	nextCameraID uint64

	outbox callback.Outbox
}

// New creates an empty scene.
func New() *Scene {
	return &Scene{
		entities: make(map[uint64]*Entity),
		cameras:  make(map[uint64]*Camera),
		outbox:   callback.Outbox{Name: "Scene"},
	}
}

// Apply processes one render command. Used as the drain closure for the
// render-command queue.
func (s *Scene) Apply(cmd render.Command) {
	switch cmd.Type {
	case render.CreateMesh:
		s.nextEntityID++
		id := s.nextEntityID
		s.entities[id] = &Entity{
			ID:       id,
			Shape:    cmd.Mesh.Shape,
			Position: cmd.Mesh.Position,
			Scale:    cmd.Mesh.Scale,
			Color:    cmd.Mesh.Color,
		}
		s.stage(cmd.CallbackID, id, "", callback.EntityCreated)

	case render.DestroyEntity:
		if _, ok := s.entities[cmd.TargetID]; !ok {
			s.stage(cmd.CallbackID, 0,
				fmt.Sprintf("entity %d not found", cmd.TargetID), callback.EntityCreated)
			return
		}
		delete(s.entities, cmd.TargetID)
		s.stage(cmd.CallbackID, cmd.TargetID, "", callback.EntityCreated)

	case render.UpdateEntity:
		e, ok := s.entities[cmd.TargetID]
		if !ok {
			log.Printf("Scene: update for unknown entity %d dropped", cmd.TargetID)
			return
		}
		switch cmd.Update.Mode {
		case render.UpdateAbsolute:
			e.Position = cmd.Update.Position
		case render.UpdateRelative:
			e.Position = e.Position.Add(cmd.Update.Position)
		}
		e.Orientation = cmd.Update.Orientation

	case render.CreateCamera:
		s.nextCameraID++
		id := s.nextCameraID
		s.cameras[id] = &Camera{
			ID:       id,
			Kind:     cmd.Camera.Kind,
			Position: cmd.Camera.Position,
			FOV:      cmd.Camera.FOV,
		}
		if s.activeCamera == 0 {
			s.activeCamera = id
		}
		s.stage(cmd.CallbackID, id, "", callback.CameraCreated)

	case render.DestroyCamera:
		if _, ok := s.cameras[cmd.TargetID]; !ok {
			s.stage(cmd.CallbackID, 0,
				fmt.Sprintf("camera %d not found", cmd.TargetID), callback.CameraCreated)
			return
		}
		delete(s.cameras, cmd.TargetID)
		if s.activeCamera == cmd.TargetID {
			s.activeCamera = 0
		}
		s.stage(cmd.CallbackID, cmd.TargetID, "", callback.CameraCreated)

	case render.UpdateCamera:
		c, ok := s.cameras[cmd.TargetID]
		if !ok {
			log.Printf("Scene: update for unknown camera %d dropped", cmd.TargetID)
			return
		}
		switch cmd.Update.Mode {
		case render.UpdateAbsolute:
			c.Position = cmd.Update.Position
		case render.UpdateRelative:
			c.Position = c.Position.Add(cmd.Update.Position)
		}

	case render.SetActiveCamera:
		if _, ok := s.cameras[cmd.TargetID]; !ok {
			log.Printf("Scene: set-active for unknown camera %d dropped", cmd.TargetID)
			return
		}
		s.activeCamera = cmd.TargetID

	case render.UpdateCameraType:
		c, ok := s.cameras[cmd.TargetID]
		if !ok {
			log.Printf("Scene: type update for unknown camera %d dropped", cmd.TargetID)
			return
		}
		c.Kind = cmd.Camera.Kind
		c.FOV = cmd.Camera.FOV

	default:
		log.Printf("Scene: unknown render command type %d dropped", cmd.Type)
	}
}

// stage records a creation/destroy acknowledgement if one was requested.
func (s *Scene) stage(callbackID, resultID uint64, errMsg string, t callback.Type) {
	s.outbox.Stage(callback.Data{
		CallbackID:   callbackID,
		ResultID:     resultID,
		ErrorMessage: errMsg,
		Type:         t,
	})
}

// DeliverPendingCallbacks pushes staged records onto the callback
// queue. Records that do not fit stay staged for next frame.
func (s *Scene) DeliverPendingCallbacks(q *callback.Queue) {
	s.outbox.Deliver(q)
}

// Entity returns the entity by id, or nil.
func (s *Scene) Entity(id uint64) *Entity { return s.entities[id] }

// Camera returns the camera by id, or nil.
func (s *Scene) Camera(id uint64) *Camera { return s.cameras[id] }

// ActiveCamera returns the active camera id (0 = none).
func (s *Scene) ActiveCamera() uint64 { return s.activeCamera }

// EntityCount returns the number of live entities.
func (s *Scene) EntityCount() int { return len(s.entities) }

// CameraCount returns the number of live cameras.
func (s *Scene) CameraCount() int { return len(s.cameras) }

// PendingCallbackCount returns the number of staged records.
func (s *Scene) PendingCallbackCount() int { return s.outbox.Len() }
