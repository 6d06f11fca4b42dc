package bridge

import (
	"fmt"

	"github.com/lixenwraith/helix/render"
	"github.com/lixenwraith/helix/resource"
)

// Entity and camera shims push render commands; resource shims push
// load commands. Each stores the callable before the push and rolls the
// store back when the queue rejects, mirroring Submit.

// storeFor allocates and stores a callback id for cb, or returns 0.
func (b *Bridge) storeFor(cb ScriptCallable) uint64 {
	if cb == nil {
		return 0
	}
	id := b.engine.IDs.Next()
	b.engine.Executor.StoreCallback(id, cb)
	return id
}

// release rolls back a stored callable after a rejected push.
func (b *Bridge) release(callbackID uint64) {
	if callbackID != 0 {
		b.engine.Executor.TakeCallback(callbackID)
	}
}

// CreateEntity requests a mesh entity. The entity id arrives in the
// ENTITY_CREATED callback record once the main thread has processed the
// command.
func (b *Bridge) CreateEntity(params render.MeshParams, cb ScriptCallable) (uint64, error) {
	id := b.storeFor(cb)
	err := b.engine.RenderQueue.Push(render.Command{
		Type:       render.CreateMesh,
		CallbackID: id,
		Mesh:       params,
	})
	if err != nil {
		b.release(id)
		return 0, fmt.Errorf("createEntity: %w", err)
	}
	return id, nil
}

// DestroyEntity requests entity removal.
func (b *Bridge) DestroyEntity(entityID uint64, cb ScriptCallable) (uint64, error) {
	id := b.storeFor(cb)
	err := b.engine.RenderQueue.Push(render.Command{
		Type:       render.DestroyEntity,
		TargetID:   entityID,
		CallbackID: id,
	})
	if err != nil {
		b.release(id)
		return 0, fmt.Errorf("destroyEntity: %w", err)
	}
	return id, nil
}

// MoveEntityTo sets an absolute entity position.
func (b *Bridge) MoveEntityTo(entityID uint64, pos render.Vec3) error {
	err := b.engine.RenderQueue.Push(render.Command{
		Type:     render.UpdateEntity,
		TargetID: entityID,
		Update:   render.UpdateParams{Mode: render.UpdateAbsolute, Position: pos},
	})
	if err != nil {
		return fmt.Errorf("moveEntityTo: %w", err)
	}
	return nil
}

// MoveEntityBy applies a relative delta. The delta travels as-is; the
// scene adds it to the current position on the main thread.
func (b *Bridge) MoveEntityBy(entityID uint64, delta render.Vec3) error {
	err := b.engine.RenderQueue.Push(render.Command{
		Type:     render.UpdateEntity,
		TargetID: entityID,
		Update:   render.UpdateParams{Mode: render.UpdateRelative, Position: delta},
	})
	if err != nil {
		return fmt.Errorf("moveEntityBy: %w", err)
	}
	return nil
}

// CreateCamera requests a camera; the id arrives via CAMERA_CREATED.
func (b *Bridge) CreateCamera(params render.CameraParams, cb ScriptCallable) (uint64, error) {
	id := b.storeFor(cb)
	err := b.engine.RenderQueue.Push(render.Command{
		Type:       render.CreateCamera,
		CallbackID: id,
		Camera:     params,
	})
	if err != nil {
		b.release(id)
		return 0, fmt.Errorf("createCamera: %w", err)
	}
	return id, nil
}

// SetActiveCamera switches the scene's active camera.
func (b *Bridge) SetActiveCamera(cameraID uint64) error {
	err := b.engine.RenderQueue.Push(render.Command{
		Type:     render.SetActiveCamera,
		TargetID: cameraID,
	})
	if err != nil {
		return fmt.Errorf("setActiveCamera: %w", err)
	}
	return nil
}

// LoadResource requests a resource load. kind selects the loader;
// priority in [-100, 100] orders async dispatch within a frame. The
// handle arrives via RESOURCE_LOADED.
func (b *Bridge) LoadResource(kind resource.CommandType, path string, priority int8, async bool, cb ScriptCallable) (uint64, error) {
	id := b.storeFor(cb)
	err := b.engine.ResourceQueue.Push(resource.Command{
		Type:       kind,
		Path:       path,
		Priority:   priority,
		Async:      async,
		CallbackID: id,
	})
	if err != nil {
		b.release(id)
		return 0, fmt.Errorf("loadResource %s: %w", kind, err)
	}
	return id, nil
}

// UnloadResource releases a loaded resource by handle.
func (b *Bridge) UnloadResource(handle uint64, cb ScriptCallable) (uint64, error) {
	id := b.storeFor(cb)
	err := b.engine.ResourceQueue.Push(resource.Command{
		Type:       resource.Unload,
		Handle:     handle,
		CallbackID: id,
	})
	if err != nil {
		b.release(id)
		return 0, fmt.Errorf("unloadResource: %w", err)
	}
	return id, nil
}
