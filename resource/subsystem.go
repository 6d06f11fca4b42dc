package resource

import (
	"fmt"
	"log"
	"sort"
	"sync"

	"github.com/gopxl/beep"

	"github.com/lixenwraith/helix/callback"
	"github.com/lixenwraith/helix/jobs"
)

// Resource is a loaded asset owned by the subsystem.
type Resource struct {
	Handle uint64
	Path   string
	Kind   CommandType
	Data   *Payload
}

// loadResult is an I/O worker's completion report.
type loadResult struct {
	handle     uint64
	callbackID uint64
	path       string
	kind       CommandType
	payload    *Payload
	err        error
}

// Subsystem consumes resource commands on the main thread.
//
// Sync loads run inline. Async loads batch per frame, dispatch to the
// job pool in priority order, and report back through a mutex-guarded
// completion buffer that the main thread drains each frame — workers
// never produce onto the callback queue themselves.
type Subsystem struct {
	jobs *jobs.System

	cache      map[string]uint64 // path → handle
	resources  map[uint64]*Resource
	nextHandle uint64

	batch []Command // async loads collected this frame

	completedMu sync.Mutex
	completed   []loadResult

	// Decoded audio buffers mirrored for the audio goroutine, which
	// must not touch the main-thread resource map
	audioMu      sync.RWMutex
	audioBuffers map[uint64]*beep.Buffer

	outbox callback.Outbox
}

// NewSubsystem creates a subsystem dispatching async loads to pool.
func NewSubsystem(pool *jobs.System) *Subsystem {
	return &Subsystem{
		jobs:         pool,
		cache:        make(map[string]uint64),
		resources:    make(map[uint64]*Resource),
		audioBuffers: make(map[uint64]*beep.Buffer),
		outbox:       callback.Outbox{Name: "ResourceSubsystem"},
	}
}

// Apply processes one resource command. Used as the drain closure for
// the resource-command queue (main thread).
func (s *Subsystem) Apply(cmd Command) {
	if cmd.Type == Unload {
		s.unload(cmd)
		return
	}

	// Cache hit delivers the existing handle without touching the disk
	if handle, ok := s.cache[cmd.Path]; ok {
		s.stage(cmd.CallbackID, handle, "")
		return
	}

	if cmd.Async {
		s.batch = append(s.batch, cmd)
		return
	}

	payload, err := Load(cmd.Type, cmd.Path)
	if err != nil {
		log.Printf("ResourceSubsystem: %v", err)
		s.stage(cmd.CallbackID, 0, err.Error())
		return
	}
	handle := s.store(cmd.Path, cmd.Type, payload)
	s.stage(cmd.CallbackID, handle, "")
}

func (s *Subsystem) unload(cmd Command) {
	res, ok := s.resources[cmd.Handle]
	if !ok {
		s.stage(cmd.CallbackID, 0, fmt.Sprintf("resource %d not found", cmd.Handle))
		return
	}
	delete(s.resources, cmd.Handle)
	delete(s.cache, res.Path)

	s.audioMu.Lock()
	delete(s.audioBuffers, cmd.Handle)
	s.audioMu.Unlock()

	s.stage(cmd.CallbackID, cmd.Handle, "")
}

// DispatchAsync sends this frame's batched loads to the job pool,
// highest priority first (main thread, after the command drain).
func (s *Subsystem) DispatchAsync() {
	if len(s.batch) == 0 {
		return
	}

	sort.SliceStable(s.batch, func(i, j int) bool {
		return s.batch[i].Priority > s.batch[j].Priority
	})

	for _, cmd := range s.batch {
		cmd := cmd
		s.jobs.Submit(cmd.Type.String(), func() {
			payload, err := Load(cmd.Type, cmd.Path)
			s.completedMu.Lock()
			s.completed = append(s.completed, loadResult{
				callbackID: cmd.CallbackID,
				path:       cmd.Path,
				kind:       cmd.Type,
				payload:    payload,
				err:        err,
			})
			s.completedMu.Unlock()
		})
	}
	s.batch = s.batch[:0]
}

// DrainCompleted folds finished async loads into the store and stages
// their callbacks (main thread, once per frame).
func (s *Subsystem) DrainCompleted() {
	s.completedMu.Lock()
	results := s.completed
	s.completed = nil
	s.completedMu.Unlock()

	for _, r := range results {
		if r.err != nil {
			log.Printf("ResourceSubsystem: async %v", r.err)
			s.stage(r.callbackID, 0, r.err.Error())
			continue
		}
		// A sync load may have raced the same path into the cache
		handle, ok := s.cache[r.path]
		if !ok {
			handle = s.store(r.path, r.kind, r.payload)
		}
		s.stage(r.callbackID, handle, "")
	}
}

// DeliverPendingCallbacks pushes staged RESOURCE_LOADED records onto
// the callback queue; overflow defers to next frame.
func (s *Subsystem) DeliverPendingCallbacks(q *callback.Queue) {
	s.outbox.Deliver(q)
}

func (s *Subsystem) store(path string, kind CommandType, payload *Payload) uint64 {
	s.nextHandle++
	handle := s.nextHandle
	s.resources[handle] = &Resource{Handle: handle, Path: path, Kind: kind, Data: payload}
	s.cache[path] = handle

	if payload.Audio != nil {
		s.audioMu.Lock()
		s.audioBuffers[handle] = payload.Audio
		s.audioMu.Unlock()
	}
	return handle
}

func (s *Subsystem) stage(callbackID, handle uint64, errMsg string) {
	s.outbox.Stage(callback.Data{
		CallbackID:   callbackID,
		ResultID:     handle,
		ErrorMessage: errMsg,
		Type:         callback.ResourceLoaded,
	})
}

// Get returns the resource for a handle, or nil.
func (s *Subsystem) Get(handle uint64) *Resource { return s.resources[handle] }

// AudioBuffer returns the decoded buffer for an audio handle. Safe to
// call from the audio goroutine.
func (s *Subsystem) AudioBuffer(handle uint64) *beep.Buffer {
	s.audioMu.RLock()
	defer s.audioMu.RUnlock()
	return s.audioBuffers[handle]
}

// Lookup returns the handle cached for a path.
func (s *Subsystem) Lookup(path string) (uint64, bool) {
	h, ok := s.cache[path]
	return h, ok
}

// Count returns the number of live resources.
func (s *Subsystem) Count() int { return len(s.resources) }

// PendingCallbackCount returns the number of staged records.
func (s *Subsystem) PendingCallbackCount() int { return s.outbox.Len() }
