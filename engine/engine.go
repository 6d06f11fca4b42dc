// Package engine wires the command plane together: every cross-thread
// queue, the generic command executor, the scene, the resource
// subsystem, and the audio engine, owned by one engine-scoped context.
//
// Thread Model:
//   - Main thread: calls Update once per frame — drains the render,
//     resource, and generic command queues, folds in async load
//     completions, and delivers pending callback records. Also produces
//     frame events from OS input.
//   - Script worker: produces render/generic/resource commands through
//     the bridge and drains the callback and frame-event queues.
//   - I/O workers: execute resource loads; their completions funnel
//     through the resource subsystem back to the main thread.
//
// There are no global singletons; everything hangs off the Engine
// value, which lives from engine start to engine stop.
package engine

import (
	"encoding/json"
	"fmt"
	"log"

	"github.com/lixenwraith/helix/audio"
	"github.com/lixenwraith/helix/callback"
	"github.com/lixenwraith/helix/command"
	"github.com/lixenwraith/helix/config"
	"github.com/lixenwraith/helix/frameevent"
	"github.com/lixenwraith/helix/jobs"
	"github.com/lixenwraith/helix/render"
	"github.com/lixenwraith/helix/resource"
	"github.com/lixenwraith/helix/scene"
)

// Engine is the top-level context owning the command plane.
//
// Queues are created at engine start and destroyed after both threads
// have stopped; they are never copied or handed off.
type Engine struct {
	cfg *config.Config

	// Script → main
	RenderQueue   *render.Queue
	GenericQueue  *command.Queue
	ResourceQueue *resource.Queue

	// Main → script
	CallbackQueue *callback.Queue
	FrameEvents   *frameevent.Queue

	Executor  *command.Executor
	Scene     *scene.Scene
	Resources *resource.Subsystem
	Jobs      *jobs.System
	Audio     *audio.Engine

	// Shared callback id allocator for every flow
	IDs callback.IDAllocator

	input inputState
	frame uint64
}

// New builds an engine from the given configuration. nil uses the
// defaults. Fails with a ConfigurationError for invalid settings.
func New(cfg *config.Config) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}

	var err error
	if e.RenderQueue, err = render.NewQueue(cfg.Queues.Render); err != nil {
		return nil, err
	}
	if e.GenericQueue, err = command.NewQueue(cfg.Queues.Generic); err != nil {
		return nil, err
	}
	if e.ResourceQueue, err = resource.NewQueue(cfg.Queues.Resource); err != nil {
		return nil, err
	}
	if e.CallbackQueue, err = callback.NewQueue(cfg.Queues.Callback); err != nil {
		return nil, err
	}
	if e.FrameEvents, err = frameevent.NewQueue(cfg.Queues.FrameEvents); err != nil {
		return nil, err
	}

	e.Executor = command.NewExecutor(nil)
	e.Executor.SetRateLimitPerAgent(cfg.Executor.RateLimitPerAgent)
	e.Executor.SetAuditLogging(cfg.Executor.AuditLogging)

	e.Scene = scene.New()
	e.Jobs = jobs.NewSystem(cfg.Jobs.Workers)
	e.Resources = resource.NewSubsystem(e.Jobs)

	e.Audio, err = audio.NewEngine(audio.Config{
		Enabled:      cfg.Audio.Enabled,
		SampleRate:   cfg.Audio.SampleRate,
		MasterVolume: cfg.Audio.MasterVolume,
	}, cfg.Queues.Audio, e.Resources.AudioBuffer)
	if err != nil {
		return nil, err
	}

	e.registerBuiltinHandlers()

	log.Printf("Engine: initialized (render=%d generic=%d callback=%d frameEvents=%d resource=%d)",
		cfg.Queues.Render, cfg.Queues.Generic, cfg.Queues.Callback,
		cfg.Queues.FrameEvents, cfg.Queues.Resource)
	return e, nil
}

// Start launches the audio goroutine. Handler registration must be
// complete before the first Update.
func (e *Engine) Start() {
	e.Audio.Start()
}

// Update runs one main-thread frame: drain every script→main queue,
// fold in async load completions, then deliver callback records. This
// is the single function the host loop calls; a handler result is
// observable on the script side only after it returns and the script
// drains the callback queue.
func (e *Engine) Update() {
	e.frame++

	e.RenderQueue.Drain(e.Scene.Apply)

	e.ResourceQueue.Drain(e.Resources.Apply)
	e.Resources.DispatchAsync()

	e.GenericQueue.Drain(e.Executor.Execute)

	e.Resources.DrainCompleted()

	e.Executor.DeliverPendingCallbacks(e.CallbackQueue)
	e.Scene.DeliverPendingCallbacks(e.CallbackQueue)
	e.Resources.DeliverPendingCallbacks(e.CallbackQueue)
}

// Stop shuts the engine down: producer side must already be quiescent.
// Joins the audio goroutine and every outstanding I/O job, then logs
// final statistics.
func (e *Engine) Stop() {
	e.Jobs.Wait()
	e.Audio.Stop()
	e.Executor.Close()
	log.Printf("Engine: stopped after %d frames", e.frame)
}

// Frame returns the number of completed Update calls.
func (e *Engine) Frame() uint64 { return e.frame }

// Config returns the active configuration.
func (e *Engine) Config() *config.Config { return e.cfg }

// registerBuiltinHandlers installs the engine-side generic command
// handlers available to every script agent.
func (e *Engine) registerBuiltinHandlers() {
	// engine.stats returns the executor statistics snapshot as JSON
	e.Executor.RegisterHandler("engine.stats", func(any) command.Result {
		data, err := json.Marshal(e.Executor.Statistics())
		if err != nil {
			return command.Failure(fmt.Sprintf("stats marshal: %v", err))
		}
		return command.Success(map[string]any{"resultJson": string(data)})
	})

	// audio.play starts playback of a loaded audio resource
	e.Executor.RegisterHandler("audio.play", func(payload any) command.Result {
		raw, err := command.PayloadAs[string](payload)
		if err != nil {
			return command.Failure(err.Error())
		}
		var req struct {
			Handle uint64 `json:"handle"`
		}
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return command.Failure(fmt.Sprintf("audio.play payload: %v", err))
		}
		if req.Handle == 0 || e.Resources.AudioBuffer(req.Handle) == nil {
			return command.Failure(fmt.Sprintf("audio.play: no audio resource %d", req.Handle))
		}
		if !e.Audio.Submit(audio.Command{Type: audio.Play, Handle: req.Handle}) {
			return command.Failure("audio.play: audio queue full")
		}
		return command.Success(map[string]any{"resultId": req.Handle})
	})
}
