// Package audio plays resource-loaded sounds on a dedicated goroutine.
//
// Commands flow through a bounded SPSC ring: the main thread (generic
// command handlers, gameplay systems) produces, the audio goroutine
// consumes on a fast tick. Submission never blocks; overflow is counted
// and the command dropped.
package audio

import (
	"fmt"
	"log"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/speaker"

	"github.com/lixenwraith/helix/ring"
)

// CommandType discriminates audio commands.
type CommandType uint8

const (
	Play CommandType = iota
	StopAll
	SetVolume
)

// Command is one audio operation. Handle references a loaded audio
// resource for Play; Volume applies to SetVolume.
type Command struct {
	Type   CommandType
	Handle uint64
	Volume float64
}

// DefaultQueueCapacity bounds the per-frame sound burst.
const DefaultQueueCapacity = 64

// Config mirrors the engine configuration section.
type Config struct {
	Enabled      bool
	SampleRate   int
	MasterVolume float64
}

// DefaultConfig returns sensible playback defaults.
func DefaultConfig() Config {
	return Config{
		Enabled:      true,
		SampleRate:   44100,
		MasterVolume: 0.7,
	}
}

// BufferFunc resolves a resource handle to its decoded sample buffer.
// Returns nil for unknown or non-audio handles.
type BufferFunc func(handle uint64) *beep.Buffer

// Engine consumes the audio command ring and drives the speaker.
type Engine struct {
	config  Config
	queue   *ring.Ring[Command]
	resolve BufferFunc

	stopChan chan struct{}
	wg       sync.WaitGroup

	// Master volume as float64 bits, written by the audio goroutine,
	// readable from any goroutine
	volumeBits atomic.Uint64

	// Statistics
	soundsPlayed   atomic.Uint64
	soundsDropped  atomic.Uint64
	queueOverflows atomic.Uint64

	running atomic.Bool
}

// NewEngine creates an audio engine. resolve looks up loaded buffers;
// it runs on the audio goroutine and must be safe to call there (the
// engine wires a snapshot accessor, not the live resource map).
func NewEngine(cfg Config, capacity int, resolve BufferFunc) (*Engine, error) {
	q, err := ring.New[Command](capacity, nil)
	if err != nil {
		return nil, err
	}

	if cfg.Enabled {
		rate := beep.SampleRate(cfg.SampleRate)
		if err := speaker.Init(rate, rate.N(time.Second/10)); err != nil {
			// Speaker may already be initialized; playback still works
			log.Printf("AudioEngine: speaker init: %v", err)
		}
	}

	e := &Engine{
		config:   cfg,
		queue:    q,
		resolve:  resolve,
		stopChan: make(chan struct{}),
	}
	e.volumeBits.Store(math.Float64bits(cfg.MasterVolume))
	return e, nil
}

// Start launches the processing goroutine.
func (e *Engine) Start() {
	if e.running.CompareAndSwap(false, true) {
		e.wg.Add(1)
		go e.processLoop()
	}
}

// Stop halts processing and joins the goroutine.
func (e *Engine) Stop() {
	if e.running.CompareAndSwap(true, false) {
		close(e.stopChan)
		e.wg.Wait()
	}
}

// Submit pushes a command (main thread only). Returns false when the
// engine is stopped or the ring is full; the sound is dropped either
// way.
func (e *Engine) Submit(cmd Command) bool {
	if !e.running.Load() {
		return false
	}
	if err := e.queue.Push(cmd); err != nil {
		e.queueOverflows.Add(1)
		return false
	}
	return true
}

func (e *Engine) processLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()

	for {
		select {
		case <-e.stopChan:
			// Remaining commands are dropped and counted
			e.queue.Drain(func(Command) { e.soundsDropped.Add(1) })
			return
		case <-ticker.C:
			e.queue.Drain(e.process)
		}
	}
}

func (e *Engine) process(cmd Command) {
	switch cmd.Type {
	case Play:
		if !e.config.Enabled {
			e.soundsDropped.Add(1)
			return
		}
		buf := e.resolve(cmd.Handle)
		if buf == nil {
			e.soundsDropped.Add(1)
			log.Printf("AudioEngine: no audio buffer for handle %d", cmd.Handle)
			return
		}
		speaker.Play(buf.Streamer(0, buf.Len()))
		e.soundsPlayed.Add(1)

	case StopAll:
		if e.config.Enabled {
			speaker.Clear()
		}

	case SetVolume:
		v := cmd.Volume
		if v < 0 {
			v = 0
		}
		if v > 1 {
			v = 1
		}
		e.volumeBits.Store(math.Float64bits(v))
	}
}

// Stats returns played/dropped/overflow counters.
func (e *Engine) Stats() (played, dropped, overflows uint64) {
	return e.soundsPlayed.Load(), e.soundsDropped.Load(), e.queueOverflows.Load()
}

// Running reports whether the processing goroutine is live.
func (e *Engine) Running() bool { return e.running.Load() }

// Volume returns the last applied master volume.
func (e *Engine) Volume() float64 { return math.Float64frombits(e.volumeBits.Load()) }

// String names the command type for logs.
func (t CommandType) String() string {
	switch t {
	case Play:
		return "Play"
	case StopAll:
		return "StopAll"
	case SetVolume:
		return "SetVolume"
	default:
		return fmt.Sprintf("CommandType(%d)", uint8(t))
	}
}
