package engine

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/lixenwraith/helix/callback"
	"github.com/lixenwraith/helix/command"
	"github.com/lixenwraith/helix/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.Audio.Enabled = false
	return cfg
}

// TestNewRejectsInvalidConfig tests that configuration errors are fatal
// at initialization
func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Queues.Generic = 0
	if _, err := New(cfg); err == nil {
		t.Fatal("Expected ConfigurationError for zero capacity")
	}
}

// TestBuiltinHandlers tests that engine handlers register at startup
func TestBuiltinHandlers(t *testing.T) {
	e, err := New(testConfig())
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if !e.Executor.HasHandler("engine.stats") {
		t.Error("engine.stats should be registered")
	}
	if !e.Executor.HasHandler("audio.play") {
		t.Error("audio.play should be registered")
	}
}

// TestEngineStatsHandler tests the stats round trip through a generic
// command and the callback queue
func TestEngineStatsHandler(t *testing.T) {
	e, _ := New(testConfig())

	id := e.IDs.Next()
	e.GenericQueue.Push(command.New("engine.stats", "{}", "monitor", id))
	e.Update()

	var got *callback.Data
	e.CallbackQueue.Drain(func(d callback.Data) {
		if d.CallbackID == id {
			got = &d
		}
	})
	if got == nil {
		t.Fatal("No stats callback delivered")
	}
	if got.ErrorMessage != "" {
		t.Fatalf("Stats handler failed: %s", got.ErrorMessage)
	}

	var stats command.Statistics
	if err := json.Unmarshal([]byte(got.ResultJSON), &stats); err != nil {
		t.Fatalf("resultJson is not a statistics document: %v", err)
	}
	// The snapshot is taken inside the handler, before the executor
	// counts the stats command itself
	if stats.TotalExecuted != 0 {
		t.Errorf("TotalExecuted = %d, want 0 (snapshot precedes counting the stats command)", stats.TotalExecuted)
	}
}

// TestUpdateOrderHandlerThenCallback tests that a handler result is
// observable only after Update has run both the drain and the delivery
func TestUpdateOrderHandlerThenCallback(t *testing.T) {
	e, _ := New(testConfig())
	e.Executor.RegisterHandler("noop", func(any) command.Result {
		return command.Success(nil)
	})

	id := e.IDs.Next()
	e.GenericQueue.Push(command.New("noop", nil, "a", id))

	// Before Update nothing is visible
	if !e.CallbackQueue.IsEmpty() {
		t.Fatal("Callback queue must be empty before Update")
	}

	e.Update()

	n := 0
	e.CallbackQueue.Drain(func(callback.Data) { n++ })
	if n != 1 {
		t.Fatalf("Callback records after Update = %d, want 1", n)
	}
}

// TestCrossThreadEndToEnd tests the full plane with a live script
// worker goroutine: submissions flow in, exactly one callback per
// command flows out, in bounded time
func TestCrossThreadEndToEnd(t *testing.T) {
	const total = 200

	cfg := testConfig()
	cfg.Executor.RateLimitPerAgent = 0 // not under test here
	e, _ := New(cfg)
	e.Executor.RegisterHandler("work", func(any) command.Result {
		return command.Success(map[string]any{"resultId": uint64(1)})
	})

	stop := make(chan struct{})
	var mainWG sync.WaitGroup
	mainWG.Add(1)
	go func() {
		defer mainWG.Done()
		ticker := time.NewTicker(time.Millisecond)
		defer ticker.Stop()
		for {
			select {
			case <-stop:
				e.Update()
				return
			case <-ticker.C:
				e.Update()
			}
		}
	}()

	// Script worker: submit with retry-on-full, then drain callbacks
	received := make(map[uint64]int)
	var scriptWG sync.WaitGroup
	scriptWG.Add(1)
	go func() {
		defer scriptWG.Done()

		for i := 0; i < total; i++ {
			id := e.IDs.Next()
			cmd := command.New("work", nil, "worker-1", id)
			for e.GenericQueue.Push(cmd) != nil {
				time.Sleep(time.Millisecond)
			}
			received[id] = 0
		}

		deadline := time.Now().Add(10 * time.Second)
		done := 0
		for done < total && time.Now().Before(deadline) {
			e.CallbackQueue.Drain(func(d callback.Data) {
				received[d.CallbackID]++
				done++
			})
			time.Sleep(time.Millisecond)
		}
	}()

	scriptWG.Wait()
	close(stop)
	mainWG.Wait()

	if got := e.Executor.TotalExecuted(); got != total {
		t.Errorf("TotalExecuted = %d, want %d", got, total)
	}
	for id, n := range received {
		if n != 1 {
			t.Errorf("Callback %d delivered %d times, want exactly 1", id, n)
		}
	}
}

// TestStopJoinsEverything tests that shutdown joins the audio goroutine
// and outstanding jobs without hanging
func TestStopJoinsEverything(t *testing.T) {
	e, _ := New(testConfig())
	e.Start()

	done := make(chan struct{})
	go func() {
		e.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Stop did not return")
	}
	if e.Audio.Running() {
		t.Error("Audio should be stopped")
	}
}
