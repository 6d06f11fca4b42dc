package audio

import (
	"testing"
	"time"

	"github.com/gopxl/beep"
)

// disabledConfig avoids touching the speaker in CI
func disabledConfig() Config {
	cfg := DefaultConfig()
	cfg.Enabled = false
	return cfg
}

func nilResolve(uint64) *beep.Buffer { return nil }

// TestSubmitWhenStopped tests that a stopped engine rejects commands
func TestSubmitWhenStopped(t *testing.T) {
	e, err := NewEngine(disabledConfig(), 8, nilResolve)
	if err != nil {
		t.Fatalf("NewEngine failed: %v", err)
	}

	if e.Submit(Command{Type: Play, Handle: 1}) {
		t.Error("Submit should fail before Start")
	}

	e.Start()
	if !e.Running() {
		t.Error("Engine should report running after Start")
	}
	e.Stop()
	if e.Running() {
		t.Error("Engine should report stopped after Stop")
	}
	if e.Submit(Command{Type: Play, Handle: 1}) {
		t.Error("Submit should fail after Stop")
	}
}

// TestDisabledPlaybackCountsDrops tests that disabled audio consumes
// commands without playing them
func TestDisabledPlaybackCountsDrops(t *testing.T) {
	e, _ := NewEngine(disabledConfig(), 16, nilResolve)
	e.Start()
	defer e.Stop()

	for i := 0; i < 5; i++ {
		if !e.Submit(Command{Type: Play, Handle: uint64(i)}) {
			t.Fatalf("Submit %d rejected", i)
		}
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		_, dropped, _ := e.Stats()
		if dropped == 5 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("Dropped = %d, want 5", dropped)
		}
		time.Sleep(5 * time.Millisecond)
	}

	played, _, overflows := e.Stats()
	if played != 0 || overflows != 0 {
		t.Errorf("played=%d overflows=%d, want 0/0", played, overflows)
	}
}

// TestQueueOverflow tests the overflow counter when the ring is full
func TestQueueOverflow(t *testing.T) {
	e, _ := NewEngine(disabledConfig(), 4, nilResolve)
	// Mark running without starting the drain loop so the ring fills
	e.running.Store(true)

	accepted := 0
	for i := 0; i < 10; i++ {
		if e.Submit(Command{Type: Play}) {
			accepted++
		}
	}
	if accepted != 3 {
		t.Errorf("Accepted %d, want 3 (capacity 4 holds 3)", accepted)
	}
	if _, _, overflows := e.Stats(); overflows != 7 {
		t.Errorf("Overflows = %d, want 7", overflows)
	}
	e.running.Store(false)
}

// TestSetVolumeClamped tests volume clamping through the command path
func TestSetVolumeClamped(t *testing.T) {
	e, _ := NewEngine(disabledConfig(), 8, nilResolve)

	e.process(Command{Type: SetVolume, Volume: 3.0})
	if e.Volume() != 1.0 {
		t.Errorf("Volume = %f, want clamped 1.0", e.Volume())
	}
	e.process(Command{Type: SetVolume, Volume: -0.5})
	if e.Volume() != 0.0 {
		t.Errorf("Volume = %f, want clamped 0.0", e.Volume())
	}
}
