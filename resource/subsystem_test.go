package resource

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/lixenwraith/helix/callback"
	"github.com/lixenwraith/helix/jobs"
)

func writeTempFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}
	return path
}

func drainRecords(q *callback.Queue) []callback.Data {
	var out []callback.Data
	q.Drain(func(d callback.Data) { out = append(out, d) })
	return out
}

// TestSyncLoad tests an inline load delivering a RESOURCE_LOADED record
func TestSyncLoad(t *testing.T) {
	s := NewSubsystem(jobs.NewSystem(1))
	path := writeTempFile(t, "default.hlsl", "float4 main() : SV_Target { return 1; }")

	s.Apply(Command{Type: LoadShader, Path: path, CallbackID: 1})

	if s.Count() != 1 {
		t.Fatalf("Count = %d, want 1", s.Count())
	}

	q, _ := callback.NewQueue(8)
	s.DeliverPendingCallbacks(q)
	records := drainRecords(q)
	if len(records) != 1 {
		t.Fatalf("Records = %d, want 1", len(records))
	}
	r := records[0]
	if r.Type != callback.ResourceLoaded || r.ResultID == 0 || r.ErrorMessage != "" {
		t.Errorf("Record mismatch: %+v", r)
	}

	res := s.Get(r.ResultID)
	if res == nil || len(res.Data.Bytes) == 0 {
		t.Error("Loaded bytes should be stored under the handle")
	}
}

// TestLoadMissingFile tests the error record for a nonexistent path
func TestLoadMissingFile(t *testing.T) {
	s := NewSubsystem(jobs.NewSystem(1))

	s.Apply(Command{Type: LoadTexture, Path: "/nonexistent/tex.png", CallbackID: 2})

	q, _ := callback.NewQueue(8)
	s.DeliverPendingCallbacks(q)
	records := drainRecords(q)
	if len(records) != 1 || records[0].ErrorMessage == "" || records[0].ResultID != 0 {
		t.Errorf("Expected error record, got %+v", records)
	}
	if s.Count() != 0 {
		t.Error("Failed load must not store a resource")
	}
}

// TestCacheHit tests that a second load of the same path reuses the
// handle without hitting the disk
func TestCacheHit(t *testing.T) {
	s := NewSubsystem(jobs.NewSystem(1))
	path := writeTempFile(t, "model.obj", "v 0 0 0")

	s.Apply(Command{Type: LoadModel, Path: path, CallbackID: 1})

	// Delete the file; the cache hit must still succeed
	os.Remove(path)
	s.Apply(Command{Type: LoadModel, Path: path, CallbackID: 2})

	q, _ := callback.NewQueue(8)
	s.DeliverPendingCallbacks(q)
	records := drainRecords(q)
	if len(records) != 2 {
		t.Fatalf("Records = %d, want 2", len(records))
	}
	if records[0].ResultID != records[1].ResultID {
		t.Errorf("Cache hit must return the same handle: %d vs %d",
			records[0].ResultID, records[1].ResultID)
	}
	if s.Count() != 1 {
		t.Errorf("Count = %d, want 1", s.Count())
	}
}

// TestUnload tests removal and the not-found error
func TestUnload(t *testing.T) {
	s := NewSubsystem(jobs.NewSystem(1))
	path := writeTempFile(t, "font.fnt", "glyphs")

	s.Apply(Command{Type: LoadFont, Path: path, CallbackID: 1})
	handle, _ := s.Lookup(path)

	s.Apply(Command{Type: Unload, Handle: handle, CallbackID: 2})
	if s.Count() != 0 {
		t.Errorf("Count = %d after unload", s.Count())
	}
	if _, ok := s.Lookup(path); ok {
		t.Error("Cache entry must be removed on unload")
	}

	s.Apply(Command{Type: Unload, Handle: 999, CallbackID: 3})

	q, _ := callback.NewQueue(8)
	s.DeliverPendingCallbacks(q)
	records := drainRecords(q)
	if len(records) != 3 {
		t.Fatalf("Records = %d, want 3", len(records))
	}
	if records[2].ErrorMessage == "" {
		t.Error("Unload of unknown handle should produce an error record")
	}
}

// TestAsyncLoad tests the job-pool path end to end: batch, dispatch,
// drain completion, deliver callback
func TestAsyncLoad(t *testing.T) {
	pool := jobs.NewSystem(2)
	s := NewSubsystem(pool)
	pathA := writeTempFile(t, "a.png", "pixels-a")
	pathB := writeTempFile(t, "b.png", "pixels-b")

	s.Apply(Command{Type: LoadTexture, Path: pathA, Priority: 10, Async: true, CallbackID: 1})
	s.Apply(Command{Type: LoadTexture, Path: pathB, Priority: 50, Async: true, CallbackID: 2})

	if s.Count() != 0 {
		t.Fatal("Async loads must not complete before dispatch")
	}

	s.DispatchAsync()
	pool.Wait()
	s.DrainCompleted()

	if s.Count() != 2 {
		t.Fatalf("Count = %d, want 2", s.Count())
	}

	q, _ := callback.NewQueue(8)
	s.DeliverPendingCallbacks(q)
	records := drainRecords(q)
	if len(records) != 2 {
		t.Fatalf("Records = %d, want 2", len(records))
	}
	for _, r := range records {
		if r.ErrorMessage != "" || r.ResultID == 0 {
			t.Errorf("Record mismatch: %+v", r)
		}
	}
}

// TestAsyncLoadError tests that a failing async load reports an error
// record instead of storing a resource
func TestAsyncLoadError(t *testing.T) {
	pool := jobs.NewSystem(1)
	s := NewSubsystem(pool)

	s.Apply(Command{Type: LoadAudio, Path: "/nonexistent/s.wav", Async: true, CallbackID: 7})
	s.DispatchAsync()
	pool.Wait()
	s.DrainCompleted()

	q, _ := callback.NewQueue(8)
	s.DeliverPendingCallbacks(q)
	records := drainRecords(q)
	if len(records) != 1 || records[0].ErrorMessage == "" {
		t.Errorf("Expected error record, got %+v", records)
	}
	if s.Count() != 0 {
		t.Error("Failed async load must not store a resource")
	}
}

// TestLoadAudioUnsupportedFormat tests the decoder format guard
func TestLoadAudioUnsupportedFormat(t *testing.T) {
	path := writeTempFile(t, "music.mp3", "not-a-wav")
	if _, err := Load(LoadAudio, path); err == nil {
		t.Error("Expected unsupported-format error for .mp3")
	}
}
