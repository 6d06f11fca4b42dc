package frameevent

import (
	"sync"
	"testing"
)

// TestFrameEventOrdering tests that a mixed key/cursor sequence drains
// in exactly the submitted order with intact field values
func TestFrameEventOrdering(t *testing.T) {
	q, err := NewQueue(16)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}

	q.Push(Key(KeyDown, 65))
	q.Push(Key(KeyDown, 66))
	q.Push(Cursor(1, 2, 0, 0))
	q.Push(Key(KeyUp, 65))

	var got []Event
	q.Drain(func(e Event) { got = append(got, e) })

	if len(got) != 4 {
		t.Fatalf("Drained %d events, want 4", len(got))
	}
	if got[0].Type != KeyDown || got[0].KeyCode != 65 {
		t.Errorf("Event 0 mismatch: %+v", got[0])
	}
	if got[1].Type != KeyDown || got[1].KeyCode != 66 {
		t.Errorf("Event 1 mismatch: %+v", got[1])
	}
	if got[2].Type != CursorUpdate || got[2].X != 1 || got[2].Y != 2 || got[2].DX != 0 || got[2].DY != 0 {
		t.Errorf("Event 2 mismatch: %+v", got[2])
	}
	if got[3].Type != KeyUp || got[3].KeyCode != 65 {
		t.Errorf("Event 3 mismatch: %+v", got[3])
	}
}

// TestFrameEventCrossThread tests main→worker delivery order across a
// real goroutine pair
func TestFrameEventCrossThread(t *testing.T) {
	const total = 10000
	q, _ := NewQueue(DefaultQueueCapacity)

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < total; {
			if err := q.Push(Key(KeyDown, int32(i))); err == nil {
				i++
			}
		}
	}()

	var codes []int32
	go func() {
		defer wg.Done()
		for len(codes) < total {
			q.Drain(func(e Event) { codes = append(codes, e.KeyCode) })
		}
	}()

	wg.Wait()
	for i, c := range codes {
		if c != int32(i) {
			t.Fatalf("Order violated at %d: got %d", i, c)
		}
	}
}

// TestTypeNames tests the wire names
func TestTypeNames(t *testing.T) {
	want := map[Type]string{
		KeyDown:         "keyDown",
		KeyUp:           "keyUp",
		MouseButtonDown: "mouseButtonDown",
		MouseButtonUp:   "mouseButtonUp",
		CursorUpdate:    "cursorUpdate",
	}
	for typ, name := range want {
		if typ.String() != name {
			t.Errorf("Type(%d).String() = %q, want %q", typ, typ.String(), name)
		}
	}
}
