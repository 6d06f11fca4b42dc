package render

import "testing"

// TestQueueFIFO tests command delivery order through the render queue
func TestQueueFIFO(t *testing.T) {
	q, err := NewQueue(8)
	if err != nil {
		t.Fatalf("NewQueue failed: %v", err)
	}

	q.Push(Command{Type: CreateMesh, CallbackID: 1})
	q.Push(Command{Type: UpdateEntity, TargetID: 1})
	q.Push(Command{Type: DestroyEntity, TargetID: 1})

	var types []CommandType
	q.Drain(func(c Command) { types = append(types, c.Type) })

	want := []CommandType{CreateMesh, UpdateEntity, DestroyEntity}
	if len(types) != len(want) {
		t.Fatalf("Drained %d, want %d", len(types), len(want))
	}
	for i := range want {
		if types[i] != want[i] {
			t.Errorf("Order violated at %d: got %d want %d", i, types[i], want[i])
		}
	}
}

// TestVec3Add tests delta composition
func TestVec3Add(t *testing.T) {
	v := Vec3{X: 1, Y: 2, Z: 3}.Add(Vec3{X: -1, Y: 0.5, Z: 1})
	if v != (Vec3{X: 0, Y: 2.5, Z: 4}) {
		t.Errorf("Add = %+v", v)
	}
}

// TestQueueInvalidCapacity tests the construction precondition
func TestQueueInvalidCapacity(t *testing.T) {
	if _, err := NewQueue(0); err == nil {
		t.Error("Expected error for capacity 0")
	}
}
