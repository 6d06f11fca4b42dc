// Package ring provides the bounded lock-free SPSC channel underlying
// every cross-thread queue in the engine.
//
// # Ring Architecture
//
// A Ring carries typed values from exactly one producer goroutine to
// exactly one consumer goroutine. It is a Lamport ring buffer: the
// producer owns the tail index, the consumer owns the head index, and
// each side publishes its progress with a release store that the other
// side observes with an acquire load. One slot is always sacrificed so
// that head == tail means empty and (tail+1) mod capacity == head means
// full.
//
// Thread-Safety Guarantees:
//   - Push is wait-free and called from the single producer goroutine only
//   - Drain is called from the single consumer goroutine only
//   - Snapshot observers (ApproxSize, IsEmpty, ...) may run on any
//     goroutine but return stale values
//   - Statistics counters are relaxed and must not be used for
//     synchronization
//
// Backpressure:
//   - Push never blocks; a full ring returns ErrFull and the producer
//     decides whether to drop, coalesce, or retry next frame
package ring

import (
	"fmt"
	"sync/atomic"

	"code.hybscloud.com/atomix"
)

// pad is cache line padding to prevent false sharing.
type pad [64]byte

// Ring is a bounded SPSC ring buffer for values of type T.
//
// head and tail sit on separate cache lines so producer and consumer
// cores do not thrash each other's lines. The backing slice sits apart
// from both.
type Ring[T any] struct {
	buffer   []T
	capacity uint64
	hooks    Hooks[T]

	_    pad
	head atomix.Uint64 // Consumer write, producer read
	_    pad
	tail atomix.Uint64 // Producer write, consumer read
	_    pad

	// Statistics only, relaxed ordering
	totalSubmitted atomic.Uint64
	totalConsumed  atomic.Uint64
}

// New creates a ring with the given capacity. One slot is sacrificed to
// distinguish empty from full, so a ring of capacity N holds at most
// N-1 values. hooks may be nil.
func New[T any](capacity int, hooks Hooks[T]) (*Ring[T], error) {
	if capacity < 1 {
		return nil, fmt.Errorf("ring: capacity must be >= 1, got %d", capacity)
	}
	return &Ring[T]{
		buffer:   make([]T, capacity),
		capacity: uint64(capacity),
		hooks:    hooks,
	}, nil
}

// Push enqueues one value (producer goroutine only).
//
// Returns ErrFull without modifying the ring when the consumer has
// fallen behind. O(1), wait-free, allocation-free.
func (r *Ring[T]) Push(value T) error {
	tail := r.tail.LoadRelaxed()
	next := tail + 1
	if next == r.capacity {
		next = 0
	}

	// Acquire pairs with the consumer's release store of head
	head := r.head.LoadAcquire()
	if next == head {
		if r.hooks != nil {
			r.hooks.OnFull()
		}
		return ErrFull
	}

	if r.hooks != nil {
		r.hooks.OnSubmit(&value)
	}

	r.buffer[tail] = value

	// Counter bumped before the release store so totalSubmitted >=
	// totalConsumed holds for any observer once the slot is consumable
	r.totalSubmitted.Add(1)

	// Release publishes the slot write before the new tail
	r.tail.StoreRelease(next)
	return nil
}

// Drain consumes every value currently visible, in FIFO order, invoking
// fn once per value (consumer goroutine only). Each slot is reset to
// the zero value after being read so owned resources inside payloads
// are released to the GC. Returns the number of values drained.
//
// Values pushed while Drain runs are picked up by the next Drain.
func (r *Ring[T]) Drain(fn func(T)) int {
	head := r.head.LoadRelaxed()

	// Acquire pairs with the producer's release store of tail
	tail := r.tail.LoadAcquire()

	var zero T
	n := 0
	for head != tail {
		value := r.buffer[head]
		r.buffer[head] = zero

		if r.hooks != nil {
			r.hooks.OnConsume(&value)
		}
		fn(value)

		head++
		if head == r.capacity {
			head = 0
		}
		r.totalConsumed.Add(1)
		n++
	}

	// Release publishes the freed slots back to the producer
	r.head.StoreRelease(head)
	return n
}

// Capacity returns the slot count fixed at construction. Usable
// capacity is one less.
func (r *Ring[T]) Capacity() int { return int(r.capacity) }

// ApproxSize returns the current element count. The value may be stale
// immediately; monitoring only.
func (r *Ring[T]) ApproxSize() int {
	head := r.head.LoadRelaxed()
	tail := r.tail.LoadRelaxed()
	if tail >= head {
		return int(tail - head)
	}
	return int(r.capacity - (head - tail))
}

// IsEmpty reports whether the ring appears empty. Monitoring only.
func (r *Ring[T]) IsEmpty() bool {
	return r.head.LoadRelaxed() == r.tail.LoadRelaxed()
}

// IsFull reports whether the ring appears full. Monitoring only.
func (r *Ring[T]) IsFull() bool {
	tail := r.tail.LoadRelaxed()
	next := tail + 1
	if next == r.capacity {
		next = 0
	}
	return next == r.head.LoadRelaxed()
}

// TotalSubmitted returns the number of successful pushes since creation.
func (r *Ring[T]) TotalSubmitted() uint64 { return r.totalSubmitted.Load() }

// TotalConsumed returns the number of drained values since creation.
func (r *Ring[T]) TotalConsumed() uint64 { return r.totalConsumed.Load() }
