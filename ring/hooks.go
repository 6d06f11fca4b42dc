package ring

import "log"

// Hooks receives ring lifecycle notifications. Implementations must be
// bounded-time and must not touch the ring they are attached to.
type Hooks[T any] interface {
	// OnSubmit runs on the producer goroutine just before the slot write
	OnSubmit(value *T)

	// OnConsume runs on the consumer goroutine just before the drain closure
	OnConsume(value *T)

	// OnFull runs on the producer goroutine when Push returns ErrFull
	OnFull()
}

// NopHooks is the no-op default. Embed it to override a single hook.
type NopHooks[T any] struct{}

func (NopHooks[T]) OnSubmit(*T)  {}
func (NopHooks[T]) OnConsume(*T) {}
func (NopHooks[T]) OnFull()      {}

// WarnHooks logs a warning when the ring rejects a push. The render,
// generic, resource, callback, and frame-event queues attach one so
// saturation shows up in the log rather than silently dropping work.
// The audio command ring has no hooks; it counts overflows instead.
type WarnHooks[T any] struct {
	NopHooks[T]
	Name string
}

func (h WarnHooks[T]) OnFull() {
	log.Printf("%s: queue full, submission rejected (backpressure)", h.Name)
}
