// Package jobs runs blocking I/O work off the main thread.
//
// The pool executes resource-loading jobs dispatched by the main
// thread's resource consumer. Workers never touch the SPSC queues
// directly: each job reports completion into a mutex-guarded buffer
// owned by its dispatcher, and the main thread converts completions into callback
// records. The single-producer contract on the callback queue is never
// violated.
package jobs

import (
	"log"
	"sync"

	"github.com/bytedance/gopkg/util/gopool"
	"github.com/google/uuid"
)

// DefaultWorkers bounds concurrent blocking I/O.
const DefaultWorkers = 4

// System is a bounded goroutine pool with join-on-shutdown semantics.
type System struct {
	pool gopool.Pool
	wg   sync.WaitGroup
}

// NewSystem creates a pool with the given worker cap.
func NewSystem(workers int) *System {
	if workers < 1 {
		workers = DefaultWorkers
	}
	return &System{
		pool: gopool.NewPool("helix-io", int32(workers), gopool.NewConfig()),
	}
}

// Submit dispatches fn to a worker and returns the job id used in the
// audit trail. fn must report its outcome itself; the pool only tracks
// completion.
func (s *System) Submit(name string, fn func()) uuid.UUID {
	id := uuid.New()
	s.wg.Add(1)
	s.pool.Go(func() {
		defer s.wg.Done()
		fn()
		log.Printf("JobSystem: job %s (%s) completed", id, name)
	})
	return id
}

// Wait blocks until every submitted job has finished. Called at engine
// shutdown; jobs are joined, never detached.
func (s *System) Wait() {
	s.wg.Wait()
}
