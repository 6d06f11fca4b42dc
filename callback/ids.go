package callback

import "sync/atomic"

// IDAllocator hands out callback ids shared by every flow in the
// engine. Ids are monotonic and never 0 — 0 is reserved for
// fire-and-forget submissions.
//
// Safe for concurrent use from any goroutine.
type IDAllocator struct {
	next atomic.Uint64
}

// Next returns a fresh callback id.
func (a *IDAllocator) Next() uint64 {
	return a.next.Add(1)
}
