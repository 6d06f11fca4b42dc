package command

import "time"

// NowFunc returns monotonic seconds since an arbitrary fixed origin.
// The executor's token buckets refill against this clock; tests swap in
// a controllable implementation.
type NowFunc func() float64

var processStart = time.Now()

// MonotonicSeconds is the production clock: seconds elapsed since
// process start, immune to wall-clock adjustment.
func MonotonicSeconds() float64 {
	return time.Since(processStart).Seconds()
}
