package ring

import "code.hybscloud.com/iox"

// ErrFull indicates the ring cannot accept a value right now.
//
// This is a control flow signal, not a failure: the consumer is behind
// and the producer should drop, coalesce, or retry next frame. Aliased
// to iox.ErrWouldBlock for ecosystem consistency.
var ErrFull = iox.ErrWouldBlock

// IsFull reports whether err is the backpressure signal, including
// wrapped forms.
func IsFull(err error) bool {
	return iox.IsWouldBlock(err)
}
