package callback

import "log"

// Outbox stages callback records on the main thread until they fit on
// the callback queue. Fullness defers delivery to the next frame; it
// never drops a record.
//
// Main-thread confined, like the subsystems that own one.
type Outbox struct {
	Name    string
	pending []Data
}

// Stage appends a record for delivery. callbackID 0 means the caller
// did not ask for an acknowledgement; the record is discarded.
func (o *Outbox) Stage(d Data) {
	if d.CallbackID == 0 {
		return
	}
	o.pending = append(o.pending, d)
}

// Deliver pushes staged records in order. Stops at the first full
// rejection and keeps the remainder for next frame.
func (o *Outbox) Deliver(q *Queue) {
	n := 0
	for _, data := range o.pending {
		if err := q.Push(data); err != nil {
			log.Printf("%s: callback queue full, %d records deferred", o.Name, len(o.pending)-n)
			break
		}
		n++
	}
	o.pending = o.pending[n:]
}

// Len returns the number of staged records.
func (o *Outbox) Len() int { return len(o.pending) }
