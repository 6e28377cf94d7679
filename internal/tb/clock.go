package tb

import "sync/atomic"

// SeqClock is a monotonic logical clock stamping events in the merged
// stream. Arrival order, not wall-clock time, is the only ordering the
// scoreboard may rely on.
//
// Thread-safety: safe for concurrent use (atomic operations), though the
// cooperative scheduler serializes the producing monitors in practice.
type SeqClock struct {
	seq atomic.Int64
}

// Next returns the next sequence number and increments the clock.
func (c *SeqClock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without incrementing.
func (c *SeqClock) Current() int64 {
	return c.seq.Load()
}
