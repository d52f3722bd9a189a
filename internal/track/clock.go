package track

import "sync/atomic"

// Clock is a monotonic sequence counter stamped onto every call record.
//
// Records for a single channel are appended in the order their critical
// sections complete, which under true concurrency may differ from wall-clock
// invocation order. The sequence number makes interleavings across channels
// reconstructable after the fact without relying on wall time.
//
// Thread-safety: safe for concurrent use (atomic operations).
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a clock starting at 0.
func NewClock() *Clock {
	return &Clock{}
}

// Next returns the next sequence number and advances the clock.
// Each call returns a unique, strictly increasing value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the current sequence number without advancing.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}
