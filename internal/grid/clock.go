package grid

import "sync/atomic"

// Clock is a monotonic sequence source.
//
// Each call to Next returns a value strictly greater than every value returned
// before it. A clock is never rewound, which is what keeps instance and row
// sequences unique for the lifetime of the process or grid.
//
// Thread-safety: Clock is safe for concurrent use (atomic operations). The
// process-wide instance clock relies on this; row clocks are only ever touched
// by their owning grid.
type Clock struct {
	seq atomic.Int64
}

// NewClock creates a new clock starting at 0. The first Next returns 1.
func NewClock() *Clock {
	return &Clock{}
}

// Next increments the clock and returns the new value.
func (c *Clock) Next() int64 {
	return c.seq.Add(1)
}

// Current returns the last value handed out, or 0 if none.
func (c *Clock) Current() int64 {
	return c.seq.Load()
}

// instances hands out grid instance sequences for the whole process.
var instances = NewClock()
