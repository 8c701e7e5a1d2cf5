package forgez

import (
	"sync/atomic"
	"time"
)

// Counter is a plain countdown counter that callers may both increment and
// decrement; it fires its embedded latch exactly when a decrement drives it
// to zero. It differs from CountdownLatch in that both directions are
// exposed and the initial value is zero. This is the Go name for the
// source's EventCountdown.
type Counter struct {
	count atomic.Int64
	latch *Latch
}

// NewCounter returns a Counter starting at zero, already latched (nothing
// to wait for until an Increment is observed).
func NewCounter() *Counter {
	c := &Counter{latch: NewLatch()}
	c.latch.NotifyAll()
	return c
}

// Increment returns the counter's new value after adding one. If this
// transitions the counter away from zero, the latch is cleared so a
// subsequent Wait blocks again.
func (c *Counter) Increment() int64 {
	prev := c.count.Add(1) - 1
	if prev == 0 {
		c.latch.Reset()
	}
	return prev + 1
}

// Decrement returns the counter's new value after subtracting one, firing
// the latch exactly when the result is zero.
func (c *Counter) Decrement() int64 {
	n := c.count.Add(-1)
	if n == 0 {
		c.latch.NotifyAll()
	}
	return n
}

// Wait returns immediately if the counter is non-positive or already
// latched; otherwise it blocks until a Decrement drives the counter to
// zero.
func (c *Counter) Wait() {
	if c.count.Load() <= 0 {
		return
	}
	c.latch.Wait()
}

// WaitFor is the timed variant of Wait.
func (c *Counter) WaitFor(d time.Duration) bool {
	if c.count.Load() <= 0 {
		return true
	}
	return c.latch.WaitFor(d)
}

// Reset restores the counter to zero and the latch to set.
func (c *Counter) Reset() {
	c.count.Store(0)
	c.latch.Reset()
	c.latch.NotifyAll()
}
