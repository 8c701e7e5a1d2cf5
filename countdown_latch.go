package forgez

import (
	"sync/atomic"
	"time"
)

// CountdownLatch is a multi-producer countdown event: constructed with an
// initial count k, it fires its embedded Latch exactly once — when the
// notifier that drives the counter to zero calls NotifyOne or NotifyAll.
// This is the Go name for the source's EventMPSC.
type CountdownLatch struct {
	count atomic.Int64
	latch *Latch
}

// NewCountdownLatch returns a CountdownLatch with initial count k. A
// latch constructed with k == 0 is already set.
func NewCountdownLatch(k int64) *CountdownLatch {
	c := &CountdownLatch{latch: NewLatch()}
	c.Reset(k)
	return c
}

// NotifyOne decrements the counter and fires the latch if this call drove
// it to zero, reporting whether it did. Safe to call concurrently from any
// number of goroutines; exactly one caller observes the zero transition per
// generation, which is what the returned bool exposes.
func (c *CountdownLatch) NotifyOne() bool {
	if c.count.Add(-1) == 0 {
		c.latch.NotifyOne()
		return true
	}
	return false
}

// NotifyAll decrements the counter and, if this call drove it to zero,
// wakes every waiter, reporting whether it did.
func (c *CountdownLatch) NotifyAll() bool {
	if c.count.Add(-1) == 0 {
		c.latch.NotifyAll()
		return true
	}
	return false
}

// IsSet reports whether the counter has reached zero since construction or
// the last Reset.
func (c *CountdownLatch) IsSet() bool {
	return c.latch.IsSet()
}

// Wait blocks until the counter reaches zero.
func (c *CountdownLatch) Wait() {
	c.latch.Wait()
}

// WaitFor blocks until the counter reaches zero or the timeout elapses.
func (c *CountdownLatch) WaitFor(d time.Duration) bool {
	return c.latch.WaitFor(d)
}

// Reset atomically restores the counter to k and clears the latch. The
// caller must ensure no goroutine is blocked in Wait/WaitFor.
func (c *CountdownLatch) Reset(k int64) {
	c.count.Store(k)
	c.latch.Reset()
	if k <= 0 {
		c.latch.NotifyAll()
	}
}
