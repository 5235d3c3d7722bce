// Package testutil holds helpers shared by tests across packages.
package testutil

import (
	"sync"
	"time"
)

// Clock is a thread-safe fake wall clock. Each call to Now advances it by a
// fixed step, so successive timestamps are distinct and ordered.
type Clock struct {
	mu    sync.Mutex
	start time.Time
	step  time.Duration
	now   time.Time
}

// NewClock creates a clock at start. The first call to Now returns
// start+step.
func NewClock(start time.Time, step time.Duration) *Clock {
	return &Clock{start: start, step: step, now: start}
}

// Now advances the clock by one step and returns the new time.
func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(c.step)
	return c.now
}

// Current returns the time of the last tick without advancing.
func (c *Clock) Current() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Reset moves the clock back to its start.
func (c *Clock) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.start
}
