package clock

import (
	"sync"
	"time"
)

// FakeClock is a controllable Clock for tests.
type FakeClock struct {
	lock    sync.Mutex
	current time.Time
}

var _ Clock = &FakeClock{}

func NewFakeClock(start time.Time) *FakeClock {
	return &FakeClock{current: start}
}

func (c *FakeClock) Now() time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	return c.current
}

func (c *FakeClock) Set(t time.Time) {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.current = t
}

// Advance moves the clock forward and returns the updated time.
func (c *FakeClock) Advance(d time.Duration) time.Time {
	c.lock.Lock()
	defer c.lock.Unlock()
	c.current = c.current.Add(d)
	return c.current
}
