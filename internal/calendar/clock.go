package calendar

import (
	"sync"
	"time"
)

// Clock supplies the current day. Inject a FixedClock in tests.
type Clock interface {
	Today() Date
}

// SystemClock reads the wall clock in the configured location.
type SystemClock struct {
	Location *time.Location
}

func (c SystemClock) Today() Date {
	loc := c.Location
	if loc == nil {
		loc = time.UTC
	}
	return DateOf(time.Now().In(loc))
}

// FixedClock always returns the same day until Set is called.
type FixedClock struct {
	mu    sync.RWMutex
	today Date
}

func NewFixedClock(today Date) *FixedClock {
	return &FixedClock{today: today}
}

func (c *FixedClock) Today() Date {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.today
}

func (c *FixedClock) Set(today Date) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.today = today
}
