package service

import (
	"sync"
	"time"
)

// Clock supplies transaction timestamps.
type Clock interface {
	Now() time.Time
}

// SystemClock returns wall-clock UTC time at second resolution and never goes
// backwards, even if the system clock does.
type SystemClock struct {
	mu   sync.Mutex
	last time.Time
}

// NewSystemClock returns a ready clock.
func NewSystemClock() *SystemClock {
	return &SystemClock{}
}

func (c *SystemClock) Now() time.Time {
	now := time.Now().UTC().Truncate(time.Second)
	c.mu.Lock()
	defer c.mu.Unlock()
	if now.Before(c.last) {
		return c.last
	}
	c.last = now
	return now
}
