package quotes

import (
	"sync"
	"time"
)

// LinkCheckInterval bounds how often the host interfaces are inspected.
const LinkCheckInterval = time.Second

// linkCache remembers the last link check so a fast control loop does not
// enumerate interfaces on every iteration.
type linkCache struct {
	mu        sync.Mutex
	check     func() bool
	interval  time.Duration
	now       func() time.Time
	checkedAt time.Time
	last      bool
	valid     bool
}

func newLinkCache(check func() bool, interval time.Duration) *linkCache {
	return &linkCache{check: check, interval: interval, now: time.Now}
}

func (c *linkCache) up() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := c.now()
	if c.valid && now.Sub(c.checkedAt) < c.interval {
		return c.last
	}
	c.last = c.check()
	c.checkedAt = now
	c.valid = true
	return c.last
}
