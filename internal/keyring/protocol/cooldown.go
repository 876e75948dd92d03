package protocol

import (
	"context"
	"sync"
	"time"

	"github.com/dropbox/godropbox/time2"
)

type phase int

const (
	phaseReady phase = iota
	phaseCoolingDown
)

// cooldown keeps the device link from showing a second prompt right after the unlock prompt.
// A fresh unlock arms it; the next request waits out the remainder and returns it to ready.
type cooldown struct {
	mu       sync.Mutex
	clock    time2.Clock
	interval time.Duration
	phase    phase
	until    time.Time
}

func (c *cooldown) arm() {
	if c.interval <= 0 {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.phase = phaseCoolingDown
	c.until = c.clock.Now().Add(c.interval)
}

func (c *cooldown) coolingDown() bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.phase == phaseCoolingDown
}

// wait blocks until the cooldown is over. Cancellation keeps the cooldown armed.
func (c *cooldown) wait(ctx context.Context) error {
	c.mu.Lock()
	if c.phase == phaseReady {
		c.mu.Unlock()
		return nil
	}
	remaining := c.until.Sub(c.clock.Now())
	c.mu.Unlock()

	if remaining > 0 {
		select {
		case <-c.clock.After(remaining):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	c.mu.Lock()
	c.phase = phaseReady
	c.mu.Unlock()

	return nil
}
