package automation

import (
	"sync"
	"time"
)

// flushFunc receives the triggers collected during one burst.
type flushFunc func(triggers []map[string]any)

// quietCollector flushes after a quiet period with no new triggers.
type quietCollector struct {
	mu       sync.Mutex
	triggers []map[string]any
	timer    *time.Timer
	quiet    time.Duration
	onFlush  flushFunc
}

func newQuietCollector(quiet time.Duration, onFlush flushFunc) *quietCollector {
	return &quietCollector{
		quiet:   quiet,
		onFlush: onFlush,
	}
}

// add queues a trigger and restarts the quiet timer
func (c *quietCollector) add(trigger map[string]any) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.triggers = append(c.triggers, trigger)

	if c.timer != nil {
		c.timer.Stop()
	}
	c.timer = time.AfterFunc(c.quiet, c.flush)
}

func (c *quietCollector) flush() {
	c.mu.Lock()
	triggers := c.triggers
	c.triggers = nil
	c.mu.Unlock()

	if len(triggers) > 0 {
		c.onFlush(triggers)
	}
}

// stop drops pending triggers
func (c *quietCollector) stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.timer != nil {
		c.timer.Stop()
	}
	c.triggers = nil
}
