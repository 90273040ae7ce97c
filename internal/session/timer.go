package session

import (
	"sync"
	"time"
)

// countdown is the cancellable scheduled task backing the quiz timer. It
// ticks at a fixed interval, reporting the remaining whole seconds, and
// fires onExpire exactly once when the budget reaches zero. Stop is
// idempotent and safe to call from the tick callbacks themselves.
type countdown struct {
	ticker *time.Ticker
	stop   chan struct{}
	once   sync.Once
}

// startCountdown arms a countdown of total seconds. onTick receives the
// remaining seconds after every tick; onExpire runs after the final tick.
// Both callbacks are invoked from the countdown's own goroutine.
func startCountdown(total int, interval time.Duration, onTick func(remaining int), onExpire func()) *countdown {
	c := &countdown{
		ticker: time.NewTicker(interval),
		stop:   make(chan struct{}),
	}

	go func() {
		remaining := total
		for {
			select {
			case <-c.stop:
				return
			case <-c.ticker.C:
				remaining--
				if remaining < 0 {
					remaining = 0
				}
				onTick(remaining)
				if remaining == 0 {
					c.Stop()
					onExpire()
					return
				}
			}
		}
	}()

	return c
}

// Stop disarms the countdown. Ticks already delivered may still be in
// flight; consumers guard against them with their own stage checks.
func (c *countdown) Stop() {
	c.once.Do(func() {
		c.ticker.Stop()
		close(c.stop)
	})
}
