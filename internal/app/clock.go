package app

import (
	"sync"
	"time"
)

// FrameClock paces the loop.
type FrameClock interface {
	// C delivers ticks. A slow receiver misses ticks instead of queueing them.
	C() <-chan time.Time
	// SetFPS changes the tick rate. Non-positive values are ignored.
	SetFPS(fps int)
	Stop()
}

// TickerClock is a FrameClock backed by time.Ticker.
type TickerClock struct {
	mu     sync.Mutex
	ticker *time.Ticker
	fps    int
}

// NewTickerClock creates a clock ticking fps times per second.
func NewTickerClock(fps int) *TickerClock {
	if fps <= 0 {
		fps = 1
	}
	return &TickerClock{ticker: time.NewTicker(interval(fps)), fps: fps}
}

func interval(fps int) time.Duration {
	return time.Second / time.Duration(fps)
}

// C implements FrameClock.
func (c *TickerClock) C() <-chan time.Time {
	return c.ticker.C
}

// SetFPS implements FrameClock.
func (c *TickerClock) SetFPS(fps int) {
	if fps <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if fps == c.fps {
		return
	}
	c.fps = fps
	c.ticker.Reset(interval(fps))
}

// FPS returns the current tick rate.
func (c *TickerClock) FPS() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fps
}

// Stop implements FrameClock.
func (c *TickerClock) Stop() {
	c.ticker.Stop()
}
