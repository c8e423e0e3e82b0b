package sim

import (
	"sync"
	"time"
)

// Clock supplies board time in timer ticks.
type Clock interface {
	Now() uint64
}

// StepClock advances by a fixed number of ticks on every read, so each poll
// of a simulated peripheral costs the same amount of board time. Runs are
// fully deterministic.
type StepClock struct {
	mu   sync.Mutex
	now  uint64
	step uint64
}

// NewStepClock creates a StepClock that advances step ticks per read.
func NewStepClock(step uint64) *StepClock {
	if step == 0 {
		step = 1
	}
	return &StepClock{step: step}
}

// Now returns the current tick and advances the clock.
func (c *StepClock) Now() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := c.now
	c.now += c.step
	return t
}

// Advance moves the clock forward without a read.
func (c *StepClock) Advance(ticks uint64) {
	c.mu.Lock()
	c.now += ticks
	c.mu.Unlock()
}

// WallClock converts elapsed wall time into ticks of a clockHz counter.
type WallClock struct {
	start time.Time
	hz    uint64
}

// NewWallClock creates a WallClock running at clockHz.
func NewWallClock(clockHz uint32) *WallClock {
	return &WallClock{
		start: time.Now(),
		hz:    uint64(clockHz),
	}
}

// Now returns the ticks elapsed since the clock was created.
func (c *WallClock) Now() uint64 {
	el := time.Since(c.start)
	secs := uint64(el / time.Second)
	rem := uint64(el % time.Second)
	return secs*c.hz + rem*c.hz/uint64(time.Second)
}
