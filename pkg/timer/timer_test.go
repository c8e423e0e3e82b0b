package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

// fakeCounter decrements by step on every Value or Wrapped read.
type fakeCounter struct {
	reload  uint32
	elapsed uint32
	step    uint32
	running bool
	starts  int
}

func (c *fakeCounter) Start(reload uint32) {
	c.reload = reload
	c.elapsed = 0
	c.running = true
	c.starts++
}

func (c *fakeCounter) advance() {
	if c.running {
		c.elapsed += c.step
	}
}

func (c *fakeCounter) Value() uint32 {
	c.advance()
	if c.elapsed >= c.reload {
		return 0
	}
	return c.reload - c.elapsed
}

func (c *fakeCounter) Wrapped() bool {
	c.advance()
	return c.elapsed >= c.reload
}

func (c *fakeCounter) Stop() {
	c.running = false
}

func TestStartWindow_ClampsToFullScale(t *testing.T) {
	c := &fakeCounter{step: 1}
	s := New(c, 32_000_000)

	s.StartWindow(0)
	assert.Equal(t, FullScale, c.reload)

	s.StartWindow(FullScale + 10)
	assert.Equal(t, FullScale, c.reload)

	s.StartWindow(1000)
	assert.Equal(t, uint32(1000), c.reload)
}

func TestElapsed(t *testing.T) {
	c := &fakeCounter{step: 10}
	s := New(c, 32_000_000)

	s.StartWindow(1000)
	// each Elapsed reads the overflow flag and then the count
	assert.Equal(t, uint32(20), s.Elapsed())
	assert.Equal(t, uint32(40), s.Elapsed())
	assert.False(t, s.TimedOut())
}

func TestTimedOut_Latches(t *testing.T) {
	c := &fakeCounter{step: 600}
	s := New(c, 32_000_000)

	s.StartWindow(1000)
	assert.False(t, s.TimedOut())
	assert.True(t, s.TimedOut())

	c.Stop()
	assert.True(t, s.TimedOut(), "timeout stays latched")
	assert.Equal(t, uint32(1000), s.Elapsed())
}

func TestStartWindow_DiscardsStaleState(t *testing.T) {
	c := &fakeCounter{step: 2000}
	s := New(c, 32_000_000)

	s.StartWindow(1000)
	assert.True(t, s.TimedOut())

	c.step = 1
	s.StartWindow(1000)
	assert.False(t, s.TimedOut())
}

func TestDelayMs(t *testing.T) {
	c := &fakeCounter{step: 1000}
	s := New(c, 32_000)

	s.DelayMs(3)
	assert.Equal(t, 3, c.starts)
	assert.Equal(t, uint32(31), c.reload)
	assert.False(t, c.running)
}

func TestDelayMs_NonPositive(t *testing.T) {
	c := &fakeCounter{step: 1}
	s := New(c, 32_000_000)

	s.DelayMs(0)
	s.DelayMs(-5)
	assert.Equal(t, 0, c.starts)
}
