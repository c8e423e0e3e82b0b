// Package period measures the duration of N periods of a square wave by
// busy-polling its input line against a timer window.
package period

import (
	"github.com/itohio/gocapm/pkg/hw"
	"github.com/itohio/gocapm/pkg/timer"
)

// Error is a period measurement error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrSignalTimeout = Error("no signal")
	ErrInvalidCount  = Error("period count must be positive")
)

// Meter measures multi-cycle periods of the signal line.
type Meter struct {
	signal  hw.DigitalInput
	timer   *timer.Service
	timeout uint32
}

// New creates a Meter. timeout is the size of each edge wait window in ticks
// and must exceed the period of the slowest signal of interest; zero selects
// a full-scale window. The n-period run always gets a full-scale window.
func New(signal hw.DigitalInput, ts *timer.Service, timeout uint32) *Meter {
	return &Meter{
		signal:  signal,
		timer:   ts,
		timeout: timeout,
	}
}

// Measure returns the ticks spanned by n full low-high cycles of the signal.
//
// The measurement is synchronized on a falling-then-rising edge first, so a
// partial cycle is never counted. Any wait that outlives its window yields
// ErrSignalTimeout and zero ticks, including n periods that overrun the
// full-scale counter.
func (m *Meter) Measure(n int) (uint32, error) {
	if n <= 0 {
		return 0, ErrInvalidCount
	}
	defer m.timer.Stop()

	m.timer.StartWindow(m.timeout)
	if !m.waitFor(false) {
		return 0, ErrSignalTimeout
	}

	m.timer.StartWindow(m.timeout)
	if !m.waitFor(true) {
		return 0, ErrSignalTimeout
	}

	m.timer.StartWindow(timer.FullScale)
	for range n {
		if !m.waitFor(false) || !m.waitFor(true) {
			return 0, ErrSignalTimeout
		}
	}

	ticks := m.timer.Elapsed()
	if ticks == 0 {
		return 0, ErrSignalTimeout
	}
	return ticks, nil
}

// waitFor polls until the signal reads level or the window expires.
func (m *Meter) waitFor(level bool) bool {
	for m.signal.Get() != level {
		if m.timer.TimedOut() {
			return false
		}
	}
	return true
}
