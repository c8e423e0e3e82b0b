// Package timer turns a free-running down-counter into bounded wait windows.
package timer

import "github.com/itohio/gocapm/pkg/hw"

// FullScale is the largest window a 24-bit counter can hold.
const FullScale uint32 = 0xFFFFFF

// Service arms one wait window at a time on a free-running counter and
// reports how much of it has been consumed. All waits are busy-polled.
type Service struct {
	t       hw.FreeRunningTimer
	clockHz uint32

	window  uint32
	expired bool
}

// New creates a Service on top of t, which counts at clockHz.
func New(t hw.FreeRunningTimer, clockHz uint32) *Service {
	return &Service{
		t:       t,
		clockHz: clockHz,
	}
}

// ClockHz returns the tick rate of the underlying counter.
func (s *Service) ClockHz() uint32 {
	return s.clockHz
}

// StartWindow arms a fresh window of up to maxTicks ticks. Zero or anything
// above FullScale arms a full-scale window. State from the previous window
// is discarded.
func (s *Service) StartWindow(maxTicks uint32) {
	if maxTicks == 0 || maxTicks > FullScale {
		maxTicks = FullScale
	}
	s.window = maxTicks
	s.expired = false
	s.t.Start(maxTicks)
}

// TimedOut reports whether the current window has fully elapsed. Once true it
// stays true until the next StartWindow.
func (s *Service) TimedOut() bool {
	if !s.expired && s.t.Wrapped() {
		s.expired = true
	}
	return s.expired
}

// Elapsed returns the ticks consumed in the current window.
func (s *Service) Elapsed() uint32 {
	if s.TimedOut() {
		return s.window
	}
	v := s.t.Value()
	if v > s.window {
		return 0
	}
	return s.window - v
}

// Stop disables the counter.
func (s *Service) Stop() {
	s.t.Stop()
}

// DelayMs busy-waits for ms milliseconds, one counter rollover per
// millisecond. It cannot be cancelled.
func (s *Service) DelayMs(ms int) {
	if ms <= 0 {
		return
	}
	reload := s.clockHz / 1000
	if reload > 1 {
		reload--
	} else {
		reload = 1
	}
	for ; ms > 0; ms-- {
		s.StartWindow(reload)
		for !s.TimedOut() {
		}
	}
	s.Stop()
}
