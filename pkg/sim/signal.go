package sim

import (
	"math"
	"sync"
)

// Oscillator produces the square wave of an RC relaxation oscillator. Each
// period starts with the low half. With a zero frequency the line is stuck
// at the configured level.
type Oscillator struct {
	clock   Clock
	clockHz float64

	mu    sync.Mutex
	freq  float64
	stuck bool
}

// NewOscillator creates an oscillator sampled against clock ticks of clockHz.
func NewOscillator(clock Clock, clockHz uint32) *Oscillator {
	return &Oscillator{
		clock:   clock,
		clockHz: float64(clockHz),
		stuck:   true,
	}
}

// SetFrequency sets the output frequency in Hz. Non-positive or non-finite
// values remove the signal.
func (o *Oscillator) SetFrequency(hz float64) {
	if hz <= 0 || math.IsInf(hz, 0) || math.IsNaN(hz) {
		hz = 0
	}
	o.mu.Lock()
	o.freq = hz
	o.mu.Unlock()
}

// Frequency returns the output frequency in Hz.
func (o *Oscillator) Frequency() float64 {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.freq
}

// SetStuckLevel sets the line level reported while there is no signal.
func (o *Oscillator) SetStuckLevel(level bool) {
	o.mu.Lock()
	o.stuck = level
	o.mu.Unlock()
}

// Get samples the line at the current clock tick.
func (o *Oscillator) Get() bool {
	now := float64(o.clock.Now())
	o.mu.Lock()
	freq, stuck := o.freq, o.stuck
	o.mu.Unlock()

	if freq == 0 {
		return stuck
	}
	period := o.clockHz / freq
	return math.Mod(now, period) >= period/2
}
