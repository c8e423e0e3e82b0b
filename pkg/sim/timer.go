package sim

import "sync"

// Timer is a SysTick-like 24-bit down-counter driven by a Clock.
type Timer struct {
	clock Clock

	mu      sync.Mutex
	reload  uint32
	start   uint64
	held    uint32
	running bool
}

// NewTimer creates a stopped timer on clock.
func NewTimer(clock Clock) *Timer {
	return &Timer{clock: clock}
}

// Start loads reload and enables counting.
func (t *Timer) Start(reload uint32) {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reload = reload
	t.start = now
	t.held = reload
	t.running = true
}

// Value returns the current count. A stopped timer holds its last value.
func (t *Timer) Value() uint32 {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return t.held
	}
	period := uint64(t.reload) + 1
	elapsed := (now - t.start) % period
	return t.reload - uint32(elapsed)
}

// Wrapped reports whether the counter reached zero since Start.
func (t *Timer) Wrapped() bool {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running && now-t.start >= uint64(t.reload)
}

// Stop disables the counter, freezing its value.
func (t *Timer) Stop() {
	now := t.clock.Now()
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running {
		return
	}
	period := uint64(t.reload) + 1
	t.held = t.reload - uint32((now-t.start)%period)
	t.running = false
}
