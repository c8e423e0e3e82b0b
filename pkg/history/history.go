package history

import (
	"math"
	"sync"
	"time"

	"github.com/itohio/gocapm/pkg/config"
	"github.com/itohio/gocapm/pkg/reading"
)

var _ Tracker = (*History)(nil)

// Stats summarises the present readings in the window.
type Stats struct {
	Count  int
	Mean   float64 // nF
	Min    float64 // nF
	Max    float64 // nF
	Spread float64 // (Max - Min) as a percentage of |Mean|
}

// Tracker keeps a time window of readings and decides when they settle.
type Tracker interface {
	Process(input <-chan reading.Reading)
	Readings() []reading.Reading                            // Readings in the window, oldest first
	Stats() Stats                                           // Statistics over present readings
	Stable() (float64, bool)                                // Mean of the settled tail, if settled
	OnUpdate(func(readings []reading.Reading, stable bool)) // Register callback for updates
}

// History implements Tracker.
// Removal is based on timestamp (time window), not number of readings.
type History struct {
	readings []reading.Reading

	mu sync.RWMutex

	callbacks []func(readings []reading.Reading, stable bool)
	cbMu      sync.RWMutex

	window      time.Duration
	stableCount int
	spreadPct   float64

	// Set to true when the input channel closes, prevents further callbacks
	shutdown bool
}

// New creates a History keeping readings younger than window. The reading
// is stable once the last stableCount readings are present and their spread
// does not exceed spreadPct.
func New(window time.Duration, stableCount int, spreadPct float64) *History {
	if stableCount <= 0 {
		stableCount = 1
	}
	return &History{
		readings:    make([]reading.Reading, 0),
		window:      window,
		stableCount: stableCount,
		spreadPct:   spreadPct,
	}
}

// NewFromConfig creates a History from the history section.
func NewFromConfig(cfg *config.Config) *History {
	return New(cfg.HistoryWindow(), cfg.History.StableCount, cfg.History.StableSpreadPc)
}

// Process consumes readings until the input channel closes.
func (h *History) Process(input <-chan reading.Reading) {
	for r := range input {
		h.add(r)
	}
	h.mu.Lock()
	h.shutdown = true
	h.mu.Unlock()
}

// add appends r, drops readings outside the window and notifies callbacks.
func (h *History) add(r reading.Reading) {
	h.mu.Lock()
	h.readings = append(h.readings, r)

	cutoff := r.Timestamp.Add(-h.window)
	drop := 0
	for drop < len(h.readings) && !h.readings[drop].Timestamp.After(cutoff) {
		drop++
	}
	if drop > 0 {
		h.readings = append(h.readings[:0], h.readings[drop:]...)
	}

	notify := !h.shutdown
	h.mu.Unlock()

	if notify {
		h.notifyCallbacks()
	}
}

// Readings returns a copy of the readings in the window.
func (h *History) Readings() []reading.Reading {
	h.mu.RLock()
	defer h.mu.RUnlock()

	result := make([]reading.Reading, len(h.readings))
	copy(result, h.readings)
	return result
}

// Stats returns statistics over the present readings in the window.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return statsOf(h.readings)
}

// Stable returns the mean of the last stableCount readings when they are all
// present and agree within the allowed spread.
func (h *History) Stable() (float64, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.stable()
}

func (h *History) stable() (float64, bool) {
	if len(h.readings) < h.stableCount {
		return 0, false
	}
	tail := h.readings[len(h.readings)-h.stableCount:]
	for _, r := range tail {
		if !r.Present {
			return 0, false
		}
	}
	s := statsOf(tail)
	if s.Spread > h.spreadPct {
		return 0, false
	}
	return s.Mean, true
}

// Reset drops every reading and allows callbacks again.
func (h *History) Reset() {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.readings = h.readings[:0]
	h.shutdown = false
}

// OnUpdate registers a callback invoked after every reading.
// The callback should copy data quickly and return as fast as possible.
func (h *History) OnUpdate(callback func(readings []reading.Reading, stable bool)) {
	h.cbMu.Lock()
	defer h.cbMu.Unlock()
	h.callbacks = append(h.callbacks, callback)
}

// notifyCallbacks invokes all registered callbacks with current data.
// Makes copies of data while holding read lock, then calls callbacks without lock.
func (h *History) notifyCallbacks() {
	h.mu.RLock()
	readings := make([]reading.Reading, len(h.readings))
	copy(readings, h.readings)
	_, stable := h.stable()
	h.mu.RUnlock()

	h.cbMu.RLock()
	callbacks := make([]func([]reading.Reading, bool), len(h.callbacks))
	copy(callbacks, h.callbacks)
	h.cbMu.RUnlock()

	for _, cb := range callbacks {
		if cb != nil {
			cb(readings, stable)
		}
	}
}

func statsOf(readings []reading.Reading) Stats {
	s := Stats{Min: math.Inf(1), Max: math.Inf(-1)}
	var sum float64
	for _, r := range readings {
		if !r.Present {
			continue
		}
		s.Count++
		sum += r.Capacitance
		s.Min = math.Min(s.Min, r.Capacitance)
		s.Max = math.Max(s.Max, r.Capacitance)
	}
	if s.Count == 0 {
		return Stats{}
	}
	s.Mean = sum / float64(s.Count)
	if s.Mean != 0 {
		s.Spread = 100 * (s.Max - s.Min) / math.Abs(s.Mean)
	}
	return s
}
