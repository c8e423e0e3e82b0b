package history

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gocapm/pkg/config"
	"github.com/itohio/gocapm/pkg/reading"
)

func present(ts time.Time, c float64) reading.Reading {
	return reading.Reading{Timestamp: ts, Capacitance: c, Present: true}
}

func TestNew(t *testing.T) {
	h := NewFromConfig(config.Default())

	assert.NotNil(t, h)
	assert.Empty(t, h.Readings())
	assert.Equal(t, 60*time.Second, h.window)
	assert.Equal(t, 5, h.stableCount)
	_, ok := h.Stable()
	assert.False(t, ok)
}

func TestAdd_Window(t *testing.T) {
	h := New(10*time.Second, 1, 1)
	now := time.Now()

	for i := range 15 {
		h.add(present(now.Add(time.Duration(i)*time.Second), float64(i)))
	}

	readings := h.Readings()
	require.Len(t, readings, 10, "only readings younger than the window remain")
	assert.Equal(t, 5.0, readings[0].Capacitance)
	assert.Equal(t, 14.0, readings[len(readings)-1].Capacitance)
}

func TestAdd_GapDropsEverythingOld(t *testing.T) {
	h := New(time.Second, 1, 1)
	now := time.Now()

	h.add(present(now, 1))
	h.add(present(now.Add(100*time.Millisecond), 2))
	h.add(present(now.Add(time.Minute), 3))

	readings := h.Readings()
	require.Len(t, readings, 1)
	assert.Equal(t, 3.0, readings[0].Capacitance)
}

func TestStats(t *testing.T) {
	h := New(time.Minute, 3, 1)
	now := time.Now()

	h.add(present(now, 9))
	h.add(reading.Reading{Timestamp: now.Add(time.Second)})
	h.add(present(now.Add(2*time.Second), 11))

	s := h.Stats()
	assert.Equal(t, 2, s.Count, "absent readings are skipped")
	assert.Equal(t, 10.0, s.Mean)
	assert.Equal(t, 9.0, s.Min)
	assert.Equal(t, 11.0, s.Max)
	assert.InDelta(t, 20, s.Spread, 1e-9)

	assert.Equal(t, Stats{}, New(time.Minute, 1, 1).Stats())
}

func TestStable(t *testing.T) {
	tests := []struct {
		name   string
		values []float64 // negative means absent
		stable bool
		mean   float64
	}{
		{name: "too few", values: []float64{10, 10}, stable: false},
		{name: "settled", values: []float64{50, 10, 10.04, 9.96}, stable: true, mean: 10},
		{name: "spread too wide", values: []float64{10, 10.5, 10}, stable: false},
		{name: "absent in tail", values: []float64{10, -1, 10}, stable: false},
		{name: "absent before tail", values: []float64{-1, 10, 10, 10}, stable: true, mean: 10},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := New(time.Minute, 3, 1)
			now := time.Now()
			for i, v := range tt.values {
				ts := now.Add(time.Duration(i) * time.Second)
				if v < 0 {
					h.add(reading.Reading{Timestamp: ts})
					continue
				}
				h.add(present(ts, v))
			}

			mean, ok := h.Stable()
			assert.Equal(t, tt.stable, ok)
			if tt.stable {
				assert.InDelta(t, tt.mean, mean, 1e-9)
			}
		})
	}
}

func TestReset(t *testing.T) {
	h := New(time.Minute, 1, 1)
	h.add(present(time.Now(), 1))
	h.Reset()
	assert.Empty(t, h.Readings())
}

func TestOnUpdate(t *testing.T) {
	h := New(time.Minute, 2, 1)

	var mu sync.Mutex
	var calls int
	var lastStable bool
	var lastLen int
	h.OnUpdate(func(readings []reading.Reading, stable bool) {
		mu.Lock()
		defer mu.Unlock()
		calls++
		lastStable = stable
		lastLen = len(readings)
	})

	in := make(chan reading.Reading, 3)
	now := time.Now()
	in <- present(now, 10)
	in <- present(now.Add(time.Second), 10)
	close(in)
	h.Process(in)

	mu.Lock()
	assert.Equal(t, 2, calls)
	assert.True(t, lastStable)
	assert.Equal(t, 2, lastLen)
	mu.Unlock()

	// No callbacks after the input closed.
	h.add(present(now.Add(2*time.Second), 10))
	mu.Lock()
	assert.Equal(t, 2, calls)
	mu.Unlock()

	h.Reset()
	h.add(present(now.Add(3*time.Second), 10))
	mu.Lock()
	assert.Equal(t, 3, calls)
	mu.Unlock()
}
