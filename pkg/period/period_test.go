package period

import (
	"testing"

	"github.com/itohio/gocapm/pkg/sim"
	"github.com/itohio/gocapm/pkg/timer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const clockHz = 32_000_000

func newMeter(freq float64, step uint64, timeout uint32) (*Meter, *sim.Board) {
	b := sim.NewBoard(sim.NewStepClock(step), clockHz, nil)
	b.Signal.SetFrequency(freq)
	ts := timer.New(b.Timer, clockHz)
	return New(b.Signal, ts, timeout), b
}

func TestMeasure(t *testing.T) {
	tests := []struct {
		name string
		freq float64
		n    int
	}{
		{name: "10 kHz, 10 periods", freq: 10_000, n: 10},
		{name: "1 kHz, 5 periods", freq: 1_000, n: 5},
		{name: "100 kHz, 100 periods", freq: 100_000, n: 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, _ := newMeter(tt.freq, 4, 0)

			ticks, err := m.Measure(tt.n)
			require.NoError(t, err)

			want := float64(clockHz) / tt.freq * float64(tt.n)
			// quantization: a few polls of a few ticks each per edge
			assert.InDelta(t, want, float64(ticks), 32)
		})
	}
}

func TestMeasure_NoSignal(t *testing.T) {
	for _, level := range []bool{true, false} {
		m, b := newMeter(0, 4096, 0)
		b.Signal.SetStuckLevel(level)

		ticks, err := m.Measure(10)
		assert.ErrorIs(t, err, ErrSignalTimeout, "stuck level %v", level)
		assert.Zero(t, ticks)
	}
}

func TestMeasure_WindowShorterThanPeriod(t *testing.T) {
	// 300 Hz needs ~106k ticks per period; a 10k window misreports it as absent
	m, _ := newMeter(300, 64, 10_000)

	ticks, err := m.Measure(1)
	assert.ErrorIs(t, err, ErrSignalTimeout)
	assert.Zero(t, ticks)
}

func TestMeasure_EdgeWindowCoversOnePeriod(t *testing.T) {
	// 50 periods of 3200 ticks outlast the 20k edge window but not the run window
	m, _ := newMeter(10_000, 8, 20_000)

	ticks, err := m.Measure(50)
	require.NoError(t, err)
	assert.InDelta(t, 160_000, float64(ticks), 8*4)
}

func TestMeasure_SlowSignalManyPeriods(t *testing.T) {
	// ~100 nF: 23.4k ticks per period, 10 periods overrun a 1<<16 edge window
	m, _ := newMeter(1367.5, 16, 1<<16)

	ticks, err := m.Measure(10)
	require.NoError(t, err)
	assert.InDelta(t, float64(clockHz)/1367.5*10, float64(ticks), 16*4)
}

func TestMeasure_RunOverrunsFullScale(t *testing.T) {
	// 600 periods of 32000 ticks exceed the 24-bit counter
	m, _ := newMeter(1_000, 16, 0)

	ticks, err := m.Measure(600)
	assert.ErrorIs(t, err, ErrSignalTimeout)
	assert.Zero(t, ticks)
}

func TestMeasure_InvalidCount(t *testing.T) {
	m, _ := newMeter(10_000, 4, 0)

	_, err := m.Measure(0)
	assert.ErrorIs(t, err, ErrInvalidCount)
	_, err = m.Measure(-1)
	assert.ErrorIs(t, err, ErrInvalidCount)
}

func TestMeasure_Repeatable(t *testing.T) {
	m, _ := newMeter(50_000, 2, 0)

	first, err := m.Measure(20)
	require.NoError(t, err)
	second, err := m.Measure(20)
	require.NoError(t, err)

	assert.InDelta(t, float64(first), float64(second), 16)
}
