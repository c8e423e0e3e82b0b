package reading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gocapm/pkg/link"
)

func TestAverageReports(t *testing.T) {
	now := time.Now()
	last := []float64{2}
	reports := []link.Report{
		{Timestamp: now, Capacitance: 9},
		{Timestamp: now.Add(time.Second), Capacitance: 10},
		{Timestamp: now.Add(2 * time.Second), Capacitance: 11, Records: last},
	}

	rd := averageReports(reports, testCal, 0.005)
	assert.InDelta(t, 10, rd.Capacitance, 1e-9)
	assert.Equal(t, now.Add(2*time.Second), rd.Timestamp)
	assert.Equal(t, last, rd.Records)
	assert.True(t, rd.Present)

	assert.Equal(t, Reading{}, averageReports(nil, testCal, 0.005))
}

func TestNewAveragingConverter_WindowSize(t *testing.T) {
	converter := NewAveragingConverter(testCal, 0.005, 3, 10)

	in := make(chan link.Report, 10)
	out := converter(in)

	// Only the last three stay in the window.
	for _, c := range []float64{100, 100, 10, 20, 30} {
		in <- link.Report{Capacitance: c}
	}
	time.Sleep(150 * time.Millisecond)
	close(in)

	var readings []Reading
	for rd := range out {
		readings = append(readings, rd)
	}

	require.NotEmpty(t, readings, "Should receive at least one averaged reading")
	assert.InDelta(t, 20, readings[len(readings)-1].Capacitance, 1e-9)
}

func TestNewAveragingConverter_AbsentClearsWindow(t *testing.T) {
	converter := NewAveragingConverter(testCal, 0.005, 10, 10)

	in := make(chan link.Report, 10)
	out := converter(in)

	in <- link.Report{Capacitance: 100}
	in <- link.Report{Capacitance: 0}
	in <- link.Report{Capacitance: 10}
	close(in)

	var readings []Reading
	for rd := range out {
		readings = append(readings, rd)
	}

	require.NotEmpty(t, readings)
	assert.False(t, readings[0].Present, "absent reading passes straight through")
	last := readings[len(readings)-1]
	assert.True(t, last.Present)
	assert.InDelta(t, 10, last.Capacitance, 1e-9, "window restarted after the swap")
}

func TestNewAveragingConverter_InvalidWindow(t *testing.T) {
	converter := NewAveragingConverter(testCal, 0.005, 0, 0)

	in := make(chan link.Report, 2)
	out := converter(in)
	in <- link.Report{Capacitance: 5}
	in <- link.Report{Capacitance: 7}
	close(in)

	var readings []Reading
	for rd := range out {
		readings = append(readings, rd)
	}
	require.NotEmpty(t, readings)
	assert.InDelta(t, 7, readings[len(readings)-1].Capacitance, 1e-9)
}
