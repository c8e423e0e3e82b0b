package reading

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gocapm/pkg/capacitance"
	"github.com/itohio/gocapm/pkg/link"
)

var testCal = capacitance.Inverse{K: 7312.5, Scale: 1e9}

func TestConvertReport(t *testing.T) {
	now := time.Now()
	records := make([]float64, 30)
	records[0] = 1.5

	rd := convertReport(link.Report{Timestamp: now, Capacitance: 185.482, Records: records}, testCal, 0.005)
	assert.True(t, rd.Present)
	assert.Equal(t, now, rd.Timestamp)
	assert.Equal(t, 185.482, rd.Capacitance)
	assert.InDelta(t, 737.28, rd.Frequency, 0.01)
	assert.Equal(t, 1.5, rd.Records[0])
}

func TestConvertReport_Absent(t *testing.T) {
	tests := []struct {
		name string
		c    float64
	}{
		{name: "no signal", c: 0},
		{name: "below epsilon", c: 0.004},
		{name: "negative below epsilon", c: -0.004},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rd := convertReport(link.Report{Capacitance: tt.c}, testCal, 0.005)
			assert.False(t, rd.Present)
			assert.Zero(t, rd.Frequency)
		})
	}
}

func TestConvertReport_NoCalibration(t *testing.T) {
	rd := convertReport(link.Report{Capacitance: 10}, nil, 0.005)
	assert.True(t, rd.Present)
	assert.Zero(t, rd.Frequency)
}

func TestNewConverter(t *testing.T) {
	converter := NewConverter(testCal, 0.005, 10)
	in := make(chan link.Report, 10)
	out := converter(in)

	in <- link.Report{Capacitance: 10}
	in <- link.Report{Capacitance: 0}
	close(in)

	var readings []Reading
	for rd := range out {
		readings = append(readings, rd)
	}
	require.Len(t, readings, 2)
	assert.True(t, readings[0].Present)
	assert.InDelta(t, 13675.21, readings[0].Frequency, 0.1)
	assert.False(t, readings[1].Present)
}
