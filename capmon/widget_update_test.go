package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/itohio/gocapm/pkg/reading"
)

func TestRecordLines(t *testing.T) {
	tests := []struct {
		name    string
		records []float64
		want    []string
	}{
		{"empty log", make([]float64, 30), []string{}},
		{"nil", nil, []string{}},
		{"two records", append([]float64{47.5, 100}, make([]float64, 28)...), []string{"#01 47.500 nF", "#02 100.000 nF"}},
		{"stored zero before record", append([]float64{0, 10}, make([]float64, 28)...), []string{"#01 0.000 nF", "#02 10.000 nF"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, recordLines(tt.records))
		})
	}
}

func TestReadingText(t *testing.T) {
	now := time.Now()

	assert.Equal(t, "C = --", capacitanceText(reading.Reading{}))
	assert.Equal(t, "No capacitor", capacitanceText(reading.Reading{Timestamp: now}))
	assert.Equal(t, "C = 185.482 nF", capacitanceText(reading.Reading{Timestamp: now, Capacitance: 185.482, Present: true}))

	assert.Equal(t, "f = --", frequencyText(reading.Reading{Timestamp: now}))
	assert.Equal(t, "f = 737.28 Hz", frequencyText(reading.Reading{Timestamp: now, Frequency: 737.28, Present: true}))

	assert.Equal(t, "Settling", stableText(100, false))
	assert.Equal(t, "Stable at 100.000 nF", stableText(100, true))
}
