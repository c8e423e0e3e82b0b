package reading

import (
	"log"
	"math"
	"time"

	"github.com/itohio/gocapm/pkg/capacitance"
	"github.com/itohio/gocapm/pkg/link"
)

// Reading is a telemetry report with derived values.
type Reading struct {
	Timestamp   time.Time
	Capacitance float64   // nF
	Frequency   float64   // Oscillator frequency (Hz), 0 when nothing is present
	Records     []float64 // Record log slots (nF)
	Present     bool      // A capacitor is connected and oscillating
}

// Converter is a function type that converts a Report channel to a Reading channel.
type Converter func(in <-chan link.Report) <-chan Reading

// NewConverter creates a converter function that transforms reports into
// readings. Capacitances below epsilon (nF) are reported as absent.
func NewConverter(cal capacitance.Calibration, epsilon float64, bufSize int) Converter {
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan link.Report) <-chan Reading {
		out := make(chan Reading, bufSize)

		go func() {
			defer close(out)

			for report := range in {
				select {
				case out <- convertReport(report, cal, epsilon):
				case <-time.After(time.Second):
					log.Printf("Converter output channel full, dropping reading")
				}
			}
		}()

		return out
	}
}

// convertReport derives the oscillator frequency from the reported
// capacitance using the inverse of the calibration.
func convertReport(r link.Report, cal capacitance.Calibration, epsilon float64) Reading {
	rd := Reading{
		Timestamp:   r.Timestamp,
		Capacitance: r.Capacitance,
		Records:     r.Records,
		Present:     math.Abs(r.Capacitance) >= epsilon,
	}
	if rd.Present && cal != nil {
		rd.Frequency = float64(cal.Frequency(float32(r.Capacitance)))
	}
	return rd
}
