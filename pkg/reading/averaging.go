package reading

import (
	"log"
	"time"

	"github.com/itohio/gocapm/pkg/capacitance"
	"github.com/itohio/gocapm/pkg/link"
)

// averagingInterval is the output rate of the averaging converter.
const averagingInterval = 100 * time.Millisecond

// NewAveragingConverter creates a converter that averages the capacitance of
// up to windowSize consecutive reports. A report without a capacitor clears
// the window so readings on either side of a swap are never mixed.
func NewAveragingConverter(cal capacitance.Calibration, epsilon float64, windowSize int, bufSize int) Converter {
	if windowSize <= 0 {
		windowSize = 1 // No averaging if invalid
	}
	if bufSize <= 0 {
		bufSize = 100
	}

	return func(in <-chan link.Report) <-chan Reading {
		out := make(chan Reading, bufSize)

		go func() {
			defer close(out)

			var buffer []link.Report
			ticker := time.NewTicker(averagingInterval)
			defer ticker.Stop()

			for {
				select {
				case report, ok := <-in:
					if !ok {
						// Input closed, output any remaining reports
						if len(buffer) > 0 {
							select {
							case out <- averageReports(buffer, cal, epsilon):
							default:
							}
						}
						return
					}

					rd := convertReport(report, cal, epsilon)
					if !rd.Present {
						buffer = buffer[:0]
						select {
						case out <- rd:
						default:
							log.Printf("Averaging converter output channel full")
						}
						continue
					}

					buffer = append(buffer, report)
					if len(buffer) > windowSize {
						buffer = buffer[1:] // Remove oldest
					}

				case <-ticker.C:
					if len(buffer) > 0 {
						select {
						case out <- averageReports(buffer, cal, epsilon):
						default:
							log.Printf("Averaging converter output channel full")
						}
					}
				}
			}
		}()

		return out
	}
}

// averageReports averages the capacitance of reports and converts the
// result. The most recent timestamp and record log are kept.
func averageReports(reports []link.Report, cal capacitance.Calibration, epsilon float64) Reading {
	if len(reports) == 0 {
		return Reading{}
	}

	var sum float64
	for _, r := range reports {
		sum += r.Capacitance
	}

	last := reports[len(reports)-1]
	return convertReport(link.Report{
		Timestamp:   last.Timestamp,
		Capacitance: sum / float64(len(reports)),
		Records:     last.Records,
	}, cal, epsilon)
}
