package main

import (
	"fmt"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gocapm/pkg/reading"
)

// updateInterval throttles chart updates to ~60 FPS.
const updateInterval = 16 * time.Millisecond

// throttledUpdate is registered with the history. It skips updates arriving
// too soon after the previous one and schedules the rest on the main thread.
func (s *appState) throttledUpdate(readings []reading.Reading, stable bool) {
	s.updateMu.Lock()
	now := time.Now()
	if now.Sub(s.lastUpdateTime) < updateInterval {
		s.updateMu.Unlock()
		return
	}
	s.lastUpdateTime = now

	var latest reading.Reading
	if len(readings) > 0 {
		latest = readings[len(readings)-1]
		s.records = recordLines(latest.Records)
	}
	s.updateMu.Unlock()

	mean, _ := s.history.Stable()

	fyne.Do(func() {
		s.chartWidget.UpdateData(readings, stable)
		s.capacitanceLb.SetText(capacitanceText(latest))
		s.frequencyLb.SetText(frequencyText(latest))
		s.stableLb.SetText(stableText(mean, stable))
		s.recordList.Refresh()
	})
}

// createSidePanel creates the live value labels and the record list.
func createSidePanel(state *appState) fyne.CanvasObject {
	state.capacitanceLb = widget.NewLabelWithStyle("C = --", fyne.TextAlignLeading, fyne.TextStyle{Bold: true})
	state.frequencyLb = widget.NewLabel("f = --")
	state.stableLb = widget.NewLabel("Settling")

	state.recordList = widget.NewList(
		func() int {
			state.updateMu.Lock()
			defer state.updateMu.Unlock()
			return len(state.records)
		},
		func() fyne.CanvasObject {
			return widget.NewLabel("#00 00000.000 nF")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			state.updateMu.Lock()
			text := ""
			if id < len(state.records) {
				text = state.records[id]
			}
			state.updateMu.Unlock()
			obj.(*widget.Label).SetText(text)
		},
	)

	header := container.NewVBox(
		state.capacitanceLb,
		state.frequencyLb,
		state.stableLb,
		widget.NewSeparator(),
		widget.NewLabel("Records"),
	)
	return container.NewBorder(header, nil, nil, nil, state.recordList)
}

func capacitanceText(r reading.Reading) string {
	switch {
	case r.Timestamp.IsZero():
		return "C = --"
	case !r.Present:
		return "No capacitor"
	}
	return fmt.Sprintf("C = %.3f nF", r.Capacitance)
}

func frequencyText(r reading.Reading) string {
	if !r.Present || r.Frequency == 0 {
		return "f = --"
	}
	return fmt.Sprintf("f = %.2f Hz", r.Frequency)
}

func stableText(mean float64, stable bool) string {
	if !stable {
		return "Settling"
	}
	return fmt.Sprintf("Stable at %.3f nF", mean)
}

// recordLines renders the record slots up to the last non-empty one.
// Empty slots are reported as zero, so a stored zero before a later record
// still shows.
func recordLines(records []float64) []string {
	n := len(records)
	for n > 0 && records[n-1] == 0 {
		n--
	}
	lines := make([]string, n)
	for i := 0; i < n; i++ {
		lines[i] = fmt.Sprintf("#%02d %.3f nF", i+1, records[i])
	}
	return lines
}
