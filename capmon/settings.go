package main

import (
	"fmt"
	"strconv"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gocapm/pkg/capacitance"
	"github.com/itohio/gocapm/pkg/history"
	"github.com/itohio/gocapm/pkg/link"
)

// showSettingsDialog displays a settings dialog with tabs for all configuration options.
func showSettingsDialog(state *appState) {
	tabs := container.NewAppTabs(
		createSerialTab(state),
		createCalibrationTab(state),
		createMeasurementTab(state),
		createBandTab(state),
		createMockTab(state),
	)

	content := container.NewBorder(nil, nil, nil, nil, tabs)
	content.Resize(fyne.NewSize(600, 500))

	d := dialog.NewCustom("Settings", "Close", content, state.window)
	d.Resize(fyne.NewSize(600, 500))
	d.Show()
}

// saveConfig validates and stores the configuration, reporting failures.
func saveConfig(state *appState) bool {
	if err := state.cfg.Validate(); err != nil {
		dialog.ShowError(fmt.Errorf("invalid settings: %w", err), state.window)
		return false
	}
	if err := state.cfg.Save(state.configPath); err != nil {
		dialog.ShowError(fmt.Errorf("failed to save config: %w", err), state.window)
		return false
	}
	return true
}

// reconnect restarts the measurement chain when connected so new settings
// take effect.
func reconnect(state *appState) {
	if state.device == nil || !state.device.IsConnected() {
		return
	}
	closeMeasurementChain(state.chain)
	state.chain = nil
	state.device = nil
	handleConnect(state)
}

// createSerialTab creates the Serial configuration tab.
func createSerialTab(state *appState) *container.TabItem {
	ports, err := link.Ports()
	portOptions := []string{}
	portMap := make(map[string]string) // Map display name to actual port name

	if err == nil {
		for _, port := range ports {
			displayName := port.Name
			if port.Description != "" && port.Description != port.Name {
				displayName = fmt.Sprintf("%s (%s)", port.Name, port.Description)
			}
			portOptions = append(portOptions, displayName)
			portMap[displayName] = port.Name
		}
	}

	// Add current port if not in list
	currentPort := state.cfg.Serial.Port
	currentDisplay := currentPort
	found := false
	for _, opt := range portOptions {
		if portMap[opt] == currentPort {
			currentDisplay = opt
			found = true
			break
		}
	}
	if !found && currentPort != "" {
		portOptions = append(portOptions, currentPort)
		portMap[currentPort] = currentPort
	}

	portSelect := widget.NewSelect(portOptions, nil)
	if currentDisplay != "" {
		portSelect.SetSelected(currentDisplay)
	}

	baudEntry := widget.NewEntry()
	baudEntry.SetText(strconv.Itoa(state.cfg.Serial.BaudRate))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Serial Port", Widget: portSelect},
			{Text: "Baud Rate", Widget: baudEntry},
		},
		OnSubmit: func() {
			if portSelect.Selected == "" {
				return
			}
			selectedPort := portMap[portSelect.Selected]
			if selectedPort == "" {
				selectedPort = portSelect.Selected
			}

			changed := state.cfg.Serial.Port != selectedPort
			state.cfg.Serial.Port = selectedPort
			if baud, err := strconv.Atoi(baudEntry.Text); err == nil && baud > 0 {
				changed = changed || baud != state.cfg.Serial.BaudRate
				state.cfg.Serial.BaudRate = baud
			}
			if !saveConfig(state) {
				return
			}

			if changed && !state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Serial", form)
}

// createCalibrationTab creates the Calibration configuration tab.
func createCalibrationTab(state *appState) *container.TabItem {
	formSelect := widget.NewSelect([]string{capacitance.FormInverse, capacitance.FormAffine}, nil)
	formSelect.SetSelected(state.cfg.Calibration.Form)

	kEntry := widget.NewEntry()
	kEntry.SetText(strconv.FormatFloat(state.cfg.Calibration.K, 'f', -1, 64))

	scaleEntry := widget.NewEntry()
	scaleEntry.SetText(strconv.FormatFloat(state.cfg.Calibration.Scale, 'g', -1, 64))

	offsetEntry := widget.NewEntry()
	offsetEntry.SetText(strconv.FormatFloat(state.cfg.Calibration.Offset, 'f', -1, 64))

	epsilonEntry := widget.NewEntry()
	epsilonEntry.SetText(strconv.FormatFloat(state.cfg.Display.EpsilonNF, 'f', -1, 64))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Form", Widget: formSelect},
			{Text: "K", Widget: kEntry},
			{Text: "Scale (inverse)", Widget: scaleEntry},
			{Text: "Offset nF (affine)", Widget: offsetEntry},
			{Text: "No capacitor below (nF)", Widget: epsilonEntry},
		},
		OnSubmit: func() {
			if formSelect.Selected != "" {
				state.cfg.Calibration.Form = formSelect.Selected
			}
			if k, err := strconv.ParseFloat(kEntry.Text, 64); err == nil {
				state.cfg.Calibration.K = k
			}
			if scale, err := strconv.ParseFloat(scaleEntry.Text, 64); err == nil {
				state.cfg.Calibration.Scale = scale
			}
			if offset, err := strconv.ParseFloat(offsetEntry.Text, 64); err == nil {
				state.cfg.Calibration.Offset = offset
			}
			if eps, err := strconv.ParseFloat(epsilonEntry.Text, 64); err == nil && eps >= 0 {
				state.cfg.Display.EpsilonNF = eps
			}
			if saveConfig(state) {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Calibration", form)
}

// createMeasurementTab creates the Measurement configuration tab.
func createMeasurementTab(state *appState) *container.TabItem {
	averageSamplesEntry := widget.NewEntry()
	averageSamplesEntry.SetText(strconv.Itoa(state.cfg.Measurement.AverageSamples))

	windowSecondsEntry := widget.NewEntry()
	windowSecondsEntry.SetText(fmt.Sprintf("%.1f", state.cfg.History.WindowSeconds))

	stableCountEntry := widget.NewEntry()
	stableCountEntry.SetText(strconv.Itoa(state.cfg.History.StableCount))

	stableSpreadEntry := widget.NewEntry()
	stableSpreadEntry.SetText(fmt.Sprintf("%.2f", state.cfg.History.StableSpreadPc))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Average Samples (0=disabled)", Widget: averageSamplesEntry},
			{Text: "History Window (seconds)", Widget: windowSecondsEntry},
			{Text: "Stable Readings", Widget: stableCountEntry},
			{Text: "Stable Spread (%)", Widget: stableSpreadEntry},
		},
		OnSubmit: func() {
			if avg, err := strconv.Atoi(averageSamplesEntry.Text); err == nil && avg >= 0 {
				state.cfg.Measurement.AverageSamples = avg
			}
			if ws, err := strconv.ParseFloat(windowSecondsEntry.Text, 64); err == nil && ws > 0 {
				state.cfg.History.WindowSeconds = ws
			}
			if n, err := strconv.Atoi(stableCountEntry.Text); err == nil && n > 0 {
				state.cfg.History.StableCount = n
			}
			if sp, err := strconv.ParseFloat(stableSpreadEntry.Text, 64); err == nil && sp > 0 {
				state.cfg.History.StableSpreadPc = sp
			}
			if !saveConfig(state) {
				return
			}

			// The history is rebuilt, so the chain has to be rewired
			wasConnected := state.device != nil && state.device.IsConnected()
			if wasConnected {
				closeMeasurementChain(state.chain)
				state.chain = nil
				state.device = nil
			}
			state.history = history.NewFromConfig(state.cfg)
			state.history.OnUpdate(state.throttledUpdate)
			if wasConnected {
				handleConnect(state)
			}
		},
	}

	return container.NewTabItem("Measurement", form)
}

// createBandTab creates the pass band tab drawn on the chart.
func createBandTab(state *appState) *container.TabItem {
	nominalEntry := widget.NewEntry()
	nominalEntry.SetText(strconv.FormatFloat(state.bandNominal, 'f', -1, 64))

	toleranceEntry := widget.NewEntry()
	toleranceEntry.SetText(strconv.FormatFloat(state.bandTolerance, 'f', -1, 64))

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Nominal (nF, 0=hidden)", Widget: nominalEntry},
			{Text: "Tolerance (%)", Widget: toleranceEntry},
		},
		OnSubmit: func() {
			if nom, err := strconv.ParseFloat(nominalEntry.Text, 64); err == nil && nom >= 0 {
				state.bandNominal = nom
			}
			if tol, err := strconv.ParseFloat(toleranceEntry.Text, 64); err == nil && tol >= 0 {
				state.bandTolerance = tol
			}
			state.chartWidget.SetBand(state.bandNominal, state.bandTolerance)
		},
	}

	return container.NewTabItem("Band", form)
}

// createMockTab creates the simulated meter configuration tab.
func createMockTab(state *appState) *container.TabItem {
	capacitanceEntry := widget.NewEntry()
	capacitanceEntry.SetText(strconv.FormatFloat(state.cfg.Mock.CapacitanceNF, 'f', -1, 64))

	noiseEntry := widget.NewEntry()
	noiseEntry.SetText(strconv.FormatFloat(state.cfg.Mock.NoiseNF, 'f', -1, 64))

	ticksEntry := widget.NewEntry()
	ticksEntry.SetText(strconv.FormatUint(state.cfg.Mock.TicksPerRead, 10))

	intervalEntry := widget.NewEntry()
	intervalEntry.SetText(state.cfg.Mock.Interval.String())

	form := &widget.Form{
		Items: []*widget.FormItem{
			{Text: "Capacitor (nF, 0=none)", Widget: capacitanceEntry},
			{Text: "Noise (nF)", Widget: noiseEntry},
			{Text: "Ticks per Read (0=wall clock)", Widget: ticksEntry},
			{Text: "Loop Interval", Widget: intervalEntry},
		},
		OnSubmit: func() {
			if nf, err := strconv.ParseFloat(capacitanceEntry.Text, 64); err == nil && nf >= 0 {
				state.cfg.Mock.CapacitanceNF = nf
				state.capEntry.SetText(capacitanceEntry.Text)
			}
			if noise, err := strconv.ParseFloat(noiseEntry.Text, 64); err == nil && noise >= 0 {
				state.cfg.Mock.NoiseNF = noise
			}
			if ticks, err := strconv.ParseUint(ticksEntry.Text, 10, 64); err == nil {
				state.cfg.Mock.TicksPerRead = ticks
			}
			if interval, err := time.ParseDuration(intervalEntry.Text); err == nil && interval > 0 {
				state.cfg.Mock.Interval = interval
			}
			if saveConfig(state) && state.useMock {
				reconnect(state)
			}
		},
	}

	return container.NewTabItem("Mock", form)
}
