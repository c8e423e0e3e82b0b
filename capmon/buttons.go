package main

import (
	"fmt"
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gocapm/pkg/link"
)

// boardButtonLabels names the front panel buttons in scan order.
var boardButtonLabels = [5]string{"B1", "B2", "B3", "B4", "B5"}

// createButtonBar creates the front panel of the simulated meter. The
// buttons only work with the simulated meter; a real board is operated
// by hand.
func createButtonBar(state *appState) fyne.CanvasObject {
	buttons := make([]fyne.CanvasObject, 0, len(boardButtonLabels)+3)
	for i, label := range boardButtonLabels {
		btn := widget.NewButton(label, func() {
			handleBoardPress(state, i)
		})
		btn.Disable()
		state.boardBtns[i] = btn
		buttons = append(buttons, btn)
	}

	state.capEntry = widget.NewEntry()
	state.capEntry.SetText(strconv.FormatFloat(state.cfg.Mock.CapacitanceNF, 'f', -1, 64))
	state.capEntry.OnSubmitted = func(text string) {
		handleCapacitanceChange(state, text)
	}
	state.capEntry.Disable()

	setBtn := widget.NewButton("Set", func() {
		handleCapacitanceChange(state, state.capEntry.Text)
	})

	entry := container.NewGridWrap(fyne.NewSize(120, state.capEntry.MinSize().Height), state.capEntry)

	return container.NewBorder(
		nil, nil,
		container.NewHBox(buttons...),
		container.NewHBox(widget.NewLabel("Capacitor (nF)"), entry, setBtn),
		nil,
	)
}

// mockDevice returns the simulated meter when connected to one.
func mockDevice(state *appState) (*link.Mock, bool) {
	if state.device == nil || !state.device.IsConnected() {
		return nil, false
	}
	m, ok := state.device.(*link.Mock)
	return m, ok
}

// handleBoardPress presses a button on the simulated board.
func handleBoardPress(state *appState, button int) {
	m, ok := mockDevice(state)
	if !ok {
		return
	}
	if err := m.Press(button); err != nil {
		dialog.ShowError(fmt.Errorf("failed to press %s: %w", boardButtonLabels[button], err), state.window)
	}
}

// handleCapacitanceChange swaps the simulated capacitor.
func handleCapacitanceChange(state *appState, text string) {
	nf, err := strconv.ParseFloat(text, 64)
	if err != nil || nf < 0 {
		dialog.ShowError(fmt.Errorf("invalid capacitance %q", text), state.window)
		return
	}
	state.cfg.Mock.CapacitanceNF = nf

	if m, ok := mockDevice(state); ok {
		m.SetCapacitance(nf)
	}
}

// setBoardButtons enables or disables the simulated front panel.
func setBoardButtons(state *appState, enabled bool) {
	for _, btn := range state.boardBtns {
		updateBoardButton(btn, enabled)
	}
	if enabled {
		state.capEntry.Enable()
	} else {
		state.capEntry.Disable()
	}
}

func updateBoardButton(btn *widget.Button, enabled bool) {
	if btn == nil {
		return
	}
	if enabled {
		btn.Importance = widget.HighImportance
		btn.Enable()
	} else {
		btn.Importance = widget.MediumImportance
		btn.Disable()
	}
	btn.Refresh()
}
