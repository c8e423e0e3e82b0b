package main

import (
	"flag"
	"fmt"
	"log"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/itohio/gocapm/pkg/capture"
	"github.com/itohio/gocapm/pkg/chart"
	"github.com/itohio/gocapm/pkg/config"
	"github.com/itohio/gocapm/pkg/history"
	"github.com/itohio/gocapm/pkg/link"
	"github.com/itohio/gocapm/pkg/reading"
)

func main() {
	var (
		portFlag           = flag.String("p", "", "Serial port override (e.g., COM3 or /dev/ttyACM0)")
		configFlag         = flag.String("config", "config.yaml", "Configuration file path")
		mockFlag           = flag.Bool("mock", false, "Use simulated meter instead of serial port")
		averageSamplesFlag = flag.Int("average-samples", -1, "Number of reports to average (0 = disabled, overrides config)")
		captureFlag        = flag.String("capture", "", "SQLite file to capture readings into (overrides config)")
	)
	flag.Parse()

	cfg, err := config.Load(*configFlag)
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	if *portFlag != "" {
		cfg.Serial.Port = *portFlag
	}
	if *averageSamplesFlag >= 0 {
		cfg.Measurement.AverageSamples = *averageSamplesFlag
	}
	if *captureFlag != "" {
		cfg.Capture.Path = *captureFlag
	}

	var store *capture.Store
	if cfg.Capture.Path != "" {
		store, err = capture.Open(cfg.Capture.Path)
		if err != nil {
			log.Fatalf("Failed to open capture: %v", err)
		}
		defer store.Close()
	}

	application := app.NewWithID("com.itohio.gocapm")

	window := application.NewWindow("Capacitance Meter")
	window.Resize(fyne.NewSize(1200, 800))
	window.CenterOnScreen()

	state := &appState{
		cfg:        cfg,
		configPath: *configFlag,
		history:    history.NewFromConfig(cfg),
		store:      store,
		window:     window,
		useMock:    *mockFlag,
	}
	if len(cfg.Presets.NominalNF) > 0 && len(cfg.Presets.TolerancePct) > 0 {
		state.bandNominal = float64(cfg.Presets.NominalNF[0])
		state.bandTolerance = float64(cfg.Presets.TolerancePct[0])
	}

	toolbar := createToolbar(state)

	state.chartWidget = chart.New(cfg.HistoryWindow())
	state.chartWidget.SetBand(state.bandNominal, state.bandTolerance)

	state.history.OnUpdate(state.throttledUpdate)

	content := container.NewBorder(
		toolbar,
		createButtonBar(state),
		nil,
		createSidePanel(state),
		state.chartWidget,
	)

	window.SetContent(content)
	window.SetOnClosed(func() {
		closeMeasurementChain(state.chain)
		state.chain = nil
	})
	window.ShowAndRun()
}

// measurementChain tracks the components of the measurement chain for graceful shutdown.
type measurementChain struct {
	device          link.Device
	readings        <-chan reading.Reading
	promptGoroutine chan struct{} // Closed when the prompt goroutine exits
	historyRoutine  chan struct{} // Closed when the history goroutine exits
}

// appState holds the application state.
type appState struct {
	cfg         *config.Config
	configPath  string
	device      link.Device
	history     *history.History
	store       *capture.Store
	chartWidget *chart.ChartWidget
	window      fyne.Window
	useMock     bool
	chain       *measurementChain // Current measurement chain (nil if not connected)

	connectBtn    *widget.Button
	boardBtns     [5]*widget.Button
	capEntry      *widget.Entry
	capacitanceLb *widget.Label
	frequencyLb   *widget.Label
	stableLb      *widget.Label
	recordList    *widget.List

	bandNominal   float64
	bandTolerance float64

	// Latest record log, read by the record list (protected by updateMu)
	records []string

	// Throttling for chart updates
	lastUpdateTime time.Time
	updateMu       sync.Mutex
}

// createToolbar creates the application toolbar with Connect and Settings buttons.
func createToolbar(state *appState) fyne.CanvasObject {
	connectBtn := widget.NewButtonWithIcon("", theme.LoginIcon(), func() {
		handleConnect(state)
	})
	state.connectBtn = connectBtn

	settingsBtn := widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		showSettingsDialog(state)
	})

	return container.NewHBox(connectBtn, settingsBtn)
}

// closeMeasurementChain gracefully closes the measurement chain.
// Waits for all goroutines to finish and channels to drain.
func closeMeasurementChain(chain *measurementChain) {
	if chain == nil {
		return
	}

	// Closing the device closes the report and prompt channels
	if chain.device != nil {
		chain.device.Close()
	}

	if chain.promptGoroutine != nil {
		<-chain.promptGoroutine
	}

	// The history goroutine exits once the converters drain
	if chain.historyRoutine != nil {
		<-chain.historyRoutine
	}
}

// handleConnect handles the connect/disconnect button click.
func handleConnect(state *appState) {
	if state.device != nil && state.device.IsConnected() {
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
		setBoardButtons(state, false)
		if state.useMock {
			log.Printf("Disconnected from simulated meter")
		} else {
			log.Printf("Disconnected from serial port")
		}
		return
	}

	device, err := newDevice(state)
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}

	if err := device.Connect(); err != nil {
		if state.useMock {
			dialog.ShowError(fmt.Errorf("failed to connect to simulated meter: %w", err), state.window)
		} else {
			dialog.ShowError(fmt.Errorf("failed to connect to %s: %w", state.cfg.Serial.Port, err), state.window)
		}
		return
	}
	state.device = device
	if state.useMock {
		log.Printf("Connected to simulated meter")
	} else {
		log.Printf("Connected to serial port: %s", state.cfg.Serial.Port)
	}
	setBoardButtons(state, state.useMock)

	if err := startMeasurementChain(state, device); err != nil {
		dialog.ShowError(err, state.window)
		closeMeasurementChain(state.chain)
		state.chain = nil
		state.device = nil
		setBoardButtons(state, false)
	}
}

// newDevice creates the serial or simulated device from the configuration.
func newDevice(state *appState) (link.Device, error) {
	if !state.useMock {
		return link.NewSerial(state.cfg.Serial.Port, state.cfg.Serial.BaudRate, link.DefaultBufferSize), nil
	}
	menuCfg, err := state.cfg.Menu()
	if err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return link.NewMock(&state.cfg.Mock, menuCfg), nil
}

// startMeasurementChain wires reports through the converters, the optional
// capture and into the history.
func startMeasurementChain(state *appState, device link.Device) error {
	cal, err := state.cfg.Calibration.Policy()
	if err != nil {
		return fmt.Errorf("invalid calibration: %w", err)
	}
	epsilon := state.cfg.Display.EpsilonNF

	source := "mock"
	if !state.useMock {
		source = state.cfg.Serial.Port
	}

	state.history.Reset()

	// Base converter always used, averaging converter when enabled
	var convert reading.Converter
	if state.cfg.Measurement.AverageSamples > 0 {
		convert = reading.NewAveragingConverter(cal, epsilon, state.cfg.Measurement.AverageSamples, 500)
	} else {
		convert = reading.NewConverter(cal, epsilon, 500)
	}
	readings := convert(device.Reports())

	if state.store != nil {
		if _, err := state.store.Start(source); err != nil {
			log.Printf("Capture disabled: %v", err)
		} else {
			readings = state.store.Tee(readings)
		}
	}

	promptDone := make(chan struct{})
	historyDone := make(chan struct{})

	go func() {
		defer close(promptDone)
		for p := range device.Prompts() {
			showPrompt(state, device, p)
		}
	}()

	go func() {
		defer close(historyDone)
		state.history.Process(readings)
	}()

	state.chain = &measurementChain{
		device:          device,
		readings:        readings,
		promptGoroutine: promptDone,
		historyRoutine:  historyDone,
	}
	return nil
}

// showPrompt asks the user to answer a manual entry prompt. The board waits
// for an answer, so dismissing the dialog sends an empty line.
func showPrompt(state *appState, device link.Device, p link.Prompt) {
	fyne.Do(func() {
		entry := widget.NewEntry()
		entry.SetPlaceHolder("digits only")

		label := "Capacitance (nF)"
		if p.Kind == link.PromptTolerance {
			label = "Error (%)"
		}

		dialog.ShowForm(p.Text, "Send", "Cancel",
			[]*widget.FormItem{widget.NewFormItem(label, entry)},
			func(ok bool) {
				answer := ""
				if ok {
					answer = entry.Text
				}
				if err := device.Answer(answer); err != nil {
					dialog.ShowError(fmt.Errorf("failed to answer prompt: %w", err), state.window)
				}
			}, state.window)
	})
}
