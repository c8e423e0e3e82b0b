package link

import (
	"context"
	"fmt"
	"io"
	"math/rand"
	"sync"
	"time"

	"github.com/itohio/gocapm/pkg/config"
	"github.com/itohio/gocapm/pkg/menu"
	"github.com/itohio/gocapm/pkg/sim"
)

// Mock runs the meter firmware logic on a simulated board.
type Mock struct {
	cfg     *config.MockConfig
	menuCfg menu.Config

	board   *sim.Board
	reports chan Report
	prompts chan Prompt
	pr      *io.PipeReader
	wg      sync.WaitGroup

	mu          sync.RWMutex
	ctx         context.Context
	cancel      context.CancelFunc
	connected   bool
	capacitance float64
}

// NewMock creates a new simulated meter. Telemetry is always enabled.
func NewMock(cfg *config.MockConfig, menuCfg menu.Config) *Mock {
	if cfg == nil {
		cfg = &config.Default().Mock
	}
	menuCfg.Telemetry = true

	return &Mock{
		cfg:         cfg,
		menuCfg:     menuCfg,
		capacitance: cfg.CapacitanceNF,
	}
}

// Connect powers up the simulated board and starts its control loop.
func (m *Mock) Connect() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.connected {
		return fmt.Errorf("already connected")
	}

	var clock sim.Clock
	if m.cfg.TicksPerRead > 0 {
		clock = sim.NewStepClock(m.cfg.TicksPerRead)
	} else {
		clock = sim.NewWallClock(m.clockHz())
	}

	pr, pw := io.Pipe()
	m.pr = pr
	m.board = sim.NewBoard(clock, m.clockHz(), pw)
	m.reports = make(chan Report, DefaultBufferSize)
	m.prompts = make(chan Prompt, 4)
	m.ctx, m.cancel = context.WithCancel(context.Background())
	m.connected = true

	ctrl := menu.New(m.menuCfg, Hardware(m.board))

	m.wg.Add(2)
	go func() {
		defer m.wg.Done()
		readLines(m.ctx, pr, m.reports, m.prompts)
	}()
	go func() {
		defer m.wg.Done()
		m.run(ctrl)
	}()

	return nil
}

// Close stops the control loop and closes the report and prompt channels.
func (m *Mock) Close() error {
	m.mu.Lock()
	if !m.connected {
		m.mu.Unlock()
		return nil
	}
	m.cancel()
	m.connected = false
	m.mu.Unlock()

	// Unblock console reads and pending console writes.
	m.board.Close()
	m.pr.Close()
	m.wg.Wait()

	close(m.reports)
	close(m.prompts)

	return nil
}

// Reports returns the channel for reading reports.
func (m *Mock) Reports() <-chan Report {
	return m.reports
}

// Prompts returns the channel for manual entry prompts.
func (m *Mock) Prompts() <-chan Prompt {
	return m.prompts
}

// Answer types one line on the simulated console.
func (m *Mock) Answer(text string) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.board.Console.Type(text)
	return nil
}

// IsConnected returns whether the device is currently connected.
func (m *Mock) IsConnected() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.connected
}

// Press presses one of the board buttons (0-based, scan order).
func (m *Mock) Press(button int) error {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.connected {
		return fmt.Errorf("not connected")
	}
	m.board.Press(button)
	return nil
}

// SetCapacitance changes the simulated capacitor. Zero or less disconnects
// the oscillator.
func (m *Mock) SetCapacitance(nf float64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.capacitance = nf
}

// Capacitance returns the simulated capacitor in nF.
func (m *Mock) Capacitance() float64 {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.capacitance
}

// Board returns the simulated board, or nil before Connect.
func (m *Mock) Board() *sim.Board {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.board
}

func (m *Mock) clockHz() uint32 {
	if m.menuCfg.ClockHz == 0 {
		return menu.DefaultConfig().ClockHz
	}
	return m.menuCfg.ClockHz
}

// run steps the controller once per interval until the mock is closed.
func (m *Mock) run(ctrl *menu.Controller) {
	ctrl.Init()

	interval := m.cfg.Interval
	if interval <= 0 {
		interval = 200 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		m.tune()
		ctrl.Step()

		select {
		case <-m.ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// tune sets the oscillator to the frequency of the simulated capacitor plus
// noise.
func (m *Mock) tune() {
	nf := m.Capacitance()
	if nf > 0 && m.cfg.NoiseNF > 0 {
		nf += rand.NormFloat64() * m.cfg.NoiseNF
	}

	cal := m.menuCfg.Calibration
	if cal == nil {
		cal = menu.DefaultConfig().Calibration
	}
	m.board.Signal.SetFrequency(float64(cal.Frequency(float32(nf))))
}

// Hardware exposes a simulated board as controller hardware.
func Hardware(b *sim.Board) menu.Hardware {
	h := menu.Hardware{
		Signal:  b.Signal,
		Timer:   b.Timer,
		Pass:    b.Pass,
		Fail:    b.Fail,
		Display: b.LCD,
		Console: b.Console,
	}
	for i, btn := range b.Buttons {
		h.Buttons[i] = btn
	}
	return h
}
