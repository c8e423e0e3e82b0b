package main

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/itohio/gocapm/pkg/config"
	"github.com/itohio/gocapm/pkg/link"
	"github.com/itohio/gocapm/pkg/sim"
)

type fakeMeter struct {
	reports     chan link.Report
	prompts     chan link.Prompt
	answers     []string
	pressed     []int
	pressErr    error
	capacitance float64
	board       *sim.Board
}

func newFakeMeter(nf float64) *fakeMeter {
	return &fakeMeter{
		reports:     make(chan link.Report, 1),
		prompts:     make(chan link.Prompt, 1),
		capacitance: nf,
		board:       sim.NewBoard(sim.NewStepClock(1), 32000000, nil),
	}
}

func (f *fakeMeter) Reports() <-chan link.Report { return f.reports }
func (f *fakeMeter) Prompts() <-chan link.Prompt { return f.prompts }
func (f *fakeMeter) Board() *sim.Board { return f.board }
func (f *fakeMeter) Capacitance() float64 { return f.capacitance }
func (f *fakeMeter) SetCapacitance(nf float64) { f.capacitance = nf }

func (f *fakeMeter) Answer(text string) error {
	f.answers = append(f.answers, text)
	return nil
}

func (f *fakeMeter) Press(button int) error {
	if f.pressErr != nil {
		return f.pressErr
	}
	f.pressed = append(f.pressed, button)
	return nil
}

func keyRunes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func update(t *testing.T, m model, msg tea.Msg) model {
	t.Helper()
	next, _ := m.Update(msg)
	out, ok := next.(model)
	require.True(t, ok)
	return out
}

func TestButtonKeys(t *testing.T) {
	meter := newFakeMeter(100)
	m := newModel(meter)

	for _, k := range []string{"1", "3", "5"} {
		m = update(t, m, keyRunes(k))
	}
	assert.Equal(t, []int{0, 2, 4}, meter.pressed)
	assert.Equal(t, "B5 pressed", m.status)

	meter.pressErr = errors.New("not connected")
	m = update(t, m, keyRunes("2"))
	assert.Equal(t, "B2: not connected", m.status)
}

func TestCapacitanceKeys(t *testing.T) {
	meter := newFakeMeter(100)
	m := newModel(meter)

	m = update(t, m, keyRunes("+"))
	assert.InDelta(t, 110, meter.capacitance, 1e-9)

	m = update(t, m, keyRunes("-"))
	assert.InDelta(t, 99, meter.capacitance, 1e-9)

	m = update(t, m, keyRunes("x"))
	assert.Zero(t, meter.capacitance)
	assert.Equal(t, "Capacitor removed", m.status)

	m = update(t, m, keyRunes("x"))
	assert.InDelta(t, 99, meter.capacitance, 1e-9)
	assert.Zero(t, m.removed)
}

func TestAdjustCapacitance(t *testing.T) {
	tests := []struct {
		name string
		nf   float64
		dir  int
		want float64
	}{
		{"insert", 0, 1, 1},
		{"stay empty", 0, -1, 0},
		{"up", 10, 1, 11},
		{"down", 10, -1, 9},
		{"remove small", 0.1, -1, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.InDelta(t, tt.want, adjustCapacitance(tt.nf, tt.dir), 1e-9)
		})
	}
}

func TestReportUpdatesModel(t *testing.T) {
	meter := newFakeMeter(100)
	m := newModel(meter)

	records := make([]float64, 30)
	records[0] = 47.5
	m = update(t, m, reportMsg(link.Report{Capacitance: 100.02, Records: records}))

	assert.True(t, m.haveReport)
	assert.Equal(t, 100.02, m.report.Capacitance)
	assert.Contains(t, m.View(), "Records    1")
}

func TestPromptOpensForm(t *testing.T) {
	meter := newFakeMeter(100)
	m := newModel(meter)

	m = update(t, m, promptMsg(link.Prompt{Kind: link.PromptNominal, Text: "Enter the Capacitance (nF): "}))
	require.NotNil(t, m.form)
	require.NotNil(t, m.answer)

	// Keys go to the form, not the board
	m = update(t, m, keyRunes("1"))
	assert.Empty(t, meter.pressed)

	m = update(t, m, tea.KeyMsg{Type: tea.KeyCtrlC})
	assert.Nil(t, m.form)
	assert.Equal(t, []string{""}, meter.answers)
}

func TestLinkClosed(t *testing.T) {
	m := newModel(newFakeMeter(0))
	m = update(t, m, linkClosedMsg{})
	assert.True(t, m.closed)
	assert.Contains(t, m.View(), "Meter link closed")
}

func TestRecordsText(t *testing.T) {
	records := make([]float64, 30)
	assert.Empty(t, recordsText(records))

	records[0] = 0
	records[1] = 10.5
	assert.Equal(t, "1\t0.000\n2\t10.500\n", recordsText(records))
}

func TestConsoleTail(t *testing.T) {
	report := strings.Repeat("0.000,", link.ReportFields-1) + "0.000"
	lines := []string{"a", report, "b", "c", report}

	assert.Equal(t, []string{"b", "c"}, consoleTail(lines, 2))
	assert.Equal(t, []string{"a", "b", "c"}, consoleTail(lines, 5))
	assert.Empty(t, consoleTail(nil, 3))
}

func TestViewShowsLCD(t *testing.T) {
	meter := newFakeMeter(100)
	meter.board.LCD.Print(1, 1, "C=100.00nF")
	meter.board.Pass.High()

	v := newModel(meter).View()
	assert.Contains(t, v, "C=100.00nF")
	assert.Contains(t, v, "PASS")
	assert.Contains(t, v, "Waiting for telemetry")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	require.NoError(t, writeDefaultConfig(&configFlags{output: path}))
	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, config.Default().Clock.Hz, cfg.Clock.Hz)

	assert.Error(t, writeDefaultConfig(&configFlags{output: path}))
	require.NoError(t, os.WriteFile(path, []byte("telemetry: true\n"), 0644))
	require.NoError(t, writeDefaultConfig(&configFlags{output: path, force: true}))
}
