package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/atotto/clipboard"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"

	"github.com/itohio/gocapm/pkg/link"
	"github.com/itohio/gocapm/pkg/sim"
)

// refreshInterval is how often the board state is redrawn.
const refreshInterval = 100 * time.Millisecond

// simMeter is the part of link.Mock the TUI drives.
type simMeter interface {
	Reports() <-chan link.Report
	Prompts() <-chan link.Prompt
	Answer(text string) error
	Press(button int) error
	SetCapacitance(nf float64)
	Capacitance() float64
	Board() *sim.Board
}

type tickMsg time.Time

type reportMsg link.Report

type promptMsg link.Prompt

type linkClosedMsg struct{}

type model struct {
	meter simMeter

	report     link.Report
	haveReport bool

	form   *huh.Form
	answer *string
	prompt link.Prompt

	removed float64 // Capacitor taken out with x, 0 when inserted
	status  string
	closed  bool
}

func newModel(meter simMeter) model {
	return model{meter: meter}
}

func (m model) Init() tea.Cmd {
	return tea.Batch(tick(), waitReport(m.meter.Reports()), waitPrompt(m.meter.Prompts()))
}

func tick() tea.Cmd {
	return tea.Tick(refreshInterval, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func waitReport(ch <-chan link.Report) tea.Cmd {
	return func() tea.Msg {
		r, ok := <-ch
		if !ok {
			return linkClosedMsg{}
		}
		return reportMsg(r)
	}
}

func waitPrompt(ch <-chan link.Prompt) tea.Cmd {
	return func() tea.Msg {
		p, ok := <-ch
		if !ok {
			return linkClosedMsg{}
		}
		return promptMsg(p)
	}
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tickMsg:
		return m, tick()
	case reportMsg:
		m.report = link.Report(msg)
		m.haveReport = true
		return m, waitReport(m.meter.Reports())
	case promptMsg:
		return m.startPrompt(link.Prompt(msg))
	case linkClosedMsg:
		m.closed = true
		return m, nil
	}

	if m.form != nil {
		return m.updateForm(msg)
	}

	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}

	switch k := key.String(); k {
	case "q", "ctrl+c":
		return m, tea.Quit
	case "1", "2", "3", "4", "5":
		button := int(k[0] - '1')
		if err := m.meter.Press(button); err != nil {
			m.status = fmt.Sprintf("B%d: %v", button+1, err)
		} else {
			m.status = fmt.Sprintf("B%d pressed", button+1)
		}
	case "+", "=":
		m.setCapacitance(adjustCapacitance(m.meter.Capacitance(), 1))
	case "-", "_":
		m.setCapacitance(adjustCapacitance(m.meter.Capacitance(), -1))
	case "x":
		if m.removed > 0 {
			m.meter.SetCapacitance(m.removed)
			m.status = fmt.Sprintf("Capacitor %.3f nF inserted", m.removed)
			m.removed = 0
		} else if nf := m.meter.Capacitance(); nf > 0 {
			m.removed = nf
			m.meter.SetCapacitance(0)
			m.status = "Capacitor removed"
		}
	case "c":
		m.status = m.copyRecords()
	}
	return m, nil
}

// startPrompt opens the manual entry form for a meter prompt.
func (m model) startPrompt(p link.Prompt) (tea.Model, tea.Cmd) {
	answer := ""
	m.answer = &answer
	m.prompt = p
	m.form = huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title(p.Text).
				Description("Digits only. ctrl+c sends an empty line.").
				Key(p.Kind.String()).
				Value(m.answer),
		),
	)
	return m, tea.Batch(m.form.Init(), waitPrompt(m.meter.Prompts()))
}

// updateForm forwards input to the manual entry form and answers the
// meter once the form is done. The meter blocks until it gets a line, so
// an aborted form answers with an empty one.
func (m model) updateForm(msg tea.Msg) (tea.Model, tea.Cmd) {
	formModel, cmd := m.form.Update(msg)
	m.form = formModel.(*huh.Form)

	switch m.form.State {
	case huh.StateCompleted:
		m.status = m.answerPrompt(strings.TrimSpace(*m.answer))
		m.form = nil
		return m, nil
	case huh.StateAborted:
		m.status = m.answerPrompt("")
		m.form = nil
		return m, nil
	}
	return m, cmd
}

func (m model) answerPrompt(text string) string {
	if err := m.meter.Answer(text); err != nil {
		return fmt.Sprintf("Answer failed: %v", err)
	}
	return fmt.Sprintf("Sent %s %q", m.prompt.Kind, text)
}

func (m *model) setCapacitance(nf float64) {
	m.removed = 0
	m.meter.SetCapacitance(nf)
	if nf <= 0 {
		m.status = "Capacitor removed"
		return
	}
	m.status = fmt.Sprintf("Capacitor %.3f nF", nf)
}

func (m model) copyRecords() string {
	if !m.haveReport {
		return "No report yet"
	}
	text := recordsText(m.report.Records)
	if text == "" {
		return "Record log is empty"
	}
	if err := clipboard.WriteAll(text); err != nil {
		return fmt.Sprintf("Copy failed: %v", err)
	}
	return "Records copied to clipboard"
}

// adjustCapacitance steps the simulated capacitor by 10% in direction dir.
// Stepping up from nothing inserts 1 nF, stepping below 0.1 nF removes it.
func adjustCapacitance(nf float64, dir int) float64 {
	if nf <= 0 {
		if dir > 0 {
			return 1
		}
		return 0
	}
	next := nf * (1 + 0.1*float64(dir))
	if next < 0.1 {
		return 0
	}
	return next
}

// recordsText renders the stored records one per line, up to the last
// non-empty slot.
func recordsText(records []float64) string {
	n := len(records)
	for n > 0 && records[n-1] == 0 {
		n--
	}
	var b strings.Builder
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, "%d\t%.3f\n", i+1, records[i])
	}
	return b.String()
}

// consoleTail returns the last n console lines that are not telemetry
// reports.
func consoleTail(lines []string, n int) []string {
	tail := make([]string, 0, n)
	for i := len(lines) - 1; i >= 0 && len(tail) < n; i-- {
		if strings.Count(lines[i], ",") == link.ReportFields-1 {
			continue
		}
		tail = append(tail, lines[i])
	}
	for i, j := 0, len(tail)-1; i < j; i, j = i+1, j-1 {
		tail[i], tail[j] = tail[j], tail[i]
	}
	return tail
}
