package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/itohio/gocapm/pkg/hw"
	"github.com/itohio/gocapm/pkg/sim"
)

const consoleLines = 6

var (
	titleStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true)
	dimStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	lcdStyle   = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#1a1b26")).
			Background(lipgloss.Color("#9ece6a")).
			Padding(0, 1)
	frameStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("12")).
			Padding(0, 1)
	passStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#9ece6a")).Bold(true)
	failStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#f7768e")).Bold(true)
	statusStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#e0af68"))
	footerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("12"))
)

func (m model) View() string {
	header := titleStyle.Render("capsim") + dimStyle.Render("  simulated capacitance meter") + "\n\n"

	if m.form != nil {
		return header + frameStyle.Render(m.form.View())
	}

	board := m.meter.Board()
	if board == nil {
		return header + "Meter not running.\n"
	}

	panel := lipgloss.JoinHorizontal(lipgloss.Top,
		frameStyle.Render(renderLCD(board)+"\n\n"+renderLED(board)),
		"  ",
		frameStyle.Render(m.renderSide()),
	)

	console := frameStyle.Render(renderConsole(board))

	status := ""
	if m.status != "" {
		status = "\n" + statusStyle.Render(m.status)
	}
	if m.closed {
		status += "\n" + failStyle.Render("Meter link closed")
	}

	footer := footerStyle.Render("\nKeys: 1-5=buttons +/-=capacitor x=remove c=copy records q=quit")
	return header + panel + "\n" + console + status + footer
}

func renderLCD(board *sim.Board) string {
	lines := make([]string, hw.DisplayLines)
	for i := range lines {
		lines[i] = lcdStyle.Render(board.LCD.Line(i + 1))
	}
	return strings.Join(lines, "\n")
}

func renderLED(board *sim.Board) string {
	switch {
	case board.Pass.On() && !board.Fail.On():
		return passStyle.Render("● PASS")
	case board.Fail.On() && !board.Pass.On():
		return failStyle.Render("● FAIL")
	case board.Pass.On() && board.Fail.On():
		return statusStyle.Render("● ----")
	}
	return dimStyle.Render("○ off")
}

func (m model) renderSide() string {
	var b strings.Builder

	if nf := m.meter.Capacitance(); nf > 0 {
		fmt.Fprintf(&b, "Capacitor  %.3f nF\n", nf)
	} else {
		b.WriteString("Capacitor  none\n")
	}

	if !m.haveReport {
		b.WriteString(dimStyle.Render("Waiting for telemetry"))
		return b.String()
	}
	fmt.Fprintf(&b, "Reading    %.3f nF\n", m.report.Capacitance)

	stored := strings.Count(recordsText(m.report.Records), "\n")
	fmt.Fprintf(&b, "Records    %d", stored)
	return b.String()
}

func renderConsole(board *sim.Board) string {
	lines := consoleTail(board.Console.Lines(), consoleLines)
	for len(lines) < consoleLines {
		lines = append([]string{""}, lines...)
	}
	if s := board.Console.StatusLine(); s != "" {
		lines = append(lines, dimStyle.Render(s))
	}
	return strings.Join(lines, "\n")
}
