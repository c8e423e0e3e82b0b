package sim

import (
	"strings"
	"sync"

	"github.com/itohio/gocapm/pkg/hw"
)

// Button is an active-low push button fed from a script of levels. An idle
// button reads high.
type Button struct {
	mu     sync.Mutex
	levels []bool
}

// Press queues a press that stays down for reads polls, followed by a release.
func (b *Button) Press(reads int) {
	if reads <= 0 {
		reads = 1
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for range reads {
		b.levels = append(b.levels, false)
	}
	b.levels = append(b.levels, true)
}

// Pending reports whether scripted levels are still queued.
func (b *Button) Pending() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.levels) > 0
}

// Get returns the next scripted level.
func (b *Button) Get() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.levels) == 0 {
		return true
	}
	level := b.levels[0]
	b.levels = b.levels[1:]
	return level
}

// LED is one half of the bicolor indicator.
type LED struct {
	mu sync.Mutex
	on bool
}

// High switches the LED on.
func (l *LED) High() { l.set(true) }

// Low switches the LED off.
func (l *LED) Low() { l.set(false) }

// On reports the LED state.
func (l *LED) On() bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.on
}

func (l *LED) set(on bool) {
	l.mu.Lock()
	l.on = on
	l.mu.Unlock()
}

// LCD is a character display framebuffer.
type LCD struct {
	mu    sync.Mutex
	lines [hw.DisplayLines][hw.DisplayWidth]byte
}

// NewLCD creates a blank display.
func NewLCD() *LCD {
	l := &LCD{}
	for i := range l.lines {
		for j := range l.lines[i] {
			l.lines[i][j] = ' '
		}
	}
	return l
}

// Print writes text at the 1-based line and column, clipping at the edge.
func (l *LCD) Print(line, column int, text string) {
	if line < 1 || line > hw.DisplayLines || column < 1 {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	row := &l.lines[line-1]
	for i := 0; i < len(text) && column-1+i < hw.DisplayWidth; i++ {
		row[column-1+i] = text[i]
	}
}

// Line returns the 1-based display line.
func (l *LCD) Line(line int) string {
	if line < 1 || line > hw.DisplayLines {
		return ""
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	return string(l.lines[line-1][:])
}

// Text returns both lines joined by a newline with trailing blanks removed.
func (l *LCD) Text() string {
	return strings.TrimRight(l.Line(1), " ") + "\n" + strings.TrimRight(l.Line(2), " ")
}
