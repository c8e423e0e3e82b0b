// Package sim simulates the capacitance meter board: a free-running
// counter, the oscillator signal line, five buttons, the bicolor LED, the
// character display and the UART console.
package sim

import "io"

// Button indexes in board scan order.
const (
	Button1 = iota
	Button2
	Button3
	Button4
	Button5
	NumButtons
)

// Board bundles simulated peripherals sharing one clock.
type Board struct {
	Clock   Clock
	ClockHz uint32

	Timer   *Timer
	Signal  *Oscillator
	Buttons [NumButtons]*Button
	Pass    *LED
	Fail    *LED
	LCD     *LCD
	Console *Console
}

// NewBoard creates a board on clock ticking at clockHz. Console output is
// mirrored to out when it is not nil.
func NewBoard(clock Clock, clockHz uint32, out io.Writer) *Board {
	b := &Board{
		Clock:   clock,
		ClockHz: clockHz,
		Timer:   NewTimer(clock),
		Signal:  NewOscillator(clock, clockHz),
		Pass:    &LED{},
		Fail:    &LED{},
		LCD:     NewLCD(),
		Console: NewConsole(out),
	}
	for i := range b.Buttons {
		b.Buttons[i] = &Button{}
	}
	return b
}

// Press queues a short press of button i.
func (b *Board) Press(i int) {
	if i < 0 || i >= NumButtons {
		return
	}
	b.Buttons[i].Press(2)
}

// Close releases anything blocked on the console.
func (b *Board) Close() {
	b.Console.Close()
}
