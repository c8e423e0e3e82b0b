// Package hw describes the board capabilities the meter is built on.
//
// Every interface is small enough that TinyGo's machine.Pin satisfies the
// pin interfaces directly, while host builds use the simulated board from
// package sim.
package hw

const (
	// DisplayWidth is the number of characters on one display line.
	DisplayWidth = 16
	// DisplayLines is the number of display lines.
	DisplayLines = 2
)

// DigitalInput reads a single logic level.
type DigitalInput interface {
	Get() bool
}

// DigitalOutput drives a single logic level.
type DigitalOutput interface {
	High()
	Low()
}

// FreeRunningTimer is a down-counting timer that reloads itself when it
// reaches zero, like the Cortex-M SysTick.
type FreeRunningTimer interface {
	// Start loads reload into the counter and enables it.
	Start(reload uint32)
	// Value returns the current count.
	Value() uint32
	// Wrapped reports whether the counter has reached zero since Start.
	Wrapped() bool
	// Stop disables the counter.
	Stop()
}

// Display is a character display addressed by 1-based line and column.
type Display interface {
	Print(line, column int, text string)
}

// TextIO is the line-oriented console.
type TextIO interface {
	// Status rewrites the current console line in place.
	Status(text string)
	// Println writes a complete line.
	Println(text string)
	// ReadLine blocks until a line is entered. The line is echoed and
	// returned without its terminator.
	ReadLine() (string, error)
}

// Pressed reports whether an active-low, pulled-up button is held down.
func Pressed(b DigitalInput) bool {
	return !b.Get()
}

// WaitRelease busy-waits until an active-low button is released.
//
// There is no timeout. A stuck or disconnected button halts the caller
// forever; the control loop accepts that risk instead of guessing a
// release that never happened.
func WaitRelease(b DigitalInput) {
	for Pressed(b) {
	}
}
