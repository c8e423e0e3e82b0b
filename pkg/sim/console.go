package sim

import (
	"io"
	"strings"
	"sync"
)

// ErrClosed is returned by ReadLine after the console is closed.
const ErrClosed = Error("console closed")

// Error is a simulator error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const maxConsoleLines = 100

// Console is a simulated UART console. Output is kept for inspection and,
// when a writer is attached, copied there byte for byte as the board would
// send it.
type Console struct {
	mu      sync.Mutex
	out     io.Writer
	status  string
	lines   []string
	waiting bool

	input chan string
	done  chan struct{}
	once  sync.Once
}

// NewConsole creates a console mirroring its output to out, which may be nil.
func NewConsole(out io.Writer) *Console {
	return &Console{
		out:   out,
		input: make(chan string, 16),
		done:  make(chan struct{}),
	}
}

// Status rewrites the current line in place.
func (c *Console) Status(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = text
	c.write(text + "\r")
}

// Println writes a complete line.
func (c *Console) Println(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.status = ""
	c.lines = append(c.lines, text)
	if len(c.lines) > maxConsoleLines {
		c.lines = c.lines[len(c.lines)-maxConsoleLines:]
	}
	c.write(text + "\r\n")
}

// ReadLine blocks until Type delivers a line or the console is closed.
func (c *Console) ReadLine() (string, error) {
	c.mu.Lock()
	c.waiting = true
	c.mu.Unlock()
	defer func() {
		c.mu.Lock()
		c.waiting = false
		c.mu.Unlock()
	}()

	select {
	case line := <-c.input:
		line = strings.TrimRight(line, "\r\n")
		c.Println(line)
		return line, nil
	case <-c.done:
		return "", ErrClosed
	}
}

// Type delivers one line of input.
func (c *Console) Type(line string) {
	select {
	case c.input <- line:
	case <-c.done:
	}
}

// Waiting reports whether ReadLine is blocked for input.
func (c *Console) Waiting() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.waiting
}

// StatusLine returns the current in-place status text.
func (c *Console) StatusLine() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Lines returns a copy of the most recent complete lines.
func (c *Console) Lines() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	result := make([]string, len(c.lines))
	copy(result, c.lines)
	return result
}

// Close unblocks pending and future reads.
func (c *Console) Close() {
	c.once.Do(func() { close(c.done) })
}

func (c *Console) write(s string) {
	if c.out == nil {
		return
	}
	// a broken pipe only means nobody is listening anymore
	_, _ = io.WriteString(c.out, s)
}
