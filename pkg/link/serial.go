package link

import (
	"context"
	"fmt"
	"log"
	"sync"

	"go.bug.st/serial"
)

// DefaultBaudRate is the meter console baud rate.
const DefaultBaudRate = 115200

// Port represents a serial port.
type Port struct {
	Name        string
	Description string
}

// Serial represents a connection to the meter board.
type Serial struct {
	port     string
	baudRate int
	bufSize  int

	conn      serial.Port
	reports   chan Report
	prompts   chan Prompt
	mu        sync.RWMutex
	ctx       context.Context
	cancel    context.CancelFunc
	done      chan struct{}
	connected bool
}

// NewSerial creates a new Serial instance with the specified port, baud rate, and buffer size.
func NewSerial(port string, baudRate int, bufSize int) *Serial {
	if baudRate == 0 {
		baudRate = DefaultBaudRate
	}
	if bufSize == 0 {
		bufSize = DefaultBufferSize
	}

	ctx, cancel := context.WithCancel(context.Background())

	return &Serial{
		port:     port,
		baudRate: baudRate,
		bufSize:  bufSize,
		reports:  make(chan Report, bufSize),
		prompts:  make(chan Prompt, 4),
		ctx:      ctx,
		cancel:   cancel,
	}
}

// Ports returns a list of available serial ports.
func Ports() ([]Port, error) {
	ports, err := serial.GetPortsList()
	if err != nil {
		return nil, fmt.Errorf("failed to list serial ports: %w", err)
	}

	result := make([]Port, 0, len(ports))
	for _, name := range ports {
		result = append(result, Port{
			Name:        name,
			Description: name,
		})
	}

	return result, nil
}

// Connect opens the serial port and starts reading reports.
func (d *Serial) Connect() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.connected {
		return fmt.Errorf("already connected")
	}

	port, err := serial.Open(d.port, &serial.Mode{
		BaudRate: d.baudRate,
	})
	if err != nil {
		return fmt.Errorf("failed to open serial port %s: %w", d.port, err)
	}

	d.conn = port
	d.connected = true
	d.done = make(chan struct{})

	go func() {
		defer close(d.done)
		readLines(d.ctx, port, d.reports, d.prompts)
	}()

	return nil
}

// Close closes the port, waits for the reader to stop and closes the
// report and prompt channels.
func (d *Serial) Close() error {
	d.mu.Lock()
	if !d.connected {
		d.mu.Unlock()
		return nil
	}
	d.cancel()
	if err := d.conn.Close(); err != nil {
		log.Printf("Error closing serial port: %v", err)
	}
	d.conn = nil
	d.connected = false
	done := d.done
	d.mu.Unlock()

	<-done
	close(d.reports)
	close(d.prompts)

	return nil
}

// Reports returns the channel for reading reports.
func (d *Serial) Reports() <-chan Report {
	return d.reports
}

// Prompts returns the channel for manual entry prompts.
func (d *Serial) Prompts() <-chan Prompt {
	return d.prompts
}

// Answer sends one line of manual entry input.
func (d *Serial) Answer(text string) error {
	d.mu.RLock()
	defer d.mu.RUnlock()

	if !d.connected {
		return fmt.Errorf("not connected")
	}

	if _, err := d.conn.Write([]byte(text + "\r\n")); err != nil {
		return fmt.Errorf("failed to send answer: %w", err)
	}

	return nil
}

// IsConnected returns whether the device is currently connected.
func (d *Serial) IsConnected() bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.connected
}
