//go:build tinygo

package main

import "machine"

const maxLine = 32

// console is the line-oriented UART terminal.
type console struct {
	uart   machine.Serialer
	buf    [maxLine]byte
	lastCR bool
}

func newConsole(uart machine.Serialer) *console {
	uart.Configure(machine.UARTConfig{BaudRate: UART_BAUD_RATE})
	return &console{uart: uart}
}

func (c *console) Status(text string) {
	c.uart.Write([]byte("\r" + text))
}

func (c *console) Println(text string) {
	c.uart.Write([]byte(text + "\r\n"))
}

// ReadLine busy-polls the UART, echoing input until CR or LF. A LF right
// after CR is swallowed. Backspace edits the line.
func (c *console) ReadLine() (string, error) {
	n := 0
	for {
		if c.uart.Buffered() == 0 {
			continue
		}
		b, err := c.uart.ReadByte()
		if err != nil {
			return "", err
		}

		switch b {
		case '\n':
			if c.lastCR && n == 0 {
				c.lastCR = false
				continue
			}
			fallthrough
		case '\r':
			c.lastCR = b == '\r'
			c.uart.Write([]byte("\r\n"))
			return string(c.buf[:n]), nil
		case '\b', 0x7F:
			c.lastCR = false
			if n > 0 {
				n--
				c.uart.Write([]byte("\b \b"))
			}
		default:
			c.lastCR = false
			if n < maxLine {
				c.buf[n] = b
				n++
				c.uart.WriteByte(b)
			}
		}
	}
}
