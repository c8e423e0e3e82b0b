//go:build tinygo

package main

import "machine"

const (
	// Clock configuration
	CPU_FREQUENCY_HZ = 32000000 // SysTick runs from the core clock

	// Console configuration
	// Telemetry line: 31 values of up to 9 characters plus separators, ~300 bytes
	// per loop iteration at 5 iterations/sec = 1,500 bytes/sec.
	// UART 8N1: 10 bits/byte = 15,000 baud minimum; 115200 leaves ~7.7x headroom.
	UART_BAUD_RATE = 115200
	TELEMETRY      = false // Print report lines for the host monitor instead of the status line

	// Period input from the RC oscillator
	PIN_PERIOD = machine.PA8

	// Buttons, active low with pull-ups, in scan order B1..B5
	PIN_BUTTON1 = machine.PA15
	PIN_BUTTON2 = machine.PA14
	PIN_BUTTON3 = machine.PA13
	PIN_BUTTON4 = machine.PA12
	PIN_BUTTON5 = machine.PA11

	// Bicolor LED
	PIN_LED_PASS = machine.PA7
	PIN_LED_FAIL = machine.PA6

	// HD44780 in 4-bit mode
	PIN_LCD_RS = machine.PA0
	PIN_LCD_E  = machine.PA1
	PIN_LCD_D4 = machine.PA2
	PIN_LCD_D5 = machine.PA3
	PIN_LCD_D6 = machine.PA4
	PIN_LCD_D7 = machine.PA5
)
