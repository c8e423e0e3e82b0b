//go:build tinygo

package main

import (
	"machine"

	"tinygo.org/x/drivers/hd44780"

	"github.com/itohio/gocapm/pkg/hw"
)

// lcd adapts the HD44780 driver to 1-based line and column addressing.
type lcd struct {
	dev hd44780.Device
}

func newLCD() (*lcd, error) {
	dev, err := hd44780.NewGPIO4Bit(
		[]machine.Pin{PIN_LCD_D4, PIN_LCD_D5, PIN_LCD_D6, PIN_LCD_D7},
		PIN_LCD_E, PIN_LCD_RS, machine.NoPin,
	)
	if err != nil {
		return nil, err
	}
	if err := dev.Configure(hd44780.Config{
		Width:  hw.DisplayWidth,
		Height: hw.DisplayLines,
	}); err != nil {
		return nil, err
	}
	dev.ClearDisplay()
	return &lcd{dev: dev}, nil
}

func (l *lcd) Print(line, column int, text string) {
	if line < 1 || line > hw.DisplayLines || column < 1 || column > hw.DisplayWidth {
		return
	}
	if n := hw.DisplayWidth - column + 1; len(text) > n {
		text = text[:n]
	}
	l.dev.SetCursor(uint8(column-1), uint8(line-1))
	l.dev.Write([]byte(text))
}
