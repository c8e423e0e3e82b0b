//go:build tinygo

//go:generate tinygo flash -target=nucleo-l031k6

package main

import (
	"context"
	"machine"

	"github.com/itohio/gocapm/pkg/menu"
)

func main() {
	// Oscillator input and buttons, active low
	PIN_PERIOD.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	buttons := [menu.NumButtons]machine.Pin{PIN_BUTTON1, PIN_BUTTON2, PIN_BUTTON3, PIN_BUTTON4, PIN_BUTTON5}
	for _, b := range buttons {
		b.Configure(machine.PinConfig{Mode: machine.PinInputPullup})
	}

	PIN_LED_PASS.Configure(machine.PinConfig{Mode: machine.PinOutput})
	PIN_LED_FAIL.Configure(machine.PinConfig{Mode: machine.PinOutput})

	cons := newConsole(machine.Serial)

	display, err := newLCD()
	if err != nil {
		cons.Println("LCD init failed: " + err.Error())
		halt()
	}

	cfg := menu.DefaultConfig()
	cfg.ClockHz = CPU_FREQUENCY_HZ
	cfg.Telemetry = TELEMETRY

	h := menu.Hardware{
		Signal:  PIN_PERIOD,
		Timer:   &sysTick{},
		Pass:    PIN_LED_PASS,
		Fail:    PIN_LED_FAIL,
		Display: display,
		Console: cons,
	}
	for i, b := range buttons {
		h.Buttons[i] = b
	}

	menu.New(cfg, h).Run(context.Background())
}

// halt parks the board with both LEDs lit.
func halt() {
	PIN_LED_PASS.High()
	PIN_LED_FAIL.High()
	for {
	}
}
