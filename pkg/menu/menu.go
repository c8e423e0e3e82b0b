// Package menu is the meter's control loop: it measures, renders the
// selected page, reports over the console and services one button press per
// iteration.
package menu

import (
	"context"
	"fmt"
	"strings"

	"github.com/itohio/gocapm/pkg/capacitance"
	"github.com/itohio/gocapm/pkg/hw"
	"github.com/itohio/gocapm/pkg/period"
	"github.com/itohio/gocapm/pkg/record"
	"github.com/itohio/gocapm/pkg/settings"
	"github.com/itohio/gocapm/pkg/threshold"
	"github.com/itohio/gocapm/pkg/timer"
)

// Console prompts for manual entry. Hosts match on these prefixes.
const (
	PromptCapacitance = "Enter the Capacitance (nF): "
	PromptTolerance   = "Enter the Error (%): "
)

// Config holds the controller constants.
type Config struct {
	ClockHz      uint32
	Periods      int
	TimeoutTicks uint32

	Calibration capacitance.Calibration
	Epsilon     float32

	NominalPresets   []int
	TolerancePresets []int

	// MessageMs is how long a message stays on the display.
	MessageMs int
	// LoopMs paces the control loop.
	LoopMs int

	// Telemetry replaces the status line with one CSV report per iteration.
	Telemetry bool
}

// DefaultConfig returns the board constants.
func DefaultConfig() Config {
	return Config{
		ClockHz:          32_000_000,
		Periods:          100,
		TimeoutTicks:     timer.FullScale,
		Calibration:      capacitance.Inverse{K: 7312.5, Scale: 1e9},
		Epsilon:          capacitance.DefaultEpsilon,
		NominalPresets:   settings.DefaultNominalPresets,
		TolerancePresets: settings.DefaultTolerancePresets,
		MessageMs:        1000,
		LoopMs:           200,
	}
}

// Hardware is the set of board capabilities the controller drives. All
// fields are required.
type Hardware struct {
	Signal  hw.DigitalInput
	Timer   hw.FreeRunningTimer
	Buttons [NumButtons]hw.DigitalInput
	Pass    hw.DigitalOutput
	Fail    hw.DigitalOutput
	Display hw.Display
	Console hw.TextIO
}

// Controller owns the record log and the threshold settings. It is driven
// from a single goroutine and none of its methods are safe for concurrent
// use.
type Controller struct {
	cfg Config
	hw  Hardware

	timer     *timer.Service
	meter     *period.Meter
	calc      capacitance.Calculator
	indicator *threshold.Indicator
	checker   threshold.Checker
	settings  *settings.Store
	log       record.Log
	cursor    record.Cursor

	mode    Mode
	page    Page
	confirm bool

	reading capacitance.Reading
	result  threshold.Result
}

// New creates a controller in the Main page, Measure mode, with an empty
// record log.
func New(cfg Config, h Hardware) *Controller {
	def := DefaultConfig()
	if cfg.ClockHz == 0 {
		cfg.ClockHz = def.ClockHz
	}
	if cfg.Periods <= 0 {
		cfg.Periods = def.Periods
	}
	if cfg.Calibration == nil {
		cfg.Calibration = def.Calibration
	}

	ts := timer.New(h.Timer, cfg.ClockHz)
	ind := threshold.NewIndicator(h.Pass, h.Fail)
	return &Controller{
		cfg:   cfg,
		hw:    h,
		timer: ts,
		meter: period.New(h.Signal, ts, cfg.TimeoutTicks),
		calc: capacitance.Calculator{
			ClockHz:     cfg.ClockHz,
			Periods:     cfg.Periods,
			Calibration: cfg.Calibration,
			Epsilon:     cfg.Epsilon,
		},
		indicator: ind,
		checker:   threshold.Checker{Indicator: ind},
		settings:  settings.New(cfg.NominalPresets, cfg.TolerancePresets),
		reading:   capacitance.Reading{Status: capacitance.NoSignal},
	}
}

// Mode returns the main page mode.
func (c *Controller) Mode() Mode { return c.mode }

// Page returns the page on display.
func (c *Controller) Page() Page { return c.page }

// Confirming reports whether a delete is awaiting confirmation.
func (c *Controller) Confirming() bool { return c.confirm }

// Cursor returns the record slot being browsed.
func (c *Controller) Cursor() int { return c.cursor.Index() }

// Records returns the valid record entries in thousandths of nF.
func (c *Controller) Records() []int32 { return c.log.Entries() }

// Nominal returns the nominal capacitance in nF.
func (c *Controller) Nominal() int { return c.settings.Nominal() }

// Tolerance returns the tolerance in percent.
func (c *Controller) Tolerance() int { return c.settings.Tolerance() }

// Reading returns the latest measurement.
func (c *Controller) Reading() capacitance.Reading { return c.reading }

// Init clears the indicator and prints the banner.
func (c *Controller) Init() {
	c.indicator.Off()
	c.hw.Console.Println("Capacitance meter: period measurement on a free running counter.")
	c.hw.Console.Println(fmt.Sprintf("%d periods per reading at %d Hz.", c.cfg.Periods, c.cfg.ClockHz))
}

// Run calls Init and then Step until ctx is done. A pending wait inside Step
// is finished first.
func (c *Controller) Run(ctx context.Context) {
	c.Init()
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}
		c.Step()
	}
}

// Step runs one iteration of the control loop. It never fails: every error
// becomes a message on the display.
func (c *Controller) Step() {
	c.measure()
	c.render()
	c.report()
	c.scan()
	c.timer.DelayMs(c.cfg.LoopMs)
}

func (c *Controller) measure() {
	ticks, err := c.meter.Measure(c.cfg.Periods)
	if err != nil {
		c.reading = capacitance.Reading{Status: capacitance.NoSignal}
		return
	}
	c.reading = c.calc.Compute(ticks)
}

// value is the reading as shown and recorded: zero unless a capacitor is
// present.
func (c *Controller) value() float32 {
	if c.reading.Status != capacitance.Measured {
		return 0
	}
	return c.reading.Capacitance
}

func (c *Controller) render() {
	switch c.page {
	case Settings:
		c.indicator.Off()
		c.show(
			fmt.Sprintf("Nominal %dnF", c.settings.Nominal()),
			fmt.Sprintf("Tolerance %d%%", c.settings.Tolerance()),
		)
	case Records:
		c.indicator.Off()
		c.show(c.slotText(c.cursor.Index()), c.recordsFooter())
	default:
		c.renderMain()
	}
}

func (c *Controller) renderMain() {
	if c.mode == Off {
		c.indicator.Undetermined()
		c.show("Meter idle", "B1 to measure")
		return
	}

	var top string
	switch c.reading.Status {
	case capacitance.NoSignal:
		top = "No signal"
	case capacitance.NoCapacitor:
		top = "No capacitor"
	default:
		top = fmt.Sprintf("C=%.2fnF", c.reading.Capacitance)
	}

	if c.mode == Measure {
		c.indicator.Off()
		bottom := "Measure"
		if c.reading.Valid() {
			bottom = fmt.Sprintf("f=%.2fHz", c.reading.Frequency)
		}
		c.show(top, bottom)
		return
	}

	if !c.reading.Valid() {
		c.indicator.Off()
		c.show(top, "Check")
		return
	}
	c.result = c.checker.Check(c.value(), float32(c.settings.Nominal()), c.settings.Tolerance())
	verdict := "FAIL"
	if c.result.Pass {
		verdict = "PASS"
	}
	c.show(top, fmt.Sprintf("%s %.1f%%", verdict, c.result.Deviation))
}

func (c *Controller) slotText(i int) string {
	v, ok := c.log.At(i)
	if !ok {
		return fmt.Sprintf("#%02d <empty>", i+1)
	}
	return fmt.Sprintf("#%02d %.3fnF", i+1, record.ToNanofarads(v))
}

func (c *Controller) recordsFooter() string {
	if c.confirm {
		return "Delete? B5 / B1"
	}
	return fmt.Sprintf("%d/%d records", c.log.Len(), record.Capacity)
}

func (c *Controller) report() {
	if c.cfg.Telemetry {
		c.hw.Console.Println(Telemetry(c.value(), c.log.Slots()))
		return
	}
	switch c.reading.Status {
	case capacitance.NoSignal:
		c.hw.Console.Status("NO SIGNAL                     ")
	case capacitance.NoCapacitor:
		c.hw.Console.Status(fmt.Sprintf("f=%.2fHz, no capacitor       ", c.reading.Frequency))
	default:
		c.hw.Console.Status(fmt.Sprintf("C=%.3fnF, f=%.2fHz, count=%d    ",
			c.reading.Capacitance, c.reading.Frequency, c.reading.Ticks))
	}
}

// Telemetry formats one report line: the capacitance followed by every
// record slot, all in nF.
func Telemetry(nf float32, slots [record.Capacity]int32) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("%.3f", nf))
	for _, v := range slots {
		sb.WriteByte(',')
		sb.WriteString(fmt.Sprintf("%.3f", record.ToNanofarads(v)))
	}
	return sb.String()
}

// scan services the first pressed button in scan order. The action runs
// after the button is released.
func (c *Controller) scan() {
	for i, b := range c.hw.Buttons {
		if !hw.Pressed(b) {
			continue
		}
		hw.WaitRelease(b)
		c.hw.Console.Println(fmt.Sprintf("Button %d pressed", i+1))
		c.press(i)
		return
	}
}

func (c *Controller) press(button int) {
	switch {
	case c.page == Records && c.confirm:
		c.pressConfirm(button)
	case c.page == Records:
		c.pressRecords(button)
	case c.page == Settings:
		c.pressSettings(button)
	default:
		c.pressMain(button)
	}
}

func (c *Controller) pressMain(button int) {
	switch button {
	case Button1:
		c.mode = c.mode.Next()
	case Button2:
		c.addRecord()
	case Button3:
		c.page = Settings
	case Button4:
		c.page = Records
		c.cursor.Reset()
		c.confirm = false
	}
}

func (c *Controller) pressSettings(button int) {
	switch button {
	case Button1:
		c.settings.CycleNominal()
	case Button2:
		c.settings.CycleTolerance()
	case Button3:
		c.page = Main
	case Button5:
		c.manualEntry()
	}
}

func (c *Controller) pressRecords(button int) {
	switch button {
	case Button1:
		c.cursor.Down()
	case Button2:
		c.cursor.Up()
	case Button4:
		c.page = Main
	case Button5:
		c.confirm = true
	}
}

func (c *Controller) pressConfirm(button int) {
	switch button {
	case Button1:
		c.confirm = false
	case Button5:
		c.confirm = false
		c.deleteRecord()
	}
}

func (c *Controller) addRecord() {
	if !c.reading.Valid() {
		c.message("No signal", "Not recorded")
		return
	}
	if err := c.log.Append(record.FromNanofarads(c.value())); err != nil {
		c.message("Record log full", fmt.Sprintf("%d/%d records", c.log.Len(), record.Capacity))
		return
	}
	c.message(fmt.Sprintf("Recorded #%02d", c.log.Len()), fmt.Sprintf("%.3fnF", c.value()))
}

func (c *Controller) deleteRecord() {
	i := c.cursor.Index()
	if err := c.log.DeleteAt(i); err != nil {
		c.message("No record here", fmt.Sprintf("#%02d <empty>", i+1))
		return
	}
	c.message(fmt.Sprintf("Deleted #%02d", i+1), fmt.Sprintf("%d/%d records", c.log.Len(), record.Capacity))
}

// manualEntry reads the nominal value and tolerance from the console.
func (c *Controller) manualEntry() {
	c.show("Manual entry", "Use the console")

	c.hw.Console.Println(PromptCapacitance)
	nominal, err := c.hw.Console.ReadLine()
	if err != nil {
		c.message("Input aborted", "Settings kept")
		return
	}
	c.hw.Console.Println(PromptTolerance)
	tolerance, err := c.hw.Console.ReadLine()
	if err != nil {
		c.message("Input aborted", "Settings kept")
		return
	}

	if err := c.settings.ManualSet(nominal, tolerance); err != nil {
		c.message("Invalid input", "Digits, in range")
		return
	}
	c.message(
		fmt.Sprintf("Nominal %dnF", c.settings.Nominal()),
		fmt.Sprintf("Tolerance %d%%", c.settings.Tolerance()),
	)
}

// message shows two lines, echoes them to the console and holds them for
// the message delay.
func (c *Controller) message(top, bottom string) {
	c.show(top, bottom)
	c.hw.Console.Println(strings.TrimSpace(top + " " + bottom))
	c.timer.DelayMs(c.cfg.MessageMs)
}

// show writes both display lines padded to the display width.
func (c *Controller) show(top, bottom string) {
	c.hw.Display.Print(1, 1, pad(top))
	c.hw.Display.Print(2, 1, pad(bottom))
}

func pad(s string) string {
	if len(s) >= hw.DisplayWidth {
		return s[:hw.DisplayWidth]
	}
	return s + strings.Repeat(" ", hw.DisplayWidth-len(s))
}
