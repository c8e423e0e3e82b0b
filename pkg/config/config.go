package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/itohio/gocapm/pkg/capacitance"
	"github.com/itohio/gocapm/pkg/menu"
	"github.com/itohio/gocapm/pkg/timer"
)

// Error is a configuration error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const (
	ErrClockHz     = Error("clock.hz must be positive")
	ErrPeriods     = Error("measurement.periods must be positive")
	ErrTimeout     = Error("measurement.timeout_ticks exceeds the 24-bit counter")
	ErrCalibration = Error("calibration.k must be non-zero")
	ErrPresets     = Error("presets must not be empty")
	ErrNominal     = Error("presets.nominal_nf must be positive")
	ErrTolerance   = Error("presets.tolerance_pct must not be negative")
)

// Config represents the application configuration.
type Config struct {
	Serial      SerialConfig      `yaml:"serial"`
	Clock       ClockConfig       `yaml:"clock"`
	Measurement MeasurementConfig `yaml:"measurement"`
	Calibration CalibrationConfig `yaml:"calibration"`
	Display     DisplayConfig     `yaml:"display"`
	Presets     PresetsConfig     `yaml:"presets"`
	Delays      DelaysConfig      `yaml:"delays"`
	Telemetry   bool              `yaml:"telemetry"`
	History     HistoryConfig     `yaml:"history"`
	Mock        MockConfig        `yaml:"mock"`
	Capture     CaptureConfig     `yaml:"capture"`
}

// SerialConfig contains serial port configuration.
type SerialConfig struct {
	Port     string `yaml:"port"`
	BaudRate int    `yaml:"baud_rate"`
}

// ClockConfig describes the counter feeding the period meter.
type ClockConfig struct {
	Hz uint32 `yaml:"hz"`
}

// MeasurementConfig contains measurement parameters.
type MeasurementConfig struct {
	Periods        int    `yaml:"periods"`         // Periods averaged per reading
	TimeoutTicks   uint32 `yaml:"timeout_ticks"`   // Wait window per sync edge, at least one slow period
	AverageSamples int    `yaml:"average_samples"` // Host side averaging (0 = disabled, default)
}

// CalibrationConfig selects the frequency to capacitance transform.
type CalibrationConfig struct {
	Form   string  `yaml:"form"` // inverse or affine
	K      float64 `yaml:"k"`
	Scale  float64 `yaml:"scale"`  // inverse only
	Offset float64 `yaml:"offset"` // affine only
}

// DisplayConfig contains display thresholds.
type DisplayConfig struct {
	EpsilonNF float64 `yaml:"epsilon_nf"` // Readings below this show "No capacitor"
}

// PresetsConfig lists the values cycled through on the settings page.
type PresetsConfig struct {
	NominalNF    []int `yaml:"nominal_nf"`
	TolerancePct []int `yaml:"tolerance_pct"`
}

// DelaysConfig contains the busy-wait pacing delays.
type DelaysConfig struct {
	MessageMs int `yaml:"message_ms"`
	LoopMs    int `yaml:"loop_ms"`
}

// HistoryConfig controls the host reading history.
type HistoryConfig struct {
	WindowSeconds  float64 `yaml:"window_seconds"`
	StableCount    int     `yaml:"stable_count"`      // Readings that must agree
	StableSpreadPc float64 `yaml:"stable_spread_pct"` // Allowed spread, percent of the mean
}

// MockConfig contains mock device configuration.
type MockConfig struct {
	CapacitanceNF float64       `yaml:"capacitance_nf"` // Simulated capacitor, 0 = no signal
	NoiseNF       float64       `yaml:"noise_nf"`       // Noise added per reading
	TicksPerRead  uint64        `yaml:"ticks_per_read"` // Virtual ticks per peripheral read, 0 = wall clock
	Interval      time.Duration `yaml:"interval"`       // Real time between loop iterations
}

// CaptureConfig contains the reading capture database location.
type CaptureConfig struct {
	Path string `yaml:"path"` // Empty disables capture
}

// Default returns a default configuration with the board constants.
func Default() *Config {
	def := menu.DefaultConfig()
	return &Config{
		Serial: SerialConfig{
			Port:     "COM3", // Default for Windows, should be "/dev/ttyUSB0" on Linux
			BaudRate: 115200,
		},
		Clock: ClockConfig{
			Hz: def.ClockHz,
		},
		Measurement: MeasurementConfig{
			Periods:        def.Periods,
			TimeoutTicks:   timer.FullScale,
			AverageSamples: 0,
		},
		Calibration: CalibrationConfig{
			Form:  capacitance.FormInverse,
			K:     7312.5,
			Scale: 1e9,
		},
		Display: DisplayConfig{
			EpsilonNF: float64(capacitance.DefaultEpsilon),
		},
		Presets: PresetsConfig{
			NominalNF:    append([]int(nil), def.NominalPresets...),
			TolerancePct: append([]int(nil), def.TolerancePresets...),
		},
		Delays: DelaysConfig{
			MessageMs: def.MessageMs,
			LoopMs:    def.LoopMs,
		},
		History: HistoryConfig{
			WindowSeconds:  60,
			StableCount:    5,
			StableSpreadPc: 1,
		},
		Mock: MockConfig{
			CapacitanceNF: 100,
			NoiseNF:       0.05,
			TicksPerRead:  16,
			Interval:      200 * time.Millisecond,
		},
	}
}

// Load loads configuration from a YAML file. If the file doesn't exist or
// fields are missing, it uses default values.
func Load(filename string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.ensureDefaults()

	return cfg, nil
}

// Save saves the configuration to a YAML file.
func (c *Config) Save(filename string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// ensureDefaults ensures that all required fields have default values if missing.
func (c *Config) ensureDefaults() {
	def := Default()

	if c.Serial.Port == "" {
		c.Serial.Port = def.Serial.Port
	}
	if c.Serial.BaudRate == 0 {
		c.Serial.BaudRate = def.Serial.BaudRate
	}

	if c.Clock.Hz == 0 {
		c.Clock.Hz = def.Clock.Hz
	}

	if c.Measurement.Periods == 0 {
		c.Measurement.Periods = def.Measurement.Periods
	}
	if c.Measurement.TimeoutTicks == 0 {
		c.Measurement.TimeoutTicks = def.Measurement.TimeoutTicks
	}

	if c.Calibration.Form == "" {
		c.Calibration.Form = def.Calibration.Form
	}
	if c.Calibration.K == 0 {
		c.Calibration.K = def.Calibration.K
	}
	if c.Calibration.Scale == 0 {
		c.Calibration.Scale = def.Calibration.Scale
	}

	if c.Display.EpsilonNF == 0 {
		c.Display.EpsilonNF = def.Display.EpsilonNF
	}

	if len(c.Presets.NominalNF) == 0 {
		c.Presets.NominalNF = def.Presets.NominalNF
	}
	if len(c.Presets.TolerancePct) == 0 {
		c.Presets.TolerancePct = def.Presets.TolerancePct
	}

	if c.History.WindowSeconds == 0 {
		c.History.WindowSeconds = def.History.WindowSeconds
	}
	if c.History.StableCount == 0 {
		c.History.StableCount = def.History.StableCount
	}
	if c.History.StableSpreadPc == 0 {
		c.History.StableSpreadPc = def.History.StableSpreadPc
	}

	if c.Mock.Interval == 0 {
		c.Mock.Interval = def.Mock.Interval
	}
}

// Validate reports the first setting the meter cannot work with.
func (c *Config) Validate() error {
	if c.Clock.Hz == 0 {
		return ErrClockHz
	}
	if c.Measurement.Periods <= 0 {
		return ErrPeriods
	}
	if c.Measurement.TimeoutTicks > timer.FullScale {
		return ErrTimeout
	}
	if _, err := c.Calibration.Policy(); err != nil {
		return err
	}
	if len(c.Presets.NominalNF) == 0 || len(c.Presets.TolerancePct) == 0 {
		return ErrPresets
	}
	for _, v := range c.Presets.NominalNF {
		if v <= 0 {
			return ErrNominal
		}
	}
	for _, v := range c.Presets.TolerancePct {
		if v < 0 {
			return ErrTolerance
		}
	}
	return nil
}

// Policy builds the calibration transform.
func (c CalibrationConfig) Policy() (capacitance.Calibration, error) {
	if c.K == 0 {
		return nil, ErrCalibration
	}
	cal, err := capacitance.NewCalibration(c.Form, float32(c.K), float32(c.Scale), float32(c.Offset))
	if err != nil {
		return nil, fmt.Errorf("calibration.form %q: %w", c.Form, err)
	}
	return cal, nil
}

// Menu translates the configuration into controller constants.
func (c *Config) Menu() (menu.Config, error) {
	if err := c.Validate(); err != nil {
		return menu.Config{}, err
	}
	cal, err := c.Calibration.Policy()
	if err != nil {
		return menu.Config{}, err
	}
	return menu.Config{
		ClockHz:          c.Clock.Hz,
		Periods:          c.Measurement.Periods,
		TimeoutTicks:     c.Measurement.TimeoutTicks,
		Calibration:      cal,
		Epsilon:          float32(c.Display.EpsilonNF),
		NominalPresets:   append([]int(nil), c.Presets.NominalNF...),
		TolerancePresets: append([]int(nil), c.Presets.TolerancePct...),
		MessageMs:        c.Delays.MessageMs,
		LoopMs:           c.Delays.LoopMs,
		Telemetry:        c.Telemetry,
	}, nil
}

// HistoryWindow returns the history window as a duration.
func (c *Config) HistoryWindow() time.Duration {
	return time.Duration(c.History.WindowSeconds * float64(time.Second))
}
