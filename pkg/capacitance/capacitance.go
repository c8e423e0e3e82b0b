// Package capacitance converts multi-cycle tick counts into oscillator
// frequency and capacitance.
//
// Arithmetic is single precision: the board has no double-precision FPU.
package capacitance

import "github.com/chewxy/math32"

// Error is a calibration error.
type Error string

func (e Error) Error() string {
	return string(e)
}

const ErrUnknownForm = Error("unknown calibration form")

// Calibration forms.
const (
	FormInverse = "inverse"
	FormAffine  = "affine"
)

// DefaultEpsilon is the magnitude in nF below which no capacitor is present.
const DefaultEpsilon float32 = 0.005

// Calibration maps oscillator frequency to capacitance in nF and back.
type Calibration interface {
	Capacitance(hz float32) float32
	Frequency(nf float32) float32
}

// Inverse is C = Scale / (f * K). With Scale = 1e9 the result is in nF for
// a K expressed in ohms-equivalent of the timing network.
type Inverse struct {
	K     float32
	Scale float32
}

func (c Inverse) Capacitance(hz float32) float32 {
	return c.Scale / (hz * c.K)
}

func (c Inverse) Frequency(nf float32) float32 {
	if nf <= 0 || c.K == 0 {
		return 0
	}
	return c.Scale / (nf * c.K)
}

// Affine is C = K / f - Offset.
type Affine struct {
	K      float32
	Offset float32
}

func (c Affine) Capacitance(hz float32) float32 {
	return c.K/hz - c.Offset
}

func (c Affine) Frequency(nf float32) float32 {
	d := nf + c.Offset
	if d <= 0 {
		return 0
	}
	return c.K / d
}

// NewCalibration builds a calibration of the named form. scale only applies
// to the inverse form and offset only to the affine one.
func NewCalibration(form string, k, scale, offset float32) (Calibration, error) {
	switch form {
	case FormInverse, "":
		return Inverse{K: k, Scale: scale}, nil
	case FormAffine:
		return Affine{K: k, Offset: offset}, nil
	}
	return nil, ErrUnknownForm
}

// Status classifies a reading.
type Status int

const (
	Measured Status = iota
	NoSignal
	NoCapacitor
)

func (s Status) String() string {
	switch s {
	case Measured:
		return "measured"
	case NoSignal:
		return "no signal"
	case NoCapacitor:
		return "no capacitor"
	}
	return "unknown"
}

// Reading is one converted period measurement.
type Reading struct {
	Ticks       uint32
	Frequency   float32 // Hz
	Capacitance float32 // nF
	Status      Status
}

// Valid reports whether the reading carries a capacitance value.
func (r Reading) Valid() bool {
	return r.Status != NoSignal
}

// Frequency returns the signal frequency for ticks spanning n periods of a
// clockHz counter. Zero ticks or periods yield zero.
func Frequency(ticks uint32, n int, clockHz uint32) float32 {
	if ticks == 0 || n <= 0 {
		return 0
	}
	return float32(clockHz) * float32(n) / float32(ticks)
}

// Calculator turns period meter output into readings.
type Calculator struct {
	ClockHz     uint32
	Periods     int
	Calibration Calibration
	Epsilon     float32
}

// Compute converts ticks for c.Periods periods into a reading. Zero ticks
// short-circuit to a NoSignal reading.
func (c Calculator) Compute(ticks uint32) Reading {
	if ticks == 0 || c.Periods <= 0 || c.ClockHz == 0 {
		return Reading{Status: NoSignal}
	}

	f := Frequency(ticks, c.Periods, c.ClockHz)
	nf := c.Calibration.Capacitance(f)

	r := Reading{
		Ticks:       ticks,
		Frequency:   f,
		Capacitance: nf,
		Status:      Measured,
	}
	if math32.IsNaN(nf) || math32.IsInf(nf, 0) || math32.Abs(nf) < c.Epsilon {
		r.Status = NoCapacitor
	}
	return r
}
