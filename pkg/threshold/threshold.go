// Package threshold compares a measured capacitance against a nominal value
// and a percentage tolerance, and drives the bicolor pass/fail indicator.
package threshold

import (
	"github.com/chewxy/math32"
	"github.com/itohio/gocapm/pkg/hw"
)

// Result of one comparison. Deviation is a percentage of the nominal value.
type Result struct {
	Pass      bool
	Deviation float32
}

// Check compares c against nominal, both in nF. The reading passes when its
// relative deviation does not exceed tolerancePct. A non-positive nominal
// cannot be compared against and always fails.
func Check(c, nominal float32, tolerancePct int) Result {
	if nominal <= 0 {
		return Result{Deviation: math32.Inf(1)}
	}
	dev := 100 * math32.Abs(c-nominal) / nominal
	return Result{
		Pass:      dev <= float32(tolerancePct),
		Deviation: dev,
	}
}

// Indicator drives two mutually exclusive LEDs. Both on means undetermined.
type Indicator struct {
	pass hw.DigitalOutput
	fail hw.DigitalOutput
}

// NewIndicator creates an indicator on the pass and fail outputs.
func NewIndicator(pass, fail hw.DigitalOutput) *Indicator {
	return &Indicator{pass: pass, fail: fail}
}

// Show lights the LED matching r.
func (i *Indicator) Show(r Result) {
	if r.Pass {
		i.fail.Low()
		i.pass.High()
		return
	}
	i.pass.Low()
	i.fail.High()
}

// Undetermined lights both LEDs.
func (i *Indicator) Undetermined() {
	i.pass.High()
	i.fail.High()
}

// Off darkens both LEDs.
func (i *Indicator) Off() {
	i.pass.Low()
	i.fail.Low()
}

// Checker runs Check and reflects every result on an indicator.
type Checker struct {
	Indicator *Indicator
}

// Check compares c against nominal and updates the indicator.
func (k Checker) Check(c, nominal float32, tolerancePct int) Result {
	r := Check(c, nominal, tolerancePct)
	if k.Indicator != nil {
		k.Indicator.Show(r)
	}
	return r
}
