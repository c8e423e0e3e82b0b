//go:build tinygo

package main

import "device/arm"

const systickMask = 0xFFFFFF

// sysTick is the Cortex-M SysTick counter clocked from the core clock.
type sysTick struct {
	wrapped bool
}

// Start loads reload and enables the counter. Writing the current value
// register clears both the count and COUNTFLAG.
func (t *sysTick) Start(reload uint32) {
	t.wrapped = false
	arm.SYST.SYST_RVR.Set(reload & systickMask)
	arm.SYST.SYST_CVR.Set(0)
	arm.SYST.SYST_CSR.Set(arm.SYST_CSR_CLKSOURCE_Msk | arm.SYST_CSR_ENABLE_Msk)
}

func (t *sysTick) Value() uint32 {
	return arm.SYST.SYST_CVR.Get() & systickMask
}

// Wrapped latches COUNTFLAG, which the hardware clears on every read.
func (t *sysTick) Wrapped() bool {
	if !t.wrapped && arm.SYST.SYST_CSR.HasBits(arm.SYST_CSR_COUNTFLAG_Msk) {
		t.wrapped = true
	}
	return t.wrapped
}

func (t *sysTick) Stop() {
	arm.SYST.SYST_CSR.Set(0)
}
