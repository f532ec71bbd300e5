//go:build rp2040

package pio

import (
	"errors"
	"runtime/volatile"
	"unsafe"
)

// Clock generator and pad mux
const (
	clocksBase      = 0x40008000
	gpoutStride     = 0x0C // CTRL, DIV, SELECTED
	gpoutAuxsrcPos  = 5
	gpoutAuxsrcMsk  = 0xF
	gpoutAuxClkSys  = 0x6
	gpoutEnable     = 1 << 11
	gpoutDivIntPos  = 8
	gpoutMaxDivider = 0xFFFFFF

	ioBank0Base  = 0x40014000
	gpioCtrlOffs = 0x04 // GPIOn_CTRL = base + 8n + 4
	gpioFuncGPCK = 8
)

// gpoutPins maps clock outputs 0..3 to their GPIO.
var gpoutPins = [4]uint8{21, 23, 24, 25}

var (
	errNotGPOut   = errors.New("clock: pin has no GPOUT function")
	errGPOutRange = errors.New("clock: divider out of range")
)

func reg32(addr uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(addr))
}

// GPOut implements camera.Clock with the CLK_GPOUTn generators.
type GPOut struct{}

// StartGPOut routes clk_sys / divider to pin. Only integer dividers are used.
func (GPOut) StartGPOut(pin uint8, divider uint32) error {
	n := -1
	for i, p := range gpoutPins {
		if p == pin {
			n = i
		}
	}
	if n < 0 {
		return errNotGPOut
	}
	if divider == 0 || divider > gpoutMaxDivider {
		return errGPOutRange
	}

	ctrl := reg32(clocksBase + uintptr(n)*gpoutStride)
	div := reg32(clocksBase + uintptr(n)*gpoutStride + 4)

	ctrl.ClearBits(gpoutEnable)
	div.Set(divider << gpoutDivIntPos)
	ctrl.ReplaceBits(gpoutAuxClkSys, gpoutAuxsrcMsk, gpoutAuxsrcPos)
	ctrl.SetBits(gpoutEnable)

	reg32(ioBank0Base + 8*uintptr(pin) + gpioCtrlOffs).Set(gpioFuncGPCK)
	return nil
}
