//go:build rp2040

package pio

import (
	"device/rp"
	"runtime/interrupt"

	"picocam/camera"
)

// Blocks are PIO0 and PIO1, indexed by block number.
var Blocks = [2]*Block{NewBlock(0), NewBlock(1)}

func pio0Handler(interrupt.Interrupt) {
	camera.HandleFrameInterrupt(0, Blocks[0])
}

func pio1Handler(interrupt.Interrupt) {
	camera.HandleFrameInterrupt(1, Blocks[1])
}

// EnableFrameInterrupts unmasks PIO0_IRQ_0 and PIO1_IRQ_0 in the NVIC. Which
// state machine flags reach them is up to the camera.
func EnableFrameInterrupts() {
	i0 := interrupt.New(rp.IRQ_PIO0_IRQ_0, pio0Handler)
	i0.SetPriority(0x40)
	i0.Enable()

	i1 := interrupt.New(rp.IRQ_PIO1_IRQ_0, pio1Handler)
	i1.SetPriority(0x40)
	i1.Enable()
}
