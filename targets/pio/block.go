//go:build rp2040

package pio

import (
	"machine"
	"runtime/volatile"
	"unsafe"

	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"picocam/camera"
)

// PIO register offsets (RP2040 datasheet 3.7)
const (
	pioCTRL      = 0x000
	pioRXF0      = 0x020
	pioINSTRMEM0 = 0x048
	pioSM0CLKDIV = 0x0C8
	pioIRQ0INTE  = 0x12C

	smStride = 0x18
	smADDR   = 0x0C

	ctrlRestartPos = 4

	// IRQ0_INTE: bits 8..11 are the state machine IRQ flags 0..3
	inteSMPos = 8

	dreqPIO0RX0 = 4
)

// Block adapts one rp2-pio block to camera.PIO. Program memory, state
// machine setup and IRQ flags go through rp2-pio. Instruction patching, the
// PC and interrupt routing use the registers directly.
type Block struct {
	pio  *rp2pio.PIO
	base uintptr
}

// NewBlock returns PIO0 or PIO1.
func NewBlock(index uint8) *Block {
	p := rp2pio.PIO0
	if index == 1 {
		p = rp2pio.PIO1
	}
	return &Block{
		pio:  p,
		base: uintptr(unsafe.Pointer(p.HW())),
	}
}

func (b *Block) reg(offset uintptr) *volatile.Register32 {
	return (*volatile.Register32)(unsafe.Pointer(b.base + offset))
}

func (b *Block) smReg(sm uint8, offset uintptr) *volatile.Register32 {
	return b.reg(pioSM0CLKDIV + uintptr(sm)*smStride + offset)
}

func (b *Block) BlockIndex() uint8 {
	return b.pio.BlockIndex()
}

func (b *Block) AddProgram(instructions []uint16, origin int8) (uint8, error) {
	return b.pio.AddProgram(instructions, origin)
}

func (b *Block) ClearProgramSection(offset, length uint8) {
	b.pio.ClearProgramSection(offset, length)
}

func (b *Block) WriteInstruction(addr uint8, instr uint16) {
	b.reg(pioINSTRMEM0 + 4*uintptr(addr&0x1F)).Set(uint32(instr))
}

func (b *Block) ConfigureInputs(base, count uint8) {
	mode := b.pio.PinMode()
	for p := base; p < base+count; p++ {
		machine.Pin(p).Configure(machine.PinConfig{Mode: mode})
	}
}

func (b *Block) SetEnabled(mask uint8, enabled bool) {
	ctrl := b.reg(pioCTRL)
	if enabled {
		ctrl.SetBits(uint32(mask & 0xF))
	} else {
		ctrl.ClearBits(uint32(mask & 0xF))
	}
}

func (b *Block) Restart(mask uint8) {
	// Self clearing
	b.reg(pioCTRL).SetBits(uint32(mask&0xF) << ctrlRestartPos)
}

func (b *Block) ClearFIFOs(sm uint8) {
	b.pio.StateMachine(sm).ClearFIFOs()
}

func (b *Block) Init(sm uint8, pc uint8, cfg camera.StateMachineConfig) {
	s := settingsFor(cfg)
	c := rp2pio.DefaultStateMachineConfig()
	c.SetWrap(s.wrapTarget, s.wrap)
	c.SetInPins(machine.Pin(s.inBase), s.inCount)
	c.SetInShift(s.shiftRight, s.autopush, s.pushThreshold)
	if s.joinRX {
		c.SetFIFOJoin(rp2pio.FifoJoinRx)
	}
	c.SetClkDivIntFrac(s.clkDivInt, 0)

	b.pio.StateMachine(sm).Init(pc, c)
}

func (b *Block) Put(sm uint8, v uint32) {
	s := b.pio.StateMachine(sm)
	for s.IsTxFIFOFull() {
	}
	s.TxPut(v)
}

func (b *Block) PC(sm uint8) uint8 {
	return uint8(b.smReg(sm, smADDR).Get() & 0x1F)
}

func (b *Block) RxFIFOAddr(sm uint8) uintptr {
	return b.base + pioRXF0 + 4*uintptr(sm)
}

func (b *Block) RxDREQ(sm uint8) uint8 {
	return dreqPIO0RX0 + 8*b.BlockIndex() + sm
}

func (b *Block) SetInterruptEnabled(flag uint8, enabled bool) {
	bit := uint32(1) << (inteSMPos + flag)
	if enabled {
		b.reg(pioIRQ0INTE).SetBits(bit)
	} else {
		b.reg(pioIRQ0INTE).ClearBits(bit)
	}
}

func (b *Block) ClearInterrupt(flag uint8) {
	b.pio.ClearIRQ(1 << flag)
}
