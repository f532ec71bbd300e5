package camera

import (
	rp2pio "github.com/tinygo-org/pio/rp2-pio"

	"picocam/format"
)

// State machine assignment within the PIO block. The frame machine is SM0 and
// plane p is shifted in by SM p+1.
const (
	frameSM          = 0
	numStateMachines = 4
	allStateMachines = 1<<numStateMachines - 1
)

// IRQ flags. The frame machine raises frameIRQ when the last row is done;
// it is routed to the block's system interrupt line 0. Flags 4..6 pace the
// plane machines, one per plane.
const (
	frameIRQ     = 0
	planeIRQBase = 4
)

// Pin offsets from PlatformConfig.BasePin.
const (
	pinPCLK  = 8
	pinHREF  = 9
	pinVSYNC = 10
	numPins  = 11 // D0..D7, PCLK, HREF, VSYNC
)

var asm = rp2pio.AssemblerV0{}

// byteProgram shifts one byte of sensor data into the ISR each time its IRQ
// flag is raised. Autopush hands full words to the RX FIFO.
//
//	.wrap_target
//	    wait 1 irq 7 rel    ; SM1 waits on flag 4, SM2 on 5, SM3 on 6
//	    in pins, 8
//	.wrap
var byteProgram = []uint16{
	asm.WaitIRQ(true, true, 7).Encode(),
	asm.In(rp2pio.InSrcPins, 8).Encode(),
}

var (
	byteWrapTarget uint8 = 0
	byteWrap             = uint8(len(byteProgram) - 1)
)

// pixelBytes is the number of bytes, two pixels, one pass of the pixel loop
// hands on.
const (
	pixelBytes   = 4
	pixelLoopLen = pixelBytes * len(pixelByteInstrs{})
)

// frameProgram waits for the start of a frame, then for every row runs the
// pixel loop once per chunk and finally raises frameIRQ. It pulls the row
// count minus one and the chunk count minus one before each frame.
//
//	.wrap_target
//	    pull block
//	    out y, 32           ; rows - 1
//	    pull block          ; chunks - 1, kept in OSR
//	    wait 1 pin 10       ; VSYNC
//	    wait 0 pin 10
//	row:
//	    wait 1 pin 9        ; HREF
//	    mov x, osr
//	chunk:
//	    (pixel loop, patched per format)
//	    jmp x-- chunk
//	    wait 0 pin 9
//	    jmp y-- row
//	    irq 0
//	.wrap
var frameProgram, pixelLoopStart = assembleFrameProgram()

var (
	frameWrapTarget uint8 = 0
	frameWrap             = uint8(len(frameProgram) - 1)
)

func assembleFrameProgram() ([]uint16, uint8) {
	prog := []uint16{
		asm.Pull(false, true).Encode(),
		asm.Out(rp2pio.OutDestY, 32).Encode(),
		asm.Pull(false, true).Encode(),
		asm.WaitPin(true, pinVSYNC).Encode(),
		asm.WaitPin(false, pinVSYNC).Encode(),
	}
	row := uint8(len(prog))
	prog = append(prog,
		asm.WaitPin(true, pinHREF).Encode(),
		asm.Mov(rp2pio.MovDestX, rp2pio.MovSrcOSR).Encode(),
	)
	chunk := uint8(len(prog))
	for i := 0; i < pixelLoopLen; i++ {
		prog = append(prog, asm.Nop().Encode())
	}
	prog = append(prog,
		asm.Jmp(chunk, rp2pio.JmpXNZeroDec).Encode(),
		asm.WaitPin(false, pinHREF).Encode(),
		asm.Jmp(row, rp2pio.JmpYNZeroDec).Encode(),
		asm.IRQSet(false, frameIRQ).Encode(),
	)
	return prog, chunk
}

type pixelByteInstrs [3]uint16

// pixelByte waits for a rising PCLK edge and hands the byte on the data
// lines to the plane machine listening on flag.
func pixelByte(flag uint8) pixelByteInstrs {
	return pixelByteInstrs{
		asm.WaitPin(false, pinPCLK).Encode(),
		asm.WaitPin(true, pinPCLK).Encode(),
		asm.IRQSet(false, flag&7).Encode(),
	}
}

// pixelLoop returns the pixel loop for f: four bytes, two pixels, per chunk.
// Packed formats send every byte to plane 0. Planar YUV 4:2:2 arrives as
// Y U Y V and is split across the three planes.
func pixelLoop(f format.Code) [pixelLoopLen]uint16 {
	flags := [pixelBytes]uint8{planeIRQBase, planeIRQBase, planeIRQBase, planeIRQBase}
	if f == format.YUV422 {
		flags = [pixelBytes]uint8{planeIRQBase, planeIRQBase + 1, planeIRQBase, planeIRQBase + 2}
	}

	var loop [pixelLoopLen]uint16
	for i, flag := range flags {
		b := pixelByte(flag)
		copy(loop[i*len(b):], b[:])
	}
	return loop
}

// pixelsPerChunk is the number of pixels one pass of the pixel loop consumes.
func pixelsPerChunk(f format.Code) uint16 {
	switch f {
	case format.RGB565, format.YUYV, format.YUV422:
		return 2
	}
	return 0
}

// transferSize is the DMA width for plane p. The planar luma plane gets two
// bytes per chunk and each chroma plane one, so they move narrower words.
func transferSize(f format.Code, plane uint8) TransferSize {
	if f == format.YUV422 {
		if plane == 0 {
			return Transfer16
		}
		return Transfer8
	}
	return Transfer32
}
