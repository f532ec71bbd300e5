package camera

import (
	"errors"
	"testing"

	"picocam/format"
)

func TestProgramLayout(t *testing.T) {
	// pioasm output for the unpatched programs
	wantByte := []uint16{0x20D7, 0x4008}
	wantFrame := []uint16{
		0x80A0, 0x6040, 0x80A0, 0x20AA, 0x202A, 0x20A9, 0xA027,
		0xA042, 0xA042, 0xA042, 0xA042, 0xA042, 0xA042,
		0xA042, 0xA042, 0xA042, 0xA042, 0xA042, 0xA042,
		0x0047, 0x2029, 0x0085, 0xC000,
	}
	if len(byteProgram) != len(wantByte) {
		t.Fatalf("Byte program has %d instructions", len(byteProgram))
	}
	for i, want := range wantByte {
		if byteProgram[i] != want {
			t.Errorf("Byte program %d: %#04x, want %#04x", i, byteProgram[i], want)
		}
	}
	if len(frameProgram) != len(wantFrame) {
		t.Fatalf("Frame program has %d instructions, want %d", len(frameProgram), len(wantFrame))
	}
	for i, want := range wantFrame {
		if frameProgram[i] != want {
			t.Errorf("Frame program %d: %#04x, want %#04x", i, frameProgram[i], want)
		}
	}

	if len(frameProgram)+len(byteProgram) > 32 {
		t.Fatal("Programs do not fit one PIO block")
	}
	if pixelLoopStart != 7 || pixelLoopLen != 12 {
		t.Errorf("Pixel loop at %d, %d long", pixelLoopStart, pixelLoopLen)
	}
	if int(frameWrap) != len(frameProgram)-1 || int(byteWrap) != len(byteProgram)-1 {
		t.Errorf("Wrap at %d and %d", frameWrap, byteWrap)
	}
	if got := frameProgram[int(pixelLoopStart)+pixelLoopLen]; got != 0x0040|uint16(pixelLoopStart) {
		t.Errorf("Chunk jump %#04x", got)
	}
	if frameProgram[frameWrap] != 0xC000|frameIRQ {
		t.Errorf("Last instruction %#04x, want irq %d", frameProgram[frameWrap], frameIRQ)
	}
}

// Every JMP must land inside its own program, before and after patching.
func TestProgramJumpTargets(t *testing.T) {
	check := func(name string, prog []uint16) {
		for i, instr := range prog {
			if instr&0xE000 != 0 {
				continue
			}
			if target := int(instr & 0x1F); target >= len(prog) {
				t.Errorf("%s %d: jump to %d past the end", name, i, target)
			}
		}
	}
	check("byte", byteProgram)
	check("frame", frameProgram)

	for _, f := range []format.Code{format.RGB565, format.YUYV, format.YUV422} {
		prog := append([]uint16(nil), frameProgram...)
		loop := pixelLoop(f)
		copy(prog[pixelLoopStart:], loop[:])
		check(f.String(), prog)
		if prog[int(pixelLoopStart)+pixelLoopLen] != frameProgram[int(pixelLoopStart)+pixelLoopLen] {
			t.Errorf("%v: pixel loop overruns the chunk jump", f)
		}
	}
}

func TestPixelLoop(t *testing.T) {
	tests := []struct {
		f     format.Code
		flags [pixelBytes]uint16
	}{
		{format.RGB565, [pixelBytes]uint16{4, 4, 4, 4}},
		{format.YUYV, [pixelBytes]uint16{4, 4, 4, 4}},
		{format.YUV422, [pixelBytes]uint16{4, 5, 4, 6}},
	}
	for _, tt := range tests {
		loop := pixelLoop(tt.f)
		for i, flag := range tt.flags {
			if loop[i*3] != 0x2028 || loop[i*3+1] != 0x20A8 {
				t.Errorf("%v byte %d: PCLK waits %#04x %#04x", tt.f, i, loop[i*3], loop[i*3+1])
			}
			if loop[i*3+2] != 0xC000|flag {
				t.Errorf("%v byte %d: irq %#04x", tt.f, i, loop[i*3+2])
			}
		}
		if pixelsPerChunk(tt.f) != 2 {
			t.Errorf("%v: %d pixels per chunk", tt.f, pixelsPerChunk(tt.f))
		}
	}
}

func TestValidate(t *testing.T) {
	base := newRig(0).cfg
	tests := []struct {
		name string
		mod  func(*PlatformConfig)
		ok   bool
	}{
		{"default", func(*PlatformConfig) {}, true},
		{"xclk pin", func(p *PlatformConfig) { p.XCLKPin = 22 }, false},
		{"xclk gpout3", func(p *PlatformConfig) { p.XCLKPin = 25 }, true},
		{"divider", func(p *PlatformConfig) { p.XCLKDivider = 0 }, false},
		{"pins", func(p *PlatformConfig) { p.BasePin = 20 }, false},
		{"last pins below xclk", func(p *PlatformConfig) { p.BasePin = 10 }, true},
		{"xclk on vsync", func(p *PlatformConfig) { p.BasePin = 11 }, false},
		{"xclk on href", func(p *PlatformConfig) { p.BasePin = 12 }, false},
		{"xclk inside data pins", func(p *PlatformConfig) { p.BasePin = 19; p.XCLKPin = 25 }, false},
		{"xclk above vsync", func(p *PlatformConfig) { p.BasePin = 11; p.XCLKPin = 23 }, true},
		{"dma base", func(p *PlatformConfig) { p.DMABase = 10 }, false},
		{"no dma", func(p *PlatformConfig) { p.DMA = nil }, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := base
			tt.mod(&cfg)
			err := cfg.Validate()
			if tt.ok && err != nil {
				t.Errorf("Unexpected error: %v", err)
			}
			if !tt.ok && !errors.Is(err, ErrInvalidPlatform) {
				t.Errorf("Expected ErrInvalidPlatform, got %v", err)
			}
		})
	}
}
