package camera

import "picocam/format"

// HardwareConfig is everything derived from a (format, width, height)
// triple that the PIO block and DMA channels need. It is comparable, and is
// always rebuilt as a whole when the triple changes.
type HardwareConfig struct {
	Format format.Code
	Width  uint16
	Height uint16
	Planes uint8

	// Per plane
	DMA          [MaxPlanes]DMAConfig
	DMAOffset    [MaxPlanes]uint8 // Byte offset into the 32-bit RX FIFO register
	DMATransfers [MaxPlanes]uint32

	// Per state machine, SM0 is the frame machine
	SM [numStateMachines]StateMachineConfig
}

// Matches reports whether buf can be captured without reconfiguring.
func (h *HardwareConfig) Matches(buf *Buffer) bool {
	return h.Format == buf.Format && h.Width == buf.Width && h.Height == buf.Height
}

// deriveConfig computes the hardware configuration for a frame using the
// program offsets and pins of c.
func (c *Camera) deriveConfig(f format.Code, width, height uint16) HardwareConfig {
	cfg := HardwareConfig{
		Format: f,
		Width:  width,
		Height: height,
		Planes: f.Planes(),
	}

	base := c.platform.BasePin
	cfg.SM[frameSM] = StateMachineConfig{
		InBase:     base,
		InCount:    numPins,
		WrapTarget: c.frameOffset + frameWrapTarget,
		Wrap:       c.frameOffset + frameWrap,
		ClkDivInt:  1,
	}

	for p := uint8(0); p < cfg.Planes; p++ {
		size := transferSize(f, p)
		xfer := size.Bytes()
		sm := p + 1

		cfg.DMA[p] = DMAConfig{
			Size:           size,
			ReadIncrement:  false,
			WriteIncrement: true,
			DREQ:           c.platform.PIO.RxDREQ(sm),
		}
		// With right shift the newest bytes sit at the top of the word.
		cfg.DMAOffset[p] = 4 - xfer
		cfg.DMATransfers[p] = f.PlaneSize(p, width, height) / uint32(xfer)

		cfg.SM[sm] = StateMachineConfig{
			InBase:        base,
			InCount:       8,
			WrapTarget:    c.byteOffset + byteWrapTarget,
			Wrap:          c.byteOffset + byteWrap,
			ShiftRight:    true,
			Autopush:      true,
			PushThreshold: xfer * 8,
			JoinRX:        true,
			ClkDivInt:     1,
		}
	}
	return cfg
}
