//go:build rp2040

package pio

import (
	"device/rp"
	"errors"
	"runtime/volatile"
	"unsafe"

	"picocam/camera"
)

const numDMAChannels = 12

// CTRL_TRIG fields
const (
	dmaCtrlEN          = 1 << 0
	dmaCtrlDataSizePos = 2
	dmaCtrlIncrRead    = 1 << 4
	dmaCtrlIncrWrite   = 1 << 5
	dmaCtrlChainToPos  = 11
	dmaCtrlTREQPos     = 15
	dmaCtrlBusy        = 1 << 24
)

// Controller is the chip's DMA block.
var Controller = &DMA{}

// abortPolls bounds the wait for CHAN_ABORT to clear.
const abortPolls = 100000

var (
	errDMAChannel = errors.New("dma: invalid channel")
	errDMAClaimed = errors.New("dma: channel already claimed")
	errDMANone    = errors.New("dma: no free channel")
)

// One channel's register block. See rp.DMA_Type.
type dmaChannelHW struct {
	READ_ADDR   volatile.Register32
	WRITE_ADDR  volatile.Register32
	TRANS_COUNT volatile.Register32
	CTRL_TRIG   volatile.Register32
	_           [12]volatile.Register32 // aliases
}

// DMA implements camera.DMA with a software claim mask, like the SDK's
// dma_channel_claim. There is one controller per chip: use Controller.
type DMA struct {
	claimed uint16
}

func (d *DMA) channel(ch uint8) *dmaChannelHW {
	return &(*[numDMAChannels]dmaChannelHW)(unsafe.Pointer(rp.DMA))[ch]
}

func (d *DMA) Claim(ch uint8) error {
	if ch >= numDMAChannels {
		return errDMAChannel
	}
	if d.claimed&(1<<ch) != 0 {
		return errDMAClaimed
	}
	d.claimed |= 1 << ch
	return nil
}

func (d *DMA) ClaimUnused() (uint8, error) {
	for ch := uint8(0); ch < numDMAChannels; ch++ {
		if d.Claim(ch) == nil {
			return ch, nil
		}
	}
	return 0, errDMANone
}

func (d *DMA) Unclaim(ch uint8) {
	if ch < numDMAChannels {
		d.claimed &^= 1 << ch
	}
}

// Start programs the channel and triggers it through CTRL_TRIG. The channel
// chains to itself, which disables chaining.
func (d *DMA) Start(ch uint8, cfg camera.DMAConfig, dst []byte, src uintptr, count uint32) {
	hw := d.channel(ch)
	hw.CTRL_TRIG.ClearBits(dmaCtrlEN)
	hw.READ_ADDR.Set(uint32(src))
	hw.WRITE_ADDR.Set(uint32(uintptr(unsafe.Pointer(&dst[0]))))
	hw.TRANS_COUNT.Set(count)

	ctrl := uint32(dmaCtrlEN) |
		uint32(cfg.Size)<<dmaCtrlDataSizePos |
		uint32(ch)<<dmaCtrlChainToPos |
		uint32(cfg.DREQ)<<dmaCtrlTREQPos
	if cfg.ReadIncrement {
		ctrl |= dmaCtrlIncrRead
	}
	if cfg.WriteIncrement {
		ctrl |= dmaCtrlIncrWrite
	}
	hw.CTRL_TRIG.Set(ctrl)
}

func (d *DMA) Busy(ch uint8) bool {
	return d.channel(ch).CTRL_TRIG.Get()&dmaCtrlBusy != 0
}

// Abort stops the channel and waits for in-flight transfers to flush through
// the address and data FIFOs.
func (d *DMA) Abort(ch uint8) {
	mask := uint32(1) << ch
	rp.DMA.CHAN_ABORT.Set(mask)
	for i := 0; i < abortPolls && rp.DMA.CHAN_ABORT.Get()&mask != 0; i++ {
	}
	d.channel(ch).CTRL_TRIG.ClearBits(dmaCtrlEN)
}
