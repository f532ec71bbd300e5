package camera

import (
	"time"

	"picocam/core"
)

const blockingPoll = time.Millisecond

// Capture starts filling buf with the next frame.
//
// If buf's format or size differs from the current configuration the camera
// is reconfigured first when allowReconfigure is set, otherwise
// ErrReconfigureNotAllowed is returned. A capture already in flight fails
// with ErrBusy and leaves that capture untouched.
//
// cb, if not nil, runs in interrupt context when the frame is complete. With
// blocking set Capture returns only after that, and after every plane
// channel has retired its final transfer.
func (c *Camera) Capture(buf *Buffer, cb FrameCallback, userData any, allowReconfigure, blocking bool) error {
	if c.sensor == nil {
		return ErrNotInitialized
	}
	if c.pending.busy() {
		core.RecordEvent(core.EvtBusy, c.index, 0, 0)
		return ErrBusy
	}
	if buf == nil || !buf.fits() {
		return ErrBufferTooSmall
	}

	if !c.configured || !c.config.Matches(buf) {
		if !allowReconfigure {
			return ErrReconfigureNotAllowed
		}
		if err := c.Configure(buf.Format, buf.Width, buf.Height); err != nil {
			return err
		}
	}

	c.arm(buf)

	c.req = request{buf: buf, callback: cb, userData: userData}
	if !c.pending.occupy(&c.req) {
		// Only reachable if Capture races itself from two goroutines.
		return ErrBusy
	}
	c.trigger()

	if blocking {
		for c.pending.busy() {
			c.platform.sleep(blockingPoll)
		}
		c.drain(false)
	}
	return nil
}

// CaptureBlocking captures one frame into buf and returns when it is
// complete. See Capture for allowReconfigure.
func (c *Camera) CaptureBlocking(buf *Buffer, allowReconfigure bool) error {
	return c.Capture(buf, nil, nil, allowReconfigure, true)
}

// CaptureAsync starts a capture into buf and returns immediately. cb runs in
// interrupt context when the frame is complete. See Capture for
// allowReconfigure.
func (c *Camera) CaptureAsync(buf *Buffer, allowReconfigure bool, cb FrameCallback, userData any) error {
	return c.Capture(buf, cb, userData, allowReconfigure, false)
}

// arm starts one DMA channel per plane. Each waits on its plane machine's
// RX FIFO.
func (c *Camera) arm(buf *Buffer) {
	cfg := &c.config
	dma := c.platform.DMA
	p := c.platform.PIO

	for plane := uint8(0); plane < cfg.Planes; plane++ {
		pl := &buf.Planes[plane]
		src := p.RxFIFOAddr(plane+1) + uintptr(cfg.DMAOffset[plane])
		dma.Start(c.channels[plane], cfg.DMA[plane], pl.Data[:pl.Size], src, cfg.DMATransfers[plane])
	}
	core.RecordEvent(core.EvtArm, c.index, uint32(cfg.Planes), cfg.DMATransfers[0])
}

// trigger releases the frame machine from its idle pull. It then waits for
// the next VSYNC by itself.
func (c *Camera) trigger() {
	cfg := &c.config
	rows := uint32(cfg.Height)
	chunks := uint32(cfg.Width / pixelsPerChunk(cfg.Format))

	p := c.platform.PIO
	p.Put(frameSM, rows-1)
	p.Put(frameSM, chunks-1)
	core.RecordEvent(core.EvtTrigger, c.index, rows, chunks)
}
