package camera

import (
	"sync/atomic"

	"picocam/core"
)

// irqContexts maps a PIO block to the camera that owns its frame interrupt.
// Entries are written by Init and Term only while that block's interrupt
// line is disabled, and read by HandleFrameInterrupt.
var irqContexts [2]atomic.Pointer[Camera]

// HandleFrameInterrupt services the frame interrupt of PIO block index. The
// platform calls it from the block's IRQ 0 handler, passing the block.
//
// It completes the pending capture of the registered camera, if any, and
// always acknowledges the interrupt flag. It never blocks or allocates.
func HandleFrameInterrupt(index uint8, p PIO) {
	if int(index) < len(irqContexts) {
		if c := irqContexts[index].Load(); c != nil {
			c.completeFrame(index)
		}
	}
	p.ClearInterrupt(frameIRQ)
}

func (c *Camera) completeFrame(index uint8) {
	req := c.pending.load()
	if req == nil {
		core.RecordEvent(core.EvtSpurious, index, 0, 0)
		return
	}
	if req.callback != nil {
		req.callback(req.buf, req.userData)
	}
	core.RecordEvent(core.EvtComplete, index, uint32(req.buf.Format), 0)
	c.pending.release(req)
}

// register installs c as the owner of its block's frame interrupt.
func (c *Camera) register() {
	p := c.platform.PIO
	p.SetInterruptEnabled(frameIRQ, false)
	irqContexts[c.index].Store(c)
	p.SetInterruptEnabled(frameIRQ, true)
	c.registered = true
}

// unregister disables the frame interrupt and removes c from the table.
func (c *Camera) unregister() {
	if !c.registered {
		return
	}
	c.platform.PIO.SetInterruptEnabled(frameIRQ, false)
	irqContexts[c.index].CompareAndSwap(c, nil)
	c.registered = false
}
