// Package camera captures frames from an OV7670 parallel sensor into RAM on
// the RP2040.
//
// One PIO block does the pixel timing: a frame machine follows VSYNC, HREF
// and PCLK and hands each byte to a per-plane shift machine, whose RX FIFO a
// DMA channel drains into the plane. When the last row is done the frame
// machine raises an interrupt, which completes the pending capture.
//
// At most one capture is in flight per Camera. Two cameras may run at once,
// one per PIO block.
package camera

import (
	"fmt"
	"time"

	"picocam/core"
	"picocam/drivers/ov7670"
	"picocam/format"
)

const (
	probeAttempts = 5
	probeBackoff  = 100 * time.Millisecond
	xclkSettle    = 300 * time.Millisecond

	// drainPolls bounds the wait for a DMA channel to retire its last
	// transfer after the frame interrupt.
	drainPolls = 10000
)

// program bits for Camera.programs
const (
	programByte = 1 << iota
	programFrame
)

// Camera is a capture context. The zero value is ready for Init.
type Camera struct {
	platform PlatformConfig
	sensor   *ov7670.Device
	index    uint8 // PIO block

	byteOffset  uint8
	frameOffset uint8
	programs    uint8

	channels [MaxPlanes]uint8
	claimed  uint8 // bit i set when channels[i] is claimed

	registered bool
	configured bool
	config     HardwareConfig

	req     request
	pending pendingSlot
}

// Init brings up the sensor and claims the DMA channels and PIO resources.
//
// On failure the resources claimed so far stay recorded; call Term to
// release them. Init on a Camera that holds resources, after a successful or
// a failed Init, returns ErrAlreadyInitialized until Term is called.
func (c *Camera) Init(platform PlatformConfig) error {
	if c.holdsResources() {
		return ErrAlreadyInitialized
	}
	if err := platform.Validate(); err != nil {
		return err
	}
	c.reset(platform)

	if err := platform.Clock.StartGPOut(platform.XCLKPin, platform.XCLKDivider); err != nil {
		return fmt.Errorf("camera: start XCLK: %w", err)
	}
	c.platform.sleep(xclkSettle)

	c.sensor = ov7670.New(platform.Bus)
	c.sensor.Sleep = c.platform.sleep
	if platform.SystemClockHz != 0 {
		c.sensor.XCLK = platform.SystemClockHz / platform.XCLKDivider
	}

	if !c.detect() {
		return ErrProbe
	}
	if err := c.sensor.Begin(ov7670.RGB, ov7670.SizeDiv8); err != nil {
		return fmt.Errorf("%w: %w", ErrBringup, err)
	}

	if err := c.claimChannels(); err != nil {
		return err
	}
	if err := c.loadPrograms(); err != nil {
		return err
	}
	c.register()

	core.RecordEvent(core.EvtInit, c.index, uint32(c.claimed), 0)
	core.DebugPrintln("camera: ready on PIO" + core.Itoa(int(c.index)) +
		" dma=" + core.Itoa(int(c.channels[0])) + "," + core.Itoa(int(c.channels[1])) + "," + core.Itoa(int(c.channels[2])))
	return nil
}

func (c *Camera) holdsResources() bool {
	return c.sensor != nil || c.claimed != 0 || c.programs != 0 || c.registered
}

func (c *Camera) reset(platform PlatformConfig) {
	c.platform = platform
	c.sensor = nil
	c.index = platform.PIO.BlockIndex()
	c.byteOffset, c.frameOffset, c.programs = 0, 0, 0
	c.channels = [MaxPlanes]uint8{}
	c.claimed = 0
	c.registered = false
	c.configured = false
	c.config = HardwareConfig{}
	c.req = request{}
	c.pending.reset()
}

// detect reads the product ID, retrying with a backoff.
func (c *Camera) detect() bool {
	for try := 0; try < probeAttempts; try++ {
		if try > 0 {
			c.platform.sleep(probeBackoff)
		}
		pid, err := c.sensor.ReadRegister(ov7670.RegPID)
		if err == nil && pid == ov7670.ProductID {
			return true
		}
	}
	return false
}

func (c *Camera) claimChannels() error {
	dma := c.platform.DMA
	for i := 0; i < MaxPlanes; i++ {
		var ch uint8
		var err error
		if c.platform.DMABase >= 0 {
			ch = uint8(c.platform.DMABase) + uint8(i)
			err = dma.Claim(ch)
		} else {
			ch, err = dma.ClaimUnused()
		}
		if err != nil {
			return fmt.Errorf("%w: %w", ErrDMAUnavailable, err)
		}
		c.channels[i] = ch
		c.claimed |= 1 << i
	}
	return nil
}

func (c *Camera) loadPrograms() error {
	p := c.platform.PIO

	off, err := p.AddProgram(byteProgram, -1)
	if err != nil {
		return fmt.Errorf("camera: load byte program: %w", err)
	}
	c.byteOffset = off
	c.programs |= programByte

	off, err = p.AddProgram(frameProgram, -1)
	if err != nil {
		return fmt.Errorf("camera: load frame program: %w", err)
	}
	c.frameOffset = off
	c.programs |= programFrame

	p.ConfigureInputs(c.platform.BasePin, numPins)
	return nil
}

// Term stops the state machines, releases the interrupt, the DMA channels
// and the program memory, and drops any pending capture without calling its
// callback. It is safe on a partially initialized Camera.
func (c *Camera) Term() {
	p := c.platform.PIO
	if p == nil {
		return
	}

	p.SetEnabled(allStateMachines, false)
	c.unregister()

	dma := c.platform.DMA
	for i := 0; i < MaxPlanes; i++ {
		if c.claimed&(1<<i) == 0 {
			continue
		}
		if dma.Busy(c.channels[i]) {
			dma.Abort(c.channels[i])
		}
		dma.Unclaim(c.channels[i])
	}
	c.claimed = 0

	if c.programs&programFrame != 0 {
		p.ClearProgramSection(c.frameOffset, uint8(len(frameProgram)))
	}
	if c.programs&programByte != 0 {
		p.ClearProgramSection(c.byteOffset, uint8(len(byteProgram)))
	}
	c.programs = 0

	var dropped uint32
	if c.pending.busy() {
		dropped = 1
	}
	c.pending.reset()
	c.configured = false
	c.config = HardwareConfig{}
	c.sensor = nil

	core.RecordEvent(core.EvtTerm, c.index, dropped, 0)
}

// Configure switches the sensor and the capture hardware to a new format.
// Only FrameWidth x FrameHeight is supported; any other size fails with
// ErrUnsupportedGeometry and leaves the current configuration in place.
func (c *Camera) Configure(f format.Code, width, height uint16) error {
	if c.sensor == nil {
		return ErrNotInitialized
	}
	if width != FrameWidth || height != FrameHeight {
		return ErrUnsupportedGeometry
	}
	if !f.Valid() {
		return ErrUnsupportedFormat
	}
	if err := c.quiesce(); err != nil {
		return err
	}

	cs := ov7670.YUV
	if f == format.RGB565 {
		cs = ov7670.RGB
	}
	if err := c.sensor.SetColorspace(cs); err != nil {
		return fmt.Errorf("camera: set colorspace: %w", err)
	}
	if err := c.sensor.SetSize(ov7670.SizeDiv8); err != nil {
		return fmt.Errorf("camera: set size: %w", err)
	}

	c.config = c.deriveConfig(f, width, height)
	c.configured = true
	c.program()

	core.RecordEvent(core.EvtConfigure, c.index, uint32(f), uint32(width)<<16|uint32(height))
	core.DebugPrintln("camera: configured " + f.String() + " " + core.Itoa(int(width)) + "x" + core.Itoa(int(height)))
	return nil
}

// quiesce makes sure no capture is in flight before the hardware is
// reprogrammed. A pending capture is an error. Channels still busy after the
// last completion are given time to retire their final transfer, then
// aborted.
func (c *Camera) quiesce() error {
	if c.pending.busy() {
		return ErrBusy
	}
	c.drain(true)
	return nil
}

// drain waits for every claimed channel to go idle. With abort set, channels
// that stay busy past drainPolls are aborted.
func (c *Camera) drain(abort bool) {
	dma := c.platform.DMA
	for i := 0; i < MaxPlanes; i++ {
		if c.claimed&(1<<i) == 0 {
			continue
		}
		ch := c.channels[i]
		for n := 0; n < drainPolls && dma.Busy(ch); n++ {
		}
		if abort && dma.Busy(ch) {
			dma.Abort(ch)
		}
	}
}

// program reloads the whole PIO block for the current configuration. The
// pixel loop is part of the frame program, so a format change needs the
// machines stopped, flushed and restarted, not just new register values.
func (c *Camera) program() {
	p := c.platform.PIO
	cfg := &c.config

	p.SetEnabled(allStateMachines, false)
	p.Restart(allStateMachines)
	for sm := uint8(0); sm < numStateMachines; sm++ {
		p.ClearFIFOs(sm)
	}

	loop := pixelLoop(cfg.Format)
	for i, instr := range loop {
		p.WriteInstruction(c.frameOffset+pixelLoopStart+uint8(i), instr)
	}

	for plane := uint8(0); plane < cfg.Planes; plane++ {
		sm := plane + 1
		p.Init(sm, c.byteOffset, cfg.SM[sm])
		p.SetEnabled(1<<sm, true)
	}
	p.Init(frameSM, c.frameOffset, cfg.SM[frameSM])
	p.SetEnabled(1<<frameSM, true)
}

// Sensor returns the sensor driver, for settings the capture path does not
// manage such as flip, night mode or test patterns. It is nil before Init.
func (c *Camera) Sensor() *ov7670.Device {
	return c.sensor
}

// Config returns the current hardware configuration.
func (c *Camera) Config() HardwareConfig {
	return c.config
}

// Busy reports whether a capture is in flight.
func (c *Camera) Busy() bool {
	return c.pending.busy()
}

// Channels returns the DMA channel of each plane.
func (c *Camera) Channels() [MaxPlanes]uint8 {
	return c.channels
}
