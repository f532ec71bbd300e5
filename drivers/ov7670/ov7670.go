// Package ov7670 is a register-level driver for the OmniVision OV7670 image
// sensor, controlled over its SCCB (I2C compatible) port.
//
// The driver only programs the sensor. Pixel data leaves the sensor on its
// parallel port and is captured by package camera.
package ov7670

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"
)

// Colorspace selects the sensor output encoding.
type Colorspace uint8

const (
	RGB Colorspace = iota // RGB565 big-endian
	YUV                   // YUV 4:2:2 big-endian
)

// Size is the output size as a division of VGA.
type Size uint8

const (
	SizeDiv1  Size = iota // 640 x 480
	SizeDiv2              // 320 x 240
	SizeDiv4              // 160 x 120
	SizeDiv8              // 80 x 60
	SizeDiv16             // 40 x 30
)

// Dimensions returns the frame width and height of s.
func (s Size) Dimensions() (width, height uint16) {
	if s > SizeDiv16 {
		return 0, 0
	}
	return 640 >> s, 480 >> s
}

// NightMode selects the night mode frame rate reduction.
type NightMode uint8

const (
	NightOff NightMode = iota
	Night2             // 1/2 frame rate
	Night4             // 1/4 frame rate
	Night8             // 1/8 frame rate
)

// TestPattern selects a sensor-generated test image.
type TestPattern uint8

const (
	PatternNone TestPattern = iota
	PatternShifting1
	PatternColorBar
	PatternColorBarFade
)

var (
	ErrUnknownSize = errors.New("ov7670: unknown frame size")
	ErrNotDetected = errors.New("ov7670: product id mismatch")
)

// Device is an OV7670 on an SCCB bus.
type Device struct {
	bus     drivers.I2C
	Address uint16

	// XCLK is the input clock frequency in Hz, used by SetFPS.
	XCLK uint32

	// Sleep is used for every settle delay. Defaults to time.Sleep.
	Sleep func(time.Duration)

	buf [2]byte
}

// New returns a driver for the sensor on bus at its default address.
func New(bus drivers.I2C) *Device {
	return &Device{
		bus:     bus,
		Address: Address,
		XCLK:    DefaultXCLK,
		Sleep:   time.Sleep,
	}
}

func (d *Device) sleep(dur time.Duration) {
	if d.Sleep != nil {
		d.Sleep(dur)
	}
}

// ReadRegister reads one sensor register. SCCB has no repeated start, so the
// register address and the read are two separate transactions.
func (d *Device) ReadRegister(reg uint8) (uint8, error) {
	d.buf[0] = reg
	if err := d.bus.Tx(d.Address, d.buf[:1], nil); err != nil {
		return 0, err
	}
	if err := d.bus.Tx(d.Address, nil, d.buf[1:2]); err != nil {
		return 0, err
	}
	return d.buf[1], nil
}

// WriteRegister writes one sensor register.
func (d *Device) WriteRegister(reg, value uint8) error {
	d.buf[0] = reg
	d.buf[1] = value
	return d.bus.Tx(d.Address, d.buf[:2], nil)
}

// Probe reads the product ID register and checks it against ProductID.
func (d *Device) Probe() error {
	pid, err := d.ReadRegister(RegPID)
	if err != nil {
		return err
	}
	if pid != ProductID {
		return ErrNotDetected
	}
	return nil
}

type regval struct {
	reg, value uint8
}

// writeList writes each pair, pausing after every write. The sensor locks up
// during init without the pause.
func (d *Device) writeList(list []regval) error {
	for _, rv := range list {
		if err := d.WriteRegister(rv.reg, rv.value); err != nil {
			return err
		}
		d.sleep(time.Millisecond)
	}
	return nil
}

// Begin resets the sensor and brings it up in the given colorspace and size.
// The input clock must already be running.
func (d *Device) Begin(cs Colorspace, size Size) error {
	if size > SizeDiv16 {
		return ErrUnknownSize
	}

	// Startup time after the input clock starts is undocumented; use tS:REG.
	d.sleep(300 * time.Millisecond)

	// Soft reset
	if err := d.WriteRegister(RegCOM7, COM7Reset); err != nil {
		return err
	}
	d.sleep(time.Second)

	if err := d.WriteRegister(RegCLKRC, 1); err != nil { // CLK * 4
		return err
	}
	if err := d.WriteRegister(RegDBLV, 1<<6); err != nil { // CLK / 4
		return err
	}
	if err := d.SetColorspace(cs); err != nil {
		return err
	}
	if err := d.writeList(initRegisters); err != nil {
		return err
	}
	if err := d.SetSize(size); err != nil {
		return err
	}

	// tS:REG, about 10 frames
	d.sleep(300 * time.Millisecond)
	return nil
}

var (
	rgbRegisters = []regval{
		{RegCOM7, COM7RGB},
		{RegRGB444, 0},
		{RegCOM15, COM15RGB565 | COM15R00FF},
	}
	yuvRegisters = []regval{
		{RegCOM7, COM7YUV},
		{RegCOM15, COM15R00FF},
	}
)

// SetColorspace switches the output encoding.
func (d *Device) SetColorspace(cs Colorspace) error {
	if cs == RGB {
		return d.writeList(rgbRegisters)
	}
	return d.writeList(yuvRegisters)
}

// window holds the frame window settings that center the image at each size.
var window = [...]struct {
	vstart, hstart, edgeOffset, pclkDelay uint8
}{
	SizeDiv1:  {9, 162, 2, 2},
	SizeDiv2:  {10, 174, 4, 2},
	SizeDiv4:  {11, 186, 2, 2},
	SizeDiv8:  {12, 210, 0, 2},
	SizeDiv16: {15, 252, 3, 2},
}

// SetSize sets the output frame size.
func (d *Device) SetSize(size Size) error {
	if size > SizeDiv16 {
		return ErrUnknownSize
	}
	w := window[size]
	return d.FrameControl(size, w.vstart, uint16(w.hstart), w.edgeOffset, w.pclkDelay)
}

// FrameControl programs the downsampling, pixel clock divider and the frame
// window, which is scattered across several registers.
func (d *Device) FrameControl(size Size, vstart uint8, hstart uint16, edgeOffset, pclkDelay uint8) error {
	if size > SizeDiv16 {
		return ErrUnknownSize
	}

	var err error
	write := func(reg, value uint8) {
		if err != nil {
			return
		}
		err = d.WriteRegister(reg, value)
	}

	// Downsample below VGA, zoom at 1:16
	var com3 uint8
	if size > SizeDiv1 {
		com3 = COM3DCWEn
	}
	if size == SizeDiv16 {
		com3 |= COM3ScaleEn
	}
	write(RegCOM3, com3)

	// PCLK division below VGA: 2,4,8,16 = 0x19,1A,1B,1C
	var com14 uint8
	if size > SizeDiv1 {
		com14 = 0x18 + uint8(size)
	}
	write(RegCOM14, com14)

	// Horizontal and vertical downsample ratio, 1:8 max
	dcw := uint8(size)
	if size > SizeDiv8 {
		dcw = uint8(SizeDiv8)
	}
	write(RegScalingDCWCTR, dcw*0x11)

	pclkDiv := uint8(0x08)
	if size > SizeDiv1 {
		pclkDiv = 0xF0 + uint8(size)
	}
	write(RegScalingPCLKDiv, pclkDiv)
	if err != nil {
		return err
	}

	// 0.5 digital zoom at 1:16, 1.0 otherwise. The top bit of the scaling
	// registers selects the test pattern and must be preserved.
	zoom := uint8(0x20)
	if size == SizeDiv16 {
		zoom = 0x40
	}
	xsc, err := d.ReadRegister(RegScalingXSC)
	if err != nil {
		return err
	}
	ysc, err := d.ReadRegister(RegScalingYSC)
	if err != nil {
		return err
	}
	write(RegScalingXSC, xsc&testPatternBit|zoom)
	write(RegScalingYSC, ysc&testPatternBit|zoom)

	vstop := uint16(vstart) + 480
	hstop := (hstart + 640) % 784
	write(RegHSTART, uint8(hstart>>3))
	write(RegHSTOP, uint8(hstop>>3))
	write(RegHREF, edgeOffset<<6|uint8(hstop&0b111)<<3|uint8(hstart&0b111))
	write(RegVSTART, vstart>>2)
	write(RegVSTOP, uint8(vstop>>2))
	write(RegVREF, uint8(vstop&0b11)<<2|vstart&0b11)
	write(RegScalingPCLKDelay, pclkDelay)
	return err
}

var pllRatio = [...]uint32{1, 4, 6, 8}

// SetFPS picks the PLL multiplier and clock divider that come closest to fps
// without exceeding it, and returns the frame rate actually achieved. The
// rate is capped at 30.
func (d *Device) SetFPS(fps float32) (float32, error) {
	if fps > 30 {
		fps = 30
	}
	pclkTarget := fps * 4000000.0 / 5.0
	pclkMin := d.XCLK / 32
	if pclkTarget < float32(pclkMin) {
		if err := d.WriteRegister(RegDBLV, 0); err != nil { // 1:1 PLL
			return 0, err
		}
		if err := d.WriteRegister(RegCLKRC, 31); err != nil { // 1/32 divider
			return 0, err
		}
		return float32(pclkMin) * 5 / 4000000, nil
	}

	bestPLL, bestDiv := 0, uint32(1)
	bestDelta := float32(30)
	for p, ratio := range pllRatio {
		xclkPLL := d.XCLK * ratio
		firstDiv := uint32(1)
		if p > 0 {
			firstDiv = 2
		}
		for div := firstDiv; div <= 32; div++ {
			pclk := xclkPLL / div
			if float32(pclk) > pclkTarget {
				continue
			}
			delta := fps - float32(pclk)*5.0/4000000.0
			if delta < bestDelta {
				bestDelta = delta
				bestPLL = p
				bestDiv = div
			}
		}
	}

	dblv, clkrc := uint8(bestPLL)<<6, uint8(bestDiv-1)
	if pllRatio[bestPLL] == bestDiv {
		dblv, clkrc = 0, ClkExt
	}
	if err := d.WriteRegister(RegDBLV, dblv); err != nil {
		return 0, err
	}
	if err := d.WriteRegister(RegCLKRC, clkrc); err != nil {
		return 0, err
	}
	return fps - bestDelta, nil
}

var nightBits = [...]uint8{0b00000000, 0b10100000, 0b11000000, 0b11100000}

// SetNightMode enables night mode at a reduced frame rate, or disables it.
func (d *Device) SetNightMode(mode NightMode) error {
	if int(mode) >= len(nightBits) {
		mode = Night8
	}
	com11, err := d.ReadRegister(RegCOM11)
	if err != nil {
		return err
	}
	return d.WriteRegister(RegCOM11, com11&^COM11NightMask|nightBits[mode])
}

// Flip mirrors the image horizontally and/or vertically.
func (d *Device) Flip(horizontal, vertical bool) error {
	mvfp, err := d.ReadRegister(RegMVFP)
	if err != nil {
		return err
	}
	mvfp &^= MVFPMirror | MVFPVFlip
	if horizontal {
		mvfp |= MVFPMirror
	}
	if vertical {
		mvfp |= MVFPVFlip
	}
	return d.WriteRegister(RegMVFP, mvfp)
}

// SetTestPattern replaces the image with a generated pattern.
func (d *Device) SetTestPattern(pattern TestPattern) error {
	xsc, err := d.ReadRegister(RegScalingXSC)
	if err != nil {
		return err
	}
	ysc, err := d.ReadRegister(RegScalingYSC)
	if err != nil {
		return err
	}
	xsc &^= testPatternBit
	ysc &^= testPatternBit
	if pattern&1 != 0 {
		xsc |= testPatternBit
	}
	if pattern&2 != 0 {
		ysc |= testPatternBit
	}
	if err := d.WriteRegister(RegScalingXSC, xsc); err != nil {
		return err
	}
	return d.WriteRegister(RegScalingYSC, ysc)
}

// LumaToRGB565 converts packed YUYV pixels in place to greyscale RGB565
// big-endian, keeping only the Y byte of each pixel.
func LumaToRGB565(pix []byte) {
	for i := 0; i+1 < len(pix); i += 2 {
		y := uint16(pix[i])
		rgb := (y>>3)*0x801 | (y&0xFC)<<3
		pix[i] = byte(rgb >> 8)
		pix[i+1] = byte(rgb)
	}
}
