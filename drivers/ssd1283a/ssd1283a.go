// Package ssd1283a drives the 130x130 SSD1283A TFT controller over SPI.
package ssd1283a

import (
	"errors"
	"image/color"
	"time"

	"tinygo.org/x/drivers"
)

const (
	Width  = 130
	Height = 130
)

// Registers
const (
	RegOscillation    = 0x00
	RegDriverOutput   = 0x01
	RegDriveAC        = 0x02
	RegEntryMode      = 0x03
	RegDisplayControl = 0x07
	RegFrameCycle     = 0x0B
	RegPower1         = 0x10
	RegPower2         = 0x11
	RegPower3         = 0x12
	RegPower4         = 0x13
	RegRAMAddress     = 0x21
	RegRAMWrite       = 0x22
	RegHorizontalRAM  = 0x44
	RegVerticalRAM    = 0x45
)

var ErrOutOfBounds = errors.New("ssd1283a: area outside the panel")

// Pin is an output line such as machine.Pin.
type Pin interface {
	Set(high bool)
}

type regval struct {
	reg   uint8
	value uint16
}

// delayReg marks a pause in milliseconds in the init list.
const delayReg = 0xFF

var initRegisters = []regval{
	{RegPower1, 0x2F8E},
	{RegPower2, 0x000C},
	{RegDisplayControl, 0x0021},
	{0x28, 0x0006},
	{0x28, 0x0005},
	{0x27, 0x057F},
	{0x29, 0x89A1},
	{RegOscillation, 0x0001},
	{delayReg, 100},
	{0x29, 0x80B0},
	{delayReg, 30},
	{0x29, 0xFFFE},
	{RegDisplayControl, 0x0223},
	{delayReg, 30},
	{RegDisplayControl, 0x0233},
	{RegDriverOutput, 0x2183},
	{RegEntryMode, 0x6830},
	{0x2F, 0xFFFF},
	{0x2C, 0x8000},
	{0x27, 0x0570},
	{RegDriveAC, 0x0300},
	{RegFrameCycle, 0x580C},
	{RegPower3, 0x0609},
	{RegPower4, 0x3100},
}

// Device is one panel. It implements drivers.Displayer.
type Device struct {
	bus drivers.SPI
	dc  Pin
	cs  Pin
	rst Pin
	led Pin // optional

	// Sleep is used for reset and init delays. Defaults to time.Sleep.
	Sleep func(time.Duration)

	buf [2 * Width]byte
}

// New returns a driver for the panel on bus. led may be nil.
func New(bus drivers.SPI, dc, cs, rst, led Pin) *Device {
	return &Device{
		bus:   bus,
		dc:    dc,
		cs:    cs,
		rst:   rst,
		led:   led,
		Sleep: time.Sleep,
	}
}

func (d *Device) sleep(dur time.Duration) {
	if d.Sleep != nil {
		d.Sleep(dur)
	}
}

// Configure resets the controller and runs its power-up sequence.
func (d *Device) Configure() error {
	d.cs.Set(true)
	d.rst.Set(false)
	d.sleep(50 * time.Millisecond)
	d.rst.Set(true)

	for _, rv := range initRegisters {
		if rv.reg == delayReg {
			d.sleep(time.Duration(rv.value) * time.Millisecond)
			continue
		}
		if err := d.WriteRegister(rv.reg, rv.value); err != nil {
			return err
		}
		d.sleep(time.Millisecond)
	}
	d.SetBacklight(true)
	return nil
}

// SetBacklight switches the LED, if wired.
func (d *Device) SetBacklight(on bool) {
	if d.led != nil {
		d.led.Set(on)
	}
}

// WriteRegister writes a 16 bit register, most significant byte first.
func (d *Device) WriteRegister(reg uint8, value uint16) error {
	d.cs.Set(false)
	defer d.cs.Set(true)

	d.dc.Set(false)
	d.buf[0] = reg
	if err := d.bus.Tx(d.buf[:1], nil); err != nil {
		return err
	}
	d.dc.Set(true)
	d.buf[0] = byte(value >> 8)
	d.buf[1] = byte(value)
	return d.bus.Tx(d.buf[:2], nil)
}

// SetWindow limits RAM writes to the inclusive rectangle and moves the write
// address to its top left corner.
func (d *Device) SetWindow(x0, y0, x1, y1 int16) error {
	if x0 < 0 || y0 < 0 || x1 >= Width || y1 >= Height || x0 > x1 || y0 > y1 {
		return ErrOutOfBounds
	}
	var err error
	write := func(reg uint8, value uint16) {
		if err != nil {
			return
		}
		err = d.WriteRegister(reg, value)
	}
	write(RegHorizontalRAM, uint16(x1)<<8|uint16(x0))
	write(RegVerticalRAM, uint16(y1)<<8|uint16(y0))
	write(RegRAMAddress, uint16(x0)<<8|uint16(y0))
	return err
}

// writePixels starts a RAM write and streams pix, big-endian RGB565.
func (d *Device) writePixels(pix ...[]byte) error {
	d.cs.Set(false)
	defer d.cs.Set(true)

	d.dc.Set(false)
	d.buf[0] = RegRAMWrite
	if err := d.bus.Tx(d.buf[:1], nil); err != nil {
		return err
	}
	d.dc.Set(true)
	for _, p := range pix {
		if err := d.bus.Tx(p, nil); err != nil {
			return err
		}
	}
	return nil
}

// FillRectangle paints a w x h rectangle with c.
func (d *Device) FillRectangle(x, y, w, h int16, c uint16) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if err := d.SetWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	for i := int16(0); i < w; i++ {
		d.buf[2*i] = byte(c >> 8)
		d.buf[2*i+1] = byte(c)
	}

	d.cs.Set(false)
	defer d.cs.Set(true)
	d.dc.Set(false)
	if err := d.bus.Tx([]byte{RegRAMWrite}, nil); err != nil {
		return err
	}
	d.dc.Set(true)
	row := d.buf[:2*int(w)]
	for j := int16(0); j < h; j++ {
		if err := d.bus.Tx(row, nil); err != nil {
			return err
		}
	}
	return nil
}

// FillScreen paints the whole panel with c.
func (d *Device) FillScreen(c uint16) error {
	return d.FillRectangle(0, 0, Width, Height, c)
}

// DrawRGB565 copies a w x h image of big-endian RGB565 pixels to (x, y).
func (d *Device) DrawRGB565(x, y, w, h int16, pix []byte) error {
	if w <= 0 || h <= 0 {
		return nil
	}
	if len(pix) < 2*int(w)*int(h) {
		return ErrOutOfBounds
	}
	if err := d.SetWindow(x, y, x+w-1, y+h-1); err != nil {
		return err
	}
	return d.writePixels(pix[:2*int(w)*int(h)])
}

// Size returns the panel size.
func (d *Device) Size() (x, y int16) {
	return Width, Height
}

// SetPixel writes one pixel straight to the panel. Pixels outside the panel
// are ignored.
func (d *Device) SetPixel(x, y int16, c color.RGBA) {
	if d.SetWindow(x, y, x, y) != nil {
		return
	}
	v := RGB565(c)
	d.writePixels([]byte{byte(v >> 8), byte(v)})
}

// Display is a no-op: SetPixel writes through.
func (d *Device) Display() error {
	return nil
}

// RGB565 packs c into a 16 bit pixel.
func RGB565(c color.RGBA) uint16 {
	return uint16(c.R&0xF8)<<8 | uint16(c.G&0xFC)<<3 | uint16(c.B)>>3
}
