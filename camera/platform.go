package camera

import (
	"errors"
	"time"

	"tinygo.org/x/drivers"

	"picocam/format"
)

// FrameWidth and FrameHeight are the only supported frame size: the sensor
// at 1/8 of VGA.
const (
	FrameWidth  = 80
	FrameHeight = 60
)

// numGPIO is the number of user GPIOs on the RP2040.
const numGPIO = 30

// PlatformConfig describes how the sensor is wired. It is fixed for the
// lifetime of a Camera.
type PlatformConfig struct {
	// Bus is the SCCB (I2C) bus the sensor is attached to.
	Bus drivers.I2C

	PIO   PIO
	DMA   DMA
	Clock Clock

	// XCLKPin must be a GPOUT capable pin: 21, 23, 24 or 25.
	XCLKPin     uint8
	XCLKDivider uint32

	// SystemClockHz is the clock divided down to XCLK.
	SystemClockHz uint32

	// BasePin is D0. D1..D7 follow, then PCLK, HREF and VSYNC.
	BasePin uint8

	// DMABase is the first of MaxPlanes consecutive DMA channels to claim.
	// A negative value claims any unused channels.
	DMABase int8

	// Sleep is used for sensor settle delays and blocking capture polling.
	// Defaults to time.Sleep.
	Sleep func(time.Duration)
}

// DefaultPlatformConfig returns the wiring of the reference board without
// the hardware handles, which the caller fills in.
func DefaultPlatformConfig() PlatformConfig {
	return PlatformConfig{
		XCLKPin:       21,
		XCLKDivider:   8,
		SystemClockHz: 125000000,
		BasePin:       0,
		DMABase:       -1,
	}
}

// MaxPlanes is the largest number of planes a capture uses, and the number of
// DMA channels a Camera claims.
const MaxPlanes = format.MaxPlanes

var gpoutPins = [...]uint8{21, 23, 24, 25}

// Validate checks the configuration for wiring mistakes.
func (p *PlatformConfig) Validate() error {
	switch {
	case p.Bus == nil:
		return errors.Join(ErrInvalidPlatform, errors.New("no sensor bus"))
	case p.PIO == nil || p.DMA == nil || p.Clock == nil:
		return errors.Join(ErrInvalidPlatform, errors.New("missing PIO, DMA or clock driver"))
	case p.PIO.BlockIndex() >= uint8(len(irqContexts)):
		return errors.Join(ErrInvalidPlatform, errors.New("PIO block index out of range"))
	case p.XCLKDivider == 0:
		return errors.Join(ErrInvalidPlatform, errors.New("XCLK divider is zero"))
	case int(p.BasePin)+numPins > numGPIO:
		return errors.Join(ErrInvalidPlatform, errors.New("data pins exceed GPIO range"))
	case p.DMABase >= 0 && int(p.DMABase)+MaxPlanes > 12:
		return errors.Join(ErrInvalidPlatform, errors.New("DMA channel base out of range"))
	}
	if p.XCLKPin >= p.BasePin && p.XCLKPin < p.BasePin+numPins {
		return errors.Join(ErrInvalidPlatform, errors.New("XCLK pin overlaps the data and sync pins"))
	}
	for _, pin := range gpoutPins {
		if p.XCLKPin == pin {
			return nil
		}
	}
	return errors.Join(ErrInvalidPlatform, errors.New("XCLK pin has no GPOUT function"))
}

func (p *PlatformConfig) sleep(d time.Duration) {
	if p.Sleep != nil {
		p.Sleep(d)
		return
	}
	time.Sleep(d)
}
