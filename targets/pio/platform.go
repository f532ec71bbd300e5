//go:build rp2040

// Package pio implements the camera hardware interfaces on the RP2040: PIO
// blocks through tinygo-org/pio, DMA channels and GPOUT clocks through their
// registers, and the frame interrupt handlers.
package pio

import (
	"machine"
	"time"

	"tinygo.org/x/drivers"

	"picocam/camera"
)

// PlatformConfig wires the chip's HAL into a camera configuration for PIO
// block index. Pins and dividers keep their defaults.
func PlatformConfig(bus drivers.I2C, index uint8) camera.PlatformConfig {
	cfg := camera.DefaultPlatformConfig()
	cfg.Bus = bus
	cfg.PIO = Blocks[index&1]
	cfg.DMA = Controller
	cfg.Clock = GPOut{}
	cfg.SystemClockHz = machine.CPUFrequency()
	cfg.Sleep = time.Sleep
	return cfg
}
