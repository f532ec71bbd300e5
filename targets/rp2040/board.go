//go:build rp2040

package main

import (
	"machine"

	"picocam/camera"
	"picocam/drivers/ssd1283a"
	"picocam/targets/pio"
)

// Camera wiring: D0..D7 on GP0..GP7, PCLK GP8, HREF GP9, VSYNC GP10.
const (
	pinCamBase = 0
	pinXCLK    = 21
	pinSIOD    = machine.GPIO26
	pinSIOC    = machine.GPIO27

	sccbFrequency = 100000
)

// Display wiring.
const (
	pinDC   = machine.GPIO16
	pinCS   = machine.GPIO17
	pinSCK  = machine.GPIO18
	pinMOSI = machine.GPIO19
	pinRST  = machine.GPIO20
	pinVCC  = machine.GPIO15
	pinLED  = machine.GPIO22

	displayFrequency = 16000000
)

// Trace UART, away from the camera data pins.
const (
	pinDebugTX = machine.GPIO12
	pinDebugRX = machine.GPIO13
)

// configureSensorBus brings up I2C1 for the sensor. SCCB is close enough to
// I2C at 100 kHz.
func configureSensorBus() (*machine.I2C, error) {
	bus := machine.I2C1
	err := bus.Configure(machine.I2CConfig{
		Frequency: sccbFrequency,
		SDA:       pinSIOD,
		SCL:       pinSIOC,
	})
	if err != nil {
		return nil, err
	}
	return bus, nil
}

// platformConfig describes the capture hardware on PIO block index.
func platformConfig(bus *machine.I2C, index uint8) camera.PlatformConfig {
	cfg := pio.PlatformConfig(bus, index)
	cfg.XCLKPin = pinXCLK
	cfg.BasePin = pinCamBase
	return cfg
}

// configureDisplay powers the panel and brings up SPI0 in mode 0. The panel
// is write only, so there is no SDI pin.
func configureDisplay() (*ssd1283a.Device, error) {
	for _, p := range []machine.Pin{pinVCC, pinRST, pinLED, pinCS, pinDC} {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
	}
	pinVCC.High()
	pinRST.High()
	pinCS.High()

	spi := machine.SPI0
	err := spi.Configure(machine.SPIConfig{
		Frequency: displayFrequency,
		SCK:       pinSCK,
		SDO:       pinMOSI,
		SDI:       machine.NoPin,
		Mode:      0,
	})
	if err != nil {
		return nil, err
	}

	d := ssd1283a.New(spi, pinDC, pinCS, pinRST, pinLED)
	if err := d.Configure(); err != nil {
		return nil, err
	}
	return d, nil
}
