// Package sccb exposes a Linux I2C bus to the sensor driver, for bench work
// on the sensor without the capture board.
package sccb

import (
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"
)

// Bus adapts a periph I2C bus to the tinygo drivers.I2C interface.
type Bus struct {
	i2c.Bus
}

// Open initializes the host drivers and opens an I2C bus by name. An empty
// name picks the first bus.
func Open(name string) (i2c.BusCloser, *Bus, error) {
	if _, err := host.Init(); err != nil {
		return nil, nil, err
	}
	b, err := i2creg.Open(name)
	if err != nil {
		return nil, nil, err
	}
	return b, &Bus{Bus: b}, nil
}

// Tx runs one transaction. SCCB has no repeated start, so callers never pass
// both w and r.
func (b *Bus) Tx(addr uint16, w, r []byte) error {
	return b.Bus.Tx(addr, w, r)
}

func (b *Bus) ReadRegister(addr uint8, reg uint8, buf []byte) error {
	if err := b.Bus.Tx(uint16(addr), []byte{reg}, nil); err != nil {
		return err
	}
	return b.Bus.Tx(uint16(addr), nil, buf)
}

func (b *Bus) WriteRegister(addr uint8, reg uint8, buf []byte) error {
	return b.Bus.Tx(uint16(addr), append([]byte{reg}, buf...), nil)
}
