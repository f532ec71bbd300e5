// Package serial opens the camera's USB CDC port on the host.
package serial

import "io"

// Port is an open serial port. Reads that time out return (0, nil) rather
// than an error, so a reader can poll without treating silence as the end
// of the stream.
type Port interface {
	io.ReadWriteCloser
}

// Config holds serial port settings.
type Config struct {
	// Device path, e.g. /dev/ttyACM0 or COM3
	Device string

	// Baud is ignored by USB CDC but required by some drivers.
	Baud int

	// ReadTimeout in milliseconds, 0 blocks.
	ReadTimeout int
}

// DefaultConfig returns settings for the camera's CDC port.
func DefaultConfig(device string) *Config {
	return &Config{
		Device:      device,
		Baud:        115200,
		ReadTimeout: 100,
	}
}
