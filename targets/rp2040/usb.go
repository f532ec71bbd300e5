//go:build rp2040

package main

import (
	"errors"
	"machine"
)

// maxWriteFailures is how many failed writes mark the host as gone.
const maxWriteFailures = 10

var errUSBStalled = errors.New("usb: no progress")

// InitUSB configures USB CDC. TinyGo's runtime supplies the descriptors.
func InitUSB() {
	machine.Serial.Configure(machine.UARTConfig{})
}

// usbLink is the io.Writer under the frame link. It tracks whether a host is
// reading so the loop can stop streaming into a full endpoint.
type usbLink struct {
	failures     uint32
	disconnected bool
	onReconnect  func()
}

func (u *usbLink) Write(data []byte) (int, error) {
	written := 0
	for written < len(data) {
		n, err := machine.Serial.Write(data[written:])
		if err == nil && n == 0 {
			err = errUSBStalled
		}
		if err != nil {
			u.failures++
			if u.failures > maxWriteFailures {
				u.disconnected = true
				u.failures = 0
			}
			return written, err
		}
		written += n
	}
	u.failures = 0
	if u.disconnected {
		u.disconnected = false
		if u.onReconnect != nil {
			u.onReconnect()
		}
	}
	return written, nil
}

// Connected reports whether recent writes went through.
func (u *usbLink) Connected() bool {
	return !u.disconnected
}
