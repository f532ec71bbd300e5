//go:build rp2040

package main

import "time"

// ModeConfig selects what the demo loop does with each frame.
type ModeConfig struct {
	// Display draws frames on the SSD1283A.
	Display bool

	// Stream sends frames to the host over USB.
	Stream bool

	// PreviewEvery captures every Nth frame asynchronously in planar
	// YUV 4:2:2 and shows its luma plane. 0 disables it.
	PreviewEvery uint32

	// GreyEvery captures every Nth frame as packed YUYV and shows it in
	// greyscale. 0 disables it.
	GreyEvery uint32

	// FrameInterval paces the loop.
	FrameInterval time.Duration

	// Debug enables the trace UART.
	Debug bool
}

// GetMode returns the compiled-in mode.
func GetMode() ModeConfig {
	return ModeConfig{
		Display:       true,
		Stream:        true,
		PreviewEvery:  10,
		GreyEvery:     15,
		FrameInterval: 50 * time.Millisecond,
		Debug:         true,
	}
}
