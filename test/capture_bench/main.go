//go:build rp2040

package main

// Capture bench - cycles through the pixel formats and prints how long each
// capture takes. Run with a serial console attached.

import (
	"errors"
	"machine"
	"sync/atomic"
	"time"

	"picocam/camera"
	"picocam/core"
	"picocam/format"
	"picocam/targets/pio"
)

const framesPerFormat = 30

var formats = []struct {
	code format.Code
	name string
}{
	{format.RGB565, "RGB565"},
	{format.YUYV, "YUYV"},
	{format.YUV422, "YUV422 planar"},
}

var (
	// Set by the frame callback, which runs in interrupt context.
	done atomic.Bool

	errNoFrame = errors.New("no frame interrupt")
)

func main() {
	time.Sleep(3 * time.Second)

	led := machine.LED
	led.Configure(machine.PinConfig{Mode: machine.PinOutput})

	// Flash LED to indicate start
	for i := 0; i < 3; i++ {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}

	println("=== Capture Bench ===")
	println("D0..D7 GP0..GP7, PCLK GP8, HREF GP9, VSYNC GP10, XCLK GP21")

	bus := machine.I2C1
	err := bus.Configure(machine.I2CConfig{
		Frequency: 100000,
		SDA:       machine.GPIO26,
		SCL:       machine.GPIO27,
	})
	if err != nil {
		fail(led, "I2C", err)
	}

	pio.EnableFrameInterrupts()
	var cam camera.Camera
	if err := cam.Init(pio.PlatformConfig(bus, 0)); err != nil {
		fail(led, "Init", err)
	}
	ch := cam.Channels()
	println("Init OK! DMA channels", ch[0], ch[1], ch[2])

	cycle := 0
	for {
		cycle++
		println("\n=== Cycle", cycle, "===")

		for _, f := range formats {
			buf, err := camera.AllocBuffer(f.code, camera.FrameWidth, camera.FrameHeight)
			if err != nil {
				fail(led, "AllocBuffer", err)
			}

			led.High()
			blocking := bench(func() error { return cam.CaptureBlocking(buf, true) })
			// The blocking pass left the camera in this format.
			async := bench(func() error { return captureAsync(&cam, buf) })
			led.Low()

			println(f.name, "blocking avg us:", blocking, "async avg us:", async)
			camera.FreeBuffer(buf)

			if blocking == 0 || async == 0 {
				// Drop whatever is still armed and start over.
				cam.Term()
				if err := cam.Init(pio.PlatformConfig(bus, 0)); err != nil {
					fail(led, "Init", err)
				}
			}
		}

		core.DumpEvents()
		core.ClearEvents()
		time.Sleep(1 * time.Second)
	}
}

// bench runs capture framesPerFormat times and returns the mean in
// microseconds, or 0 if any capture failed.
func bench(capture func() error) uint32 {
	start := time.Now()
	for i := 0; i < framesPerFormat; i++ {
		if err := capture(); err != nil {
			println("  capture error:", err.Error())
			return 0
		}
	}
	return uint32(time.Since(start).Microseconds() / framesPerFormat)
}

func captureAsync(cam *camera.Camera, buf *camera.Buffer) error {
	done.Store(false)
	err := cam.CaptureAsync(buf, false, func(*camera.Buffer, any) {
		done.Store(true)
	}, nil)
	if err != nil {
		return err
	}
	deadline := time.Now().Add(time.Second)
	for !done.Load() {
		if time.Now().After(deadline) {
			return errNoFrame
		}
		time.Sleep(time.Millisecond)
	}
	return nil
}

func fail(led machine.Pin, what string, err error) {
	println(what, "error:", err.Error())
	for {
		led.High()
		time.Sleep(100 * time.Millisecond)
		led.Low()
		time.Sleep(100 * time.Millisecond)
	}
}
