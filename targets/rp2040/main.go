//go:build rp2040

package main

import (
	"errors"
	"machine"
	"sync/atomic"
	"time"

	"picocam/camera"
	"picocam/core"
	"picocam/drivers/ov7670"
	"picocam/drivers/ssd1283a"
	"picocam/format"
	"picocam/protocol"
	"picocam/targets/pio"
)

const (
	frameW = camera.FrameWidth
	frameH = camera.FrameHeight

	// Top-left corner of the frame on the 130x130 panel.
	drawX = 25
	drawY = 35

	previewTimeout = 500 * time.Millisecond
)

var errNoFrame = errors.New("preview: no frame interrupt")

var (
	cam  camera.Camera
	lcd  *ssd1283a.Device
	usb  = &usbLink{}
	link = protocol.NewLink(usb)

	// Planar frames come from a static arena so they never touch the heap.
	previewMem  [frameW*frameH/2 + format.MaxPlanes]uint32
	previewDone atomic.Bool

	// Luma plane expanded to RGB565 for the panel.
	lumaPix [2 * frameW * frameH]byte

	// Debug counters
	framesCaptured uint32
	captureErrors  uint32
	sendErrors     uint32
)

func main() {
	// Clear any watchdog left over from before the reset.
	err := machine.Watchdog.Configure(machine.WatchdogConfig{TimeoutMillis: 0})
	if err != nil {
		return
	}

	InitUSB()
	mode := GetMode()
	if mode.Debug {
		InitDebugUART()
	}
	pio.EnableFrameInterrupts()
	usb.onReconnect = link.Reset

	bus, err := configureSensorBus()
	if err != nil {
		halt("sensor bus: " + err.Error())
	}
	if mode.Display {
		lcd, err = configureDisplay()
		if err != nil {
			core.DebugPrintln("display: " + err.Error())
			lcd = nil
		} else {
			lcd.FillScreen(0)
		}
	}

	startCamera(bus)

	rgb, err := camera.AllocBuffer(format.RGB565, frameW, frameH)
	if err != nil {
		halt("buffer: " + err.Error())
	}
	grey, err := camera.AllocBuffer(format.YUYV, frameW, frameH)
	if err != nil {
		halt("buffer: " + err.Error())
	}
	arena := camera.NewArenaWords(previewMem[:])
	preview, err := camera.AllocBufferFrom(arena, format.YUV422, frameW, frameH)
	if err != nil {
		halt("preview buffer: " + err.Error())
	}

	for frame := uint32(1); ; frame++ {
		start := hardwareUptime()
		switch {
		case every(frame, mode.PreviewEvery):
			err = capturePreview(preview, mode)
		case every(frame, mode.GreyEvery):
			err = captureGrey(grey, mode)
		default:
			err = captureColour(rgb, mode)
		}
		if err != nil {
			captureErrors++
			core.DebugPrintln("frame " + core.Utoa(frame) + ": " + err.Error())
			core.DumpEvents()
			if errors.Is(err, errNoFrame) {
				// The request is still armed. Term drops it.
				cam.Term()
				startCamera(bus)
			}
		} else {
			framesCaptured++
		}

		if frame%100 == 0 {
			core.DebugAsync("frames=" + core.Utoa(framesCaptured) +
				" errors=" + core.Utoa(captureErrors) +
				" send=" + core.Utoa(sendErrors) +
				" host=" + boolString(usb.Connected()) +
				" last_us=" + core.Utoa(uint32(hardwareUptime()-start)))
		}
		time.Sleep(mode.FrameInterval)
	}
}

// startCamera retries until the sensor answers. A missing sensor usually
// means a loose ribbon, so keep trying instead of halting.
func startCamera(bus *machine.I2C) {
	for {
		err := cam.Init(platformConfig(bus, 0))
		if err == nil {
			break
		}
		core.DebugPrintln("camera: " + err.Error())
		cam.Term()
		time.Sleep(time.Second)
	}
	ch := cam.Channels()
	core.DebugPrintln("camera: dma " + core.Itoa(int(ch[0])) + "," + core.Itoa(int(ch[1])) + "," + core.Itoa(int(ch[2])))
}

func every(frame, n uint32) bool {
	return n != 0 && frame%n == 0
}

func captureColour(buf *camera.Buffer, mode ModeConfig) error {
	if err := cam.CaptureBlocking(buf, true); err != nil {
		return err
	}
	show(buf.Planes[0].Data)
	stream(buf, mode)
	return nil
}

// captureGrey shows a packed YUYV frame without its chroma.
func captureGrey(buf *camera.Buffer, mode ModeConfig) error {
	if err := cam.CaptureBlocking(buf, true); err != nil {
		return err
	}
	// Stream before the in-place conversion destroys the chroma.
	stream(buf, mode)
	ov7670.LumaToRGB565(buf.Planes[0].Data)
	show(buf.Planes[0].Data)
	return nil
}

// capturePreview captures a planar frame in the background and shows its Y
// plane once the frame interrupt has fired.
func capturePreview(buf *camera.Buffer, mode ModeConfig) error {
	previewDone.Store(false)
	err := cam.CaptureAsync(buf, true, func(*camera.Buffer, any) {
		previewDone.Store(true)
	}, nil)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(previewTimeout)
	for !previewDone.Load() {
		if time.Now().After(deadline) {
			return errNoFrame
		}
		time.Sleep(time.Millisecond)
	}

	greyRGB565(lumaPix[:], buf.Planes[0].Data)
	show(lumaPix[:])
	stream(buf, mode)
	return nil
}

// greyRGB565 expands 8-bit luma samples to big-endian RGB565.
func greyRGB565(dst, y []byte) {
	for i := 0; i < len(y) && 2*i+1 < len(dst); i++ {
		v := uint16(y[i])
		rgb := (v>>3)*0x801 | (v&0xFC)<<3
		dst[2*i] = byte(rgb >> 8)
		dst[2*i+1] = byte(rgb)
	}
}

func show(pix []byte) {
	if lcd == nil {
		return
	}
	if err := lcd.DrawRGB565(drawX, drawY, frameW, frameH, pix); err != nil {
		core.DebugAsync("display: " + err.Error())
	}
}

func stream(buf *camera.Buffer, mode ModeConfig) {
	if !mode.Stream {
		return
	}
	err := link.SendFrame(framesCaptured, uint32(buf.Format), buf.Width, buf.Height, buf.PlaneData())
	if err != nil {
		sendErrors++
	}
}

func boolString(b bool) string {
	if b {
		return "up"
	}
	return "down"
}

// halt parks the firmware after an unrecoverable setup error.
func halt(msg string) {
	core.DebugPrintln("fatal: " + msg)
	core.DumpEvents()
	for {
		time.Sleep(time.Second)
	}
}
