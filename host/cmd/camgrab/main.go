// Command camgrab saves frames streamed by the camera firmware.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"picocam/host/grabber"
	"picocam/host/serial"
	"picocam/protocol"
)

var (
	device  = flag.String("device", "/dev/ttyACM0", "serial device")
	baud    = flag.Int("baud", 115200, "baud rate (ignored for USB CDC)")
	output  = flag.String("o", "frames", "output directory")
	count   = flag.Int("n", 0, "frames to save, 0 runs until interrupted")
	enc     = flag.String("format", "png", "image format, png or bmp")
	scale   = flag.Int("scale", 4, "integer upscale factor")
	timeout = flag.Duration("timeout", 5*time.Second, "wait per frame")
	verbose = flag.Bool("v", false, "print link statistics per frame")
)

func main() {
	flag.Parse()
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "camgrab: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	e, err := grabber.ParseEncoder(*enc)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(*output, 0o755); err != nil {
		return err
	}

	cfg := serial.DefaultConfig(*device)
	cfg.Baud = *baud
	g, err := grabber.Open(cfg)
	if err != nil {
		return err
	}
	defer g.Close()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	for saved := 0; *count == 0 || saved < *count; {
		select {
		case <-sig:
			return nil
		default:
		}

		f, img, err := g.Next(*timeout)
		switch {
		case errors.Is(err, protocol.ErrTimeout):
			fmt.Fprintln(os.Stderr, "camgrab: no frame, still waiting")
			continue
		case err != nil && f != nil:
			// Undecodable frame, keep going.
			fmt.Fprintln(os.Stderr, err)
			continue
		case err != nil:
			return err
		}

		name := e.FileName(*output, f)
		if err := writeImage(name, e, img); err != nil {
			return err
		}
		saved++
		if *verbose {
			s := g.Stats()
			fmt.Printf("%s frames=%d dropped=%d crc=%d resyncs=%d\n", name, s.Frames, s.Dropped, s.BadCRC, s.Resyncs)
		} else {
			fmt.Println(name)
		}
	}
	return nil
}
