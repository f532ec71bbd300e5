// Package grabber receives frames streamed by the camera firmware and turns
// them into images.
package grabber

import (
	"fmt"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/image/bmp"

	"picocam/format"
	"picocam/host/serial"
	"picocam/imageconv"
	"picocam/protocol"
)

// Grabber is a connection to the camera.
type Grabber struct {
	port   io.ReadCloser
	reader *protocol.FrameReader
}

// Open connects to the camera's serial device.
func Open(cfg *serial.Config) (*Grabber, error) {
	port, err := serial.Open(cfg)
	if err != nil {
		return nil, err
	}
	return New(port), nil
}

// New reads frames from port.
func New(port io.ReadCloser) *Grabber {
	return &Grabber{
		port:   port,
		reader: protocol.NewFrameReader(port, 4),
	}
}

// Next waits for the next frame and converts it.
func (g *Grabber) Next(timeout time.Duration) (*protocol.Frame, image.Image, error) {
	f, err := g.reader.ReadFrame(timeout)
	if err != nil {
		return nil, nil, err
	}
	img, err := imageconv.FromPlanes(format.Code(f.Format), int(f.Width), int(f.Height), f.Planes)
	if err != nil {
		return f, nil, fmt.Errorf("grabber: frame %d (%v): %w", f.ID, format.Code(f.Format), err)
	}
	return f, img, nil
}

// Stats returns the link counters.
func (g *Grabber) Stats() protocol.Stats {
	return g.reader.Stats()
}

func (g *Grabber) Close() error {
	return g.reader.Close()
}

// Encoder names a file format.
type Encoder string

const (
	PNG Encoder = "png"
	BMP Encoder = "bmp"
)

// ParseEncoder accepts png or bmp in any case.
func ParseEncoder(s string) (Encoder, error) {
	switch e := Encoder(strings.ToLower(s)); e {
	case PNG, BMP:
		return e, nil
	}
	return "", fmt.Errorf("grabber: unknown image format %q", s)
}

// Encode writes img scaled by an integer factor.
func (e Encoder) Encode(w io.Writer, img image.Image, scale int) error {
	if scale > 1 {
		b := img.Bounds()
		img = imageconv.Scale(img, b.Dx()*scale, b.Dy()*scale, false)
	}
	switch e {
	case BMP:
		return bmp.Encode(w, img)
	default:
		return png.Encode(w, img)
	}
}

// FileName returns the output path for a frame.
func (e Encoder) FileName(dir string, f *protocol.Frame) string {
	name := fmt.Sprintf("frame-%06d-%s.%s", f.ID, strings.TrimSpace(format.Code(f.Format).String()), e)
	return filepath.Join(dir, name)
}
