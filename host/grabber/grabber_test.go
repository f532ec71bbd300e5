package grabber

import (
	"bytes"
	"image"
	"image/png"
	"io"
	"path/filepath"
	"testing"
	"time"

	"golang.org/x/image/bmp"

	"picocam/format"
	"picocam/imageconv"
	"picocam/protocol"
)

func stream(t *testing.T) []byte {
	t.Helper()
	var w bytes.Buffer
	l := protocol.NewLink(&w)

	rgb := make([]byte, 2*80*60)
	for i := 0; i < len(rgb); i += 2 {
		rgb[i], rgb[i+1] = 0xF8, 0x00
	}
	if err := l.SendFrame(1, uint32(format.RGB565), 80, 60, [][]byte{rgb}); err != nil {
		t.Fatal(err)
	}
	y := bytes.Repeat([]byte{128}, 80*60)
	c := bytes.Repeat([]byte{128}, 40*60)
	if err := l.SendFrame(2, uint32(format.YUV422), 80, 60, [][]byte{y, c, c}); err != nil {
		t.Fatal(err)
	}
	return w.Bytes()
}

func TestNext(t *testing.T) {
	g := New(io.NopCloser(bytes.NewReader(stream(t))))
	defer g.Close()

	f, img, err := g.Next(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if f.ID != 1 {
		t.Errorf("Frame %d", f.ID)
	}
	if _, ok := img.(*imageconv.RGB565); !ok {
		t.Errorf("RGB565 frame decoded as %T", img)
	}
	if r, gr, b, _ := img.At(10, 10).RGBA(); r != 0xFFFF || gr != 0 || b != 0 {
		t.Errorf("Pixel %x %x %x, want red", r, gr, b)
	}

	f, img, err = g.Next(time.Second)
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := img.(*image.YCbCr); !ok || f.ID != 2 {
		t.Errorf("Frame %d decoded as %T", f.ID, img)
	}
	if s := g.Stats(); s.Frames != 2 {
		t.Errorf("Stats %+v", s)
	}
}

func TestEncode(t *testing.T) {
	img := imageconv.NewRGB565(image.Rect(0, 0, 80, 60))

	var buf bytes.Buffer
	if err := BMP.Encode(&buf, img, 2); err != nil {
		t.Fatal(err)
	}
	out, err := bmp.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if out.Bounds() != image.Rect(0, 0, 160, 120) {
		t.Errorf("BMP bounds %v", out.Bounds())
	}

	buf.Reset()
	if err := PNG.Encode(&buf, img, 1); err != nil {
		t.Fatal(err)
	}
	if _, err := png.Decode(&buf); err != nil {
		t.Errorf("PNG decode: %v", err)
	}
}

func TestParseEncoder(t *testing.T) {
	if e, err := ParseEncoder("BMP"); err != nil || e != BMP {
		t.Errorf("BMP: %v %v", e, err)
	}
	if _, err := ParseEncoder("gif"); err == nil {
		t.Error("gif accepted")
	}
	f := &protocol.Frame{ID: 42, Format: uint32(format.YUV422)}
	if got := PNG.FileName("out", f); got != filepath.Join("out", "frame-000042-YU16.png") {
		t.Errorf("FileName %q", got)
	}
}
