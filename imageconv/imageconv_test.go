package imageconv

import (
	"errors"
	"image"
	"image/color"
	"testing"

	"picocam/format"
)

func TestRGB565(t *testing.T) {
	planes := [][]byte{make([]byte, 2*4*2)}
	planes[0][0], planes[0][1] = 0xF8, 0x00 // red
	planes[0][2], planes[0][3] = 0x07, 0xE0 // green

	img, err := FromPlanes(format.RGB565, 4, 2, planes)
	if err != nil {
		t.Fatal(err)
	}
	if got := color.RGBAModel.Convert(img.At(0, 0)).(color.RGBA); got != (color.RGBA{0xFF, 0, 0, 0xFF}) {
		t.Errorf("Pixel 0 = %v", got)
	}
	if got := color.RGBAModel.Convert(img.At(1, 0)).(color.RGBA); got != (color.RGBA{0, 0xFF, 0, 0xFF}) {
		t.Errorf("Pixel 1 = %v", got)
	}

	// Shares the plane.
	img.(*RGB565).Set(3, 1, color.RGBA{0, 0, 0xFF, 0xFF})
	if planes[0][14] != 0x00 || planes[0][15] != 0x1F {
		t.Errorf("Set wrote %x%x", planes[0][14], planes[0][15])
	}
}

func TestExpandPackRoundtrip(t *testing.T) {
	for c := 0; c <= 0xFFFF; c++ {
		r, g, b := expand(uint16(c))
		if got := pack(r, g, b); got != uint16(c) {
			t.Fatalf("%#04x => %02x %02x %02x => %#04x", c, r, g, b, got)
		}
	}
}

func TestYUYV(t *testing.T) {
	// One row, two pixel pairs
	src := []byte{10, 100, 20, 200, 30, 110, 40, 210}
	img, err := FromPlanes(format.YUYV, 4, 1, [][]byte{src})
	if err != nil {
		t.Fatal(err)
	}
	ycc := img.(*image.YCbCr)
	if string(ycc.Y) != string([]byte{10, 20, 30, 40}) {
		t.Errorf("Y = %v", ycc.Y)
	}
	if string(ycc.Cb) != string([]byte{100, 110}) || string(ycc.Cr) != string([]byte{200, 210}) {
		t.Errorf("Cb = %v Cr = %v", ycc.Cb, ycc.Cr)
	}
}

func TestPlanarYUV(t *testing.T) {
	y := make([]byte, 80*60)
	u := make([]byte, 40*60)
	v := make([]byte, 40*60)
	y[80] = 42
	u[40] = 7
	img, err := FromPlanes(format.YUV422, 80, 60, [][]byte{y, u, v})
	if err != nil {
		t.Fatal(err)
	}
	ycc := img.(*image.YCbCr)
	if ycc.YCbCrAt(0, 1).Y != 42 || ycc.YCbCrAt(1, 1).Cb != 7 {
		t.Errorf("At(0,1) = %v", ycc.YCbCrAt(0, 1))
	}
}

func TestFromPlanesErrors(t *testing.T) {
	if _, err := FromPlanes(format.FourCC('G', 'R', 'E', 'Y'), 4, 4, nil); !errors.Is(err, ErrFormat) {
		t.Errorf("Unknown format: %v", err)
	}
	if _, err := FromPlanes(format.YUV422, 80, 60, [][]byte{make([]byte, 4800)}); !errors.Is(err, ErrShort) {
		t.Errorf("Missing planes: %v", err)
	}
	if _, err := FromPlanes(format.RGB565, 80, 60, [][]byte{make([]byte, 100)}); !errors.Is(err, ErrShort) {
		t.Errorf("Short plane: %v", err)
	}
}

func TestToRGB565AndScale(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for i := range src.Pix {
		src.Pix[i] = 0xFF
	}
	rgb := ToRGB565(src)
	if rgb.Pix[0] != 0xFF || rgb.Pix[1] != 0xFF {
		t.Errorf("White converted to %x%x", rgb.Pix[0], rgb.Pix[1])
	}

	big := Scale(rgb, 8, 8, false)
	if big.Bounds().Dx() != 8 {
		t.Fatalf("Scaled to %v", big.Bounds())
	}
	if got := big.RGBAAt(7, 7); got != (color.RGBA{0xFF, 0xFF, 0xFF, 0xFF}) {
		t.Errorf("Scaled pixel %v", got)
	}
}
