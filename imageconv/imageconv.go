// Package imageconv turns captured frame planes into image.Image values.
package imageconv

import (
	"errors"
	"image"
	"image/color"

	"golang.org/x/image/draw"

	"picocam/format"
)

var (
	ErrFormat = errors.New("imageconv: unsupported format")
	ErrShort  = errors.New("imageconv: plane shorter than frame")
)

// RGB565 is an image of big-endian RGB565 pixels, the sensor's byte order.
type RGB565 struct {
	Pix    []byte
	Stride int
	Rect   image.Rectangle
}

// NewRGB565 allocates a blank image.
func NewRGB565(r image.Rectangle) *RGB565 {
	return &RGB565{
		Pix:    make([]byte, 2*r.Dx()*r.Dy()),
		Stride: 2 * r.Dx(),
		Rect:   r,
	}
}

func (p *RGB565) Bounds() image.Rectangle { return p.Rect }

func (p *RGB565) ColorModel() color.Model { return color.RGBAModel }

func (p *RGB565) PixOffset(x, y int) int {
	return (y-p.Rect.Min.Y)*p.Stride + (x-p.Rect.Min.X)*2
}

func (p *RGB565) At(x, y int) color.Color {
	if !(image.Point{x, y}).In(p.Rect) {
		return color.RGBA{}
	}
	i := p.PixOffset(x, y)
	r, g, b := expand(uint16(p.Pix[i])<<8 | uint16(p.Pix[i+1]))
	return color.RGBA{R: r, G: g, B: b, A: 0xff}
}

func (p *RGB565) Set(x, y int, c color.Color) {
	if !(image.Point{x, y}).In(p.Rect) {
		return
	}
	r, g, b, _ := c.RGBA()
	v := pack(uint8(r>>8), uint8(g>>8), uint8(b>>8))
	i := p.PixOffset(x, y)
	p.Pix[i] = byte(v >> 8)
	p.Pix[i+1] = byte(v)
}

func pack(r, g, b uint8) uint16 {
	return uint16(r&0xF8)<<8 | uint16(g&0xFC)<<3 | uint16(b)>>3
}

func expand(c uint16) (r, g, b uint8) {
	r = uint8(c>>8) & 0xF8
	r |= r >> 5
	g = uint8(c>>3) & 0xFC
	g |= g >> 6
	b = uint8(c << 3)
	b |= b >> 5
	return
}

// FromPlanes wraps or converts the planes of a width x height frame.
//
// RGB565 frames share the plane memory. YUYV is split into a new 4:2:2
// YCbCr image. Planar YUV 4:2:2 shares the plane memory as a YCbCr image.
func FromPlanes(f format.Code, width, height int, planes [][]byte) (image.Image, error) {
	if !f.Valid() {
		return nil, ErrFormat
	}
	if len(planes) < int(f.Planes()) {
		return nil, ErrShort
	}
	for p := uint8(0); p < f.Planes(); p++ {
		if len(planes[p]) < int(f.PlaneSize(p, uint16(width), uint16(height))) {
			return nil, ErrShort
		}
	}
	r := image.Rect(0, 0, width, height)

	switch f {
	case format.RGB565:
		return &RGB565{Pix: planes[0], Stride: 2 * width, Rect: r}, nil
	case format.YUV422:
		return &image.YCbCr{
			Y:              planes[0],
			Cb:             planes[1],
			Cr:             planes[2],
			YStride:        width,
			CStride:        width / 2,
			SubsampleRatio: image.YCbCrSubsampleRatio422,
			Rect:           r,
		}, nil
	}

	// YUYV: Y0 U Y1 V per pixel pair
	img := image.NewYCbCr(r, image.YCbCrSubsampleRatio422)
	src := planes[0]
	for y := 0; y < height; y++ {
		row := src[y*width*2:]
		for x := 0; x < width/2; x++ {
			q := row[x*4:]
			img.Y[y*img.YStride+2*x] = q[0]
			img.Cb[y*img.CStride+x] = q[1]
			img.Y[y*img.YStride+2*x+1] = q[2]
			img.Cr[y*img.CStride+x] = q[3]
		}
	}
	return img, nil
}

// ToRGB565 converts any image to big-endian RGB565 of the same size.
func ToRGB565(src image.Image) *RGB565 {
	b := src.Bounds()
	dst := NewRGB565(image.Rect(0, 0, b.Dx(), b.Dy()))
	draw.Draw(dst, dst.Rect, src, b.Min, draw.Src)
	return dst
}

// Scale resizes src to w x h. Smooth selects bilinear filtering over nearest
// neighbour.
func Scale(src image.Image, w, h int, smooth bool) *image.RGBA {
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	var s draw.Scaler = draw.NearestNeighbor
	if smooth {
		s = draw.BiLinear
	}
	s.Scale(dst, dst.Rect, src, src.Bounds(), draw.Src, nil)
	return dst
}
