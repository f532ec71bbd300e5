// Package format describes the pixel formats the capture pipeline produces
// and derives their plane layout.
//
// A Code is a four-character code packed little-endian into 32 bits, the
// same convention V4L2 and DRM use. Every other package asks this one for
// plane counts, strides and sizes instead of keeping its own table.
package format

// Code identifies a pixel format.
type Code uint32

// MaxPlanes is the largest plane count of any supported format.
const MaxPlanes = 3

// FourCC packs four characters into a Code.
func FourCC(a, b, c, d byte) Code {
	return Code(a) | Code(b)<<8 | Code(c)<<16 | Code(d)<<24
}

var (
	// RGB565 is packed 16-bit RGB, one plane, big-endian as the sensor emits it.
	RGB565 = FourCC('R', 'G', '1', '6')
	// YUYV is packed YUV 4:2:2. Same layout as RGB565.
	YUYV = FourCC('Y', 'U', 'Y', 'V')
	// YUV422 is planar YUV 4:2:2: a full-width Y plane and two half-width
	// chroma planes.
	YUV422 = FourCC('Y', 'U', '1', '6')
)

// Planes returns the number of planes, or 0 for an unknown format.
func (c Code) Planes() uint8 {
	switch c {
	case RGB565, YUYV:
		return 1
	case YUV422:
		return 3
	}
	return 0
}

// BytesPerPixel returns the bytes each pixel occupies in plane, before any
// horizontal subsampling.
func (c Code) BytesPerPixel(plane uint8) uint8 {
	if plane >= c.Planes() {
		return 0
	}
	switch c {
	case RGB565, YUYV:
		return 2
	case YUV422:
		return 1
	}
	return 0
}

// HorizontalSubsample returns the horizontal subsampling factor of plane.
func (c Code) HorizontalSubsample(plane uint8) uint8 {
	if plane >= c.Planes() {
		return 0
	}
	if c == YUV422 && plane > 0 {
		return 2
	}
	return 1
}

// Stride returns the length in bytes of one row of plane.
func (c Code) Stride(plane uint8, width uint16) uint32 {
	hsub := c.HorizontalSubsample(plane)
	if hsub == 0 {
		return 0
	}
	return uint32(c.BytesPerPixel(plane)) * uint32(width) / uint32(hsub)
}

// PlaneSize returns the size in bytes of plane for a width x height frame.
func (c Code) PlaneSize(plane uint8, width, height uint16) uint32 {
	return c.Stride(plane, width) * uint32(height)
}

// FrameSize returns the summed size of all planes.
func (c Code) FrameSize(width, height uint16) uint32 {
	var total uint32
	for p := uint8(0); p < c.Planes(); p++ {
		total += c.PlaneSize(p, width, height)
	}
	return total
}

// Valid reports whether c is a supported format.
func (c Code) Valid() bool {
	return c.Planes() != 0
}

// String returns the four characters of the code.
func (c Code) String() string {
	b := []byte{byte(c), byte(c >> 8), byte(c >> 16), byte(c >> 24)}
	for i, ch := range b {
		if ch < 0x20 || ch > 0x7e {
			b[i] = '.'
		}
	}
	return string(b)
}

// FromString parses a four-character code. It returns 0 unless s is exactly
// four bytes long.
func FromString(s string) Code {
	if len(s) != 4 {
		return 0
	}
	return FourCC(s[0], s[1], s[2], s[3])
}
