package camera

import "errors"

var (
	ErrProbe                 = errors.New("camera: sensor not detected")
	ErrBringup               = errors.New("camera: sensor bring-up failed")
	ErrUnsupportedGeometry   = errors.New("camera: unsupported frame size")
	ErrUnsupportedFormat     = errors.New("camera: unsupported pixel format")
	ErrReconfigureNotAllowed = errors.New("camera: buffer format differs from configuration")
	ErrBusy                  = errors.New("camera: capture already pending")
	ErrAllocation            = errors.New("camera: buffer allocation failed")
	ErrBufferTooSmall        = errors.New("camera: buffer plane smaller than frame")
	ErrInvalidPlatform       = errors.New("camera: invalid platform configuration")
	ErrDMAUnavailable        = errors.New("camera: DMA channel unavailable")
	ErrNotInitialized        = errors.New("camera: not initialized")
	ErrAlreadyInitialized    = errors.New("camera: already initialized")
)
