package camera

import (
	"unsafe"

	"picocam/format"
)

// Plane is one independently addressed component of a frame.
type Plane struct {
	Stride uint32
	Size   uint32
	Data   []byte
}

// Buffer is the backing storage of one frame. The camera only borrows a
// buffer for the duration of a capture and never frees it.
type Buffer struct {
	Format format.Code
	Width  uint16
	Height uint16
	Planes [MaxPlanes]Plane

	alloc Allocator // nil when the storage was wrapped
}

// NumPlanes returns the number of planes in use.
func (b *Buffer) NumPlanes() uint8 {
	return b.Format.Planes()
}

// PlaneData returns the populated planes as a slice.
func (b *Buffer) PlaneData() [][]byte {
	n := b.NumPlanes()
	planes := make([][]byte, n)
	for p := uint8(0); p < n; p++ {
		planes[p] = b.Planes[p].Data[:b.Planes[p].Size]
	}
	return planes
}

// Allocator provides plane storage.
type Allocator interface {
	// Alloc returns size bytes of word aligned memory, or nil.
	Alloc(size uint32) []byte
	// Free returns memory obtained from Alloc.
	Free(b []byte)
}

type heapAllocator struct{}

func (heapAllocator) Alloc(size uint32) []byte {
	// Backed by words so DMA writes stay aligned.
	words := make([]uint32, (size+3)/4)
	return wordsAsBytes(words)[:size]
}

func (heapAllocator) Free([]byte) {}

// Heap allocates planes from the garbage collected heap.
var Heap Allocator = heapAllocator{}

// AllocBuffer allocates a buffer for a width x height frame in format f
// from the heap.
func AllocBuffer(f format.Code, width, height uint16) (*Buffer, error) {
	return AllocBufferFrom(Heap, f, width, height)
}

// AllocBufferFrom allocates every plane from a. If any plane cannot be
// allocated the planes already obtained are returned to a and ErrAllocation
// is reported; no partial buffer is ever returned.
func AllocBufferFrom(a Allocator, f format.Code, width, height uint16) (*Buffer, error) {
	n := f.Planes()
	if n == 0 {
		return nil, ErrUnsupportedFormat
	}

	buf := &Buffer{Format: f, Width: width, Height: height, alloc: a}
	for p := uint8(0); p < n; p++ {
		size := f.PlaneSize(p, width, height)
		data := a.Alloc(size)
		if data == nil {
			buf.release()
			return nil, ErrAllocation
		}
		buf.Planes[p] = Plane{
			Stride: f.Stride(p, width),
			Size:   size,
			Data:   data,
		}
	}
	return buf, nil
}

// WrapBuffer builds a buffer over caller-owned storage, one slice per plane.
func WrapBuffer(f format.Code, width, height uint16, planes ...[]byte) (*Buffer, error) {
	n := f.Planes()
	if n == 0 {
		return nil, ErrUnsupportedFormat
	}
	if len(planes) != int(n) {
		return nil, ErrBufferTooSmall
	}

	buf := &Buffer{Format: f, Width: width, Height: height}
	for p := uint8(0); p < n; p++ {
		size := f.PlaneSize(p, width, height)
		if uint32(len(planes[p])) < size {
			return nil, ErrBufferTooSmall
		}
		buf.Planes[p] = Plane{
			Stride: f.Stride(p, width),
			Size:   size,
			Data:   planes[p],
		}
	}
	return buf, nil
}

// FreeBuffer releases the buffer's planes. Wrapped storage is only dropped.
// The buffer must not be pending in a capture.
func FreeBuffer(buf *Buffer) {
	if buf == nil {
		return
	}
	buf.release()
}

// release frees the allocated planes in reverse order.
func (b *Buffer) release() {
	for p := len(b.Planes) - 1; p >= 0; p-- {
		if b.Planes[p].Data != nil && b.alloc != nil {
			b.alloc.Free(b.Planes[p].Data)
		}
		b.Planes[p] = Plane{}
	}
}

// fits reports whether every plane can hold a frame of the buffer's format.
func (b *Buffer) fits() bool {
	n := b.Format.Planes()
	if n == 0 {
		return false
	}
	for p := uint8(0); p < n; p++ {
		if uint32(len(b.Planes[p].Data)) < b.Format.PlaneSize(p, b.Width, b.Height) {
			return false
		}
	}
	return true
}

// Arena is a bump allocator over caller-owned storage, typically a static
// array, for builds that must not touch the heap. Frees must happen in
// reverse allocation order, which FreeBuffer and the allocation failure path
// both do.
type Arena struct {
	mem    []byte
	off    int
	marks  [arenaDepth]arenaMark
	nmarks int
}

// arenaDepth bounds the number of live allocations in one arena.
const arenaDepth = 8

type arenaMark struct {
	prev, start int
}

// NewArena returns an arena over mem. mem should be word aligned.
func NewArena(mem []byte) *Arena {
	return &Arena{mem: mem}
}

// NewArenaWords returns an arena over word storage, which is always aligned.
func NewArenaWords(mem []uint32) *Arena {
	return NewArena(wordsAsBytes(mem))
}

// Alloc returns size bytes from the top of the arena. A zero size takes no
// space and no allocation slot.
func (a *Arena) Alloc(size uint32) []byte {
	if size == 0 {
		return []byte{}
	}
	start := (a.off + 3) &^ 3
	end := start + int(size)
	if end > len(a.mem) || a.nmarks == arenaDepth {
		return nil
	}
	a.marks[a.nmarks] = arenaMark{prev: a.off, start: start}
	a.nmarks++
	a.off = end
	return a.mem[start:end:end]
}

func (a *Arena) Free(b []byte) {
	if a.nmarks == 0 || cap(b) == 0 {
		return
	}
	top := a.marks[a.nmarks-1]
	if &b[:1][0] != &a.mem[top.start] {
		return
	}
	a.off = top.prev
	a.nmarks--
}

// Used returns the number of bytes currently handed out, including padding.
func (a *Arena) Used() int {
	return a.off
}

func wordsAsBytes(words []uint32) []byte {
	if len(words) == 0 {
		return []byte{}
	}
	return unsafe.Slice((*byte)(unsafe.Pointer(&words[0])), len(words)*4)
}
