package protocol

// OutputBuffer collects an outgoing message.
type OutputBuffer interface {
	Output(data []byte)

	// CurPosition returns the write position, for DataSince and Update.
	CurPosition() int

	// Update overwrites one byte already written.
	Update(pos int, val byte)

	DataSince(pos int) []byte
}

// ScratchOutput is a fixed OutputBuffer that never allocates. Writes past
// its end are dropped.
type ScratchOutput struct {
	buf [ScratchSize]byte
	pos int
}

func (s *ScratchOutput) Output(data []byte) {
	s.pos += copy(s.buf[s.pos:], data)
}

func (s *ScratchOutput) CurPosition() int {
	return s.pos
}

func (s *ScratchOutput) Update(pos int, val byte) {
	if pos < s.pos {
		s.buf[pos] = val
	}
}

func (s *ScratchOutput) DataSince(pos int) []byte {
	if pos > s.pos {
		return nil
	}
	return s.buf[pos:s.pos]
}

// Result returns everything written since the last Reset.
func (s *ScratchOutput) Result() []byte {
	return s.buf[:s.pos]
}

func (s *ScratchOutput) Reset() {
	s.pos = 0
}

// Full reports whether a write was truncated.
func (s *ScratchOutput) Full() bool {
	return s.pos == len(s.buf)
}

// FifoBuffer is a byte ring for reassembling a serial stream. One slot is
// kept free to tell full from empty.
type FifoBuffer struct {
	buf         []byte
	read, write int
}

// NewFifoBuffer returns a ring holding up to capacity-1 bytes.
func NewFifoBuffer(capacity int) *FifoBuffer {
	return &FifoBuffer{buf: make([]byte, capacity)}
}

// Write appends as much of data as fits and returns the count.
func (f *FifoBuffer) Write(data []byte) int {
	n := 0
	for _, b := range data {
		next := (f.write + 1) % len(f.buf)
		if next == f.read {
			break
		}
		f.buf[f.write] = b
		f.write = next
		n++
	}
	return n
}

// Available returns the number of buffered bytes.
func (f *FifoBuffer) Available() int {
	if f.write >= f.read {
		return f.write - f.read
	}
	return len(f.buf) - f.read + f.write
}

// Free returns the room left.
func (f *FifoBuffer) Free() int {
	return len(f.buf) - 1 - f.Available()
}

// Data returns the buffered bytes as one slice. When the ring has wrapped
// the bytes are copied.
func (f *FifoBuffer) Data() []byte {
	if f.read <= f.write {
		return f.buf[f.read:f.write]
	}
	out := make([]byte, 0, f.Available())
	out = append(out, f.buf[f.read:]...)
	return append(out, f.buf[:f.write]...)
}

// Pop discards n bytes from the front.
func (f *FifoBuffer) Pop(n int) {
	if a := f.Available(); n > a {
		n = a
	}
	f.read = (f.read + n) % len(f.buf)
}

func (f *FifoBuffer) Reset() {
	f.read, f.write = 0, 0
}
