package protocol

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"
)

var (
	ErrTimeout = errors.New("protocol: timed out waiting for a frame")
	ErrClosed  = errors.New("protocol: reader closed")
)

// maxFrameBytes bounds the plane sizes a frame_begin may announce.
const maxFrameBytes = 640 * 480 * 2

// Frame is one reassembled capture.
type Frame struct {
	ID     uint32
	Format uint32
	Width  uint16
	Height uint16
	Planes [][]byte
}

// Stats counts what the reader saw.
type Stats struct {
	Messages uint32
	Frames   uint32
	Dropped  uint32 // frames discarded because of a gap or bad data
	BadCRC   uint32
	Resyncs  uint32
}

// FrameReader is the host side of the protocol. A background goroutine reads
// the port, checks framing, CRC and sequence, and reassembles frames. A frame
// with any lost message is dropped whole.
type FrameReader struct {
	port  io.Reader
	input *FifoBuffer

	synchronized bool
	expectSeq    int // -1 until the first message

	cur      *Frame
	curSizes []uint32
	curGot   uint32
	curBad   bool

	frames chan *Frame

	mu    sync.Mutex
	stats Stats
	err   error

	stopChan chan struct{}
	doneChan chan struct{}
}

// NewFrameReader starts reading port. Frames not collected with ReadFrame
// are discarded oldest first once the queue of queueLen is full.
func NewFrameReader(port io.Reader, queueLen int) *FrameReader {
	if queueLen < 1 {
		queueLen = 1
	}
	r := &FrameReader{
		port:         port,
		input:        NewFifoBuffer(4096),
		synchronized: true,
		expectSeq:    -1,
		frames:       make(chan *Frame, queueLen),
		stopChan:     make(chan struct{}),
		doneChan:     make(chan struct{}),
	}
	go r.readLoop()
	return r
}

// ReadFrame waits up to timeout for the next complete frame. Once the port
// is exhausted and no frames are queued it returns the read error, io.EOF
// for a clean end.
func (r *FrameReader) ReadFrame(timeout time.Duration) (*Frame, error) {
	select {
	case f := <-r.frames:
		return f, nil
	default:
	}

	timer := time.NewTimer(timeout)
	defer timer.Stop()
	select {
	case f := <-r.frames:
		return f, nil
	case <-r.doneChan:
		select {
		case f := <-r.frames:
			return f, nil
		default:
		}
		r.mu.Lock()
		defer r.mu.Unlock()
		return nil, r.err
	case <-timer.C:
		return nil, ErrTimeout
	}
}

// Stats returns a snapshot of the counters.
func (r *FrameReader) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.stats
}

// Close stops the reader. It closes the port when it is an io.Closer, which
// also unblocks a pending read.
func (r *FrameReader) Close() error {
	select {
	case <-r.stopChan:
		return nil
	default:
	}
	close(r.stopChan)
	var err error
	if c, ok := r.port.(io.Closer); ok {
		err = c.Close()
	}
	<-r.doneChan
	return err
}

func (r *FrameReader) readLoop() {
	defer close(r.doneChan)

	buf := make([]byte, 512)
	for {
		select {
		case <-r.stopChan:
			r.finish(ErrClosed)
			return
		default:
		}

		n, err := r.port.Read(buf)
		if n > 0 {
			r.feed(buf[:n])
		}
		if err != nil {
			r.finish(err)
			return
		}
	}
}

func (r *FrameReader) finish(err error) {
	r.mu.Lock()
	r.err = err
	r.mu.Unlock()
}

// feed appends data to the ring, parsing as it goes so a burst larger than
// the ring is never lost.
func (r *FrameReader) feed(data []byte) {
	for len(data) > 0 {
		n := r.input.Write(data)
		data = data[n:]
		r.processMessages()
		if n == 0 && r.input.Free() == 0 {
			// A full ring that parses to nothing is garbage.
			r.input.Reset()
			r.synchronized = false
		}
	}
}

func (r *FrameReader) processMessages() {
	data := r.input.Data()

	for len(data) > 0 {
		if !r.synchronized {
			i := 0
			for i < len(data) && data[i] != MessageValueSync {
				i++
			}
			if i == len(data) {
				data = nil
				break
			}
			data = data[i+1:]
			r.synchronized = true
			r.count(func(s *Stats) { s.Resyncs++ })
			continue
		}

		if data[0] == MessageValueSync {
			data = data[1:]
			continue
		}
		if len(data) < MessageLengthMin {
			break
		}
		msgLen := int(data[MessagePositionLen])
		seq := data[MessagePositionSeq]
		if msgLen < MessageLengthMin || msgLen > MessageLengthMax || seq&^MessageSeqMask != MessageDest {
			r.synchronized = false
			continue
		}
		if len(data) < msgLen {
			break
		}
		if data[msgLen-MessageTrailerSync] != MessageValueSync {
			r.synchronized = false
			continue
		}
		crc := uint16(data[msgLen-MessageTrailerCRC])<<8 | uint16(data[msgLen-MessageTrailerCRC+1])
		if crc != CRC16(data[:msgLen-MessageTrailerSize]) {
			r.count(func(s *Stats) { s.BadCRC++ })
			r.synchronized = false
			continue
		}

		payload := data[MessageHeaderSize : msgLen-MessageTrailerSize]
		data = data[msgLen:]
		r.handle(seq, payload)
	}

	r.input.Pop(r.input.Available() - len(data))
}

func (r *FrameReader) count(f func(*Stats)) {
	r.mu.Lock()
	f(&r.stats)
	r.mu.Unlock()
}

// handle dispatches one verified message. payload aliases the ring and must
// be copied before the next processMessages.
func (r *FrameReader) handle(seq uint8, payload []byte) {
	r.count(func(s *Stats) { s.Messages++ })

	if r.expectSeq >= 0 && seq != uint8(r.expectSeq) {
		r.curBad = true
	}
	r.expectSeq = int(nextSeq(seq))

	cmd, err := DecodeVLQUint(&payload)
	if err != nil {
		r.curBad = true
		return
	}
	switch cmd {
	case MsgFrameBegin:
		r.begin(payload)
	case MsgFrameData:
		if err := r.data(payload); err != nil {
			r.curBad = true
		}
	case MsgFrameEnd:
		r.end(payload)
	}
}

func (r *FrameReader) begin(payload []byte) {
	if r.cur != nil {
		r.drop()
	}
	r.curBad = false
	r.curGot = 0

	var v [5]uint32
	for i := range v {
		x, err := DecodeVLQUint(&payload)
		if err != nil {
			r.curBad = true
			return
		}
		v[i] = x
	}
	f := &Frame{ID: v[0], Format: v[1], Width: uint16(v[2]), Height: uint16(v[3])}
	nplanes := v[4]
	if nplanes == 0 || nplanes > 3 {
		r.curBad = true
		return
	}
	r.curSizes = r.curSizes[:0]
	var total uint32
	for i := uint32(0); i < nplanes; i++ {
		size, err := DecodeVLQUint(&payload)
		total += size
		if err != nil || total > maxFrameBytes {
			r.curBad = true
			return
		}
		r.curSizes = append(r.curSizes, size)
		f.Planes = append(f.Planes, make([]byte, size))
	}
	r.cur = f
}

func (r *FrameReader) data(payload []byte) error {
	if r.cur == nil {
		return errors.New("data outside a frame")
	}
	var v [3]uint32
	for i := range v {
		x, err := DecodeVLQUint(&payload)
		if err != nil {
			return err
		}
		v[i] = x
	}
	id, plane, off := v[0], v[1], v[2]
	chunk, err := DecodeVLQBytes(&payload)
	if err != nil {
		return err
	}
	if id != r.cur.ID || plane >= uint32(len(r.cur.Planes)) {
		return fmt.Errorf("data for frame %d plane %d", id, plane)
	}
	dst := r.cur.Planes[plane]
	if uint64(off)+uint64(len(chunk)) > uint64(len(dst)) {
		return fmt.Errorf("data past end of plane %d", plane)
	}
	copy(dst[off:], chunk)
	r.curGot += uint32(len(chunk))
	return nil
}

func (r *FrameReader) end(payload []byte) {
	if r.cur == nil {
		r.count(func(s *Stats) { s.Dropped++ })
		return
	}
	id, err1 := DecodeVLQUint(&payload)
	total, err2 := DecodeVLQUint(&payload)

	var want uint32
	for _, s := range r.curSizes {
		want += s
	}
	if err1 != nil || err2 != nil || r.curBad || id != r.cur.ID || total != want || r.curGot != want {
		r.drop()
		return
	}

	f := r.cur
	r.cur = nil
	r.count(func(s *Stats) { s.Frames++ })
	for {
		select {
		case r.frames <- f:
			return
		default:
		}
		select {
		case <-r.frames:
		default:
		}
	}
}

func (r *FrameReader) drop() {
	r.cur = nil
	r.curBad = false
	r.count(func(s *Stats) { s.Dropped++ })
}
