package camera

import "sync/atomic"

// FrameCallback is called when a capture completes.
//
// It runs in interrupt context: it must not block, allocate or start another
// capture. Hand the buffer to the foreground (a flag, a non-blocking channel
// send) and return.
type FrameCallback func(buf *Buffer, userData any)

// request is one in-flight capture. It is published to the interrupt handler
// as a single pointer so the handler never sees a torn request.
type request struct {
	buf      *Buffer
	callback FrameCallback
	userData any
}

// pendingSlot holds at most one in-flight request. The foreground occupies
// it; the frame interrupt is the only path that clears it, apart from Term.
type pendingSlot struct {
	p atomic.Pointer[request]
}

func (s *pendingSlot) occupy(r *request) bool {
	return s.p.CompareAndSwap(nil, r)
}

func (s *pendingSlot) load() *request {
	return s.p.Load()
}

func (s *pendingSlot) busy() bool {
	return s.p.Load() != nil
}

// release clears the slot if it still holds r.
func (s *pendingSlot) release(r *request) {
	s.p.CompareAndSwap(r, nil)
}

func (s *pendingSlot) reset() {
	s.p.Store(nil)
}
