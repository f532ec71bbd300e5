package protocol

import (
	"errors"
	"io"
)

var ErrMessageTooLong = errors.New("protocol: message exceeds MessageLengthMax")

// Link sends messages over a byte stream. It is the device side of the
// protocol and does not allocate once created.
type Link struct {
	w       io.Writer
	seq     uint8
	scratch ScratchOutput
}

// NewLink returns a link writing to w.
func NewLink(w io.Writer) *Link {
	return &Link{w: w, seq: MessageDest}
}

// EncodeFrame builds one message from the payload written by frameData and
// writes it out.
func (l *Link) EncodeFrame(frameData func(output OutputBuffer)) error {
	out := &l.scratch
	out.Reset()

	out.Output([]byte{0, l.seq})
	frameData(out)
	msgLen := out.CurPosition() + MessageTrailerSize
	if msgLen > MessageLengthMax || out.Full() {
		return ErrMessageTooLong
	}
	out.Update(MessagePositionLen, uint8(msgLen))

	crc := CRC16(out.Result())
	out.Output([]byte{uint8(crc >> 8), uint8(crc), MessageValueSync})

	l.seq = nextSeq(l.seq)
	_, err := l.w.Write(out.Result())
	return err
}

// SendCommand sends message cmdID with the arguments written by args.
func (l *Link) SendCommand(cmdID uint16, args func(output OutputBuffer)) error {
	return l.EncodeFrame(func(output OutputBuffer) {
		EncodeVLQUint(output, uint32(cmdID))
		if args != nil {
			args(output)
		}
	})
}

// SendFrame streams one captured frame: a begin message describing the
// planes, the plane bytes in FrameDataChunk slices, and an end message with
// the byte total. It stops at the first write error.
func (l *Link) SendFrame(id uint32, format uint32, width, height uint16, planes [][]byte) error {
	if len(planes) > 255 {
		return ErrMessageTooLong
	}
	err := l.SendCommand(MsgFrameBegin, func(out OutputBuffer) {
		EncodeVLQUint(out, id)
		EncodeVLQUint(out, format)
		EncodeVLQUint(out, uint32(width))
		EncodeVLQUint(out, uint32(height))
		EncodeVLQUint(out, uint32(len(planes)))
		for _, p := range planes {
			EncodeVLQUint(out, uint32(len(p)))
		}
	})
	if err != nil {
		return err
	}

	var total uint32
	for plane, data := range planes {
		for off := 0; off < len(data); off += FrameDataChunk {
			end := off + FrameDataChunk
			if end > len(data) {
				end = len(data)
			}
			chunk := data[off:end]
			err := l.SendCommand(MsgFrameData, func(out OutputBuffer) {
				EncodeVLQUint(out, id)
				EncodeVLQUint(out, uint32(plane))
				EncodeVLQUint(out, uint32(off))
				EncodeVLQBytes(out, chunk)
			})
			if err != nil {
				return err
			}
			total += uint32(len(chunk))
		}
	}

	return l.SendCommand(MsgFrameEnd, func(out OutputBuffer) {
		EncodeVLQUint(out, id)
		EncodeVLQUint(out, total)
	})
}

// Reset restarts the sequence, for example after the host reconnects.
func (l *Link) Reset() {
	l.seq = MessageDest
}
