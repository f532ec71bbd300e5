// Package protocol streams captured frames over a byte link such as USB CDC.
//
// Every message is framed as
//
//	len | seq | payload | crc16 | 0x7E
//
// where len counts the whole message and seq carries MessageDest in the high
// nibble. A payload is a VLQ message ID followed by VLQ arguments.
package protocol

// Version is the link protocol version.
const Version = "0.1.0"

// Framing
const (
	MessageHeaderSize  = 2
	MessageTrailerSize = 3
	MessageLengthMin   = MessageHeaderSize + MessageTrailerSize
	MessageLengthMax   = 64
	MessagePositionLen = 0
	MessagePositionSeq = 1
	MessageTrailerCRC  = 3
	MessageTrailerSync = 1
	MessageValueSync   = 0x7E
	MessageDest        = 0x10
	MessageSeqMask     = 0x0F

	// ScratchSize bounds a message under construction.
	ScratchSize = 256
)

// Message IDs
const (
	// MsgFrameBegin: id, format, width, height, planes, then one size per plane
	MsgFrameBegin = 1
	// MsgFrameData: id, plane, offset, bytes
	MsgFrameData = 2
	// MsgFrameEnd: id, total bytes sent
	MsgFrameEnd = 3
)

// FrameDataChunk is the largest slice of a plane one MsgFrameData carries.
// With worst case VLQ arguments the message is exactly MessageLengthMax.
const FrameDataChunk = 48

// nextSeq returns the sequence byte that follows seq.
func nextSeq(seq uint8) uint8 {
	return (seq+1)&MessageSeqMask | MessageDest
}
