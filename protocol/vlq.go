package protocol

import "errors"

var ErrShortVLQ = errors.New("protocol: truncated VLQ")

// EncodeVLQInt appends v as a variable length quantity, most significant
// group first. Values in [-32, 96) take one byte.
func EncodeVLQInt(output OutputBuffer, v int32) {
	var out [5]byte
	n := 0
	if !(-(1<<26) <= v && v < (3<<26)) {
		out[n] = byte(v>>28)&0x7F | 0x80
		n++
	}
	if !(-(1<<19) <= v && v < (3<<19)) {
		out[n] = byte(v>>21)&0x7F | 0x80
		n++
	}
	if !(-(1<<12) <= v && v < (3<<12)) {
		out[n] = byte(v>>14)&0x7F | 0x80
		n++
	}
	if !(-(1<<5) <= v && v < (3<<5)) {
		out[n] = byte(v>>7)&0x7F | 0x80
		n++
	}
	out[n] = byte(v) & 0x7F
	output.Output(out[:n+1])
}

func EncodeVLQUint(output OutputBuffer, v uint32) {
	EncodeVLQInt(output, int32(v))
}

// DecodeVLQInt consumes one quantity from the front of data.
func DecodeVLQInt(data *[]byte) (int32, error) {
	d := *data
	if len(d) == 0 {
		return 0, ErrShortVLQ
	}
	c := uint32(d[0])
	d = d[1:]
	v := c & 0x7F
	if c&0x60 == 0x60 {
		v |= ^uint32(0x1F)
	}
	for c&0x80 != 0 {
		if len(d) == 0 {
			return 0, ErrShortVLQ
		}
		c = uint32(d[0])
		d = d[1:]
		v = v<<7 | c&0x7F
	}
	*data = d
	return int32(v), nil
}

func DecodeVLQUint(data *[]byte) (uint32, error) {
	v, err := DecodeVLQInt(data)
	return uint32(v), err
}

// EncodeVLQBytes appends a length prefixed byte string.
func EncodeVLQBytes(output OutputBuffer, b []byte) {
	EncodeVLQUint(output, uint32(len(b)))
	output.Output(b)
}

// DecodeVLQBytes consumes a length prefixed byte string. The result aliases
// data.
func DecodeVLQBytes(data *[]byte) ([]byte, error) {
	n, err := DecodeVLQUint(data)
	if err != nil {
		return nil, err
	}
	if uint32(len(*data)) < n {
		return nil, ErrShortVLQ
	}
	b := (*data)[:n]
	*data = (*data)[n:]
	return b, nil
}
