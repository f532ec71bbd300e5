//go:build js && wasm
// +build js,wasm

package main

import (
	"bytes"
	"encoding/hex"
	"errors"
	"io"
	"syscall/js"
	"time"

	"picocam/format"
	"picocam/imageconv"
	"picocam/protocol"
)

// decodeTimeout bounds each frame wait. The whole capture is already in
// memory, so a timeout means the stream ended mid-frame.
const decodeTimeout = time.Second

func main() {
	// Export functions to JavaScript
	js.Global().Set("picocamWasm", js.ValueOf(map[string]interface{}{
		"encodeVLQ":     js.FuncOf(encodeVLQWrapper),
		"decodeVLQ":     js.FuncOf(decodeVLQWrapper),
		"crc16":         js.FuncOf(crc16Wrapper),
		"decodeMessage": js.FuncOf(decodeMessageWrapper),
		"decodeFrames":  js.FuncOf(decodeFramesWrapper),
		"version":       protocol.Version,
	}))

	// Keep the program running
	select {}
}

// encodeVLQWrapper encodes a signed integer to VLQ format
// Args: value (int32)
// Returns: hex string
func encodeVLQWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf("error: missing value argument")
	}

	output := &protocol.ScratchOutput{}
	protocol.EncodeVLQInt(output, int32(args[0].Int()))
	return js.ValueOf(hex.EncodeToString(output.Result()))
}

// decodeVLQWrapper decodes a VLQ from hex string
// Args: hexString (string)
// Returns: {value: number, consumed: number, error: string}
func decodeVLQWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeResult(0, 0, "missing hex string argument")
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeResult(0, 0, "invalid hex string: "+err.Error())
	}

	rest := data
	value, err := protocol.DecodeVLQInt(&rest)
	if err != nil {
		return makeResult(0, 0, err.Error())
	}
	return makeResult(int(value), len(data)-len(rest), "")
}

// crc16Wrapper calculates CRC16 checksum
// Args: hexString (string)
// Returns: number (uint16)
func crc16Wrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return js.ValueOf(0)
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return js.ValueOf(0)
	}
	return js.ValueOf(int(protocol.CRC16(data)))
}

// decodeMessageWrapper decodes one framed message
// Args: hexString (string)
// Returns: {length, sequence, msgID, params: [{value, bytes}], crc, crcValid, error}
func decodeMessageWrapper(this js.Value, args []js.Value) interface{} {
	if len(args) < 1 {
		return makeDecodeResult(0, 0, 0, nil, 0, false, "missing hex string argument")
	}

	data, err := hex.DecodeString(args[0].String())
	if err != nil {
		return makeDecodeResult(0, 0, 0, nil, 0, false, "invalid hex string: "+err.Error())
	}
	if len(data) < protocol.MessageLengthMin {
		return makeDecodeResult(0, 0, 0, nil, 0, false, "message too short")
	}

	msgLen := int(data[protocol.MessagePositionLen])
	seq := int(data[protocol.MessagePositionSeq])
	if msgLen < protocol.MessageLengthMin || msgLen > len(data) {
		return makeDecodeResult(msgLen, seq, 0, nil, 0, false, "bad length byte")
	}
	if data[msgLen-protocol.MessageTrailerSync] != protocol.MessageValueSync {
		return makeDecodeResult(msgLen, seq, 0, nil, 0, false, "missing sync byte")
	}

	crcPos := msgLen - protocol.MessageTrailerCRC
	frameCRC := uint16(data[crcPos])<<8 | uint16(data[crcPos+1])
	crcValid := frameCRC == protocol.CRC16(data[:crcPos])

	payload := data[protocol.MessageHeaderSize:crcPos]
	if len(payload) == 0 {
		return makeDecodeResult(msgLen, seq, 0, nil, int(frameCRC), crcValid, "")
	}

	msgID, err := protocol.DecodeVLQUint(&payload)
	if err != nil {
		return makeDecodeResult(msgLen, seq, 0, nil, int(frameCRC), crcValid, "failed to decode message ID: "+err.Error())
	}

	// Frame data carries a byte block after the offset; stop at the first
	// value that does not decode.
	var params []map[string]interface{}
	for len(payload) > 0 {
		before := len(payload)
		val, err := protocol.DecodeVLQInt(&payload)
		if err != nil {
			break
		}
		params = append(params, map[string]interface{}{
			"value": int(val),
			"bytes": before - len(payload),
		})
	}
	return makeDecodeResult(msgLen, seq, int(msgID), params, int(frameCRC), crcValid, "")
}

// decodeFramesWrapper reassembles every frame in a captured byte stream and
// converts each to RGBA.
// Args: data (Uint8Array)
// Returns: Promise of [{id, format, width, height, rgba: Uint8Array}]
func decodeFramesWrapper(this js.Value, args []js.Value) interface{} {
	promise := js.Global().Get("Promise")
	return promise.New(js.FuncOf(func(_ js.Value, p []js.Value) interface{} {
		resolve, reject := p[0], p[1]
		if len(args) < 1 {
			reject.Invoke("missing data argument")
			return nil
		}
		data := make([]byte, args[0].Get("length").Int())
		js.CopyBytesToGo(data, args[0])

		// Frame reassembly blocks on the reader goroutine, which must not
		// happen on the event loop.
		go func() {
			frames, err := decodeFrames(data)
			if err != nil {
				reject.Invoke(err.Error())
				return
			}
			resolve.Invoke(js.ValueOf(frames))
		}()
		return nil
	}))
}

func decodeFrames(data []byte) ([]interface{}, error) {
	r := protocol.NewFrameReader(bytes.NewReader(data), 4)
	defer r.Close()

	var out []interface{}
	for {
		f, err := r.ReadFrame(decodeTimeout)
		if errors.Is(err, io.EOF) || errors.Is(err, protocol.ErrTimeout) {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		img, err := imageconv.FromPlanes(format.Code(f.Format), int(f.Width), int(f.Height), f.Planes)
		if err != nil {
			// Skip frames in formats the viewer cannot show.
			continue
		}
		rgba := imageconv.Scale(img, int(f.Width), int(f.Height), false)
		pix := js.Global().Get("Uint8Array").New(len(rgba.Pix))
		js.CopyBytesToJS(pix, rgba.Pix)

		out = append(out, map[string]interface{}{
			"id":     int(f.ID),
			"format": format.Code(f.Format).String(),
			"width":  int(f.Width),
			"height": int(f.Height),
			"rgba":   pix,
		})
	}
}

// Helper to create result objects
func makeResult(value int, consumed int, errMsg string) js.Value {
	result := make(map[string]interface{})
	result["value"] = value
	result["consumed"] = consumed
	if errMsg != "" {
		result["error"] = errMsg
	}
	return js.ValueOf(result)
}

func makeDecodeResult(length int, seq int, msgID int, params []map[string]interface{}, crc int, crcValid bool, errMsg string) js.Value {
	result := make(map[string]interface{})
	result["length"] = length
	result["sequence"] = seq
	result["msgID"] = msgID
	result["crc"] = crc
	result["crcValid"] = crcValid

	// Convert params to JS array
	jsParams := make([]interface{}, len(params))
	for i, p := range params {
		jsParams[i] = p
	}
	result["params"] = jsParams

	if errMsg != "" {
		result["error"] = errMsg
	}
	return js.ValueOf(result)
}
