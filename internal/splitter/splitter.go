// Package splitter reassembles TOPIN tracker frames out of a raw TCP byte
// stream. TCP read boundaries are not respected by the device: one frame
// may span several reads, and several frames may arrive in one read, so the
// caller must buffer partial data and feed it back in on the next call.
package splitter

import (
	"fmt"

	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// RawFrame is one unparsed frame: the opcode byte and the raw payload bytes
// that followed it, with start/length/stop markers already stripped. Raw
// holds the complete on-wire bytes (markers included), for verbatim logging.
type RawFrame struct {
	Opcode  protocol.Opcode
	Payload []byte
	Raw     []byte
}

// Split scans data for complete TOPIN frames (`0x78 0x78 | length | opcode |
// payload | 0x0D 0x0A`). It returns every complete frame found, plus any
// trailing bytes that do not yet form a complete frame (to be prepended to
// the next read). Bytes preceding the first valid start marker are
// discarded. An error is returned only when a declared frame boundary's
// trailing bytes are present but are not the expected stop marker, or when
// the declared length is too small to hold an opcode — a malformed frame
// the caller should treat as fatal for the connection.
func Split(data []byte) (frames []RawFrame, residue []byte, err error) {
	offset := 0

	for {
		start := findStart(data, offset)
		if start == -1 {
			return frames, nil, nil
		}
		offset = start

		// Need start(2) + length(1) to know how much more to wait for.
		if len(data)-offset < 3 {
			return frames, data[offset:], nil
		}

		length := int(data[offset+2])
		total := 2 + 1 + length + 2 // start + length-byte + (opcode+payload) + stop

		if len(data)-offset < total {
			return frames, data[offset:], nil
		}

		stopOffset := offset + total - 2
		if data[stopOffset] != protocol.StopByte1 || data[stopOffset+1] != protocol.StopByte2 {
			return frames, nil, fmt.Errorf("splitter: malformed trailer at offset %d: expected %02X%02X, got %02X%02X",
				stopOffset, protocol.StopByte1, protocol.StopByte2, data[stopOffset], data[stopOffset+1])
		}

		if length < 1 {
			return frames, nil, fmt.Errorf("splitter: declared length %d at offset %d too small to hold an opcode", length, offset)
		}

		body := data[offset+3 : stopOffset]
		frames = append(frames, RawFrame{
			Opcode:  protocol.Opcode(body[0]),
			Payload: append([]byte(nil), body[1:]...),
			Raw:     append([]byte(nil), data[offset:offset+total]...),
		})

		offset += total
	}
}

// findStart returns the offset of the next 0x78 0x78 marker at or after
// from, or -1 if none is present in data.
func findStart(data []byte, from int) int {
	for i := from; i+1 < len(data); i++ {
		if data[i] == protocol.StartByte1 && data[i+1] == protocol.StartByte2 {
			return i
		}
	}
	return -1
}

// HasCompleteFrame reports whether data contains at least one fully
// buffered frame, without allocating. Used by callers that want to avoid
// calling Split on every partial read.
func HasCompleteFrame(data []byte) bool {
	start := findStart(data, 0)
	if start == -1 || len(data)-start < 3 {
		return false
	}
	length := int(data[start+2])
	total := 2 + 1 + length + 2
	return len(data)-start >= total
}
