// Package encoder composes outbound reply frames for the TOPIN tracker
// protocol. Each opcode with a defined reply gets its own builder method;
// the length byte is always derived from protocol.ReplyPolicyFor so that
// framing quirks stay in one table instead of scattered across call sites.
package encoder

import (
	"time"

	"github.com/intelcon-group/topin-server/internal/codec"
	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// Encoder builds reply frames. It holds no state; a zero value is usable.
type Encoder struct{}

// New creates an Encoder.
func New() *Encoder {
	return &Encoder{}
}

// buildFrame assembles 0x78 0x78 | L | opcode | payload | 0x0D 0x0A, with L
// computed from op's reply policy.
func (e *Encoder) buildFrame(op protocol.Opcode, payload []byte) []byte {
	policy := protocol.ReplyPolicyFor(op)
	length := protocol.ComputeLength(policy, payload)

	frame := make([]byte, 0, 2+1+1+len(payload)+2)
	frame = append(frame, protocol.StartByte1, protocol.StartByte2)
	frame = append(frame, length)
	frame = append(frame, byte(op))
	frame = append(frame, payload...)
	frame = append(frame, protocol.StopByte1, protocol.StopByte2)
	return frame
}

// LoginResponse builds the login accept frame.
func (e *Encoder) LoginResponse() []byte {
	return e.buildFrame(protocol.OpLogin, []byte{0x01})
}

// TimeResponse builds the time-sync reply carrying the server's current UTC
// time, BCD digit-packed per field.
func (e *Encoder) TimeResponse(t time.Time) []byte {
	return e.buildFrame(protocol.OpTime, codec.EncodeBCDTimeReply(t))
}

// GPSAck builds the GPS positioning reply: an echo of the device's raw
// 6-byte timestamp, forced to length 0. Used for both 0x10 and 0x11.
func (e *Encoder) GPSAck(op protocol.Opcode, deviceTimestamp []byte) []byte {
	return e.buildFrame(op, append([]byte(nil), deviceTimestamp...))
}

// WiFiOfflineAck builds the stage-1 (and only) reply for opcode 0x17: an
// echo of the device's 6-byte timestamp, forced to length 0.
func (e *Encoder) WiFiOfflineAck(deviceTimestamp []byte) []byte {
	return e.buildFrame(protocol.OpWiFiOfflinePositioning, append([]byte(nil), deviceTimestamp...))
}

// WiFiPositioningStage1 builds the immediate stage-1 reply for opcode 0x69:
// an echo of the device's 6-byte timestamp, forced to length 0, sent before
// the geolocation lookup begins.
func (e *Encoder) WiFiPositioningStage1(deviceTimestamp []byte) []byte {
	return e.buildFrame(protocol.OpWiFiPositioning, append([]byte(nil), deviceTimestamp...))
}

// WiFiPositioningStage2 builds the deferred stage-2 reply for opcode 0x69:
// the resolved (or empty, on geolocation failure) lat/lng ASCII pair
// joined by a single ',' byte, forced to length 0.
func (e *Encoder) WiFiPositioningStage2(latLngASCII string) []byte {
	return e.buildFrame(protocol.OpWiFiPositioning, []byte(latLngASCII))
}

// SetupResponse builds the setup reply payload: upload interval, binary
// switch, alarm/DND slots, GPS-time window and phone-number fields,
// concatenated in the order §4.2 specifies.
func (e *Encoder) SetupResponse(payload SetupPayload) []byte {
	return e.buildFrame(protocol.OpSetup, payload.Encode())
}

// PositionUploadIntervalResponse echoes the 2-byte interval the device
// reported.
func (e *Encoder) PositionUploadIntervalResponse(interval []byte) []byte {
	return e.buildFrame(protocol.OpPositionUploadInterval, append([]byte(nil), interval...))
}

// GenericAck builds the no-content acknowledgement used by any opcode that
// calls for a reply without a defined payload.
func (e *Encoder) GenericAck(op protocol.Opcode) []byte {
	return e.buildFrame(op, nil)
}
