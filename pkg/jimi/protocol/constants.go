// Package protocol defines the TOPIN tracker wire format: the closed
// opcode registry, frame markers, and the per-opcode reply length policy.
package protocol

// Opcode identifies the payload type carried by a frame. The set is closed:
// an opcode outside this list is handled by the unknown-opcode path (logged,
// never replied to, connection stays open).
type Opcode byte

// Opcode registry, drawn from the device's closed set.
const (
	OpLogin                  Opcode = 0x01
	OpSupervision            Opcode = 0x05
	OpHeartbeat              Opcode = 0x08
	OpGPSPositioning         Opcode = 0x10
	OpGPSOfflinePositioning  Opcode = 0x11
	OpStatus                 Opcode = 0x13
	OpHibernation            Opcode = 0x14
	OpReset                  Opcode = 0x15
	OpWhitelistTotal         Opcode = 0x16
	OpWiFiOfflinePositioning Opcode = 0x17
	OpTime                   Opcode = 0x30
	OpStopAlarm              Opcode = 0x56
	OpSetup                  Opcode = 0x57
	OpSynchronousWhitelist   Opcode = 0x58
	OpRestorePassword        Opcode = 0x67
	OpWiFiPositioning        Opcode = 0x69
	OpManualPositioning      Opcode = 0x80
	OpBatteryCharge          Opcode = 0x81
	OpChargerConnected       Opcode = 0x82
	OpChargerDisconnected    Opcode = 0x83
	OpVibrationReceived      Opcode = 0x94
	OpPositionUploadInterval Opcode = 0x98
)

// names maps the closed opcode set to its symbolic name. Opcodes outside
// this map are unknown: logged, never closed on, never replied to.
var names = map[Opcode]string{
	OpLogin:                  "login",
	OpSupervision:            "supervision",
	OpHeartbeat:              "heartbeat",
	OpGPSPositioning:         "gps_positioning",
	OpGPSOfflinePositioning:  "gps_offline_positioning",
	OpStatus:                 "status",
	OpHibernation:            "hibernation",
	OpReset:                  "reset",
	OpWhitelistTotal:         "whitelist_total",
	OpWiFiOfflinePositioning: "wifi_offline_positioning",
	OpTime:                   "time",
	OpStopAlarm:              "stop_alarm",
	OpSetup:                  "setup",
	OpSynchronousWhitelist:   "synchronous_whitelist",
	OpRestorePassword:        "restore_password",
	OpWiFiPositioning:        "wifi_positioning",
	OpManualPositioning:      "manual_positioning",
	OpBatteryCharge:          "battery_charge",
	OpChargerConnected:       "charger_connected",
	OpChargerDisconnected:    "charger_disconnected",
	OpVibrationReceived:      "vibration_received",
	OpPositionUploadInterval: "position_upload_interval",
}

// Name returns the symbolic opcode name, and false if the opcode is not a
// member of the closed registry (i.e. unknown).
func Name(op Opcode) (string, bool) {
	n, ok := names[op]
	return n, ok
}

// IsKnown reports whether op is a member of the closed opcode registry.
func IsKnown(op Opcode) bool {
	_, ok := names[op]
	return ok
}

// Frame markers.
const (
	StartByte1 = 0x78
	StartByte2 = 0x78
	StopByte1  = 0x0D
	StopByte2  = 0x0A
)

// Frame size bounds. A frame's length byte is a single byte, so payload
// (opcode included) cannot exceed 255 bytes; a larger frame cannot be
// expressed on the wire at all.
const (
	MinFrameSize  = 6   // start(2) + length(1) + opcode(1) + stop(2) (length=1, empty payload after opcode) — smallest legal frame
	MaxLengthByte = 255 // length byte ceiling
	FrameOverhead = 5   // start(2) + length(1) + stop(2), excluding opcode+payload
)

// LengthPolicy selects how the frame codec computes the outbound length
// byte for a given opcode's reply, capturing the device's observed (and
// inconsistent) framing expectations rather than a single clean rule.
type LengthPolicy int

const (
	// LengthDefault sets L = len(opcode+payload) = 1+len(payload).
	LengthDefault LengthPolicy = iota
	// LengthIgnoreDatetime subtracts 6 from the default, for replies that
	// echo a 6-byte device timestamp the device does not count.
	LengthIgnoreDatetime
	// LengthIgnoreSeparator subtracts 1 from the default, for replies that
	// embed a ',' separator between two ASCII fields.
	LengthIgnoreSeparator
	// LengthForced sets L to a fixed value regardless of payload size.
	LengthForced
)

// ReplyPolicy is the per-opcode reply-length policy the response builder
// consults. ForcedValue is only meaningful when Policy is LengthForced.
type ReplyPolicy struct {
	Policy      LengthPolicy
	ForcedValue byte
}

// replyPolicies is the authoritative length-policy table (§4.1/§4.3):
// immutable after package init, consulted by the response builder so that
// framing quirks live in one table instead of scattered conditionals.
var replyPolicies = map[Opcode]ReplyPolicy{
	// Login's ack is a fixed 1-byte accept flag, but the device expects a
	// length byte 3 higher than len(opcode+payload) would give (5, not 2) —
	// forcing the observed constant sidesteps chasing that offset through
	// the general formula for a payload that never varies in size anyway.
	OpLogin:                  {Policy: LengthForced, ForcedValue: 5},
	OpTime:                   {Policy: LengthDefault},
	OpGPSPositioning:         {Policy: LengthForced, ForcedValue: 0},
	OpGPSOfflinePositioning:  {Policy: LengthForced, ForcedValue: 0},
	OpWiFiOfflinePositioning: {Policy: LengthForced, ForcedValue: 0},
	OpWiFiPositioning:        {Policy: LengthForced, ForcedValue: 0},
	OpSetup:                  {Policy: LengthDefault},
	OpPositionUploadInterval: {Policy: LengthDefault},
}

// ReplyPolicyFor returns the reply length policy for opcode op, defaulting
// to LengthDefault (generic echo) for any opcode not listed explicitly.
func ReplyPolicyFor(op Opcode) ReplyPolicy {
	if p, ok := replyPolicies[op]; ok {
		return p
	}
	return ReplyPolicy{Policy: LengthDefault}
}

// ComputeLength applies a ReplyPolicy to a payload to produce the frame's
// length byte.
func ComputeLength(p ReplyPolicy, payload []byte) byte {
	switch p.Policy {
	case LengthForced:
		return p.ForcedValue
	case LengthIgnoreDatetime:
		return byte(len(payload) + 1 - 6)
	case LengthIgnoreSeparator:
		return byte(len(payload) + 1 - 1)
	default:
		return byte(len(payload) + 1)
	}
}

// RequiresReply reports whether an opcode has a defined reply per §4.2/§4.3.
// Opcodes not in this set are logged but never answered.
func RequiresReply(op Opcode) bool {
	switch op {
	case OpLogin, OpTime, OpGPSPositioning, OpGPSOfflinePositioning,
		OpWiFiOfflinePositioning, OpWiFiPositioning, OpSetup,
		OpPositionUploadInterval:
		return true
	default:
		return false
	}
}
