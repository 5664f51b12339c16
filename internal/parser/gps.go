package parser

import (
	"fmt"
	"time"

	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// latLonScale is the device's angular unit: degrees = raw / (30000 * 60).
const latLonScale = 30000.0 * 60.0

// GPS is the decoded fixed 18-byte payload of opcodes 0x10 and 0x11.
type GPS struct {
	op protocol.Opcode

	// DeviceTimestamp is the raw 6-byte device clock, echoed verbatim in
	// the reply regardless of whether it decoded to a valid time.
	DeviceTimestamp [6]byte
	// DateTimeLocal is the decoded device clock, or the zero Time when
	// ClockUnset is true.
	DateTimeLocal time.Time
	// ClockUnset marks an all-zero device timestamp (valid fix, clock not
	// yet set): the caller should substitute server time for logging.
	ClockUnset bool

	NbSat     int
	Latitude  float64
	Longitude float64
	Speed     int
	Heading   int
	Valid     bool
}

// Opcode implements Decoded.
func (g GPS) Opcode() protocol.Opcode { return g.op }

// GPSParser decodes opcodes 0x10 (gps_positioning) and 0x11
// (gps_offline_positioning); both share the identical 18-byte payload shape.
type GPSParser struct {
	baseParser
}

// NewGPSParser creates a GPS payload parser for the given opcode.
func NewGPSParser(op protocol.Opcode, name string) *GPSParser {
	return &GPSParser{newBaseParser(op, name)}
}

// Parse implements Parser.
func (p *GPSParser) Parse(payload []byte) (Decoded, error) {
	if len(payload) != 18 {
		return nil, fmt.Errorf("%s: payload must be 18 bytes, got %d", p.Name(), len(payload))
	}

	g := GPS{op: p.Opcode()}
	copy(g.DeviceTimestamp[:], payload[0:6])

	if isZero(payload[0:6]) {
		g.ClockUnset = true
	} else {
		t, err := decodeRawDigitDateTime(payload[0:6])
		if err != nil {
			return nil, fmt.Errorf("%s: timestamp: %w", p.Name(), err)
		}
		g.DateTimeLocal = t
	}

	g.NbSat = int(payload[6] & 0x0F)

	latRaw := beUint32(payload[7:11])
	lonRaw := beUint32(payload[11:15])
	g.Latitude = float64(latRaw) / latLonScale
	g.Longitude = float64(lonRaw) / latLonScale

	g.Speed = int(payload[15])

	// The flags word is transmitted low-byte-first, unlike the big-endian
	// lat/lon fields that precede it.
	flags := uint16(payload[17])<<8 | uint16(payload[16])
	g.Valid = flags&0x1000 != 0  // bit 12 (MSB position 3)
	isWest := flags&0x0800 != 0  // bit 11 (MSB position 4)
	isSouth := flags&0x0400 == 0 // bit 10 (MSB position 5): 0 = southern
	g.Heading = int(flags & 0x03FF)

	if isWest {
		g.Longitude = -g.Longitude
	}
	if isSouth {
		g.Latitude = -g.Latitude
	}

	return g, nil
}

func beUint32(b []byte) uint32 {
	return uint32(b[0])<<24 | uint32(b[1])<<16 | uint32(b[2])<<8 | uint32(b[3])
}

func isZero(b []byte) bool {
	for _, v := range b {
		if v != 0 {
			return false
		}
	}
	return true
}

// decodeRawDigitDateTime reads 6 bytes as plain per-byte integers (the GPS
// positioning payload's timestamp coding), distinct from the BCD
// digit-packing used by the time-sync reply and Wi-Fi+LBS payloads.
func decodeRawDigitDateTime(data []byte) (time.Time, error) {
	year := 2000 + int(data[0])
	month, day, hour, minute, second := int(data[1]), int(data[2]), int(data[3]), int(data[4]), int(data[5])
	if month < 1 || month > 12 {
		return time.Time{}, fmt.Errorf("invalid month: %d", month)
	}
	if day < 1 || day > 31 {
		return time.Time{}, fmt.Errorf("invalid day: %d", day)
	}
	if hour > 23 || minute > 59 || second > 59 {
		return time.Time{}, fmt.Errorf("invalid time: %02d:%02d:%02d", hour, minute, second)
	}
	return time.Date(year, time.Month(month), day, hour, minute, second, 0, time.UTC), nil
}

func init() {
	MustRegister(NewGPSParser(protocol.OpGPSPositioning, "GPSPositioning"))
	MustRegister(NewGPSParser(protocol.OpGPSOfflinePositioning, "GPSOfflinePositioning"))
}
