package parser

import (
	"fmt"
	"strings"
	"time"

	"github.com/intelcon-group/topin-server/internal/codec"
	"github.com/intelcon-group/topin-server/internal/session"
	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// WiFiLBS is the decoded variable-length payload of opcodes 0x17 and 0x69:
// a BCD timestamp, a list of scanned Wi-Fi access points, and a list of
// scanned GSM cells sharing one MCC/MNC.
type WiFiLBS struct {
	op protocol.Opcode

	DeviceTimestamp [6]byte
	DateTime        time.Time
	WiFi            []session.WiFiAccessPoint
	MCC             uint16
	MNC             byte
	GSMCells        []session.GSMCell
}

// Opcode implements Decoded.
func (w WiFiLBS) Opcode() protocol.Opcode { return w.op }

// WiFiLBSParser decodes opcodes 0x17 (wifi_offline_positioning) and 0x69
// (wifi_positioning); both share the identical variable-length payload shape.
type WiFiLBSParser struct {
	baseParser
}

// NewWiFiLBSParser creates a Wi-Fi+LBS payload parser for the given opcode.
func NewWiFiLBSParser(op protocol.Opcode, name string) *WiFiLBSParser {
	return &WiFiLBSParser{newBaseParser(op, name)}
}

// Parse implements Parser.
func (p *WiFiLBSParser) Parse(payload []byte) (Decoded, error) {
	if len(payload) < 7 {
		return nil, fmt.Errorf("%s: payload too short: %d bytes (need at least 7)", p.Name(), len(payload))
	}

	w := WiFiLBS{op: p.Opcode()}

	nWiFi := int(payload[0] >> 4)
	copy(w.DeviceTimestamp[:], payload[1:7])

	dt, err := codec.DecodeBCDFieldDateTime(payload[1:7])
	if err != nil {
		return nil, fmt.Errorf("%s: timestamp: %w", p.Name(), err)
	}
	w.DateTime = dt

	offset := 7
	for i := 0; i < nWiFi; i++ {
		if offset+7 > len(payload) {
			return nil, fmt.Errorf("%s: truncated wifi entry %d", p.Name(), i)
		}
		bssid := codec.BytesToHex(payload[offset : offset+6])
		rssi := -int(payload[offset+6])
		w.WiFi = append(w.WiFi, session.WiFiAccessPoint{BSSID: formatBSSID(bssid), RSSI: rssi})
		offset += 7
	}

	if offset >= len(payload) {
		return nil, fmt.Errorf("%s: missing gsm cell count", p.Name())
	}
	nGSM := int(payload[offset])
	offset++

	if offset+3 > len(payload) {
		return nil, fmt.Errorf("%s: truncated carrier fields", p.Name())
	}
	w.MCC = uint16(payload[offset])<<8 | uint16(payload[offset+1])
	w.MNC = payload[offset+2]
	offset += 3

	for i := 0; i < nGSM; i++ {
		if offset+5 > len(payload) {
			return nil, fmt.Errorf("%s: truncated gsm cell %d", p.Name(), i)
		}
		lac := uint16(payload[offset])<<8 | uint16(payload[offset+1])
		cid := uint16(payload[offset+2])<<8 | uint16(payload[offset+3])
		rssi := -int(payload[offset+4])
		w.GSMCells = append(w.GSMCells, session.GSMCell{LAC: lac, CID: cid, RSSI: rssi})
		offset += 5
	}

	return w, nil
}

// formatBSSID renders a 12-hex-digit MAC as "aa:bb:cc:dd:ee:ff".
func formatBSSID(hex string) string {
	if len(hex) != 12 {
		return hex
	}
	out := make([]byte, 0, 17)
	for i := 0; i < 12; i += 2 {
		if i > 0 {
			out = append(out, ':')
		}
		out = append(out, hex[i], hex[i+1])
	}
	return strings.ToLower(string(out))
}

func init() {
	MustRegister(NewWiFiLBSParser(protocol.OpWiFiOfflinePositioning, "WiFiOfflinePositioning"))
	MustRegister(NewWiFiLBSParser(protocol.OpWiFiPositioning, "WiFiPositioning"))
}
