package parser

import (
	"fmt"

	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// Status is the decoded payload of opcode 0x13: a 4- or 5-byte battery/
// version/interval report, logged but never replied to.
type Status struct {
	Battery              byte
	SoftwareVersion      byte
	StatusUploadInterval byte
	SignalStrength       *byte
}

// Opcode implements Decoded.
func (Status) Opcode() protocol.Opcode { return protocol.OpStatus }

// StatusParser decodes opcode 0x13 payloads.
type StatusParser struct{ baseParser }

// NewStatusParser creates a status payload parser.
func NewStatusParser() *StatusParser {
	return &StatusParser{newBaseParser(protocol.OpStatus, "Status")}
}

// Parse implements Parser.
func (p *StatusParser) Parse(payload []byte) (Decoded, error) {
	if len(payload) != 4 && len(payload) != 5 {
		return nil, fmt.Errorf("status: payload must be 4 or 5 bytes, got %d", len(payload))
	}

	// byte 3 is a reserved field the device always sends but that carries
	// no value documented anywhere in the pack; signal strength, when
	// present, follows it at byte 4.
	s := Status{
		Battery:              payload[0],
		SoftwareVersion:      payload[1],
		StatusUploadInterval: payload[2],
	}
	if len(payload) == 5 {
		sig := payload[4]
		s.SignalStrength = &sig
	}
	return s, nil
}

func init() {
	MustRegister(NewStatusParser())
}
