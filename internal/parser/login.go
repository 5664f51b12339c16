package parser

import (
	"fmt"

	"github.com/intelcon-group/topin-server/internal/codec"
	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// Login is the decoded payload of opcode 0x01: 8 bytes BCD IMEI (first
// nibble padding dropped) followed by a 1-byte software version.
type Login struct {
	IMEI            string
	SoftwareVersion byte
}

// Opcode implements Decoded.
func (Login) Opcode() protocol.Opcode { return protocol.OpLogin }

// LoginParser decodes opcode 0x01 payloads.
type LoginParser struct{ baseParser }

// NewLoginParser creates a login payload parser.
func NewLoginParser() *LoginParser {
	return &LoginParser{newBaseParser(protocol.OpLogin, "Login")}
}

// Parse implements Parser.
func (p *LoginParser) Parse(payload []byte) (Decoded, error) {
	if len(payload) != 9 {
		return nil, fmt.Errorf("login: payload must be 9 bytes (8 IMEI + 1 version), got %d", len(payload))
	}

	imei, err := codec.DecodeIMEI(payload[0:8])
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	return Login{IMEI: imei, SoftwareVersion: payload[8]}, nil
}

func init() {
	MustRegister(NewLoginParser())
}
