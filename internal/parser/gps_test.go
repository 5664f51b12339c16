package parser

import (
	"testing"

	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

func TestGPSParser_Fix(t *testing.T) {
	payload := []byte{
		0x18, 0x01, 0x0F, 0x0A, 0x1E, 0x2D, // timestamp (raw digits): 2024-01-15 10:30:45
		0xC5,                   // len indicator / nbsat=5
		0x02, 0x7A, 0xB4, 0x00, // lat_raw
		0x06, 0x0C, 0xC8, 0x40, // lon_raw
		0x0F,       // speed
		0x0C, 0x1A, // flags
	}

	got, err := NewGPSParser(protocol.OpGPSPositioning, "GPSPositioning").Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	gps := got.(GPS)
	if gps.NbSat != 5 {
		t.Errorf("NbSat = %d, want 5", gps.NbSat)
	}
	if !gps.Valid {
		t.Error("Valid = false, want true")
	}
	if gps.Speed != 15 {
		t.Errorf("Speed = %d, want 15", gps.Speed)
	}
	if gps.ClockUnset {
		t.Error("ClockUnset = true, want false")
	}
	wantYear, wantMonth, wantDay := 2024, 1, 15
	if gps.DateTimeLocal.Year() != wantYear || int(gps.DateTimeLocal.Month()) != wantMonth || gps.DateTimeLocal.Day() != wantDay {
		t.Errorf("DateTimeLocal = %v, want 2024-01-15", gps.DateTimeLocal)
	}
}

func TestGPSParser_ClockUnset(t *testing.T) {
	payload := make([]byte, 18)
	payload[6] = 0x05 // nbsat=5, rest zero

	got, err := NewGPSParser(protocol.OpGPSPositioning, "GPSPositioning").Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !got.(GPS).ClockUnset {
		t.Error("ClockUnset = false, want true for all-zero timestamp")
	}
}

func TestGPSParser_WrongLength(t *testing.T) {
	if _, err := NewGPSParser(protocol.OpGPSPositioning, "GPSPositioning").Parse(make([]byte, 10)); err == nil {
		t.Fatal("expected error for wrong-length payload")
	}
}
