package parser

import (
	"testing"

	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

func TestWiFiLBSParser(t *testing.T) {
	payload := []byte{
		0x20,                   // N_wifi=2 (high nibble)
		0x24, 0x01, 0x15, 0x08, 0x30, 0x45, // BCD timestamp 2024-01-15 08:30:45
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x46, // wifi 1: bssid + rssi(-70)
		0x11, 0x22, 0x33, 0x44, 0x55, 0x66, 0x50, // wifi 2: bssid + rssi(-80)
		0x01,       // N_gsm=1
		0x01, 0xF4, // MCC=500
		0x01,       // MNC
		0x12, 0x34, // LAC
		0x56, 0x78, // CID
		0x28, // rssi(-40)
	}

	got, err := NewWiFiLBSParser(protocol.OpWiFiPositioning, "WiFiPositioning").Parse(payload)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	w := got.(WiFiLBS)
	if len(w.WiFi) != 2 {
		t.Fatalf("len(WiFi) = %d, want 2", len(w.WiFi))
	}
	if w.WiFi[0].BSSID != "aa:bb:cc:dd:ee:ff" {
		t.Errorf("WiFi[0].BSSID = %q", w.WiFi[0].BSSID)
	}
	if w.WiFi[0].RSSI != -0x46 {
		t.Errorf("WiFi[0].RSSI = %d, want %d", w.WiFi[0].RSSI, -0x46)
	}
	if w.MCC != 500 || w.MNC != 1 {
		t.Errorf("MCC/MNC = %d/%d, want 500/1", w.MCC, w.MNC)
	}
	if len(w.GSMCells) != 1 {
		t.Fatalf("len(GSMCells) = %d, want 1", len(w.GSMCells))
	}
	if w.GSMCells[0].LAC != 0x1234 || w.GSMCells[0].CID != 0x5678 {
		t.Errorf("cell = %+v", w.GSMCells[0])
	}
	if w.DateTime.Year() != 2024 || w.DateTime.Day() != 15 {
		t.Errorf("DateTime = %v", w.DateTime)
	}
}

func TestWiFiLBSParser_TooShort(t *testing.T) {
	if _, err := NewWiFiLBSParser(protocol.OpWiFiPositioning, "WiFiPositioning").Parse([]byte{0x00}); err == nil {
		t.Fatal("expected error for too-short payload")
	}
}
