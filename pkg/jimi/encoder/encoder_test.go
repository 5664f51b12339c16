package encoder

import (
	"testing"
	"time"

	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

func TestLoginResponse(t *testing.T) {
	enc := New()
	response := enc.LoginResponse()

	want := []byte{0x78, 0x78, 0x05, 0x01, 0x01, 0x0D, 0x0A}
	if len(response) != len(want) {
		t.Fatalf("length = %d, want %d (% X)", len(response), len(want), response)
	}
	for i := range want {
		if response[i] != want[i] {
			t.Errorf("byte %d = %02X, want %02X", i, response[i], want[i])
		}
	}
}

func TestTimeResponse(t *testing.T) {
	enc := New()
	ts := time.Date(2024, 1, 15, 8, 30, 45, 0, time.UTC)
	response := enc.TimeResponse(ts)

	want := []byte{0x78, 0x78, 0x08, 0x30, 0x20, 0x24, 0x01, 0x15, 0x08, 0x30, 0x45, 0x0D, 0x0A}
	if len(response) != len(want) {
		t.Fatalf("length = %d, want %d (% X)", len(response), len(want), response)
	}
	for i := range want {
		if response[i] != want[i] {
			t.Errorf("byte %d = %02X, want %02X", i, response[i], want[i])
		}
	}
}

func TestGPSAck(t *testing.T) {
	enc := New()
	deviceTS := []byte{0x18, 0x01, 0x0F, 0x0A, 0x1E, 0x2D}
	response := enc.GPSAck(protocol.OpGPSPositioning, deviceTS)

	want := []byte{0x78, 0x78, 0x00, 0x10, 0x18, 0x01, 0x0F, 0x0A, 0x1E, 0x2D, 0x0D, 0x0A}
	if len(response) != len(want) {
		t.Fatalf("length = %d, want %d (% X)", len(response), len(want), response)
	}
	for i := range want {
		if response[i] != want[i] {
			t.Errorf("byte %d = %02X, want %02X", i, response[i], want[i])
		}
	}
}

func TestWiFiPositioningStage2_WithFix(t *testing.T) {
	enc := New()
	response := enc.WiFiPositioningStage2("+48.856600,+2.352200")

	if response[2] != 0x00 {
		t.Errorf("length byte = %02X, want 00 (forced)", response[2])
	}
	if response[3] != byte(protocol.OpWiFiPositioning) {
		t.Errorf("opcode = %02X, want %02X", response[3], protocol.OpWiFiPositioning)
	}
	got := string(response[4 : len(response)-2])
	if got != "+48.856600,+2.352200" {
		t.Errorf("payload = %q", got)
	}
}

func TestWiFiPositioningStage2_Empty(t *testing.T) {
	enc := New()
	response := enc.WiFiPositioningStage2(",")

	want := []byte{0x78, 0x78, 0x00, 0x69, 0x2C, 0x0D, 0x0A}
	if len(response) != len(want) {
		t.Fatalf("length = %d, want %d (% X)", len(response), len(want), response)
	}
	for i := range want {
		if response[i] != want[i] {
			t.Errorf("byte %d = %02X, want %02X", i, response[i], want[i])
		}
	}
}

func TestSetupResponse_Defaults(t *testing.T) {
	enc := New()
	response := enc.SetupResponse(DefaultSetupPayload())

	if response[3] != byte(protocol.OpSetup) {
		t.Errorf("opcode = %02X, want %02X", response[3], protocol.OpSetup)
	}
	payload := response[4 : len(response)-2]
	wantLen := protocol.ComputeLength(protocol.ReplyPolicyFor(protocol.OpSetup), payload)
	if response[2] != wantLen {
		t.Errorf("length byte = %d, want %d", response[2], wantLen)
	}
	if payload[0] != 0x03 || payload[1] != 0x00 {
		t.Errorf("upload interval = % X, want 03 00", payload[0:2])
	}
	if payload[2] != 0x11 {
		t.Errorf("binary switch = %02X, want 11", payload[2])
	}
}

func TestPositionUploadIntervalResponse(t *testing.T) {
	enc := New()
	response := enc.PositionUploadIntervalResponse([]byte{0x02, 0x58})

	want := []byte{0x78, 0x78, 0x03, 0x98, 0x02, 0x58, 0x0D, 0x0A}
	if len(response) != len(want) {
		t.Fatalf("length = %d, want %d (% X)", len(response), len(want), response)
	}
	for i := range want {
		if response[i] != want[i] {
			t.Errorf("byte %d = %02X, want %02X", i, response[i], want[i])
		}
	}
}

func TestGenericAck(t *testing.T) {
	enc := New()
	response := enc.GenericAck(protocol.OpHeartbeat)

	want := []byte{0x78, 0x78, 0x01, 0x08, 0x0D, 0x0A}
	if len(response) != len(want) {
		t.Fatalf("length = %d, want %d (% X)", len(response), len(want), response)
	}
	for i := range want {
		if response[i] != want[i] {
			t.Errorf("byte %d = %02X, want %02X", i, response[i], want[i])
		}
	}
}

func BenchmarkLoginResponse(b *testing.B) {
	enc := New()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = enc.LoginResponse()
	}
}

func BenchmarkTimeResponse(b *testing.B) {
	enc := New()
	now := time.Now()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = enc.TimeResponse(now)
	}
}
