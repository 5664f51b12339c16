package engine

import (
	"encoding/hex"
	"testing"

	"github.com/intelcon-group/topin-server/internal/geolocate"
	"github.com/intelcon-group/topin-server/internal/session"
	"github.com/intelcon-group/topin-server/pkg/jimi/encoder"
	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"

	_ "github.com/intelcon-group/topin-server/internal/parser" // register default parsers
)

func newTestEngine() *Engine {
	return New(nil, encoder.New())
}

func TestStep_Login(t *testing.T) {
	e := newTestEngine()
	sess := session.New("1.2.3.4:5678")

	payload := []byte{0x03, 0x59, 0x33, 0x90, 0x75, 0x01, 0x68, 0x07, 0x42}
	outcome, err := e.Step(sess, protocol.OpLogin, payload)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}

	if sess.State != session.Active {
		t.Errorf("state = %v, want Active", sess.State)
	}
	if sess.IMEI != "359339075016807" {
		t.Errorf("IMEI = %q", sess.IMEI)
	}
	if len(outcome.Outbound) != 1 {
		t.Fatalf("len(Outbound) = %d, want 1", len(outcome.Outbound))
	}
	if got := hex.EncodeToString(outcome.Outbound[0]); got != "78780501010d0a" {
		t.Errorf("reply = %s, want 78780501010d0a", got)
	}
}

func TestStep_AwaitingLogin_RejectsOtherOpcodes(t *testing.T) {
	e := newTestEngine()
	sess := session.New("1.2.3.4:5678")

	outcome, err := e.Step(sess, protocol.OpHeartbeat, nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if outcome.KeepAlive {
		t.Error("KeepAlive = true, want false")
	}
	if sess.State != session.Closing {
		t.Errorf("state = %v, want Closing", sess.State)
	}
}

func TestStep_GPSFix(t *testing.T) {
	e := newTestEngine()
	sess := session.New("1.2.3.4:5678")
	sess.State = session.Active

	payload := []byte{
		0x18, 0x01, 0x0F, 0x0A, 0x1E, 0x2D,
		0xC5,
		0x02, 0x7A, 0xB4, 0x00,
		0x06, 0x0C, 0xC8, 0x40,
		0x0F,
		0x0C, 0x1A,
	}

	outcome, err := e.Step(sess, protocol.OpGPSPositioning, payload)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	want := "7878001018010f0a1e2d0d0a"
	if got := hex.EncodeToString(outcome.Outbound[0]); got != want {
		t.Errorf("reply = %s, want %s", got, want)
	}
	if outcome.Position == nil {
		t.Fatal("expected a position record")
	}
	if outcome.Position.Validity != session.ValidityValid {
		t.Errorf("validity = %v, want Valid", outcome.Position.Validity)
	}
	if outcome.Position.NbSat != 5 {
		t.Errorf("NbSat = %d, want 5", outcome.Position.NbSat)
	}
}

func TestStep_GPSClockUnset(t *testing.T) {
	e := newTestEngine()
	sess := session.New("1.2.3.4:5678")
	sess.State = session.Active

	payload := make([]byte, 18)
	payload[6] = 0x03

	outcome, err := e.Step(sess, protocol.OpGPSPositioning, payload)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if outcome.Position.Validity != session.ValidityValidClockUnset {
		t.Errorf("validity = %v, want ValidClockUnset", outcome.Position.Validity)
	}
	if outcome.Position.DateTimeLocal.Year() < 2020 {
		t.Errorf("expected server time substituted, got %v", outcome.Position.DateTimeLocal)
	}
}

func TestStep_Hibernation(t *testing.T) {
	e := newTestEngine()
	sess := session.New("1.2.3.4:5678")
	sess.State = session.Active

	outcome, err := e.Step(sess, protocol.OpHibernation, nil)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if outcome.KeepAlive {
		t.Error("KeepAlive = true, want false")
	}
	if len(outcome.Outbound) != 0 {
		t.Errorf("Outbound = %v, want none", outcome.Outbound)
	}
	if sess.State != session.Closing {
		t.Errorf("state = %v, want Closing", sess.State)
	}
}

func TestStep_UnknownOpcode(t *testing.T) {
	e := newTestEngine()
	sess := session.New("1.2.3.4:5678")
	sess.State = session.Active

	outcome, err := e.Step(sess, protocol.Opcode(0x43), []byte{0xAA})
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if !outcome.KeepAlive {
		t.Error("KeepAlive = false, want true for unknown opcode")
	}
	if len(outcome.Outbound) != 0 {
		t.Errorf("Outbound = %v, want none", outcome.Outbound)
	}
	if sess.State != session.Active {
		t.Errorf("state = %v, want unchanged Active", sess.State)
	}
}

func TestStep_WiFiPositioning_Stage1(t *testing.T) {
	e := newTestEngine()
	sess := session.New("1.2.3.4:5678")
	sess.State = session.Active

	payload := []byte{
		0x10,
		0x24, 0x01, 0x15, 0x08, 0x30, 0x45,
		0xAA, 0xBB, 0xCC, 0xDD, 0xEE, 0xFF, 0x46,
		0x00,
		0x01, 0xF4,
		0x01,
	}

	outcome, err := e.Step(sess, protocol.OpWiFiPositioning, payload)
	if err != nil {
		t.Fatalf("Step: %v", err)
	}
	if len(outcome.Outbound) != 1 {
		t.Fatalf("len(Outbound) = %d, want 1 (stage-1 only)", len(outcome.Outbound))
	}
	if outcome.PendingGeolocation == nil {
		t.Fatal("expected PendingGeolocation")
	}
	if outcome.PendingGeolocation.Evidence.MCC != 500 {
		t.Errorf("MCC = %d, want 500", outcome.PendingGeolocation.Evidence.MCC)
	}
}

func TestFinishWiFiPositioning_Success(t *testing.T) {
	e := newTestEngine()

	stage2, pos := e.FinishWiFiPositioning(geolocate.Fix{Latitude: 48.8566, Longitude: 2.3522, Accuracy: 42}, nil)

	want := "787800692b34382e3835363630302c2b322e3335323230300d0a"
	if got := hex.EncodeToString(stage2); got != want {
		t.Errorf("stage2 = %s, want %s", got, want)
	}
	if pos.Validity != session.ValidityValid || !pos.HasLatLng {
		t.Errorf("pos = %+v", pos)
	}
}

func TestFinishWiFiPositioning_GeolocationFailure(t *testing.T) {
	e := newTestEngine()

	stage2, pos := e.FinishWiFiPositioning(geolocate.Fix{}, errTestGeo)

	if got := hex.EncodeToString(stage2); got != "787800692c0d0a" {
		t.Errorf("stage2 = %s, want 787800692c0d0a", got)
	}
	if pos.Validity != session.ValidityInvalid {
		t.Errorf("validity = %v, want Invalid", pos.Validity)
	}
	if pos.Method != session.MethodLBS {
		t.Errorf("method = %v, want LBS", pos.Method)
	}
}

var errTestGeo = &testGeoErr{}

type testGeoErr struct{}

func (*testGeoErr) Error() string { return "geolocation unavailable" }
