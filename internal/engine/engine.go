// Package engine implements the TOPIN protocol state machine. Engine.Step
// is a pure function of session state and one decoded frame; Conn (conn.go)
// is the impure driver that owns the socket, the geolocation client, and
// the log sink, and calls Step in a loop. The split mirrors the teacher's
// separation between pkg/jimi (pure decode/encode) and cmd/tcp-server's
// DeviceSession (impure session/IO driving).
package engine

import (
	"fmt"
	"time"

	"github.com/intelcon-group/topin-server/internal/engineerr"
	"github.com/intelcon-group/topin-server/internal/geolocate"
	"github.com/intelcon-group/topin-server/internal/parser"
	"github.com/intelcon-group/topin-server/internal/session"
	"github.com/intelcon-group/topin-server/pkg/jimi/encoder"
	"github.com/intelcon-group/topin-server/pkg/jimi/protocol"
)

// PendingGeolocation is returned by Step for a wifi_positioning (0x69) frame
// once its stage-1 reply has been produced: the evidence the geolocation
// collaborator needs to resolve stage-2. Step never calls the collaborator
// itself — Conn does, between flushing stage-1 and generating stage-2.
type PendingGeolocation struct {
	Evidence geolocate.Evidence
}

// Outcome is everything Step decided about one inbound frame.
type Outcome struct {
	// Outbound holds reply frames to send, in order.
	Outbound [][]byte
	// KeepAlive is false when the session should transition to Closing.
	KeepAlive bool
	// Position, if non-nil, is a record the caller should log.
	Position *session.Position
	// PendingGeolocation, if non-nil, means the caller must resolve it and
	// call FinishWiFiPositioning to produce the stage-2 reply.
	PendingGeolocation *PendingGeolocation
}

// Engine holds the immutable collaborators Step dispatches through: the
// payload parser registry and the reply builder. Both are safe to share
// across connections.
type Engine struct {
	Parsers *parser.Registry
	Enc     *encoder.Encoder
}

// New creates an Engine. A nil registry defaults to the package-wide
// parser.DefaultRegistry().
func New(parsers *parser.Registry, enc *encoder.Encoder) *Engine {
	if parsers == nil {
		parsers = parser.DefaultRegistry()
	}
	return &Engine{Parsers: parsers, Enc: enc}
}

// Step advances sess by one inbound frame, per the state table in §4.4.
func (e *Engine) Step(sess *session.Session, op protocol.Opcode, payload []byte) (Outcome, error) {
	if sess.State == session.AwaitingLogin && op != protocol.OpLogin {
		sess.State = session.Closing
		return Outcome{KeepAlive: false}, nil
	}

	if !protocol.IsKnown(op) {
		return Outcome{KeepAlive: true}, nil
	}

	switch op {
	case protocol.OpLogin:
		return e.stepLogin(sess, payload)
	case protocol.OpHibernation:
		sess.State = session.Closing
		return Outcome{KeepAlive: false}, nil
	case protocol.OpGPSPositioning, protocol.OpGPSOfflinePositioning:
		return e.stepGPS(sess, op, payload)
	case protocol.OpWiFiOfflinePositioning:
		return e.stepWiFiOffline(sess, payload)
	case protocol.OpWiFiPositioning:
		return e.stepWiFiPositioningStage1(sess, payload)
	case protocol.OpStatus:
		return e.stepStatus(payload)
	case protocol.OpTime:
		return Outcome{Outbound: [][]byte{e.Enc.TimeResponse(time.Now().UTC())}, KeepAlive: true}, nil
	case protocol.OpSetup:
		return Outcome{Outbound: [][]byte{e.Enc.SetupResponse(encoder.DefaultSetupPayload())}, KeepAlive: true}, nil
	case protocol.OpPositionUploadInterval:
		return e.stepPositionUploadInterval(payload)
	default:
		// supervision, heartbeat, reset, whitelist_total, stop_alarm,
		// synchronous_whitelist, restore_password, manual_positioning,
		// battery_charge, charger_connected/disconnected, vibration_received:
		// logged by the caller, no reply.
		return Outcome{KeepAlive: true}, nil
	}
}

func (e *Engine) stepLogin(sess *session.Session, payload []byte) (Outcome, error) {
	decoded, err := e.Parsers.Parse(protocol.OpLogin, payload)
	if err != nil {
		return Outcome{}, engineerr.NewDecodeError(byte(protocol.OpLogin), "login payload", err)
	}
	login := decoded.(parser.Login)

	sess.IMEI = login.IMEI
	sess.SoftwareVersion = login.SoftwareVersion
	sess.State = session.Active

	return Outcome{Outbound: [][]byte{e.Enc.LoginResponse()}, KeepAlive: true}, nil
}

func (e *Engine) stepGPS(sess *session.Session, op protocol.Opcode, payload []byte) (Outcome, error) {
	decoded, err := e.Parsers.Parse(op, payload)
	if err != nil {
		return Outcome{}, engineerr.NewDecodeError(byte(op), "gps payload", err)
	}
	gps := decoded.(parser.GPS)

	loggedTime := gps.DateTimeLocal
	validity := session.ValidityValid
	switch {
	case gps.ClockUnset:
		validity = session.ValidityValidClockUnset
		loggedTime = time.Now().UTC()
	case !gps.Valid:
		validity = session.ValidityInvalid
	}

	pos := session.Position{
		Method:        session.MethodGPS,
		DateTimeLocal: loggedTime,
		Validity:      validity,
		NbSat:         gps.NbSat,
		Latitude:      gps.Latitude,
		Longitude:     gps.Longitude,
		HasLatLng:     true,
		Speed:         gps.Speed,
		Heading:       gps.Heading,
	}
	sess.LastGPS = &pos

	reply := e.Enc.GPSAck(op, gps.DeviceTimestamp[:])
	return Outcome{Outbound: [][]byte{reply}, KeepAlive: true, Position: &pos}, nil
}

func (e *Engine) stepWiFiOffline(sess *session.Session, payload []byte) (Outcome, error) {
	sess.ResetEvidence()
	decoded, err := e.Parsers.Parse(protocol.OpWiFiOfflinePositioning, payload)
	if err != nil {
		return Outcome{}, engineerr.NewDecodeError(byte(protocol.OpWiFiOfflinePositioning), "wifi offline payload", err)
	}
	w := decoded.(parser.WiFiLBS)

	sess.RollingEvidence = session.RollingEvidence{
		MCC:      w.MCC,
		MNC:      w.MNC,
		WiFi:     w.WiFi,
		GSMCells: w.GSMCells,
	}

	reply := e.Enc.WiFiOfflineAck(w.DeviceTimestamp[:])
	return Outcome{Outbound: [][]byte{reply}, KeepAlive: true}, nil
}

func (e *Engine) stepWiFiPositioningStage1(sess *session.Session, payload []byte) (Outcome, error) {
	sess.ResetEvidence()
	decoded, err := e.Parsers.Parse(protocol.OpWiFiPositioning, payload)
	if err != nil {
		return Outcome{}, engineerr.NewDecodeError(byte(protocol.OpWiFiPositioning), "wifi positioning payload", err)
	}
	w := decoded.(parser.WiFiLBS)

	sess.RollingEvidence = session.RollingEvidence{
		MCC:      w.MCC,
		MNC:      w.MNC,
		WiFi:     w.WiFi,
		GSMCells: w.GSMCells,
	}

	stage1 := e.Enc.WiFiPositioningStage1(w.DeviceTimestamp[:])
	pending := &PendingGeolocation{
		Evidence: geolocate.Evidence{MCC: w.MCC, MNC: w.MNC, WiFi: w.WiFi, GSMCells: w.GSMCells},
	}
	return Outcome{Outbound: [][]byte{stage1}, KeepAlive: true, PendingGeolocation: pending}, nil
}

// FinishWiFiPositioning builds the stage-2 reply and location record for a
// wifi_positioning frame, given the geolocation result Conn obtained for
// the Outcome's PendingGeolocation. Called after stage-1 has already been
// flushed to the wire.
func (e *Engine) FinishWiFiPositioning(fix geolocate.Fix, geoErr error) ([]byte, session.Position) {
	pos := session.Position{Method: session.MethodLBS}

	var latLngASCII string
	if geoErr != nil {
		latLngASCII = ","
		pos.Validity = session.ValidityInvalid
	} else {
		latLngASCII = fmt.Sprintf("%s,%s", signedDecimal(fix.Latitude), signedDecimal(fix.Longitude))
		pos.Validity = session.ValidityValid
		pos.HasLatLng = true
		pos.Latitude = fix.Latitude
		pos.Longitude = fix.Longitude
		pos.HasAccuracy = true
		pos.Accuracy = fix.Accuracy
	}

	return e.Enc.WiFiPositioningStage2(latLngASCII), pos
}

// signedDecimal renders v as a 6-decimal-digit ASCII number prefixed by '+'
// or '-', per §4.3's stage-2 coordinate format.
func signedDecimal(v float64) string {
	sign := "+"
	if v < 0 {
		sign = "-"
		v = -v
	}
	return fmt.Sprintf("%s%.6f", sign, v)
}

func (e *Engine) stepStatus(payload []byte) (Outcome, error) {
	if _, err := e.Parsers.Parse(protocol.OpStatus, payload); err != nil {
		return Outcome{}, engineerr.NewDecodeError(byte(protocol.OpStatus), "status payload", err)
	}
	return Outcome{KeepAlive: true}, nil
}

func (e *Engine) stepPositionUploadInterval(payload []byte) (Outcome, error) {
	if len(payload) != 2 {
		return Outcome{}, engineerr.NewDecodeError(byte(protocol.OpPositionUploadInterval),
			fmt.Sprintf("expected 2-byte interval, got %d", len(payload)), nil)
	}
	return Outcome{Outbound: [][]byte{e.Enc.PositionUploadIntervalResponse(payload)}, KeepAlive: true}, nil
}
