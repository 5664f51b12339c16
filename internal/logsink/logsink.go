// Package logsink appends decoded traffic and position records to two
// TSV streams, the Go-native rendition of the original server's LOGGER
// function and of the teacher's per-connection raw log file.
package logsink

import (
	"time"

	"github.com/intelcon-group/topin-server/internal/session"
)

// Direction marks whether an info-log row records an inbound or outbound
// frame.
type Direction string

const (
	DirectionIn  Direction = "IN"
	DirectionOut Direction = "OUT"
)

// InfoRecord is one row of the info log: timestamp, peer, imei, direction,
// hex payload.
type InfoRecord struct {
	Timestamp time.Time
	PeerAddr  string
	IMEI      string
	Direction Direction
	HexFrame  string
}

// LocationRecord is one row of the location log, built from a
// session.Position plus the connection identity it belongs to.
type LocationRecord struct {
	Timestamp time.Time
	PeerAddr  string
	IMEI      string
	Position  session.Position
}

// Sink is the append-only logging collaborator the engine's connection
// driver writes to. Implementations must serialize concurrent appends so
// rows from different connections never interleave mid-line.
type Sink interface {
	WriteInfo(rec InfoRecord) error
	WriteLocation(rec LocationRecord) error
	Close() error
}
