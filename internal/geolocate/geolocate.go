// Package geolocate resolves a Wi-Fi/cell scan into a lat/lng fix via the
// Google Maps Geolocation API. The collaborator is synchronous from the
// engine's perspective but internally bounded by a context deadline so a
// hung backend never blocks a connection task forever.
package geolocate

import (
	"context"

	"github.com/intelcon-group/topin-server/internal/session"
)

// Evidence is the Wi-Fi/cell scan gathered from a wifi_positioning (0x69)
// frame, handed to Locate unmodified from session.RollingEvidence.
type Evidence struct {
	MCC      uint16
	MNC      byte
	WiFi     []session.WiFiAccessPoint
	GSMCells []session.GSMCell
}

// Fix is a resolved position with its reported accuracy radius in meters.
type Fix struct {
	Latitude  float64
	Longitude float64
	Accuracy  float64
}

// Locator resolves Evidence into a Fix. Implementations must be safe for
// concurrent use: the engine may call Locate from many connection tasks at
// once.
type Locator interface {
	Locate(ctx context.Context, ev Evidence) (Fix, error)
}
