package geolocate

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

const geolocationEndpoint = "https://www.googleapis.com/geolocation/v1/geolocate"

// HTTPLocator calls the Google Maps Geolocation API over HTTPS. Unlike the
// original device's integration, it sends the carrier's actual MNC rather
// than repeating the MCC in both fields.
type HTTPLocator struct {
	APIKey     string
	HTTPClient *http.Client
}

// NewHTTPLocator creates an HTTPLocator with a 10-second client timeout.
// A per-call context deadline also applies; whichever expires first ends
// the call.
func NewHTTPLocator(apiKey string) *HTTPLocator {
	return &HTTPLocator{
		APIKey:     apiKey,
		HTTPClient: &http.Client{Timeout: 10 * time.Second},
	}
}

type cellTower struct {
	CellID            uint16 `json:"cellId"`
	LocationAreaCode  uint16 `json:"locationAreaCode"`
	MobileCountryCode uint16 `json:"mobileCountryCode"`
	MobileNetworkCode byte   `json:"mobileNetworkCode"`
	SignalStrength    int    `json:"signalStrength"`
}

type wifiAccessPoint struct {
	MacAddress     string `json:"macAddress"`
	SignalStrength int    `json:"signalStrength"`
}

type geolocateRequest struct {
	HomeMobileCountryCode uint16            `json:"homeMobileCountryCode"`
	HomeMobileNetworkCode byte              `json:"homeMobileNetworkCode"`
	RadioType             string            `json:"radioType"`
	ConsiderIP            bool              `json:"considerIp"`
	CellTowers            []cellTower       `json:"cellTowers,omitempty"`
	WiFiAccessPoints      []wifiAccessPoint `json:"wifiAccessPoints,omitempty"`
}

type geolocateResponse struct {
	Location struct {
		Lat float64 `json:"lat"`
		Lng float64 `json:"lng"`
	} `json:"location"`
	Accuracy float64 `json:"accuracy"`
	Error    *struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Locate implements Locator.
func (l *HTTPLocator) Locate(ctx context.Context, ev Evidence) (Fix, error) {
	req := geolocateRequest{
		HomeMobileCountryCode: ev.MCC,
		HomeMobileNetworkCode: ev.MNC,
		RadioType:             "gsm",
		ConsiderIP:            false,
	}
	for _, c := range ev.GSMCells {
		req.CellTowers = append(req.CellTowers, cellTower{
			CellID:            c.CID,
			LocationAreaCode:  c.LAC,
			MobileCountryCode: ev.MCC,
			MobileNetworkCode: ev.MNC,
			SignalStrength:    c.RSSI,
		})
	}
	for _, w := range ev.WiFi {
		req.WiFiAccessPoints = append(req.WiFiAccessPoints, wifiAccessPoint{
			MacAddress:     w.BSSID,
			SignalStrength: w.RSSI,
		})
	}

	body, err := json.Marshal(req)
	if err != nil {
		return Fix{}, fmt.Errorf("geolocate: encode request: %w", err)
	}

	url := fmt.Sprintf("%s?key=%s", geolocationEndpoint, l.APIKey)
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Fix{}, fmt.Errorf("geolocate: build request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := l.HTTPClient.Do(httpReq)
	if err != nil {
		return Fix{}, fmt.Errorf("geolocate: request failed: %w", err)
	}
	defer resp.Body.Close()

	var parsed geolocateResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Fix{}, fmt.Errorf("geolocate: decode response: %w", err)
	}
	if parsed.Error != nil {
		return Fix{}, fmt.Errorf("geolocate: api error %d: %s", parsed.Error.Code, parsed.Error.Message)
	}

	return Fix{
		Latitude:  parsed.Location.Lat,
		Longitude: parsed.Location.Lng,
		Accuracy:  parsed.Accuracy,
	}, nil
}
