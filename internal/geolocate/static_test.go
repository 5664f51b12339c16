package geolocate

import (
	"context"
	"errors"
	"testing"
)

func TestStaticLocator_Fix(t *testing.T) {
	want := Fix{Latitude: 48.8566, Longitude: 2.3522, Accuracy: 42}
	loc := StaticLocator{Fix: want}

	got, err := loc.Locate(context.Background(), Evidence{})
	if err != nil {
		t.Fatalf("Locate: %v", err)
	}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestStaticLocator_Error(t *testing.T) {
	wantErr := errors.New("boom")
	loc := StaticLocator{Err: wantErr}

	if _, err := loc.Locate(context.Background(), Evidence{}); err != wantErr {
		t.Errorf("err = %v, want %v", err, wantErr)
	}
}
