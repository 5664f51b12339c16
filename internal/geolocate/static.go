package geolocate

import "context"

// StaticLocator returns a fixed Fix (or a fixed error) regardless of the
// evidence given, for tests and offline fixtures.
type StaticLocator struct {
	Fix Fix
	Err error
}

// Locate implements Locator.
func (l StaticLocator) Locate(ctx context.Context, ev Evidence) (Fix, error) {
	if l.Err != nil {
		return Fix{}, l.Err
	}
	return l.Fix, nil
}
