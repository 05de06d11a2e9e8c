// Package geocoding turns GPS positions into postal addresses
package geocoding

import (
	"context"

	"bitbucket.org/kleinnic74/geosnap/domain/gps"
)

// Resolver resolves a position to an address. found is false if the
// position is known to have no address.
type Resolver interface {
	ReverseGeocode(ctx context.Context, lat, lon float64) (address *gps.Address, found bool, err error)
}

// ResolverFunc adapts a function to the Resolver interface
type ResolverFunc func(ctx context.Context, lat, lon float64) (*gps.Address, bool, error)

func (f ResolverFunc) ReverseGeocode(ctx context.Context, lat, lon float64) (*gps.Address, bool, error) {
	return f(ctx, lat, lon)
}
