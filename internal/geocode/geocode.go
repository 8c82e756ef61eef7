package geocode

import (
	"context"
	"errors"
	"fmt"

	"github.com/kelvins/geocoder"
)

// ErrNotFound is returned when the postal code cannot be resolved.
var ErrNotFound = errors.New("postal code not found")

// Point is a resolved location.
type Point struct {
	Lat      float64
	Lon      float64
	Locality string
}

// Geocoder resolves a postal code to a coordinate. The core treats any
// successful response as a single point.
type Geocoder interface {
	PostalCode(ctx context.Context, code, country string) (Point, error)
}

// GoogleGeocoder resolves postal codes through the Google geocoding API.
type GoogleGeocoder struct{}

// NewGoogleGeocoder configures the underlying client with the API key.
func NewGoogleGeocoder(apiKey string) *GoogleGeocoder {
	geocoder.ApiKey = apiKey
	return &GoogleGeocoder{}
}

// PostalCode resolves a postal code to its coordinate plus a display
// locality when reverse lookup yields one. The underlying client does not
// take a context; the ctx parameter keeps the interface uniform for
// implementations that do.
func (g *GoogleGeocoder) PostalCode(_ context.Context, code, country string) (Point, error) {
	addr := geocoder.Address{
		PostalCode: code,
		Country:    country,
	}

	loc, err := geocoder.Geocoding(addr)
	if err != nil {
		return Point{}, fmt.Errorf("%w: %v", ErrNotFound, err)
	}

	p := Point{
		Lat:      loc.Latitude,
		Lon:      loc.Longitude,
		Locality: code,
	}

	// Best effort: a reverse lookup usually carries the locality name.
	if addrs, err := geocoder.GeocodingReverse(loc); err == nil {
		for _, a := range addrs {
			if a.City != "" {
				p.Locality = a.City
				break
			}
		}
	}

	return p, nil
}
