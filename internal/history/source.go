package history

import (
	"context"
	"errors"
	"time"
)

var (
	// ErrInvalidInput is returned when lookup parameters are missing or
	// out of range. No partial processing is attempted.
	ErrInvalidInput = errors.New("invalid lookup parameters")

	// ErrNoStation is returned when no eligible station exists for the
	// requested location. This is "no data here", not a transient failure.
	ErrNoStation = errors.New("no eligible station for location")

	// ErrSourceUnavailable is returned when the observation source itself
	// is unreachable or misconfigured.
	ErrSourceUnavailable = errors.New("observation source unavailable")
)

// Source abstracts an observation data source (bulk-loaded SQLite, remote
// NCEI archive). The core is source-agnostic: it only needs candidate
// stations near a point and single-date observations.
type Source interface {
	// NearbyStations returns candidate stations around (lat, lon) with
	// their coverage metadata, closest first, at most limit entries.
	NearbyStations(ctx context.Context, lat, lon float64, limit int) ([]Station, error)

	// HasObservationOn reports whether the station has at least one
	// observation for the given calendar (month, day) across any year.
	HasObservationOn(ctx context.Context, st Station, month, day int) (bool, error)

	// Observation returns the station's observation for the exact date,
	// or (nil, nil) when no data was recorded for that day.
	Observation(ctx context.Context, stationID string, date time.Time) (*DailyObservation, error)
}
