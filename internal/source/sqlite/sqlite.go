// Package sqlite implements history.Source over a bulk-loaded SQLite
// database. The schema mirrors the NOAA GHCND import: a stations table with
// coverage windows and a weather_daily table keyed by (station_id, date).
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/wxlookback/weather-history/internal/history"
)

const dateLayout = "2006-01-02"

// searchRadiusDegrees bounds the candidate scan around the target point.
// Two degrees is roughly 140 miles of latitude.
const searchRadiusDegrees = 2.0

// Store queries stations and daily observations from SQLite.
type Store struct {
	db *sql.DB
}

// Open opens the database read-only-style (single writer, WAL) and verifies
// it is reachable. A failure here is a source-level fault.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", history.ErrSourceUnavailable, err)
	}

	// SQLite supports one writer at a time.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%w: %v", history.ErrSourceUnavailable, err)
		}
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("%w: %v", history.ErrSourceUnavailable, err)
	}

	return &Store{db: db}, nil
}

// NewStore wraps an already-open database handle. Used by tests.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// NearbyStations returns stations within the search box around (lat, lon),
// ordered by squared planar distance, closest first.
func (s *Store) NearbyStations(ctx context.Context, lat, lon float64, limit int) ([]history.Station, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, latitude, longitude, min_date, max_date
		FROM stations
		WHERE latitude BETWEEN ? AND ?
		  AND longitude BETWEEN ? AND ?
		  AND min_date IS NOT NULL
		  AND max_date IS NOT NULL
		ORDER BY (latitude - ?) * (latitude - ?) + (longitude - ?) * (longitude - ?)
		LIMIT ?`,
		lat-searchRadiusDegrees, lat+searchRadiusDegrees,
		lon-searchRadiusDegrees, lon+searchRadiusDegrees,
		lat, lat, lon, lon,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query nearby stations: %w", err)
	}
	defer rows.Close()

	var stations []history.Station
	for rows.Next() {
		var (
			st               history.Station
			minDate, maxDate string
		)
		if err := rows.Scan(&st.ID, &st.Name, &st.Latitude, &st.Longitude, &minDate, &maxDate); err != nil {
			return nil, fmt.Errorf("scan station row: %w", err)
		}

		st.FirstDate, err = time.Parse(dateLayout, minDate)
		if err != nil {
			return nil, fmt.Errorf("station %s: bad min_date %q: %w", st.ID, minDate, err)
		}
		st.LastDate, err = time.Parse(dateLayout, maxDate)
		if err != nil {
			return nil, fmt.Errorf("station %s: bad max_date %q: %w", st.ID, maxDate, err)
		}

		stations = append(stations, st)
	}
	return stations, rows.Err()
}

// HasObservationOn reports whether the station recorded anything for the
// calendar (month, day) in any year.
func (s *Store) HasObservationOn(ctx context.Context, st history.Station, month, day int) (bool, error) {
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM weather_daily
			WHERE station_id = ? AND month = ? AND day = ?
		)`,
		st.ID, month, day,
	).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("same-day existence check: %w", err)
	}
	return exists, nil
}

// Observation returns the station's record for the exact date, or nil when
// no row exists for that day.
func (s *Store) Observation(ctx context.Context, stationID string, date time.Time) (*history.DailyObservation, error) {
	var tmax, tmin, prcp, snow sql.NullInt64
	err := s.db.QueryRowContext(ctx, `
		SELECT tmax, tmin, prcp, snow
		FROM weather_daily
		WHERE station_id = ? AND date = ?`,
		stationID, date.Format(dateLayout),
	).Scan(&tmax, &tmin, &prcp, &snow)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("query observation: %w", err)
	}

	return &history.DailyObservation{
		StationID: stationID,
		Date:      date,
		TMax:      nullableInt(tmax),
		TMin:      nullableInt(tmin),
		Prcp:      nullableInt(prcp),
		Snow:      nullableInt(snow),
	}, nil
}

func nullableInt(v sql.NullInt64) *int {
	if !v.Valid {
		return nil
	}
	n := int(v.Int64)
	return &n
}
