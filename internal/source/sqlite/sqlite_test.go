package sqlite

import (
	"context"
	"database/sql"
	"testing"
	"time"
)

const testSchema = `
CREATE TABLE stations (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	latitude REAL NOT NULL,
	longitude REAL NOT NULL,
	elevation REAL,
	min_date TEXT,
	max_date TEXT
);
CREATE TABLE weather_daily (
	station_id TEXT NOT NULL,
	date TEXT NOT NULL,
	month INTEGER NOT NULL,
	day INTEGER NOT NULL,
	tmax INTEGER,
	tmin INTEGER,
	prcp INTEGER,
	snow INTEGER,
	PRIMARY KEY (station_id, date)
);
`

func newTestStore(t *testing.T) *Store {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("open in-memory db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(testSchema); err != nil {
		t.Fatalf("create schema: %v", err)
	}

	return NewStore(db)
}

func insertStation(t *testing.T, s *Store, id, name string, lat, lon float64, minDate, maxDate string) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO stations (id, name, latitude, longitude, min_date, max_date) VALUES (?, ?, ?, ?, ?, ?)`,
		id, name, lat, lon, minDate, maxDate,
	)
	if err != nil {
		t.Fatalf("insert station: %v", err)
	}
}

func insertObservation(t *testing.T, s *Store, stationID, date string, month, day int, tmax, tmin any) {
	t.Helper()
	_, err := s.db.Exec(
		`INSERT INTO weather_daily (station_id, date, month, day, tmax, tmin) VALUES (?, ?, ?, ?, ?, ?)`,
		stationID, date, month, day, tmax, tmin,
	)
	if err != nil {
		t.Fatalf("insert observation: %v", err)
	}
}

func TestNearbyStationsOrderedByDistance(t *testing.T) {
	s := newTestStore(t)
	insertStation(t, s, "USW00000002", "FARTHER", 41.50, -74.80, "1990-01-01", "2024-05-01")
	insertStation(t, s, "USW00000001", "CLOSER", 40.75, -74.05, "1990-01-01", "2024-05-01")
	insertStation(t, s, "USW00000003", "OUTSIDE BOX", 47.00, -90.00, "1990-01-01", "2024-05-01")

	stations, err := s.NearbyStations(context.Background(), 40.7, -74.0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stations) != 2 {
		t.Fatalf("got %d stations, want 2 inside the search box", len(stations))
	}
	if stations[0].ID != "USW00000001" || stations[1].ID != "USW00000002" {
		t.Errorf("order = [%s, %s], want closest first", stations[0].ID, stations[1].ID)
	}

	if stations[0].FirstDate.Year() != 1990 {
		t.Errorf("FirstDate year = %d, want 1990", stations[0].FirstDate.Year())
	}
	if stations[0].LastDate.Year() != 2024 {
		t.Errorf("LastDate year = %d, want 2024", stations[0].LastDate.Year())
	}
}

func TestNearbyStationsSkipsMissingCoverage(t *testing.T) {
	s := newTestStore(t)
	insertStation(t, s, "USW00000001", "NO DATES", 40.75, -74.05, "", "")
	_, err := s.db.Exec(`UPDATE stations SET min_date = NULL, max_date = NULL`)
	if err != nil {
		t.Fatalf("null out dates: %v", err)
	}

	stations, err := s.NearbyStations(context.Background(), 40.7, -74.0, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(stations) != 0 {
		t.Errorf("got %d stations, want 0 without coverage windows", len(stations))
	}
}

func TestHasObservationOn(t *testing.T) {
	s := newTestStore(t)
	insertStation(t, s, "USW00000001", "TEST", 40.75, -74.05, "1990-01-01", "2024-05-01")
	insertObservation(t, s, "USW00000001", "2019-07-04", 7, 4, 850, 650)

	st, err := s.NearbyStations(context.Background(), 40.7, -74.0, 1)
	if err != nil || len(st) != 1 {
		t.Fatalf("seed station lookup failed: %v", err)
	}

	ok, err := s.HasObservationOn(context.Background(), st[0], 7, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !ok {
		t.Error("expected same-day data for July 4")
	}

	ok, err = s.HasObservationOn(context.Background(), st[0], 12, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("expected no data for December 25")
	}
}

func TestObservation(t *testing.T) {
	s := newTestStore(t)
	insertObservation(t, s, "USW00000001", "2019-07-04", 7, 4, 850, nil)

	date := time.Date(2019, time.July, 4, 0, 0, 0, 0, time.UTC)
	obs, err := s.Observation(context.Background(), "USW00000001", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs == nil {
		t.Fatal("expected an observation")
	}
	if obs.TMax == nil || *obs.TMax != 850 {
		t.Errorf("TMax = %v, want 850", obs.TMax)
	}
	if obs.TMin != nil {
		t.Errorf("TMin = %v, want nil for NULL column", obs.TMin)
	}
	if obs.Prcp != nil || obs.Snow != nil {
		t.Error("Prcp/Snow should be nil for NULL columns")
	}
}

func TestObservationMissingDay(t *testing.T) {
	s := newTestStore(t)

	date := time.Date(2019, time.July, 4, 0, 0, 0, 0, time.UTC)
	obs, err := s.Observation(context.Background(), "USW00000001", date)
	if err != nil {
		t.Fatalf("a missing day is not an error: %v", err)
	}
	if obs != nil {
		t.Errorf("obs = %+v, want nil", obs)
	}
}
