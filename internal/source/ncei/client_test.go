package ncei

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/wxlookback/weather-history/internal/history"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	return NewClient(srv.Client(), "test-token", srv.URL, 2)
}

func TestNearbyStationsParsesAndSorts(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/stations" {
			t.Errorf("path = %s, want /stations", r.URL.Path)
		}
		if r.Header.Get("token") != "test-token" {
			t.Errorf("missing token header")
		}
		if r.URL.Query().Get("datasetid") != "GHCND" {
			t.Errorf("datasetid = %q", r.URL.Query().Get("datasetid"))
		}

		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{
					"id": "GHCND:USW00000002", "name": "FARTHER",
					"latitude": 41.5, "longitude": -74.8,
					"mindate": "1990-01-01", "maxdate": "2024-05-01",
					"datacoverage": 0.95,
				},
				{
					"id": "GHCND:USW00000001", "name": "CLOSER",
					"latitude": 40.75, "longitude": -74.05,
					"mindate": "1990-01-01", "maxdate": "2024-05-01",
					"datacoverage": 1.0,
				},
			},
		})
	})

	stations, err := client.NearbyStations(context.Background(), 40.7, -74.0, 25)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(stations) != 2 {
		t.Fatalf("got %d stations, want 2", len(stations))
	}
	if stations[0].ID != "GHCND:USW00000001" {
		t.Errorf("first station = %s, want the closer one", stations[0].ID)
	}
	if stations[0].Coverage == nil || *stations[0].Coverage != 100 {
		t.Errorf("Coverage = %v, want 100", stations[0].Coverage)
	}
	if stations[0].FirstDate.Year() != 1990 || stations[0].LastDate.Year() != 2024 {
		t.Errorf("coverage window = %v..%v", stations[0].FirstDate, stations[0].LastDate)
	}
}

func TestObservationConvertsArchiveUnits(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/data" {
			t.Errorf("path = %s, want /data", r.URL.Path)
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{
				{"datatype": "TMAX", "value": 300.0},  // 30.0 C -> 86.0 F
				{"datatype": "TMIN", "value": 178.0},  // 17.8 C -> 64.0 F
				{"datatype": "PRCP", "value": 254.0},  // 25.4 mm -> 1.00 in
				{"datatype": "SNOW", "value": 127.0},  // 127 mm -> 5.0 in
			},
		})
	})

	date := time.Date(2019, time.July, 4, 0, 0, 0, 0, time.UTC)
	obs, err := client.Observation(context.Background(), "GHCND:USW00000001", date)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if obs == nil {
		t.Fatal("expected an observation")
	}

	if obs.TMax == nil || *obs.TMax != 860 {
		t.Errorf("TMax = %v, want 860 tenths F", obs.TMax)
	}
	if obs.TMin == nil || *obs.TMin != 640 {
		t.Errorf("TMin = %v, want 640 tenths F", obs.TMin)
	}
	if obs.Prcp == nil || *obs.Prcp != 100 {
		t.Errorf("Prcp = %v, want 100 hundredths in", obs.Prcp)
	}
	if obs.Snow == nil || *obs.Snow != 50 {
		t.Errorf("Snow = %v, want 50 tenths in", obs.Snow)
	}
}

func TestObservationEmptyResults(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{}`))
	})

	date := time.Date(2019, time.July, 4, 0, 0, 0, 0, time.UTC)
	obs, err := client.Observation(context.Background(), "GHCND:USW00000001", date)
	if err != nil {
		t.Fatalf("an empty archive day is not an error: %v", err)
	}
	if obs != nil {
		t.Errorf("obs = %+v, want nil", obs)
	}
}

func TestObservationRetriesServerErrors(t *testing.T) {
	var calls int
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls++
		if calls == 1 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		json.NewEncoder(w).Encode(map[string]any{
			"results": []map[string]any{{"datatype": "TMAX", "value": 300.0}},
		})
	})

	date := time.Date(2019, time.July, 4, 0, 0, 0, 0, time.UTC)
	obs, err := client.Observation(context.Background(), "GHCND:USW00000001", date)
	if err != nil {
		t.Fatalf("unexpected error after retry: %v", err)
	}
	if obs == nil || obs.TMax == nil {
		t.Fatal("expected an observation after the retried call")
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestMissingTokenIsSourceFault(t *testing.T) {
	client := NewClient(http.DefaultClient, "", "", 1)

	_, err := client.NearbyStations(context.Background(), 40.7, -74.0, 25)
	if err == nil {
		t.Fatal("expected a source-level error without a token")
	}
}

func TestHasObservationOnUsesCoverageWindow(t *testing.T) {
	client := NewClient(http.DefaultClient, "test-token", "", 1)

	st := stationWithWindow(2010, 2024)
	ok, err := client.HasObservationOn(context.Background(), st, 7, 4)
	if err != nil || !ok {
		t.Errorf("July 4 falls inside the window: ok=%v err=%v", ok, err)
	}

	// Feb 29 with a window holding no leap year occurrence.
	narrow := stationWithWindow(2021, 2023)
	ok, err = client.HasObservationOn(context.Background(), narrow, 2, 29)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ok {
		t.Error("no Feb 29 exists between 2021 and 2023")
	}
}

func stationWithWindow(firstYear, lastYear int) history.Station {
	return history.Station{
		FirstDate: time.Date(firstYear, time.March, 1, 0, 0, 0, 0, time.UTC),
		LastDate:  time.Date(lastYear, time.October, 1, 0, 0, 0, 0, time.UTC),
	}
}
