// Package ncei implements history.Source against the NCEI Climate Data
// Online archive (GHCND dataset). The archive is queried per station and
// per date with a token and a strict request-rate ceiling, so every call
// goes through a bounded-concurrency gate, retry with backoff, and a
// circuit breaker.
package ncei

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"net/url"
	"sort"
	"time"

	"github.com/sony/gobreaker"

	"github.com/wxlookback/weather-history/internal/history"
)

const (
	// DefaultBaseURL is the CDO v2 API root.
	DefaultBaseURL = "https://www.ncei.noaa.gov/cdo-web/api/v2"

	dateLayout = "2006-01-02"

	// searchRadiusDegrees bounds the station extent query.
	searchRadiusDegrees = 2.0
)

// Client talks to the NCEI archive.
type Client struct {
	token   string
	baseURL string
	client  *http.Client
	bo      backoff
	circuit *gobreaker.CircuitBreaker

	// inflight gates concurrent archive calls so the documented rate
	// ceiling (5 requests/second) is respected.
	inflight chan struct{}
}

// NewClient creates an archive client. maxConcurrent bounds in-flight
// requests; values below 1 are treated as 1.
func NewClient(client *http.Client, token, baseURL string, maxConcurrent int) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if maxConcurrent < 1 {
		maxConcurrent = 1
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "ncei",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		token:   token,
		baseURL: baseURL,
		client:  client,
		bo: backoff{
			maxRetries:      3,
			initialInterval: 500 * time.Millisecond,
			maxInterval:     5 * time.Second,
		},
		circuit:  cb,
		inflight: make(chan struct{}, maxConcurrent),
	}
}

func (c *Client) get(ctx context.Context, path string, query url.Values, out interface{}) error {
	if c.token == "" {
		return fmt.Errorf("%w: ncei token is not configured", history.ErrSourceUnavailable)
	}

	select {
	case c.inflight <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-c.inflight }()

	u := fmt.Sprintf("%s%s?%s", c.baseURL, path, query.Encode())
	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return err
	}
	req.Header.Set("token", c.token)

	resp, err := doRequest(ctx, c.client, c.bo, c.circuit, req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	return json.NewDecoder(resp.Body).Decode(out)
}

// NearbyStations queries GHCND stations inside the extent box around the
// target and orders them by planar distance, closest first.
func (c *Client) NearbyStations(ctx context.Context, lat, lon float64, limit int) ([]history.Station, error) {
	query := url.Values{}
	query.Set("datasetid", "GHCND")
	query.Set("extent", fmt.Sprintf("%f,%f,%f,%f",
		lat-searchRadiusDegrees, lon-searchRadiusDegrees,
		lat+searchRadiusDegrees, lon+searchRadiusDegrees))
	query.Set("limit", fmt.Sprintf("%d", limit))

	var payload struct {
		Results []struct {
			ID           string  `json:"id"`
			Name         string  `json:"name"`
			Latitude     float64 `json:"latitude"`
			Longitude    float64 `json:"longitude"`
			MinDate      string  `json:"mindate"`
			MaxDate      string  `json:"maxdate"`
			DataCoverage float64 `json:"datacoverage"`
		} `json:"results"`
	}

	if err := c.get(ctx, "/stations", query, &payload); err != nil {
		return nil, err
	}

	stations := make([]history.Station, 0, len(payload.Results))
	for _, r := range payload.Results {
		minDate, err := time.Parse(dateLayout, r.MinDate)
		if err != nil {
			continue
		}
		maxDate, err := time.Parse(dateLayout, r.MaxDate)
		if err != nil {
			continue
		}

		coverage := r.DataCoverage * 100
		stations = append(stations, history.Station{
			ID:        r.ID,
			Name:      r.Name,
			Latitude:  r.Latitude,
			Longitude: r.Longitude,
			FirstDate: minDate,
			LastDate:  maxDate,
			Coverage:  &coverage,
		})
	}

	sort.SliceStable(stations, func(i, j int) bool {
		di := (stations[i].Latitude-lat)*(stations[i].Latitude-lat) +
			(stations[i].Longitude-lon)*(stations[i].Longitude-lon)
		dj := (stations[j].Latitude-lat)*(stations[j].Latitude-lat) +
			(stations[j].Longitude-lon)*(stations[j].Longitude-lon)
		return di < dj
	})

	return stations, nil
}

// HasObservationOn approximates same-day data existence from the coverage
// window: probing the archive per candidate would burn the rate budget, so
// a station whose window spans at least one occurrence of (month, day) is
// assumed to have data for it.
func (c *Client) HasObservationOn(_ context.Context, st history.Station, month, day int) (bool, error) {
	for year := st.FirstDate.Year(); year <= st.LastDate.Year(); year++ {
		d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
		if int(d.Month()) != month || d.Day() != day {
			continue
		}
		if !d.Before(st.FirstDate) && !d.After(st.LastDate) {
			return true, nil
		}
	}
	return false, nil
}

// Observation fetches the station's GHCND values for one date. Raw archive
// units are tenths of a degree Celsius for temperatures and tenths of a
// millimetre (PRCP) / millimetres (SNOW) for depth, converted here to the
// archival encodings the core expects.
func (c *Client) Observation(ctx context.Context, stationID string, date time.Time) (*history.DailyObservation, error) {
	day := date.Format(dateLayout)

	query := url.Values{}
	query.Set("datasetid", "GHCND")
	query.Set("stationid", stationID)
	query.Set("startdate", day)
	query.Set("enddate", day)
	query.Set("datatypeid", "TMAX,TMIN,PRCP,SNOW")
	query.Set("limit", "25")

	var payload struct {
		Results []struct {
			DataType string  `json:"datatype"`
			Value    float64 `json:"value"`
		} `json:"results"`
	}

	if err := c.get(ctx, "/data", query, &payload); err != nil {
		return nil, err
	}
	if len(payload.Results) == 0 {
		return nil, nil
	}

	obs := &history.DailyObservation{
		StationID: stationID,
		Date:      date,
	}

	for _, r := range payload.Results {
		switch r.DataType {
		case "TMAX":
			obs.TMax = intPtr(tenthsCToTenthsF(r.Value))
		case "TMIN":
			obs.TMin = intPtr(tenthsCToTenthsF(r.Value))
		case "PRCP":
			// tenths of mm -> hundredths of inch
			obs.Prcp = intPtr(int(math.Round(r.Value / 2.54)))
		case "SNOW":
			// mm -> tenths of inch
			obs.Snow = intPtr(int(math.Round(r.Value / 2.54)))
		}
	}

	if obs.TMax == nil && obs.TMin == nil && obs.Prcp == nil && obs.Snow == nil {
		return nil, nil
	}
	return obs, nil
}

// tenthsCToTenthsF converts tenths of a degree Celsius to tenths of a
// degree Fahrenheit, matching the encoding used by the bulk importer.
func tenthsCToTenthsF(tenthsC float64) int {
	return int(math.Round(tenthsC*9/5 + 320))
}

func intPtr(v int) *int {
	return &v
}
