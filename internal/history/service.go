package history

import (
	"context"
	"fmt"
	"log"

	"github.com/wxlookback/weather-history/internal/geocode"
)

// DefaultYearsBack is the lookback window applied when a request does not
// specify one.
const DefaultYearsBack = 20

// MaxYearsBack caps the lookback window.
const MaxYearsBack = 50

// Query identifies one history lookup.
type Query struct {
	Lat       float64
	Lon       float64
	Month     int
	Day       int
	YearsBack int
}

func (q Query) validate() error {
	if q.Lat < -90 || q.Lat > 90 {
		return fmt.Errorf("%w: latitude %v out of range", ErrInvalidInput, q.Lat)
	}
	if q.Lon < -180 || q.Lon > 180 {
		return fmt.Errorf("%w: longitude %v out of range", ErrInvalidInput, q.Lon)
	}
	if q.Month < 1 || q.Month > 12 {
		return fmt.Errorf("%w: month %d out of range", ErrInvalidInput, q.Month)
	}
	if q.Day < 1 || q.Day > 31 {
		return fmt.Errorf("%w: day %d out of range", ErrInvalidInput, q.Day)
	}
	if q.YearsBack < 1 || q.YearsBack > MaxYearsBack {
		return fmt.Errorf("%w: yearsBack %d out of range", ErrInvalidInput, q.YearsBack)
	}
	return nil
}

// Service runs the select -> assemble -> summarize pipeline per request.
// Each request is handled independently; the only state shared across
// requests is the selector's memo cache.
type Service struct {
	selector  *Selector
	assembler *Assembler
	geocoder  geocode.Geocoder
}

// NewService creates a Service. The geocoder may be nil when postal-code
// lookups are not configured.
func NewService(selector *Selector, assembler *Assembler, geocoder geocode.Geocoder) *Service {
	return &Service{
		selector:  selector,
		assembler: assembler,
		geocoder:  geocoder,
	}
}

// Lookup resolves a coordinate query to its full history result.
func (s *Service) Lookup(ctx context.Context, q Query) (*HistoryResult, error) {
	if q.YearsBack == 0 {
		q.YearsBack = DefaultYearsBack
	}
	if err := q.validate(); err != nil {
		return nil, err
	}

	station, err := s.selector.Select(ctx, q.Lat, q.Lon, q.Month, q.Day)
	if err != nil {
		return nil, err
	}

	records, err := s.assembler.Assemble(ctx, station, q.Month, q.Day, q.YearsBack)
	if err != nil {
		return nil, err
	}

	result := &HistoryResult{
		Data:  records,
		Stats: Summarize(records, station),
	}
	if trend, ok := Trend(records); ok {
		result.Trend = &trend
	}

	return result, nil
}

// LookupByPostalCode geocodes a postal code and runs the same pipeline.
func (s *Service) LookupByPostalCode(ctx context.Context, code, country string, q Query) (*HistoryResult, error) {
	if s.geocoder == nil {
		return nil, fmt.Errorf("%w: geocoder not configured", ErrSourceUnavailable)
	}
	if code == "" {
		return nil, fmt.Errorf("%w: postal code is required", ErrInvalidInput)
	}

	point, err := s.geocoder.PostalCode(ctx, code, country)
	if err != nil {
		return nil, err
	}

	log.Printf("service: %q resolved to (%.4f, %.4f)", code, point.Lat, point.Lon)

	q.Lat = point.Lat
	q.Lon = point.Lon

	result, err := s.Lookup(ctx, q)
	if err != nil {
		return nil, err
	}
	result.Locality = point.Locality
	return result, nil
}
