package history

import (
	"strings"
	"time"
)

// Network classifies a station by the observing network it belongs to.
// GHCND identifiers encode the network in their prefix: USW stations are
// first-order (ASOS/airport) sites, USC stations belong to the cooperative
// observer program, everything else is citizen or legacy equipment.
type Network string

const (
	NetworkOfficial    Network = "official"
	NetworkCooperative Network = "cooperative"
	NetworkOther       Network = "other"
)

// ClassifyStation derives the network class from a GHCND station identifier.
func ClassifyStation(id string) Network {
	id = strings.TrimPrefix(id, "GHCND:")
	switch {
	case strings.HasPrefix(id, "USW"):
		return NetworkOfficial
	case strings.HasPrefix(id, "USC"):
		return NetworkCooperative
	default:
		return NetworkOther
	}
}

// Station is a fixed observation point with coverage metadata.
// Loaded once per request by the source and treated as immutable.
type Station struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`

	// Coverage window: earliest and latest date with any recorded data.
	FirstDate time.Time `json:"firstDate"`
	LastDate  time.Time `json:"lastDate"`

	// Coverage is the documented data-coverage fraction on a 0-100 scale.
	// Not every source reports it.
	Coverage *float64 `json:"coverage,omitempty"`
}

// Network returns the network class for this station.
func (s Station) Network() Network {
	return ClassifyStation(s.ID)
}

// DailyObservation is one station's recorded values for one calendar date,
// in archival integer units: temperatures in tenths of a degree Fahrenheit,
// precipitation in hundredths of an inch, snowfall in tenths of an inch.
// A nil field means "not recorded" and is never coerced to zero.
type DailyObservation struct {
	StationID string
	Date      time.Time
	TMax      *int
	TMin      *int
	Prcp      *int
	Snow      *int
}

// YearRecord is the per-year normalized view of an observation for a fixed
// month/day target, in display units. Nil fields marshal as JSON null.
type YearRecord struct {
	Year   int      `json:"year"`
	Date   string   `json:"date"`
	High   *int     `json:"high"`
	Low    *int     `json:"low"`
	Avg    *int     `json:"avg"`
	Precip *float64 `json:"precip"`
	Snow   *float64 `json:"snow"`
}

// YearTemp pairs a year with its average temperature.
type YearTemp struct {
	Year int `json:"year"`
	Temp int `json:"temp"`
}

// SummaryStatistics aggregates a series of YearRecords.
type SummaryStatistics struct {
	AvgHigh     *float64  `json:"avgHigh"`
	AvgLow      *float64  `json:"avgLow"`
	WarmestYear *YearTemp `json:"warmestYear"`
	ColdestYear *YearTemp `json:"coldestYear"`
	DataPoints  int       `json:"dataPoints"`
	StationID   string    `json:"stationId,omitempty"`
	StationName string    `json:"stationName,omitempty"`
}

// TrendDirection classifies the sign of a temperature trend.
type TrendDirection string

const (
	TrendWarming TrendDirection = "warming"
	TrendCooling TrendDirection = "cooling"
	TrendStable  TrendDirection = "stable"
)

// TrendResult is the fitted linear trend of average temperature over the
// assembled years, expressed in degrees per decade.
type TrendResult struct {
	SlopePerDecade float64        `json:"slopePerDecade"`
	Direction      TrendDirection `json:"direction"`
}

// HistoryResult is the full response for one lookup: the per-year series
// (most recent year first), summary statistics, and the trend when defined.
type HistoryResult struct {
	Data     []YearRecord      `json:"data"`
	Stats    SummaryStatistics `json:"stats"`
	Trend    *TrendResult      `json:"trend"`
	Locality string            `json:"locality,omitempty"`
}
