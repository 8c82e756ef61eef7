package history

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/wxlookback/weather-history/internal/cache"
)

// ScoringWeights holds the tunable constants for station scoring. Kept as
// named configuration so selection control flow and weighting can be tested
// independently.
type ScoringWeights struct {
	// Network class bonuses. Official (first-order) stations outrank
	// cooperative stations, which outrank everything else.
	OfficialBonus    float64
	CooperativeBonus float64

	// CoverageWeight is credit per point of documented coverage fraction
	// (0-100 scale).
	CoverageWeight float64

	// YearSpanWeight is credit per year of historical span, capped at
	// YearSpanCap years.
	YearSpanWeight float64
	YearSpanCap    int

	// RecentBonus applies when the station's most recent data falls in
	// the current year.
	RecentBonus float64
}

// DefaultScoringWeights returns the production weighting.
func DefaultScoringWeights() ScoringWeights {
	return ScoringWeights{
		OfficialBonus:    1000,
		CooperativeBonus: 500,
		CoverageWeight:   1,
		YearSpanWeight:   1,
		YearSpanCap:      50,
		RecentBonus:      25,
	}
}

// Score computes the composite score for a station. Pure: depends only on
// the station's attributes, the weights, and the supplied clock reading.
func (w ScoringWeights) Score(st Station, now time.Time) float64 {
	var score float64

	switch st.Network() {
	case NetworkOfficial:
		score += w.OfficialBonus
	case NetworkCooperative:
		score += w.CooperativeBonus
	}

	if st.Coverage != nil {
		score += w.CoverageWeight * *st.Coverage
	}

	span := st.LastDate.Year() - st.FirstDate.Year()
	if span > w.YearSpanCap {
		span = w.YearSpanCap
	}
	if span > 0 {
		score += w.YearSpanWeight * float64(span)
	}

	if st.LastDate.Year() == now.Year() {
		score += w.RecentBonus
	}

	return score
}

// SelectorConfig bundles selection tunables.
type SelectorConfig struct {
	// RecencyWindow is how far back a station's latest data may lie and
	// still count as live. Stale stations are excluded even when closest.
	RecencyWindow time.Duration

	// CandidateLimit caps how many nearby stations are considered.
	CandidateLimit int

	// CacheTTL bounds how long a selection is memoized per coordinate.
	CacheTTL time.Duration

	Weights ScoringWeights
}

// DefaultSelectorConfig returns the production selection tunables.
func DefaultSelectorConfig() SelectorConfig {
	return SelectorConfig{
		RecencyWindow:  18 * 30 * 24 * time.Hour, // roughly 18 months
		CandidateLimit: 25,
		CacheTTL:       24 * time.Hour,
		Weights:        DefaultScoringWeights(),
	}
}

// Selector picks the best station to source observations from for a target
// coordinate. Selections are memoized in a TTL cache keyed by rounded
// coordinate so repeated lookups skip the candidate scan.
type Selector struct {
	source Source
	memo   cache.Cache
	cfg    SelectorConfig

	now func() time.Time
}

// NewSelector creates a Selector. Pass cache.Noop{} to disable memoization.
func NewSelector(source Source, memo cache.Cache, cfg SelectorConfig) *Selector {
	return &Selector{
		source: source,
		memo:   memo,
		cfg:    cfg,
		now:    time.Now,
	}
}

func memoKey(lat, lon float64, month, day int) string {
	return fmt.Sprintf("%.2f:%.2f:%02d-%02d", lat, lon, month, day)
}

// Select returns the best eligible station for (lat, lon) and the target
// (month, day), or ErrNoStation when none qualifies.
func (s *Selector) Select(ctx context.Context, lat, lon float64, month, day int) (Station, error) {
	key := memoKey(lat, lon, month, day)
	if v, ok := s.memo.Get(key); ok {
		if st, ok := v.(Station); ok {
			return st, nil
		}
	}

	candidates, err := s.source.NearbyStations(ctx, lat, lon, s.cfg.CandidateLimit)
	if err != nil {
		return Station{}, err
	}
	if len(candidates) == 0 {
		return Station{}, ErrNoStation
	}

	now := s.now()
	cutoff := now.Add(-s.cfg.RecencyWindow)

	best := Station{}
	bestScore := 0.0
	bestDist := 0.0
	found := false

	for _, st := range candidates {
		if st.LastDate.Before(cutoff) {
			continue
		}

		ok, err := s.source.HasObservationOn(ctx, st, month, day)
		if err != nil {
			log.Printf("selector: same-day check failed for %s: %v", st.ID, err)
			continue
		}
		if !ok {
			continue
		}

		score := s.cfg.Weights.Score(st, now)
		dist := squaredDistance(lat, lon, st.Latitude, st.Longitude)

		if !found || score > bestScore || (score == bestScore && dist < bestDist) {
			best = st
			bestScore = score
			bestDist = dist
			found = true
		}
	}

	if !found {
		return Station{}, ErrNoStation
	}

	s.memo.Set(key, best, s.cfg.CacheTTL)
	return best, nil
}

// squaredDistance is planar squared distance on raw lat/lon. Candidates all
// sit within a few degrees of the target, so the flat-earth approximation
// is fine for ordering.
func squaredDistance(lat1, lon1, lat2, lon2 float64) float64 {
	dLat := lat1 - lat2
	dLon := lon1 - lon2
	return dLat*dLat + dLon*dLon
}
