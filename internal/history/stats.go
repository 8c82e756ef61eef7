package history

// Summarize reduces a per-year series to summary statistics. Means are
// taken over records where the field is present; absent values never count
// toward numerator or denominator. Warmest/coldest use a stable reduce:
// the first year encountered wins ties.
func Summarize(records []YearRecord, station Station) SummaryStatistics {
	stats := SummaryStatistics{
		DataPoints:  len(records),
		StationID:   station.ID,
		StationName: station.Name,
	}

	var (
		sumHigh, sumLow   float64
		numHighs, numLows int
	)

	for _, rec := range records {
		if rec.High != nil {
			sumHigh += float64(*rec.High)
			numHighs++
		}
		if rec.Low != nil {
			sumLow += float64(*rec.Low)
			numLows++
		}

		if rec.Avg == nil {
			continue
		}
		if stats.WarmestYear == nil || *rec.Avg > stats.WarmestYear.Temp {
			stats.WarmestYear = &YearTemp{Year: rec.Year, Temp: *rec.Avg}
		}
		if stats.ColdestYear == nil || *rec.Avg < stats.ColdestYear.Temp {
			stats.ColdestYear = &YearTemp{Year: rec.Year, Temp: *rec.Avg}
		}
	}

	if numHighs > 0 {
		avgHigh := sumHigh / float64(numHighs)
		stats.AvgHigh = &avgHigh
	}
	if numLows > 0 {
		avgLow := sumLow / float64(numLows)
		stats.AvgLow = &avgLow
	}

	return stats
}

// trendStableThreshold is the slope magnitude, in degrees per decade, below
// which a trend is reported as stable.
const trendStableThreshold = 0.3

// minTrendPoints is the minimum number of present averages required for a
// meaningful fit.
const minTrendPoints = 3

// Trend fits an ordinary least-squares line of average temperature against
// year and reports the slope in degrees per decade. Returns false when
// fewer than three records carry an average.
func Trend(records []YearRecord) (TrendResult, bool) {
	var (
		n                        float64
		sumX, sumY, sumXY, sumXX float64
	)

	for _, rec := range records {
		if rec.Avg == nil {
			continue
		}
		x := float64(rec.Year)
		y := float64(*rec.Avg)
		n++
		sumX += x
		sumY += y
		sumXY += x * y
		sumXX += x * x
	}

	if n < minTrendPoints {
		return TrendResult{}, false
	}

	denom := n*sumXX - sumX*sumX
	if denom == 0 {
		// All years identical; cannot occur with distinct years but must
		// not divide by zero.
		return TrendResult{SlopePerDecade: 0, Direction: TrendStable}, true
	}

	slope := (n*sumXY - sumX*sumY) / denom
	perDecade := slope * 10

	result := TrendResult{SlopePerDecade: perDecade}
	switch {
	case perDecade >= trendStableThreshold:
		result.Direction = TrendWarming
	case perDecade <= -trendStableThreshold:
		result.Direction = TrendCooling
	default:
		result.Direction = TrendStable
	}

	return result, true
}
