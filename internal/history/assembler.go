package history

import (
	"context"
	"log"
	"math"
	"sync"
	"time"
)

// AssemblerConfig bundles assembly tunables.
type AssemblerConfig struct {
	// MaxInFlight bounds concurrent per-year lookups so remote sources
	// stay inside their rate ceiling.
	MaxInFlight int

	// FetchTimeout caps each individual year lookup.
	FetchTimeout time.Duration
}

// DefaultAssemblerConfig returns the production assembly tunables.
func DefaultAssemblerConfig() AssemblerConfig {
	return AssemblerConfig{
		MaxInFlight:  4,
		FetchTimeout: 10 * time.Second,
	}
}

// Assembler builds the per-year observation series for a fixed month/day
// target across a rolling window of years.
type Assembler struct {
	source Source
	cfg    AssemblerConfig

	now func() time.Time
}

// NewAssembler creates an Assembler over the given source.
func NewAssembler(source Source, cfg AssemblerConfig) *Assembler {
	if cfg.MaxInFlight <= 0 {
		cfg.MaxInFlight = 1
	}
	return &Assembler{
		source: source,
		cfg:    cfg,
		now:    time.Now,
	}
}

// Assemble returns YearRecords for (month, day) over the inclusive window
// [currentYear-yearsBack, currentYear-1], most recent year first. Years
// with no observation are omitted, never zero-filled. A lookup failure for
// one year is absorbed as a gap and does not abort the others.
func (a *Assembler) Assemble(ctx context.Context, station Station, month, day, yearsBack int) ([]YearRecord, error) {
	currentYear := a.now().Year()

	type slot struct {
		year int
		rec  *YearRecord
	}

	slots := make([]slot, 0, yearsBack)
	for year := currentYear - 1; year >= currentYear-yearsBack; year-- {
		slots = append(slots, slot{year: year})
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, a.cfg.MaxInFlight)

	for i := range slots {
		date, ok := calendarDate(slots[i].year, month, day)
		if !ok {
			// Feb 29 in a non-leap year: no such date, skip the year.
			continue
		}

		wg.Add(1)
		go func(i int, date time.Time) {
			defer wg.Done()

			select {
			case sem <- struct{}{}:
			case <-ctx.Done():
				return
			}
			defer func() { <-sem }()

			fetchCtx, cancel := context.WithTimeout(ctx, a.cfg.FetchTimeout)
			defer cancel()

			obs, err := a.source.Observation(fetchCtx, station.ID, date)
			if err != nil {
				// Recorded as a gap; the other years proceed.
				log.Printf("assembler: lookup failed for %s %s: %v", station.ID, date.Format("2006-01-02"), err)
				return
			}
			if obs == nil {
				return
			}

			rec := buildYearRecord(date, obs)
			slots[i].rec = &rec
		}(i, date)
	}

	wg.Wait()

	records := make([]YearRecord, 0, len(slots))
	for _, s := range slots {
		if s.rec != nil {
			records = append(records, *s.rec)
		}
	}
	return records, nil
}

// calendarDate returns the UTC date for (year, month, day), reporting false
// when the combination does not exist in that year.
func calendarDate(year, month, day int) (time.Time, bool) {
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)
	if d.Year() != year || int(d.Month()) != month || d.Day() != day {
		return time.Time{}, false
	}
	return d, true
}

func buildYearRecord(date time.Time, obs *DailyObservation) YearRecord {
	rec := YearRecord{
		Year:   date.Year(),
		Date:   date.Format("January 2, 2006"),
		High:   DisplayTemp(obs.TMax),
		Low:    DisplayTemp(obs.TMin),
		Precip: DisplayPrecip(obs.Prcp),
		Snow:   DisplaySnow(obs.Snow),
	}

	// Average is derived from high and low only when both are present.
	if rec.High != nil && rec.Low != nil {
		avg := int(math.Round(float64(*rec.High+*rec.Low) / 2))
		rec.Avg = &avg
	}

	return rec
}
