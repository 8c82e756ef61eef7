package scheduler

import (
	"log"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/wxlookback/weather-history/internal/cache"
)

// Scheduler periodically sweeps expired station-selection memo entries so
// the cache does not grow without bound between requests.
type Scheduler struct {
	scheduler *gocron.Scheduler
	memo      cache.Cache
	interval  time.Duration
}

// New creates a new Scheduler over the given cache.
func New(memo cache.Cache, interval time.Duration) *Scheduler {
	return &Scheduler{
		scheduler: gocron.NewScheduler(time.UTC),
		memo:      memo,
		interval:  interval,
	}
}

// Start schedules the periodic sweep and starts the underlying scheduler.
func (s *Scheduler) Start() error {
	minutes := int(s.interval.Minutes())
	if minutes <= 0 {
		minutes = 60
	}

	_, err := s.scheduler.Every(minutes).Minutes().Do(func() {
		if dropped := s.memo.Sweep(); dropped > 0 {
			log.Printf("scheduler: swept %d expired selection entries", dropped)
		}
	})
	if err != nil {
		return err
	}

	s.scheduler.StartAsync()
	return nil
}

// Stop stops the scheduler and cancels any future jobs.
func (s *Scheduler) Stop() {
	if s.scheduler != nil {
		s.scheduler.Stop()
	}
}
