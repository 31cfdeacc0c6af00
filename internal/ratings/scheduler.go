package ratings

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog/log"
)

// RefreshFunc recomputes rating summaries
type RefreshFunc func(ctx context.Context) (int64, error)

// Scheduler runs the rating refresh on a fixed interval
type Scheduler struct {
	cron     *cron.Cron
	refresh  RefreshFunc
	schedule string

	// initial tracks the refresh Start runs outside the cron loop
	initial sync.WaitGroup

	mu      sync.Mutex
	running bool
	lastRun time.Time
	lastErr error
}

// NewScheduler creates a scheduler that fires every interval
func NewScheduler(refresh RefreshFunc, interval time.Duration) *Scheduler {
	return &Scheduler{
		cron:     cron.New(),
		refresh:  refresh,
		schedule: fmt.Sprintf("@every %s", interval),
	}
}

// Start registers the job and starts the scheduler. One refresh runs
// immediately so summaries exist without waiting for the first tick.
func (s *Scheduler) Start(ctx context.Context) error {
	s.mu.Lock()
	if s.running {
		s.mu.Unlock()
		return fmt.Errorf("scheduler already running")
	}
	s.running = true
	s.mu.Unlock()

	if _, err := s.cron.AddFunc(s.schedule, func() { s.run(ctx) }); err != nil {
		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	log.Info().Str("schedule", s.schedule).Msg("Rating refresh scheduler started")

	s.initial.Add(1)
	go func() {
		defer s.initial.Done()
		s.run(ctx)
	}()
	return nil
}

// Stop shuts down the scheduler and waits for a running refresh to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.running {
		s.mu.Unlock()
		return
	}
	s.running = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	s.initial.Wait()
	log.Info().Msg("Rating refresh scheduler stopped")
}

// LastRun returns the time and error of the last refresh
func (s *Scheduler) LastRun() (time.Time, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastRun, s.lastErr
}

func (s *Scheduler) run(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	_, err := s.refresh(ctx)
	if err != nil {
		log.Error().Err(err).Msg("Rating refresh failed")
	}

	s.mu.Lock()
	s.lastRun = time.Now()
	s.lastErr = err
	s.mu.Unlock()
}
