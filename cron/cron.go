package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Job is one periodic task. Run reports how many items it handled.
type Job interface {
	Run(ctx context.Context) (int, error)
}

// Scheduler runs the background jobs of the scheduling service.
type Scheduler struct {
	cron    *cron.Cron
	log     zerolog.Logger
	timeout time.Duration
}

func NewScheduler(loc *time.Location, log zerolog.Logger) *Scheduler {
	if loc == nil {
		loc = time.UTC
	}
	return &Scheduler{
		// A run that is still going when the next tick fires is skipped.
		cron:    cron.New(cron.WithLocation(loc), cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger))),
		log:     log,
		timeout: time.Minute,
	}
}

// Add schedules job under name with a standard five field spec.
func (s *Scheduler) Add(name, spec string, job Job) error {
	_, err := s.cron.AddFunc(spec, func() {
		s.runOnce(name, job)
	})
	if err != nil {
		return fmt.Errorf("cron: schedule %s (%q): %w", name, spec, err)
	}
	return nil
}

func (s *Scheduler) runOnce(name string, job Job) {
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()

	start := time.Now()
	n, err := job.Run(ctx)
	if err != nil {
		s.log.Error().Err(err).Str("job", name).Msg("cron job failed")
		return
	}
	s.log.Debug().Str("job", name).Int("handled", n).Dur("took", time.Since(start)).Msg("cron job finished")
}

// Start the cron job scheduler
func (s *Scheduler) Start() {
	s.cron.Start()
	s.log.Info().Int("jobs", len(s.cron.Entries())).Msg("cron job scheduler started")
}

// Stop prevents new runs and waits for running ones to finish or ctx to end.
func (s *Scheduler) Stop(ctx context.Context) {
	done := s.cron.Stop()
	select {
	case <-done.Done():
	case <-ctx.Done():
	}
}
