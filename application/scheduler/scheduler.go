package scheduler

import (
	"context"
	"time"

	"github.com/carlosrabelo/swhealth/internal/logger"
)

// TaskRunner defines one health check pass.
type TaskRunner interface {
	Run(ctx context.Context) error
}

// RunnerFunc adapts a plain function to TaskRunner.
type RunnerFunc func(ctx context.Context) error

// Run calls f(ctx).
func (f RunnerFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Scheduler repeats a run on a fixed interval.
type Scheduler struct {
	interval time.Duration
	runner   TaskRunner
	log      logger.Logger
}

// New creates scheduler.
func New(interval time.Duration, runner TaskRunner, log logger.Logger) *Scheduler {
	return &Scheduler{interval: interval, runner: runner, log: log}
}

// Start runs once immediately and then on every tick until ctx is done.
// Runs never overlap; ticks that fire during a run are dropped.
func (s *Scheduler) Start(ctx context.Context) {
	if s.interval <= 0 {
		s.log.Error().Dur("interval", s.interval).Msg("invalid scheduler interval")
		return
	}

	s.runOnce(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			s.log.Info().Msg("scheduler stopped")
			return
		case <-ticker.C:
			s.runOnce(ctx)
		}
	}
}

func (s *Scheduler) runOnce(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}
	if err := s.runner.Run(ctx); err != nil {
		s.log.Error().Err(err).Msg("scheduled run error")
	}
}
