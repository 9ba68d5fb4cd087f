// Package scheduler triggers recurring batch scans on a fixed interval.
package scheduler

import (
	"context"
	"errors"
	"time"

	"github.com/SercanAkan88/siteguard/internal/logging"
	"github.com/SercanAkan88/siteguard/internal/orchestrator"
)

// Scheduler runs the orchestrator's batch scan every Interval until its
// context is canceled.
type Scheduler struct {
	interval time.Duration
	orch     *orchestrator.Orchestrator
	logger   logging.Logger
}

func New(interval time.Duration, orch *orchestrator.Orchestrator, logger logging.Logger) (*Scheduler, error) {
	if orch == nil {
		return nil, errors.New("scheduler: nil orchestrator")
	}
	if logger == nil {
		return nil, errors.New("scheduler: nil logger")
	}
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{
		interval: interval,
		orch:     orch,
		logger:   logger.With(logging.Field{Key: "component", Value: "scheduler"}),
	}, nil
}

// Run blocks until ctx is canceled. The first batch runs after one full
// interval, matching cron-at-minute-zero behavior rather than firing
// immediately at startup.
func (s *Scheduler) Run(ctx context.Context) {
	s.logger.Info("scheduler started", logging.Field{Key: "interval", Value: s.interval.String()})

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return
		case <-ticker.C:
			s.orch.RunBatchScan(ctx)
		}
	}
}
