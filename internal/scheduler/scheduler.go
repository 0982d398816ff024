package scheduler

import (
	"context"
	"log/slog"
	"time"

	"corpora/internal/domain"
)

// Collector runs one collection pass.
type Collector interface {
	Collect(ctx context.Context) (*domain.CollectReport, error)
}

type Scheduler struct {
	collector Collector
	interval  time.Duration
	logger    *slog.Logger
	// onReport, if set, receives every completed report.
	onReport func(*domain.CollectReport)
}

func NewScheduler(collector Collector, interval time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		collector: collector,
		interval:  interval,
		logger:    logger.With("component", "scheduler"),
	}
}

// OnReport registers fn to be called after each successful pass.
func (s *Scheduler) OnReport(fn func(*domain.CollectReport)) {
	s.onReport = fn
}

// Start collects immediately and then every interval until ctx is done.
// A pass may run for as long as it needs; ticks that fire meanwhile are
// dropped.
func (s *Scheduler) Start(ctx context.Context) error {
	s.logger.Info("scheduler started", "interval", s.interval)

	s.runCollect(ctx)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			s.logger.Info("scheduler stopped")
			return ctx.Err()
		case <-ticker.C:
			s.runCollect(ctx)
		}
	}
}

func (s *Scheduler) runCollect(ctx context.Context) {
	report, err := s.collector.Collect(ctx)
	if err != nil {
		if ctx.Err() == nil {
			s.logger.Error("collection failed", "error", err)
		}
		return
	}
	if s.onReport != nil {
		s.onReport(report)
	}
}
