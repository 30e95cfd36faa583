package usecase

import (
	"context"
	"log/slog"
	"time"

	"StockResearch/internal/ports"
)

// Scheduler wires the interval driver with the research use case.
type Scheduler struct {
	driver   ports.Scheduler
	research *Research
	opts     RunOptions
	log      *slog.Logger
}

// NewScheduler returns a helper to start/stop recurring research runs.
func NewScheduler(driver ports.Scheduler, research *Research, opts RunOptions, log *slog.Logger) *Scheduler {
	if log == nil {
		log = slog.Default()
	}
	return &Scheduler{driver: driver, research: research, opts: opts, log: log}
}

// Start registers the research run with the provided scheduler. A failed
// run is logged and the schedule keeps going.
func (s *Scheduler) Start(ctx context.Context) error {
	if s.driver == nil || s.research == nil {
		return nil
	}

	job := func(trigger time.Time) {
		req, err := s.research.Run(ctx, s.opts)
		if err != nil {
			s.log.Error("scheduled research failed", "trigger", trigger, "error", err)
			return
		}
		s.log.Info("scheduled research done", "trigger", trigger, "ticker", req.Ticker, "response_id", req.ResponseID)
	}

	return s.driver.Start(ctx, job)
}

// Stop gracefully tears down the underlying scheduler.
func (s *Scheduler) Stop(ctx context.Context) error {
	if s.driver == nil {
		return nil
	}

	return s.driver.Stop(ctx)
}
