// Package tasks drives the periodic run trigger.
package tasks

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/YoungPup/Apartment-Scraper/app/runner"
)

type RunnerInterface interface {
	RunOnce(ctx context.Context) (*runner.Summary, error)
}

var _ RunnerInterface = (*runner.Runner)(nil)

// Scheduler fires one run at startup and one per interval. A trigger
// that lands while the previous run is still in flight is skipped;
// there is no catch-up queue, the next tick retries naturally.
type Scheduler struct {
	runner   RunnerInterface
	interval time.Duration
	ctx      context.Context
	cancel   context.CancelFunc
	wg       sync.WaitGroup
}

func NewScheduler(r RunnerInterface, interval time.Duration) *Scheduler {
	ctx, cancel := context.WithCancel(context.Background())

	return &Scheduler{
		runner:   r,
		interval: interval,
		ctx:      ctx,
		cancel:   cancel,
	}
}

func (s *Scheduler) Start() {
	s.wg.Add(1)
	go func() {
		defer s.wg.Done()

		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()

		s.trigger()

		for {
			select {
			case <-s.ctx.Done():
				return
			case <-ticker.C:
				s.trigger()
			}
		}
	}()
}

func (s *Scheduler) Stop() {
	s.cancel()
	s.wg.Wait()
}

func (s *Scheduler) trigger() {
	summary, err := s.runner.RunOnce(s.ctx)
	if err != nil {
		if errors.Is(err, runner.ErrRunInProgress) {
			slog.Warn("Previous run still in progress, skipping trigger")
			return
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		slog.Error("Run failed", "error", err)
		return
	}

	slog.Debug("Scheduled run finished",
		"duration", summary.Duration.String(),
		"novel", summary.Novel,
		"dispatched", summary.Dispatched)
}
