package scheduler

import (
	"context"
	"log/slog"
	"time"
)

// Poller is one step of a watch cycle.
type Poller interface {
	Name() string
	Poll(ctx context.Context) error
}

// Scheduler owns the main loop: ticks on an interval and runs each poller sequentially.
type Scheduler struct {
	pollers  []Poller
	interval time.Duration
	pause    time.Duration // gap between two pollers of the same cycle
	logger   *slog.Logger
}

// NewScheduler creates a scheduler that runs every poller once per interval.
func NewScheduler(pollers []Poller, interval, pause time.Duration, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		pollers:  pollers,
		interval: interval,
		pause:    pause,
		logger:   logger,
	}
}

// Run starts the polling loop. It runs one immediate cycle, then waits the
// configured interval between cycles. It returns nil when ctx is cancelled.
func (s *Scheduler) Run(ctx context.Context) error {
	s.logger.Info("starting scheduler",
		"interval", s.interval.String(),
		"pollers", len(s.pollers),
	)

	for {
		s.RunOnce(ctx)

		select {
		case <-ctx.Done():
			s.logger.Info("shutting down scheduler")
			return nil
		case <-time.After(s.interval):
		}
	}
}

// RunOnce runs every poller once, in order. A failing poller is logged and
// does not stop the ones after it. It reports how many pollers failed.
func (s *Scheduler) RunOnce(ctx context.Context) int {
	failed := 0
	for i, p := range s.pollers {
		if ctx.Err() != nil {
			return failed
		}

		start := time.Now()
		if err := p.Poll(ctx); err != nil {
			failed++
			s.logger.Error("poll failed", "poller", p.Name(), "error", err)
		} else {
			s.logger.Debug("poll finished", "poller", p.Name(), "took", time.Since(start).Round(time.Millisecond))
		}

		if i < len(s.pollers)-1 && s.pause > 0 {
			select {
			case <-ctx.Done():
				return failed
			case <-time.After(s.pause):
			}
		}
	}
	return failed
}
