package server

import (
	"context"
	"time"

	"github.com/taskmaster/scheduler/internal/infrastructure/logger"
)

// ViewEvictor drops calendar views idle since before the cutoff.
type ViewEvictor interface {
	EvictIdle(now time.Time) int
	ActiveViews() int
}

// Janitor is the periodic background job: it logs a heartbeat and
// evicts idle calendar views.
type Janitor struct {
	interval time.Duration
	views    ViewEvictor
	logger   *logger.Logger
	now      func() time.Time
}

// NewJanitor creates a janitor. A non-positive interval disables it.
func NewJanitor(interval time.Duration, views ViewEvictor, log *logger.Logger) *Janitor {
	return &Janitor{
		interval: interval,
		views:    views,
		logger:   log.WithComponent("janitor"),
		now:      time.Now,
	}
}

// Run ticks until ctx is canceled.
func (j *Janitor) Run(ctx context.Context) {
	if j.interval <= 0 {
		j.logger.Infow("Janitor disabled")
		return
	}

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	j.logger.Infow("Janitor started", "interval", j.interval.String())
	for {
		select {
		case <-ctx.Done():
			j.logger.Infow("Janitor stopped")
			return
		case <-ticker.C:
			j.Tick()
		}
	}
}

// Tick runs one janitor pass.
func (j *Janitor) Tick() int {
	evicted := j.views.EvictIdle(j.now())
	j.logger.Infow("Scheduler heartbeat", "evicted_views", evicted, "open_views", j.views.ActiveViews())
	return evicted
}
