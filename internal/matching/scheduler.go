// internal/matching/scheduler.go

package matching

import (
	"context"
	"log/slog"
	"time"
)

// Scheduler runs periodic match maintenance
type Scheduler struct {
	service  Service
	logger   *slog.Logger
	interval time.Duration
}

// NewScheduler creates a scheduler that expires stale requests every interval
func NewScheduler(service Service, logger *slog.Logger, interval time.Duration) *Scheduler {
	if interval <= 0 {
		interval = time.Hour
	}
	return &Scheduler{service: service, logger: logger, interval: interval}
}

// Start launches the background jobs. They stop when ctx is cancelled.
func (s *Scheduler) Start(ctx context.Context) {
	go s.runEvery(ctx, "expire stale matches", s.service.ExpireStaleMatches)
}

func (s *Scheduler) runEvery(ctx context.Context, name string, task func(context.Context) error) {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := task(ctx); err != nil {
				s.logger.Error("scheduled task failed", slog.String("task", name), slog.Any("error", err))
			}
		case <-ctx.Done():
			return
		}
	}
}
