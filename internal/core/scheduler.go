package core

// scheduler.go runs the incremental sync of one source on a fixed interval.
//
// The scheduler is long-running and context-aware for graceful shutdown.
// A failed run is logged and retried on the next tick; it never stops the
// scheduler.

import (
	"context"
	"errors"
	"log/slog"
	"time"
)

// DefaultSyncInterval is how often the scheduled sync runs.
const DefaultSyncInterval = 6 * time.Hour

// SchedulerConfig holds configuration for the sync scheduler.
type SchedulerConfig struct {
	Source     string        // Source to sync (default: google-sheets)
	Interval   time.Duration // How often to run (default: 6h)
	RunOnStart bool          // Sync once immediately on start
}

// StartSyncScheduler blocks, syncing cfg.Source every cfg.Interval until
// ctx is cancelled.
func (s *Service) StartSyncScheduler(ctx context.Context, cfg SchedulerConfig) {
	if cfg.Source == "" {
		cfg.Source = "google-sheets"
	}
	if cfg.Interval <= 0 {
		cfg.Interval = DefaultSyncInterval
	}

	slog.Info("sync scheduler started",
		"source", cfg.Source,
		"interval", cfg.Interval.String(),
		"run_on_start", cfg.RunOnStart,
	)

	if cfg.RunOnStart {
		s.runScheduledSync(ctx, cfg.Source)
	}

	ticker := time.NewTicker(cfg.Interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("sync scheduler stopped")
			return
		case <-ticker.C:
			s.runScheduledSync(ctx, cfg.Source)
		}
	}
}

// runScheduledSync performs one sync cycle.
func (s *Service) runScheduledSync(ctx context.Context, sourceName string) {
	result, err := s.Sync(ctx, sourceName, TriggerSchedule)
	switch {
	case errors.Is(err, context.Canceled):
		return
	case errors.Is(err, ErrSyncInProgress):
		slog.Warn("scheduled sync skipped", "source", sourceName, "reason", err)
	case err != nil:
		slog.Error("scheduled sync failed", "source", sourceName, "error", err)
	default:
		slog.Debug("scheduled sync finished", "source", sourceName, "message", result.Message)
	}
}
