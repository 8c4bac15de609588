package core

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
	"github.com/JonMunkholm/impact-tracker/internal/logging"
	"github.com/JonMunkholm/impact-tracker/internal/source"
)

// ErrUnknownSource is returned when a sync names a source that is not
// registered.
var ErrUnknownSource = errors.New("unknown source")

// DefaultSyncTimeout bounds a single sync run.
const DefaultSyncTimeout = 10 * time.Minute

// Config holds the tunables of a Service. Zero values select defaults.
type Config struct {
	SyncTimeout    time.Duration
	SyncMaxWait    time.Duration
	MaxConcurrency int
	Seeder         AssetSeeder
}

// Service provides the sync, dashboard and asset operations.
type Service struct {
	store   Store
	sources *source.Registry
	limiter *SyncLimiter
	seeder  AssetSeeder
	timeout time.Duration

	now   func() time.Time
	newID func() uuid.UUID
}

// NewService creates a new Service instance.
func NewService(store Store, sources *source.Registry, cfg Config) *Service {
	if cfg.SyncTimeout <= 0 {
		cfg.SyncTimeout = DefaultSyncTimeout
	}
	if cfg.Seeder.Descriptions == nil && cfg.Seeder.Fallback == "" {
		cfg.Seeder = DefaultAssetSeeder()
	}
	if sources == nil {
		sources, _ = source.NewRegistry()
	}

	return &Service{
		store:   store,
		sources: sources,
		limiter: NewSyncLimiter(cfg.MaxConcurrency, cfg.SyncMaxWait),
		seeder:  cfg.Seeder,
		timeout: cfg.SyncTimeout,
		now:     time.Now,
		newID:   uuid.New,
	}
}

// Sources returns the names of the registered sources.
func (s *Service) Sources() []string {
	return s.sources.Names()
}

// Sync pulls the rows a source gained since its last sync, cleans them and
// upserts them into the store.
//
// Manual triggers fail fast with ErrSyncInProgress while another sync is
// running; scheduled triggers wait for the running sync to finish.
// A non-nil error with a populated result means the run itself failed and
// the failure was recorded in the sync state.
func (s *Service) Sync(ctx context.Context, sourceName, trigger string) (SyncResult, error) {
	src, ok := s.sources.Get(sourceName)
	if !ok {
		return SyncResult{}, fmt.Errorf("%w: %s", ErrUnknownSource, sourceName)
	}

	if trigger == TriggerSchedule {
		if err := s.limiter.Acquire(ctx); err != nil {
			return SyncResult{}, err
		}
	} else if !s.limiter.TryAcquire() {
		return SyncResult{}, ErrSyncInProgress
	}
	defer s.limiter.Release()

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	run := SyncRun{
		ID:        s.newID(),
		Source:    sourceName,
		Trigger:   trigger,
		StartedAt: s.now().UTC(),
	}
	ctx = logging.WithSync(ctx, run.ID.String(), sourceName, trigger)
	logger := logging.FromContext(ctx)
	logger.Info("sync started")

	result, status, err := s.runSync(ctx, src)

	run.FinishedAt = s.now().UTC()
	run.Status = status
	if result.Stats != nil {
		run.Stats = *result.Stats
	}
	if err != nil {
		run.Error = err.Error()
	} else if run.Stats.Errors > 0 {
		run.Error = partialMessage(run.Stats.Errors)
	}

	// History is best effort; the sync state is already saved.
	if herr := s.store.InsertSyncRun(context.WithoutCancel(ctx), run); herr != nil {
		logger.Error("failed to record sync run", "error", herr)
	}

	if err != nil {
		logger.Error("sync failed",
			"error", err,
			"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
		)
		return result, err
	}

	logger.Info("sync completed",
		"status", status,
		"rows_synced", run.Stats.RowsSynced,
		"errors", run.Stats.Errors,
		"duration_ms", run.FinishedAt.Sub(run.StartedAt).Milliseconds(),
	)
	return result, nil
}

func (s *Service) runSync(ctx context.Context, src source.Source) (SyncResult, SyncStatus, error) {
	logger := logging.FromContext(ctx)
	name := src.Name()

	state, _, err := s.store.GetSyncState(ctx, name)
	if err != nil {
		// The stored position is unknown, so it is left untouched.
		err = fmt.Errorf("failed to fetch sync metadata: %w", err)
		return SyncResult{Error: err.Error(), Timestamp: s.now().UTC()}, SyncFailed, err
	}
	state.Source = name
	last := state.LastSyncedRowCount

	sheet, err := src.Fetch(ctx)
	if err != nil {
		return s.failSync(ctx, state, err)
	}

	stats := SyncStats{
		TotalRowsInSheet: sheet.Count(),
		LastSyncedCount:  last,
	}
	logger.Debug("sheet fetched", "total_rows", stats.TotalRowsInSheet, "last_synced", last)

	if stats.TotalRowsInSheet <= last {
		state.LastSyncTimestamp = s.timestamp()
		state.LastSyncStatus = SyncSuccess
		if err := s.store.SaveSyncState(ctx, state); err != nil {
			return s.failSync(ctx, state, err)
		}
		return s.syncResult("No new rows to sync", stats), SyncSuccess, nil
	}

	rows := sheet.Since(last)
	stats.NewRowsFetched = len(rows)

	for i, raw := range rows {
		if err := ctx.Err(); err != nil {
			return s.failSync(ctx, state, err)
		}

		rec := cleaner.CleanRow(raw)
		if err := s.store.UpsertRecord(ctx, rec); err != nil {
			logger.Warn("row upsert failed",
				"row", last+i+1,
				"row_hash", rec.RowHash,
				"error", err,
			)
			stats.Errors++
			continue
		}
		stats.RowsSynced++
	}

	status := SyncSuccess
	state.LastSyncError = pgtype.Text{}
	if stats.Errors > 0 {
		status = SyncPartial
		state.LastSyncError = pgtype.Text{String: partialMessage(stats.Errors), Valid: true}
	}

	state.LastSyncedRowCount = stats.TotalRowsInSheet
	state.LastSyncTimestamp = s.timestamp()
	state.LastSyncStatus = status
	state.TotalRowsSynced += stats.RowsSynced
	if err := s.store.SaveSyncState(ctx, state); err != nil {
		return s.failSync(ctx, state, err)
	}

	msg := fmt.Sprintf("Successfully synced %d new rows", stats.RowsSynced)
	return s.syncResult(msg, stats), status, nil
}

// failSync records a failed run. Row count and cumulative totals keep
// their previous values so the next run retries the same rows.
func (s *Service) failSync(ctx context.Context, state SyncState, cause error) (SyncResult, SyncStatus, error) {
	state.LastSyncTimestamp = s.timestamp()
	state.LastSyncStatus = SyncFailed
	state.LastSyncError = pgtype.Text{String: cause.Error(), Valid: true}

	if err := s.store.SaveSyncState(context.WithoutCancel(ctx), state); err != nil {
		logging.FromContext(ctx).Error("failed to update sync metadata", "error", err)
	}

	return SyncResult{
		Success:   false,
		Error:     cause.Error(),
		Timestamp: s.now().UTC(),
	}, SyncFailed, cause
}

func (s *Service) syncResult(msg string, stats SyncStats) SyncResult {
	return SyncResult{
		Success:   true,
		Message:   msg,
		Stats:     &stats,
		Timestamp: s.now().UTC(),
	}
}

func (s *Service) timestamp() pgtype.Timestamptz {
	return pgtype.Timestamptz{Time: s.now().UTC(), Valid: true}
}

func partialMessage(n int) string {
	return fmt.Sprintf("%d rows failed to sync", n)
}

// SyncStatus returns the stored state of a source. ok is false when the
// source has never synced.
func (s *Service) SyncStatus(ctx context.Context, sourceName string) (SyncState, bool, error) {
	return s.store.GetSyncState(ctx, sourceName)
}

// SyncHistory returns the latest runs of a source, newest first.
func (s *Service) SyncHistory(ctx context.Context, sourceName string, limit int) ([]SyncRun, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.store.ListSyncRuns(ctx, sourceName, limit)
}

// WaitForSyncs blocks until running syncs complete. Used during shutdown.
func (s *Service) WaitForSyncs(ctx context.Context) error {
	return s.limiter.WaitForDrain(ctx)
}
