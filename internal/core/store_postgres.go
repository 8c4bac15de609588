package core

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
	db "github.com/JonMunkholm/impact-tracker/internal/database"
)

// PostgresStore implements Store on top of the generated queries.
// Satisfied by both *pgxpool.Pool and pgx.Tx connections.
type PostgresStore struct {
	q *db.Queries
}

// NewPostgresStore creates a store using conn.
func NewPostgresStore(conn db.DBTX) *PostgresStore {
	return &PostgresStore{q: db.New(conn)}
}

func (s *PostgresStore) UpsertRecord(ctx context.Context, rec cleaner.CanonicalRecord) error {
	if _, err := s.q.UpsertTrackerRow(ctx, rec); err != nil {
		return fmt.Errorf("upsert row %s: %w", rec.RowHash, err)
	}
	return nil
}

func (s *PostgresStore) GetSyncState(ctx context.Context, source string) (SyncState, bool, error) {
	m, err := s.q.GetSyncMetadata(ctx, source)
	if errors.Is(err, pgx.ErrNoRows) {
		return SyncState{}, false, nil
	}
	if err != nil {
		return SyncState{}, false, fmt.Errorf("get sync metadata: %w", err)
	}

	return SyncState{
		Source:             m.SyncSource,
		LastSyncedRowCount: int(m.LastSyncedRowCount),
		LastSyncTimestamp:  m.LastSyncTimestamp,
		LastSyncStatus:     SyncStatus(m.LastSyncStatus.String),
		LastSyncError:      m.LastSyncError,
		TotalRowsSynced:    int(m.TotalRowsSynced),
	}, true, nil
}

func (s *PostgresStore) SaveSyncState(ctx context.Context, state SyncState) error {
	err := s.q.UpsertSyncMetadata(ctx, db.UpsertSyncMetadataParams{
		SyncSource:         state.Source,
		LastSyncedRowCount: int32(state.LastSyncedRowCount),
		LastSyncTimestamp:  state.LastSyncTimestamp,
		LastSyncStatus:     pgtype.Text{String: string(state.LastSyncStatus), Valid: state.LastSyncStatus != ""},
		LastSyncError:      state.LastSyncError,
		TotalRowsSynced:    int32(state.TotalRowsSynced),
	})
	if err != nil {
		return fmt.Errorf("save sync metadata: %w", err)
	}
	return nil
}

func (s *PostgresStore) InsertSyncRun(ctx context.Context, run SyncRun) error {
	err := s.q.InsertSyncRun(ctx, db.InsertSyncRunParams{
		ID:               pgtype.UUID{Bytes: run.ID, Valid: true},
		SyncSource:       run.Source,
		Trigger:          run.Trigger,
		StartedAt:        pgtype.Timestamptz{Time: run.StartedAt, Valid: true},
		FinishedAt:       pgtype.Timestamptz{Time: run.FinishedAt, Valid: true},
		TotalRowsInSheet: int32(run.Stats.TotalRowsInSheet),
		LastSyncedCount:  int32(run.Stats.LastSyncedCount),
		NewRowsFetched:   int32(run.Stats.NewRowsFetched),
		RowsSynced:       int32(run.Stats.RowsSynced),
		Errors:           int32(run.Stats.Errors),
		Status:           string(run.Status),
		Error:            pgtype.Text{String: run.Error, Valid: run.Error != ""},
	})
	if err != nil {
		return fmt.Errorf("insert sync run: %w", err)
	}
	return nil
}

func (s *PostgresStore) ListSyncRuns(ctx context.Context, source string, limit int) ([]SyncRun, error) {
	rows, err := s.q.ListSyncRuns(ctx, db.ListSyncRunsParams{
		SyncSource: source,
		Limit:      int32(limit),
	})
	if err != nil {
		return nil, fmt.Errorf("list sync runs: %w", err)
	}

	runs := make([]SyncRun, len(rows))
	for i, r := range rows {
		runs[i] = SyncRun{
			ID:         uuid.UUID(r.ID.Bytes),
			Source:     r.SyncSource,
			Trigger:    r.Trigger,
			StartedAt:  r.StartedAt.Time,
			FinishedAt: r.FinishedAt.Time,
			Stats: SyncStats{
				TotalRowsInSheet: int(r.TotalRowsInSheet),
				LastSyncedCount:  int(r.LastSyncedCount),
				NewRowsFetched:   int(r.NewRowsFetched),
				RowsSynced:       int(r.RowsSynced),
				Errors:           int(r.Errors),
			},
			Status: SyncStatus(r.Status),
			Error:  r.Error.String,
		}
	}
	return runs, nil
}

func (s *PostgresStore) ListFacts(ctx context.Context, f FilterState) ([]Fact, error) {
	rows, err := s.q.ListFacts(ctx, db.FactFilter{
		Years:             f.Years,
		Project:           f.Project,
		SubProject:        f.SubProject,
		Institute:         f.Institute,
		TypeOfInstitution: f.Type,
	})
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}

	facts := make([]Fact, len(rows))
	for i, r := range rows {
		facts[i] = Fact{
			Project:           r.Project,
			SubProject:        r.SubProject,
			Cause:             r.Cause,
			Institute:         r.Institute,
			TypeOfInstitution: r.TypeOfInstitution,
			Remarks:           r.Remarks,
			YearStart:         r.YearStart,
			YearEnd:           r.YearEnd,
			YearLabel:         r.YearLabel,
			Date:              dateText(r.Date),
			Quantity:          r.Quantity,
			Beneficiaries:     r.Beneficiaries,
			Amount:            r.Amount,
		}
	}
	return facts, nil
}

func (s *PostgresStore) GetAsset(ctx context.Context, subProjectCanon string) (Asset, bool, error) {
	a, err := s.q.GetAsset(ctx, subProjectCanon)
	if errors.Is(err, pgx.ErrNoRows) {
		return Asset{}, false, nil
	}
	if err != nil {
		return Asset{}, false, fmt.Errorf("get asset: %w", err)
	}

	return Asset{
		SubProjectCanon: a.SubProjectCanon,
		ImageURL:        a.ImageUrl,
		Description:     a.Description,
		CreatedAt:       a.CreatedAt,
	}, true, nil
}

func (s *PostgresStore) ListSubProjects(ctx context.Context) ([]string, error) {
	subs, err := s.q.ListDistinctSubProjects(ctx)
	if err != nil {
		return nil, fmt.Errorf("list sub projects: %w", err)
	}
	return subs, nil
}

func (s *PostgresStore) InsertAssetIfMissing(ctx context.Context, asset Asset) (bool, error) {
	n, err := s.q.InsertAssetIfMissing(ctx, db.InsertAssetIfMissingParams{
		SubProjectCanon: asset.SubProjectCanon,
		ImageUrl:        asset.ImageURL,
		Description:     asset.Description,
	})
	if err != nil {
		return false, fmt.Errorf("insert asset %s: %w", asset.SubProjectCanon, err)
	}
	return n > 0, nil
}

func dateText(d pgtype.Date) pgtype.Text {
	if !d.Valid {
		return pgtype.Text{}
	}
	return pgtype.Text{String: d.Time.Format("2006-01-02"), Valid: true}
}
