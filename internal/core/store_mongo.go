package core

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
	"github.com/JonMunkholm/impact-tracker/internal/storage"
)

// MongoStore implements Store on top of a MongoDB repository.
type MongoStore struct {
	repo *storage.MongoRepository
}

func NewMongoStore(repo *storage.MongoRepository) *MongoStore {
	return &MongoStore{repo: repo}
}

func (s *MongoStore) UpsertRecord(ctx context.Context, rec cleaner.CanonicalRecord) error {
	return s.repo.UpsertRecord(ctx, rec)
}

func (s *MongoStore) GetSyncState(ctx context.Context, source string) (SyncState, bool, error) {
	doc, ok, err := s.repo.GetSyncState(ctx, source)
	if err != nil || !ok {
		return SyncState{}, ok, err
	}

	return SyncState{
		Source:             doc.SyncSource,
		LastSyncedRowCount: doc.LastSyncedRowCount,
		LastSyncTimestamp:  pgtype.Timestamptz{Time: doc.LastSyncTimestamp, Valid: !doc.LastSyncTimestamp.IsZero()},
		LastSyncStatus:     SyncStatus(doc.LastSyncStatus),
		LastSyncError:      pgtype.Text{String: doc.LastSyncError, Valid: doc.LastSyncError != ""},
		TotalRowsSynced:    doc.TotalRowsSynced,
	}, true, nil
}

func (s *MongoStore) SaveSyncState(ctx context.Context, state SyncState) error {
	return s.repo.SaveSyncState(ctx, storage.SyncStateDoc{
		SyncSource:         state.Source,
		LastSyncedRowCount: state.LastSyncedRowCount,
		LastSyncTimestamp:  state.LastSyncTimestamp.Time,
		LastSyncStatus:     string(state.LastSyncStatus),
		LastSyncError:      state.LastSyncError.String,
		TotalRowsSynced:    state.TotalRowsSynced,
	})
}

func (s *MongoStore) InsertSyncRun(ctx context.Context, run SyncRun) error {
	return s.repo.InsertSyncRun(ctx, storage.SyncRunDoc{
		ID:               run.ID.String(),
		SyncSource:       run.Source,
		Trigger:          run.Trigger,
		StartedAt:        run.StartedAt,
		FinishedAt:       run.FinishedAt,
		TotalRowsInSheet: run.Stats.TotalRowsInSheet,
		LastSyncedCount:  run.Stats.LastSyncedCount,
		NewRowsFetched:   run.Stats.NewRowsFetched,
		RowsSynced:       run.Stats.RowsSynced,
		Errors:           run.Stats.Errors,
		Status:           string(run.Status),
		Error:            run.Error,
	})
}

func (s *MongoStore) ListSyncRuns(ctx context.Context, source string, limit int) ([]SyncRun, error) {
	docs, err := s.repo.ListSyncRuns(ctx, source, limit)
	if err != nil {
		return nil, err
	}

	runs := make([]SyncRun, 0, len(docs))
	for _, d := range docs {
		id, err := uuid.Parse(d.ID)
		if err != nil {
			return nil, fmt.Errorf("sync run id %q: %w", d.ID, err)
		}
		runs = append(runs, SyncRun{
			ID:         id,
			Source:     d.SyncSource,
			Trigger:    d.Trigger,
			StartedAt:  d.StartedAt,
			FinishedAt: d.FinishedAt,
			Stats: SyncStats{
				TotalRowsInSheet: d.TotalRowsInSheet,
				LastSyncedCount:  d.LastSyncedCount,
				NewRowsFetched:   d.NewRowsFetched,
				RowsSynced:       d.RowsSynced,
				Errors:           d.Errors,
			},
			Status: SyncStatus(d.Status),
			Error:  d.Error,
		})
	}
	return runs, nil
}

func (s *MongoStore) ListFacts(ctx context.Context, f FilterState) ([]Fact, error) {
	docs, err := s.repo.ListFacts(ctx, storage.FactQuery{
		Years:             f.Years,
		Project:           f.Project,
		SubProject:        f.SubProject,
		Institute:         f.Institute,
		TypeOfInstitution: f.Type,
	})
	if err != nil {
		return nil, err
	}

	facts := make([]Fact, len(docs))
	for i, d := range docs {
		facts[i] = Fact{
			Project:           textFrom(d.Project),
			SubProject:        textFrom(d.SubProject),
			Cause:             textFrom(d.Cause),
			Institute:         textFrom(d.Institute),
			TypeOfInstitution: textFrom(d.TypeOfInstitution),
			Remarks:           textFrom(d.Remarks),
			YearStart:         int4From(d.YearStart),
			YearEnd:           int4From(d.YearEnd),
			YearLabel:         textFrom(d.YearLabel),
			Date:              textFrom(d.Date),
			Quantity:          float8From(d.Quantity),
			Beneficiaries:     float8From(d.Beneficiaries),
			Amount:            float8From(d.Amount),
		}
	}
	return facts, nil
}

func (s *MongoStore) GetAsset(ctx context.Context, subProjectCanon string) (Asset, bool, error) {
	doc, ok, err := s.repo.GetAsset(ctx, subProjectCanon)
	if err != nil || !ok {
		return Asset{}, ok, err
	}

	return Asset{
		SubProjectCanon: doc.SubProjectCanon,
		ImageURL:        textFrom(doc.ImageURL),
		Description:     textFrom(doc.Description),
		CreatedAt:       pgtype.Timestamptz{Time: doc.CreatedAt, Valid: !doc.CreatedAt.IsZero()},
	}, true, nil
}

// ListSubProjects returns the distinct sub-projects in sorted order, the
// same order the Postgres query produces.
func (s *MongoStore) ListSubProjects(ctx context.Context) ([]string, error) {
	subs, err := s.repo.ListDistinctSubProjects(ctx)
	if err != nil {
		return nil, err
	}
	sort.Strings(subs)
	return subs, nil
}

func (s *MongoStore) InsertAssetIfMissing(ctx context.Context, asset Asset) (bool, error) {
	doc := storage.AssetDoc{SubProjectCanon: asset.SubProjectCanon}
	if asset.ImageURL.Valid {
		doc.ImageURL = &asset.ImageURL.String
	}
	if asset.Description.Valid {
		doc.Description = &asset.Description.String
	}
	return s.repo.InsertAssetIfMissing(ctx, doc)
}

func textFrom(p *string) pgtype.Text {
	if p == nil {
		return pgtype.Text{}
	}
	return pgtype.Text{String: *p, Valid: true}
}

func int4From(p *int32) pgtype.Int4 {
	if p == nil {
		return pgtype.Int4{}
	}
	return pgtype.Int4{Int32: *p, Valid: true}
}

func float8From(p *float64) pgtype.Float8 {
	if p == nil {
		return pgtype.Float8{}
	}
	return pgtype.Float8{Float64: *p, Valid: true}
}
