package storage

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JonMunkholm/impact-tracker/internal/cleaner"
)

// MongoRepository stores tracker data in MongoDB collections that mirror
// the Postgres tables.
type MongoRepository struct {
	provider CollectionProvider
	now      func() time.Time
}

// NewMongoRepository creates a new MongoRepository.
func NewMongoRepository(provider CollectionProvider) *MongoRepository {
	return &MongoRepository{
		provider: provider,
		now:      time.Now,
	}
}

// UpsertRecord replaces the tracker document with the same row hash, or
// inserts it.
func (r *MongoRepository) UpsertRecord(ctx context.Context, rec cleaner.CanonicalRecord) error {
	doc := NewTrackerDoc(rec)
	doc.UpdatedAt = r.now().UTC()

	filter := bson.M{"row_hash": doc.RowHash}
	update := bson.M{
		"$set":         doc,
		"$setOnInsert": bson.M{"created_at": doc.UpdatedAt},
	}

	_, err := r.provider.Collection(TrackerCollection).UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("upsert tracker row %s: %w", rec.RowHash, err)
	}
	return nil
}

// GetSyncState returns the stored state for a source. ok is false when the
// source has never synced.
func (r *MongoRepository) GetSyncState(ctx context.Context, source string) (state SyncStateDoc, ok bool, err error) {
	err = r.provider.Collection(SyncStateCollection).
		FindOne(ctx, bson.M{"sync_source": source}).
		Decode(&state)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return SyncStateDoc{}, false, nil
	}
	if err != nil {
		return SyncStateDoc{}, false, fmt.Errorf("get sync state %s: %w", source, err)
	}
	return state, true, nil
}

// SaveSyncState upserts the state keyed by source.
func (r *MongoRepository) SaveSyncState(ctx context.Context, state SyncStateDoc) error {
	state.UpdatedAt = r.now().UTC()

	_, err := r.provider.Collection(SyncStateCollection).UpdateOne(ctx,
		bson.M{"sync_source": state.SyncSource},
		bson.M{"$set": state},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return fmt.Errorf("save sync state %s: %w", state.SyncSource, err)
	}
	return nil
}

// InsertSyncRun appends a run to the history.
func (r *MongoRepository) InsertSyncRun(ctx context.Context, run SyncRunDoc) error {
	if _, err := r.provider.Collection(SyncRunsCollection).InsertOne(ctx, run); err != nil {
		return fmt.Errorf("insert sync run %s: %w", run.ID, err)
	}
	return nil
}

// ListSyncRuns returns the most recent runs for a source, newest first.
func (r *MongoRepository) ListSyncRuns(ctx context.Context, source string, limit int) ([]SyncRunDoc, error) {
	opts := options.Find().
		SetSort(bson.D{{Key: "started_at", Value: -1}}).
		SetLimit(int64(limit))

	cursor, err := r.provider.Collection(SyncRunsCollection).Find(ctx, bson.M{"sync_source": source}, opts)
	if err != nil {
		return nil, fmt.Errorf("list sync runs %s: %w", source, err)
	}

	var runs []SyncRunDoc
	if err := cursor.All(ctx, &runs); err != nil {
		return nil, fmt.Errorf("decode sync runs: %w", err)
	}
	return runs, nil
}

// ListFacts returns the canonical view of every tracker document matching q.
func (r *MongoRepository) ListFacts(ctx context.Context, q FactQuery) ([]FactDoc, error) {
	cursor, err := r.provider.Collection(TrackerCollection).Find(ctx, factFilter(q))
	if err != nil {
		return nil, fmt.Errorf("list facts: %w", err)
	}

	var facts []FactDoc
	if err := cursor.All(ctx, &facts); err != nil {
		return nil, fmt.Errorf("decode facts: %w", err)
	}
	return facts, nil
}

func factFilter(q FactQuery) bson.M {
	filter := bson.M{}
	if len(q.Years) > 0 {
		filter["year_start"] = bson.M{"$in": q.Years}
	}
	eq := map[string]string{
		"project_canon":             q.Project,
		"sub_project_canon":         q.SubProject,
		"institute_canon":           q.Institute,
		"type_of_institution_canon": q.TypeOfInstitution,
	}
	for field, v := range eq {
		if v != "" {
			filter[field] = v
		}
	}
	return filter
}

// GetAsset returns the asset for a canonical sub-project. ok is false when
// none exists.
func (r *MongoRepository) GetAsset(ctx context.Context, subProjectCanon string) (asset AssetDoc, ok bool, err error) {
	err = r.provider.Collection(AssetsCollection).
		FindOne(ctx, bson.M{"sub_project_canon": subProjectCanon}).
		Decode(&asset)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return AssetDoc{}, false, nil
	}
	if err != nil {
		return AssetDoc{}, false, fmt.Errorf("get asset %s: %w", subProjectCanon, err)
	}
	return asset, true, nil
}

// InsertAssetIfMissing leaves existing assets untouched. Reports whether a
// document was inserted.
func (r *MongoRepository) InsertAssetIfMissing(ctx context.Context, asset AssetDoc) (bool, error) {
	if asset.CreatedAt.IsZero() {
		asset.CreatedAt = r.now().UTC()
	}

	result, err := r.provider.Collection(AssetsCollection).UpdateOne(ctx,
		bson.M{"sub_project_canon": asset.SubProjectCanon},
		bson.M{"$setOnInsert": asset},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, fmt.Errorf("insert asset %s: %w", asset.SubProjectCanon, err)
	}
	return result.UpsertedCount > 0, nil
}

// ListDistinctSubProjects returns every non-null sub_project_canon.
func (r *MongoRepository) ListDistinctSubProjects(ctx context.Context) ([]string, error) {
	values, err := r.provider.Collection(TrackerCollection).Distinct(ctx, "sub_project_canon",
		bson.M{"sub_project_canon": bson.M{"$ne": nil}})
	if err != nil {
		return nil, fmt.Errorf("distinct sub projects: %w", err)
	}

	out := make([]string, 0, len(values))
	for _, v := range values {
		if s, ok := v.(string); ok {
			out = append(out, s)
		}
	}
	return out, nil
}
