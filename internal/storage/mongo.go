// Package storage is the MongoDB backend for tracker records, sync state
// and assets.
package storage

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/JonMunkholm/impact-tracker/internal/logging"
)

// DefaultDatabase is used when no database name is configured.
const DefaultDatabase = "impact_tracker"

// ---- Abstractions for Testability ----

// DataStore is the subset of *mongo.Collection the repository uses.
type DataStore interface {
	UpdateOne(
		ctx context.Context,
		filter interface{},
		update interface{},
		opts ...*options.UpdateOptions) (*mongo.UpdateResult, error)
	InsertOne(
		ctx context.Context,
		document interface{},
		opts ...*options.InsertOneOptions) (*mongo.InsertOneResult, error)
	FindOne(
		ctx context.Context,
		filter interface{},
		opts ...*options.FindOneOptions) *mongo.SingleResult
	Find(
		ctx context.Context,
		filter interface{},
		opts ...*options.FindOptions) (*mongo.Cursor, error)
	Distinct(
		ctx context.Context,
		fieldName string,
		filter interface{},
		opts ...*options.DistinctOptions) ([]interface{}, error)
}

// CollectionProvider returns collections by name.
type CollectionProvider interface {
	Collection(name string) DataStore
}

// MongoProvider adapts *mongo.Client to CollectionProvider.
type MongoProvider struct {
	client   *mongo.Client
	database string
}

// NewMongoProvider returns a provider for the named database.
func NewMongoProvider(client *mongo.Client, database string) *MongoProvider {
	if database == "" {
		database = DefaultDatabase
	}
	return &MongoProvider{client: client, database: database}
}

// Collection returns a DataStore for the given collection name.
func (p *MongoProvider) Collection(name string) DataStore {
	return p.client.Database(p.database).Collection(name)
}

// EnsureIndexes creates the unique indexes the upserts rely on.
func (p *MongoProvider) EnsureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)
	indexes := map[string]string{
		TrackerCollection:   "row_hash",
		SyncStateCollection: "sync_source",
		AssetsCollection:    "sub_project_canon",
	}

	db := p.client.Database(p.database)
	for coll, field := range indexes {
		_, err := db.Collection(coll).Indexes().CreateOne(ctx, mongo.IndexModel{
			Keys:    bson.D{{Key: field, Value: 1}},
			Options: unique,
		})
		if err != nil {
			return fmt.Errorf("create index %s.%s: %w", coll, field, err)
		}
	}

	_, err := db.Collection(SyncRunsCollection).Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys: bson.D{{Key: "sync_source", Value: 1}, {Key: "started_at", Value: -1}},
	})
	if err != nil {
		return fmt.Errorf("create index %s: %w", SyncRunsCollection, err)
	}
	return nil
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, uri string) (*mongo.Client, error) {
	if uri == "" {
		return nil, errors.New("mongo uri is empty")
	}

	logger := logging.FromContext(ctx)
	logger.DebugContext(ctx, "connecting to MongoDB")

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	logger.InfoContext(ctx, "connected to MongoDB")
	return client, nil
}
