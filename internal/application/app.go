// Package application assembles the tracker from configuration. It opens
// the record store of the configured backend, registers the sources and
// builds the service shared by the server and the CLI.
package application

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/JonMunkholm/impact-tracker/internal/config"
	"github.com/JonMunkholm/impact-tracker/internal/core"
	"github.com/JonMunkholm/impact-tracker/internal/database"
	"github.com/JonMunkholm/impact-tracker/internal/source"
	"github.com/JonMunkholm/impact-tracker/internal/storage"
)

// App is an assembled tracker. Close releases its connections.
type App struct {
	Service *core.Service
	Sources *source.Registry

	// Health pings the store backend.
	Health func(ctx context.Context) error

	closers []func()
}

// Open connects to the configured store and builds the service.
func Open(ctx context.Context, cfg *config.Config) (*App, error) {
	sources, err := NewSources(cfg.Sheets)
	if err != nil {
		return nil, err
	}

	app := &App{Sources: sources}

	var store core.Store
	switch cfg.Store.Backend {
	case config.BackendMongo:
		client, err := openMongo(ctx, cfg.Store)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, func() {
			if err := client.Disconnect(context.Background()); err != nil {
				slog.Warn("mongo disconnect failed", "error", err)
			}
		})
		app.Health = func(ctx context.Context) error { return client.Ping(ctx, nil) }
		store = core.NewMongoStore(storage.NewMongoRepository(storage.NewMongoProvider(client, cfg.Store.MongoDatabase)))

	default:
		pool, err := openPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, err
		}
		app.closers = append(app.closers, pool.Close)
		app.Health = pool.Ping
		store = core.NewPostgresStore(pool)
	}

	app.Service = core.NewService(store, sources, core.Config{
		SyncTimeout: cfg.Sync.Timeout,
		SyncMaxWait: cfg.Sync.MaxWait,
	})
	return app, nil
}

// Close releases the store connections in reverse order of opening.
func (a *App) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

// NewSources registers the Google Sheets source. Missing credentials are
// not fatal: the client then falls back to application default
// credentials, and a missing spreadsheet id fails at fetch time.
func NewSources(cfg config.SheetsConfig) (*source.Registry, error) {
	if !cfg.Configured() {
		slog.Warn("google sheets not configured; syncs will fail until GOOGLE_SHEETS_ID is set")
	}

	opts, err := source.CredentialOptions(cfg.CredentialsFile, cfg.CredentialsJSON, cfg.ServiceAccountEmail, cfg.PrivateKey)
	if err != nil {
		slog.Warn("google sheets credentials", "error", err)
	}

	reg, err := source.NewRegistry(source.NewGoogleSheets(cfg.SpreadsheetID, cfg.Range, opts...))
	if err != nil {
		return nil, fmt.Errorf("register sources: %w", err)
	}
	return reg, nil
}

func openPostgres(ctx context.Context, cfg config.DatabaseConfig) (*pgxpool.Pool, error) {
	poolConfig, err := pgxpool.ParseConfig(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	poolConfig.MaxConns = int32(cfg.MaxConns)
	poolConfig.MinConns = int32(cfg.MinConns)
	poolConfig.MaxConnLifetime = cfg.MaxConnLifetime
	poolConfig.MaxConnIdleTime = cfg.MaxConnIdleTime

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		return nil, fmt.Errorf("connect to database: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}
	slog.Info("connected to database", "name", databaseName(cfg.URL))

	if cfg.EnsureSchema {
		if err := database.EnsureSchema(ctx, pool); err != nil {
			pool.Close()
			return nil, err
		}
		slog.Debug("database schema ensured")
	}
	return pool, nil
}

func openMongo(ctx context.Context, cfg config.StoreConfig) (*mongo.Client, error) {
	timeout := cfg.MongoConnectTimeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	connectCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := storage.Connect(connectCtx, cfg.MongoURI)
	if err != nil {
		return nil, err
	}

	if err := storage.NewMongoProvider(client, cfg.MongoDatabase).EnsureIndexes(connectCtx); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("mongo indexes: %w", err)
	}
	return client, nil
}

// databaseName returns the database path of a postgres URL, or "" for
// key/value connection strings.
func databaseName(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Scheme == "" {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
