package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/JonMunkholm/impact-tracker/internal/application"
	"github.com/JonMunkholm/impact-tracker/internal/config"
	"github.com/JonMunkholm/impact-tracker/internal/core"
	"github.com/JonMunkholm/impact-tracker/internal/logging"
	"github.com/JonMunkholm/impact-tracker/internal/web"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)
	slog.Debug("configuration loaded", "config", cfg.String())
	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store", cfg.Store.Backend,
		"sync_enabled", cfg.Sync.Enabled,
		"sync_interval", cfg.Sync.Interval.String(),
		"rate_limit_enabled", cfg.Rate.Enabled,
	)

	ctx := context.Background()
	app, err := application.Open(ctx, cfg)
	if err != nil {
		slog.Error("failed to open store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer app.Close()

	slog.Info("sources registered", "sources", app.Sources.Names())

	server := web.NewServer(app.Service, web.Options{
		Server:        cfg.Server,
		Security:      cfg.Security,
		Rate:          cfg.Rate,
		DefaultSource: cfg.Sync.Source,
		Health:        app.Health,
	})

	// Cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	defer cancelJobs()

	if cfg.Sync.Enabled {
		go app.Service.StartSyncScheduler(jobCtx, core.SchedulerConfig{
			Source:     cfg.Sync.Source,
			Interval:   cfg.Sync.Interval,
			RunOnStart: cfg.Sync.RunOnStart,
		})
	} else {
		slog.Info("sync scheduler disabled")
	}

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop the scheduler
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}

		if err := app.Service.WaitForSyncs(shutdownCtx); err != nil {
			slog.Warn("syncs did not complete in time", "error", err)
		}
	}()

	if err := server.Start(cfg.Server.Addr()); err != nil {
		slog.Error("server stopped", "error", err)
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}
