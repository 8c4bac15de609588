// Command tracker runs one-off tracker jobs: bulk imports, a manual sync
// and asset seeding.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/JonMunkholm/impact-tracker/internal/application"
	"github.com/JonMunkholm/impact-tracker/internal/config"
	"github.com/JonMunkholm/impact-tracker/internal/logging"
)

type rootOptions struct {
	envFile  string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var opts rootOptions

	cmd := &cobra.Command{
		Use:          "tracker",
		Short:        "Impact tracker maintenance commands",
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&opts.envFile, "env-file", ".env", "Environment file to load if present")
	cmd.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level override: debug, info, warn, error")

	cmd.AddCommand(
		newImportCmd(&opts),
		newSyncCmd(&opts),
		newSeedAssetsCmd(&opts),
	)
	return cmd
}

// loadConfig reads the environment for a CLI run. The API key requirement
// only guards the HTTP sync endpoint, so it defaults to off here.
func loadConfig(opts *rootOptions) (*config.Config, error) {
	if opts.envFile != "" {
		if err := godotenv.Overload(opts.envFile); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("load %s: %w", opts.envFile, err)
		}
	}

	cfg, err := config.LoadFrom(func(key string) string {
		v := os.Getenv(key)
		if v == "" && key == "REQUIRE_API_KEY" {
			return "false"
		}
		return v
	})
	if err != nil {
		return nil, err
	}

	level := cfg.Logging.Level
	if opts.logLevel != "" {
		level = opts.logLevel
	}
	slog.SetDefault(logging.New(level, cfg.Logging.Format, os.Stderr))
	return cfg, nil
}

// openApp loads configuration and connects to the store.
func openApp(ctx context.Context, opts *rootOptions) (*application.App, *config.Config, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return nil, nil, err
	}
	app, err := application.Open(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	return app, cfg, nil
}
