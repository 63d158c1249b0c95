package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/donaldgifford/rent-notifier/internal/config"
	"github.com/donaldgifford/rent-notifier/internal/history"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Run history database migrations (postgres driver)",
	RunE:  runMigrate,
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadConfig(config.WithoutNotify())
	if err != nil {
		return err
	}

	if cfg.History.Driver != "postgres" {
		log.Info("nothing to migrate", "driver", cfg.History.Driver)
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 60*time.Second)
	defer cancel()

	store, err := history.NewPostgresStore(ctx, cfg.History.DSN)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer func() { _ = store.Close() }()

	log.Info("running migrations")

	if err := store.Migrate(ctx); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	applied, err := store.AppliedMigrations(ctx)
	if err != nil {
		return err
	}

	log.Info("migrations complete", "applied", applied)
	return nil
}
