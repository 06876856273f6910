package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/denialstats/internal/db"
	"github.com/gyeh/denialstats/internal/exitcode"
	"github.com/gyeh/denialstats/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the session schema to an external Postgres",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fallbackLog := logging.Setup("text")
		fallbackLog.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	log := logging.Setup(cfg.LogFormat)
	ctx := context.Background()

	if cfg.DSN == "" {
		log.Error().Msg("--dsn or DENIAL_DB_URL is required (embedded instances migrate themselves)")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, cfg.DSN)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.DBConnError)
	}

	log.Info().Msg("all migrations applied successfully")
	return nil
}
