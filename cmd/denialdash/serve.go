package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/denialstats/internal/db"
	"github.com/gyeh/denialstats/internal/exitcode"
	"github.com/gyeh/denialstats/internal/logging"
	"github.com/gyeh/denialstats/internal/rules"
	"github.com/gyeh/denialstats/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the analyst dashboard server",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fallbackLog := logging.Setup("text")
		fallbackLog.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	log := logging.SetupWriter(cfg.LogFormat, os.Stdout)

	rs, err := loadRules(cfg.RulesFile)
	if err != nil {
		log.Error().Err(err).Msg("rules validation failed")
		os.Exit(exitcode.UsageError)
	}

	ctx := context.Background()

	dsn := cfg.DSN
	var embedded *db.Embedded
	if cfg.UseEmbedded() {
		embedded, err = db.StartEmbedded(cfg.EmbeddedPort, log)
		if err != nil {
			log.Error().Err(err).Msg("embedded postgres failed to start")
			os.Exit(exitcode.DBConnError)
		}
		dsn = embedded.DSN
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		stopEmbedded(embedded, log)
		os.Exit(exitcode.DBConnError)
	}

	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		pool.Close()
		stopEmbedded(embedded, log)
		os.Exit(exitcode.DBConnError)
	}

	svc := server.NewAnalysisService(pool, log, rs, cfg.KeepStaging)
	e := server.New(cfg, svc, log)

	go func() {
		log.Info().Str("port", cfg.Port).Msg("dashboard listening")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server stopped")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server shutdown failed")
	}
	pool.Close()
	stopEmbedded(embedded, log)
	return nil
}

func loadRules(path string) (*rules.RuleSet, error) {
	if path == "" {
		return rules.Default(), nil
	}
	return rules.LoadFile(path)
}

func stopEmbedded(embedded *db.Embedded, log zerolog.Logger) {
	if embedded == nil {
		return
	}
	if err := embedded.Stop(); err != nil {
		log.Warn().Err(err).Msg("embedded postgres shutdown failed")
	}
}
