package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/gyeh/denialstats/internal/analyze"
	"github.com/gyeh/denialstats/internal/db"
	"github.com/gyeh/denialstats/internal/exitcode"
	"github.com/gyeh/denialstats/internal/logging"
	"github.com/gyeh/denialstats/internal/model"
	"github.com/gyeh/denialstats/internal/report"
)

var (
	flagFileA    string
	flagFileB    string
	flagOut      string
	flagChartOut string
	flagKeep     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "One-shot analysis: two workbooks in, summary CSV out",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&flagFileA, "file-a", "", "First workbook (required)")
	f.StringVar(&flagFileB, "file-b", "", "Second workbook (required)")
	f.StringVar(&flagOut, "out", report.SummaryFileName, "Summary CSV output path")
	f.StringVar(&flagChartOut, "chart", "", "Also render the pie chart PNG to this path")
	f.BoolVar(&flagKeep, "keep-staging", false, "Keep staging rows after summarize")
	_ = analyzeCmd.MarkFlagRequired("file-a")
	_ = analyzeCmd.MarkFlagRequired("file-b")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		fallbackLog := logging.Setup("text")
		fallbackLog.Error().Err(err).Msg("config validation failed")
		os.Exit(exitcode.UsageError)
	}
	log := logging.Setup(cfg.LogFormat)

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
	defer stopEmbedded(embedded, log)

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.DBConnError)
	}

	var inputs []analyze.Input
	for _, path := range []string{flagFileA, flagFileB} {
		in, err := analyze.InputFromFile(path)
		if err != nil {
			log.Error().Err(err).Str("file", path).Msg("workbook not accessible")
			os.Exit(exitcode.ValidationError)
		}
		inputs = append(inputs, in)
	}

	summary, err := analyze.Run(ctx, pool, log, rs, analyze.Options{
		Inputs:      inputs,
		KeepStaging: flagKeep,
	})
	if err != nil {
		var phase *analyze.PhaseError
		if errors.As(err, &phase) {
			log.Error().Err(phase.Err).Str("phase", phase.Phase).Msg("analysis failed")
			switch phase.Phase {
			case "preflight":
				os.Exit(exitcode.ValidationError)
			case "stage":
				os.Exit(exitcode.CopyError)
			default:
				os.Exit(exitcode.SummarizeError)
			}
		}
		log.Error().Err(err).Msg("analysis failed")
		os.Exit(exitcode.SummarizeError)
	}

	sessionID, err := uuid.Parse(summary.SessionID)
	if err != nil {
		log.Error().Err(err).Msg("invalid session id")
		os.Exit(exitcode.SummarizeError)
	}
	rows, err := analyze.SummaryRows(ctx, pool, sessionID)
	if err != nil {
		log.Error().Err(err).Msg("summary query failed")
		os.Exit(exitcode.SummarizeError)
	}

	if err := writeCSVFile(flagOut, rows); err != nil {
		log.Error().Err(err).Msg("csv export failed")
		os.Exit(exitcode.SummarizeError)
	}

	if flagChartOut != "" {
		if err := writeChartFile(flagChartOut, rows, cfg.ChartTopN); err != nil {
			log.Error().Err(err).Msg("chart export failed")
			os.Exit(exitcode.SummarizeError)
		}
	}

	fmt.Printf("Analysis complete: %d rows merged, %d groups, %d distinct claims (%.1fs)\n",
		summary.RowsRead, summary.Groups, summary.DistinctVisits, summary.DurationTotal.Seconds())
	fmt.Printf("Summary written to %s\n", flagOut)
	return nil
}

func writeCSVFile(path string, rows []model.SummaryRow) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return report.WriteCSV(f, rows)
}

func writeChartFile(path string, rows []model.SummaryRow, topN int) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return report.RenderPie(f, rows, topN)
}
