package main

import (
	"github.com/spf13/cobra"

	"github.com/gyeh/denialstats/internal/config"
)

var (
	flagDSN       string
	flagLogFormat string
	flagRulesFile string
)

var rootCmd = &cobra.Command{
	Use:   "denialdash",
	Short: "Insurance-claim denial reason analyzer",
	Long: "Merges two spreadsheet exports of claim denial records, normalizes their " +
		"denial-reason codes, and reports distinct claims per normalized code as a " +
		"dashboard, CSV, and pie chart.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagDSN, "dsn", "", "Postgres connection string (or set DENIAL_DB_URL; empty boots an embedded instance)")
	pf.StringVar(&flagLogFormat, "log-format", "", "Log format: text or json")
	pf.StringVar(&flagRulesFile, "rules", "", "YAML file overriding the built-in code rules")
}

// loadConfig reads the environment config and layers flag overrides on top.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if flagDSN != "" {
		cfg.DSN = flagDSN
	}
	if flagLogFormat != "" {
		cfg.LogFormat = flagLogFormat
	}
	if flagRulesFile != "" {
		cfg.RulesFile = flagRulesFile
	}
	return cfg, cfg.Validate()
}
