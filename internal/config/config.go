package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// Config holds all runtime configuration for denialdash. Values come
// from the environment (or a .env file), with flags layered on top by
// the commands.
type Config struct {
	Port         string `mapstructure:"PORT"`
	LogFormat    string `mapstructure:"LOG_FORMAT"` // "text" or "json"
	DSN          string `mapstructure:"DENIAL_DB_URL"`
	EmbeddedPort uint32 `mapstructure:"EMBEDDED_PG_PORT"`

	MaxUploadMB int    `mapstructure:"MAX_UPLOAD_MB"`
	ChartTopN   int    `mapstructure:"CHART_TOP_N"`
	RulesFile   string `mapstructure:"RULES_FILE"`
	KeepStaging bool   `mapstructure:"KEEP_STAGING"`
}

// Load reads configuration from the environment, tolerating a missing
// .env file.
func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("PORT", "8080")
	v.SetDefault("LOG_FORMAT", "text")
	v.SetDefault("EMBEDDED_PG_PORT", 15433)
	v.SetDefault("MAX_UPLOAD_MB", 32)
	v.SetDefault("CHART_TOP_N", 10)

	v.BindEnv("PORT")
	v.BindEnv("LOG_FORMAT")
	v.BindEnv("DENIAL_DB_URL")
	v.BindEnv("EMBEDDED_PG_PORT")
	v.BindEnv("MAX_UPLOAD_MB")
	v.BindEnv("CHART_TOP_N")
	v.BindEnv("RULES_FILE")
	v.BindEnv("KEEP_STAGING")

	// Try reading .env, but don't fail if missing
	_ = v.ReadInConfig()

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the configuration is safe to run.
func (c *Config) Validate() error {
	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("LOG_FORMAT must be \"text\" or \"json\", got %q", c.LogFormat)
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("MAX_UPLOAD_MB must be positive, got %d", c.MaxUploadMB)
	}
	if c.ChartTopN <= 0 {
		return fmt.Errorf("CHART_TOP_N must be positive, got %d", c.ChartTopN)
	}
	if c.DSN == "" && c.EmbeddedPort == 0 {
		return fmt.Errorf("either DENIAL_DB_URL or EMBEDDED_PG_PORT is required")
	}
	return nil
}

// UseEmbedded reports whether the server should boot its own ephemeral
// Postgres instead of connecting to an external one.
func (c *Config) UseEmbedded() bool {
	return c.DSN == ""
}
