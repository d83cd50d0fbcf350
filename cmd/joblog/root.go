package main

import (
	"context"
	"os"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/gyeh/joblog/internal/config"
	"github.com/gyeh/joblog/internal/db"
	"github.com/gyeh/joblog/internal/exitcode"
)

var (
	configPath string
	dsnFlag    string
	logFormat  string
	logLevel   string
)

var rootCmd = &cobra.Command{
	Use:   "joblog",
	Short: "Printer job-log harvester",
	Long:  "Downloads job-history exports from printers, normalizes them and merges new events into Postgres.",
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&configPath, "config", envOr("JOBLOG_CONFIG", "config.yaml"), "Path to YAML config file (or set JOBLOG_CONFIG)")
	pf.StringVar(&dsnFlag, "dsn", os.Getenv("JOBLOG_DB_URL"), "Postgres connection string (or set JOBLOG_DB_URL)")
	pf.StringVar(&logFormat, "log-format", "text", "Log format: text or json")
	pf.StringVar(&logLevel, "log-level", "info", "Log level: debug, info, warn, error")
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// mustLoadConfig loads the config file or exits; a run without a usable
// configuration cannot process any source.
func mustLoadConfig(log zerolog.Logger) *config.Config {
	cfg, err := config.Load(configPath)
	if err != nil {
		log.Error().Err(err).Str("config", configPath).Msg("configuration unusable")
		os.Exit(exitcode.ConfigError)
	}
	cfg.LogFormat = logFormat
	cfg.LogLevel = logLevel
	return cfg
}

// mustConnect opens the store pool or exits.
func mustConnect(ctx context.Context, log zerolog.Logger, cfg *config.Config) *pgxpool.Pool {
	dsn := dsnFlag
	if cfg != nil {
		var err error
		if dsn, err = cfg.ResolveDSN(dsnFlag); err != nil {
			log.Error().Err(err).Msg("no database configured")
			os.Exit(exitcode.UsageError)
		}
	}
	if dsn == "" {
		log.Error().Msg("--dsn or JOBLOG_DB_URL is required")
		os.Exit(exitcode.UsageError)
	}

	pool, err := db.NewPool(ctx, dsn)
	if err != nil {
		log.Error().Err(err).Msg("database connection failed")
		os.Exit(exitcode.DBConnError)
	}
	return pool
}
