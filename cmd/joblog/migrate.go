package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/joblog/internal/config"
	"github.com/gyeh/joblog/internal/db"
	"github.com/gyeh/joblog/internal/exitcode"
	"github.com/gyeh/joblog/internal/logging"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply database schema migrations",
	RunE:  runMigrate,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	log := logging.Setup(logFormat, logLevel)
	ctx := context.Background()

	// The config file is optional here; without it only the default
	// table is created.
	var cfg *config.Config
	if _, err := os.Stat(configPath); err == nil {
		cfg = mustLoadConfig(log)
	}

	pool := mustConnect(ctx, log, cfg)
	defer pool.Close()

	if err := db.ApplyMigrations(ctx, pool, log); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(exitcode.StoreError)
	}
	if cfg != nil {
		if err := db.EnsureTable(ctx, pool, log, cfg.Settings.MainLogTable); err != nil {
			log.Error().Err(err).Msg("event table setup failed")
			os.Exit(exitcode.StoreError)
		}
	}

	log.Info().Msg("all migrations applied successfully")
	return nil
}
