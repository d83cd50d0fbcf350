package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/gyeh/joblog/internal/acquire"
	"github.com/gyeh/joblog/internal/config"
	"github.com/gyeh/joblog/internal/exitcode"
	"github.com/gyeh/joblog/internal/ingest"
	"github.com/gyeh/joblog/internal/logging"
	"github.com/gyeh/joblog/internal/store"
)

var syncSources []string

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Download, parse and merge the job log of every configured printer",
	RunE:  runSync,
}

func init() {
	syncCmd.Flags().StringSliceVar(&syncSources, "source", nil, "Only process these printers (model or printer name)")
	rootCmd.AddCommand(syncCmd)
}

func runSync(cmd *cobra.Command, args []string) error {
	log := logging.Setup(logFormat, logLevel)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg := mustLoadConfig(log)
	if len(syncSources) > 0 {
		var selected []config.Printer
		for _, name := range syncSources {
			p, ok := cfg.Printer(name)
			if !ok {
				log.Error().Str("source", name).Msg("unknown printer")
				os.Exit(exitcode.UsageError)
			}
			selected = append(selected, p)
		}
		cfg.Printers = selected
	}

	pool := mustConnect(ctx, log, cfg)
	defer pool.Close()
	log.Info().Msg("connected to database")

	st := store.NewPG(pool)
	deps := ingest.Deps{
		Store:    st,
		Recorder: st,
		Acquirers: map[string]acquire.Acquirer{
			config.AcquireHTTP:  acquire.NewHTTP(cfg.Settings.DownloadTimeout, cfg.Settings.InsecureTLS),
			config.AcquireLocal: acquire.Local{},
		},
		Log: log,
	}

	summary := ingest.Run(ctx, deps, cfg)
	printRunSummary(os.Stdout, summary)

	if summary.Failed() {
		os.Exit(exitcode.PartialSuccess)
	}
	return nil
}
