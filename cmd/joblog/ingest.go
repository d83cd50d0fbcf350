package main

import (
	"context"
	"os"

	"github.com/spf13/cobra"

	"github.com/gyeh/joblog/internal/exitcode"
	"github.com/gyeh/joblog/internal/ingest"
	"github.com/gyeh/joblog/internal/logging"
	"github.com/gyeh/joblog/internal/model"
	"github.com/gyeh/joblog/internal/store"
)

var (
	ingestFile   string
	ingestSource string
	ingestKeep   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Merge a local export file for one printer",
	Long:  "Parses and merges an export already on disk, e.g. one kept after a database error. No duplicate check is made.",
	RunE:  runIngest,
}

func init() {
	f := ingestCmd.Flags()
	f.StringVar(&ingestFile, "file", "", "Path to export file (required)")
	f.StringVar(&ingestSource, "source", "", "Printer model or name from the config (required)")
	f.BoolVar(&ingestKeep, "keep", false, "Keep the file even when the merge succeeds")
	_ = ingestCmd.MarkFlagRequired("file")
	_ = ingestCmd.MarkFlagRequired("source")
	rootCmd.AddCommand(ingestCmd)
}

func runIngest(cmd *cobra.Command, args []string) error {
	log := logging.Setup(logFormat, logLevel)
	ctx := context.Background()

	if _, err := os.Stat(ingestFile); err != nil {
		log.Error().Err(err).Msg("file not accessible")
		os.Exit(exitcode.UsageError)
	}

	cfg := mustLoadConfig(log)
	p, ok := cfg.Printer(ingestSource)
	if !ok {
		log.Error().Str("source", ingestSource).Msg("unknown printer")
		os.Exit(exitcode.UsageError)
	}

	pool := mustConnect(ctx, log, cfg)
	defer pool.Close()

	st := store.NewPG(pool)
	sum := ingest.ProcessFile(ctx, ingest.Deps{Store: st, Recorder: st, Log: log}, cfg, p, ingestFile, ingest.FileOptions{Keep: ingestKeep})
	printRunSummary(os.Stdout, &model.RunSummary{Sources: []model.SourceSummary{sum}, Duration: sum.Duration})

	switch sum.Disposition {
	case model.StoreErrorKept:
		os.Exit(exitcode.StoreError)
	case model.EmptySkipped:
		os.Exit(exitcode.ParseError)
	}
	return nil
}
