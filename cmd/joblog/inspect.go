package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gyeh/joblog/internal/archive"
	"github.com/gyeh/joblog/internal/exitcode"
	"github.com/gyeh/joblog/internal/logging"
)

var inspectFile string

var inspectCmd = &cobra.Command{
	Use:   "inspect",
	Short: "Summarize an archived Parquet batch",
	RunE:  runInspect,
}

func init() {
	inspectCmd.Flags().StringVar(&inspectFile, "file", "", "Path to archive file (required)")
	_ = inspectCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(inspectCmd)
}

func runInspect(cmd *cobra.Command, args []string) error {
	log := logging.Setup(logFormat, logLevel)

	events, err := archive.ReadAll(inspectFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to read archive")
		os.Exit(exitcode.ParseError)
	}

	byPrinter := make(map[string]int)
	var pages int64
	for _, e := range events {
		byPrinter[e.PrinterName]++
		if e.ExitPages != nil {
			pages += *e.ExitPages
		}
	}
	names := make([]string, 0, len(byPrinter))
	for name := range byPrinter {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Printf("Archive: %s\n", inspectFile)
	fmt.Printf("Events:  %d\n", len(events))
	fmt.Printf("Pages:   %d\n", pages)
	for _, name := range names {
		fmt.Printf("  %-24s %d\n", name, byPrinter[name])
	}
	return nil
}
