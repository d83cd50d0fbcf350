package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/spf13/cobra"

	"github.com/gyeh/joblog/internal/archive"
	"github.com/gyeh/joblog/internal/exitcode"
	"github.com/gyeh/joblog/internal/exportfile"
	"github.com/gyeh/joblog/internal/logging"
	"github.com/gyeh/joblog/internal/normalize"
)

var (
	planFile     string
	planSource   string
	planEncoding string
	planMarker   string
	planParquet  string
)

var planCmd = &cobra.Command{
	Use:   "plan",
	Short: "Dry-run parse of an export file (no writes)",
	RunE:  runPlan,
}

func init() {
	f := planCmd.Flags()
	f.StringVar(&planFile, "file", "", "Path to export file (required)")
	f.StringVar(&planSource, "source", "plan", "Printer name to tag events with")
	f.StringVar(&planEncoding, "encoding", "utf-8", "Character set of the export")
	f.StringVar(&planMarker, "marker", exportfile.DefaultMarker, "Phrase that starts the tabular section")
	f.StringVar(&planParquet, "parquet", "", "Also write the normalized events to this Parquet file")
	_ = planCmd.MarkFlagRequired("file")
	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	log := logging.Setup(logFormat, logLevel)

	sha, err := normalize.FileHash(planFile)
	if err != nil {
		log.Error().Err(err).Msg("failed to hash file")
		os.Exit(exitcode.UsageError)
	}

	batch, st, err := exportfile.ParseFile(planFile, planSource, planEncoding, exportfile.Options{Marker: planMarker})
	if err != nil {
		log.Error().Err(err).Msg("failed to read export")
		os.Exit(exitcode.ParseError)
	}
	events, dropped := normalize.Events(batch)

	fmt.Println("=== joblog plan ===")
	fmt.Printf("File:          %s\n", planFile)
	fmt.Printf("SHA-256:       %s\n", sha)
	fmt.Printf("Marker found:  %v\n", st.MarkerFound)
	fmt.Printf("Header:        %q\n", st.Header)
	fmt.Printf("Data rows:     %d\n", st.Rows)
	fmt.Printf("Continuations: %d\n", st.Continuations)
	fmt.Printf("Orphan rows:   %d\n", st.Orphans)
	fmt.Printf("Malformed:     %d\n", st.Malformed)
	fmt.Printf("Events:        %d\n", len(batch))
	fmt.Printf("Storable:      %d (%d rejected)\n", len(events), dropped)

	if len(events) > 0 {
		sort.Slice(events, func(i, j int) bool {
			return events[i].StartDateTime.Before(events[j].StartDateTime)
		})
		fmt.Printf("First start:   %s\n", events[0].StartDateTime.Format("2006-01-02 15:04:05"))
		fmt.Printf("Last start:    %s\n", events[len(events)-1].StartDateTime.Format("2006-01-02 15:04:05"))
	}

	if planParquet != "" {
		if err := archive.Write(planParquet, events); err != nil {
			log.Error().Err(err).Msg("failed to write parquet")
			os.Exit(exitcode.ParseError)
		}
		fmt.Printf("Wrote %d events to %s\n", len(events), planParquet)
	}
	return nil
}
