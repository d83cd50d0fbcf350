// mkfixture writes a synthetic printer job-log export for manual testing.
// Some events are wrapped over continuation rows the way devices do when a
// value contains a line break.
// Usage: go run ./cmd/mkfixture --out testdata/joblog.csv --events 200
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"strconv"
	"time"

	"github.com/gyeh/joblog/internal/model"
)

func main() {
	out := flag.String("out", "testdata/joblog.csv", "output export file")
	events := flag.Int("events", 200, "number of logical events")
	firstID := flag.Int("first-id", 1000, "log id of the first event")
	seed := flag.Int64("seed", 1, "random seed")
	wrapEvery := flag.Int("wrap-every", 7, "split every Nth event over continuation rows (0 disables)")
	flag.Parse()

	rng := rand.New(rand.NewSource(*seed))

	f, err := os.Create(*out)
	if err != nil {
		fmt.Fprintf(os.Stderr, "create output: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	fmt.Fprintln(f, "Job Log")
	fmt.Fprintf(f, "Output Date/Time,%s\n", time.Now().Format("2006/01/02 15:04:05"))
	fmt.Fprintln(f)

	var header []string
	for _, fld := range model.AllFields {
		if len(fld.Headers) > 0 {
			header = append(header, fld.Headers[0])
		}
	}
	// Devices open the table with the start time column.
	header[0], header[1] = header[1], header[0]

	w := csv.NewWriter(f)
	w.UseCRLF = true
	_ = w.Write(header)

	base := time.Date(2024, 1, 1, 8, 0, 0, 0, time.UTC)
	methods := []string{"Printer Driver", "Copy", "Scanner", "Document Server"}
	sizes := []string{"A4", "A3", "Letter", "B5"}
	wrapped := 0

	for i := 0; i < *events; i++ {
		start := base.Add(time.Duration(i)*7*time.Minute + time.Duration(rng.Intn(60))*time.Second)
		end := start.Add(time.Duration(5+rng.Intn(120)) * time.Second)
		pages := 1 + rng.Intn(40)

		row := map[string]string{
			"Start Date/Time":  start.Format("2006/01/02 15:04:05"),
			"Log ID":           strconv.Itoa(*firstID + i),
			"End Date/Time":    end.Format("2006/01/02 15:04:05"),
			"Log Type":         "Print",
			"Result":           "Completed",
			"Operation Method": methods[rng.Intn(len(methods))],
			"Status":           "Completed",
			"User ID":          fmt.Sprintf("user%02d", rng.Intn(25)),
			"Host IP Address":  fmt.Sprintf("10.0.%d.%d", rng.Intn(4), 10+rng.Intn(200)),
			"Source":           "Printer",
			"Print File Name":  fmt.Sprintf("document-%d.pdf", i),
			"Created Pages":    strconv.Itoa(pages),
			"Exit Pages":       strconv.Itoa(pages),
			"Exit Papers":      strconv.Itoa((pages + 1) / 2),
			"Paper Size":       sizes[rng.Intn(len(sizes))],
			"Paper Type":       "Plain",
		}

		if *wrapEvery > 0 && i%*wrapEvery == 0 {
			// First row carries the key; the rest arrives on continuation rows.
			first := make([]string, len(header))
			cont := make([]string, len(header))
			for j, h := range header {
				if j < 2 {
					first[j] = row[h]
				} else {
					cont[j] = row[h]
				}
			}
			_ = w.Write(first)
			_ = w.Write(cont)
			wrapped++
			continue
		}

		rec := make([]string, len(header))
		for j, h := range header {
			rec[j] = row[h]
		}
		_ = w.Write(rec)
	}
	w.Flush()
	if err := w.Error(); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Fprintln(f, "Download completed.")

	fmt.Printf("Wrote %d events (%d wrapped) to %s\n", *events, wrapped, *out)
}
