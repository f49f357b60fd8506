package main

import (
	"fmt"
	"os"
	"sort"

	"github.com/matsen/certscan/internal/storage"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <results.db|results.jsonl>",
	Short: "Summarize stored results",
	Long: `Summarize stored results: error count, records by checksum status,
records by frequency, and the identifiers that failed their checksum.

For a SQLite results database (written by 'certscan scan --out results.db')
the most recent run is reported. For a JSONL file every record is counted.`,
	Args: cobra.ExactArgs(1),
	RunE: runReport,
}

func runReport(cmd *cobra.Command, args []string) error {
	path := args[0]
	if _, err := os.Stat(path); err != nil {
		exitWithError(ExitDataError, "results file: %v", err)
	}

	format, err := storage.FormatFor(path)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}

	var rep *storage.Report
	switch format {
	case storage.FormatSQLite:
		rep = mustReportLatestRun(path)
	case storage.FormatJSONL:
		records, err := storage.ReadAll(path)
		if err != nil {
			exitWithError(ExitDataError, "%v", err)
		}
		rep = storage.RecordsReport(records)
	default:
		exitWithError(ExitError, "report reads .db or .jsonl results, not %s", format)
	}

	if !humanOutput {
		return outputJSON(rep)
	}

	if rep.Run != nil {
		fmt.Printf("Run %s (%s)\n", rep.Run.ID, rep.Run.CreatedAt.Format("2006-01-02 15:04"))
	}
	fmt.Printf("%d records, %d errors\n\n", rep.Records, rep.Errors)
	printCounts("Checksum", rep.Checksum)
	fmt.Println()
	printCounts("Periodicidad", rep.Frequencies)
	if len(rep.Invalid) > 0 {
		fmt.Println("\nInvalid ISSN:")
		for _, s := range rep.Invalid {
			fmt.Printf("  %s\n", s)
		}
	}
	return nil
}

// mustReportLatestRun reports the most recent run in a results database,
// exits on error.
func mustReportLatestRun(path string) *storage.Report {
	db, err := storage.OpenDB(path)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	defer db.Close()

	run, err := db.LatestRun()
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if run == nil {
		exitWithError(ExitDataError, "no runs in %s", path)
	}

	rep, err := db.Report(*run)
	if err != nil {
		exitWithError(ExitError, "building report: %v", err)
	}
	return rep
}

// printCounts renders a count map as a two-column table sorted by key.
func printCounts(title string, counts map[string]int) {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	t := newTable(title, "Records")
	for _, k := range keys {
		t.AppendRow([]interface{}{k, counts[k]})
	}
	t.Render()
}
