package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/matsen/certscan/internal/batch"
	"github.com/matsen/certscan/internal/config"
	"github.com/matsen/certscan/internal/issn"
	"github.com/matsen/certscan/internal/storage"
	"github.com/spf13/cobra"
)

var (
	scanDir     string
	scanOut     string
	scanJSON    bool
	scanWorkers int
	scanProfile string
	scanNoOCR   bool
	scanAppend  bool
)

func init() {
	scanCmd.Flags().StringVarP(&scanDir, "dir", "d", "", "Directory searched recursively for PDFs (default: config default_dir, then .)")
	scanCmd.Flags().StringVarP(&scanOut, "out", "o", "", "Output file; format chosen by extension (.xlsx, .csv, .json, .jsonl, .db)")
	scanCmd.Flags().BoolVar(&scanJSON, "json", false, "Also write a JSON copy next to the output")
	scanCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0, "Documents processed concurrently (default: config workers, then 1)")
	scanCmd.Flags().StringVar(&scanProfile, "profile", "", "Profile file (.yml, .yaml, .json, .json5)")
	scanCmd.Flags().BoolVar(&scanNoOCR, "no-ocr", false, "Disable the OCR fallback for scanned documents")
	scanCmd.Flags().BoolVar(&scanAppend, "append", false, "Append to a .jsonl output instead of replacing it")
	rootCmd.AddCommand(scanCmd)
}

var scanCmd = &cobra.Command{
	Use:   "scan [paths...]",
	Short: "Extract records from a batch of certificates",
	Long: `Extract one record per certificate and write them to the output file.

Paths may be PDF files or directories (searched recursively). Without
paths, --dir is searched. A document that fails to read produces a record
with only the file name and the error; the rest of the batch continues.`,
	RunE: runScan,
}

// ScanResponse is the response for the scan command.
type ScanResponse struct {
	batch.Summary
	Outputs []string `json:"outputs"`
}

func runScan(cmd *cobra.Command, args []string) error {
	gc := mustLoadGlobalConfig()
	profile := mustLoadProfile(scanProfile, gc)

	dir := scanDir
	if dir == "" {
		dir = gc.DefaultDir
	}
	if dir == "" {
		dir = "."
	}
	paths, err := collectPaths(args, dir)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if len(paths) == 0 {
		exitWithError(ExitDataError, "no PDF files found")
	}

	out := firstNonEmpty(scanOut, gc.Output, config.DefaultOutput)
	format, err := storage.FormatFor(out)
	if err != nil {
		exitWithError(ExitError, "%v", err)
	}
	if scanAppend && format != storage.FormatJSONL {
		exitWithError(ExitError, "--append needs a .jsonl output, got %s", out)
	}

	workers := scanWorkers
	if workers < 1 {
		workers = gc.Workers
	}

	source := newLineSource(profile, gc, !scanNoOCR)
	ex, err := issn.NewExtractor(profile, source, slog.Default())
	if err != nil {
		exitWithError(ExitConfigError, "building extractor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	slog.Info("scanning certificates", "documents", len(paths), "workers", workers)
	records := batch.Run(ctx, ex, paths, batch.Options{Workers: workers, Logger: slog.Default()})

	if err := writeRecords(out, records, scanAppend); err != nil {
		exitWithError(ExitError, "writing %s: %v", out, err)
	}
	outputs := []string{out}

	if scanJSON {
		if sidecar := jsonSidecarPath(out); sidecar != out {
			if err := storage.WriteJSON(sidecar, records); err != nil {
				exitWithError(ExitError, "writing %s: %v", sidecar, err)
			}
			outputs = append(outputs, sidecar)
		}
	}

	resp := ScanResponse{Summary: batch.Summarize(records), Outputs: outputs}
	if humanOutput {
		printRecordsHuman(records)
		fmt.Printf("\n%d documents: %d valid, %d invalid checksum, %d without ISSN, %d errors\n",
			resp.Total, resp.Valid, resp.Invalid, resp.NoISSN, resp.Errors)
		for _, o := range outputs {
			fmt.Printf("Wrote %s\n", o)
		}
		return nil
	}
	return outputJSON(resp)
}

// collectPaths expands file and directory arguments into PDF paths. Without
// arguments, dir is searched.
func collectPaths(args []string, dir string) ([]string, error) {
	if len(args) == 0 {
		return batch.FindPDFs(dir)
	}

	var paths []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", arg, err)
		}
		if !info.IsDir() {
			paths = append(paths, arg)
			continue
		}
		found, err := batch.FindPDFs(arg)
		if err != nil {
			return nil, err
		}
		paths = append(paths, found...)
	}
	return paths, nil
}

// writeRecords stores records at out. With appendJSONL the records are added
// to the end of an existing JSONL file.
func writeRecords(out string, records []issn.Record, appendJSONL bool) error {
	if !appendJSONL {
		return storage.Write(out, records)
	}
	for _, rec := range records {
		if err := storage.Append(out, rec); err != nil {
			return err
		}
	}
	return nil
}

// jsonSidecarPath returns out with its extension replaced by .json.
func jsonSidecarPath(out string) string {
	return strings.TrimSuffix(out, filepath.Ext(out)) + ".json"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

func printRecordsHuman(records []issn.Record) {
	t := newTable("Archivo", "ISSN", "Checksum", "Título", "Periodicidad", "Fecha", "Error")
	for _, r := range records {
		t.AppendRow([]interface{}{
			r.File, r.ISSN, r.Checksum, truncateString(r.Title, TitleMaxLen),
			r.Frequency, r.CertificateDate, r.Error,
		})
	}
	t.Render()
}
