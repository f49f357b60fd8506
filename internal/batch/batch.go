// Package batch processes a collection of certificates, one record per
// document. A failing document never stops the rest of the batch.
package batch

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/matsen/certscan/internal/issn"
	"golang.org/x/sync/errgroup"
)

// Extractor produces a record for one document.
type Extractor interface {
	ExtractFile(ctx context.Context, path string) issn.Record
}

// Options configures a batch run.
type Options struct {
	Workers int // concurrent documents; values below 1 mean 1
	Logger  *slog.Logger
}

// FindPDFs walks dir recursively and returns every *.pdf file (any case),
// sorted by path.
func FindPDFs(dir string) ([]string, error) {
	var paths []string
	err := filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.EqualFold(filepath.Ext(path), ".pdf") {
			paths = append(paths, path)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", dir, err)
	}
	sort.Strings(paths)
	return paths, nil
}

// Run extracts a record for every path. Records are returned in input order.
// Once ctx is canceled, documents not yet started are reported with the
// context error.
func Run(ctx context.Context, ex Extractor, paths []string, opts Options) []issn.Record {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	records := make([]issn.Record, len(paths))
	g := new(errgroup.Group)
	g.SetLimit(workers)

	for i, path := range paths {
		if err := ctx.Err(); err != nil {
			records[i] = issn.ErrorRecord(filepath.Base(path), err)
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				records[i] = issn.ErrorRecord(filepath.Base(path), err)
				return nil
			}
			records[i] = extractOne(ctx, ex, path)
			if records[i].Failed() {
				logger.Warn("document failed", "file", path, "error", records[i].Error)
			} else {
				logger.Info("processed", "file", path, "issn", records[i].ISSN)
			}
			return nil
		})
	}
	_ = g.Wait() // workers never return errors

	return records
}

// extractOne isolates a single document so a panic in a parser only fails
// that document.
func extractOne(ctx context.Context, ex Extractor, path string) (rec issn.Record) {
	defer func() {
		if r := recover(); r != nil {
			rec = issn.ErrorRecord(filepath.Base(path), fmt.Errorf("panic: %v", r))
		}
	}()
	return ex.ExtractFile(ctx, path)
}

// Summary counts the outcomes of a batch.
type Summary struct {
	Total    int `json:"total"`
	Errors   int `json:"errors"`
	Valid    int `json:"checksum_valid"`
	Invalid  int `json:"checksum_invalid"`
	NoISSN   int `json:"checksum_absent"`
	Complete int `json:"complete"` // every field found
}

// Summarize counts records by outcome.
func Summarize(records []issn.Record) Summary {
	s := Summary{Total: len(records)}
	for _, r := range records {
		if r.Failed() {
			s.Errors++
			continue
		}
		switch r.Checksum {
		case issn.ChecksumValid:
			s.Valid++
		case issn.ChecksumInvalid:
			s.Invalid++
		default:
			s.NoISSN++
		}
		if r.ISSN != "" && r.Title != "" && r.AbbreviatedTitle != "" && r.Publisher != "" &&
			r.Frequency != "" && r.Medium != "" && r.AssignmentDate != "" {
			s.Complete++
		}
	}
	return s
}
