// Package storage writes extraction records to spreadsheets, JSON and SQLite.
package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/matsen/certscan/internal/issn"
)

// ErrUnsupportedFormat is returned for output paths with an unknown extension.
var ErrUnsupportedFormat = errors.New("unsupported output format")

// Format identifies an output sink.
type Format string

const (
	FormatXLSX   Format = "xlsx"
	FormatCSV    Format = "csv"
	FormatJSON   Format = "json"
	FormatJSONL  Format = "jsonl"
	FormatSQLite Format = "sqlite"
)

// FormatFor picks the sink for an output path by its extension.
func FormatFor(path string) (Format, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".xlsx":
		return FormatXLSX, nil
	case ".csv":
		return FormatCSV, nil
	case ".json":
		return FormatJSON, nil
	case ".jsonl":
		return FormatJSONL, nil
	case ".db", ".sqlite", ".sqlite3":
		return FormatSQLite, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrUnsupportedFormat, ext)
	}
}

// Write stores records at path in the format implied by its extension.
// SQLite outputs append a new run; every other format replaces the file.
func Write(path string, records []issn.Record) error {
	format, err := FormatFor(path)
	if err != nil {
		return err
	}

	switch format {
	case FormatXLSX:
		return WriteXLSX(path, records)
	case FormatCSV:
		return WriteCSV(path, records)
	case FormatJSON:
		return WriteJSON(path, records)
	case FormatJSONL:
		return WriteAll(path, records)
	default:
		db, err := OpenDB(path)
		if err != nil {
			return err
		}
		defer db.Close()
		_, err = db.SaveRun(records)
		return err
	}
}
