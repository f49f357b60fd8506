package storage

import (
	"encoding/csv"
	"fmt"
	"os"
	"slices"

	"github.com/matsen/certscan/internal/issn"
	"github.com/xuri/excelize/v2"
)

// SheetName is the worksheet that holds the records in XLSX output.
const SheetName = "certificados"

// validColumn is the issn_valido column, written as a boolean cell.
var validColumn = slices.Index(issn.Columns, "issn_valido")

// utf8BOM lets spreadsheet programs detect the encoding of CSV output.
const utf8BOM = "\ufeff"

// WriteCSV writes records with a header row.
func WriteCSV(path string, records []issn.Record) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating csv: %w", err)
	}
	defer f.Close()

	if _, err := f.WriteString(utf8BOM); err != nil {
		return fmt.Errorf("writing csv: %w", err)
	}

	w := csv.NewWriter(f)
	if err := w.Write(issn.Columns); err != nil {
		return fmt.Errorf("writing csv header: %w", err)
	}
	for i, rec := range records {
		if err := w.Write(rec.Row()); err != nil {
			return fmt.Errorf("writing csv row %d: %w", i, err)
		}
	}
	w.Flush()
	if err := w.Error(); err != nil {
		return fmt.Errorf("flushing csv: %w", err)
	}
	return nil
}

// WriteXLSX writes records to a single-sheet workbook.
func WriteXLSX(path string, records []issn.Record) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetName); err != nil {
		return fmt.Errorf("naming sheet: %w", err)
	}

	if err := setRow(f, 1, cellValues(issn.Columns)); err != nil {
		return err
	}
	for i, rec := range records {
		cells := cellValues(rec.Row())
		if rec.ISSNValid != nil {
			cells[validColumn] = *rec.ISSNValid
		}
		if err := setRow(f, i+2, cells); err != nil {
			return err
		}
	}

	if err := f.SetPanes(SheetName, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	}); err != nil {
		return fmt.Errorf("freezing header: %w", err)
	}

	if err := f.SaveAs(path); err != nil {
		return fmt.Errorf("saving workbook: %w", err)
	}
	return nil
}

func setRow(f *excelize.File, row int, cells []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, row)
	if err != nil {
		return fmt.Errorf("locating row %d: %w", row, err)
	}
	if err := f.SetSheetRow(SheetName, cell, &cells); err != nil {
		return fmt.Errorf("writing row %d: %w", row, err)
	}
	return nil
}

func cellValues(values []string) []interface{} {
	cells := make([]interface{}, len(values))
	for i, v := range values {
		cells[i] = v
	}
	return cells
}
