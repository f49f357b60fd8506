package storage

import (
	"strings"

	"github.com/matsen/certscan/internal/issn"
)

// Report aggregates a set of records. Run is set when the records come from
// a results database.
type Report struct {
	Run         *Run           `json:"run,omitempty"`
	Records     int            `json:"records"`
	Errors      int            `json:"errors"`
	Checksum    map[string]int `json:"checksum"`
	Frequencies map[string]int `json:"frequencies"`
	Invalid     []string       `json:"invalid_issn,omitempty"`
}

// RecordsReport builds the same aggregates as DB.Report from records held in
// memory, e.g. read back from a JSONL file.
func RecordsReport(records []issn.Record) *Report {
	rep := &Report{
		Records:     len(records),
		Checksum:    make(map[string]int),
		Frequencies: make(map[string]int),
	}
	for _, r := range records {
		if r.Failed() {
			rep.Errors++
			continue
		}
		if r.Checksum != "" {
			rep.Checksum[string(r.Checksum)]++
		}
		if r.Frequency != "" {
			rep.Frequencies[strings.ToLower(r.Frequency)]++
		}
		if r.Checksum == issn.ChecksumInvalid {
			rep.Invalid = append(rep.Invalid, r.ISSN)
		}
	}
	return rep
}
