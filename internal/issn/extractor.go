package issn

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/matsen/certscan/internal/certdate"
	"github.com/matsen/certscan/internal/config"
	"github.com/matsen/certscan/internal/extract"
	"github.com/matsen/certscan/internal/scan"
	"github.com/matsen/certscan/internal/validate"
)

// LineSource turns a document into its ordered, trimmed lines.
type LineSource interface {
	ExtractLines(ctx context.Context, path string) ([]string, error)
}

// Extractor turns certificate lines into records.
type Extractor struct {
	pipeline *extract.Pipeline
	source   LineSource
	logger   *slog.Logger
}

// NewPipeline builds the certificate field pipeline described by a profile.
func NewPipeline(p *config.Profile) (*extract.Pipeline, error) {
	medium, err := validate.Keywords(p.MediumPatterns)
	if err != nil {
		return nil, fmt.Errorf("compiling medium patterns: %w", err)
	}

	return &extract.Pipeline{
		Scanner:    scan.New(p.SkipLabels),
		Identifier: validate.ISSN,
		Fields: []extract.Field{
			{Name: FieldTitle, Validate: validate.Title(p.Title.MinLen, p.Title.MaxLen), Lookahead: p.Lookahead.Title},
			{Name: FieldAbbreviatedTitle, Validate: validate.AbbreviatedTitle(p.AbbreviatedTitle.MinLen, p.AbbreviatedTitle.MaxLen), Lookahead: p.Lookahead.AbbreviatedTitle},
			{Name: FieldPublisher, Validate: validate.Publisher(p.Publisher.MinLen, p.Publisher.Markers), Lookahead: p.Lookahead.Publisher},
			{Name: FieldFrequency, Validate: validate.Vocabulary(p.Frequencies), Lookahead: p.Lookahead.Frequency},
			{Name: FieldMedium, Validate: medium, Lookahead: p.Lookahead.Medium},
			{Name: FieldAssignmentDate, Validate: validate.DateTime, Lookahead: p.Lookahead.AssignmentDate},
		},
	}, nil
}

// NewExtractor creates an Extractor for the given profile. source may be nil
// if only Extract is used; logger may be nil.
func NewExtractor(p *config.Profile, source LineSource, logger *slog.Logger) (*Extractor, error) {
	pipeline, err := NewPipeline(p)
	if err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{pipeline: pipeline, source: source, logger: logger}, nil
}

// Extract assembles a record from a document's lines.
func (e *Extractor) Extract(file string, lines []string) Record {
	res := e.pipeline.Run(lines)

	rec := Record{
		File:             file,
		Checksum:         ChecksumAbsent,
		Title:            res.Value(FieldTitle),
		AbbreviatedTitle: res.Value(FieldAbbreviatedTitle),
		Publisher:        res.Value(FieldPublisher),
		Frequency:        res.Value(FieldFrequency),
		Medium:           res.Value(FieldMedium),
		AssignmentDate:   res.Value(FieldAssignmentDate),
		CertificateDate:  certdate.Resolve(lines),
	}

	valid := false
	if res.Identifier != nil {
		rec.ISSN = res.Identifier.Text
		valid = validate.ISSNChecksum(rec.ISSN)
		rec.Checksum = ChecksumInvalid
		if valid {
			rec.Checksum = ChecksumValid
		}
	}
	rec.ISSNValid = &valid

	var missing []string
	for _, f := range e.pipeline.Fields {
		if !res.Has(f.Name) {
			missing = append(missing, f.Name)
		}
	}
	e.logger.Debug("extracted certificate",
		"file", file,
		"issn", rec.ISSN,
		"checksum", rec.Checksum,
		"missing", missing)
	return rec
}

// ExtractFile reads a document through the line source and extracts its
// record. Failures are reported in the record, never returned.
func (e *Extractor) ExtractFile(ctx context.Context, path string) Record {
	name := filepath.Base(path)
	if e.source == nil {
		return ErrorRecord(name, fmt.Errorf("no line source configured"))
	}

	lines, err := e.source.ExtractLines(ctx, path)
	if err != nil {
		e.logger.Warn("document failed", "file", path, "error", err)
		return ErrorRecord(name, fmt.Errorf("extracting lines: %w", err))
	}
	return e.Extract(name, lines)
}
