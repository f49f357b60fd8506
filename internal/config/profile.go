// Package config handles extraction profiles and global CLI configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"dario.cat/mergo"
	"github.com/titanous/json5"
	"gopkg.in/yaml.v3"
)

// ErrUnknownFormat is returned for profile files that are neither YAML nor JSON5.
var ErrUnknownFormat = errors.New("unknown profile format")

// Profile describes one document family: the labels its template prints, how
// far to look for each field, and the validator thresholds.
//
// Zero values inherit from DefaultProfile when a profile file is loaded.
type Profile struct {
	Family           string         `yaml:"family" json:"family"`
	SkipLabels       []string       `yaml:"skip_labels" json:"skip_labels"`
	Lookahead        Lookahead      `yaml:"lookahead" json:"lookahead"`
	Frequencies      []string       `yaml:"frequencies" json:"frequencies"`
	MediumPatterns   []string       `yaml:"medium_patterns" json:"medium_patterns"`
	Title            LengthBounds   `yaml:"title" json:"title"`
	AbbreviatedTitle LengthBounds   `yaml:"abbreviated_title" json:"abbreviated_title"`
	Publisher        PublisherRules `yaml:"publisher" json:"publisher"`
	OCR              OCRSettings    `yaml:"ocr" json:"ocr"`
}

// Lookahead holds the maximum number of candidate lines examined per field.
type Lookahead struct {
	Title            int `yaml:"title" json:"title"`
	AbbreviatedTitle int `yaml:"abbreviated_title" json:"abbreviated_title"`
	Publisher        int `yaml:"publisher" json:"publisher"`
	Frequency        int `yaml:"frequency" json:"frequency"`
	Medium           int `yaml:"medium" json:"medium"`
	AssignmentDate   int `yaml:"assignment_date" json:"assignment_date"`
}

// LengthBounds is an inclusive rune-length range.
type LengthBounds struct {
	MinLen int `yaml:"min_len" json:"min_len"`
	MaxLen int `yaml:"max_len" json:"max_len"`
}

// PublisherRules tunes the publisher heuristic.
type PublisherRules struct {
	MinLen  int      `yaml:"min_len" json:"min_len"`
	Markers []string `yaml:"markers" json:"markers"`
}

// OCRSettings controls the OCR fallback for documents with little text.
type OCRSettings struct {
	MinChars int `yaml:"min_chars" json:"min_chars"` // below this many non-space characters, OCR is used
	// A text layer with fewer non-blank lines, or with a line longer than
	// MaxLineLen, lost its line breaks and is recognized again with OCR.
	MinLines   int     `yaml:"min_lines" json:"min_lines"`
	MaxLineLen int     `yaml:"max_line_len" json:"max_line_len"`
	Lang       string  `yaml:"lang" json:"lang"`
	DPI        int     `yaml:"dpi" json:"dpi"`
	Rate       float64 `yaml:"rate" json:"rate"` // OCR launches per second, 0 for unlimited
}

// DefaultProfile returns the profile for ISSN assignment certificates issued
// by the Biblioteca Nacional de Colombia.
func DefaultProfile() Profile {
	return Profile{
		Family: "issn",
		SkipLabels: []string{
			"certifica:",
			"publicación seriada cuyos datos son:",
			"issn asignado:",
			"título:",
			"título abreviado:",
			"editor:",
			"periodicidad:",
			"soporte:",
			"fecha de asignación:",
		},
		Lookahead: Lookahead{
			Title:            10,
			AbbreviatedTitle: 10,
			Publisher:        12,
			Frequency:        12,
			Medium:           12,
			AssignmentDate:   15,
		},
		Frequencies: []string{
			"anual", "semestral", "trimestral", "bimestral", "mensual", "quincenal",
			"semanal", "diario", "irregular", "bienal", "otro", "desconocido",
		},
		MediumPatterns: []string{
			`electr`,
			`en\s+l[ií]nea`,
			`impreso`,
			`papel`,
			`otro soporte`,
		},
		Title:            LengthBounds{MinLen: 3, MaxLen: 200},
		AbbreviatedTitle: LengthBounds{MinLen: 3, MaxLen: 120},
		Publisher:        PublisherRules{MinLen: 6, Markers: []string{"UNIMINUTO"}},
		OCR:              OCRSettings{MinChars: 50, MinLines: 3, MaxLineLen: 300, Lang: "spa", DPI: 200},
	}
}

// LoadProfile reads a profile file and fills unset fields from
// DefaultProfile. An empty path returns the default profile.
func LoadProfile(path string) (*Profile, error) {
	def := DefaultProfile()
	if path == "" {
		return &def, nil
	}

	data, err := os.ReadFile(ExpandTilde(path))
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}

	var p Profile
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yml", ".yaml":
		if err := yaml.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing profile: %w", err)
		}
	case ".json", ".json5":
		if err := json5.Unmarshal(data, &p); err != nil {
			return nil, fmt.Errorf("parsing profile: %w", err)
		}
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownFormat, ext)
	}

	if err := mergo.Merge(&p, def); err != nil {
		return nil, fmt.Errorf("merging profile defaults: %w", err)
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Validate checks that the profile's bounds are usable.
func (p *Profile) Validate() error {
	if p.Title.MinLen > p.Title.MaxLen {
		return fmt.Errorf("invalid profile: title min_len %d exceeds max_len %d", p.Title.MinLen, p.Title.MaxLen)
	}
	if p.AbbreviatedTitle.MinLen > p.AbbreviatedTitle.MaxLen {
		return fmt.Errorf("invalid profile: abbreviated_title min_len %d exceeds max_len %d",
			p.AbbreviatedTitle.MinLen, p.AbbreviatedTitle.MaxLen)
	}
	if p.OCR.Rate < 0 {
		return fmt.Errorf("invalid profile: ocr rate must not be negative")
	}
	if p.OCR.MinChars < 0 || p.OCR.MinLines < 0 || p.OCR.MaxLineLen < 0 {
		return fmt.Errorf("invalid profile: ocr min_chars, min_lines and max_line_len must not be negative")
	}
	return nil
}

// Save writes the profile as YAML.
func (p *Profile) Save(path string) error {
	data, err := yaml.Marshal(p)
	if err != nil {
		return fmt.Errorf("encoding profile: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing profile: %w", err)
	}
	return nil
}
