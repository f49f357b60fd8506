// Package extract runs an ordered field pipeline over a document's lines.
//
// The identifier is located anywhere in the document. The remaining fields are
// searched strictly forward, each starting from the line of the last field
// that was found, so fields are consumed in document order and a later field's
// text can never be assigned to an earlier one.
package extract

import (
	"github.com/matsen/certscan/internal/scan"
)

// Field is one semantic slot in a pipeline.
type Field struct {
	Name      string
	Validate  scan.Validator
	Lookahead int
}

// Pipeline locates an identifier and then each field in order.
type Pipeline struct {
	Scanner    *scan.Scanner
	Identifier scan.Validator
	Fields     []Field
}

// Result holds everything a pipeline run found.
type Result struct {
	// Identifier is nil when no identifier-shaped line exists.
	Identifier *scan.Match
	// Fields maps field names to matches; missing fields are absent.
	Fields map[string]scan.Match
	// Anchors records the line index each field's search started after,
	// whether or not the field was found.
	Anchors map[string]int
}

// Value returns the text of a found field, or "".
func (r Result) Value(name string) string {
	return r.Fields[name].Text
}

// Has reports whether a field was found.
func (r Result) Has(name string) bool {
	_, ok := r.Fields[name]
	return ok
}

// Run executes the pipeline. It is a pure function of lines.
func (p *Pipeline) Run(lines []string) Result {
	res := Result{
		Fields:  make(map[string]scan.Match, len(p.Fields)),
		Anchors: make(map[string]int, len(p.Fields)),
	}

	anchor := -1
	if p.Identifier != nil {
		// Certificates may repeat the identifier; the final occurrence is the
		// one printed next to the field block.
		if m, ok := scan.Last(lines, p.Identifier); ok {
			res.Identifier = &m
			anchor = m.Index
		}
	}

	for _, f := range p.Fields {
		res.Anchors[f.Name] = anchor
		m, ok := p.Scanner.Forward(lines, anchor, f.Validate, f.Lookahead)
		if !ok {
			continue
		}
		res.Fields[f.Name] = m
		anchor = m.Index
	}

	return res
}
