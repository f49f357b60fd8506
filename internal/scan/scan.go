// Package scan implements bounded, order-preserving search over the lines of
// an extracted document.
//
// A document is an ordered slice of trimmed lines. Blank lines are kept so
// that positions stay stable; they are never offered to a validator.
package scan

import (
	"strings"

	"golang.org/x/text/cases"
)

// Validator reports whether a candidate line plausibly holds a field value.
type Validator func(text string) bool

// Match is a line accepted by a validator. Index is the line's position in the
// document and is what callers anchor subsequent searches on.
type Match struct {
	Index int    `json:"index"`
	Text  string `json:"text"`
}

// Scanner searches forward through lines, skipping structural labels and
// URL-like lines. The zero value skips no labels.
type Scanner struct {
	labels map[string]struct{}
}

// New creates a Scanner that skips lines equal (after case folding) to any of
// the given labels.
func New(labels []string) *Scanner {
	s := &Scanner{labels: make(map[string]struct{}, len(labels))}
	for _, l := range labels {
		l = strings.TrimSpace(l)
		if l == "" {
			continue
		}
		s.labels[fold(l)] = struct{}{}
	}
	return s
}

// IsLabel reports whether text is one of the scanner's known labels.
func (s *Scanner) IsLabel(text string) bool {
	if s == nil || len(s.labels) == 0 {
		return false
	}
	_, ok := s.labels[fold(strings.TrimSpace(text))]
	return ok
}

// Forward returns the first candidate after start that satisfies validate,
// examining at most maxLookahead candidates. Labels and URL-like lines are
// skipped and do not count as candidates.
func (s *Scanner) Forward(lines []string, start int, validate Validator, maxLookahead int) (Match, bool) {
	m, ok, _ := s.ForwardCount(lines, start, validate, maxLookahead)
	return m, ok
}

// ForwardCount is Forward that also reports how many candidates were tested.
func (s *Scanner) ForwardCount(lines []string, start int, validate Validator, maxLookahead int) (Match, bool, int) {
	if maxLookahead <= 0 || validate == nil {
		return Match{}, false, 0
	}
	if start < -1 {
		start = -1
	}

	examined := 0
	for i := start + 1; i < len(lines) && examined < maxLookahead; i++ {
		cand := strings.TrimSpace(lines[i])
		if cand == "" {
			continue
		}
		if s.IsLabel(cand) || IsURLLike(cand) {
			continue
		}
		examined++
		if validate(cand) {
			return Match{Index: i, Text: cand}, true, examined
		}
	}
	return Match{}, false, examined
}

// Last returns the last non-empty line anywhere in lines that satisfies
// validate.
func Last(lines []string, validate Validator) (Match, bool) {
	if validate == nil {
		return Match{}, false
	}
	for i := len(lines) - 1; i >= 0; i-- {
		cand := strings.TrimSpace(lines[i])
		if cand != "" && validate(cand) {
			return Match{Index: i, Text: cand}, true
		}
	}
	return Match{}, false
}

// IsURLLike reports whether a line is a web or mail reference rather than a
// value.
func IsURLLike(text string) bool {
	return strings.HasPrefix(text, "http") || strings.Contains(text, "mailto:")
}

// Split breaks extracted text into trimmed lines, keeping blank lines.
func Split(text string) []string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	raw := strings.Split(text, "\n")
	lines := make([]string, len(raw))
	for i, ln := range raw {
		lines[i] = strings.TrimSpace(ln)
	}
	return lines
}

// fold normalizes text for label comparison.
func fold(s string) string {
	return cases.Fold().String(s)
}
