// Package validate provides the field predicates used to classify candidate
// lines of a certificate.
//
// Validators are deliberately conservative: a false positive moves the scan
// anchor and can shift every field that follows it. The shape heuristics for
// titles and publishers are approximate and their thresholds are configurable.
package validate

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

var (
	issnPattern     = regexp.MustCompile(`^(?:\d{4}-\d{3}[\dX]|\d{4}-\d{4})$`)
	dateTimePattern = regexp.MustCompile(`^\d{1,2}/\d{1,2}/\d{2,4}(?:\s+\d{1,2}:\d{2})?$`)
	upperRunPattern = regexp.MustCompile(`[A-ZÁÉÍÓÚÑ]{3}`)
)

// ISSN reports whether s has the shape of an ISSN: four digits, a hyphen,
// three digits and a check character (digit or X).
func ISSN(s string) bool {
	return issnPattern.MatchString(strings.TrimSpace(s))
}

// DateTime reports whether s is a D/M/Y date with an optional H:M time,
// e.g. "02/03/2023 12:00" or "2/3/23".
func DateTime(s string) bool {
	return dateTimePattern.MatchString(strings.TrimSpace(s))
}

// Vocabulary returns a validator accepting exactly one of terms, ignoring case.
func Vocabulary(terms []string) func(string) bool {
	set := make(map[string]struct{}, len(terms))
	for _, t := range terms {
		set[fold(strings.TrimSpace(t))] = struct{}{}
	}
	return func(s string) bool {
		_, ok := set[fold(strings.TrimSpace(s))]
		return ok
	}
}

// Keywords returns a validator accepting text that contains any of the given
// regular expression fragments, ignoring case. Invalid fragments are reported
// by the returned error.
func Keywords(patterns []string) (func(string) bool, error) {
	if len(patterns) == 0 {
		return func(string) bool { return false }, nil
	}
	re, err := regexp.Compile(`(?i)(?:` + strings.Join(patterns, "|") + `)`)
	if err != nil {
		return nil, err
	}
	return re.MatchString, nil
}

// Title returns a validator for a full publication title: a length within
// [minLen, maxLen] runes that is neither a label nor a web reference.
func Title(minLen, maxLen int) func(string) bool {
	return func(s string) bool {
		s = strings.TrimSpace(s)
		if !lengthWithin(s, minLen, maxLen) {
			return false
		}
		if strings.HasSuffix(s, ":") {
			return false
		}
		if strings.HasPrefix(s, "http") || strings.Contains(s, "mailto:") {
			return false
		}
		return true
	}
}

// AbbreviatedTitle returns a validator for an abbreviated key title. These
// usually carry a parenthetical qualifier or abbreviation periods ("Rev. Ej.");
// a single all-caps line is rejected.
func AbbreviatedTitle(minLen, maxLen int) func(string) bool {
	return func(s string) bool {
		s = strings.TrimSpace(s)
		if !lengthWithin(s, minLen, maxLen) {
			return false
		}
		if strings.Contains(s, "(") && strings.Contains(s, ")") {
			return true
		}
		return strings.Contains(s, ".") && !IsUpper(s)
	}
}

// Publisher returns a validator for a publisher name: at least minLen runes,
// a run of three capitals, and either fully uppercase or containing one of
// markers.
func Publisher(minLen int, markers []string) func(string) bool {
	folded := make([]string, 0, len(markers))
	for _, m := range markers {
		if m = strings.TrimSpace(m); m != "" {
			folded = append(folded, fold(m))
		}
	}
	return func(s string) bool {
		s = strings.TrimSpace(s)
		if utf8.RuneCountInString(s) < minLen {
			return false
		}
		if !upperRunPattern.MatchString(s) {
			return false
		}
		if IsUpper(s) {
			return true
		}
		fs := fold(s)
		for _, m := range folded {
			if strings.Contains(fs, m) {
				return true
			}
		}
		return false
	}
}

// IsUpper reports whether s has at least one cased letter and no lowercase
// letters.
func IsUpper(s string) bool {
	cased := false
	for _, r := range s {
		if unicode.IsLower(r) {
			return false
		}
		if unicode.IsUpper(r) || unicode.IsTitle(r) {
			cased = true
		}
	}
	return cased
}

func lengthWithin(s string, minLen, maxLen int) bool {
	n := utf8.RuneCountInString(s)
	return n >= minLen && n <= maxLen
}

func fold(s string) string {
	return cases.Fold().String(s)
}
