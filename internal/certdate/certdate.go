// Package certdate resolves the issuance date written in a certificate's
// closing prose ("... a los 5 de mayo de 2021").
//
// The date is not part of the certificate's field block, so it is found by an
// independent pass over all lines rather than by anchored scanning.
package certdate

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"golang.org/x/text/cases"
)

var (
	// "a los 5 de mayo de 2021"
	phrasePattern = regexp.MustCompile(`(?i)a los\s+(\d{1,2})\s+de\s+(\p{L}+)\s+de\s+(\d{4})`)
	// "15 marzo". RE2's \b only knows ASCII word characters, so the word
	// boundaries are spelled out to treat accented letters as part of a word.
	dayMonthPattern = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])(\d{1,2})\s+(\p{L}+)`)
	yearPattern     = regexp.MustCompile(`(?:^|[^\p{L}\p{N}_])((?:19|20)\d{2})(?:$|[^\p{L}\p{N}_])`)
)

var months = map[string]string{
	"enero":      "01",
	"febrero":    "02",
	"marzo":      "03",
	"abril":      "04",
	"mayo":       "05",
	"junio":      "06",
	"julio":      "07",
	"agosto":     "08",
	"septiembre": "09",
	"setiembre":  "09",
	"octubre":    "10",
	"noviembre":  "11",
	"diciembre":  "12",
}

// Month returns the two-digit month number for a Spanish month name, or "".
func Month(name string) string {
	return months[cases.Fold().String(strings.TrimSpace(name))]
}

// Resolve returns the certificate date as YYYY-MM-DD, or "" if none can be
// determined.
func Resolve(lines []string) string {
	if d, ok := fromPhrase(lines); ok {
		return d
	}
	return fromParts(lines)
}

// fromPhrase looks for the full "a los D de MES de YYYY" phrase, which may be
// broken across lines.
func fromPhrase(lines []string) (string, bool) {
	nonEmpty := make([]string, 0, len(lines))
	for _, ln := range lines {
		if ln != "" {
			nonEmpty = append(nonEmpty, ln)
		}
	}
	joined := strings.TrimSpace(strings.Join(nonEmpty, " "))

	m := phrasePattern.FindStringSubmatch(joined)
	if m == nil {
		return "", false
	}
	month := Month(m[2])
	if month == "" {
		return "", false
	}
	day, _ := strconv.Atoi(m[1])
	return format(m[3], month, day), true
}

// fromParts combines the last "D MES" pair in the document with the last
// plausible year.
func fromParts(lines []string) string {
	var (
		day   int
		month string
	)
	for _, ln := range lines {
		for _, m := range dayMonthPattern.FindAllStringSubmatch(ln, -1) {
			if mn := Month(m[2]); mn != "" {
				day, _ = strconv.Atoi(m[1])
				month = mn
			}
		}
	}

	var year string
	for i := len(lines) - 1; i >= 0; i-- {
		if m := yearPattern.FindStringSubmatch(lines[i]); m != nil {
			year = m[1]
			break
		}
	}

	if month == "" || year == "" {
		return ""
	}
	return format(year, month, day)
}

func format(year, month string, day int) string {
	return fmt.Sprintf("%s-%s-%02d", year, month, day)
}
