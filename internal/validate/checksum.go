package validate

import (
	"strings"
	"unicode"
)

// ISSNChecksum reports whether an ISSN's check character is consistent with
// its first seven digits. The digits are weighted 8 down to 2 and the check
// character (X = 10) by 1; the weighted sum must be divisible by 11.
//
// Hyphens and whitespace are ignored. Anything that is not seven digits
// followed by a digit or X is invalid.
func ISSNChecksum(issn string) bool {
	s := strings.Map(func(r rune) rune {
		if r == '-' || unicode.IsSpace(r) {
			return -1
		}
		return unicode.ToUpper(r)
	}, issn)

	if len(s) != 8 {
		return false
	}

	total := 0
	for i := 0; i < 7; i++ {
		c := s[i]
		if c < '0' || c > '9' {
			return false
		}
		total += int(c-'0') * (8 - i)
	}

	switch c := s[7]; {
	case c == 'X':
		total += 10
	case c >= '0' && c <= '9':
		total += int(c - '0')
	default:
		return false
	}

	return total%11 == 0
}

// CheckDigit computes the check character for the first seven digits of an
// ISSN. It returns 0 if the input does not start with seven digits.
func CheckDigit(issn string) byte {
	digits := make([]int, 0, 7)
	for _, r := range issn {
		if len(digits) == 7 {
			break
		}
		switch {
		case r >= '0' && r <= '9':
			digits = append(digits, int(r-'0'))
		case r == '-' || unicode.IsSpace(r):
		default:
			return 0
		}
	}
	if len(digits) < 7 {
		return 0
	}

	total := 0
	for i, d := range digits {
		total += d * (8 - i)
	}
	check := (11 - total%11) % 11
	if check == 10 {
		return 'X'
	}
	return byte('0' + check)
}
