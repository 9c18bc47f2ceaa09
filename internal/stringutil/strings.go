// Package stringutil provides small string helpers shared by the timetable parser.
package stringutil

import (
	"strings"
	"unicode"
)

// IsNumeric checks if a string contains only ASCII digits.
// Returns false for empty strings.
func IsNumeric(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return false
		}
	}
	return true
}

// StripSpaces removes every Unicode space, including full-width U+3000.
//
// Example:
//
//	StripSpaces("金海 9408") returns "金海9408"
func StripSpaces(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsSpace(r) {
			return -1
		}
		return r
	}, s)
}

// NonEmptyLines splits s on newlines and returns the trimmed, non-blank lines.
func NonEmptyLines(s string) []string {
	raw := strings.Split(s, "\n")
	lines := make([]string, 0, len(raw))
	for _, l := range raw {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}
