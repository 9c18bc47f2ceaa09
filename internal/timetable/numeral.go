package timetable

import (
	"strconv"
	"strings"

	"github.com/garyellow/kebiao-ics/internal/stringutil"
)

// Numeral converts a period numeral such as "三", "十一" or "7" to an integer.
//
// Lookup order:
//   - the fixed table (一 .. 十二)
//   - Arabic digits
//   - forms containing 十: "十" alone is 10, otherwise 10 + the value of the
//     second rune (10 when that rune is not in the table)
//
// Anything else yields 1. The fallback is deliberately lossy.
func (t *Tables) Numeral(s string) int {
	s = strings.TrimSpace(s)
	if n, ok := t.numerals[s]; ok {
		return n
	}
	if stringutil.IsNumeric(s) {
		if n, err := strconv.Atoi(s); err == nil {
			return n
		}
	}
	if strings.Contains(s, "十") {
		r := []rune(s)
		if len(r) > 1 {
			if n, ok := t.numerals[string(r[1])]; ok {
				return 10 + n
			}
		}
		return 10
	}
	return 1
}

// ChineseNumeral converts s using the default tables.
func ChineseNumeral(s string) int {
	return defaultTables.Numeral(s)
}
