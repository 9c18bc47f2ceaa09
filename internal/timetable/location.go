package timetable

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/garyellow/kebiao-ics/internal/stringutil"
)

// CanonicalLocation expands a raw room token such as "金海9408" into a descriptive
// address ("金海校区 胜祥商学院楼 4楼08室").
//
// Room codes have 4 runes (building, floor, room x2) or 5 runes (two-digit
// building, floor, room x2). Anything else, including non-numeric building codes,
// falls back to "金海校区 {code}". The function never panics.
func (t *Tables) CanonicalLocation(raw string) (address string) {
	code := stringutil.StripSpaces(strings.ReplaceAll(raw, t.campusMarker, ""))
	fallback := fmt.Sprintf("%s %s", t.campusName, code)

	defer func() {
		if r := recover(); r != nil {
			address = fallback
		}
	}()

	runes := []rune(code)
	var building, floor, room string
	switch len(runes) {
	case 4:
		building, floor, room = string(runes[0]), string(runes[1]), string(runes[2:])
	case 5:
		building, floor, room = string(runes[0:2]), string(runes[2]), string(runes[3:])
	default:
		return fallback
	}

	name, ok := t.buildingName(building)
	if !ok {
		return fallback
	}
	return fmt.Sprintf("%s %s %s楼%s室", t.campusName, name, floor, room)
}

// buildingName resolves a building code to its display name.
func (t *Tables) buildingName(code string) (string, bool) {
	if name, ok := t.specialBuildings[code]; ok {
		return name, true
	}
	if !stringutil.IsNumeric(code) {
		return "", false
	}
	n, err := strconv.Atoi(code)
	if err != nil {
		return "", false
	}
	if n >= 1 && n <= t.primaryBuildings {
		return fmt.Sprintf("第%d教学楼", n), true
	}
	return fmt.Sprintf("%d号楼", n), true
}
