package sheets

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
)

const canonicalLayout = "2006-01-02"

// generalLayouts are tried in order for non-slash date strings. Google Sheets
// serves USER_ENTERED cells back in whatever shape the sheet formats them.
var generalLayouts = []string{
	canonicalLayout,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

// NormalizeDate canonicalizes a cell's date representation to YYYY-MM-DD.
//
// Accepted inputs: already-canonical YYYY-MM-DD; anything matching a known
// layout; and slash-delimited triples where the 4-digit group identifies the
// year. When the year leads, the remainder is month/day; otherwise the first
// group is taken as day and the second as month.
func NormalizeDate(raw string) (string, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return "", errors.Newf("empty date").Category(errors.CategoryValidation).Build()
	}

	if strings.Contains(s, "/") {
		return normalizeSlashDate(s)
	}

	for _, layout := range generalLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(canonicalLayout), nil
		}
	}

	return "", errors.Newf("unrecognized date format %q", raw).
		Category(errors.CategoryValidation).
		Build()
}

func normalizeSlashDate(s string) (string, error) {
	groups := strings.Split(s, "/")
	if len(groups) != 3 {
		return "", errors.Newf("unrecognized date format %q", s).
			Category(errors.CategoryValidation).
			Build()
	}

	var year, month, day int
	switch {
	case len(groups[0]) == 4:
		// YYYY/MM/DD
		year, month, day = atoi(groups[0]), atoi(groups[1]), atoi(groups[2])
	case len(groups[2]) == 4:
		// DD/MM/YYYY; day-first is assumed for ambiguous values
		day, month, year = atoi(groups[0]), atoi(groups[1]), atoi(groups[2])
	default:
		// A 4-digit group in the middle (or none at all) is not a date
		return "", errors.Newf("ambiguous date format %q", s).
			Category(errors.CategoryValidation).
			Build()
	}

	candidate := fmt.Sprintf("%04d-%02d-%02d", year, month, day)
	if _, err := time.Parse(canonicalLayout, candidate); err != nil {
		return "", errors.Newf("invalid calendar date %q", s).
			Category(errors.CategoryValidation).
			Build()
	}
	return candidate, nil
}

func atoi(s string) int {
	n, err := strconv.Atoi(s)
	if err != nil {
		return -1
	}
	return n
}
