package timesheet

import (
	"regexp"
	"time"

	"github.com/shopstack-asia/shopstack-timesheet/internal/errors"
)

// dateLayout is the canonical calendar day format used throughout the system.
const dateLayout = "2006-01-02"

var datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

// MaxHours caps a single entry; a day has at most 24 hours.
const MaxHours = 24

// ValidateDate checks that date is a real calendar day in YYYY-MM-DD form.
func ValidateDate(date string) error {
	if !datePattern.MatchString(date) {
		return errors.Newf("invalid date %q: expected YYYY-MM-DD", date).
			Category(errors.CategoryValidation).
			Build()
	}
	if _, err := time.Parse(dateLayout, date); err != nil {
		return errors.Newf("invalid date %q: %v", date, err).
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}

// ValidateHours checks the submitted hour value is within [0, 24].
func ValidateHours(hours float64) error {
	if hours < 0 || hours > MaxHours {
		return errors.Newf("hours %g out of range [0, %d]", hours, MaxHours).
			Category(errors.CategoryValidation).
			Build()
	}
	return nil
}
