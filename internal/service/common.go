package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/vcscsvcscs/nutrifast/internal/apperr"
)

// DateLayout is the calendar date format accepted and produced by the API
const DateLayout = "2006-01-02"

// Clock returns the current time; tests inject fixed clocks
type Clock func() time.Time

func systemClock() time.Time {
	return time.Now()
}

// checkID rejects identifiers that cannot name a stored row. Malformed ids
// are reported as missing rather than as bad input.
func checkID(id, what string) error {
	if _, err := uuid.Parse(id); err != nil {
		return apperr.NotFoundf("%s %s not found", what, id)
	}
	return nil
}

// ParseDate parses a YYYY-MM-DD string into a UTC midnight date
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, apperr.Validationf("invalid date %q, expected YYYY-MM-DD", s)
	}
	return d, nil
}

// calendarDay truncates t to the date it falls on in loc, returned as UTC
// midnight so it compares equal to dates read from DATE columns
func calendarDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func trimmedPtr(s *string) *string {
	if s == nil {
		return nil
	}
	v := strings.TrimSpace(*s)
	if v == "" {
		return nil
	}
	return &v
}
