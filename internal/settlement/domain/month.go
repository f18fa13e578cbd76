package settlement

import (
	"strings"
	"time"
)

const monthLayout = "2006-01"

// Month is a calendar month in a fixed location.
type Month struct {
	start time.Time
}

// ParseMonth parses YYYY-MM in loc. A nil loc means UTC.
func ParseMonth(value string, loc *time.Location) (Month, error) {
	if loc == nil {
		loc = time.UTC
	}
	value = strings.TrimSpace(value)
	if value == "" {
		return Month{}, &ValidationError{Field: "month", Err: ErrInvalidMonth}
	}
	t, err := time.ParseInLocation(monthLayout, value, loc)
	if err != nil {
		return Month{}, &ValidationError{Field: "month", Err: ErrInvalidMonth}
	}
	return Month{start: t}, nil
}

// MonthOf returns the month containing t in loc.
func MonthOf(t time.Time, loc *time.Location) Month {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return Month{start: time.Date(local.Year(), local.Month(), 1, 0, 0, 0, 0, loc)}
}

// Start is the first instant of the month.
func (m Month) Start() time.Time { return m.start }

// End is the first instant of the next month.
func (m Month) End() time.Time { return m.start.AddDate(0, 1, 0) }

// Contains reports whether t falls inside the month.
func (m Month) Contains(t time.Time) bool {
	if m.start.IsZero() || t.IsZero() {
		return false
	}
	return !t.Before(m.start) && t.Before(m.End())
}

// IsZero reports whether the month is unset.
func (m Month) IsZero() bool { return m.start.IsZero() }

func (m Month) String() string {
	if m.start.IsZero() {
		return ""
	}
	return m.start.Format(monthLayout)
}
