package model

import (
	"fmt"
	"time"
)

// Month is a calendar month key.
type Month struct {
	Year  int
	Month time.Month
}

// MonthOf returns the calendar month containing t.
func MonthOf(t time.Time) Month {
	return Month{Year: t.Year(), Month: t.Month()}
}

// ParseMonth parses a "YYYY-MM" month key.
func ParseMonth(s string) (Month, error) {
	t, err := time.Parse("2006-01", s)
	if err != nil {
		return Month{}, fmt.Errorf("parsing month %q: %w", s, err)
	}
	return MonthOf(t), nil
}

// String formats the month as "YYYY-MM".
func (m Month) String() string {
	return fmt.Sprintf("%04d-%02d", m.Year, int(m.Month))
}

// Next returns the following calendar month.
func (m Month) Next() Month {
	if m.Month == time.December {
		return Month{Year: m.Year + 1, Month: time.January}
	}
	return Month{Year: m.Year, Month: m.Month + 1}
}

// Before reports whether m precedes o.
func (m Month) Before(o Month) bool {
	if m.Year != o.Year {
		return m.Year < o.Year
	}
	return m.Month < o.Month
}

// After reports whether m follows o.
func (m Month) After(o Month) bool { return o.Before(m) }

// MonthsBetween returns every month from first through last, inclusive.
// Returns nil when last precedes first.
func MonthsBetween(first, last Month) []Month {
	if last.Before(first) {
		return nil
	}
	var months []Month
	for m := first; !m.After(last); m = m.Next() {
		months = append(months, m)
	}
	return months
}
