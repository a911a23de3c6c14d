package domain

import (
	"fmt"
	"strings"
	"time"
)

// Date is a calendar day without a time-of-day component. Install,
// maintenance, and scheduling dates are day-granular; keeping them as a
// dedicated value type makes exact-day comparisons (calendar buckets,
// ordering invariants) unambiguous across time zones.
type Date struct {
	t time.Time
}

// NewDate builds a Date from year, month, and day in UTC.
func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates an instant to its UTC calendar day.
func DateOf(t time.Time) Date {
	y, m, d := t.UTC().Date()
	return NewDate(y, m, d)
}

// ParseDate parses a YYYY-MM-DD string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(time.DateOnly, s)
	if err != nil {
		return Date{}, fmt.Errorf("parse date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// MustParseDate parses a YYYY-MM-DD string and panics on failure. Intended
// for fixtures and seed data.
func MustParseDate(s string) Date {
	d, err := ParseDate(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Time returns midnight UTC of the day.
func (d Date) Time() time.Time { return d.t }

// IsZero reports whether the date is unset.
func (d Date) IsZero() bool { return d.t.IsZero() }

// Equal reports whether two dates name the same calendar day.
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }

// Before reports whether d falls before other.
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }

// After reports whether d falls after other.
func (d Date) After(other Date) bool { return d.t.After(other.t) }

// AddMonths shifts the date by the given number of calendar months,
// following time.Time normalization for out-of-range days.
func (d Date) AddMonths(months int) Date {
	return DateOf(d.t.AddDate(0, months, 0))
}

// AddDays shifts the date by the given number of days.
func (d Date) AddDays(days int) Date {
	return DateOf(d.t.AddDate(0, 0, days))
}

// Year returns the calendar year.
func (d Date) Year() int { return d.t.Year() }

// Month returns the calendar month.
func (d Date) Month() time.Month { return d.t.Month() }

// Day returns the day of the month.
func (d Date) Day() int { return d.t.Day() }

// String renders the date as YYYY-MM-DD, or empty when unset.
func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(time.DateOnly)
}

// MarshalJSON encodes the date as a YYYY-MM-DD string, or null when unset.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.t.Format(time.DateOnly) + `"`), nil
}

// UnmarshalJSON decodes a YYYY-MM-DD string or null.
func (d *Date) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" || s == `""` {
		*d = Date{}
		return nil
	}
	s = strings.Trim(s, `"`)
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
