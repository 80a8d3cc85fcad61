package engine

import (
	"fmt"
	"time"
)

// Date is a calendar date without time-of-day or location.
// It is an immutable value: every operation returns a new Date.
type Date struct {
	Year  int
	Month time.Month
	Day   int
}

// DateOf truncates an instant to its calendar date in UTC.
func DateOf(t time.Time) Date {
	u := t.UTC()
	return Date{Year: u.Year(), Month: u.Month(), Day: u.Day()}
}

// ParseDate parses an ISO calendar date (2006-01-02).
func ParseDate(s string) (Date, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return Date{}, fmt.Errorf("invalid calendar date %q: %w", s, err)
	}
	return DateOf(t), nil
}

// Midnight returns the instant at 00:00 UTC on this date.
func (d Date) Midnight() time.Time {
	return time.Date(d.Year, d.Month, d.Day, 0, 0, 0, 0, time.UTC)
}

// At returns the instant a fractional number of hours into this date.
func (d Date) At(hours float64) time.Time {
	return d.Midnight().Add(time.Duration(hours * float64(time.Hour)))
}

// Next returns the following calendar date.
func (d Date) Next() Date {
	return DateOf(d.Midnight().AddDate(0, 0, 1))
}

// Weekday returns the day of the week for this date.
func (d Date) Weekday() time.Weekday {
	return d.Midnight().Weekday()
}

// Before reports whether d is earlier than other.
func (d Date) Before(other Date) bool {
	return d.Midnight().Before(other.Midnight())
}

// After reports whether d is later than other.
func (d Date) After(other Date) bool {
	return d.Midnight().After(other.Midnight())
}

// String returns the ISO representation (2006-01-02).
func (d Date) String() string {
	return fmt.Sprintf("%04d-%02d-%02d", d.Year, int(d.Month), d.Day)
}

// DateRange is an inclusive range of calendar dates.
type DateRange struct {
	From Date
	To   Date
}

// Dates expands the range day-by-day, both endpoints included.
// An inverted range yields nothing.
func (r DateRange) Dates() []Date {
	if r.From.After(r.To) {
		return nil
	}
	var out []Date
	for d := r.From; !d.After(r.To); d = d.Next() {
		out = append(out, d)
	}
	return out
}
