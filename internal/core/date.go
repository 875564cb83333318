package core

import (
	"encoding/json"
	"fmt"
	"time"
)

// DateLayout is the wire format for all dates: month-day-year, zero-padded.
const DateLayout = "01-02-2006"

// Date is a calendar day. The embedded time.Time is always midnight UTC,
// so whole-day arithmetic over the embedded instant is exact.
type Date struct {
	time.Time
}

// NewDate creates a Date from year, month, day.
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// ParseDate parses a MM-DD-YYYY string.
func ParseDate(s string) (Date, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return Date{}, fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return Date{Time: t}, nil
}

func (d Date) String() string {
	return d.Format(DateLayout)
}

// MarshalJSON renders the date as a MM-DD-YYYY string.
func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON accepts a MM-DD-YYYY string.
func (d *Date) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDate
	}
	parsed, err := ParseDate(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// Day returns the day of the month.
func (d Date) Day() int {
	return d.Time.Day()
}

// AddDays returns the date n days later.
func (d Date) AddDays(n int) Date {
	return Date{Time: d.Time.AddDate(0, 0, n)}
}

// DaysSince returns the number of whole days from other to d.
// Negative when d precedes other.
func (d Date) DaysSince(other Date) int {
	return int(d.Time.Sub(other.Time).Hours() / 24)
}

// SameMonth reports whether both dates fall in the same calendar month
// of the same year.
func (d Date) SameMonth(other Date) bool {
	return d.Year() == other.Year() && d.Month() == other.Month()
}

// IsLastDayOfMonth reports whether d is the final calendar day of its month.
func (d Date) IsLastDayOfMonth() bool {
	return d.Time.Day() == daysInMonth(d.Year(), d.Month())
}

// daysInMonth returns the number of days in the given month.
// Day 0 of the next month normalizes to the last day of this one.
func daysInMonth(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// AddMonths advances the date by n calendar months, clamping the day to
// the target month's length (Jan 31 + 1 month = Feb 28/29).
func (d Date) AddMonths(n int) Date {
	year, month, day := d.Time.Date()
	first := time.Date(year, month+time.Month(n), 1, 0, 0, 0, 0, time.UTC)
	if last := daysInMonth(first.Year(), first.Month()); day > last {
		day = last
	}
	return NewDate(first.Year(), int(first.Month()), day)
}

// CalendarDiff returns the elapsed time from start to end as calendar
// years, months, and days: the largest whole number of months that fits,
// then the exact remaining days. Returns zeros when end precedes start.
func CalendarDiff(start, end Date) (years, months, days int) {
	if end.Time.Before(start.Time) {
		return 0, 0, 0
	}
	totalMonths := (end.Year()-start.Year())*12 + int(end.Month()) - int(start.Month())
	anchor := start.AddMonths(totalMonths)
	if anchor.Time.After(end.Time) {
		totalMonths--
		anchor = start.AddMonths(totalMonths)
	}
	return totalMonths / 12, totalMonths % 12, end.DaysSince(anchor)
}
