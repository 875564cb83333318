// Package services implements the simulation engine: recurrence matching,
// the day-stepped cash-flow forecaster, and the debt payoff state machine.
//
// This file implements the Strategy Pattern for recurrence matching. Each
// frequency type has its own matcher that decides whether a recurring item
// fires on a given calendar date.
package services

import (
	"fincast/internal/core"
)

// RecurrenceMatcher decides whether a recurring item fires on a date.
// Implementations are pure and never called for dates before the item's
// start date.
type RecurrenceMatcher interface {
	MatchesOn(date core.Date, item core.RecurringItem) bool
}

// monthlyMatcher fires when the day of the month equals the start date's
// day. No clamping for short months: an item anchored on the 31st never
// fires in a 30-day month.
type monthlyMatcher struct{}

func (monthlyMatcher) MatchesOn(date core.Date, item core.RecurringItem) bool {
	return date.Day() == item.StartDate.Day()
}

// intervalMatcher fires when the elapsed days since start are an exact
// multiple of the interval. Covers weekly (7) and biweekly (14).
type intervalMatcher struct {
	days int
}

func (m intervalMatcher) MatchesOn(date core.Date, item core.RecurringItem) bool {
	return date.DaysSince(item.StartDate)%m.days == 0
}

// recurrenceStrategies maps frequency types to their matchers.
var recurrenceStrategies = map[core.Frequency]RecurrenceMatcher{
	core.Monthly:  monthlyMatcher{},
	core.Weekly:   intervalMatcher{days: 7},
	core.Biweekly: intervalMatcher{days: 14},
}

// Matches reports whether a recurring item fires on the given date.
// Dates before the item's start never match. An unrecognized frequency
// never fires; that is a lenient policy, not an error.
func Matches(date core.Date, item core.RecurringItem) bool {
	if date.DaysSince(item.StartDate) < 0 {
		return false
	}
	matcher, ok := recurrenceStrategies[item.Frequency]
	if !ok {
		return false
	}
	return matcher.MatchesOn(date, item)
}
