// Package utils provides utility functions for the application.
package utils

import (
	"time"
)

// DefaultTimezone is the operating timezone of the advertising accounts.
// WildJar call summaries and revert times are both computed in this zone.
const DefaultTimezone = "Australia/Sydney"

// UTCNow returns the current time in UTC
func UTCNow() time.Time {
	return time.Now().UTC()
}

// StartOfDay truncates t to midnight in its own location.
func StartOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// EndOfDay returns the last second of t's day in its own location.
func EndOfDay(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 23, 59, 59, 0, t.Location())
}
