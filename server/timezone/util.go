// Package timezone provides timezone utilities for the schedule assistant.
//
// Availability computation never fails on an unresolvable timezone; it
// falls back to UTC so a bad user setting degrades instead of erroring.
package timezone

import (
	"fmt"
	"time"
)

// UTC is the coordinated universal time timezone.
var UTC = time.UTC

// ParseTimezone parses an IANA timezone identifier (e.g. "Asia/Bangkok").
// If the timezone is invalid, returns UTC and an error.
func ParseTimezone(tz string) (*time.Location, error) {
	if tz == "" || tz == "UTC" {
		return UTC, nil
	}

	loc, err := time.LoadLocation(tz)
	if err != nil {
		return UTC, fmt.Errorf("invalid timezone %q: %w", tz, err)
	}

	return loc, nil
}

// IsValidTimezone checks if a timezone identifier is valid.
func IsValidTimezone(tz string) bool {
	_, err := ParseTimezone(tz)
	return err == nil
}

// Clock is a time of day without a date.
type Clock struct {
	Hour   int
	Minute int
}

// ParseClock parses a time-of-day string in "HH:MM" form.
func ParseClock(s string) (Clock, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return Clock{}, fmt.Errorf("invalid time of day %q: %w", s, err)
	}
	return Clock{Hour: t.Hour(), Minute: t.Minute()}, nil
}

// Combine builds a timezone-aware instant from a calendar date and a clock.
func Combine(date time.Time, c Clock, loc *time.Location) time.Time {
	if loc == nil {
		loc = UTC
	}
	return time.Date(date.Year(), date.Month(), date.Day(), c.Hour, c.Minute, 0, 0, loc)
}

// StartOfDay returns the start of the day (00:00:00) in the given timezone.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = UTC
	}
	t = t.In(loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// FormatInterval formats a start/end pair for human-readable messages.
func FormatInterval(start, end time.Time, loc *time.Location) string {
	if loc == nil {
		loc = UTC
	}
	return fmt.Sprintf("%s - %s",
		start.In(loc).Format("2006-01-02 15:04"),
		end.In(loc).Format("15:04"))
}
