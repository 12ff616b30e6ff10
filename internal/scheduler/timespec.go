/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package scheduler parses work-hour schedule strings into time windows and
// matches instants against them.
package scheduler

import (
	"fmt"
	"strings"
	"time"
)

// Weekday is a day of the week where Monday is 0 and Sunday is 6.
type Weekday int

const (
	Monday Weekday = iota
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayAbbrev = [...]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// String returns the three-letter abbreviation of the weekday.
func (d Weekday) String() string {
	if d < Monday || d > Sunday {
		return fmt.Sprintf("Weekday(%d)", int(d))
	}
	return weekdayAbbrev[d]
}

// weekdayOf returns the Monday-based weekday of t in t's own location.
func weekdayOf(t time.Time) Weekday {
	return Weekday((int(t.Weekday()) + 6) % 7)
}

// ClockTime is a local time of day in minutes after midnight (00:00-23:59).
type ClockTime int

// NewClockTime builds a ClockTime from hour and minute.
func NewClockTime(hour, minute int) ClockTime {
	return ClockTime(hour*60 + minute)
}

// String renders the clock time as HH:MM.
func (c ClockTime) String() string {
	return fmt.Sprintf("%02d:%02d", int(c)/60, int(c)%60)
}

// TimeSpec is a single time window: either Recurring or Absolute.
type TimeSpec interface {
	// Matches reports whether the instant falls inside the window.
	Matches(instant time.Time) bool

	// String renders the window in a form accepted by Parse.
	String() string

	timeSpec()
}

// Recurring is a weekly window bound to a weekday range, a local time range
// and a timezone.
type Recurring struct {
	WeekdayFrom Weekday
	WeekdayTo   Weekday
	From        ClockTime
	To          ClockTime
	Location    *time.Location
}

func (Recurring) timeSpec() {}

// String renders the window as "Mon-Fri 08:00-18:00 Europe/Berlin".
func (r Recurring) String() string {
	days := r.WeekdayFrom.String()
	if r.WeekdayTo != r.WeekdayFrom {
		days += "-" + r.WeekdayTo.String()
	}
	return fmt.Sprintf("%s %s-%s %s", days, r.From, r.To, r.location())
}

func (r Recurring) location() *time.Location {
	if r.Location == nil {
		return time.UTC
	}
	return r.Location
}

// Absolute is a one-time window. A nil End leaves the window open-ended.
type Absolute struct {
	Start time.Time
	End   *time.Time
}

func (Absolute) timeSpec() {}

// String renders the window as an RFC 3339 instant, or as an ISO-8601
// "start/end" interval when the end is bound.
func (a Absolute) String() string {
	if a.End == nil {
		return a.Start.Format(time.RFC3339)
	}
	return a.Start.Format(time.RFC3339) + "/" + a.End.Format(time.RFC3339)
}

// ScheduleSet is an ordered list of windows. Order is kept for rendering only;
// a match in any window counts.
type ScheduleSet []TimeSpec

// Matches reports whether any window of the set contains the instant.
func (s ScheduleSet) Matches(instant time.Time) bool {
	for _, spec := range s {
		if spec.Matches(instant) {
			return true
		}
	}
	return false
}

// String renders the set as a comma-separated list accepted by Parse.
func (s ScheduleSet) String() string {
	parts := make([]string, len(s))
	for i, spec := range s {
		parts[i] = spec.String()
	}
	return strings.Join(parts, ", ")
}
