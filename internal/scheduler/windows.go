/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import "time"

// Matches reports whether the instant falls inside the given window.
func Matches(spec TimeSpec, instant time.Time) bool {
	return spec.Matches(instant)
}

// Matches converts the instant into the window's timezone and checks the
// local weekday and time of day. Lower bounds are inclusive, upper bounds
// exclusive.
//
// The weekday range is checked against the local day first. An overnight
// range (From > To) then matches from From until midnight and from midnight
// until To on every covered day. Equal bounds cover the whole day.
func (r Recurring) Matches(instant time.Time) bool {
	local := instant.In(r.location())
	day := weekdayOf(local)
	now := NewClockTime(local.Hour(), local.Minute())

	switch {
	case r.From == r.To:
		return r.coversDay(day)

	case r.From < r.To:
		// Same-day window (e.g., 09:00 to 17:00)
		return r.coversDay(day) && now >= r.From && now < r.To

	default:
		// Overnight window (e.g., 20:00 to 06:00)
		return r.coversDay(day) && (now >= r.From || now < r.To)
	}
}

// coversDay checks the weekday range, wrapping across the week boundary when
// WeekdayFrom > WeekdayTo (e.g., Fri-Mon).
func (r Recurring) coversDay(day Weekday) bool {
	if r.WeekdayFrom <= r.WeekdayTo {
		return day >= r.WeekdayFrom && day <= r.WeekdayTo
	}
	return day >= r.WeekdayFrom || day <= r.WeekdayTo
}

// Matches checks Start <= instant < End, or instant >= Start when open-ended.
func (a Absolute) Matches(instant time.Time) bool {
	if instant.Before(a.Start) {
		return false
	}
	return a.End == nil || instant.Before(*a.End)
}
