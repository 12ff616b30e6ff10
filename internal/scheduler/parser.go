/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package scheduler

import (
	"errors"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidInterval is wrapped by ParseError when an absolute interval does
// not end after it starts.
var ErrInvalidInterval = errors.New("interval start must be before its end")

// ParseError reports a malformed schedule string.
type ParseError struct {
	// Spec is the full schedule string being parsed.
	Spec string
	// Entry is the comma-separated entry that failed.
	Entry string
	// Reason describes what is wrong with the entry.
	Reason string
	// Err is the underlying error, if any.
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid time spec %q: %s", e.Entry, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}

var (
	absolutePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}`)
	clockPattern    = regexp.MustCompile(`^(\d{2}):(\d{2})$`)
)

const naiveTimestampLayout = "2006-01-02T15:04:05"

var weekdayTokens = map[string]Weekday{
	"mon": Monday, "monday": Monday,
	"tue": Tuesday, "tuesday": Tuesday,
	"wed": Wednesday, "wednesday": Wednesday,
	"thu": Thursday, "thursday": Thursday,
	"fri": Friday, "friday": Friday,
	"sat": Saturday, "saturday": Saturday,
	"sun": Sunday, "sunday": Sunday,
}

// MustParse is like Parse but panics on error. Intended for tests and
// package-level defaults.
func MustParse(spec string) ScheduleSet {
	set, err := Parse(spec)
	if err != nil {
		panic(err)
	}
	return set
}

// Parse parses a comma- (or semicolon-) separated list of time specs.
//
// Recurring entries look like "Mon-Fri 08:00-18:00 America/New_York"; the
// timezone defaults to UTC when omitted. Absolute entries are RFC 3339
// timestamps with an explicit offset. Two consecutive absolute entries, or a
// single "start/end" entry, form a bounded interval; a lone absolute entry is
// open-ended.
//
// Any malformed entry fails the whole string. An empty string yields an empty
// set.
func Parse(spec string) (ScheduleSet, error) {
	entries := splitEntries(spec)
	set := make(ScheduleSet, 0, len(entries))

	for i := 0; i < len(entries); i++ {
		entry := entries[i]
		fail := func(reason string, err error) error {
			return &ParseError{Spec: spec, Entry: entry, Reason: reason, Err: err}
		}

		if !isAbsolute(entry) {
			rec, reason, err := parseRecurring(entry)
			if reason != "" {
				return nil, fail(reason, err)
			}
			set = append(set, rec)
			continue
		}

		abs, reason, err := parseAbsolute(entry)
		if reason != "" {
			return nil, fail(reason, err)
		}

		// Pair with the next entry when it is a bare absolute instant.
		if abs.End == nil && i+1 < len(entries) && isAbsolute(entries[i+1]) && !strings.Contains(entries[i+1], "/") {
			end, reason, err := parseInstant(entries[i+1])
			if reason != "" {
				entry = entries[i+1]
				return nil, fail(reason, err)
			}
			if !abs.Start.Before(end) {
				entry = entry + ", " + entries[i+1]
				return nil, fail(ErrInvalidInterval.Error(), ErrInvalidInterval)
			}
			abs.End = &end
			i++
		}

		set = append(set, abs)
	}

	return set, nil
}

func splitEntries(spec string) []string {
	raw := strings.FieldsFunc(spec, func(r rune) bool {
		return r == ',' || r == ';'
	})

	entries := make([]string, 0, len(raw))
	for _, e := range raw {
		if e = strings.TrimSpace(e); e != "" {
			entries = append(entries, e)
		}
	}
	return entries
}

func isAbsolute(entry string) bool {
	return absolutePattern.MatchString(entry)
}

func parseAbsolute(entry string) (Absolute, string, error) {
	startStr, endStr, bounded := strings.Cut(entry, "/")

	start, reason, err := parseInstant(startStr)
	if reason != "" {
		return Absolute{}, reason, err
	}
	abs := Absolute{Start: start}

	if bounded {
		end, reason, err := parseInstant(endStr)
		if reason != "" {
			return Absolute{}, reason, err
		}
		if !start.Before(end) {
			return Absolute{}, ErrInvalidInterval.Error(), ErrInvalidInterval
		}
		abs.End = &end
	}

	return abs, "", nil
}

// parseInstant parses an RFC 3339 timestamp and rejects naive datetimes.
func parseInstant(s string) (time.Time, string, error) {
	s = strings.TrimSpace(s)

	t, err := time.Parse(time.RFC3339, s)
	if err == nil {
		return t, "", nil
	}

	if _, naiveErr := time.Parse(naiveTimestampLayout, s); naiveErr == nil {
		return time.Time{}, "timestamp must carry an explicit UTC offset", err
	}
	return time.Time{}, "malformed ISO-8601 timestamp, expected YYYY-MM-DDTHH:MM:SS±HH:MM", err
}

func parseRecurring(entry string) (Recurring, string, error) {
	fields := strings.Fields(entry)
	if len(fields) < 2 || len(fields) > 3 {
		return Recurring{}, "expected '<Weekday>-<Weekday> <HH:MM>-<HH:MM> <Timezone>'", nil
	}

	from, to, reason := parseWeekdayRange(fields[0])
	if reason != "" {
		return Recurring{}, reason, nil
	}

	start, end, reason := parseClockRange(fields[1])
	if reason != "" {
		return Recurring{}, reason, nil
	}

	loc := time.UTC
	if len(fields) == 3 {
		if fields[2] == "Local" {
			return Recurring{}, "timezone must be an IANA zone identifier, not Local", nil
		}
		l, err := time.LoadLocation(fields[2])
		if err != nil {
			return Recurring{}, fmt.Sprintf("invalid timezone %q", fields[2]), err
		}
		loc = l
	}

	return Recurring{
		WeekdayFrom: from,
		WeekdayTo:   to,
		From:        start,
		To:          end,
		Location:    loc,
	}, "", nil
}

func parseWeekdayRange(s string) (Weekday, Weekday, string) {
	fromStr, toStr, isRange := strings.Cut(s, "-")
	if !isRange {
		toStr = fromStr
	}

	from, ok := weekdayTokens[strings.ToLower(fromStr)]
	if !ok {
		return 0, 0, fmt.Sprintf("unknown weekday %q", fromStr)
	}
	to, ok := weekdayTokens[strings.ToLower(toStr)]
	if !ok {
		return 0, 0, fmt.Sprintf("unknown weekday %q", toStr)
	}
	return from, to, ""
}

func parseClockRange(s string) (ClockTime, ClockTime, string) {
	fromStr, toStr, ok := strings.Cut(s, "-")
	if !ok {
		return 0, 0, fmt.Sprintf("invalid time range %q, expected HH:MM-HH:MM", s)
	}

	from, reason := parseClock(fromStr)
	if reason != "" {
		return 0, 0, reason
	}
	to, reason := parseClock(toStr)
	if reason != "" {
		return 0, 0, reason
	}
	return from, to, ""
}

func parseClock(s string) (ClockTime, string) {
	m := clockPattern.FindStringSubmatch(s)
	if m == nil {
		return 0, fmt.Sprintf("invalid time %q, expected HH:MM", s)
	}

	hour, _ := strconv.Atoi(m[1])
	minute, _ := strconv.Atoi(m[2])
	if hour > 23 {
		return 0, fmt.Sprintf("hour %d out of range (0-23)", hour)
	}
	if minute > 59 {
		return 0, fmt.Sprintf("minute %d out of range (0-59)", minute)
	}
	return NewClockTime(hour, minute), ""
}
