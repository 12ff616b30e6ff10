/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package policy

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/internal/scheduler"
	"github.com/ardikabs/downscaler/internal/wellknown"
)

// ParseOverrides reads the downscaler tags of a resource. Keys are matched
// case-insensitively and tags outside the downscaler prefix are ignored.
//
// A malformed value is reported in the returned slice and its field is left
// nil so the default applies; the remaining overrides are still honoured.
func ParseOverrides(tags map[string]string) (TagOverrides, []error) {
	var (
		o    TagOverrides
		errs []error
	)

	own := resource.DownscalerTags(tags)

	if v, ok := own[wellknown.TagUptime]; ok {
		if set, err := scheduler.Parse(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", wellknown.TagUptime, err))
		} else {
			o.Uptime = &set
		}
	}

	if v, ok := own[wellknown.TagDowntime]; ok {
		if set, err := scheduler.Parse(v); err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", wellknown.TagDowntime, err))
		} else {
			o.Downtime = &set
		}
	}

	if v, ok := own[wellknown.TagExclude]; ok {
		if b, err := parseBool(v); err != nil {
			errs = append(errs, &ValidationError{Key: wellknown.TagExclude, Value: v, Reason: "expected a boolean"})
		} else {
			o.Exclude = &b
		}
	}

	if v, ok := own[wellknown.TagExcludeUntil]; ok {
		if t, err := time.Parse(time.RFC3339, strings.TrimSpace(v)); err != nil {
			errs = append(errs, &ValidationError{Key: wellknown.TagExcludeUntil, Value: v, Reason: "expected an RFC3339 timestamp with UTC offset"})
		} else {
			o.ExcludeUntil = &t
		}
	}

	if v, ok := own[wellknown.TagDowntimeScale]; ok {
		scale, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			errs = append(errs, &ValidationError{Key: wellknown.TagDowntimeScale, Value: v, Reason: "expected an integer"})
		} else if err := validateScale(wellknown.TagDowntimeScale, scale); err != nil {
			errs = append(errs, err)
		} else {
			o.DowntimeScale = &scale
		}
	}

	return o, errs
}

func parseBool(s string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "yes", "y", "on":
		return true, nil
	case "no", "n", "off":
		return false, nil
	}
	return strconv.ParseBool(strings.TrimSpace(s))
}
