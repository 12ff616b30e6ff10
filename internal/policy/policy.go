/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package policy merges global schedule defaults with per-resource tag
// overrides into the policy used to evaluate a single resource.
package policy

import (
	"fmt"
	"time"

	"github.com/ardikabs/downscaler/internal/scheduler"
)

// Defaults holds the global schedule configuration. It is built once at
// startup and shared by every evaluation.
type Defaults struct {
	Uptime        scheduler.ScheduleSet
	Downtime      scheduler.ScheduleSet
	DowntimeScale int
}

// NewDefaults parses the global schedule strings. Any error is fatal for the
// caller since no resource can be evaluated without valid defaults.
func NewDefaults(uptime, downtime string, downtimeScale int) (Defaults, error) {
	up, err := scheduler.Parse(uptime)
	if err != nil {
		return Defaults{}, fmt.Errorf("default uptime: %w", err)
	}

	down, err := scheduler.Parse(downtime)
	if err != nil {
		return Defaults{}, fmt.Errorf("default downtime: %w", err)
	}

	if err := validateScale("downtime-scale", downtimeScale); err != nil {
		return Defaults{}, err
	}

	return Defaults{Uptime: up, Downtime: down, DowntimeScale: downtimeScale}, nil
}

// EffectivePolicy is the resolved policy for one resource at one instant.
// It is derived fresh on every evaluation and never cached.
type EffectivePolicy struct {
	Uptime        scheduler.ScheduleSet
	Downtime      scheduler.ScheduleSet
	Excluded      bool
	ExcludeUntil  *time.Time
	DowntimeScale int
}

// TagOverrides holds the per-resource overrides found on a resource's tags.
// A nil field inherits the default.
type TagOverrides struct {
	Uptime        *scheduler.ScheduleSet
	Downtime      *scheduler.ScheduleSet
	Exclude       *bool
	ExcludeUntil  *time.Time
	DowntimeScale *int
}

// ValidationError reports a tag or configuration value that is well-formed but
// semantically invalid, or an unparseable scalar value.
type ValidationError struct {
	Key    string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Key, e.Value, e.Reason)
}

func validateScale(key string, scale int) error {
	if scale < 0 || scale > 100 {
		return &ValidationError{Key: key, Value: fmt.Sprint(scale), Reason: "must be between 0 and 100"}
	}
	return nil
}
