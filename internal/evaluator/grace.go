/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package evaluator

import (
	"time"

	"github.com/ardikabs/downscaler/internal/resource"
)

// IsWithinGrace reports whether d was created less than grace ago.
// Unknown creation times and non-positive grace periods never guard.
func IsWithinGrace(d resource.Descriptor, grace time.Duration, now time.Time) bool {
	if grace <= 0 || d.CreatedAt.IsZero() {
		return false
	}
	return now.Sub(d.CreatedAt) < grace
}
