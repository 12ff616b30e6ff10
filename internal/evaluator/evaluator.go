/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package evaluator decides whether a resource should be up or down at a given
// instant.
package evaluator

import (
	"fmt"
	"time"

	"github.com/ardikabs/downscaler/internal/policy"
	"github.com/ardikabs/downscaler/internal/resource"
)

// State is the target state of a resource.
type State string

const (
	StateUp   State = "UP"
	StateDown State = "DOWN"
)

// Reason explains which rule produced a Result.
type Reason string

const (
	ReasonExcluded      Reason = "EXCLUDED"
	ReasonGracePeriod   Reason = "GRACE_PERIOD"
	ReasonDowntimeMatch Reason = "DOWNTIME_MATCH"
	ReasonOutsideUptime Reason = "OUTSIDE_UPTIME"
	ReasonDefaultUp     Reason = "DEFAULT_UP"
)

// Result is the outcome of one evaluation.
type Result struct {
	State State
	// ScalePercent is the share of the original capacity to keep. Always 100 when UP.
	ScalePercent int
	Reason       Reason
}

func (r Result) String() string {
	return fmt.Sprintf("%s (%s, %d%%)", r.State, r.Reason, r.ScalePercent)
}

// Evaluator applies the schedule rules to a resource.
type Evaluator struct {
	// GracePeriod protects resources younger than this from being scaled down.
	GracePeriod time.Duration
}

// New creates an evaluator with the given grace period.
func New(gracePeriod time.Duration) *Evaluator {
	return &Evaluator{GracePeriod: gracePeriod}
}

// Evaluate returns the target state of d under p at now. The first matching
// rule wins:
//
//  1. excluded resources stay up
//  2. resources inside the grace period stay up
//  3. a downtime match scales down
//  4. a non-empty uptime set that does not match scales down
//  5. otherwise up
func (e *Evaluator) Evaluate(d resource.Descriptor, p policy.EffectivePolicy, now time.Time) Result {
	switch {
	case p.Excluded:
		return up(ReasonExcluded)
	case IsWithinGrace(d, e.GracePeriod, now):
		return up(ReasonGracePeriod)
	case p.Downtime.Matches(now):
		return Result{State: StateDown, ScalePercent: p.DowntimeScale, Reason: ReasonDowntimeMatch}
	case len(p.Uptime) > 0 && !p.Uptime.Matches(now):
		return Result{State: StateDown, ScalePercent: p.DowntimeScale, Reason: ReasonOutsideUptime}
	default:
		return up(ReasonDefaultUp)
	}
}

func up(reason Reason) Result {
	return Result{State: StateUp, ScalePercent: 100, Reason: reason}
}
