/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

// Package planner turns an evaluation result into the capacity change needed
// to reach it, and applies that change through a provider.
//
// The capacity observed before the first downscale is kept on the resource
// itself under the original-capacity tag, so a restart of the process never
// loses it. Re-planning with unchanged inputs always yields the same action,
// and applying a no-op changes nothing.
package planner

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/ardikabs/downscaler/internal/evaluator"
	"github.com/ardikabs/downscaler/internal/provider"
	"github.com/ardikabs/downscaler/internal/resource"
	"github.com/ardikabs/downscaler/internal/wellknown"
)

// ErrRestoreAmbiguous is returned when a resource should be up, sits at zero
// capacity and carries no record of its original capacity.
var ErrRestoreAmbiguous = errors.New("resource is at zero capacity with no recorded original capacity")

// Kind is the type of capacity change.
type Kind string

const (
	NoOp      Kind = "NoOp"
	ScaleTo   Kind = "ScaleTo"
	RestoreTo Kind = "RestoreTo"
)

// Action is the planned change for one resource.
type Action struct {
	Kind Kind
	// Capacity is the target capacity for ScaleTo and RestoreTo.
	Capacity int
	// RecordOriginal is written to the original-capacity tag before scaling.
	RecordOriginal *int
	// ClearOriginal removes the original-capacity tag after the change.
	ClearOriginal bool
}

// String describes the action for logs. Dry-run and real runs log the same text.
func (a Action) String() string {
	var b strings.Builder
	switch a.Kind {
	case ScaleTo:
		fmt.Fprintf(&b, "scale to %d", a.Capacity)
	case RestoreTo:
		fmt.Fprintf(&b, "restore to %d", a.Capacity)
	default:
		b.WriteString("no change")
	}

	if a.RecordOriginal != nil {
		fmt.Fprintf(&b, ", record original capacity %d", *a.RecordOriginal)
	}
	if a.ClearOriginal {
		b.WriteString(", clear original capacity")
	}
	return b.String()
}

// Mutates reports whether applying the action touches the resource.
func (a Action) Mutates() bool {
	return a.Kind != NoOp || a.ClearOriginal || a.RecordOriginal != nil
}

// Planner plans and applies capacity changes.
type Planner struct {
	// DryRun suppresses every provider mutation in Apply.
	DryRun bool
}

// New creates a planner.
func New(dryRun bool) *Planner {
	return &Planner{DryRun: dryRun}
}

// Plan computes the action moving d towards r. It performs no I/O; the
// recorded original capacity is read from d.Tags.
func (p *Planner) Plan(d resource.Descriptor, r evaluator.Result) (Action, error) {
	observed := d.Capacity
	original, recorded, malformed := RecordedOriginal(d)

	if r.State == evaluator.StateDown {
		base := observed
		if recorded {
			base = original
		}

		target := ScaledCapacity(base, r.ScalePercent)
		if target == observed {
			return Action{Kind: NoOp}, nil
		}

		a := Action{Kind: ScaleTo, Capacity: target}
		if !recorded {
			a.RecordOriginal = &observed
		}
		return a, nil
	}

	if recorded {
		if observed != original {
			return Action{Kind: RestoreTo, Capacity: original, ClearOriginal: true}, nil
		}
		return Action{Kind: NoOp, ClearOriginal: true}, nil
	}

	if observed == 0 {
		return Action{Kind: NoOp, ClearOriginal: malformed}, ErrRestoreAmbiguous
	}
	return Action{Kind: NoOp, ClearOriginal: malformed}, nil
}

// Apply performs the action through prov. The original capacity is recorded
// before scaling down and cleared only after a successful restore, so an
// interrupted run is repaired by the next cycle.
func (p *Planner) Apply(ctx context.Context, prov provider.Provider, d resource.Descriptor, a Action) error {
	if p.DryRun {
		return nil
	}

	if a.RecordOriginal != nil {
		if err := prov.WriteTag(ctx, d.ID, wellknown.TagOriginalCapacity, strconv.Itoa(*a.RecordOriginal)); err != nil {
			return fmt.Errorf("record original capacity: %w", err)
		}
	}

	if a.Kind == ScaleTo || a.Kind == RestoreTo {
		if err := prov.SetCapacity(ctx, d.ID, a.Capacity); err != nil {
			return fmt.Errorf("set capacity to %d: %w", a.Capacity, err)
		}
	}

	if a.ClearOriginal {
		if err := prov.DeleteTag(ctx, d.ID, wellknown.TagOriginalCapacity); err != nil {
			return fmt.Errorf("clear original capacity: %w", err)
		}
	}

	return nil
}

// RecordedOriginal returns the original capacity recorded on d. malformed is
// true when the tag exists but does not hold a non-negative integer.
func RecordedOriginal(d resource.Descriptor) (original int, recorded, malformed bool) {
	v, ok := d.Tag(wellknown.TagOriginalCapacity)
	if !ok {
		return 0, false, false
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || n < 0 {
		return 0, false, true
	}
	return n, true, false
}

// ScaledCapacity returns round(capacity * percent / 100), rounding halves away
// from zero.
func ScaledCapacity(capacity, percent int) int {
	return int(math.Round(float64(capacity) * float64(percent) / 100))
}
