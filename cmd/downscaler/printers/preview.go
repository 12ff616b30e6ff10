/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package printers

import (
	"io"
	"time"
)

// PreviewOutput is the result of evaluating one hypothetical resource.
type PreviewOutput struct {
	Time     time.Time    `json:"time"`
	Policy   PolicyOutput `json:"policy"`
	Warnings []string     `json:"warnings,omitempty"`
	Result   ResultOutput `json:"result"`
	Action   ActionOutput `json:"action"`
}

// PolicyOutput is the effective policy after tag overrides.
type PolicyOutput struct {
	Uptime        string     `json:"uptime"`
	Downtime      string     `json:"downtime"`
	Excluded      bool       `json:"excluded"`
	ExcludeUntil  *time.Time `json:"excludeUntil,omitempty"`
	DowntimeScale int        `json:"downtimeScale"`
}

// ResultOutput is the evaluation result.
type ResultOutput struct {
	State        string `json:"state"`
	Reason       string `json:"reason"`
	ScalePercent int    `json:"scalePercent"`
}

// ActionOutput is the action planned for the observed capacity.
type ActionOutput struct {
	Kind        string `json:"kind"`
	Capacity    int    `json:"capacity"`
	Description string `json:"description"`
	Warning     string `json:"warning,omitempty"`
}

func (p *HumanReadablePrinter) printPreview(out *PreviewOutput, w io.Writer) error {
	tw := newTextWriter(w)

	tw.field("Time", out.Time.Format(time.RFC3339))
	tw.newline()

	tw.line("Effective policy")
	tw.field("  Uptime", orNone(out.Policy.Uptime))
	tw.field("  Downtime", orNone(out.Policy.Downtime))
	tw.field("  Excluded", out.Policy.Excluded)
	if out.Policy.ExcludeUntil != nil {
		tw.field("  Exclude until", out.Policy.ExcludeUntil.Format(time.RFC3339))
	}
	tw.field("  Downtime scale", out.Policy.DowntimeScale)

	if len(out.Warnings) > 0 {
		tw.newline()
		tw.line("Warnings")
		for _, warning := range out.Warnings {
			tw.line("  - %s", warning)
		}
	}

	tw.newline()
	tw.field("State", out.Result.State)
	tw.field("Reason", out.Result.Reason)
	tw.field("Scale", out.Result.ScalePercent)
	tw.field("Action", out.Action.Description)
	if out.Action.Warning != "" {
		tw.field("Warning", out.Action.Warning)
	}

	return tw.flush()
}

func orNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
