/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package preview

import (
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"k8s.io/utils/clock"

	"github.com/ardikabs/downscaler/cmd/downscaler/common"
	"github.com/ardikabs/downscaler/cmd/downscaler/printers"
	"github.com/ardikabs/downscaler/internal/evaluator"
	"github.com/ardikabs/downscaler/internal/planner"
	"github.com/ardikabs/downscaler/internal/policy"
	"github.com/ardikabs/downscaler/internal/resource"
)

type previewOptions struct {
	root      *common.RootOptions
	flags     *common.ConfigFlags
	clock     clock.Clock
	tags      map[string]string
	at        string
	createdAt string
	capacity  int
	json      bool
}

// NewCommand creates the "preview" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	previewOpts := &previewOptions{
		root:     opts,
		flags:    common.NewConfigFlags(),
		clock:    clock.RealClock{},
		capacity: 1,
	}

	cmd := &cobra.Command{
		Use:   "preview",
		Short: "Show how a resource with the given tags would be evaluated",
		Long: `Resolve the effective policy for a hypothetical resource, evaluate it at an
instant and print the resulting state and planned action. Nothing is read
from or written to AWS or Kubernetes.

Examples:
  downscaler preview --default-uptime "Mon-Fri 08:00-18:00 UTC" --at 2024-04-06T12:00:00Z
  downscaler preview --tag downscaler:downtime="Sat-Sun 00:00-23:59 UTC" --capacity 4 --json`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPreview(cmd, previewOpts)
		},
	}

	previewOpts.flags.AddEngineFlags(cmd.Flags())
	cmd.Flags().StringToStringVar(&previewOpts.tags, "tag", nil, "Resource tag as key=value, repeatable")
	cmd.Flags().StringVar(&previewOpts.at, "at", "", "Evaluation instant in RFC3339 (defaults to now)")
	cmd.Flags().StringVar(&previewOpts.createdAt, "created-at", "", "Resource creation time in RFC3339, used by the grace period")
	cmd.Flags().IntVar(&previewOpts.capacity, "capacity", previewOpts.capacity, "Observed capacity of the resource")
	cmd.Flags().BoolVar(&previewOpts.json, "json", false, "Output in JSON format")

	return cmd
}

func runPreview(cmd *cobra.Command, opts *previewOptions) error {
	cfg, err := common.LoadConfig(opts.root, cmd.Flags(), opts.flags)
	if err != nil {
		return err
	}

	defaults, err := policy.NewDefaults(cfg.DefaultUptime, cfg.DefaultDowntime, cfg.DowntimeScale)
	if err != nil {
		return fmt.Errorf("invalid default schedule: %w", err)
	}

	at := opts.clock.Now()
	if opts.at != "" {
		if at, err = time.Parse(time.RFC3339, opts.at); err != nil {
			return fmt.Errorf("invalid --at: %w", err)
		}
	}

	d := resource.Descriptor{Type: "preview", ID: "preview", Name: "preview", Capacity: opts.capacity, Tags: opts.tags}
	if opts.createdAt != "" {
		if d.CreatedAt, err = time.Parse(time.RFC3339, opts.createdAt); err != nil {
			return fmt.Errorf("invalid --created-at: %w", err)
		}
	}

	output := Evaluate(defaults, cfg.GracePeriod, d, at)

	p := &printers.Dispatcher{JSON: opts.json}
	return p.PrintObj(output, cmd.OutOrStdout())
}

// Evaluate runs the resolver, evaluator and planner on d at the given instant.
func Evaluate(defaults policy.Defaults, gracePeriod time.Duration, d resource.Descriptor, at time.Time) *printers.PreviewOutput {
	p, warnings := policy.NewResolver(defaults).Resolve(d.Tags, at)
	result := evaluator.New(gracePeriod).Evaluate(d, p, at)
	action, err := planner.New(true).Plan(d, result)

	output := &printers.PreviewOutput{
		Time: at,
		Policy: printers.PolicyOutput{
			Uptime:        p.Uptime.String(),
			Downtime:      p.Downtime.String(),
			Excluded:      p.Excluded,
			ExcludeUntil:  p.ExcludeUntil,
			DowntimeScale: p.DowntimeScale,
		},
		Result: printers.ResultOutput{
			State:        string(result.State),
			Reason:       string(result.Reason),
			ScalePercent: result.ScalePercent,
		},
		Action: printers.ActionOutput{
			Kind:        string(action.Kind),
			Capacity:    action.Capacity,
			Description: action.String(),
		},
	}
	for _, w := range warnings {
		output.Warnings = append(output.Warnings, w.Error())
	}
	if errors.Is(err, planner.ErrRestoreAmbiguous) {
		output.Action.Warning = err.Error()
	}
	return output
}
