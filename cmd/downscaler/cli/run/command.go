/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package run

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/ardikabs/downscaler/cmd/downscaler/app"
	"github.com/ardikabs/downscaler/cmd/downscaler/common"
	"github.com/ardikabs/downscaler/internal/version"
)

type runOptions struct {
	root  *common.RootOptions
	flags *common.ConfigFlags
}

// NewCommand creates the "run" command.
func NewCommand(opts *common.RootOptions) *cobra.Command {
	runOpts := &runOptions{root: opts, flags: common.NewConfigFlags()}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Evaluate schedules and scale resources",
		Long: `Evaluate every enabled resource against its schedule and scale it up or
down. Runs until interrupted, or a single cycle with --once.

Configuration is read from defaults, --config, DOWNSCALER_* environment
variables and flags, in increasing order of precedence.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDownscaler(cmd, runOpts)
		},
	}

	runOpts.flags.AddRunFlags(cmd.Flags())

	return cmd
}

func runDownscaler(cmd *cobra.Command, opts *runOptions) error {
	cfg, err := common.LoadConfig(opts.root, cmd.Flags(), opts.flags)
	if err != nil {
		return err
	}

	log, sync, err := common.NewLogger(cfg.Debug, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer sync()

	log.Info("downscaler", "version", version.GetVersion())

	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := common.SignalContext(parent, log)
	defer cancel()

	if err := app.Run(ctx, log, cfg); err != nil {
		log.Error(err, "downscaler failed")
		return err
	}
	return nil
}
