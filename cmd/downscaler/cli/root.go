/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package cli

import (
	"github.com/spf13/cobra"

	"github.com/ardikabs/downscaler/cmd/downscaler/cli/preview"
	"github.com/ardikabs/downscaler/cmd/downscaler/cli/run"
	"github.com/ardikabs/downscaler/cmd/downscaler/cli/version"
	"github.com/ardikabs/downscaler/cmd/downscaler/common"
	"github.com/ardikabs/downscaler/internal/config"
)

// NewRootCommand creates the root command for downscaler.
func NewRootCommand() *cobra.Command {
	opts := &common.RootOptions{}

	cmd := &cobra.Command{
		Use:   "downscaler",
		Short: "Scale AWS and Kubernetes workloads down outside working hours",
		Long: "downscaler periodically evaluates uptime and downtime schedules against\n" +
			"Auto Scaling groups, ECS services, EKS node groups, EC2 and RDS instances\n" +
			"and Kubernetes deployments, scaling them down and restoring them again.\n\n" +
			"Schedules are set globally and overridden per resource with tags:\n" +
			"  downscaler:uptime          Mon-Fri 08:00-18:00 Europe/Berlin\n" +
			"  downscaler:downtime        Sat-Sun 00:00-23:59 UTC\n" +
			"  downscaler:exclude         true\n" +
			"  downscaler:exclude-until   2024-06-01T00:00:00Z\n" +
			"  downscaler:downtime-scale  50\n\n" +
			"Examples:\n" +
			"  downscaler run --default-uptime \"Mon-Fri 08:00-18:00 UTC\" --dry-run --once\n" +
			"  downscaler preview --default-uptime \"Mon-Fri 08:00-18:00 UTC\" --tag downscaler:exclude=true",
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	// Global flags
	cmd.PersistentFlags().StringVarP(&opts.ConfigFile, "config", "c", "", "Path to a YAML configuration file")
	cmd.PersistentFlags().BoolVar(&opts.Debug, "debug", false, "Enable debug logging")
	cmd.PersistentFlags().StringVar(&opts.LogFormat, "log-format", config.LogFormatJSON, "Log format: json or console (defaults to console on a terminal)")

	// Register subcommands
	cmd.AddCommand(run.NewCommand(opts))
	cmd.AddCommand(preview.NewCommand(opts))
	cmd.AddCommand(version.NewCommand())

	return cmd
}
