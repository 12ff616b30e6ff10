/*
Copyright 2026 Ardika Saputro.
Licensed under the Apache License, Version 2.0.
*/

package version

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ardikabs/downscaler/internal/version"
)

// NewCommand creates the "version" command.
func NewCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version of downscaler",
		Long:  "Print the version of downscaler",
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(cmd.OutOrStdout(), "downscaler", version.GetVersion())
			return err
		},
	}

	return cmd
}
