// Copyright 2025 Canonical Ltd.
// SPDX-License-Identifier: AGPL-3.0

package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "device-audit",
	Short: "Find enabled directory accounts without any registered device",
	Long: `device-audit checks a list of identities against the Microsoft Graph directory
and reports the enabled accounts that have no registered device.

The list of environment variables is available in the readme, flags take
precedence over them.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the command selected on the command line.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		rootCmd.PrintErrln(err)
		os.Exit(1)
	}
}
