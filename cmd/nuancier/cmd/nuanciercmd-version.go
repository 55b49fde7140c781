// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/nuancier/nuancier/pkg/appbase"
	"github.com/spf13/cobra"
)

var versionVerbose bool

var versionCmd = &cobra.Command{
	Use:   "version [-v]",
	Short: "Print the version number of nuancier",
	RunE:  runVersionCmd,
}

func init() {
	versionCmd.Flags().BoolVarP(&versionVerbose, "verbose", "v", false, "Display full version information")
	rootCmd.AddCommand(versionCmd)
}

func runVersionCmd(cmd *cobra.Command, args []string) error {
	if !versionVerbose {
		WriteStdout("nuancier v%s\n", appbase.AppVersion)
		return nil
	}
	appbase.CacheAndRemoveEnvVars()
	WriteStdout("v%s (%s)\n", appbase.AppVersion, appbase.BuildTime)
	WriteStdout("configdir: %s\n", appbase.ReplaceHomeDir(appbase.GetConfigDir()))
	WriteStdout("datadir:   %s\n", appbase.ReplaceHomeDir(appbase.GetDataDir()))
	return nil
}
