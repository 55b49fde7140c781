// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/spf13/cobra"
)

var paletteCmd = &cobra.Command{
	Use:   "palette",
	Short: "List the preset palette",
	Args:  cobra.NoArgs,
	RunE:  paletteRun,
}

func init() {
	rootCmd.AddCommand(paletteCmd)
}

func paletteRun(cmd *cobra.Command, args []string) error {
	if jsonFlag {
		return WriteJson(colorutil.PresetPalette)
	}
	for _, pc := range colorutil.PresetPalette {
		WriteStdout("%s\n", formatLabeled(pc.Name, pc.Hex))
	}
	return nil
}
