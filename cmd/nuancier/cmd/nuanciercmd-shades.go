// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/spf13/cobra"
)

var shadesCmd = &cobra.Command{
	Use:   "shades color",
	Short: "Print the darker and lighter variations of a color",
	Args:  cobra.ExactArgs(1),
	RunE:  shadesRun,
}

func init() {
	rootCmd.AddCommand(shadesCmd)
}

func shadesRun(cmd *cobra.Command, args []string) error {
	color, err := colorutil.ParseColorArg(args[0])
	if err != nil {
		return err
	}
	shades := colorutil.GenerateShades(color)
	if jsonFlag {
		return WriteJson(shades)
	}
	for _, shade := range shades {
		marker := ""
		if shade == color {
			marker = " *"
		}
		WriteStdout("%s%s\n", formatSwatch(shade), marker)
	}
	return nil
}
