// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/spf13/cobra"
)

var contrastCmd = &cobra.Command{
	Use:   "contrast color",
	Short: "Print the text color (black or white) to use on a color",
	Args:  cobra.ExactArgs(1),
	RunE:  contrastRun,
}

func init() {
	rootCmd.AddCommand(contrastCmd)
}

func contrastRun(cmd *cobra.Command, args []string) error {
	color, err := colorutil.ParseColorArg(args[0])
	if err != nil {
		return err
	}
	contrast := colorutil.GetContrastColor(color)
	if jsonFlag {
		return WriteJson(map[string]string{"color": color, "contrast": contrast})
	}
	WriteStdout("%s\n", contrast)
	return nil
}
