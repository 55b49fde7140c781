// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/spf13/cobra"
)

var convertCmd = &cobra.Command{
	Use:   "convert color",
	Short: "Show a color as hex, rgb, hsv and css",
	Long:  `Show a color as hex, rgb, hsv and css. color is #RRGGBB (the '#' is optional) or a CSS color name.`,
	Args:  cobra.ExactArgs(1),
	RunE:  convertRun,
}

func init() {
	rootCmd.AddCommand(convertCmd)
}

func convertRun(cmd *cobra.Command, args []string) error {
	color, err := colorutil.ParseColorArg(args[0])
	if err != nil {
		return err
	}
	info, _ := colorutil.Describe(color)
	if jsonFlag {
		return WriteJson(info)
	}
	WriteStdout("%s\n", formatLabeled("hex", info.Hex))
	WriteStdout("%-12s %s\n", "rgb", info.RgbString)
	WriteStdout("%-12s %s\n", "hsv", formatHsv(info.HSV))
	WriteStdout("%-12s %s\n", "css", info.CssString)
	WriteStdout("%s\n", formatLabeled("contrast", info.Contrast))
	return nil
}

func formatHsv(hsv colorutil.HSV) string {
	return fmt.Sprintf("hsv(%d, %d%%, %d%%)", hsv.H, hsv.S, hsv.V)
}
