// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/nuancier/nuancier/pkg/util/logutil"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var (
	rootCmd = &cobra.Command{
		Use:          "nuancier",
		Short:        "Color conversions, shades and history from the command line",
		Long:         `nuancier converts colors between hex, rgb and hsv, prints shade ramps and contrast colors, and manages the picker's color history`,
		SilenceUsage: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logutil.InitLog()
			if !verboseFlag {
				log.SetOutput(io.Discard)
			}
		},
	}
)

var WrappedStdout io.Writer = os.Stdout
var WrappedStderr io.Writer = os.Stderr

var jsonFlag bool
var noColorFlag bool
var verboseFlag bool

func init() {
	rootCmd.PersistentFlags().BoolVar(&jsonFlag, "json", false, "output json")
	rootCmd.PersistentFlags().BoolVar(&noColorFlag, "no-color", false, "do not draw color swatches")
	rootCmd.PersistentFlags().BoolVar(&verboseFlag, "debug", false, "show log output")
}

func WriteStderr(fmtStr string, args ...interface{}) {
	WrappedStderr.Write([]byte(fmt.Sprintf(fmtStr, args...)))
}

func WriteStdout(fmtStr string, args ...interface{}) {
	WrappedStdout.Write([]byte(fmt.Sprintf(fmtStr, args...)))
}

func WriteJson(v any) error {
	barr, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling output: %w", err)
	}
	WriteStdout("%s\n", barr)
	return nil
}

// swatches only go to a real terminal
func getIsTty() bool {
	file, ok := WrappedStdout.(*os.File)
	if !ok {
		return false
	}
	return term.IsTerminal(int(file.Fd()))
}

func useColor() bool {
	return !noColorFlag && os.Getenv("NO_COLOR") == "" && getIsTty()
}

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}
