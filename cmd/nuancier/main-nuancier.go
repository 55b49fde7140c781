// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"os"

	"github.com/nuancier/nuancier/cmd/nuancier/cmd"
	"github.com/nuancier/nuancier/pkg/appbase"
)

// set by the build
var AppVersion = "0.0.0"
var BuildTime = "0"

func main() {
	appbase.AppVersion = AppVersion
	appbase.BuildTime = BuildTime
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
