// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package logutil

import (
	"log"

	"github.com/nuancier/nuancier/pkg/appbase"
)

const LogPrefix = "[nuancier] "

// InitLog sets the flags and prefix used by every process log line
func InitLog() {
	log.SetFlags(log.LstdFlags | log.Lmicroseconds)
	log.SetPrefix(LogPrefix)
}

// DevPrintf logs using log.Printf only if running in dev mode
func DevPrintf(format string, v ...any) {
	if appbase.IsDevMode() {
		log.Printf(format, v...)
	}
}
