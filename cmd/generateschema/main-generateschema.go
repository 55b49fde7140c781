// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"log"
	"os"
	"path/filepath"

	"github.com/nuancier/nuancier/pkg/appconfig"
)

const SchemaSettingsFileName = "schema/settings.json"

func generateSettingsSchema() error {
	jsonSettingsSchema, err := appconfig.SettingsSchema()
	if err != nil {
		return err
	}
	err = os.MkdirAll(filepath.Dir(SchemaSettingsFileName), 0755)
	if err != nil {
		return fmt.Errorf("failed to create schema dir: %v", err)
	}
	written, err := appconfig.WriteFileIfDifferent(SchemaSettingsFileName, jsonSettingsSchema)
	if !written {
		fmt.Fprintf(os.Stderr, "no changes to %s\n", SchemaSettingsFileName)
	}
	if err != nil {
		return fmt.Errorf("failed to write local schema: %v", err)
	}
	return nil
}

func main() {
	err := generateSettingsSchema()
	if err != nil {
		log.Fatalf("settings schema error: %v", err)
	}
}
