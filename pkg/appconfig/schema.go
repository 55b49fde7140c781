// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package appconfig

import (
	"bytes"
	"encoding/json"
	"fmt"
	"os"

	"github.com/invopop/jsonschema"
)

// SettingsSchema is the json schema for settings.json, for editor completion
func SettingsSchema() ([]byte, error) {
	settingsSchema := jsonschema.Reflect(&SettingsType{})
	barr, err := json.MarshalIndent(settingsSchema, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshaling settings schema: %w", err)
	}
	return barr, nil
}

// WriteFileIfDifferent returns false (and does not write) if fileName already
// has contents
func WriteFileIfDifferent(fileName string, contents []byte) (bool, error) {
	oldContents, err := os.ReadFile(fileName)
	if err == nil && bytes.Equal(oldContents, contents) {
		return false, nil
	}
	err = os.WriteFile(fileName, contents, 0644)
	if err != nil {
		return false, err
	}
	return true, nil
}
