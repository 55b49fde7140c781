// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package appconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/nuancier/nuancier/pkg/colorutil"
)

const SettingsFile = "settings.json"

const (
	DefaultPickerColor = "#6366F1"
	DefaultListenAddr  = "127.0.0.1:7133"
)

type SettingsType struct {
	PickerDefaultColor string `json:"picker:defaultcolor" jsonschema:"description=color used when the page has no #RRGGBB fragment"`
	WebListenAddr      string `json:"web:listenaddr" jsonschema:"description=host:port the picker server listens on"`
	WebOpenBrowser     bool   `json:"web:openbrowser" jsonschema:"description=open the picker page in a browser on startup"`
	HistoryPersist     bool   `json:"history:persist" jsonschema:"description=keep the color history on disk between runs"`
}

func DefaultSettings() SettingsType {
	return SettingsType{
		PickerDefaultColor: DefaultPickerColor,
		WebListenAddr:      DefaultListenAddr,
		WebOpenBrowser:     true,
		HistoryPersist:     true,
	}
}

func GetSettingsPath(configDir string) string {
	return filepath.Join(configDir, SettingsFile)
}

// ReadSettings merges settings.json from configDir over the defaults.
// A missing file gives the defaults. On a read or parse error the defaults
// are returned along with the error.
func ReadSettings(configDir string) (SettingsType, error) {
	settings := DefaultSettings()
	fileName := GetSettingsPath(configDir)
	barr, err := os.ReadFile(fileName)
	if errors.Is(err, fs.ErrNotExist) {
		return settings, nil
	}
	if err != nil {
		return settings, fmt.Errorf("reading %s: %w", fileName, err)
	}
	if len(barr) == 0 {
		return settings, nil
	}
	err = json.Unmarshal(barr, &settings)
	if err != nil {
		return DefaultSettings(), fmt.Errorf("parsing %s: %w", fileName, err)
	}
	return settings, nil
}

// DefaultColor is the configured default, falling back to the built-in one
// when the setting is not a valid hex color
func (s SettingsType) DefaultColor() string {
	if hex, ok := colorutil.NormalizeHex(s.PickerDefaultColor); ok {
		return hex
	}
	return DefaultPickerColor
}

func (s SettingsType) ListenAddr() string {
	if s.WebListenAddr == "" {
		return DefaultListenAddr
	}
	return s.WebListenAddr
}
