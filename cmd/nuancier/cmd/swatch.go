// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"
	"github.com/nuancier/nuancier/pkg/colorutil"
)

const swatchWidth = 11

// formatSwatch renders hex on its own color when writing to a terminal
func formatSwatch(hex string) string {
	if !useColor() {
		return hex
	}
	style := lipgloss.NewStyle().
		Background(lipgloss.Color(hex)).
		Foreground(lipgloss.Color(colorutil.GetContrastColor(hex))).
		Width(swatchWidth).
		Align(lipgloss.Center)
	return style.Render(hex)
}

func formatLabeled(label string, hex string) string {
	return fmt.Sprintf("%-12s %s", label, formatSwatch(hex))
}
