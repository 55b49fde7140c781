// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package colorutil

import (
	"fmt"
	"strings"

	"golang.org/x/image/colornames"
)

type PaletteColor struct {
	Name string `json:"name"`
	Hex  string `json:"hex"`
}

var PresetPalette = []PaletteColor{
	{Name: "Rouge Vif", Hex: "#EF4444"},
	{Name: "Orange", Hex: "#F97316"},
	{Name: "Ambre", Hex: "#F59E0B"},
	{Name: "Émeraude", Hex: "#10B981"},
	{Name: "Ciel", Hex: "#0EA5E9"},
	{Name: "Indigo", Hex: "#6366F1"},
	{Name: "Violet", Hex: "#8B5CF6"},
	{Name: "Rose", Hex: "#EC4899"},
	{Name: "Ardoise", Hex: "#64748B"},
	{Name: "Noir", Hex: "#000000"},
}

// ParseColorArg accepts a hex color or a CSS/SVG color name ("cornflowerblue")
// and returns the canonical "#RRGGBB" form.
func ParseColorArg(arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", fmt.Errorf("empty color")
	}
	if hex, ok := NormalizeHex(arg); ok {
		return hex, nil
	}
	if c, ok := colornames.Map[strings.ToLower(arg)]; ok {
		return RgbToHex(int(c.R), int(c.G), int(c.B)), nil
	}
	if strings.HasPrefix(arg, "#") {
		return "", fmt.Errorf("invalid hex color %q (must be #RRGGBB)", arg)
	}
	return "", fmt.Errorf("unknown color %q", arg)
}

// ColorInfo is every derived representation of one color
type ColorInfo struct {
	Hex       string `json:"hex"`
	RGB       RGB    `json:"rgb"`
	HSV       HSV    `json:"hsv"`
	RgbString string `json:"rgbstring"`
	CssString string `json:"cssstring"`
	Contrast  string `json:"contrast"`
}

// Describe returns false for an invalid hex
func Describe(hex string) (ColorInfo, bool) {
	rgb, ok := HexToRgb(hex)
	if !ok {
		return ColorInfo{}, false
	}
	canon := rgb.Hex()
	return ColorInfo{
		Hex:       canon,
		RGB:       rgb,
		HSV:       rgb.HSV(),
		RgbString: RgbString(rgb),
		CssString: CssSnippet(canon),
		Contrast:  GetContrastColor(canon),
	}, true
}
