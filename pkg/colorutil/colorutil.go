// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package colorutil

import (
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
)

const (
	Black = "#000000"
	White = "#FFFFFF"

	// text on a background brighter than this gets black text
	ContrastThreshold = 0.5
)

var hexColorRe = regexp.MustCompile(`^#?([0-9a-fA-F]{2})([0-9a-fA-F]{2})([0-9a-fA-F]{2})$`)

// multipliers for the darker half of the shade sequence, the last one is pure black
var darkenFactors = []float64{0.8, 0.6, 0.4, 0.2, 0}

// blend factors (toward white) for the lighter half of the shade sequence
var lightenFactors = []float64{0.2, 0.4, 0.6, 0.8}

type RGB struct {
	R int `json:"r"`
	G int `json:"g"`
	B int `json:"b"`
}

type HSV struct {
	H int `json:"h"`
	S int `json:"s"`
	V int `json:"v"`
}

// jsRound rounds half up (toward +inf), which is what the hsv/shade math relies on
func jsRound(x float64) int {
	return int(math.Floor(x + 0.5))
}

func ClampInt(v int, minVal int, maxVal int) int {
	if v < minVal {
		return minVal
	}
	if v > maxVal {
		return maxVal
	}
	return v
}

// HexToRgb parses "#RRGGBB" or "RRGGBB" (case-insensitive).
// Shorthand and alpha forms are rejected.
func HexToRgb(hex string) (RGB, bool) {
	m := hexColorRe.FindStringSubmatch(hex)
	if m == nil {
		return RGB{}, false
	}
	var vals [3]int
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(m[i+1], 16, 8)
		if err != nil {
			return RGB{}, false
		}
		vals[i] = int(v)
	}
	return RGB{R: vals[0], G: vals[1], B: vals[2]}, true
}

// RgbToHex returns the uppercase "#RRGGBB" form, channels are clamped to [0,255]
func RgbToHex(r, g, b int) string {
	r = ClampInt(r, 0, 255)
	g = ClampInt(g, 0, 255)
	b = ClampInt(b, 0, 255)
	return fmt.Sprintf("#%02X%02X%02X", r, g, b)
}

func (c RGB) Hex() string {
	return RgbToHex(c.R, c.G, c.B)
}

// NormalizeHex returns the canonical "#RRGGBB" form of a valid hex color
func NormalizeHex(hex string) (string, bool) {
	rgb, ok := HexToRgb(hex)
	if !ok {
		return "", false
	}
	return rgb.Hex(), true
}

// RgbToHsv converts 8-bit channels to integer hsv (h in degrees, s/v in percent).
// Achromatic colors report a hue of 0.
func RgbToHsv(r, g, b int) HSV {
	rf := float64(r) / 255
	gf := float64(g) / 255
	bf := float64(b) / 255

	maxVal := math.Max(rf, math.Max(gf, bf))
	minVal := math.Min(rf, math.Min(gf, bf))
	v := maxVal
	d := maxVal - minVal
	var s float64
	if maxVal != 0 {
		s = d / maxVal
	}
	var h float64
	if maxVal != minVal {
		switch maxVal {
		case rf:
			h = (gf - bf) / d
			if gf < bf {
				h += 6
			}
		case gf:
			h = (bf-rf)/d + 2
		case bf:
			h = (rf-gf)/d + 4
		}
		h /= 6
	}
	hsv := HSV{
		H: jsRound(h * 360),
		S: jsRound(s * 100),
		V: jsRound(v * 100),
	}
	if hsv.H >= 360 {
		hsv.H -= 360
	}
	return hsv
}

func (c RGB) HSV() HSV {
	return RgbToHsv(c.R, c.G, c.B)
}

// NormalizeHue maps any integer hue into [0,360)
func NormalizeHue(h int) int {
	h = h % 360
	if h < 0 {
		h += 360
	}
	return h
}

// HsvToRgb converts integer hsv to 8-bit channels.
// h is taken modulo 360, s and v are clamped to [0,100].
func HsvToRgb(h, s, v int) RGB {
	h = NormalizeHue(h)
	sDec := float64(ClampInt(s, 0, 100)) / 100
	vDec := float64(ClampInt(v, 0, 100)) / 100
	hf := float64(h)
	c := vDec * sDec
	x := c * (1 - math.Abs(math.Mod(hf/60, 2)-1))
	m := vDec - c

	var rf, gf, bf float64
	switch {
	case h < 60:
		rf, gf, bf = c, x, 0
	case h < 120:
		rf, gf, bf = x, c, 0
	case h < 180:
		rf, gf, bf = 0, c, x
	case h < 240:
		rf, gf, bf = 0, x, c
	case h < 300:
		rf, gf, bf = x, 0, c
	default:
		rf, gf, bf = c, 0, x
	}
	return RGB{
		R: jsRound((rf + m) * 255),
		G: jsRound((gf + m) * 255),
		B: jsRound((bf + m) * 255),
	}
}

func HsvToHex(h, s, v int) string {
	return HsvToRgb(h, s, v).Hex()
}

func (c HSV) Hex() string {
	return HsvToHex(c.H, c.S, c.V)
}

// Luminance is the perceptual (Rec. 601) brightness of a color in [0,1].
// It is not the WCAG relative luminance.
func Luminance(c RGB) float64 {
	return (0.299*float64(c.R) + 0.587*float64(c.G) + 0.114*float64(c.B)) / 255
}

// GetContrastColor returns black or white, whichever reads better on hexColor.
// Invalid input gets black.
func GetContrastColor(hexColor string) string {
	rgb, ok := HexToRgb(hexColor)
	if !ok {
		return Black
	}
	if Luminance(rgb) > ContrastThreshold {
		return Black
	}
	return White
}

// GenerateShades returns the darker steps, the color itself and the lighter
// steps, stably sorted by Luminance from lightest to darkest.
// The sort can interleave the two halves when generated shades tie.
func GenerateShades(hex string) []string {
	rgb, ok := HexToRgb(hex)
	if !ok {
		return []string{}
	}
	shades := make([]string, 0, len(darkenFactors)+1+len(lightenFactors))
	for _, f := range darkenFactors {
		shades = append(shades, RgbToHex(
			jsRound(float64(rgb.R)*f),
			jsRound(float64(rgb.G)*f),
			jsRound(float64(rgb.B)*f),
		))
	}
	shades = append(shades, rgb.Hex())
	for _, f := range lightenFactors {
		shades = append(shades, RgbToHex(
			jsRound(float64(rgb.R)+float64(255-rgb.R)*f),
			jsRound(float64(rgb.G)+float64(255-rgb.G)*f),
			jsRound(float64(rgb.B)+float64(255-rgb.B)*f),
		))
	}
	lum := make(map[string]float64, len(shades))
	for _, shade := range shades {
		shadeRgb, _ := HexToRgb(shade)
		lum[shade] = Luminance(shadeRgb)
	}
	sort.SliceStable(shades, func(i, j int) bool {
		return lum[shades[i]] > lum[shades[j]]
	})
	return shades
}

// RgbString formats the "rgb(R, G, B)" clipboard string
func RgbString(c RGB) string {
	return fmt.Sprintf("rgb(%d, %d, %d)", c.R, c.G, c.B)
}

// CssSnippet formats the "background-color: #HEX;" clipboard string
func CssSnippet(hex string) string {
	return fmt.Sprintf("background-color: %s;", strings.ToUpper(hex))
}

// HueBackground is the fully saturated color behind the saturation/value box
func HueBackground(h int) string {
	return fmt.Sprintf("hsl(%d, 100%%, 50%%)", NormalizeHue(h))
}
