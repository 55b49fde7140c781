// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package colorutil

import (
	"math"
	"reflect"
	"testing"

	"github.com/lucasb-eyer/go-colorful"
)

func hueDist(a, b int) int {
	d := NormalizeHue(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

func absInt(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func TestHexToRgb(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  RGB
		ok    bool
	}{
		{name: "with hash", input: "#6366F1", want: RGB{99, 102, 241}, ok: true},
		{name: "lowercase no hash", input: "6366f1", want: RGB{99, 102, 241}, ok: true},
		{name: "white", input: "#ffffff", want: RGB{255, 255, 255}, ok: true},
		{name: "black", input: "#000000", want: RGB{0, 0, 0}, ok: true},
		{name: "not a color", input: "not-a-color", ok: false},
		{name: "empty", input: "", ok: false},
		{name: "shorthand", input: "#FFF", ok: false},
		{name: "alpha", input: "#FFFFFFFF", ok: false},
		{name: "bad digits", input: "#GGGGGG", ok: false},
		{name: "signed digits", input: "#+F+F+F", ok: false},
		{name: "double hash", input: "##FFFFFF", ok: false},
		{name: "trailing space", input: "#FFFFFF ", ok: false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := HexToRgb(tt.input)
			if ok != tt.ok {
				t.Fatalf("HexToRgb(%q) ok = %v, expected %v", tt.input, ok, tt.ok)
			}
			if ok && got != tt.want {
				t.Errorf("HexToRgb(%q) = %+v, expected %+v", tt.input, got, tt.want)
			}
		})
	}
}

func TestRgbToHex(t *testing.T) {
	tests := []struct {
		r, g, b int
		want    string
	}{
		{99, 102, 241, "#6366F1"},
		{0, 0, 0, "#000000"},
		{255, 255, 255, "#FFFFFF"},
		{10, 11, 12, "#0A0B0C"},
		{300, -5, 16, "#FF0010"},
	}
	for _, tt := range tests {
		if got := RgbToHex(tt.r, tt.g, tt.b); got != tt.want {
			t.Errorf("RgbToHex(%d, %d, %d) = %s, expected %s", tt.r, tt.g, tt.b, got, tt.want)
		}
	}
}

func TestHexRgbRoundTrip(t *testing.T) {
	var vals []int
	for v := 0; v < 255; v += 5 {
		vals = append(vals, v)
	}
	vals = append(vals, 255)
	for _, r := range vals {
		for _, g := range vals {
			for _, b := range vals {
				hex := RgbToHex(r, g, b)
				got, ok := HexToRgb(hex)
				if !ok || got != (RGB{r, g, b}) {
					t.Fatalf("round trip (%d, %d, %d) -> %s -> %+v (ok=%v)", r, g, b, hex, got, ok)
				}
			}
		}
	}
}

func TestRgbToHsv(t *testing.T) {
	tests := []struct {
		name string
		rgb  RGB
		want HSV
	}{
		{name: "red", rgb: RGB{255, 0, 0}, want: HSV{0, 100, 100}},
		{name: "green", rgb: RGB{0, 255, 0}, want: HSV{120, 100, 100}},
		{name: "blue", rgb: RGB{0, 0, 255}, want: HSV{240, 100, 100}},
		{name: "indigo", rgb: RGB{99, 102, 241}, want: HSV{239, 59, 95}},
		{name: "red wraparound", rgb: RGB{255, 0, 128}, want: HSV{330, 100, 100}},
		{name: "black", rgb: RGB{0, 0, 0}, want: HSV{0, 0, 0}},
		{name: "gray", rgb: RGB{128, 128, 128}, want: HSV{0, 0, 50}},
		{name: "white", rgb: RGB{255, 255, 255}, want: HSV{0, 0, 100}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := RgbToHsv(tt.rgb.R, tt.rgb.G, tt.rgb.B)
			if got != tt.want {
				t.Errorf("RgbToHsv(%+v) = %+v, expected %+v", tt.rgb, got, tt.want)
			}
		})
	}
}

func TestRgbToHsvMatchesColorful(t *testing.T) {
	for r := 0; r <= 255; r += 17 {
		for g := 0; g <= 255; g += 15 {
			for b := 0; b <= 255; b += 51 {
				got := RgbToHsv(r, g, b)
				ref := colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
				h, s, v := ref.Hsv()
				if got.S != 0 && hueDist(got.H, int(math.Round(h))) > 1 {
					t.Errorf("hue for (%d, %d, %d): got %d, colorful %.2f", r, g, b, got.H, h)
				}
				if absInt(got.S-int(math.Round(s*100))) > 1 || absInt(got.V-int(math.Round(v*100))) > 1 {
					t.Errorf("s/v for (%d, %d, %d): got %d/%d, colorful %.2f/%.2f", r, g, b, got.S, got.V, s*100, v*100)
				}
			}
		}
	}
}

func TestHsvToHex(t *testing.T) {
	tests := []struct {
		name    string
		h, s, v int
		want    string
	}{
		{name: "red", h: 0, s: 100, v: 100, want: "#FF0000"},
		{name: "green", h: 120, s: 100, v: 100, want: "#00FF00"},
		{name: "blue", h: 240, s: 100, v: 100, want: "#0000FF"},
		{name: "hue 360 is red", h: 360, s: 100, v: 100, want: "#FF0000"},
		{name: "negative hue wraps", h: -120, s: 100, v: 100, want: "#0000FF"},
		{name: "half rounds up", h: 210, s: 100, v: 100, want: "#0080FF"},
		{name: "black", h: 0, s: 0, v: 0, want: "#000000"},
		{name: "white", h: 77, s: 0, v: 100, want: "#FFFFFF"},
		{name: "gray", h: 200, s: 0, v: 50, want: "#808080"},
		{name: "clamped", h: 0, s: 150, v: 130, want: "#FF0000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := HsvToHex(tt.h, tt.s, tt.v); got != tt.want {
				t.Errorf("HsvToHex(%d, %d, %d) = %s, expected %s", tt.h, tt.s, tt.v, got, tt.want)
			}
		})
	}
}

func TestHsvRoundTrip(t *testing.T) {
	// quantizing to 8-bit channels only keeps +-1 when chroma is large enough
	for h := 0; h < 360; h += 7 {
		for _, s := range []int{70, 85, 100} {
			for _, v := range []int{70, 85, 100} {
				rgb := HsvToRgb(h, s, v)
				got := rgb.HSV()
				if hueDist(got.H, h) > 1 || absInt(got.S-s) > 1 || absInt(got.V-v) > 1 {
					t.Errorf("round trip (%d, %d, %d) -> %+v -> %+v", h, s, v, rgb, got)
				}
			}
		}
	}
}

func TestGetContrastColor(t *testing.T) {
	tests := []struct {
		hex  string
		want string
	}{
		{"#FFFFFF", Black},
		{"#000000", White},
		{"#808080", Black}, // 128/255 is just above the threshold
		{"#7F7F7F", White},
		{"#FFFF00", Black},
		{"#0000FF", White},
		{"#FF0000", White},
		{"not-a-color", Black},
	}
	for _, tt := range tests {
		if got := GetContrastColor(tt.hex); got != tt.want {
			t.Errorf("GetContrastColor(%s) = %s, expected %s", tt.hex, got, tt.want)
		}
	}
}

func TestGenerateShades(t *testing.T) {
	tests := []struct {
		name string
		hex  string
		want []string
	}{
		{
			name: "gray",
			hex:  "#808080",
			want: []string{"#E6E6E6", "#CCCCCC", "#B3B3B3", "#999999", "#808080", "#666666", "#4D4D4D", "#333333", "#1A1A1A", "#000000"},
		},
		{
			name: "white ties keep generation order",
			hex:  "#FFFFFF",
			want: []string{"#FFFFFF", "#FFFFFF", "#FFFFFF", "#FFFFFF", "#FFFFFF", "#CCCCCC", "#999999", "#666666", "#333333", "#000000"},
		},
		{
			name: "black",
			hex:  "#000000",
			want: []string{"#CCCCCC", "#999999", "#666666", "#333333", "#000000", "#000000", "#000000", "#000000", "#000000", "#000000"},
		},
		{
			name: "invalid",
			hex:  "zzz",
			want: []string{},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := GenerateShades(tt.hex)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("GenerateShades(%s) = %v, expected %v", tt.hex, got, tt.want)
			}
		})
	}
}

func TestGenerateShadesProperties(t *testing.T) {
	for _, hex := range []string{"#6366f1", "#EF4444", "#10B981", "#0EA5E9", "#123456", "#FEDCBA"} {
		shades := GenerateShades(hex)
		if len(shades) != 10 {
			t.Fatalf("GenerateShades(%s) returned %d entries", hex, len(shades))
		}
		canon, _ := NormalizeHex(hex)
		found := false
		for idx, shade := range shades {
			if shade == canon {
				found = true
			}
			if idx == 0 {
				continue
			}
			prev, _ := HexToRgb(shades[idx-1])
			cur, _ := HexToRgb(shade)
			if Luminance(prev) < Luminance(cur) {
				t.Errorf("GenerateShades(%s) not sorted at %d: %v", hex, idx, shades)
			}
		}
		if !found {
			t.Errorf("GenerateShades(%s) does not contain %s: %v", hex, canon, shades)
		}
	}
}

func TestClipboardStrings(t *testing.T) {
	if got := RgbString(RGB{99, 102, 241}); got != "rgb(99, 102, 241)" {
		t.Errorf("RgbString = %q", got)
	}
	if got := CssSnippet("#6366f1"); got != "background-color: #6366F1;" {
		t.Errorf("CssSnippet = %q", got)
	}
	if got := HueBackground(360); got != "hsl(0, 100%, 50%)" {
		t.Errorf("HueBackground = %q", got)
	}
}

func TestParseColorArg(t *testing.T) {
	tests := []struct {
		arg     string
		want    string
		wantErr bool
	}{
		{arg: "#6366f1", want: "#6366F1"},
		{arg: " 112233 ", want: "#112233"},
		{arg: "CornflowerBlue", want: "#6495ED"},
		{arg: "white", want: "#FFFFFF"},
		{arg: "#12", wantErr: true},
		{arg: "notacolorname", wantErr: true},
		{arg: "", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseColorArg(tt.arg)
		if tt.wantErr {
			if err == nil {
				t.Errorf("ParseColorArg(%q) expected error, got %s", tt.arg, got)
			}
			continue
		}
		if err != nil || got != tt.want {
			t.Errorf("ParseColorArg(%q) = %s, %v, expected %s", tt.arg, got, err, tt.want)
		}
	}
}

func TestDescribe(t *testing.T) {
	info, ok := Describe("#6366f1")
	if !ok {
		t.Fatalf("Describe returned !ok")
	}
	expected := ColorInfo{
		Hex:       "#6366F1",
		RGB:       RGB{R: 99, G: 102, B: 241},
		HSV:       HSV{H: 239, S: 59, V: 95},
		RgbString: "rgb(99, 102, 241)",
		CssString: "background-color: #6366F1;",
		Contrast:  White,
	}
	if info != expected {
		t.Errorf("Describe = %+v, expected %+v", info, expected)
	}
	if _, ok := Describe("#6366f"); ok {
		t.Errorf("expected invalid hex to be rejected")
	}
}
