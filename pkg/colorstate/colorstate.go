// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package colorstate keeps the editable hex/rgb/hsv views of the current
// color in step with each other.
//
// The hex color owned by the caller is the ground truth. The rgb and hsv
// views are local so that slider positions do not jump when a value is
// quantized through hex, and so the hue survives achromatic colors where it
// is undefined.
package colorstate

import (
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/nuancier/nuancier/pkg/colorutil"
)

type Channel string

const (
	ChannelRed   Channel = "r"
	ChannelGreen Channel = "g"
	ChannelBlue  Channel = "b"
)

const (
	MaxHue     = 360
	MaxPercent = 100
	MaxChannel = 255
	HexDigits  = 6
)

type editSource int

const (
	sourceHsv editSource = iota
	sourceRgb
	sourceHex
)

var hexDraftRe = regexp.MustCompile(`^[0-9A-Fa-f]*$`)
var leadingIntRe = regexp.MustCompile(`^[+-]?\d+`)

type Controller struct {
	color       string
	rgb         colorutil.RGB
	hsv         colorutil.HSV
	hexDraft    string
	hasDraft    bool
	dragging    bool
	syncPending bool
	onChange    func(hex string)
}

// MakeController starts from color (falls back to black if invalid).
// onChange is called exactly once per committed edit with the new hex.
func MakeController(color string, onChange func(hex string)) *Controller {
	c := &Controller{
		hsv:      colorutil.HSV{H: 0, S: MaxPercent, V: MaxPercent},
		onChange: onChange,
	}
	if !c.SyncColor(color) {
		c.SyncColor(colorutil.Black)
	}
	return c
}

func (c *Controller) Color() string {
	return c.color
}

func (c *Controller) RGB() colorutil.RGB {
	return c.rgb
}

func (c *Controller) HSV() colorutil.HSV {
	return c.hsv
}

func (c *Controller) IsDragging() bool {
	return c.dragging
}

// HexText is what the hex field shows: the draft while a partial value is
// being typed, otherwise the current color without '#'.
func (c *Controller) HexText() string {
	if c.hasDraft {
		return c.hexDraft
	}
	return strings.TrimPrefix(c.color, "#")
}

// SyncColor applies a hex change coming from outside (history pick, shade
// click, initial fragment). Returns false for an invalid color.
func (c *Controller) SyncColor(hex string) bool {
	canon, ok := colorutil.NormalizeHex(hex)
	if !ok {
		return false
	}
	if canon == c.color {
		return true
	}
	c.color = canon
	c.hasDraft = false
	c.rgb, _ = colorutil.HexToRgb(canon)
	if c.dragging {
		c.syncPending = true
		return true
	}
	c.deriveHsv()
	return true
}

// keeps the previous hue when the color has no saturation
func (c *Controller) deriveHsv() {
	rgb, _ := colorutil.HexToRgb(c.color)
	derived := rgb.HSV()
	if derived.S == 0 {
		derived.H = c.hsv.H
	}
	c.hsv = derived
}

func (c *Controller) commit(hex string, source editSource) {
	c.color = hex
	c.hasDraft = false
	if source != sourceHsv {
		c.deriveHsv()
	}
	if source != sourceRgb {
		c.rgb, _ = colorutil.HexToRgb(hex)
	}
	if c.onChange != nil {
		c.onChange(hex)
	}
}

func (c *Controller) SetHue(h int) {
	c.hsv.H = colorutil.ClampInt(h, 0, MaxHue)
	c.commit(c.hsv.Hex(), sourceHsv)
}

// SetHueInput takes the raw slider value
func (c *Controller) SetHueInput(value string) {
	c.SetHue(ParseSliderInt(value))
}

// SetSatVal is driven by the saturation/value box, the hue is left alone
func (c *Controller) SetSatVal(s, v int) {
	c.hsv.S = colorutil.ClampInt(s, 0, MaxPercent)
	c.hsv.V = colorutil.ClampInt(v, 0, MaxPercent)
	c.commit(c.hsv.Hex(), sourceHsv)
}

// BeginDrag suspends hsv re-derivation from incoming hex changes
func (c *Controller) BeginDrag() {
	c.dragging = true
}

// EndDrag resumes re-derivation, applying any sync that arrived mid-gesture
func (c *Controller) EndDrag() {
	c.dragging = false
	if c.syncPending {
		c.syncPending = false
		c.deriveHsv()
	}
}

func (c *Controller) SetChannel(ch Channel, value int) bool {
	value = colorutil.ClampInt(value, 0, MaxChannel)
	rgb := c.rgb
	switch ch {
	case ChannelRed:
		rgb.R = value
	case ChannelGreen:
		rgb.G = value
	case ChannelBlue:
		rgb.B = value
	default:
		return false
	}
	c.rgb = rgb
	c.commit(rgb.Hex(), sourceRgb)
	return true
}

// SetChannelInput takes the raw slider value, unparsable input counts as 0
func (c *Controller) SetChannelInput(ch Channel, value string) bool {
	return c.SetChannel(ch, ParseSliderInt(value))
}

// SetHexInput handles a keystroke in the hex field. Text that is not hex
// or longer than 6 digits is rejected, partial text is kept as a draft, and
// only a complete value is committed (returns true).
func (c *Controller) SetHexInput(text string) bool {
	text = strings.TrimPrefix(strings.TrimSpace(text), "#")
	if len(text) > HexDigits || !hexDraftRe.MatchString(text) {
		return false
	}
	text = strings.ToUpper(text)
	if len(text) < HexDigits {
		c.hexDraft = text
		c.hasDraft = true
		return false
	}
	c.commit("#"+text, sourceHex)
	return true
}

// ParseSliderInt reads a leading integer ("12", "12.7", "12px"), anything
// else is 0
func ParseSliderInt(value string) int {
	m := leadingIntRe.FindString(strings.TrimSpace(value))
	if m == "" {
		return 0
	}
	v, err := strconv.Atoi(m)
	if err != nil {
		// out of int range
		if strings.HasPrefix(m, "-") {
			return math.MinInt
		}
		return math.MaxInt
	}
	return v
}
