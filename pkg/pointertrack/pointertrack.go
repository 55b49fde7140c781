// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package pointertrack maps pointer positions over the saturation/value box
// to (s, v) pairs for the duration of a drag gesture.
package pointertrack

import (
	"math"
)

type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is a bounding rectangle in the same coordinate space as Point
type Rect struct {
	Left   float64 `json:"left"`
	Top    float64 `json:"top"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Region reports where the tracked box currently is.
// Bounds is called on every event, the layout can move between samples.
// ok is false when the box is not mounted.
type Region interface {
	Bounds() (rect Rect, ok bool)
}

type RegionFunc func() (Rect, bool)

func (fn RegionFunc) Bounds() (Rect, bool) {
	return fn()
}

type SatVal struct {
	S int `json:"s"`
	V int `json:"v"`
}

type Tracker struct {
	region   Region
	active   bool
	onChange func(SatVal)
}

func MakeTracker(region Region, onChange func(SatVal)) *Tracker {
	return &Tracker{region: region, onChange: onChange}
}

func (t *Tracker) IsActive() bool {
	return t.active
}

// Start begins a gesture and samples the start position.
// A new Start supersedes any gesture already in progress.
func (t *Tracker) Start(p Point) (SatVal, bool) {
	t.active = true
	return t.sample(p)
}

// Move is a no-op unless a gesture is active. The pointer may be outside the region.
func (t *Tracker) Move(p Point) (SatVal, bool) {
	if !t.active {
		return SatVal{}, false
	}
	return t.sample(p)
}

// End stops tracking, it does not produce an update
func (t *Tracker) End() {
	t.active = false
}

func (t *Tracker) sample(p Point) (SatVal, bool) {
	if t.region == nil {
		return SatVal{}, false
	}
	rect, ok := t.region.Bounds()
	if !ok {
		return SatVal{}, false
	}
	sv, ok := SatValAt(rect, p)
	if !ok {
		return SatVal{}, false
	}
	if t.onChange != nil {
		t.onChange(sv)
	}
	return sv, true
}

// SatValAt converts a point to (s, v) relative to rect, clamping to its edges.
// Returns false for an empty rect.
func SatValAt(rect Rect, p Point) (SatVal, bool) {
	if rect.Width <= 0 || rect.Height <= 0 {
		return SatVal{}, false
	}
	x := clamp(p.X-rect.Left, 0, rect.Width)
	y := clamp(p.Y-rect.Top, 0, rect.Height)
	return SatVal{
		S: round(x / rect.Width * 100),
		V: round(100 - y/rect.Height*100),
	}, true
}

func clamp(v, minVal, maxVal float64) float64 {
	return math.Max(minVal, math.Min(v, maxVal))
}

// half up, same as the color math
func round(x float64) int {
	return int(math.Floor(x + 0.5))
}
