// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package picker

import (
	"context"
	"reflect"
	"testing"
	"time"

	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/nuancier/nuancier/pkg/history"
	"github.com/nuancier/nuancier/pkg/kvstore"
	"github.com/nuancier/nuancier/pkg/pointertrack"
)

const testDefaultColor = "#6366F1"
const waitTimeout = 3 * time.Second

type outputCollector struct {
	ch chan OutputMessage
}

func (c *outputCollector) output(msg OutputMessage) {
	c.ch <- msg
}

// nextState returns the next state message along with anything sent before it
func (c *outputCollector) nextState(t *testing.T) (Snapshot, []OutputMessage) {
	t.Helper()
	var others []OutputMessage
	timeout := time.After(waitTimeout)
	for {
		select {
		case msg := <-c.ch:
			if msg.Type == OutputType_State {
				return *msg.Data, others
			}
			others = append(others, msg)
		case <-timeout:
			t.Fatalf("timed out waiting for state")
			return Snapshot{}, nil
		}
	}
}

func makeTestSession(t *testing.T, debounce time.Duration) (*Session, *outputCollector, *history.History) {
	hist := history.Load(context.Background(), kvstore.MakeMemStore())
	coll := &outputCollector{ch: make(chan OutputMessage, 1000)}
	s := MakeSession(Options{
		DefaultColor: testDefaultColor,
		History:      hist,
		DebounceTime: debounce,
	}, coll.output)
	t.Cleanup(s.Close)
	return s, coll, hist
}

func TestParseFragment(t *testing.T) {
	tests := []struct {
		hash   string
		want   string
		wantOk bool
	}{
		{"#112233", "#112233", true},
		{"#abcdef", "#ABCDEF", true},
		{"#11223", "", false},
		{"112233", "", false},
		{"#1122334", "", false},
		{"#GGGGGG", "", false},
		{"", "", false},
	}
	for _, tt := range tests {
		got, ok := ParseFragment(tt.hash)
		if got != tt.want || ok != tt.wantOk {
			t.Errorf("ParseFragment(%q) = %q,%v expected %q,%v", tt.hash, got, ok, tt.want, tt.wantOk)
		}
	}
}

func TestInit(t *testing.T) {
	tests := []struct {
		name string
		hash string
		want string
	}{
		{name: "valid fragment", hash: "#112233", want: "#112233"},
		{name: "lowercase fragment", hash: "#abcdef", want: "#ABCDEF"},
		{name: "short fragment", hash: "#11223", want: testDefaultColor},
		{name: "no fragment", hash: "", want: testDefaultColor},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s, coll, _ := makeTestSession(t, time.Hour)
			s.Init(tt.hash)
			snap, others := coll.nextState(t)
			if snap.Color != tt.want {
				t.Errorf("color = %s, expected %s", snap.Color, tt.want)
			}
			if len(others) != 1 || others[0].Type != OutputType_SetHash || others[0].Hash != tt.want {
				t.Errorf("expected one sethash %s, got %+v", tt.want, others)
			}
		})
	}
}

func TestSnapshotFields(t *testing.T) {
	s, coll, _ := makeTestSession(t, time.Hour)
	s.Init("#808080")
	snap, _ := coll.nextState(t)
	if snap.RGB != (colorutil.RGB{R: 128, G: 128, B: 128}) {
		t.Errorf("rgb = %+v", snap.RGB)
	}
	// gray has no hue, the one from the default color is kept
	if snap.HSV != (colorutil.HSV{H: 239, S: 0, V: 50}) {
		t.Errorf("hsv = %+v", snap.HSV)
	}
	if snap.HueBg != "hsl(239, 100%, 50%)" {
		t.Errorf("huebg = %s", snap.HueBg)
	}
	if snap.Contrast != colorutil.Black {
		t.Errorf("contrast = %s", snap.Contrast)
	}
	if snap.RgbString != "rgb(128, 128, 128)" {
		t.Errorf("rgbstring = %s", snap.RgbString)
	}
	if snap.CssString != "background-color: #808080;" {
		t.Errorf("cssstring = %s", snap.CssString)
	}
	if snap.HexText != "808080" {
		t.Errorf("hextext = %s", snap.HexText)
	}
	if !reflect.DeepEqual(snap.Shades, colorutil.GenerateShades("#808080")) {
		t.Errorf("shades = %v", snap.Shades)
	}
	if snap.History == nil || len(snap.History) != 0 {
		t.Errorf("history = %#v, expected empty", snap.History)
	}
}

func TestDebounceCoalesces(t *testing.T) {
	s, coll, hist := makeTestSession(t, 150*time.Millisecond)
	s.Init("")
	s.SetHex("FF0000")
	s.SetHex("00FF00")
	for i := 0; i < 3; i++ {
		coll.nextState(t)
	}
	snap, _ := coll.nextState(t)
	if !reflect.DeepEqual(snap.History, []string{"#00FF00"}) {
		t.Fatalf("history after commit = %v, expected [#00FF00]", snap.History)
	}
	time.Sleep(400 * time.Millisecond)
	if got := hist.Entries(); !reflect.DeepEqual(got, []string{"#00FF00"}) {
		t.Errorf("superseded changes were committed: %v", got)
	}
}

func TestHistorySequence(t *testing.T) {
	s, coll, hist := makeTestSession(t, 20*time.Millisecond)
	s.Init("#FF0000")
	coll.nextState(t)
	coll.nextState(t) // commit
	s.Select("#00FF00")
	coll.nextState(t)
	coll.nextState(t)
	s.Select("#ff0000")
	coll.nextState(t)
	snap, _ := coll.nextState(t)
	expected := []string{"#FF0000", "#00FF00"}
	if !reflect.DeepEqual(snap.History, expected) {
		t.Errorf("history = %v, expected %v", snap.History, expected)
	}
	if !reflect.DeepEqual(hist.Entries(), expected) {
		t.Errorf("shared history = %v, expected %v", hist.Entries(), expected)
	}
}

func TestSameColorIsNotAChange(t *testing.T) {
	s, coll, _ := makeTestSession(t, time.Hour)
	s.Init("#112233")
	coll.nextState(t)
	s.Select("#112233")
	_, others := coll.nextState(t)
	if len(others) != 0 {
		t.Errorf("selecting the current color should not rewrite the fragment, got %+v", others)
	}
	s.SetHex("112233")
	_, others = coll.nextState(t)
	if len(others) != 0 {
		t.Errorf("committing the current color should not rewrite the fragment, got %+v", others)
	}
}

func TestSelectInvalid(t *testing.T) {
	s, coll, _ := makeTestSession(t, time.Hour)
	s.Init("")
	coll.nextState(t)
	s.Select("nope")
	snap, others := coll.nextState(t)
	if len(others) != 1 || others[0].Type != OutputType_Error {
		t.Errorf("expected an error message, got %+v", others)
	}
	if snap.Color != testDefaultColor {
		t.Errorf("color changed to %s", snap.Color)
	}
	s.SetChannel("x", "10")
	_, others = coll.nextState(t)
	if len(others) != 1 || others[0].Type != OutputType_Error {
		t.Errorf("expected an error for a bad channel, got %+v", others)
	}
}

func TestDrag(t *testing.T) {
	s, coll, _ := makeTestSession(t, time.Hour)
	rect := &pointertrack.Rect{Left: 10, Top: 10, Width: 100, Height: 100}
	s.Init("#FF0000")
	coll.nextState(t)

	s.PointerDown(pointertrack.Point{X: 10, Y: 10}, rect)
	snap, _ := coll.nextState(t)
	if !snap.Dragging {
		t.Errorf("expected dragging after pointerdown")
	}
	if snap.Color != "#FFFFFF" || snap.HSV != (colorutil.HSV{H: 0, S: 0, V: 100}) {
		t.Errorf("after pointerdown color = %s hsv = %+v", snap.Color, snap.HSV)
	}

	s.PointerMove(pointertrack.Point{X: 60, Y: 60}, rect)
	snap, _ = coll.nextState(t)
	if snap.HSV != (colorutil.HSV{H: 0, S: 50, V: 50}) {
		t.Errorf("after move hsv = %+v", snap.HSV)
	}
	if snap.Color != colorutil.HsvToHex(0, 50, 50) {
		t.Errorf("after move color = %s", snap.Color)
	}

	s.PointerUp()
	snap, _ = coll.nextState(t)
	if snap.Dragging {
		t.Errorf("expected drag to end")
	}
	moved := snap.Color
	s.PointerMove(pointertrack.Point{X: 110, Y: 10}, rect)
	snap, _ = coll.nextState(t)
	if snap.Color != moved {
		t.Errorf("move after pointerup changed the color to %s", snap.Color)
	}
}

func TestDragWithoutBox(t *testing.T) {
	s, coll, _ := makeTestSession(t, time.Hour)
	s.Init("#FF0000")
	coll.nextState(t)
	s.PointerDown(pointertrack.Point{X: 10, Y: 10}, nil)
	snap, _ := coll.nextState(t)
	if snap.Color != "#FF0000" {
		t.Errorf("color changed without a box: %s", snap.Color)
	}
}

func TestCloseDropsPendingCommit(t *testing.T) {
	s, coll, hist := makeTestSession(t, 50*time.Millisecond)
	s.Init("#123456")
	coll.nextState(t)
	s.Close()
	time.Sleep(200 * time.Millisecond)
	if hist.Len() != 0 {
		t.Errorf("closed session committed history: %v", hist.Entries())
	}
	if s.Select("#000000") {
		t.Errorf("post after close should fail")
	}
}

func TestClearHistory(t *testing.T) {
	hist := history.Load(context.Background(), kvstore.MakeMemStore())
	hist.Push(context.Background(), "#ABCDEF")
	coll := &outputCollector{ch: make(chan OutputMessage, 100)}
	changed := make(chan struct{}, 10)
	s := MakeSession(Options{
		DefaultColor:    testDefaultColor,
		History:         hist,
		DebounceTime:    time.Hour,
		OnHistoryChange: func() { changed <- struct{}{} },
	}, coll.output)
	defer s.Close()

	s.Refresh()
	snap, _ := coll.nextState(t)
	if !reflect.DeepEqual(snap.History, []string{"#ABCDEF"}) {
		t.Fatalf("history = %v", snap.History)
	}
	s.ClearHistory()
	snap, _ = coll.nextState(t)
	if len(snap.History) != 0 {
		t.Errorf("history after clear = %v", snap.History)
	}
	select {
	case <-changed:
	default:
		t.Errorf("OnHistoryChange not called")
	}

	s.ClearHistory()
	coll.nextState(t)
	select {
	case <-changed:
		t.Errorf("clearing an empty history should not notify")
	default:
	}
}

func TestHistoryChangeOnlyWhenListChanges(t *testing.T) {
	hist := history.Load(context.Background(), kvstore.MakeMemStore())
	hist.Push(context.Background(), "#123456")
	coll := &outputCollector{ch: make(chan OutputMessage, 1000)}
	changed := make(chan struct{}, 10)
	s := MakeSession(Options{
		DefaultColor:    testDefaultColor,
		History:         hist,
		DebounceTime:    30 * time.Millisecond,
		OnHistoryChange: func() { changed <- struct{}{} },
	}, coll.output)
	defer s.Close()

	// commits the color already on top of the history
	s.Init("#123456")
	coll.nextState(t)
	time.Sleep(200 * time.Millisecond)
	s.Refresh()
	coll.nextState(t)
	select {
	case <-changed:
		t.Fatalf("committing the current top should not notify")
	default:
	}

	s.Select("#ABCDEF")
	select {
	case <-changed:
	case <-time.After(waitTimeout):
		t.Fatalf("OnHistoryChange not called after a new color was committed")
	}
	if !reflect.DeepEqual(hist.Entries(), []string{"#ABCDEF", "#123456"}) {
		t.Errorf("entries = %v", hist.Entries())
	}
}
