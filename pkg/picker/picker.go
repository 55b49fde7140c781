// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package picker runs one color picker session: the current color, the
// editable views over it, the saturation/value drag, the page fragment and
// the debounced history commit.
//
// All session state is owned by a single goroutine. Public methods post
// events into it and return immediately.
package picker

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"
	"time"

	"github.com/nuancier/nuancier/pkg/colorstate"
	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/nuancier/nuancier/pkg/history"
	"github.com/nuancier/nuancier/pkg/panichandler"
	"github.com/nuancier/nuancier/pkg/pointertrack"
	"github.com/nuancier/nuancier/pkg/util/logutil"
)

const EventQueueSize = 64
const HistoryWriteTimeout = 2 * time.Second

const (
	OutputType_State   = "state"
	OutputType_SetHash = "sethash"
	OutputType_Error   = "error"
)

var fragmentRe = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

type Snapshot struct {
	Color     string        `json:"color"`
	HexText   string        `json:"hextext"`
	RGB       colorutil.RGB `json:"rgb"`
	HSV       colorutil.HSV `json:"hsv"`
	Contrast  string        `json:"contrast"`
	RgbString string        `json:"rgbstring"`
	CssString string        `json:"cssstring"`
	HueBg     string        `json:"huebg"`
	Shades    []string      `json:"shades"`
	History   []string      `json:"history"`
	Dragging  bool          `json:"dragging"`
}

type OutputMessage struct {
	Type  string    `json:"type"`
	Data  *Snapshot `json:"data,omitempty"`
	Hash  string    `json:"hash,omitempty"`
	Error string    `json:"error,omitempty"`
}

type OutputFn func(msg OutputMessage)

type Options struct {
	DefaultColor string
	History      *history.History
	DebounceTime time.Duration // defaults to history.DebounceTime

	// called (from the session goroutine) after this session changes the history
	OnHistoryChange func()
}

type Session struct {
	ctx      context.Context
	cancelFn context.CancelFunc
	eventCh  chan func()
	out      OutputFn
	opts     Options

	// owned by the run loop
	color       string
	ctrl        *colorstate.Controller
	tracker     *pointertrack.Tracker
	rect        *pointertrack.Rect
	commitTimer *time.Timer
	commitGen   int
}

// ParseFragment accepts exactly "#" followed by 6 hex digits
func ParseFragment(hash string) (string, bool) {
	if !fragmentRe.MatchString(hash) {
		return "", false
	}
	return strings.ToUpper(hash), true
}

// MakeSession starts the session goroutine. Nothing is sent to out until
// Init or another event arrives.
func MakeSession(opts Options, out OutputFn) *Session {
	if opts.DebounceTime <= 0 {
		opts.DebounceTime = history.DebounceTime
	}
	ctx, cancelFn := context.WithCancel(context.Background())
	s := &Session{
		ctx:      ctx,
		cancelFn: cancelFn,
		eventCh:  make(chan func(), EventQueueSize),
		out:      out,
		opts:     opts,
	}
	s.ctrl = colorstate.MakeController(opts.DefaultColor, s.onColorChange)
	s.tracker = pointertrack.MakeTracker(pointertrack.RegionFunc(s.bounds), func(sv pointertrack.SatVal) {
		s.ctrl.SetSatVal(sv.S, sv.V)
	})
	go s.run()
	return s
}

func (s *Session) run() {
	defer func() {
		panichandler.LogPanic("picker session", recover())
	}()
	defer func() {
		if s.commitTimer != nil {
			s.commitTimer.Stop()
		}
	}()
	for {
		select {
		case <-s.ctx.Done():
			return
		case fn := <-s.eventCh:
			fn()
			s.sendState()
		}
	}
}

// post queues fn to run on the session goroutine, false if the session is closed
func (s *Session) post(fn func()) bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case <-s.ctx.Done():
		return false
	case s.eventCh <- fn:
		return true
	}
}

// Close stops the session, a pending history commit is dropped
func (s *Session) Close() {
	s.cancelFn()
}

func (s *Session) send(msg OutputMessage) {
	if s.out != nil {
		s.out(msg)
	}
}

func (s *Session) sendError(err error) {
	s.send(OutputMessage{Type: OutputType_Error, Error: err.Error()})
}

func (s *Session) sendState() {
	snap := s.makeSnapshot()
	s.send(OutputMessage{Type: OutputType_State, Data: &snap})
}

func (s *Session) makeSnapshot() Snapshot {
	rgb := s.ctrl.RGB()
	hsv := s.ctrl.HSV()
	color := s.ctrl.Color()
	snap := Snapshot{
		Color:     color,
		HexText:   s.ctrl.HexText(),
		RGB:       rgb,
		HSV:       hsv,
		Contrast:  colorutil.GetContrastColor(color),
		RgbString: colorutil.RgbString(rgb),
		CssString: colorutil.CssSnippet(color),
		HueBg:     colorutil.HueBackground(hsv.H),
		Shades:    colorutil.GenerateShades(color),
		History:   []string{},
		Dragging:  s.ctrl.IsDragging(),
	}
	if s.opts.History != nil {
		snap.History = s.opts.History.Entries()
	}
	return snap
}

func (s *Session) bounds() (pointertrack.Rect, bool) {
	if s.rect == nil {
		return pointertrack.Rect{}, false
	}
	return *s.rect, true
}

// runs for every committed color, from the controller or an external select
func (s *Session) onColorChange(hex string) {
	if hex == s.color {
		return
	}
	s.color = hex
	s.send(OutputMessage{Type: OutputType_SetHash, Hash: hex})
	s.scheduleCommit()
}

func (s *Session) scheduleCommit() {
	s.commitGen++
	gen := s.commitGen
	if s.commitTimer != nil {
		s.commitTimer.Stop()
	}
	s.commitTimer = time.AfterFunc(s.opts.DebounceTime, func() {
		s.post(func() { s.commitHistory(gen) })
	})
}

func (s *Session) commitHistory(gen int) {
	if gen != s.commitGen || s.opts.History == nil {
		// superseded by a later change
		return
	}
	ctx, cancelFn := context.WithTimeout(s.ctx, HistoryWriteTimeout)
	defer cancelFn()
	_, changed, err := s.opts.History.Push(ctx, s.color)
	if err != nil {
		log.Printf("[history] %v\n", err)
	} else if changed {
		logutil.DevPrintf("[history] committed %s\n", s.color)
	}
	// the in-memory list is what pages render, it changes even when the write fails
	if changed && s.opts.OnHistoryChange != nil {
		s.opts.OnHistoryChange()
	}
}

func (s *Session) selectColor(color string) {
	canon, ok := colorutil.NormalizeHex(color)
	if !ok {
		s.sendError(fmt.Errorf("invalid color %q", color))
		return
	}
	s.ctrl.SyncColor(canon)
	s.onColorChange(canon)
}

// Init is the page load (or a fragment edited by hand): a valid fragment
// sets the color, anything else keeps the current one, which is the default
// on first load. The fragment is always rewritten.
func (s *Session) Init(hash string) bool {
	return s.post(func() {
		if color, ok := ParseFragment(hash); ok {
			s.ctrl.SyncColor(color)
		}
		s.color = ""
		s.onColorChange(s.ctrl.Color())
	})
}

// Select applies a color picked from outside the editors (history, shade, preset)
func (s *Session) Select(color string) bool {
	return s.post(func() { s.selectColor(color) })
}

// PointerDown starts a drag on the saturation/value box. rect is where the
// box currently is, nil when it is not mounted.
func (s *Session) PointerDown(p pointertrack.Point, rect *pointertrack.Rect) bool {
	return s.post(func() {
		s.rect = rect
		s.ctrl.BeginDrag()
		s.tracker.Start(p)
	})
}

func (s *Session) PointerMove(p pointertrack.Point, rect *pointertrack.Rect) bool {
	return s.post(func() {
		if !s.tracker.IsActive() {
			return
		}
		s.rect = rect
		s.tracker.Move(p)
	})
}

func (s *Session) PointerUp() bool {
	return s.post(func() {
		if !s.tracker.IsActive() {
			return
		}
		s.tracker.End()
		s.ctrl.EndDrag()
	})
}

func (s *Session) SetHue(value string) bool {
	return s.post(func() { s.ctrl.SetHueInput(value) })
}

func (s *Session) SetChannel(channel string, value string) bool {
	return s.post(func() {
		if !s.ctrl.SetChannelInput(colorstate.Channel(channel), value) {
			s.sendError(fmt.Errorf("invalid channel %q", channel))
		}
	})
}

func (s *Session) SetHex(text string) bool {
	return s.post(func() { s.ctrl.SetHexInput(text) })
}

func (s *Session) ClearHistory() bool {
	return s.post(func() {
		if s.opts.History == nil {
			return
		}
		ctx, cancelFn := context.WithTimeout(s.ctx, HistoryWriteTimeout)
		defer cancelFn()
		changed, err := s.opts.History.Clear(ctx)
		if err != nil {
			log.Printf("[history] %v\n", err)
			s.sendError(err)
		}
		if changed && s.opts.OnHistoryChange != nil {
			s.opts.OnHistoryChange()
		}
	})
}

// Refresh re-sends the current state, used when another session changed the
// history. It never blocks: with a full queue a state is about to be sent anyway.
func (s *Session) Refresh() bool {
	if s.ctx.Err() != nil {
		return false
	}
	select {
	case <-s.ctx.Done():
		return false
	case s.eventCh <- func() {}:
		return true
	default:
		return false
	}
}
