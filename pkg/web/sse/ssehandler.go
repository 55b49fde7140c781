// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package sse writes a Server-Sent Events stream from a single writer goroutine.
package sse

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"

	"github.com/nuancier/nuancier/pkg/panichandler"
)

const (
	SSEContentType       = "text/event-stream"
	SSEConnection        = "keep-alive"
	SSEStreamStartMsg    = ": stream-start\n\n"
	SSEKeepaliveInterval = 15 * time.Second
	SSEWriteChSize       = 10
)

type SSEMessageType string

const (
	SSEMsgData    SSEMessageType = "data"
	SSEMsgEvent   SSEMessageType = "event"
	SSEMsgComment SSEMessageType = "comment"
)

type SSEMessage struct {
	Type      SSEMessageType
	Data      string
	EventType string // only for SSEMsgEvent
}

// SSEHandlerCh queues messages on a channel, all writes to w happen in writerLoop
type SSEHandlerCh struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	ctx     context.Context // the r.Context()
	writeCh chan SSEMessage

	lock        sync.Mutex
	closed      bool
	initialized bool
	err         error

	wg sync.WaitGroup
}

func MakeSSEHandlerCh(w http.ResponseWriter, ctx context.Context) *SSEHandlerCh {
	return &SSEHandlerCh{
		w:       w,
		rc:      http.NewResponseController(w),
		ctx:     ctx,
		writeCh: make(chan SSEMessage, SSEWriteChSize),
	}
}

// SetupSSE writes the headers and starts the writer goroutine
func (h *SSEHandlerCh) SetupSSE() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return fmt.Errorf("SSE handler is closed")
	}
	// the stream outlives the server's write timeout
	if err := h.rc.SetWriteDeadline(time.Time{}); err != nil {
		return fmt.Errorf("failed to reset write deadline: %v", err)
	}
	h.w.Header().Set("Content-Type", SSEContentType)
	h.w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate, no-transform")
	h.w.Header().Set("Connection", SSEConnection)
	h.w.Header().Set("X-Accel-Buffering", "no")
	h.w.WriteHeader(http.StatusOK)
	fmt.Fprint(h.w, SSEStreamStartMsg)
	if err := h.rc.Flush(); err != nil {
		return err
	}
	h.initialized = true
	h.wg.Add(1)
	go h.writerLoop()
	return nil
}

func (h *SSEHandlerCh) writerLoop() {
	defer func() {
		panichandler.LogPanic("sse:writerLoop", recover())
	}()
	defer h.wg.Done()
	keepaliveTicker := time.NewTicker(SSEKeepaliveInterval)
	defer keepaliveTicker.Stop()
	for {
		select {
		case msg, ok := <-h.writeCh:
			if !ok {
				return
			}
			if err := h.writeMessage(msg); err != nil {
				h.setError(err)
				return
			}
		case <-keepaliveTicker.C:
			if err := h.writeMessage(SSEMessage{Type: SSEMsgComment, Data: "keepalive"}); err != nil {
				h.setError(err)
				return
			}
		case <-h.ctx.Done():
			h.setError(h.ctx.Err())
			return
		}
	}
}

func (h *SSEHandlerCh) writeMessage(msg SSEMessage) error {
	if h.ctx.Err() != nil {
		return h.ctx.Err()
	}
	var err error
	switch msg.Type {
	case SSEMsgData:
		_, err = fmt.Fprintf(h.w, "data: %s\n\n", msg.Data)
	case SSEMsgEvent:
		if msg.EventType != "" {
			_, err = fmt.Fprintf(h.w, "event: %s\n", msg.EventType)
		}
		if err == nil {
			_, err = fmt.Fprintf(h.w, "data: %s\n\n", msg.Data)
		}
	case SSEMsgComment:
		_, err = fmt.Fprintf(h.w, ": %s\n\n", msg.Data)
	default:
		return fmt.Errorf("unknown message type: %s", msg.Type)
	}
	if err != nil {
		return err
	}
	return h.rc.Flush()
}

func (h *SSEHandlerCh) setError(err error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.err == nil {
		h.err = err
	}
}

// the lock is held across the send so Close cannot close writeCh under it
func (h *SSEHandlerCh) queueMessage(msg SSEMessage) error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.closed {
		return fmt.Errorf("SSE handler is closed")
	}
	if !h.initialized {
		return fmt.Errorf("SSE handler not initialized, call SetupSSE first")
	}
	if h.err != nil {
		return h.err
	}
	if h.ctx.Err() != nil {
		return h.ctx.Err()
	}
	select {
	case h.writeCh <- msg:
		return nil
	default:
		return fmt.Errorf("write channel is full")
	}
}

func (h *SSEHandlerCh) WriteEvent(eventType, data string) error {
	return h.queueMessage(SSEMessage{Type: SSEMsgEvent, Data: data, EventType: eventType})
}

// WriteJsonEvent marshals data and queues it as an event of eventType
func (h *SSEHandlerCh) WriteJsonEvent(eventType string, data any) error {
	barr, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %v", err)
	}
	return h.WriteEvent(eventType, string(barr))
}

// Err returns the first write error, or the request context error
func (h *SSEHandlerCh) Err() error {
	h.lock.Lock()
	defer h.lock.Unlock()
	if h.err == nil && h.ctx.Err() != nil {
		h.err = h.ctx.Err()
	}
	return h.err
}

// Close drains queued messages and waits for the writer goroutine
func (h *SSEHandlerCh) Close() {
	h.lock.Lock()
	if h.closed || !h.initialized {
		h.closed = true
		h.lock.Unlock()
		return
	}
	h.closed = true
	close(h.writeCh)
	h.lock.Unlock()
	h.wg.Wait()
}
