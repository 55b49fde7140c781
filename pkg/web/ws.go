// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/nuancier/nuancier/pkg/panichandler"
	"github.com/nuancier/nuancier/pkg/picker"
	"github.com/nuancier/nuancier/pkg/util/logutil"
	"github.com/nuancier/nuancier/pkg/web/webcmd"
)

const wsReadWaitTimeout = 15 * time.Second
const wsWriteWaitTimeout = 10 * time.Second
const wsPingPeriodTickTime = 10 * time.Second
const wsInitialPingTime = 1 * time.Second
const wsOutputChSize = 100

var WebSocketUpgrader = websocket.Upgrader{
	ReadBufferSize:   4 * 1024,
	WriteBufferSize:  32 * 1024,
	HandshakeTimeout: 1 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

func (ws *WebServer) HandleWs(w http.ResponseWriter, r *http.Request) {
	err := ws.HandleWsInternal(w, r)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func getMessageType(jmsg map[string]any) string {
	if str, ok := jmsg["type"].(string); ok {
		return str
	}
	return ""
}

func getStringFromMap(jmsg map[string]any, key string) string {
	if str, ok := jmsg[key].(string); ok {
		return str
	}
	return ""
}

func errorMessage(err error) map[string]any {
	return map[string]any{"type": picker.OutputType_Error, "error": err.Error()}
}

// the read loop must not block on a dead writer
func trySend(outputCh chan any, msg any) {
	select {
	case outputCh <- msg:
	default:
		log.Printf("[web] output queue full, dropping message\n")
	}
}

// dispatches one decoded command to the session, errors go back to the page
func processWSCommand(jmsg map[string]any, session *picker.Session, outputCh chan any) {
	var rtnErr error
	defer func() {
		panicErr := panichandler.PanicHandler("processWSCommand", recover())
		if panicErr != nil {
			rtnErr = panicErr
		}
		if rtnErr == nil {
			return
		}
		trySend(outputCh, errorMessage(rtnErr))
	}()
	wsCommand, err := webcmd.ParseWSCommandMap(jmsg)
	if err != nil {
		rtnErr = fmt.Errorf("cannot parse wscommand: %v", err)
		return
	}
	switch cmd := wsCommand.(type) {
	case *webcmd.InitWSCommand:
		session.Init(cmd.Hash)
	case *webcmd.PointerWSCommand:
		if cmd.WSCommand == webcmd.WSCommand_PointerDown {
			session.PointerDown(cmd.Point(), cmd.Rect)
		} else {
			session.PointerMove(cmd.Point(), cmd.Rect)
		}
	case *webcmd.PointerUpWSCommand:
		session.PointerUp()
	case *webcmd.SetHueWSCommand:
		session.SetHue(cmd.Value)
	case *webcmd.SetChannelWSCommand:
		session.SetChannel(cmd.Channel, cmd.Value)
	case *webcmd.SetHexWSCommand:
		session.SetHex(cmd.Text)
	case *webcmd.SelectWSCommand:
		session.Select(cmd.Color)
	case *webcmd.ClearHistoryWSCommand:
		session.ClearHistory()
	default:
		rtnErr = fmt.Errorf("unhandled wscommand %q", wsCommand.GetWSCommand())
	}
}

// commands are handled in order, pointer moves must not be reordered
func ReadLoop(conn *websocket.Conn, session *picker.Session, outputCh chan any, closeCh chan any) {
	readWait := wsReadWaitTimeout
	conn.SetReadLimit(64 * 1024)
	conn.SetReadDeadline(time.Now().Add(readWait))
	defer close(closeCh)
	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			logutil.DevPrintf("[web] ReadPump error: %v\n", err)
			break
		}
		conn.SetReadDeadline(time.Now().Add(readWait))
		jmsg := map[string]any{}
		err = json.Unmarshal(message, &jmsg)
		if err != nil {
			log.Printf("[web] error unmarshalling json: %v\n", err)
			trySend(outputCh, errorMessage(fmt.Errorf("invalid message: %w", err)))
			continue
		}
		msgType := getMessageType(jmsg)
		if msgType == "pong" {
			// nothing
			continue
		}
		if msgType == "ping" {
			now := time.Now()
			pongMessage := map[string]any{"type": "pong", "stime": now.UnixMilli()}
			trySend(outputCh, pongMessage)
			continue
		}
		if getStringFromMap(jmsg, "wscommand") == "" {
			continue
		}
		processWSCommand(jmsg, session, outputCh)
	}
}

func WritePing(conn *websocket.Conn) error {
	now := time.Now()
	pingMessage := map[string]any{"type": "ping", "stime": now.UnixMilli()}
	jsonVal, _ := json.Marshal(pingMessage)
	_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout)) // no error
	err := conn.WriteMessage(websocket.TextMessage, jsonVal)
	if err != nil {
		return err
	}
	return nil
}

func WriteLoop(conn *websocket.Conn, outputCh chan any, closeCh chan any) {
	ticker := time.NewTicker(wsInitialPingTime)
	defer ticker.Stop()
	initialPing := true
	for {
		select {
		case msg := <-outputCh:
			barr, err := json.Marshal(msg)
			if err != nil {
				log.Printf("[web] cannot marshal websocket message: %v\n", err)
				// just loop again
				break
			}
			_ = conn.SetWriteDeadline(time.Now().Add(wsWriteWaitTimeout))
			err = conn.WriteMessage(websocket.TextMessage, barr)
			if err != nil {
				conn.Close()
				log.Printf("[web] WritePump error: %v\n", err)
				return
			}

		case <-ticker.C:
			err := WritePing(conn)
			if err != nil {
				conn.Close()
				log.Printf("[web] WritePump error: %v\n", err)
				return
			}
			if initialPing {
				initialPing = false
				ticker.Reset(wsPingPeriodTickTime)
			}

		case <-closeCh:
			return
		}
	}
}

func (ws *WebServer) HandleWsInternal(w http.ResponseWriter, r *http.Request) error {
	conn, err := WebSocketUpgrader.Upgrade(w, r, nil)
	if err != nil {
		return fmt.Errorf("WebSocket Upgrade Failed: %v", err)
	}
	defer conn.Close()
	wsConnId := uuid.New().String()
	log.Printf("[web] new websocket connection: connid:%s\n", wsConnId)
	outputCh := make(chan any, wsOutputChSize)
	closeCh := make(chan any)
	settings := ws.opts.GetSettings()
	session := picker.MakeSession(picker.Options{
		DefaultColor:    settings.DefaultColor(),
		History:         ws.opts.History,
		DebounceTime:    ws.opts.DebounceTime,
		OnHistoryChange: func() { ws.broadcastHistoryChange(wsConnId) },
	}, func(msg picker.OutputMessage) {
		select {
		case outputCh <- msg:
		case <-closeCh:
		}
	})
	ws.registerSession(wsConnId, session)
	defer func() {
		ws.unregisterSession(wsConnId)
		session.Close()
		log.Printf("[web] websocket closed: connid:%s\n", wsConnId)
	}()
	wg := &sync.WaitGroup{}
	wg.Add(2)
	go func() {
		// read loop
		defer wg.Done()
		defer func() {
			panichandler.LogPanic("ws read loop", recover())
		}()
		ReadLoop(conn, session, outputCh, closeCh)
	}()
	go func() {
		// write loop
		defer wg.Done()
		defer func() {
			panichandler.LogPanic("ws write loop", recover())
		}()
		WriteLoop(conn, outputCh, closeCh)
	}()
	wg.Wait()
	return nil
}
