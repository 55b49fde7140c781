// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package web

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log"
	"net"
	"net/http"
	"runtime/debug"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"
	"github.com/nuancier/nuancier/pkg/appconfig"
	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/nuancier/nuancier/pkg/history"
	"github.com/nuancier/nuancier/pkg/picker"
	"github.com/nuancier/nuancier/pkg/web/sse"
)

//go:embed static/*
var staticFS embed.FS

type WebFnType = func(http.ResponseWriter, *http.Request)

// Header constants
const (
	CacheControlHeaderKey     = "Cache-Control"
	CacheControlHeaderNoCache = "no-cache"

	ContentTypeHeaderKey = "Content-Type"
	ContentTypeJson      = "application/json"

	ContentLengthHeaderKey = "Content-Length"
)

const HttpReadTimeout = 5 * time.Second
const HttpWriteTimeout = 21 * time.Second
const HttpMaxHeaderBytes = 60000

type WebFnOpts struct {
	AllowCaching bool
	JsonErrors   bool
}

type ServerOpts struct {
	History     *history.History
	GetSettings func() appconfig.SettingsType

	// 0 uses history.DebounceTime
	DebounceTime time.Duration
}

const HistoryEventType = "history"

type WebServer struct {
	opts        ServerOpts
	lock        *sync.Mutex
	sessions    map[string]*picker.Session
	historySubs map[string]chan struct{}
}

func MakeWebServer(opts ServerOpts) *WebServer {
	if opts.GetSettings == nil {
		opts.GetSettings = appconfig.DefaultSettings
	}
	return &WebServer{
		opts:        opts,
		lock:        &sync.Mutex{},
		sessions:    make(map[string]*picker.Session),
		historySubs: make(map[string]chan struct{}),
	}
}

func (ws *WebServer) registerSession(connId string, s *picker.Session) {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	ws.sessions[connId] = s
}

func (ws *WebServer) unregisterSession(connId string) {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	delete(ws.sessions, connId)
}

func (ws *WebServer) NumSessions() int {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	return len(ws.sessions)
}

// other pages share the history and must re-render it
func (ws *WebServer) broadcastHistoryChange(fromConnId string) {
	ws.lock.Lock()
	others := make([]*picker.Session, 0, len(ws.sessions))
	for connId, s := range ws.sessions {
		if connId != fromConnId {
			others = append(others, s)
		}
	}
	for _, ch := range ws.historySubs {
		select {
		case ch <- struct{}{}:
		default:
		}
	}
	ws.lock.Unlock()
	for _, s := range others {
		s.Refresh()
	}
}

func marshalReturnValue(data any, err error) []byte {
	var mapRtn = make(map[string]any)
	if err != nil {
		mapRtn["error"] = err.Error()
	} else {
		mapRtn["success"] = true
		mapRtn["data"] = data
	}
	rtn, err := json.Marshal(mapRtn)
	if err != nil {
		return marshalReturnValue(nil, fmt.Errorf("error serializing response: %v", err))
	}
	return rtn
}

func writeJsonRtn(w http.ResponseWriter, status int, data any, err error) {
	jsonRtn := marshalReturnValue(data, err)
	w.Header().Set(ContentTypeHeaderKey, ContentTypeJson)
	w.Header().Set(ContentLengthHeaderKey, fmt.Sprintf("%d", len(jsonRtn)))
	w.WriteHeader(status)
	w.Write(jsonRtn)
}

func colorFromQuery(r *http.Request) (string, error) {
	colorArg := r.URL.Query().Get("color")
	if colorArg == "" {
		return "", fmt.Errorf("color is required")
	}
	return colorutil.ParseColorArg(colorArg)
}

func handleConvert(w http.ResponseWriter, r *http.Request) {
	color, err := colorFromQuery(r)
	if err != nil {
		writeJsonRtn(w, http.StatusBadRequest, nil, err)
		return
	}
	info, _ := colorutil.Describe(color)
	writeJsonRtn(w, http.StatusOK, info, nil)
}

type shadesRtn struct {
	Color  string   `json:"color"`
	Shades []string `json:"shades"`
}

func handleShades(w http.ResponseWriter, r *http.Request) {
	color, err := colorFromQuery(r)
	if err != nil {
		writeJsonRtn(w, http.StatusBadRequest, nil, err)
		return
	}
	writeJsonRtn(w, http.StatusOK, shadesRtn{Color: color, Shades: colorutil.GenerateShades(color)}, nil)
}

type contrastRtn struct {
	Color    string `json:"color"`
	Contrast string `json:"contrast"`
}

func handleContrast(w http.ResponseWriter, r *http.Request) {
	color, err := colorFromQuery(r)
	if err != nil {
		writeJsonRtn(w, http.StatusBadRequest, nil, err)
		return
	}
	writeJsonRtn(w, http.StatusOK, contrastRtn{Color: color, Contrast: colorutil.GetContrastColor(color)}, nil)
}

func handlePalette(w http.ResponseWriter, r *http.Request) {
	writeJsonRtn(w, http.StatusOK, colorutil.PresetPalette, nil)
}

func (ws *WebServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	entries := []string{}
	if ws.opts.History != nil {
		entries = ws.opts.History.Entries()
	}
	writeJsonRtn(w, http.StatusOK, entries, nil)
}

func (ws *WebServer) subscribeHistory(subId string) chan struct{} {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	ch := make(chan struct{}, 1)
	ws.historySubs[subId] = ch
	return ch
}

func (ws *WebServer) unsubscribeHistory(subId string) {
	ws.lock.Lock()
	defer ws.lock.Unlock()
	delete(ws.historySubs, subId)
}

// streams the history list as an SSE event on connect and after every change
func (ws *WebServer) handleHistoryEvents(w http.ResponseWriter, r *http.Request) {
	if ws.opts.History == nil {
		http.Error(w, "history is not available", http.StatusNotFound)
		return
	}
	subId := uuid.New().String()
	notifyCh := ws.subscribeHistory(subId)
	defer ws.unsubscribeHistory(subId)
	handler := sse.MakeSSEHandlerCh(w, r.Context())
	defer handler.Close()
	err := handler.SetupSSE()
	if err != nil {
		log.Printf("[web] history events setup error: %v\n", err)
		return
	}
	defer func() {
		if streamErr := handler.Err(); streamErr != nil && !errors.Is(streamErr, context.Canceled) {
			log.Printf("[web] history events stream ended: %v\n", streamErr)
		}
	}()
	for {
		err = handler.WriteJsonEvent(HistoryEventType, ws.opts.History.Entries())
		if err != nil {
			return
		}
		select {
		case <-r.Context().Done():
			return
		case <-notifyCh:
		}
	}
}

func handleIndex(w http.ResponseWriter, r *http.Request) {
	barr, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		http.Error(w, fmt.Sprintf("error reading index: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set(ContentTypeHeaderKey, "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write(barr)
}

func WebFnWrap(opts WebFnOpts, fn WebFnType) WebFnType {
	return func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			recErr := recover()
			if recErr == nil {
				return
			}
			panicStr := fmt.Sprintf("panic: %v", recErr)
			log.Printf("[web] panic: %v\n", recErr)
			debug.PrintStack()
			if opts.JsonErrors {
				writeJsonRtn(w, http.StatusOK, nil, fmt.Errorf("%s", panicStr))
			} else {
				http.Error(w, panicStr, http.StatusInternalServerError)
			}
		}()
		if !opts.AllowCaching {
			w.Header().Set(CacheControlHeaderKey, CacheControlHeaderNoCache)
		}
		fn(w, r)
	}
}

func MakeTCPListener(serverAddr string) (net.Listener, error) {
	rtn, err := net.Listen("tcp", serverAddr)
	if err != nil {
		return nil, fmt.Errorf("error creating listener at %v: %v", serverAddr, err)
	}
	log.Printf("[web] server listening on %s\n", rtn.Addr())
	return rtn, nil
}

func (ws *WebServer) MakeRouter() *mux.Router {
	gr := mux.NewRouter()
	gr.HandleFunc("/ws", ws.HandleWs)
	api := gr.PathPrefix("/api").Methods(http.MethodGet).Subrouter()
	api.HandleFunc("/convert", WebFnWrap(WebFnOpts{JsonErrors: true}, handleConvert))
	api.HandleFunc("/shades", WebFnWrap(WebFnOpts{JsonErrors: true}, handleShades))
	api.HandleFunc("/contrast", WebFnWrap(WebFnOpts{JsonErrors: true}, handleContrast))
	api.HandleFunc("/palette", WebFnWrap(WebFnOpts{AllowCaching: true, JsonErrors: true}, handlePalette))
	api.HandleFunc("/history", WebFnWrap(WebFnOpts{JsonErrors: true}, ws.handleHistory))
	api.HandleFunc("/history/events", ws.handleHistoryEvents)
	staticSub, _ := fs.Sub(staticFS, "static")
	gr.PathPrefix("/static/").Handler(http.StripPrefix("/static/", http.FileServer(http.FS(staticSub))))
	gr.HandleFunc("/", WebFnWrap(WebFnOpts{}, handleIndex))
	return gr
}

// MakeHttpServer does not start serving, see http.Server.Serve
func (ws *WebServer) MakeHttpServer() *http.Server {
	return &http.Server{
		ReadTimeout:    HttpReadTimeout,
		WriteTimeout:   HttpWriteTimeout,
		MaxHeaderBytes: HttpMaxHeaderBytes,
		Handler:        ws.MakeRouter(),
	}
}
