// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package appconfig

import (
	"fmt"
	"log"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
	"github.com/nuancier/nuancier/pkg/panichandler"
)

type SettingsHandler func(settings SettingsType)

// Watcher keeps the current settings and reloads them when settings.json
// changes. The config dir itself is watched so that editors which replace
// the file on save are picked up.
type Watcher struct {
	lock      sync.Mutex
	configDir string
	watcher   *fsnotify.Watcher
	settings  SettingsType
	handlers  []SettingsHandler
}

func MakeWatcher(configDir string) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating file watcher: %w", err)
	}
	err = fsw.Add(configDir)
	if err != nil {
		fsw.Close()
		return nil, fmt.Errorf("watching %s: %w", configDir, err)
	}
	w := &Watcher{configDir: configDir, watcher: fsw}
	w.settings = w.readSettings()
	return w, nil
}

func (w *Watcher) readSettings() SettingsType {
	settings, err := ReadSettings(w.configDir)
	if err != nil {
		log.Printf("[config] %v (using defaults)\n", err)
	}
	return settings
}

func (w *Watcher) GetSettings() SettingsType {
	w.lock.Lock()
	defer w.lock.Unlock()
	return w.settings
}

// OnChange registers fn to be called (from the watcher goroutine) after each reload
func (w *Watcher) OnChange(fn SettingsHandler) {
	w.lock.Lock()
	defer w.lock.Unlock()
	w.handlers = append(w.handlers, fn)
}

func (w *Watcher) Start() {
	log.Printf("[config] watching %s\n", w.configDir)
	events := w.watcher.Events
	errs := w.watcher.Errors
	go func() {
		defer func() {
			panichandler.LogPanic("config watcher", recover())
		}()
		for {
			select {
			case event, ok := <-events:
				if !ok {
					return
				}
				w.handleEvent(event)
			case err, ok := <-errs:
				if !ok {
					return
				}
				log.Printf("[config] watcher error: %v\n", err)
			}
		}
	}()
}

func (w *Watcher) Close() {
	w.lock.Lock()
	defer w.lock.Unlock()
	if w.watcher != nil {
		w.watcher.Close()
		w.watcher = nil
		log.Printf("[config] file watcher closed\n")
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	if event.Op == fsnotify.Chmod {
		return
	}
	if filepath.Base(event.Name) != SettingsFile {
		return
	}
	settings := w.readSettings()
	w.lock.Lock()
	w.settings = settings
	handlers := make([]SettingsHandler, len(w.handlers))
	copy(handlers, w.handlers)
	w.lock.Unlock()
	log.Printf("[config] reloaded %s\n", SettingsFile)
	for _, fn := range handlers {
		fn(settings)
	}
}
