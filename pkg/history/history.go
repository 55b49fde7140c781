// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package history keeps the list of recently picked colors, most recent
// first, and mirrors it to a key/value store as a JSON array.
package history

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/emirpasic/gods/lists/doublylinkedlist"
	"github.com/nuancier/nuancier/pkg/colorutil"
)

const (
	StorageKey     = "color_history"
	MaxEntries     = 15
	DebounceTimeMs = 1000
	DebounceTime   = DebounceTimeMs * time.Millisecond
)

type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key string, val string) error
	Remove(ctx context.Context, key string) error
}

type History struct {
	lock  *sync.Mutex
	store KVStore
	list  *doublylinkedlist.List // of canonical hex strings
}

// Load reads the stored list once. A missing, unreadable or malformed
// payload starts an empty history (logged, never an error).
func Load(ctx context.Context, store KVStore) *History {
	h := &History{
		lock:  &sync.Mutex{},
		store: store,
		list:  doublylinkedlist.New(),
	}
	val, found, err := store.Get(ctx, StorageKey)
	if err != nil {
		log.Printf("[history] error reading %q, starting empty: %v\n", StorageKey, err)
		return h
	}
	if !found {
		return h
	}
	entries, err := parseEntries(val)
	if err != nil {
		log.Printf("[history] malformed %q, starting empty: %v\n", StorageKey, err)
		return h
	}
	for _, hex := range entries {
		if h.list.Size() >= MaxEntries {
			break
		}
		if h.list.IndexOf(hex) >= 0 {
			continue
		}
		h.list.Add(hex)
	}
	return h
}

// parseEntries accepts a JSON array of strings, invalid colors are dropped
func parseEntries(val string) ([]string, error) {
	var raw []string
	err := json.Unmarshal([]byte(val), &raw)
	if err != nil {
		return nil, err
	}
	rtn := make([]string, 0, len(raw))
	for _, entry := range raw {
		hex, ok := colorutil.NormalizeHex(entry)
		if !ok {
			log.Printf("[history] dropping invalid entry %q\n", entry)
			continue
		}
		rtn = append(rtn, hex)
	}
	return rtn, nil
}

// must hold lock
func (h *History) entries_nolock() []string {
	rtn := make([]string, 0, h.list.Size())
	for _, v := range h.list.Values() {
		rtn = append(rtn, v.(string))
	}
	return rtn
}

func (h *History) Entries() []string {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.entries_nolock()
}

func (h *History) Len() int {
	h.lock.Lock()
	defer h.lock.Unlock()
	return h.list.Size()
}

// Push moves hex to the front (removing an earlier occurrence), trims to
// MaxEntries and writes the list through to the store. changed is false when
// hex was already the most recent entry. The in-memory list is updated (and
// changed is true) even if the write fails. The lock is held across the
// write so the stored payload always matches the latest list.
func (h *History) Push(ctx context.Context, hex string) (entries []string, changed bool, err error) {
	canon, ok := colorutil.NormalizeHex(hex)
	if !ok {
		return nil, false, fmt.Errorf("invalid color %q", hex)
	}
	h.lock.Lock()
	defer h.lock.Unlock()
	idx := h.list.IndexOf(canon)
	if idx == 0 {
		// already the most recent, nothing to write
		return h.entries_nolock(), false, nil
	}
	if idx > 0 {
		h.list.Remove(idx)
	}
	h.list.Prepend(canon)
	for h.list.Size() > MaxEntries {
		h.list.Remove(h.list.Size() - 1)
	}
	entries = h.entries_nolock()
	barr, err := json.Marshal(entries)
	if err != nil {
		return entries, true, fmt.Errorf("marshaling history: %w", err)
	}
	err = h.store.Set(ctx, StorageKey, string(barr))
	if err != nil {
		return entries, true, fmt.Errorf("writing history: %w", err)
	}
	return entries, true, nil
}

// Clear empties the list and removes the stored key. changed is false when
// the list was already empty.
func (h *History) Clear(ctx context.Context) (changed bool, err error) {
	h.lock.Lock()
	defer h.lock.Unlock()
	changed = !h.list.Empty()
	h.list.Clear()
	err = h.store.Remove(ctx, StorageKey)
	if err != nil {
		return changed, fmt.Errorf("clearing history: %w", err)
	}
	return changed, nil
}
