// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"reflect"
	"testing"

	"github.com/nuancier/nuancier/pkg/kvstore"
)

type failingStore struct {
	*kvstore.MemStore
}

func (s failingStore) Set(ctx context.Context, key string, val string) error {
	return errors.New("disk full")
}

func storedEntries(t *testing.T, store KVStore) []string {
	t.Helper()
	val, found, err := store.Get(context.Background(), StorageKey)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !found {
		return nil
	}
	var rtn []string
	if err := json.Unmarshal([]byte(val), &rtn); err != nil {
		t.Fatalf("stored payload %q is not a json array: %v", val, err)
	}
	return rtn
}

func TestPushDedupesMostRecentFirst(t *testing.T) {
	ctx := context.Background()
	store := kvstore.MakeMemStore()
	h := Load(ctx, store)
	for _, color := range []string{"#FF0000", "#00ff00", "#FF0000"} {
		if _, _, err := h.Push(ctx, color); err != nil {
			t.Fatalf("Push(%s): %v", color, err)
		}
	}
	expected := []string{"#FF0000", "#00FF00"}
	if got := h.Entries(); !reflect.DeepEqual(got, expected) {
		t.Errorf("entries = %v, expected %v", got, expected)
	}
	if got := storedEntries(t, store); !reflect.DeepEqual(got, expected) {
		t.Errorf("stored = %v, expected %v", got, expected)
	}
}

func TestPushCapsEntries(t *testing.T) {
	ctx := context.Background()
	h := Load(ctx, kvstore.MakeMemStore())
	for i := 0; i < MaxEntries+5; i++ {
		if _, _, err := h.Push(ctx, fmt.Sprintf("#0000%02X", i)); err != nil {
			t.Fatalf("Push: %v", err)
		}
	}
	entries := h.Entries()
	if len(entries) != MaxEntries {
		t.Fatalf("len = %d, expected %d", len(entries), MaxEntries)
	}
	if entries[0] != "#000013" {
		t.Errorf("newest = %s, expected #000013", entries[0])
	}
	if entries[MaxEntries-1] != "#000005" {
		t.Errorf("oldest = %s, expected #000005", entries[MaxEntries-1])
	}
}

func TestPushInvalid(t *testing.T) {
	h := Load(context.Background(), kvstore.MakeMemStore())
	if _, _, err := h.Push(context.Background(), "#12"); err == nil {
		t.Errorf("expected error for invalid color")
	}
	if h.Len() != 0 {
		t.Errorf("invalid color should not be recorded")
	}
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		payload string
		want    []string
	}{
		{name: "valid", payload: `["#AABBCC","#112233"]`, want: []string{"#AABBCC", "#112233"}},
		{name: "lowercase and dupes", payload: `["#aabbcc","#AABBCC","#112233"]`, want: []string{"#AABBCC", "#112233"}},
		{name: "invalid entries dropped", payload: `["#AABBCC","nope","#12"]`, want: []string{"#AABBCC"}},
		{name: "malformed", payload: `{not json`, want: []string{}},
		{name: "wrong shape", payload: `{"a":1}`, want: []string{}},
		{name: "numbers", payload: `[1,2,3]`, want: []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			store := kvstore.MakeMemStore()
			store.Set(ctx, StorageKey, tt.payload)
			h := Load(ctx, store)
			if got := h.Entries(); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("entries = %v, expected %v", got, tt.want)
			}
		})
	}
}

func TestLoadTrimsLongPayload(t *testing.T) {
	var colors []string
	for i := 0; i < 20; i++ {
		colors = append(colors, fmt.Sprintf("#1000%02X", i))
	}
	barr, _ := json.Marshal(colors)
	store := kvstore.MakeMemStore()
	store.Set(context.Background(), StorageKey, string(barr))
	h := Load(context.Background(), store)
	if h.Len() != MaxEntries {
		t.Errorf("len = %d, expected %d", h.Len(), MaxEntries)
	}
}

func TestMalformedPayloadIsOverwritten(t *testing.T) {
	ctx := context.Background()
	store := kvstore.MakeMemStore()
	store.Set(ctx, StorageKey, `[[[`)
	h := Load(ctx, store)
	if _, _, err := h.Push(ctx, "#ABCDEF"); err != nil {
		t.Fatalf("Push: %v", err)
	}
	if got := storedEntries(t, store); !reflect.DeepEqual(got, []string{"#ABCDEF"}) {
		t.Errorf("stored = %v", got)
	}
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := kvstore.MakeMemStore()
	h := Load(ctx, store)
	h.Push(ctx, "#ABCDEF")
	changed, err := h.Clear(ctx)
	if err != nil {
		t.Fatalf("Clear: %v", err)
	}
	if !changed {
		t.Errorf("clearing a non-empty history should report a change")
	}
	if h.Len() != 0 {
		t.Errorf("history should be empty after Clear")
	}
	if _, found, _ := store.Get(ctx, StorageKey); found {
		t.Errorf("stored key should be removed")
	}
	changed, err = h.Clear(ctx)
	if err != nil || changed {
		t.Errorf("clearing an empty history: changed=%v err=%v, expected no change", changed, err)
	}
}

func TestPushStoreFailure(t *testing.T) {
	ctx := context.Background()
	h := Load(ctx, failingStore{kvstore.MakeMemStore()})
	entries, changed, err := h.Push(ctx, "#ABCDEF")
	if err == nil {
		t.Fatalf("expected write error")
	}
	if !changed {
		t.Errorf("in-memory list changed, expected changed=true")
	}
	if !reflect.DeepEqual(entries, []string{"#ABCDEF"}) || h.Len() != 1 {
		t.Errorf("in-memory history should still be updated, got %v", entries)
	}
}

type countingStore struct {
	*kvstore.MemStore
	sets int
}

func (s *countingStore) Set(ctx context.Context, key string, val string) error {
	s.sets++
	return s.MemStore.Set(ctx, key, val)
}

func TestPushSameTopSkipsWrite(t *testing.T) {
	ctx := context.Background()
	store := &countingStore{MemStore: kvstore.MakeMemStore()}
	h := Load(ctx, store)
	if _, changed, _ := h.Push(ctx, "#ABCDEF"); !changed {
		t.Errorf("first push should change the list")
	}
	if _, changed, _ := h.Push(ctx, "#abcdef"); changed {
		t.Errorf("pushing the current top should not change the list")
	}
	if store.sets != 1 {
		t.Errorf("store writes = %d, expected 1", store.sets)
	}
	if h.Len() != 1 {
		t.Errorf("len = %d, expected 1", h.Len())
	}
}
