// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

// Package kvstore is the string key/value storage behind the color history.
// SqliteStore persists to disk, MemStore is for tests and history:persist=false.
package kvstore

import (
	"context"
	"sync"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sawka/txwrap"
)

type SqliteStore struct {
	db *sqlx.DB
}

func (s *SqliteStore) withTx(ctx context.Context, fn func(tx *TxWrap) error) error {
	return txwrap.WithTx(ctx, s.db, fn)
}

func withTxRtn[RT any](ctx context.Context, s *SqliteStore, fn func(tx *TxWrap) (RT, error)) (RT, error) {
	return txwrap.WithTxRtn(ctx, s.db, fn)
}

type getResult struct {
	val   string
	found bool
}

func (s *SqliteStore) Get(ctx context.Context, key string) (string, bool, error) {
	rtn, err := withTxRtn(ctx, s, func(tx *TxWrap) (getResult, error) {
		query := `SELECT value FROM db_kv WHERE key = ?`
		if !tx.Exists(query, key) {
			return getResult{}, nil
		}
		return getResult{val: tx.GetString(query, key), found: true}, nil
	})
	return rtn.val, rtn.found, err
}

func (s *SqliteStore) Set(ctx context.Context, key string, val string) error {
	return s.withTx(ctx, func(tx *TxWrap) error {
		query := `INSERT INTO db_kv (key, value, modts) VALUES (?, ?, ?)
		          ON CONFLICT (key) DO UPDATE SET value = excluded.value, modts = excluded.modts`
		tx.Exec(query, key, val, time.Now().UnixMilli())
		return nil
	})
}

func (s *SqliteStore) Remove(ctx context.Context, key string) error {
	return s.withTx(ctx, func(tx *TxWrap) error {
		tx.Exec(`DELETE FROM db_kv WHERE key = ?`, key)
		return nil
	})
}

func (s *SqliteStore) Close() error {
	return s.db.Close()
}

type MemStore struct {
	lock *sync.Mutex
	m    map[string]string
}

func MakeMemStore() *MemStore {
	return &MemStore{lock: &sync.Mutex{}, m: make(map[string]string)}
}

func (s *MemStore) Get(ctx context.Context, key string) (string, bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()
	val, ok := s.m[key]
	return val, ok, nil
}

func (s *MemStore) Set(ctx context.Context, key string, val string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	s.m[key] = val
	return nil
}

func (s *MemStore) Remove(ctx context.Context, key string) error {
	s.lock.Lock()
	defer s.lock.Unlock()
	delete(s.m, key)
	return nil
}

func (s *MemStore) Close() error {
	return nil
}
