// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package kvstore

// setup for the kv db
// includes migration support and txwrap setup

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"log"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/nuancier/nuancier/pkg/appbase"
	"github.com/sawka/txwrap"

	sqlite3migrate "github.com/golang-migrate/migrate/v4/database/sqlite3"
	dbfs "github.com/nuancier/nuancier/db"
)

const KVDBName = "nuancier.db"
const InMemoryDBName = ":memory:"

type TxWrap = txwrap.TxWrap

func GetDBName() string {
	return filepath.Join(appbase.GetDataDir(), appbase.DBDir, KVDBName)
}

// OpenSqliteStore opens (creating if needed) and migrates the db at dbName.
// Pass InMemoryDBName for a throwaway db.
func OpenSqliteStore(ctx context.Context, dbName string) (*SqliteStore, error) {
	db, err := makeDB(ctx, dbName)
	if err != nil {
		return nil, err
	}
	err = migrateDB("kv", db.DB, dbfs.KVMigrationFS, "migrations-kv")
	if err != nil {
		db.Close()
		return nil, err
	}
	log.Printf("[db] kvstore initialized\n")
	return &SqliteStore{db: db}, nil
}

func makeDB(ctx context.Context, dbName string) (*sqlx.DB, error) {
	var rtn *sqlx.DB
	var err error
	if dbName == InMemoryDBName {
		log.Printf("[db] using in-memory db\n")
		rtn, err = sqlx.Open("sqlite3", dbName)
	} else {
		log.Printf("[db] opening db %s\n", appbase.ReplaceHomeDir(dbName))
		rtn, err = sqlx.Open("sqlite3", fmt.Sprintf("file:%s?mode=rwc&_journal_mode=WAL&_busy_timeout=5000", dbName))
	}
	if err != nil {
		return nil, fmt.Errorf("opening db: %w", err)
	}
	// one conn, an in-memory db is per-connection
	rtn.DB.SetMaxOpenConns(1)
	err = rtn.PingContext(ctx)
	if err != nil {
		rtn.Close()
		return nil, fmt.Errorf("opening db: %w", err)
	}
	return rtn, nil
}

func getMigrateVersion(m *migrate.Migrate) (uint, bool, error) {
	curVersion, dirty, err := m.Version()
	if err == migrate.ErrNilVersion {
		return 0, false, nil
	}
	return curVersion, dirty, err
}

func makeMigrate(storeName string, db *sql.DB, migrationFS fs.FS, migrationsName string) (*migrate.Migrate, error) {
	fsVar, err := iofs.New(migrationFS, migrationsName)
	if err != nil {
		return nil, fmt.Errorf("opening fs: %w", err)
	}
	mdriver, err := sqlite3migrate.WithInstance(db, &sqlite3migrate.Config{})
	if err != nil {
		return nil, fmt.Errorf("making %s migration driver: %w", storeName, err)
	}
	m, err := migrate.NewWithInstance("iofs", fsVar, "sqlite3", mdriver)
	if err != nil {
		return nil, fmt.Errorf("making %s migration: %w", storeName, err)
	}
	return m, nil
}

func migrateDB(storeName string, db *sql.DB, migrationFS fs.FS, migrationsName string) error {
	m, err := makeMigrate(storeName, db, migrationFS, migrationsName)
	if err != nil {
		return err
	}
	curVersion, dirty, err := getMigrateVersion(m)
	if dirty {
		return fmt.Errorf("%s, migrate up, database is dirty", storeName)
	}
	if err != nil {
		return fmt.Errorf("%s, cannot get current migration version: %w", storeName, err)
	}
	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrating %s: %w", storeName, err)
	}
	newVersion, _, err := getMigrateVersion(m)
	if err != nil {
		return fmt.Errorf("%s, cannot get new migration version: %w", storeName, err)
	}
	if newVersion != curVersion {
		log.Printf("[db] %s migration done, version %d -> %d\n", storeName, curVersion, newVersion)
	}
	return nil
}
