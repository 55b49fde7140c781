// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package appbase

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/joho/godotenv"
)

// set by main-server.go
var AppVersion = "0.0.0"
var BuildTime = "0"

const (
	ConfigHomeEnvVar = "NUANCIER_CONFIG_HOME"
	DataHomeEnvVar   = "NUANCIER_DATA_HOME"
	DevVarName       = "NUANCIER_DEV"
)

var ConfigHome_VarCache string // caches NUANCIER_CONFIG_HOME
var DataHome_VarCache string   // caches NUANCIER_DATA_HOME
var Dev_VarCache string        // caches NUANCIER_DEV

const AppName = "nuancier"
const LockFile = "nuancier.lock"
const DBDir = "db"
const DotEnvFile = ".env"

var baseLock = &sync.Mutex{}
var ensureDirCache = map[string]bool{}

type FDLock interface {
	Close() error
}

// LoadDotEnv reads KEY=VALUE pairs from path into the environment without
// overriding variables that are already set. A missing file is not an error.
func LoadDotEnv(path string) error {
	err := godotenv.Load(path)
	if err == nil {
		log.Printf("[base] loaded env from %s\n", path)
		return nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	return fmt.Errorf("loading %s: %w", path, err)
}

// CacheAndRemoveEnvVars falls back to the XDG-style dirs under the home
// directory when the env vars are not set
func CacheAndRemoveEnvVars() {
	ConfigHome_VarCache = os.Getenv(ConfigHomeEnvVar)
	if ConfigHome_VarCache == "" {
		ConfigHome_VarCache = filepath.Join(GetHomeDir(), ".config", AppName)
	}
	os.Unsetenv(ConfigHomeEnvVar)
	DataHome_VarCache = os.Getenv(DataHomeEnvVar)
	if DataHome_VarCache == "" {
		DataHome_VarCache = filepath.Join(GetHomeDir(), ".local", "share", AppName)
	}
	os.Unsetenv(DataHomeEnvVar)
	Dev_VarCache = os.Getenv(DevVarName)
	os.Unsetenv(DevVarName)
}

func IsDevMode() bool {
	return Dev_VarCache != ""
}

func GetDataDir() string {
	return DataHome_VarCache
}

func GetConfigDir() string {
	return ConfigHome_VarCache
}

func GetHomeDir() string {
	homeVar, err := os.UserHomeDir()
	if err != nil {
		return "/"
	}
	return homeVar
}

func ReplaceHomeDir(pathStr string) string {
	homeDir := GetHomeDir()
	if pathStr == homeDir {
		return "~"
	}
	if strings.HasPrefix(pathStr, homeDir+"/") {
		return "~" + pathStr[len(homeDir):]
	}
	return pathStr
}

func EnsureDataDir() error {
	return CacheEnsureDir(GetDataDir(), "datahome", 0700, "data directory")
}

func EnsureDBDir() error {
	return CacheEnsureDir(filepath.Join(GetDataDir(), DBDir), "datadb", 0700, "db directory")
}

func EnsureConfigDir() error {
	return CacheEnsureDir(GetConfigDir(), "confighome", 0700, "config directory")
}

func CacheEnsureDir(dirName string, cacheKey string, perm os.FileMode, dirDesc string) error {
	baseLock.Lock()
	ok := ensureDirCache[cacheKey]
	baseLock.Unlock()
	if ok {
		return nil
	}
	err := TryMkdirs(dirName, perm, dirDesc)
	if err != nil {
		return err
	}
	baseLock.Lock()
	ensureDirCache[cacheKey] = true
	baseLock.Unlock()
	return nil
}

func TryMkdirs(dirName string, perm os.FileMode, dirDesc string) error {
	info, err := os.Stat(dirName)
	if errors.Is(err, fs.ErrNotExist) {
		err = os.MkdirAll(dirName, perm)
		if err != nil {
			return fmt.Errorf("cannot make %s %q: %w", dirDesc, dirName, err)
		}
		info, err = os.Stat(dirName)
	}
	if err != nil {
		return fmt.Errorf("error trying to stat %s: %w", dirDesc, err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s %q must be a directory", dirDesc, dirName)
	}
	return nil
}
