// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/nuancier/nuancier/pkg/appbase"
	"github.com/nuancier/nuancier/pkg/appconfig"
	"github.com/nuancier/nuancier/pkg/history"
	"github.com/nuancier/nuancier/pkg/kvstore"
	"github.com/nuancier/nuancier/pkg/panichandler"
	"github.com/nuancier/nuancier/pkg/util/logutil"
	"github.com/nuancier/nuancier/pkg/web"
	"github.com/skratchdot/open-golang/open"
	"golang.org/x/sync/errgroup"
)

// these are set at build time
var AppVersion = "0.0.0"
var BuildTime = "0"

const ShutdownTimeout = 5 * time.Second
const StoreOpenTimeout = 2 * time.Second

type historyStore interface {
	history.KVStore
	Close() error
}

func installShutdownSignalHandlers(cancelFn context.CancelFunc) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGHUP, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		for sig := range sigCh {
			log.Printf("shutting down: got signal %v\n", sig)
			cancelFn()
			break
		}
	}()
}

func openHistoryStore(settings appconfig.SettingsType) (historyStore, error) {
	if !settings.HistoryPersist {
		log.Printf("[history] history:persist is off, history is kept in memory\n")
		return kvstore.MakeMemStore(), nil
	}
	err := appbase.EnsureDBDir()
	if err != nil {
		return nil, err
	}
	ctx, cancelFn := context.WithTimeout(context.Background(), StoreOpenTimeout)
	defer cancelFn()
	store, err := kvstore.OpenSqliteStore(ctx, kvstore.GetDBName())
	if err != nil {
		return nil, err
	}
	return store, nil
}

func startConfigWatcher() (*appconfig.Watcher, error) {
	watcher, err := appconfig.MakeWatcher(appbase.GetConfigDir())
	if err != nil {
		return nil, err
	}
	watcher.OnChange(func(settings appconfig.SettingsType) {
		logutil.DevPrintf("[config] default color is now %s\n", settings.DefaultColor())
	})
	watcher.Start()
	return watcher, nil
}

func openBrowser(url string) {
	err := open.Start(url)
	if err != nil {
		log.Printf("[web] cannot open browser: %v\n", err)
	}
}

// pageURL is the address a browser can reach, an unspecified host
// (":0", "0.0.0.0", "[::]") is opened on loopback
func pageURL(addr net.Addr) string {
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		return "http://" + addr.String() + "/"
	}
	if ip := net.ParseIP(host); host == "" || (ip != nil && ip.IsUnspecified()) {
		host = "127.0.0.1"
	}
	return "http://" + net.JoinHostPort(host, port) + "/"
}

func runServer(ctx context.Context, server *http.Server, openPage bool) error {
	listener, err := web.MakeTCPListener(server.Addr)
	if err != nil {
		return err
	}
	url := pageURL(listener.Addr())
	// use fmt instead of log here to make sure it goes directly to stderr
	fmt.Fprintf(os.Stderr, "NUANCIER-ESTART web:%s version:%s buildtime:%s\n", listener.Addr(), AppVersion, BuildTime)
	if openPage {
		openBrowser(url)
	}
	eg, egCtx := errgroup.WithContext(ctx)
	eg.Go(func() (rtnErr error) {
		defer func() {
			if panicErr := panichandler.PanicHandler("web server", recover()); panicErr != nil {
				rtnErr = panicErr
			}
		}()
		err := server.Serve(listener)
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	})
	eg.Go(func() error {
		<-egCtx.Done()
		shutdownCtx, cancelFn := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancelFn()
		return server.Shutdown(shutdownCtx)
	})
	return eg.Wait()
}

func main() {
	logutil.InitLog()
	appbase.AppVersion = AppVersion
	appbase.BuildTime = BuildTime

	err := appbase.LoadDotEnv(appbase.DotEnvFile)
	if err != nil {
		log.Printf("[error] %v\n", err)
		return
	}
	appbase.CacheAndRemoveEnvVars()
	err = appbase.EnsureDataDir()
	if err != nil {
		log.Printf("error ensuring data dir: %v\n", err)
		return
	}
	err = appbase.EnsureConfigDir()
	if err != nil {
		log.Printf("error ensuring config dir: %v\n", err)
		return
	}
	appLock, err := appbase.AcquireLock()
	if err != nil {
		log.Printf("error acquiring lock (another instance of nuancier is likely running): %v\n", err)
		return
	}
	defer func() {
		err = appLock.Close()
		if err != nil {
			log.Printf("error releasing lock: %v\n", err)
		}
	}()
	log.Printf("nuancier version: %s (%s)\n", AppVersion, BuildTime)
	log.Printf("nuancier data dir: %s\n", appbase.GetDataDir())
	log.Printf("nuancier config dir: %s\n", appbase.GetConfigDir())

	getSettings := func() appconfig.SettingsType {
		settings, err := appconfig.ReadSettings(appbase.GetConfigDir())
		if err != nil {
			log.Printf("[config] %v (using defaults)\n", err)
		}
		return settings
	}
	watcher, err := startConfigWatcher()
	if err != nil {
		log.Printf("[config] settings will not be reloaded: %v\n", err)
	} else {
		defer watcher.Close()
		getSettings = watcher.GetSettings
	}
	settings := getSettings()

	store, err := openHistoryStore(settings)
	if err != nil {
		log.Printf("error opening history store: %v\n", err)
		return
	}
	defer store.Close()
	loadCtx, loadCancelFn := context.WithTimeout(context.Background(), StoreOpenTimeout)
	hist := history.Load(loadCtx, store)
	loadCancelFn()
	log.Printf("[history] loaded %d entries\n", hist.Len())

	ws := web.MakeWebServer(web.ServerOpts{
		History:     hist,
		GetSettings: getSettings,
	})
	server := ws.MakeHttpServer()
	server.Addr = settings.ListenAddr()

	ctx, cancelFn := context.WithCancel(context.Background())
	defer cancelFn()
	// long-lived streams end with ctx, Shutdown does not wait on them
	server.BaseContext = func(net.Listener) context.Context { return ctx }
	installShutdownSignalHandlers(cancelFn)
	err = runServer(ctx, server, settings.WebOpenBrowser)
	if err != nil {
		log.Printf("[web] server error: %v\n", err)
	}
	log.Printf("shutdown complete\n")
	runtime.KeepAlive(appLock)
}
