// Copyright 2025, Command Line Inc.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/nuancier/nuancier/pkg/appbase"
	"github.com/nuancier/nuancier/pkg/colorutil"
	"github.com/nuancier/nuancier/pkg/history"
	"github.com/nuancier/nuancier/pkg/kvstore"
	"github.com/spf13/cobra"
)

const historyCmdTimeout = 5 * time.Second

type historyStore interface {
	history.KVStore
	io.Closer
}

// replaced in tests
var openHistoryStoreFn = openSqliteHistoryStore

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Manage the color history shared with the picker",
}

var historyListCmd = &cobra.Command{
	Use:   "list",
	Short: "List recent colors, most recent first",
	Args:  cobra.NoArgs,
	RunE:  historyListRun,
}

var historyAddCmd = &cobra.Command{
	Use:   "add color",
	Short: "Add a color to the top of the history",
	Args:  cobra.ExactArgs(1),
	RunE:  historyAddRun,
}

var historyClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove every color from the history",
	Args:  cobra.NoArgs,
	RunE:  historyClearRun,
}

func init() {
	historyCmd.AddCommand(historyListCmd)
	historyCmd.AddCommand(historyAddCmd)
	historyCmd.AddCommand(historyClearCmd)
	rootCmd.AddCommand(historyCmd)
}

func openSqliteHistoryStore(ctx context.Context) (historyStore, error) {
	appbase.CacheAndRemoveEnvVars()
	err := appbase.EnsureDataDir()
	if err != nil {
		return nil, err
	}
	err = appbase.EnsureDBDir()
	if err != nil {
		return nil, err
	}
	store, err := kvstore.OpenSqliteStore(ctx, kvstore.GetDBName())
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	return store, nil
}

func withHistory(fn func(ctx context.Context, h *history.History) error) error {
	ctx, cancelFn := context.WithTimeout(context.Background(), historyCmdTimeout)
	defer cancelFn()
	store, err := openHistoryStoreFn(ctx)
	if err != nil {
		return err
	}
	defer store.Close()
	return fn(ctx, history.Load(ctx, store))
}

func writeEntries(entries []string) error {
	if jsonFlag {
		return WriteJson(entries)
	}
	if len(entries) == 0 {
		WriteStderr("history is empty\n")
		return nil
	}
	for idx, hex := range entries {
		WriteStdout("%2d  %s\n", idx+1, formatSwatch(hex))
	}
	return nil
}

func historyListRun(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, h *history.History) error {
		return writeEntries(h.Entries())
	})
}

func historyAddRun(cmd *cobra.Command, args []string) error {
	color, err := colorutil.ParseColorArg(args[0])
	if err != nil {
		return err
	}
	return withHistory(func(ctx context.Context, h *history.History) error {
		entries, _, err := h.Push(ctx, color)
		if err != nil {
			return err
		}
		return writeEntries(entries)
	})
}

func historyClearRun(cmd *cobra.Command, args []string) error {
	return withHistory(func(ctx context.Context, h *history.History) error {
		_, err := h.Clear(ctx)
		if err != nil {
			return err
		}
		WriteStderr("history cleared\n")
		return nil
	})
}
