package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/recite-sh/recite/internal/cache"
	"github.com/recite-sh/recite/internal/config"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect the synthesized audio cache",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return cmd.Help()
	},
}

var cacheStatsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show cache usage",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		printCacheTier(w, "memory", store.MemoryStats())
		printCacheTier(w, "disk", store.DiskStats())
		return w.Flush()
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Delete all cached audio",
	Args:  cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		store, err := openCache()
		if err != nil {
			return err
		}
		if err := store.Clear(); err != nil {
			return fmt.Errorf("unable to clear cache: %w", err)
		}
		fmt.Println("Cache cleared.")
		return nil
	},
}

func openCache() (*cache.Store, error) {
	cfg, err := config.FromViper()
	if err != nil {
		return nil, err
	}
	store, err := buildCache(cfg.Cache)
	if err != nil {
		return nil, err
	}
	if store == nil {
		return nil, fmt.Errorf("cache is disabled")
	}
	return store, nil
}

func printCacheTier(w *tabwriter.Writer, name string, s cache.Stats) {
	fmt.Fprintf(w, "%s\t%d items\t%s\t\n", name, s.Items, humanize.IBytes(uint64(s.Size))) //nolint:gosec
}

func init() {
	cacheCmd.AddCommand(cacheStatsCmd, cacheClearCmd)
}
