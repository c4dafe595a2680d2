/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ssargent/blmreader/pkg/di"
)

// cacheCmd represents the cache command
var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect and clear the persistent index cache",
	Long: `Inspect and clear the index snapshots stored in the cache directory
(cache.dir in the config, or --cache-dir).`,
}

var cacheListCmd = &cobra.Command{
	Use:   "list",
	Short: "List cached index snapshots",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withCache(cmd, func(cache di.Cache) error {
			keys, err := cache.Keys()
			if err != nil {
				return err
			}
			for _, key := range keys {
				cmd.Println(key)
			}
			return nil
		})
	},
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear [file]",
	Short: "Delete cached index snapshots",
	Long: `Delete every cached index snapshot, or only those of one file.

Example:
  blm cache clear
  blm cache clear feed.blm`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var prefix string
		if len(args) == 1 {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			prefix = abs + "|"
		}

		return withCache(cmd, func(cache di.Cache) error {
			keys, err := cache.Keys()
			if err != nil {
				return err
			}
			removed := 0
			for _, key := range keys {
				if !strings.HasPrefix(key, prefix) {
					continue
				}
				if err := cache.Delete(key); err != nil {
					return fmt.Errorf("failed to delete %s: %w", key, err)
				}
				removed++
			}
			cmd.Printf("Removed %d snapshot(s)\n", removed)
			return nil
		})
	},
}

// withCache runs fn with the index cache, opening it for the call when the cache
// is not enabled for this run
func withCache(cmd *cobra.Command, fn func(di.Cache) error) error {
	a, err := appFrom(cmd)
	if err != nil {
		return err
	}
	if a.cache != nil {
		return fn(a.cache)
	}

	if container == nil {
		return fmt.Errorf("dependency container not initialized")
	}
	cache, err := container.GetCacheFactory()(a.cfg.Cache.Dir)
	if err != nil {
		return fmt.Errorf("failed to open index cache: %w", err)
	}
	defer cache.Close()
	level.Debug(a.logger).Log("msg", "opened index cache", "dir", a.cfg.Cache.Dir)
	return fn(cache)
}

func init() {
	rootCmd.AddCommand(cacheCmd)
	cacheCmd.AddCommand(cacheListCmd)
	cacheCmd.AddCommand(cacheClearCmd)
}
