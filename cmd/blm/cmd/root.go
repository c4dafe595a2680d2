/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"context"
	"fmt"
	"os"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/ssargent/blmreader/pkg/blm"
	"github.com/ssargent/blmreader/pkg/config"
	"github.com/ssargent/blmreader/pkg/di"
	"github.com/ssargent/blmreader/pkg/logging"
)

var container *di.Container

// SetContainer injects the dependency container used by the commands
func SetContainer(c *di.Container) {
	container = c
}

type contextKey string

const appKey contextKey = "app"

// app is the state the root command prepares for every subcommand
type app struct {
	cfg    *config.Config
	logger log.Logger
	cache  di.Cache
}

// openFile opens path with the configured reader options
func (a *app) openFile(path string, preview bool) (*blm.File, error) {
	opts := []blm.Option{
		blm.WithChunkSize(a.cfg.Reader.ChunkSize),
		blm.WithMaxProcessSize(a.cfg.Reader.MaxProcessSize),
		blm.WithProcessing(preview || a.cfg.Reader.Preview),
		blm.WithLogger(a.logger),
	}
	if a.cache != nil {
		opts = append(opts, blm.WithCache(a.cache))
	}
	return blm.Open(path, opts...)
}

func (a *app) close() error {
	if a.cache == nil {
		return nil
	}
	err := a.cache.Close()
	a.cache = nil
	return err
}

func appFrom(cmd *cobra.Command) (*app, error) {
	a, ok := cmd.Context().Value(appKey).(*app)
	if !ok {
		return nil, fmt.Errorf("application state not found in context")
	}
	return a, nil
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "blm",
	Short: "blm - BLM property feed reader",
	Long: `blm reads BLM property feed files: it locates the HEADER, DEFINITION,
DATA and END sections, indexes the records and gives random access to them by
position and column name.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}

		logger, err := logging.New(cmd.ErrOrStderr(), cfg.Logging)
		if err != nil {
			return err
		}

		a := &app{cfg: cfg, logger: logger}
		if cfg.Cache.Enabled {
			if container == nil {
				return fmt.Errorf("dependency container not initialized")
			}
			cache, err := container.GetCacheFactory()(cfg.Cache.Dir)
			if err != nil {
				return fmt.Errorf("failed to open index cache: %w", err)
			}
			a.cache = cache
			level.Debug(logger).Log("msg", "index cache enabled", "dir", cfg.Cache.Dir)
		}

		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		cmd.SetContext(context.WithValue(ctx, appKey, a))
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		a, err := appFrom(cmd)
		if err != nil {
			return nil
		}
		return a.close()
	},
}

// loadConfig reads the config file when one exists and applies flag overrides
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	configPath, _ := cmd.Flags().GetString("config")
	explicit := configPath != ""
	if !explicit {
		configPath = config.GetDefaultConfigPath()
	}

	cfg := config.DefaultConfig()
	if config.ConfigExists(configPath) {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	} else if explicit && cmd.Name() != "init" {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	flags := cmd.Flags()
	if flags.Changed("log-level") {
		cfg.Logging.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("log-format") {
		cfg.Logging.Format, _ = flags.GetString("log-format")
	}
	if flags.Changed("chunk-size") {
		cfg.Reader.ChunkSize, _ = flags.GetInt("chunk-size")
	}
	if flags.Changed("max-process-size") {
		cfg.Reader.MaxProcessSize, _ = flags.GetInt64("max-process-size")
	}
	if flags.Changed("cache") {
		cfg.Cache.Enabled, _ = flags.GetBool("cache")
	}
	if flags.Changed("cache-dir") {
		cfg.Cache.Dir, _ = flags.GetString("cache-dir")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "Path to config file (default: OS-specific location)")
	rootCmd.PersistentFlags().String("log-level", "info", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().String("log-format", "logfmt", "Log format (logfmt, json)")
	rootCmd.PersistentFlags().Int("chunk-size", blm.DefaultChunkSize, "Read size in bytes used while scanning and indexing")
	rootCmd.PersistentFlags().Int64("max-process-size", blm.DefaultMaxProcessSize, "File offset at which preview indexing stops")
	rootCmd.PersistentFlags().Bool("cache", false, "Reuse record indexes from the persistent index cache")
	rootCmd.PersistentFlags().String("cache-dir", "./data/index-cache", "Index cache directory")
}
