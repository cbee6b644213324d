// Command patternkeepd is the process entry point: it wires config,
// file-based logging, and the engine together behind a small set of
// cobra subcommands. The interactive/long-running surface is "serve";
// everything else is a one-shot operation against the local store.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"codenerd/internal/config"
	"codenerd/internal/logging"
)

var (
	configPath string
	verbose    bool
	workspace  string

	logger *zap.Logger
	cfg    *config.Config
	eng    *engineHandle
)

var rootCmd = &cobra.Command{
	Use:   "patternkeepd",
	Short: "patternkeep - a local-first code-pattern knowledge engine",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		zcfg := zap.NewProductionConfig()
		if verbose {
			zcfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
		}
		var err error
		logger, err = zcfg.Build()
		if err != nil {
			return fmt.Errorf("build zap logger: %w", err)
		}

		loaded, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = loaded

		if err := logging.Configure(workspace, cfg.Logging.DebugMode, cfg.Logging.Categories, cfg.Logging.Level); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to configure file logging: %v\n", err)
		}

		handle, err := newEngineHandle(cfg)
		if err != nil {
			return fmt.Errorf("start engine: %w", err)
		}
		eng = handle
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if eng != nil {
			_ = eng.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
		logging.CloseAll()
	},
}

func loadConfig() (*config.Config, error) {
	ws := workspace
	if ws == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getwd: %w", err)
		}
		ws = wd
	}
	abs, err := filepath.Abs(ws)
	if err != nil {
		return nil, fmt.Errorf("resolve workspace: %w", err)
	}
	workspace = abs

	path := configPath
	if path == "" {
		path = filepath.Join(workspace, "patternkeep.yaml")
	}
	var loaded *config.Config
	if _, err := os.Stat(path); os.IsNotExist(err) {
		loaded = config.DefaultConfig()
	} else {
		loaded, err = config.Load(path)
		if err != nil {
			return nil, fmt.Errorf("load config %s: %w", path, err)
		}
	}
	if !filepath.IsAbs(loaded.Store.Path) {
		loaded.Store.Path = filepath.Join(workspace, loaded.Store.Path)
	}
	if !filepath.IsAbs(loaded.Federation.PersonalStorePath) {
		loaded.Federation.PersonalStorePath = filepath.Join(workspace, loaded.Federation.PersonalStorePath)
	}
	if !filepath.IsAbs(loaded.Federation.CommunityStorePath) {
		loaded.Federation.CommunityStorePath = filepath.Join(workspace, loaded.Federation.CommunityStorePath)
	}
	return loaded, nil
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to patternkeep.yaml (default: <workspace>/patternkeep.yaml)")
	rootCmd.PersistentFlags().StringVarP(&workspace, "workspace", "w", "", "workspace directory (default: current)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug-level stderr logging")

	rootCmd.AddCommand(
		harvestCmd,
		submitCmd,
		queryCmd,
		promoteCmd,
		autoPromoteCmd,
		reflectCmd,
		serveCmd,
	)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
