// This is the CLI entry point for the conversion orchestrator: a
// debugging/demo surface, not a production IPC front-end. Each
// invocation loads the persisted Segments snapshot, applies one
// operation, and saves it back.
// Build with: go build -o bin/mozcgo ./cmd/mozcgo
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/sousuke0422/mozcgo/config"
	"github.com/sousuke0422/mozcgo/converter"
	"github.com/sousuke0422/mozcgo/historyrecon"
	"github.com/sousuke0422/mozcgo/reverseconv"
	"github.com/sousuke0422/mozcgo/segment"
	"github.com/sousuke0422/mozcgo/sessionstore"
	"github.com/sousuke0422/mozcgo/toydict"
	"github.com/sousuke0422/mozcgo/usagestats"
)

var (
	configPath string
	sessionPath string
	dictPath    string
	watchConfig bool

	logger *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "mozcgo",
	Short: "Conversion orchestrator CLI",
	Long: `mozcgo drives the conversion orchestrator's state machine from the
command line: each subcommand applies one operation to a Segments
snapshot persisted between invocations.

Configuration Sources (in order of precedence):
1. Command line flags
2. Environment variables (MOZCGO_*)
3. Configuration file (--config)
4. Built-in defaults`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger = newLogger()
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "path to YAML config file")
	rootCmd.PersistentFlags().StringVar(&sessionPath, "session", "mozcgo-session.yaml", "path to session snapshot file")
	rootCmd.PersistentFlags().StringVar(&dictPath, "dict", "", "path to toy dictionary fixture (required)")
	rootCmd.PersistentFlags().BoolVar(&watchConfig, "watch-config", false, "watch the config file and log the re-resolved config on each change")
	_ = rootCmd.MarkPersistentFlagRequired("dict")

	rootCmd.AddCommand(convertCmd)
	rootCmd.AddCommand(predictCmd)
	rootCmd.AddCommand(resizeCmd)
	rootCmd.AddCommand(commitCmd)
	rootCmd.AddCommand(finishCmd)
	rootCmd.AddCommand(revertCmd)
}

func newLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
}

// loadEnvironment wires the config layer, toy dictionary, session
// store, and a fully-assembled Converter from the persistent flags.
func loadEnvironment(cmd *cobra.Command) (*converter.Converter, *sessionstore.Store, config.Config, error) {
	cfg, _, err := config.Load(configPath, func(v *viper.Viper) {
		_ = v.BindPFlags(cmd.Flags())
	}, watchConfig, func(updated config.Config) {
		logger.Info("config changed", "max_history_segments_size", updated.MaxHistorySegmentsSize)
	})
	if err != nil {
		return nil, nil, config.Config{}, fmt.Errorf("loading config: %w", err)
	}

	dict, err := toydict.Load(dictPath)
	if err != nil {
		return nil, nil, config.Config{}, fmt.Errorf("loading dictionary: %w", err)
	}

	conv := converter.New(
		dict,
		toydict.NewPredictor(dict),
		toydict.NewRewriter(dict),
		dict,
		converter.WithSuppressionDictionary(dict),
		converter.WithHistoryReconstructor(historyrecon.New(dict)),
		converter.WithReverseConverter(reverseconv.New(dict, logger)),
		converter.WithUsageStats(usagestats.New()),
		converter.WithLogger(logger),
	)

	store := sessionstore.New(sessionPath)
	return conv, store, cfg, nil
}

// loadSession loads the session snapshot and applies the resolved
// config's history-retention cap to it.
func loadSession(store *sessionstore.Store, cfg config.Config) (*segment.Segments, error) {
	segs, err := store.Load()
	if err != nil {
		return nil, fmt.Errorf("loading session: %w", err)
	}
	if cfg.MaxHistorySegmentsSize > 0 {
		segs.SetMaxHistorySegmentsSize(cfg.MaxHistorySegmentsSize)
	}
	return segs, nil
}
