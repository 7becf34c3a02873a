package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/wippyai/v8value/codec"
	"github.com/wippyai/v8value/internal/config"
)

// app is the state shared by all subcommands once flags are parsed.
type app struct {
	configPath string
	verbose    bool
	maxDepth   int

	cfg *config.Config
	log *zap.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "v8value",
		Short: "Inspect and produce V8 structured-clone data",
		Long: `v8value decodes and encodes the binary format V8's ValueSerializer
writes for structured clone, postMessage and IndexedDB records.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup(cmd)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.log != nil {
				_ = a.log.Sync()
			}
		},
	}

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (default: user config dir, if present)")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging to stderr")
	flags.IntVar(&a.maxDepth, "max-depth", codec.DefaultMaxDepth, "maximum nesting of composite values when decoding")

	root.AddCommand(newDecodeCmd(a), newEncodeCmd(a), newInspectCmd(a))
	return root
}

func (a *app) setup(cmd *cobra.Command) error {
	cfg, err := a.loadConfig()
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = a.maxDepth
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	a.cfg = cfg

	log, err := buildLogger(cfg.Logging, a.verbose)
	if err != nil {
		return fmt.Errorf("build logger: %w", err)
	}
	a.log = log
	codec.SetLogger(log)
	return nil
}

func (a *app) loadConfig() (*config.Config, error) {
	if a.configPath != "" {
		return config.LoadConfig(a.configPath)
	}
	if path := config.DefaultConfigPath(); path != "" {
		if _, err := os.Stat(path); err == nil {
			return config.LoadConfig(path)
		}
	}
	return config.DefaultConfig(), nil
}

func buildLogger(cfg config.Logging, verbose bool) (*zap.Logger, error) {
	if verbose || cfg.Development {
		zc := zap.NewDevelopmentConfig()
		if !verbose {
			level, err := zapcore.ParseLevel(cfg.Level)
			if err != nil {
				return nil, err
			}
			zc.Level = zap.NewAtomicLevelAt(level)
		}
		return zc.Build()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	zc := zap.NewProductionConfig()
	zc.Level = zap.NewAtomicLevelAt(level)
	return zc.Build()
}

// options returns the codec options the loaded configuration asks for.
func (a *app) options() codec.Options {
	opts := codec.DefaultOptions()
	opts.MaxDepth = a.cfg.MaxDepth
	opts.Logger = a.log
	if a.cfg.HostObjects == "length-prefixed" {
		opts.HostObjects = codec.LengthPrefixedHost{}
	}
	return opts
}
