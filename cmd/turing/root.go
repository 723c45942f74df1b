package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/aretw0/turing"
	"github.com/aretw0/turing/internal/cli"
	"github.com/aretw0/turing/internal/config"
	"github.com/aretw0/turing/internal/logging"
	"github.com/charmbracelet/fang"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	v       = config.New()

	// Set up in PersistentPreRunE; commands that need adapters use app.
	cfg       *config.Config
	app       *cli.App
	logCloser io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "turing",
	Short: "Single-tape Turing machine simulator and encoder",
	Long: `turing runs deterministic single-tape Turing machines step by step and
computes the canonical string encoding of their descriptions.

Machines come from the built-in library, from a library directory of
Markdown/YAML/JSON documents (--library) or from a single file (--file).`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return teardown()
	},
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (YAML)")
	flags.String("log-level", "warn", "log level: debug, info, warn, error")
	flags.String("log-file", "", "also write JSON logs to this file")
	flags.Int("max-steps", 100000, "step budget per run (0 = unlimited)")
	flags.String("store", config.BackendFile, "run store backend: memory, file, redis")
	flags.String("store-dir", ".turing/runs", "directory of the file run store")
	flags.String("redis-addr", "localhost:6379", "address of the redis run store")
	flags.String("library", "", "directory of machine documents")

	bind(v, "log_level", "log-level")
	bind(v, "log_file", "log-file")
	bind(v, "max_steps", "max-steps")
	bind(v, "store.backend", "store")
	bind(v, "store.dir", "store-dir")
	bind(v, "store.redis_addr", "redis-addr")
	bind(v, "library.dir", "library")
}

func bind(v *viper.Viper, key, flag string) {
	if err := v.BindPFlag(key, rootCmd.PersistentFlags().Lookup(flag)); err != nil {
		panic(fmt.Sprintf("bind flag %s: %v", flag, err))
	}
}

func setup() error {
	var err error
	cfg, err = config.Load(v, cfgFile)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitConfiguration, Err: err}
	}

	level, err := logging.ParseLevel(cfg.LogLevel)
	if err != nil {
		return &cli.ExitError{Code: cli.ExitConfiguration, Err: err}
	}
	logger, closer, err := logging.NewWithFile(level, cfg.LogFile)
	if err != nil {
		return err
	}
	logCloser = closer

	app, err = cli.NewApp(cfg, logger)
	return err
}

func teardown() error {
	var err error
	if app != nil {
		err = app.Close()
	}
	if logCloser != nil {
		if cerr := logCloser.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// Execute runs the root command and exits with the code mapped from its error.
func Execute() {
	err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(strings.TrimSpace(turing.Version)),
		fang.WithNotifySignal(os.Interrupt),
	)
	if err != nil {
		_ = teardown()
		os.Exit(cli.ExitCode(err))
	}
}
