// Command refstore keeps an in-memory symbol store in sync with a DynamoDB
// table and local workspaces.
//
// "serve" hydrates the store from the table and watches workspaces for
// removed files; "lambda" runs as the table's DynamoDB Streams consumer.
// Configuration is read from a YAML file, see Config.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/lmittmann/tint"
	"github.com/mattn/go-colorable"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil && !errors.Is(err, context.Canceled) {
		fmt.Fprintf(os.Stderr, "refstore: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	configPath string
	logLevel   string
}

func newRootCmd() *cobra.Command {
	opts := &options{}
	root := &cobra.Command{
		Use:           "refstore",
		Short:         "In-memory multi-index symbol store",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "refstore.yaml", "Path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "", "Log level (debug, info, warn, error); overrides the config file")

	root.AddCommand(
		newServeCmd(opts),
		newLambdaCmd(opts),
		newVersionCmd(),
	)
	return root
}

// setup loads the config file and installs the process logger.
func setup(opts *options) (Config, *slog.Logger, error) {
	cfg, err := LoadConfig(opts.configPath)
	if err != nil {
		return Config{}, nil, err
	}
	if opts.logLevel != "" {
		cfg.LogLevel = opts.logLevel
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return Config{}, nil, fmt.Errorf("invalid log level %q: %w", cfg.LogLevel, err)
	}
	logger := newLogger(level)
	slog.SetDefault(logger)
	return cfg, logger, nil
}

func newLogger(level slog.Level) *slog.Logger {
	// Lambda captures stderr into CloudWatch; colour only on terminals.
	return slog.New(tint.NewHandler(colorable.NewColorable(os.Stderr), &tint.Options{
		Level:      level,
		TimeFormat: "15:04:05.000",
		NoColor:    !isatty.IsTerminal(os.Stderr.Fd()),
	}))
}
