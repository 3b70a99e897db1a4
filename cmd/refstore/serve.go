package main

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aws/aws-lambda-go/lambda"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/spf13/cobra"

	"github.com/jacentio/refstore/hydrate"
	"github.com/jacentio/refstore/internal/telemetry"
	"github.com/jacentio/refstore/schema"
	"github.com/jacentio/refstore/store"
	"github.com/jacentio/refstore/stream"
	"github.com/jacentio/refstore/symbols"
	"github.com/jacentio/refstore/watch"
)

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Hydrate the store and keep it in sync with local workspaces",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			stop, err := startMetrics(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			defer stop()
			return serve(cmd.Context(), cfg, logger)
		},
	}
}

func newLambdaCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "lambda",
		Short: "Run as a DynamoDB Streams consumer on AWS Lambda",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := setup(opts)
			if err != nil {
				return err
			}
			stop, err := startMetrics(cmd.Context(), cfg, logger)
			if err != nil {
				return err
			}
			locked, s, err := build(cmd.Context(), cfg, logger)
			if err != nil {
				stop()
				return err
			}
			handler := stream.NewHandler(locked, s, logger)
			// The runtime never returns from Start; SIGTERM is the only
			// chance to flush metrics.
			lambda.StartWithOptions(handler.Lambda(),
				lambda.WithContext(cmd.Context()),
				lambda.WithEnableSIGTERM(stop),
			)
			return nil
		},
	}
}

// startMetrics installs the configured metric exporter. The returned stop
// flushes and shuts it down.
func startMetrics(ctx context.Context, cfg Config, logger *slog.Logger) (func(), error) {
	shutdown, err := telemetry.Setup(ctx, cfg.telemetryConfig(), logger)
	if err != nil {
		return nil, fmt.Errorf("metrics: %w", err)
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		if err := shutdown(ctx); err != nil {
			logger.Warn("failed to flush metrics", "error", err)
		}
	}, nil
}

// build creates the store, registers roots, and hydrates it when a table is
// configured.
func build(ctx context.Context, cfg Config, logger *slog.Logger) (*store.Locked[symbols.Kind, store.Entry], *schema.Schema[symbols.Kind], error) {
	db := symbols.NewDatabase()
	for _, root := range cfg.AllRoots() {
		db.NewContainer(root)
	}
	locked := store.NewLocked(db)
	s := symbols.NewSchema(cfg.schemaConfig())

	if cfg.Table.Name == "" {
		logger.Info("no table configured, starting empty", "roots", len(db.Roots()))
		return locked, s, nil
	}

	var loadOpts []func(*config.LoadOptions) error
	if cfg.Table.Region != "" {
		loadOpts = append(loadOpts, config.WithRegion(cfg.Table.Region))
	}
	awsCfg, err := config.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, nil, fmt.Errorf("load aws config: %w", err)
	}

	loader := hydrate.NewLoader(dynamodb.NewFromConfig(awsCfg), locked, s, cfg.hydrateConfig(), logger)
	if _, err := loader.Load(ctx); err != nil {
		return nil, nil, fmt.Errorf("hydrate: %w", err)
	}
	return locked, s, nil
}

func serve(ctx context.Context, cfg Config, logger *slog.Logger) error {
	locked, _, err := build(ctx, cfg, logger)
	if err != nil {
		return err
	}

	for _, wc := range cfg.watchConfigs() {
		inv := watch.NewInvalidator(locked, wc, logger)
		w, err := watch.New(wc, inv.Handle, logger)
		if err != nil {
			return fmt.Errorf("watch %s: %w", wc.Root, err)
		}
		if err := w.Start(ctx); err != nil {
			_ = w.Stop()
			return fmt.Errorf("watch %s: %w", wc.Root, err)
		}
		defer func() {
			if err := w.Stop(); err != nil {
				logger.Warn("failed to stop watcher", "root", wc.Root, "error", err)
			}
		}()
	}

	logger.Info("serving", "entries", locked.Len(), "workspaces", len(cfg.Workspaces))

	var tick <-chan time.Time
	if cfg.ReportInterval > 0 {
		ticker := time.NewTicker(cfg.ReportInterval)
		defer ticker.Stop()
		tick = ticker.C
	}
	for {
		select {
		case <-ctx.Done():
			logger.Info("shutting down", "entries", locked.Len())
			return nil
		case <-tick:
			logger.Info("store size", "entries", locked.Len())
		}
	}
}
