package telemetry

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutmetric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
)

// Metric exporters accepted by Setup.
const (
	ExporterNone       = "none"
	ExporterStdout     = "stdout"
	ExporterPrometheus = "prometheus"
)

// ErrUnknownExporter is returned by Setup for an unsupported exporter name.
var ErrUnknownExporter = errors.New("refstore: unknown metric exporter")

// Config selects how metrics leave the process.
type Config struct {
	// Exporter is "none", "stdout", or "prometheus".
	// Default: "none"
	Exporter string

	// Interval is the stdout export period.
	// Default: 1m
	Interval time.Duration

	// ListenAddr serves /metrics for the prometheus exporter.
	// Default: "localhost:9464"
	ListenAddr string

	// ServiceName is attached to every measurement as service.name.
	// Default: "refstore"
	ServiceName string
}

// DefaultConfig returns a configuration with metrics disabled.
func DefaultConfig() Config {
	return Config{
		Exporter:    ExporterNone,
		Interval:    time.Minute,
		ListenAddr:  "localhost:9464",
		ServiceName: "refstore",
	}
}

// validate fills unset fields from DefaultConfig.
func (c *Config) validate() {
	d := DefaultConfig()
	if c.Exporter == "" {
		c.Exporter = d.Exporter
	}
	if c.Interval <= 0 {
		c.Interval = d.Interval
	}
	if c.ListenAddr == "" {
		c.ListenAddr = d.ListenAddr
	}
	if c.ServiceName == "" {
		c.ServiceName = d.ServiceName
	}
}

// Setup installs a meter provider for the configured exporter, both globally
// and for this package's instruments. The returned shutdown flushes pending
// measurements and stops any metrics listener; it must be called on exit.
func Setup(ctx context.Context, cfg Config, logger *slog.Logger) (func(context.Context) error, error) {
	cfg.validate()
	if logger == nil {
		logger = slog.Default()
	}
	noop := func(context.Context) error { return nil }

	res := resource.NewSchemaless(attribute.String("service.name", cfg.ServiceName))

	var (
		mp      *sdkmetric.MeterProvider
		closers []func(context.Context) error
	)
	switch cfg.Exporter {
	case ExporterNone:
		return noop, nil

	case ExporterStdout:
		exporter, err := stdoutmetric.New()
		if err != nil {
			return nil, fmt.Errorf("create stdout metric exporter: %w", err)
		}
		mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(cfg.Interval))),
		)

	case ExporterPrometheus:
		registry := prometheus.NewRegistry()
		exporter, err := promexporter.New(promexporter.WithRegisterer(registry))
		if err != nil {
			return nil, fmt.Errorf("create prometheus exporter: %w", err)
		}
		mp = sdkmetric.NewMeterProvider(
			sdkmetric.WithResource(res),
			sdkmetric.WithReader(exporter),
		)

		listener, err := net.Listen("tcp", cfg.ListenAddr)
		if err != nil {
			_ = mp.Shutdown(ctx)
			return nil, fmt.Errorf("listen for metrics: %w", err)
		}
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{}))
		srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}
		go func() {
			if err := srv.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("metrics server stopped", "error", err)
			}
		}()
		logger.Info("serving metrics", "addr", listener.Addr().String())
		closers = append(closers, srv.Shutdown)

	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownExporter, cfg.Exporter)
	}

	otel.SetMeterProvider(mp)
	if err := Use(mp); err != nil {
		_ = mp.Shutdown(ctx)
		return nil, fmt.Errorf("create instruments: %w", err)
	}
	closers = append(closers, mp.Shutdown)

	return func(ctx context.Context) error {
		var errs []error
		for _, fn := range closers {
			if err := fn(ctx); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}, nil
}
