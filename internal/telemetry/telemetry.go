// Package telemetry holds the OpenTelemetry instruments shared by the
// integrations that feed and invalidate a store.
//
// Instruments bind to the global meter provider on first use unless Use or
// Setup installs another one.
package telemetry

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const meterName = "github.com/jacentio/refstore"

// Source labels which integration produced a measurement.
type Source string

const (
	SourceStream  Source = "stream"
	SourceHydrate Source = "hydrate"
	SourceWatch   Source = "watch"
)

type instruments struct {
	entriesApplied  metric.Int64Counter
	entriesSkipped  metric.Int64Counter
	invalidations   metric.Int64Counter
	hydrateDuration metric.Float64Histogram
}

var (
	current     atomic.Pointer[instruments]
	defaultOnce sync.Once
)

// Use binds the instruments to mp. Measurements recorded afterwards go to mp.
func Use(mp metric.MeterProvider) error {
	inst, err := newInstruments(mp.Meter(meterName))
	if err != nil {
		return err
	}
	current.Store(inst)
	return nil
}

func newInstruments(meter metric.Meter) (*instruments, error) {
	var (
		inst instruments
		err  error
	)

	inst.entriesApplied, err = meter.Int64Counter(
		"refstore_entries_applied_total",
		metric.WithDescription("Entries added to or removed from the store"),
	)
	if err != nil {
		return nil, err
	}

	inst.entriesSkipped, err = meter.Int64Counter(
		"refstore_entries_skipped_total",
		metric.WithDescription("Entries or changes dropped before reaching the store"),
	)
	if err != nil {
		return nil, err
	}

	inst.invalidations, err = meter.Int64Counter(
		"refstore_invalidations_total",
		metric.WithDescription("Id groups invalidated by reference"),
	)
	if err != nil {
		return nil, err
	}

	inst.hydrateDuration, err = meter.Float64Histogram(
		"refstore_hydrate_duration_seconds",
		metric.WithDescription("Duration of a full table load"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}
	return &inst, nil
}

// get returns the bound instruments, binding the global provider on first use.
func get() *instruments {
	if inst := current.Load(); inst != nil {
		return inst
	}
	defaultOnce.Do(func() {
		if inst, err := newInstruments(otel.Meter(meterName)); err == nil {
			current.CompareAndSwap(nil, inst)
		}
	})
	return current.Load()
}

// RecordApplied counts entries added ("add") or removed ("remove") by source.
func RecordApplied(ctx context.Context, source Source, op string, n int) {
	inst := get()
	if n == 0 || inst == nil {
		return
	}
	inst.entriesApplied.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("source", string(source)),
		attribute.String("op", op),
	))
}

// RecordSkipped counts entries that could not be applied, by reason.
func RecordSkipped(ctx context.Context, source Source, reason string, n int) {
	inst := get()
	if n == 0 || inst == nil {
		return
	}
	inst.entriesSkipped.Add(ctx, int64(n), metric.WithAttributes(
		attribute.String("source", string(source)),
		attribute.String("reason", reason),
	))
}

// RecordInvalidated counts id groups removed by a reference invalidation.
func RecordInvalidated(ctx context.Context, source Source, groups int) {
	inst := get()
	if groups == 0 || inst == nil {
		return
	}
	inst.invalidations.Add(ctx, int64(groups), metric.WithAttributes(
		attribute.String("source", string(source)),
	))
}

// RecordHydrate records the duration of a table load.
func RecordHydrate(ctx context.Context, duration time.Duration, success bool) {
	inst := get()
	if inst == nil {
		return
	}
	inst.hydrateDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(
		attribute.Bool("success", success),
	))
}
