package cache

import (
	"context"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

var (
	metricsOnce     sync.Once
	storeOperations metric.Int64Counter
	storeDuration   metric.Float64Histogram
)

func initMetrics() {
	metricsOnce.Do(func() {
		meter := otel.Meter("github.com/dynamic360/partnercenter-bridge/internal/cache")

		var err error
		storeOperations, err = meter.Int64Counter(
			"credential_store.operations",
			metric.WithDescription("Total credential store operations"),
		)
		if err != nil {
			otel.Handle(err)
		}

		storeDuration, err = meter.Float64Histogram(
			"credential_store.operation.duration",
			metric.WithDescription("Credential store operation duration"),
			metric.WithUnit("s"),
		)
		if err != nil {
			otel.Handle(err)
		}
	})
}

// Instrumented records metrics and span attributes for every operation on the
// wrapped Store.
type Instrumented[T any] struct {
	wrapped   Store[T]
	storeType string
}

func NewInstrumented[T any](store Store[T], storeType string) *Instrumented[T] {
	initMetrics()
	return &Instrumented[T]{
		wrapped:   store,
		storeType: storeType,
	}
}

func (i *Instrumented[T]) Get(ctx context.Context, key string) (T, bool, error) {
	start := time.Now()
	value, found, err := i.wrapped.Get(ctx, key)

	status := "miss"
	if err != nil {
		status = "error"
	} else if found {
		status = "hit"
	}
	i.record(ctx, "get", status, time.Since(start))

	return value, found, err
}

func (i *Instrumented[T]) Set(ctx context.Context, key string, value T) error {
	start := time.Now()
	err := i.wrapped.Set(ctx, key, value)
	i.record(ctx, "set", statusOf(err), time.Since(start))

	return err
}

func (i *Instrumented[T]) Invalidate(ctx context.Context, key string) error {
	start := time.Now()
	err := i.wrapped.Invalidate(ctx, key)
	i.record(ctx, "invalidate", statusOf(err), time.Since(start))

	return err
}

func (i *Instrumented[T]) Close() error {
	return i.wrapped.Close()
}

func (i *Instrumented[T]) record(ctx context.Context, operation, status string, duration time.Duration) {
	typeAttr := attribute.String("credential_store.type", i.storeType)
	opAttr := attribute.String("credential_store.operation", operation)

	if storeOperations != nil {
		storeOperations.Add(ctx, 1, metric.WithAttributes(
			typeAttr,
			opAttr,
			attribute.String("credential_store.status", status),
		))
	}

	if storeDuration != nil {
		storeDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(typeAttr, opAttr))
	}

	trace.SpanFromContext(ctx).SetAttributes(
		typeAttr,
		attribute.String("credential_store."+operation+".status", status),
		attribute.Float64("credential_store."+operation+".duration", duration.Seconds()),
	)
}

func statusOf(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
