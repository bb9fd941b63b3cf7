package metrics

import (
	"context"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// StoreHealthMetrics tracks the outcome of store pings made by the
// readiness endpoint and the gRPC health checker.
type StoreHealthMetrics struct {
	up           metric.Int64ObservableGauge
	pingDuration metric.Float64Histogram
	available    atomic.Bool
	checked      atomic.Bool
}

func NewStoreHealthMetrics(meter metric.Meter) (*StoreHealthMetrics, error) {
	hm := &StoreHealthMetrics{}

	var err error

	// 1 = reachable, 0 = unreachable. Not reported before the first ping.
	hm.up, err = meter.Int64ObservableGauge(
		"store.up",
		metric.WithDescription("Store availability from the last ping (1=up, 0=down)"),
		metric.WithUnit("{status}"),
	)
	if err != nil {
		return nil, err
	}

	hm.pingDuration, err = meter.Float64Histogram(
		"store.ping.duration",
		metric.WithDescription("Store ping duration"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(
			0.001, 0.005, 0.01, 0.025, 0.05, 0.1,
			0.25, 0.5, 1.0, 2.5,
		),
	)
	if err != nil {
		return nil, err
	}

	_, err = meter.RegisterCallback(
		func(_ context.Context, observer metric.Observer) error {
			if !hm.checked.Load() {
				return nil
			}
			value := int64(0)
			if hm.available.Load() {
				value = 1
			}
			observer.ObserveInt64(hm.up, value)
			return nil
		},
		hm.up,
	)
	if err != nil {
		return nil, err
	}

	return hm, nil
}

func (hm *StoreHealthMetrics) RecordPing(ctx context.Context, duration time.Duration, err error) {
	if hm == nil || hm.pingDuration == nil {
		return
	}

	outcome := "success"
	if err != nil {
		outcome = "failure"
	}

	hm.pingDuration.Record(ctx, duration.Seconds(), metric.WithAttributes(attribute.String("outcome", outcome)))
	hm.available.Store(err == nil)
	hm.checked.Store(true)
}
