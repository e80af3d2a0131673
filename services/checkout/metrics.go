package main

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// checkoutMetrics counts saga outcomes and measures end-to-end duration.
type checkoutMetrics struct {
	checkouts metric.Int64Counter
	duration  metric.Float64Histogram
}

func newCheckoutMetrics(meter metric.Meter) (*checkoutMetrics, error) {
	checkouts, err := meter.Int64Counter("checkout.sagas",
		metric.WithDescription("Checkout sagas by outcome"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram("checkout.duration",
		metric.WithDescription("Checkout saga duration"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	return &checkoutMetrics{checkouts: checkouts, duration: duration}, nil
}

func (m *checkoutMetrics) record(ctx context.Context, outcome string, elapsed time.Duration) {
	if m == nil {
		return
	}
	attrs := metric.WithAttributes(attribute.String("outcome", outcome))
	m.checkouts.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
