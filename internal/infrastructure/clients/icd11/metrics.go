package icd11

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type remoteMetrics struct {
	requestCount  metric.Int64Counter
	requestErrors metric.Int64Counter
}

var remoteMetricsInit = false
var remote remoteMetrics

func ensureRemoteMetrics() {
	if remoteMetricsInit {
		return
	}
	meter := otel.Meter("github.com/kalusugan-health/condition-screening/icd11")

	requestCount, err := meter.Int64Counter(
		"icd11.request.count",
		metric.WithDescription("Number of ICD-11 API requests"),
	)
	if err != nil {
		return
	}
	requestErrors, err := meter.Int64Counter(
		"icd11.request.errors",
		metric.WithDescription("Number of failed ICD-11 API requests"),
	)
	if err != nil {
		return
	}

	remote = remoteMetrics{
		requestCount:  requestCount,
		requestErrors: requestErrors,
	}
	remoteMetricsInit = true
}

func recordRemoteMetric(ctx context.Context, operation string, err error) {
	ensureRemoteMetrics()
	if !remoteMetricsInit {
		return
	}

	attrs := []attribute.KeyValue{
		attribute.String("icd11.operation", operation),
	}
	remote.requestCount.Add(ctx, 1, metric.WithAttributes(attrs...))
	if err != nil {
		remote.requestErrors.Add(ctx, 1, metric.WithAttributes(attrs...))
	}
}
