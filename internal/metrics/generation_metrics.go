package metrics

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

var meter = otel.Meter("generation-metrics")

// GenerationMetrics provides metrics collection for code generation runs
type GenerationMetrics struct {
	generationsStartedCounter   metric.Int64Counter
	generationsCompletedCounter metric.Int64Counter
	generationsFailedCounter    metric.Int64Counter
	fallbacksCounter            metric.Int64Counter
	generationDurationHistogram metric.Float64Histogram
	generationsActiveGauge      metric.Int64UpDownCounter
}

// NewGenerationMetrics creates a new generation metrics collector
func NewGenerationMetrics() (*GenerationMetrics, error) {
	generationsStartedCounter, err := meter.Int64Counter(
		"codegen.generations.started",
		metric.WithDescription("Total number of generations started"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	generationsCompletedCounter, err := meter.Int64Counter(
		"codegen.generations.completed",
		metric.WithDescription("Total number of generations completed successfully"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	generationsFailedCounter, err := meter.Int64Counter(
		"codegen.generations.failed",
		metric.WithDescription("Total number of generations that failed"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	fallbacksCounter, err := meter.Int64Counter(
		"codegen.generations.fallback",
		metric.WithDescription("Total number of generations that used template fallback"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	generationDurationHistogram, err := meter.Float64Histogram(
		"codegen.generation.duration",
		metric.WithDescription("Duration of generation runs in seconds"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, err
	}

	generationsActiveGauge, err := meter.Int64UpDownCounter(
		"codegen.generations.active",
		metric.WithDescription("Number of currently running generations"),
		metric.WithUnit("{generation}"),
	)
	if err != nil {
		return nil, err
	}

	return &GenerationMetrics{
		generationsStartedCounter:   generationsStartedCounter,
		generationsCompletedCounter: generationsCompletedCounter,
		generationsFailedCounter:    generationsFailedCounter,
		fallbacksCounter:            fallbacksCounter,
		generationDurationHistogram: generationDurationHistogram,
		generationsActiveGauge:      generationsActiveGauge,
	}, nil
}

// RecordStarted records a new generation run
func (gm *GenerationMetrics) RecordStarted(ctx context.Context, generationID, language, framework string) {
	gm.generationsStartedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("language", language),
			attribute.String("framework", framework),
		),
	)
	gm.generationsActiveGauge.Add(ctx, 1)
}

// RecordCompleted records a successful generation run
func (gm *GenerationMetrics) RecordCompleted(ctx context.Context, generationID, method string, duration time.Duration) {
	gm.generationsCompletedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("status", "completed"),
		),
	)
	gm.generationDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("method", method),
			attribute.String("status", "completed"),
		),
	)
	gm.generationsActiveGauge.Add(ctx, -1)
}

// RecordFailed records a failed generation run
func (gm *GenerationMetrics) RecordFailed(ctx context.Context, generationID, errorType string, duration time.Duration) {
	gm.generationsFailedCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("error.type", errorType),
			attribute.String("status", "failed"),
		),
	)
	gm.generationDurationHistogram.Record(ctx, duration.Seconds(),
		metric.WithAttributes(
			attribute.String("status", "failed"),
		),
	)
	gm.generationsActiveGauge.Add(ctx, -1)
}

// RecordFallback records that a generation degraded to template output
func (gm *GenerationMetrics) RecordFallback(ctx context.Context, generationID, reason string) {
	gm.fallbacksCounter.Add(ctx, 1,
		metric.WithAttributes(
			attribute.String("reason", reason),
		),
	)
}
