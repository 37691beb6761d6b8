package metrics

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerationMetrics_Creation(t *testing.T) {
	t.Run("successfully create generation metrics", func(t *testing.T) {
		metrics, err := NewGenerationMetrics()
		require.NoError(t, err)
		assert.NotNil(t, metrics)
		assert.NotNil(t, metrics.generationsStartedCounter)
		assert.NotNil(t, metrics.generationsCompletedCounter)
		assert.NotNil(t, metrics.generationsFailedCounter)
		assert.NotNil(t, metrics.fallbacksCounter)
		assert.NotNil(t, metrics.generationDurationHistogram)
		assert.NotNil(t, metrics.generationsActiveGauge)
	})
}

func TestGenerationMetrics_RecordStarted(t *testing.T) {
	metrics, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("record generation start", func(t *testing.T) {
		ctx := context.Background()

		// Should not panic
		assert.NotPanics(t, func() {
			metrics.RecordStarted(ctx, "gen-123", "python", "fastapi")
		})
	})

	t.Run("record multiple starts", func(t *testing.T) {
		ctx := context.Background()
		for i := 0; i < 5; i++ {
			metrics.RecordStarted(ctx, fmt.Sprintf("gen-%d", i), "python", "fastapi")
		}
	})
}

func TestGenerationMetrics_RecordCompleted(t *testing.T) {
	metrics, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("record completion with duration", func(t *testing.T) {
		ctx := context.Background()

		assert.NotPanics(t, func() {
			metrics.RecordCompleted(ctx, "gen-123", "ai_agents", 5*time.Second)
		})
	})

	t.Run("record fallback completion", func(t *testing.T) {
		ctx := context.Background()
		metrics.RecordFallback(ctx, "gen-456", "no_credential")
		metrics.RecordCompleted(ctx, "gen-456", "template_fallback", 200*time.Millisecond)
	})
}

func TestGenerationMetrics_RecordFailed(t *testing.T) {
	metrics, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("record failure with error type", func(t *testing.T) {
		ctx := context.Background()

		assert.NotPanics(t, func() {
			metrics.RecordFailed(ctx, "gen-123", "filesystem", time.Second)
		})
	})
}

func TestGenerationMetrics_ActiveGauge(t *testing.T) {
	metrics, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("active gauge increments and decrements", func(t *testing.T) {
		ctx := context.Background()

		metrics.RecordStarted(ctx, "gen-1", "python", "fastapi")
		metrics.RecordCompleted(ctx, "gen-1", "ai_agents", 2*time.Second)

		metrics.RecordStarted(ctx, "gen-2", "python", "fastapi")
		metrics.RecordFailed(ctx, "gen-2", "cancelled", time.Second)
	})
}

func TestGenerationMetrics_ConcurrentRecording(t *testing.T) {
	metrics, err := NewGenerationMetrics()
	require.NoError(t, err)

	t.Run("handle concurrent metric recording", func(t *testing.T) {
		ctx := context.Background()
		done := make(chan bool)

		for i := 0; i < 10; i++ {
			go func(id int) {
				genID := fmt.Sprintf("concurrent-gen-%d", id)
				metrics.RecordStarted(ctx, genID, "python", "fastapi")

				duration := time.Duration(id) * 100 * time.Millisecond
				if id%2 == 0 {
					metrics.RecordCompleted(ctx, genID, "ai_agents", duration)
				} else {
					metrics.RecordFailed(ctx, genID, "provider", duration)
				}

				done <- true
			}(i)
		}

		for i := 0; i < 10; i++ {
			<-done
		}
	})
}
