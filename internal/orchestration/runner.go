package orchestration

import (
	"context"
	"fmt"
	"log"
	"sync"

	"github.com/aiteam/saas-devgen/codegen-service/internal/models"
)

// Runner schedules pipeline executions as background goroutines and tracks
// their cancel functions so async generations can be aborted.
type Runner struct {
	pipeline *Pipeline

	mu      sync.Mutex
	cancels map[string]context.CancelFunc
}

// NewRunner creates a Runner over pipeline.
func NewRunner(pipeline *Pipeline) *Runner {
	return &Runner{
		pipeline: pipeline,
		cancels:  make(map[string]context.CancelFunc),
	}
}

// RunSync executes the pipeline inline, still registering a cancel handle so
// even synchronous runs can be aborted.
func (r *Runner) RunSync(ctx context.Context, generationID string, req models.GenerationRequest) (*models.GenerationResponse, error) {
	runCtx, cancel := context.WithCancel(ctx)
	r.register(generationID, cancel)
	defer r.unregister(generationID)

	return r.pipeline.Run(runCtx, generationID, req)
}

// RunAsync launches the pipeline in a background goroutine. A panic in the
// pipeline marks the generation failed instead of leaving it in_progress
// forever.
func (r *Runner) RunAsync(generationID string, req models.GenerationRequest) {
	runCtx, cancel := context.WithCancel(context.Background())
	r.register(generationID, cancel)

	go func() {
		defer r.unregister(generationID)
		defer func() {
			if rec := recover(); rec != nil {
				log.Printf("Generation %s panicked: %v", generationID, rec)
				r.pipeline.tracker.Fail(generationID, fmt.Sprintf("Generation failed: internal error: %v", rec))
			}
		}()

		if _, err := r.pipeline.Run(runCtx, generationID, req); err != nil {
			log.Printf("Generation %s failed: %v", generationID, err)
		}
	}()
}

// Cancel aborts a running generation. Returns false when the id has no
// active run.
func (r *Runner) Cancel(generationID string) bool {
	r.mu.Lock()
	cancel, ok := r.cancels[generationID]
	r.mu.Unlock()
	if !ok {
		return false
	}
	cancel()
	return true
}

func (r *Runner) register(generationID string, cancel context.CancelFunc) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cancels[generationID] = cancel
}

func (r *Runner) unregister(generationID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if cancel, ok := r.cancels[generationID]; ok {
		cancel()
		delete(r.cancels, generationID)
	}
}
