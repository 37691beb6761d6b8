package status

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/aiteam/saas-devgen/codegen-service/internal/models"
)

// Step describes one pipeline step with its UI description and time estimate
// used for the estimated-completion calculation.
type Step struct {
	Name        string
	Description string
	EstSeconds  int
}

// GenerationSteps is the ordered step list of the codegen pipeline.
var GenerationSteps = []Step{
	{Name: "initialization", Description: "Setting up project", EstSeconds: 5},
	{Name: "product_manager", Description: "Analyzing requirements and creating PRD", EstSeconds: 30},
	{Name: "architect", Description: "Designing system architecture", EstSeconds: 45},
	{Name: "engineer", Description: "Generating complete code", EstSeconds: 120},
	{Name: "qa", Description: "Creating test strategy", EstSeconds: 20},
	{Name: "project_creation", Description: "Creating project structure", EstSeconds: 10},
	{Name: "finalization", Description: "Finalizing and packaging", EstSeconds: 5},
}

// Generation statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Store is the keyed status store polled by clients. Implementations must be
// safe for concurrent use.
type Store interface {
	Get(id string) (*models.GenerationStatus, bool)
	Put(id string, st *models.GenerationStatus)
	Update(id string, fn func(*models.GenerationStatus)) bool
}

// MemoryStore is the default in-memory Store: a map behind a mutex. Process
// restart loses all records.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]*models.GenerationStatus
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]*models.GenerationStatus)}
}

// Get returns a copy of the status record for id.
func (s *MemoryStore) Get(id string) (*models.GenerationStatus, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.records[id]
	if !ok {
		return nil, false
	}
	return st.Clone(), true
}

// Put stores a status record, replacing any existing one.
func (s *MemoryStore) Put(id string, st *models.GenerationStatus) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.records[id] = st.Clone()
}

// Update applies fn to the record under the store lock. Returns false when
// the id is unknown. Updates against a terminal record are dropped so that
// completed/failed generations are never mutated afterwards.
func (s *MemoryStore) Update(id string, fn func(*models.GenerationStatus)) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	st, ok := s.records[id]
	if !ok {
		return false
	}
	if IsTerminal(st.Status) {
		return true
	}
	prev := st.Progress
	fn(st)
	// progress is monotonic across polls
	if st.Progress < prev {
		st.Progress = prev
	}
	return true
}

// IsTerminal reports whether a status admits no further updates.
func IsTerminal(status string) bool {
	return status == StatusCompleted || status == StatusFailed
}

// ValidateTransition checks a status change against the allowed state
// machine. Terminal states have no successors.
func ValidateTransition(current, next string) error {
	validTransitions := map[string][]string{
		StatusPending:    {StatusInProgress, StatusFailed},
		StatusInProgress: {StatusInProgress, StatusCompleted, StatusFailed},
		StatusCompleted:  {},
		StatusFailed:     {},
	}

	allowedNext, exists := validTransitions[current]
	if !exists {
		return fmt.Errorf("invalid current status: %s", current)
	}
	for _, allowed := range allowedNext {
		if allowed == next {
			return nil
		}
	}
	return fmt.Errorf("invalid status transition from %s to %s", current, next)
}

// TerminalArchiver persists terminal status records outside the volatile
// store, so history survives a restart.
type TerminalArchiver interface {
	Record(ctx context.Context, st *models.GenerationStatus) error
}

// Tracker wraps a Store with the step bookkeeping the pipeline driver needs:
// step updates, completion marking, and estimated-completion calculation.
type Tracker struct {
	store   Store
	steps   []Step
	archive TerminalArchiver
	now     func() time.Time
}

// NewTracker creates a Tracker over store using the standard pipeline steps.
func NewTracker(store Store) *Tracker {
	return &Tracker{store: store, steps: GenerationSteps, now: time.Now}
}

// Store exposes the underlying store for read-side handlers.
func (t *Tracker) Store() Store { return t.store }

// SetArchive registers an archive sink. Every generation reaching a terminal
// state through Complete or Fail is recorded to it, best effort.
func (t *Tracker) SetArchive(a TerminalArchiver) { t.archive = a }

// Begin creates the initial status record for a generation.
func (t *Tracker) Begin(id, step, details string, progress int) {
	ts := t.now().Format(time.RFC3339)
	st := &models.GenerationStatus{
		GenerationID:   id,
		StartedAt:      ts,
		UpdatedAt:      ts,
		CurrentStep:    step,
		Status:         StatusInProgress,
		Progress:       progress,
		StepsCompleted: []models.CompletedStep{},
		Details:        details,
	}
	st.EstimatedCompletion = t.estimateCompletion(st)
	t.store.Put(id, st)
}

// UpdateStep records progress into a new step.
func (t *Tracker) UpdateStep(id, step, status, details string, progress int) {
	ts := t.now().Format(time.RFC3339)
	t.store.Update(id, func(st *models.GenerationStatus) {
		if err := ValidateTransition(st.Status, status); err != nil {
			return
		}
		st.CurrentStep = step
		st.Status = status
		st.Progress = progress
		st.Details = details
		st.UpdatedAt = ts
		st.EstimatedCompletion = t.estimateCompletion(st)
	})
}

// CompleteStep appends stepName to steps_completed and recomputes progress
// from the completed-step ratio.
func (t *Tracker) CompleteStep(id, stepName string) {
	ts := t.now().Format(time.RFC3339)
	t.store.Update(id, func(st *models.GenerationStatus) {
		step, ok := t.findStep(stepName)
		if !ok {
			return
		}
		for _, done := range st.StepsCompleted {
			if done.Name == stepName {
				return
			}
		}
		st.StepsCompleted = append(st.StepsCompleted, models.CompletedStep{
			Name:        step.Name,
			Description: step.Description,
			CompletedAt: ts,
		})
		progress := len(st.StepsCompleted) * 100 / len(t.steps)
		if progress > st.Progress {
			st.Progress = progress
		}
		st.UpdatedAt = ts
		st.EstimatedCompletion = t.estimateCompletion(st)
	})
}

// Complete marks a generation finished with full progress.
func (t *Tracker) Complete(id, details string) {
	ts := t.now().Format(time.RFC3339)
	t.store.Update(id, func(st *models.GenerationStatus) {
		st.CurrentStep = "finalization"
		st.Status = StatusCompleted
		st.Progress = 100
		st.Details = details
		st.UpdatedAt = ts
		st.EstimatedCompletion = ""
	})
	t.archiveTerminal(id)
}

// Fail marks a generation failed. Reachable from any non-terminal step.
func (t *Tracker) Fail(id, details string) {
	ts := t.now().Format(time.RFC3339)
	t.store.Update(id, func(st *models.GenerationStatus) {
		st.CurrentStep = "error"
		st.Status = StatusFailed
		st.Details = details
		st.UpdatedAt = ts
		st.EstimatedCompletion = ""
	})
	t.archiveTerminal(id)
}

// archiveTerminal records the terminal status to the archive sink, if one is
// configured. Failures are logged, never propagated.
func (t *Tracker) archiveTerminal(id string) {
	if t.archive == nil {
		return
	}
	st, ok := t.store.Get(id)
	if !ok || !IsTerminal(st.Status) {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := t.archive.Record(ctx, st); err != nil {
		log.Printf(`{"level":"warn","message":"Status archive failed","generation_id":"%s","error":"%v"}`, id, err)
	}
}

func (t *Tracker) findStep(name string) (Step, bool) {
	for _, s := range t.steps {
		if s.Name == name {
			return s, true
		}
	}
	return Step{}, false
}

// estimateCompletion sums the time estimates of steps not yet completed.
func (t *Tracker) estimateCompletion(st *models.GenerationStatus) string {
	done := make(map[string]bool, len(st.StepsCompleted))
	for _, s := range st.StepsCompleted {
		done[s.Name] = true
	}
	remaining := 0
	for _, s := range t.steps {
		if !done[s.Name] {
			remaining += s.EstSeconds
		}
	}
	if remaining == 0 {
		return ""
	}
	return t.now().Add(time.Duration(remaining) * time.Second).Format(time.RFC3339)
}
