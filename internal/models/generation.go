package models

import "time"

// GenerationRequest is the caller-supplied description of what to generate.
// Immutable once accepted.
type GenerationRequest struct {
	Tasks                  []string `json:"tasks" binding:"required,min=1"`
	Language               string   `json:"language"`
	Framework              string   `json:"framework"`
	AdditionalRequirements string   `json:"additional_requirements"`
}

// GenerationResponse is returned by POST /generate once the pipeline
// finishes (or falls back).
type GenerationResponse struct {
	Status            string            `json:"status"`
	GenerationID      string            `json:"generation_id"`
	Language          string            `json:"language"`
	Framework         string            `json:"framework"`
	ProjectPath       string            `json:"project_path"`
	GeneratedFiles    []string          `json:"generated_files"`
	RepoURL           string            `json:"repo_url"`
	CommitID          string            `json:"commit_id"`
	SetupInstructions string            `json:"setup_instructions"`
	StatusInfo        *GenerationStatus `json:"status_info,omitempty"`
	Message           string            `json:"message"`
}

// AsyncGenerationResponse is returned when the pipeline is scheduled as a
// background task instead of running synchronously.
type AsyncGenerationResponse struct {
	GenerationID string `json:"generation_id"`
	Status       string `json:"status"`
	Message      string `json:"message"`
}

// CompletedStep records one finished pipeline step.
type CompletedStep struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	CompletedAt string `json:"completed_at"`
}

// GenerationStatus is the pollable progress record for one generation.
// Mutated in place by the pipeline driver, read by status polls.
type GenerationStatus struct {
	GenerationID        string          `json:"generation_id"`
	StartedAt           string          `json:"started_at"`
	UpdatedAt           string          `json:"updated_at,omitempty"`
	CurrentStep         string          `json:"current_step"`
	Status              string          `json:"status"`
	Progress            int             `json:"progress"`
	StepsCompleted      []CompletedStep `json:"steps_completed"`
	EstimatedCompletion string          `json:"estimated_completion,omitempty"`
	Details             string          `json:"details"`
}

// Clone returns a deep copy so store readers never share the steps slice
// with the writer.
func (s *GenerationStatus) Clone() *GenerationStatus {
	if s == nil {
		return nil
	}
	out := *s
	out.StepsCompleted = make([]CompletedStep, len(s.StepsCompleted))
	copy(out.StepsCompleted, s.StepsCompleted)
	return &out
}

// ProjectMetadata is the manifest written alongside every generated project
// as project_metadata.json.
type ProjectMetadata struct {
	ProjectUUID       string   `json:"project_uuid"`
	ProjectName       string   `json:"project_name"`
	GeneratedAt       string   `json:"generated_at"`
	Language          string   `json:"language"`
	Framework         string   `json:"framework"`
	GenerationMethod  string   `json:"generation_method"`
	SetupInstructions string   `json:"setup_instructions"`
	Files             []string `json:"files"`
	Tasks             []string `json:"tasks"`
}

// HealthResponse is the uniform health payload exposed by every service.
type HealthResponse struct {
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Timestamp time.Time `json:"timestamp"`
}
