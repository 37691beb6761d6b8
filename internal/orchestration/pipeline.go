package orchestration

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/aiteam/saas-devgen/codegen-service/internal/extract"
	"github.com/aiteam/saas-devgen/codegen-service/internal/metrics"
	"github.com/aiteam/saas-devgen/codegen-service/internal/models"
	"github.com/aiteam/saas-devgen/codegen-service/internal/project"
	"github.com/aiteam/saas-devgen/codegen-service/internal/scaffold"
	"github.com/aiteam/saas-devgen/codegen-service/internal/status"
)

// Generation methods recorded in the project manifest and metrics.
const (
	MethodAIAgents         = "ai_agents"
	MethodTemplateFallback = "template_fallback"
)

// StageResult is the outcome of one pipeline stage. A provider failure is a
// control-flow branch, not an error: Fallback is set and the pipeline
// switches to template generation for the rest of the run.
type StageResult struct {
	Doc      map[string]interface{}
	Fallback bool
	Reason   string
}

// ArtifactUploader pushes project archives to object storage. Optional.
type ArtifactUploader interface {
	UploadArchive(ctx context.Context, generationID, archivePath string) (string, error)
}

// Pipeline drives the multi-agent generation: product manager, architect,
// engineer, and an optional QA pass, each feeding the next. Any provider
// failure degrades the whole run to the deterministic template generator.
type Pipeline struct {
	client       AIClientInterface
	tracker      *status.Tracker
	scaffolder   *scaffold.Generator
	materializer *project.Materializer
	uploader     ArtifactUploader
	metrics      *metrics.GenerationMetrics
	tracer       trace.Tracer

	engineerMaxTokens int
}

// NewPipeline wires the pipeline dependencies. uploader may be nil when
// artifact storage is not configured.
func NewPipeline(client AIClientInterface, tracker *status.Tracker, materializer *project.Materializer, uploader ArtifactUploader, gm *metrics.GenerationMetrics) *Pipeline {
	return &Pipeline{
		client:       client,
		tracker:      tracker,
		scaffolder:   scaffold.NewGenerator(),
		materializer: materializer,
		uploader:     uploader,
		metrics:      gm,
		tracer:       otel.Tracer("codegen-pipeline"),

		engineerMaxTokens: 8000,
	}
}

// SetEngineerMaxTokens overrides the token budget of the engineer stage,
// which needs far more room than the planning stages.
func (p *Pipeline) SetEngineerMaxTokens(n int) {
	if n > 0 {
		p.engineerMaxTokens = n
	}
}

// Run executes the full pipeline for one generation. The returned response
// is what POST /generate serves in synchronous mode. Run records terminal
// status itself; a returned error means the run failed and the status
// record says so.
func (p *Pipeline) Run(ctx context.Context, generationID string, req models.GenerationRequest) (*models.GenerationResponse, error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.run")
	defer span.End()

	language := req.Language
	if language == "" {
		language = "python"
	}
	framework := req.Framework
	if framework == "" {
		framework = "fastapi"
	}
	span.SetAttributes(
		attribute.String("generation_id", generationID),
		attribute.String("language", language),
		attribute.String("framework", framework),
		attribute.Int("task_count", len(req.Tasks)),
	)

	started := time.Now()
	p.tracker.Begin(generationID, "initialization", fmt.Sprintf("Starting %s/%s project generation", language, framework), 5)
	if p.metrics != nil {
		p.metrics.RecordStarted(ctx, generationID, language, framework)
	}
	p.tracker.CompleteStep(generationID, "initialization")

	files, setupInstructions, method, err := p.generate(ctx, generationID, req.Tasks, language, framework, req.AdditionalRequirements)
	if err != nil {
		return nil, p.fail(ctx, generationID, started, "pipeline", err)
	}

	p.tracker.UpdateStep(generationID, "project_creation", status.StatusInProgress, "Creating project structure and files", 90)
	proj, err := p.materializer.Create(files, req.Tasks, language, framework, setupInstructions, method)
	if err != nil {
		return nil, p.fail(ctx, generationID, started, "filesystem", err)
	}
	p.tracker.CompleteStep(generationID, "project_creation")

	repoURL := p.publish(ctx, generationID, proj)

	p.tracker.CompleteStep(generationID, "finalization")
	p.tracker.Complete(generationID, "Code generation completed successfully")
	if p.metrics != nil {
		p.metrics.RecordCompleted(ctx, generationID, method, time.Since(started))
	}

	statusInfo, _ := p.tracker.Store().Get(generationID)
	return &models.GenerationResponse{
		Status:            status.StatusCompleted,
		GenerationID:      generationID,
		Language:          language,
		Framework:         framework,
		ProjectPath:       proj.Path,
		GeneratedFiles:    proj.Files,
		RepoURL:           repoURL,
		SetupInstructions: setupInstructions,
		StatusInfo:        statusInfo,
		Message:           fmt.Sprintf("Generated %d files using %s", len(proj.Files), method),
	}, nil
}

// generate runs the AI stages, or the template generator when the provider
// is unavailable or any stage fails.
func (p *Pipeline) generate(ctx context.Context, generationID string, tasks []string, language, framework, additionalRequirements string) (map[string]string, string, string, error) {
	if !p.client.IsConfigured() {
		return p.fallback(ctx, generationID, tasks, language, framework, additionalRequirements, "no provider credential configured")
	}

	p.tracker.UpdateStep(generationID, "product_manager", status.StatusInProgress, "AI Product Manager analyzing requirements", 20)
	pmSystem, pmUser := productManagerPrompt(tasks, additionalRequirements)
	prd := p.runStage(ctx, "product_manager", pmSystem, pmUser, 0)
	if prd.Fallback {
		return p.fallback(ctx, generationID, tasks, language, framework, additionalRequirements, prd.Reason)
	}
	p.tracker.CompleteStep(generationID, "product_manager")

	if err := ctx.Err(); err != nil {
		return nil, "", "", fmt.Errorf("generation cancelled: %w", err)
	}

	p.tracker.UpdateStep(generationID, "architect", status.StatusInProgress, "AI Architect designing system architecture", 40)
	archSystem, archUser := architectPrompt(prd.Doc, language, framework)
	arch := p.runStage(ctx, "architect", archSystem, archUser, 0)
	if arch.Fallback {
		return p.fallback(ctx, generationID, tasks, language, framework, additionalRequirements, arch.Reason)
	}
	p.tracker.CompleteStep(generationID, "architect")

	if err := ctx.Err(); err != nil {
		return nil, "", "", fmt.Errorf("generation cancelled: %w", err)
	}

	p.tracker.UpdateStep(generationID, "engineer", status.StatusInProgress, "AI Engineer generating complete codebase", 60)
	engSystem, engUser := engineerPrompt(prd.Doc, arch.Doc, language, framework)
	eng := p.runStage(ctx, "engineer", engSystem, engUser, p.engineerMaxTokens)
	if eng.Fallback {
		return p.fallback(ctx, generationID, tasks, language, framework, additionalRequirements, eng.Reason)
	}
	p.tracker.CompleteStep(generationID, "engineer")

	if err := ctx.Err(); err != nil {
		return nil, "", "", fmt.Errorf("generation cancelled: %w", err)
	}

	files := extractFiles(eng.Doc)
	if len(files) == 0 {
		return p.fallback(ctx, generationID, tasks, language, framework, additionalRequirements, "engineer produced no files")
	}

	// QA is best-effort: a failed strategy pass never degrades the run.
	p.tracker.UpdateStep(generationID, "qa", status.StatusInProgress, "AI QA Engineer creating test strategy", 75)
	qaSystem, qaUser := qaPrompt(prd.Doc, arch.Doc)
	qa := p.runStage(ctx, "qa", qaSystem, qaUser, 0)
	if !qa.Fallback && !extract.IsDegraded(qa.Doc) {
		files["test_strategy.json"] = indentJSON(qa.Doc)
	}
	p.tracker.CompleteStep(generationID, "qa")

	setupInstructions, _ := eng.Doc["setup_instructions"].(string)
	if setupInstructions == "" {
		setupInstructions = "See README.md"
	}
	return files, setupInstructions, MethodAIAgents, nil
}

// runStage performs one prompt exchange and parses the model output. The
// parse never fails; only transport or provider errors set Fallback.
func (p *Pipeline) runStage(ctx context.Context, stage, systemPrompt, userPrompt string, maxTokens int) StageResult {
	ctx, span := p.tracer.Start(ctx, "pipeline.stage."+stage)
	defer span.End()

	raw, err := p.client.Complete(ctx, CompletionRequest{
		SystemPrompt: systemPrompt,
		UserPrompt:   userPrompt,
		MaxTokens:    maxTokens,
	})
	if err != nil {
		span.RecordError(err)
		log.Printf("Stage %s failed, falling back to template generation: %v", stage, err)
		return StageResult{Fallback: true, Reason: fmt.Sprintf("%s stage failed: %v", stage, err)}
	}

	doc := extract.Parse(raw)
	span.SetAttributes(attribute.Bool("degraded", extract.IsDegraded(doc)))
	return StageResult{Doc: doc}
}

func (p *Pipeline) fallback(ctx context.Context, generationID string, tasks []string, language, framework, additionalRequirements, reason string) (map[string]string, string, string, error) {
	// A cancelled run must fail, not degrade to templates.
	if err := ctx.Err(); err != nil {
		return nil, "", "", fmt.Errorf("generation cancelled: %w", err)
	}
	log.Printf("Generation %s using template fallback: %s", generationID, reason)
	if p.metrics != nil {
		p.metrics.RecordFallback(ctx, generationID, reason)
	}
	p.tracker.UpdateStep(generationID, "engineer", status.StatusInProgress, "Generating project from templates", 60)

	files := p.scaffolder.Generate(tasks, language, framework, additionalRequirements)
	return files, "pip install -r requirements.txt && uvicorn main:app --reload", MethodTemplateFallback, nil
}

// publish archives the project and uploads it when storage is configured.
// Failures degrade to a local file URL.
func (p *Pipeline) publish(ctx context.Context, generationID string, proj *project.Project) string {
	archivePath, err := project.Archive(proj.Path)
	if err != nil {
		log.Printf("Archiving %s failed: %v", proj.Name, err)
		return "file://" + proj.Path
	}
	if p.uploader == nil {
		return "file://" + archivePath
	}
	url, err := p.uploader.UploadArchive(ctx, generationID, archivePath)
	if err != nil {
		log.Printf("Artifact upload for %s failed: %v", generationID, err)
		return "file://" + archivePath
	}
	return url
}

func (p *Pipeline) fail(ctx context.Context, generationID string, started time.Time, errorType string, err error) error {
	p.tracker.Fail(generationID, fmt.Sprintf("Generation failed: %v", err))
	if p.metrics != nil {
		p.metrics.RecordFailed(ctx, generationID, errorType, time.Since(started))
	}
	return err
}

// extractFiles coerces the engineer document's files map into file contents.
func extractFiles(doc map[string]interface{}) map[string]string {
	raw, ok := doc["files"].(map[string]interface{})
	if !ok {
		return nil
	}
	files := make(map[string]string, len(raw))
	for name, content := range raw {
		switch v := content.(type) {
		case string:
			files[name] = v
		default:
			files[name] = indentJSONValue(v)
		}
	}
	return files
}

func indentJSONValue(v interface{}) string {
	if m, ok := v.(map[string]interface{}); ok {
		return indentJSON(m)
	}
	return fmt.Sprintf("%v", v)
}
