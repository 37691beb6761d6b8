package gateway

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/aiteam/saas-devgen/codegen-service/internal/models"
	"github.com/aiteam/saas-devgen/codegen-service/internal/orchestration"
	"github.com/aiteam/saas-devgen/codegen-service/internal/project"
	"github.com/aiteam/saas-devgen/codegen-service/internal/status"
)

// Handler handles HTTP requests for the codegen service
type Handler struct {
	runner    *orchestration.Runner
	tracker   *status.Tracker
	store     status.Store
	archive   *status.PostgresArchive
	pool      *pgxpool.Pool
	outputDir string
}

// NewHandler creates a new gateway handler. archive and pool are nil when no
// database is configured.
func NewHandler(runner *orchestration.Runner, tracker *status.Tracker, archive *status.PostgresArchive, pool *pgxpool.Pool, outputDir string) *Handler {
	return &Handler{
		runner:    runner,
		tracker:   tracker,
		store:     tracker.Store(),
		archive:   archive,
		pool:      pool,
		outputDir: outputDir,
	}
}

// Generate godoc
// @Summary Generate a project
// @Description Run the multi-agent code generation pipeline for the given tasks
// @Tags generation
// @Accept json
// @Produce json
// @Param async query bool false "Run in the background and return immediately"
// @Param request body models.GenerationRequest true "Generation request"
// @Success 200 {object} models.GenerationResponse
// @Success 202 {object} models.AsyncGenerationResponse
// @Failure 400 {object} map[string]string
// @Failure 500 {object} map[string]string
// @Router /generate [post]
func (h *Handler) Generate(c *gin.Context) {
	var req models.GenerationRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "tasks must be a non-empty list"})
		return
	}

	generationID := uuid.NewString()
	log.Printf(`{"level":"info","message":"Generation requested","generation_id":"%s","tasks":%d,"async":%t}`,
		generationID, len(req.Tasks), c.Query("async") == "true")

	if c.Query("async") == "true" {
		h.runner.RunAsync(generationID, req)
		c.JSON(http.StatusAccepted, models.AsyncGenerationResponse{
			GenerationID: generationID,
			Status:       "started",
			Message:      "Generation started. Poll /status/" + generationID + " for progress.",
		})
		return
	}

	resp, err := h.runner.RunSync(c.Request.Context(), generationID, req)
	if err != nil {
		log.Printf(`{"level":"error","message":"Generation failed","generation_id":"%s","error":"%v"}`, generationID, err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Generation failed", "generation_id": generationID, "details": err.Error()})
		return
	}

	c.JSON(http.StatusOK, resp)
}

// GetStatus godoc
// @Summary Get generation status
// @Description Poll the progress of a generation
// @Tags generation
// @Produce json
// @Param generation_id path string true "Generation ID"
// @Success 200 {object} models.GenerationStatus
// @Failure 404 {object} map[string]string
// @Router /status/{generation_id} [get]
func (h *Handler) GetStatus(c *gin.Context) {
	id := c.Param("generation_id")
	st, ok := h.store.Get(id)
	if !ok {
		if h.archive != nil {
			if archived, err := h.archive.Load(c.Request.Context(), id); err == nil {
				c.JSON(http.StatusOK, archived)
				return
			}
		}
		c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found", "generation_id": id})
		return
	}
	c.JSON(http.StatusOK, st)
}

// CancelGeneration godoc
// @Summary Cancel a generation
// @Description Abort a running generation
// @Tags generation
// @Produce json
// @Param generation_id path string true "Generation ID"
// @Success 200 {object} map[string]string
// @Failure 404 {object} map[string]string
// @Failure 409 {object} map[string]string
// @Router /generations/{generation_id}/cancel [post]
func (h *Handler) CancelGeneration(c *gin.Context) {
	id := c.Param("generation_id")
	st, ok := h.store.Get(id)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Generation not found", "generation_id": id})
		return
	}
	if status.IsTerminal(st.Status) {
		c.JSON(http.StatusConflict, gin.H{"error": "Generation already " + st.Status, "generation_id": id})
		return
	}

	if !h.runner.Cancel(id) {
		// No live run to signal, e.g. after a crash recovery. Mark the
		// record failed so it doesn't stay in_progress forever.
		h.tracker.Fail(id, "Generation cancelled")
	}
	c.JSON(http.StatusOK, gin.H{"status": "cancelling", "generation_id": id})
}

// ListProjectFiles godoc
// @Summary List project files
// @Description Return the manifest file list of a generated project
// @Tags projects
// @Produce json
// @Param project_id path string true "Project UUID or directory name"
// @Success 200 {object} models.ProjectMetadata
// @Failure 404 {object} map[string]string
// @Router /projects/{project_id}/files [get]
func (h *Handler) ListProjectFiles(c *gin.Context) {
	meta, _, ok := h.findProject(c.Param("project_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}
	c.JSON(http.StatusOK, meta)
}

// DownloadProject godoc
// @Summary Download project archive
// @Description Stream the tar.gz archive of a generated project
// @Tags projects
// @Produce application/gzip
// @Param project_id path string true "Project UUID or directory name"
// @Success 200 {file} binary
// @Failure 404 {object} map[string]string
// @Router /projects/{project_id}/download [get]
func (h *Handler) DownloadProject(c *gin.Context) {
	meta, path, ok := h.findProject(c.Param("project_id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Project not found"})
		return
	}

	archivePath := path + ".tar.gz"
	if _, err := os.Stat(archivePath); err != nil {
		archivePath, err = project.Archive(path)
		if err != nil {
			log.Printf(`{"level":"error","message":"Archiving failed","project":"%s","error":"%v"}`, meta.ProjectName, err)
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to package project"})
			return
		}
	}

	c.FileAttachment(archivePath, meta.ProjectName+".tar.gz")
}

// Health godoc
// @Summary Health check
// @Tags health
// @Produce json
// @Success 200 {object} models.HealthResponse
// @Router /health [get]
func (h *Handler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, models.HealthResponse{
		Status:    "healthy",
		Service:   "codegen-service",
		Timestamp: time.Now().UTC(),
	})
}

// Ready godoc
// @Summary Readiness check
// @Tags health
// @Produce json
// @Success 200 {object} map[string]string
// @Failure 503 {object} map[string]string
// @Router /ready [get]
func (h *Handler) Ready(c *gin.Context) {
	if h.pool != nil {
		if err := h.pool.Ping(c.Request.Context()); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "error": err.Error()})
			return
		}
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready"})
}

// findProject resolves a project by manifest UUID or directory name.
func (h *Handler) findProject(id string) (*models.ProjectMetadata, string, bool) {
	if id == "" {
		return nil, "", false
	}

	direct := filepath.Join(h.outputDir, filepath.Base(id))
	if meta, err := project.ReadMetadata(direct); err == nil {
		return meta, direct, true
	}

	entries, err := os.ReadDir(h.outputDir)
	if err != nil {
		return nil, "", false
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		path := filepath.Join(h.outputDir, entry.Name())
		meta, err := project.ReadMetadata(path)
		if err != nil {
			continue
		}
		if meta.ProjectUUID == id {
			return meta, path, true
		}
	}
	return nil, "", false
}
