package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aiteam/saas-devgen/codegen-service/internal/config"
	"github.com/aiteam/saas-devgen/codegen-service/internal/models"
	"github.com/aiteam/saas-devgen/codegen-service/internal/orchestration"
	"github.com/aiteam/saas-devgen/codegen-service/internal/project"
	"github.com/aiteam/saas-devgen/codegen-service/internal/status"
)

// newTestRouter builds the full route surface over a credential-less client,
// so every generation takes the deterministic template path.
func newTestRouter(t *testing.T) (*gin.Engine, *status.MemoryStore) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := status.NewMemoryStore()
	tracker := status.NewTracker(store)
	outputDir := t.TempDir()
	client := orchestration.NewAIClient(config.AIConfig{Provider: "openrouter", Model: "test"})
	pipeline := orchestration.NewPipeline(client, tracker, project.NewMaterializer(outputDir), nil, nil)
	runner := orchestration.NewRunner(pipeline)

	handler := NewHandler(runner, tracker, nil, nil, outputDir)
	streamer := NewStatusStreamer(store)

	router := gin.New()
	RegisterRoutes(router, handler, streamer, nil)
	return router, store
}

func doJSON(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestGenerate_EmptyTasksRejected(t *testing.T) {
	router, store := newTestRouter(t)

	cases := []struct {
		name string
		body string
	}{
		{"empty list", `{"tasks": []}`},
		{"missing field", `{"language": "python"}`},
		{"malformed json", `{"tasks": `},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := doJSON(router, "POST", "/generate", tc.body)
			assert.Equal(t, http.StatusBadRequest, w.Code)
		})
	}

	// Nothing must have been recorded.
	_, ok := store.Get("")
	assert.False(t, ok)
}

func TestGenerate_SyncFallback(t *testing.T) {
	router, store := newTestRouter(t)

	w := doJSON(router, "POST", "/generate", `{"tasks": ["Create API endpoints", "Add user authentication"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.GenerationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "completed", resp.Status)
	assert.NotEmpty(t, resp.GenerationID)
	assert.Equal(t, "python", resp.Language)
	assert.Equal(t, "fastapi", resp.Framework)
	assert.Contains(t, resp.GeneratedFiles, "main.py")
	assert.Contains(t, resp.GeneratedFiles, "auth.py")
	require.NotNil(t, resp.StatusInfo)
	assert.Equal(t, 100, resp.StatusInfo.Progress)

	st, ok := store.Get(resp.GenerationID)
	require.True(t, ok)
	assert.Equal(t, status.StatusCompleted, st.Status)
}

func TestGenerate_Async(t *testing.T) {
	router, store := newTestRouter(t)

	w := doJSON(router, "POST", "/generate?async=true", `{"tasks": ["Create API endpoints"]}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp models.AsyncGenerationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "started", resp.Status)
	require.NotEmpty(t, resp.GenerationID)

	require.Eventually(t, func() bool {
		st, ok := store.Get(resp.GenerationID)
		return ok && st.Status == status.StatusCompleted
	}, 5*time.Second, 20*time.Millisecond)
}

func TestGetStatus(t *testing.T) {
	router, store := newTestRouter(t)

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(router, "GET", "/status/does-not-exist", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("known id", func(t *testing.T) {
		store.Put("gen-1", &models.GenerationStatus{
			GenerationID: "gen-1",
			Status:       status.StatusInProgress,
			CurrentStep:  "engineer",
			Progress:     60,
		})

		w := doJSON(router, "GET", "/status/gen-1", "")
		require.Equal(t, http.StatusOK, w.Code)

		var st models.GenerationStatus
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &st))
		assert.Equal(t, "engineer", st.CurrentStep)
		assert.Equal(t, 60, st.Progress)
	})
}

func TestCancelGeneration(t *testing.T) {
	router, store := newTestRouter(t)

	t.Run("unknown id", func(t *testing.T) {
		w := doJSON(router, "POST", "/generations/nope/cancel", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})

	t.Run("already terminal", func(t *testing.T) {
		store.Put("gen-done", &models.GenerationStatus{
			GenerationID: "gen-done",
			Status:       status.StatusCompleted,
			Progress:     100,
		})
		w := doJSON(router, "POST", "/generations/gen-done/cancel", "")
		assert.Equal(t, http.StatusConflict, w.Code)
	})

	t.Run("running", func(t *testing.T) {
		store.Put("gen-running", &models.GenerationStatus{
			GenerationID: "gen-running",
			Status:       status.StatusInProgress,
		})
		w := doJSON(router, "POST", "/generations/gen-running/cancel", "")
		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), "cancelling")
	})

	t.Run("no live run", func(t *testing.T) {
		// An orphaned in_progress record, e.g. after a restart. Cancelling
		// must fail it with full bookkeeping so stream watchers see the
		// final snapshot.
		store.Put("gen-orphan", &models.GenerationStatus{
			GenerationID:        "gen-orphan",
			Status:              status.StatusInProgress,
			CurrentStep:         "engineer",
			EstimatedCompletion: "2099-01-01T00:00:00Z",
		})
		w := doJSON(router, "POST", "/generations/gen-orphan/cancel", "")
		require.Equal(t, http.StatusOK, w.Code)

		st, ok := store.Get("gen-orphan")
		require.True(t, ok)
		assert.Equal(t, status.StatusFailed, st.Status)
		assert.Equal(t, "error", st.CurrentStep)
		assert.Equal(t, "Generation cancelled", st.Details)
		assert.NotEmpty(t, st.UpdatedAt)
		assert.Empty(t, st.EstimatedCompletion)
	})
}

// recordingArchive captures terminal records handed to the tracker's sink.
type recordingArchive struct {
	mu      sync.Mutex
	records []*models.GenerationStatus
}

func (r *recordingArchive) Record(_ context.Context, st *models.GenerationStatus) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, st.Clone())
	return nil
}

func (r *recordingArchive) byID(id string) *models.GenerationStatus {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, st := range r.records {
		if st.GenerationID == id {
			return st
		}
	}
	return nil
}

func TestGenerate_AsyncArchivesTerminalStatus(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := status.NewMemoryStore()
	tracker := status.NewTracker(store)
	sink := &recordingArchive{}
	tracker.SetArchive(sink)

	outputDir := t.TempDir()
	client := orchestration.NewAIClient(config.AIConfig{Provider: "openrouter", Model: "test"})
	pipeline := orchestration.NewPipeline(client, tracker, project.NewMaterializer(outputDir), nil, nil)
	runner := orchestration.NewRunner(pipeline)

	handler := NewHandler(runner, tracker, nil, nil, outputDir)
	router := gin.New()
	RegisterRoutes(router, handler, NewStatusStreamer(store), nil)

	w := doJSON(router, "POST", "/generate?async=true", `{"tasks": ["Create API endpoints"]}`)
	require.Equal(t, http.StatusAccepted, w.Code)

	var resp models.AsyncGenerationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	require.Eventually(t, func() bool {
		return sink.byID(resp.GenerationID) != nil
	}, 5*time.Second, 20*time.Millisecond)

	archived := sink.byID(resp.GenerationID)
	assert.Equal(t, status.StatusCompleted, archived.Status)
	assert.Equal(t, 100, archived.Progress)
}

func TestProjectEndpoints(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "POST", "/generate", `{"tasks": ["Create API endpoints"]}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.GenerationResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))

	meta, err := project.ReadMetadata(resp.ProjectPath)
	require.NoError(t, err)

	t.Run("files by uuid", func(t *testing.T) {
		w := doJSON(router, "GET", "/projects/"+meta.ProjectUUID+"/files", "")
		require.Equal(t, http.StatusOK, w.Code)

		var got models.ProjectMetadata
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &got))
		assert.Equal(t, meta.ProjectUUID, got.ProjectUUID)
		assert.Contains(t, got.Files, "main.py")
	})

	t.Run("files by directory name", func(t *testing.T) {
		w := doJSON(router, "GET", "/projects/"+meta.ProjectName+"/files", "")
		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("download", func(t *testing.T) {
		w := doJSON(router, "GET", "/projects/"+meta.ProjectName+"/download", "")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Header().Get("Content-Disposition"), meta.ProjectName)
	})

	t.Run("unknown project", func(t *testing.T) {
		w := doJSON(router, "GET", "/projects/ghost/files", "")
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestHealth(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "GET", "/health", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp models.HealthResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "healthy", resp.Status)
	assert.Equal(t, "codegen-service", resp.Service)
	assert.WithinDuration(t, time.Now(), resp.Timestamp, time.Minute)
}

func TestReady_NoDatabase(t *testing.T) {
	router, _ := newTestRouter(t)

	w := doJSON(router, "GET", "/ready", "")
	assert.Equal(t, http.StatusOK, w.Code)
}
