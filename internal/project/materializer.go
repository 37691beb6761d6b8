// Package project writes generated file bundles to disk, packages them as
// archives, and optionally uploads them to object storage.
package project

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/aiteam/saas-devgen/codegen-service/internal/models"
)

// MetadataFileName is the manifest written into every generated project.
const MetadataFileName = "project_metadata.json"

// Project describes one materialized project on disk.
type Project struct {
	UUID  string
	Name  string
	Path  string
	Files []string
}

// Materializer turns filename -> content bundles into on-disk project
// directories under a configured output root.
type Materializer struct {
	outputDir string
	now       func() time.Time
	newUUID   func() string
}

// NewMaterializer creates a Materializer rooted at outputDir. The directory
// is created on first use.
func NewMaterializer(outputDir string) *Materializer {
	return &Materializer{
		outputDir: outputDir,
		now:       time.Now,
		newUUID:   func() string { return uuid.NewString() },
	}
}

// Create writes the bundle to a fresh project directory and drops the
// metadata manifest alongside the files. File paths may contain forward
// slashes for nested directories; absolute paths and parent traversal are
// rejected.
func (m *Materializer) Create(files map[string]string, tasks []string, language, framework, setupInstructions, generationMethod string) (*Project, error) {
	if len(files) == 0 {
		return nil, fmt.Errorf("no files to materialize")
	}

	projectUUID := m.newUUID()
	shortID := strings.ReplaceAll(projectUUID, "-", "")[:8]
	name := fmt.Sprintf("ai_generated_%s_%s_%s", language, framework, shortID)
	path := filepath.Join(m.outputDir, name)

	if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("create project directory: %w", err)
	}

	written := make([]string, 0, len(files))
	for rel, content := range files {
		clean, err := sanitizePath(rel)
		if err != nil {
			return nil, err
		}
		target := filepath.Join(path, clean)
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return nil, fmt.Errorf("create directory for %s: %w", clean, err)
		}
		if err := os.WriteFile(target, []byte(content), 0o644); err != nil {
			return nil, fmt.Errorf("write %s: %w", clean, err)
		}
		written = append(written, clean)
	}
	sort.Strings(written)

	meta := models.ProjectMetadata{
		ProjectUUID:       projectUUID,
		ProjectName:       name,
		GeneratedAt:       m.now().UTC().Format(time.RFC3339),
		Language:          language,
		Framework:         framework,
		GenerationMethod:  generationMethod,
		SetupInstructions: setupInstructions,
		Files:             written,
		Tasks:             tasks,
	}
	raw, err := json.MarshalIndent(meta, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal metadata: %w", err)
	}
	if err := os.WriteFile(filepath.Join(path, MetadataFileName), raw, 0o644); err != nil {
		return nil, fmt.Errorf("write metadata: %w", err)
	}

	return &Project{
		UUID:  projectUUID,
		Name:  name,
		Path:  path,
		Files: written,
	}, nil
}

// ReadMetadata loads the manifest of a previously materialized project.
func ReadMetadata(projectPath string) (*models.ProjectMetadata, error) {
	raw, err := os.ReadFile(filepath.Join(projectPath, MetadataFileName))
	if err != nil {
		return nil, fmt.Errorf("read metadata: %w", err)
	}
	var meta models.ProjectMetadata
	if err := json.Unmarshal(raw, &meta); err != nil {
		return nil, fmt.Errorf("parse metadata: %w", err)
	}
	return &meta, nil
}

func sanitizePath(rel string) (string, error) {
	if rel == "" {
		return "", fmt.Errorf("empty file path")
	}
	clean := filepath.Clean(filepath.FromSlash(rel))
	if filepath.IsAbs(clean) || clean == ".." || strings.HasPrefix(clean, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("illegal file path %q", rel)
	}
	return clean, nil
}
