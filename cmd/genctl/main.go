// genctl generates a project from the deterministic templates without
// running the HTTP service or calling any AI provider. Useful for smoke
// testing the fallback path and for air-gapped environments.
package main

import (
	"flag"
	"fmt"
	"log"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/aiteam/saas-devgen/codegen-service/internal/project"
	"github.com/aiteam/saas-devgen/codegen-service/internal/scaffold"
)

func main() {
	tasks := flag.String("tasks", "", "Comma-separated task descriptions (required)")
	language := flag.String("language", "python", "Target language")
	framework := flag.String("framework", "fastapi", "Target framework")
	requirements := flag.String("requirements", "", "Additional requirements, one per line")
	outputDir := flag.String("out", "generated_projects", "Output directory")
	archive := flag.Bool("archive", false, "Also pack the project into a tar.gz")
	flag.Parse()

	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	taskList, err := parseTasks(*tasks)
	if err != nil {
		log.Fatalf("Validation error: %v", err)
	}

	files := scaffold.NewGenerator().Generate(taskList, *language, *framework, *requirements)

	materializer := project.NewMaterializer(*outputDir)
	proj, err := materializer.Create(files, taskList, *language, *framework,
		"pip install -r requirements.txt && uvicorn main:app --reload", "template_fallback")
	if err != nil {
		log.Fatalf("Failed to materialize project: %v", err)
	}

	log.Printf("✓ Generated project")
	log.Printf("  Name: %s", proj.Name)
	log.Printf("  Path: %s", proj.Path)
	log.Printf("  Files: %d", len(proj.Files))
	for _, f := range proj.Files {
		log.Printf("    - %s", f)
	}

	if *archive {
		archivePath, err := project.Archive(proj.Path)
		if err != nil {
			log.Fatalf("Failed to archive project: %v", err)
		}
		log.Printf("  Archive: %s", archivePath)
	}
}

// parseTasks splits and validates the -tasks flag
func parseTasks(raw string) ([]string, error) {
	var tasks []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			tasks = append(tasks, part)
		}
	}
	if len(tasks) == 0 {
		return nil, fmt.Errorf("at least one task is required")
	}
	return tasks, nil
}

// initTracer initializes OpenTelemetry tracing
func initTracer() error {
	exporter, err := stdouttrace.New(stdouttrace.WithPrettyPrint())
	if err != nil {
		return fmt.Errorf("failed to create stdout exporter: %w", err)
	}

	tp := trace.NewTracerProvider(
		trace.WithBatcher(exporter),
	)

	otel.SetTracerProvider(tp)

	return nil
}
