package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/trace"

	"github.com/aiteam/saas-devgen/codegen-service/internal/auth"
	"github.com/aiteam/saas-devgen/codegen-service/internal/config"
	"github.com/aiteam/saas-devgen/codegen-service/internal/gateway"
	"github.com/aiteam/saas-devgen/codegen-service/internal/metrics"
	"github.com/aiteam/saas-devgen/codegen-service/internal/orchestration"
	"github.com/aiteam/saas-devgen/codegen-service/internal/project"
	"github.com/aiteam/saas-devgen/codegen-service/internal/status"

	_ "github.com/aiteam/saas-devgen/codegen-service/docs" // swagger docs
)

// @title Codegen Service API
// @version 1.0
// @description Multi-agent AI code generation service.
// @description
// @description Runs a Product Manager / Architect / Engineer / QA pipeline against a
// @description text-generation provider and materializes the result as a project on disk,
// @description falling back to deterministic templates when the provider is unavailable.

// @license.name MIT
// @license.url https://opensource.org/licenses/MIT

// @host localhost:8003
// @BasePath /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and the JWT token.

func main() {
	if err := initTracer(); err != nil {
		log.Fatalf("Failed to initialize tracer: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Optional Postgres: only used to archive terminal status records and
	// for readiness checks. The service runs fully in memory without it.
	var pool *pgxpool.Pool
	var archive *status.PostgresArchive
	if cfg.DatabaseURL != "" {
		log.Println("Connecting to PostgreSQL database...")
		for i := 0; i < 10; i++ {
			pool, err = pgxpool.New(context.Background(), cfg.DatabaseURL)
			if err == nil {
				err = pool.Ping(context.Background())
				if err == nil {
					break
				}
			}
			log.Printf("Waiting for database... (attempt %d/10): %v", i+1, err)
			time.Sleep(3 * time.Second)
		}
		if err != nil {
			log.Fatalf("Failed to connect to database after retries: %v", err)
		}
		defer pool.Close()

		archive, err = status.NewPostgresArchive(context.Background(), pool)
		if err != nil {
			log.Fatalf("Failed to initialize status archive: %v", err)
		}
		log.Println("Connected to PostgreSQL database")
	}

	store := status.NewMemoryStore()
	tracker := status.NewTracker(store)
	if archive != nil {
		tracker.SetArchive(archive)
	}

	generationMetrics, err := metrics.NewGenerationMetrics()
	if err != nil {
		log.Fatalf("Failed to initialize metrics: %v", err)
	}

	aiClient := orchestration.NewAIClient(cfg.AI)
	if !aiClient.IsConfigured() {
		log.Println("WARN: no AI provider credential configured, all generations will use template fallback")
	}

	var uploader orchestration.ArtifactUploader
	if cfg.Artifact.Enabled() {
		u, err := project.NewUploader(cfg.Artifact)
		if err != nil {
			log.Printf("WARN: artifact storage disabled: %v", err)
		} else {
			uploader = u
		}
	}

	materializer := project.NewMaterializer(cfg.OutputDir)
	pipeline := orchestration.NewPipeline(aiClient, tracker, materializer, uploader, generationMetrics)
	pipeline.SetEngineerMaxTokens(cfg.AI.EngineerMaxTokens)
	runner := orchestration.NewRunner(pipeline)

	handler := gateway.NewHandler(runner, tracker, archive, pool, cfg.OutputDir)
	streamer := gateway.NewStatusStreamer(store)

	// Optional bearer auth on /generate only. Status reads stay open.
	var authMW gin.HandlerFunc
	if cfg.JWTSecret != "" {
		jwtManager, err := auth.NewJWTManager(cfg.JWTSecret)
		if err != nil {
			log.Fatalf("Failed to initialize JWT manager: %v", err)
		}
		authMW = auth.RequireAuth(jwtManager)
	}

	router := gin.Default()
	router.Use(structuredLoggingMiddleware())

	gateway.RegisterRoutes(router, handler, streamer, authMW)
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	server := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 600 * time.Second, // synchronous generations hold the connection
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting codegen service on port %s\n", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server exited")
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

// structuredLoggingMiddleware provides structured JSON logging for all requests
func structuredLoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		c.Next()

		latency := time.Since(start)
		userID, _ := c.Get("user_id")

		logEntry := map[string]interface{}{
			"timestamp":  time.Now().UTC().Format(time.RFC3339),
			"method":     c.Request.Method,
			"path":       c.Request.URL.Path,
			"status":     c.Writer.Status(),
			"latency_ms": latency.Milliseconds(),
			"client_ip":  c.ClientIP(),
			"user_agent": c.Request.UserAgent(),
		}
		if userID != nil {
			logEntry["user_id"] = userID
		}
		if len(c.Errors) > 0 {
			logEntry["errors"] = c.Errors.String()
		}

		logJSON, _ := json.Marshal(logEntry)
		log.Println(string(logJSON))
	}
}
