package config

import (
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Config holds all runtime configuration for the codegen service.
type Config struct {
	Port        string
	OutputDir   string
	DatabaseURL string
	JWTSecret   string
	AI          AIConfig
	Artifact    ArtifactConfig
}

// AIConfig selects the text-generation provider and model. An empty APIKey is
// a recognized condition: the pipeline falls back to template generation
// instead of failing the request.
type AIConfig struct {
	Provider          string
	Model             string
	APIKey            string
	APIBase           string
	Temperature       float64
	MaxTokens         int
	EngineerMaxTokens int
}

// ArtifactConfig configures the optional MinIO/S3 upload of generated
// project archives. Disabled when Endpoint is empty.
type ArtifactConfig struct {
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// Load reads configuration from the environment, honoring a .env file when
// present.
func Load() (*Config, error) {
	_ = godotenv.Load()

	port := strings.TrimSpace(os.Getenv("PORT"))
	if port == "" {
		port = "8003"
	}

	outputDir := strings.TrimSpace(os.Getenv("CODEGEN_OUTPUT_DIR"))
	if outputDir == "" {
		outputDir = "generated_projects"
	}

	return &Config{
		Port:        port,
		OutputDir:   outputDir,
		DatabaseURL: strings.TrimSpace(os.Getenv("DATABASE_URL")),
		JWTSecret:   strings.TrimSpace(os.Getenv("JWT_SECRET")),
		AI:          loadAIConfig(),
		Artifact:    loadArtifactConfig(),
	}, nil
}

func loadAIConfig() AIConfig {
	provider := strings.ToLower(strings.TrimSpace(os.Getenv("AI_PROVIDER")))
	if provider == "" {
		provider = "openrouter"
	}

	model := strings.TrimSpace(os.Getenv("AI_MODEL"))
	if model == "" {
		model = "deepseek/deepseek-chat"
	}

	return AIConfig{
		Provider:          provider,
		Model:             model,
		APIKey:            resolveAPIKey(provider),
		APIBase:           resolveAPIBase(provider),
		Temperature:       envFloat("OPENROUTER_TEMPERATURE", 0.3),
		MaxTokens:         envInt("OPENROUTER_MAX_TOKENS", 2000),
		EngineerMaxTokens: envInt("OPENROUTER_MAX_TOKENS_ENGINEER", 8000),
	}
}

// resolveAPIKey looks up the credential for the selected provider, falling
// back to whichever key is configured.
func resolveAPIKey(provider string) string {
	switch provider {
	case "openrouter":
		return strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY"))
	case "openai":
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	case "anthropic":
		return strings.TrimSpace(os.Getenv("ANTHROPIC_API_KEY"))
	default:
		if key := strings.TrimSpace(os.Getenv("OPENROUTER_API_KEY")); key != "" {
			return key
		}
		return strings.TrimSpace(os.Getenv("OPENAI_API_KEY"))
	}
}

func resolveAPIBase(provider string) string {
	if base := strings.TrimSpace(os.Getenv("OPENROUTER_API_BASE")); base != "" {
		return base
	}
	switch provider {
	case "openai":
		return "https://api.openai.com/v1"
	case "anthropic":
		return "https://api.anthropic.com/v1"
	default:
		return "https://openrouter.ai/api/v1"
	}
}

func loadArtifactConfig() ArtifactConfig {
	endpoint := strings.TrimSpace(os.Getenv("ARTIFACT_MINIO_ENDPOINT"))
	if endpoint == "" {
		endpoint = strings.TrimSpace(os.Getenv("ARTIFACT_S3_ENDPOINT"))
	}

	return ArtifactConfig{
		Endpoint:  endpoint,
		Region:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_REGION")), "us-east-1"),
		AccessKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_ACCESS_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_USER"))),
		SecretKey: firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_SECRET_KEY")), strings.TrimSpace(os.Getenv("MINIO_ROOT_PASSWORD"))),
		Bucket:    firstNonEmpty(strings.TrimSpace(os.Getenv("ARTIFACT_S3_BUCKET")), "generated-projects"),
		UseSSL:    envBool("ARTIFACT_S3_USE_SSL", false),
	}
}

// HasCredential reports whether a provider credential is configured.
func (c AIConfig) HasCredential() bool {
	return c.APIKey != ""
}

// Enabled reports whether artifact uploads are configured.
func (c ArtifactConfig) Enabled() bool {
	return c.Endpoint != ""
}

func envFloat(key string, fallback float64) float64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return v
}

func envInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return v
}

func envBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}
	return v
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
