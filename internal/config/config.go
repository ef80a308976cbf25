package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all configuration for the application.
type Config struct {
	APIPort   string
	LogLevel  slog.Level
	LogFormat string

	DBPath    string
	UploadDir string

	LLMBaseURL          string
	LLMModelName        string
	LLMAPIKey           string
	EmbeddingBaseURL    string
	EmbeddingModelName  string
	EmbeddingVectorSize int
	ProviderTimeout     time.Duration

	VectorBackend    string // "memory" or "qdrant"
	QdrantURL        string
	QdrantCollection string

	ChunkSize      int
	ChunkOverlap   int
	ChunkDocuments bool

	MaxUploadSize int64
}

// Load reads configuration from environment variables and returns a Config struct.
// It applies defaults for optional fields and validates required fields.
// If a .env file exists in the current directory or project root, it will be loaded automatically.
// Environment variables already set take precedence over .env file values.
func Load() (*Config, error) {
	// Try to load .env file (ignore error if it doesn't exist)
	// Check current directory first, then walk up to find project root (where go.mod is)
	_ = godotenv.Load() // Try current directory

	wd, err := os.Getwd()
	if err == nil {
		dir := wd
		for i := 0; i < 5; i++ { // Limit search depth
			envPath := filepath.Join(dir, ".env")
			if _, err := os.Stat(envPath); err == nil {
				_ = godotenv.Load(envPath)
				break
			}
			parent := filepath.Dir(dir)
			if parent == dir {
				break // Reached filesystem root
			}
			dir = parent
		}
	}

	cfg := &Config{
		APIPort:            getEnv("API_PORT", "9000"),
		LogFormat:          getEnv("LOG_FORMAT", "text"),
		DBPath:             getEnv("DB_PATH", "./data/hrdocs-ai.db"),
		UploadDir:          getEnv("UPLOAD_DIR", "./data/uploads"),
		LLMBaseURL:         getEnv("LLM_BASE_URL", "http://localhost:8080"),
		LLMModelName:       getEnv("LLM_MODEL", "Llama-3.1-8B-Instruct"),
		LLMAPIKey:          getEnv("LLM_API_KEY", "dummy-key"),
		EmbeddingBaseURL:   getEnv("EMBEDDING_BASE_URL", "http://localhost:8081"),
		EmbeddingModelName: getEnv("EMBEDDING_MODEL_NAME", "granite-embedding-278m-multilingual"),
		VectorBackend:      getEnv("VECTOR_BACKEND", "memory"),
		QdrantURL:          getEnv("QDRANT_URL", "http://localhost:6333"),
		QdrantCollection:   getEnv("QDRANT_COLLECTION", "documents"),
	}

	level, err := parseLogLevel(getEnv("LOG_LEVEL", "info"))
	if err != nil {
		return nil, err
	}
	cfg.LogLevel = level

	// Must match the output vector size of the embedding model; if the size
	// changes, existing vectors must be reindexed.
	vectorSizeStr := getEnv("EMBEDDING_VECTOR_SIZE", "")
	if vectorSizeStr == "" {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE is required")
	}
	vectorSize, err := strconv.Atoi(vectorSizeStr)
	if err != nil {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be a valid integer: %w", err)
	}
	if vectorSize <= 0 {
		return nil, fmt.Errorf("EMBEDDING_VECTOR_SIZE must be greater than 0")
	}
	cfg.EmbeddingVectorSize = vectorSize

	cfg.ChunkSize, err = getEnvInt("CHUNK_SIZE", 1000)
	if err != nil {
		return nil, err
	}
	cfg.ChunkOverlap, err = getEnvInt("CHUNK_OVERLAP", 200)
	if err != nil {
		return nil, err
	}
	if cfg.ChunkOverlap >= cfg.ChunkSize {
		return nil, fmt.Errorf("CHUNK_OVERLAP must be smaller than CHUNK_SIZE")
	}
	cfg.ChunkDocuments = getEnv("CHUNK_DOCUMENTS", "true") == "true"

	maxUpload, err := getEnvInt("MAX_UPLOAD_SIZE", 20<<20)
	if err != nil {
		return nil, err
	}
	cfg.MaxUploadSize = int64(maxUpload)

	timeoutSec, err := getEnvInt("PROVIDER_TIMEOUT_SECONDS", 60)
	if err != nil {
		return nil, err
	}
	cfg.ProviderTimeout = time.Duration(timeoutSec) * time.Second

	if cfg.VectorBackend != "memory" && cfg.VectorBackend != "qdrant" {
		return nil, fmt.Errorf("VECTOR_BACKEND must be \"memory\" or \"qdrant\", got %q", cfg.VectorBackend)
	}

	// Create data directories if they don't exist
	dataDir := filepath.Dir(cfg.DBPath)
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	return cfg, nil
}

func parseLogLevel(s string) (slog.Level, error) {
	switch s {
	case "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("LOG_LEVEL must be one of debug, info, warn, error; got %q", s)
	}
}

// getEnv gets an environment variable or returns a default value.
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable or returns a default value.
func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be a valid integer: %w", key, err)
	}
	return n, nil
}
