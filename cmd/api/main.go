package main

import (
	"context"
	"log"
	"log/slog"
	nethttp "net/http"
	"os"

	"hrdocs-ai/internal/blob"
	"hrdocs-ai/internal/config"
	"hrdocs-ai/internal/http"
	"hrdocs-ai/internal/indexer"
	"hrdocs-ai/internal/llm"
	"hrdocs-ai/internal/rag"
	"hrdocs-ai/internal/storage"
	"hrdocs-ai/internal/vectorindex"
)

//go:generate swagger generate spec -o swagger.json

// General API information
//
// This API lets users upload HR documents (PDF and DOCX), have them indexed
// into a vector index, and ask natural-language questions that are answered
// from the document contents with source citations.
//
// swagger:meta
//
// ---
// swagger: '2.0'
// info:
//   title: HR Docs AI API
//   description: |
//     Document Q&A API. Upload HR documents, then query them; answers are
//     generated from the most relevant document passages and cite their
//     sources.
//   version: 1.0.0
// schemes:
//   - http
//   - https
// consumes:
//   - application/json
//   - multipart/form-data
// produces:
//   - application/json

func main() {
	// Load configuration first (needed for log level)
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Configure structured logging with configurable level and format
	opts := &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}
	var handler slog.Handler
	if cfg.LogFormat == "json" {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		handler = slog.NewTextHandler(os.Stdout, opts)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)
	slog.Debug("Logging configured", "level", cfg.LogLevel.String(), "format", cfg.LogFormat)

	// Initialize database
	db, err := storage.New(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to open database: %v", err)
	}
	defer func() {
		_ = db.Close()
	}()

	if err := storage.Migrate(db); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	slog.Info("Database initialized", "path", cfg.DBPath)

	// Create repository instances
	documentRepo := storage.NewDocumentRepo(db)
	vectorRepo := storage.NewVectorRepo(db)

	// Document file storage
	blobStore, err := blob.NewFileStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("Failed to initialize upload storage: %v", err)
	}
	slog.Info("Upload storage ready", "dir", cfg.UploadDir)

	ctx := context.Background()

	// Initialize the vector index backend
	var index vectorindex.Index
	switch cfg.VectorBackend {
	case "qdrant":
		qdrantIndex, err := vectorindex.NewQdrantIndex(cfg.QdrantURL, cfg.QdrantCollection)
		if err != nil {
			log.Fatalf("Failed to create Qdrant client: %v", err)
		}
		if err := qdrantIndex.EnsureCollection(ctx, cfg.EmbeddingVectorSize); err != nil {
			log.Fatalf("Failed to ensure Qdrant collection: %v", err)
		}
		slog.Info("Qdrant collection ready", "collection", cfg.QdrantCollection, "vector_size", cfg.EmbeddingVectorSize)
		index = qdrantIndex
	default:
		memIndex := vectorindex.NewMemoryIndex(vectorRepo)
		if err := memIndex.Load(ctx); err != nil {
			log.Fatalf("Failed to load vector index: %v", err)
		}
		slog.Info("Vector index loaded", "vectors", memIndex.Len())
		index = memIndex
	}

	// Validate embedding client vector size (fail-fast)
	embedder := llm.NewEmbeddingsClient(cfg.EmbeddingBaseURL, cfg.LLMAPIKey, cfg.EmbeddingModelName, cfg.EmbeddingVectorSize, cfg.ProviderTimeout)
	testEmbeddings, err := embedder.EmbedTexts(ctx, []string{"test"})
	if err != nil {
		log.Fatalf("Failed to validate embedding client: %v", err)
	}
	if len(testEmbeddings) == 0 || len(testEmbeddings[0]) != cfg.EmbeddingVectorSize {
		log.Fatalf("Embedding vector size mismatch: expected %d, got %d", cfg.EmbeddingVectorSize, len(testEmbeddings[0]))
	}
	slog.Info("Embedding client validated", "vector_size", cfg.EmbeddingVectorSize)

	// Create the document pipeline
	pipeline := indexer.NewPipeline(
		documentRepo,
		blobStore,
		index,
		embedder,
		indexer.Options{
			ChunkSize:      cfg.ChunkSize,
			ChunkOverlap:   cfg.ChunkOverlap,
			ChunkDocuments: cfg.ChunkDocuments,
		},
	)

	// Create LLM client (external service layer)
	llmClient := llm.NewClient(cfg.LLMBaseURL, cfg.LLMAPIKey, cfg.LLMModelName, cfg.ProviderTimeout)

	// Create query engine
	ragEngine := rag.NewEngine(embedder, index, llmClient)
	slog.Info("Query engine initialized")

	// Create router with dependencies
	deps := &http.Deps{
		Pipeline:      pipeline,
		RAGEngine:     ragEngine,
		DocumentStore: documentRepo,
		VectorStore:   vectorRepo,
		Index:         index,
		MaxUploadSize: cfg.MaxUploadSize,
	}
	router := http.NewRouter(deps)

	// Start API server
	addr := ":" + cfg.APIPort
	slog.Info("Starting API server", "addr", addr)
	slog.Debug("LLM configuration", "base_url", cfg.LLMBaseURL, "model", cfg.LLMModelName)
	if err := nethttp.ListenAndServe(addr, router); err != nil {
		log.Fatalf("API server failed to start: %v", err)
	}
}
