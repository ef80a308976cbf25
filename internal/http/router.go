package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"hrdocs-ai/internal/handlers"
	"hrdocs-ai/internal/indexer"
	"hrdocs-ai/internal/rag"
	"hrdocs-ai/internal/storage"
	"hrdocs-ai/internal/vectorindex"
)

// Deps holds dependencies for the HTTP router.
type Deps struct {
	Pipeline      *indexer.Pipeline
	RAGEngine     rag.Engine
	DocumentStore storage.DocumentStore
	VectorStore   storage.VectorRowStore
	Index         vectorindex.Index
	MaxUploadSize int64
}

// NewRouter creates a new HTTP router with the provided dependencies.
func NewRouter(deps *Deps) http.Handler {
	r := chi.NewRouter()

	// Add chi middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(LoggerMiddleware)

	// Add CORS middleware
	r.Use(CORS)

	documentsHandler := handlers.NewDocumentsHandler(deps.Pipeline, deps.DocumentStore, deps.MaxUploadSize)
	queryHandler := handlers.NewQueryHandler(deps.RAGEngine)
	healthHandler := handlers.NewHealthHandler(deps.Index, deps.VectorStore)

	// Register API routes
	r.Route("/api", func(r chi.Router) {
		r.Route("/documents", func(r chi.Router) {
			r.Post("/", documentsHandler.Upload)
			r.Get("/", documentsHandler.List)
			r.Get("/{id}", documentsHandler.Get)
			r.Delete("/{id}", documentsHandler.Delete)
			r.Post("/{id}/reprocess", documentsHandler.Reprocess)
		})
		r.Method(http.MethodPost, "/query", queryHandler)
		r.Method(http.MethodGet, "/health", healthHandler)
	})

	return r
}
