package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"hrdocs-ai/internal/contextutil"
	"hrdocs-ai/internal/storage"
	"hrdocs-ai/internal/vectorindex"
)

// HealthHandler handles HTTP requests for health checks.
type HealthHandler struct {
	index              vectorindex.Index
	vectors            storage.VectorRowStore
	healthCheckTimeout time.Duration
}

// NewHealthHandler creates a new HealthHandler.
func NewHealthHandler(index vectorindex.Index, vectors storage.VectorRowStore) *HealthHandler {
	return &HealthHandler{
		index:              index,
		vectors:            vectors,
		healthCheckTimeout: 5 * time.Second,
	}
}

// HealthResponse represents the health check response.
//
// swagger:model HealthResponse
type HealthResponse struct {
	// Overall health status: "healthy" or "unhealthy"
	Status string `json:"status"`

	// Timestamp of the health check
	Timestamp string `json:"timestamp"`

	// Individual check results
	Checks map[string]string `json:"checks"`

	// VectorCount is the number of indexed vectors, when known
	VectorCount int `json:"vector_count"`

	// List of issues (only present if status is unhealthy)
	Issues []string `json:"issues,omitempty"`
}

// ServeHTTP handles HTTP requests for health checks.
//
// Check the health status of the system and its dependencies.
// Returns 200 OK if healthy, 503 Service Unavailable otherwise.
//
// swagger:route GET /api/health healthCheck
//
// # Health check endpoint
//
// responses:
//
//	'200':
//	  description: System is healthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
//	'503':
//	  description: System is unhealthy
//	  schema:
//	    "$ref": "#/definitions/HealthResponse"
func (h *HealthHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodGet {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	checkCtx, cancel := context.WithTimeout(ctx, h.healthCheckTimeout)
	defer cancel()

	checks := make(map[string]string)
	var issues []string

	vectorCount, err := h.vectors.Count(checkCtx)
	if err != nil {
		logger.WarnContext(ctx, "database health check failed", "error", err)
		checks["database"] = "error"
		issues = append(issues, "database_unavailable")
	} else {
		checks["database"] = "ok"
	}

	if err := h.checkIndex(checkCtx); err != nil {
		logger.WarnContext(ctx, "vector index health check failed", "error", err)
		checks["vector_index"] = "error"
		issues = append(issues, "vector_index_unavailable")
	} else {
		checks["vector_index"] = "ok"
	}

	status := "healthy"
	httpStatus := http.StatusOK
	if len(issues) > 0 {
		status = "unhealthy"
		httpStatus = http.StatusServiceUnavailable
	}

	response := HealthResponse{
		Status:      status,
		Timestamp:   time.Now().UTC().Format(time.RFC3339),
		Checks:      checks,
		VectorCount: vectorCount,
	}
	if len(issues) > 0 {
		response.Issues = issues
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(httpStatus)

	if err := json.NewEncoder(w).Encode(response); err != nil {
		logger.ErrorContext(ctx, "failed to encode health response", "error", err)
	}
}

// checkIndex verifies the vector index is usable. The in-memory index
// reports readiness directly; the Qdrant index is probed remotely.
func (h *HealthHandler) checkIndex(ctx context.Context) error {
	switch idx := h.index.(type) {
	case *vectorindex.MemoryIndex:
		if !idx.Ready() {
			return vectorindex.ErrNotLoaded
		}
		return nil
	case *vectorindex.QdrantIndex:
		return idx.HealthCheck(ctx)
	default:
		return nil
	}
}
