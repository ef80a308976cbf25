package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"hrdocs-ai/internal/contextutil"
	"hrdocs-ai/internal/rag"
)

// QueryHandler handles HTTP requests for document Q&A queries.
type QueryHandler struct {
	ragEngine rag.Engine
}

// NewQueryHandler creates a new QueryHandler.
func NewQueryHandler(ragEngine rag.Engine) *QueryHandler {
	return &QueryHandler{ragEngine: ragEngine}
}

// QueryRequest represents the HTTP request payload for document queries.
//
// swagger:model QueryRequest
type QueryRequest struct {
	Question string `json:"question"`
}

// QueryResponse represents the HTTP response payload for document queries.
//
// swagger:model QueryResponse
type QueryResponse struct {
	// The generated answer, grounded in the uploaded documents
	Answer string `json:"answer"`

	// The documents the answer was drawn from
	Sources []rag.Source `json:"sources"`
}

// ServeHTTP handles HTTP requests for document queries.
//
// Ask a question about the uploaded documents. The system retrieves the
// most relevant chunks across all indexed documents and generates an
// answer grounded in them.
//
// swagger:route POST /api/query queryDocuments
//
// # Query the uploaded documents
//
// responses:
//
//	'200':
//	  description: Answer with source references
//	  schema:
//	    "$ref": "#/definitions/QueryResponse"
//	'400':
//	  description: Invalid or empty question
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
//	'502':
//	  description: Embedding provider error
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *QueryHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	if r.Method != http.MethodPost {
		logger.WarnContext(ctx, "method not allowed", "method", r.Method)
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	var req QueryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		logger.WarnContext(ctx, "invalid request body", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	req.Question = strings.TrimSpace(req.Question)
	if req.Question == "" {
		logger.WarnContext(ctx, "empty question in request")
		writeError(w, http.StatusBadRequest, "Question is required")
		return
	}

	result, err := h.ragEngine.Answer(ctx, req.Question)
	if err != nil {
		logger.ErrorContext(ctx, "query failed", "error", err)
		// The engine only fails hard when the question itself cannot be
		// embedded or the index cannot be searched.
		writeError(w, http.StatusBadGateway, "Failed to process query")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(QueryResponse{
		Answer:  result.Answer,
		Sources: result.Sources,
	}); err != nil {
		logger.ErrorContext(ctx, "failed to encode response", "error", err)
	}
}
