package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"

	"github.com/go-chi/chi/v5"

	"hrdocs-ai/internal/contextutil"
	"hrdocs-ai/internal/indexer"
	"hrdocs-ai/internal/storage"
)

// Formats accepted for upload. Anything else is rejected before the
// document touches the pipeline.
var allowedExtensions = map[string]bool{
	".pdf":  true,
	".docx": true,
}

// DocumentPipeline is the slice of the indexer pipeline the document
// handlers drive.
type DocumentPipeline interface {
	Upload(ctx context.Context, data []byte, filename, contentType, userID string) (string, error)
	Reprocess(ctx context.Context, id string) error
	Delete(ctx context.Context, id string) error
}

// DocumentsHandler handles HTTP requests for document lifecycle operations.
type DocumentsHandler struct {
	pipeline      DocumentPipeline
	docs          storage.DocumentStore
	maxUploadSize int64
}

// NewDocumentsHandler creates a new DocumentsHandler.
func NewDocumentsHandler(pipeline DocumentPipeline, docs storage.DocumentStore, maxUploadSize int64) *DocumentsHandler {
	return &DocumentsHandler{
		pipeline:      pipeline,
		docs:          docs,
		maxUploadSize: maxUploadSize,
	}
}

// UploadResponse represents the HTTP response for a document upload.
//
// swagger:model UploadResponse
type UploadResponse struct {
	DocumentID string `json:"document_id"`
	Status     string `json:"status"`
}

// DocumentResponse represents a document in list and get responses.
//
// swagger:model DocumentResponse
type DocumentResponse struct {
	ID          string `json:"id"`
	Filename    string `json:"filename"`
	ContentType string `json:"content_type"`
	Size        int64  `json:"size"`
	Status      string `json:"status"`
	UploadedAt  string `json:"uploaded_at"`
}

// ErrorResponse represents an error response.
//
// swagger:model ErrorResponse
type ErrorResponse struct {
	Error string `json:"error"`
}

// Upload handles document uploads.
//
// swagger:route POST /api/documents uploadDocument
//
// # Upload a document
//
// Accepts a multipart form with a "file" field. Supported formats are PDF
// and DOCX. The document is stored immediately and indexed asynchronously;
// poll the document status to see when it becomes searchable.
//
// responses:
//
//	'202':
//	  description: Document accepted for processing
//	  schema:
//	    "$ref": "#/definitions/UploadResponse"
//	'400':
//	  description: Missing file, unsupported format, or file too large
//	  schema:
//	    "$ref": "#/definitions/ErrorResponse"
func (h *DocumentsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	r.Body = http.MaxBytesReader(w, r.Body, h.maxUploadSize)
	if err := r.ParseMultipartForm(h.maxUploadSize); err != nil {
		logger.WarnContext(ctx, "failed to parse multipart form", "error", err)
		writeError(w, http.StatusBadRequest, "Invalid multipart form or file too large")
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		logger.WarnContext(ctx, "missing file field in upload", "error", err)
		writeError(w, http.StatusBadRequest, "A \"file\" form field is required")
		return
	}
	defer file.Close()

	ext := strings.ToLower(filepath.Ext(header.Filename))
	if !allowedExtensions[ext] {
		logger.WarnContext(ctx, "unsupported upload format", "filename", header.Filename)
		writeError(w, http.StatusBadRequest, fmt.Sprintf("Unsupported file format: %s (only PDF and DOCX are accepted)", ext))
		return
	}

	data, err := io.ReadAll(file)
	if err != nil {
		logger.ErrorContext(ctx, "failed to read uploaded file", "error", err)
		writeError(w, http.StatusBadRequest, "Failed to read uploaded file")
		return
	}
	if len(data) == 0 {
		logger.WarnContext(ctx, "empty file uploaded", "filename", header.Filename)
		writeError(w, http.StatusBadRequest, "Uploaded file is empty")
		return
	}

	userID := r.FormValue("user_id")

	id, err := h.pipeline.Upload(ctx, data, header.Filename, header.Header.Get("Content-Type"), userID)
	if err != nil {
		logger.ErrorContext(ctx, "failed to accept upload", "error", err, "filename", header.Filename)
		writeError(w, http.StatusInternalServerError, "Failed to store document")
		return
	}

	logger.InfoContext(ctx, "document accepted", "document_id", id, "filename", header.Filename, "size", len(data))

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(UploadResponse{
		DocumentID: id,
		Status:     storage.StatusProcessing,
	})
}

// List handles listing documents.
//
// swagger:route GET /api/documents listDocuments
//
// # List documents
//
// Returns all documents, newest first. An optional `user_id` query
// parameter restricts the list to a single user's documents.
//
// responses:
//
//	'200':
//	  description: List of documents
func (h *DocumentsHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	docs, err := h.docs.List(ctx, r.URL.Query().Get("user_id"))
	if err != nil {
		logger.ErrorContext(ctx, "failed to list documents", "error", err)
		writeError(w, http.StatusInternalServerError, "Failed to list documents")
		return
	}

	resp := make([]DocumentResponse, 0, len(docs))
	for _, doc := range docs {
		resp = append(resp, toDocumentResponse(doc))
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// Get handles fetching a single document by ID.
//
// swagger:route GET /api/documents/{id} getDocument
//
// # Get a document
//
// responses:
//
//	'200':
//	  description: The document
//	  schema:
//	    "$ref": "#/definitions/DocumentResponse"
//	'404':
//	  description: Document not found
func (h *DocumentsHandler) Get(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	doc, err := h.docs.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		logger.ErrorContext(ctx, "failed to get document", "error", err, "document_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to get document")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(toDocumentResponse(doc))
}

// Delete handles deleting a document and all of its derived data.
//
// swagger:route DELETE /api/documents/{id} deleteDocument
//
// # Delete a document
//
// Removes the document record, its stored file, and every vector derived
// from it. Queries issued after deletion never surface the document.
//
// responses:
//
//	'204':
//	  description: Document deleted
//	'404':
//	  description: Document not found
func (h *DocumentsHandler) Delete(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	if err := h.pipeline.Delete(ctx, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, http.StatusNotFound, "Document not found")
			return
		}
		logger.ErrorContext(ctx, "failed to delete document", "error", err, "document_id", id)
		writeError(w, http.StatusInternalServerError, "Failed to delete document")
		return
	}

	logger.InfoContext(ctx, "document deleted", "document_id", id)
	w.WriteHeader(http.StatusNoContent)
}

// Reprocess handles re-running extraction and indexing for a document.
//
// swagger:route POST /api/documents/{id}/reprocess reprocessDocument
//
// # Reprocess a document
//
// Re-extracts, re-chunks, and re-embeds the stored file. Useful after a
// failed run or when chunking parameters change. Only one processing run
// per document is allowed at a time.
//
// responses:
//
//	'202':
//	  description: Reprocessing started
//	  schema:
//	    "$ref": "#/definitions/UploadResponse"
//	'404':
//	  description: Document not found
//	'409':
//	  description: Document is already being processed
func (h *DocumentsHandler) Reprocess(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	logger := contextutil.LoggerFromContext(ctx)

	id := chi.URLParam(r, "id")
	if err := h.pipeline.Reprocess(ctx, id); err != nil {
		switch {
		case errors.Is(err, storage.ErrNotFound):
			writeError(w, http.StatusNotFound, "Document not found")
		case errors.Is(err, indexer.ErrAlreadyProcessing):
			writeError(w, http.StatusConflict, "Document is already being processed")
		default:
			logger.ErrorContext(ctx, "failed to reprocess document", "error", err, "document_id", id)
			writeError(w, http.StatusInternalServerError, "Failed to reprocess document")
		}
		return
	}

	logger.InfoContext(ctx, "document reprocessing started", "document_id", id)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	_ = json.NewEncoder(w).Encode(UploadResponse{
		DocumentID: id,
		Status:     storage.StatusProcessing,
	})
}

func toDocumentResponse(doc *storage.DocumentRecord) DocumentResponse {
	return DocumentResponse{
		ID:          doc.ID,
		Filename:    doc.Filename,
		ContentType: doc.ContentType,
		Size:        doc.Size,
		Status:      doc.Status,
		UploadedAt:  doc.UploadedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, statusCode int, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	_ = json.NewEncoder(w).Encode(ErrorResponse{
		Error: message,
	})
}
