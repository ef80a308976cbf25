package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	storage_mocks "hrdocs-ai/internal/storage/mocks"
	"hrdocs-ai/internal/vectorindex"

	"go.uber.org/mock/gomock"
)

func TestHealthHandler_Healthy(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRows := storage_mocks.NewMockVectorRowStore(ctrl)
	mockRows.EXPECT().ListAll(gomock.Any()).Return(nil, nil)
	mockRows.EXPECT().Count(gomock.Any()).Return(42, nil)

	index := vectorindex.NewMemoryIndex(mockRows)
	if err := index.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	h := NewHealthHandler(index, mockRows)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body.String())
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.VectorCount != 42 {
		t.Errorf("vector count = %d, want 42", resp.VectorCount)
	}
	if resp.Checks["database"] != "ok" || resp.Checks["vector_index"] != "ok" {
		t.Errorf("checks = %v", resp.Checks)
	}
}

func TestHealthHandler_IndexNotLoaded(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRows := storage_mocks.NewMockVectorRowStore(ctrl)
	mockRows.EXPECT().Count(gomock.Any()).Return(0, nil)

	// Index never loaded: the health check must flag it.
	index := vectorindex.NewMemoryIndex(mockRows)
	h := NewHealthHandler(index, mockRows)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", rec.Code)
	}

	var resp HealthResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.Status != "unhealthy" {
		t.Errorf("status = %q", resp.Status)
	}
	if resp.Checks["vector_index"] != "error" {
		t.Errorf("checks = %v", resp.Checks)
	}
}

func TestHealthHandler_DatabaseDown(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRows := storage_mocks.NewMockVectorRowStore(ctrl)
	mockRows.EXPECT().ListAll(gomock.Any()).Return(nil, nil)
	mockRows.EXPECT().Count(gomock.Any()).Return(0, errors.New("database locked"))

	index := vectorindex.NewMemoryIndex(mockRows)
	if err := index.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	h := NewHealthHandler(index, mockRows)

	req := httptest.NewRequest(http.MethodGet, "/api/health", nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
