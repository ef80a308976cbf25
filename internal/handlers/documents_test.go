package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"hrdocs-ai/internal/indexer"
	"hrdocs-ai/internal/storage"
	storage_mocks "hrdocs-ai/internal/storage/mocks"

	"go.uber.org/mock/gomock"
)

type fakePipeline struct {
	uploadID     string
	uploadErr    error
	reprocessErr error
	deleteErr    error

	gotFilename string
	gotUserID   string
	gotData     []byte
	gotID       string
}

func (f *fakePipeline) Upload(_ context.Context, data []byte, filename, contentType, userID string) (string, error) {
	f.gotData = data
	f.gotFilename = filename
	f.gotUserID = userID
	return f.uploadID, f.uploadErr
}

func (f *fakePipeline) Reprocess(_ context.Context, id string) error {
	f.gotID = id
	return f.reprocessErr
}

func (f *fakePipeline) Delete(_ context.Context, id string) error {
	f.gotID = id
	return f.deleteErr
}

func multipartBody(t *testing.T, field, filename string, data []byte) (*bytes.Buffer, string) {
	t.Helper()

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		t.Fatalf("CreateFormFile() error = %v", err)
	}
	if _, err := fw.Write(data); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	return &buf, mw.FormDataContentType()
}

func withURLParam(r *http.Request, key, value string) *http.Request {
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add(key, value)
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

func TestDocumentsHandler_Upload(t *testing.T) {
	pipeline := &fakePipeline{uploadID: "doc-1"}
	h := NewDocumentsHandler(pipeline, nil, 1<<20)

	body, contentType := multipartBody(t, "file", "handbook.pdf", []byte("%PDF-1.4 content"))
	req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	h.Upload(rec, req)

	if rec.Code != http.StatusAccepted {
		t.Fatalf("status = %d, want 202; body: %s", rec.Code, rec.Body.String())
	}

	var resp UploadResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if resp.DocumentID != "doc-1" || resp.Status != storage.StatusProcessing {
		t.Errorf("response = %+v", resp)
	}
	if pipeline.gotFilename != "handbook.pdf" {
		t.Errorf("pipeline got filename %q", pipeline.gotFilename)
	}
	if !bytes.Equal(pipeline.gotData, []byte("%PDF-1.4 content")) {
		t.Errorf("pipeline got data %q", pipeline.gotData)
	}
}

func TestDocumentsHandler_UploadRejectsBadRequests(t *testing.T) {
	tests := []struct {
		name     string
		field    string
		filename string
		data     []byte
	}{
		{name: "unsupported extension", field: "file", filename: "notes.txt", data: []byte("text")},
		{name: "missing file field", field: "attachment", filename: "a.pdf", data: []byte("x")},
		{name: "empty file", field: "file", filename: "a.pdf", data: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &fakePipeline{uploadID: "ignored"}
			h := NewDocumentsHandler(pipeline, nil, 1<<20)

			body, contentType := multipartBody(t, tt.field, tt.filename, tt.data)
			req := httptest.NewRequest(http.MethodPost, "/api/documents", body)
			req.Header.Set("Content-Type", contentType)
			rec := httptest.NewRecorder()

			h.Upload(rec, req)

			if rec.Code != http.StatusBadRequest {
				t.Errorf("status = %d, want 400", rec.Code)
			}
			if pipeline.gotFilename != "" {
				t.Error("pipeline called despite invalid request")
			}
		})
	}
}

func TestDocumentsHandler_List(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockDocs.EXPECT().List(gomock.Any(), "u1").Return([]*storage.DocumentRecord{
		{ID: "doc-1", Filename: "a.pdf", Status: storage.StatusIndexed, UploadedAt: time.Now()},
		{ID: "doc-2", Filename: "b.docx", Status: storage.StatusProcessing, UploadedAt: time.Now()},
	}, nil)

	h := NewDocumentsHandler(&fakePipeline{}, mockDocs, 1<<20)

	req := httptest.NewRequest(http.MethodGet, "/api/documents?user_id=u1", nil)
	rec := httptest.NewRecorder()
	h.List(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	var resp []DocumentResponse
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(resp) != 2 || resp[0].ID != "doc-1" || resp[1].Status != storage.StatusProcessing {
		t.Errorf("response = %+v", resp)
	}
}

func TestDocumentsHandler_Get(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockDocs.EXPECT().GetByID(gomock.Any(), "doc-1").Return(&storage.DocumentRecord{
		ID: "doc-1", Filename: "a.pdf", Status: storage.StatusIndexed, UploadedAt: time.Now(),
	}, nil)

	h := NewDocumentsHandler(&fakePipeline{}, mockDocs, 1<<20)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/documents/doc-1", nil), "id", "doc-1")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
}

func TestDocumentsHandler_GetNotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockDocs := storage_mocks.NewMockDocumentStore(ctrl)
	mockDocs.EXPECT().GetByID(gomock.Any(), "missing").Return(nil, storage.ErrNotFound)

	h := NewDocumentsHandler(&fakePipeline{}, mockDocs, 1<<20)

	req := withURLParam(httptest.NewRequest(http.MethodGet, "/api/documents/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()
	h.Get(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDocumentsHandler_Delete(t *testing.T) {
	pipeline := &fakePipeline{}
	h := NewDocumentsHandler(pipeline, nil, 1<<20)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/documents/doc-1", nil), "id", "doc-1")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNoContent {
		t.Errorf("status = %d, want 204", rec.Code)
	}
	if pipeline.gotID != "doc-1" {
		t.Errorf("pipeline got ID %q", pipeline.gotID)
	}
}

func TestDocumentsHandler_DeleteNotFound(t *testing.T) {
	pipeline := &fakePipeline{deleteErr: storage.ErrNotFound}
	h := NewDocumentsHandler(pipeline, nil, 1<<20)

	req := withURLParam(httptest.NewRequest(http.MethodDelete, "/api/documents/missing", nil), "id", "missing")
	rec := httptest.NewRecorder()
	h.Delete(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestDocumentsHandler_Reprocess(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{name: "accepted", err: nil, wantStatus: http.StatusAccepted},
		{name: "not found", err: storage.ErrNotFound, wantStatus: http.StatusNotFound},
		{name: "already in flight", err: indexer.ErrAlreadyProcessing, wantStatus: http.StatusConflict},
		{name: "other failure", err: errors.New("boom"), wantStatus: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pipeline := &fakePipeline{reprocessErr: tt.err}
			h := NewDocumentsHandler(pipeline, nil, 1<<20)

			req := withURLParam(httptest.NewRequest(http.MethodPost, "/api/documents/doc-1/reprocess", nil), "id", "doc-1")
			rec := httptest.NewRecorder()
			h.Reprocess(rec, req)

			if rec.Code != tt.wantStatus {
				t.Errorf("status = %d, want %d", rec.Code, tt.wantStatus)
			}
		})
	}
}
