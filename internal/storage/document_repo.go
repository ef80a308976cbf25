package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_document_store.go -package=mocks hrdocs-ai/internal/storage DocumentStore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

var (
	// ErrNotFound is returned when a record is not found.
	ErrNotFound = errors.New("record not found")
)

// DocumentStore defines the interface for document row operations.
type DocumentStore interface {
	// Insert inserts a new document row. The document ID must already be set.
	Insert(ctx context.Context, doc *DocumentRecord) error
	// GetByID gets a document by its ID. Returns ErrNotFound if not found.
	GetByID(ctx context.Context, id string) (*DocumentRecord, error)
	// List returns all documents, newest first. When userID is non-empty,
	// results are restricted to that user.
	List(ctx context.Context, userID string) ([]*DocumentRecord, error)
	// UpdateStatus sets the status of a document. Returns ErrNotFound if the
	// document does not exist.
	UpdateStatus(ctx context.Context, id, status string) error
	// Delete removes a document row. Vector rows cascade via foreign key.
	Delete(ctx context.Context, id string) error
}

// DocumentRepo provides methods for document operations.
// It implements the DocumentStore interface.
type DocumentRepo struct {
	db *sql.DB
}

// NewDocumentRepo creates a new DocumentRepo.
func NewDocumentRepo(db *sql.DB) *DocumentRepo {
	return &DocumentRepo{db: db}
}

// Insert inserts a new document row.
func (r *DocumentRepo) Insert(ctx context.Context, doc *DocumentRecord) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO documents (id, user_id, filename, content_type, size, blob_key, status, uploaded_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP)`,
		doc.ID, doc.UserID, doc.Filename, doc.ContentType, doc.Size, doc.BlobKey, doc.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to insert document: %w", err)
	}
	return nil
}

// GetByID gets a document by its ID. Returns ErrNotFound if not found.
func (r *DocumentRepo) GetByID(ctx context.Context, id string) (*DocumentRecord, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT id, user_id, filename, content_type, size, blob_key, status, uploaded_at
		 FROM documents WHERE id = ?`, id,
	)

	doc, err := scanDocument(row)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query document: %w", err)
	}
	return doc, nil
}

// List returns all documents, newest first, optionally filtered by user.
func (r *DocumentRepo) List(ctx context.Context, userID string) ([]*DocumentRecord, error) {
	query := `SELECT id, user_id, filename, content_type, size, blob_key, status, uploaded_at
		 FROM documents`
	args := []any{}
	if userID != "" {
		query += " WHERE user_id = ?"
		args = append(args, userID)
	}
	query += " ORDER BY uploaded_at DESC, id"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var docs []*DocumentRecord
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan document: %w", err)
		}
		docs = append(docs, doc)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate documents: %w", err)
	}

	return docs, nil
}

// UpdateStatus sets the status of a document.
func (r *DocumentRepo) UpdateStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE documents SET status = ? WHERE id = ?", status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update document status: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check affected rows: %w", err)
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes a document row. Vector rows cascade via foreign key.
func (r *DocumentRepo) Delete(ctx context.Context, id string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM documents WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}
	return nil
}

// scanner abstracts *sql.Row and *sql.Rows for scanDocument.
type scanner interface {
	Scan(dest ...any) error
}

func scanDocument(s scanner) (*DocumentRecord, error) {
	var doc DocumentRecord
	var uploadedAtStr string

	err := s.Scan(&doc.ID, &doc.UserID, &doc.Filename, &doc.ContentType,
		&doc.Size, &doc.BlobKey, &doc.Status, &uploadedAtStr)
	if err != nil {
		return nil, err
	}

	// Parse uploaded_at DATETIME string
	doc.UploadedAt, err = time.Parse("2006-01-02 15:04:05", uploadedAtStr)
	if err != nil {
		// Try alternative format (SQLite might use different format)
		doc.UploadedAt, err = time.Parse(time.RFC3339, uploadedAtStr)
		if err != nil {
			return nil, fmt.Errorf("failed to parse uploaded_at timestamp: %w", err)
		}
	}

	return &doc, nil
}
