package storage

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_vector_row_store.go -package=mocks hrdocs-ai/internal/storage VectorRowStore

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
)

// VectorRowStore defines the interface for persisted vector row operations.
// The in-memory index writes through this store so that a crash never loses
// an indexed document silently.
type VectorRowStore interface {
	// Upsert inserts a vector row or replaces an existing one with the same ID.
	Upsert(ctx context.Context, vec *VectorRecord) error
	// ListAll returns every stored vector row. Used to rebuild the in-memory
	// index at process start.
	ListAll(ctx context.Context) ([]*VectorRecord, error)
	// DeleteByDocument removes all vector rows for a document. Deleting a
	// document with no rows is not an error.
	DeleteByDocument(ctx context.Context, documentID string) error
	// Count returns the number of stored vector rows.
	Count(ctx context.Context) (int, error)
}

// VectorRepo provides methods for vector row operations.
// It implements the VectorRowStore interface.
type VectorRepo struct {
	db *sql.DB
}

// NewVectorRepo creates a new VectorRepo.
func NewVectorRepo(db *sql.DB) *VectorRepo {
	return &VectorRepo{db: db}
}

// Upsert inserts a vector row or replaces an existing one with the same ID.
func (r *VectorRepo) Upsert(ctx context.Context, vec *VectorRecord) error {
	embedding, err := json.Marshal(vec.Embedding)
	if err != nil {
		return fmt.Errorf("failed to encode embedding: %w", err)
	}

	_, err = r.db.ExecContext(ctx,
		`INSERT INTO vectors (id, document_id, document_name, chunk_index, total_chunks, text, embedding)
		 VALUES (?, ?, ?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET
		 document_id = excluded.document_id, document_name = excluded.document_name,
		 chunk_index = excluded.chunk_index, total_chunks = excluded.total_chunks,
		 text = excluded.text, embedding = excluded.embedding`,
		vec.ID, vec.DocumentID, vec.DocumentName, vec.ChunkIndex, vec.TotalChunks, vec.Text, string(embedding),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert vector: %w", err)
	}
	return nil
}

// ListAll returns every stored vector row.
func (r *VectorRepo) ListAll(ctx context.Context) ([]*VectorRecord, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, document_id, document_name, chunk_index, total_chunks, text, embedding
		 FROM vectors ORDER BY document_id, chunk_index`,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list vectors: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var vecs []*VectorRecord
	for rows.Next() {
		var vec VectorRecord
		var embedding string
		if err := rows.Scan(&vec.ID, &vec.DocumentID, &vec.DocumentName,
			&vec.ChunkIndex, &vec.TotalChunks, &vec.Text, &embedding); err != nil {
			return nil, fmt.Errorf("failed to scan vector: %w", err)
		}
		if err := json.Unmarshal([]byte(embedding), &vec.Embedding); err != nil {
			return nil, fmt.Errorf("failed to decode embedding for vector %s: %w", vec.ID, err)
		}
		vecs = append(vecs, &vec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate vectors: %w", err)
	}

	return vecs, nil
}

// DeleteByDocument removes all vector rows for a document.
func (r *VectorRepo) DeleteByDocument(ctx context.Context, documentID string) error {
	_, err := r.db.ExecContext(ctx, "DELETE FROM vectors WHERE document_id = ?", documentID)
	if err != nil {
		return fmt.Errorf("failed to delete vectors for document %s: %w", documentID, err)
	}
	return nil
}

// Count returns the number of stored vector rows.
func (r *VectorRepo) Count(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM vectors").Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count vectors: %w", err)
	}
	return count, nil
}
