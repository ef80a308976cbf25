package vectorindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"
	"sync"

	"hrdocs-ai/internal/contextutil"
	"hrdocs-ai/internal/storage"
)

// ErrNotLoaded is returned when the index is used before Load has run.
var ErrNotLoaded = errors.New("vector index not loaded")

// MemoryIndex implements Index with an in-process entry list and an
// exhaustive cosine scan per query. Every mutation writes through to the
// vector row store before touching the cache, so a crash never leaves an
// indexed document unaccounted for. The scale assumption is that the whole
// index fits in memory; no approximate-nearest-neighbor structure is used.
type MemoryIndex struct {
	rows storage.VectorRowStore

	mu      sync.RWMutex
	entries []Entry
	loaded  bool
}

// NewMemoryIndex creates a memory index backed by the given row store.
// Load must be called once before use.
func NewMemoryIndex(rows storage.VectorRowStore) *MemoryIndex {
	return &MemoryIndex{rows: rows}
}

// Load populates the cache from the durable store. It runs exactly once per
// process; subsequent calls are no-ops.
func (m *MemoryIndex) Load(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.loaded {
		return nil
	}

	records, err := m.rows.ListAll(ctx)
	if err != nil {
		return fmt.Errorf("failed to load vector index: %w", err)
	}

	m.entries = make([]Entry, 0, len(records))
	for _, rec := range records {
		m.entries = append(m.entries, Entry{
			ID:           rec.ID,
			DocumentID:   rec.DocumentID,
			DocumentName: rec.DocumentName,
			Text:         rec.Text,
			ChunkIndex:   rec.ChunkIndex,
			TotalChunks:  rec.TotalChunks,
			Vector:       rec.Embedding,
		})
	}
	m.loaded = true
	return nil
}

// Ready reports whether Load has completed.
func (m *MemoryIndex) Ready() bool {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.loaded
}

// Len returns the number of entries in the index.
func (m *MemoryIndex) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.entries)
}

// Upsert writes the entry durably, then applies it to the cache. On a
// durable write failure the cache is left untouched and the error is
// returned, so the two never diverge.
func (m *MemoryIndex) Upsert(ctx context.Context, entry Entry) error {
	logger := contextutil.LoggerFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return ErrNotLoaded
	}

	rec := &storage.VectorRecord{
		ID:           entry.ID,
		DocumentID:   entry.DocumentID,
		DocumentName: entry.DocumentName,
		ChunkIndex:   entry.ChunkIndex,
		TotalChunks:  entry.TotalChunks,
		Text:         entry.Text,
		Embedding:    entry.Vector,
	}
	if err := m.rows.Upsert(ctx, rec); err != nil {
		logger.ErrorContext(ctx, "failed to persist vector", "id", entry.ID, "document_id", entry.DocumentID, "error", err)
		return fmt.Errorf("failed to persist vector: %w", err)
	}

	for i := range m.entries {
		if m.entries[i].ID == entry.ID {
			m.entries[i] = entry
			return nil
		}
	}
	m.entries = append(m.entries, entry)
	return nil
}

// Search scans every entry and returns up to k matches ordered by
// descending cosine similarity.
func (m *MemoryIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	m.mu.RLock()
	defer m.mu.RUnlock()

	if !m.loaded {
		return nil, ErrNotLoaded
	}

	matches := make([]Match, 0, len(m.entries))
	for _, e := range m.entries {
		matches = append(matches, Match{
			DocumentID:   e.DocumentID,
			DocumentName: e.DocumentName,
			Text:         e.Text,
			Score:        CosineSimilarity(query, e.Vector),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})

	if len(matches) > k {
		matches = matches[:k]
	}
	return matches, nil
}

// Remove deletes all entries for a document, durable store first. Removing
// an absent document is a no-op.
func (m *MemoryIndex) Remove(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.loaded {
		return ErrNotLoaded
	}

	if err := m.rows.DeleteByDocument(ctx, documentID); err != nil {
		logger.ErrorContext(ctx, "failed to delete vectors", "document_id", documentID, "error", err)
		return fmt.Errorf("failed to delete vectors: %w", err)
	}

	kept := m.entries[:0]
	for _, e := range m.entries {
		if e.DocumentID != documentID {
			kept = append(kept, e)
		}
	}
	m.entries = kept
	return nil
}

// CosineSimilarity computes dot(a,b) / (|a|*|b|). It returns 0 when either
// norm is zero, avoiding division by zero.
func CosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}

	var dot, normA, normB float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
