package vectorindex

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_index.go -package=mocks hrdocs-ai/internal/vectorindex Index

import "context"

// Entry is one indexed vector with its source metadata.
type Entry struct {
	ID           string
	DocumentID   string
	DocumentName string
	Text         string
	ChunkIndex   int
	TotalChunks  int
	Vector       []float32
}

// Match is one ranked result from a similarity search.
type Match struct {
	DocumentID   string
	DocumentName string
	Text         string
	Score        float64
}

// Index defines the interface for vector index operations.
type Index interface {
	// Upsert appends or replaces an entry. The durable backing must be
	// synchronized before the call returns.
	Upsert(ctx context.Context, entry Entry) error

	// Search returns up to k matches ordered by descending cosine
	// similarity to the query vector.
	Search(ctx context.Context, query []float32, k int) ([]Match, error)

	// Remove deletes all entries for a document. Removing a document with
	// no entries is not an error.
	Remove(ctx context.Context, documentID string) error
}
