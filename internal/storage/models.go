package storage

import "time"

// Document status values. Transitions are owned by the indexer pipeline:
// processing -> indexed on success, processing -> failed on any pipeline
// error, failed/indexed -> processing on explicit reprocess.
const (
	StatusProcessing = "processing"
	StatusIndexed    = "indexed"
	StatusFailed     = "failed"
)

// DocumentRecord represents an uploaded document in the database.
type DocumentRecord struct {
	ID          string // UUID
	UserID      string // Owning user reference
	Filename    string // Original filename as uploaded
	ContentType string // MIME type declared at upload
	Size        int64  // Size in bytes
	BlobKey     string // Locator for the raw bytes in the blob store
	Status      string // processing | indexed | failed
	UploadedAt  time.Time
}

// VectorRecord is the durable form of one indexed vector. The in-memory
// index is rebuilt from these rows at process start.
type VectorRecord struct {
	ID           string    // UUID (same as the in-memory entry ID)
	DocumentID   string    // Foreign key to documents.id
	DocumentName string    // Denormalized filename for result rendering
	ChunkIndex   int       // Index within document (0 when indexed whole)
	TotalChunks  int       // Total chunks for the document (1 when whole)
	Text         string    // Chunk text content
	Embedding    []float32 // Fixed-dimension embedding vector
}
