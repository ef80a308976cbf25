package indexer

//go:generate go run go.uber.org/mock/mockgen@latest -destination=mocks/mock_embedder.go -package=mocks hrdocs-ai/internal/indexer Embedder

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"

	"github.com/google/uuid"

	"hrdocs-ai/internal/blob"
	"hrdocs-ai/internal/contextutil"
	"hrdocs-ai/internal/extract"
	"hrdocs-ai/internal/storage"
	"hrdocs-ai/internal/vectorindex"
)

// ErrAlreadyProcessing is returned when a document already has a pipeline
// run in flight. Callers retry after the current run settles.
var ErrAlreadyProcessing = errors.New("document is already being processed")

// Embedder turns text segments into fixed-length vectors.
type Embedder interface {
	EmbedTexts(ctx context.Context, texts []string) ([][]float32, error)
}

// Options configures how documents are turned into index entries.
type Options struct {
	// ChunkSize and ChunkOverlap parameterize the chunker.
	ChunkSize    int
	ChunkOverlap int
	// ChunkDocuments selects chunked embedding. When false, each document
	// is embedded as a single unit (chunk 0 of 1); metadata is kept either
	// way.
	ChunkDocuments bool
}

// Pipeline owns the document lifecycle: it drives extraction, chunking,
// embedding, and indexing, and is the only writer of document status.
type Pipeline struct {
	docs      storage.DocumentStore
	blobs     blob.Store
	index     vectorindex.Index
	embedder  Embedder
	extractor *extract.Extractor
	opts      Options

	mu       sync.Mutex
	inFlight map[string]struct{}
}

// NewPipeline creates a new document pipeline.
func NewPipeline(
	docs storage.DocumentStore,
	blobs blob.Store,
	index vectorindex.Index,
	embedder Embedder,
	opts Options,
) *Pipeline {
	if opts.ChunkSize <= 0 {
		opts.ChunkSize = DefaultChunkSize
	}
	if opts.ChunkOverlap < 0 {
		opts.ChunkOverlap = DefaultChunkOverlap
	}
	return &Pipeline{
		docs:      docs,
		blobs:     blobs,
		index:     index,
		embedder:  embedder,
		extractor: extract.New(),
		opts:      opts,
		inFlight:  make(map[string]struct{}),
	}
}

// Upload stores the raw bytes, creates the document row in processing
// state, and starts a background pipeline run. It returns the new document
// ID immediately; the caller is never blocked on processing.
func (p *Pipeline) Upload(ctx context.Context, data []byte, filename, contentType, userID string) (string, error) {
	logger := contextutil.LoggerFromContext(ctx)

	id := uuid.New().String()
	blobName := id + filepath.Ext(filename)

	blobKey, err := p.blobs.Store(ctx, blobName, data)
	if err != nil {
		return "", fmt.Errorf("failed to store document bytes: %w", err)
	}

	doc := &storage.DocumentRecord{
		ID:          id,
		UserID:      userID,
		Filename:    filename,
		ContentType: contentType,
		Size:        int64(len(data)),
		BlobKey:     blobKey,
		Status:      storage.StatusProcessing,
	}
	if err := p.docs.Insert(ctx, doc); err != nil {
		// Roll back the blob so no orphaned bytes remain.
		_ = p.blobs.Delete(ctx, blobKey)
		return "", fmt.Errorf("failed to create document: %w", err)
	}

	logger.InfoContext(ctx, "document uploaded", "document_id", id, "filename", filename, "size", len(data))

	if !p.tryAcquire(id) {
		// A fresh UUID cannot be in flight; treat as a programmer error.
		return "", ErrAlreadyProcessing
	}
	go p.run(context.WithoutCancel(ctx), id)

	return id, nil
}

// Reprocess resets a failed or indexed document to processing and re-runs
// the full pipeline in the background. Previously indexed vectors are
// purged before new ones are written, so no stale hits survive.
func (p *Pipeline) Reprocess(ctx context.Context, id string) error {
	if _, err := p.docs.GetByID(ctx, id); err != nil {
		return err
	}

	if !p.tryAcquire(id) {
		return ErrAlreadyProcessing
	}

	if err := p.docs.UpdateStatus(ctx, id, storage.StatusProcessing); err != nil {
		p.release(id)
		return fmt.Errorf("failed to reset document status: %w", err)
	}

	go p.run(context.WithoutCancel(ctx), id)
	return nil
}

// Delete removes a document: its index entries first so no stale search
// hits survive a partial failure, then its stored bytes, then its row.
func (p *Pipeline) Delete(ctx context.Context, id string) error {
	doc, err := p.docs.GetByID(ctx, id)
	if err != nil {
		return err
	}

	if err := p.index.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to remove index entries: %w", err)
	}
	if err := p.blobs.Delete(ctx, doc.BlobKey); err != nil {
		return fmt.Errorf("failed to delete document bytes: %w", err)
	}
	if err := p.docs.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete document: %w", err)
	}

	contextutil.LoggerFromContext(ctx).InfoContext(ctx, "document deleted", "document_id", id)
	return nil
}

// run executes one pipeline run for a document and releases its
// single-flight slot when done. Errors are converted into a failed status
// and a log record; nothing escapes the background goroutine.
func (p *Pipeline) run(ctx context.Context, id string) {
	defer p.release(id)

	if err := p.process(ctx, id); err != nil {
		p.fail(ctx, id, err)
	}
}

// process runs extraction, chunking, embedding, and indexing for one
// document and writes the final indexed status. The stages are strictly
// ordered within a document; runs for different documents may interleave.
func (p *Pipeline) process(ctx context.Context, id string) error {
	logger := contextutil.LoggerFromContext(ctx)

	doc, err := p.docs.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("failed to load document: %w", err)
	}

	data, err := p.blobs.Fetch(ctx, doc.BlobKey)
	if err != nil {
		return fmt.Errorf("failed to fetch document bytes: %w", err)
	}

	text, err := p.extractor.Extract(data, doc.Filename)
	if err != nil {
		return fmt.Errorf("extraction failed: %w", err)
	}

	var texts []string
	if p.opts.ChunkDocuments {
		texts = chunkTexts(text, p.opts.ChunkSize, p.opts.ChunkOverlap)
	} else {
		texts = []string{text}
	}
	if len(texts) == 0 {
		return fmt.Errorf("chunking produced no segments: %w", extract.ErrEmptyExtraction)
	}

	vectors, err := p.embedder.EmbedTexts(ctx, texts)
	if err != nil {
		return fmt.Errorf("embedding failed: %w", err)
	}
	if len(vectors) != len(texts) {
		return fmt.Errorf("embedding count mismatch: expected %d, got %d", len(texts), len(vectors))
	}

	// Purge any vectors from a previous run before writing new ones, so a
	// reprocessed document never produces duplicate stale hits.
	if err := p.index.Remove(ctx, id); err != nil {
		return fmt.Errorf("failed to purge old index entries: %w", err)
	}

	for i, segment := range texts {
		entry := vectorindex.Entry{
			ID:           uuid.New().String(),
			DocumentID:   id,
			DocumentName: doc.Filename,
			Text:         segment,
			ChunkIndex:   i,
			TotalChunks:  len(texts),
			Vector:       vectors[i],
		}
		if err := p.index.Upsert(ctx, entry); err != nil {
			return fmt.Errorf("failed to index chunk %d: %w", i, err)
		}
	}

	if err := p.docs.UpdateStatus(ctx, id, storage.StatusIndexed); err != nil {
		return fmt.Errorf("failed to mark document indexed: %w", err)
	}

	logger.InfoContext(ctx, "document indexed", "document_id", id, "filename", doc.Filename, "chunks", len(texts))
	return nil
}

// fail forces the document into failed state and logs the original error.
// Empty extractions and unsupported formats are expected input problems and
// log at warn; everything else is an error.
func (p *Pipeline) fail(ctx context.Context, id string, cause error) {
	logger := contextutil.LoggerFromContext(ctx)

	switch {
	case errors.Is(cause, extract.ErrEmptyExtraction):
		logger.WarnContext(ctx, "document produced no text", "document_id", id, "error", cause)
	case errors.Is(cause, extract.ErrUnsupportedFormat):
		logger.WarnContext(ctx, "document format not supported", "document_id", id, "error", cause)
	default:
		logger.ErrorContext(ctx, "document processing failed", "document_id", id, "error", cause)
	}

	if err := p.docs.UpdateStatus(ctx, id, storage.StatusFailed); err != nil {
		logger.ErrorContext(ctx, "failed to mark document failed", "document_id", id, "error", err)
	}
}

// tryAcquire takes the single-flight slot for a document ID. It returns
// false when a run is already in flight, preventing two concurrent runs
// from interleaving vector deletion and insertion for the same document.
func (p *Pipeline) tryAcquire(id string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if _, busy := p.inFlight[id]; busy {
		return false
	}
	p.inFlight[id] = struct{}{}
	return true
}

func (p *Pipeline) release(id string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	delete(p.inFlight, id)
}
