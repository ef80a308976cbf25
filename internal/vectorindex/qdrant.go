package vectorindex

import (
	"context"
	"fmt"
	"net/url"
	"strconv"

	"github.com/qdrant/go-client/qdrant"

	"hrdocs-ai/internal/contextutil"
)

// QdrantIndex implements Index using a Qdrant collection. It is an
// alternative to MemoryIndex for deployments where the index should live
// outside the process; Qdrant owns durability and ANN search in that case.
type QdrantIndex struct {
	client     *qdrant.Client
	collection string
}

// NewQdrantIndex creates a Qdrant-backed index client.
// urlStr should be in the format "http://host:port" (e.g., "http://localhost:6333").
// The gRPC port (typically 6334) is derived from the HTTP port.
func NewQdrantIndex(urlStr, collection string) (*QdrantIndex, error) {
	parsedURL, err := url.Parse(urlStr)
	if err != nil {
		return nil, fmt.Errorf("invalid Qdrant URL: %w", err)
	}

	host := parsedURL.Hostname()
	if host == "" {
		host = "localhost"
	}

	port := 6334 // Default gRPC port
	if parsedURL.Port() != "" {
		httpPort, err := strconv.Atoi(parsedURL.Port())
		if err == nil {
			// gRPC port is typically HTTP port + 1
			port = httpPort + 1
		}
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host: host,
		Port: port,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create Qdrant client: %w", err)
	}

	return &QdrantIndex{
		client:     client,
		collection: collection,
	}, nil
}

// EnsureCollection ensures the collection exists with the specified vector
// size, creating it with cosine distance when absent and validating the
// size when present.
func (s *QdrantIndex) EnsureCollection(ctx context.Context, vectorSize int) error {
	logger := contextutil.LoggerFromContext(ctx)

	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}

	if !exists {
		logger.InfoContext(ctx, "creating collection", "collection", s.collection, "vector_size", vectorSize)
		err := s.client.CreateCollection(ctx, &qdrant.CreateCollection{
			CollectionName: s.collection,
			VectorsConfig: qdrant.NewVectorsConfig(&qdrant.VectorParams{
				Size:     uint64(vectorSize),
				Distance: qdrant.Distance_Cosine,
			}),
		})
		if err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}
		return nil
	}

	info, err := s.client.GetCollectionInfo(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to get collection info: %w", err)
	}

	config := info.Config
	if config == nil || config.Params == nil {
		return fmt.Errorf("collection config is invalid")
	}
	vectorsConfig := config.Params.GetVectorsConfig()
	if vectorsConfig == nil {
		return fmt.Errorf("collection vectors config is invalid")
	}
	params := vectorsConfig.GetParams()
	if params == nil {
		return fmt.Errorf("collection vector params are invalid")
	}
	if int(params.Size) != vectorSize {
		return fmt.Errorf("collection vector size mismatch: expected %d, got %d", vectorSize, params.Size)
	}

	return nil
}

// HealthCheck verifies the collection is reachable and present.
func (s *QdrantIndex) HealthCheck(ctx context.Context) error {
	exists, err := s.client.CollectionExists(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("collection %q does not exist", s.collection)
	}
	return nil
}

// Upsert inserts or replaces one entry. Qdrant persists the point before
// acknowledging, so durability holds when the call returns.
func (s *QdrantIndex) Upsert(ctx context.Context, entry Entry) error {
	logger := contextutil.LoggerFromContext(ctx)

	point := &qdrant.PointStruct{
		Id:      qdrant.NewID(entry.ID),
		Vectors: qdrant.NewVectors(entry.Vector...),
		Payload: qdrant.NewValueMap(map[string]any{
			"document_id":   entry.DocumentID,
			"document_name": entry.DocumentName,
			"text":          entry.Text,
			"chunk_index":   entry.ChunkIndex,
			"total_chunks":  entry.TotalChunks,
		}),
	}

	_, err := s.client.Upsert(ctx, &qdrant.UpsertPoints{
		CollectionName: s.collection,
		Points:         []*qdrant.PointStruct{point},
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to upsert point", "collection", s.collection, "id", entry.ID, "error", err)
		return fmt.Errorf("failed to upsert point: %w", err)
	}

	return nil
}

// Search returns up to k matches ordered by descending score.
func (s *QdrantIndex) Search(ctx context.Context, query []float32, k int) ([]Match, error) {
	logger := contextutil.LoggerFromContext(ctx)

	if k <= 0 {
		return nil, fmt.Errorf("k must be greater than 0")
	}

	limit := uint64(k)
	scoredPoints, err := s.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: s.collection,
		Query:          qdrant.NewQuery(query...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to search points", "collection", s.collection, "k", k, "error", err)
		return nil, fmt.Errorf("failed to search points: %w", err)
	}

	matches := make([]Match, 0, len(scoredPoints))
	for _, result := range scoredPoints {
		match := Match{Score: float64(result.Score)}
		if result.Payload != nil {
			if v, ok := result.Payload["document_id"]; ok {
				match.DocumentID = v.GetStringValue()
			}
			if v, ok := result.Payload["document_name"]; ok {
				match.DocumentName = v.GetStringValue()
			}
			if v, ok := result.Payload["text"]; ok {
				match.Text = v.GetStringValue()
			}
		}
		matches = append(matches, match)
	}

	return matches, nil
}

// Remove deletes all points for a document via a payload filter.
func (s *QdrantIndex) Remove(ctx context.Context, documentID string) error {
	logger := contextutil.LoggerFromContext(ctx)

	_, err := s.client.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: s.collection,
		Points: qdrant.NewPointsSelectorFilter(&qdrant.Filter{
			Must: []*qdrant.Condition{
				qdrant.NewMatch("document_id", documentID),
			},
		}),
	})
	if err != nil {
		logger.ErrorContext(ctx, "failed to delete points", "collection", s.collection, "document_id", documentID, "error", err)
		return fmt.Errorf("failed to delete points: %w", err)
	}

	return nil
}
