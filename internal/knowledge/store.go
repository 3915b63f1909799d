// Package knowledge manages journal documents with vector search on
// PostgreSQL + pgvector: embedding at ingestion, cosine similarity search
// with a score threshold at retrieval.
package knowledge

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/diarioai/diario/internal/log"
)

// OverFetchFactor is how many candidates are fetched per requested result
// before threshold filtering. The raw top-k can contain entries below the
// threshold; over-fetching compensates. This is a heuristic, not a
// correctness guarantee — raise it if thresholded recalls look short.
const OverFetchFactor = 2

// Embedder turns text into a fixed-dimension vector. A nil return means
// "embedding unavailable" and halts the operation with a domain error
// instead of a transport error.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Store manages document persistence and similarity search.
//
// Store is safe for concurrent use; concurrency control is delegated to the
// underlying pool.
type Store struct {
	queries   Querier
	embedder  Embedder
	dimension int
	logger    log.Logger
}

// New creates a Store. dimension is the embedding model's fixed output
// length and must match the vector column in db/migrations.
func New(queries Querier, embedder Embedder, dimension int, logger log.Logger) *Store {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Store{
		queries:   queries,
		embedder:  embedder,
		dimension: dimension,
		logger:    logger,
	}
}

// Add embeds and persists a new document.
//
// Fails with ErrInvalidDocument on empty title/content, with
// ErrEmbeddingUnavailable when the embedder yields no vector, and with
// ErrDimensionMismatch when the vector length is off. On success the
// returned Document carries the generated ID and creation timestamp.
func (s *Store) Add(ctx context.Context, title, content string) (*Document, error) {
	if title == "" || content == "" {
		return nil, ErrInvalidDocument
	}

	embedding := s.embedder.Embed(ctx, content)
	if embedding == nil {
		return nil, ErrEmbeddingUnavailable
	}
	if len(embedding) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(embedding), s.dimension)
	}

	doc := Document{
		ID:        uuid.NewString(),
		Title:     title,
		Content:   content,
		Embedding: embedding,
	}

	vec := pgvector.NewVector(embedding)
	createdAt, err := s.queries.InsertDocument(ctx, InsertDocumentParams{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		Embedding: &vec,
	})
	if err != nil {
		return nil, fmt.Errorf("%w: inserting document: %v", ErrStoreUnavailable, err)
	}
	if createdAt.Valid {
		doc.CreatedAt = createdAt.Time
	}

	s.logger.Debug("added document", "id", doc.ID, "title", doc.Title, "content_length", len(doc.Content))
	return &doc, nil
}

// Search returns documents whose cosine similarity to queryVec meets or
// exceeds threshold, ordered by descending score and capped at limit.
//
// An empty store, or no document above the threshold, yields an empty slice
// and no error.
func (s *Store) Search(ctx context.Context, queryVec []float32, limit int, threshold float64) ([]SearchResult, error) {
	if len(queryVec) != s.dimension {
		return nil, fmt.Errorf("%w: got %d, want %d", ErrDimensionMismatch, len(queryVec), s.dimension)
	}
	if limit <= 0 {
		return []SearchResult{}, nil
	}

	vec := pgvector.NewVector(queryVec)
	rows, err := s.queries.SearchDocuments(ctx, SearchDocumentsParams{
		QueryEmbedding: &vec,
		CandidateLimit: int32(limit * OverFetchFactor), // #nosec G115 -- limit is request-bounded
	})
	if err != nil {
		return nil, fmt.Errorf("%w: similarity search: %v", ErrStoreUnavailable, err)
	}

	results := make([]SearchResult, 0, limit)
	for _, row := range rows {
		if row.Similarity < threshold {
			continue
		}
		doc := Document{
			ID:      row.ID,
			Title:   row.Title,
			Content: row.Content,
		}
		if row.CreatedAt.Valid {
			doc.CreatedAt = row.CreatedAt.Time
		}
		results = append(results, SearchResult{Document: doc, Score: row.Similarity})
	}

	// The index returns rows in distance order already; sorting again keeps
	// the descending-score contract independent of the backend.
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	if len(results) > limit {
		results = results[:limit]
	}

	s.logger.Debug("similarity search",
		"candidates", len(rows),
		"results", len(results),
		"limit", limit,
		"threshold", threshold)

	return results, nil
}

// Count returns the number of stored documents.
func (s *Store) Count(ctx context.Context) (int64, error) {
	count, err := s.queries.CountDocuments(ctx)
	if err != nil {
		return 0, fmt.Errorf("%w: counting documents: %v", ErrStoreUnavailable, err)
	}
	return count, nil
}

// Dimension returns the configured embedding dimensionality.
func (s *Store) Dimension() int {
	return s.dimension
}
