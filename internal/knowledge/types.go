package knowledge

import (
	"errors"
	"time"
)

// Document is a stored journal document with its embedding vector. This is
// the single definition shared by the ingestion and search paths.
// Documents are never mutated after creation; re-embedding means storing a
// new document.
type Document struct {
	ID        string    // Generated UUID
	Title     string    // Entry title
	Content   string    // Entry text, the embedded payload
	Embedding []float32 // Fixed-dimension vector, set at ingestion
	CreatedAt time.Time
}

// SearchResult is one similarity-search hit. Transient, never persisted.
type SearchResult struct {
	Document Document
	Score    float64 // Cosine similarity, higher is closer
}

// Sentinel errors for store operations. Checked with errors.Is().
var (
	// ErrInvalidDocument indicates an empty title or content.
	ErrInvalidDocument = errors.New("title and content are required")

	// ErrEmbeddingUnavailable indicates the embedder produced no vector.
	ErrEmbeddingUnavailable = errors.New("embedding unavailable")

	// ErrDimensionMismatch indicates a vector whose length does not match
	// the store's configured dimensionality.
	ErrDimensionMismatch = errors.New("embedding dimension mismatch")

	// ErrStoreUnavailable indicates the underlying index could not be
	// reached. Not retried; surfaced to the caller.
	ErrStoreUnavailable = errors.New("document store unavailable")
)
