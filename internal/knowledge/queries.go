package knowledge

import (
	"context"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pgvector/pgvector-go"
)

// InsertDocumentParams are the parameters for InsertDocument.
type InsertDocumentParams struct {
	ID        string
	Title     string
	Content   string
	Embedding *pgvector.Vector
}

// SearchDocumentsParams are the parameters for SearchDocuments.
type SearchDocumentsParams struct {
	QueryEmbedding *pgvector.Vector
	CandidateLimit int32
}

// SearchDocumentsRow is one row of a similarity search.
type SearchDocumentsRow struct {
	ID         string
	Title      string
	Content    string
	Similarity float64
	CreatedAt  pgtype.Timestamptz
}

// Querier defines the database operations the Store needs. The interface is
// defined here, by the consumer, so tests can substitute a mock and the
// production implementation stays swappable.
type Querier interface {
	InsertDocument(ctx context.Context, arg InsertDocumentParams) (pgtype.Timestamptz, error)
	SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error)
	CountDocuments(ctx context.Context) (int64, error)
}

const (
	insertDocumentSQL = `
INSERT INTO documents (id, title, content, embedding)
VALUES ($1, $2, $3, $4)
RETURNING created_at`

	// Cosine similarity from pgvector's cosine distance operator. Ordering
	// by the operator directly keeps the ivfflat/hnsw index usable.
	searchDocumentsSQL = `
SELECT id, title, content, 1 - (embedding <=> $1) AS similarity, created_at
FROM documents
ORDER BY embedding <=> $1
LIMIT $2`

	countDocumentsSQL = `SELECT count(*) FROM documents`
)

// Queries is the pgx-backed Querier implementation.
// Safe for concurrent use; pgxpool handles connection concurrency.
type Queries struct {
	pool *pgxpool.Pool
}

// NewQueries creates a Queries over the given pool.
func NewQueries(pool *pgxpool.Pool) *Queries {
	return &Queries{pool: pool}
}

// InsertDocument persists one document and returns its creation timestamp.
func (q *Queries) InsertDocument(ctx context.Context, arg InsertDocumentParams) (pgtype.Timestamptz, error) {
	var createdAt pgtype.Timestamptz
	err := q.pool.QueryRow(ctx, insertDocumentSQL,
		arg.ID, arg.Title, arg.Content, arg.Embedding).Scan(&createdAt)
	return createdAt, err
}

// SearchDocuments returns the closest documents to the query embedding,
// ordered by ascending cosine distance.
func (q *Queries) SearchDocuments(ctx context.Context, arg SearchDocumentsParams) ([]SearchDocumentsRow, error) {
	rows, err := q.pool.Query(ctx, searchDocumentsSQL, arg.QueryEmbedding, arg.CandidateLimit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []SearchDocumentsRow
	for rows.Next() {
		var row SearchDocumentsRow
		if err := rows.Scan(&row.ID, &row.Title, &row.Content, &row.Similarity, &row.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}

// CountDocuments returns the total number of stored documents.
func (q *Queries) CountDocuments(ctx context.Context) (int64, error) {
	var count int64
	err := q.pool.QueryRow(ctx, countDocumentsSQL).Scan(&count)
	return count, err
}
