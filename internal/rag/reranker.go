package rag

import (
	"context"

	"github.com/diarioai/diario/internal/cohere"
	"github.com/diarioai/diario/internal/httpx"
	"github.com/diarioai/diario/internal/knowledge"
	"github.com/diarioai/diario/internal/log"
)

// RerankClient issues one rerank call. *cohere.Client satisfies it.
type RerankClient interface {
	Rerank(ctx context.Context, query string, documents []string, topN int) (httpx.Result[[]cohere.RankedIndex], error)
}

// Reranker rescores candidate documents against a query with a dedicated
// relevance model. It is a pure filter stage: the pipeline hands it
// candidates from the vector search, it never fetches documents itself.
type Reranker struct {
	client RerankClient
	logger log.Logger
}

// NewReranker creates a Reranker.
func NewReranker(client RerankClient, logger log.Logger) *Reranker {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Reranker{client: client, logger: logger}
}

// Rerank scores candidates against query and keeps those whose relevance is
// strictly above threshold, in the model's order, at most topN entries. Each
// kept result carries the relevance score in place of the similarity score.
//
// On a failed or malformed rerank call it returns an empty slice: "no
// confidently relevant documents", never an error.
func (r *Reranker) Rerank(ctx context.Context, query string, candidates []knowledge.SearchResult, topN int, threshold float64) []knowledge.SearchResult {
	if len(candidates) == 0 {
		return []knowledge.SearchResult{}
	}

	documents := make([]string, len(candidates))
	for i, c := range candidates {
		documents[i] = c.Document.Content
	}

	res, err := r.client.Rerank(ctx, query, documents, topN)
	if err != nil || !res.OK {
		r.logger.Debug("rerank unavailable, dropping candidates",
			"candidates", len(candidates), "message", res.Message)
		return []knowledge.SearchResult{}
	}

	kept := make([]knowledge.SearchResult, 0, len(res.Data))
	for _, ranked := range res.Data {
		if ranked.RelevanceScore <= threshold {
			continue
		}
		if ranked.Index < 0 || ranked.Index >= len(candidates) {
			continue
		}
		result := candidates[ranked.Index]
		result.Score = ranked.RelevanceScore
		kept = append(kept, result)
	}

	r.logger.Debug("reranked candidates",
		"candidates", len(candidates), "kept", len(kept), "threshold", threshold)
	return kept
}
