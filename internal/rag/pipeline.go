package rag

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/diarioai/diario/internal/knowledge"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

// QueryRewriter is the rewrite stage. *Rewriter satisfies it.
type QueryRewriter interface {
	Rewrite(ctx context.Context, rawQuery string, history *prompt.History) string
}

// Embedder turns text into a query vector. *groq.Client satisfies it.
type Embedder interface {
	Embed(ctx context.Context, text string) []float32
}

// Searcher is the vector search stage. *knowledge.Store satisfies it.
type Searcher interface {
	Search(ctx context.Context, queryVec []float32, limit int, threshold float64) ([]knowledge.SearchResult, error)
}

// DocumentReranker is the optional rescoring stage. *Reranker satisfies it.
type DocumentReranker interface {
	Rerank(ctx context.Context, query string, candidates []knowledge.SearchResult, topN int, threshold float64) []knowledge.SearchResult
}

// Pipeline runs the retrieval sequence for one query:
// rewrite, embed, vector search, then rerank when a reranker is configured.
// Stages run strictly in order; there is no retry at any stage.
type Pipeline struct {
	rewriter QueryRewriter
	embedder Embedder
	searcher Searcher
	reranker DocumentReranker // nil disables the rerank stage
	logger   log.Logger
	tracer   trace.Tracer
}

// NewPipeline creates a Pipeline. reranker may be nil, which skips the
// rescoring stage and returns vector search results directly.
func NewPipeline(rewriter QueryRewriter, embedder Embedder, searcher Searcher, reranker DocumentReranker, logger log.Logger) *Pipeline {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Pipeline{
		rewriter: rewriter,
		embedder: embedder,
		searcher: searcher,
		reranker: reranker,
		logger:   logger,
		tracer:   otel.Tracer("diario/rag"),
	}
}

// Search retrieves at most limit documents relevant to rawQuery, filtered by
// threshold at both the similarity and, when reranking, the relevance stage.
// History conditions the rewrite and may be nil.
//
// Fails with knowledge.ErrEmbeddingUnavailable when no query vector can be
// produced, and propagates store errors unchanged. A failed rewrite or
// rerank degrades inside its stage instead.
func (p *Pipeline) Search(ctx context.Context, rawQuery string, history *prompt.History, limit int, threshold float64) ([]knowledge.SearchResult, error) {
	ctx, span := p.tracer.Start(ctx, "rag.Search", trace.WithAttributes(
		attribute.Int("rag.limit", limit),
		attribute.Float64("rag.threshold", threshold),
	))
	defer span.End()

	query := p.rewriteStage(ctx, rawQuery, history)

	queryVec, err := p.embedStage(ctx, query)
	if err != nil {
		return nil, err
	}

	results, err := p.searchStage(ctx, queryVec, limit, threshold)
	if err != nil {
		return nil, err
	}

	if p.reranker != nil && len(results) > 0 {
		results = p.rerankStage(ctx, query, results, limit, threshold)
	}

	span.SetAttributes(attribute.Int("rag.results", len(results)))
	p.logger.Debug("retrieval pipeline complete",
		"query_length", len(rawQuery), "results", len(results))
	return results, nil
}

func (p *Pipeline) rewriteStage(ctx context.Context, rawQuery string, history *prompt.History) string {
	ctx, span := p.tracer.Start(ctx, "rag.rewrite")
	defer span.End()
	return p.rewriter.Rewrite(ctx, rawQuery, history)
}

func (p *Pipeline) embedStage(ctx context.Context, query string) ([]float32, error) {
	ctx, span := p.tracer.Start(ctx, "rag.embed")
	defer span.End()

	queryVec := p.embedder.Embed(ctx, query)
	if queryVec == nil {
		return nil, fmt.Errorf("embedding query: %w", knowledge.ErrEmbeddingUnavailable)
	}
	span.SetAttributes(attribute.Int("rag.embedding_dimension", len(queryVec)))
	return queryVec, nil
}

func (p *Pipeline) searchStage(ctx context.Context, queryVec []float32, limit int, threshold float64) ([]knowledge.SearchResult, error) {
	ctx, span := p.tracer.Start(ctx, "rag.vector_search")
	defer span.End()

	results, err := p.searcher.Search(ctx, queryVec, limit, threshold)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}
	span.SetAttributes(attribute.Int("rag.candidates", len(results)))
	return results, nil
}

func (p *Pipeline) rerankStage(ctx context.Context, query string, candidates []knowledge.SearchResult, limit int, threshold float64) []knowledge.SearchResult {
	ctx, span := p.tracer.Start(ctx, "rag.rerank")
	defer span.End()

	results := p.reranker.Rerank(ctx, query, candidates, limit, threshold)
	span.SetAttributes(attribute.Int("rag.reranked", len(results)))
	return results
}
