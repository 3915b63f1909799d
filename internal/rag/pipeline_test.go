package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarioai/diario/internal/knowledge"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

type stubRewriter struct {
	rewritten string
	lastRaw   string
}

func (s *stubRewriter) Rewrite(_ context.Context, rawQuery string, _ *prompt.History) string {
	s.lastRaw = rawQuery
	if s.rewritten == "" {
		return rawQuery
	}
	return s.rewritten
}

type stubEmbedder struct {
	vector   []float32
	lastText string
}

func (s *stubEmbedder) Embed(_ context.Context, text string) []float32 {
	s.lastText = text
	return s.vector
}

type stubSearcher struct {
	results       []knowledge.SearchResult
	err           error
	lastVec       []float32
	lastLimit     int
	lastThreshold float64
}

func (s *stubSearcher) Search(_ context.Context, queryVec []float32, limit int, threshold float64) ([]knowledge.SearchResult, error) {
	s.lastVec = queryVec
	s.lastLimit = limit
	s.lastThreshold = threshold
	return s.results, s.err
}

type stubReranker struct {
	results   []knowledge.SearchResult
	lastQuery string
	calls     int
}

func (s *stubReranker) Rerank(_ context.Context, query string, _ []knowledge.SearchResult, _ int, _ float64) []knowledge.SearchResult {
	s.lastQuery = query
	s.calls++
	return s.results
}

func TestPipeline_Search(t *testing.T) {
	t.Parallel()

	stored := []knowledge.SearchResult{
		{Document: knowledge.Document{ID: "a", Content: "5km easy run"}, Score: 0.9},
		{Document: knowledge.Document{ID: "b", Content: "leg day"}, Score: 0.8},
	}
	reranked := stored[:1]

	rewriter := &stubRewriter{rewritten: "easy run distance"}
	embedder := &stubEmbedder{vector: []float32{0.1, 0.2, 0.3}}
	searcher := &stubSearcher{results: stored}
	reranker := &stubReranker{results: reranked}

	pipeline := NewPipeline(rewriter, embedder, searcher, reranker, log.NewNop())

	got, err := pipeline.Search(context.Background(), "how far did I run?", nil, 5, 0.7)
	require.NoError(t, err)
	assert.Equal(t, reranked, got)

	// Downstream stages consume the rewritten query, not the raw one.
	assert.Equal(t, "how far did I run?", rewriter.lastRaw)
	assert.Equal(t, "easy run distance", embedder.lastText)
	assert.Equal(t, "easy run distance", reranker.lastQuery)

	assert.Equal(t, []float32{0.1, 0.2, 0.3}, searcher.lastVec)
	assert.Equal(t, 5, searcher.lastLimit)
	assert.Equal(t, 0.7, searcher.lastThreshold)
}

func TestPipeline_Search_NoReranker(t *testing.T) {
	t.Parallel()

	stored := []knowledge.SearchResult{
		{Document: knowledge.Document{ID: "a"}, Score: 0.9},
	}
	pipeline := NewPipeline(
		&stubRewriter{},
		&stubEmbedder{vector: []float32{1}},
		&stubSearcher{results: stored},
		nil,
		log.NewNop(),
	)

	got, err := pipeline.Search(context.Background(), "query", nil, 5, 0.7)
	require.NoError(t, err)
	assert.Equal(t, stored, got)
}

func TestPipeline_Search_EmbeddingUnavailable(t *testing.T) {
	t.Parallel()

	reranker := &stubReranker{}
	pipeline := NewPipeline(
		&stubRewriter{},
		&stubEmbedder{vector: nil},
		&stubSearcher{},
		reranker,
		log.NewNop(),
	)

	got, err := pipeline.Search(context.Background(), "query", nil, 5, 0.7)
	require.ErrorIs(t, err, knowledge.ErrEmbeddingUnavailable)
	assert.Nil(t, got)
	assert.Zero(t, reranker.calls)
}

func TestPipeline_Search_StoreErrorPropagates(t *testing.T) {
	t.Parallel()

	storeErr := errors.New("connection reset")
	pipeline := NewPipeline(
		&stubRewriter{},
		&stubEmbedder{vector: []float32{1}},
		&stubSearcher{err: storeErr},
		&stubReranker{},
		log.NewNop(),
	)

	got, err := pipeline.Search(context.Background(), "query", nil, 5, 0.7)
	require.ErrorIs(t, err, storeErr)
	assert.Nil(t, got)
}

func TestPipeline_Search_NoCandidatesSkipsRerank(t *testing.T) {
	t.Parallel()

	reranker := &stubReranker{}
	pipeline := NewPipeline(
		&stubRewriter{},
		&stubEmbedder{vector: []float32{1}},
		&stubSearcher{results: []knowledge.SearchResult{}},
		reranker,
		log.NewNop(),
	)

	got, err := pipeline.Search(context.Background(), "query", nil, 5, 0.7)
	require.NoError(t, err)
	assert.Empty(t, got)
	assert.Zero(t, reranker.calls)
}
