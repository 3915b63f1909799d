// Package cohere is the client for the Cohere v1 rerank API, used as the
// optional second-pass relevance scorer over similarity-search candidates.
package cohere

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/diarioai/diario/internal/httpx"
	"github.com/diarioai/diario/internal/log"
)

// ErrMissingAPIKey indicates the client was constructed without a key.
var ErrMissingAPIKey = errors.New("cohere: API key is required")

const rerankPath = "/v1/rerank"

// RankedIndex is one scored entry of a rerank response: the index into the
// submitted document list plus the model's relevance score.
type RankedIndex struct {
	Index          int     `json:"index"`
	RelevanceScore float64 `json:"relevance_score"`
}

// Client calls the Cohere API. Safe for concurrent use.
type Client struct {
	httpc   *httpx.Client
	apiKey  string
	baseURL string
	model   string
	logger  log.Logger
}

// Config holds the construction parameters. The key is injected at startup.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
}

// New creates a Client.
func New(cfg Config, httpc *httpx.Client, logger log.Logger) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, ErrMissingAPIKey
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Client{
		httpc:   httpc,
		apiKey:  cfg.APIKey,
		baseURL: cfg.BaseURL,
		model:   cfg.Model,
		logger:  logger,
	}, nil
}

// rerankBody is the provider wire format for a rerank request.
type rerankBody struct {
	Model     string   `json:"model"`
	Query     string   `json:"query"`
	TopN      int      `json:"top_n"`
	Documents []string `json:"documents"`
}

// Rerank scores the candidate documents against the query with one remote
// call. The Result's Data preserves the provider ordering (already sorted by
// descending relevance, bounded by topN).
func (c *Client) Rerank(ctx context.Context, query string, documents []string, topN int) (httpx.Result[[]RankedIndex], error) {
	body := rerankBody{
		Model:     c.model,
		Query:     query,
		TopN:      topN,
		Documents: documents,
	}
	headers := map[string]string{"Authorization": "Bearer " + c.apiKey}
	return httpx.Post(ctx, c.httpc, c.baseURL+rerankPath, headers, body, extractResults)
}

// extractResults pulls the scored index list, degrading to nil on any shape
// mismatch.
func extractResults(raw json.RawMessage) []RankedIndex {
	var payload struct {
		Results []RankedIndex `json:"results"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	return payload.Results
}
