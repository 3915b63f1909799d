// Package groq is the client for the Groq OpenAI-compatible API, covering
// the two operations the pipeline needs: chat completions and embeddings.
// Wire formats belong to the provider and are treated as fixed contracts.
package groq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/diarioai/diario/internal/httpx"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

// ErrMissingAPIKey indicates the client was constructed without a key.
var ErrMissingAPIKey = errors.New("groq: API key is required")

// Provider endpoint paths.
const (
	completionsPath = "/openai/v1/chat/completions"
	embeddingsPath  = "/v1/embeddings"
)

// Client calls the Groq API. Safe for concurrent use.
type Client struct {
	httpc      *httpx.Client
	apiKey     string
	baseURL    string
	embedModel string
	logger     log.Logger
}

// Config holds the construction parameters. The API key is injected here at
// startup; nothing reads it from the environment at call time.
type Config struct {
	APIKey     string
	BaseURL    string
	EmbedModel string
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
		httpc:      httpc,
		apiKey:     cfg.APIKey,
		baseURL:    cfg.BaseURL,
		embedModel: cfg.EmbedModel,
		logger:     logger,
	}, nil
}

func (c *Client) headers() map[string]string {
	return map[string]string{"Authorization": "Bearer " + c.apiKey}
}

// CompletionRequest is one chat completion call.
type CompletionRequest struct {
	Model       string
	Messages    []prompt.Message
	MaxTokens   int
	Temperature float32
}

// completionBody is the provider wire format for a completion request.
type completionBody struct {
	Model       string           `json:"model"`
	Messages    []prompt.Message `json:"messages"`
	MaxTokens   int              `json:"max_tokens"`
	Temperature float32          `json:"temperature"`
}

// Complete issues one chat completion call. The Result's Data holds the
// completion texts in choice order; on a non-200 response it is empty and
// Message carries the provider's error description.
func (c *Client) Complete(ctx context.Context, req CompletionRequest) (httpx.Result[[]string], error) {
	body := completionBody{
		Model:       req.Model,
		Messages:    req.Messages,
		MaxTokens:   req.MaxTokens,
		Temperature: req.Temperature,
	}
	return httpx.Post(ctx, c.httpc, c.baseURL+completionsPath, c.headers(), body, ExtractCompletions)
}

// ExtractCompletions collects choices[i].message.content from a completion
// payload, skipping malformed entries. A payload without usable choices
// yields an empty slice, never an error.
func ExtractCompletions(raw json.RawMessage) []string {
	var payload struct {
		Choices []struct {
			Message struct {
				Content *string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}

	out := make([]string, 0, len(payload.Choices))
	for _, choice := range payload.Choices {
		if choice.Message.Content != nil {
			out = append(out, *choice.Message.Content)
		}
	}
	return out
}

// embeddingBody is the provider wire format for an embedding request.
type embeddingBody struct {
	Model          string `json:"model"`
	Input          string `json:"input"`
	EncodingFormat string `json:"encoding_format"`
}

// Embed turns text into an embedding vector with a single remote call.
//
// It returns nil when the call fails or the payload holds no vector; nil is
// the documented sentinel for "embedding unavailable" and callers halt their
// pipeline on it instead of propagating a transport error.
func (c *Client) Embed(ctx context.Context, text string) []float32 {
	body := embeddingBody{
		Model:          c.embedModel,
		Input:          text,
		EncodingFormat: "float",
	}

	res, err := httpx.Post(ctx, c.httpc, c.baseURL+embeddingsPath, c.headers(), body, extractEmbedding)
	if err != nil {
		c.logger.Warn("embedding call failed", "error", err)
		return nil
	}
	if !res.OK {
		c.logger.Warn("embedding rejected by provider", "status", res.Status, "message", res.Message)
		return nil
	}
	if len(res.Data) == 0 {
		c.logger.Warn("embedding payload contained no vector")
		return nil
	}
	return res.Data
}

// extractEmbedding pulls data[0].embedding, degrading to nil.
func extractEmbedding(raw json.RawMessage) []float32 {
	var payload struct {
		Data []struct {
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil
	}
	if len(payload.Data) == 0 {
		return nil
	}
	return payload.Data[0].Embedding
}

// String implements fmt.Stringer without leaking the API key.
func (c *Client) String() string {
	return fmt.Sprintf("groq.Client{baseURL: %s, embedModel: %s}", c.baseURL, c.embedModel)
}
