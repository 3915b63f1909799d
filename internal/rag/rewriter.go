// Package rag composes the retrieval pipeline: query rewriting, embedding,
// vector search, and optional reranking. Each stage degrades on failure
// instead of aborting the pipeline — a failed rewrite falls back to the raw
// query, a failed rerank yields no documents.
package rag

import (
	"context"
	"fmt"

	"github.com/diarioai/diario/internal/groq"
	"github.com/diarioai/diario/internal/httpx"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

// rewriteInstruction steers the completion model toward producing a
// retrieval-friendly query instead of an answer.
const rewriteInstruction = "Generate a clear and concise search query that captures the main concepts and intent from the user's input. Focus on key terms and semantic meaning."

// Completer issues one chat completion call. *groq.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req groq.CompletionRequest) (httpx.Result[[]string], error)
}

// RewriterConfig fixes the rewrite model settings.
type RewriterConfig struct {
	Model       string
	MaxTokens   int
	Temperature float32
	// AssistantName and Language frame the rewrite instruction in the same
	// persona block the chat stage uses.
	AssistantName string
	Language      string
}

// Rewriter turns a raw user query into a retrieval-optimized one using a
// completion model, conditioned on the conversation so far.
type Rewriter struct {
	completer Completer
	persona   prompt.Persona
	cfg       RewriterConfig
	logger    log.Logger
}

// NewRewriter creates a Rewriter bound to a completion model.
func NewRewriter(completer Completer, cfg RewriterConfig, logger log.Logger) (*Rewriter, error) {
	persona, err := prompt.NewPersona(cfg.AssistantName, cfg.Language, rewriteInstruction)
	if err != nil {
		return nil, fmt.Errorf("building rewrite persona: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}
	return &Rewriter{
		completer: completer,
		persona:   persona,
		cfg:       cfg,
		logger:    logger,
	}, nil
}

// Rewrite returns the model's reformulation of rawQuery, or rawQuery
// unchanged when the call fails or yields nothing. History may be nil.
func (r *Rewriter) Rewrite(ctx context.Context, rawQuery string, history *prompt.History) string {
	userContent := rawQuery
	if history != nil {
		if rendered := history.RenderText(); rendered != "" {
			userContent = rendered + rawQuery
		}
	}

	res, err := r.completer.Complete(ctx, groq.CompletionRequest{
		Model:       r.cfg.Model,
		Messages:    []prompt.Message{r.persona.SystemMessage(), prompt.User(userContent)},
		MaxTokens:   r.cfg.MaxTokens,
		Temperature: r.cfg.Temperature,
	})
	if err != nil || !res.OK || len(res.Data) == 0 || res.Data[0] == "" {
		r.logger.Debug("query rewrite unavailable, using raw query",
			"query_length", len(rawQuery), "message", res.Message)
		return rawQuery
	}

	r.logger.Debug("rewrote query",
		"raw_length", len(rawQuery), "rewritten_length", len(res.Data[0]))
	return res.Data[0]
}
