// Package chat is the top-level completion entry point: it frames the
// assistant persona, issues one completion call, and always produces a
// speakable reply. Upstream failures become the reply text instead of an
// error, so callers can render the result unconditionally.
package chat

import (
	"context"

	"github.com/diarioai/diario/internal/groq"
	"github.com/diarioai/diario/internal/httpx"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

// Speaker labels every reply produced by the orchestrator.
const Speaker = "AIBot"

// Completer issues one chat completion call. *groq.Client satisfies it.
type Completer interface {
	Complete(ctx context.Context, req groq.CompletionRequest) (httpx.Result[[]string], error)
}

// Reply is the orchestrator's output. OK is false when the text carries an
// upstream error description instead of a model answer.
type Reply struct {
	Speaker string `json:"speaker"`
	Text    string `json:"text"`
	OK      bool   `json:"-"`
}

// Config fixes the completion model settings. These are service-level
// constants, not per-request knobs.
type Config struct {
	Model       string
	MaxTokens   int
	Temperature float32
}

// Orchestrator drives single-shot chat completions under a fixed persona.
type Orchestrator struct {
	completer Completer
	persona   prompt.Persona
	cfg       Config
	logger    log.Logger
}

// New creates an Orchestrator.
func New(completer Completer, persona prompt.Persona, cfg Config, logger log.Logger) *Orchestrator {
	if logger == nil {
		logger = log.NewNop()
	}
	return &Orchestrator{
		completer: completer,
		persona:   persona,
		cfg:       cfg,
		logger:    logger,
	}
}

// Complete answers userPrompt in a single turn. History may be nil; when
// present its rendered text precedes the prompt, keeping multi-turn
// composition in the caller's hands.
//
// Never returns an error: a failed call yields a Reply whose Text is the
// upstream error message verbatim and whose OK is false.
func (o *Orchestrator) Complete(ctx context.Context, userPrompt string, history *prompt.History) Reply {
	userContent := userPrompt
	if history != nil {
		if rendered := history.RenderText(); rendered != "" {
			userContent = rendered + userPrompt
		}
	}

	res, err := o.completer.Complete(ctx, groq.CompletionRequest{
		Model:       o.cfg.Model,
		Messages:    []prompt.Message{o.persona.SystemMessage(), prompt.User(userContent)},
		MaxTokens:   o.cfg.MaxTokens,
		Temperature: o.cfg.Temperature,
	})

	switch {
	case err != nil:
		o.logger.Warn("completion call failed", "error", err)
		return Reply{Speaker: Speaker, Text: err.Error()}
	case !res.OK:
		o.logger.Warn("completion rejected upstream", "status", res.Status, "message", res.Message)
		return Reply{Speaker: Speaker, Text: res.Message}
	case len(res.Data) == 0:
		o.logger.Warn("completion returned no choices", "status", res.Status)
		return Reply{Speaker: Speaker, Text: "no completion returned"}
	}

	o.logger.Debug("completion produced", "prompt_length", len(userPrompt), "reply_length", len(res.Data[0]))
	return Reply{Speaker: Speaker, Text: res.Data[0], OK: true}
}
