package rag

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarioai/diario/internal/groq"
	"github.com/diarioai/diario/internal/httpx"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

type mockCompleter struct {
	result  httpx.Result[[]string]
	err     error
	lastReq groq.CompletionRequest
	calls   int
}

func (m *mockCompleter) Complete(_ context.Context, req groq.CompletionRequest) (httpx.Result[[]string], error) {
	m.lastReq = req
	m.calls++
	return m.result, m.err
}

func testRewriterConfig() RewriterConfig {
	return RewriterConfig{
		Model:         "rewrite-model",
		MaxTokens:     15000,
		Temperature:   0.6,
		AssistantName: "Marco",
		Language:      "italiano",
	}
}

func TestNewRewriter_RequiresAssistantName(t *testing.T) {
	t.Parallel()

	cfg := testRewriterConfig()
	cfg.AssistantName = ""

	_, err := NewRewriter(&mockCompleter{}, cfg, log.NewNop())
	require.ErrorIs(t, err, prompt.ErrEmptyPersona)
}

func TestRewriter_Rewrite(t *testing.T) {
	t.Parallel()

	completer := &mockCompleter{
		result: httpx.Result[[]string]{OK: true, Data: []string{"easy run pace 5km"}},
	}
	rewriter, err := NewRewriter(completer, testRewriterConfig(), log.NewNop())
	require.NoError(t, err)

	got := rewriter.Rewrite(context.Background(), "how fast was my run?", nil)

	assert.Equal(t, "easy run pace 5km", got)
	assert.Equal(t, "rewrite-model", completer.lastReq.Model)
	assert.Equal(t, 15000, completer.lastReq.MaxTokens)
	assert.Equal(t, float32(0.6), completer.lastReq.Temperature)

	require.Len(t, completer.lastReq.Messages, 2)
	system := completer.lastReq.Messages[0]
	assert.Equal(t, prompt.RoleSystem, system.Role)
	// The instruction rides inside the same persona block the chat stage uses.
	assert.Contains(t, system.Content, "Marco")
	assert.Contains(t, system.Content, rewriteInstruction)
	assert.Equal(t, prompt.RoleUser, completer.lastReq.Messages[1].Role)
	assert.Equal(t, "how fast was my run?", completer.lastReq.Messages[1].Content)
}

func TestRewriter_Rewrite_IncludesHistory(t *testing.T) {
	t.Parallel()

	completer := &mockCompleter{
		result: httpx.Result[[]string]{OK: true, Data: []string{"rewritten"}},
	}
	rewriter, err := NewRewriter(completer, testRewriterConfig(), log.NewNop())
	require.NoError(t, err)

	history := &prompt.History{}
	history.Append(prompt.User("I went running yesterday"))

	rewriter.Rewrite(context.Background(), "how far?", history)

	require.Len(t, completer.lastReq.Messages, 2)
	userContent := completer.lastReq.Messages[1].Content
	assert.Contains(t, userContent, "I went running yesterday")
	assert.Contains(t, userContent, "how far?")
	assert.Equal(t, history.RenderText()+"how far?", userContent)
}

func TestRewriter_Rewrite_FallsBackToRawQuery(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		result httpx.Result[[]string]
		err    error
	}{
		{
			name: "transport error",
			err:  errors.New("connection refused"),
		},
		{
			name:   "upstream error",
			result: httpx.Result[[]string]{OK: false, Message: "model overloaded"},
		},
		{
			name:   "no completions",
			result: httpx.Result[[]string]{OK: true, Data: []string{}},
		},
		{
			name:   "empty completion text",
			result: httpx.Result[[]string]{OK: true, Data: []string{""}},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			completer := &mockCompleter{result: tt.result, err: tt.err}
			rewriter, err := NewRewriter(completer, testRewriterConfig(), log.NewNop())
			require.NoError(t, err)

			got := rewriter.Rewrite(context.Background(), "raw query", nil)

			assert.Equal(t, "raw query", got)
			assert.Equal(t, 1, completer.calls)
		})
	}
}
