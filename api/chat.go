package api

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/diarioai/diario/internal/chat"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

// ChatCompleter is the completion surface the handler needs.
// *chat.Orchestrator satisfies it.
type ChatCompleter interface {
	Complete(ctx context.Context, userPrompt string, history *prompt.History) chat.Reply
}

// ChatHandler handles the chat completion endpoint.
type ChatHandler struct {
	orchestrator ChatCompleter
	logger       log.Logger
}

// NewChatHandler creates a chat handler.
func NewChatHandler(orchestrator ChatCompleter, logger log.Logger) *ChatHandler {
	return &ChatHandler{orchestrator: orchestrator, logger: logger}
}

// RegisterRoutes registers chat routes on the given mux.
func (h *ChatHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/chat", h.complete)
}

// chatRequest is the completion request body.
type chatRequest struct {
	Prompt string `json:"prompt"`
}

// chatResponse is the completion response body. The shape is fixed: an
// upstream failure still produces 200 with the error text as the response,
// so clients render one field unconditionally.
type chatResponse struct {
	User     string `json:"user"`
	Response string `json:"response"`
}

// complete handles POST /api/chat.
func (h *ChatHandler) complete(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON", h.logger)
		return
	}
	if req.Prompt == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "prompt is required", h.logger)
		return
	}

	reply := h.orchestrator.Complete(r.Context(), req.Prompt, nil)
	if !reply.OK {
		h.logger.Warn("chat completion degraded", "response_length", len(reply.Text))
	}

	writeJSON(w, http.StatusOK, chatResponse{User: reply.Speaker, Response: reply.Text}, h.logger)
}
