package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/diarioai/diario/internal/knowledge"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
)

const (
	// DefaultSearchLimit is the result cap when the query string omits limit.
	DefaultSearchLimit = 5

	// DefaultSearchThreshold is the similarity floor when the query string
	// omits threshold.
	DefaultSearchThreshold = 0.7
)

// DocumentStore is the ingestion surface the handler needs.
// *knowledge.Store satisfies it.
type DocumentStore interface {
	Add(ctx context.Context, title, content string) (*knowledge.Document, error)
}

// SearchPipeline is the retrieval surface the handler needs.
// *rag.Pipeline satisfies it.
type SearchPipeline interface {
	Search(ctx context.Context, rawQuery string, history *prompt.History, limit int, threshold float64) ([]knowledge.SearchResult, error)
}

// DocumentHandler handles document ingestion and search endpoints.
type DocumentHandler struct {
	store    DocumentStore
	pipeline SearchPipeline
	logger   log.Logger
}

// NewDocumentHandler creates a document handler.
func NewDocumentHandler(store DocumentStore, pipeline SearchPipeline, logger log.Logger) *DocumentHandler {
	return &DocumentHandler{store: store, pipeline: pipeline, logger: logger}
}

// RegisterRoutes registers document routes on the given mux.
func (h *DocumentHandler) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/documents", h.create)
	mux.HandleFunc("GET /api/search", h.search)
}

// createDocumentRequest is the ingestion request body.
type createDocumentRequest struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

// documentResponse is a stored document on the wire. The embedding is
// internal and never serialized.
type documentResponse struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

// searchResultResponse is one scored match on the wire.
type searchResultResponse struct {
	documentResponse
	Score float64 `json:"score"`
}

// searchResponse is the search endpoint response body.
type searchResponse struct {
	Query   string                 `json:"query"`
	Results []searchResultResponse `json:"results"`
}

// create handles POST /api/documents.
func (h *DocumentHandler) create(w http.ResponseWriter, r *http.Request) {
	var req createDocumentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid_request", "request body must be JSON", h.logger)
		return
	}
	if req.Title == "" || req.Content == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "title and content are required", h.logger)
		return
	}

	doc, err := h.store.Add(r.Context(), req.Title, req.Content)
	switch {
	case err == nil:
	case isClientError(err):
		writeError(w, http.StatusBadRequest, "invalid_request", err.Error(), h.logger)
		return
	default:
		h.logger.Error("document ingestion failed", "error", err)
		writeError(w, http.StatusInternalServerError, "ingestion_failed", err.Error(), h.logger)
		return
	}

	writeJSON(w, http.StatusCreated, documentResponse{
		ID:        doc.ID,
		Title:     doc.Title,
		Content:   doc.Content,
		CreatedAt: doc.CreatedAt,
	}, h.logger)
}

// search handles GET /api/search.
func (h *DocumentHandler) search(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("query")
	if query == "" {
		writeError(w, http.StatusBadRequest, "invalid_request", "query is required", h.logger)
		return
	}

	limit := DefaultSearchLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			writeError(w, http.StatusBadRequest, "invalid_request", "limit must be a positive integer", h.logger)
			return
		}
		limit = parsed
	}

	threshold := DefaultSearchThreshold
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed < 0 || parsed > 1 {
			writeError(w, http.StatusBadRequest, "invalid_request", "threshold must be between 0 and 1", h.logger)
			return
		}
		threshold = parsed
	}

	results, err := h.pipeline.Search(r.Context(), query, nil, limit, threshold)
	if err != nil {
		h.logger.Error("search failed", "error", err, "query_length", len(query))
		writeError(w, http.StatusInternalServerError, "search_failed", err.Error(), h.logger)
		return
	}

	out := make([]searchResultResponse, 0, len(results))
	for _, result := range results {
		out = append(out, searchResultResponse{
			documentResponse: documentResponse{
				ID:        result.Document.ID,
				Title:     result.Document.Title,
				Content:   result.Document.Content,
				CreatedAt: result.Document.CreatedAt,
			},
			Score: result.Score,
		})
	}

	writeJSON(w, http.StatusOK, searchResponse{Query: query, Results: out}, h.logger)
}

// isClientError reports whether err is the caller's fault.
func isClientError(err error) bool {
	return errors.Is(err, knowledge.ErrInvalidDocument)
}
