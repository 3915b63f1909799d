// Package app assembles the application: configuration, logging, storage,
// model clients, the retrieval pipeline, and the chat orchestrator.
package app

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/diarioai/diario/internal/chat"
	"github.com/diarioai/diario/internal/cohere"
	"github.com/diarioai/diario/internal/config"
	"github.com/diarioai/diario/internal/groq"
	"github.com/diarioai/diario/internal/httpx"
	"github.com/diarioai/diario/internal/knowledge"
	"github.com/diarioai/diario/internal/log"
	"github.com/diarioai/diario/internal/prompt"
	"github.com/diarioai/diario/internal/rag"
)

// App is the application container. Fields are wired once in New and
// read-only afterward.
type App struct {
	Config       *config.Config
	Logger       log.Logger
	Pool         *pgxpool.Pool
	Knowledge    *knowledge.Store
	Pipeline     *rag.Pipeline
	Orchestrator *chat.Orchestrator
}

// New wires all components from a validated configuration. The returned App
// owns the database pool; callers must Close it.
func New(ctx context.Context, cfg *config.Config, logger log.Logger) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}
	if logger == nil {
		logger = log.NewNop()
	}

	pool, err := pgxpool.New(ctx, cfg.PostgresURL())
	if err != nil {
		return nil, fmt.Errorf("creating database pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	httpc := httpx.New(logger)

	groqClient, err := groq.New(groq.Config{
		APIKey:     cfg.GroqAPIKey,
		BaseURL:    cfg.GroqBaseURL,
		EmbedModel: cfg.EmbedModel,
	}, httpc, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating completion client: %w", err)
	}

	store := knowledge.New(knowledge.NewQueries(pool), groqClient, cfg.EmbeddingDimension, logger)

	rewriter, err := rag.NewRewriter(groqClient, rag.RewriterConfig{
		Model:         cfg.RewriteModel,
		MaxTokens:     cfg.RewriteMaxTokens,
		Temperature:   cfg.Temperature,
		AssistantName: cfg.AssistantName,
		Language:      cfg.Language,
	}, logger)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("creating query rewriter: %w", err)
	}

	var reranker rag.DocumentReranker
	if cfg.RerankEnabled() {
		cohereClient, err := cohere.New(cohere.Config{
			APIKey:  cfg.CohereAPIKey,
			BaseURL: cfg.CohereBaseURL,
			Model:   cfg.RerankModel,
		}, httpc, logger)
		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("creating rerank client: %w", err)
		}
		reranker = rag.NewReranker(cohereClient, logger)
	} else {
		logger.Info("reranking disabled, no rerank API key configured")
	}

	pipeline := rag.NewPipeline(rewriter, groqClient, store, reranker, logger)

	persona, err := prompt.NewPersona(cfg.AssistantName, cfg.Language, cfg.Instructions)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("building persona: %w", err)
	}
	orchestrator := chat.New(groqClient, persona, chat.Config{
		Model:       cfg.ChatModel,
		MaxTokens:   cfg.ChatMaxTokens,
		Temperature: cfg.Temperature,
	}, logger)

	logger.Info("application wired",
		"chat_model", cfg.ChatModel,
		"embed_model", cfg.EmbedModel,
		"embedding_dimension", cfg.EmbeddingDimension,
		"rerank_enabled", cfg.RerankEnabled())

	return &App{
		Config:       cfg,
		Logger:       logger,
		Pool:         pool,
		Knowledge:    store,
		Pipeline:     pipeline,
		Orchestrator: orchestrator,
	}, nil
}

// Close releases all resources owned by the App.
func (a *App) Close() {
	if a.Pool != nil {
		a.Pool.Close()
		a.Logger.Info("database pool closed")
	}
}
