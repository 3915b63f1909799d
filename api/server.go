// Package api exposes the journal service over HTTP.
//
// Endpoints:
//
//	POST /api/documents  →  ingest a document
//	GET  /api/search     →  retrieval pipeline (rewrite, embed, search, rerank)
//	POST /api/chat       →  single-shot chat completion
//	GET  /health         →  liveness probe
//	GET  /ready          →  readiness probe
//
// File structure:
//   - server.go: HTTP server setup and lifecycle
//   - middleware.go: recovery, logging, rate limiting
//   - documents.go: document ingestion and search endpoints
//   - chat.go: chat completion endpoint
//   - health.go: health check endpoints
//   - response.go: JSON response helpers
package api

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"golang.org/x/time/rate"

	"github.com/diarioai/diario/internal/log"
)

const (
	// DefaultAddr is the default address for the HTTP server.
	DefaultAddr = "127.0.0.1:3400"

	// ShutdownTimeout is the maximum time to wait for graceful shutdown.
	ShutdownTimeout = 10 * time.Second

	// ReadHeaderTimeout bounds header reads to keep slow clients from
	// pinning connections.
	ReadHeaderTimeout = 10 * time.Second

	// ReadTimeout is the maximum duration for reading the entire request.
	ReadTimeout = 30 * time.Second

	// WriteTimeout is generous because every handler waits on at least one
	// remote model call.
	WriteTimeout = 120 * time.Second

	// IdleTimeout is the keep-alive window between requests.
	IdleTimeout = 120 * time.Second

	// DefaultRateLimit is the steady request rate admitted per second.
	DefaultRateLimit = 10
)

// Server is the HTTP server for the journal REST API.
type Server struct {
	mux     *http.ServeMux
	limiter *rate.Limiter
	logger  log.Logger

	health    *HealthHandler
	documents *DocumentHandler
	chat      *ChatHandler
}

// NewServer creates a server with all routes registered. rateBurst caps the
// instantaneous burst admitted by the rate limiter; zero or negative falls
// back to DefaultRateLimit.
func NewServer(store DocumentStore, pipeline SearchPipeline, orchestrator ChatCompleter, pool *pgxpool.Pool, rateBurst int, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNop()
	}
	if rateBurst <= 0 {
		rateBurst = DefaultRateLimit
	}

	mux := http.NewServeMux()
	s := &Server{
		mux:       mux,
		limiter:   rate.NewLimiter(rate.Limit(DefaultRateLimit), rateBurst),
		logger:    logger,
		health:    NewHealthHandler(pool, logger),
		documents: NewDocumentHandler(store, pipeline, logger),
		chat:      NewChatHandler(orchestrator, logger),
	}

	s.health.RegisterRoutes(mux)
	s.documents.RegisterRoutes(mux)
	s.chat.RegisterRoutes(mux)

	return s
}

// Handler returns the mux with middleware applied.
// Middleware order: recovery → logging → rate limit → handler.
func (s *Server) Handler() http.Handler {
	return chain(s.mux,
		recoveryMiddleware(s.logger),
		loggingMiddleware(s.logger),
		rateLimitMiddleware(s.limiter),
	)
}

// Run starts the HTTP server and blocks until the context is cancelled,
// then shuts down gracefully within ShutdownTimeout.
func (s *Server) Run(ctx context.Context, addr string) error {
	if addr == "" {
		addr = DefaultAddr
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: ReadHeaderTimeout,
		ReadTimeout:       ReadTimeout,
		WriteTimeout:      WriteTimeout,
		IdleTimeout:       IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("starting HTTP server", "addr", addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	}
}
