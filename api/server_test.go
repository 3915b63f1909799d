package api

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/diarioai/diario/internal/chat"
	"github.com/diarioai/diario/internal/log"
)

func newTestServer() *Server {
	return NewServer(
		&mockStore{},
		&mockPipeline{},
		&mockOrchestrator{reply: chat.Reply{Speaker: chat.Speaker, Text: "ciao", OK: true}},
		nil,
		DefaultRateLimit,
		log.NewNop(),
	)
}

func TestServer_Routes(t *testing.T) {
	t.Parallel()

	handler := newTestServer().Handler()

	tests := []struct {
		name       string
		method     string
		target     string
		body       string
		wantStatus int
	}{
		{name: "liveness", method: http.MethodGet, target: "/health", wantStatus: http.StatusOK},
		{name: "readiness without pool", method: http.MethodGet, target: "/ready", wantStatus: http.StatusServiceUnavailable},
		{name: "ingest", method: http.MethodPost, target: "/api/documents", body: `{"title":"t","content":"c"}`, wantStatus: http.StatusCreated},
		{name: "search", method: http.MethodGet, target: "/api/search?query=run", wantStatus: http.StatusOK},
		{name: "chat", method: http.MethodPost, target: "/api/chat", body: `{"prompt":"ciao"}`, wantStatus: http.StatusOK},
		{name: "unknown route", method: http.MethodGet, target: "/api/nope", wantStatus: http.StatusNotFound},
		{name: "wrong method", method: http.MethodGet, target: "/api/chat", wantStatus: http.StatusMethodNotAllowed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var body *strings.Reader
			if tt.body != "" {
				body = strings.NewReader(tt.body)
			} else {
				body = strings.NewReader("")
			}
			rec := httptest.NewRecorder()
			handler.ServeHTTP(rec, httptest.NewRequest(tt.method, tt.target, body))

			assert.Equal(t, tt.wantStatus, rec.Code)
		})
	}
}

func TestServer_RunGracefulShutdown(t *testing.T) {
	t.Parallel()

	srv := newTestServer()
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() {
		done <- srv.Run(ctx, "127.0.0.1:0")
	}()

	// Let the listener come up, then trigger shutdown.
	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
