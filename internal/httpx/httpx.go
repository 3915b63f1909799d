// Package httpx provides the HTTP primitive shared by all remote model
// clients: a single JSON POST with a pluggable payload extractor.
//
// The client never retries and never caches; callers that need backoff must
// layer it themselves. Cancellation and deadlines propagate through the
// request context.
//
// TLS certificate verification is always on. Deployments that need a private
// CA pass it explicitly with WithRootCAs; there is no insecure bypass.
package httpx

import (
	"bytes"
	"context"
	"crypto/tls"
	"crypto/x509"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/diarioai/diario/internal/log"
)

// Sentinel errors for transport-level failures. Checked with errors.Is().
var (
	// ErrTransport indicates the request never produced a usable response
	// (connection refused, DNS failure, timeout, cancelled context).
	ErrTransport = errors.New("transport failure")

	// ErrMalformedResponse indicates the response body was not valid JSON.
	ErrMalformedResponse = errors.New("malformed response")
)

// DefaultTimeout bounds a single remote model call when the caller's context
// carries no deadline of its own.
const DefaultTimeout = 60 * time.Second

// Result is the uniform outcome of a remote call.
//
// OK is true iff the HTTP status was exactly 200. Data holds whatever the
// extractor produced from the response body; extractors run on every parsed
// body, including error responses, and must degrade to a zero value rather
// than panic. Message carries the upstream error description on failure.
type Result[T any] struct {
	OK      bool
	Data    T
	Raw     json.RawMessage
	Message string
	Status  int
}

// Client executes JSON POST requests against remote model providers.
// Safe for concurrent use.
type Client struct {
	http   *http.Client
	logger log.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout overrides the default request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.http.Timeout = d
	}
}

// WithRootCAs trusts the given certificate pool instead of the system roots.
// This is the explicit opt-in for private CAs; verification itself cannot be
// turned off.
func WithRootCAs(pool *x509.CertPool) Option {
	return func(c *Client) {
		c.http.Transport = &http.Transport{
			TLSClientConfig: &tls.Config{
				RootCAs:    pool,
				MinVersion: tls.VersionTLS12,
			},
		}
	}
}

// WithHTTPClient replaces the underlying http.Client. Test use mostly.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client.
func New(logger log.Logger, opts ...Option) *Client {
	if logger == nil {
		logger = log.NewNop()
	}

	c := &Client{
		http:   &http.Client{Timeout: DefaultTimeout},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// upstreamError matches the error envelopes of the providers we call.
// Groq (OpenAI-compatible) nests the description under "error"; Cohere
// returns it at the top level.
type upstreamError struct {
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
	Message string `json:"message"`
}

func (e upstreamError) description() string {
	if e.Error != nil && e.Error.Message != "" {
		return e.Error.Message
	}
	return e.Message
}

// Post sends one JSON POST and extracts the payload from the parsed body.
//
// The extractor is applied to every syntactically valid JSON body regardless
// of status, mirroring the Result contract: on a non-200 response Data is
// still populated (usually with the extractor's neutral value) and Message
// carries the upstream error description when one is present.
func Post[T any](ctx context.Context, c *Client, url string, headers map[string]string, body any, extract func(json.RawMessage) T) (Result[T], error) {
	var zero Result[T]

	encoded, err := json.Marshal(body)
	if err != nil {
		return zero, fmt.Errorf("encoding request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(encoded))
	if err != nil {
		return zero, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Debug("post failed", "url", url, "error", err)
		return zero, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer func() { _ = resp.Body.Close() }()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return zero, fmt.Errorf("%w: reading body: %v", ErrTransport, err)
	}

	if !json.Valid(raw) {
		c.logger.Debug("non-JSON response", "url", url, "status", resp.StatusCode)
		return zero, fmt.Errorf("%w: status %d", ErrMalformedResponse, resp.StatusCode)
	}

	res := Result[T]{
		OK:     resp.StatusCode == http.StatusOK,
		Data:   extract(raw),
		Raw:    raw,
		Status: resp.StatusCode,
	}
	if !res.OK {
		var ue upstreamError
		// Body already validated as JSON; a shape mismatch just leaves
		// the message empty.
		_ = json.Unmarshal(raw, &ue)
		res.Message = ue.description()
	}

	c.logger.Debug("post completed",
		"url", url,
		"status", resp.StatusCode,
		"duration", time.Since(start))

	return res, nil
}
