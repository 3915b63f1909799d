package config

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
)

var (
	// ErrConfigNil indicates the configuration is nil.
	ErrConfigNil = errors.New("configuration is nil")

	// ErrMissingAPIKey indicates a required API key is missing.
	ErrMissingAPIKey = errors.New("missing API key")

	// ErrInvalidModelName indicates a model identifier is empty.
	ErrInvalidModelName = errors.New("invalid model name")

	// ErrInvalidTemperature indicates the temperature value is out of range.
	ErrInvalidTemperature = errors.New("invalid temperature")

	// ErrInvalidMaxTokens indicates a max tokens value is out of range.
	ErrInvalidMaxTokens = errors.New("invalid max tokens")

	// ErrInvalidDimension indicates the embedding dimension is out of range.
	ErrInvalidDimension = errors.New("invalid embedding dimension")

	// ErrInvalidPersona indicates a persona field is empty.
	ErrInvalidPersona = errors.New("invalid persona")

	// ErrInvalidPostgresHost indicates the PostgreSQL host is invalid.
	ErrInvalidPostgresHost = errors.New("invalid PostgreSQL host")

	// ErrInvalidPostgresPort indicates the PostgreSQL port is out of range.
	ErrInvalidPostgresPort = errors.New("invalid PostgreSQL port")

	// ErrInvalidPostgresDBName indicates the PostgreSQL database name is invalid.
	ErrInvalidPostgresDBName = errors.New("invalid PostgreSQL database name")

	// ErrInvalidPostgresPassword indicates the PostgreSQL password is invalid.
	ErrInvalidPostgresPassword = errors.New("invalid PostgreSQL password")

	// ErrInvalidPostgresSSLMode indicates the PostgreSQL SSL mode is invalid.
	ErrInvalidPostgresSSLMode = errors.New("invalid PostgreSQL SSL mode")
)

// Validate validates configuration values.
// Returns sentinel errors that can be checked with errors.Is().
func (c *Config) Validate() error {
	if c == nil {
		return ErrConfigNil
	}

	// Groq powers completions and embeddings; nothing works without it.
	// The Cohere key is optional: without it the search pipeline skips reranking.
	if c.GroqAPIKey == "" {
		return fmt.Errorf("%w: GROQ_API_KEY environment variable is required", ErrMissingAPIKey)
	}

	if c.ChatModel == "" {
		return fmt.Errorf("%w: chat_model cannot be empty", ErrInvalidModelName)
	}
	if c.RewriteModel == "" {
		return fmt.Errorf("%w: rewrite_model cannot be empty", ErrInvalidModelName)
	}
	if c.EmbedModel == "" {
		return fmt.Errorf("%w: embed_model cannot be empty", ErrInvalidModelName)
	}
	if c.CohereAPIKey != "" && c.RerankModel == "" {
		return fmt.Errorf("%w: rerank_model cannot be empty when a Cohere key is set", ErrInvalidModelName)
	}

	if c.Temperature < 0.0 || c.Temperature > 2.0 {
		return fmt.Errorf("%w: must be between 0.0 and 2.0, got %.2f", ErrInvalidTemperature, c.Temperature)
	}

	if c.ChatMaxTokens < 1 {
		return fmt.Errorf("%w: chat_max_tokens must be positive, got %d", ErrInvalidMaxTokens, c.ChatMaxTokens)
	}
	if c.RewriteMaxTokens < 1 {
		return fmt.Errorf("%w: rewrite_max_tokens must be positive, got %d", ErrInvalidMaxTokens, c.RewriteMaxTokens)
	}

	// pgvector caps indexed vectors at 2000 dimensions.
	if c.EmbeddingDimension < 1 || c.EmbeddingDimension > 2000 {
		return fmt.Errorf("%w: must be between 1 and 2000, got %d", ErrInvalidDimension, c.EmbeddingDimension)
	}

	if c.AssistantName == "" {
		return fmt.Errorf("%w: assistant_name cannot be empty", ErrInvalidPersona)
	}
	if c.Language == "" {
		return fmt.Errorf("%w: language cannot be empty", ErrInvalidPersona)
	}
	if c.Instructions == "" {
		return fmt.Errorf("%w: instructions cannot be empty", ErrInvalidPersona)
	}

	if c.PostgresHost == "" {
		return fmt.Errorf("%w: host cannot be empty", ErrInvalidPostgresHost)
	}
	if c.PostgresPort < 1 || c.PostgresPort > 65535 {
		return fmt.Errorf("%w: must be between 1 and 65535, got %d", ErrInvalidPostgresPort, c.PostgresPort)
	}
	if c.PostgresDBName == "" {
		return fmt.Errorf("%w: database name cannot be empty", ErrInvalidPostgresDBName)
	}
	if c.PostgresPassword == "" {
		return fmt.Errorf("%w: postgres_password must be set", ErrInvalidPostgresPassword)
	}
	if c.PostgresPassword == "diario_dev_password" {
		slog.Warn("using default development password for PostgreSQL",
			"warning", "change postgres_password for production deployments")
	}

	// Deprecated allow/prefer modes are excluded (MITM vulnerable).
	validSSLModes := []string{"disable", "require", "verify-ca", "verify-full"}
	if !slices.Contains(validSSLModes, c.PostgresSSLMode) {
		return fmt.Errorf("%w: %q is not valid, must be one of: %v",
			ErrInvalidPostgresSSLMode, c.PostgresSSLMode, validSSLModes)
	}

	return nil
}

// RerankEnabled reports whether the optional rerank stage is configured.
func (c *Config) RerankEnabled() bool {
	return c.CohereAPIKey != ""
}
