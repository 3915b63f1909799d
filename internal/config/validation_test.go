package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_ValidConfig(t *testing.T) {
	t.Parallel()

	require.NoError(t, validConfig().Validate())
}

func TestValidate_NilConfig(t *testing.T) {
	t.Parallel()

	var cfg *Config
	assert.ErrorIs(t, cfg.Validate(), ErrConfigNil)
}

func TestValidate_SentinelErrors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{"missing groq key", func(c *Config) { c.GroqAPIKey = "" }, ErrMissingAPIKey},
		{"empty chat model", func(c *Config) { c.ChatModel = "" }, ErrInvalidModelName},
		{"empty rewrite model", func(c *Config) { c.RewriteModel = "" }, ErrInvalidModelName},
		{"empty embed model", func(c *Config) { c.EmbedModel = "" }, ErrInvalidModelName},
		{"cohere key without rerank model", func(c *Config) { c.RerankModel = "" }, ErrInvalidModelName},
		{"temperature too high", func(c *Config) { c.Temperature = 2.5 }, ErrInvalidTemperature},
		{"negative temperature", func(c *Config) { c.Temperature = -0.1 }, ErrInvalidTemperature},
		{"zero chat max tokens", func(c *Config) { c.ChatMaxTokens = 0 }, ErrInvalidMaxTokens},
		{"zero rewrite max tokens", func(c *Config) { c.RewriteMaxTokens = 0 }, ErrInvalidMaxTokens},
		{"zero dimension", func(c *Config) { c.EmbeddingDimension = 0 }, ErrInvalidDimension},
		{"dimension above pgvector index cap", func(c *Config) { c.EmbeddingDimension = 4096 }, ErrInvalidDimension},
		{"empty assistant name", func(c *Config) { c.AssistantName = "" }, ErrInvalidPersona},
		{"empty language", func(c *Config) { c.Language = "" }, ErrInvalidPersona},
		{"empty instructions", func(c *Config) { c.Instructions = "" }, ErrInvalidPersona},
		{"empty postgres host", func(c *Config) { c.PostgresHost = "" }, ErrInvalidPostgresHost},
		{"postgres port out of range", func(c *Config) { c.PostgresPort = 70000 }, ErrInvalidPostgresPort},
		{"empty db name", func(c *Config) { c.PostgresDBName = "" }, ErrInvalidPostgresDBName},
		{"empty password", func(c *Config) { c.PostgresPassword = "" }, ErrInvalidPostgresPassword},
		{"deprecated ssl mode", func(c *Config) { c.PostgresSSLMode = "prefer" }, ErrInvalidPostgresSSLMode},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := validConfig()
			tt.mutate(cfg)
			assert.ErrorIs(t, cfg.Validate(), tt.wantErr)
		})
	}
}

func TestRerankEnabled(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	assert.True(t, cfg.RerankEnabled())

	cfg.CohereAPIKey = ""
	assert.False(t, cfg.RerankEnabled())
}

func TestValidate_NoCohereKeyIsValid(t *testing.T) {
	t.Parallel()

	cfg := validConfig()
	cfg.CohereAPIKey = ""
	cfg.RerankModel = ""
	require.NoError(t, cfg.Validate())
}
