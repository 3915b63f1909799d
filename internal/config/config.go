// Package config provides application configuration with multi-source priority.
//
// Configuration sources (highest to lowest priority):
//  1. Environment variables (runtime override)
//  2. Config file (~/.diario/config.yaml)
//  3. Default values
//
// Main configuration categories:
//   - Model: provider endpoints, model identifiers, sampling parameters
//   - Persona: assistant name and response language
//   - Storage: PostgreSQL connection (see storage.go)
//   - Server: listen address and rate limiting
//
// Sensitive fields (API keys, passwords) are masked in MarshalJSON and never
// logged. Validation lives in validation.go and uses sentinel errors so callers
// can check with errors.Is().
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
)

// Default model parameters. These mirror the fixed constants used by the
// chat and rewrite stages; they are configuration so deployments can follow
// provider model deprecations without a rebuild.
const (
	DefaultGroqBaseURL   = "https://api.groq.com"
	DefaultCohereBaseURL = "https://api.cohere.com"

	DefaultChatModel    = "llama-3.1-70b-versatile"
	DefaultRewriteModel = "llama3-70b-8192"
	DefaultEmbedModel   = "llama-3.1-70b-versatile"
	DefaultRerankModel  = "rerank-multilingual-v3.0"

	DefaultChatMaxTokens    = 4096
	DefaultRewriteMaxTokens = 15000
	DefaultTemperature      = 0.6

	// DefaultEmbeddingDimension must match the vector(N) column in
	// db/migrations. Changing it requires a new migration.
	DefaultEmbeddingDimension = 1024

	DefaultAssistantName = "Marco"
	DefaultLanguage      = "italiano"
	DefaultInstructions  = "Sei l'assistente di un diario di allenamento. Rispondi usando le informazioni del diario quando sono disponibili."
)

// Config stores application configuration.
// SECURITY: sensitive fields are explicitly masked in MarshalJSON().
type Config struct {
	// Remote model providers
	GroqAPIKey    string `mapstructure:"groq_api_key" json:"groq_api_key"`     // SENSITIVE: masked in MarshalJSON
	CohereAPIKey  string `mapstructure:"cohere_api_key" json:"cohere_api_key"` // SENSITIVE: masked in MarshalJSON
	GroqBaseURL   string `mapstructure:"groq_base_url" json:"groq_base_url"`
	CohereBaseURL string `mapstructure:"cohere_base_url" json:"cohere_base_url"`

	// Model selection and sampling
	ChatModel        string  `mapstructure:"chat_model" json:"chat_model"`
	RewriteModel     string  `mapstructure:"rewrite_model" json:"rewrite_model"`
	EmbedModel       string  `mapstructure:"embed_model" json:"embed_model"`
	RerankModel      string  `mapstructure:"rerank_model" json:"rerank_model"`
	ChatMaxTokens    int     `mapstructure:"chat_max_tokens" json:"chat_max_tokens"`
	RewriteMaxTokens int     `mapstructure:"rewrite_max_tokens" json:"rewrite_max_tokens"`
	Temperature      float32 `mapstructure:"temperature" json:"temperature"`

	// Persona
	AssistantName string `mapstructure:"assistant_name" json:"assistant_name"`
	Language      string `mapstructure:"language" json:"language"`
	Instructions  string `mapstructure:"instructions" json:"instructions"`

	// Vector search
	EmbeddingDimension int `mapstructure:"embedding_dimension" json:"embedding_dimension"`

	// Storage configuration (see storage.go)
	PostgresHost     string `mapstructure:"postgres_host" json:"postgres_host"`
	PostgresPort     int    `mapstructure:"postgres_port" json:"postgres_port"`
	PostgresUser     string `mapstructure:"postgres_user" json:"postgres_user"`
	PostgresPassword string `mapstructure:"postgres_password" json:"postgres_password"` // SENSITIVE: masked in MarshalJSON
	PostgresDBName   string `mapstructure:"postgres_db_name" json:"postgres_db_name"`
	PostgresSSLMode  string `mapstructure:"postgres_ssl_mode" json:"postgres_ssl_mode"`

	// Server configuration
	ListenAddr string `mapstructure:"listen_addr" json:"listen_addr"`
	RateBurst  int    `mapstructure:"rate_burst" json:"rate_burst"`

	// Observability configuration
	OTLPEndpoint string `mapstructure:"otlp_endpoint" json:"otlp_endpoint"`
	ServiceName  string `mapstructure:"service_name" json:"service_name"`
	Environment  string `mapstructure:"environment" json:"environment"`
}

// Load loads configuration.
// Priority: environment variables > configuration file > default values.
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("getting user home directory: %w", err)
	}

	configDir := filepath.Join(home, ".diario")
	if err := os.MkdirAll(configDir, 0o750); err != nil {
		return nil, fmt.Errorf("creating config directory: %w", err)
	}

	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(configDir)
	v.AddConfigPath(".")

	setDefaults(v)
	bindEnvVariables(v)

	if err := v.ReadInConfig(); err != nil {
		// Missing config file is not an error; defaults apply.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		slog.Debug("configuration file not found, using defaults",
			"search_paths", []string{configDir, "."})
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing configuration: %w", err)
	}

	// DATABASE_URL overrides individual postgres_* settings.
	if err := cfg.parseDatabaseURL(); err != nil {
		return nil, fmt.Errorf("parsing DATABASE_URL: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("validating configuration: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets all default configuration values.
func setDefaults(v *viper.Viper) {
	v.SetDefault("groq_base_url", DefaultGroqBaseURL)
	v.SetDefault("cohere_base_url", DefaultCohereBaseURL)

	v.SetDefault("chat_model", DefaultChatModel)
	v.SetDefault("rewrite_model", DefaultRewriteModel)
	v.SetDefault("embed_model", DefaultEmbedModel)
	v.SetDefault("rerank_model", DefaultRerankModel)
	v.SetDefault("chat_max_tokens", DefaultChatMaxTokens)
	v.SetDefault("rewrite_max_tokens", DefaultRewriteMaxTokens)
	v.SetDefault("temperature", DefaultTemperature)

	v.SetDefault("assistant_name", DefaultAssistantName)
	v.SetDefault("language", DefaultLanguage)
	v.SetDefault("instructions", DefaultInstructions)

	v.SetDefault("embedding_dimension", DefaultEmbeddingDimension)

	// PostgreSQL defaults (matching docker-compose.yml)
	v.SetDefault("postgres_host", "localhost")
	v.SetDefault("postgres_port", 5432)
	v.SetDefault("postgres_user", "diario")
	v.SetDefault("postgres_password", "diario_dev_password")
	v.SetDefault("postgres_db_name", "diario")
	v.SetDefault("postgres_ssl_mode", "disable")

	v.SetDefault("listen_addr", "127.0.0.1:3001")
	v.SetDefault("rate_burst", 0)

	v.SetDefault("otlp_endpoint", "")
	v.SetDefault("service_name", "diario")
	v.SetDefault("environment", "dev")
}

// bindEnvVariables binds environment variables explicitly.
// Secrets are only accepted from the environment, never from the config file
// checked into a dotfiles repo by accident.
func bindEnvVariables(v *viper.Viper) {
	// Hardcoded keys cannot fail to bind; a panic here is a bug.
	mustBind := func(key, envVar string) {
		if err := v.BindEnv(key, envVar); err != nil {
			panic(fmt.Sprintf("BUG: failed to bind %q to %q: %v", key, envVar, err))
		}
	}

	mustBind("groq_api_key", "GROQ_API_KEY")
	mustBind("cohere_api_key", "COHERE_API_KEY")

	mustBind("chat_model", "DIARIO_CHAT_MODEL")
	mustBind("rewrite_model", "DIARIO_REWRITE_MODEL")
	mustBind("embed_model", "DIARIO_EMBED_MODEL")
	mustBind("rerank_model", "DIARIO_RERANK_MODEL")

	mustBind("assistant_name", "DIARIO_ASSISTANT_NAME")
	mustBind("language", "DIARIO_LANGUAGE")

	mustBind("listen_addr", "DIARIO_LISTEN_ADDR")
	mustBind("rate_burst", "DIARIO_RATE_BURST")

	mustBind("otlp_endpoint", "DIARIO_OTLP_ENDPOINT")
	mustBind("environment", "DIARIO_ENV")
}

// maskedValue is the placeholder for masked sensitive data.
const maskedValue = "████████"

// maskSecret masks a secret for safe logging. Short secrets are fully masked;
// longer ones keep the first and last two characters for debug utility.
func maskSecret(s string) string {
	if s == "" {
		return ""
	}
	if len(s) <= 8 {
		return maskedValue
	}
	return s[:2] + maskedValue + s[len(s)-2:]
}

// MarshalJSON masks sensitive fields so Config can be logged safely.
func (c Config) MarshalJSON() ([]byte, error) {
	type alias Config // avoid recursion
	masked := alias(c)
	masked.GroqAPIKey = maskSecret(c.GroqAPIKey)
	masked.CohereAPIKey = maskSecret(c.CohereAPIKey)
	masked.PostgresPassword = maskSecret(c.PostgresPassword)
	return json.Marshal(masked)
}
