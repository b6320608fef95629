// Package config loads engine configuration from the environment with an
// optional YAML overlay file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Provider identifies an LLM backend.
type Provider string

const (
	ProviderOllama    Provider = "ollama"
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	// ProviderNone disables LLM-backed extraction and summarization.
	// The context builder still works, it just degrades those tiers.
	ProviderNone Provider = "none"
)

// Config holds all configuration values.
type Config struct {
	// SurrealDB connection
	SurrealDBURL       string `yaml:"surrealdb_url"`
	SurrealDBNamespace string `yaml:"surrealdb_namespace"`
	SurrealDBDatabase  string `yaml:"surrealdb_database"`
	SurrealDBUser      string `yaml:"surrealdb_user"`
	SurrealDBPass      string `yaml:"surrealdb_pass"`
	SurrealDBAuthLevel string `yaml:"surrealdb_auth_level"`

	// Embedding
	OllamaHost        string `yaml:"ollama_host"`
	EmbeddingProvider string `yaml:"embedding_provider"`
	EmbeddingModel    string `yaml:"embedding_model"`
	EmbeddingDim      int    `yaml:"embedding_dim"`
	VoyageAPIKey      string `yaml:"-"`

	// LLM completion
	LLMProvider     Provider      `yaml:"llm_provider"`
	LLMModel        string        `yaml:"llm_model"`
	LLMTimeout      time.Duration `yaml:"llm_timeout"`
	OpenAIAPIKey    string        `yaml:"-"`
	AnthropicAPIKey string        `yaml:"-"`

	// Context assembly
	MaxMessages   int           `yaml:"max_messages"`
	MaxTokens     int           `yaml:"max_tokens"`
	DecayDays     float64       `yaml:"decay_days"`
	MinRelevance  float64       `yaml:"min_relevance"`
	MinImportance float64       `yaml:"min_importance"`
	GraphBudget   time.Duration `yaml:"graph_budget"`

	// Logging
	LogFile  string     `yaml:"log_file"`
	LogLevel slog.Level `yaml:"-"`
}

// Load reads configuration from environment variables. If MEMCTX_CONFIG
// points to a YAML file, its values are applied first and the environment
// overrides them.
func Load() Config {
	cfg := Config{
		SurrealDBURL:       "ws://localhost:8000/rpc",
		SurrealDBNamespace: "memctx",
		SurrealDBDatabase:  "conversations",
		SurrealDBUser:      "root",
		SurrealDBPass:      "root",
		SurrealDBAuthLevel: "root",

		OllamaHost:        "http://localhost:11434",
		EmbeddingProvider: "ollama",
		EmbeddingModel:    "all-minilm:l6-v2",
		EmbeddingDim:      384,

		LLMProvider: ProviderOllama,
		LLMModel:    "llama3.2",
		LLMTimeout:  30 * time.Second,

		MaxMessages:   100,
		MaxTokens:     6000,
		DecayDays:     30,
		MinRelevance:  0.6,
		MinImportance: 0.3,
		GraphBudget:   15 * time.Second,

		LogFile:  "/tmp/memctx.log",
		LogLevel: slog.LevelInfo,
	}

	if path := os.Getenv("MEMCTX_CONFIG"); path != "" {
		if err := cfg.applyFile(path); err != nil {
			slog.Warn("failed to load config file, using defaults", "path", path, "error", err)
		}
	}

	cfg.applyEnv()
	return cfg
}

// applyFile overlays values from a YAML config file.
func (c *Config) applyFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, c); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// applyEnv overrides any value that has an environment variable set.
func (c *Config) applyEnv() {
	setStr(&c.SurrealDBURL, "SURREALDB_URL")
	setStr(&c.SurrealDBNamespace, "SURREALDB_NAMESPACE")
	setStr(&c.SurrealDBDatabase, "SURREALDB_DATABASE")
	setStr(&c.SurrealDBUser, "SURREALDB_USER")
	setStr(&c.SurrealDBPass, "SURREALDB_PASS")
	setStr(&c.SurrealDBAuthLevel, "SURREALDB_AUTH_LEVEL")

	setStr(&c.OllamaHost, "OLLAMA_HOST")
	setStr(&c.EmbeddingProvider, "MEMCTX_EMBEDDING_PROVIDER")
	setStr(&c.EmbeddingModel, "MEMCTX_EMBEDDING_MODEL")
	setInt(&c.EmbeddingDim, "MEMCTX_EMBEDDING_DIM")
	c.VoyageAPIKey = os.Getenv("VOYAGE_API_KEY")

	if v := os.Getenv("MEMCTX_LLM_PROVIDER"); v != "" {
		c.LLMProvider = Provider(strings.ToLower(v))
	}
	setStr(&c.LLMModel, "MEMCTX_LLM_MODEL")
	setDur(&c.LLMTimeout, "MEMCTX_LLM_TIMEOUT")
	c.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")
	c.AnthropicAPIKey = os.Getenv("ANTHROPIC_API_KEY")

	setInt(&c.MaxMessages, "MEMCTX_MAX_MESSAGES")
	setInt(&c.MaxTokens, "MEMCTX_MAX_TOKENS")
	setFloat(&c.DecayDays, "MEMCTX_DECAY_DAYS")
	setFloat(&c.MinRelevance, "MEMCTX_MIN_RELEVANCE")
	setFloat(&c.MinImportance, "MEMCTX_MIN_IMPORTANCE")
	setDur(&c.GraphBudget, "MEMCTX_GRAPH_BUDGET")

	setStr(&c.LogFile, "MEMCTX_LOG_FILE")
	if v := os.Getenv("MEMCTX_LOG_LEVEL"); v != "" {
		c.LogLevel = parseLogLevel(v)
	}
}

// HasLLM reports whether an LLM backend is configured.
func (c Config) HasLLM() bool {
	switch c.LLMProvider {
	case ProviderNone, "":
		return false
	case ProviderOpenAI:
		return c.OpenAIAPIKey != ""
	case ProviderAnthropic:
		return c.AnthropicAPIKey != ""
	default:
		return true
	}
}

func setStr(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}

func setFloat(dst *float64, key string) {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			*dst = f
		}
	}
}

func setDur(dst *time.Duration, key string) {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			*dst = d
		}
	}
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToUpper(s) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
