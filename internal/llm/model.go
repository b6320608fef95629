// Package llm wraps langchaingo text generation with bounded timeouts and
// strict output parsing.
package llm

import (
	"context"
	"fmt"
	"time"

	"github.com/raphaelgruber/memctx-go/internal/config"
	"github.com/raphaelgruber/memctx-go/internal/metrics"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/anthropic"
	"github.com/tmc/langchaingo/llms/ollama"
	"github.com/tmc/langchaingo/llms/openai"
)

// Model wraps a langchaingo LLM for text generation. A nil *Model is a
// valid "no backend" model: every call returns ErrNoBackend.
type Model struct {
	llm       llms.Model
	modelName string
	timeout   time.Duration
	collect   *metrics.Collector
}

// NewModel creates an LLM model based on configuration. Returns (nil, nil)
// when no provider is configured, which callers treat as a precondition
// rather than an error.
func NewModel(cfg config.Config, collect *metrics.Collector) (*Model, error) {
	if !cfg.HasLLM() {
		return nil, nil
	}

	var model llms.Model
	var err error

	switch cfg.LLMProvider {
	case config.ProviderOllama:
		model, err = ollama.New(
			ollama.WithModel(cfg.LLMModel),
			ollama.WithServerURL(cfg.OllamaHost),
		)
		if err != nil {
			return nil, fmt.Errorf("create ollama model: %w", err)
		}

	case config.ProviderOpenAI:
		model, err = openai.New(
			openai.WithToken(cfg.OpenAIAPIKey),
			openai.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create openai model: %w", err)
		}

	case config.ProviderAnthropic:
		model, err = anthropic.New(
			anthropic.WithToken(cfg.AnthropicAPIKey),
			anthropic.WithModel(cfg.LLMModel),
		)
		if err != nil {
			return nil, fmt.Errorf("create anthropic model: %w", err)
		}

	default:
		return nil, fmt.Errorf("unsupported LLM provider: %s", cfg.LLMProvider)
	}

	timeout := cfg.LLMTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &Model{
		llm:       model,
		modelName: cfg.LLMModel,
		timeout:   timeout,
		collect:   collect,
	}, nil
}

// NewModelWith wraps an already-constructed langchaingo model, mainly for
// tests.
func NewModelWith(model llms.Model, modelName string, timeout time.Duration) *Model {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Model{llm: model, modelName: modelName, timeout: timeout}
}

// Name returns the configured model name.
func (m *Model) Name() string {
	if m == nil {
		return ""
	}
	return m.modelName
}

// Complete generates text from a system and user prompt under the
// configured timeout. An empty systemPrompt is allowed. Transport errors,
// timeouts, and empty responses come back wrapped in ErrUnavailable so
// callers can degrade uniformly.
func (m *Model) Complete(ctx context.Context, systemPrompt, userPrompt string, maxTokens int) (string, error) {
	if m == nil || m.llm == nil {
		return "", ErrNoBackend
	}

	ctx, cancel := context.WithTimeout(ctx, m.timeout)
	defer cancel()

	start := time.Now()

	messages := make([]llms.MessageContent, 0, 2)
	if systemPrompt != "" {
		messages = append(messages, llms.TextParts(llms.ChatMessageTypeSystem, systemPrompt))
	}
	messages = append(messages, llms.TextParts(llms.ChatMessageTypeHuman, userPrompt))

	opts := []llms.CallOption{}
	if maxTokens > 0 {
		opts = append(opts, llms.WithMaxTokens(maxTokens))
	}

	response, err := m.llm.GenerateContent(ctx, messages, opts...)
	if m.collect != nil {
		m.collect.RecordTiming(metrics.OpLLMGenerate, time.Since(start))
	}
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	if len(response.Choices) == 0 {
		return "", fmt.Errorf("%w: no response choices", ErrUnavailable)
	}

	return response.Choices[0].Content, nil
}
