package sentiment

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/go-resty/resty/v2"
	"github.com/tidwall/gjson"

	"github.com/twfinlab/stocknews/internal/config"
	"github.com/twfinlab/stocknews/internal/types"
)

// Supported LLM providers.
const (
	ProviderOllama = "ollama"
	ProviderOpenAI = "openai"
)

// LLMClient talks to a local Ollama server or an OpenAI-compatible API.
type LLMClient struct {
	http        *resty.Client
	provider    string
	model       string
	temperature float64
	maxTokens   int
	logger      *slog.Logger
}

// NewLLMClient creates an LLM client from config.
func NewLLMClient(cfg *config.SentimentConfig, logger *slog.Logger) (*LLMClient, error) {
	switch cfg.Provider {
	case ProviderOllama, ProviderOpenAI:
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}

	client := resty.New()
	client.SetBaseURL(cfg.Endpoint)
	client.SetTimeout(cfg.Timeout)
	if cfg.Provider == ProviderOpenAI && cfg.APIKey != "" {
		client.SetAuthToken(cfg.APIKey)
	}

	return &LLMClient{
		http:        client,
		provider:    cfg.Provider,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		logger:      logger.With("component", "llm"),
	}, nil
}

// Generate sends the prompt and returns the raw model output.
func (c *LLMClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.provider == ProviderOpenAI {
		return c.generateOpenAI(ctx, prompt)
	}
	return c.generateOllama(ctx, prompt)
}

func (c *LLMClient) generateOllama(ctx context.Context, prompt string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model":  c.model,
			"prompt": prompt,
			"stream": false,
			"format": "json",
			"options": map[string]any{
				"temperature": c.temperature,
				"num_predict": c.maxTokens,
			},
		}).
		Post("/api/generate")
	if err != nil {
		return "", fmt.Errorf("ollama request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", &types.FetchError{
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("ollama: unexpected status"),
			Retryable:  resp.StatusCode() == 429 || resp.StatusCode() >= 500,
		}
	}

	out := gjson.GetBytes(resp.Body(), "response").String()
	if out == "" {
		return "", fmt.Errorf("ollama: empty response")
	}
	return out, nil
}

func (c *LLMClient) generateOpenAI(ctx context.Context, prompt string) (string, error) {
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(map[string]any{
			"model": c.model,
			"messages": []map[string]string{
				{"role": "user", "content": prompt},
			},
			"temperature": c.temperature,
			"max_tokens":  c.maxTokens,
		}).
		Post("/chat/completions")
	if err != nil {
		return "", fmt.Errorf("openai request: %w", err)
	}
	if resp.StatusCode() != 200 {
		return "", &types.FetchError{
			URL:        resp.Request.URL,
			StatusCode: resp.StatusCode(),
			Err:        fmt.Errorf("openai: unexpected status"),
			Retryable:  resp.StatusCode() == 429 || resp.StatusCode() >= 500,
		}
	}

	out := gjson.GetBytes(resp.Body(), "choices.0.message.content").String()
	if out == "" {
		return "", fmt.Errorf("openai: empty response")
	}
	return out, nil
}

// extractJSON pulls the first balanced JSON object out of model output.
// Models wrap their answer in prose often enough that this is worth doing
// even with format=json requested.
func extractJSON(s string) string {
	start := strings.Index(s, "{")
	if start == -1 {
		return "{}"
	}
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return s[start : i+1]
			}
		}
	}
	return "{}"
}
