// Package ai provides the LLM client used for natural language
// understanding. All supported providers speak the OpenAI chat
// completion protocol; Ollama is reached through its /v1 compatibility
// endpoint.
package ai

import (
	"context"
	"math"
	"time"

	"log/slog"

	"github.com/pkg/errors"
	"github.com/sashabaranov/go-openai"
	"golang.org/x/time/rate"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
)

// LLMConfig holds the LLM client configuration.
type LLMConfig struct {
	Provider   string // openai, deepseek, ollama
	APIKey     string
	BaseURL    string
	Model      string
	Timeout    time.Duration
	MaxRetries int
	// RateRPS caps outbound requests per second. Zero disables the limiter.
	RateRPS float64
}

// DefaultLLMConfig returns the default configuration.
func DefaultLLMConfig() *LLMConfig {
	return &LLMConfig{
		Provider:   "openai",
		Model:      "gpt-4o-mini",
		Timeout:    30 * time.Second,
		MaxRetries: 3,
		RateRPS:    2,
	}
}

// Client is the LLM client interface.
type Client interface {
	// Generate performs a single chat completion.
	Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error)

	// IsAvailable reports whether the backend is reachable.
	IsAvailable(ctx context.Context) bool
}

type llmClient struct {
	client  *openai.Client
	config  *LLMConfig
	limiter *rate.Limiter
}

// NewClient creates a Client for the configured provider.
func NewClient(cfg *LLMConfig) (Client, error) {
	if cfg == nil {
		cfg = DefaultLLMConfig()
	}
	if cfg.Model == "" {
		return nil, errors.New("llm model is required")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = 30 * time.Second
	}
	if cfg.MaxRetries == 0 {
		cfg.MaxRetries = 3
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	switch cfg.Provider {
	case "openai":
		if cfg.BaseURL != "" {
			clientConfig.BaseURL = cfg.BaseURL
		}
	case "deepseek":
		// DeepSeek is compatible with the OpenAI API
		clientConfig.BaseURL = cfg.BaseURL
		if clientConfig.BaseURL == "" {
			clientConfig.BaseURL = "https://api.deepseek.com/v1"
		}
	case "ollama":
		clientConfig.BaseURL = cfg.BaseURL
		if clientConfig.BaseURL == "" {
			clientConfig.BaseURL = "http://localhost:11434/v1"
		}
	default:
		return nil, errors.Errorf("unsupported LLM provider: %s", cfg.Provider)
	}

	var limiter *rate.Limiter
	if cfg.RateRPS > 0 {
		limiter = rate.NewLimiter(rate.Limit(cfg.RateRPS), 1)
	}

	return &llmClient{
		client:  openai.NewClientWithConfig(clientConfig),
		config:  cfg,
		limiter: limiter,
	}, nil
}

// NewClientFromProfile creates a Client from the server profile. It
// returns nil without error when no LLM backend is configured.
func NewClientFromProfile(p *profile.Profile) (Client, error) {
	if !p.IsLLMEnabled() {
		return nil, nil
	}
	return NewClient(&LLMConfig{
		Provider: p.LLMProvider,
		APIKey:   p.LLMAPIKey,
		BaseURL:  p.LLMBaseURL,
		Model:    p.LLMModel,
		Timeout:  time.Duration(p.LLMTimeout) * time.Second,
		RateRPS:  p.LLMRateRPS,
	})
}

func (c *llmClient) Generate(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return "", errors.Wrap(err, "rate limit wait")
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.config.Timeout)
	defer cancel()

	messages := []openai.ChatCompletionMessage{}
	if systemPrompt != "" {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    openai.ChatMessageRoleSystem,
			Content: systemPrompt,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: userPrompt,
	})

	var result string
	err := c.doWithRetry(ctx, func() error {
		resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
			Model:    c.config.Model,
			Messages: messages,
		})
		if err != nil {
			return err
		}
		if len(resp.Choices) == 0 {
			return errors.New("empty chat response")
		}
		result = resp.Choices[0].Message.Content
		return nil
	})
	if err != nil {
		return "", errors.Wrap(err, "chat completion failed")
	}
	return result, nil
}

func (c *llmClient) IsAvailable(ctx context.Context) bool {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	_, err := c.client.ListModels(ctx)
	return err == nil
}

// doWithRetry executes fn with exponential backoff.
func (c *llmClient) doWithRetry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt < c.config.MaxRetries; attempt++ {
		if err := fn(); err == nil {
			return nil
		} else {
			lastErr = err
			if attempt < c.config.MaxRetries-1 {
				waitTime := time.Duration(math.Pow(2, float64(attempt))) * time.Second
				slog.Debug("LLM request failed, retrying",
					"attempt", attempt+1,
					"wait_time", waitTime,
					"error", err)
				select {
				case <-time.After(waitTime):
				case <-ctx.Done():
					return ctx.Err()
				}
			}
		}
	}
	return lastErr
}
