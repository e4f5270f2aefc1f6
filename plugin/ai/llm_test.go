package ai

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kantisaranucheep/schedule-assistant/internal/profile"
)

func TestNewClientDefaults(t *testing.T) {
	client, err := NewClient(nil)
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestNewClientUnsupportedProvider(t *testing.T) {
	_, err := NewClient(&LLMConfig{Provider: "anthropic", Model: "claude"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported LLM provider")
}

func TestNewClientRequiresModel(t *testing.T) {
	_, err := NewClient(&LLMConfig{Provider: "openai"})
	require.Error(t, err)
}

func TestNewClientFromProfileDisabled(t *testing.T) {
	client, err := NewClientFromProfile(&profile.Profile{})
	require.NoError(t, err)
	assert.Nil(t, client)
}

func TestNewClientFromProfileOllama(t *testing.T) {
	client, err := NewClientFromProfile(&profile.Profile{
		LLMProvider: "ollama",
		LLMModel:    "llama3",
		LLMTimeout:  10,
	})
	require.NoError(t, err)
	assert.NotNil(t, client)
}

func TestMockClientRecordsPrompts(t *testing.T) {
	mock := &MockClient{Response: "ok"}
	out, err := mock.Generate(context.Background(), "system", "hello")
	require.NoError(t, err)
	assert.Equal(t, "ok", out)
	assert.Equal(t, 1, mock.CallCount())
	assert.Equal(t, "hello", mock.Prompts[0])
}

func TestGenerateRateLimiterHonorsContext(t *testing.T) {
	client, err := NewClient(&LLMConfig{
		Provider: "ollama",
		Model:    "llama3",
		RateRPS:  0.001, // effectively blocks after the first token
	})
	require.NoError(t, err)

	c := client.(*llmClient)
	require.NotNil(t, c.limiter)
	c.limiter.Allow() // drain the burst

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	_, err = client.Generate(ctx, "", "hi")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limit wait")
}
