// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesize

import (
	"context"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/pdiddy/biograph-engine/pkg/types"
)

// Backend abstracts the generative model so tests can supply a mock.
// Per Strategy pattern: one implementation per model API family.
type Backend interface {
	Generate(ctx context.Context, system, prompt string, maxTokens int, temperature float32) (string, error)
}

// OpenAIBackend calls an OpenAI-compatible chat-completion endpoint.
type OpenAIBackend struct {
	client *openai.Client
	model  string
}

// NewOpenAIBackend builds a backend from the AI configuration. A custom
// Endpoint points the client at any OpenAI-compatible server (vLLM,
// Ollama, a proxy); empty means the hosted API.
func NewOpenAIBackend(cfg types.AIConfig) *OpenAIBackend {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.Endpoint != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.Endpoint, "/")
	}
	return &OpenAIBackend{
		client: openai.NewClientWithConfig(clientConfig),
		model:  cfg.Model,
	}
}

// Generate sends one system+user exchange and returns the raw text of the
// first choice.
func (b *OpenAIBackend) Generate(ctx context.Context, system, prompt string, maxTokens int, temperature float32) (string, error) {
	resp, err := b.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:       b.model,
		MaxTokens:   maxTokens,
		Temperature: temperature,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("chat completion returned no choices")
	}
	return resp.Choices[0].Message.Content, nil
}
