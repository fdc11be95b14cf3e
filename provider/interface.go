// Package provider implements model.Provider for the supported LLM backends.
//
// Every backend speaks its own wire format. The provider layer converts the
// provider-agnostic model types (Message, Chunk, Completion) to and from the
// official SDK types, so the turn controller never sees a vendor type:
//   - OpenAI and OpenRouter use github.com/openai/openai-go/v3
//   - Anthropic uses github.com/anthropics/anthropic-sdk-go
//   - Ollama uses github.com/ollama/ollama/api through the ollama package
//
// Streamed responses are normalised to model.Chunk values whose tool call
// fragments are keyed by index, which is what the controller's accumulator
// expects regardless of how the backend splits a call.
//
// # Usage
//
//	p, err := provider.NewProvider(provider.Config{
//	    Type:   provider.ProviderTypeOpenAI,
//	    APIKey: "sk-...",
//	    Model:  "gpt-3.5-turbo",
//	})
//	if err != nil {
//	    // handle error
//	}
//	completion, err := p.Chat(ctx, messages, tools)
package provider

import (
	"agentrepl/model"

	"go.uber.org/zap"
)

// Note: The Provider interface and StreamCallback are defined in the model package
// (model/provider.go) to avoid import cycles. This package implements model.Provider.

// ProviderType identifies the provider implementation.
type ProviderType string

const (
	ProviderTypeOllama     ProviderType = "ollama"
	ProviderTypeOpenRouter ProviderType = "openrouter"
	ProviderTypeOpenAI     ProviderType = "openai"
	ProviderTypeAnthropic  ProviderType = "anthropic"
)

// Config holds what a provider constructor needs.
type Config struct {
	Type      ProviderType
	BaseURL   string
	APIKey    string
	Model     string
	MaxTokens int64
	Logger    *zap.Logger
}

// DisplayName returns the model name to show the user. Providers whose model
// IDs carry a vendor prefix shorten it through GetDisplayName.
func DisplayName(p model.Provider) string {
	if named, ok := p.(interface{ GetDisplayName() string }); ok {
		return named.GetDisplayName()
	}
	return p.GetModel()
}

func (c Config) logger() *zap.Logger {
	if c.Logger == nil {
		return zap.NewNop()
	}
	return c.Logger
}
