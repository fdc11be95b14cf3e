package provider

import (
	"fmt"
	"strings"
)

// OpenRouterProvider implements model.Provider using OpenAI's official Go SDK.
// It connects to OpenRouter's API which is 100% OpenAI-compatible.
type OpenRouterProvider struct {
	openAIChat
}

// NewOpenRouterProvider creates a new OpenRouter provider instance.
//
// Defaults:
//   - BaseURL: "https://openrouter.ai/api/v1"
//   - Model: "meta-llama/llama-3.2-90b-instruct"
//
// A positive MaxTokens is sent as max_tokens, which every model routed by
// OpenRouter accepts.
//
// Returns an error if the API key is missing.
func NewOpenRouterProvider(cfg Config) (*OpenRouterProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://openrouter.ai/api/v1"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenRouter API key is required")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "meta-llama/llama-3.2-90b-instruct"
	}

	chat := newOpenAIChat(string(ProviderTypeOpenRouter), "OpenRouter", baseURL, cfg.APIKey, modelName, cfg.logger())
	chat.maxTokens = cfg.MaxTokens
	chat.legacyMaxTokens = true

	return &OpenRouterProvider{openAIChat: chat}, nil
}

// GetDisplayName returns the model name without its vendor prefix
// (e.g., "qwen/qwen3-coder:free" → "qwen3-coder:free").
func (p *OpenRouterProvider) GetDisplayName() string {
	return stripProviderPrefix(p.model)
}

func stripProviderPrefix(modelName string) string {
	if idx := strings.Index(modelName, "/"); idx != -1 {
		return modelName[idx+1:]
	}
	return modelName
}
