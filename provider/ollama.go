package provider

import (
	"context"
	"fmt"
	"strings"

	"agentrepl/model"
	"agentrepl/ollama"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/ollama/ollama/api"
	"go.uber.org/zap"
)

// OllamaProvider wraps ollama.Client to implement model.Provider.
//
// Ollama never splits a tool call across responses. Each call is turned into
// a single whole fragment, so the controller accumulates Ollama streams the
// same way as any other backend.
type OllamaProvider struct {
	client *ollama.Client
	logger *zap.Logger
}

// NewOllamaProvider creates a new Ollama provider instance.
//
// Defaults:
//   - BaseURL: "http://localhost:11434"
//   - Model: "llama3.1:latest"
//
// A positive MaxTokens is sent as the num_predict option.
//
// Returns an error if the base URL is invalid.
func NewOllamaProvider(cfg Config) (*OllamaProvider, error) {
	client, err := ollama.NewClient(cfg.BaseURL, cfg.Model, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Ollama client: %w", err)
	}
	client.SetMaxTokens(cfg.MaxTokens)

	logger := cfg.logger()
	logger.Debug("ollama client created",
		zap.String("base_url", client.BaseURL()),
		zap.String("model", client.GetModel()),
		zap.Bool("tools", client.SupportsToolCalling()),
	)

	return &OllamaProvider{
		client: client,
		logger: logger,
	}, nil
}

func (p *OllamaProvider) tools(tools []mcptypes.Tool) []api.Tool {
	if len(tools) == 0 {
		return nil
	}
	if !p.client.SupportsToolCalling() {
		p.logger.Warn("model does not support tool calling, sending without tools",
			zap.String("model", p.client.GetModel()))
		return nil
	}
	return ConvertToolsToOllama(tools)
}

// Chat implements model.Provider.Chat with a non-streamed request.
func (p *OllamaProvider) Chat(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error) {
	var content strings.Builder
	var calls []model.ToolCall

	err := p.client.Chat(ctx, ConvertToOllamaMessages(messages), p.tools(tools), false, func(resp api.ChatResponse) error {
		content.WriteString(resp.Message.Content)
		for _, frag := range ConvertFromOllamaToolCalls(resp.Message.ToolCalls, len(calls)) {
			calls = append(calls, model.ToolCall{
				ID:        *frag.ID,
				Name:      *frag.Name,
				Arguments: *frag.ArgumentsDelta,
			})
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("Ollama request error: %w", err)
	}

	return &model.Completion{Content: content.String(), ToolCalls: calls}, nil
}

// ChatStream implements model.Provider.ChatStream.
func (p *OllamaProvider) ChatStream(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	next := 0

	err := p.client.Chat(ctx, ConvertToOllamaMessages(messages), p.tools(tools), true, func(resp api.ChatResponse) error {
		delta := model.Delta{}
		if resp.Message.Content != "" {
			delta.Content = model.Ptr(resp.Message.Content)
		}
		delta.ToolCalls = ConvertFromOllamaToolCalls(resp.Message.ToolCalls, next)
		next += len(delta.ToolCalls)

		if delta.Content == nil && len(delta.ToolCalls) == 0 {
			return nil
		}
		return callback(model.Chunk{Choices: []model.ChunkChoice{{Delta: delta}}})
	})
	if err != nil {
		return fmt.Errorf("Ollama streaming error: %w", err)
	}
	return nil
}

// Name implements model.Provider.Name.
func (p *OllamaProvider) Name() string {
	return string(ProviderTypeOllama)
}

// GetModel implements model.Provider.GetModel.
func (p *OllamaProvider) GetModel() string {
	return p.client.GetModel()
}
