package provider

import (
	"context"
	"fmt"

	"agentrepl/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/openai/openai-go/v3"
	"github.com/openai/openai-go/v3/option"
	"go.uber.org/zap"
)

// openAIChat is the chat completions client shared by every OpenAI-compatible
// backend.
type openAIChat struct {
	client    openai.Client
	name      string
	label     string // used in error messages
	model     string
	maxTokens int64
	// legacyMaxTokens sends max_tokens instead of max_completion_tokens.
	legacyMaxTokens bool
	logger          *zap.Logger
}

func newOpenAIChat(name, label, baseURL, apiKey, model string, logger *zap.Logger) openAIChat {
	client := openai.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(apiKey),
	)

	return openAIChat{
		client: client,
		name:   name,
		label:  label,
		model:  model,
		logger: logger,
	}
}

func (p *openAIChat) params(messages []model.Message, tools []mcptypes.Tool) openai.ChatCompletionNewParams {
	params := openai.ChatCompletionNewParams{
		Messages: ConvertToOpenAIMessages(messages),
		Model:    openai.ChatModel(p.model),
	}

	if len(tools) > 0 {
		params.Tools = ConvertToolsToOpenAI(tools)
	}

	if p.maxTokens > 0 {
		if p.legacyMaxTokens {
			params.MaxTokens = openai.Int(p.maxTokens)
		} else {
			params.MaxCompletionTokens = openai.Int(p.maxTokens)
		}
	}

	return params
}

// Chat implements model.Provider.Chat.
func (p *openAIChat) Chat(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error) {
	completion, err := p.client.Chat.Completions.New(ctx, p.params(messages, tools))
	if err != nil {
		return nil, fmt.Errorf("%s request error: %w", p.label, err)
	}

	result, err := ConvertFromOpenAICompletion(completion)
	if err != nil {
		return nil, fmt.Errorf("%s response error: %w", p.label, err)
	}

	p.logger.Debug("completion received",
		zap.String("provider", p.name),
		zap.Int("tool_calls", len(result.ToolCalls)),
		zap.Int("content_len", len(result.Content)),
	)
	return result, nil
}

// ChatStream implements model.Provider.ChatStream.
func (p *openAIChat) ChatStream(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	stream := p.client.Chat.Completions.NewStreaming(ctx, p.params(messages, tools))
	defer stream.Close()

	chunks := 0
	for stream.Next() {
		chunks++
		if err := callback(ConvertFromOpenAIChunk(stream.Current())); err != nil {
			return err
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("%s streaming error: %w", p.label, err)
	}

	p.logger.Debug("stream drained", zap.String("provider", p.name), zap.Int("chunks", chunks))
	return nil
}

// Name implements model.Provider.Name.
func (p *openAIChat) Name() string {
	return p.name
}

// GetModel implements model.Provider.GetModel.
func (p *openAIChat) GetModel() string {
	return p.model
}

// OpenAIProvider implements model.Provider using OpenAI's official Go SDK.
// Any OpenAI-compatible endpoint works by changing the base URL.
type OpenAIProvider struct {
	openAIChat
}

// NewOpenAIProvider creates a new OpenAI provider instance.
//
// Defaults:
//   - BaseURL: "https://api.openai.com/v1"
//   - Model: "gpt-3.5-turbo"
//
// A positive MaxTokens is sent as max_completion_tokens.
//
// Returns an error if the API key is missing.
func NewOpenAIProvider(cfg Config) (*OpenAIProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com/v1"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	modelName := cfg.Model
	if modelName == "" {
		modelName = "gpt-3.5-turbo"
	}

	chat := newOpenAIChat(string(ProviderTypeOpenAI), "OpenAI", baseURL, cfg.APIKey, modelName, cfg.logger())
	chat.maxTokens = cfg.MaxTokens

	return &OpenAIProvider{openAIChat: chat}, nil
}
