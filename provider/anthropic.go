package provider

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"agentrepl/model"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	mcptypes "github.com/mark3labs/mcp-go/mcp"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

const defaultAnthropicMaxTokens = 4096

// AnthropicProvider implements model.Provider using Anthropic's official API.
type AnthropicProvider struct {
	client    anthropic.Client
	model     anthropic.Model
	maxTokens int64
	logger    *zap.Logger
}

// NewAnthropicProvider creates a new Anthropic provider instance.
//
// Defaults:
//   - BaseURL: "https://api.anthropic.com"
//   - Model: "claude-sonnet-4-5-20250929"
//   - MaxTokens: 4096 (required by the Messages API)
//
// Returns an error if the API key is missing.
func NewAnthropicProvider(cfg Config) (*AnthropicProvider, error) {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.anthropic.com"
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("Anthropic API key is required")
	}

	anthropicModel := anthropic.ModelClaudeSonnet4_5_20250929
	if cfg.Model != "" {
		anthropicModel = anthropic.Model(cfg.Model)
	}

	maxTokens := cfg.MaxTokens
	if maxTokens <= 0 {
		maxTokens = defaultAnthropicMaxTokens
	}

	client := anthropic.NewClient(
		option.WithBaseURL(baseURL),
		option.WithAPIKey(cfg.APIKey),
	)

	return &AnthropicProvider{
		client:    client,
		model:     anthropicModel,
		maxTokens: maxTokens,
		logger:    cfg.logger(),
	}, nil
}

func (p *AnthropicProvider) params(messages []model.Message, tools []mcptypes.Tool) anthropic.MessageNewParams {
	anthropicMessages, systemBlocks := convertToAnthropicMessages(messages)

	params := anthropic.MessageNewParams{
		Model:     p.model,
		Messages:  anthropicMessages,
		MaxTokens: p.maxTokens,
	}

	if len(systemBlocks) > 0 {
		params.System = systemBlocks
	}

	if len(tools) > 0 {
		params.Tools = ConvertToolsToAnthropic(tools)
	}

	return params
}

// Chat implements model.Provider.Chat.
func (p *AnthropicProvider) Chat(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error) {
	msg, err := p.client.Messages.New(ctx, p.params(messages, tools))
	if err != nil {
		return nil, fmt.Errorf("Anthropic request error: %w", err)
	}

	result := &model.Completion{}
	var text strings.Builder
	for _, block := range msg.Content {
		switch variant := block.AsAny().(type) {
		case anthropic.TextBlock:
			text.WriteString(variant.Text)
		case anthropic.ToolUseBlock:
			result.ToolCalls = append(result.ToolCalls, model.ToolCall{
				ID:        variant.ID,
				Name:      variant.Name,
				Arguments: string(variant.Input),
			})
		}
	}
	result.Content = text.String()

	return result, nil
}

// ChatStream implements model.Provider.ChatStream.
func (p *AnthropicProvider) ChatStream(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	stream := p.client.Messages.NewStreaming(ctx, p.params(messages, tools))
	defer stream.Close()

	blocks := newAnthropicBlocks()
	for stream.Next() {
		chunk, ok := blocks.convert(stream.Current())
		if !ok {
			continue
		}
		if err := callback(chunk); err != nil {
			return err
		}
	}

	if err := stream.Err(); err != nil {
		return fmt.Errorf("Anthropic streaming error: %w", err)
	}

	p.logger.Debug("stream drained",
		zap.String("provider", string(ProviderTypeAnthropic)),
		zap.Int("tool_calls", len(blocks.toolIndex)),
	)
	return nil
}

// Name implements model.Provider.Name.
func (p *AnthropicProvider) Name() string {
	return string(ProviderTypeAnthropic)
}

// GetModel implements model.Provider.GetModel.
func (p *AnthropicProvider) GetModel() string {
	return string(p.model)
}

// anthropicBlocks maps content block indices of one stream to tool call
// indices. Anthropic numbers text and tool_use blocks together, while
// fragments count tool calls only.
type anthropicBlocks struct {
	toolIndex map[int64]int
}

func newAnthropicBlocks() *anthropicBlocks {
	return &anthropicBlocks{toolIndex: make(map[int64]int)}
}

func (b *anthropicBlocks) convert(event anthropic.MessageStreamEventUnion) (model.Chunk, bool) {
	switch eventVariant := event.AsAny().(type) {
	case anthropic.ContentBlockStartEvent:
		block := eventVariant.ContentBlock
		switch block.Type {
		case "tool_use":
			index := len(b.toolIndex)
			b.toolIndex[eventVariant.Index] = index
			return model.ToolCallChunk(model.ToolCallFragment{
				Index: index,
				ID:    model.Ptr(block.ID),
				Name:  model.Ptr(block.Name),
			}), true
		case "text":
			if block.Text != "" {
				return model.TextChunk(block.Text), true
			}
		}

	case anthropic.ContentBlockDeltaEvent:
		switch deltaVariant := eventVariant.Delta.AsAny().(type) {
		case anthropic.TextDelta:
			return model.TextChunk(deltaVariant.Text), true
		case anthropic.InputJSONDelta:
			index, ok := b.toolIndex[eventVariant.Index]
			if !ok {
				return model.Chunk{}, false
			}
			return model.ToolCallChunk(model.ToolCallFragment{
				Index:          index,
				ArgumentsDelta: model.Ptr(deltaVariant.PartialJSON),
			}), true
		}
	}

	return model.Chunk{}, false
}

// convertToAnthropicMessages converts history messages to Anthropic format.
// System messages move to the separate system parameter, and consecutive tool
// results are grouped into one user message as the Messages API requires.
func convertToAnthropicMessages(messages []model.Message) ([]anthropic.MessageParam, []anthropic.TextBlockParam) {
	var systemBlocks []anthropic.TextBlockParam
	anthropicMsgs := make([]anthropic.MessageParam, 0, len(messages))
	var results []anthropic.ContentBlockParamUnion

	flushResults := func() {
		if len(results) > 0 {
			anthropicMsgs = append(anthropicMsgs, anthropic.NewUserMessage(results...))
			results = nil
		}
	}

	for _, msg := range messages {
		if msg.Role == model.RoleTool {
			results = append(results, anthropic.NewToolResultBlock(
				msg.ToolCallID, msg.Content, strings.HasPrefix(msg.Content, "error:"),
			))
			continue
		}
		flushResults()

		switch msg.Role {
		case model.RoleSystem:
			systemBlocks = append(systemBlocks, anthropic.TextBlockParam{
				Text: msg.Content,
			})

		case model.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				anthropicMsgs = append(anthropicMsgs,
					anthropic.NewAssistantMessage(anthropic.NewTextBlock(msg.Content)),
				)
				continue
			}
			var blocks []anthropic.ContentBlockParamUnion
			if msg.Content != "" {
				blocks = append(blocks, anthropic.NewTextBlock(msg.Content))
			}
			for _, call := range msg.ToolCalls {
				blocks = append(blocks, anthropic.NewToolUseBlock(call.ID, toolUseInput(call.Arguments), call.Name))
			}
			anthropicMsgs = append(anthropicMsgs, anthropic.NewAssistantMessage(blocks...))

		default:
			anthropicMsgs = append(anthropicMsgs,
				anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)),
			)
		}
	}
	flushResults()

	return anthropicMsgs, systemBlocks
}

// toolUseInput returns arguments as raw JSON when they form an object.
// tool_use input must be an object, so anything else is sent as {}.
func toolUseInput(arguments string) any {
	if gjson.Valid(arguments) && gjson.Parse(arguments).IsObject() {
		return json.RawMessage(arguments)
	}
	return map[string]any{}
}
