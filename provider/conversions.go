package provider

import (
	"encoding/json"
	"fmt"

	"agentrepl/model"

	"github.com/google/uuid"
	"github.com/ollama/ollama/api"
	"github.com/openai/openai-go/v3"
)

// ConvertToOpenAIMessages converts history messages to OpenAI chat format.
// Assistant tool call requests keep their ids so each tool message can name
// the call it answers.
func ConvertToOpenAIMessages(messages []model.Message) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, 0, len(messages))

	for _, msg := range messages {
		switch msg.Role {
		case model.RoleSystem:
			result = append(result, openai.SystemMessage(msg.Content))
		case model.RoleUser:
			result = append(result, openai.UserMessage(msg.Content))
		case model.RoleAssistant:
			if len(msg.ToolCalls) == 0 {
				result = append(result, openai.AssistantMessage(msg.Content))
				continue
			}
			result = append(result, openAIToolCallMessage(msg))
		case model.RoleTool:
			result = append(result, openai.ToolMessage(msg.Content, msg.ToolCallID))
		default:
			result = append(result, openai.UserMessage(msg.Content))
		}
	}

	return result
}

func openAIToolCallMessage(msg model.Message) openai.ChatCompletionMessageParamUnion {
	assistant := openai.ChatCompletionAssistantMessageParam{}
	if msg.Content != "" {
		assistant.Content.OfString = openai.String(msg.Content)
	}

	for _, call := range msg.ToolCalls {
		assistant.ToolCalls = append(assistant.ToolCalls, openai.ChatCompletionMessageToolCallUnionParam{
			OfFunction: &openai.ChatCompletionMessageFunctionToolCallParam{
				ID: call.ID,
				Function: openai.ChatCompletionMessageFunctionToolCallFunctionParam{
					Name:      call.Name,
					Arguments: call.Arguments,
				},
			},
		})
	}

	return openai.ChatCompletionMessageParamUnion{OfAssistant: &assistant}
}

// ConvertFromOpenAIChunk converts a streamed chunk. Fields are only set when
// they were present in the wire JSON, so a fragment that omits its id or name
// leaves them nil instead of "".
func ConvertFromOpenAIChunk(chunk openai.ChatCompletionChunk) model.Chunk {
	out := model.Chunk{}

	for _, choice := range chunk.Choices {
		delta := model.Delta{}
		if choice.Delta.JSON.Content.Valid() {
			delta.Content = model.Ptr(choice.Delta.Content)
		}

		for _, tc := range choice.Delta.ToolCalls {
			frag := model.ToolCallFragment{Index: int(tc.Index)}
			if tc.JSON.ID.Valid() && tc.ID != "" {
				frag.ID = model.Ptr(tc.ID)
			}
			if tc.Function.JSON.Name.Valid() && tc.Function.Name != "" {
				frag.Name = model.Ptr(tc.Function.Name)
			}
			if tc.Function.JSON.Arguments.Valid() {
				frag.ArgumentsDelta = model.Ptr(tc.Function.Arguments)
			}
			delta.ToolCalls = append(delta.ToolCalls, frag)
		}

		out.Choices = append(out.Choices, model.ChunkChoice{Delta: delta})
	}

	return out
}

// ConvertFromOpenAICompletion converts a non-streamed response.
func ConvertFromOpenAICompletion(completion *openai.ChatCompletion) (*model.Completion, error) {
	if completion == nil || len(completion.Choices) == 0 {
		return nil, fmt.Errorf("response contained no choices")
	}

	msg := completion.Choices[0].Message
	result := &model.Completion{Content: msg.Content}
	for _, tc := range msg.ToolCalls {
		result.ToolCalls = append(result.ToolCalls, model.ToolCall{
			ID:        tc.ID,
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}

	return result, nil
}

// ConvertToOllamaMessages converts history messages to Ollama api.Message.
// Tool call arguments travel as decoded objects on the Ollama wire, so
// arguments that are not a JSON object are sent as an empty map. Ollama has no
// call IDs; a tool result is tied to its call by the tool name instead.
func ConvertToOllamaMessages(messages []model.Message) []api.Message {
	result := make([]api.Message, len(messages))
	for i, msg := range messages {
		result[i] = api.Message{
			Role:    msg.Role,
			Content: msg.Content,
		}
		if len(msg.ToolCalls) > 0 {
			result[i].ToolCalls = ConvertFromProviderToolCalls(msg.ToolCalls)
		}
		if msg.Role == model.RoleTool {
			result[i].ToolName = model.ToolName(messages[:i], msg.ToolCallID)
		}
	}
	return result
}

// ParseToolArguments parses a JSON arguments string into a map.
func ParseToolArguments(argsJSON string) map[string]any {
	var args map[string]any
	if err := json.Unmarshal([]byte(argsJSON), &args); err != nil || args == nil {
		return make(map[string]any)
	}
	return args
}

// ConvertFromProviderToolCalls converts tool calls to Ollama api.ToolCall.
// Ollama has no call ids; results are matched by order.
func ConvertFromProviderToolCalls(calls []model.ToolCall) []api.ToolCall {
	if len(calls) == 0 {
		return nil
	}

	result := make([]api.ToolCall, len(calls))
	for i, call := range calls {
		result[i] = api.ToolCall{
			Function: api.ToolCallFunction{
				Name:      call.Name,
				Arguments: ParseToolArguments(call.Arguments),
			},
		}
	}
	return result
}

// ConvertFromOllamaToolCalls converts Ollama tool calls to whole fragments
// starting at index first. Ollama delivers each call complete, so every
// fragment carries a generated id, the name and the full arguments.
func ConvertFromOllamaToolCalls(calls []api.ToolCall, first int) []model.ToolCallFragment {
	if len(calls) == 0 {
		return nil
	}

	fragments := make([]model.ToolCallFragment, len(calls))
	for i, call := range calls {
		args := "{}"
		if len(call.Function.Arguments) > 0 {
			if data, err := json.Marshal(call.Function.Arguments); err == nil {
				args = string(data)
			}
		}
		fragments[i] = model.ToolCallFragment{
			Index:          first + i,
			ID:             model.Ptr("call_" + uuid.NewString()),
			Name:           model.Ptr(call.Function.Name),
			ArgumentsDelta: model.Ptr(args),
		}
	}
	return fragments
}
