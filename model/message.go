package model

import "time"

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleTool      = "tool"
)

// Message represents a chat message in the conversation.
//
// ToolCalls is only set on assistant messages that requested tools, and
// ToolCallID only on tool messages, where it names the call being answered.
type Message struct {
	Role       string
	Content    string
	ToolCalls  []ToolCall
	ToolCallID string
	Timestamp  time.Time
}

// ToolCall is one complete function invocation requested by the model.
// Arguments is the raw JSON text produced by the backend.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string
}

func NewSystemMessage(content string) Message {
	return Message{Role: RoleSystem, Content: content, Timestamp: time.Now()}
}

func NewUserMessage(content string) Message {
	return Message{Role: RoleUser, Content: content, Timestamp: time.Now()}
}

func NewAssistantMessage(content string) Message {
	return Message{Role: RoleAssistant, Content: content, Timestamp: time.Now()}
}

// NewToolCallMessage records the tool calls of one response. Its content is
// always empty.
func NewToolCallMessage(calls []ToolCall) Message {
	return Message{
		Role:      RoleAssistant,
		ToolCalls: append([]ToolCall(nil), calls...),
		Timestamp: time.Now(),
	}
}

func NewToolMessage(toolCallID, content string) Message {
	return Message{Role: RoleTool, Content: content, ToolCallID: toolCallID, Timestamp: time.Now()}
}

// ToolName finds the name of the call a tool message answers by scanning
// backwards through messages. Returns "" when the request is not present.
func ToolName(messages []Message, toolCallID string) string {
	for i := len(messages) - 1; i >= 0; i-- {
		for _, call := range messages[i].ToolCalls {
			if call.ID == toolCallID {
				return call.Name
			}
		}
	}
	return ""
}
