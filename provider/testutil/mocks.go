package testutil

import (
	"context"
	"io"
	"strings"

	"agentrepl/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// MockProvider implements model.Provider for testing
type MockProvider struct {
	// Configurable responses
	ChatFunc       func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error)
	ChatStreamFunc func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error

	// Requests records the messages of every call, in order.
	Requests [][]model.Message

	currentModel string
}

// NewMockProvider creates a mock provider with default implementations
func NewMockProvider(modelName string) *MockProvider {
	mock := &MockProvider{
		currentModel: modelName,
	}
	mock.ChatFunc = mock.defaultChat
	mock.ChatStreamFunc = mock.defaultChatStream
	return mock
}

func (m *MockProvider) defaultChat(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error) {
	return &model.Completion{Content: "Mock response"}, nil
}

func (m *MockProvider) defaultChatStream(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	return callback(model.TextChunk("Mock response"))
}

func (m *MockProvider) Chat(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error) {
	m.Requests = append(m.Requests, messages)
	return m.ChatFunc(ctx, messages, tools)
}

func (m *MockProvider) ChatStream(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
	m.Requests = append(m.Requests, messages)
	return m.ChatStreamFunc(ctx, messages, tools, callback)
}

func (m *MockProvider) Name() string {
	return "mock"
}

func (m *MockProvider) GetModel() string {
	return m.currentModel
}

// ScriptStream makes each ChatStream call replay the next script. Calls past
// the last script replay nothing.
func (m *MockProvider) ScriptStream(scripts ...[]model.Chunk) {
	call := 0
	m.ChatStreamFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool, callback model.StreamCallback) error {
		if call >= len(scripts) {
			return nil
		}
		chunks := scripts[call]
		call++
		for _, chunk := range chunks {
			if err := callback(chunk); err != nil {
				return err
			}
		}
		return nil
	}
}

// ScriptChat makes each Chat call return the next completion.
func (m *MockProvider) ScriptChat(completions ...model.Completion) {
	call := 0
	m.ChatFunc = func(ctx context.Context, messages []model.Message, tools []mcptypes.Tool) (*model.Completion, error) {
		if call >= len(completions) {
			return &model.Completion{}, nil
		}
		completion := completions[call]
		call++
		return &completion, nil
	}
}

// MockConsole feeds scripted input lines and records everything shown.
type MockConsole struct {
	Lines []string

	Streamed  strings.Builder
	Streams   int
	Shown     []string
	ToolCalls []model.ToolCall
	Notices   []string
}

func NewMockConsole(lines ...string) *MockConsole {
	return &MockConsole{Lines: lines}
}

// ReadLine returns the next scripted line, then io.EOF.
func (c *MockConsole) ReadLine(ctx context.Context) (string, error) {
	if len(c.Lines) == 0 {
		return "", io.EOF
	}
	line := c.Lines[0]
	c.Lines = c.Lines[1:]
	return line, nil
}

func (c *MockConsole) StreamText(text string) {
	c.Streamed.WriteString(text)
}

func (c *MockConsole) EndStream() {
	c.Streams++
}

func (c *MockConsole) ShowMessage(text string) {
	c.Shown = append(c.Shown, text)
}

func (c *MockConsole) ShowToolCall(call model.ToolCall) {
	c.ToolCalls = append(c.ToolCalls, call)
}

func (c *MockConsole) ShowNotice(text string) {
	c.Notices = append(c.Notices, text)
}

// MockTools implements model.ToolInvoker with a fixed result per tool name.
type MockTools struct {
	Results map[string]string
	Calls   []model.ToolCall
}

func NewMockTools(results map[string]string) *MockTools {
	return &MockTools{Results: results}
}

func (t *MockTools) Describe() []mcptypes.Tool {
	return TestMCPTools()
}

func (t *MockTools) Invoke(ctx context.Context, name, arguments string) string {
	t.Calls = append(t.Calls, model.ToolCall{Name: name, Arguments: arguments})
	if result, ok := t.Results[name]; ok {
		return result
	}
	return "tool not found: " + name
}
