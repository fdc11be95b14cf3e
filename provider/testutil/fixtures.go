package testutil

import (
	"time"

	"agentrepl/model"

	mcptypes "github.com/mark3labs/mcp-go/mcp"
)

// TestMessages returns a sample conversation with one resolved tool call
func TestMessages() []model.Message {
	return []model.Message{
		{
			Role:      model.RoleUser,
			Content:   "What is 2+2?",
			Timestamp: time.Now(),
		},
		{
			Role: model.RoleAssistant,
			ToolCalls: []model.ToolCall{
				{ID: "call_1", Name: "calculator", Arguments: `{"expression":"2+2"}`},
			},
			Timestamp: time.Now(),
		},
		{
			Role:       model.RoleTool,
			Content:    `{"result": 4}`,
			ToolCallID: "call_1",
			Timestamp:  time.Now(),
		},
		{
			Role:      model.RoleAssistant,
			Content:   "2+2 is 4.",
			Timestamp: time.Now(),
		},
	}
}

// SingleUserMessage returns a single user message for simple tests
func SingleUserMessage(content string) []model.Message {
	return []model.Message{model.NewUserMessage(content)}
}

// TestMCPTools returns sample MCP tools for testing
func TestMCPTools() []mcptypes.Tool {
	return []mcptypes.Tool{
		{
			Name:        "get_current_weather",
			Description: "Get the current weather in a given location",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"location": map[string]any{
						"type":        "string",
						"description": "The city and state, e.g. San Francisco, CA",
					},
				},
				Required: []string{"location"},
			},
		},
		{
			Name:        "calculator",
			Description: "perform mathematical operation",
			InputSchema: mcptypes.ToolInputSchema{
				Type: "object",
				Properties: map[string]any{
					"expression": map[string]any{
						"type":        "string",
						"description": "the mathematical expression",
					},
				},
				Required: []string{"expression"},
			},
		},
	}
}

// CalculatorFragments splits one calculator call into streamed fragments
func CalculatorFragments(index int, id, expression string) []model.ToolCallFragment {
	return []model.ToolCallFragment{
		{Index: index, ID: model.Ptr(id), Name: model.Ptr("calculator"), ArgumentsDelta: model.Ptr(`{"expr`)},
		{Index: index, ArgumentsDelta: model.Ptr(`ession":"`)},
		{Index: index, ArgumentsDelta: model.Ptr(expression + `"}`)},
	}
}
